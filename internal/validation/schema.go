package validation

import (
	"encoding/json"
	"fmt"

	"shenanigigs/jobstore/internal/errors"
)

type kind int

const (
	kindString kind = iota
	kindInteger
	kindNumber
	kindBoolean
	kindStringList
	kindObject
)

func (k kind) describe() string {
	switch k {
	case kindString:
		return "a string"
	case kindInteger:
		return "an integer"
	case kindNumber:
		return "a number"
	case kindBoolean:
		return "a boolean"
	case kindStringList:
		return "a list of strings"
	case kindObject:
		return "an object"
	}
	return "unknown"
}

type field struct {
	name     string
	kind     kind
	optional bool
	fields   []field
}

var verificationStatusFields = []field{
	{name: "payment", kind: kindBoolean},
	{name: "phone", kind: kindBoolean},
	{name: "email", kind: kindBoolean},
}

var clientHistoryFields = []field{
	{name: "jobsPosted", kind: kindInteger},
	{name: "hireRate", kind: kindNumber},
	{name: "totalSpent", kind: kindString},
	{name: "memberSince", kind: kindString},
	{name: "verificationStatus", kind: kindObject, fields: verificationStatusFields},
}

// jobFields lists the top-level shape in the order violations are reported.
// budget and clientHistory.totalSpent are presentation strings, so numbers
// are rejected for them.
var jobFields = []field{
	{name: "id", kind: kindString},
	{name: "title", kind: kindString},
	{name: "description", kind: kindString},
	{name: "longDescription", kind: kindString},
	{name: "budget", kind: kindString},
	{name: "timePosted", kind: kindString},
	{name: "proposals", kind: kindInteger},
	{name: "category", kind: kindString},
	{name: "expertise", kind: kindString},
	{name: "clientLocation", kind: kindString},
	{name: "clientRating", kind: kindNumber},
	{name: "jobType", kind: kindString},
	{name: "projectLength", kind: kindString},
	{name: "weeklyHours", kind: kindString, optional: true},
	{name: "activityOn", kind: kindString},
	{name: "skills", kind: kindStringList},
	{name: "attachments", kind: kindStringList, optional: true},
	{name: "questions", kind: kindStringList, optional: true},
	{name: "clientHistory", kind: kindObject, fields: clientHistoryFields},
}

// checker walks a decoded JSON object against a field list. Offending keys
// are removed from the object so the remainder can still be decoded into
// the typed record for the constraint pass.
type checker struct {
	violations []errors.Violation
	cleared    []string
}

func (c *checker) add(path, message string) {
	c.violations = append(c.violations, errors.Violation{Field: path, Message: message})
}

// object checks obj in place. In partial mode absent fields are allowed and
// a null optional field is recorded as cleared.
func (c *checker) object(prefix string, obj map[string]any, fields []field, partial bool) {
	for _, f := range fields {
		path := joinPath(prefix, f.name)

		raw, present := obj[f.name]
		if !present {
			if !partial && !f.optional {
				c.add(path, "is required")
			}
			continue
		}

		if raw == nil {
			delete(obj, f.name)
			switch {
			case partial && f.optional:
				c.cleared = append(c.cleared, f.name)
			case partial:
				c.add(path, "must not be null")
			case !f.optional:
				c.add(path, "is required")
			}
			continue
		}

		if f.kind == kindObject {
			nested, ok := raw.(map[string]any)
			if !ok {
				delete(obj, f.name)
				c.add(path, "must be "+f.kind.describe())
				continue
			}
			// A supplied nested object is always checked in full; patches
			// replace it wholesale.
			c.object(path, nested, f.fields, false)
			continue
		}

		if msg := checkValue(f.kind, raw); msg != "" {
			delete(obj, f.name)
			c.add(path, msg)
		}
	}
}

func checkValue(k kind, raw any) string {
	switch k {
	case kindString:
		if _, ok := raw.(string); ok {
			return ""
		}
	case kindInteger:
		if n, ok := raw.(json.Number); ok {
			if _, err := n.Int64(); err == nil {
				return ""
			}
		}
	case kindNumber:
		if n, ok := raw.(json.Number); ok {
			if _, err := n.Float64(); err == nil {
				return ""
			}
		}
	case kindBoolean:
		if _, ok := raw.(bool); ok {
			return ""
		}
	case kindStringList:
		items, ok := raw.([]any)
		if !ok {
			break
		}
		for i, item := range items {
			if _, ok := item.(string); !ok {
				return fmt.Sprintf("item %d must be a string", i)
			}
		}
		return ""
	}
	return "must be " + k.describe()
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
