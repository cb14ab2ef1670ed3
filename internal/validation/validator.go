// Package validation enforces the job record schema before any write.
// Every check collects all violations instead of stopping at the first one.
package validation

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"shenanigigs/jobstore/internal/errors"
	"shenanigigs/jobstore/internal/models"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("finite", isFinite)

	return &Validator{validate: v}
}

// ValidateJob checks the value constraints of a typed record.
func (v *Validator) ValidateJob(job models.JobRecord) error {
	if violations := v.constraintViolations(job); len(violations) > 0 {
		return errors.Validation(violations)
	}
	return nil
}

// DecodeJob parses a JSON job record, checking presence and types of every
// field as well as the value constraints checked by ValidateJob.
func (v *Validator) DecodeJob(data []byte) (models.JobRecord, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return models.JobRecord{}, err
	}

	c := &checker{}
	c.object("", obj, jobFields, false)

	var job models.JobRecord
	if err := remarshal(obj, &job); err != nil {
		return models.JobRecord{}, errors.InvalidInput("decode job record", err)
	}

	violations := mergeViolations(c.violations, v.constraintViolations(job))
	if len(violations) > 0 {
		return models.JobRecord{}, errors.Validation(violations)
	}

	return job, nil
}

// DecodePatch parses a JSON partial update. Only the fields present are
// checked; the merged record is validated in full by the repository.
func (v *Validator) DecodePatch(data []byte) (models.JobPatch, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return models.JobPatch{}, err
	}

	c := &checker{}
	if _, ok := obj["id"]; ok {
		delete(obj, "id")
		c.add("id", "cannot be changed")
	}
	c.object("", obj, jobFields[1:], true)

	if len(c.violations) > 0 {
		return models.JobPatch{}, errors.Validation(c.violations)
	}

	var patch models.JobPatch
	if err := remarshal(obj, &patch); err != nil {
		return models.JobPatch{}, errors.InvalidInput("decode job patch", err)
	}

	for _, name := range c.cleared {
		switch name {
		case "weeklyHours":
			patch.ClearWeeklyHours = true
		case "attachments":
			patch.Attachments = new([]string)
		case "questions":
			patch.Questions = new([]string)
		}
	}

	return patch, nil
}

func (v *Validator) constraintViolations(job models.JobRecord) []errors.Violation {
	err := v.validate.Struct(job)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return []errors.Violation{{Field: "", Message: err.Error()}}
	}

	violations := make([]errors.Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, errors.Violation{
			Field:   fieldPath(fe.Namespace()),
			Message: constraintMessage(fe),
		})
	}
	return violations
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func constraintMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "finite":
		return "must be a finite number"
	}
	return fmt.Sprintf("failed %q constraint", fe.Tag())
}

// mergeViolations appends constraint violations for fields the structural
// pass has not already reported.
func mergeViolations(structural, constraint []errors.Violation) []errors.Violation {
	seen := make(map[string]bool, len(structural))
	for _, v := range structural {
		seen[v.Field] = true
	}

	merged := structural
	for _, v := range constraint {
		if !seen[v.Field] {
			merged = append(merged, v)
		}
	}
	return merged
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.InvalidInput("malformed JSON", err)
	}
	if err := dec.Decode(new(any)); err != io.EOF {
		return nil, errors.InvalidInput("unexpected data after JSON value", err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.InvalidInput("expected a JSON object", nil)
	}
	return obj, nil
}

// isFinite rejects NaN and ±Inf, which have no JSON encoding.
func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func remarshal(obj map[string]any, dst any) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
