package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeDuplicateKey ErrorType = "DUPLICATE_KEY"
	ErrTypeStorage      ErrorType = "STORAGE"
	ErrTypeInvalidInput ErrorType = "INVALID_INPUT"
	ErrTypeInternal     ErrorType = "INTERNAL"
)

// Violation is a single failed constraint, addressed by its external field path
// (e.g. "clientHistory.verificationStatus.phone").
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type DomainError struct {
	Type       ErrorType
	Message    string
	Err        error
	Stack      []byte
	Violations []Violation
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

// Validation builds a VALIDATION error whose message lists every violation.
func Validation(violations []Violation) *DomainError {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, v.String())
	}

	e := New(ErrTypeValidation, "validation failed: "+strings.Join(parts, "; "), nil)
	e.Violations = violations
	return e
}

func DuplicateKey(id string, err error) *DomainError {
	return New(ErrTypeDuplicateKey, fmt.Sprintf("job %q already exists", id), err)
}

func Storage(message string, err error) *DomainError {
	return New(ErrTypeStorage, message, err)
}

func InvalidInput(message string, err error) *DomainError {
	return New(ErrTypeInvalidInput, message, err)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

// TypeOf returns the type of the first DomainError in err's chain, or "" if none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Type
	}
	return ""
}

func IsValidation(err error) bool {
	return TypeOf(err) == ErrTypeValidation
}

func IsDuplicateKey(err error) bool {
	return TypeOf(err) == ErrTypeDuplicateKey
}

func IsStorage(err error) bool {
	return TypeOf(err) == ErrTypeStorage
}

func ViolationsOf(err error) []Violation {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Violations
	}
	return nil
}
