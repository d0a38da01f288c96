package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for common engine error conditions.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrInvalidType indicates an unknown enum value (context type, agent
	// role, or status) was supplied during construction or deserialization.
	ErrInvalidType = errors.New("invalid type")

	// ErrOutOfRange indicates a numeric field was outside its documented
	// range (importance, success rate, memory size, confidence).
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvalidRelationship indicates a structurally invalid relationship
	// graph (a self-parenting context, a parent listed among its own
	// children, or duplicate child/reference identifiers).
	ErrInvalidRelationship = errors.New("invalid relationship")

	// ErrInteractionNotFound indicates a feedback record referenced an
	// interaction id that is not present in the store. Store mutators treat
	// this as a silent no-op; the sentinel exists for callers that probe.
	ErrInteractionNotFound = errors.New("interaction not found")

	// ErrMalformedPayload indicates a serialized entity could not be parsed.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrInvalidConfig indicates the provided configuration is invalid or
	// contains unknown keys.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Error kinds categorize errors by their type.
const (
	// KindValidation represents malformed construction input: a bad enum
	// value, an out-of-range numeric, or a wrong container type. Validation
	// errors are always surfaced to the caller, never silently coerced.
	KindValidation = "validation"

	// KindNotFound represents errors where a referenced record was not found.
	KindNotFound = "not_found"

	// KindDeserialization represents a malformed serialized payload. The
	// failure is fatal to the single deserialize call and never corrupts an
	// already-loaded entity.
	KindDeserialization = "deserialization"

	// KindInternal represents internal engine errors.
	KindInternal = "internal"
)

// Error is a structured error type that wraps underlying errors with
// additional context about the operation that failed and the category of
// error.
//
// Error implements the error interface and supports error unwrapping,
// making it compatible with errors.Is() and errors.As().
//
// Example usage:
//
//	err := &engine.Error{
//		Op:   "knowledge.FromJSON",
//		Kind: engine.KindDeserialization,
//		Err:  engine.ErrMalformedPayload,
//	}
type Error struct {
	// Op is the operation that failed (e.g., "Store.RecordFeedback",
	// "knowledge.NewContext").
	Op string

	// Kind categorizes the error (e.g., KindValidation, KindNotFound).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides additional context about the error (optional).
	// This can include entity IDs, field names, or offending values.
	Context map[string]any
}

// Error implements the error interface, returning a formatted error message
// that includes the operation, kind, and underlying error.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("engine: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("engine: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("engine: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error, allowing errors.Is() and errors.As()
// to work correctly with wrapped errors.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error matching for Error, allowing comparison based on
// the underlying error or the Error itself.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	// Check if target is an Error with matching Kind
	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	// Delegate to underlying error
	return errors.Is(e.Err, target)
}

// WithContext returns a new Error with the provided context added.
// This is useful for adding debugging information to errors.
//
// Example:
//
//	err := engine.NewValidationError("agent.FromJSON", engine.ErrOutOfRange)
//	err = err.WithContext(map[string]any{
//		"field": "successRate",
//		"value": 1.7,
//	})
func (e *Error) WithContext(ctx map[string]any) *Error {
	newErr := *e
	if newErr.Context == nil {
		newErr.Context = make(map[string]any)
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// NewValidationError creates a new Error with KindValidation.
func NewValidationError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindValidation,
		Err:  err,
	}
}

// NewNotFoundError creates a new Error with KindNotFound.
func NewNotFoundError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindNotFound,
		Err:  err,
	}
}

// NewDeserializationError creates a new Error with KindDeserialization.
func NewDeserializationError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindDeserialization,
		Err:  err,
	}
}

// NewInternalError creates a new Error with KindInternal.
func NewInternalError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindInternal,
		Err:  err,
	}
}
