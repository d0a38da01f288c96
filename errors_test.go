package engine

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestSentinelErrors verifies that all sentinel errors are defined correctly.
func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "ErrInvalidType",
			err:  ErrInvalidType,
			want: "invalid type",
		},
		{
			name: "ErrOutOfRange",
			err:  ErrOutOfRange,
			want: "value out of range",
		},
		{
			name: "ErrInvalidRelationship",
			err:  ErrInvalidRelationship,
			want: "invalid relationship",
		},
		{
			name: "ErrInteractionNotFound",
			err:  ErrInteractionNotFound,
			want: "interaction not found",
		},
		{
			name: "ErrMalformedPayload",
			err:  ErrMalformedPayload,
			want: "malformed payload",
		},
		{
			name: "ErrInvalidConfig",
			err:  ErrInvalidConfig,
			want: "invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatalf("sentinel error %s is nil", tt.name)
			}
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("error message = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestErrorError verifies the Error() method formatting.
func TestErrorError(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "basic error",
			err: &Error{
				Op:   "knowledge.NewContext",
				Kind: KindValidation,
				Err:  ErrInvalidType,
			},
			want: "engine: knowledge.NewContext (validation): invalid type",
		},
		{
			name: "error without underlying error",
			err: &Error{
				Op:   "Store.Restore",
				Kind: KindDeserialization,
			},
			want: "engine: Store.Restore: deserialization",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestErrorErrorWithContext verifies context appears in the message.
func TestErrorErrorWithContext(t *testing.T) {
	err := &Error{
		Op:   "agent.FromJSON",
		Kind: KindValidation,
		Err:  ErrOutOfRange,
		Context: map[string]any{
			"field": "successRate",
		},
	}

	got := err.Error()
	if !strings.Contains(got, "successRate") {
		t.Errorf("Error() = %q, want context field in message", got)
	}
	if !strings.Contains(got, "agent.FromJSON") {
		t.Errorf("Error() = %q, want operation in message", got)
	}
}

// TestErrorUnwrap verifies error unwrapping works with errors.Is.
func TestErrorUnwrap(t *testing.T) {
	underlying := fmt.Errorf("decode importance: %w", ErrOutOfRange)
	err := NewValidationError("knowledge.FromJSON", underlying)

	if !errors.Is(err, ErrOutOfRange) {
		t.Error("errors.Is() did not match wrapped sentinel")
	}

	if got := errors.Unwrap(err); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}
}

// TestErrorIs verifies kind-based matching between Error values.
func TestErrorIs(t *testing.T) {
	err := NewDeserializationError("Store.Restore", ErrMalformedPayload)

	// Kind-only target matches regardless of Op.
	if !errors.Is(err, &Error{Kind: KindDeserialization}) {
		t.Error("errors.Is() did not match by kind")
	}

	// Kind+Op target requires both to match.
	if errors.Is(err, &Error{Kind: KindDeserialization, Op: "other.Op"}) {
		t.Error("errors.Is() matched with mismatched op")
	}

	if errors.Is(err, &Error{Kind: KindValidation}) {
		t.Error("errors.Is() matched wrong kind")
	}
}

// TestErrorWithContext verifies WithContext does not mutate the original.
func TestErrorWithContext(t *testing.T) {
	orig := NewNotFoundError("Store.RecordFeedback", ErrInteractionNotFound)

	withCtx := orig.WithContext(map[string]any{
		"interaction_id": "01ARZ3NDEKTSV4RRFFQ69G5FAV",
	})

	if orig.Context != nil {
		t.Error("WithContext() mutated the original error")
	}
	if withCtx.Context["interaction_id"] != "01ARZ3NDEKTSV4RRFFQ69G5FAV" {
		t.Error("WithContext() did not attach context")
	}
}

// TestErrorConstructors verifies each constructor sets the expected kind.
func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind string
	}{
		{"validation", NewValidationError("op", ErrInvalidType), KindValidation},
		{"not_found", NewNotFoundError("op", ErrInteractionNotFound), KindNotFound},
		{"deserialization", NewDeserializationError("op", ErrMalformedPayload), KindDeserialization},
		{"internal", NewInternalError("op", errors.New("boom")), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", tt.err.Kind, tt.kind)
			}
			if tt.err.Op != "op" {
				t.Errorf("Op = %q, want %q", tt.err.Op, "op")
			}
		})
	}
}
