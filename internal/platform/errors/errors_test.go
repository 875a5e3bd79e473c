package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	base := New(CodeNotFound, "paper not found")
	other := New(CodeNotFound, "contributor not found")

	if !errors.Is(other, base) {
		t.Fatal("expected errors with the same code to match")
	}
	if errors.Is(New(CodeUnauthorized, "nope"), base) {
		t.Fatal("expected different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(CodeUnknown, "persist paper", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be found in chain")
	}
	if err.Error() != "persist paper" {
		t.Fatalf("expected message, got %q", err.Error())
	}
}

func TestWithMetadata(t *testing.T) {
	err := WithMetadata(CodeInvalidTransition, "transition not allowed", map[string]string{
		"FromState": "SUBMITTED",
		"Action":    "accept",
	})
	if err.Metadata["FromState"] != "SUBMITTED" {
		t.Fatalf("expected metadata preserved, got %v", err.Metadata)
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", New(CodeDuplicateContributor, "already registered"))
	if code := CodeOf(wrapped); code != CodeDuplicateContributor {
		t.Fatalf("expected duplicate contributor code, got %s", code)
	}
	if code := CodeOf(fmt.Errorf("plain")); code != CodeUnknown {
		t.Fatalf("expected unknown code, got %s", code)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeTitleEmpty, http.StatusBadRequest},
		{CodeDuplicateContributor, http.StatusConflict},
		{CodeInvalidTransition, http.StatusConflict},
		{CodeUnauthorized, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeUnknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.status {
			t.Fatalf("code %s: expected status %d, got %d", tt.code, tt.status, got)
		}
	}
}
