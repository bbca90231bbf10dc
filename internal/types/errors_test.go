package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_FormatsCodeAndMessage(t *testing.T) {
	err := NewAppError(ErrCodeWriteFailed, "encoding composite", nil)
	if got := err.Error(); got != "write_failed: encoding composite" {
		t.Fatalf("Error() = %q", got)
	}

	wrapped := NewAppError(ErrCodeFetchFailed, "downloading", errors.New("timeout"))
	if got := wrapped.Error(); got != "fetch_failed: downloading: timeout" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestAppError_UnwrapSupportsErrorsIs(t *testing.T) {
	inner := errors.New("connection refused")
	err := fmt.Errorf("tick failed: %w", NewAppError(ErrCodeFetchFailed, "downloading", inner))

	if !errors.Is(err, inner) {
		t.Fatal("errors.Is does not reach the wrapped cause")
	}
	if CodeOf(err) != ErrCodeFetchFailed {
		t.Fatalf("CodeOf = %s, want %s", CodeOf(err), ErrCodeFetchFailed)
	}
}

func TestCodeOf_NonAppError(t *testing.T) {
	if CodeOf(errors.New("plain")) != "" {
		t.Fatal("CodeOf must be empty for non-AppError chains")
	}
	if CodeOf(nil) != "" {
		t.Fatal("CodeOf must be empty for nil")
	}
}
