package errors

import (
	stderrors "errors"
	"testing"
)

func TestWrapPreservesCode(t *testing.T) {
	inner := SourceError("row query failed", stderrors.New("connection reset"))
	wrapped := Wrap(inner, "describe pass failed")

	if GetCode(wrapped) != CodeSourceError {
		t.Errorf("code = %q, want %q", GetCode(wrapped), CodeSourceError)
	}
	if !stderrors.Is(wrapped, inner) {
		t.Error("wrapped error should unwrap to the original")
	}
}

func TestGetCodeUnknownForPlainErrors(t *testing.T) {
	if got := GetCode(stderrors.New("boom")); got != "UNKNOWN" {
		t.Errorf("code = %q, want UNKNOWN", got)
	}
}

func TestDatabaseErrorCarriesCause(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")
	err := DatabaseError("database connection failed", cause)

	if GetCode(err) != CodeDatabaseError {
		t.Errorf("code = %q", GetCode(err))
	}
	if !stderrors.Is(err, cause) {
		t.Error("cause should survive unwrapping")
	}
}
