package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("disk full")

	err := New(PersistenceFailure, "record visit", cause)

	if err.Code != PersistenceFailure {
		t.Errorf("Code = %v, want %v", err.Code, PersistenceFailure)
	}
	if err.Message != "record visit" {
		t.Errorf("Message = %q, want %q", err.Message, "record visit")
	}
	if len(err.SuggestedFixes) != 1 {
		t.Errorf("len(SuggestedFixes) = %d, want 1", len(err.SuggestedFixes))
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestXnavError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      PersistenceFailure,
			message:   "open database",
			cause:     errors.New("permission denied"),
			wantParts: []string{"PERSISTENCE_FAILURE", "open database", "permission denied"},
		},
		{
			name:      "without cause",
			code:      PathNotFound,
			message:   "no match for 'proj'",
			wantParts: []string{"PATH_NOT_FOUND", "no match for 'proj'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.code, tt.message, tt.cause).Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, should contain %q", got, part)
				}
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("resolve: %w", Newf(PathNotFound, "bookmark %q is stale", "work"))

	if got := CodeOf(wrapped); got != PathNotFound {
		t.Errorf("CodeOf(wrapped) = %v, want %v", got, PathNotFound)
	}
	if got := CodeOf(errors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %v, want %v", got, InternalError)
	}
	if got := CodeOf(nil); got != "" {
		t.Errorf("CodeOf(nil) = %v, want empty", got)
	}
	if !HasCode(wrapped, PathNotFound) {
		t.Error("HasCode should see PATH_NOT_FOUND through wrapping")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := Newf(PathNotFound, "no match for %q", "x")
	if !errors.Is(err, &XnavError{Code: PathNotFound}) {
		t.Error("errors.Is should match on code")
	}
	if errors.Is(err, &XnavError{Code: ConfigInvalid}) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestWithFixDoesNotMutateTable(t *testing.T) {
	before := len(ErrorActions[PathNotFound])
	_ = New(PathNotFound, "stale", nil).WithFix(FixAction{Type: RunCommand, Command: "xnav bookmark remove work"})
	if after := len(ErrorActions[PathNotFound]); after != before {
		t.Errorf("ErrorActions[PathNotFound] grew from %d to %d", before, after)
	}
}

func TestGetSuggestedFixes(t *testing.T) {
	if fixes := GetSuggestedFixes(ConfigInvalid); len(fixes) == 0 {
		t.Error("ConfigInvalid should have suggested fixes")
	}
	if fixes := GetSuggestedFixes(Ignored); fixes != nil {
		t.Errorf("Ignored should have no fixes, got %v", fixes)
	}
}
