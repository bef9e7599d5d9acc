package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("underlying error")

	err := New(DatasetEmpty, "no completed repositories in store", cause)

	if err.Code != DatasetEmpty {
		t.Errorf("Code = %v, want %v", err.Code, DatasetEmpty)
	}
	if err.Message != "no completed repositories in store" {
		t.Errorf("Message = %q", err.Message)
	}
	if len(err.SuggestedFixes) == 0 {
		t.Error("DatasetEmpty should carry suggested fixes from the catalog")
	}
	if err.SuggestedFixes[0].Type != RunCommand {
		t.Errorf("fix Type = %v, want %v", err.SuggestedFixes[0].Type, RunCommand)
	}
}

func TestSpatError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      StoreUnavailable,
			message:   "cannot open package database",
			cause:     errors.New("unable to open database file"),
			wantParts: []string{"STORE_UNAVAILABLE", "cannot open package database", "unable to open database file"},
		},
		{
			name:      "without cause",
			code:      PackageNotFound,
			message:   "package 'org/missing' not found",
			cause:     nil,
			wantParts: []string{"PACKAGE_NOT_FOUND", "package 'org/missing' not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.cause)
			got := err.Error()

			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, missing %q", got, part)
				}
			}
		})
	}
}

func TestSpatError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := New(ExportFailed, "cannot write export", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	bare := New(InvalidState, "unknown state", nil)
	if bare.Unwrap() != nil {
		t.Error("Unwrap of error without cause should be nil")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(InvalidState, "unknown state", nil).
		WithDetails(map[string]string{"state": "finished"})

	details, ok := err.Details.(map[string]string)
	if !ok {
		t.Fatalf("Details type = %T, want map[string]string", err.Details)
	}
	if details["state"] != "finished" {
		t.Errorf("Details[state] = %q, want finished", details["state"])
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(DatasetEmpty, "empty", nil)); got != DatasetEmpty {
		t.Errorf("CodeOf(SpatError) = %v, want %v", got, DatasetEmpty)
	}
	if got := CodeOf(errors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain error) = %v, want %v", got, InternalError)
	}
}

func TestGetSuggestedFixes(t *testing.T) {
	t.Run("known code", func(t *testing.T) {
		fixes := GetSuggestedFixes(StoreUnavailable)
		if len(fixes) == 0 {
			t.Fatal("StoreUnavailable should have suggested fixes")
		}
		if !strings.Contains(fixes[0].Command, "spat init") {
			t.Errorf("fix command = %q, want spat init suggestion", fixes[0].Command)
		}
	})

	t.Run("code without fixes", func(t *testing.T) {
		if fixes := GetSuggestedFixes(InternalError); fixes != nil {
			t.Errorf("InternalError fixes = %v, want nil", fixes)
		}
	})
}
