// Package errors defines the stable error codes and the structured error
// type used at spat's store and CLI boundaries. Core analysis never fails
// fatally: parse problems are recovered per declaration, resolution misses
// are nil identities, and missing metadata defaults to zero values. The
// codes here cover the remaining failure modes.
package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// PackageNotFound indicates the requested package is not in the graph or store
	PackageNotFound ErrorCode = "PACKAGE_NOT_FOUND"
	// DatasetEmpty indicates no completed repositories are available to analyze
	DatasetEmpty ErrorCode = "DATASET_EMPTY"
	// StoreUnavailable indicates the package database could not be opened
	StoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	// InvalidState indicates an unknown migration state name
	InvalidState ErrorCode = "INVALID_STATE"
	// IngestFailed indicates a dataset file could not be loaded
	IngestFailed ErrorCode = "INGEST_FAILED"
	// ExportFailed indicates an export could not be written
	ExportFailed ErrorCode = "EXPORT_FAILED"
	// InvalidArgument indicates a malformed command argument
	InvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// SpatError represents a spat error with code, message, and suggestions
type SpatError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new SpatError with suggested fixes looked up from the
// action catalog.
func New(code ErrorCode, message string, cause error) *SpatError {
	return &SpatError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *SpatError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SpatError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *SpatError) WithDetails(details interface{}) *SpatError {
	e.Details = details
	return e
}

// CodeOf returns the error code carried by err, or InternalError for plain
// errors.
func CodeOf(err error) ErrorCode {
	if se, ok := err.(*SpatError); ok {
		return se.Code
	}
	return InternalError
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	DatasetEmpty: {
		{
			Type:        RunCommand,
			Command:     "spat import --urls packages.csv",
			Safe:        true,
			Description: "Load a repository URL list into the store",
		},
	},
	StoreUnavailable: {
		{
			Type:        RunCommand,
			Command:     "spat init",
			Safe:        true,
			Description: "Initialize the .spat directory and package database",
		},
	},
	PackageNotFound: {
		{
			Type:        RunCommand,
			Command:     "spat impact --format json",
			Safe:        true,
			Description: "List the packages known to the dependency graph",
		},
	},
	InvalidState: {
		{
			Type:        RunCommand,
			Command:     "spat states list",
			Safe:        true,
			Description: "Show the valid migration states",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
