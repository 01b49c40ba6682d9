package errors

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: NewError(CategoryValidation, "invalid input").Build(), expected: 2},
		{name: "not found", err: NewError(CategoryNotFound, "missing root").Build(), expected: 4},
		{name: "config", err: NewError(CategoryConfig, "bad config").Build(), expected: 7},
		{name: "already exists", err: NewError(CategoryAlreadyExists, "exists").Build(), expected: 7},
		{name: "git", err: NewError(CategoryGit, "not a repo").Build(), expected: 8},
		{name: "filesystem", err: NewError(CategoryFileSystem, "unreadable").Build(), expected: 11},
		{name: "runtime", err: NewError(CategoryRuntime, "watch failed").Build(), expected: 12},
		{name: "internal", err: NewError(CategoryInternal, "bug").Build(), expected: 10},
		{
			name:     "wrapped classified",
			err:      fmt.Errorf("check: %w", NewError(CategoryNotFound, "missing").Build()),
			expected: 4,
		},
		{name: "unclassified", err: &customError{msg: "unknown error"}, expected: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	err := NewError(CategoryNotFound, "scan root does not exist").
		WithContext("path", "/docs").
		WithContext("attempt", 1).
		Build()

	quiet := NewCLIErrorAdapter(false, nil)
	require.Empty(t, quiet.FormatError(nil))
	require.Equal(t, "Error: scan root does not exist (attempt=1, path=/docs)", quiet.FormatError(err))
	require.Equal(t, "Error: unknown error", quiet.FormatError(&customError{msg: "unknown error"}))

	verbose := NewCLIErrorAdapter(true, nil)
	require.Equal(t, "Error: [not_found:error] scan root does not exist", verbose.FormatError(err))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out, logs bytes.Buffer
	adapter := NewCLIErrorAdapter(true, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(nil)
	require.Equal(t, -1, code)

	adapter.HandleError(WrapError(&customError{msg: "denied"}, CategoryFileSystem, "failed to read document").Build())
	require.Equal(t, 11, code)
	require.Contains(t, out.String(), "failed to read document: denied")
	require.Contains(t, logs.String(), "category=filesystem")
	require.Contains(t, logs.String(), "severity=error")
	require.Contains(t, logs.String(), "cause=denied")
}

// customError is a test helper for unclassified errors
type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}
