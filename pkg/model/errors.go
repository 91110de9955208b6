package model

import (
	"errors"
	"fmt"
	"strings"
)

// Defining possible error
var (
	ErrNotFound               = errors.New("not found")
	ErrUnsupportedMethod      = errors.New("unsupported method")
	ErrExternalTool           = errors.New("external tool failure")
	ErrQueryNotInCandidateSet = errors.New("query sequence not in candidate set")
	ErrInvalidInput           = errors.New("invalid input")
)

// ToolError is returned when an aligner or clustering subprocess fails.
type ToolError struct {
	Tool   string
	Args   []string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += " - " + stderr
	}
	return msg
}

func (e *ToolError) Unwrap() []error {
	return []error{ErrExternalTool, e.Err}
}
