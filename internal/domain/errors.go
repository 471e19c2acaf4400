package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// TransportError reports a failed fetch: network failure or a non-success
// HTTP status. It is recoverable; the next poll cycle retries.
type TransportError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d from %s", e.Op, e.StatusCode, e.URL)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NotFoundError reports that a thread could not be resolved.
type NotFoundError struct {
	Input string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("thread not found: %s", e.Input)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ParseError describes a single malformed listing record. The record is
// skipped; its siblings are unaffected.
type ParseError struct {
	Index  int
	ID     string
	Reason string
}

func (e *ParseError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("record %d (%s): %s", e.Index, e.ID, e.Reason)
	}
	return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
}

// RenderError reports a paint that could not be completed as requested,
// usually because the terminal is too small. Output is clipped instead.
type RenderError struct {
	Width  int
	Height int
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("terminal too small: %dx%d", e.Width, e.Height)
}
