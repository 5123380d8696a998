package balotilo

import (
	"fmt"
	"strings"
)

var ErrLoginFailed = fmt.Errorf("failed to login to your account")

// DiscoveryError means an expected fragment identifier was absent from a
// server response. Zero matches is an error, not an empty result: assembly
// cannot proceed without the identifier.
type DiscoveryError struct {
	Marker string
	Scope  string
}

func (e *DiscoveryError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("no identifier matching %q found in scope %q", e.Marker, e.Scope)
	}
	return fmt.Sprintf("no identifier matching %q found in fragment", e.Marker)
}

// SubmissionError means the server returned the creation form again instead
// of redirecting, usually with validation errors.
type SubmissionError struct {
	StatusCode  int
	FieldErrors []string
	Flash       string
	Excerpt     string
}

func (e *SubmissionError) Error() string {
	msg := fmt.Sprintf("election creation rejected (status %d)", e.StatusCode)
	if len(e.FieldErrors) > 0 {
		msg += ": " + strings.Join(e.FieldErrors, "; ")
	}
	if e.Flash != "" {
		msg += " [flash: " + e.Flash + "]"
	}
	return msg
}

// ImportError means the voter import did not redirect away from the editor.
type ImportError struct {
	StatusCode int
	Location   string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf(
		"voter import failed (status %d, location %q)",
		e.StatusCode, e.Location,
	)
}
