package extract

import "fmt"

// Reason categorizes terminal extraction failures.
type Reason int

const (
	// ReasonNotFound means no report text was available at all.
	ReasonNotFound Reason = iota
	// ReasonEmpty means the report text was zero-length or whitespace-only.
	ReasonEmpty
	// ReasonUnparseable means every tier came up empty: no title, no
	// sections, no inventory rows.
	ReasonUnparseable
)

// String returns a human-readable description of the failure reason.
func (r Reason) String() string {
	switch r {
	case ReasonNotFound:
		return "report not found"
	case ReasonEmpty:
		return "report empty"
	case ReasonUnparseable:
		return "report unparseable"
	default:
		return "unknown failure"
	}
}

// Failure is the terminal error surfaced to callers when no tier produced a
// report. Tier-local problems (a sentinel block or sidecar that does not
// parse) are never surfaced; they only trigger fallthrough to the next tier.
type Failure struct {
	Reason  Reason
	Message string
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.Message == "" {
		return f.Reason.String()
	}
	return fmt.Sprintf("%s: %s", f.Reason.String(), f.Message)
}

// Is matches failures by reason for errors.Is.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return f.Reason == t.Reason
}

// NewNotFound creates a not-found failure.
func NewNotFound(message string) *Failure {
	return &Failure{Reason: ReasonNotFound, Message: message}
}

// NewEmpty creates an empty-report failure.
func NewEmpty(message string) *Failure {
	return &Failure{Reason: ReasonEmpty, Message: message}
}

// NewUnparseable creates an unparseable-report failure.
func NewUnparseable(message string) *Failure {
	return &Failure{Reason: ReasonUnparseable, Message: message}
}
