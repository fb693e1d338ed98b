package herd

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoEligiblePatientZero is returned by grid construction when the
// vaccination pass left no susceptible cell to seed the outbreak.
var ErrNoEligiblePatientZero = errors.New("no eligible patient zero: every cell is immune")

// ParameterError reports a model parameter outside its valid range.
// Construction fails fast; parameters are never silently clamped.
type ParameterError struct {
	Name   string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Name, e.Reason)
}

// DimensionError reports non-positive grid dimensions.
type DimensionError struct {
	Width  int
	Height int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("invalid dimensions %dx%d: width and height must be positive", e.Width, e.Height)
}

// ValidationError collects multiple validation issues so that a caller sees
// every problem with a model or run config at once.
type ValidationError struct {
	Issues []error
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0].Error()
	}
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Error()
	}
	return "validation errors: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual issues to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	return e.Issues
}

func (e *ValidationError) Add(issue error) {
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// ErrOrNil returns the error if any issue was recorded, nil otherwise.
func (e *ValidationError) ErrOrNil() error {
	if e.HasIssues() {
		return e
	}
	return nil
}
