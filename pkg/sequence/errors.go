package sequence

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrEmptySequence   = errors.New("sequence must declare at least one step")
	ErrNoNextStep      = errors.New("step is the last step of the sequence")
	ErrSessionComplete = errors.New("session already completed the sequence")
	ErrRunnerMustBeSet = errors.New("runner must be set")
	ErrSpecMustBeSet   = errors.New("spec must be set")
)

// UnknownStepError reports a lookup by a step id that is not declared.
type UnknownStepError struct {
	ID string
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("unknown step id %q", e.ID)
}

// TypeMismatchError reports a field whose declared type and actual value
// disagree, or a required field that is absent (Got is empty then).
type TypeMismatchError struct {
	Field string
	Want  Kind
	Got   string
}

func (e *TypeMismatchError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("field %q: missing required %s value", e.Field, e.Want)
	}

	return fmt.Sprintf("field %q: want %s, got %s", e.Field, e.Want, e.Got)
}

// UnknownFieldError reports an extra caller-supplied field rejected under
// strict verification.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("field %q is not part of the step contract", e.Field)
}

// ComputationError reports a runner failure for one step. The underlying
// cause is preserved for errors.Is/As.
type ComputationError struct {
	StepID string
	Err    error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("step %q: computation failed: %v", e.StepID, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

// ValidationError reports one connectivity mismatch between two adjacent
// steps: the downstream step declares an input whose name matches an
// upstream output but whose type differs.
type ValidationError struct {
	StepID string
	Field  string
	Want   Kind
	Got    Kind
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %q: input %q declared as %s but produced upstream as %s", e.StepID, e.Field, e.Got, e.Want)
}

// ValidationErrors accumulates every problem found in a sequence
// declaration so a single validation pass reports all of them.
type ValidationErrors []error

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}

	return fmt.Sprintf("invalid sequence: %s", strings.Join(msgs, "; "))
}

// Unwrap exposes the individual errors to errors.Is/As.
func (e ValidationErrors) Unwrap() []error { return e }

// MissingColumnsError reports batch input lacking required columns.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("batch input is missing required columns: %s", strings.Join(e.Columns, ", "))
}

// RowError attaches a failure to one batch row. Row is the zero-based index
// in the input table.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// BatchKindError reports a batch target involving a step whose contract
// carries a payload kind that cannot live in a tabular cell.
type BatchKindError struct {
	StepID string
	Field  string
	Kind   Kind
}

func (e *BatchKindError) Error() string {
	return fmt.Sprintf("step %q: field %q has kind %s, which cannot be carried by tabular rows", e.StepID, e.Field, e.Kind)
}
