package sequence

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Executor orchestrates the execution of a validated sequence: one step at a
// time, or front to back. It holds no per-run state and is safe for
// concurrent use across independent calls.
type Executor struct {
	spec     *Spec
	runner   Runner
	verifier *Verifier
}

// ExecutorOption configures an Executor.
type ExecutorOption func(e *Executor)

// WithVerifier replaces the default permissive verifier.
func WithVerifier(v *Verifier) ExecutorOption {
	return func(e *Executor) {
		e.verifier = v
	}
}

// NewExecutor validates the spec and creates an executor over it. A spec
// that fails validation is rejected here, before any traffic is accepted.
func NewExecutor(spec *Spec, runner Runner, opts ...ExecutorOption) (*Executor, error) {
	if spec == nil {
		return nil, ErrSpecMustBeSet
	}
	if runner == nil {
		return nil, ErrRunnerMustBeSet
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	exec := &Executor{
		spec:     spec,
		runner:   runner,
		verifier: NewVerifier(),
	}
	for _, opt := range opts {
		opt(exec)
	}

	return exec, nil
}

// Spec returns the validated sequence declaration.
func (e *Executor) Spec() *Spec { return e.spec }

// StepResult is the outcome of running one step, with enough metadata for a
// caller to decide what to do next.
type StepResult struct {
	StepID     string
	StepName   string
	Output     []Field
	IsLast     bool
	NextStepID string
	Duration   time.Duration
}

// RunStep verifies input against the step's input contract, invokes the
// runner and verifies its output against the step's output contract. A
// rejected input never reaches the runner.
func (e *Executor) RunStep(ctx context.Context, stepID string, input []Field) (*StepResult, error) {
	idx := e.spec.indexOf(stepID)
	if idx < 0 {
		return nil, &UnknownStepError{ID: stepID}
	}
	step := &e.spec.Steps[idx]

	if err := e.verifier.VerifyAgainst(step.InputFeatures, input); err != nil {
		return nil, errors.Wrapf(err, "step %q input", stepID)
	}

	start := time.Now()
	output, err := e.runner.Run(ctx, stepID, input)
	if err != nil {
		return nil, &ComputationError{StepID: stepID, Err: err}
	}

	// Runner output is untrusted until it matches the declared contract.
	if err := e.verifier.VerifyAgainst(step.OutputTemplate, output); err != nil {
		return nil, errors.Wrapf(err, "step %q output", stepID)
	}

	result := &StepResult{
		StepID:   stepID,
		StepName: step.Name,
		Output:   output,
		IsLast:   idx == len(e.spec.Steps)-1,
		Duration: time.Since(start),
	}
	if !result.IsLast {
		result.NextStepID = e.spec.Steps[idx+1].ID
	}

	return result, nil
}

// PrepareNext projects the output of the given step onto the input contract
// of the step that follows it: chained fields keep their just-produced
// values, everything else falls back to the template default. The caller
// never has to resend prior outputs verbatim.
func (e *Executor) PrepareNext(currentStepID string, currentOutput []Field) ([]Field, error) {
	idx := e.spec.indexOf(currentStepID)
	if idx < 0 {
		return nil, &UnknownStepError{ID: currentStepID}
	}
	if idx == len(e.spec.Steps)-1 {
		return nil, errors.Wrapf(ErrNoNextStep, "step %q", currentStepID)
	}

	if err := e.verifier.Verify(currentOutput); err != nil {
		return nil, errors.Wrapf(err, "step %q output", currentStepID)
	}

	next := &e.spec.Steps[idx+1]
	produced := byName(currentOutput)

	projected := make([]Field, 0, len(next.InputFeatures))
	for _, tmpl := range next.InputFeatures {
		if field, ok := produced[tmpl.Name]; ok {
			// Type compatibility of chained fields is guaranteed by the
			// sequence validation.
			projected = append(projected, field)

			continue
		}
		projected = append(projected, tmpl.defaultField())
	}

	return projected, nil
}

// Result is the outcome of running a full sequence.
type Result struct {
	Output   []Field
	Duration time.Duration
}

// RunAll runs every step front to back, threading each output into the next
// step's input, and returns only the final step's output. Execution is
// strictly sequential: a step's input is only defined once its predecessor's
// output has been verified.
func (e *Executor) RunAll(ctx context.Context, input []Field) (*Result, error) {
	start := time.Now()

	current := input
	var last *StepResult
	for i := range e.spec.Steps {
		stepID := e.spec.Steps[i].ID

		result, err := e.RunStep(ctx, stepID, current)
		if err != nil {
			return nil, err
		}
		last = result

		if result.IsLast {
			break
		}
		current, err = e.PrepareNext(stepID, result.Output)
		if err != nil {
			return nil, err
		}
	}

	return &Result{Output: last.Output, Duration: time.Since(start)}, nil
}
