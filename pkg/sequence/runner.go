package sequence

import (
	"context"
	"sync"
)

// Runner is the boundary to the operator-supplied computation of a step.
//
// The engine guarantees input has been verified against the step's input
// contract before Run is called, and re-verifies the returned fields against
// the step's output contract before trusting them. Run must not retain the
// input slice.
type Runner interface {
	Run(ctx context.Context, stepID string, input []Field) ([]Field, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, stepID string, input []Field) ([]Field, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, stepID string, input []Field) ([]Field, error) {
	return f(ctx, stepID, input)
}

// Registry dispatches to a runner registered per step id, so each step's
// implementation stays independent of the others. A fallback runner, when
// set, handles ids with no dedicated registration.
type Registry struct {
	mu       sync.RWMutex
	runners  map[string]RunnerFunc
	fallback RunnerFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{runners: make(map[string]RunnerFunc)}
}

// Register binds a runner to a step id, replacing any previous binding.
func (r *Registry) Register(stepID string, fn RunnerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runners[stepID] = fn
}

// SetFallback binds the runner used for step ids with no registration.
func (r *Registry) SetFallback(fn RunnerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = fn
}

// Run dispatches to the runner registered for stepID.
func (r *Registry) Run(ctx context.Context, stepID string, input []Field) ([]Field, error) {
	r.mu.RLock()
	fn, ok := r.runners[stepID]
	if !ok {
		fn = r.fallback
	}
	r.mu.RUnlock()

	if fn == nil {
		return nil, &UnknownStepError{ID: stepID}
	}

	return fn(ctx, stepID, input)
}

// TemplateRunner returns a runner that answers every step with its declared
// output template: the declared default where one exists, a placeholder
// value otherwise. It stands in for real model services during development
// and in tests.
func TemplateRunner(spec *Spec) Runner {
	return RunnerFunc(func(_ context.Context, stepID string, _ []Field) ([]Field, error) {
		step, ok := spec.StepByID(stepID)
		if !ok {
			return nil, &UnknownStepError{ID: stepID}
		}

		score := 0.5
		if spec.indexOf(stepID) > 0 {
			score = 0.8
		}

		output := make([]Field, 0, len(step.OutputTemplate))
		for _, tmpl := range step.OutputTemplate {
			field := tmpl.defaultField()
			if tmpl.Default == nil {
				switch tmpl.Type {
				case KindString:
					field.Value = "predicted_value_from_" + stepID
				case KindFloat:
					field.Value = score
				case KindInt:
					field.Value = int64(1)
				case KindPlot:
					field.Value = Plot{
						X:      []float64{0, 1, 2, 3},
						Y:      []float64{0, 1, 4, 9},
						XLabel: "X-axis",
						YLabel: "Y-axis",
					}
				}
			}
			output = append(output, field)
		}

		return output, nil
	})
}
