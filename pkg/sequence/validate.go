package sequence

import (
	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
)

// Validate checks the sequence declaration before any execution is
// accepted: at least one step, unique step ids, well-formed field templates
// and type-compatible connectivity between adjacent steps.
//
// Every problem found is accumulated and reported together, so one pass over
// a broken configuration yields the full list of things to fix.
func (s *Spec) Validate() error {
	if len(s.Steps) == 0 {
		return ErrEmptySequence
	}

	var problems ValidationErrors

	// The chain is modelled as a directed graph so duplicate ids surface as
	// vertex collisions, the same way the drawer builds its topology.
	chain := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	for i := range s.Steps {
		step := &s.Steps[i]
		if step.ID == "" {
			problems = append(problems, errors.Errorf("step %d: id must not be empty", i))

			continue
		}
		if err := chain.AddVertex(step.ID); err != nil {
			if errors.Is(err, graph.ErrVertexAlreadyExists) {
				problems = append(problems, errors.Errorf("step %q: duplicate step id", step.ID))
			} else {
				problems = append(problems, errors.Wrapf(err, "step %q", step.ID))
			}
		}

		problems = append(problems, checkTemplates(step.ID, "input", step.InputFeatures)...)
		problems = append(problems, checkTemplates(step.ID, "output", step.OutputTemplate)...)
	}

	for i := 0; i < len(s.Steps)-1; i++ {
		current, next := &s.Steps[i], &s.Steps[i+1]

		produced := make(map[string]Kind, len(current.OutputTemplate))
		for _, tmpl := range current.OutputTemplate {
			produced[tmpl.Name] = tmpl.Type
		}

		// Inputs with no same-named upstream output are extra inputs the
		// caller supplies at that step; only shared names must agree.
		for _, tmpl := range next.InputFeatures {
			upstream, ok := produced[tmpl.Name]
			if ok && upstream != tmpl.Type {
				problems = append(problems, &ValidationError{
					StepID: next.ID,
					Field:  tmpl.Name,
					Want:   upstream,
					Got:    tmpl.Type,
				})
			}
		}

		// Edge failures only repeat vertex problems already reported.
		_ = chain.AddEdge(current.ID, next.ID)
	}

	if len(problems) > 0 {
		return problems
	}

	return nil
}

func checkTemplates(stepID, role string, templates []FieldTemplate) []error {
	var problems []error

	seen := make(map[string]struct{}, len(templates))
	for _, tmpl := range templates {
		if tmpl.Name == "" {
			problems = append(problems, errors.Errorf("step %q: %s template with empty field name", stepID, role))

			continue
		}
		if _, ok := seen[tmpl.Name]; ok {
			problems = append(problems, errors.Errorf("step %q: duplicate %s field %q", stepID, role, tmpl.Name))
		}
		seen[tmpl.Name] = struct{}{}

		if !tmpl.Type.Known() {
			problems = append(problems, errors.Errorf("step %q: %s field %q has unsupported kind %q", stepID, role, tmpl.Name, tmpl.Type))

			continue
		}
		if tmpl.Default != nil {
			if err := checkValue(tmpl.Name, tmpl.Type, tmpl.Default); err != nil {
				problems = append(problems, errors.Wrapf(err, "step %q: %s field default", stepID, role))
			}
		}
	}

	return problems
}

// ChainedFields returns the names of the fields that flow from one step's
// output into the next step's input, in the downstream declaration order.
func ChainedFields(current, next *StepSpec) []string {
	produced := make(map[string]struct{}, len(current.OutputTemplate))
	for _, tmpl := range current.OutputTemplate {
		produced[tmpl.Name] = struct{}{}
	}

	var chained []string
	for _, tmpl := range next.InputFeatures {
		if _, ok := produced[tmpl.Name]; ok {
			chained = append(chained, tmpl.Name)
		}
	}

	return chained
}
