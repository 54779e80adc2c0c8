package sequence

// FieldTemplate declares one field of a step contract: its name, its kind
// and, for inputs, the value used when neither the upstream step nor the
// caller supplies one.
type FieldTemplate struct {
	Name    string `json:"name"`
	Type    Kind   `json:"type"`
	Default any    `json:"default_value,omitempty"`
}

// defaultField materialises the template as a field, falling back to the
// zero value of the kind when no default is declared.
func (t FieldTemplate) defaultField() Field {
	value := t.Default
	if value == nil {
		switch t.Type {
		case KindInt:
			value = int64(0)
		case KindFloat:
			value = float64(0)
		case KindString, KindImage:
			value = ""
		case KindPlot:
			value = Plot{X: []float64{}, Y: []float64{}}
		}
	}

	return Field{Name: t.Name, Type: t.Type, Value: value}
}

// StepSpec declares one step of a sequence. The ID is the sole key used for
// lookup and cross-referencing; it must be unique within a sequence and
// never change once declared.
type StepSpec struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	InputFeatures  []FieldTemplate `json:"input_features"`
	OutputTemplate []FieldTemplate `json:"output_template"`
}

// usesKind reports whether the step mentions the given kind anywhere in its
// input or output contract.
func (s *StepSpec) usesKind(kinds ...Kind) (string, bool) {
	for _, tmpl := range s.InputFeatures {
		for _, kind := range kinds {
			if tmpl.Type == kind {
				return tmpl.Name, true
			}
		}
	}
	for _, tmpl := range s.OutputTemplate {
		for _, kind := range kinds {
			if tmpl.Type == kind {
				return tmpl.Name, true
			}
		}
	}

	return "", false
}

// Spec declares a full sequence: an ordered chain of steps.
type Spec struct {
	Name    string     `json:"name"`
	Version string     `json:"version"`
	Steps   []StepSpec `json:"steps"`
}

// StepByID returns the step with the given id.
func (s *Spec) StepByID(id string) (*StepSpec, bool) {
	for i := range s.Steps {
		if s.Steps[i].ID == id {
			return &s.Steps[i], true
		}
	}

	return nil, false
}

// indexOf returns the position of the step with the given id, or -1.
func (s *Spec) indexOf(id string) int {
	for i := range s.Steps {
		if s.Steps[i].ID == id {
			return i
		}
	}

	return -1
}

// StepSummary is the id/name pair exposed by sequence info.
type StepSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Info is the caller-facing description of a sequence.
type Info struct {
	Name        string        `json:"name"`
	Version     string        `json:"version"`
	Steps       []StepSummary `json:"steps"`
	TotalModels int           `json:"total_models"`
}

// Info summarises the sequence for callers.
func (s *Spec) Info() Info {
	steps := make([]StepSummary, 0, len(s.Steps))
	for i := range s.Steps {
		steps = append(steps, StepSummary{ID: s.Steps[i].ID, Name: s.Steps[i].Name})
	}

	return Info{
		Name:        s.Name,
		Version:     s.Version,
		Steps:       steps,
		TotalModels: len(s.Steps),
	}
}
