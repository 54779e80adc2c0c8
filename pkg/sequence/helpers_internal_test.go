package sequence

import (
	"context"
	"testing"
)

func twoStepSpec(t *testing.T) *Spec {
	t.Helper()

	return &Spec{
		Name:    "two-step",
		Version: "v1.0.0",
		Steps: []StepSpec{
			{
				ID:   "step1",
				Name: "Step One",
				InputFeatures: []FieldTemplate{
					{Name: "in", Type: KindString, Default: "start"},
				},
				OutputTemplate: []FieldTemplate{
					{Name: "a", Type: KindString},
					{Name: "b", Type: KindInt},
				},
			},
			{
				ID:   "step2",
				Name: "Step Two",
				InputFeatures: []FieldTemplate{
					{Name: "a", Type: KindString},
					{Name: "c", Type: KindFloat, Default: 1.0},
				},
				OutputTemplate: []FieldTemplate{
					{Name: "result", Type: KindString},
				},
			},
		},
	}
}

func twoStepRegistry(t *testing.T) *Registry {
	t.Helper()

	reg := NewRegistry()
	reg.Register("step1", func(_ context.Context, _ string, input []Field) ([]Field, error) {
		in := byName(input)["in"].Value.(string)

		return []Field{String("a", in+"-a"), Int("b", 5)}, nil
	})
	reg.Register("step2", func(_ context.Context, _ string, input []Field) ([]Field, error) {
		a := byName(input)["a"].Value.(string)

		return []Field{String("result", "done-"+a)}, nil
	})

	return reg
}

func threeStepSpec(t *testing.T) *Spec {
	t.Helper()

	return &Spec{
		Name:    "three-step",
		Version: "v1.0.0",
		Steps: []StepSpec{
			{
				ID:             "double",
				Name:           "Double",
				InputFeatures:  []FieldTemplate{{Name: "x", Type: KindFloat}},
				OutputTemplate: []FieldTemplate{{Name: "y", Type: KindFloat}},
			},
			{
				ID:             "increment",
				Name:           "Increment",
				InputFeatures:  []FieldTemplate{{Name: "y", Type: KindFloat}},
				OutputTemplate: []FieldTemplate{{Name: "z", Type: KindFloat}},
			},
			{
				ID:   "negate",
				Name: "Negate",
				InputFeatures: []FieldTemplate{
					{Name: "z", Type: KindFloat},
					{Name: "w", Type: KindString, Default: "hi"},
				},
				OutputTemplate: []FieldTemplate{{Name: "final", Type: KindFloat}},
			},
		},
	}
}

func threeStepRegistry(t *testing.T) *Registry {
	t.Helper()

	number := func(value any) float64 {
		switch n := value.(type) {
		case float64:
			return n
		case int64:
			return float64(n)
		}
		t.Fatalf("unexpected numeric value %v", value)

		return 0
	}

	reg := NewRegistry()
	reg.Register("double", func(_ context.Context, _ string, input []Field) ([]Field, error) {
		return []Field{Float("y", number(byName(input)["x"].Value)*2)}, nil
	})
	reg.Register("increment", func(_ context.Context, _ string, input []Field) ([]Field, error) {
		return []Field{Float("z", number(byName(input)["y"].Value)+1)}, nil
	})
	reg.Register("negate", func(_ context.Context, _ string, input []Field) ([]Field, error) {
		return []Field{Float("final", -number(byName(input)["z"].Value))}, nil
	})

	return reg
}
