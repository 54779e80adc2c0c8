package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOK(t *testing.T) {
	assert.NoError(t, twoStepSpec(t).Validate())
	assert.NoError(t, threeStepSpec(t).Validate())
}

func TestValidateEmptySequence(t *testing.T) {
	spec := &Spec{Name: "empty"}
	assert.ErrorIs(t, spec.Validate(), ErrEmptySequence)
}

func TestValidateTypeMismatch(t *testing.T) {
	spec := &Spec{
		Name: "mismatch",
		Steps: []StepSpec{
			{
				ID:             "step1",
				InputFeatures:  []FieldTemplate{{Name: "in", Type: KindString}},
				OutputTemplate: []FieldTemplate{{Name: "x", Type: KindFloat}},
			},
			{
				ID:             "step2",
				InputFeatures:  []FieldTemplate{{Name: "x", Type: KindInt}},
				OutputTemplate: []FieldTemplate{{Name: "out", Type: KindString}},
			},
		},
	}

	err := spec.Validate()
	require.Error(t, err)

	var mismatch *ValidationError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "step2", mismatch.StepID)
	assert.Equal(t, "x", mismatch.Field)
	assert.Equal(t, KindFloat, mismatch.Want)
	assert.Equal(t, KindInt, mismatch.Got)
}

func TestValidateAccumulatesAllProblems(t *testing.T) {
	spec := &Spec{
		Name: "broken",
		Steps: []StepSpec{
			{
				ID:            "step1",
				InputFeatures: []FieldTemplate{{Name: "in", Type: KindString}},
				OutputTemplate: []FieldTemplate{
					{Name: "x", Type: KindFloat},
					{Name: "y", Type: KindString},
				},
			},
			{
				ID: "step2",
				InputFeatures: []FieldTemplate{
					{Name: "x", Type: KindInt},
					{Name: "y", Type: KindFloat},
				},
				OutputTemplate: []FieldTemplate{{Name: "out", Type: KindString}},
			},
		},
	}

	err := spec.Validate()
	require.Error(t, err)

	var problems ValidationErrors
	require.ErrorAs(t, err, &problems)
	assert.Len(t, problems, 2)
}

func TestValidateDuplicateStepIDs(t *testing.T) {
	spec := &Spec{
		Name: "dup",
		Steps: []StepSpec{
			{ID: "same", OutputTemplate: []FieldTemplate{{Name: "x", Type: KindFloat}}},
			{ID: "same", InputFeatures: []FieldTemplate{{Name: "x", Type: KindFloat}}},
		},
	}

	err := spec.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate step id")
}

func TestValidateTemplateProblems(t *testing.T) {
	tcs := map[string]struct {
		step StepSpec
		want string
	}{
		"unsupported kind": {
			step: StepSpec{ID: "s", InputFeatures: []FieldTemplate{{Name: "t", Type: Kind("tensor")}}},
			want: "unsupported kind",
		},
		"duplicate field": {
			step: StepSpec{ID: "s", InputFeatures: []FieldTemplate{
				{Name: "x", Type: KindInt},
				{Name: "x", Type: KindInt},
			}},
			want: "duplicate input field",
		},
		"empty field name": {
			step: StepSpec{ID: "s", OutputTemplate: []FieldTemplate{{Type: KindInt}}},
			want: "empty field name",
		},
		"default does not match kind": {
			step: StepSpec{ID: "s", InputFeatures: []FieldTemplate{{Name: "x", Type: KindInt, Default: "zero"}}},
			want: "want int",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			spec := &Spec{Name: "one", Steps: []StepSpec{tc.step}}
			err := spec.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestChainedFields(t *testing.T) {
	spec := twoStepSpec(t)
	chained := ChainedFields(&spec.Steps[0], &spec.Steps[1])
	assert.Equal(t, []string{"a"}, chained)
}
