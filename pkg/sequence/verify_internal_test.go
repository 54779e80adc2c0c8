package sequence

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyValues(t *testing.T) {
	tcs := map[string]struct {
		field   Field
		wantErr bool
	}{
		"int":                    {field: Int("n", 42)},
		"int from plain int":     {field: Field{Name: "n", Type: KindInt, Value: 42}},
		"int from integral json": {field: Field{Name: "n", Type: KindInt, Value: float64(5)}},
		"int from string":        {field: Field{Name: "n", Type: KindInt, Value: "abc"}, wantErr: true},
		"int not integral":       {field: Field{Name: "n", Type: KindInt, Value: 5.3}, wantErr: true},
		"float":                  {field: Float("f", 0.5)},
		"float from int":         {field: Field{Name: "f", Type: KindFloat, Value: 3}},
		"float from string":      {field: Field{Name: "f", Type: KindFloat, Value: "0.5"}, wantErr: true},
		"string":                 {field: String("s", "text")},
		"string from number":     {field: Field{Name: "s", Type: KindString, Value: 1}, wantErr: true},
		"image":                  {field: Image("img", base64.StdEncoding.EncodeToString([]byte("png bytes")))},
		"image bad base64":       {field: Image("img", "!!not base64!!"), wantErr: true},
		"image from number":      {field: Field{Name: "img", Type: KindImage, Value: 5}, wantErr: true},
		"plot": {field: PlotField("p", Plot{
			X: []float64{0, 1}, Y: []float64{1, 2}, XLabel: "x", YLabel: "y",
		})},
		"plot lengths differ": {field: PlotField("p", Plot{
			X: []float64{0, 1}, Y: []float64{1}, XLabel: "x", YLabel: "y",
		}), wantErr: true},
		"plot as decoded map": {field: Field{Name: "p", Type: KindPlot, Value: map[string]any{
			"x": []any{float64(0), float64(1)}, "y": []any{float64(1), float64(2)},
			"x_label": "x", "y_label": "y",
		}}},
		"plot map missing label": {field: Field{Name: "p", Type: KindPlot, Value: map[string]any{
			"x": []any{float64(0)}, "y": []any{float64(1)}, "x_label": "x",
		}}, wantErr: true},
		"plot map x not numbers": {field: Field{Name: "p", Type: KindPlot, Value: map[string]any{
			"x": []any{"zero"}, "y": []any{float64(1)}, "x_label": "x", "y_label": "y",
		}}, wantErr: true},
		"unsupported kind": {field: Field{Name: "n", Type: Kind("tensor"), Value: 1}, wantErr: true},
		"nil value":        {field: Field{Name: "n", Type: KindInt}, wantErr: true},
	}

	verifier := NewVerifier()
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			err := verifier.Verify([]Field{tc.field})
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifyDuplicateNames(t *testing.T) {
	verifier := NewVerifier()
	err := verifier.Verify([]Field{Int("n", 1), Int("n", 2)})

	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "n", mismatch.Field)
}

func TestVerifyAgainstMissingRequired(t *testing.T) {
	verifier := NewVerifier()
	templates := []FieldTemplate{
		{Name: "a", Type: KindString},
		{Name: "b", Type: KindInt},
	}

	err := verifier.VerifyAgainst(templates, []Field{String("a", "x")})

	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "b", mismatch.Field)
	assert.Equal(t, KindInt, mismatch.Want)
	assert.Empty(t, mismatch.Got)
}

func TestVerifyAgainstWrongKind(t *testing.T) {
	verifier := NewVerifier()
	templates := []FieldTemplate{{Name: "a", Type: KindInt}}

	err := verifier.VerifyAgainst(templates, []Field{Float("a", 1.5)})

	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "a", mismatch.Field)
	assert.Equal(t, KindInt, mismatch.Want)
	assert.Equal(t, string(KindFloat), mismatch.Got)
}

func TestVerifyAgainstExtraFields(t *testing.T) {
	templates := []FieldTemplate{{Name: "a", Type: KindString}}
	fields := []Field{String("a", "x"), Int("extra", 1)}

	t.Run("permissive ignores extras", func(t *testing.T) {
		assert.NoError(t, NewVerifier().VerifyAgainst(templates, fields))
	})

	t.Run("strict rejects extras", func(t *testing.T) {
		err := NewVerifier(Strict()).VerifyAgainst(templates, fields)

		var unknown *UnknownFieldError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "extra", unknown.Field)
	})
}
