package sequence

import (
	"encoding/base64"
	"fmt"
	"math"
)

// Verifier checks that field lists are well formed and that they satisfy a
// step contract. It is permissive toward extra fields the contract does not
// mention unless built with Strict.
type Verifier struct {
	strict bool
}

// VerifierOption configures a Verifier.
type VerifierOption func(v *Verifier)

// Strict makes the verifier reject caller-supplied fields that are not part
// of the step contract. The default is to ignore them.
func Strict() VerifierOption {
	return func(v *Verifier) {
		v.strict = true
	}
}

// NewVerifier creates a verifier.
func NewVerifier(opts ...VerifierOption) *Verifier {
	verifier := &Verifier{}
	for _, opt := range opts {
		opt(verifier)
	}

	return verifier
}

// Verify checks that every field carries a recognised kind, that its value
// matches that kind and that no name appears twice.
func (v *Verifier) Verify(fields []Field) error {
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if _, ok := seen[field.Name]; ok {
			return &TypeMismatchError{Field: field.Name, Want: field.Type, Got: "duplicate name"}
		}
		seen[field.Name] = struct{}{}

		if !field.Type.Known() {
			return &TypeMismatchError{Field: field.Name, Want: field.Type, Got: "unsupported kind"}
		}
		if err := checkValue(field.Name, field.Type, field.Value); err != nil {
			return err
		}
	}

	return nil
}

// VerifyAgainst checks fields against a step contract: every template must
// be satisfied by a same-named field of the declared kind. The fields
// themselves are verified first, so violations are reported at the boundary
// they cross.
func (v *Verifier) VerifyAgainst(templates []FieldTemplate, fields []Field) error {
	if err := v.Verify(fields); err != nil {
		return err
	}

	index := byName(fields)
	for _, tmpl := range templates {
		field, ok := index[tmpl.Name]
		if !ok {
			return &TypeMismatchError{Field: tmpl.Name, Want: tmpl.Type}
		}
		if field.Type != tmpl.Type {
			return &TypeMismatchError{Field: tmpl.Name, Want: tmpl.Type, Got: string(field.Type)}
		}
	}

	if v.strict {
		known := make(map[string]struct{}, len(templates))
		for _, tmpl := range templates {
			known[tmpl.Name] = struct{}{}
		}
		for _, field := range fields {
			if _, ok := known[field.Name]; !ok {
				return &UnknownFieldError{Field: field.Name}
			}
		}
	}

	return nil
}

// checkValue checks that value has the shape required by kind. There is no
// coercion between int and float: a value declared int must be integral.
func checkValue(name string, kind Kind, value any) error {
	mismatch := func(got string) error {
		return &TypeMismatchError{Field: name, Want: kind, Got: got}
	}

	if value == nil {
		return mismatch("nil")
	}

	switch kind {
	case KindInt:
		switch n := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return nil
		case float64:
			if n == math.Trunc(n) {
				return nil
			}

			return mismatch("non-integral float")
		case float32:
			if float64(n) == math.Trunc(float64(n)) {
				return nil
			}

			return mismatch("non-integral float")
		default:
			return mismatch(typeName(value))
		}
	case KindFloat:
		switch value.(type) {
		case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return nil
		default:
			return mismatch(typeName(value))
		}
	case KindString:
		if _, ok := value.(string); ok {
			return nil
		}

		return mismatch(typeName(value))
	case KindImage:
		var payload string
		switch img := value.(type) {
		case string:
			payload = img
		case []byte:
			payload = string(img)
		default:
			return mismatch(typeName(value))
		}
		if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
			return mismatch("invalid base64 payload")
		}

		return nil
	case KindPlot:
		return checkPlot(name, value)
	}

	return mismatch("unsupported kind")
}

func checkPlot(name string, value any) error {
	mismatch := func(got string) error {
		return &TypeMismatchError{Field: name, Want: KindPlot, Got: got}
	}

	switch plot := value.(type) {
	case Plot:
		if plot.X == nil || plot.Y == nil {
			return mismatch("plot without x and y series")
		}
		if len(plot.X) != len(plot.Y) {
			return mismatch("plot with x and y of different lengths")
		}

		return nil
	case *Plot:
		if plot == nil {
			return mismatch("nil")
		}

		return checkPlot(name, *plot)
	case map[string]any:
		// Generic JSON decoding leaves plots as maps; validate the same
		// shape without converting.
		for _, key := range []string{"x", "y", "x_label", "y_label"} {
			if _, ok := plot[key]; !ok {
				return mismatch(fmt.Sprintf("plot without %q", key))
			}
		}
		xs, err := numberSeries(plot["x"])
		if err != nil {
			return mismatch("plot x series is not a list of numbers")
		}
		ys, err := numberSeries(plot["y"])
		if err != nil {
			return mismatch("plot y series is not a list of numbers")
		}
		if len(xs) != len(ys) {
			return mismatch("plot with x and y of different lengths")
		}
		if _, ok := plot["x_label"].(string); !ok {
			return mismatch("plot x_label is not a string")
		}
		if _, ok := plot["y_label"].(string); !ok {
			return mismatch("plot y_label is not a string")
		}

		return nil
	default:
		return mismatch(typeName(value))
	}
}

func numberSeries(value any) ([]float64, error) {
	items, ok := value.([]any)
	if !ok {
		if floats, ok := value.([]float64); ok {
			return floats, nil
		}

		return nil, fmt.Errorf("not a list")
	}

	floats := make([]float64, 0, len(items))
	for _, item := range items {
		switch n := item.(type) {
		case float64:
			floats = append(floats, n)
		case int:
			floats = append(floats, float64(n))
		case int64:
			floats = append(floats, float64(n))
		default:
			return nil, fmt.Errorf("not a number: %v", item)
		}
	}

	return floats, nil
}

func typeName(value any) string {
	return fmt.Sprintf("%T", value)
}
