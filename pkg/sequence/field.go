package sequence

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Kind is the declared type of a field.
type Kind string

const (
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindString Kind = "string"
	KindImage  Kind = "image"
	KindPlot   Kind = "plot"
)

// Scalar reports whether values of this kind fit in a single tabular cell.
func (k Kind) Scalar() bool {
	switch k {
	case KindInt, KindFloat, KindString:
		return true
	}

	return false
}

// Known reports whether k is one of the recognised kinds.
func (k Kind) Known() bool {
	switch k {
	case KindInt, KindFloat, KindString, KindImage, KindPlot:
		return true
	}

	return false
}

// Plot is the payload of a plot-typed field.
type Plot struct {
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
	XLabel string    `json:"x_label"`
	YLabel string    `json:"y_label"`
}

// Field is a single named, typed value flowing between steps.
//
// The dynamic type of Value depends on Type: int64 for "int", float64 for
// "float", string for "string" and "image" (base64 payload), Plot for
// "plot". Verify accepts the looser forms produced by JSON decoding and by
// hand-written callers (plain int, integral float64, map-shaped plots).
type Field struct {
	Name  string `json:"name"`
	Type  Kind   `json:"type"`
	Value any    `json:"value"`
}

// UnmarshalJSON decodes the wire shape {name, type, value} and narrows the
// value to the concrete Go type declared by "type" where it can. Shapes that
// do not match are kept as decoded so Verify can report them properly.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name  string          `json:"name"`
		Type  Kind            `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "unable to decode field")
	}

	f.Name = raw.Name
	f.Type = raw.Type
	f.Value = nil

	// A raw null is a missing value, not the kind's zero value.
	if len(raw.Value) == 0 || bytes.Equal(raw.Value, []byte("null")) {
		return nil
	}

	switch raw.Type {
	case KindPlot:
		var plot Plot
		if err := json.Unmarshal(raw.Value, &plot); err == nil {
			f.Value = plot

			return nil
		}
	case KindInt:
		var number int64
		if err := json.Unmarshal(raw.Value, &number); err == nil {
			f.Value = number

			return nil
		}
	case KindFloat:
		var number float64
		if err := json.Unmarshal(raw.Value, &number); err == nil {
			f.Value = number

			return nil
		}
	case KindString, KindImage:
		var str string
		if err := json.Unmarshal(raw.Value, &str); err == nil {
			f.Value = str

			return nil
		}
	}

	var value any
	if err := json.Unmarshal(raw.Value, &value); err != nil {
		return errors.Wrapf(err, "unable to decode value of field %q", raw.Name)
	}
	f.Value = value

	return nil
}

// Int returns an int-typed field.
func Int(name string, value int64) Field {
	return Field{Name: name, Type: KindInt, Value: value}
}

// Float returns a float-typed field.
func Float(name string, value float64) Field {
	return Field{Name: name, Type: KindFloat, Value: value}
}

// String returns a string-typed field.
func String(name string, value string) Field {
	return Field{Name: name, Type: KindString, Value: value}
}

// Image returns an image-typed field carrying a base64 payload.
func Image(name string, base64Payload string) Field {
	return Field{Name: name, Type: KindImage, Value: base64Payload}
}

// PlotField returns a plot-typed field.
func PlotField(name string, value Plot) Field {
	return Field{Name: name, Type: KindPlot, Value: value}
}

// byName indexes a field list by name. It assumes Verify already rejected
// duplicate names.
func byName(fields []Field) map[string]Field {
	index := make(map[string]Field, len(fields))
	for _, field := range fields {
		index[field.Name] = field
	}

	return index
}
