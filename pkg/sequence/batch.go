package sequence

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Target selects what a batch run executes for every row: one step or the
// full sequence.
type Target struct {
	stepID string
	full   bool
}

// SingleStep targets one step by id.
func SingleStep(stepID string) Target {
	return Target{stepID: stepID}
}

// FullSequence targets the whole sequence.
func FullSequence() Target {
	return Target{full: true}
}

// Batch applies an executor across every row of a table. Rows are
// independent and processed with bounded concurrency; by default one row's
// failure is recorded against that row and the remaining rows still run.
type Batch struct {
	exec     *Executor
	workers  int
	failFast bool
}

// BatchOption configures a Batch.
type BatchOption func(b *Batch)

// BatchWorkers bounds how many rows run concurrently. Defaults to 1.
func BatchWorkers(workers int) BatchOption {
	return func(b *Batch) {
		b.workers = workers
	}
}

// FailFast aborts the batch on the first row failure instead of
// accumulating per-row errors.
func FailFast() BatchOption {
	return func(b *Batch) {
		b.failFast = true
	}
}

// NewBatch creates a batch runner over an executor.
func NewBatch(exec *Executor, opts ...BatchOption) *Batch {
	batch := &Batch{exec: exec, workers: 1}
	for _, opt := range opts {
		opt(batch)
	}
	if batch.workers < 1 {
		batch.workers = 1
	}

	return batch
}

// BatchResult is the outcome of a batch run. Every input row is present in
// Table in its original order; rows that failed keep empty result cells and
// are listed in RowErrors with their index and cause.
type BatchResult struct {
	Table     *Table
	RowErrors []*RowError
}

// Run executes the target for every row of the table and appends the
// scalar output fields as new columns.
//
// The target is rejected up front when any involved step carries an image
// or plot field anywhere in its contract, since tabular rows cannot hold
// those payload shapes, and when the table lacks a required input column.
func (b *Batch) Run(ctx context.Context, table *Table, target Target) (*BatchResult, error) {
	first, last, err := b.involvedSteps(target)
	if err != nil {
		return nil, err
	}

	columns := table.columnIndex()
	var missing []string
	for _, tmpl := range first.InputFeatures {
		if _, ok := columns[tmpl.Name]; !ok {
			missing = append(missing, tmpl.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	resultColumns := make([]string, 0, len(last.OutputTemplate))
	for _, tmpl := range last.OutputTemplate {
		if tmpl.Type.Scalar() {
			resultColumns = append(resultColumns, tmpl.Name)
		}
	}

	results := make([][]string, len(table.Rows))
	rowErrs := make([]error, len(table.Rows))

	grp, gCtx := errgroup.WithContext(ctx)
	grp.SetLimit(b.workers)
	for i := range table.Rows {
		rowIdx := i
		grp.Go(func() error {
			cells, err := b.runRow(gCtx, table.Rows[rowIdx], columns, first, resultColumns, target)
			if err != nil {
				if b.failFast {
					return &RowError{Row: rowIdx, Err: err}
				}
				rowErrs[rowIdx] = err
				cells = make([]string, len(resultColumns))
			}
			results[rowIdx] = cells

			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	out := &Table{
		Columns: append(append([]string{}, table.Columns...), resultColumns...),
		Rows:    make([][]string, 0, len(table.Rows)),
	}
	result := &BatchResult{Table: out}
	for i, row := range table.Rows {
		out.Rows = append(out.Rows, append(append([]string{}, row...), results[i]...))
		if rowErrs[i] != nil {
			result.RowErrors = append(result.RowErrors, &RowError{Row: i, Err: rowErrs[i]})
		}
	}

	return result, nil
}

// involvedSteps resolves the target to the first step whose inputs the rows
// must satisfy and the last step whose outputs become columns, rejecting
// targets that touch non-tabular kinds.
func (b *Batch) involvedSteps(target Target) (*StepSpec, *StepSpec, error) {
	spec := b.exec.Spec()

	var involved []*StepSpec
	if target.full {
		for i := range spec.Steps {
			involved = append(involved, &spec.Steps[i])
		}
	} else {
		step, ok := spec.StepByID(target.stepID)
		if !ok {
			return nil, nil, &UnknownStepError{ID: target.stepID}
		}
		involved = append(involved, step)
	}

	for _, step := range involved {
		if field, ok := step.usesKind(KindImage, KindPlot); ok {
			kind := KindImage
			if tmpl, found := templateByName(step, field); found {
				kind = tmpl.Type
			}

			return nil, nil, &BatchKindError{StepID: step.ID, Field: field, Kind: kind}
		}
	}

	return involved[0], involved[len(involved)-1], nil
}

func templateByName(step *StepSpec, name string) (FieldTemplate, bool) {
	for _, tmpl := range step.InputFeatures {
		if tmpl.Name == name {
			return tmpl, true
		}
	}
	for _, tmpl := range step.OutputTemplate {
		if tmpl.Name == name {
			return tmpl, true
		}
	}

	return FieldTemplate{}, false
}

func (b *Batch) runRow(ctx context.Context, row []string, columns map[string]int, first *StepSpec, resultColumns []string, target Target) ([]string, error) {
	input := make([]Field, 0, len(first.InputFeatures))
	for _, tmpl := range first.InputFeatures {
		// Tables built by hand may carry rows shorter than their header.
		idx := columns[tmpl.Name]
		if idx >= len(row) {
			return nil, errors.Errorf("row has %d cells, column %q is at position %d", len(row), tmpl.Name, idx)
		}
		field, err := parseCell(tmpl, row[idx])
		if err != nil {
			return nil, err
		}
		input = append(input, field)
	}

	var output []Field
	if target.full {
		result, err := b.exec.RunAll(ctx, input)
		if err != nil {
			return nil, err
		}
		output = result.Output
	} else {
		result, err := b.exec.RunStep(ctx, target.stepID, input)
		if err != nil {
			return nil, err
		}
		output = result.Output
	}

	// Cells follow the declared output template order, not the order the
	// runner happened to produce.
	produced := byName(output)
	cells := make([]string, 0, len(resultColumns))
	for _, name := range resultColumns {
		cells = append(cells, formatCell(produced[name]))
	}

	return cells, nil
}

// parseCell converts one tabular cell to a typed field. The conversion is
// purely syntactic; a cell that does not parse as the declared kind is a
// type mismatch for that row.
func parseCell(tmpl FieldTemplate, cell string) (Field, error) {
	switch tmpl.Type {
	case KindInt:
		n, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return Field{}, &TypeMismatchError{Field: tmpl.Name, Want: tmpl.Type, Got: strconv.Quote(cell)}
		}

		return Field{Name: tmpl.Name, Type: KindInt, Value: n}, nil
	case KindFloat:
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return Field{}, &TypeMismatchError{Field: tmpl.Name, Want: tmpl.Type, Got: strconv.Quote(cell)}
		}

		return Field{Name: tmpl.Name, Type: KindFloat, Value: f}, nil
	case KindString:
		return Field{Name: tmpl.Name, Type: KindString, Value: cell}, nil
	}

	return Field{}, &TypeMismatchError{Field: tmpl.Name, Want: tmpl.Type, Got: "non-tabular kind"}
}

func formatCell(field Field) string {
	switch value := field.Value.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'g', -1, 32)
	default:
		// Verified scalar outputs leave only the integer family here, in
		// any of the widths the value checks accept.
		return fmt.Sprint(value)
	}
}
