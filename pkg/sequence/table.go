package sequence

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"
)

// Table is a CSV-shaped payload: a header of column names and rows of
// string cells. Cell conversion to typed fields is purely syntactic and
// happens per row during a batch run.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ReadTable reads a CSV document whose first record is the header.
func ReadTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read table header")
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read table rows")
	}

	return &Table{Columns: header, Rows: rows}, nil
}

// Write renders the table as CSV, header first.
func (t *Table) Write(w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Columns); err != nil {
		return errors.Wrap(err, "unable to write table header")
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return errors.Wrap(err, "unable to write table rows")
	}
	writer.Flush()

	return errors.Wrap(writer.Error(), "unable to flush table")
}

// columnIndex maps each column name to its position.
func (t *Table) columnIndex() map[string]int {
	index := make(map[string]int, len(t.Columns))
	for i, name := range t.Columns {
		index[name] = i
	}

	return index
}
