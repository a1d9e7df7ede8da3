package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

// ReadCSV parses a headered CSV of numeric cells into a Dataset.
func ReadCSV(r io.Reader) (*Dataset, error) {
	t, err := ReadTable(r)
	if err != nil {
		return nil, err
	}
	rows := make([][]float64, len(t.Records))
	for i, rec := range t.Records {
		row := make([]float64, len(rec))
		for j, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "parse row %d, column %q", i+1, t.Header[j])
			}
			row[j] = v
		}
		rows[i] = row
	}
	return New(t.Header, rows)
}

// LoadCSV reads the CSV file at path into a Dataset.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	ds, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return ds, nil
}

// WriteCSV writes ds with its header.
func WriteCSV(w io.Writer, ds *Dataset) error {
	t := &Table{Header: ds.Header(), Records: make([][]string, ds.Rows())}
	for i := range t.Records {
		row := ds.Row(i)
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		t.Records[i] = rec
	}
	return t.Write(w)
}

// SaveCSV writes ds to path, creating parent directories.
func SaveCSV(path string, ds *Dataset) error {
	return writeFile(path, func(w io.Writer) error { return WriteCSV(w, ds) })
}

// Table is a headered CSV kept as text, used for prediction files whose
// cells must be written back unchanged.
type Table struct {
	Header  []string
	Records [][]string
}

// ReadTable reads a headered CSV. Every record must match the header width.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}
	if len(records) == 0 {
		return nil, errors.NewModelError("dataset.ReadTable", "missing header", errors.ErrEmptyData)
	}
	return &Table{Header: records[0], Records: records[1:]}, nil
}

// LoadTable reads the CSV file at path.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	t, err := ReadTable(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return t, nil
}

// AppendColumn adds a column named name holding values, one per record.
func (t *Table) AppendColumn(name string, values []string) error {
	if len(values) != len(t.Records) {
		return errors.NewDimensionError("Table.AppendColumn", len(t.Records), len(values), 0)
	}
	t.Header = append(t.Header, name)
	for i := range t.Records {
		t.Records[i] = append(t.Records[i], values[i])
	}
	return nil
}

// Float parses the cell at row i, column j.
func (t *Table) Float(i, j int) (float64, error) {
	if j < 0 || j >= len(t.Records[i]) {
		return 0, errors.NewValidationError("column", "out of range", j)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(t.Records[i][j]), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse row %d, column %d", i+1, j)
	}
	return v, nil
}

// Write writes the header and records as CSV.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return errors.Wrap(err, "write header")
	}
	if err := cw.WriteAll(t.Records); err != nil {
		return errors.Wrap(err, "write records")
	}
	return nil
}

// Save writes t to path, creating parent directories.
func (t *Table) Save(path string) error {
	return writeFile(path, t.Write)
}

// BatchColumns locates the six prediction inputs in a batch file.
type BatchColumns struct {
	ShortPower int
	ShortRate  int
	Reps       int
	Weight     int
	Age        int
	TargetRate int
}

// DefaultBatchColumns is the layout of batchPredictions.csv: an index and a
// name column, then watts, rate, reps, weight, age and the 2k stroke rate.
func DefaultBatchColumns() BatchColumns {
	return BatchColumns{ShortPower: 2, ShortRate: 3, Reps: 4, Weight: 5, Age: 6, TargetRate: 7}
}

// PredictionColumn is the header of the column appended to batch output.
const PredictionColumn = "twoKPredictions"

func writeFile(path string, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	return write(f)
}
