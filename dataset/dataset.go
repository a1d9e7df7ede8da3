// Package dataset holds the numeric tables the predictor trains on, the named
// column schema shared by every stage, and the CSV and Parquet boundaries.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

// Dataset is an ordered set of equal-width numeric rows with a header.
type Dataset struct {
	header []string
	data   *mat.Dense
}

// New builds a Dataset from row-major values. Every row must have len(header) values.
func New(header []string, rows [][]float64) (*Dataset, error) {
	if len(header) == 0 {
		return nil, errors.NewValidationError("header", "must name at least one column", header)
	}
	if len(rows) == 0 {
		return &Dataset{header: append([]string(nil), header...)}, nil
	}
	cols := len(header)
	flat := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		if len(row) != cols {
			return nil, errors.NewDimensionError("dataset.New", cols, len(row), 1)
		}
		flat = append(flat, row...)
	}
	return &Dataset{
		header: append([]string(nil), header...),
		data:   mat.NewDense(len(rows), cols, flat),
	}, nil
}

// FromDense wraps m without copying.
func FromDense(header []string, m *mat.Dense) (*Dataset, error) {
	if m == nil {
		return &Dataset{header: append([]string(nil), header...)}, nil
	}
	_, c := m.Dims()
	if c != len(header) {
		return nil, errors.NewDimensionError("dataset.FromDense", len(header), c, 1)
	}
	return &Dataset{header: append([]string(nil), header...), data: m}, nil
}

// Header returns a copy of the column names.
func (d *Dataset) Header() []string {
	return append([]string(nil), d.header...)
}

// Rows returns the number of rows.
func (d *Dataset) Rows() int {
	if d.data == nil {
		return 0
	}
	r, _ := d.data.Dims()
	return r
}

// Cols returns the number of columns.
func (d *Dataset) Cols() int {
	return len(d.header)
}

// At returns the value at row i, column j.
func (d *Dataset) At(i, j int) float64 {
	return d.data.At(i, j)
}

// Row returns a copy of row i.
func (d *Dataset) Row(i int) []float64 {
	return mat.Row(nil, i, d.data)
}

// Column returns a copy of column j.
func (d *Dataset) Column(j int) []float64 {
	if d.data == nil {
		return nil
	}
	return mat.Col(nil, j, d.data)
}

// ColumnIndex returns the position of the column called name.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	for i, h := range d.header {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

// Matrix returns the backing matrix. It is nil for an empty dataset.
func (d *Dataset) Matrix() *mat.Dense {
	return d.data
}

// Subset returns the rows at idx, in idx order.
func (d *Dataset) Subset(idx []int) *Dataset {
	out := &Dataset{header: d.Header()}
	if len(idx) == 0 {
		return out
	}
	out.data = mat.NewDense(len(idx), d.Cols(), nil)
	for i, src := range idx {
		out.data.SetRow(i, d.data.RawRowView(src))
	}
	return out
}

// Select copies the given columns, in order, into a new matrix. It is the
// bridge from a Dataset to model inputs: Select(schema.FeatureColumns()).
func (d *Dataset) Select(cols []int) (*mat.Dense, error) {
	n := d.Rows()
	if n == 0 {
		return nil, errors.NewModelError("dataset.Select", "empty data", errors.ErrEmptyData)
	}
	for _, c := range cols {
		if c < 0 || c >= d.Cols() {
			return nil, errors.NewValidationError("column", "out of range", c)
		}
	}
	out := mat.NewDense(n, len(cols), nil)
	for i := 0; i < n; i++ {
		for k, c := range cols {
			out.Set(i, k, d.data.At(i, c))
		}
	}
	return out, nil
}
