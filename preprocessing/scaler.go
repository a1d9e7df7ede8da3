package preprocessing

import (
	"github.com/JoeRonaldson/Predict-1500/core/model"
	"github.com/JoeRonaldson/Predict-1500/dataset"
	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// MinMaxScaler scales every column of a dataset into [0, 1].
//
// Unlike a general purpose scaler it refuses constant columns: a column with
// max == min has no defined scaling, and Transform returns a DomainError
// rather than inventing a scale.
type MinMaxScaler struct {
	state *model.StateManager
	stats *ColumnStatistics
}

// NewMinMaxScaler creates an unfitted MinMaxScaler.
//
// Example:
//
//	scaler := preprocessing.NewMinMaxScaler()
//	normalized, err := scaler.FitTransform(ds)
//	stats := scaler.Statistics()
func NewMinMaxScaler() *MinMaxScaler {
	return &MinMaxScaler{state: model.NewStateManager("MinMaxScaler")}
}

// NewMinMaxScalerFromStatistics creates a fitted scaler from existing statistics.
func NewMinMaxScalerFromStatistics(stats *ColumnStatistics) *MinMaxScaler {
	m := NewMinMaxScaler()
	m.stats = stats
	m.state.SetFitted(stats.Width(), 0)
	return m
}

// Fit computes the column statistics of ds.
func (m *MinMaxScaler) Fit(ds *dataset.Dataset) error {
	stats, err := FitColumnStatistics(ds)
	if err != nil {
		return err
	}
	m.stats = stats
	m.state.SetFitted(ds.Cols(), ds.Rows())
	return nil
}

// Statistics returns the fitted statistics, or nil before Fit.
func (m *MinMaxScaler) Statistics() *ColumnStatistics {
	return m.stats
}

// IsFitted reports whether Fit has run.
func (m *MinMaxScaler) IsFitted() bool {
	return m.state.IsFitted()
}

// Transform returns a normalized copy of ds.
func (m *MinMaxScaler) Transform(ds *dataset.Dataset) (*dataset.Dataset, error) {
	return m.apply("Transform", ds, Normalize)
}

// InverseTransform maps a normalized dataset back to original units.
func (m *MinMaxScaler) InverseTransform(ds *dataset.Dataset) (*dataset.Dataset, error) {
	return m.apply("InverseTransform", ds, Denormalize)
}

// FitTransform fits on ds and returns it normalized.
func (m *MinMaxScaler) FitTransform(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if err := m.Fit(ds); err != nil {
		return nil, err
	}
	return m.Transform(ds)
}

func (m *MinMaxScaler) apply(method string, ds *dataset.Dataset, fn func(float64, int, *ColumnStatistics) (float64, error)) (*dataset.Dataset, error) {
	if err := m.state.RequireFitted(method); err != nil {
		return nil, err
	}
	if ds.Cols() != m.stats.Width() {
		return nil, errors.NewDimensionError("MinMaxScaler."+method, m.stats.Width(), ds.Cols(), 1)
	}

	r, c := ds.Rows(), ds.Cols()
	if r == 0 {
		return dataset.FromDense(ds.Header(), nil)
	}
	out := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			v, err := fn(ds.At(i, j), j, m.stats)
			if err != nil {
				return nil, err
			}
			out.Set(i, j, v)
		}
	}
	return dataset.FromDense(ds.Header(), out)
}
