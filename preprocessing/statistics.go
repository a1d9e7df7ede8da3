// Package preprocessing implements min-max scaling of the training table.
//
// Statistics are fitted once on the full dataset, before any split, and then
// passed explicitly to every stage that scales or unscales values:
//
//	stats, err := preprocessing.FitColumnStatistics(ds)
//	x, err := preprocessing.Normalize(weight, schema.Column(dataset.Weight), stats)
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/JoeRonaldson/Predict-1500/dataset"
	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

// ColumnRange is the observed minimum and maximum of one column.
type ColumnRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns Max - Min.
func (r ColumnRange) Span() float64 {
	return r.Max - r.Min
}

// ColumnStatistics holds a ColumnRange per dataset column, by column index.
type ColumnStatistics struct {
	Header []string      `json:"header"`
	Ranges []ColumnRange `json:"ranges"`
}

// FitColumnStatistics computes the per-column min and max over every row of ds.
func FitColumnStatistics(ds *dataset.Dataset) (*ColumnStatistics, error) {
	if ds == nil || ds.Rows() == 0 {
		return nil, errors.NewModelError("FitColumnStatistics", "empty data", errors.ErrEmptyData)
	}
	stats := &ColumnStatistics{
		Header: ds.Header(),
		Ranges: make([]ColumnRange, ds.Cols()),
	}
	for j := range stats.Ranges {
		col := ds.Column(j)
		stats.Ranges[j] = ColumnRange{Min: floats.Min(col), Max: floats.Max(col)}
	}
	return stats, nil
}

// Width returns the number of columns the statistics cover.
func (s *ColumnStatistics) Width() int {
	return len(s.Ranges)
}

// Validate reports the first column whose range is inverted or not finite.
func (s *ColumnStatistics) Validate() error {
	if s == nil || len(s.Ranges) == 0 {
		return errors.NewModelError("ColumnStatistics.Validate", "empty statistics", errors.ErrEmptyData)
	}
	for j, r := range s.Ranges {
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
			return errors.NewValidationError("stats."+s.name(j), "range must be finite", r)
		}
		if r.Max < r.Min {
			return errors.NewValidationError("stats."+s.name(j), "max is below min", r)
		}
	}
	return nil
}

// Range returns the statistics of column col.
func (s *ColumnStatistics) Range(col int) (ColumnRange, error) {
	if s == nil {
		return ColumnRange{}, errors.NewValidationError("stats", "must not be nil", nil)
	}
	if col < 0 || col >= len(s.Ranges) {
		return ColumnRange{}, errors.NewValidationError("column", fmt.Sprintf("must be in [0, %d)", len(s.Ranges)), col)
	}
	return s.Ranges[col], nil
}

// scalable returns the range of col, failing when max == min.
func (s *ColumnStatistics) scalable(op string, col int) (ColumnRange, error) {
	r, err := s.Range(col)
	if err != nil {
		return r, err
	}
	if r.Span() == 0 {
		return r, errors.NewDomainError(op, fmt.Sprintf("degenerate column %d (%s): max == min", col, s.name(col)), r.Min)
	}
	return r, nil
}

func (s *ColumnStatistics) name(col int) string {
	if col < len(s.Header) && s.Header[col] != "" {
		return s.Header[col]
	}
	return "unnamed"
}

// Normalize maps value into [0, 1] relative to column col: (v - min) / (max - min).
func Normalize(value float64, col int, stats *ColumnStatistics) (float64, error) {
	r, err := stats.scalable("Normalize", col)
	if err != nil {
		return 0, err
	}
	return (value - r.Min) / r.Span(), nil
}

// Denormalize is the inverse of Normalize: v * (max - min) + min.
func Denormalize(value float64, col int, stats *ColumnStatistics) (float64, error) {
	r, err := stats.scalable("Denormalize", col)
	if err != nil {
		return 0, err
	}
	return value*r.Span() + r.Min, nil
}
