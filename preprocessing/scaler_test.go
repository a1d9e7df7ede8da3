package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeRonaldson/Predict-1500/dataset"
	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

func TestMinMaxScalerFitTransform(t *testing.T) {
	ds := sample(t)
	scaler := NewMinMaxScaler()

	out, err := scaler.FitTransform(ds)
	require.NoError(t, err)
	assert.True(t, scaler.IsFitted())
	assert.Equal(t, ds.Header(), out.Header())

	for j := 0; j < out.Cols(); j++ {
		col := out.Column(j)
		lo, hi := col[0], col[0]
		for _, v := range col {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
			lo = min(lo, v)
			hi = max(hi, v)
		}
		assert.InDelta(t, 0, lo, 1e-12, "column %d", j)
		assert.InDelta(t, 1, hi, 1e-12, "column %d", j)
	}

	back, err := scaler.InverseTransform(out)
	require.NoError(t, err)
	for i := 0; i < ds.Rows(); i++ {
		for j := 0; j < ds.Cols(); j++ {
			assert.InDelta(t, ds.At(i, j), back.At(i, j), 1e-9)
		}
	}
}

func TestMinMaxScalerNotFitted(t *testing.T) {
	scaler := NewMinMaxScaler()
	_, err := scaler.Transform(sample(t))
	assert.ErrorIs(t, err, errors.ErrNotFitted)
	_, err = scaler.InverseTransform(sample(t))
	assert.ErrorIs(t, err, errors.ErrNotFitted)
	assert.Nil(t, scaler.Statistics())
}

func TestMinMaxScalerRejectsConstantColumn(t *testing.T) {
	ds, err := dataset.New([]string{"a", "b"}, [][]float64{{1, 3}, {2, 3}})
	require.NoError(t, err)

	scaler := NewMinMaxScaler()
	require.NoError(t, scaler.Fit(ds))
	_, err = scaler.Transform(ds)
	assert.ErrorIs(t, err, errors.ErrDomain)
}

func TestMinMaxScalerWidthMismatch(t *testing.T) {
	scaler := NewMinMaxScaler()
	require.NoError(t, scaler.Fit(sample(t)))

	narrow, err := dataset.New([]string{"a"}, [][]float64{{1}})
	require.NoError(t, err)
	_, err = scaler.Transform(narrow)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestNewMinMaxScalerFromStatistics(t *testing.T) {
	stats, err := FitColumnStatistics(sample(t))
	require.NoError(t, err)

	scaler := NewMinMaxScalerFromStatistics(stats)
	assert.True(t, scaler.IsFitted())
	out, err := scaler.Transform(sample(t))
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, out.At(0, 1), 1e-12) // (210-190)/60
}
