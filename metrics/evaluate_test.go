package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
	"github.com/JoeRonaldson/Predict-1500/preprocessing"
)

// echoModel predicts the first feature unchanged.
type echoModel struct{}

func (echoModel) PredictRow(x []float64) (float64, error) { return x[0], nil }

type failingModel struct{}

func (failingModel) PredictRow([]float64) (float64, error) {
	return 0, errors.NewInputShapeError("prediction", []int{1, 4}, []int{1, 3})
}

// label column 0 spans [0, 400]; normalized v maps to 400v.
var labelStats = &preprocessing.ColumnStatistics{Ranges: []preprocessing.ColumnRange{{Min: 0, Max: 400}}}

func TestEvaluateMAPE(t *testing.T) {
	// predictions 220, 180 against actuals 200, 200
	testX := mat.NewDense(2, 1, []float64{0.55, 0.45})
	testY := mat.NewDense(2, 1, []float64{0.5, 0.5})

	got, err := EvaluateMAPE(echoModel{}, testX, testY, labelStats, 0, 2)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, got, 1e-9)
}

func TestEvaluateMAPEUsesFirstTestSizeRows(t *testing.T) {
	testX := mat.NewDense(3, 1, []float64{0.55, 0.5, 0.9})
	testY := mat.NewDense(3, 1, []float64{0.5, 0.5, 0.1})

	got, err := EvaluateMAPE(echoModel{}, testX, testY, labelStats, 0, 2)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, got, 1e-9)
}

func TestEvaluateMAPEZeroActualExcluded(t *testing.T) {
	errors.SetWarningHandler(func(error) {})
	defer errors.SetWarningHandler(nil)

	// second row denormalizes to an actual of exactly 0
	testX := mat.NewDense(3, 1, []float64{0.55, 0.3, 0.45})
	testY := mat.NewDense(3, 1, []float64{0.5, 0, 0.5})

	got, err := EvaluateMAPE(echoModel{}, testX, testY, labelStats, 0, 3)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
	assert.InDelta(t, 10.0, got, 1e-9)

	_, err = EvaluateMAPE(echoModel{}, testX.Slice(1, 2, 0, 1), testY.Slice(1, 2, 0, 1), labelStats, 0, 1)
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve), "got %v", err)
}

func TestEvaluateMAPEValidation(t *testing.T) {
	testX := mat.NewDense(2, 1, []float64{0.5, 0.5})
	testY := mat.NewDense(2, 1, []float64{0.5, 0.5})

	_, err := EvaluateMAPE(echoModel{}, testX, testY, labelStats, 0, 3)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = EvaluateMAPE(echoModel{}, testX, mat.NewDense(1, 1, nil), labelStats, 0, 1)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = EvaluateMAPE(echoModel{}, testX, testY, labelStats, 4, 2)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	degenerate := &preprocessing.ColumnStatistics{Ranges: []preprocessing.ColumnRange{{Min: 3, Max: 3}}}
	_, err = EvaluateMAPE(echoModel{}, testX, testY, degenerate, 0, 2)
	assert.ErrorIs(t, err, errors.ErrDomain)

	_, err = EvaluateMAPE(failingModel{}, testX, testY, labelStats, 0, 2)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}
