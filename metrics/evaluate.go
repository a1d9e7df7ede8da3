package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/JoeRonaldson/Predict-1500/core/model"
	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
	"github.com/JoeRonaldson/Predict-1500/preprocessing"
)

// EvaluateMAPE scores m on the first testSize rows of a normalized test set.
// Predictions and labels are denormalized with the statistics of labelCol
// before the percentage error is taken, so the result is in original units.
// Rows whose actual label is zero are excluded from both the sum and the
// count. If every row is excluded a ValueError is returned instead of NaN.
func EvaluateMAPE(m model.RowPredictor, testX, testY mat.Matrix, stats *preprocessing.ColumnStatistics, labelCol, testSize int) (float64, error) {
	rows, _ := testX.Dims()
	ry, cy := testY.Dims()
	if ry != rows {
		return 0, errors.NewDimensionError("EvaluateMAPE", rows, ry, 0)
	}
	if cy != 1 {
		return 0, errors.NewDimensionError("EvaluateMAPE", 1, cy, 1)
	}
	if testSize <= 0 || testSize > rows {
		return 0, errors.NewValidationError("test_size", fmt.Sprintf("must be in [1, %d]", rows), testSize)
	}

	var acc mapeAccumulator
	for i := 0; i < testSize; i++ {
		raw, err := m.PredictRow(mat.Row(nil, i, testX))
		if err != nil {
			return 0, errors.Wrapf(err, "predict test row %d", i)
		}
		predicted, err := preprocessing.Denormalize(raw, labelCol, stats)
		if err != nil {
			return 0, err
		}
		actual, err := preprocessing.Denormalize(testY.At(i, 0), labelCol, stats)
		if err != nil {
			return 0, err
		}
		acc.add(i, actual, predicted)
	}
	return acc.mean("EvaluateMAPE")
}
