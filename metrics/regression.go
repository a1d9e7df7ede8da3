// Package metrics provides regression error metrics and the held-out
// evaluation of the 2k power model.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

func pair(op string, yTrue, yPred *mat.VecDense) ([]float64, []float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, nil, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return nil, nil, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	t := make([]float64, n)
	p := make([]float64, n)
	for i := 0; i < n; i++ {
		t[i] = yTrue.AtVec(i)
		p[i] = yPred.AtVec(i)
	}
	return t, p, nil
}

// MSE returns the mean squared error.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := pair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	floats.Sub(t, p)
	return floats.Dot(t, t) / float64(len(t)), nil
}

// MSEMatrix is MSE for n×1 matrices.
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	rt, ct := yTrue.Dims()
	rp, cp := yPred.Dims()
	if rt == 0 || ct == 0 {
		return 0, errors.NewValueError("MSEMatrix", "empty matrix")
	}
	if ct != 1 || cp != 1 {
		return 0, errors.NewValueError("MSEMatrix", "must be a column vector (n×1 matrix)")
	}
	if rt != rp {
		return 0, errors.NewDimensionError("MSEMatrix", rt, rp, 0)
	}
	return MSE(mat.NewVecDense(rt, mat.Col(nil, 0, yTrue)), mat.NewVecDense(rp, mat.Col(nil, 0, yPred)))
}

// RMSE returns the root mean squared error.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE returns the mean absolute error.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := pair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return floats.Distance(t, p, 1) / float64(len(t)), nil
}

// R2Score returns the coefficient of determination.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := pair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	mean := stat.Mean(t, nil)
	var tss, rss float64
	for i := range t {
		tss += (t[i] - mean) * (t[i] - mean)
		rss += (t[i] - p[i]) * (t[i] - p[i])
	}
	if tss == 0 {
		return 0, errors.NewValueError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}
	return 1 - rss/tss, nil
}

// MAPE returns the mean absolute percentage error in percent. Samples whose
// true value is zero have no defined percentage; they are skipped with a
// warning and excluded from the mean.
func MAPE(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := pair("MAPE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	var acc mapeAccumulator
	for i := range t {
		acc.add(i, t[i], p[i])
	}
	return acc.mean("MAPE")
}

// ExplainedVarianceScore returns 1 - Var(yTrue - yPred) / Var(yTrue).
func ExplainedVarianceScore(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := pair("ExplainedVarianceScore", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	_, varTrue := stat.PopMeanVariance(t, nil)
	if varTrue == 0 {
		return 0, errors.NewValueError("ExplainedVarianceScore", "no variance in yTrue")
	}
	resid := make([]float64, len(t))
	floats.SubTo(resid, t, p)
	_, varResid := stat.PopMeanVariance(resid, nil)
	return 1 - varResid/varTrue, nil
}

// mapeAccumulator sums absolute percentage errors, skipping zero actuals.
type mapeAccumulator struct {
	sum     float64
	kept    int
	skipped int
}

func (a *mapeAccumulator) add(i int, actual, predicted float64) {
	if actual == 0 {
		a.skipped++
		errors.Warn(errors.NewUndefinedMetricWarning("MAPE", "a zero actual value", i))
		return
	}
	a.sum += math.Abs((actual - predicted) / actual)
	a.kept++
}

func (a *mapeAccumulator) mean(op string) (float64, error) {
	if a.kept == 0 {
		return 0, errors.NewValueError(op, "every actual value is zero")
	}
	return a.sum / float64(a.kept) * 100, nil
}
