// Package linear provides an ordinary least squares regressor, used as a
// baseline the network has to beat on the same normalized features.
package linear

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/JoeRonaldson/Predict-1500/core/model"
	"github.com/JoeRonaldson/Predict-1500/core/parallel"
	"github.com/JoeRonaldson/Predict-1500/metrics"
	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

// rows below this are copied into the design matrix sequentially
const parallelThreshold = 1000

// LinearRegression fits y = X·w + b by least squares.
type LinearRegression struct {
	state        *model.StateManager
	fitIntercept bool

	weights   *mat.VecDense
	intercept float64
	nFeatures int
}

// NewLinearRegression creates an unfitted regressor.
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{
		state:        model.NewStateManager("LinearRegression"),
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit solves the least squares problem over [1, X] (or X without intercept)
// with a QR factorization.
func (lr *LinearRegression) Fit(ctx context.Context, X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	offset := 0
	if lr.fitIntercept {
		offset = 1
	}
	if r < c+offset {
		return errors.NewValidationError("n_samples", "must be at least the number of coefficients", r)
	}

	design := mat.NewDense(r, c+offset, nil)
	err := parallel.ParallelizeWithThreshold(ctx, r, parallelThreshold, func(start, end int) error {
		for i := start; i < end; i++ {
			if offset == 1 {
				design.Set(i, 0, 1)
			}
			for j := 0; j < c; j++ {
				design.Set(i, j+offset, X.At(i, j))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	var coef mat.VecDense
	if err := coef.SolveVec(design, mat.NewVecDense(r, mat.Col(nil, 0, y))); err != nil {
		return errors.NewModelError("LinearRegression.Fit", "singular design matrix", err)
	}
	if err := errors.CheckNumericalStability("LinearRegression.Fit", coef.RawVector().Data, 0); err != nil {
		return err
	}

	lr.intercept = 0
	if offset == 1 {
		lr.intercept = coef.AtVec(0)
	}
	lr.weights = mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		lr.weights.SetVec(j, coef.AtVec(j+offset))
	}
	lr.nFeatures = c
	lr.state.SetFitted(c, r)
	return nil
}

// Predict returns one prediction per row of X as an n×1 matrix.
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.state.RequireFitted("Predict"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if c != lr.nFeatures {
		return nil, errors.NewInputShapeError("prediction", []int{r, lr.nFeatures}, []int{r, c})
	}

	var out mat.VecDense
	out.MulVec(X, lr.weights)
	for i := 0; i < r; i++ {
		out.SetVec(i, out.AtVec(i)+lr.intercept)
	}
	return mat.NewDense(r, 1, out.RawVector().Data), nil
}

// PredictRow returns the prediction for a single feature row.
func (lr *LinearRegression) PredictRow(x []float64) (float64, error) {
	if err := lr.state.RequireFitted("PredictRow"); err != nil {
		return 0, err
	}
	if len(x) != lr.nFeatures {
		return 0, errors.NewInputShapeError("prediction", []int{1, lr.nFeatures}, []int{1, len(x)})
	}
	return mat.Dot(mat.NewVecDense(len(x), x), lr.weights) + lr.intercept, nil
}

// InputWidth returns the number of features seen by Fit.
func (lr *LinearRegression) InputWidth() int { return lr.nFeatures }

// IsFitted reports whether Fit has succeeded.
func (lr *LinearRegression) IsFitted() bool { return lr.state.IsFitted() }

// Weights returns a copy of the fitted coefficients, or nil before Fit.
func (lr *LinearRegression) Weights() []float64 {
	if lr.weights == nil {
		return nil
	}
	return append([]float64(nil), lr.weights.RawVector().Data...)
}

// Intercept returns the fitted intercept.
func (lr *LinearRegression) Intercept() float64 { return lr.intercept }

// Score returns the coefficient of determination R² on X, y.
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	r, _ := y.Dims()
	return metrics.R2Score(
		mat.NewVecDense(r, mat.Col(nil, 0, y)),
		mat.NewVecDense(r, mat.Col(nil, 0, pred)),
	)
}
