package neural

import "gonum.org/v1/gonum/mat"

// MeanSquaredError returns mean((pred - target)^2) over every element.
func MeanSquaredError(pred, target mat.Matrix) float64 {
	r, c := pred.Dims()
	var sum float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d := pred.At(i, j) - target.At(i, j)
			sum += d * d
		}
	}
	return sum / float64(r*c)
}

// meanSquaredErrorGrad returns dL/dpred for MeanSquaredError.
func meanSquaredErrorGrad(pred, target mat.Matrix) *mat.Dense {
	r, c := pred.Dims()
	g := mat.NewDense(r, c, nil)
	g.Sub(pred, target)
	g.Scale(2/float64(r*c), g)
	return g
}
