package neural

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Dense is a fully connected layer: a = activation(x·W + b).
type Dense struct {
	units       int
	activation  Activation
	initializer Initializer

	w *mat.Dense    // fanIn × units
	b *mat.VecDense // units
}

// NewDense creates an unbuilt layer. Weights are allocated when the layer is
// added to a Sequential and its fan-in is known. Biases start at zero.
func NewDense(units int, activation Activation, initializer Initializer) *Dense {
	if activation == nil {
		activation = Linear
	}
	if initializer == nil {
		initializer = GlorotUniform
	}
	return &Dense{units: units, activation: activation, initializer: initializer}
}

// Units returns the layer width.
func (d *Dense) Units() int { return d.units }

// Activation returns the layer activation.
func (d *Dense) Activation() Activation { return d.activation }

// Initializer returns the kernel initializer.
func (d *Dense) Initializer() Initializer { return d.initializer }

// Weights returns a copy of the kernel, fanIn × units.
func (d *Dense) Weights() *mat.Dense { return mat.DenseCopyOf(d.w) }

// Bias returns a copy of the bias vector.
func (d *Dense) Bias() []float64 {
	return append([]float64(nil), d.b.RawVector().Data...)
}

// ParamCount returns the number of trainable parameters.
func (d *Dense) ParamCount() int {
	r, c := d.w.Dims()
	return r*c + d.units
}

func (d *Dense) build(fanIn int, src rand.Source) {
	data := make([]float64, fanIn*d.units)
	d.initializer.Init(data, fanIn, d.units, src)
	d.w = mat.NewDense(fanIn, d.units, data)
	d.b = mat.NewVecDense(d.units, nil)
}

// params returns views of the weight and bias storage, in the order grads
// are produced by backward.
func (d *Dense) params() [][]float64 {
	return [][]float64{d.w.RawMatrix().Data, d.b.RawVector().Data}
}

// forward returns the pre-activation z and output a for a batch x. It does
// not touch layer state, so concurrent inference is safe.
func (d *Dense) forward(x mat.Matrix) (z, a *mat.Dense) {
	n, _ := x.Dims()
	z = mat.NewDense(n, d.units, nil)
	z.Mul(x, d.w)
	bias := d.b.RawVector().Data
	for i := 0; i < n; i++ {
		floats.Add(z.RawRowView(i), bias)
	}
	a = mat.NewDense(n, d.units, nil)
	a.Apply(func(_, _ int, v float64) float64 { return d.activation.Apply(v) }, z)
	return z, a
}

// backward takes dL/da for the batch and returns dL/dx with the parameter
// gradients in params order.
func (d *Dense) backward(x, z, a, dA *mat.Dense) (dX *mat.Dense, grads [][]float64) {
	n, fanIn := x.Dims()

	dZ := mat.NewDense(n, d.units, nil)
	dZ.Apply(func(i, j int, v float64) float64 {
		return v * d.activation.Derivative(z.At(i, j), a.At(i, j))
	}, dA)

	dW := mat.NewDense(fanIn, d.units, nil)
	dW.Mul(x.T(), dZ)

	dB := make([]float64, d.units)
	for i := 0; i < n; i++ {
		floats.Add(dB, dZ.RawRowView(i))
	}

	dX = mat.NewDense(n, fanIn, nil)
	dX.Mul(dZ, d.w.T())

	return dX, [][]float64{dW.RawMatrix().Data, dB}
}
