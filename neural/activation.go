package neural

import "math"

// Activation is an elementwise nonlinearity.
type Activation interface {
	Name() string
	Apply(z float64) float64
	// Derivative returns dA/dZ given the pre-activation z and its output a.
	Derivative(z, a float64) float64
}

var (
	ReLU    Activation = relu{}
	Sigmoid Activation = sigmoid{}
	Linear  Activation = linear{}
)

type relu struct{}

func (relu) Name() string { return "relu" }

func (relu) Apply(z float64) float64 {
	if z > 0 {
		return z
	}
	return 0
}

func (relu) Derivative(z, _ float64) float64 {
	if z > 0 {
		return 1
	}
	return 0
}

type sigmoid struct{}

func (sigmoid) Name() string { return "sigmoid" }

func (sigmoid) Apply(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func (sigmoid) Derivative(_, a float64) float64 {
	return a * (1 - a)
}

type linear struct{}

func (linear) Name() string                    { return "linear" }
func (linear) Apply(z float64) float64         { return z }
func (linear) Derivative(_, _ float64) float64 { return 1 }
