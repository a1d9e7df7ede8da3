package neural

import "math"

// Adam implements the Adam update rule with bias correction folded into the
// step size.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	t    int
	m, v [][]float64
}

// NewAdam returns Adam with the usual moment decay rates and epsilon 1e-7.
func NewAdam(learningRate float64) *Adam {
	return &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-7,
	}
}

// Step applies one update of params in place from grads. The shapes of params
// must not change between calls.
func (o *Adam) Step(params, grads [][]float64) {
	if o.m == nil {
		o.m = make([][]float64, len(params))
		o.v = make([][]float64, len(params))
		for k, p := range params {
			o.m[k] = make([]float64, len(p))
			o.v[k] = make([]float64, len(p))
		}
	}
	o.t++
	c1 := 1 - math.Pow(o.Beta1, float64(o.t))
	c2 := 1 - math.Pow(o.Beta2, float64(o.t))
	lr := o.LearningRate * math.Sqrt(c2) / c1

	for k, p := range params {
		g, m, v := grads[k], o.m[k], o.v[k]
		for i := range p {
			m[i] = o.Beta1*m[i] + (1-o.Beta1)*g[i]
			v[i] = o.Beta2*v[i] + (1-o.Beta2)*g[i]*g[i]
			p[i] -= lr * m[i] / (math.Sqrt(v[i]) + o.Epsilon)
		}
	}
}

// Iterations returns the number of steps taken.
func (o *Adam) Iterations() int { return o.t }
