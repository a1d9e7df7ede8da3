package neural

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Initializer fills a freshly allocated weight slice.
type Initializer interface {
	Name() string
	Init(w []float64, fanIn, fanOut int, src rand.Source)
}

var (
	// HeNormal draws from a normal truncated at two standard deviations, with
	// variance 2/fanIn after truncation.
	HeNormal Initializer = heNormal{}

	// GlorotUniform draws from U(-l, l) with l = sqrt(6 / (fanIn + fanOut)).
	GlorotUniform Initializer = glorotUniform{}

	Zeros Initializer = zeros{}
)

// stddev of a unit normal truncated to [-2, 2]
const truncatedNormalStd = 0.87962566103423978

type heNormal struct{}

func (heNormal) Name() string { return "he_normal" }

func (heNormal) Init(w []float64, fanIn, _ int, src rand.Source) {
	sigma := math.Sqrt(2/float64(fanIn)) / truncatedNormalStd
	dist := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	for i := range w {
		x := dist.Rand()
		for math.Abs(x) > 2*sigma {
			x = dist.Rand()
		}
		w[i] = x
	}
}

type glorotUniform struct{}

func (glorotUniform) Name() string { return "glorot_uniform" }

func (glorotUniform) Init(w []float64, fanIn, fanOut int, src rand.Source) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	dist := distuv.Uniform{Min: -limit, Max: limit, Src: src}
	for i := range w {
		w[i] = dist.Rand()
	}
}

type zeros struct{}

func (zeros) Name() string { return "zeros" }

func (zeros) Init(w []float64, _, _ int, _ rand.Source) {
	for i := range w {
		w[i] = 0
	}
}
