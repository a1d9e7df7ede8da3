package neural

import (
	"github.com/JoeRonaldson/Predict-1500/pkg/log"
)

// Default training hyperparameters.
const (
	DefaultLearningRate = 0.0005
	DefaultBatchSize    = 32
	DefaultEpochs       = 150
)

// DefaultHiddenLayers is the width of each ReLU hidden layer of the regression network.
var DefaultHiddenLayers = []int{24, 24, 12}

// Option configures a Sequential.
type Option func(*Sequential)

// WithLearningRate sets the Adam step size.
func WithLearningRate(lr float64) Option {
	return func(s *Sequential) {
		s.learningRate = lr
	}
}

// WithBatchSize sets the minibatch size.
func WithBatchSize(n int) Option {
	return func(s *Sequential) {
		s.batchSize = n
	}
}

// WithEpochs sets the number of passes over the training rows.
func WithEpochs(n int) Option {
	return func(s *Sequential) {
		s.epochs = n
	}
}

// WithRandomState seeds weight initialization and batch shuffling. Negative
// seeds are non-deterministic.
func WithRandomState(seed int64) Option {
	return func(s *Sequential) {
		s.randomState = seed
	}
}

// WithHeNormalFirstLayer controls whether NewRegressionNetwork initializes
// the first hidden layer with HeNormal (default) or GlorotUniform.
func WithHeNormalFirstLayer(enabled bool) Option {
	return func(s *Sequential) {
		s.heNormalFirst = enabled
	}
}

// WithEpochCallback registers fn to run after every epoch of Fit.
func WithEpochCallback(fn func(EpochStats)) Option {
	return func(s *Sequential) {
		s.onEpoch = fn
	}
}

// WithLogger sets the logger used during Fit.
func WithLogger(l log.Logger) Option {
	return func(s *Sequential) {
		s.logger = l
	}
}
