// Package neural implements the small feed-forward regression network used to
// predict 2k power: dense layers trained with Adam on mean squared error.
package neural

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"text/tabwriter"

	"gonum.org/v1/gonum/mat"

	"github.com/JoeRonaldson/Predict-1500/core/model"
	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
	"github.com/JoeRonaldson/Predict-1500/pkg/log"
)

// EpochStats is reported after every training epoch.
type EpochStats struct {
	Epoch   int // 1-based
	Loss    float64
	ValLoss float64
	HasVal  bool
}

// History records the per-epoch training and validation loss of one Fit.
type History struct {
	Loss    []float64
	ValLoss []float64
}

// Final returns the last training loss, or NaN for an empty history.
func (h *History) Final() float64 {
	if h == nil || len(h.Loss) == 0 {
		return math.NaN()
	}
	return h.Loss[len(h.Loss)-1]
}

// Sequential is a stack of Dense layers. Fit takes the write lock; inference
// takes the read lock, so predictions may run concurrently between fits.
type Sequential struct {
	mu    sync.RWMutex
	state *model.StateManager

	inputs int
	layers []*Dense

	learningRate  float64
	batchSize     int
	epochs        int
	randomState   int64
	heNormalFirst bool
	onEpoch       func(EpochStats)
	logger        log.Logger

	rng *rand.Rand
}

// NewSequential builds a network over inputs features from layers, allocating
// and initializing their weights.
func NewSequential(inputs int, layers []*Dense, opts ...Option) (*Sequential, error) {
	s := &Sequential{
		state:         model.NewStateManager("Sequential"),
		inputs:        inputs,
		learningRate:  DefaultLearningRate,
		batchSize:     DefaultBatchSize,
		epochs:        DefaultEpochs,
		randomState:   -1,
		heNormalFirst: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.validate(layers); err != nil {
		return nil, err
	}
	if s.logger == nil {
		s.logger = log.GetLogger()
	}
	s.logger = s.logger.With(log.ModelNameKey, "Sequential")

	if s.randomState >= 0 {
		seed := uint64(s.randomState)
		s.rng = rand.New(rand.NewPCG(seed, seed))
	} else {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s.layers = layers
	fanIn := inputs
	for _, l := range s.layers {
		l.build(fanIn, s.rng)
		fanIn = l.units
	}
	return s, nil
}

// NewRegressionNetwork builds inputs → ReLU hidden layers → one sigmoid unit.
// The first hidden layer uses HeNormal unless disabled; the rest use GlorotUniform.
func NewRegressionNetwork(inputs int, hidden []int, opts ...Option) (*Sequential, error) {
	if len(hidden) == 0 {
		return nil, errors.NewValidationError("hidden_layers", "must have at least one layer", hidden)
	}
	probe := &Sequential{heNormalFirst: true}
	for _, opt := range opts {
		opt(probe)
	}

	layers := make([]*Dense, 0, len(hidden)+1)
	for i, units := range hidden {
		kernel := GlorotUniform
		if i == 0 && probe.heNormalFirst {
			kernel = HeNormal
		}
		layers = append(layers, NewDense(units, ReLU, kernel))
	}
	layers = append(layers, NewDense(1, Sigmoid, GlorotUniform))
	return NewSequential(inputs, layers, opts...)
}

func (s *Sequential) validate(layers []*Dense) error {
	if s.inputs <= 0 {
		return errors.NewValidationError("inputs", "must be positive", s.inputs)
	}
	if len(layers) == 0 {
		return errors.NewValidationError("layers", "must not be empty", 0)
	}
	for i, l := range layers {
		if l == nil || l.units <= 0 {
			return errors.NewValidationError(fmt.Sprintf("layers[%d].units", i), "must be positive", l)
		}
	}
	if !(s.learningRate > 0) {
		return errors.NewValidationError("learning_rate", "must be positive", s.learningRate)
	}
	if s.batchSize <= 0 {
		return errors.NewValidationError("batch_size", "must be positive", s.batchSize)
	}
	if s.epochs <= 0 {
		return errors.NewValidationError("epochs", "must be positive", s.epochs)
	}
	return nil
}

// InputWidth returns the number of features the network expects.
func (s *Sequential) InputWidth() int { return s.inputs }

// OutputWidth returns the number of units of the last layer.
func (s *Sequential) OutputWidth() int { return s.layers[len(s.layers)-1].units }

// Layers returns the layers in order.
func (s *Sequential) Layers() []*Dense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Dense(nil), s.layers...)
}

// IsFitted reports whether Fit has completed at least once.
func (s *Sequential) IsFitted() bool { return s.state.IsFitted() }

// SetWeights overwrites the kernel and bias of layer i.
func (s *Sequential) SetWeights(i int, w mat.Matrix, b []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.layers) {
		return errors.NewValidationError("layer", fmt.Sprintf("must be in [0, %d)", len(s.layers)), i)
	}
	l := s.layers[i]
	wr, wc := l.w.Dims()
	r, c := w.Dims()
	if r != wr {
		return errors.NewDimensionError("Sequential.SetWeights", wr, r, 0)
	}
	if c != wc {
		return errors.NewDimensionError("Sequential.SetWeights", wc, c, 1)
	}
	if len(b) != l.units {
		return errors.NewDimensionError("Sequential.SetWeights", l.units, len(b), 1)
	}
	l.w.Copy(w)
	copy(l.b.RawVector().Data, b)
	return nil
}

// Fit trains the network for the configured number of epochs on minibatches of
// the shuffled training rows. When valX and valY are given, the validation
// loss is measured after every epoch; it never influences the weights.
func (s *Sequential) Fit(trainX, trainY, valX, valY mat.Matrix) (*History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.checkXY("Fit", trainX, trainY)
	if err != nil {
		return nil, err
	}
	hasVal := valX != nil || valY != nil
	if hasVal {
		if valX == nil || valY == nil {
			return nil, errors.NewValidationError("validation_data", "valX and valY must both be set", nil)
		}
		if _, err := s.checkXY("Fit.validation", valX, valY); err != nil {
			return nil, err
		}
	}

	x := mat.DenseCopyOf(trainX)
	y := mat.DenseCopyOf(trainY)
	opt := NewAdam(s.learningRate)
	hist := &History{
		Loss:    make([]float64, 0, s.epochs),
		ValLoss: make([]float64, 0, s.epochs),
	}

	s.logger.Info("training started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, s.inputs,
		log.BatchSizeKey, s.batchSize,
		log.LearningRateKey, s.learningRate,
	)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for epoch := 1; epoch <= s.epochs; epoch++ {
		s.rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

		var total float64
		for start := 0; start < n; start += s.batchSize {
			end := min(start+s.batchSize, n)
			bx, by := gatherRows(x, y, order[start:end])
			total += s.step(bx, by, opt) * float64(end-start)
		}
		loss := total / float64(n)
		if err := errors.CheckScalar("Sequential.Fit", loss, epoch); err != nil {
			return hist, err
		}

		stats := EpochStats{Epoch: epoch, Loss: loss, HasVal: hasVal}
		hist.Loss = append(hist.Loss, loss)
		if hasVal {
			stats.ValLoss = MeanSquaredError(s.forward(valX), valY)
			if err := errors.CheckScalar("Sequential.Fit.validation", stats.ValLoss, epoch); err != nil {
				return hist, err
			}
			hist.ValLoss = append(hist.ValLoss, stats.ValLoss)
		}
		if s.logger.Enabled(context.Background(), log.LevelDebug) {
			s.logger.Debug("epoch", log.EpochKey, epoch, log.LossKey, loss, log.ValLossKey, stats.ValLoss)
		}
		if s.onEpoch != nil {
			s.onEpoch(stats)
		}
	}

	s.state.SetFitted(s.inputs, n)
	s.logger.Info("training finished", log.EpochKey, s.epochs, log.LossKey, hist.Final())
	return hist, nil
}

func (s *Sequential) checkXY(op string, x, y mat.Matrix) (int, error) {
	n, f := x.Dims()
	if n == 0 {
		return 0, errors.NewModelError("Sequential."+op, "empty data", errors.ErrEmptyData)
	}
	if f != s.inputs {
		return 0, errors.NewDimensionError("Sequential."+op, s.inputs, f, 1)
	}
	ny, cy := y.Dims()
	if ny != n {
		return 0, errors.NewDimensionError("Sequential."+op, n, ny, 0)
	}
	if cy != s.OutputWidth() {
		return 0, errors.NewDimensionError("Sequential."+op, s.OutputWidth(), cy, 1)
	}
	return n, nil
}

// step runs forward and backward passes over one batch and updates the
// weights. It returns the batch loss before the update.
func (s *Sequential) step(x, y *mat.Dense, opt *Adam) float64 {
	inputs := make([]*mat.Dense, len(s.layers))
	zs := make([]*mat.Dense, len(s.layers))
	as := make([]*mat.Dense, len(s.layers))

	cur := x
	for i, l := range s.layers {
		inputs[i] = cur
		zs[i], as[i] = l.forward(cur)
		cur = as[i]
	}
	loss := MeanSquaredError(cur, y)

	var params, grads [][]float64
	dA := meanSquaredErrorGrad(cur, y)
	for i := len(s.layers) - 1; i >= 0; i-- {
		var g [][]float64
		dA, g = s.layers[i].backward(inputs[i], zs[i], as[i], dA)
		params = append(params, s.layers[i].params()...)
		grads = append(grads, g...)
	}
	opt.Step(params, grads)
	return loss
}

func (s *Sequential) forward(x mat.Matrix) *mat.Dense {
	var cur mat.Matrix = x
	var out *mat.Dense
	for _, l := range s.layers {
		_, out = l.forward(cur)
		cur = out
	}
	return out
}

func gatherRows(x, y *mat.Dense, idx []int) (*mat.Dense, *mat.Dense) {
	_, fc := x.Dims()
	_, yc := y.Dims()
	bx := mat.NewDense(len(idx), fc, nil)
	by := mat.NewDense(len(idx), yc, nil)
	for i, r := range idx {
		bx.SetRow(i, x.RawRowView(r))
		by.SetRow(i, y.RawRowView(r))
	}
	return bx, by
}

// Predict runs a forward pass over every row of X with the current weights.
func (s *Sequential) Predict(X mat.Matrix) (mat.Matrix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, c := X.Dims()
	if c != s.inputs {
		return nil, errors.NewInputShapeError("prediction", []int{r, s.inputs}, []int{r, c})
	}
	if r == 0 {
		return nil, errors.NewModelError("Sequential.Predict", "empty data", errors.ErrEmptyData)
	}
	return s.forward(X), nil
}

// PredictRow runs a forward pass over one feature row and returns the single output.
func (s *Sequential) PredictRow(x []float64) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(x) != s.inputs {
		return 0, errors.NewInputShapeError("prediction", []int{1, s.inputs}, []int{1, len(x)})
	}
	if s.OutputWidth() != 1 {
		return 0, errors.NewValueError("Sequential.PredictRow", "network has more than one output")
	}
	out := s.forward(mat.NewDense(1, s.inputs, append([]float64(nil), x...)))
	return out.At(0, 0), nil
}

// ParamCount returns the total number of trainable parameters.
func (s *Sequential) ParamCount() int {
	total := 0
	for _, l := range s.layers {
		total += l.ParamCount()
	}
	return total
}

// Summary renders the layer table: name, output shape, activation and
// parameter count.
func (s *Sequential) Summary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	b.WriteString("Model: \"sequential\"\n")
	tw := tabwriter.NewWriter(&b, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "Layer (type)\tOutput Shape\tActivation\tParam #")
	fmt.Fprintln(tw, "------------\t------------\t----------\t-------")
	for i, l := range s.layers {
		name := "dense"
		if i > 0 {
			name = fmt.Sprintf("dense_%d", i)
		}
		fmt.Fprintf(tw, "%s (Dense)\t(None, %d)\t%s\t%d\n", name, l.units, l.activation.Name(), l.ParamCount())
	}
	tw.Flush()
	total := s.ParamCount()
	fmt.Fprintf(&b, "Total params: %d\nTrainable params: %d\nNon-trainable params: 0\n", total, total)
	return b.String()
}
