// Package pipeline runs one end-to-end training and batch prediction pass:
// load, normalize, split, train, evaluate, then score the batch file.
package pipeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/JoeRonaldson/Predict-1500/config"
	"github.com/JoeRonaldson/Predict-1500/core/model"
	"github.com/JoeRonaldson/Predict-1500/dataset"
	"github.com/JoeRonaldson/Predict-1500/linear"
	"github.com/JoeRonaldson/Predict-1500/metrics"
	"github.com/JoeRonaldson/Predict-1500/model_selection"
	"github.com/JoeRonaldson/Predict-1500/neural"
	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
	"github.com/JoeRonaldson/Predict-1500/pkg/log"
	"github.com/JoeRonaldson/Predict-1500/predict"
	"github.com/JoeRonaldson/Predict-1500/preprocessing"
	"github.com/JoeRonaldson/Predict-1500/store"
)

// Split file names written under Config.SplitDir.
const (
	TrainSplitFile = "newTrain.csv"
	TestSplitFile  = "newTest.csv"
)

// Pipeline is a configured run. It is not safe for concurrent Run calls.
type Pipeline struct {
	cfg       config.Config
	logger    log.Logger
	schema    dataset.Schema
	batchCols dataset.BatchColumns
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSchema overrides dataset.DefaultSchema.
func WithSchema(s dataset.Schema) Option {
	return func(p *Pipeline) { p.schema = s }
}

// WithBatchColumns overrides dataset.DefaultBatchColumns.
func WithBatchColumns(c dataset.BatchColumns) Option {
	return func(p *Pipeline) { p.batchCols = c }
}

// Result is what one Run produced.
type Result struct {
	RunID       string
	Statistics  *preprocessing.ColumnStatistics
	Schema      dataset.Schema
	Split       *model_selection.Split
	Model       *neural.Sequential
	History     *neural.History
	Sample      *predict.Prediction
	Predictions []predict.Prediction

	// MAPE is the network's percentage error on the test rows.
	MAPE float64

	// TestMSE is the network's loss on the normalized test labels.
	TestMSE float64

	// BaselineMAPE is the test error of a least squares fit on the same
	// features, or NaN when the baseline could not be fitted.
	BaselineMAPE float64
}

// New validates cfg and returns a Pipeline. A nil logger uses log.GetLogger.
func New(cfg *config.Config, logger log.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.NewValidationError("config", "must not be nil", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.GetLogger()
	}
	p := &Pipeline{
		cfg:       *cfg,
		logger:    logger,
		schema:    dataset.DefaultSchema(),
		batchCols: dataset.DefaultBatchColumns(),
	}
	for _, opt := range opts {
		opt(p)
	}
	// the widest column any feature names is the minimum file width
	width := 0
	for _, c := range p.schema.Columns {
		width = max(width, c+1)
	}
	if err := p.schema.Validate(width); err != nil {
		return nil, err
	}
	return p, nil
}

// Run executes every stage. ctx is checked between stages; training itself is
// one blocking call.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	res := &Result{RunID: store.NewRunID()}
	logger := p.logger.With(log.RunIDKey, res.RunID, log.ComponentKey, "pipeline")

	ds, err := dataset.LoadCSV(p.cfg.TrainingPath)
	if err != nil {
		return nil, err
	}
	if err := errors.CheckMatrix("pipeline.load", ds.Matrix(), ds.Rows(), ds.Cols(), 0); err != nil {
		return nil, errors.Wrapf(err, "training data %s", p.cfg.TrainingPath)
	}
	logger.Info("dataset loaded", log.PathKey, p.cfg.TrainingPath, log.SamplesKey, ds.Rows(), log.FeaturesKey, ds.Cols())
	if p.cfg.ShuffleBeforeFit {
		ds = model_selection.Shuffle(ds, model_selection.WithRandomState(p.cfg.RandomState))
	}

	if res.Schema, err = p.schema.Resolve(ds.Header()); err != nil {
		return nil, err
	}
	if res.Statistics, err = preprocessing.FitColumnStatistics(ds); err != nil {
		return nil, err
	}
	if err := res.Statistics.Validate(); err != nil {
		return nil, err
	}
	normalized, err := preprocessing.NewMinMaxScalerFromStatistics(res.Statistics).Transform(ds)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Split, err = model_selection.TrainTestSplit(normalized, p.cfg.TestSize, model_selection.WithRandomState(p.cfg.RandomState))
	if err != nil {
		return nil, err
	}
	logger.Info("dataset split",
		log.OperationKey, log.OperationSplit,
		"train.samples", res.Split.Train.Rows(),
		"test.samples", res.Split.Test.Rows(),
		log.RandomSeedKey, p.cfg.RandomState,
	)
	if p.cfg.SplitDir != "" {
		if err := p.writeSplit(res.Split); err != nil {
			return nil, err
		}
	}

	trainX, trainY, err := xy(res.Split.Train, res.Schema)
	if err != nil {
		return nil, err
	}
	testX, testY, err := xy(res.Split.Test, res.Schema)
	if err != nil {
		return nil, err
	}

	res.Model, err = neural.NewRegressionNetwork(len(dataset.ModelFeatures), p.cfg.HiddenLayers,
		neural.WithLearningRate(p.cfg.LearningRate),
		neural.WithBatchSize(p.cfg.BatchSize),
		neural.WithEpochs(p.cfg.Epochs),
		neural.WithRandomState(p.cfg.RandomState),
		neural.WithLogger(logger),
		neural.WithEpochCallback(p.epochLogger(logger)),
	)
	if err != nil {
		return nil, err
	}
	logger.Info("model built", log.ModelNameKey, "Sequential", "summary", res.Model.Summary())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if res.History, err = res.Model.Fit(trainX, trainY, testX, testY); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if res.MAPE, res.TestMSE, err = evaluate(res.Model, testX, testY, res); err != nil {
		return nil, err
	}
	logger.Info("model evaluated",
		log.OperationKey, log.OperationEvaluate,
		log.ModelNameKey, "Sequential",
		log.MAPEKey, res.MAPE,
		log.LossKey, res.TestMSE,
	)
	res.BaselineMAPE = p.baseline(ctx, logger, res, trainX, trainY, testX, testY)

	predictor, err := predict.New(res.Model, res.Statistics, res.Schema)
	if err != nil {
		return nil, err
	}
	if s := p.cfg.SamplePrediction; s != nil {
		pred, err := predictor.PredictWithPace(predict.Input(*s))
		if err != nil {
			return nil, errors.Wrap(err, "sample prediction")
		}
		res.Sample = &pred
		logger.Info("sample prediction", log.WattsKey, pred.Watts, log.PaceKey, pred.Pace)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inputs, err := p.batch(ctx, predictor, logger, res)
	if err != nil {
		return nil, err
	}

	if p.cfg.LossPlotPath != "" {
		if err := PlotHistory(res.History, p.cfg.LossPlotPath); err != nil {
			return nil, err
		}
		logger.Info("loss plot written", log.PathKey, p.cfg.LossPlotPath)
	}
	if p.cfg.HistoryDBPath != "" {
		if err := p.record(ctx, res, inputs, started); err != nil {
			return nil, err
		}
		logger.Info("run recorded", log.PathKey, p.cfg.HistoryDBPath)
	}

	logger.Info("run finished", log.DurationMsKey, time.Since(started).Milliseconds())
	return res, nil
}

func (p *Pipeline) epochLogger(logger log.Logger) func(neural.EpochStats) {
	every := p.cfg.LogEvery
	return func(s neural.EpochStats) {
		if every == 0 || (s.Epoch%every != 0 && s.Epoch != p.cfg.Epochs) {
			return
		}
		fields := []any{log.EpochKey, s.Epoch, log.LossKey, s.Loss}
		if s.HasVal {
			fields = append(fields, log.ValLossKey, s.ValLoss)
		}
		logger.Info("epoch finished", fields...)
	}
}

// baseline scores an ordinary least squares fit for comparison. Failures are
// logged, not returned.
func (p *Pipeline) baseline(ctx context.Context, logger log.Logger, res *Result, trainX, trainY, testX, testY mat.Matrix) float64 {
	lr := linear.NewLinearRegression()
	if err := lr.Fit(ctx, trainX, trainY); err != nil {
		logger.Warn("baseline fit failed", log.ModelNameKey, "LinearRegression", log.ErrorKey, err)
		return math.NaN()
	}
	mape, mse, err := evaluate(lr, testX, testY, res)
	if err != nil {
		logger.Warn("baseline evaluation failed", log.ModelNameKey, "LinearRegression", log.ErrorKey, err)
		return math.NaN()
	}
	logger.Info("baseline evaluated", log.ModelNameKey, "LinearRegression", log.MAPEKey, mape, log.LossKey, mse)
	return mape
}

// evaluate returns the test MAPE of m in original units and its MSE on the
// normalized labels.
func evaluate(m model.Regressor, testX, testY mat.Matrix, res *Result) (mape, mse float64, err error) {
	if w := m.InputWidth(); w != len(dataset.ModelFeatures) {
		return 0, 0, errors.NewDimensionError("pipeline.evaluate", len(dataset.ModelFeatures), w, 1)
	}
	mape, err = metrics.EvaluateMAPE(m, testX, testY, res.Statistics, res.Schema.LabelColumn(), res.Split.Test.Rows())
	if err != nil {
		return 0, 0, err
	}
	pred, err := m.Predict(testX)
	if err != nil {
		return 0, 0, err
	}
	mse, err = metrics.MSEMatrix(testY, pred)
	return mape, mse, err
}

func (p *Pipeline) writeSplit(s *model_selection.Split) error {
	if err := dataset.SaveCSV(filepath.Join(p.cfg.SplitDir, TrainSplitFile), s.Train); err != nil {
		return err
	}
	return dataset.SaveCSV(filepath.Join(p.cfg.SplitDir, TestSplitFile), s.Test)
}

// batch scores the prediction file and writes its outputs.
func (p *Pipeline) batch(ctx context.Context, predictor *predict.Predictor, logger log.Logger, res *Result) ([]predict.Input, error) {
	table, err := dataset.LoadTable(p.cfg.PredictionPath)
	if err != nil {
		return nil, err
	}
	inputs, err := predict.InputsFromTable(table, p.batchCols)
	if err != nil {
		return nil, err
	}
	if res.Predictions, err = predictor.PredictBatch(ctx, inputs); err != nil {
		return nil, err
	}
	if err := table.AppendColumn(dataset.PredictionColumn, predict.Paces(res.Predictions)); err != nil {
		return nil, err
	}
	if err := table.Save(p.cfg.PredictionOutputPath); err != nil {
		return nil, err
	}
	logger.Info("batch predictions written",
		log.OperationKey, log.OperationPredict,
		log.PredsKey, len(res.Predictions),
		log.PathKey, p.cfg.PredictionOutputPath,
	)

	if p.cfg.PredictionParquetPath != "" {
		records, err := predict.Records(inputs, res.Predictions)
		if err != nil {
			return nil, err
		}
		if err := dataset.WritePredictionsParquet(p.cfg.PredictionParquetPath, records); err != nil {
			return nil, err
		}
		logger.Info("parquet predictions written", log.PathKey, p.cfg.PredictionParquetPath)
	}
	return inputs, nil
}

// record stores the run and its batch predictions in the history database.
func (p *Pipeline) record(ctx context.Context, res *Result, inputs []predict.Input, started time.Time) error {
	cfgJSON, err := json.Marshal(p.cfg)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	records, err := predict.Records(inputs, res.Predictions)
	if err != nil {
		return err
	}

	db, err := store.Open(p.cfg.HistoryDBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	run := &store.Run{
		ID:         res.RunID,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Config:     string(cfgJSON),
		TrainRows:  res.Split.Train.Rows(),
		TestRows:   res.Split.Test.Rows(),
		Epochs:     len(res.History.Loss),
		ParamCount: res.Model.ParamCount(),
		FinalLoss:  res.History.Final(),
		MAPE:       res.MAPE,
	}
	if n := len(res.History.ValLoss); n > 0 {
		run.FinalValLoss = sql.NullFloat64{Float64: res.History.ValLoss[n-1], Valid: true}
	}
	if err := db.SaveRun(ctx, run, res.History.Loss, res.History.ValLoss); err != nil {
		return err
	}
	return db.SavePredictions(ctx, res.RunID, records)
}

// xy selects the model features and the label of ds.
func xy(ds *dataset.Dataset, schema dataset.Schema) (x, y mat.Matrix, err error) {
	xd, err := ds.Select(schema.FeatureColumns())
	if err != nil {
		return nil, nil, err
	}
	yd, err := ds.Select([]int{schema.LabelColumn()})
	if err != nil {
		return nil, nil, err
	}
	return xd, yd, nil
}
