package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeRonaldson/Predict-1500/config"
	"github.com/JoeRonaldson/Predict-1500/dataset"
	"github.com/JoeRonaldson/Predict-1500/neural"
	"github.com/JoeRonaldson/Predict-1500/pace"
	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
	"github.com/JoeRonaldson/Predict-1500/pkg/log"
	"github.com/JoeRonaldson/Predict-1500/store"
)

// writeFixtures creates a cleaned training file with n rows and a batch file
// with three athletes, and returns a config pointing at them.
func writeFixtures(t *testing.T, n int) *config.Config {
	t.Helper()
	dir := t.TempDir()

	var train strings.Builder
	train.WriteString(",two-k,power-per-stroke,weight,age,reps\n")
	for i := 0; i < n; i++ {
		pps := 5 + float64(i%9)*0.35
		weight := 60 + float64((i*7)%31)
		age := 18 + float64((i*5)%23)
		reps := 6 + float64(i%7)
		label := 0.8*pps + 0.02*weight - 0.01*age + 0.05*reps
		fmt.Fprintf(&train, "%d,%g,%g,%g,%g,%g\n", i, label, pps, weight, age, reps)
	}
	trainPath := filepath.Join(dir, "cleanedData.csv")
	require.NoError(t, os.WriteFile(trainPath, []byte(train.String()), 0o644))

	batch := "index,name,watts,rate,reps,weight,age,twoKrate\n" +
		"0,Ann,130,22,10,73,24,32\n" +
		"1,Ben,150,24,8,80,30,30\n" +
		"2,Cat,120,20,12,65,21,34\n"
	batchPath := filepath.Join(dir, "batchPredictions.csv")
	require.NoError(t, os.WriteFile(batchPath, []byte(batch), 0o644))

	cfg := config.Default()
	cfg.TrainingPath = trainPath
	cfg.PredictionPath = batchPath
	cfg.PredictionOutputPath = filepath.Join(dir, "out", "batchPredictionsComplete.csv")
	cfg.Epochs = 5
	cfg.TestSize = 10
	cfg.RandomState = 1
	cfg.LogEvery = 2
	return &cfg
}

func TestRun(t *testing.T) {
	cfg := writeFixtures(t, 60)
	logger, _ := log.NewTestLogger(log.LevelInfo)

	p, err := New(cfg, logger)
	require.NoError(t, err)
	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 50, res.Split.Train.Rows())
	assert.Equal(t, 10, res.Split.Test.Rows())
	require.Len(t, res.History.Loss, 5)
	require.Len(t, res.History.ValLoss, 5)
	assert.True(t, res.Model.IsFitted())
	assert.GreaterOrEqual(t, res.MAPE, 0.0)

	require.NotNil(t, res.Sample)
	assert.Greater(t, res.Sample.Watts, 0.0)

	require.Len(t, res.Predictions, 3)
	out, err := dataset.LoadTable(cfg.PredictionOutputPath)
	require.NoError(t, err)
	assert.Equal(t, dataset.PredictionColumn, out.Header[len(out.Header)-1])
	require.Len(t, out.Records, 3)
	for i, rec := range out.Records {
		assert.Equal(t, res.Predictions[i].Pace, rec[len(rec)-1])
		_, err := pace.Parse(rec[len(rec)-1])
		assert.NoError(t, err)
	}
	assert.Equal(t, "Ben", out.Records[1][1])

	assert.True(t, logger.ContainsMessage("dataset loaded"))
	assert.True(t, logger.ContainsMessage("model evaluated"))
	assert.True(t, logger.ContainsField(log.EpochKey, 4.0))
	assert.True(t, logger.ContainsField(log.EpochKey, 5.0), "the last epoch is always logged")
	assert.True(t, logger.ContainsField(log.RunIDKey, res.RunID))
}

func TestRunIsDeterministicWithSeed(t *testing.T) {
	cfg := writeFixtures(t, 40)
	cfg.SamplePrediction = nil

	run := func() ([]int, []float64) {
		p, err := New(cfg, log.Nop())
		require.NoError(t, err)
		res, err := p.Run(context.Background())
		require.NoError(t, err)
		return res.Split.TestIndex, res.History.Loss
	}
	idx1, loss1 := run()
	idx2, loss2 := run()
	assert.Equal(t, idx1, idx2)
	assert.Equal(t, loss1, loss2)
}

func TestRunOptionalOutputs(t *testing.T) {
	cfg := writeFixtures(t, 40)
	dir := filepath.Dir(cfg.TrainingPath)
	cfg.SplitDir = filepath.Join(dir, "split")
	cfg.PredictionParquetPath = filepath.Join(dir, "preds.parquet")
	cfg.LossPlotPath = filepath.Join(dir, "loss.png")
	cfg.HistoryDBPath = filepath.Join(dir, "history.db")
	cfg.ShuffleBeforeFit = true

	p, err := New(cfg, log.Nop())
	require.NoError(t, err)
	res, err := p.Run(context.Background())
	require.NoError(t, err)

	train, err := dataset.LoadCSV(filepath.Join(cfg.SplitDir, TrainSplitFile))
	require.NoError(t, err)
	assert.Equal(t, 30, train.Rows())
	test, err := dataset.LoadCSV(filepath.Join(cfg.SplitDir, TestSplitFile))
	require.NoError(t, err)
	assert.Equal(t, 10, test.Rows())

	data, err := os.ReadFile(cfg.PredictionParquetPath)
	require.NoError(t, err)
	assert.Equal(t, "PAR1", string(data[:4]))

	info, err := os.Stat(cfg.LossPlotPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	db, err := store.Open(cfg.HistoryDBPath)
	require.NoError(t, err)
	defer db.Close()
	run, err := db.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, 30, run.TrainRows)
	assert.Equal(t, res.Model.ParamCount(), run.ParamCount)
	assert.InDelta(t, res.MAPE, run.MAPE, 1e-12)
	preds, err := db.Predictions(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Len(t, preds, 3)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	cfg := config.Default()
	cfg.Epochs = 0
	_, err = New(&cfg, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	cfg = config.Default()
	bad := dataset.DefaultSchema()
	bad.Columns[dataset.Age] = bad.Columns[dataset.Weight]
	_, err = New(&cfg, nil, WithSchema(bad))
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestRunErrors(t *testing.T) {
	t.Run("missing training file", func(t *testing.T) {
		cfg := writeFixtures(t, 40)
		cfg.TrainingPath = filepath.Join(t.TempDir(), "nope.csv")
		p, err := New(cfg, log.Nop())
		require.NoError(t, err)
		_, err = p.Run(context.Background())
		assert.Error(t, err)
	})

	t.Run("test size too large", func(t *testing.T) {
		cfg := writeFixtures(t, 20)
		cfg.TestSize = 20
		p, err := New(cfg, log.Nop())
		require.NoError(t, err)
		_, err = p.Run(context.Background())
		assert.ErrorIs(t, err, errors.ErrInvalidArgument)
	})

	t.Run("nan in training data", func(t *testing.T) {
		cfg := writeFixtures(t, 40)
		data, err := os.ReadFile(cfg.TrainingPath)
		require.NoError(t, err)
		lines := strings.Split(string(data), "\n")
		lines[3] = "2,NaN,5.7,74,28,8"
		require.NoError(t, os.WriteFile(cfg.TrainingPath, []byte(strings.Join(lines, "\n")), 0o644))

		p, err := New(cfg, log.Nop())
		require.NoError(t, err)
		_, err = p.Run(context.Background())
		var numErr *errors.NumericalInstabilityError
		assert.True(t, errors.As(err, &numErr))
	})

	t.Run("cancelled", func(t *testing.T) {
		cfg := writeFixtures(t, 40)
		p, err := New(cfg, log.Nop())
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = p.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		_, statErr := os.Stat(cfg.PredictionOutputPath)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestPlotHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "loss.svg")
	err := PlotHistory(&neural.History{Loss: []float64{0.4, 0.2, 0.1}}, path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	err = PlotHistory(&neural.History{}, path)
	assert.ErrorIs(t, err, errors.ErrEmptyData)
}

func TestRunReportsBaseline(t *testing.T) {
	cfg := writeFixtures(t, 60)
	logger, _ := log.NewTestLogger(log.LevelInfo)

	p, err := New(cfg, logger)
	require.NoError(t, err)
	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, math.IsNaN(res.BaselineMAPE))
	assert.GreaterOrEqual(t, res.BaselineMAPE, 0.0)
	assert.True(t, logger.ContainsMessage("baseline evaluated"))
}
