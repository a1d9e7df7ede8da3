// Package config holds the run configuration of the 2k predictor.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

// DefaultPath is where the CLI looks for a config file.
const DefaultPath = "./config.json"

// ErrNoConfig is returned by Load when the config file does not exist.
var ErrNoConfig = errors.New("config file not found")

// Config is one parameterized training and prediction run.
type Config struct {
	TrainingPath          string `json:"training_path"`
	PredictionPath        string `json:"prediction_path"`
	PredictionOutputPath  string `json:"prediction_output_path"`
	PredictionParquetPath string `json:"prediction_parquet_path,omitempty"`

	Epochs       int     `json:"epochs"`
	LearningRate float64 `json:"learning_rate"`
	BatchSize    int     `json:"batch_size"`
	HiddenLayers []int   `json:"hidden_layers"`

	TestSize         int   `json:"test_size"`
	RandomState      int64 `json:"random_state"`
	ShuffleBeforeFit bool  `json:"shuffle_before_fit"`

	// SplitDir, when set, receives newTrain.csv and newTest.csv.
	SplitDir      string `json:"split_dir,omitempty"`
	LossPlotPath  string `json:"loss_plot_path,omitempty"`
	HistoryDBPath string `json:"history_db_path,omitempty"`

	LogLevel string `json:"log_level"`
	// LogEvery logs the training loss every n epochs; 0 disables.
	LogEvery int `json:"log_every"`

	// SamplePrediction is nil when no sample should be scored.
	SamplePrediction *Sample `json:"sample_prediction"`
}

// Sample is an athlete scored and logged right after training.
type Sample struct {
	ShortPower float64 `json:"short_power"`
	ShortRate  float64 `json:"short_rate"`
	Reps       float64 `json:"reps"`
	Weight     float64 `json:"weight"`
	Age        float64 `json:"age"`
	TargetRate float64 `json:"target_rate"`
}

// Default returns the fixed-path configuration used when no config file exists.
func Default() Config {
	return Config{
		TrainingPath:         "./data/cleanedData.csv",
		PredictionPath:       "./data/batchPredictions.csv",
		PredictionOutputPath: "./data/batchPredictionsComplete.csv",
		Epochs:               150,
		LearningRate:         0.0005,
		BatchSize:            32,
		HiddenLayers:         []int{24, 24, 12},
		TestSize:             25,
		RandomState:          -1,
		LogLevel:             "info",
		LogEvery:             10,
		SamplePrediction: &Sample{
			ShortPower: 130,
			ShortRate:  22,
			Reps:       10,
			Weight:     73,
			Age:        24,
			TargetRate: 32,
		},
	}
}

// Load reads the JSON config at path. Fields left at their zero value take
// the default, except RandomState, where 0 is a valid seed. LogEvery and
// SamplePrediction take the default only when absent from the file, so an
// explicit "log_every": 0 or "sample_prediction": null turns them off.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}

	d := Default()
	cfg := Config{
		RandomState:      -1,
		LogEvery:         d.LogEvery,
		SamplePrediction: d.SamplePrediction,
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config file")
	}

	if cfg.TrainingPath == "" {
		cfg.TrainingPath = d.TrainingPath
	}
	if cfg.PredictionPath == "" {
		cfg.PredictionPath = d.PredictionPath
	}
	if cfg.PredictionOutputPath == "" {
		cfg.PredictionOutputPath = d.PredictionOutputPath
	}
	if cfg.Epochs == 0 {
		cfg.Epochs = d.Epochs
	}
	if cfg.LearningRate == 0 {
		cfg.LearningRate = d.LearningRate
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = d.BatchSize
	}
	if len(cfg.HiddenLayers) == 0 {
		cfg.HiddenLayers = d.HiddenLayers
	}
	if cfg.TestSize == 0 {
		cfg.TestSize = d.TestSize
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = d.LogLevel
	}
	return &cfg, nil
}

// LoadOrDefault is Load, falling back to Default when the file is missing.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, ErrNoConfig) {
		d := Default()
		return &d, nil
	}
	return cfg, err
}

// Save writes cfg to path as indented JSON.
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "creating config directory")
		}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return nil
}

// Validate checks the fields a run cannot start without.
func (c *Config) Validate() error {
	switch {
	case c.TrainingPath == "":
		return errors.NewValidationError("training_path", "is required", c.TrainingPath)
	case c.PredictionPath == "":
		return errors.NewValidationError("prediction_path", "is required", c.PredictionPath)
	case c.PredictionOutputPath == "":
		return errors.NewValidationError("prediction_output_path", "is required", c.PredictionOutputPath)
	case c.Epochs <= 0:
		return errors.NewValidationError("epochs", "must be positive", c.Epochs)
	case !(c.LearningRate > 0):
		return errors.NewValidationError("learning_rate", "must be positive", c.LearningRate)
	case c.BatchSize <= 0:
		return errors.NewValidationError("batch_size", "must be positive", c.BatchSize)
	case len(c.HiddenLayers) == 0:
		return errors.NewValidationError("hidden_layers", "must have at least one layer", c.HiddenLayers)
	case c.TestSize <= 0:
		return errors.NewValidationError("test_size", "must be positive", c.TestSize)
	case c.LogEvery < 0:
		return errors.NewValidationError("log_every", "must not be negative", c.LogEvery)
	}
	for _, units := range c.HiddenLayers {
		if units <= 0 {
			return errors.NewValidationError("hidden_layers", "every layer needs at least one unit", c.HiddenLayers)
		}
	}
	if s := c.SamplePrediction; s != nil && !(s.ShortRate > 0) {
		return errors.NewValidationError("sample_prediction.short_rate", "must be positive", s.ShortRate)
	}
	return nil
}
