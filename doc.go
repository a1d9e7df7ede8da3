// Package predict1500 predicts an athlete's average power and pace for a
// 2000 m row from a shorter time trial, body weight, age and repetition count.
//
// A small feed-forward network is trained on a cleaned CSV of historical
// results, normalized with per-column min-max statistics that are fitted once
// over the full dataset. The trained network then scores new athletes singly
// or in batch, and every prediction is reported in watts and as a pace per
// 500 m.
//
// # Quick Start
//
// The predict2k command runs the whole pass with the paths in ./config.json,
// or the defaults under ./data:
//
//	go run ./cmd/predict2k
//
// The same run from code:
//
//	cfg := config.Default()
//	p, err := pipeline.New(&cfg, log.GetLogger())
//	if err != nil {
//	    return err
//	}
//	res, err := p.Run(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%.2f%% error\n", res.MAPE)
//
// Scoring a single athlete with a fitted model:
//
//	predictor, err := predict.New(res.Model, res.Statistics, res.Schema)
//	pred, err := predictor.PredictWithPace(predict.Input{
//	    ShortPower: 130, ShortRate: 22, Reps: 10,
//	    Weight: 73, Age: 24, TargetRate: 32,
//	})
//	fmt.Println(pred.Watts, pred.Pace) // pace as MM:SS.s per 500 m
//
// # Packages
//
//   - dataset: CSV and Parquet IO, the column Schema
//   - preprocessing: ColumnStatistics, Normalize/Denormalize, MinMaxScaler
//   - model_selection: seeded TrainTestSplit and Shuffle
//   - neural: Dense layers, Adam, the Sequential regression network
//   - linear: least squares baseline
//   - metrics: MAPE evaluation and regression metrics
//   - pace: power to pace physics (P = 2.8 / (pace/500)³)
//   - predict: single and batch prediction
//   - pipeline: the end-to-end run, loss plots
//   - store: SQLite history of runs and predictions
//   - config: JSON run configuration
//   - core/model, core/parallel: fitted state and chunked parallel loops
//   - pkg/errors, pkg/log: error taxonomy and zerolog logging
package predict1500
