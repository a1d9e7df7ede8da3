// Package predict turns raw athlete inputs into a predicted 2k power and pace
// using a trained network and the statistics it was trained with.
package predict

import (
	"context"

	"github.com/JoeRonaldson/Predict-1500/core/model"
	"github.com/JoeRonaldson/Predict-1500/core/parallel"
	"github.com/JoeRonaldson/Predict-1500/dataset"
	"github.com/JoeRonaldson/Predict-1500/pace"
	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
	"github.com/JoeRonaldson/Predict-1500/preprocessing"
)

// parallelThreshold is the batch size below which rows are scored inline.
const parallelThreshold = 64

// Input is one athlete to score.
type Input struct {
	ShortPower float64 // average watts of the short test piece
	ShortRate  float64 // stroke rate of the short test piece
	Reps       float64
	Weight     float64
	Age        float64
	TargetRate float64 // planned 2k stroke rate
}

// Prediction is the predicted average 2k power and its pace per 500 m.
type Prediction struct {
	Watts float64
	Pace  string
}

// Predictor scores inputs with a fixed model, statistics and schema.
type Predictor struct {
	model  model.RowPredictor
	stats  *preprocessing.ColumnStatistics
	schema dataset.Schema
}

// New validates schema against stats once and returns a Predictor.
func New(m model.RowPredictor, stats *preprocessing.ColumnStatistics, schema dataset.Schema) (*Predictor, error) {
	if m == nil {
		return nil, errors.NewValidationError("model", "must not be nil", nil)
	}
	if stats == nil {
		return nil, errors.NewValidationError("stats", "must not be nil", nil)
	}
	if err := schema.Validate(stats.Width()); err != nil {
		return nil, err
	}
	return &Predictor{model: m, stats: stats, schema: schema}, nil
}

// Features returns the normalized model input for in, in model feature order.
func (p *Predictor) Features(in Input) ([]float64, error) {
	if !(in.ShortRate > 0) {
		return nil, errors.NewDomainError("Predict", "short piece stroke rate must be positive", in.ShortRate)
	}
	raw := map[dataset.Feature]float64{
		dataset.PowerPerStroke: in.ShortPower / in.ShortRate,
		dataset.Weight:         in.Weight,
		dataset.Age:            in.Age,
		dataset.Reps:           in.Reps,
	}
	x := make([]float64, len(dataset.ModelFeatures))
	for i, f := range dataset.ModelFeatures {
		v, err := preprocessing.Normalize(raw[f], p.schema.Column(f), p.stats)
		if err != nil {
			return nil, err
		}
		x[i] = v
	}
	return x, nil
}

// Predict returns the average 2k power in watts: the network predicts power
// per stroke, which is scaled by the target stroke rate.
func (p *Predictor) Predict(in Input) (float64, error) {
	x, err := p.Features(in)
	if err != nil {
		return 0, err
	}
	y, err := p.model.PredictRow(x)
	if err != nil {
		return 0, err
	}
	perStroke, err := preprocessing.Denormalize(y, p.schema.LabelColumn(), p.stats)
	if err != nil {
		return 0, err
	}
	return perStroke * in.TargetRate, nil
}

// PredictWithPace is Predict plus the pace string of the result.
func (p *Predictor) PredictWithPace(in Input) (Prediction, error) {
	w, err := p.Predict(in)
	if err != nil {
		return Prediction{}, err
	}
	s, err := pace.PowerToPaceString(w)
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{Watts: w, Pace: s}, nil
}

// PredictBatch scores rows, possibly in parallel. Output i always belongs to
// input i. An empty batch yields an empty result.
func (p *Predictor) PredictBatch(ctx context.Context, rows []Input) ([]Prediction, error) {
	out := make([]Prediction, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	err := parallel.ParallelizeWithThreshold(ctx, len(rows), parallelThreshold, func(start, end int) (err error) {
		defer errors.Recover(&err, "Predictor.PredictBatch")
		for i := start; i < end; i++ {
			pred, err := p.PredictWithPace(rows[i])
			if err != nil {
				return errors.Wrapf(err, "batch row %d", i)
			}
			out[i] = pred
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
