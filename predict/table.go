package predict

import (
	"github.com/JoeRonaldson/Predict-1500/dataset"
	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

// InputsFromTable reads one Input per record of a batch prediction file.
func InputsFromTable(t *dataset.Table, cols dataset.BatchColumns) ([]Input, error) {
	inputs := make([]Input, len(t.Records))
	for i := range t.Records {
		var in Input
		fields := []struct {
			dst *float64
			col int
		}{
			{&in.ShortPower, cols.ShortPower},
			{&in.ShortRate, cols.ShortRate},
			{&in.Reps, cols.Reps},
			{&in.Weight, cols.Weight},
			{&in.Age, cols.Age},
			{&in.TargetRate, cols.TargetRate},
		}
		for _, f := range fields {
			v, err := t.Float(i, f.col)
			if err != nil {
				return nil, errors.Wrap(err, "batch input")
			}
			*f.dst = v
		}
		inputs[i] = in
	}
	return inputs, nil
}

// Records pairs inputs with their predictions for Parquet export.
func Records(inputs []Input, preds []Prediction) ([]dataset.PredictionRecord, error) {
	if len(inputs) != len(preds) {
		return nil, errors.NewDimensionError("predict.Records", len(inputs), len(preds), 0)
	}
	out := make([]dataset.PredictionRecord, len(inputs))
	for i, in := range inputs {
		out[i] = dataset.PredictionRecord{
			Row:        int64(i),
			ShortPower: in.ShortPower,
			ShortRate:  in.ShortRate,
			Reps:       in.Reps,
			Weight:     in.Weight,
			Age:        in.Age,
			TargetRate: in.TargetRate,
			Watts:      preds[i].Watts,
			Pace:       preds[i].Pace,
		}
	}
	return out, nil
}

// Paces returns the pace strings of preds, in order.
func Paces(preds []Prediction) []string {
	out := make([]string, len(preds))
	for i, p := range preds {
		out[i] = p.Pace
	}
	return out
}
