package model

import "gonum.org/v1/gonum/mat"

// RowPredictor maps one normalized feature row to one normalized label.
type RowPredictor interface {
	PredictRow(x []float64) (float64, error)
}

// Predictor runs a forward pass over every row of X.
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor is a trainable single-output model monitored on a validation set.
type Regressor interface {
	RowPredictor
	Predictor
	InputWidth() int
}
