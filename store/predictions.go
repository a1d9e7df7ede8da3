package store

import (
	"context"
	"database/sql"

	"github.com/JoeRonaldson/Predict-1500/dataset"
	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

// SavePredictions stores the batch predictions of a run.
func (s *Store) SavePredictions(ctx context.Context, runID string, records []dataset.PredictionRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO predictions (
				run_id, row_index, short_power, short_rate, reps, weight, age, target_rate, watts, pace
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return errors.Wrap(err, "prepare prediction insert")
		}
		defer stmt.Close()

		for _, r := range records {
			_, err := stmt.ExecContext(ctx, runID, r.Row, r.ShortPower, r.ShortRate, r.Reps,
				r.Weight, r.Age, r.TargetRate, r.Watts, r.Pace)
			if err != nil {
				return errors.Wrapf(err, "insert prediction row %d", r.Row)
			}
		}
		return nil
	})
}

// Predictions returns the stored predictions of a run in row order.
func (s *Store) Predictions(ctx context.Context, runID string) ([]dataset.PredictionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT row_index, short_power, short_rate, reps, weight, age, target_rate, watts, pace
		FROM predictions WHERE run_id = ? ORDER BY row_index
	`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "query predictions")
	}
	defer rows.Close()

	var out []dataset.PredictionRecord
	for rows.Next() {
		var r dataset.PredictionRecord
		if err := rows.Scan(&r.Row, &r.ShortPower, &r.ShortRate, &r.Reps, &r.Weight,
			&r.Age, &r.TargetRate, &r.Watts, &r.Pace); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
