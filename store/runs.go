package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

// timeLayout is fixed width so that text order in SQLite matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run summarizes one training run.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Config       string // JSON
	TrainRows    int
	TestRows     int
	Epochs       int
	ParamCount   int
	FinalLoss    float64
	FinalValLoss sql.NullFloat64
	MAPE         float64
}

// SaveRun inserts run together with its per-epoch losses. valLoss may be
// empty when no validation set was monitored.
func (s *Store) SaveRun(ctx context.Context, run *Run, loss, valLoss []float64) error {
	if run.ID == "" {
		return errors.NewValidationError("run.id", "is required", run.ID)
	}
	if len(valLoss) != 0 && len(valLoss) != len(loss) {
		return errors.NewDimensionError("Store.SaveRun", len(loss), len(valLoss), 0)
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (
				id, started_at, finished_at, config, train_rows, test_rows,
				epochs, param_count, final_loss, final_val_loss, mape
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID, run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout),
			run.Config, run.TrainRows, run.TestRows, run.Epochs, run.ParamCount,
			run.FinalLoss, run.FinalValLoss, run.MAPE,
		)
		if err != nil {
			return errors.Wrap(err, "insert run")
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_epochs (run_id, epoch, loss, val_loss) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return errors.Wrap(err, "prepare epoch insert")
		}
		defer stmt.Close()
		for i, l := range loss {
			var vl sql.NullFloat64
			if len(valLoss) > 0 {
				vl = sql.NullFloat64{Float64: valLoss[i], Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, run.ID, i+1, l, vl); err != nil {
				return errors.Wrapf(err, "insert epoch %d", i+1)
			}
		}
		return nil
	})
}

// GetRun returns the run with id.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, config, train_rows, test_rows,
			epochs, param_count, final_loss, final_val_loss, mape
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return run, err
}

// ListRuns returns up to limit runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, config, train_rows, test_rows,
			epochs, param_count, final_loss, final_val_loss, mape
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// EpochLosses returns the training and validation loss per epoch of a run.
// The validation slice is empty when none was recorded.
func (s *Store) EpochLosses(ctx context.Context, runID string) (loss, valLoss []float64, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT loss, val_loss FROM run_epochs WHERE run_id = ? ORDER BY epoch`, runID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "query epochs")
	}
	defer rows.Close()

	for rows.Next() {
		var l float64
		var vl sql.NullFloat64
		if err := rows.Scan(&l, &vl); err != nil {
			return nil, nil, err
		}
		loss = append(loss, l)
		if vl.Valid {
			valLoss = append(valLoss, vl.Float64)
		}
	}
	return loss, valLoss, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var run Run
	var started, finished string
	err := sc.Scan(&run.ID, &started, &finished, &run.Config, &run.TrainRows, &run.TestRows,
		&run.Epochs, &run.ParamCount, &run.FinalLoss, &run.FinalValLoss, &run.MAPE)
	if err != nil {
		return nil, err
	}
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return nil, errors.Wrap(err, "parse started_at")
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return nil, errors.Wrap(err, "parse finished_at")
	}
	return &run, nil
}
