package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/JoeRonaldson/Predict-1500/dataset"
	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

// setupTestStore creates an in-memory store for testing
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	s, err := New(sqlDB)
	if err != nil {
		sqlDB.Close()
		t.Fatalf("Failed to set up store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRun(id string, started time.Time) *Run {
	return &Run{
		ID:           id,
		StartedAt:    started,
		FinishedAt:   started.Add(3 * time.Second),
		Config:       `{"epochs":3}`,
		TrainRows:    75,
		TestRows:     25,
		Epochs:       3,
		ParamCount:   1033,
		FinalLoss:    0.012,
		FinalValLoss: sql.NullFloat64{Float64: 0.015, Valid: true},
		MAPE:         4.2,
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id := NewRunID()
	started := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, s.SaveRun(ctx, testRun(id, started), []float64{0.3, 0.1, 0.012}, []float64{0.4, 0.2, 0.015}))

	got, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.True(t, got.StartedAt.Equal(started))
	assert.Equal(t, 75, got.TrainRows)
	assert.Equal(t, 25, got.TestRows)
	assert.Equal(t, 1033, got.ParamCount)
	assert.InDelta(t, 4.2, got.MAPE, 1e-12)
	assert.True(t, got.FinalValLoss.Valid)

	loss, valLoss, err := s.EpochLosses(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3, 0.1, 0.012}, loss)
	assert.Equal(t, []float64{0.4, 0.2, 0.015}, valLoss)
}

func TestSaveRunWithoutValidation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	run := testRun(NewRunID(), time.Now())
	run.FinalValLoss = sql.NullFloat64{}
	require.NoError(t, s.SaveRun(ctx, run, []float64{0.5, 0.25}, nil))

	loss, valLoss, err := s.EpochLosses(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, loss, 2)
	assert.Empty(t, valLoss)
}

func TestSaveRunRejectsBadInput(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	err := s.SaveRun(ctx, testRun("", time.Now()), nil, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	err = s.SaveRun(ctx, testRun(NewRunID(), time.Now()), []float64{1, 2}, []float64{1})
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestGetRunNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		id := NewRunID()
		ids = append(ids, id)
		require.NoError(t, s.SaveRun(ctx, testRun(id, base.Add(time.Duration(i)*time.Hour)), nil, nil))
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
}

func TestListRunsSameSecondOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 5, 0, time.UTC)
	require.NoError(t, s.SaveRun(ctx, testRun("older", base.Add(100*time.Millisecond)), nil, nil))
	require.NoError(t, s.SaveRun(ctx, testRun("newer", base.Add(120*time.Millisecond)), nil, nil))
	require.NoError(t, s.SaveRun(ctx, testRun("oldest", base), nil, nil))

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "newer", runs[0].ID)
	assert.Equal(t, "older", runs[1].ID)
	assert.Equal(t, "oldest", runs[2].ID)
	assert.True(t, runs[0].StartedAt.Equal(base.Add(120*time.Millisecond)))
}

func TestPredictionsRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id := NewRunID()
	require.NoError(t, s.SaveRun(ctx, testRun(id, time.Now()), nil, nil))

	records := []dataset.PredictionRecord{
		{Row: 0, ShortPower: 130, ShortRate: 22, Reps: 10, Weight: 73, Age: 24, TargetRate: 32, Watts: 250.5, Pace: "01:51.9"},
		{Row: 1, ShortPower: 150, ShortRate: 24, Reps: 8, Weight: 80, Age: 30, TargetRate: 30, Watts: 270.1, Pace: "01:49.2"},
	}
	require.NoError(t, s.SavePredictions(ctx, id, records))

	got, err := s.Predictions(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestPredictionsRequireRun(t *testing.T) {
	s := setupTestStore(t)
	err := s.SavePredictions(context.Background(), "no-such-run", []dataset.PredictionRecord{{Row: 0, Pace: "02:00.0"}})
	assert.Error(t, err)
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveRun(context.Background(), testRun(NewRunID(), time.Now()), []float64{1}, nil))
	runs, err := s.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
