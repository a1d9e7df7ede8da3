package dataset

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

const cleaned = `,two-k,power-per-stroke,weight,age,reps
0,210,6.5,73,24,10
1,250,7.9,80,31,8
2,190,5.8,68,19,12
`

func TestReadCSV(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(cleaned))
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Rows())
	assert.Equal(t, 6, ds.Cols())
	assert.Equal(t, []string{"", "two-k", "power-per-stroke", "weight", "age", "reps"}, ds.Header())
	assert.Equal(t, []float64{1, 250, 7.9, 80, 31, 8}, ds.Row(1))
	assert.Equal(t, []float64{210, 250, 190}, ds.Column(1))

	idx, ok := ds.ColumnIndex("weight")
	assert.True(t, ok)
	assert.Equal(t, 3, idx)
}

func TestReadCSVRejectsNonNumeric(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1,x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "b"`)
}

func TestNewRejectsRaggedRows(t *testing.T) {
	_, err := New([]string{"a", "b"}, [][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestSubsetAndSelect(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(cleaned))
	require.NoError(t, err)

	sub := ds.Subset([]int{2, 0})
	require.Equal(t, 2, sub.Rows())
	assert.Equal(t, 190.0, sub.At(0, 1))
	assert.Equal(t, 210.0, sub.At(1, 1))

	// mutating the subset leaves the source alone
	sub.Matrix().Set(0, 1, -1)
	assert.Equal(t, 190.0, ds.At(2, 1))

	x, err := ds.Select(DefaultSchema().FeatureColumns())
	require.NoError(t, err)
	r, c := x.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 4, c)
	assert.Equal(t, []float64{6.5, 73, 24, 10}, x.RawRowView(0))

	_, err = ds.Select([]int{9})
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	empty := ds.Subset(nil)
	assert.Equal(t, 0, empty.Rows())
	_, err = empty.Select([]int{0})
	assert.ErrorIs(t, err, errors.ErrEmptyData)
}

func TestCSVRoundTrip(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(cleaned))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "split", "newTrain.csv")
	require.NoError(t, SaveCSV(path, ds))

	back, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, ds.Header(), back.Header())
	for i := 0; i < ds.Rows(); i++ {
		assert.Equal(t, ds.Row(i), back.Row(i))
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.csv")
}

func TestTableAppendColumn(t *testing.T) {
	in := ",name,watts,rate,reps,weight,age,twoKrate\n0,amy,130,22,10,73,24,32\n1,bo,150,24,8,80,30,34\n"
	tbl, err := ReadTable(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, tbl.Records, 2)

	v, err := tbl.Float(1, DefaultBatchColumns().ShortPower)
	require.NoError(t, err)
	assert.Equal(t, 150.0, v)

	_, err = tbl.Float(0, 1)
	assert.Error(t, err)

	assert.ErrorIs(t, tbl.AppendColumn(PredictionColumn, []string{"x"}), errors.ErrInvalidArgument)
	require.NoError(t, tbl.AppendColumn(PredictionColumn, []string{"01:45.0", "01:40.2"}))

	var buf bytes.Buffer
	require.NoError(t, tbl.Write(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], ","+PredictionColumn))
	assert.Equal(t, "0,amy,130,22,10,73,24,32,01:45.0", lines[1])
	assert.Equal(t, "1,bo,150,24,8,80,30,34,01:40.2", lines[2])
}

func TestReadTableEmpty(t *testing.T) {
	_, err := ReadTable(strings.NewReader(""))
	assert.ErrorIs(t, err, errors.ErrEmptyData)
}

func TestMarshalPredictionsParquet(t *testing.T) {
	b, err := MarshalPredictionsParquet([]PredictionRecord{
		{Row: 0, ShortPower: 130, ShortRate: 22, Reps: 10, Weight: 73, Age: 24, TargetRate: 32, Watts: 220, Pace: "01:47.2"},
		{Row: 1, ShortPower: 150, ShortRate: 24, Reps: 8, Weight: 80, Age: 30, TargetRate: 34, Watts: 260, Pace: "01:41.5"},
	})
	require.NoError(t, err)
	require.Greater(t, len(b), 8)
	assert.Equal(t, "PAR1", string(b[:4]))
	assert.Equal(t, "PAR1", string(b[len(b)-4:]))

	path := filepath.Join(t.TempDir(), "preds.parquet")
	require.NoError(t, WritePredictionsParquet(path, []PredictionRecord{{Row: 0, Watts: 200, Pace: "01:51.9"}}))
}
