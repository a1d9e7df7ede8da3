package dataset

import (
	"io"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

// PredictionRecord is one scored batch row as stored in Parquet.
type PredictionRecord struct {
	Row        int64   `parquet:"name=row, type=INT64"`
	ShortPower float64 `parquet:"name=short_power_w, type=DOUBLE"`
	ShortRate  float64 `parquet:"name=short_rate_spm, type=DOUBLE"`
	Reps       float64 `parquet:"name=reps, type=DOUBLE"`
	Weight     float64 `parquet:"name=weight_kg, type=DOUBLE"`
	Age        float64 `parquet:"name=age_y, type=DOUBLE"`
	TargetRate float64 `parquet:"name=target_rate_spm, type=DOUBLE"`
	Watts      float64 `parquet:"name=predicted_power_w, type=DOUBLE"`
	Pace       string  `parquet:"name=predicted_pace_500m, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// MarshalPredictionsParquet encodes records as a Snappy-compressed Parquet file.
func MarshalPredictionsParquet(records []PredictionRecord) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(PredictionRecord), 4)
	if err != nil {
		return nil, errors.Wrap(err, "create parquet writer")
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, rec := range records {
		if err := pw.Write(rec); err != nil {
			_ = pw.WriteStop()
			return nil, errors.Wrapf(err, "write parquet row %d", rec.Row)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, errors.Wrap(err, "finish parquet")
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

// WritePredictionsParquet writes records to path.
func WritePredictionsParquet(path string, records []PredictionRecord) error {
	b, err := MarshalPredictionsParquet(records)
	if err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		_, err := w.Write(b)
		return err
	})
}
