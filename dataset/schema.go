package dataset

import (
	"fmt"

	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

// Feature names a semantic column of the training data.
type Feature int

const (
	Label Feature = iota
	PowerPerStroke
	Weight
	Age
	Reps
)

func (f Feature) String() string {
	switch f {
	case Label:
		return "label"
	case PowerPerStroke:
		return "powerPerStroke"
	case Weight:
		return "weight"
	case Age:
		return "age"
	case Reps:
		return "reps"
	default:
		return fmt.Sprintf("Feature(%d)", int(f))
	}
}

// ModelFeatures is the order in which features are fed to the network.
var ModelFeatures = []Feature{PowerPerStroke, Weight, Age, Reps}

// LabelName is the header of the label column in the cleaned training file.
const LabelName = "two-k"

// Schema maps each semantic feature to its column in the training data. The
// same schema normalizes training rows and prediction inputs, so it must be
// the one the ColumnStatistics were fitted against.
type Schema struct {
	LabelName string
	Columns   map[Feature]int
}

// DefaultSchema is the layout of the cleaned training file: an index column,
// the two-k label, then power-per-stroke, weight, age and reps.
func DefaultSchema() Schema {
	return Schema{
		LabelName: LabelName,
		Columns: map[Feature]int{
			Label:          1,
			PowerPerStroke: 2,
			Weight:         3,
			Age:            4,
			Reps:           5,
		},
	}
}

// Column returns the column of f.
func (s Schema) Column(f Feature) int {
	c, ok := s.Columns[f]
	if !ok {
		return -1
	}
	return c
}

// LabelColumn returns the column of the label.
func (s Schema) LabelColumn() int {
	return s.Column(Label)
}

// FeatureColumns returns the columns of ModelFeatures, in model order.
func (s Schema) FeatureColumns() []int {
	cols := make([]int, len(ModelFeatures))
	for i, f := range ModelFeatures {
		cols[i] = s.Column(f)
	}
	return cols
}

// Validate checks that every feature has a distinct column below width.
func (s Schema) Validate(width int) error {
	seen := make(map[int]Feature, len(s.Columns))
	for _, f := range append([]Feature{Label}, ModelFeatures...) {
		c, ok := s.Columns[f]
		if !ok {
			return errors.NewValidationError("schema", "missing column for "+f.String(), nil)
		}
		if c < 0 || c >= width {
			return errors.NewValidationError("schema."+f.String(), fmt.Sprintf("column must be in [0, %d)", width), c)
		}
		if other, dup := seen[c]; dup {
			return errors.NewValidationError("schema."+f.String(), "column already used by "+other.String(), c)
		}
		seen[c] = f
	}
	return nil
}

// Resolve rebinds the label column by name when the header carries it. Other
// columns are positional in the cleaned file.
func (s Schema) Resolve(header []string) (Schema, error) {
	out := Schema{LabelName: s.LabelName, Columns: make(map[Feature]int, len(s.Columns))}
	for f, c := range s.Columns {
		out.Columns[f] = c
	}
	if s.LabelName != "" {
		for i, h := range header {
			if h == s.LabelName {
				out.Columns[Label] = i
				break
			}
		}
	}
	if err := out.Validate(len(header)); err != nil {
		return Schema{}, err
	}
	return out, nil
}
