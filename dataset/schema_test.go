package dataset

import (
	"testing"

	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

func TestDefaultSchema(t *testing.T) {
	s := DefaultSchema()
	if err := s.Validate(6); err != nil {
		t.Fatalf("Validate(6) = %v", err)
	}
	if got := s.LabelColumn(); got != 1 {
		t.Errorf("LabelColumn() = %d, want 1", got)
	}
	want := []int{2, 3, 4, 5}
	got := s.FeatureColumns()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("FeatureColumns() = %v, want %v", got, want)
		}
	}
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
		width  int
	}{
		{"too narrow", DefaultSchema(), 5},
		{"missing feature", Schema{Columns: map[Feature]int{Label: 0, PowerPerStroke: 1}}, 6},
		{"duplicate column", Schema{Columns: map[Feature]int{Label: 1, PowerPerStroke: 1, Weight: 2, Age: 3, Reps: 4}}, 6},
		{"negative column", Schema{Columns: map[Feature]int{Label: -1, PowerPerStroke: 1, Weight: 2, Age: 3, Reps: 4}}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.schema.Validate(tt.width); !errors.Is(err, errors.ErrInvalidArgument) {
				t.Errorf("Validate() = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestSchemaResolveByLabelName(t *testing.T) {
	// label moved to the end of the file
	header := []string{"", "power-per-stroke", "weight", "age", "reps", "two-k"}
	s := DefaultSchema()
	s.Columns = map[Feature]int{Label: 0, PowerPerStroke: 1, Weight: 2, Age: 3, Reps: 4}

	got, err := s.Resolve(header)
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if got.LabelColumn() != 5 {
		t.Errorf("LabelColumn() = %d, want 5", got.LabelColumn())
	}
	// the receiver is not mutated
	if s.LabelColumn() != 0 {
		t.Errorf("Resolve mutated its receiver")
	}
}

func TestFeatureString(t *testing.T) {
	if PowerPerStroke.String() != "powerPerStroke" {
		t.Errorf("String() = %q", PowerPerStroke.String())
	}
	if Feature(42).String() != "Feature(42)" {
		t.Errorf("String() = %q", Feature(42).String())
	}
}
