package bucket

import (
	"errors"
	"testing"

	"github.com/vanderheijden86/eoview/pkg/model"
)

func TestImpactColorClass_Ordered(t *testing.T) {
	prev := 0
	for _, impact := range Levels() {
		in, err := ImpactColorClass(impact)
		if err != nil {
			t.Fatalf("ImpactColorClass(%d): %v", impact, err)
		}
		if in.Level() <= prev {
			t.Errorf("intensity for %d (%s) is not above previous level %d", impact, in, prev)
		}
		prev = in.Level()
	}
	if prev != MaxImpact {
		t.Errorf("expected last level %d, got %d", MaxImpact, prev)
	}
}

func TestImpactColorClass_RejectsOutOfRange(t *testing.T) {
	for _, impact := range []int{0, 6, -1, 42} {
		in, err := ImpactColorClass(impact)
		if !errors.Is(err, model.ErrMalformedField) {
			t.Errorf("ImpactColorClass(%d) error = %v, want ErrMalformedField", impact, err)
		}
		if in != "" {
			t.Errorf("ImpactColorClass(%d) returned token %q alongside error", impact, in)
		}
	}
}

func TestImpactOf_AttributesRecordID(t *testing.T) {
	_, err := ImpactOf(model.Record{ID: 9, Impact: 6})
	var fe *model.FieldError
	if !errors.As(err, &fe) || fe.RecordID != 9 || fe.Field != model.FieldImpact {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIntensityLevel_Invalid(t *testing.T) {
	for _, in := range []Intensity{"", "impact-0", "impact-9", "shade-3", "impact-33"} {
		if got := in.Level(); got != 0 {
			t.Errorf("Intensity(%q).Level() = %d, want 0", in, got)
		}
	}
}
