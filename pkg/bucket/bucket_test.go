package bucket

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/eoview/pkg/model"
)

func TestParseForecast(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"35%", 35, false},
		{"35", 35, false},
		{" 85.5% ", 85.5, false},
		{"0%", 0, false},
		{"100%", 100, false},
		{"100.01%", 0, true},
		{"-1%", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"%", 0, true},
		{"35%%", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseForecast(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, model.ErrMalformedField) {
				t.Errorf("ParseForecast(%q) error = %v, want ErrMalformedField", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseForecast(%q) unexpected error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseForecast(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestForecastBucketOf_Boundaries(t *testing.T) {
	tests := []struct {
		v    float64
		want ForecastBucket
	}{
		{0, Low},
		{39.999, Low},
		{40, Medium},
		{60, Medium},
		{80, Medium},
		{80.001, High},
		{100, High},
	}
	for _, tt := range tests {
		got, err := ForecastBucketOf(tt.v)
		if err != nil {
			t.Fatalf("ForecastBucketOf(%v): %v", tt.v, err)
		}
		if got != tt.want {
			t.Errorf("ForecastBucketOf(%v) = %s, want %s", tt.v, got, tt.want)
		}
	}

	for _, v := range []float64{-0.5, 100.5} {
		if _, err := ForecastBucketOf(v); !errors.Is(err, model.ErrMalformedField) {
			t.Errorf("ForecastBucketOf(%v) error = %v, want ErrMalformedField", v, err)
		}
	}
}

func TestForecastBucketOf_PartitionsDomain(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Float64Range(MinForecast, MaxForecast).Draw(t, "v")
		b, err := ForecastBucketOf(v)
		if err != nil {
			t.Fatalf("ForecastBucketOf(%v) not total: %v", v, err)
		}

		// Exactly one range contains v.
		inLow := v < MediumFloor
		inMedium := v >= MediumFloor && v <= MediumCeiling
		inHigh := v > MediumCeiling
		n := 0
		for _, in := range []bool{inLow, inMedium, inHigh} {
			if in {
				n++
			}
		}
		if n != 1 {
			t.Fatalf("value %v falls into %d ranges", v, n)
		}

		switch {
		case inLow && b != Low, inMedium && b != Medium, inHigh && b != High:
			t.Fatalf("ForecastBucketOf(%v) = %s", v, b)
		}
	})
}

func TestForecastBucketOf_Monotonic(t *testing.T) {
	rank := map[ForecastBucket]int{Low: 0, Medium: 1, High: 2}
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Float64Range(MinForecast, MaxForecast).Draw(t, "a")
		b := rapid.Float64Range(MinForecast, MaxForecast).Draw(t, "b")
		if a > b {
			a, b = b, a
		}
		ba, _ := ForecastBucketOf(a)
		bb, _ := ForecastBucketOf(b)
		if rank[ba] > rank[bb] {
			t.Fatalf("bucket(%v)=%s ranks above bucket(%v)=%s", a, ba, b, bb)
		}
	})
}

func TestForRecord_AttributesRecordID(t *testing.T) {
	r := model.Record{ID: 17, Forecast: "lots"}
	_, err := ForRecord(r)
	var fe *model.FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *model.FieldError, got %T (%v)", err, err)
	}
	if fe.RecordID != 17 || fe.Field != model.FieldForecast {
		t.Errorf("unexpected field error: %+v", fe)
	}

	b, err := ForRecord(model.Record{ID: 1, Forecast: "85%"})
	if err != nil || b != High {
		t.Errorf("ForRecord(85%%) = %s, %v; want high", b, err)
	}
}

func TestParseForecastBucket(t *testing.T) {
	for _, s := range []string{"low", "Medium", " HIGH "} {
		if _, err := ParseForecastBucket(s); err != nil {
			t.Errorf("ParseForecastBucket(%q): %v", s, err)
		}
	}
	if _, err := ParseForecastBucket("extreme"); !errors.Is(err, model.ErrInvalidFilterSelection) {
		t.Errorf("expected ErrInvalidFilterSelection, got %v", err)
	}
}

func TestForecastColorClass(t *testing.T) {
	tone, err := ForecastColorClass(Medium)
	if err != nil || tone != "forecast-medium" {
		t.Errorf("ForecastColorClass(medium) = %q, %v", tone, err)
	}
	if _, err := ForecastColorClass("purple"); !errors.Is(err, model.ErrInvalidFilterSelection) {
		t.Errorf("expected ErrInvalidFilterSelection, got %v", err)
	}
}

func TestBucketLabel(t *testing.T) {
	if got := High.Label(); got != "High Forecast" {
		t.Errorf("High.Label() = %q", got)
	}
	if got := ForecastBucket("").Label(); got != "All forecasts" {
		t.Errorf("empty Label() = %q", got)
	}
}
