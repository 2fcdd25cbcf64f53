// Package bucket maps raw record fields onto discrete display categories.
//
// Forecast values are bucketed as:
//
//	v < 40        low
//	40 <= v <= 80 medium
//	v > 80        high
//
// Impact scores 1..5 map onto five ordered intensity tokens. Values outside
// the documented domains are reported as model.ErrMalformedField; nothing is
// clamped or defaulted.
package bucket

import (
	"math"
	"strconv"
	"strings"

	"github.com/vanderheijden86/eoview/pkg/model"
)

// Forecast domain and thresholds.
const (
	MinForecast = 0.0
	MaxForecast = 100.0

	// MediumFloor is the smallest forecast in the medium bucket.
	MediumFloor = 40.0
	// MediumCeiling is the largest forecast in the medium bucket.
	MediumCeiling = 80.0
)

// ForecastBucket is the discrete litigation-likelihood class of a record.
type ForecastBucket string

const (
	Low    ForecastBucket = "low"
	Medium ForecastBucket = "medium"
	High   ForecastBucket = "high"
)

// AllBuckets returns the buckets in display order (high first).
func AllBuckets() []ForecastBucket {
	return []ForecastBucket{High, Medium, Low}
}

// Valid reports whether b is one of the three buckets.
func (b ForecastBucket) Valid() bool {
	switch b {
	case Low, Medium, High:
		return true
	}
	return false
}

// Label returns the display label ("High Forecast").
func (b ForecastBucket) Label() string {
	if b == "" {
		return "All forecasts"
	}
	return model.Capitalize(string(b)) + " Forecast"
}

// ParseForecastBucket parses a bucket name case-insensitively.
func ParseForecastBucket(s string) (ForecastBucket, error) {
	b := ForecastBucket(strings.ToLower(strings.TrimSpace(s)))
	if !b.Valid() {
		return "", &model.SelectionError{Slot: "forecast", Value: s}
	}
	return b, nil
}

// ParseForecast normalizes a raw forecast: surrounding whitespace and one
// trailing percent sign are stripped and the rest is parsed as a float.
func ParseForecast(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return 0, malformedForecast(raw, "empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, malformedForecast(raw, "not a number")
	}
	if v < MinForecast || v > MaxForecast {
		return 0, malformedForecast(raw, "outside [0,100]")
	}
	return v, nil
}

// ForecastBucketOf classifies a normalized forecast value.
func ForecastBucketOf(v float64) (ForecastBucket, error) {
	if math.IsNaN(v) || v < MinForecast || v > MaxForecast {
		return "", malformedForecast(strconv.FormatFloat(v, 'g', -1, 64), "outside [0,100]")
	}
	switch {
	case v < MediumFloor:
		return Low, nil
	case v <= MediumCeiling:
		return Medium, nil
	default:
		return High, nil
	}
}

// ForecastValue parses the record's forecast, attributing errors to the record.
func ForecastValue(r model.Record) (float64, error) {
	v, err := ParseForecast(string(r.Forecast))
	if err != nil {
		return 0, attribute(err, r.ID)
	}
	return v, nil
}

// ForRecord returns the forecast bucket of r.
func ForRecord(r model.Record) (ForecastBucket, error) {
	v, err := ForecastValue(r)
	if err != nil {
		return "", err
	}
	return ForecastBucketOf(v)
}

// Tone is the presentation token for a forecast bucket.
type Tone string

// ForecastColorClass returns the presentation token for b.
func ForecastColorClass(b ForecastBucket) (Tone, error) {
	if !b.Valid() {
		return "", &model.SelectionError{Slot: "forecast", Value: string(b)}
	}
	return Tone("forecast-" + string(b)), nil
}

func malformedForecast(raw, reason string) error {
	return &model.FieldError{
		Field:  model.FieldForecast,
		Value:  raw,
		Reason: reason,
	}
}

func attribute(err error, id int) error {
	if fe, ok := err.(*model.FieldError); ok {
		return fe.WithRecord(id)
	}
	return err
}
