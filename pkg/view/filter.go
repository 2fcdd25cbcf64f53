package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vanderheijden86/eoview/pkg/bucket"
	"github.com/vanderheijden86/eoview/pkg/model"
)

// FilterState holds the caller's selection per filterable dimension. The zero
// value of each slot means "no constraint" on that dimension.
type FilterState struct {
	Category model.Category
	Forecast bucket.ForecastBucket
	Impact   int
}

// Active reports whether any slot is constrained.
func (f FilterState) Active() bool {
	return f.Category != "" || f.Forecast != "" || f.Impact != 0
}

// Validate checks every constrained slot against the recognized enumerations.
func (f FilterState) Validate(vocab model.Vocabulary) error {
	if f.Category != "" && !vocab.Contains(f.Category) {
		return &model.SelectionError{Slot: "category", Value: string(f.Category)}
	}
	if f.Forecast != "" && !f.Forecast.Valid() {
		return &model.SelectionError{Slot: "forecast", Value: string(f.Forecast)}
	}
	if f.Impact != 0 && !bucket.ValidImpact(f.Impact) {
		return &model.SelectionError{Slot: "impact", Value: strconv.Itoa(f.Impact)}
	}
	return nil
}

// String renders the active constraints, e.g. "category=energy impact=5".
func (f FilterState) String() string {
	if !f.Active() {
		return "all"
	}
	var parts []string
	if f.Category != "" {
		parts = append(parts, "category="+string(f.Category))
	}
	if f.Forecast != "" {
		parts = append(parts, "forecast="+string(f.Forecast))
	}
	if f.Impact != 0 {
		parts = append(parts, fmt.Sprintf("impact=%d", f.Impact))
	}
	return strings.Join(parts, " ")
}

// ParseFilter builds a FilterState from user-facing strings. Empty strings
// and "all" leave a slot unconstrained.
func ParseFilter(category, forecast, impact string, vocab model.Vocabulary) (FilterState, error) {
	var f FilterState
	if c := strings.TrimSpace(category); c != "" && !strings.EqualFold(c, "all") {
		f.Category = model.NormalizeCategory(c)
	}
	if s := strings.TrimSpace(forecast); s != "" && !strings.EqualFold(s, "all") {
		b, err := bucket.ParseForecastBucket(s)
		if err != nil {
			return FilterState{}, err
		}
		f.Forecast = b
	}
	if s := strings.TrimSpace(impact); s != "" && !strings.EqualFold(s, "all") {
		n, err := strconv.Atoi(s)
		if err != nil {
			return FilterState{}, &model.SelectionError{Slot: "impact", Value: s}
		}
		f.Impact = n
	}
	if err := f.Validate(vocab); err != nil {
		return FilterState{}, err
	}
	return f, nil
}

// Predicate is a test over one record. It fails only when it has to read a
// malformed field.
type Predicate func(model.Record) (bool, error)

// CategoryPredicate passes records tagged with sel, or every record when sel
// is empty.
func CategoryPredicate(sel model.Category) Predicate {
	return func(r model.Record) (bool, error) {
		if sel == "" {
			return true, nil
		}
		return r.HasCategory(sel), nil
	}
}

// ForecastPredicate passes records whose forecast falls into sel, or every
// record when sel is empty.
func ForecastPredicate(sel bucket.ForecastBucket) Predicate {
	return func(r model.Record) (bool, error) {
		if sel == "" {
			return true, nil
		}
		b, err := bucket.ForRecord(r)
		if err != nil {
			return false, err
		}
		return b == sel, nil
	}
}

// ImpactPredicate passes records whose impact equals sel, or every record
// when sel is zero.
func ImpactPredicate(sel int) Predicate {
	return func(r model.Record) (bool, error) {
		if sel == 0 {
			return true, nil
		}
		if _, err := bucket.ImpactOf(r); err != nil {
			return false, err
		}
		return r.Impact == sel, nil
	}
}

// predicates returns one predicate per dimension of f.
func (f FilterState) predicates() []Predicate {
	return []Predicate{
		CategoryPredicate(f.Category),
		ForecastPredicate(f.Forecast),
		ImpactPredicate(f.Impact),
	}
}
