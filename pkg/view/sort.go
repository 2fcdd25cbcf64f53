package view

import (
	"cmp"
	"strings"

	"github.com/vanderheijden86/eoview/pkg/bucket"
	"github.com/vanderheijden86/eoview/pkg/model"
)

// SortField names the column a view is ordered by.
type SortField int

const (
	SortNone     SortField = iota // Natural (insertion) order
	SortID                        // Record id
	SortTitle                     // Title, lexicographic
	SortSummary                   // Summary, lexicographic
	SortStatus                    // Status, lexicographic
	SortForecast                  // Forecast, numeric
	SortImpact                    // Impact, numeric
	numSortFields
)

// String returns the field's flag/config name.
func (f SortField) String() string {
	switch f {
	case SortNone:
		return "none"
	case SortID:
		return "id"
	case SortTitle:
		return "title"
	case SortSummary:
		return "summary"
	case SortStatus:
		return "status"
	case SortForecast:
		return "forecast"
	case SortImpact:
		return "impact"
	default:
		return "unknown"
	}
}

// Label returns the column header for the field.
func (f SortField) Label() string {
	switch f {
	case SortID:
		return "ID"
	case SortTitle:
		return "EOs"
	case SortSummary:
		return "TLDR"
	case SortStatus:
		return "Status"
	case SortForecast:
		return "Forecast"
	case SortImpact:
		return "Impact (1-5)"
	default:
		return ""
	}
}

// Valid reports whether f is a known field (SortNone included).
func (f SortField) Valid() bool {
	return f >= SortNone && f < numSortFields
}

// SortFields returns every sortable field in column order.
func SortFields() []SortField {
	return []SortField{SortID, SortTitle, SortSummary, SortStatus, SortForecast, SortImpact}
}

// ParseSortField parses a field name; "" and "none" yield SortNone.
func ParseSortField(s string) (SortField, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortNone, nil
	}
	for f := SortNone; f < numSortFields; f++ {
		if f.String() == s {
			return f, nil
		}
	}
	return SortNone, &model.SelectionError{Slot: "sort field", Value: s}
}

// Direction is the ordering direction of an active sort.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// String returns "asc" or "desc".
func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Indicator returns the arrow shown next to a sorted column header.
func (d Direction) Indicator() string {
	if d == Descending {
		return "↓"
	}
	return "↑"
}

// ParseDirection parses "asc"/"ascending"/"desc"/"descending"; "" is ascending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return Ascending, &model.SelectionError{Slot: "sort direction", Value: s}
}

// SortState is at most one active (field, direction) pair. The zero value is
// natural order.
type SortState struct {
	Field     SortField
	Direction Direction
}

// Active reports whether a sort field is set.
func (s SortState) Active() bool {
	return s.Field != SortNone
}

// Toggle returns the state after the user activates field: a different field
// starts ascending, then the same field goes descending, then back to
// natural order.
func (s SortState) Toggle(field SortField) SortState {
	if field == SortNone {
		return SortState{}
	}
	if s.Field != field {
		return SortState{Field: field, Direction: Ascending}
	}
	if s.Direction == Ascending {
		return SortState{Field: field, Direction: Descending}
	}
	return SortState{}
}

// Validate rejects unknown fields and directions.
func (s SortState) Validate() error {
	if !s.Field.Valid() {
		return &model.SelectionError{Slot: "sort field", Value: s.Field.String()}
	}
	if s.Direction != Ascending && s.Direction != Descending {
		return &model.SelectionError{Slot: "sort direction", Value: s.Direction.String()}
	}
	return nil
}

// String renders the state, e.g. "impact desc" or "none".
func (s SortState) String() string {
	if !s.Active() {
		return "none"
	}
	return s.Field.String() + " " + s.Direction.String()
}

// sortKey is the precomputed comparison key of one record.
type sortKey struct {
	text string
	id   int
	num  float64
}

// keyFor extracts the comparison key of r for field f.
func keyFor(r model.Record, f SortField) (sortKey, error) {
	switch f {
	case SortID:
		return sortKey{id: r.ID}, nil
	case SortTitle:
		return sortKey{text: r.Title}, nil
	case SortSummary:
		return sortKey{text: r.Summary}, nil
	case SortStatus:
		return sortKey{text: r.Status}, nil
	case SortForecast:
		v, err := bucket.ForecastValue(r)
		if err != nil {
			return sortKey{}, err
		}
		return sortKey{num: v}, nil
	case SortImpact:
		if _, err := bucket.ImpactOf(r); err != nil {
			return sortKey{}, err
		}
		return sortKey{num: float64(r.Impact)}, nil
	}
	return sortKey{}, nil
}

func compareKeys(f SortField, a, b sortKey) int {
	switch f {
	case SortID:
		return cmp.Compare(a.id, b.id)
	case SortTitle, SortSummary, SortStatus:
		return strings.Compare(a.text, b.text)
	default:
		return cmp.Compare(a.num, b.num)
	}
}
