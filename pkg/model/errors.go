package model

import (
	"errors"
	"fmt"
)

// Error taxonomy. Callers match with errors.Is and extract details with
// errors.As on *FieldError or *SelectionError.
var (
	// ErrMalformedField marks a record field that cannot be classified:
	// an unparseable or out-of-range forecast, or an impact outside 1..5.
	ErrMalformedField = errors.New("malformed field")

	// ErrInvalidFilterSelection marks a filter or sort selection that is
	// outside the recognized enumerations.
	ErrInvalidFilterSelection = errors.New("invalid filter selection")
)

// Field names used in FieldError.
const (
	FieldForecast = "forecast"
	FieldImpact   = "impact"
)

// FieldError describes one malformed record field. RecordID is meaningful
// only when HasRecord is set; any int, negative ones included, is a valid id.
type FieldError struct {
	RecordID  int
	HasRecord bool
	Field     string
	Value     string
	Reason    string
}

func (e *FieldError) Error() string {
	if !e.HasRecord {
		return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("record %d: %s %q: %s", e.RecordID, e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrMalformedField
}

// WithRecord returns a copy of e attributed to record id.
func (e *FieldError) WithRecord(id int) *FieldError {
	c := *e
	c.RecordID = id
	c.HasRecord = true
	return &c
}

// SelectionError describes a filter or sort slot holding an unrecognized value.
type SelectionError struct {
	Slot  string
	Value string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("unrecognized %s selection %q", e.Slot, e.Value)
}

func (e *SelectionError) Unwrap() error {
	return ErrInvalidFilterSelection
}

// MalformedIDs returns the record IDs named by every FieldError in err,
// including errors combined with errors.Join. Order follows err's tree.
func MalformedIDs(err error) []int {
	var ids []int
	seen := make(map[int]bool)
	walkFieldErrors(err, func(fe *FieldError) {
		if fe.HasRecord && !seen[fe.RecordID] {
			seen[fe.RecordID] = true
			ids = append(ids, fe.RecordID)
		}
	})
	return ids
}

func walkFieldErrors(err error, fn func(*FieldError)) {
	switch e := err.(type) {
	case nil:
		return
	case *FieldError:
		fn(e)
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			walkFieldErrors(inner, fn)
		}
	case interface{ Unwrap() error }:
		walkFieldErrors(e.Unwrap(), fn)
	}
}
