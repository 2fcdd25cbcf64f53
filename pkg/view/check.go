package view

import (
	"errors"

	"github.com/vanderheijden86/eoview/pkg/bucket"
	"github.com/vanderheijden86/eoview/pkg/model"
)

// Check reads every classifiable field of every record and reports all
// malformed ones. It lets a caller decide up front whether to skip the
// offending records or halt, instead of discovering them one view at a time.
func Check(records []model.Record) error {
	var errs []error
	for _, r := range records {
		if _, err := bucket.ForRecord(r); err != nil {
			errs = append(errs, err)
		}
		if _, err := bucket.ImpactOf(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Partition splits records into classifiable ones and the ones Check would
// report, preserving order in both. The error is Check's result.
func Partition(records []model.Record) (good, bad []model.Record, err error) {
	err = Check(records)
	if err == nil {
		return append([]model.Record(nil), records...), nil, nil
	}
	badIDs := make(map[int]bool)
	for _, id := range model.MalformedIDs(err) {
		badIDs[id] = true
	}
	for _, r := range records {
		if badIDs[r.ID] {
			bad = append(bad, r)
		} else {
			good = append(good, r)
		}
	}
	return good, bad, err
}

// ApplyPolicy runs Partition and applies the caller's malformed-record
// policy: with halt set any malformed record is an error, otherwise the
// malformed records are dropped. The dropped records are returned either way.
func ApplyPolicy(records []model.Record, halt bool) (kept, dropped []model.Record, err error) {
	good, bad, err := Partition(records)
	if err != nil && halt {
		return nil, bad, err
	}
	return good, bad, nil
}
