package datasource

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/eoview/pkg/loader"
	"github.com/vanderheijden86/eoview/pkg/model"
)

// ErrNoValidSource is returned when no discovered source passed validation.
var ErrNoValidSource = errors.New("no valid data source")

// ValidateSource opens src, counts its records and records the outcome on
// src. A source without admissible records is invalid. The returned error is
// the validation failure, if any.
func ValidateSource(src *DataSource, vocab model.Vocabulary) error {
	err := validate(src, vocab)
	src.Valid = err == nil
	src.ValidationError = ""
	if err != nil {
		src.ValidationError = err.Error()
		src.RecordCount = 0
	}
	return err
}

func validate(src *DataSource, vocab model.Vocabulary) error {
	if src.Size == 0 {
		return fmt.Errorf("empty file")
	}
	switch src.Type {
	case SourceTypeSQLite:
		r, err := NewSQLiteReader(src.Path)
		if err != nil {
			return err
		}
		defer r.Close()
		n, err := r.CountRecords()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("no records")
		}
		src.RecordCount = n
		return nil

	case SourceTypeJSON, SourceTypeJSONL:
		recs, err := loader.LoadRecordsFromFileWithOptions(src.Path, loader.ParseOptions{
			WarningHandler: func(string) {},
			Vocabulary:     vocab,
		})
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			return fmt.Errorf("no records")
		}
		src.RecordCount = len(recs)
		return nil
	}
	return fmt.Errorf("unknown source type: %s", src.Type)
}

// SelectBestSource returns the freshest valid source, preferring higher
// priority on equal modification time.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	candidates := make([]DataSource, 0, len(sources))
	for _, s := range sources {
		if s.Valid {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return DataSource{}, ErrNoValidSource
	}
	sortSources(candidates)
	return candidates[0], nil
}
