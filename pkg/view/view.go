// Package view derives the filtered, ordered projection of a record
// collection that the presentation layer renders.
//
// Every function here is pure: inputs are never modified, results are fresh
// slices, and no state is kept between calls. A view is always
//
//	Sort(Select(records, filter), sort)
//
// so sorting only touches the surviving subset.
package view

import (
	"errors"
	"slices"

	"github.com/vanderheijden86/eoview/pkg/metrics"
	"github.com/vanderheijden86/eoview/pkg/model"
)

// Engine evaluates views against a category vocabulary.
type Engine struct {
	vocab model.Vocabulary
}

// NewEngine returns an engine recognizing the categories in vocab.
func NewEngine(vocab model.Vocabulary) *Engine {
	return &Engine{vocab: vocab}
}

var defaultEngine = NewEngine(model.DefaultVocabulary())

// Vocabulary returns the categories the engine recognizes.
func (e *Engine) Vocabulary() model.Vocabulary {
	return e.vocab
}

// Select returns the records satisfying every active constraint of state,
// in their original relative order. All offending records are reported
// together; the selection is nil whenever an error is returned.
func (e *Engine) Select(records []model.Record, state FilterState) ([]model.Record, error) {
	defer metrics.Timer(metrics.Select)()

	if err := state.Validate(e.vocab); err != nil {
		return nil, err
	}
	if !state.Active() {
		return slices.Clone(records), nil
	}

	preds := state.predicates()
	out := make([]model.Record, 0, len(records))
	var errs []error
	for _, r := range records {
		keep := true
		// Evaluate every predicate so that the reported errors do not
		// depend on predicate order.
		for _, p := range preds {
			ok, err := p(r)
			if err != nil {
				errs = append(errs, err)
				keep = false
				continue
			}
			keep = keep && ok
		}
		if keep {
			out = append(out, r)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Sort returns the records ordered by state. Natural order returns a copy of
// the input. The sort is stable in both directions.
func (e *Engine) Sort(records []model.Record, state SortState) ([]model.Record, error) {
	defer metrics.Timer(metrics.Sort)()

	if err := state.Validate(); err != nil {
		return nil, err
	}
	if !state.Active() {
		return slices.Clone(records), nil
	}

	type keyed struct {
		rec model.Record
		key sortKey
	}
	items := make([]keyed, len(records))
	var errs []error
	for i, r := range records {
		k, err := keyFor(r, state.Field)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		items[i] = keyed{rec: r, key: k}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		c := compareKeys(state.Field, a.key, b.key)
		if state.Direction == Descending {
			return -c
		}
		return c
	})

	out := make([]model.Record, len(items))
	for i, it := range items {
		out[i] = it.rec
	}
	return out, nil
}

// Build filters then sorts.
func (e *Engine) Build(records []model.Record, filter FilterState, order SortState) ([]model.Record, error) {
	selected, err := e.Select(records, filter)
	if err != nil {
		return nil, err
	}
	return e.Sort(selected, order)
}

// Select runs Engine.Select with the default vocabulary.
func Select(records []model.Record, state FilterState) ([]model.Record, error) {
	return defaultEngine.Select(records, state)
}

// Sort runs Engine.Sort with the default vocabulary.
func Sort(records []model.Record, state SortState) ([]model.Record, error) {
	return defaultEngine.Sort(records, state)
}

// Build runs Engine.Build with the default vocabulary.
func Build(records []model.Record, filter FilterState, order SortState) ([]model.Record, error) {
	return defaultEngine.Build(records, filter, order)
}
