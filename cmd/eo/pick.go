package main

import (
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/eoview/pkg/bucket"
	"github.com/vanderheijden86/eoview/pkg/model"
	"github.com/vanderheijden86/eoview/pkg/view"
)

// stdinIsTerminal checks if stdin is connected to a terminal
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !stdinIsTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// pickChoices holds the raw form values; "" means any / natural order.
type pickChoices struct {
	Category string
	Forecast string
	Impact   string
	Sort     string
	Desc     bool
}

func choicesFor(filter view.FilterState, order view.SortState) pickChoices {
	c := pickChoices{
		Category: string(filter.Category),
		Forecast: string(filter.Forecast),
		Desc:     order.Direction == view.Descending,
	}
	if filter.Impact != 0 {
		c.Impact = strconv.Itoa(filter.Impact)
	}
	if order.Active() {
		c.Sort = order.Field.String()
	}
	return c
}

// toView turns the form values back into view state.
func (c pickChoices) toView(vocab model.Vocabulary) (view.FilterState, view.SortState, error) {
	filter, err := view.ParseFilter(c.Category, c.Forecast, c.Impact, vocab)
	if err != nil {
		return view.FilterState{}, view.SortState{}, err
	}
	field, err := view.ParseSortField(c.Sort)
	if err != nil {
		return view.FilterState{}, view.SortState{}, err
	}
	order := view.SortState{Field: field}
	if field != view.SortNone && c.Desc {
		order.Direction = view.Descending
	}
	return filter, order, nil
}

func categoryOptions(vocab model.Vocabulary) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("Any category", "")}
	for _, c := range vocab.Categories() {
		opts = append(opts, huh.NewOption(c.Label(), string(c)))
	}
	return opts
}

func forecastOptions() []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("Any forecast", "")}
	for _, b := range bucket.AllBuckets() {
		opts = append(opts, huh.NewOption(b.Label(), string(b)))
	}
	return opts
}

func impactOptions() []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("Any impact", "")}
	for _, lvl := range bucket.Levels() {
		s := strconv.Itoa(lvl)
		opts = append(opts, huh.NewOption("Impact "+s, s))
	}
	return opts
}

func sortOptions() []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("Natural order", "")}
	for _, f := range view.SortFields() {
		opts = append(opts, huh.NewOption(f.Label(), f.String()))
	}
	return opts
}

// pickView asks for the filter and sort, starting from the current ones.
func pickView(vocab model.Vocabulary, filter view.FilterState, order view.SortState) (view.FilterState, view.SortState, error) {
	c := choicesFor(filter, order)
	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Category").
				Options(categoryOptions(vocab)...).
				Value(&c.Category),
			huh.NewSelect[string]().
				Title("Litigation forecast").
				Options(forecastOptions()...).
				Value(&c.Forecast),
			huh.NewSelect[string]().
				Title("Impact").
				Options(impactOptions()...).
				Value(&c.Impact),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sort by").
				Options(sortOptions()...).
				Value(&c.Sort),
			huh.NewConfirm().
				Title("Descending?").
				Affirmative("Descending").
				Negative("Ascending").
				Value(&c.Desc),
		),
	)
	if err := form.Run(); err != nil {
		return view.FilterState{}, view.SortState{}, err
	}
	return c.toView(vocab)
}
