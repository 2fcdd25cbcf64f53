// Package model defines the executive-order record shape shared by every
// eoview package, the category vocabulary, and the error taxonomy raised when
// a record or a user selection cannot be classified.
package model

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Record is one executive-order entry. Records are treated as immutable once
// loaded; every view function returns fresh slices instead of editing them.
type Record struct {
	ID         int        `json:"id"`
	Title      string     `json:"title"`
	Summary    string     `json:"summary"`
	Status     string     `json:"status"`
	SourceLink string     `json:"sourceLink"`
	Forecast   Forecast   `json:"forecast"`
	Impact     int        `json:"impact"`
	Categories []Category `json:"categories"`
}

// recordWire mirrors Record with the alternate keys used by the published
// data.json files ("tldr" for the summary, "link" for the source link).
type recordWire struct {
	ID         int        `json:"id"`
	Title      string     `json:"title"`
	Summary    string     `json:"summary"`
	TLDR       string     `json:"tldr"`
	Status     string     `json:"status"`
	SourceLink string     `json:"sourceLink"`
	Link       string     `json:"link"`
	Forecast   Forecast   `json:"forecast"`
	Impact     int        `json:"impact"`
	Categories []Category `json:"categories"`
}

// UnmarshalJSON accepts both the canonical keys and the legacy aliases.
// Canonical keys win when both are present.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w recordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Record{
		ID:         w.ID,
		Title:      w.Title,
		Summary:    w.Summary,
		Status:     w.Status,
		SourceLink: w.SourceLink,
		Forecast:   w.Forecast,
		Impact:     w.Impact,
		Categories: w.Categories,
	}
	if r.Summary == "" {
		r.Summary = w.TLDR
	}
	if r.SourceLink == "" {
		r.SourceLink = w.Link
	}
	return nil
}

// HasCategory reports whether the record is tagged with c.
func (r Record) HasCategory(c Category) bool {
	for _, have := range r.Categories {
		if have == c {
			return true
		}
	}
	return false
}

// CategoryStrings returns the record's tags as plain strings.
func (r Record) CategoryStrings() []string {
	out := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		out[i] = string(c)
	}
	return out
}

// Forecast is the raw litigation-likelihood value as supplied by the data
// source, e.g. "35%", "35" or "35.5". It is normalized lazily by the bucket
// package so that malformed values surface where they are used.
type Forecast string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (f *Forecast) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Forecast(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("forecast must be a string or number: %w", err)
	}
	*f = Forecast(n.String())
	return nil
}

// ForecastFromFloat formats v the way the published data does ("42%").
func ForecastFromFloat(v float64) Forecast {
	return Forecast(strconv.FormatFloat(v, 'f', -1, 64) + "%")
}

// String returns the raw value.
func (f Forecast) String() string {
	return string(f)
}

// Display returns the raw value with a trailing percent sign when the source
// omitted it.
func (f Forecast) Display() string {
	s := strings.TrimSpace(string(f))
	if s == "" || strings.HasSuffix(s, "%") {
		return s
	}
	return s + "%"
}
