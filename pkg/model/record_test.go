package model

import (
	"errors"
	"fmt"
	"slices"
	"testing"
	"unicode/utf8"

	json "github.com/goccy/go-json"
)

func TestRecordUnmarshal_Aliases(t *testing.T) {
	raw := `{"id":3,"title":"T","tldr":"short","link":"https://x","status":"Signed",
		"forecast":"35%","impact":2,"categories":["energy"]}`
	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if r.Summary != "short" || r.SourceLink != "https://x" {
		t.Errorf("aliases not applied: %+v", r)
	}
	if !r.HasCategory(CategoryEnergy) || r.HasCategory(CategoryOther) {
		t.Errorf("HasCategory mismatch for %v", r.Categories)
	}
}

func TestRecordUnmarshal_CanonicalWins(t *testing.T) {
	raw := `{"id":1,"summary":"canonical","tldr":"alias","sourceLink":"a","link":"b"}`
	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if r.Summary != "canonical" || r.SourceLink != "a" {
		t.Errorf("canonical keys should win: %+v", r)
	}
}

func TestForecastUnmarshal(t *testing.T) {
	tests := []struct {
		raw  string
		want Forecast
	}{
		{`"35%"`, "35%"},
		{`35`, "35"},
		{`72.5`, "72.5"},
		{`null`, ""},
	}
	for _, tt := range tests {
		var f Forecast
		if err := json.Unmarshal([]byte(tt.raw), &f); err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.raw, err)
			continue
		}
		if f != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.raw, f, tt.want)
		}
	}

	var f Forecast
	if err := json.Unmarshal([]byte(`true`), &f); err == nil {
		t.Error("expected error for boolean forecast")
	}
}

func TestForecastDisplay(t *testing.T) {
	if got := Forecast("35").Display(); got != "35%" {
		t.Errorf("Display(35) = %q", got)
	}
	if got := Forecast("35%").Display(); got != "35%" {
		t.Errorf("Display(35%%) = %q", got)
	}
	if got := ForecastFromFloat(42.5); got != "42.5%" {
		t.Errorf("ForecastFromFloat(42.5) = %q", got)
	}
}

func TestVocabulary(t *testing.T) {
	v := DefaultVocabulary()
	if !v.Contains(CategoryEnergy) || v.Contains("agriculture") {
		t.Error("default vocabulary membership wrong")
	}
	ext := v.With(" Agriculture ", "energy", "")
	if ext.Len() != v.Len()+1 {
		t.Errorf("With added %d tokens, want 1", ext.Len()-v.Len())
	}
	if !ext.Contains("agriculture") {
		t.Error("extended vocabulary missing agriculture")
	}
	if v.Contains("agriculture") {
		t.Error("With mutated the receiver")
	}
	if Category("").Label() != "All" || CategoryEnergy.Label() != "Energy" {
		t.Error("Label mismatch")
	}
}

func TestCategoryLabel_Unicode(t *testing.T) {
	tests := []struct {
		in   Category
		want string
	}{
		{"ökologie", "Ökologie"},
		{"énergie", "Énergie"},
		{"x", "X"},
		{"42nd", "42nd"},
	}
	for _, tt := range tests {
		got := tt.in.Label()
		if got != tt.want || !utf8.ValidString(got) {
			t.Errorf("Category(%q).Label() = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := Capitalize("\xff"); got != "\xff" {
		t.Errorf("Capitalize(invalid) = %q", got)
	}
}

func TestMalformedIDs_WalksJoinedAndWrapped(t *testing.T) {
	e1 := (&FieldError{Field: FieldImpact, Value: "6"}).WithRecord(4)
	e2 := &FieldError{RecordID: 9, HasRecord: true, Field: FieldForecast, Value: "x"}
	joined := errors.Join(e1, fmt.Errorf("loading: %w", errors.Join(e2, e1)))

	if !errors.Is(joined, ErrMalformedField) {
		t.Error("joined error should match ErrMalformedField")
	}
	if got := MalformedIDs(joined); !slices.Equal(got, []int{4, 9}) {
		t.Errorf("MalformedIDs = %v, want [4 9]", got)
	}
	neg := (&FieldError{Field: FieldImpact, Value: "0"}).WithRecord(-1)
	if got := MalformedIDs(neg); !slices.Equal(got, []int{-1}) {
		t.Errorf("MalformedIDs(record -1) = %v, want [-1]", got)
	}
	if got := MalformedIDs(&FieldError{Field: FieldImpact, Value: "0"}); got != nil {
		t.Errorf("unattributed error should name no record, got %v", got)
	}
	if got := MalformedIDs(&SelectionError{Slot: "impact", Value: "7"}); got != nil {
		t.Errorf("MalformedIDs(selection) = %v, want nil", got)
	}
}
