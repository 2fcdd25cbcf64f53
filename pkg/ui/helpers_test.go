package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/eoview/pkg/bucket"
	"github.com/vanderheijden86/eoview/pkg/model"
	"github.com/vanderheijden86/eoview/pkg/view"
)

func TestTruncateRunesHelper(t *testing.T) {
	tests := []struct {
		in     string
		max    int
		suffix string
		want   string
	}{
		{"hello", 10, "…", "hello"},
		{"hello world", 8, "…", "hello w…"},
		{"hello", 0, "…", ""},
		{"hello", 2, "...", ".."},
		{"日本語テキスト", 7, "…", "日本語…"},
	}
	for _, tt := range tests {
		got := truncateRunesHelper(tt.in, tt.max, tt.suffix)
		if got != tt.want {
			t.Errorf("truncateRunesHelper(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
		if w := runewidth.StringWidth(got); w > tt.max {
			t.Errorf("truncateRunesHelper(%q, %d) is %d cells wide", tt.in, tt.max, w)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Errorf("padRight should not cut, got %q", got)
	}
}

func TestNextCategory(t *testing.T) {
	vocab := model.NewVocabulary("energy", "economy")
	seq := []model.Category{"energy", "economy", ""}
	cur := model.Category("")
	for _, want := range seq {
		cur = nextCategory(cur, vocab)
		if cur != want {
			t.Fatalf("nextCategory = %q, want %q", cur, want)
		}
	}
	if got := nextCategory("", model.NewVocabulary()); got != "" {
		t.Errorf("empty vocabulary should stay unconstrained, got %q", got)
	}
}

func TestNextBucket(t *testing.T) {
	seq := []bucket.ForecastBucket{bucket.High, bucket.Medium, bucket.Low, ""}
	var cur bucket.ForecastBucket
	for _, want := range seq {
		cur = nextBucket(cur)
		if cur != want {
			t.Fatalf("nextBucket = %q, want %q", cur, want)
		}
	}
}

func TestDescribe(t *testing.T) {
	if got := describeFilter(view.FilterState{}); got != "All orders" {
		t.Errorf("describeFilter(zero) = %q", got)
	}
	f := view.FilterState{Category: "energy", Forecast: bucket.High, Impact: 4}
	if got := describeFilter(f); got != "Energy · High Forecast · Impact 4" {
		t.Errorf("describeFilter = %q", got)
	}
	if got := describeSort(view.SortState{}); got != "Natural order" {
		t.Errorf("describeSort(zero) = %q", got)
	}
	if got := describeSort(view.SortState{Field: view.SortSummary, Direction: view.Descending}); got != "TLDR ↓" {
		t.Errorf("describeSort = %q", got)
	}
}

func TestSummarizeErr(t *testing.T) {
	if got := summarizeErr(errors.New("one")); got != "one" {
		t.Errorf("got %q", got)
	}
	joined := errors.Join(errors.New("first"), errors.New("second"), errors.New("third"))
	if got := summarizeErr(joined); got != "first (+2 more)" {
		t.Errorf("got %q", got)
	}
}

func TestRenderBadges(t *testing.T) {
	good := model.Record{ID: 1, Forecast: "85%", Impact: 3}
	if got := RenderForecastBadge(good); !strings.Contains(got, "HIGH 85%") {
		t.Errorf("forecast badge = %q", got)
	}
	if got := RenderImpactBadge(good); !strings.Contains(got, "■■■") {
		t.Errorf("impact badge = %q", got)
	}

	bad := model.Record{ID: 2, Forecast: "soon", Impact: 9}
	if got := RenderForecastBadge(bad); !strings.Contains(got, "? soon") {
		t.Errorf("malformed forecast badge = %q", got)
	}
	if got := RenderImpactBadge(bad); !strings.Contains(got, "?????") {
		t.Errorf("malformed impact badge = %q", got)
	}
}

func TestRenderCategoryChips(t *testing.T) {
	theme := TestTheme()
	cats := []model.Category{"environment", "energy", "infrastructure"}
	got := RenderCategoryChips(theme, cats, 200)
	for _, c := range cats {
		if !strings.Contains(got, string(c)) {
			t.Errorf("chips missing %q: %q", c, got)
		}
	}
	narrow := RenderCategoryChips(theme, cats, 30)
	if !strings.Contains(narrow, "+1") || strings.Contains(narrow, "infrastructure") {
		t.Errorf("narrow chips should elide the rest: %q", narrow)
	}
	if RenderCategoryChips(theme, nil, 50) != "" {
		t.Error("no categories should render nothing")
	}
}

func TestForecastColor(t *testing.T) {
	theme := TestTheme()
	for _, b := range bucket.AllBuckets() {
		tone, err := bucket.ForecastColorClass(b)
		if err != nil {
			t.Fatal(err)
		}
		if theme.ForecastColor(tone) == theme.Subtext {
			t.Errorf("tone %q fell back to the default color", tone)
		}
	}
	if theme.ForecastColor("bogus") != theme.Subtext {
		t.Error("unknown tone should use the subtext color")
	}
}
