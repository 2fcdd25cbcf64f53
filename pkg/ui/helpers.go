package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/eoview/pkg/model"
	"github.com/vanderheijden86/eoview/pkg/view"
)

// truncateRunesHelper truncates a string to max visual width (cells), adding suffix if needed.
// Uses go-runewidth to handle wide characters correctly.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}

	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s
	}

	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		return runewidth.Truncate(suffix, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth-suffixWidth, "") + suffix
}

// padRight pads string s with spaces on the right to length width
func padRight(s string, width int) string {
	runeCount := utf8.RuneCountInString(s)
	if runeCount >= width {
		return s
	}
	return s + strings.Repeat(" ", width-runeCount)
}

// truncate truncates string s to maxRunes
func truncate(s string, maxRunes int) string {
	return truncateRunesHelper(s, maxRunes, "…")
}

// describeFilter renders a filter for the header, e.g. "energy · High Forecast".
func describeFilter(f view.FilterState) string {
	if !f.Active() {
		return "All orders"
	}
	var parts []string
	if f.Category != "" {
		parts = append(parts, f.Category.Label())
	}
	if f.Forecast != "" {
		parts = append(parts, f.Forecast.Label())
	}
	if f.Impact != 0 {
		parts = append(parts, fmt.Sprintf("Impact %d", f.Impact))
	}
	return strings.Join(parts, " · ")
}

// describeSort renders a sort state for the header, e.g. "Forecast ↓".
func describeSort(s view.SortState) string {
	if !s.Active() {
		return "Natural order"
	}
	return s.Field.Label() + " " + s.Direction.Indicator()
}

// nextCategory cycles through "" and every vocabulary category.
func nextCategory(cur model.Category, vocab model.Vocabulary) model.Category {
	cats := vocab.Categories()
	if cur == "" {
		if len(cats) == 0 {
			return ""
		}
		return cats[0]
	}
	for i, c := range cats {
		if c == cur && i+1 < len(cats) {
			return cats[i+1]
		}
	}
	return ""
}

// summarizeErr shortens a possibly joined error to its first line plus a count.
func summarizeErr(err error) string {
	lines := strings.Split(strings.TrimSpace(err.Error()), "\n")
	if len(lines) == 1 {
		return lines[0]
	}
	return fmt.Sprintf("%s (+%d more)", lines[0], len(lines)-1)
}
