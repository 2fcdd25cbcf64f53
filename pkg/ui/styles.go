package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/eoview/pkg/bucket"
	"github.com/vanderheijden86/eoview/pkg/model"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Adaptive colors for light and dark terminals
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorBg          = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}
	ColorBgSubtle    = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	// Forecast buckets: red for likely litigation, amber, green.
	ColorForecastHigh   = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorForecastMedium = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorForecastLow    = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}

	ColorForecastHighBg   = lipgloss.AdaptiveColor{Light: "#F8D7DA", Dark: "#3D1A1A"}
	ColorForecastMediumBg = lipgloss.AdaptiveColor{Light: "#FFE8CC", Dark: "#3D2A1A"}
	ColorForecastLowBg    = lipgloss.AdaptiveColor{Light: "#D4EDDA", Dark: "#1A3D2A"}
)

var (
	// PanelStyle is the default style for unfocused panels
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight)

	// FocusedPanelStyle is the style for focused panels
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)
)

// impactColors shades from lightest (impact-1) to darkest (impact-5).
var impactColors = map[bucket.Intensity]lipgloss.AdaptiveColor{
	"impact-1": {Light: "#9DB8E8", Dark: "#3B4A6B"},
	"impact-2": {Light: "#6F98DE", Dark: "#52689A"},
	"impact-3": {Light: "#3F77D4", Dark: "#6C8CD5"},
	"impact-4": {Light: "#2458B0", Dark: "#8FB0F5"},
	"impact-5": {Light: "#123A80", Dark: "#C2D6FF"},
}

// ImpactColor returns the color of an intensity token.
func ImpactColor(in bucket.Intensity) lipgloss.AdaptiveColor {
	if c, ok := impactColors[in]; ok {
		return c
	}
	return ColorMuted
}

// RenderForecastBadge renders a fixed-width forecast badge, e.g. "HIGH 85%".
// Unclassifiable forecasts render as a danger badge.
func RenderForecastBadge(r model.Record) string {
	b, err := bucket.ForRecord(r)
	if err != nil {
		return lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true).
			Render(padRight("? "+truncate(string(r.Forecast), 8), 10))
	}
	fg, bg, label := ColorForecastLow, ColorForecastLowBg, "LOW"
	switch b {
	case bucket.High:
		fg, bg, label = ColorForecastHigh, ColorForecastHighBg, "HIGH"
	case bucket.Medium:
		fg, bg, label = ColorForecastMedium, ColorForecastMediumBg, "MED"
	}
	return lipgloss.NewStyle().
		Foreground(fg).
		Background(bg).
		Bold(true).
		Render(padRight(label+" "+r.Forecast.Display(), 10))
}

// RenderImpactBadge renders impact as five cells, filled up to the score.
func RenderImpactBadge(r model.Record) string {
	in, err := bucket.ImpactOf(r)
	if err != nil {
		return lipgloss.NewStyle().Foreground(ColorDanger).Bold(true).Render("?????")
	}
	lvl := in.Level()
	filled := lipgloss.NewStyle().Foreground(ImpactColor(in)).Render(strings.Repeat("■", lvl))
	empty := lipgloss.NewStyle().Foreground(ColorBgHighlight).Render(strings.Repeat("□", bucket.MaxImpact-lvl))
	return filled + empty
}

// RenderCategoryChips renders categories as compact tags within maxWidth cells.
func RenderCategoryChips(t Theme, cats []model.Category, maxWidth int) string {
	if len(cats) == 0 || maxWidth <= 0 {
		return ""
	}
	var parts []string
	used := 0
	for i, c := range cats {
		chip := t.Chip.Render(string(c))
		w := lipgloss.Width(chip)
		if used+w+1 > maxWidth {
			if rest := len(cats) - i; rest > 0 && used+3 <= maxWidth {
				parts = append(parts, t.MutedText.Render("+"+strconv.Itoa(rest)))
			}
			break
		}
		parts = append(parts, chip)
		used += w + 1
	}
	return strings.Join(parts, " ")
}
