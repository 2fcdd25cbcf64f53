package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RecordDelegate renders record items in the list
type RecordDelegate struct {
	Theme Theme
}

func (d RecordDelegate) Height() int {
	return 1
}

func (d RecordDelegate) Spacing() int {
	return 0
}

func (d RecordDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d RecordDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(RecordItem)
	if !ok {
		return
	}

	t := d.Theme
	width := m.Width()
	if width <= 0 {
		width = 80
	}
	// Reduce width by 1 to prevent terminal wrapping on the exact edge
	width = width - 1

	isSelected := index == m.Index()

	// Layout: [sel] [forecast-badge] [impact-badge] [id] [title...] [status] [chips]
	idStr := strconv.Itoa(i.Record.ID)
	title := i.Record.Title

	rightWidth := 0
	var rightParts []string

	if width > 70 && i.Record.Status != "" {
		status := truncateRunesHelper(i.Record.Status, 14, "…")
		rightParts = append(rightParts, t.SecondaryText.Render(fmt.Sprintf("%-14s", status)))
		rightWidth += 15
	}

	if width > 110 && len(i.Record.Categories) > 0 {
		chips := RenderCategoryChips(t, i.Record.Categories, 30)
		rightParts = append(rightParts, chips)
		rightWidth += lipgloss.Width(chips) + 1
	}

	forecastBadge := RenderForecastBadge(i.Record)
	impactBadge := RenderImpactBadge(i.Record)

	// [selector 2] [forecast] [impact] [id] with single spaces between
	leftFixedWidth := 2
	leftFixedWidth += lipgloss.Width(forecastBadge) + 1
	leftFixedWidth += lipgloss.Width(impactBadge) + 1
	leftFixedWidth += lipgloss.Width(idStr) + 1

	titleWidth := width - leftFixedWidth - rightWidth - 2
	if titleWidth < 5 {
		titleWidth = 5
	}
	title = truncateRunesHelper(title, titleWidth, "…")
	if cw := lipgloss.Width(title); cw < titleWidth {
		title = title + strings.Repeat(" ", titleWidth-cw)
	}

	var leftSide strings.Builder
	if isSelected {
		leftSide.WriteString(t.PrimaryBold.Render("▸ "))
	} else {
		leftSide.WriteString("  ")
	}
	leftSide.WriteString(forecastBadge)
	leftSide.WriteString(" ")
	leftSide.WriteString(impactBadge)
	leftSide.WriteString(" ")

	idStyle := t.SecondaryText
	if isSelected {
		idStyle = idStyle.Bold(true)
	}
	leftSide.WriteString(idStyle.Render(idStr))
	leftSide.WriteString(" ")

	titleStyle := t.Renderer.NewStyle()
	if isSelected {
		titleStyle = titleStyle.Foreground(t.Primary).Bold(true)
	} else {
		titleStyle = titleStyle.Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#E8E8E8"})
	}
	leftSide.WriteString(titleStyle.Render(title))

	rightSide := strings.Join(rightParts, " ")

	leftLen := lipgloss.Width(leftSide.String())
	rightLen := lipgloss.Width(rightSide)
	padding := width - leftLen - rightLen
	if padding < 0 {
		padding = 0
	}
	row := leftSide.String() + strings.Repeat(" ", padding) + rightSide

	rowStyle := t.Renderer.NewStyle().Width(width).MaxWidth(width)
	if isSelected {
		row = rowStyle.Background(t.Highlight).Render(row)
	} else {
		row = rowStyle.Render(row)
	}

	fmt.Fprint(w, row)
}
