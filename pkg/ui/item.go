package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/eoview/pkg/model"
)

// RecordItem wraps model.Record to implement list.Item
type RecordItem struct {
	Record model.Record
}

func (i RecordItem) Title() string {
	return i.Record.Title
}

func (i RecordItem) Description() string {
	return fmt.Sprintf("EO %d • %s • %s", i.Record.ID, i.Record.Status, i.Record.Forecast.Display())
}

func (i RecordItem) FilterValue() string {
	var sb strings.Builder
	sb.WriteString(i.Record.Title)
	sb.WriteString(" ")
	fmt.Fprintf(&sb, "%d", i.Record.ID)
	if i.Record.Status != "" {
		sb.WriteString(" ")
		sb.WriteString(i.Record.Status)
	}
	if len(i.Record.Categories) > 0 {
		sb.WriteString(" ")
		sb.WriteString(strings.Join(i.Record.CategoryStrings(), " "))
	}
	return sb.String()
}

func toItems(records []model.Record) []RecordItem {
	items := make([]RecordItem, len(records))
	for i, r := range records {
		items[i] = RecordItem{Record: r}
	}
	return items
}
