package export

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/vanderheijden86/eoview/pkg/bucket"
	"github.com/vanderheijden86/eoview/pkg/model"
	"github.com/vanderheijden86/eoview/pkg/stats"
	"github.com/vanderheijden86/eoview/pkg/view"
)

// Package-level compiled regex for slug creation (avoids recompilation per call)
var slugNonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// MarkdownOptions controls the report header.
type MarkdownOptions struct {
	Title  string
	Filter view.FilterState
	Sort   view.SortState
	// Now stamps the report; zero means time.Now.
	Now time.Time
}

// GenerateMarkdown renders records, in the order given, as a report with a
// summary table, a table of contents and one section per record.
func GenerateMarkdown(records []model.Record, opts MarkdownOptions) (string, error) {
	var sb strings.Builder

	title := opts.Title
	if title == "" {
		title = "Executive Orders"
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "*Generated: %s*\n\n", now.Format(time.RFC1123))
	fmt.Fprintf(&sb, "Filter: `%s` · Sort: `%s`\n\n", opts.Filter, opts.Sort)

	sum := stats.Compute(records)
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Count |\n|--------|-------|\n")
	fmt.Fprintf(&sb, "| **Total** | %d |\n", sum.Total)
	for _, bc := range sum.BucketCounts() {
		fmt.Fprintf(&sb, "| %s %s | %d |\n", bucketEmoji(bc.Bucket), bc.Bucket.Label(), bc.Count)
	}
	if sum.Malformed > 0 {
		fmt.Fprintf(&sb, "| Unclassifiable | %d |\n", sum.Malformed)
	}
	sb.WriteString("\n")

	if len(records) == 0 {
		sb.WriteString("*No executive orders match this view.*\n")
		return sb.String(), nil
	}

	slugCounts := make(map[string]int, len(records))
	slugs := make([]string, len(records))
	for idx, r := range records {
		slugs[idx] = uniqueSlug(createSlug(headingText(r)), slugCounts)
	}

	sb.WriteString("## Table of Contents\n\n")
	for idx, r := range records {
		fmt.Fprintf(&sb, "- [%s](#%s)\n", headingText(r), slugs[idx])
	}
	sb.WriteString("\n---\n\n")

	for idx, r := range records {
		fmt.Fprintf(&sb, "<a id=\"%s\"></a>\n\n", slugs[idx])
		fmt.Fprintf(&sb, "## %s\n\n", headingText(r))
		writePropertyTable(&sb, r)
		if r.Summary != "" {
			sb.WriteString("### TLDR\n\n")
			sb.WriteString(r.Summary + "\n\n")
		}
		sb.WriteString("---\n\n")
	}

	return sb.String(), nil
}

// RecordMarkdown renders the detail page of a single record.
func RecordMarkdown(r model.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", r.Title)
	if r.SourceLink != "" {
		fmt.Fprintf(&sb, "[Read the full executive order](%s)\n\n", r.SourceLink)
	}
	writePropertyTable(&sb, r)
	if r.Summary != "" {
		sb.WriteString("## TLDR\n\n")
		sb.WriteString(r.Summary + "\n")
	}
	return sb.String()
}

func writePropertyTable(sb *strings.Builder, r model.Record) {
	sb.WriteString("| Property | Value |\n|----------|-------|\n")
	if len(r.Categories) > 0 {
		labels := make([]string, len(r.Categories))
		for i, c := range r.Categories {
			labels[i] = escapeCell(c.Label())
		}
		fmt.Fprintf(sb, "| **Categories** | %s |\n", strings.Join(labels, ", "))
	}
	if r.Status != "" {
		fmt.Fprintf(sb, "| **Status** | %s |\n", escapeCell(r.Status))
	}
	fmt.Fprintf(sb, "| **Litigation forecast** | %s |\n", forecastCell(r))
	fmt.Fprintf(sb, "| **Impact** | %s |\n", impactCell(r))
	if r.SourceLink != "" {
		fmt.Fprintf(sb, "| **Source** | <%s> |\n", r.SourceLink)
	}
	sb.WriteString("\n")
}

func forecastCell(r model.Record) string {
	b, err := bucket.ForRecord(r)
	if err != nil {
		return fmt.Sprintf("⚠ %s (unclassifiable)", escapeCell(string(r.Forecast)))
	}
	return fmt.Sprintf("%s %s (%s)", bucketEmoji(b), escapeCell(r.Forecast.Display()), b)
}

func impactCell(r model.Record) string {
	in, err := bucket.ImpactOf(r)
	if err != nil {
		return fmt.Sprintf("⚠ %d (unclassifiable)", r.Impact)
	}
	return fmt.Sprintf("%s %d/5", impactBar(in.Level()), r.Impact)
}

func headingText(r model.Record) string {
	return fmt.Sprintf("%d %s", r.ID, r.Title)
}

func bucketEmoji(b bucket.ForecastBucket) string {
	switch b {
	case bucket.High:
		return "🔴"
	case bucket.Medium:
		return "🟡"
	case bucket.Low:
		return "🟢"
	default:
		return "⚪"
	}
}

func impactBar(level int) string {
	return strings.Repeat("●", level) + strings.Repeat("○", bucket.MaxImpact-level)
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "|", "\\|")
}

func uniqueSlug(base string, counts map[string]int) string {
	if base == "" {
		base = "section"
	}
	if count, ok := counts[base]; ok {
		count++
		counts[base] = count
		return fmt.Sprintf("%s-%d", base, count)
	}
	counts[base] = 0
	return base
}

// createSlug creates a URL-friendly slug from heading text.
func createSlug(text string) string {
	slug := strings.ToLower(text)
	slug = slugNonAlphanumericRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// SaveMarkdownToFile writes the generated report to filename.
func SaveMarkdownToFile(records []model.Record, opts MarkdownOptions, filename string) error {
	content, err := GenerateMarkdown(records, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(content), 0644)
}
