package datasource

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vanderheijden86/eoview/pkg/model"
)

// SourceDiff describes how two record sets disagree.
type SourceDiff struct {
	SourceA string
	SourceB string
	// MissingInA holds ids present in B but not in A.
	MissingInA []int
	// MissingInB holds ids present in A but not in B.
	MissingInB []int
	// FieldMismatch lists differing classifiable fields of shared ids.
	FieldMismatch []FieldDifference
	CountA        int
	CountB        int
}

// FieldDifference is one differing field of a record present in both sources.
type FieldDifference struct {
	ID    int    `json:"id"`
	Field string `json:"field"`
	A     string `json:"a"`
	B     string `json:"b"`
}

// HasInconsistencies reports whether the sources differ at all.
func (d SourceDiff) HasInconsistencies() bool {
	return len(d.MissingInA) > 0 || len(d.MissingInB) > 0 || len(d.FieldMismatch) > 0
}

// Summary returns a human-readable summary of the differences.
func (d SourceDiff) Summary() string {
	if !d.HasInconsistencies() {
		return fmt.Sprintf("Sources match (%d records each)", d.CountA)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Inconsistencies found between %s and %s:\n", d.SourceA, d.SourceB)
	if d.CountA != d.CountB {
		fmt.Fprintf(&sb, "  - Count mismatch: %d vs %d\n", d.CountA, d.CountB)
	}
	if len(d.MissingInA) > 0 {
		fmt.Fprintf(&sb, "  - %d records in %s but not %s\n", len(d.MissingInA), d.SourceB, d.SourceA)
	}
	if len(d.MissingInB) > 0 {
		fmt.Fprintf(&sb, "  - %d records in %s but not %s\n", len(d.MissingInB), d.SourceA, d.SourceB)
	}
	if len(d.FieldMismatch) > 0 {
		fmt.Fprintf(&sb, "  - %d differing fields\n", len(d.FieldMismatch))
		for i, m := range d.FieldMismatch {
			if i == 5 {
				sb.WriteString("    - ...\n")
				break
			}
			fmt.Fprintf(&sb, "    - %d %s: %s vs %s\n", m.ID, m.Field, m.A, m.B)
		}
	}
	return sb.String()
}

// DetectInconsistencies compares two record sets by id. Only the status,
// forecast and impact fields are compared.
func DetectInconsistencies(a, b []model.Record, sourceA, sourceB string) SourceDiff {
	diff := SourceDiff{SourceA: sourceA, SourceB: sourceB}

	mapA := make(map[int]model.Record, len(a))
	for _, r := range a {
		mapA[r.ID] = r
	}
	mapB := make(map[int]model.Record, len(b))
	for _, r := range b {
		mapB[r.ID] = r
	}
	diff.CountA = len(mapA)
	diff.CountB = len(mapB)

	for id := range mapA {
		if _, ok := mapB[id]; !ok {
			diff.MissingInB = append(diff.MissingInB, id)
		}
	}
	for id, rb := range mapB {
		ra, ok := mapA[id]
		if !ok {
			diff.MissingInA = append(diff.MissingInA, id)
			continue
		}
		if ra.Status != rb.Status {
			diff.FieldMismatch = append(diff.FieldMismatch, FieldDifference{id, "status", ra.Status, rb.Status})
		}
		if ra.Forecast != rb.Forecast {
			diff.FieldMismatch = append(diff.FieldMismatch, FieldDifference{id, model.FieldForecast, string(ra.Forecast), string(rb.Forecast)})
		}
		if ra.Impact != rb.Impact {
			diff.FieldMismatch = append(diff.FieldMismatch, FieldDifference{id, model.FieldImpact, strconv.Itoa(ra.Impact), strconv.Itoa(rb.Impact)})
		}
	}

	sort.Ints(diff.MissingInA)
	sort.Ints(diff.MissingInB)
	sort.Slice(diff.FieldMismatch, func(i, j int) bool {
		if diff.FieldMismatch[i].ID != diff.FieldMismatch[j].ID {
			return diff.FieldMismatch[i].ID < diff.FieldMismatch[j].ID
		}
		return diff.FieldMismatch[i].Field < diff.FieldMismatch[j].Field
	})
	return diff
}

// CompareSources loads both sources and compares them.
func CompareSources(a, b DataSource, opts LoadOptions) (*SourceDiff, error) {
	quiet := opts
	quiet.WarningHandler = func(string) {}
	quiet.Strict = false

	ra, err := LoadFromSource(a, quiet)
	if err != nil {
		return nil, fmt.Errorf("failed to load source A (%s): %w", a.Path, err)
	}
	rb, err := LoadFromSource(b, quiet)
	if err != nil {
		return nil, fmt.Errorf("failed to load source B (%s): %w", b.Path, err)
	}
	diff := DetectInconsistencies(ra.Records, rb.Records, a.Path, b.Path)
	return &diff, nil
}
