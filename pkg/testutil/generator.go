// Package testutil provides record fixture generators for tests.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/goccy/go-json"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/eoview/pkg/model"
)

// RecordFixture represents a set of records for integration testing.
// This is the format used by testdata/*.json files.
type RecordFixture struct {
	Description string         `json:"description"`
	Records     []model.Record `json:"records"`
}

// GeneratorConfig controls record generation.
type GeneratorConfig struct {
	Seed          int64            // Random seed for determinism (0 = fixed default)
	FirstID       int              // ID of the first generated record (default: 1)
	Categories    []model.Category // Category pool (nil = default vocabulary)
	MaxCategories int              // Max categories per record (default: 2)
	Statuses      []string         // Status pool (nil = built-in list)
	FractionalPct bool             // Emit forecasts like "42.5%"
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:          42,
		FirstID:       1,
		MaxCategories: 2,
	}
}

var defaultStatuses = []string{
	"Signed",
	"Challenged in court",
	"Temporarily blocked",
	"Partially enjoined",
	"In effect",
}

// Generator creates records with deterministic pseudo-random fields.
type Generator struct {
	cfg    GeneratorConfig
	rng    *rand.Rand
	nextID int
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.FirstID == 0 {
		cfg.FirstID = 1
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = model.DefaultVocabulary().Categories()
	}
	if cfg.MaxCategories <= 0 {
		cfg.MaxCategories = 2
	}
	if len(cfg.Statuses) == 0 {
		cfg.Statuses = defaultStatuses
	}
	return &Generator{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		nextID: cfg.FirstID,
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Record returns the next well-formed record.
func (g *Generator) Record() model.Record {
	id := g.nextID
	g.nextID++

	var forecast model.Forecast
	if g.cfg.FractionalPct {
		forecast = model.ForecastFromFloat(float64(g.rng.Intn(1001)) / 10)
	} else {
		forecast = model.ForecastFromFloat(float64(g.rng.Intn(101)))
	}

	return model.Record{
		ID:         id,
		Title:      fmt.Sprintf("Executive Order %d", 14000+id),
		Summary:    fmt.Sprintf("Summary of order %d", id),
		Status:     g.cfg.Statuses[g.rng.Intn(len(g.cfg.Statuses))],
		SourceLink: fmt.Sprintf("https://example.gov/eo/%d", id),
		Forecast:   forecast,
		Impact:     1 + g.rng.Intn(5),
		Categories: g.pickCategories(),
	}
}

// Records returns n well-formed records with consecutive ids.
func (g *Generator) Records(n int) []model.Record {
	out := make([]model.Record, n)
	for i := range out {
		out[i] = g.Record()
	}
	return out
}

// WithMalformed returns n records where every stride-th one carries an
// out-of-range impact or forecast.
func (g *Generator) WithMalformed(n, stride int) []model.Record {
	out := g.Records(n)
	if stride <= 0 {
		return out
	}
	for i := stride - 1; i < n; i += stride {
		if (i/stride)%2 == 0 {
			out[i].Impact = 6
		} else {
			out[i].Forecast = "120%"
		}
	}
	return out
}

func (g *Generator) pickCategories() []model.Category {
	n := 1 + g.rng.Intn(g.cfg.MaxCategories)
	perm := g.rng.Perm(len(g.cfg.Categories))
	if n > len(perm) {
		n = len(perm)
	}
	cats := make([]model.Category, n)
	for i := 0; i < n; i++ {
		cats[i] = g.cfg.Categories[perm[i]]
	}
	return cats
}

// ToJSON renders records as a JSON array.
func ToJSON(records []model.Record) string {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

// ToJSONL renders records one per line.
func ToJSONL(records []model.Record) string {
	var sb strings.Builder
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			continue
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ============================================================================
// Property-test generators
// ============================================================================

// RecordGen draws well-formed records from the default vocabulary. Titles are
// drawn from a tiny alphabet so that ties are common.
func RecordGen() *rapid.Generator[model.Record] {
	cats := model.DefaultVocabulary().Categories()
	return rapid.Custom(func(t *rapid.T) model.Record {
		return model.Record{
			ID:         rapid.IntRange(1, 1000).Draw(t, "id"),
			Title:      rapid.StringOfN(rapid.RuneFrom([]rune("abc")), 0, 3, -1).Draw(t, "title"),
			Summary:    rapid.StringOfN(rapid.RuneFrom([]rune("xyz")), 0, 3, -1).Draw(t, "summary"),
			Status:     rapid.SampledFrom(defaultStatuses).Draw(t, "status"),
			Forecast:   model.ForecastFromFloat(float64(rapid.IntRange(0, 100).Draw(t, "forecast"))),
			Impact:     rapid.IntRange(1, 5).Draw(t, "impact"),
			Categories: rapid.SliceOfNDistinct(rapid.SampledFrom(cats), 1, 3, rapid.ID[model.Category]).Draw(t, "categories"),
		}
	})
}

// RecordsGen draws up to max well-formed records with unique ids in
// insertion order.
func RecordsGen(max int) *rapid.Generator[[]model.Record] {
	return rapid.Custom(func(t *rapid.T) []model.Record {
		recs := rapid.SliceOfN(RecordGen(), 0, max).Draw(t, "records")
		for i := range recs {
			recs[i].ID = i + 1
		}
		return recs
	})
}

// ============================================================================
// Quick helpers
// ============================================================================

// QuickRecords returns n records from the default generator.
func QuickRecords(n int) []model.Record {
	return NewDefault().Records(n)
}

// Empty returns an empty record slice.
func Empty() []model.Record {
	return []model.Record{}
}

// Pair returns the two canonical records used across tests: a low-forecast
// energy order and a high-forecast immigration order.
func Pair() []model.Record {
	return []model.Record{
		{
			ID:         1,
			Title:      "Unleashing American Energy",
			Summary:    "Rescinds prior climate orders.",
			Status:     "Signed",
			SourceLink: "https://example.gov/eo/1",
			Forecast:   "35%",
			Impact:     2,
			Categories: []model.Category{model.CategoryEnvironment, model.CategoryEnergy},
		},
		{
			ID:         2,
			Title:      "Protecting the Meaning of Citizenship",
			Summary:    "Restricts birthright citizenship.",
			Status:     "Temporarily blocked",
			SourceLink: "https://example.gov/eo/2",
			Forecast:   "85%",
			Impact:     5,
			Categories: []model.Category{model.CategoryImmigration},
		},
	}
}
