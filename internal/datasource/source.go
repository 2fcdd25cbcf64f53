// Package datasource discovers, validates, and selects the freshest valid
// record source in a directory: SQLite databases written by the exporter,
// JSON arrays, and JSON Lines files.
package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/eoview/pkg/loader"
	"github.com/vanderheijden86/eoview/pkg/model"
)

// SourceType identifies the type of data source.
type SourceType string

const (
	SourceTypeSQLite SourceType = "sqlite"
	SourceTypeJSON   SourceType = "json"
	SourceTypeJSONL  SourceType = "jsonl"
)

// Priority values for source types (higher = preferred on equal freshness).
const (
	PrioritySQLite = 100
	PriorityJSON   = 60
	PriorityJSONL  = 50
)

// maxConcurrentValidations bounds the validation fan-out.
const maxConcurrentValidations = 4

// DataSource represents a potential source of records.
type DataSource struct {
	Type            SourceType `json:"type"`
	Path            string     `json:"path"`
	Priority        int        `json:"priority"`
	ModTime         time.Time  `json:"mod_time"`
	Valid           bool       `json:"valid"`
	ValidationError string     `json:"validation_error,omitempty"`
	RecordCount     int        `json:"record_count"`
	Size            int64      `json:"size"`
}

// String returns a human-readable description of the source.
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s, records=%d, %s)",
		s.Path, s.Type, s.Priority, s.ModTime.Format(time.RFC3339), s.RecordCount, status)
}

// DiscoveryOptions configures source discovery behavior.
type DiscoveryOptions struct {
	// Dir is the directory to scan (cwd if empty).
	Dir string
	// ValidateAfterDiscovery runs validation on each discovered source.
	ValidateAfterDiscovery bool
	// IncludeInvalid keeps sources that failed validation in the result.
	IncludeInvalid bool
	// Vocabulary is used when validating JSON sources.
	Vocabulary model.Vocabulary
	// Logger receives progress messages; nil discards them.
	Logger func(msg string)
}

// TypeForPath classifies a file by extension. ok is false for unknown files.
func TypeForPath(path string) (SourceType, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite, true
	case ".json":
		return SourceTypeJSON, true
	case ".jsonl":
		return SourceTypeJSONL, true
	}
	return "", false
}

func priorityFor(t SourceType) int {
	switch t {
	case SourceTypeSQLite:
		return PrioritySQLite
	case SourceTypeJSON:
		return PriorityJSON
	default:
		return PriorityJSONL
	}
}

// SourceFromPath describes the single file at path.
func SourceFromPath(path string) (DataSource, error) {
	typ, ok := TypeForPath(path)
	if !ok {
		return DataSource{}, fmt.Errorf("unsupported data file: %s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return DataSource{}, fmt.Errorf("%w at %s", loader.ErrNoData, path)
	}
	return DataSource{
		Type:     typ,
		Path:     path,
		Priority: priorityFor(typ),
		ModTime:  info.ModTime(),
		Size:     info.Size(),
	}, nil
}

// DiscoverSources finds all candidate sources in opts.Dir, sorted freshest
// first. Validation runs concurrently when requested.
func DiscoverSources(ctx context.Context, opts DiscoveryOptions) ([]DataSource, error) {
	logf := func(format string, args ...any) {
		if opts.Logger != nil {
			opts.Logger(fmt.Sprintf(format, args...))
		}
	}

	dir := opts.Dir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}
	logf("Discovering sources in: %s", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var sources []DataSource
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.Contains(name, ".backup") || strings.Contains(name, ".orig") {
			continue
		}
		typ, ok := TypeForPath(name)
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		sources = append(sources, DataSource{
			Type:     typ,
			Path:     filepath.Join(dir, name),
			Priority: priorityFor(typ),
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
		logf("Found %s: %s (mod=%s)", typ, name, info.ModTime().Format(time.RFC3339))
	}

	if opts.ValidateAfterDiscovery {
		if err := validateAll(ctx, sources, opts.Vocabulary, logf); err != nil {
			return nil, err
		}
		if !opts.IncludeInvalid {
			valid := sources[:0]
			for _, s := range sources {
				if s.Valid {
					valid = append(valid, s)
				}
			}
			sources = valid
		}
	}

	sortSources(sources)
	logf("Discovered %d sources", len(sources))
	return sources, nil
}

// validateAll validates sources in place. Individual validation failures are
// recorded on the source; only context cancellation aborts.
func validateAll(ctx context.Context, sources []DataSource, vocab model.Vocabulary, logf func(string, ...any)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentValidations)
	for i := range sources {
		src := &sources[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := ValidateSource(src, vocab); err != nil {
				logf("Validation failed for %s: %v", src.Path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func sortSources(sources []DataSource) {
	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})
}
