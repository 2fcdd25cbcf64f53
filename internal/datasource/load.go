package datasource

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vanderheijden86/eoview/pkg/debug"
	"github.com/vanderheijden86/eoview/pkg/loader"
	"github.com/vanderheijden86/eoview/pkg/metrics"
	"github.com/vanderheijden86/eoview/pkg/model"
)

// LoadOptions configures LoadRecords.
type LoadOptions struct {
	// Vocabulary is the set of recognized categories (default vocabulary if zero).
	Vocabulary model.Vocabulary
	// Strict fails on the first record rejected at the boundary.
	Strict bool
	// WarningHandler receives loader warnings; nil prints to stderr.
	WarningHandler func(string)
}

func (o LoadOptions) parseOptions() loader.ParseOptions {
	return loader.ParseOptions{
		WarningHandler: o.WarningHandler,
		Vocabulary:     o.Vocabulary,
		Strict:         o.Strict,
	}
}

// Result is a loaded record set with the source it came from.
type Result struct {
	Records []model.Record
	Source  DataSource
}

// LoadRecords loads records from path, which may be a data file or a
// directory. Directories go through discovery and freshest-source selection,
// falling back to loader.FindDataPath when no source validates. An empty
// path means EO_DATA or the current directory.
func LoadRecords(ctx context.Context, path string, opts LoadOptions) (Result, error) {
	defer metrics.Timer(metrics.Load)()

	if path == "" {
		path = os.Getenv(loader.DataEnvVar)
	}
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Result{}, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = wd
	}

	info, err := os.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w at %s", loader.ErrNoData, path)
	}
	if !info.IsDir() {
		src, err := SourceFromPath(path)
		if err != nil {
			return Result{}, err
		}
		return LoadFromSource(src, opts)
	}

	res, smartErr := loadSmart(ctx, path, opts)
	if smartErr == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	debug.Log("datasource: smart load of %s failed: %v", path, smartErr)

	file, err := loader.FindDataPath(path)
	if err != nil {
		return Result{}, errors.Join(smartErr, err)
	}
	src, err := SourceFromPath(file)
	if err != nil {
		return Result{}, err
	}
	return LoadFromSource(src, opts)
}

func loadSmart(ctx context.Context, dir string, opts LoadOptions) (Result, error) {
	stop := metrics.Timer(metrics.Discover)
	sources, err := DiscoverSources(ctx, DiscoveryOptions{
		Dir:                    dir,
		ValidateAfterDiscovery: true,
		Vocabulary:             opts.Vocabulary,
		Logger:                 func(msg string) { debug.Log("datasource: %s", msg) },
	})
	stop()
	if err != nil {
		return Result{}, err
	}

	best, err := SelectBestSource(sources)
	if err != nil {
		return Result{}, err
	}
	res, err := LoadFromSource(best, opts)
	if err != nil {
		return Result{}, err
	}

	if debug.Enabled() && len(sources) > 1 {
		for _, other := range sources {
			if other.Path == best.Path {
				continue
			}
			diff, err := CompareSources(best, other, opts)
			if err == nil && diff.HasInconsistencies() {
				debug.Log("datasource: %s", diff.Summary())
			}
		}
	}
	return res, nil
}

// LoadFromSource loads records from a specific source, dispatching on its type.
func LoadFromSource(src DataSource, opts LoadOptions) (Result, error) {
	switch src.Type {
	case SourceTypeSQLite:
		r, err := NewSQLiteReader(src.Path)
		if err != nil {
			return Result{}, fmt.Errorf("failed to open SQLite source %s: %w", src.Path, err)
		}
		defer r.Close()
		recs, err := r.LoadRecords()
		if err != nil {
			return Result{}, err
		}
		// Database rows skip the decoder, so the boundary checks run here.
		recs, err = loader.Admit(recs, opts.parseOptions())
		if err != nil {
			return Result{}, err
		}
		return Result{Records: recs, Source: src}, nil

	case SourceTypeJSON, SourceTypeJSONL:
		recs, err := loader.LoadRecordsFromFileWithOptions(src.Path, opts.parseOptions())
		if err != nil {
			return Result{}, err
		}
		return Result{Records: recs, Source: src}, nil
	}
	return Result{}, fmt.Errorf("unknown source type: %s", src.Type)
}
