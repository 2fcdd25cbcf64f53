package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/eoview/internal/datasource"
	"github.com/vanderheijden86/eoview/pkg/config"
	"github.com/vanderheijden86/eoview/pkg/debug"
	"github.com/vanderheijden86/eoview/pkg/export"
	"github.com/vanderheijden86/eoview/pkg/hooks"
	"github.com/vanderheijden86/eoview/pkg/metrics"
	"github.com/vanderheijden86/eoview/pkg/model"
	"github.com/vanderheijden86/eoview/pkg/ui"
	"github.com/vanderheijden86/eoview/pkg/version"
	"github.com/vanderheijden86/eoview/pkg/view"
	"github.com/vanderheijden86/eoview/pkg/watcher"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// errUsage marks errors caused by bad flags or selections.
var errUsage = errors.New("usage error")

type options struct {
	dataPath     string
	configPath   string
	category     string
	forecast     string
	impact       string
	sortField    string
	desc         bool
	jsonOut      bool
	stats        bool
	pick         bool
	exportSQLite string
	exportMD     string
	exportChart  string
	noHooks      bool
	timings      bool
	version      bool
	help         bool
	cpuProfile   string
}

func parseFlags(args []string, stderr io.Writer) (options, *flag.FlagSet, error) {
	var o options
	fs := flag.NewFlagSet("eo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.dataPath, "data", "", "Data file or directory (default: config data_path, $EO_DATA, or the current directory)")
	fs.StringVar(&o.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/eoview/config.yaml)")
	fs.StringVar(&o.category, "category", "", "Only show orders in this category")
	fs.StringVar(&o.forecast, "forecast", "", "Only show orders in this forecast bucket (low, medium, high)")
	fs.StringVar(&o.impact, "impact", "", "Only show orders with this impact (1-5)")
	fs.StringVar(&o.sortField, "sort", "", "Sort by id, title, summary, status, forecast or impact")
	fs.BoolVar(&o.desc, "desc", false, "Sort descending")
	fs.BoolVar(&o.jsonOut, "json", false, "Print the view as JSON instead of starting the browser")
	fs.BoolVar(&o.stats, "stats", false, "Print a summary of the view")
	fs.BoolVar(&o.pick, "pick", false, "Choose the filter and sort interactively")
	fs.StringVar(&o.exportSQLite, "export-sqlite", "", "Write the view to a SQLite database")
	fs.StringVar(&o.exportMD, "export-md", "", "Write the view as a Markdown report")
	fs.StringVar(&o.exportChart, "export-chart", "", "Write forecast and impact histograms (.svg or .png)")
	fs.BoolVar(&o.noHooks, "no-hooks", false, "Skip export hooks from hooks.yaml")
	fs.BoolVar(&o.timings, "timings", false, "Print timing metrics to stderr on exit")
	fs.BoolVar(&o.version, "version", false, "Show version")
	fs.BoolVar(&o.help, "help", false, "Show help")
	fs.StringVar(&o.cpuProfile, "cpu-profile", "", "Write CPU profile to file")
	err := fs.Parse(args)
	return o, fs, err
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	o, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "Error: unexpected argument %q\n", fs.Arg(0))
		return exitUsage
	}

	if o.help {
		fmt.Fprintln(stdout, "Usage: eo [options]")
		fmt.Fprintln(stdout, "\nBrowse, filter and export executive orders by category, litigation forecast and impact.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return exitOK
	}
	if o.version {
		fmt.Fprintf(stdout, "eo %s\n", version.Version)
		return exitOK
	}

	if o.cpuProfile != "" {
		f, err := os.Create(o.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return exitError
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return exitError
		}
		defer pprof.StopCPUProfile()
	}
	if o.timings {
		defer metrics.WriteReport(stderr)
	}

	if err := execute(o, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func execute(o options, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return err
	}
	dataPath := o.dataPath
	if dataPath == "" {
		dataPath = cfg.DataPath
	}
	vocab := cfg.Vocabulary()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loadOpts := datasource.LoadOptions{
		Vocabulary: vocab,
		WarningHandler: func(msg string) {
			fmt.Fprintf(stderr, "Warning: %s\n", msg)
		},
	}
	loadStart := time.Now()
	res, err := datasource.LoadRecords(ctx, dataPath, loadOpts)
	if err != nil {
		return err
	}
	debug.LogTiming("load", time.Since(loadStart))
	debug.Log("loaded %d records from %s", len(res.Records), res.Source)

	records, err := applyPolicy(res.Records, cfg.HaltOnMalformed(), stderr)
	if err != nil {
		return err
	}

	filter, order, err := resolveView(o, cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	debug.Dump("filter", filter)
	debug.Dump("sort", order)
	if o.pick {
		filter, order, err = pickView(vocab, filter, order)
		if err != nil {
			return err
		}
	}

	engine := view.NewEngine(vocab)
	visible, err := engine.Build(records, filter, order)
	if err != nil {
		return err
	}

	exported, err := runExports(o, visible, filter, order, stderr)
	if err != nil {
		return err
	}

	switch {
	case o.stats:
		if o.jsonOut {
			return writeStatsJSON(stdout, visible)
		}
		return writeStats(stdout, visible, vocab)
	case o.jsonOut:
		return writeJSON(stdout, visible)
	case exported:
		return nil
	case !isTerminal(stdout):
		return writeJSON(stdout, visible)
	}

	load := func(ctx context.Context) ([]model.Record, error) {
		r, err := datasource.LoadRecords(ctx, res.Source.Path, datasource.LoadOptions{
			Vocabulary:     vocab,
			WarningHandler: func(msg string) { debug.Log("reload: %s", msg) },
		})
		return r.Records, err
	}
	m := ui.NewModel(records, res.Source.Path).
		WithConfig(cfg).
		WithView(filter, order).
		WithLoader(load)

	if cfg.Watch.Enabled {
		w, err := watcher.New(res.Source.Path,
			watcher.WithDebounceDuration(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond),
			watcher.WithPollInterval(time.Duration(cfg.Watch.PollIntervalMs)*time.Millisecond),
			watcher.WithOnError(func(err error) { debug.Log("watcher: %v", err) }),
		)
		if err == nil {
			err = w.Start(ctx)
		}
		if err != nil {
			fmt.Fprintf(stderr, "Warning: live reload disabled: %v\n", err)
		} else {
			defer w.Stop()
			m = m.WithWatcher(w, load)
		}
	}

	return runTUIProgram(m)
}

// applyPolicy drops or rejects records whose forecast or impact cannot be
// classified, warning once per dropped record.
func applyPolicy(records []model.Record, halt bool, stderr io.Writer) ([]model.Record, error) {
	kept, dropped, err := view.ApplyPolicy(records, halt)
	if err != nil {
		return nil, fmt.Errorf("malformed records (on_malformed: halt): %w", err)
	}
	for _, r := range dropped {
		fmt.Fprintf(stderr, "Warning: skipping record %d: unclassifiable forecast %q or impact %d\n", r.ID, string(r.Forecast), r.Impact)
	}
	return kept, nil
}

// resolveView merges the configured initial view with the command line.
// Flags override config slot by slot.
func resolveView(o options, cfg config.Config) (view.FilterState, view.SortState, error) {
	category, forecast, impact := cfg.Filters.Category, cfg.Filters.Forecast, ""
	if cfg.Filters.Impact != 0 {
		impact = strconv.Itoa(cfg.Filters.Impact)
	}
	if o.category != "" {
		category = o.category
	}
	if o.forecast != "" {
		forecast = o.forecast
	}
	if o.impact != "" {
		impact = o.impact
	}
	filter, err := view.ParseFilter(category, forecast, impact, cfg.Vocabulary())
	if err != nil {
		return view.FilterState{}, view.SortState{}, err
	}

	order, err := cfg.InitialSort()
	if err != nil {
		return view.FilterState{}, view.SortState{}, err
	}
	if o.sortField != "" {
		field, err := view.ParseSortField(o.sortField)
		if err != nil {
			return view.FilterState{}, view.SortState{}, err
		}
		order = view.SortState{Field: field}
	}
	if o.desc {
		if !order.Active() {
			return view.FilterState{}, view.SortState{}, errors.New("-desc needs a sort field")
		}
		order.Direction = view.Descending
	}
	return filter, order, nil
}

func runExports(o options, visible []model.Record, filter view.FilterState, order view.SortState, stderr io.Writer) (bool, error) {
	title := "Executive Orders"
	done := false

	hookDir := config.ConfigDir()
	if o.configPath != "" {
		hookDir = filepath.Dir(o.configPath)
	}
	base, err := hooks.RunHooks(hookDir, hooks.ExportContext{}, o.noHooks)
	if err != nil {
		return done, fmt.Errorf("loading hooks: %w", err)
	}

	// withHooks runs one writer between the pre- and post-export hooks.
	withHooks := func(path, format string, write func() error) error {
		var ex *hooks.Executor
		if base != nil {
			ex = base.WithContext(hooks.ExportContext{
				ExportPath:   path,
				ExportFormat: format,
				RecordCount:  len(visible),
				Filter:       filter.String(),
				Sort:         order.String(),
				Timestamp:    time.Now(),
			})
			if err := ex.RunPreExport(); err != nil {
				return err
			}
		}
		if err := write(); err != nil {
			return err
		}
		done = true
		if ex != nil {
			err := ex.RunPostExport()
			debug.Log("%s", ex.Summary())
			if err != nil {
				return err
			}
		}
		return nil
	}

	if o.exportSQLite != "" {
		err := withHooks(o.exportSQLite, "sqlite", func() error {
			e := export.NewSQLiteExporter(visible)
			e.SetView(filter, order)
			e.Config.Title = title
			return e.Export(o.exportSQLite)
		})
		if err != nil {
			return done, fmt.Errorf("sqlite export: %w", err)
		}
		fmt.Fprintf(stderr, "Wrote %d orders to %s\n", len(visible), o.exportSQLite)
	}
	if o.exportMD != "" {
		err := withHooks(o.exportMD, "markdown", func() error {
			opts := export.MarkdownOptions{Title: title, Filter: filter, Sort: order}
			return export.SaveMarkdownToFile(visible, opts, o.exportMD)
		})
		if err != nil {
			return done, fmt.Errorf("markdown export: %w", err)
		}
		fmt.Fprintf(stderr, "Wrote report to %s\n", o.exportMD)
	}
	if o.exportChart != "" {
		err := withHooks(o.exportChart, "chart", func() error {
			return export.SaveChart(export.ChartOptions{Path: o.exportChart, Title: title, Records: visible})
		})
		if err != nil {
			return done, fmt.Errorf("chart export: %w", err)
		}
		fmt.Fprintf(stderr, "Wrote chart to %s\n", o.exportChart)
	}
	return done, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set EO_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("EO_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()
				select {
				case <-runDone:
					return
				case <-timer.C:
				}
				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
