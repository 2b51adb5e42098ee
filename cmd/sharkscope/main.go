package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/sharkscope/config"
	"github.com/spektr-org/sharkscope/engine"
	"github.com/spektr-org/sharkscope/helpers"
	"github.com/spektr-org/sharkscope/logger"
	"github.com/spektr-org/sharkscope/metrics"
	"github.com/spektr-org/sharkscope/schema"
	"github.com/spektr-org/sharkscope/server"
)

// ============================================================================
// SHARKSCOPE CLI — Shark incident dashboard engine
// ============================================================================

const version = "0.1.0"

const usage = `Sharkscope — shark incident dashboard engine

Usage:
  sharkscope --file incidents.csv --format text
  sharkscope --file incidents.csv --filters filters.yaml --format pretty
  sharkscope --file incidents.csv --filters filters.json --format csv --series by_species
  sharkscope --file incidents.csv --format xlsx --out dashboard.xlsx
  sharkscope --file incidents.csv --describe --format pretty
  sharkscope --config sharkscope.yml --serve

Flags:
`

const formatsHelp = `
Environment:
  SHARKSCOPE_CSV_FILE, SHARKSCOPE_GEOJSON_FILE, SHARKSCOPE_LISTEN_ADDRESS,
  SHARKSCOPE_LOG_LEVEL, SHARKSCOPE_LOG_FORMAT override the config file

Formats:
  json      Full dashboard JSON (default)
  pretty    Pretty-printed JSON
  text      Quick facts only
  csv       Filtered incidents, or one series/cross-tab with --series
  xlsx      Workbook with facts, incidents and every aggregate (requires --out)

Filters:
  A YAML or JSON FilterState, e.g.
    states: [NSW, Queensland]
    year_range: [1990, 2020]
    selected_time_periods: [morning]
`

var errUsage = errors.New("usage")

type options struct {
	configPath  string
	filePath    string
	filtersPath string
	format      string
	series      string
	outFile     string
	serve       bool
	describe    bool
	showVersion bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("sharkscope", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.configPath, "config", "", "Path to YAML config file")
	fs.StringVar(&o.filePath, "file", "", "Path to incident CSV (overrides config)")
	fs.StringVar(&o.filtersPath, "filters", "", "Path to a YAML/JSON filter state")
	fs.StringVar(&o.format, "format", "json", "Output format: json, pretty, text, csv, xlsx")
	fs.StringVar(&o.series, "series", "", "Series or cross-tab name for --format csv (e.g. by_state)")
	fs.StringVar(&o.outFile, "out", "", "Write output to file instead of stdout")
	fs.BoolVar(&o.serve, "serve", false, "Serve the HTTP API")
	fs.BoolVar(&o.describe, "describe", false, "Print a column profile of the CSV and exit")
	fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
		fmt.Fprint(stderr, formatsHelp)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	if o.showVersion {
		fmt.Fprintf(stdout, "sharkscope %s\n", version)
		return nil
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.filePath != "" {
		cfg.Data.CSVFile = o.filePath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "sharkscope")
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if o.serve {
		return serve(cfg, log)
	}

	// ── Describe mode ─────────────────────────────────────────────────────
	if o.describe {
		data, err := os.ReadFile(cfg.Data.CSVFile)
		if err != nil {
			return fmt.Errorf("read incident file: %w", err)
		}
		profile, err := schema.DescribeCSV(data, schema.Incidents())
		if err != nil {
			return err
		}
		return withOutput(o.outFile, stdout, func(w io.Writer) error {
			return writeJSON(w, profile, o.format)
		})
	}

	// ── Query mode ────────────────────────────────────────────────────────
	ds, _, err := helpers.LoadFile(cfg.Data.CSVFile, schema.Incidents(), log)
	if err != nil {
		return err
	}

	filters, err := loadFilters(o.filtersPath)
	if err != nil {
		return err
	}
	dash := engine.Execute(ds, engine.NormalizeFilters(filters), cfg.EngineOptions(log)...)

	if o.format == "xlsx" && o.outFile == "" {
		return fmt.Errorf("--format xlsx requires --out")
	}
	if err := withOutput(o.outFile, stdout, func(w io.Writer) error {
		return render(w, dash, o)
	}); err != nil {
		return err
	}
	if o.outFile != "" {
		log.Info("output written", zap.String("path", o.outFile), zap.String("format", o.format))
	}
	return nil
}

// ============================================================================
// SERVE
// ============================================================================

func serve(cfg *config.Config, log *zap.Logger) error {
	m := metrics.New()

	ds, report, err := helpers.LoadFile(cfg.Data.CSVFile, schema.Incidents(), log)
	if err != nil {
		return err
	}
	m.ObserveLoad(filepath.Base(cfg.Data.CSVFile), report)

	regions, err := helpers.LoadRegionsFile(cfg.Data.GeoJSONFile, log)
	if err != nil {
		return err
	}
	m.ObserveRegions(len(regions))

	router := server.NewRouter(log, m)
	router.RegisterRoutes(server.NewHandler(ds, regions, m, log, cfg.EngineOptions(log)...))
	srv := server.NewServer(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
		return err
	}
	return nil
}

// ============================================================================
// INPUT
// ============================================================================

// loadFilters reads a FilterState from YAML or JSON. JSON is valid YAML, but
// .json files go through encoding/json so array ranges decode the same way
// as HTTP request bodies.
func loadFilters(path string) (engine.FilterState, error) {
	var f engine.FilterState
	if path == "" {
		return f, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read filters: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return f, fmt.Errorf("parse filters %s: %w", path, err)
	}
	return f, nil
}

// ============================================================================
// OUTPUT
// ============================================================================

func withOutput(path string, stdout io.Writer, fn func(io.Writer) error) error {
	if path == "" {
		return fn(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type cliOutput struct {
	*engine.Dashboard
	QuickFacts []string `json:"quickFacts"`
}

func render(w io.Writer, d *engine.Dashboard, o options) error {
	switch o.format {
	case "text":
		lines := engine.BuildQuickFacts(d.Facts)
		lines = append(lines, fmt.Sprintf("Matched %s of %s incidents", engine.FormatInt(d.Matched), engine.FormatInt(d.Total)))
		_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
		return err
	case "csv":
		return writeCSV(w, d, o.series)
	case "xlsx":
		return helpers.WriteWorkbook(w, d)
	case "json", "pretty":
		return writeJSON(w, cliOutput{Dashboard: d, QuickFacts: engine.BuildQuickFacts(d.Facts)}, o.format)
	default:
		return fmt.Errorf("unknown format %q", o.format)
	}
}

// writeCSV writes the named series or cross-tab, or the incident list when
// no name is given.
func writeCSV(w io.Writer, d *engine.Dashboard, name string) error {
	if name == "" {
		return helpers.WriteTableCSV(w, engine.BuildIncidentTable(d.View))
	}
	if s, ok := d.Lookup(name); ok {
		return helpers.WriteTableCSV(w, engine.BuildSeriesTable(s))
	}
	if ct, ok := d.LookupCrossTab(name); ok {
		return helpers.WriteTableCSV(w, engine.BuildCrossTabTable(ct))
	}
	return fmt.Errorf("unknown series %q", name)
}

func writeJSON(w io.Writer, v any, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
