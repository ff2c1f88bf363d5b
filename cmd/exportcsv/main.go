package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"macrocli/internal/analysis"
	"macrocli/internal/catalog"
	"macrocli/internal/config"
	"macrocli/internal/exporter"
	"macrocli/internal/infrastructure"
	"macrocli/internal/services"
	"macrocli/pkg/contracts"
	"macrocli/pkg/contracts/domain"
)

// selectionList collects repeated -select flags.
type selectionList []string

func (s *selectionList) String() string { return strings.Join(*s, ", ") }

func (s *selectionList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func main() {
	var selects selectionList
	flag.Var(&selects, "select", "series to export as SOURCE:CODE[:TRANSFORM[:SHIFT]] (repeatable)")
	chartKey := flag.String("chart", "", "saved chart ID or name to export instead of -select")
	fromFlag := flag.String("from", "", "window start (YYYY-MM-DD), overrides the chart's range")
	toFlag := flag.String("to", "", "window end (YYYY-MM-DD), overrides the chart's range")
	output := flag.String("out", "", "output file, relative paths land in the exports directory")
	stats := flag.Bool("stats", false, "also write pairwise correlation statistics")
	maxLag := flag.Int("max-lag", 0, "lag search bound in periods, 0 for the default")
	configPath := flag.String("config", "", "path to a YAML config file (defaults to the standard search locations)")
	noBOM := flag.Bool("no-bom", false, "write plain UTF-8 without the Excel BOM prefix")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	cfg.Logging.FilePath = paths.LogPath("exportcsv.log")

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	var settings *config.Settings
	if *chartKey != "" {
		settings, err = services.NewSettingsService(paths.SettingsFile, logger).Get()
		if err != nil {
			fail(logger, fmt.Errorf("failed to load settings: %w", err))
		}
	}

	selections, chart, err := buildSelections(*chartKey, selects, settings)
	if err != nil {
		fail(logger, err)
	}
	if *stats && len(selections) < 2 {
		fail(logger, fmt.Errorf("pair statistics need at least two series"))
	}

	from, to, err := parseWindow(*fromFlag, *toFlag)
	if err != nil {
		fail(logger, err)
	}
	chartFrom, chartTo := chart.Window()
	if *fromFlag == "" {
		from = chartFrom
	}
	if *toFlag == "" {
		to = chartTo
	}

	outName := *output
	if outName == "" {
		outName = defaultFilename(chart, selections, time.Now())
	}

	logger.Info("Export starting",
		slog.Int("series", len(selections)),
		slog.String("out", outName),
		slog.Bool("stats", *stats))

	svc := services.NewAnalysisService(paths, nil, logger)
	ctx := context.Background()

	var (
		table analysis.Table
		pairs []services.PairResult
	)
	if len(selections) == 1 {
		sel := selections[0]
		res, err := svc.Series(ctx, sel.Source, sel.Code, services.SeriesQuery{
			Transform: sel.Transform,
			Shift:     sel.Shift,
			From:      from,
			To:        to,
		})
		if err != nil {
			fail(logger, err)
		}
		table = analysis.Align(res.Series)
	} else {
		result, err := svc.Compare(ctx, services.CompareRequest{
			Selections: selections,
			From:       from,
			To:         to,
			MaxLag:     *maxLag,
		})
		if err != nil {
			fail(logger, err)
		}
		table = result.Table
		pairs = result.Pairs
	}

	exp := exporter.NewTableExporter(paths)
	if *noBOM {
		exp.SetBOM(false)
	}

	if err := exp.ExportComparisonTable(table, outName); err != nil {
		fail(logger, err)
	}
	fmt.Printf("Exported %d rows x %d series to %s\n",
		len(table.Dates), len(table.Labels), displayPath(paths, outName))

	if *stats {
		statsName := statsFilename(outName)
		if err := exp.ExportPairStats(convertPairs(pairs), statsName); err != nil {
			fail(logger, err)
		}
		fmt.Printf("Wrote %d pair statistics to %s\n", len(pairs), displayPath(paths, statsName))
	}
}

// fail logs the error, mirrors it to stderr and exits.
func fail(logger *slog.Logger, err error) {
	logger.Error("Export failed", slog.String("error", err.Error()))
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// buildSelections resolves the requested series, either a saved chart's
// indicators or the explicit -select values. The chart is zero when the
// selection came from -select flags.
func buildSelections(chartKey string, selects []string, settings *config.Settings) ([]domain.SeriesSelection, config.ChartConfig, error) {
	if chartKey != "" && len(selects) > 0 {
		return nil, config.ChartConfig{}, fmt.Errorf("-chart and -select are mutually exclusive")
	}

	if chartKey != "" {
		chart, ok := findChart(settings, chartKey)
		if !ok {
			return nil, config.ChartConfig{}, fmt.Errorf("no saved chart matches %q", chartKey)
		}
		if len(chart.Indicators) == 0 {
			return nil, config.ChartConfig{}, fmt.Errorf("chart %q has no indicators", chartKey)
		}
		selections := make([]domain.SeriesSelection, 0, len(chart.Indicators))
		for _, ind := range chart.Indicators {
			selections = append(selections, ind.Selection())
		}
		return selections, chart, nil
	}

	if len(selects) == 0 {
		return nil, config.ChartConfig{}, fmt.Errorf("nothing to export: pass -chart or at least one -select")
	}
	selections := make([]domain.SeriesSelection, 0, len(selects))
	for _, raw := range selects {
		sel, err := parseSelection(raw)
		if err != nil {
			return nil, config.ChartConfig{}, err
		}
		selections = append(selections, sel)
	}
	return selections, config.ChartConfig{}, nil
}

// findChart looks a saved chart up by ID first, then by name.
func findChart(settings *config.Settings, key string) (config.ChartConfig, bool) {
	if c, ok := settings.FindChart(key); ok {
		return c, true
	}
	for _, c := range settings.SavedCharts {
		if strings.EqualFold(c.Name, key) {
			return c, true
		}
	}
	return config.ChartConfig{}, false
}

// parseSelection parses one -select value of the form
// SOURCE:CODE[:TRANSFORM[:SHIFT]]. Source and code are case-insensitive.
func parseSelection(raw string) (domain.SeriesSelection, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 4 {
		return domain.SeriesSelection{}, fmt.Errorf("invalid selection %q (expected SOURCE:CODE[:TRANSFORM[:SHIFT]])", raw)
	}

	source := strings.ToUpper(strings.TrimSpace(parts[0]))
	if _, ok := catalog.ForSource(source); !ok {
		return domain.SeriesSelection{}, fmt.Errorf("unknown source %q in selection %q", parts[0], raw)
	}
	code := strings.ToUpper(strings.TrimSpace(parts[1]))
	if code == "" {
		return domain.SeriesSelection{}, fmt.Errorf("invalid selection %q (expected SOURCE:CODE[:TRANSFORM[:SHIFT]])", raw)
	}

	sel := domain.SeriesSelection{Source: source, Code: code, Transform: domain.TransformRaw}

	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		mode, err := parseTransform(parts[2])
		if err != nil {
			return domain.SeriesSelection{}, fmt.Errorf("selection %q: %w", raw, err)
		}
		sel.Transform = mode
	}
	if len(parts) == 4 {
		shift, err := strconv.Atoi(strings.TrimSpace(parts[3]))
		if err != nil {
			return domain.SeriesSelection{}, fmt.Errorf("invalid shift %q in selection %q", parts[3], raw)
		}
		if shift < -24 || shift > 24 {
			return domain.SeriesSelection{}, fmt.Errorf("shift %d out of range [-24, 24] in selection %q", shift, raw)
		}
		sel.Shift = shift
	}
	return sel, nil
}

// parseTransform maps the shorthand transform names onto their modes. The
// full display names are accepted too.
func parseTransform(raw string) (domain.TransformMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "raw":
		return domain.TransformRaw, nil
	case "index", "indexed":
		return domain.TransformIndexed, nil
	case "mom":
		return domain.TransformMoM, nil
	case "qoq":
		return domain.TransformQoQ, nil
	case "yoy":
		return domain.TransformYoY, nil
	}
	if mode := domain.TransformMode(raw); mode.Valid() {
		return mode, nil
	}
	return "", fmt.Errorf("unknown transform %q (expected raw, indexed, mom, qoq or yoy)", raw)
}

// parseWindow parses the optional -from and -to date flags.
func parseWindow(fromFlag, toFlag string) (from, to time.Time, err error) {
	if fromFlag != "" {
		from, err = time.Parse(domain.DateLayout, fromFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -from date %q (expected YYYY-MM-DD)", fromFlag)
		}
	}
	if toFlag != "" {
		to, err = time.Parse(domain.DateLayout, toFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -to date %q (expected YYYY-MM-DD)", toFlag)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("empty date window: %s is before %s", toFlag, fromFlag)
	}
	return from, to, nil
}

// defaultFilename derives an output name from the chart or the selection.
func defaultFilename(chart config.ChartConfig, selections []domain.SeriesSelection, now time.Time) string {
	if chart.Name != "" {
		return slugify(chart.Name) + ".csv"
	}
	if chart.ID != "" {
		return chart.ID + ".csv"
	}
	if len(selections) == 1 {
		return strings.ReplaceAll(selections[0].Label(), "/", "_") + ".csv"
	}
	return "comparison_" + now.Format("20060102_150405") + ".csv"
}

// slugify maps a chart name onto a safe file name. Letters and digits are
// kept, separators become underscores, everything else is dropped.
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.' || r == '/':
			b.WriteRune('_')
		}
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "chart"
	}
	return slug
}

// statsFilename derives the pair statistics file name from the table file.
func statsFilename(out string) string {
	ext := filepath.Ext(out)
	if ext == "" {
		return out + "_stats.csv"
	}
	return strings.TrimSuffix(out, ext) + "_stats" + ext
}

// convertPairs maps service pair results onto the exporter's stats rows.
func convertPairs(pairs []services.PairResult) []exporter.PairStat {
	stats := make([]exporter.PairStat, 0, len(pairs))
	for _, p := range pairs {
		stats = append(stats, exporter.PairStat{
			SeriesA:        p.SeriesA,
			SeriesB:        p.SeriesB,
			Samples:        p.Samples,
			Correlation:    p.Correlation,
			Defined:        p.Defined,
			OptimalLag:     p.OptimalLag,
			LagCorrelation: p.LagCorrelation,
		})
	}
	return stats
}

// displayPath resolves a file name the way the CSV writer will, for output.
func displayPath(paths *config.Paths, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return paths.ExportPath(name)
}
