package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"macrocli/internal/analysis"
	"macrocli/internal/catalog"
	"macrocli/internal/config"
	apierrors "macrocli/internal/errors"
	"macrocli/internal/infrastructure"
	"macrocli/internal/workbook"
	"macrocli/pkg/contracts/domain"
)

// SeriesQuery shapes a single-series request: how the series is transformed
// and shifted, and the optional date window applied after transformation.
type SeriesQuery struct {
	Transform domain.TransformMode
	Shift     int
	From      time.Time
	To        time.Time
}

// SeriesResult is one prepared series with its catalog metadata. Change is
// the percent change between the last two non-missing values of the prepared
// series; ChangeDefined is false when fewer than two values remain or the
// earlier value is zero.
type SeriesResult struct {
	Source        string
	Code          string
	Name          string
	Unit          string
	Transform     domain.TransformMode
	Shift         int
	Series        analysis.Series
	Change        float64
	ChangeDefined bool
}

// CompareRequest selects the series of a comparison and its parameters.
type CompareRequest struct {
	Selections []domain.SeriesSelection
	From       time.Time
	To         time.Time
	MaxLag     int
}

// PairResult is one series pair's correlation and lag outcome. Defined is
// false when the pair shares too few dates for a meaningful correlation.
type PairResult struct {
	SeriesA        string
	SeriesB        string
	Samples        int
	Correlation    float64
	Defined        bool
	OptimalLag     int
	LagCorrelation float64
}

// CompareResult is the aligned table plus all pairwise statistics.
type CompareResult struct {
	Table analysis.Table
	Pairs []PairResult
}

// loadedWorkbook caches one source's parsed workbook keyed by file mtime, so
// repeated queries between collection runs skip the Excel parse.
type loadedWorkbook struct {
	wb      *workbook.Workbook
	modTime time.Time
}

// AnalysisService serves series and comparison queries over the collected
// workbooks. All computation is delegated to the pure analysis package; this
// layer only loads data, applies selections, and translates empty outcomes
// into API errors.
type AnalysisService struct {
	paths   *config.Paths
	metrics *infrastructure.AppMetrics
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]*loadedWorkbook
}

// NewAnalysisService creates an analysis service reading from the given
// workbook layout.
func NewAnalysisService(paths *config.Paths, metrics *infrastructure.AppMetrics, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		paths:   paths,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "analysis_service")),
		cache:   make(map[string]*loadedWorkbook),
	}
}

// Series returns one indicator's series with the query's transform, shift,
// and date window applied.
func (s *AnalysisService) Series(ctx context.Context, source, code string, q SeriesQuery) (result *SeriesResult, err error) {
	started := time.Now()
	defer func() {
		infrastructure.RecordAnalysisRequest(ctx, s.metrics, "series", time.Since(started), err)
	}()

	prepared, meta, err := s.prepare(ctx, domain.SeriesSelection{
		Source:    source,
		Code:      code,
		Transform: q.Transform,
		Shift:     q.Shift,
	})
	if err != nil {
		return nil, err
	}
	prepared = prepared.FilterRange(q.From, q.To)

	result = &SeriesResult{
		Source:    source,
		Code:      code,
		Name:      meta.name,
		Unit:      meta.unit,
		Transform: q.Transform,
		Shift:     q.Shift,
		Series:    prepared,
	}
	result.Change, result.ChangeDefined = analysis.RecentChange(prepared)
	return result, nil
}

// Compare aligns the selected series and computes every pairwise correlation
// and optimal lag. At least two selections are required.
func (s *AnalysisService) Compare(ctx context.Context, req CompareRequest) (result *CompareResult, err error) {
	started := time.Now()
	defer func() {
		infrastructure.RecordAnalysisRequest(ctx, s.metrics, "compare", time.Since(started), err)
	}()

	if len(req.Selections) < 2 {
		return nil, apierrors.NewValidationError("comparison requires at least two series")
	}
	maxLag := req.MaxLag
	if maxLag <= 0 {
		maxLag = analysis.MaxLagPeriods
	}

	prepared := make([]analysis.Series, 0, len(req.Selections))
	for _, sel := range req.Selections {
		series, _, err := s.prepare(ctx, sel)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, series.FilterRange(req.From, req.To))
	}

	table := analysis.Align(prepared...)

	var pairs []PairResult
	for i := 0; i < len(prepared); i++ {
		for j := i + 1; j < len(prepared); j++ {
			a, b := prepared[i], prepared[j]
			pair := PairResult{
				SeriesA: a.Label,
				SeriesB: b.Label,
				Samples: pairedSamples(a, b),
			}
			if r, ok := analysis.Correlation(a, b); ok {
				pair.Correlation = r
				pair.Defined = true
			}
			// The lag search stands on its own: a pair can overlap only
			// after shifting, in which case the zero-lag correlation is
			// undefined but the optimal lag is still meaningful.
			pair.OptimalLag, pair.LagCorrelation = analysis.OptimalLag(a, b, maxLag)
			pairs = append(pairs, pair)
		}
	}

	s.logger.InfoContext(ctx, "comparison computed",
		slog.Int("series", len(prepared)),
		slog.Int("pairs", len(pairs)),
		slog.Int("rows", len(table.Dates)),
		slog.Duration("duration", time.Since(started)))

	return &CompareResult{Table: table, Pairs: pairs}, nil
}

// LagProfile returns the correlation at every lag in [-maxLag, maxLag] for
// one series pair, for charting the lag search the optimal lag came from.
func (s *AnalysisService) LagProfile(ctx context.Context, a, b domain.SeriesSelection, from, to time.Time, maxLag int) (points []analysis.LagPoint, err error) {
	started := time.Now()
	defer func() {
		infrastructure.RecordAnalysisRequest(ctx, s.metrics, "lag_profile", time.Since(started), err)
	}()

	if maxLag <= 0 {
		maxLag = analysis.MaxLagPeriods
	}
	sa, _, err := s.prepare(ctx, a)
	if err != nil {
		return nil, err
	}
	sb, _, err := s.prepare(ctx, b)
	if err != nil {
		return nil, err
	}
	return analysis.LagProfile(sa.FilterRange(from, to), sb.FilterRange(from, to), maxLag), nil
}

type seriesMeta struct {
	name string
	unit string
}

// prepare loads one selection's observations and applies its transform and
// shift, leaving any date filtering to the caller.
func (s *AnalysisService) prepare(ctx context.Context, sel domain.SeriesSelection) (analysis.Series, seriesMeta, error) {
	cat, ok := catalog.ForSource(sel.Source)
	if !ok {
		return analysis.Series{}, seriesMeta{}, apierrors.NotFoundError(fmt.Sprintf("source %s", sel.Source))
	}
	if sel.Transform != "" && !sel.Transform.Valid() {
		return analysis.Series{}, seriesMeta{}, apierrors.NewValidationError(fmt.Sprintf("unsupported transform %q", sel.Transform))
	}

	wb, err := s.workbookFor(ctx, sel.Source)
	if err != nil {
		return analysis.Series{}, seriesMeta{}, err
	}

	obs, meta := observationsFor(wb, sel.Code)
	if len(obs) == 0 {
		if _, known := cat.Lookup(sel.Code); !known {
			return analysis.Series{}, seriesMeta{}, apierrors.ErrIndicatorNotFound
		}
		return analysis.Series{}, seriesMeta{}, apierrors.NewWithDetails(
			apierrors.ErrNotFound.StatusCode, "NO_OBSERVATIONS",
			fmt.Sprintf("indicator %s has no collected observations", sel.Code),
			map[string]string{"source": sel.Source, "code": sel.Code})
	}

	series := analysis.FromObservations(sel.Label(), obs)
	transform := sel.Transform
	if transform == "" {
		transform = domain.TransformRaw
	}
	series = analysis.Transform(series, transform)
	if sel.Shift != 0 {
		series = analysis.Shift(series, sel.Shift)
	}
	return series, meta, nil
}

// workbookFor returns the cached workbook for a source, reloading it when
// the file on disk is newer than the cached copy.
func (s *AnalysisService) workbookFor(ctx context.Context, source string) (*workbook.Workbook, error) {
	path := s.paths.WorkbookPath(source)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apierrors.ErrWorkbookNotFound
		}
		return nil, apierrors.FileSystemError("stat workbook", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.cache[source]; ok && cached.modTime.Equal(info.ModTime()) {
		return cached.wb, nil
	}

	wb, err := workbook.Read(path)
	if err != nil {
		return nil, apierrors.FileSystemError("read workbook", err)
	}
	s.cache[source] = &loadedWorkbook{wb: wb, modTime: info.ModTime()}

	s.logger.InfoContext(ctx, "workbook loaded",
		slog.String("source", source),
		slog.String("path", path),
		slog.Int("sheets", len(wb.Tables)))
	return wb, nil
}

// observationsFor extracts one indicator's observations from a workbook,
// with the display name and unit taken from the combined sheet's metadata.
func observationsFor(wb *workbook.Workbook, code string) ([]domain.Observation, seriesMeta) {
	var obs []domain.Observation
	var meta seriesMeta
	for _, o := range wb.Observations() {
		if o.Indicator != code {
			continue
		}
		obs = append(obs, o)
		if meta.name == "" && o.Description != "" {
			meta.name = o.Description
		}
		if meta.unit == "" && o.Unit != "" {
			meta.unit = o.Unit
		}
	}
	return obs, meta
}

// pairedSamples counts the dates where both series carry a value, the sample
// size behind the pair's correlation.
func pairedSamples(a, b analysis.Series) int {
	values := make(map[time.Time]float64, a.Len())
	for i, d := range a.Dates {
		if !a.IsMissing(i) {
			values[d] = a.Values[i]
		}
	}
	n := 0
	for i, d := range b.Dates {
		if b.IsMissing(i) {
			continue
		}
		if _, ok := values[d]; ok {
			n++
		}
	}
	return n
}

// Invalidate drops a source's cached workbook so the next query reloads it.
// The collection service calls this after rewriting a workbook.
func (s *AnalysisService) Invalidate(source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, source)
}

// SourceInfo summarizes one collectable source for the catalog endpoint:
// category counts from the catalog and whether a workbook exists on disk.
type SourceInfo struct {
	Source     string `json:"source"`
	Categories int    `json:"categories"`
	Indicators int    `json:"indicators"`
	Collected  bool   `json:"collected"`
}

// Sources lists every known source with catalog counts.
func (s *AnalysisService) Sources() []SourceInfo {
	var out []SourceInfo
	for _, source := range catalog.Sources() {
		cat, ok := catalog.ForSource(source)
		if !ok {
			continue
		}
		out = append(out, SourceInfo{
			Source:     source,
			Categories: len(cat.Categories()),
			Indicators: cat.Len(),
			Collected:  config.FileExists(s.paths.WorkbookPath(source)),
		})
	}
	return out
}
