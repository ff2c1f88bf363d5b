package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"macrocli/internal/catalog"
	"macrocli/internal/config"
	apierrors "macrocli/internal/errors"
	"macrocli/internal/fetch"
	"macrocli/internal/infrastructure"
	"macrocli/internal/store"
	"macrocli/internal/workbook"
	"macrocli/pkg/contracts/domain"
	"macrocli/pkg/contracts/events"
)

// ProgressBroadcaster publishes collection progress events. The websocket hub
// satisfies it; a nil broadcaster disables progress streaming.
type ProgressBroadcaster interface {
	BroadcastWithTrace(msgType events.MessageType, data interface{}, traceID string)
}

// CollectionService runs the ingest pipeline per source: load the existing
// workbook, compute per-indicator watermarks, fetch what is new, merge,
// partition, and rewrite the workbook. Sources are independent; one failing
// never aborts the others. Only one run may be in flight at a time because
// concurrent runs would race on the workbook files.
type CollectionService struct {
	clients     map[string]fetch.Client
	paths       *config.Paths
	hub         ProgressBroadcaster
	metrics     *infrastructure.AppMetrics
	logger      *slog.Logger
	concurrency int

	mu      sync.Mutex
	running bool
}

// NewCollectionService creates a collection service over the given provider
// clients. Concurrency bounds the source fan-out; values below 1 run sources
// sequentially.
func NewCollectionService(clients []fetch.Client, paths *config.Paths, hub ProgressBroadcaster, metrics *infrastructure.AppMetrics, concurrency int, logger *slog.Logger) *CollectionService {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = 1
	}

	bySource := make(map[string]fetch.Client, len(clients))
	for _, c := range clients {
		bySource[c.Source()] = c
	}

	return &CollectionService{
		clients:     bySource,
		paths:       paths,
		hub:         hub,
		metrics:     metrics,
		logger:      logger.With(slog.String("component", "collection_service")),
		concurrency: concurrency,
	}
}

// Running reports whether a collection run is in flight.
func (s *CollectionService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Run collects the given sources and returns the per-source summaries. An
// empty source list collects every source a client is registered for, in
// catalog order. A second concurrent call fails with ErrCollectionRunning.
func (s *CollectionService) Run(ctx context.Context, sources []string) (*domain.CollectionResult, error) {
	return s.run(ctx, sources, "")
}

// RunCategory is Run restricted to one catalog category. Sources that do not
// carry the category fail individually; the others still collect.
func (s *CollectionService) RunCategory(ctx context.Context, sources []string, category string) (*domain.CollectionResult, error) {
	return s.run(ctx, sources, category)
}

func (s *CollectionService) run(ctx context.Context, sources []string, category string) (*domain.CollectionResult, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, apierrors.ErrCollectionRunning
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if len(sources) == 0 {
		for _, source := range catalog.Sources() {
			if _, ok := s.clients[source]; ok {
				sources = append(sources, source)
			}
		}
	}
	if len(sources) == 0 {
		return nil, apierrors.NewAppValidationError("no sources to collect")
	}

	runID := uuid.New().String()
	traceID := infrastructure.GetTraceID(ctx)
	started := time.Now()

	s.logger.InfoContext(ctx, "collection run starting",
		slog.String("run_id", runID),
		slog.Any("sources", sources),
		slog.Int("concurrency", s.concurrency))

	s.broadcast(events.MessageTypeCollectionStart, events.CollectionStart{
		RunID:   runID,
		Sources: sources,
	}, traceID)

	infrastructure.RecordActiveCollectionChange(ctx, s.metrics, 1)
	defer infrastructure.RecordActiveCollectionChange(ctx, s.metrics, -1)

	// Each source records its outcome in its own slot; a failure is data,
	// not a reason to cancel the siblings.
	summaries := make([]domain.SourceSummary, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, source := range sources {
		g.Go(func() error {
			summaries[i] = s.collectSource(gctx, runID, traceID, source, category)
			return nil
		})
	}
	_ = g.Wait()

	result := &domain.CollectionResult{
		RunID:     runID,
		StartedAt: started.UTC(),
		Sources:   summaries,
	}

	var runErr error
	if err := ctx.Err(); err != nil {
		runErr = err
	} else if allFailed(summaries) {
		runErr = apierrors.ErrCollectionFailed
	}

	infrastructure.RecordCollectionRun(ctx, s.metrics, len(sources), time.Since(started), runErr)

	if runErr != nil {
		s.broadcast(events.MessageTypeCollectionError, events.CollectionError{
			RunID:   runID,
			Message: runErr.Error(),
		}, traceID)
		s.logger.ErrorContext(ctx, "collection run failed",
			slog.String("run_id", runID),
			slog.String("error", runErr.Error()),
			slog.Duration("duration", time.Since(started)))
		return result, runErr
	}

	s.broadcast(events.MessageTypeCollectionComplete, events.CollectionComplete{Result: *result}, traceID)
	s.logger.InfoContext(ctx, "collection run completed",
		slog.String("run_id", runID),
		slog.Int("sources", len(sources)),
		slog.Duration("duration", time.Since(started)))
	return result, nil
}

// collectSource runs the full pipeline for one source and always returns a
// summary; errors land in the summary instead of propagating.
func (s *CollectionService) collectSource(ctx context.Context, runID, traceID, source, category string) domain.SourceSummary {
	started := time.Now()
	summary := domain.SourceSummary{Source: source}

	s.broadcast(events.MessageTypeCollectionSource, events.CollectionSource{
		RunID:  runID,
		Source: source,
		Status: "running",
	}, traceID)

	err := s.runSource(ctx, runID, traceID, source, category, &summary)
	summary.Duration = time.Since(started)
	if err != nil {
		summary.Error = err.Error()
	}

	infrastructure.RecordSourceCollection(ctx, s.metrics, source, summary.Fetched, summary.Merged, summary.Duration, err)

	status := "completed"
	message := fmt.Sprintf("%d observations fetched, %d stored", summary.Fetched, summary.Merged)
	if err != nil {
		status = "failed"
		message = err.Error()
		s.logger.ErrorContext(ctx, "source collection failed",
			slog.String("run_id", runID),
			slog.String("source", source),
			slog.String("error", err.Error()))
	} else {
		s.logger.InfoContext(ctx, "source collection completed",
			slog.String("run_id", runID),
			slog.String("source", source),
			slog.Int("indicators", summary.Indicators),
			slog.Int("fetched", summary.Fetched),
			slog.Int("merged", summary.Merged),
			slog.Duration("duration", summary.Duration))
	}

	s.broadcast(events.MessageTypeCollectionSource, events.CollectionSource{
		RunID:   runID,
		Source:  source,
		Status:  status,
		Message: message,
	}, traceID)
	return summary
}

func (s *CollectionService) runSource(ctx context.Context, runID, traceID, source, category string, summary *domain.SourceSummary) error {
	client, ok := s.clients[source]
	if !ok {
		return fmt.Errorf("no client registered for source %s", source)
	}
	cat, ok := catalog.ForSource(source)
	if !ok {
		return fmt.Errorf("unknown source %s", source)
	}

	workbookPath := s.paths.WorkbookPath(source)
	summary.WorkbookPath = workbookPath

	existing, err := s.loadExisting(workbookPath)
	if err != nil {
		return err
	}

	entries := cat.All()
	if category != "" {
		entries = cat.Entries(category)
		if len(entries) == 0 {
			return fmt.Errorf("source %s has no category %q", source, category)
		}
	}
	summary.Indicators = len(entries)

	var fetched []domain.Observation
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		since, hasWatermark := store.ComputeWatermark(existing, entry.Code)
		if !hasWatermark {
			since = time.Time{}
		}

		obs, err := client.Fetch(ctx, entry.Code, entry.Name, since)
		if err != nil {
			summary.FailedCodes = append(summary.FailedCodes, entry.Code)
			s.logger.WarnContext(ctx, "indicator fetch failed",
				slog.String("source", source),
				slog.String("indicator", entry.Code),
				slog.String("error", err.Error()))
			s.broadcast(events.MessageTypeCollectionIndicator, events.CollectionIndicator{
				RunID:     runID,
				Source:    source,
				Indicator: entry.Code,
				Err:       err.Error(),
			}, traceID)
			continue
		}

		fetched = append(fetched, obs...)
		s.broadcast(events.MessageTypeCollectionIndicator, events.CollectionIndicator{
			RunID:     runID,
			Source:    source,
			Indicator: entry.Code,
			Fetched:   len(obs),
		}, traceID)
	}
	summary.Fetched = len(fetched)

	// Every indicator failing with nothing on disk means the provider is
	// down or the key is bad; report that as a source failure.
	if len(summary.FailedCodes) == len(entries) && len(entries) > 0 {
		return fmt.Errorf("all %d indicator fetches failed", len(entries))
	}
	if len(fetched) == 0 && len(existing) == 0 {
		return nil
	}

	merged := store.Merge(existing, fetched)
	summary.Merged = len(merged)

	tables, skipped := store.Partition(merged, cat)
	for _, name := range skipped {
		s.logger.DebugContext(ctx, "category has no observations, sheet omitted",
			slog.String("source", source),
			slog.String("category", name))
	}
	summary.Sheets = len(tables)

	if len(tables) == 0 {
		return nil
	}
	if err := workbook.Write(workbookPath, tables); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// loadExisting reads the prior observations from the source workbook. A
// missing workbook is a first run, not an error.
func (s *CollectionService) loadExisting(path string) ([]domain.Observation, error) {
	if !config.FileExists(path) {
		return nil, nil
	}
	wb, err := workbook.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing workbook: %w", err)
	}
	return wb.Observations(), nil
}

func (s *CollectionService) broadcast(msgType events.MessageType, data interface{}, traceID string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastWithTrace(msgType, data, traceID)
}

func allFailed(summaries []domain.SourceSummary) bool {
	for _, summary := range summaries {
		if !summary.Failed() {
			return false
		}
	}
	return len(summaries) > 0
}
