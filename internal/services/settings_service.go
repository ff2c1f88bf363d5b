package services

import (
	"log/slog"
	"sync"
	"time"

	"macrocli/internal/config"
	apierrors "macrocli/internal/errors"
)

// SettingsService serializes access to the settings file. Every mutation is
// a load-modify-save under one lock so concurrent handlers cannot clobber
// each other's writes.
type SettingsService struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewSettingsService creates a settings service over the given file.
func NewSettingsService(path string, logger *slog.Logger) *SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{
		path:   path,
		logger: logger.With(slog.String("component", "settings_service")),
	}
}

// Get loads the current settings. A missing file yields fresh defaults.
func (s *SettingsService) Get() (*config.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Update replaces the settings wholesale.
func (s *SettingsService) Update(settings *config.Settings) error {
	if settings == nil {
		return apierrors.NewValidationError("settings cannot be null")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(settings)
}

// SaveChart inserts or updates one saved chart. A chart without an ID gets
// one derived from the save time and is appended to the dashboard layout.
func (s *SettingsService) SaveChart(chart config.ChartConfig) (config.ChartConfig, error) {
	if chart.Name == "" {
		return config.ChartConfig{}, apierrors.NewValidationError("chart name is required")
	}
	if len(chart.Indicators) == 0 {
		return config.ChartConfig{}, apierrors.NewValidationError("chart needs at least one indicator")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		return config.ChartConfig{}, err
	}

	isNew := chart.ID == ""
	if isNew {
		chart.ID = config.NewChartID(time.Now())
	}
	settings.UpsertChart(chart)

	if err := s.save(settings); err != nil {
		return config.ChartConfig{}, err
	}
	s.logger.Info("chart saved",
		slog.String("chart_id", chart.ID),
		slog.String("name", chart.Name),
		slog.Bool("created", isNew))
	return chart, nil
}

// DeleteChart removes a saved chart and its layout slot.
func (s *SettingsService) DeleteChart(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		return err
	}
	if !settings.DeleteChart(id) {
		return apierrors.ErrChartNotFound
	}
	if err := s.save(settings); err != nil {
		return err
	}
	s.logger.Info("chart deleted", slog.String("chart_id", id))
	return nil
}

// SetIndicatorHidden hides or shows one indicator in the catalog browser.
func (s *SettingsService) SetIndicatorHidden(source, code string, hidden bool) error {
	if source == "" || code == "" {
		return apierrors.NewValidationError("source and code are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		return err
	}
	if hidden {
		settings.HideIndicator(source, code)
	} else {
		settings.ShowIndicator(source, code)
	}
	return s.save(settings)
}

func (s *SettingsService) load() (*config.Settings, error) {
	settings, err := config.LoadSettings(s.path)
	if err != nil {
		return nil, apierrors.FileSystemError("load settings", err)
	}
	return settings, nil
}

func (s *SettingsService) save(settings *config.Settings) error {
	if err := config.SaveSettings(s.path, settings); err != nil {
		return apierrors.FileSystemError("save settings", err)
	}
	return nil
}
