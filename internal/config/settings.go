package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"macrocli/pkg/contracts/domain"
)

// DefaultChartCategories seeds the category list of a fresh settings file.
var DefaultChartCategories = []string{"Rates", "Inflation", "Employment", "Activity", "Other"}

// Chart rendering styles a saved indicator can request.
const (
	ChartTypeLine       = "Line"
	ChartTypeLineMarker = "Line + Marker"
	ChartTypeBar        = "Bar"
)

// ChartTypeOptions lists the supported chart styles in menu order.
var ChartTypeOptions = []string{ChartTypeLine, ChartTypeLineMarker, ChartTypeBar}

// ChartIndicator is one series line within a saved chart: where the data
// comes from and how it is transformed and drawn. The code field marshals as
// "id" to stay compatible with existing settings files.
type ChartIndicator struct {
	Source    string `json:"source" validate:"required,oneof=FRED ECOS BLS"`
	Code      string `json:"id" validate:"required"`
	ChartType string `json:"chart_type,omitempty"`
	Transform string `json:"transform,omitempty"`
	Shift     int    `json:"shift,omitempty" validate:"min=-24,max=24"`
	Reverse   bool   `json:"reverse,omitempty"`
	LogScale  bool   `json:"log_scale,omitempty"`
}

// Selection converts the indicator to the analysis request form. An empty
// transform means raw data.
func (ci ChartIndicator) Selection() domain.SeriesSelection {
	transform := domain.TransformMode(ci.Transform)
	if ci.Transform == "" {
		transform = domain.TransformRaw
	}
	return domain.SeriesSelection{
		Source:    ci.Source,
		Code:      ci.Code,
		Transform: transform,
		Shift:     ci.Shift,
	}
}

// ChartConfig is one saved comparison chart.
type ChartConfig struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Category      string           `json:"category,omitempty"`
	Indicators    []ChartIndicator `json:"indicators"`
	DateRange     []string         `json:"date_range,omitempty"`
	SeparateYAxis bool             `json:"separate_yaxis"`
}

// Window returns the chart's date range as times. Either side is zero when
// absent or unparseable, meaning unbounded.
func (c ChartConfig) Window() (from, to time.Time) {
	parse := func(i int) time.Time {
		if i >= len(c.DateRange) {
			return time.Time{}
		}
		t, err := time.Parse(domain.DateLayout, c.DateRange[i])
		if err != nil {
			return time.Time{}
		}
		return t
	}
	return parse(0), parse(1)
}

// LayoutSlot pins one saved chart into the dashboard layout order.
type LayoutSlot struct {
	ChartID string `json:"chart_id"`
}

// Settings holds everything the user can persist: saved charts, the
// dashboard layout, chart categories, and hidden indicators.
type Settings struct {
	SavedCharts       []ChartConfig `json:"saved_charts"`
	MainLayout        []LayoutSlot  `json:"main_layout"`
	Categories        []string      `json:"categories"`
	HiddenIndicators  []string      `json:"hidden_indicators,omitempty"`
	MigratedToEnglish bool          `json:"migrated_to_english,omitempty"`
}

// NewSettings returns the zero-state settings a fresh install starts from.
func NewSettings() *Settings {
	return &Settings{
		SavedCharts:       []ChartConfig{},
		MainLayout:        []LayoutSlot{},
		Categories:        append([]string(nil), DefaultChartCategories...),
		MigratedToEnglish: true,
	}
}

// NewChartID derives a chart ID from its save time.
func NewChartID(t time.Time) string {
	return "chart_" + t.Format("20060102_150405")
}

// FindChart returns the saved chart with the given ID.
func (s *Settings) FindChart(id string) (ChartConfig, bool) {
	for _, c := range s.SavedCharts {
		if c.ID == id {
			return c, true
		}
	}
	return ChartConfig{}, false
}

// UpsertChart replaces the chart with the same ID or appends a new one. New
// charts also get a slot at the end of the dashboard layout, and their
// category is added to the category list when unknown.
func (s *Settings) UpsertChart(c ChartConfig) {
	if c.Category != "" {
		s.EnsureCategory(c.Category)
	}
	for i := range s.SavedCharts {
		if s.SavedCharts[i].ID == c.ID {
			s.SavedCharts[i] = c
			return
		}
	}
	s.SavedCharts = append(s.SavedCharts, c)
	s.MainLayout = append(s.MainLayout, LayoutSlot{ChartID: c.ID})
}

// DeleteChart removes a saved chart and its layout slot.
func (s *Settings) DeleteChart(id string) bool {
	found := false
	charts := s.SavedCharts[:0]
	for _, c := range s.SavedCharts {
		if c.ID == id {
			found = true
			continue
		}
		charts = append(charts, c)
	}
	s.SavedCharts = charts

	if found {
		layout := s.MainLayout[:0]
		for _, slot := range s.MainLayout {
			if slot.ChartID == id {
				continue
			}
			layout = append(layout, slot)
		}
		s.MainLayout = layout
	}
	return found
}

// EnsureCategory appends a category if the list does not have it yet.
func (s *Settings) EnsureCategory(name string) {
	for _, c := range s.Categories {
		if c == name {
			return
		}
	}
	s.Categories = append(s.Categories, name)
}

// hiddenKey is the stored form of a hidden indicator.
func hiddenKey(source, code string) string {
	return source + ":" + code
}

// IsHidden reports whether an indicator is hidden from pickers.
func (s *Settings) IsHidden(source, code string) bool {
	key := hiddenKey(source, code)
	for _, h := range s.HiddenIndicators {
		if h == key {
			return true
		}
	}
	return false
}

// HideIndicator hides an indicator from pickers. Hiding is idempotent.
func (s *Settings) HideIndicator(source, code string) {
	if s.IsHidden(source, code) {
		return
	}
	s.HiddenIndicators = append(s.HiddenIndicators, hiddenKey(source, code))
}

// ShowIndicator removes an indicator from the hidden list.
func (s *Settings) ShowIndicator(source, code string) {
	key := hiddenKey(source, code)
	kept := s.HiddenIndicators[:0]
	for _, h := range s.HiddenIndicators {
		if h == key {
			continue
		}
		kept = append(kept, h)
	}
	s.HiddenIndicators = kept
}

// Migration tables for settings files written before the UI switched to
// English labels.
var (
	koreanTransforms = map[string]string{
		"원 데이터":         "Raw Data",
		"지수화 (기준=100)": "Indexed (Base=100)",
		"MoM (전월 대비)":   "MoM",
		"QoQ (전분기 대비)":  "QoQ",
		"YoY (전년 동기 대비)": "YoY",
	}
	koreanChartTypes = map[string]string{
		"라인":    ChartTypeLine,
		"라인+마커": ChartTypeLineMarker,
		"막대":    ChartTypeBar,
	}
	koreanCategories = map[string]string{
		"금리":    "Rates",
		"물가":    "Inflation",
		"고용":    "Employment",
		"경기":    "Activity",
		"기타":    "Other",
		"심리":    "Sentiment",
		"통화":    "Money Supply",
		"환율":    "FX",
		"무역":    "Trade",
		"실업":    "Unemployment",
		"JOLTS": "JOLTS",
		"임금":    "Wages",
		"생산성":   "Productivity",
		"생산자물가": "PPI",
	}
)

// migrateToEnglish rewrites legacy Korean labels in place, once. The change
// reaches disk on the next SaveSettings.
func (s *Settings) migrateToEnglish() {
	if s.MigratedToEnglish {
		return
	}
	for i, c := range s.Categories {
		if en, ok := koreanCategories[c]; ok {
			s.Categories[i] = en
		}
	}
	for i := range s.SavedCharts {
		chart := &s.SavedCharts[i]
		if en, ok := koreanCategories[chart.Category]; ok {
			chart.Category = en
		}
		for j := range chart.Indicators {
			ind := &chart.Indicators[j]
			if en, ok := koreanTransforms[ind.Transform]; ok {
				ind.Transform = en
			}
			if en, ok := koreanChartTypes[ind.ChartType]; ok {
				ind.ChartType = en
			}
		}
	}
	s.MigratedToEnglish = true
}

// LoadSettings reads the settings file at path. A missing file is the fresh
// zero state, not an error. Files written before the English migration are
// upgraded in memory.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if len(s.Categories) == 0 {
		s.Categories = append([]string(nil), DefaultChartCategories...)
	}
	s.migrateToEnglish()
	return &s, nil
}

// SaveSettings writes the settings file at path, creating parent directories
// as needed.
func SaveSettings(path string, s *Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
