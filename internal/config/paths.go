package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"macrocli/internal/catalog"
)

// Paths contains all the application paths.
// This is the single source of truth for ALL file paths in the application.
type Paths struct {
	ExecutableDir string
	DataDir       string
	WorkbooksDir  string
	ExportsDir    string
	LogsDir       string
	WebDir        string
	StaticDir     string

	// Config files (root of the executable directory)
	SettingsFile    string
	CredentialsFile string
}

// GetPaths returns the application paths relative to the executable location.
// All paths are ALWAYS relative to the executable directory, never the
// current working directory, so every process resolves the same layout:
//
//	<exe dir>/
//	  ├── settings.json        (saved charts and preferences)
//	  ├── credentials.enc      (encrypted provider API keys)
//	  ├── data/
//	  │   ├── workbooks/       (one workbook per source: FRED.xlsx, ...)
//	  │   └── exports/         (CSV exports of comparison tables)
//	  ├── logs/
//	  └── web/                 (frontend assets)
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return PathsFor(filepath.Dir(exe)), nil
}

// PathsFor builds the path layout rooted at the given directory. Tests and
// tools that should not resolve the running executable use this directly.
func PathsFor(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, "data")
	return &Paths{
		ExecutableDir: baseDir,
		DataDir:       dataDir,
		WorkbooksDir:  filepath.Join(dataDir, "workbooks"),
		ExportsDir:    filepath.Join(dataDir, "exports"),
		LogsDir:       filepath.Join(baseDir, "logs"),
		WebDir:        filepath.Join(baseDir, "web"),
		StaticDir:     filepath.Join(baseDir, "web", "static"),

		SettingsFile:    filepath.Join(baseDir, SettingsFileName),
		CredentialsFile: filepath.Join(baseDir, CredentialsFileName),
	}
}

// EnsureDirectories creates all required directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.WorkbooksDir,
		p.ExportsDir,
		p.LogsDir,
	}
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WorkbookPath returns the workbook file for one source, e.g. FRED.xlsx.
func (p *Paths) WorkbookPath(source string) string {
	return filepath.Join(p.WorkbooksDir, source+".xlsx")
}

// WorkbookPaths returns the workbook file per supported source.
func (p *Paths) WorkbookPaths() map[string]string {
	out := make(map[string]string)
	for _, source := range catalog.Sources() {
		out[source] = p.WorkbookPath(source)
	}
	return out
}

// ExportPath returns the path for a CSV export file.
func (p *Paths) ExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// LogPath returns the path for a log file.
func (p *Paths) LogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// WebFilePath returns the path to a web asset.
func (p *Paths) WebFilePath(filename string) string {
	return filepath.Join(p.WebDir, filename)
}

// StaticFilePath returns the path to a static asset.
func (p *Paths) StaticFilePath(filename string) string {
	return filepath.Join(p.StaticDir, filename)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved layout for debugging.
func (p *Paths) LogPathResolution() {
	slog.Default().Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("workbooks", p.WorkbooksDir),
			slog.String("exports", p.ExportsDir),
			slog.String("logs", p.LogsDir),
			slog.String("web", p.WebDir),
		),
		slog.Group("config_files",
			slog.String("settings", p.SettingsFile),
			slog.String("credentials", p.CredentialsFile),
		))
}
