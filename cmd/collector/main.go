package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"macrocli/internal/catalog"
	"macrocli/internal/config"
	"macrocli/internal/fetch"
	"macrocli/internal/infrastructure"
	"macrocli/internal/security"
	"macrocli/internal/services"
	"macrocli/pkg/contracts"
	"macrocli/pkg/contracts/domain"
)

func main() {
	source := flag.String("source", "all", "source to collect: fred | bls | ecos | all")
	category := flag.String("category", "", "restrict the run to one catalog category")
	configPath := flag.String("config", "", "path to a YAML config file (defaults to the standard search locations)")
	credentialsPath := flag.String("credentials", "", "path to an encrypted credentials file with provider API keys")
	timeout := flag.Duration("timeout", 0, "overall run timeout (defaults to the configured collection timeout)")
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
	cfg.Logging.FilePath = paths.LogPath("collector.log")

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	sources, err := resolveSources(*source, cfg)
	if err != nil {
		logger.Error("Invalid source selection", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *credentialsPath != "" {
		if err := applyCredentials(cfg, *credentialsPath, logger); err != nil {
			logger.Error("Failed to load credentials", slog.String("error", err.Error()))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	runTimeout := cfg.Collection.Timeout
	if *timeout > 0 {
		runTimeout = *timeout
	}

	logger.Info("Collection starting",
		slog.Any("sources", sources),
		slog.String("category", *category),
		slog.Duration("timeout", runTimeout),
		slog.String("workbooks_dir", paths.WorkbooksDir))

	svc := services.NewCollectionService(
		buildClients(cfg, logger),
		paths,
		nil,
		nil,
		cfg.Collection.Concurrency,
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	var result *domain.CollectionResult
	if *category != "" {
		result, err = svc.RunCategory(ctx, sources, *category)
	} else {
		result, err = svc.Run(ctx, sources)
	}

	if result != nil {
		printSummary(os.Stdout, result)
	}
	if err != nil {
		logger.Error("Collection run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// resolveSources maps the -source flag onto catalog source names. "all"
// expands to the configured collection sources.
func resolveSources(flagValue string, cfg *config.Config) ([]string, error) {
	value := strings.TrimSpace(strings.ToLower(flagValue))
	if value == "" || value == "all" {
		return cfg.CollectionSources(), nil
	}

	var sources []string
	for _, part := range strings.Split(value, ",") {
		name := strings.ToUpper(strings.TrimSpace(part))
		if _, ok := catalog.ForSource(name); !ok {
			return nil, fmt.Errorf("unknown source %q (expected fred, bls, ecos or all)", part)
		}
		sources = append(sources, name)
	}
	return sources, nil
}

// applyCredentials decrypts the credentials file and fills in provider keys
// that the config and environment left empty. Explicitly configured keys win.
func applyCredentials(cfg *config.Config, path string, logger *slog.Logger) error {
	passphrase := os.Getenv("MACRO_CREDENTIALS_PASSPHRASE")
	if passphrase == "" {
		fmt.Print("Credentials passphrase: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read passphrase: %w", err)
		}
		passphrase = strings.TrimSpace(line)
	}
	if passphrase == "" {
		return fmt.Errorf("no passphrase provided")
	}

	creds, err := security.Load(path, []byte(passphrase))
	if err != nil {
		return err
	}

	if cfg.Providers.FREDKey == "" {
		cfg.Providers.FREDKey = creds.FREDAPIKey
	}
	if cfg.Providers.BLSKey == "" {
		cfg.Providers.BLSKey = creds.BLSAPIKey
	}
	if cfg.Providers.ECOSKey == "" {
		cfg.Providers.ECOSKey = creds.ECOSAPIKey
	}

	logger.Info("Credentials file applied", slog.String("path", path))
	return nil
}

// buildClients mirrors the web application's provider wiring. FRED and ECOS
// require an API key; BLS works unkeyed at a reduced request quota.
func buildClients(cfg *config.Config, logger *slog.Logger) []fetch.Client {
	var clients []fetch.Client

	if key := cfg.ProviderKey(catalog.SourceFRED); key != "" {
		clients = append(clients, fetch.NewFRED(key, logger))
	} else {
		logger.Warn("FRED API key not configured, source disabled")
	}
	if key := cfg.ProviderKey(catalog.SourceECOS); key != "" {
		clients = append(clients, fetch.NewECOS(key, logger))
	} else {
		logger.Warn("ECOS API key not configured, source disabled")
	}
	clients = append(clients, fetch.NewBLS(cfg.ProviderKey(catalog.SourceBLS), logger))

	return clients
}

func printSummary(w io.Writer, result *domain.CollectionResult) {
	fmt.Fprintf(w, "\nCollection run %s (started %s)\n\n",
		result.RunID, result.StartedAt.Format(time.RFC3339))
	fmt.Fprintln(w, "Source | Indicators | Fetched | Stored | Sheets | Duration | Status")
	fmt.Fprintln(w, "-------|------------|---------|--------|--------|----------|-------")

	for _, s := range result.Sources {
		status := "ok"
		if s.Failed() {
			status = "FAILED: " + s.Error
		} else if len(s.FailedCodes) > 0 {
			status = fmt.Sprintf("partial (%d codes failed)", len(s.FailedCodes))
		}
		fmt.Fprintf(w, "%-6s | %10d | %7d | %6d | %6d | %8s | %s\n",
			s.Source, s.Indicators, s.Fetched, s.Merged, s.Sheets,
			s.Duration.Round(time.Millisecond), status)
	}

	for _, s := range result.Sources {
		if len(s.FailedCodes) > 0 {
			fmt.Fprintf(w, "\n%s failed codes: %s\n", s.Source, strings.Join(s.FailedCodes, ", "))
		}
	}
	fmt.Fprintln(w)
}
