package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrocli/internal/catalog"
	"macrocli/internal/config"
	"macrocli/internal/security"
	"macrocli/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveSources(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name    string
		flag    string
		want    []string
		wantErr bool
	}{
		{name: "all expands to every source", flag: "all", want: catalog.Sources()},
		{name: "empty behaves like all", flag: "", want: catalog.Sources()},
		{name: "single lowercase source", flag: "fred", want: []string{"FRED"}},
		{name: "comma separated pair", flag: "fred,bls", want: []string{"FRED", "BLS"}},
		{name: "whitespace tolerated", flag: " ecos ", want: []string{"ECOS"}},
		{name: "unknown source rejected", flag: "mars", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveSources(tt.flag, cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown source")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveSources_ConfiguredSubset(t *testing.T) {
	cfg := config.Default()
	cfg.Collection.Sources = []string{catalog.SourceBLS}

	got, err := resolveSources("all", cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{catalog.SourceBLS}, got)
}

func TestApplyCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")
	creds := &security.Credentials{
		FREDAPIKey: "fred-from-file",
		BLSAPIKey:  "bls-from-file",
	}
	require.NoError(t, security.Save(path, creds, []byte("open sesame")))

	t.Run("fills empty keys", func(t *testing.T) {
		t.Setenv("MACRO_CREDENTIALS_PASSPHRASE", "open sesame")

		cfg := config.Default()
		require.NoError(t, applyCredentials(cfg, path, discardLogger()))

		assert.Equal(t, "fred-from-file", cfg.Providers.FREDKey)
		assert.Equal(t, "bls-from-file", cfg.Providers.BLSKey)
		assert.Empty(t, cfg.Providers.ECOSKey)
	})

	t.Run("configured keys win over the file", func(t *testing.T) {
		t.Setenv("MACRO_CREDENTIALS_PASSPHRASE", "open sesame")

		cfg := config.Default()
		cfg.Providers.FREDKey = "from-env"
		require.NoError(t, applyCredentials(cfg, path, discardLogger()))

		assert.Equal(t, "from-env", cfg.Providers.FREDKey)
		assert.Equal(t, "bls-from-file", cfg.Providers.BLSKey)
	})

	t.Run("wrong passphrase fails", func(t *testing.T) {
		t.Setenv("MACRO_CREDENTIALS_PASSPHRASE", "wrong")

		cfg := config.Default()
		assert.Error(t, applyCredentials(cfg, path, discardLogger()))
	})
}

func TestBuildClients(t *testing.T) {
	t.Run("unkeyed config registers only bls", func(t *testing.T) {
		clients := buildClients(config.Default(), discardLogger())

		require.Len(t, clients, 1)
		assert.Equal(t, catalog.SourceBLS, clients[0].Source())
	})

	t.Run("keys enable the keyed providers", func(t *testing.T) {
		cfg := config.Default()
		cfg.Providers.FREDKey = "k1"
		cfg.Providers.ECOSKey = "k2"

		var names []string
		for _, c := range buildClients(cfg, discardLogger()) {
			names = append(names, c.Source())
		}
		assert.ElementsMatch(t, []string{"FRED", "ECOS", "BLS"}, names)
	})
}

func TestPrintSummary(t *testing.T) {
	result := &domain.CollectionResult{
		RunID:     "run-1",
		StartedAt: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC),
		Sources: []domain.SourceSummary{
			{
				Source:     catalog.SourceFRED,
				Indicators: 50,
				Fetched:    120,
				Merged:     118,
				Sheets:     6,
				Duration:   1500 * time.Millisecond,
			},
			{
				Source:      catalog.SourceBLS,
				Indicators:  20,
				Fetched:     10,
				FailedCodes: []string{"LNS14000000"},
				Duration:    700 * time.Millisecond,
			},
			{
				Source: catalog.SourceECOS,
				Error:  "all 12 indicator fetches failed",
			},
		},
	}

	var sb strings.Builder
	printSummary(&sb, result)
	out := sb.String()

	assert.Contains(t, out, "Collection run run-1")
	assert.Contains(t, out, "FRED")
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "partial (1 codes failed)")
	assert.Contains(t, out, "FAILED: all 12 indicator fetches failed")
	assert.Contains(t, out, "BLS failed codes: LNS14000000")
}
