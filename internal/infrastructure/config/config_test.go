package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ParsesYAML(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
  allowed_origins:
    - http://localhost:3000
storage:
  database_path: /tmp/ledgerlink-test.db
matching:
  date_window_days: 7
  amount_tolerance: 5.00
  suggest_threshold: 65
  auto_link_threshold: 85
  merchant_matching: true
  merchant_keywords:
    - amazon
    - target
observability:
  logging:
    level: debug
    format: json
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/ledgerlink-test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 7, cfg.Matching.DateWindowDays)
	assert.Equal(t, 5.00, cfg.Matching.AmountTolerance)
	assert.Equal(t, 65, cfg.Matching.SuggestThreshold)
	assert.Equal(t, 85, cfg.Matching.AutoLinkThreshold)
	assert.Equal(t, []string{"amazon", "target"}, cfg.Matching.MerchantKeywords)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("LEDGERLINK_DB_PATH", "/data/expanded.db")
	path := writeConfigFile(t, `
storage:
  database_path: ${LEDGERLINK_DB_PATH}
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "/data/expanded.db", cfg.Storage.DatabasePath)
}

func TestLoad_AppliesDefaultsToSparseFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "ledgerlink.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 5, cfg.Matching.DateWindowDays)
	assert.Equal(t, 3.00, cfg.Matching.AmountTolerance)
	assert.Equal(t, 70, cfg.Matching.SuggestThreshold)
	assert.Equal(t, 90, cfg.Matching.AutoLinkThreshold)
	require.NotNil(t, cfg.Matching.MerchantMatching)
	assert.True(t, *cfg.Matching.MerchantMatching)
	assert.Equal(t, []string{"amazon", "amzn"}, cfg.Matching.MerchantKeywords)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
}

func TestLoad_ExplicitFalseMerchantMatchingSticks(t *testing.T) {
	path := writeConfigFile(t, `
matching:
  merchant_matching: false
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	require.NotNil(t, cfg.Matching.MerchantMatching)
	assert.False(t, *cfg.Matching.MerchantMatching)
	assert.False(t, cfg.MatcherConfig().EnableMerchantMatching)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestLoadFromEnv_ReadsVariables(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("LEDGERLINK_DB_PATH", "/data/env.db")
	t.Setenv("MATCH_DATE_WINDOW_DAYS", "10")
	t.Setenv("MATCH_AMOUNT_TOLERANCE", "1.50")
	t.Setenv("MATCH_SUGGEST_THRESHOLD", "60")
	t.Setenv("MATCH_AUTO_LINK_THRESHOLD", "95")
	t.Setenv("MATCH_MERCHANT_MATCHING", "false")
	t.Setenv("MATCH_MERCHANT_KEYWORDS", "amazon, walmart")
	t.Setenv("LOG_LEVEL", "warn")

	cfg := LoadFromEnv()

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "/data/env.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 10, cfg.Matching.DateWindowDays)
	assert.Equal(t, 1.50, cfg.Matching.AmountTolerance)
	assert.Equal(t, 60, cfg.Matching.SuggestThreshold)
	assert.Equal(t, 95, cfg.Matching.AutoLinkThreshold)
	require.NotNil(t, cfg.Matching.MerchantMatching)
	assert.False(t, *cfg.Matching.MerchantMatching)
	assert.Equal(t, []string{"amazon", "walmart"}, cfg.Matching.MerchantKeywords)
	assert.Equal(t, "warn", cfg.Observability.Logging.Level)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LEDGERLINK_DB_PATH", "")
	t.Setenv("MATCH_DATE_WINDOW_DAYS", "")

	cfg := LoadFromEnv()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "ledgerlink.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 5, cfg.Matching.DateWindowDays)
	require.NotNil(t, cfg.Matching.MerchantMatching)
	assert.True(t, *cfg.Matching.MerchantMatching)
}

func TestLoadOrEnvWithPath_FallsBackToEnv(t *testing.T) {
	t.Setenv("PORT", "9292")

	cfg := LoadOrEnvWithPath(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, 9292, cfg.Server.Port)
}

func TestMatcherConfig_Conversion(t *testing.T) {
	enabled := true
	cfg := &Config{
		Matching: MatchingConfig{
			DateWindowDays:    7,
			AmountTolerance:   2.50,
			SuggestThreshold:  65,
			AutoLinkThreshold: 85,
			MerchantMatching:  &enabled,
			MerchantKeywords:  []string{"amazon"},
		},
	}

	mc := cfg.MatcherConfig()

	assert.Equal(t, 7, mc.DateWindowDays)
	assert.True(t, mc.AmountTolerance.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, 65, mc.SuggestThreshold)
	assert.Equal(t, 85, mc.AutoLinkThreshold)
	assert.True(t, mc.EnableMerchantMatching)
	assert.Equal(t, []string{"amazon"}, mc.MerchantKeywords)
}
