package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/metasearch/internal/apperr"
	"github.com/pdiddy/metasearch/internal/search"
	"github.com/pdiddy/metasearch/internal/secrets"
	"github.com/pdiddy/metasearch/internal/suggest"
)

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadConfig(newViper(), nil)

	assert.Equal(t, 15*time.Second, cfg.Search.Timeout)
	assert.Equal(t, "metasearch/0.1", cfg.Suggest.UserAgent)
	assert.Equal(t, search.DefaultEndpoint, cfg.Search.Endpoint)
	assert.Equal(t, 2, cfg.Search.MaxRetries)
	assert.Equal(t, suggest.DefaultEndpoint, cfg.Suggest.Endpoint)
	assert.Equal(t, 200*time.Millisecond, cfg.Suggest.Debounce)
	assert.Equal(t, 10, cfg.Suggest.Max)
	assert.Equal(t, 256, cfg.Suggest.CacheSize)
	assert.Equal(t, 5*time.Minute, cfg.Suggest.CacheTTL)
	assert.Equal(t, int64(4<<20), cfg.Augment.MaxBytes)
	assert.Zero(t, cfg.Augment.CacheTTL)
	assert.Equal(t, 4, cfg.Augment.Concurrency)
	assert.Equal(t, "metasearch.db", filepath.Base(cfg.Store.Path))
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"api key", "search engine id"}, cfg.Search.Credentials.Missing())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("METASEARCH_SEARCH_MAX_RETRIES", "5")
	t.Setenv("METASEARCH_SUGGEST_DEBOUNCE", "50ms")
	t.Setenv("METASEARCH_CREDENTIALS_API_KEY", "env-key")

	loaded := map[string]string{
		secrets.KeyAPIKey:   "file-key",
		secrets.KeyEngineID: "file-cx",
	}
	cfg := loadConfig(newViper(), loaded)

	assert.Equal(t, 5, cfg.Search.MaxRetries)
	assert.Equal(t, 50*time.Millisecond, cfg.Suggest.Debounce)
	assert.Equal(t, "env-key", cfg.Search.Credentials.APIKey, "environment wins over secrets files")
	assert.Equal(t, "file-cx", cfg.Search.Credentials.EngineID)
}

func TestNewAugmenterRejectsBadRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: broken\n"), 0o644))

	cfg := loadConfig(newViper(), nil).Augment
	cfg.RulesFile = path
	_, err := newAugmenter(cfg, nil, nil)
	assert.Error(t, err)

	cfg.RulesFile = ""
	svc, err := newAugmenter(cfg, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestExitMessage(t *testing.T) {
	cfgErr := apperr.New(apperr.KindConfiguration, "search", "missing api key")
	if got := exitMessage(cfgErr); got != "Search is not configured: API credentials are missing." {
		t.Errorf("exitMessage(config) = %q", got)
	}
	if got := exitMessage(errors.New("accepts 1 arg(s), received 0")); got != "accepts 1 arg(s), received 0" {
		t.Errorf("exitMessage(plain) = %q", got)
	}
}

func TestVersionFlag(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "metasearch "+version+"\n", out.String())
}
