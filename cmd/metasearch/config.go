package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/pdiddy/metasearch/internal/augment"
	"github.com/pdiddy/metasearch/internal/fetch"
	"github.com/pdiddy/metasearch/internal/rule"
	"github.com/pdiddy/metasearch/internal/search"
	"github.com/pdiddy/metasearch/internal/secrets"
	"github.com/pdiddy/metasearch/internal/store"
	"github.com/pdiddy/metasearch/internal/suggest"
	"github.com/pdiddy/metasearch/pkg/types"
)

// setDefaults registers every config key with its default value.
func setDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout", 15*time.Second)
	v.SetDefault("http.user_agent", "metasearch/0.1")

	v.SetDefault("search.endpoint", search.DefaultEndpoint)
	v.SetDefault("search.max_retries", 2)

	v.SetDefault("suggest.endpoint", suggest.DefaultEndpoint)
	v.SetDefault("suggest.debounce", 200*time.Millisecond)
	v.SetDefault("suggest.max", 10)
	v.SetDefault("suggest.cache_size", 256)
	v.SetDefault("suggest.cache_ttl", 5*time.Minute)

	v.SetDefault("augment.rules_file", "")
	v.SetDefault("augment.max_bytes", int64(4<<20))
	v.SetDefault("augment.cache_ttl", time.Duration(0))
	v.SetDefault("augment.concurrency", 4)

	v.SetDefault("store.path", defaultStorePath())
	v.SetDefault("secrets.dir", ".secrets/")
	v.SetDefault("log.level", "info")

	v.SetDefault("credentials.api_key", "")
	v.SetDefault("credentials.engine_id", "")
}

// bindEnv maps METASEARCH_SEARCH_MAX_RETRIES style variables onto dotted keys.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("METASEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".metasearch", "metasearch.db")
	}
	return filepath.Join(home, ".local", "share", "metasearch", "metasearch.db")
}

// loadConfig assembles a Config from v. Credentials set through config or
// environment win over the secrets directory.
func loadConfig(v *viper.Viper, loaded map[string]string) types.Config {
	httpCfg := types.HTTPConfig{
		Timeout:   v.GetDuration("http.timeout"),
		UserAgent: v.GetString("http.user_agent"),
	}
	return types.Config{
		Search: types.SearchConfig{
			HTTPConfig: httpCfg,
			Endpoint:   v.GetString("search.endpoint"),
			MaxRetries: v.GetInt("search.max_retries"),
			Credentials: secrets.Credentials(loaded,
				v.GetString("credentials.api_key"),
				v.GetString("credentials.engine_id")),
		},
		Suggest: types.SuggestConfig{
			HTTPConfig: httpCfg,
			Endpoint:   v.GetString("suggest.endpoint"),
			Debounce:   v.GetDuration("suggest.debounce"),
			Max:        v.GetInt("suggest.max"),
			CacheSize:  v.GetInt("suggest.cache_size"),
			CacheTTL:   v.GetDuration("suggest.cache_ttl"),
		},
		Augment: types.AugmentConfig{
			HTTPConfig:  httpCfg,
			RulesFile:   v.GetString("augment.rules_file"),
			MaxBytes:    v.GetInt64("augment.max_bytes"),
			CacheTTL:    v.GetDuration("augment.cache_ttl"),
			Concurrency: v.GetInt("augment.concurrency"),
		},
		Store:    types.StoreConfig{Path: v.GetString("store.path")},
		LogLevel: v.GetString("log.level"),
	}
}

func currentConfig() types.Config {
	return loadConfig(viper.GetViper(), loadedSecrets)
}

// newAugmenter builds the price service. st may be nil, which disables the
// cache.
func newAugmenter(cfg types.AugmentConfig, st *store.Store, l *log.Logger) (*augment.Service, error) {
	var rules []rule.Rule
	if cfg.RulesFile != "" {
		r, err := rule.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		rules = r
	}
	opts := []augment.Option{augment.WithLogger(l)}
	if st != nil {
		opts = append(opts, augment.WithCache(st, cfg.CacheTTL))
	}
	f := fetch.New(nil, cfg.HTTPConfig, cfg.MaxBytes, l)
	return augment.NewService(f, rules, opts...), nil
}

// openStoreOrWarn opens the price cache. Augmentation still works without
// it, so a failure is only logged.
func openStoreOrWarn(cfg types.StoreConfig, l *log.Logger) *store.Store {
	st, err := store.Open(cfg)
	if err != nil {
		l.Warn("price cache unavailable", "path", cfg.Path, "err", err)
		return nil
	}
	return st
}

func newSuggester(cfg types.SuggestConfig, l *log.Logger) suggest.Suggester {
	return suggest.NewCache(suggest.NewClient(nil, cfg, l), cfg.CacheSize, cfg.CacheTTL, suggest.WithLimit(cfg.Max))
}
