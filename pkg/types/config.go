package types

import "time"

// HTTPConfig holds shared HTTP settings used by every outbound call.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "metasearch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the search API client.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the search API URL (default: Google Custom Search v1).
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// MaxRetries bounds retries on HTTP 429 (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Credentials are loaded from secrets or the environment, never from output.
	Credentials Credentials `json:"-" yaml:"-"`
}

// SuggestConfig holds settings for the word-suggestion lookup.
type SuggestConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the word-suggestion URL (default: Datamuse /sug).
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Debounce is the quiet period after the last keystroke before a lookup.
	Debounce time.Duration `json:"debounce" yaml:"debounce"`

	// Max caps the number of suggestions requested (0 = provider default).
	Max int `json:"max" yaml:"max"`

	// CacheSize is the number of prefixes memoised (0 disables the cache).
	CacheSize int `json:"cache_size" yaml:"cache_size"`

	// CacheTTL is how long a memoised prefix stays valid.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
}

// AugmentConfig holds settings for result augmentation (price scraping).
type AugmentConfig struct {
	HTTPConfig `yaml:",inline"`

	// RulesFile is an optional YAML file of extraction rules. Empty selects
	// the built-in price rules.
	RulesFile string `json:"rules_file" yaml:"rules_file"`

	// MaxBytes caps how much of a target page is read.
	MaxBytes int64 `json:"max_bytes" yaml:"max_bytes"`

	// CacheTTL serves a stored value younger than this without fetching.
	// Zero always re-fetches.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// Concurrency bounds batch augmentation fan-out.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// StoreConfig holds settings for the price cache database.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path"`
}

// Config groups all settings for one metasearch process.
type Config struct {
	Search   SearchConfig  `json:"search" yaml:"search"`
	Suggest  SuggestConfig `json:"suggest" yaml:"suggest"`
	Augment  AugmentConfig `json:"augment" yaml:"augment"`
	Store    StoreConfig   `json:"store" yaml:"store"`
	LogLevel string        `json:"log_level" yaml:"log_level"`
}
