package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with registry requests
	// (e.g. "inventor-scout/0.1"). The retrieval client ignores this and
	// manages its own rotating identities.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CacheConfig holds settings for the file cache.
type CacheConfig struct {
	// Dir is the base cache directory (contains registry/, analysis/).
	Dir string `json:"dir" yaml:"dir"`
}

// RegistryConfig holds settings for the patent registry client.
type RegistryConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the registry API. Optional; anonymous
	// requests are rate limited more aggressively.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries bounds retry attempts on rate-limit responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// RetrievalConfig holds settings for the evasive search client.
type RetrievalConfig struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxResults caps candidates returned per query (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MaxAttempts bounds blocked-retry attempts per query, each with a
	// freshly rotated identity (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// MinDelay and MaxDelay bound the randomized pause before each
	// request. Humanlike pacing, not throughput, is the goal.
	MinDelay time.Duration `json:"min_delay" yaml:"min_delay"`
	MaxDelay time.Duration `json:"max_delay" yaml:"max_delay"`
}

// AnalysisConfig holds settings for the analysis orchestrator.
type AnalysisConfig struct {
	// Model is the text-generation model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the text-generation API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxCandidates caps how many search candidates are offered to the
	// selection round (default 10).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`

	// MaxTerms caps how many generated search terms are actually issued
	// (default 3).
	MaxTerms int `json:"max_terms" yaml:"max_terms"`
}

// StoreConfig holds settings for the results store.
type StoreConfig struct {
	// Path is the SQLite database file (default "inventor-scout.db").
	Path string `json:"path" yaml:"path"`
}

// ServerConfig holds settings for the HTTP adapter.
type ServerConfig struct {
	// Addr is the listen address (default ":8888").
	Addr string `json:"addr" yaml:"addr"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	Registry  RegistryConfig  `json:"registry" yaml:"registry"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Analysis  AnalysisConfig  `json:"analysis" yaml:"analysis"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Server    ServerConfig    `json:"server" yaml:"server"`
}
