// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/meshintel/inventor-scout/internal/analysis"
	"github.com/meshintel/inventor-scout/internal/cache"
	"github.com/meshintel/inventor-scout/internal/registry"
	"github.com/meshintel/inventor-scout/internal/retrieval"
	"github.com/meshintel/inventor-scout/internal/secrets"
	"github.com/meshintel/inventor-scout/internal/store"
	"github.com/meshintel/inventor-scout/pkg/types"
)

func init() {
	viper.SetDefault("cache.dir", ".cache")
	viper.SetDefault("registry.timeout", 30*time.Second)
	viper.SetDefault("registry.max_retries", 3)
	viper.SetDefault("retrieval.timeout", 15*time.Second)
	viper.SetDefault("retrieval.max_results", 10)
	viper.SetDefault("retrieval.max_attempts", 3)
	viper.SetDefault("retrieval.min_delay", 2*time.Second)
	viper.SetDefault("retrieval.max_delay", 6*time.Second)
	viper.SetDefault("analysis.model", "claude-sonnet-4-5")
	viper.SetDefault("analysis.max_candidates", 10)
	viper.SetDefault("analysis.max_terms", 3)
	viper.SetDefault("store.path", "inventor-scout.db")
	viper.SetDefault("server.addr", ":8888")
}

// pipelineConfig resolves the full stage configuration from config file,
// environment, and loaded secrets.
func pipelineConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Cache: types.CacheConfig{
			Dir: viper.GetString("cache.dir"),
		},
		Registry: types.RegistryConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("registry.timeout"),
				UserAgent: "inventor-scout/" + version,
			},
			APIKey:     apiKey("registry.api_key", "registry-api-key"),
			MaxRetries: viper.GetInt("registry.max_retries"),
		},
		Retrieval: types.RetrievalConfig{
			Timeout:     viper.GetDuration("retrieval.timeout"),
			MaxResults:  viper.GetInt("retrieval.max_results"),
			MaxAttempts: viper.GetInt("retrieval.max_attempts"),
			MinDelay:    viper.GetDuration("retrieval.min_delay"),
			MaxDelay:    viper.GetDuration("retrieval.max_delay"),
		},
		Analysis: types.AnalysisConfig{
			Model:         viper.GetString("analysis.model"),
			APIKey:        apiKey("analysis.api_key", "anthropic-api-key"),
			MaxCandidates: viper.GetInt("analysis.max_candidates"),
			MaxTerms:      viper.GetInt("analysis.max_terms"),
		},
		Store: types.StoreConfig{
			Path: viper.GetString("store.path"),
		},
		Server: types.ServerConfig{
			Addr: viper.GetString("server.addr"),
		},
	}
}

// apiKey prefers an explicit config value over the .secrets/ entry.
func apiKey(configKey, secretKey string) string {
	if v := viper.GetString(configKey); v != "" {
		return v
	}
	return secrets.Get(loadedSecrets, secretKey)
}

// components holds the wired pipeline stages shared by the subcommands.
type components struct {
	registry *registry.Client
	analyzer *analysis.Orchestrator
	results  *store.Store
	cache    *cache.Store
}

// buildComponents wires the cache, registry, retrieval, and analysis stages
// from one resolved configuration. withStore controls whether the results
// database is opened.
func buildComponents(cfg types.PipelineConfig, withStore bool) (*components, error) {
	cacheStore, err := cache.NewStore(cfg.Cache.Dir)
	if err != nil {
		return nil, err
	}

	searcher := retrieval.NewClient(cfg.Retrieval, log().Named("retrieval"))
	generator := &analysis.ClaudeGenerator{
		APIKey: cfg.Analysis.APIKey,
		Model:  cfg.Analysis.Model,
	}

	c := &components{
		registry: registry.NewClient(cacheStore, cfg.Registry, log().Named("registry")),
		analyzer: analysis.NewOrchestrator(generator, searcher, cacheStore, cfg.Analysis, log().Named("analysis")),
		cache:    cacheStore,
	}
	if withStore {
		c.results, err = store.NewStore(cfg.Store)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Close releases held resources.
func (c *components) Close() {
	if c.results != nil {
		c.results.Close()
	}
}
