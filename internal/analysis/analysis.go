// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis runs the per-inventor enrichment loop: a strategy round
// against the text-generation service, retrieval of profile candidates, and
// a selection round that picks or declines a profile URL. Results are cached
// per (patent, inventor) pair and never recomputed.
package analysis

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/meshintel/inventor-scout/internal/cache"
	"github.com/meshintel/inventor-scout/internal/registry"
	"github.com/meshintel/inventor-scout/pkg/errors"
	"github.com/meshintel/inventor-scout/pkg/types"
)

// Searcher retrieves profile candidates for one query. Satisfied by
// retrieval.Client.
type Searcher interface {
	SearchWithBackoff(ctx context.Context, query string) ([]types.SearchCandidate, error)
}

// Orchestrator coordinates the two generation rounds and retrieval for a
// single inventor. Analyses are idempotent per (patent, inventor) key.
type Orchestrator struct {
	gen      Generator
	searcher Searcher
	cache    *cache.Store
	cfg      types.AnalysisConfig
	log      *zap.Logger

	// now is replaceable for deterministic tests.
	now func() time.Time
}

// NewOrchestrator builds the analysis orchestrator. Zero MaxCandidates
// defaults to 10 and zero MaxTerms to 3.
func NewOrchestrator(gen Generator, searcher Searcher, cacheStore *cache.Store, cfg types.AnalysisConfig, log *zap.Logger) *Orchestrator {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 10
	}
	if cfg.MaxTerms <= 0 {
		cfg.MaxTerms = 3
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{gen: gen, searcher: searcher, cache: cacheStore, cfg: cfg, log: log, now: time.Now}
}

// Analyze produces the InventorAnalysis for one inventor of a patent. The
// returned bool reports whether the result came from cache. The analysis is
// always a complete object; "could not determine" is represented by empty
// fields and confidence 0, not by an error. Only a failed strategy round
// aborts, and nothing is cached in that case.
func (o *Orchestrator) Analyze(ctx context.Context, rec *types.PatentRecord, inventor string) (*types.InventorAnalysis, bool, error) {
	if !registry.IsPerson(inventor) {
		return nil, false, errors.InvalidInventor("%q is not an analyzable inventor name", inventor)
	}

	key := cache.AnalysisKey(rec.PatentNumber, inventor)
	var cached types.InventorAnalysis
	if o.cache.Get(cache.DomainAnalysis, key, &cached) {
		o.log.Debug("analysis cache hit",
			zap.String("patent", rec.PatentNumber),
			zap.String("inventor", inventor))
		return &cached, true, nil
	}

	strategy, err := o.gen.Strategy(ctx, *rec, inventor)
	if err != nil {
		return nil, false, errors.Wrap(err, errors.CodeUpstream, "strategy generation for %q", inventor)
	}
	strategy = validateStrategy(strategy, o.cfg.MaxTerms)

	candidates := o.retrieve(ctx, strategy.SearchTerms)

	selection := SelectionResult{}
	if len(candidates) > 0 {
		sel, err := o.gen.Select(ctx, *rec, inventor, candidates)
		if err != nil {
			// Degrade to "no match"; the strategy round's output is
			// still worth caching.
			o.log.Warn("selection round failed, declining",
				zap.String("inventor", inventor),
				zap.Error(err))
		} else {
			selection = validateSelection(sel)
		}
	}

	result := &types.InventorAnalysis{
		PatentNumber:     rec.PatentNumber,
		InventorName:     inventor,
		SearchStrategy:   strategy.Strategy,
		SearchTerms:      strategy.SearchTerms,
		CandidateURLs:    candidateURLs(candidates),
		ProfileURL:       selection.ProfileURL,
		Confidence:       selection.Confidence,
		EmailSuggestions: strategy.EmailSuggestions,
		RepoSearchTerms:  strategy.RepoSearchTerms,
		CreatedAt:        o.now().UTC(),
	}

	if err := o.cache.Put(cache.DomainAnalysis, key, result); err != nil {
		// A cache write failure degrades to recompute-next-time.
		o.log.Warn("analysis cache write failed",
			zap.String("key", key),
			zap.Error(err))
	}

	o.log.Info("analysis completed",
		zap.String("patent", rec.PatentNumber),
		zap.String("inventor", inventor),
		zap.Bool("found", result.Found()),
		zap.Float64("confidence", result.Confidence))
	return result, false, nil
}

// retrieve runs the generated terms through the searcher and merges
// candidates, deduplicated by URL and capped at MaxCandidates. A block that
// survives the searcher's own retry budget degrades to whatever was
// collected so far; other search failures skip the term.
func (o *Orchestrator) retrieve(ctx context.Context, terms []string) []types.SearchCandidate {
	seen := make(map[string]bool)
	var candidates []types.SearchCandidate
	for _, term := range terms {
		results, err := o.searcher.SearchWithBackoff(ctx, term)
		if err != nil {
			if errors.IsBlocked(err) {
				o.log.Warn("retrieval blocked, degrading to collected candidates",
					zap.String("term", term))
				break
			}
			o.log.Warn("search term failed",
				zap.String("term", term),
				zap.Error(err))
			continue
		}
		for _, r := range results {
			if seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			candidates = append(candidates, r)
			if len(candidates) >= o.cfg.MaxCandidates {
				return candidates
			}
		}
	}
	return candidates
}

func candidateURLs(candidates []types.SearchCandidate) []string {
	urls := make([]string, 0, len(candidates))
	for _, c := range candidates {
		urls = append(urls, c.URL)
	}
	return urls
}
