// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the domain records and stage configurations shared
// across the enrichment pipeline.
package types

import "time"

// PatentRecord is the normalized registry record for a single patent.
// It is immutable once returned by the registry client; downstream stages
// never mutate it.
type PatentRecord struct {
	// PatentNumber is the canonical identifier (e.g. "US7654321") and the
	// registry cache key.
	PatentNumber string `json:"patent_number" yaml:"patent_number"`

	// Title is the patent's short description.
	Title string `json:"title" yaml:"title"`

	// Inventors lists filtered, trimmed display names in registry order.
	// Collective entries ("et al.", "and others") are never present.
	Inventors []string `json:"inventors" yaml:"inventors"`

	// PublicationDate is the grant or publication date.
	PublicationDate time.Time `json:"publication_date" yaml:"publication_date"`

	// Source names the upstream that produced the record (e.g. "registry").
	Source string `json:"source" yaml:"source"`
}

// InventorAnalysis is the cached output of the per-inventor enrichment loop,
// keyed by (patent number, inventor name). Analyses are created once and
// returned verbatim on subsequent requests.
type InventorAnalysis struct {
	// PatentNumber and InventorName form the analysis cache key.
	PatentNumber string `json:"patent_number" yaml:"patent_number"`
	InventorName string `json:"inventor_name" yaml:"inventor_name"`

	// SearchStrategy is the generator's free-text reasoning for how to
	// locate this inventor.
	SearchStrategy string `json:"search_strategy" yaml:"search_strategy"`

	// SearchTerms lists the concrete queries issued, in order.
	SearchTerms []string `json:"search_terms" yaml:"search_terms"`

	// CandidateURLs lists every profile URL considered during selection.
	CandidateURLs []string `json:"candidate_urls" yaml:"candidate_urls"`

	// ProfileURL is the selected professional-profile URL. Empty means no
	// match was found; Confidence is always 0 in that case.
	ProfileURL string `json:"profile_url,omitempty" yaml:"profile_url,omitempty"`

	// Confidence is the generator's match confidence in [0,1]. Meaningful
	// only when ProfileURL is set.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// EmailSuggestions lists likely contact-email patterns
	// (e.g. "j.doe@example.com").
	EmailSuggestions []string `json:"email_suggestions" yaml:"email_suggestions"`

	// RepoSearchTerms lists code-repository search terms or usernames.
	// Empty for non-software domains.
	RepoSearchTerms []string `json:"repo_search_terms" yaml:"repo_search_terms"`

	// CreatedAt records when the analysis completed. Diagnostic only.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Found reports whether the analysis selected a profile.
func (a *InventorAnalysis) Found() bool {
	return a.ProfileURL != ""
}

// SearchCandidate is one raw result from the retrieval surface. Candidates
// live only within a single analysis round and are never persisted.
type SearchCandidate struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// EventType classifies a batch progress event.
type EventType string

const (
	EventStarted   EventType = "status"
	EventCompleted EventType = "complete"
	EventError     EventType = "error"
	EventFinished  EventType = "finished"
)

// BatchEvent is one typed progress event emitted by the pipeline
// coordinator. Index matches the patent's position in the input batch;
// it is -1 for the terminal finished event.
type BatchEvent struct {
	Type         EventType     `json:"type"`
	Index        int           `json:"index"`
	PatentNumber string        `json:"patent,omitempty"`
	Record       *PatentRecord `json:"data,omitempty"`
	Error        string        `json:"error,omitempty"`
	Total        int           `json:"total,omitempty"`
}
