// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"net/url"
	"strings"
)

// validateStrategy normalizes an untrusted strategy-round response: trims and
// drops empty strings, bounds the term list, and clamps the confidence score.
func validateStrategy(s StrategyResult, maxTerms int) StrategyResult {
	s.Strategy = strings.TrimSpace(s.Strategy)
	s.SearchTerms = cleanList(s.SearchTerms)
	if len(s.SearchTerms) > maxTerms {
		s.SearchTerms = s.SearchTerms[:maxTerms]
	}
	s.EmailSuggestions = cleanList(s.EmailSuggestions)
	s.RepoSearchTerms = cleanList(s.RepoSearchTerms)
	s.Confidence = clamp(s.Confidence)
	return s
}

// validateSelection normalizes an untrusted selection-round response. A
// malformed or non-HTTP profile URL degrades to a decline, and a decline
// always carries confidence 0.
func validateSelection(s SelectionResult) SelectionResult {
	s.ProfileURL = strings.TrimSpace(s.ProfileURL)
	s.Reasoning = strings.TrimSpace(s.Reasoning)
	if s.ProfileURL != "" && !validProfileURL(s.ProfileURL) {
		s.ProfileURL = ""
	}
	if s.ProfileURL == "" {
		s.Confidence = 0
		return s
	}
	s.Confidence = clamp(s.Confidence)
	return s
}

// validProfileURL accepts absolute HTTP(S) URLs with a host.
func validProfileURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
