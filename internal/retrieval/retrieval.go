// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieval performs web searches against an HTML search surface
// that actively discourages automated clients. Each query runs with a fresh
// cookie jar and a rotated browser fingerprint, paced by randomized delays.
package retrieval

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/meshintel/inventor-scout/pkg/errors"
	"github.com/meshintel/inventor-scout/pkg/types"
)

// searchEndpoint is the lite HTML search surface. Tests substitute an
// httptest server URL.
var searchEndpoint = "https://lite.duckduckgo.com/lite/"

// backoffBase is the initial wait after a blocked attempt. Tests shrink it.
var backoffBase = 2 * time.Second

// blockMarkers are body substrings that indicate a challenge or soft ban
// even when the surface answers 200.
var blockMarkers = []string{
	"captcha",
	"unusual traffic",
	"verify you are human",
	"detected unusual activity",
	"automated requests",
}

var (
	linkPattern    = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	linkPatternAlt = regexp.MustCompile(`<a[^>]*href=['"]([^'"]+)['"][^>]*class=['"]result-link['"][^>]*>([^<]+)</a>`)
	snippetPattern = regexp.MustCompile(`<td[^>]*class=['"]result-snippet['"][^>]*>([^<]+(?:<[^>]+>[^<]*</[^>]+>)*[^<]*)</td>`)
	tagPattern     = regexp.MustCompile(`<[^>]+>`)
)

// Client runs evasive searches. Safe for concurrent use; pacing is enforced
// process-wide across all callers.
type Client struct {
	cfg types.RetrievalConfig
	log *zap.Logger

	mu      sync.Mutex
	fpIndex int
	last    time.Time
	rng     *rand.Rand
}

// NewClient builds a search client. Zero MaxResults defaults to 10 and zero
// MaxAttempts to 3.
func NewClient(cfg types.RetrievalConfig, log *zap.Logger) *Client {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Client{cfg: cfg, log: log, fpIndex: rng.Intn(len(fingerprints)), rng: rng}
}

// nextFingerprint rotates through the identity pool.
func (c *Client) nextFingerprint() fingerprint {
	c.mu.Lock()
	defer c.mu.Unlock()
	fp := fingerprints[c.fpIndex%len(fingerprints)]
	c.fpIndex++
	return fp
}

// jitter draws a random duration in [0, n) under the client lock; the rng
// is shared with pace and must never be read unlocked.
func (c *Client) jitter(n time.Duration) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Duration(c.rng.Int63n(int64(n)))
}

// pace sleeps a randomized interval between requests. The first request of a
// process is not delayed.
func (c *Client) pace(ctx context.Context) error {
	c.mu.Lock()
	var wait time.Duration
	if !c.last.IsZero() && c.cfg.MaxDelay > 0 {
		wait = c.cfg.MinDelay
		if span := c.cfg.MaxDelay - c.cfg.MinDelay; span > 0 {
			wait += time.Duration(c.rng.Int63n(int64(span)))
		}
		if elapsed := time.Since(c.last); elapsed < wait {
			wait -= elapsed
		} else {
			wait = 0
		}
	}
	c.last = time.Now()
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Search runs a single query attempt and returns up to MaxResults candidates.
// A page with no results is not an error. Detection by the surface returns a
// blocked error; callers wanting retry use SearchWithBackoff.
func (c *Client) Search(ctx context.Context, query string) ([]types.SearchCandidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.Parse("empty search query")
	}
	if err := c.pace(ctx); err != nil {
		return nil, err
	}

	fp := c.nextFingerprint()

	// Fresh jar per query so sessions never correlate across queries.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUpstream, "cookie jar")
	}
	client := &http.Client{Jar: jar, Timeout: c.cfg.Timeout}

	form := url.Values{}
	form.Set("q", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, searchEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUpstream, "build search request")
	}
	req.Header.Set("User-Agent", fp.UserAgent)
	req.Header.Set("Accept-Language", fp.AcceptLanguage)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Viewport-Width", fp.headerValue())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "https://lite.duckduckgo.com/")

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTransient, "search request failed")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		io.Copy(io.Discard, resp.Body)
		return nil, errors.Blocked("search surface returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Upstream("search surface returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTransient, "read search response")
	}
	if blocked(string(body)) {
		return nil, errors.Blocked("search surface served a challenge page")
	}

	results := parseResults(string(body), c.cfg.MaxResults)
	c.log.Debug("search completed",
		zap.String("query", query),
		zap.Int("results", len(results)))
	return results, nil
}

// SearchWithBackoff retries a blocked query up to MaxAttempts times, rotating
// the fingerprint and doubling a jittered wait between attempts. Non-blocked
// errors abort immediately; an empty result page is a success.
func (c *Client) SearchWithBackoff(ctx context.Context, query string) ([]types.SearchCandidate, error) {
	var lastErr error
	delay := backoffBase
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			wait := delay + c.jitter(delay/4+1)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
			c.log.Info("retrying blocked search",
				zap.String("query", query),
				zap.Int("attempt", attempt+1))
		}
		results, err := c.Search(ctx, query)
		if err == nil {
			return results, nil
		}
		if !errors.IsBlocked(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// blocked reports whether a 200 body is actually a challenge page.
func blocked(body string) bool {
	lower := strings.ToLower(body)
	for _, marker := range blockMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// parseResults extracts candidates from the lite HTML page.
func parseResults(html string, limit int) []types.SearchCandidate {
	matches := linkPattern.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		matches = linkPatternAlt.FindAllStringSubmatch(html, -1)
	}
	snippets := snippetPattern.FindAllStringSubmatch(html, -1)

	var results []types.SearchCandidate
	for i, m := range matches {
		if len(m) < 3 {
			continue
		}
		u := strings.TrimSpace(m[1])
		title := cleanHTML(m[2])
		if u == "" || title == "" {
			continue
		}
		snippet := ""
		if i < len(snippets) && len(snippets[i]) > 1 {
			snippet = cleanHTML(snippets[i][1])
		}
		results = append(results, types.SearchCandidate{Title: title, URL: u, Snippet: snippet})
		if len(results) >= limit {
			break
		}
	}
	if len(results) == 0 {
		results = fallbackParse(html, limit)
	}
	return results
}

// fallbackParse handles markup drift: collect external links that look like
// results and dedupe by URL.
func fallbackParse(html string, limit int) []types.SearchCandidate {
	linkAny := regexp.MustCompile(`<a[^>]+href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	matches := linkAny.FindAllStringSubmatch(html, -1)

	seen := make(map[string]bool)
	var results []types.SearchCandidate
	for _, m := range matches {
		if len(m) < 3 {
			continue
		}
		u := strings.TrimSpace(m[1])
		title := cleanHTML(m[2])
		if strings.Contains(u, "duckduckgo.com") ||
			strings.HasPrefix(u, "/") ||
			strings.HasPrefix(u, "#") ||
			strings.HasPrefix(u, "javascript:") {
			continue
		}
		if len(title) < 5 || seen[u] {
			continue
		}
		seen[u] = true
		results = append(results, types.SearchCandidate{Title: title, URL: u})
		if len(results) >= limit {
			break
		}
	}
	return results
}

// cleanHTML strips tags and decodes the entities the lite page emits.
func cleanHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", "\"")
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.TrimSpace(s)
}
