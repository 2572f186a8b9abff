// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry fetches and normalizes patent records from the public
// patent registry, with a cache-first lookup so a repeated fetch never
// touches the network.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/meshintel/inventor-scout/internal/cache"
	"github.com/meshintel/inventor-scout/internal/httputil"
	"github.com/meshintel/inventor-scout/pkg/errors"
	"github.com/meshintel/inventor-scout/pkg/types"
)

// registryAPIBase is the patent registry search endpoint. Declared as a var
// so tests can substitute an httptest server.
var registryAPIBase = "https://search.patentsview.org/api/v1/patent/"

// registryFields lists the fields requested from the API.
const registryFields = `["patent_id","patent_title","patent_date","inventors.inventor_name_first","inventors.inventor_name_last"]`

// patentPattern matches US patent identifiers with an optional kind code:
// "US7654321", "7654321", "US7654321B2", "US20230012345A1".
var patentPattern = regexp.MustCompile(`^(?:US)?(\d{6,11})(?:[A-Z]\d{0,2})?$`)

// Client looks up patent records. All lookups go through the cache store's
// registry domain.
type Client struct {
	http  *http.Client
	cache *cache.Store
	cfg   types.RegistryConfig
	log   *zap.Logger
}

// NewClient builds a registry client around the given cache store.
func NewClient(cacheStore *cache.Store, cfg types.RegistryConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		http:  &http.Client{Timeout: cfg.Timeout},
		cache: cacheStore,
		cfg:   cfg,
		log:   log,
	}
}

// Canonical normalizes a raw identifier to the canonical "US<digits>" form
// used as the registry cache key. It fails with a not-found error for
// identifiers that cannot name a patent.
func Canonical(identifier string) (string, error) {
	id := strings.ToUpper(strings.TrimSpace(identifier))
	m := patentPattern.FindStringSubmatch(id)
	if m == nil {
		return "", errors.NotFound("%q is not a recognizable patent number", identifier)
	}
	return "US" + m[1], nil
}

// Fetch returns the record for patentNumber, consulting the cache first.
// On a cache hit no network access occurs. Errors carry the taxonomy codes:
// not_found for unknown identifiers, parse for schema drift, transient for
// network and rate-limit conditions.
func (c *Client) Fetch(ctx context.Context, patentNumber string) (*types.PatentRecord, error) {
	canonical, err := Canonical(patentNumber)
	if err != nil {
		return nil, err
	}

	var cached types.PatentRecord
	if c.cache.Get(cache.DomainRegistry, canonical, &cached) {
		return &cached, nil
	}

	record, err := c.fetchRemote(ctx, canonical)
	if err != nil {
		return nil, err
	}

	// A cache write failure degrades to refetch-next-time; the record
	// itself is good.
	if err := c.cache.Put(cache.DomainRegistry, canonical, record); err != nil {
		c.log.Warn("registry cache write failed",
			zap.String("patent", canonical),
			zap.Error(err))
	}
	return record, nil
}

// registry API JSON structures.
type registryResponse struct {
	Patents []registryPatent `json:"patents"`
}

type registryPatent struct {
	PatentTitle string             `json:"patent_title"`
	PatentDate  string             `json:"patent_date"`
	Inventors   []registryInventor `json:"inventors"`
}

type registryInventor struct {
	First string `json:"inventor_name_first"`
	Last  string `json:"inventor_name_last"`
}

func (c *Client) fetchRemote(ctx context.Context, canonical string) (*types.PatentRecord, error) {
	q := fmt.Sprintf(`{"patent_id":"%s"}`, strings.TrimPrefix(canonical, "US"))
	params := url.Values{
		"q": {q},
		"f": {registryFields},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, registryAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if c.cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", c.cfg.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTransient, "registry request for %s", canonical)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.NotFound("no registry record for %s", canonical)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, errors.Transient("registry returned HTTP %d for %s", resp.StatusCode, canonical)
	case resp.StatusCode != http.StatusOK:
		return nil, errors.Parse("registry returned unexpected HTTP %d for %s", resp.StatusCode, canonical)
	}

	var rr registryResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, errors.Wrap(err, errors.CodeParse, "decoding registry response for %s", canonical)
	}

	if len(rr.Patents) == 0 {
		return nil, errors.NotFound("no registry record for %s", canonical)
	}

	p := rr.Patents[0]
	record := &types.PatentRecord{
		PatentNumber: canonical,
		Title:        strings.TrimSpace(p.PatentTitle),
		Inventors:    FilterInventors(inventorNames(p.Inventors)),
		Source:       "registry",
	}

	if p.PatentDate != "" {
		if t, parseErr := time.Parse("2006-01-02", p.PatentDate); parseErr == nil {
			record.PublicationDate = t
		}
	}

	return record, nil
}

// inventorNames joins the per-inventor name fields into display names,
// preserving registry order.
func inventorNames(inventors []registryInventor) []string {
	names := make([]string, 0, len(inventors))
	for _, inv := range inventors {
		names = append(names, strings.TrimSpace(inv.First+" "+inv.Last))
	}
	return names
}
