// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists registry records and inventor analyses as
// key-addressed YAML files. Entries never expire; a corrupted or unreadable
// entry is treated as a miss so callers simply re-fetch.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// Domain names one of the two independent cache namespaces.
type Domain string

const (
	DomainRegistry Domain = "registry"
	DomainAnalysis Domain = "analysis"
)

// entry is the on-disk envelope around a cached payload. CreatedAt is
// diagnostic only and never drives eviction.
type entry struct {
	Key       string    `yaml:"key"`
	Domain    string    `yaml:"domain"`
	CreatedAt time.Time `yaml:"created_at"`
	Payload   yaml.Node `yaml:"payload"`
}

// Store is a two-domain file cache rooted at a single directory. One
// pipeline process per directory; cross-process sharing is not guaranteed.
type Store struct {
	dir string
}

// NewStore creates the domain subdirectories under dir and returns the store.
func NewStore(dir string) (*Store, error) {
	for _, d := range []Domain{DomainRegistry, DomainAnalysis} {
		if err := os.MkdirAll(filepath.Join(dir, string(d)), 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}
	return &Store{dir: dir}, nil
}

// path maps (domain, key) to the entry file.
func (s *Store) path(domain Domain, key string) string {
	return filepath.Join(s.dir, string(domain), key+".yaml")
}

// Exists reports whether a readable, well-formed entry is present.
func (s *Store) Exists(domain Domain, key string) bool {
	return s.Get(domain, key, &struct{}{})
}

// Get loads the entry payload into out. It returns false on a missing,
// unreadable, or corrupted entry; it never surfaces corruption as an error.
func (s *Store) Get(domain Domain, key string, out any) bool {
	data, err := os.ReadFile(s.path(domain, key))
	if err != nil {
		return false
	}

	var e entry
	if err := yaml.Unmarshal(data, &e); err != nil {
		return false
	}
	if e.Key != key {
		return false
	}
	if err := e.Payload.Decode(out); err != nil {
		return false
	}
	return true
}

// Put durably writes value under (domain, key). The entry is written to a
// temp file in the same directory and renamed into place so a crash
// mid-write never leaves a partial entry behind. Last write wins.
func (s *Store) Put(domain Domain, key string, value any) error {
	var payload yaml.Node
	if err := payload.Encode(value); err != nil {
		return fmt.Errorf("encoding cache payload: %w", err)
	}

	data, err := yaml.Marshal(entry{
		Key:       key,
		Domain:    string(domain),
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	dest := s.path(domain, key)
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing cache entry: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming cache entry: %w", err)
	}
	return nil
}

// Stats counts stored entries per domain.
func (s *Store) Stats() (map[Domain]int, error) {
	stats := make(map[Domain]int)
	for _, d := range []Domain{DomainRegistry, DomainAnalysis} {
		entries, err := os.ReadDir(filepath.Join(s.dir, string(d)))
		if err != nil {
			return nil, fmt.Errorf("reading cache domain %s: %w", d, err)
		}
		n := 0
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
				n++
			}
		}
		stats[d] = n
	}
	return stats, nil
}

// Clear removes every entry in the domain and returns the number removed.
func (s *Store) Clear(domain Domain) (int, error) {
	dir := filepath.Join(s.dir, string(domain))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading cache domain %s: %w", domain, err)
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return removed, fmt.Errorf("removing cache entry %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}

// AnalysisKey builds the deterministic, filename-safe key for a
// (patent number, inventor name) pair.
func AnalysisKey(patentNumber, inventorName string) string {
	return patentNumber + "--" + slugify(inventorName)
}

// slugify lowercases s and maps every run of non-alphanumeric characters
// to a single hyphen.
func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
