// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/inventor-scout/pkg/types"
)

func TestPutGetRoundTrip(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	rec := types.PatentRecord{
		PatentNumber:    "US7654321",
		Title:           "Method for testing patents",
		Inventors:       []string{"Jane Doe", "John Q. Public"},
		PublicationDate: time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC),
		Source:          "registry",
	}
	require.NoError(t, s.Put(DomainRegistry, rec.PatentNumber, rec))

	var got types.PatentRecord
	require.True(t, s.Get(DomainRegistry, "US7654321", &got))
	assert.Equal(t, rec, got)
}

func TestGetMissingKey(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	var got types.PatentRecord
	assert.False(t, s.Get(DomainRegistry, "US0000000", &got))
	assert.False(t, s.Exists(DomainRegistry, "US0000000"))
}

func TestDomainsAreIndependent(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(DomainRegistry, "key1", "registry value"))

	var out string
	assert.False(t, s.Get(DomainAnalysis, "key1", &out))
	assert.True(t, s.Get(DomainRegistry, "key1", &out))
	assert.Equal(t, "registry value", out)
}

func TestCorruptedEntryIsAMiss(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(DomainRegistry, "US7654321", "good"))

	// Clobber the entry with bytes that are not a valid envelope.
	path := filepath.Join(dir, "registry", "US7654321.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{{not yaml"), 0o644))

	var out string
	assert.False(t, s.Get(DomainRegistry, "US7654321", &out))
	assert.False(t, s.Exists(DomainRegistry, "US7654321"))
}

func TestEntrySurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(DomainAnalysis, "US7654321--jane-doe", map[string]string{"a": "b"}))

	reopened, err := NewStore(dir)
	require.NoError(t, err)

	var out map[string]string
	require.True(t, reopened.Get(DomainAnalysis, "US7654321--jane-doe", &out))
	assert.Equal(t, "b", out["a"])
}

func TestLastWriteWins(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(DomainRegistry, "k", "first"))
	require.NoError(t, s.Put(DomainRegistry, "k", "second"))

	var out string
	require.True(t, s.Get(DomainRegistry, "k", &out))
	assert.Equal(t, "second", out)
}

func TestAnalysisKey(t *testing.T) {
	tests := []struct {
		patent, inventor, want string
	}{
		{"US7654321", "Jane Doe", "US7654321--jane-doe"},
		{"US7654321", "John Q. Public", "US7654321--john-q-public"},
		{"US123", "  Élan  O'Neill ", "US123--lan-o-neill"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AnalysisKey(tt.patent, tt.inventor))
	}
}

func TestStatsCountsPerDomain(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(DomainRegistry, "US1", "a"))
	require.NoError(t, s.Put(DomainRegistry, "US2", "b"))
	require.NoError(t, s.Put(DomainAnalysis, "US1--jane-doe", "c"))

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats[DomainRegistry])
	assert.Equal(t, 1, stats[DomainAnalysis])
}

func TestClearRemovesOnlyTheDomain(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(DomainRegistry, "US1", "a"))
	require.NoError(t, s.Put(DomainRegistry, "US2", "b"))
	require.NoError(t, s.Put(DomainAnalysis, "US1--jane-doe", "c"))

	removed, err := s.Clear(DomainRegistry)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	var out string
	assert.False(t, s.Exists(DomainRegistry, "US1"))
	assert.True(t, s.Get(DomainAnalysis, "US1--jane-doe", &out))

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats[DomainRegistry])
	assert.Equal(t, 1, stats[DomainAnalysis])
}

func TestClearEmptyDomain(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	removed, err := s.Clear(DomainAnalysis)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestNoPartialFileAfterPut(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(DomainRegistry, "k", "v"))

	entries, err := os.ReadDir(filepath.Join(dir, "registry"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "k.yaml", entries[0].Name())
}
