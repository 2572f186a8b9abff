// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/inventor-scout/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{Path: filepath.Join(t.TempDir(), "results.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndListPatents(t *testing.T) {
	s := newTestStore(t)

	rec := &types.PatentRecord{
		PatentNumber:    "US7654321",
		Title:           "Battery management system",
		Inventors:       []string{"Jane Doe", "John Roe"},
		PublicationDate: time.Date(2020, 5, 12, 0, 0, 0, 0, time.UTC),
		Source:          "registry",
	}
	require.NoError(t, s.SavePatent(rec))

	records, err := s.Patents()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "US7654321", records[0].PatentNumber)
	assert.Equal(t, []string{"Jane Doe", "John Roe"}, records[0].Inventors)
	assert.Equal(t, rec.PublicationDate, records[0].PublicationDate)
}

func TestSavePatentUpserts(t *testing.T) {
	s := newTestStore(t)

	rec := &types.PatentRecord{PatentNumber: "US7654321", Title: "Old title"}
	require.NoError(t, s.SavePatent(rec))
	rec.Title = "New title"
	require.NoError(t, s.SavePatent(rec))

	records, err := s.Patents()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "New title", records[0].Title)
}

func TestSaveAndListAnalyses(t *testing.T) {
	s := newTestStore(t)

	a := &types.InventorAnalysis{
		PatentNumber:     "US7654321",
		InventorName:     "Jane Doe",
		SearchStrategy:   "unique name",
		SearchTerms:      []string{"Jane Doe Acme"},
		CandidateURLs:    []string{"https://www.linkedin.com/in/jane-doe"},
		ProfileURL:       "https://www.linkedin.com/in/jane-doe",
		Confidence:       0.9,
		EmailSuggestions: []string{"jdoe@acme.com"},
		CreatedAt:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveAnalysis(a))

	analyses, err := s.Analyses()
	require.NoError(t, err)
	require.Len(t, analyses, 1)
	got := analyses[0]
	assert.Equal(t, a.InventorName, got.InventorName)
	assert.Equal(t, a.SearchTerms, got.SearchTerms)
	assert.Equal(t, a.ProfileURL, got.ProfileURL)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)
	assert.Equal(t, a.CreatedAt, got.CreatedAt)
}

func TestSaveAnalysisUpsertsPerInventor(t *testing.T) {
	s := newTestStore(t)

	a := &types.InventorAnalysis{PatentNumber: "US7654321", InventorName: "Jane Doe", Confidence: 0.2}
	require.NoError(t, s.SaveAnalysis(a))
	a.Confidence = 0.8
	require.NoError(t, s.SaveAnalysis(a))

	b := &types.InventorAnalysis{PatentNumber: "US7654321", InventorName: "John Roe"}
	require.NoError(t, s.SaveAnalysis(b))

	analyses, err := s.Analyses()
	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.InDelta(t, 0.8, analyses[0].Confidence, 1e-9)
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	s, err := NewStore(types.StoreConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, s.SavePatent(&types.PatentRecord{PatentNumber: "US1234567", Title: "First"}))
	require.NoError(t, s.Close())

	s, err = NewStore(types.StoreConfig{Path: path})
	require.NoError(t, err)
	defer s.Close()

	records, err := s.Patents()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "First", records[0].Title)
}
