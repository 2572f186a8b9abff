// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists fetched patents and completed analyses in a SQLite
// database so batch runs accumulate results for later export.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/meshintel/inventor-scout/pkg/types"
)

// Store manages the results SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the results database at cfg.Path, creating the
// schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = "inventor-scout.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS patents (
			patent_number TEXT PRIMARY KEY,
			title TEXT,
			inventors TEXT,
			publication_date TEXT,
			source TEXT,
			fetched_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS analyses (
			patent_number TEXT NOT NULL,
			inventor_name TEXT NOT NULL,
			search_strategy TEXT,
			search_terms TEXT,
			candidate_urls TEXT,
			profile_url TEXT,
			confidence REAL,
			email_suggestions TEXT,
			repo_search_terms TEXT,
			created_at TEXT,
			PRIMARY KEY (patent_number, inventor_name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_patent ON analyses(patent_number)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SavePatent upserts one fetched record. Refetching a patent replaces the
// stored row.
func (s *Store) SavePatent(rec *types.PatentRecord) error {
	inventorsJSON, _ := json.Marshal(rec.Inventors)
	dateStr := ""
	if !rec.PublicationDate.IsZero() {
		dateStr = rec.PublicationDate.Format(time.RFC3339)
	}
	_, err := s.db.Exec(
		`INSERT INTO patents (patent_number, title, inventors, publication_date, source, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(patent_number) DO UPDATE SET
			title=excluded.title, inventors=excluded.inventors,
			publication_date=excluded.publication_date, source=excluded.source,
			fetched_at=excluded.fetched_at`,
		rec.PatentNumber, rec.Title, string(inventorsJSON), dateStr,
		rec.Source, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting patent %s: %w", rec.PatentNumber, err)
	}
	return nil
}

// SaveAnalysis upserts one completed analysis, keyed by (patent, inventor).
func (s *Store) SaveAnalysis(a *types.InventorAnalysis) error {
	termsJSON, _ := json.Marshal(a.SearchTerms)
	candidatesJSON, _ := json.Marshal(a.CandidateURLs)
	emailsJSON, _ := json.Marshal(a.EmailSuggestions)
	reposJSON, _ := json.Marshal(a.RepoSearchTerms)
	_, err := s.db.Exec(
		`INSERT INTO analyses (patent_number, inventor_name, search_strategy, search_terms,
			candidate_urls, profile_url, confidence, email_suggestions, repo_search_terms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(patent_number, inventor_name) DO UPDATE SET
			search_strategy=excluded.search_strategy, search_terms=excluded.search_terms,
			candidate_urls=excluded.candidate_urls, profile_url=excluded.profile_url,
			confidence=excluded.confidence, email_suggestions=excluded.email_suggestions,
			repo_search_terms=excluded.repo_search_terms, created_at=excluded.created_at`,
		a.PatentNumber, a.InventorName, a.SearchStrategy, string(termsJSON),
		string(candidatesJSON), a.ProfileURL, a.Confidence,
		string(emailsJSON), string(reposJSON), a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting analysis %s/%s: %w", a.PatentNumber, a.InventorName, err)
	}
	return nil
}

// Patents returns all stored records ordered by patent number.
func (s *Store) Patents() ([]types.PatentRecord, error) {
	rows, err := s.db.Query(
		`SELECT patent_number, title, inventors, publication_date, source FROM patents ORDER BY patent_number`)
	if err != nil {
		return nil, fmt.Errorf("querying patents: %w", err)
	}
	defer rows.Close()

	var records []types.PatentRecord
	for rows.Next() {
		var rec types.PatentRecord
		var inventorsJSON, dateStr string
		if err := rows.Scan(&rec.PatentNumber, &rec.Title, &inventorsJSON, &dateStr, &rec.Source); err != nil {
			return nil, fmt.Errorf("scanning patent row: %w", err)
		}
		if err := json.Unmarshal([]byte(inventorsJSON), &rec.Inventors); err != nil {
			return nil, fmt.Errorf("parsing inventors for %s: %w", rec.PatentNumber, err)
		}
		if dateStr != "" {
			rec.PublicationDate, _ = time.Parse(time.RFC3339, dateStr)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Analyses returns all stored analyses ordered by patent number and inventor.
func (s *Store) Analyses() ([]types.InventorAnalysis, error) {
	rows, err := s.db.Query(
		`SELECT patent_number, inventor_name, search_strategy, search_terms, candidate_urls,
			profile_url, confidence, email_suggestions, repo_search_terms, created_at
		 FROM analyses ORDER BY patent_number, inventor_name`)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var analyses []types.InventorAnalysis
	for rows.Next() {
		var a types.InventorAnalysis
		var termsJSON, candidatesJSON, emailsJSON, reposJSON, createdStr string
		err := rows.Scan(&a.PatentNumber, &a.InventorName, &a.SearchStrategy, &termsJSON,
			&candidatesJSON, &a.ProfileURL, &a.Confidence, &emailsJSON, &reposJSON, &createdStr)
		if err != nil {
			return nil, fmt.Errorf("scanning analysis row: %w", err)
		}
		json.Unmarshal([]byte(termsJSON), &a.SearchTerms)
		json.Unmarshal([]byte(candidatesJSON), &a.CandidateURLs)
		json.Unmarshal([]byte(emailsJSON), &a.EmailSuggestions)
		json.Unmarshal([]byte(reposJSON), &a.RepoSearchTerms)
		if createdStr != "" {
			a.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}
