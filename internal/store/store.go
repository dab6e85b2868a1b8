// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists resolved trend records and scraped page metadata
// in a local SQLite database. Writes are whole-record upserts keyed by the
// case-folded keyword (or URL); concurrent writers for the same key race
// benignly with last-write-wins semantics. Staleness is a read-time
// predicate evaluated by callers, never a background sweep.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trend-engine/pkg/types"
)

const dbFile = "trends.db"

// Store manages the trend cache SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at dataDir/trends.db and creates the
// schema if it does not exist.
func Open(cfg types.CacheConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
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
		`CREATE TABLE IF NOT EXISTS trends (
			keyword TEXT PRIMARY KEY,
			display_keyword TEXT NOT NULL,
			category TEXT NOT NULL,
			momentum_score INTEGER NOT NULL,
			search_volume INTEGER NOT NULL,
			related_keywords TEXT NOT NULL,
			historical_data TEXT NOT NULL,
			source TEXT NOT NULL,
			resolved_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS page_metadata (
			url TEXT PRIMARY KEY,
			title TEXT,
			description TEXT,
			image_url TEXT,
			fetched_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Get returns the cached record for the keyword, or nil when absent.
// The keyword is case-folded before lookup.
func (s *Store) Get(ctx context.Context, keyword string) (*types.TrendRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT display_keyword, category, momentum_score, search_volume,
		        related_keywords, historical_data, source, resolved_at
		 FROM trends WHERE keyword = ?`,
		types.NormalizeKeyword(keyword),
	)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading trend %q: %w", keyword, err)
	}
	return rec, nil
}

// Put upserts the record under its case-folded keyword. The write replaces
// the whole row; a prior record for the same keyword is overwritten.
func (s *Store) Put(ctx context.Context, rec types.TrendRecord) error {
	relatedJSON, err := json.Marshal(rec.RelatedKeywords)
	if err != nil {
		return fmt.Errorf("encoding related keywords: %w", err)
	}
	historyJSON, err := json.Marshal(rec.HistoricalData)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO trends (keyword, display_keyword, category, momentum_score,
		                     search_volume, related_keywords, historical_data,
		                     source, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(keyword) DO UPDATE SET
			display_keyword=excluded.display_keyword,
			category=excluded.category,
			momentum_score=excluded.momentum_score,
			search_volume=excluded.search_volume,
			related_keywords=excluded.related_keywords,
			historical_data=excluded.historical_data,
			source=excluded.source,
			resolved_at=excluded.resolved_at`,
		rec.CacheKey(), rec.Keyword, rec.Category, rec.MomentumScore,
		rec.SearchVolume, string(relatedJSON), string(historyJSON),
		string(rec.Source), rec.ResolvedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing trend %q: %w", rec.Keyword, err)
	}
	return nil
}

// List returns all cached records ordered by resolution time, newest first.
func (s *Store) List(ctx context.Context) ([]types.TrendRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT display_keyword, category, momentum_score, search_volume,
		        related_keywords, historical_data, source, resolved_at
		 FROM trends ORDER BY resolved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing trends: %w", err)
	}
	defer rows.Close()

	var records []types.TrendRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning trend row: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Count returns the number of cached trend records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM trends`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting trends: %w", err)
	}
	return n, nil
}

// ExportYAML writes all cached records to path as a YAML document.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	records, err := s.List(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(struct {
		Trends []types.TrendRecord `yaml:"trends"`
	}{Trends: records})
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes all cached records to path as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	records, err := s.List(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(struct {
		Trends []types.TrendRecord `json:"trends"`
	}{Trends: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// GetMetadata returns the cached metadata for the URL, or nil when absent.
func (s *Store) GetMetadata(ctx context.Context, url string) (*types.PageMetadata, error) {
	var m types.PageMetadata
	var fetchedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT url, title, description, image_url, fetched_at
		 FROM page_metadata WHERE url = ?`, url,
	).Scan(&m.URL, &m.Title, &m.Description, &m.ImageURL, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading metadata %q: %w", url, err)
	}
	m.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing fetched_at for %q: %w", url, err)
	}
	return &m, nil
}

// PutMetadata upserts scraped metadata keyed by URL.
func (s *Store) PutMetadata(ctx context.Context, m types.PageMetadata) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO page_metadata (url, title, description, image_url, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
			title=excluded.title, description=excluded.description,
			image_url=excluded.image_url, fetched_at=excluded.fetched_at`,
		m.URL, m.Title, m.Description, m.ImageURL,
		m.FetchedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing metadata %q: %w", m.URL, err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*types.TrendRecord, error) {
	var rec types.TrendRecord
	var relatedJSON, historyJSON, source, resolvedAt string

	if err := row.Scan(&rec.Keyword, &rec.Category, &rec.MomentumScore,
		&rec.SearchVolume, &relatedJSON, &historyJSON, &source, &resolvedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(relatedJSON), &rec.RelatedKeywords); err != nil {
		return nil, fmt.Errorf("decoding related keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(historyJSON), &rec.HistoricalData); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}

	rec.Source = types.Source(source)
	t, err := time.Parse(time.RFC3339Nano, resolvedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing resolved_at: %w", err)
	}
	rec.ResolvedAt = t
	return &rec, nil
}
