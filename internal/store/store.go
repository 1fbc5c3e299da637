// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists augmented values (scraped prices) keyed by result
// link in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/metasearch/pkg/types"
)

const defaultListLimit = 50

// timeFormat is fixed-width so fetched_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNoRecord is returned by Get when the link has no stored value.
var ErrNoRecord = errors.New("no stored value")

// Record is one stored augmentation result.
type Record struct {
	Link      string    `json:"link" yaml:"link"`
	Value     string    `json:"value" yaml:"value"`
	Rule      string    `json:"rule" yaml:"rule"`
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// Store manages the price cache database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at cfg.Path and creates the schema if
// it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
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
		`CREATE TABLE IF NOT EXISTS prices (
			link TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			rule TEXT,
			fetched_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_fetched_at ON prices(fetched_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Put upserts a record. A zero FetchedAt is stamped with the current time.
func (s *Store) Put(ctx context.Context, r Record) error {
	if r.Link == "" {
		return fmt.Errorf("record link is empty")
	}
	if r.FetchedAt.IsZero() {
		r.FetchedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prices (link, value, rule, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(link) DO UPDATE SET
			value=excluded.value, rule=excluded.rule, fetched_at=excluded.fetched_at`,
		r.Link, r.Value, r.Rule, r.FetchedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("upserting price for %s: %w", r.Link, err)
	}
	return nil
}

// Get returns the record for link, or ErrNoRecord.
func (s *Store) Get(ctx context.Context, link string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT link, value, rule, fetched_at FROM prices WHERE link = ?`, link)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNoRecord
	}
	if err != nil {
		return Record{}, fmt.Errorf("reading price for %s: %w", link, err)
	}
	return r, nil
}

// List returns the most recently fetched records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT link, value, rule, fetched_at FROM prices ORDER BY fetched_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing prices: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning price row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Prune deletes records fetched before now minus olderThan and returns how
// many were removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan).UTC().Format(timeFormat)
	res, err := s.db.ExecContext(ctx, `DELETE FROM prices WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning prices: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		r       Record
		rule    sql.NullString
		fetched string
	)
	if err := sc.Scan(&r.Link, &r.Value, &rule, &fetched); err != nil {
		return Record{}, err
	}
	r.Rule = rule.String
	t, err := time.Parse(timeFormat, fetched)
	if err != nil {
		return Record{}, fmt.Errorf("parsing fetched_at %q: %w", fetched, err)
	}
	r.FetchedAt = t
	return r, nil
}
