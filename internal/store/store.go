// Package store persists user edits to catalog candidates in SQLite. Edits
// override the heuristic classification: a corrected title or year, a pinned
// TMDB id, or hiding an entry entirely.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mediadex/mediadex/internal/catalog"
)

const schemaOverrides = `
CREATE TABLE IF NOT EXISTS overrides (
	key TEXT PRIMARY KEY,
	title TEXT,
	year TEXT,
	tmdb_id INTEGER,
	hidden INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL
);`

// Override is one user edit, keyed by the candidate key it applies to.
type Override struct {
	Key    string
	Title  string
	Year   string
	TMDBID int64
	Hidden bool
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the overrides database at path. Pass
// ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.Exec(schemaOverrides); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put inserts or replaces the override for o.Key.
func (s *Store) Put(o Override) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store: missing database connection")
	}
	if o.Key == "" {
		return fmt.Errorf("store: override key must not be empty")
	}
	_, err := s.db.Exec(`
		INSERT INTO overrides (key, title, year, tmdb_id, hidden, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			title=excluded.title,
			year=excluded.year,
			tmdb_id=excluded.tmdb_id,
			hidden=excluded.hidden,
			updated_at=excluded.updated_at
	`, o.Key, o.Title, o.Year, o.TMDBID, boolInt(o.Hidden), time.Now().Unix())
	return err
}

// Get returns the override for key, or (nil, nil) when none exists.
func (s *Store) Get(key string) (*Override, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store: missing database connection")
	}
	row := s.db.QueryRow(`SELECT key, title, year, tmdb_id, hidden FROM overrides WHERE key = ?`, key)
	o, err := scanOverride(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// All returns every stored override, ordered by key.
func (s *Store) All() ([]Override, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store: missing database connection")
	}
	rows, err := s.db.Query(`SELECT key, title, year, tmdb_id, hidden FROM overrides ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Override
	for rows.Next() {
		o, err := scanOverride(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// Delete removes the override for key; deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store: missing database connection")
	}
	_, err := s.db.Exec(`DELETE FROM overrides WHERE key = ?`, key)
	return err
}

// Apply rewrites a catalog snapshot with the stored edits: hidden candidates
// are dropped, corrected titles and years replace the classifier's guess.
// Candidate keys are left untouched so later edits still resolve.
func (s *Store) Apply(shows []catalog.ShowCandidate, movies []catalog.MovieCandidate) ([]catalog.ShowCandidate, []catalog.MovieCandidate, error) {
	overrides, err := s.All()
	if err != nil {
		return nil, nil, err
	}
	byKey := make(map[string]Override, len(overrides))
	for _, o := range overrides {
		byKey[o.Key] = o
	}

	outShows := shows[:0:0]
	for _, sc := range shows {
		o, ok := byKey[sc.Key]
		if ok && o.Hidden {
			continue
		}
		if ok && o.Title != "" {
			sc.Title = o.Title
		}
		outShows = append(outShows, sc)
	}
	outMovies := movies[:0:0]
	for _, mc := range movies {
		o, ok := byKey[mc.Key]
		if ok && o.Hidden {
			continue
		}
		if ok {
			if o.Title != "" {
				mc.Title = o.Title
			}
			if o.Year != "" {
				mc.Year = o.Year
			}
		}
		outMovies = append(outMovies, mc)
	}
	return outShows, outMovies, nil
}

func scanOverride(scan func(dest ...any) error) (*Override, error) {
	var (
		o      Override
		hidden int
		tmdbID sql.NullInt64
		title  sql.NullString
		year   sql.NullString
	)
	if err := scan(&o.Key, &title, &year, &tmdbID, &hidden); err != nil {
		return nil, err
	}
	o.Title = title.String
	o.Year = year.String
	o.TMDBID = tmdbID.Int64
	o.Hidden = hidden != 0
	return &o, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
