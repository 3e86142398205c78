package sqlite

import (
	"database/sql"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// SQLite is a single-file repository for local runs. All methods are safe
// for concurrent use.
type SQLite struct {
	db       *sql.DB
	mu       sync.RWMutex
	timeline *timelineRepository
}

var _ interfaces.Repository = &SQLite{}

// New opens the database at dbPath and creates tables if they don't exist.
// File databases use WAL journaling.
func New(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", dbPath))
	}

	// every connection to :memory: gets its own database, so pin the pool
	// to a single connection
	if dbPath == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ping sqlite database", goerr.V("path", dbPath))
	}

	if dbPath != MemoryPath {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, goerr.Wrap(err, "failed to enable WAL mode", goerr.V("path", dbPath))
		}
	}

	s := &SQLite{db: db}
	s.timeline = &timelineRepository{db: db, mu: &s.mu}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLite) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS timelines (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		body TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_timelines_created ON timelines(created_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return goerr.Wrap(err, "failed to create tables")
	}
	return nil
}

func (s *SQLite) Timeline() interfaces.TimelineRepository {
	return s.timeline
}

// Close waits for in-flight operations before closing the database
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
