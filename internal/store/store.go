// Package store persists compiled test cases in a local SQLite database.
// The pipeline itself never touches it: the CLI records compile results and
// imports pass/fail outcomes after runs, so the store is bookkeeping around
// the core, not part of it.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	forgeerrors "specforge/internal/errors"
	"specforge/internal/logging"
	"specforge/internal/types"
)

// Store wraps the SQLite handle. Safe for concurrent use.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// New opens (creating if needed) the database at the given path.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.StoreDebug("opened test-case store at %s", path)
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS test_cases (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		instruction TEXT NOT NULL,
		domain TEXT NOT NULL,
		template TEXT NOT NULL,
		script TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_test_cases_domain ON test_cases(domain);
	CREATE INDEX IF NOT EXISTS idx_test_cases_status ON test_cases(status);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close releases the database. Every later call on the store reports the
// closed-store error.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

var validStatus = map[types.TestStatus]bool{
	types.StatusGenerated: true,
	types.StatusPassed:    true,
	types.StatusFailed:    true,
	types.StatusSkipped:   true,
}

const caseColumns = "id, name, instruction, domain, template, script, status, created_at, updated_at"

// Record upserts a test case and returns its ID. A missing ID, status or
// timestamp is filled in: fresh uuid, generated status, current time.
func (s *Store) Record(tc types.TestCase) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", forgeerrors.ErrStoreClosed
	}

	if tc.ID == "" {
		tc.ID = uuid.NewString()
	}
	if tc.Status == "" {
		tc.Status = types.StatusGenerated
	}
	now := time.Now().UTC()
	if tc.CreatedAt.IsZero() {
		tc.CreatedAt = now
	}
	if tc.UpdatedAt.IsZero() {
		tc.UpdatedAt = now
	}

	_, err := s.db.Exec(
		`INSERT INTO test_cases (`+caseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		 name = excluded.name,
		 instruction = excluded.instruction,
		 domain = excluded.domain,
		 template = excluded.template,
		 script = excluded.script,
		 status = excluded.status,
		 updated_at = excluded.updated_at`,
		tc.ID, tc.Name, tc.Instruction, string(tc.Domain), tc.Template, tc.Script,
		string(tc.Status), formatTime(tc.CreatedAt), formatTime(tc.UpdatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record test case: %w", err)
	}

	logging.Audit().StoreRecord(tc.ID, tc.Name)
	logging.StoreDebug("recorded test case %s (%s)", tc.ID, tc.Name)
	return tc.ID, nil
}

// Get retrieves one test case by ID.
func (s *Store) Get(id string) (types.TestCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return types.TestCase{}, forgeerrors.ErrStoreClosed
	}

	row := s.db.QueryRow("SELECT "+caseColumns+" FROM test_cases WHERE id = ?", id)
	tc, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.TestCase{}, fmt.Errorf("%w: test case %q", forgeerrors.ErrNotFound, id)
	}
	if err != nil {
		return types.TestCase{}, fmt.Errorf("failed to load test case: %w", err)
	}
	return tc, nil
}

// List returns the most recently recorded cases, newest first. A
// non-positive limit selects the default of 50.
func (s *Store) List(limit int) ([]types.TestCase, error) {
	return s.list("SELECT "+caseColumns+" FROM test_cases ORDER BY rowid DESC LIMIT ?", normalizeLimit(limit))
}

// ListByStatus returns the most recent cases in a given status, newest
// first.
func (s *Store) ListByStatus(status types.TestStatus, limit int) ([]types.TestCase, error) {
	return s.list("SELECT "+caseColumns+" FROM test_cases WHERE status = ? ORDER BY rowid DESC LIMIT ?",
		string(status), normalizeLimit(limit))
}

func (s *Store) list(query string, args ...interface{}) ([]types.TestCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, forgeerrors.ErrStoreClosed
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list test cases: %w", err)
	}
	defer rows.Close()

	var cases []types.TestCase
	for rows.Next() {
		tc, err := scanCase(rows)
		if err != nil {
			continue
		}
		cases = append(cases, tc)
	}
	return cases, rows.Err()
}

// UpdateStatus moves a case to a new lifecycle status and stamps the update
// time. The previous status lands in the audit trail.
func (s *Store) UpdateStatus(id string, status types.TestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return forgeerrors.ErrStoreClosed
	}
	if !validStatus[status] {
		return fmt.Errorf("%w: unknown test status %q", forgeerrors.ErrParsing, status)
	}

	var from string
	err := s.db.QueryRow("SELECT status FROM test_cases WHERE id = ?", id).Scan(&from)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: test case %q", forgeerrors.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to read current status: %w", err)
	}

	_, err = s.db.Exec("UPDATE test_cases SET status = ?, updated_at = ? WHERE id = ?",
		string(status), formatTime(time.Now().UTC()), id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	logging.Audit().StoreStatus(id, from, string(status))
	logging.StoreDebug("status of %s: %s -> %s", id, from, status)
	return nil
}

// Stats counts stored cases per status.
func (s *Store) Stats() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, forgeerrors.ErrStoreClosed
	}

	rows, err := s.db.Query("SELECT status, COUNT(*) FROM test_cases GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count test cases: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			continue
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func scanCase(row interface{ Scan(...interface{}) error }) (types.TestCase, error) {
	var tc types.TestCase
	var domain, status, created, updated string
	if err := row.Scan(&tc.ID, &tc.Name, &tc.Instruction, &domain, &tc.Template,
		&tc.Script, &status, &created, &updated); err != nil {
		return types.TestCase{}, err
	}
	tc.Domain = types.Domain(domain)
	tc.Status = types.TestStatus(status)
	tc.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	tc.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return tc, nil
}
