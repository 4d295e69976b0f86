// Package memory provides the durable question/answer store.
// It handles SQLite persistence, upsert-on-teach semantics, and snapshot
// export notification.
package memory

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qt-konan/zeroiq-bot/errors"
)

// Entry is the atomic unit of knowledge: one taught question/answer pair.
// Question is the raw trimmed text as typed and acts as the unique key.
type Entry struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	TaughtBy  string    `json:"taught_by,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Exporter receives the full entry set after every successful upsert.
// Export failures are logged as warnings and never fail the triggering
// write; the snapshot is best-effort, the database is authoritative.
type Exporter interface {
	Export(ctx context.Context, entries []Entry) error
}

// Query constants
const (
	upsertQuery = `
		INSERT INTO memory (question, answer, taught_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(question) DO UPDATE SET
			answer = excluded.answer,
			taught_by = excluded.taught_by,
			updated_at = excluded.updated_at`

	lookupQuery = `SELECT answer FROM memory WHERE question = ?`

	allQuery = `
		SELECT question, answer, taught_by, created_at, updated_at
		FROM memory ORDER BY question`

	countQuery = `SELECT COUNT(*) FROM memory`
)

// Store is the durable mapping from question text to answer text.
// It is the sole writer of the persisted representation. A single RWMutex
// serializes writes against full scans so a concurrent learn and query can
// never produce a torn read.
type Store struct {
	db       *sql.DB
	logger   *zap.SugaredLogger
	exporter Exporter

	mu sync.RWMutex
}

// NewStore creates a store over an opened, migrated database.
// logger may be nil for silent operation.
func NewStore(db *sql.DB, logger *zap.SugaredLogger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

// SetExporter registers the snapshot exporter notified after each
// successful upsert. Pass nil to disable exporting.
func (s *Store) SetExporter(exporter Exporter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exporter = exporter
}

// Upsert writes or overwrites the answer for a question. Both fields are
// trimmed; last write wins, no history. On success the full store is
// exported to the snapshot sink before returning, so the snapshot is
// always a same-or-newer view of the database.
func (s *Store) Upsert(ctx context.Context, question, answer, taughtBy string) error {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" {
		return errors.New("question is required")
	}
	if answer == "" {
		return errors.New("answer is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, upsertQuery, question, answer, taughtBy, now, now); err != nil {
		return errors.WrapPersistence(err, "upsert memory entry")
	}

	if s.logger != nil {
		s.logger.Infow("Learned entry",
			"question", question,
			"taught_by", taughtBy,
		)
	}

	s.exportLocked(ctx)
	return nil
}

// exportLocked pushes the current entry set to the exporter. Caller holds
// the write lock, so the exported set cannot drift from what was written.
func (s *Store) exportLocked(ctx context.Context) {
	if s.exporter == nil {
		return
	}

	entries, err := s.allLocked(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Warnw("Snapshot export skipped: cannot read entries", "error", err)
		}
		return
	}

	if err := s.exporter.Export(ctx, entries); err != nil {
		// Export failure never rolls back or surfaces to the asker
		if s.logger != nil {
			s.logger.Warnw("Snapshot export failed", "error", err, "entries", len(entries))
		}
	}
}

// All returns every stored pair ordered by question. The order is stable
// for an unmutated store, which also keeps fuzzy-match tie-breaking
// deterministic.
func (s *Store) All(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allLocked(ctx)
}

func (s *Store) allLocked(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, allQuery)
	if err != nil {
		return nil, errors.WrapPersistence(err, "scan memory entries")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Question, &e.Answer, &e.TaughtBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, errors.WrapPersistence(err, "scan memory row")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapPersistence(err, "iterate memory rows")
	}

	return entries, nil
}

// Questions returns just the stored question keys, ordered by question.
// This is the candidate set handed to the matcher on every query.
func (s *Store) Questions(ctx context.Context) ([]string, error) {
	entries, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	questions := make([]string, len(entries))
	for i, e := range entries {
		questions[i] = e.Question
	}
	return questions, nil
}

// Lookup returns the stored answer for an exact question key.
// Returns errors.ErrNotFound when the key is absent.
func (s *Store) Lookup(ctx context.Context, question string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var answer string
	err := s.db.QueryRowContext(ctx, lookupQuery, strings.TrimSpace(question)).Scan(&answer)
	if err == sql.ErrNoRows {
		return "", errors.Wrapf(errors.ErrNotFound, "no answer for %q", question)
	}
	if err != nil {
		return "", errors.WrapPersistence(err, "lookup answer")
	}
	return answer, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
		return 0, errors.WrapPersistence(err, "count memory entries")
	}
	return count, nil
}
