// Package history persists completed debates to SQLite so past
// transcripts and verdicts can be listed and replayed.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/symposium-ai/symposium/internal/debate"
	"github.com/symposium-ai/symposium/internal/models"
)

// Record is one persisted debate.
type Record struct {
	ID            string                    `json:"id"`
	Prompt        string                    `json:"prompt"`
	Language      string                    `json:"language"`
	Serious       bool                      `json:"serious"`
	Rounds        int                       `json:"rounds"`
	Providers     []models.ProviderID       `json:"providers"`
	Transcript    []debate.TranscriptEntry  `json:"transcript"`
	ModeratorText string                    `json:"moderator_text,omitempty"`
	ModeratorErr  string                    `json:"moderator_error,omitempty"`
	StartedAt     time.Time                 `json:"started_at"`
	FinishedAt    time.Time                 `json:"finished_at"`
}

// Summary is the listing view of a record, without the transcript.
type Summary struct {
	ID         string    `json:"id"`
	Prompt     string    `json:"prompt"`
	Rounds     int       `json:"rounds"`
	Language   string    `json:"language"`
	FinishedAt time.Time `json:"finished_at"`
}

// ErrNotFound is returned by Get for an unknown debate id.
var ErrNotFound = fmt.Errorf("debate not found")

const schema = `
CREATE TABLE IF NOT EXISTS debates (
	id            TEXT PRIMARY KEY,
	prompt        TEXT NOT NULL,
	language      TEXT NOT NULL,
	serious       INTEGER NOT NULL,
	rounds        INTEGER NOT NULL,
	providers     TEXT NOT NULL,
	transcript    TEXT NOT NULL,
	moderator_text TEXT NOT NULL DEFAULT '',
	moderator_err  TEXT NOT NULL DEFAULT '',
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_debates_finished_at ON debates(finished_at DESC);
`

// Store writes and reads debate records. SQLite works best with a
// single connection, so the pool is capped at one.
type Store struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewStore opens (and if needed creates) the database at path. An
// empty path selects a shared in-memory database, which is what the
// tests use.
func NewStore(ctx context.Context, path string, logger *logrus.Logger) (*Store, error) {
	dsn := "file::memory:?cache=shared"
	if path != "" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create history directory: %w", err)
			}
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			logger.WithError(err).Warn("Failed to set pragma")
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.WithField("path", path).Info("History store ready")
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists one finished debate.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	providers, err := json.Marshal(rec.Providers)
	if err != nil {
		return fmt.Errorf("failed to encode providers: %w", err)
	}
	transcript, err := json.Marshal(rec.Transcript)
	if err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO debates (id, prompt, language, serious, rounds, providers, transcript, moderator_text, moderator_err, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Prompt, rec.Language, rec.Serious, rec.Rounds,
		string(providers), string(transcript), rec.ModeratorText, rec.ModeratorErr,
		rec.StartedAt.UTC(), rec.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save debate: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"debate_id": rec.ID,
		"rounds":    rec.Rounds,
	}).Debug("Debate saved")
	return nil
}

// List returns the most recent debates, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, prompt, rounds, language, finished_at
		FROM debates ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list debates: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Prompt, &sum.Rounds, &sum.Language, &sum.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan debate: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return summaries, nil
}

// Get loads one debate, transcript included.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, prompt, language, serious, rounds, providers, transcript, moderator_text, moderator_err, started_at, finished_at
		FROM debates WHERE id = ?`, id)

	var rec Record
	var providers, transcript string
	err := row.Scan(
		&rec.ID, &rec.Prompt, &rec.Language, &rec.Serious, &rec.Rounds,
		&providers, &transcript, &rec.ModeratorText, &rec.ModeratorErr,
		&rec.StartedAt, &rec.FinishedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load debate: %w", err)
	}

	if err := json.Unmarshal([]byte(providers), &rec.Providers); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}
	if err := json.Unmarshal([]byte(transcript), &rec.Transcript); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}
	return &rec, nil
}

// FromResult converts an orchestrator result into a record.
func FromResult(res *debate.Result) *Record {
	return &Record{
		ID:            res.ID,
		Prompt:        res.Prompt,
		Language:      res.Language,
		Serious:       res.Serious,
		Rounds:        res.Rounds,
		Providers:     res.Providers,
		Transcript:    res.Transcript,
		ModeratorText: res.ModeratorText,
		ModeratorErr:  res.ModeratorErr,
		StartedAt:     res.StartedAt,
		FinishedAt:    res.FinishedAt,
	}
}
