package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/alienxp03/triad/internal/core"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &SQLiteStorage{
		db:   db,
		path: dbPath,
	}, nil
}

// Initialize creates the database schema.
func (s *SQLiteStorage) Initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transcripts (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		max_rounds INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		completed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS rounds (
		transcript_id TEXT NOT NULL,
		round_id INTEGER NOT NULL,
		input TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (transcript_id, round_id),
		FOREIGN KEY (transcript_id) REFERENCES transcripts(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS messages (
		transcript_id TEXT NOT NULL,
		round_id INTEGER NOT NULL,
		participant INTEGER NOT NULL,
		role INTEGER NOT NULL,
		content TEXT NOT NULL,
		PRIMARY KEY (transcript_id, round_id, participant),
		FOREIGN KEY (transcript_id, round_id) REFERENCES rounds(transcript_id, round_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_transcripts_created_at ON transcripts(created_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SaveTranscript writes the transcript and all its rounds in one transaction.
func (s *SQLiteStorage) SaveTranscript(t *core.Transcript) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Rounds and messages cascade from the transcript row.
	if _, err := tx.Exec("DELETE FROM transcripts WHERE id = ?", t.ID); err != nil {
		return fmt.Errorf("failed to replace transcript: %w", err)
	}

	query := `
	INSERT INTO transcripts (id, topic, max_rounds, status, created_at, updated_at, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query,
		t.ID,
		t.Topic,
		t.MaxRounds,
		t.Status,
		t.CreatedAt,
		t.UpdatedAt,
		t.CompletedAt,
	); err != nil {
		return fmt.Errorf("failed to insert transcript: %w", err)
	}

	for _, r := range t.Rounds {
		if _, err := tx.Exec(
			"INSERT INTO rounds (transcript_id, round_id, input) VALUES (?, ?, ?)",
			t.ID, r.ID, r.Input,
		); err != nil {
			return fmt.Errorf("failed to insert round %d: %w", r.ID, err)
		}
		for _, m := range r.Messages {
			if _, err := tx.Exec(
				"INSERT INTO messages (transcript_id, round_id, participant, role, content) VALUES (?, ?, ?, ?, ?)",
				t.ID, r.ID, m.Participant.Index(), m.Role.Index(), m.Content,
			); err != nil {
				return fmt.Errorf("failed to insert message for round %d: %w", r.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transcript: %w", err)
	}
	return nil
}

// GetTranscript retrieves a transcript by ID.
func (s *SQLiteStorage) GetTranscript(id string) (*core.Transcript, error) {
	query := `
	SELECT id, topic, max_rounds, status, created_at, updated_at, completed_at
	FROM transcripts
	WHERE id = ?
	`

	var t core.Transcript
	var completedAt sql.NullTime

	err := s.db.QueryRow(query, id).Scan(
		&t.ID,
		&t.Topic,
		&t.MaxRounds,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
		&completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}

	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}

	rounds, err := s.getRounds(id)
	if err != nil {
		return nil, err
	}
	t.Rounds = rounds

	return &t, nil
}

func (s *SQLiteStorage) getRounds(transcriptID string) ([]core.Round, error) {
	rows, err := s.db.Query(
		"SELECT round_id, input FROM rounds WHERE transcript_id = ? ORDER BY round_id ASC",
		transcriptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get rounds: %w", err)
	}
	defer rows.Close()

	var rounds []core.Round
	index := make(map[int]int)
	for rows.Next() {
		var r core.Round
		if err := rows.Scan(&r.ID, &r.Input); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		index[r.ID] = len(rounds)
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rounds: %w", err)
	}

	msgRows, err := s.db.Query(
		"SELECT round_id, participant, role, content FROM messages WHERE transcript_id = ? ORDER BY round_id ASC, participant ASC",
		transcriptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer msgRows.Close()

	for msgRows.Next() {
		var roundID, participant, role int
		var content string
		if err := msgRows.Scan(&roundID, &participant, &role, &content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		i, ok := index[roundID]
		if !ok {
			continue
		}
		rounds[i].Messages = append(rounds[i].Messages, core.Message{
			Participant: core.Participant(participant),
			Role:        core.Role(role),
			Content:     content,
		})
	}
	if err := msgRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	return rounds, nil
}

// DeleteTranscript deletes a transcript and its rounds.
func (s *SQLiteStorage) DeleteTranscript(id string) error {
	_, err := s.db.Exec("DELETE FROM transcripts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	return nil
}

// ListTranscripts returns transcript summaries, newest first.
func (s *SQLiteStorage) ListTranscripts(limit, offset int) ([]*core.TranscriptSummary, error) {
	query := `
	SELECT t.id, t.topic, t.status, t.max_rounds, t.created_at,
		   (SELECT COUNT(*) FROM rounds WHERE transcript_id = t.id) as round_count
	FROM transcripts t
	ORDER BY t.created_at DESC
	LIMIT ? OFFSET ?
	`

	rows, err := s.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	defer rows.Close()

	var summaries []*core.TranscriptSummary
	for rows.Next() {
		var summary core.TranscriptSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.Topic,
			&summary.Status,
			&summary.MaxRounds,
			&summary.CreatedAt,
			&summary.RoundCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transcript summary: %w", err)
		}
		summaries = append(summaries, &summary)
	}

	return summaries, rows.Err()
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "triad.db"
	}
	return filepath.Join(home, ".triad", "triad.db")
}
