// Package history persists answered messages per user in SQLite and serves
// the recent turns that condition the next reply.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/emotion"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/engine"
)

//go:embed schema.sql
var schema string

// DefaultLimit is the number of recent turns fetched per request.
const DefaultLimit = 5

// ErrEmptyUser is returned when a user ID is blank.
var ErrEmptyUser = errors.New("user id is required")

// Message is one stored exchange.
type Message struct {
	ID             string
	UserID         string
	Query          string
	Response       string
	EmotionalState emotion.Label
	Confidence     float64
	CreatedAt      time.Time
}

// Store provides access to the history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, now: time.Now}

	if err := s.initPragmas(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize pragmas: %w", err)
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	log.Debug().Str("path", path).Msg("history store opened")
	return s, nil
}

func (s *Store) initPragmas(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute statement %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

// Save stores one answered query and returns its ID.
func (s *Store) Save(ctx context.Context, userID, query string, resp engine.Response) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrEmptyUser
	}
	label := resp.EmotionalState
	if !label.Valid() {
		label = emotion.Neutral
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, user_id, query, response, emotional_state, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, userID, query, resp.Text, string(label), resp.Confidence, s.now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("save message: %w", err)
	}
	return id, nil
}

// Recent returns the user's last limit exchanges, oldest first.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]engine.Turn, error) {
	msgs, err := s.Messages(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	turns := make([]engine.Turn, len(msgs))
	for i, m := range msgs {
		turns[i] = engine.Turn{Query: m.Query, Response: m.Response}
	}
	return turns, nil
}

// Emotions returns the emotional states of the user's last n messages,
// oldest first.
func (s *Store) Emotions(ctx context.Context, userID string, n int) ([]emotion.Label, error) {
	msgs, err := s.Messages(ctx, userID, n)
	if err != nil {
		return nil, err
	}
	labels := make([]emotion.Label, len(msgs))
	for i, m := range msgs {
		labels[i] = m.EmotionalState
	}
	return labels, nil
}

// Messages returns the user's last limit stored messages, oldest first.
func (s *Store) Messages(ctx context.Context, userID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, query, response, emotional_state, confidence, created_at
		 FROM messages WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var state string
		var created int64
		if err := rows.Scan(&m.ID, &m.UserID, &m.Query, &m.Response, &state, &m.Confidence, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.EmotionalState = emotion.Label(state)
		if !m.EmotionalState.Valid() {
			m.EmotionalState = emotion.Neutral
		}
		m.CreatedAt = time.Unix(0, created)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Health checks the database connection.
func (s *Store) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result != 1 {
		return fmt.Errorf("health check returned unexpected value: %d", result)
	}
	return nil
}

// Close checkpoints the WAL and closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		log.Warn().Err(err).Msg("history WAL checkpoint failed")
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close history database: %w", err)
	}
	return nil
}
