package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/tanya/internal/models"
)

// SQLiteLog implements ConversationLog on a SQLite database.
// Appends are serialized through a mutex and a single pooled connection, so IDs handed out by
// AUTOINCREMENT follow call order.
type SQLiteLog struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteLog opens or creates a SQLite database at dbPath and creates the chat_logs table
// if absent. Parent directories are created if they do not exist. ":memory:" is accepted.
func NewSQLiteLog(dbPath string) (*SQLiteLog, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: a single writer, and ":memory:" stays one database.
	db.SetMaxOpenConns(1)

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL: %w", err)
		}
		if _, err := db.Exec("PRAGMA synchronous=FULL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
		}
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteLog{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS chat_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_message TEXT,
		bot_response TEXT,
		timestamp TEXT
	);
	`)
	return err
}

// Append inserts an exchange and returns its auto-incremented ID.
func (s *SQLiteLog) Append(ctx context.Context, userMessage, botResponse string, timestamp time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_logs (user_message, bot_response, timestamp) VALUES (?, ?, ?)`,
		userMessage, botResponse, FormatTimestamp(timestamp),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrLogWrite, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: read inserted id: %v", ErrLogWrite, err)
	}
	return id, nil
}

// ReadAll returns all exchanges ordered by ID.
func (s *SQLiteLog) ReadAll(ctx context.Context) ([]*models.ChatExchange, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_message, bot_response, timestamp FROM chat_logs ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ChatExchange
	for rows.Next() {
		var ex models.ChatExchange
		var user, bot, ts sql.NullString
		if err := rows.Scan(&ex.ID, &user, &bot, &ts); err != nil {
			return nil, err
		}
		ex.UserMessage, ex.BotResponse, ex.Timestamp = user.String, bot.String, ts.String
		out = append(out, &ex)
	}
	return out, rows.Err()
}

// Count returns the total number of exchanges.
func (s *SQLiteLog) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_logs`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteLog) Close() error {
	return s.db.Close()
}
