package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hyperjump/tanya/internal/models"
)

// MemoryLog is a ConversationLog held in process memory, for tests and ephemeral runs.
// It is not durable.
type MemoryLog struct {
	mu      sync.Mutex
	records []*models.ChatExchange
	nextID  int64
	closed  bool
	failErr error
}

// NewMemoryLog returns an empty in-memory log. IDs start at 1.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{nextID: 1}
}

// FailWrites makes subsequent Appends fail with ErrLogWrite wrapping err; nil restores writes.
func (m *MemoryLog) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// Append records an exchange.
func (m *MemoryLog) Append(_ context.Context, userMessage, botResponse string, timestamp time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, fmt.Errorf("%w: log is closed", ErrLogWrite)
	}
	if m.failErr != nil {
		return 0, fmt.Errorf("%w: %v", ErrLogWrite, m.failErr)
	}
	id := m.nextID
	m.nextID++
	m.records = append(m.records, &models.ChatExchange{
		ID:          id,
		UserMessage: userMessage,
		BotResponse: botResponse,
		Timestamp:   FormatTimestamp(timestamp),
	})
	return id, nil
}

// ReadAll returns copies of all exchanges ordered by ID.
func (m *MemoryLog) ReadAll(_ context.Context) ([]*models.ChatExchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("log is closed")
	}
	out := make([]*models.ChatExchange, len(m.records))
	for i, r := range m.records {
		cp := *r
		out[i] = &cp
	}
	return out, nil
}

// Count returns the number of exchanges.
func (m *MemoryLog) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

// Close marks the log closed.
func (m *MemoryLog) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
