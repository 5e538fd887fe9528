// Package storage provides the append-only conversation log.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hyperjump/tanya/internal/models"
)

// ErrLogWrite is returned when an exchange could not be durably recorded.
var ErrLogWrite = errors.New("conversation log write failed")

// TimestampFormat is the ISO-8601 layout used for stored timestamps.
const TimestampFormat = time.RFC3339Nano

// ConversationLog is the append-only record of chat exchanges. It is the only writer of its
// store. Implementations must be safe for concurrent use and assign strictly increasing IDs.
type ConversationLog interface {
	// Append records one exchange and returns its ID.
	Append(ctx context.Context, userMessage, botResponse string, timestamp time.Time) (int64, error)
	// ReadAll returns every exchange ordered by ID.
	ReadAll(ctx context.Context) ([]*models.ChatExchange, error)
	// Count returns the number of recorded exchanges.
	Count(ctx context.Context) (int64, error)

	Close() error
}

// FormatTimestamp renders t in TimestampFormat.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampFormat)
}
