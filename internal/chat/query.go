package chat

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/hyperjump/tanya/pkg/utils"
)

// ErrInvalidQuery is returned for messages that are empty after whitespace normalization
// or are not valid UTF-8.
var ErrInvalidQuery = errors.New("invalid query: message must be non-empty text")

// NormalizeQuery collapses runs of whitespace and trims the message.
func NormalizeQuery(message string) (string, error) {
	if !utf8.ValidString(message) {
		return "", ErrInvalidQuery
	}
	q := utils.CollapseSpace(message)
	if q == "" {
		return "", ErrInvalidQuery
	}
	return q, nil
}

type requestIDKey struct{}

// ContextWithRequestID returns a copy of ctx carrying id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
