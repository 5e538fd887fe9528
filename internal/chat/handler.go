// Package chat answers user messages from the knowledge base and records every exchange.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/tanya/internal/embedding"
	"github.com/hyperjump/tanya/internal/knowledge"
	"github.com/hyperjump/tanya/internal/models"
	"github.com/hyperjump/tanya/internal/storage"
	"github.com/hyperjump/tanya/internal/vector"
)

// Handler runs validate, encode, match, log for each message. It holds no per-request state
// and is safe for concurrent use.
type Handler struct {
	kb       *knowledge.KnowledgeBase
	embedder embedding.Embedder
	log      storage.ConversationLog
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithClock overrides the time source used for exchange timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHandler creates a handler over a built knowledge base. It refuses an empty knowledge base
// and an embedder whose dimension differs from the knowledge base vectors.
func NewHandler(kb *knowledge.KnowledgeBase, emb embedding.Embedder, log storage.ConversationLog, opts ...Option) (*Handler, error) {
	if kb == nil || kb.Len() == 0 {
		return nil, vector.ErrEmptyKnowledgeBase
	}
	if emb == nil || log == nil {
		return nil, errors.New("chat handler requires an embedder and a conversation log")
	}
	if d := emb.Dimensions(); d != 0 && d != kb.Dimensions() {
		return nil, fmt.Errorf("%w: embedder produces %d, knowledge base has %d", vector.ErrDimensionMismatch, d, kb.Dimensions())
	}
	h := &Handler{
		kb:       kb,
		embedder: emb,
		log:      log,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle answers userMessage. The exchange is appended to the conversation log before Handle
// returns; if the append fails the answer is withheld and the error wraps storage.ErrLogWrite.
func (h *Handler) Handle(ctx context.Context, userMessage string) (*models.ChatReply, error) {
	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	logger := h.logger.With(zap.String("request_id", requestID))

	query, err := NormalizeQuery(userMessage)
	if err != nil {
		return nil, err
	}

	queryVec, err := h.embedder.Embed(ctx, query)
	if err != nil {
		logger.Error("Failed to encode query", zap.Error(err))
		if !errors.Is(err, embedding.ErrEncoding) {
			err = errors.Join(embedding.ErrEncoding, err)
		}
		return nil, fmt.Errorf("encode query: %w", err)
	}

	index, score, err := vector.FindBest(queryVec, h.kb.Embeddings())
	if err != nil {
		logger.Error("Failed to match query", zap.Error(err))
		return nil, fmt.Errorf("match query: %w", err)
	}
	entry := h.kb.Entry(index)
	logger.Debug("Matched query",
		zap.Int("index", index),
		zap.Float64("score", score),
		zap.String("question", entry.Question),
	)

	recordID, err := h.log.Append(ctx, userMessage, entry.Answer, h.now())
	if err != nil {
		logger.Error("Failed to record exchange", zap.Int("index", index), zap.Error(err))
		if !errors.Is(err, storage.ErrLogWrite) {
			err = errors.Join(storage.ErrLogWrite, err)
		}
		return nil, fmt.Errorf("record exchange: %w", err)
	}

	return &models.ChatReply{
		Response:        entry.Answer,
		MatchIndex:      index,
		MatchedQuestion: entry.Question,
		Score:           score,
		RecordID:        recordID,
		RequestID:       requestID,
	}, nil
}

// KnowledgeBase returns the knowledge base the handler answers from.
func (h *Handler) KnowledgeBase() *knowledge.KnowledgeBase {
	return h.kb
}
