package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/tanya/internal/chat"
	"github.com/hyperjump/tanya/internal/config"
	"github.com/hyperjump/tanya/internal/models"
	"github.com/hyperjump/tanya/internal/storage"
)

// RootMessage is the liveness acknowledgment returned by GET /.
const RootMessage = "Chatbot API is running. Send POST requests to /chat."

// internalErrorMessage is the body of every 5xx response; details go to the server log.
const internalErrorMessage = "internal server error"

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"message": RootMessage})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reply, err := s.handler.Handle(r.Context(), req.Message)
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("chat failed", zap.String("request_id", chat.RequestIDFromContext(r.Context())), zap.Error(err))
			s.respondError(w, status, internalErrorMessage)
			return
		}
		s.respondError(w, status, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.ChatResponse{Response: reply.Response})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := BuildStatus(r.Context(), s.handler, s.log, s.config)
	if err != nil {
		s.logger.Error("status: count exchanges failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

// BuildStatus reports knowledge base size, exchange count and, when cfg is set, configuration
// and conversation log disk usage.
func BuildStatus(ctx context.Context, h *chat.Handler, log storage.ConversationLog, cfg *config.Config) (*models.Status, error) {
	count, err := log.Count(ctx)
	if err != nil {
		return nil, err
	}
	kb := h.KnowledgeBase()
	status := &models.Status{
		KnowledgeBaseSize:   kb.Len(),
		EmbeddingDimensions: kb.Dimensions(),
		Exchanges:           count,
	}
	if cfg != nil {
		status.Config = &models.StatusConfig{
			EmbeddingProvider: cfg.Embedding.Provider,
			EmbeddingCache:    cfg.Embedding.Cache,
			DatabasePath:      cfg.Storage.DatabasePath,
			KnowledgePath:     cfg.Knowledge.Path,
		}
		diskBytes, err := storage.DiskUsageBytes(storage.DatabaseFiles(cfg.Storage.DatabasePath)...)
		if err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}
	return status, nil
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	exchanges, err := s.log.ReadAll(r.Context())
	if err != nil {
		s.logger.Error("read conversation log failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}
	if exchanges == nil {
		exchanges = []*models.ChatExchange{}
	}
	s.respondJSON(w, http.StatusOK, models.LogsResponse{Exchanges: exchanges, Total: len(exchanges)})
}

// statusForError maps handler errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, chat.ErrInvalidQuery):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
