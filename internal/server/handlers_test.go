package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/tanya/internal/chat"
	"github.com/hyperjump/tanya/internal/config"
	"github.com/hyperjump/tanya/internal/embedding"
	"github.com/hyperjump/tanya/internal/knowledge"
	"github.com/hyperjump/tanya/internal/storage"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, log storage.ConversationLog, cfg *config.Config) *Server {
	t.Helper()
	emb := embedding.NewHashEmbedder(16)
	kb, err := knowledge.Build(context.Background(), knowledge.DefaultPairs(), emb)
	if err != nil {
		t.Fatal(err)
	}
	h, err := chat.NewHandler(kb, emb, log)
	if err != nil {
		t.Fatal(err)
	}
	return NewServer(h, log, cfg, zap.NewNop())
}

func postChat(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, r)
	return w
}

func TestHandleRoot(t *testing.T) {
	srv := newTestServer(t, storage.NewMemoryLog(), nil)
	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["message"] != RootMessage {
		t.Errorf("message = %q", out["message"])
	}
}

func TestHandleChat(t *testing.T) {
	log := storage.NewMemoryLog()
	srv := newTestServer(t, log, nil)

	w := postChat(t, srv, `{"message":"What is your return policy?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var out struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Response != "Our return policy lasts 30 days." {
		t.Errorf("response = %q", out.Response)
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("missing X-Request-ID header")
	}
	if n, _ := log.Count(context.Background()); n != 1 {
		t.Errorf("logged %d exchanges, want 1", n)
	}
}

func TestHandleChat_badRequests(t *testing.T) {
	log := storage.NewMemoryLog()
	srv := newTestServer(t, log, nil)
	for _, body := range []string{`{not json`, `{"message":""}`, `{"message":"   "}`, `{}`} {
		w := postChat(t, srv, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status %d, want 400", body, w.Code)
		}
		var out map[string]string
		_ = json.NewDecoder(w.Body).Decode(&out)
		if out["error"] == "" {
			t.Errorf("body %s: missing error message", body)
		}
	}
	if n, _ := log.Count(context.Background()); n != 0 {
		t.Errorf("bad requests logged %d exchanges", n)
	}
}

func TestHandleChat_logFailure(t *testing.T) {
	log := storage.NewMemoryLog()
	log.FailWrites(errors.New("database is locked"))
	srv := newTestServer(t, log, nil)

	w := postChat(t, srv, `{"message":"How can I track my order?"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "tracking link") {
		t.Error("answer must not be returned when the exchange is not recorded")
	}
	if strings.Contains(body, "database is locked") {
		t.Errorf("storage detail leaked to client: %s", body)
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatal(err)
	}
	if out["error"] != internalErrorMessage {
		t.Errorf("error = %q, want %q", out["error"], internalErrorMessage)
	}
}

func TestHandleChat_requestIDPropagated(t *testing.T) {
	srv := newTestServer(t, storage.NewMemoryLog(), nil)
	r := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(`{"message":"hi"}`))
	r.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, r)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}

func TestHandleLogs(t *testing.T) {
	log := storage.NewMemoryLog()
	srv := newTestServer(t, log, nil)

	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil))
	if !strings.Contains(w.Body.String(), `"exchanges":[]`) {
		t.Errorf("empty log body = %s", w.Body.String())
	}

	for i := 0; i < 3; i++ {
		postChat(t, srv, fmt.Sprintf(`{"message":"question %d"}`, i))
	}
	w = httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil))
	var out struct {
		Exchanges []struct {
			ID          int64  `json:"id"`
			UserMessage string `json:"user_message"`
		} `json:"exchanges"`
		Total int `json:"total"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Total != 3 || len(out.Exchanges) != 3 {
		t.Fatalf("total = %d, len = %d", out.Total, len(out.Exchanges))
	}
	if out.Exchanges[2].UserMessage != "question 2" {
		t.Errorf("last exchange = %+v", out.Exchanges[2])
	}
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(t, storage.NewMemoryLog(), nil)
	postChat(t, srv, `{"message":"hello"}`)

	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var out struct {
		KnowledgeBaseSize   int   `json:"knowledge_base_size"`
		EmbeddingDimensions int   `json:"embedding_dimensions"`
		Exchanges           int64 `json:"exchanges"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.KnowledgeBaseSize != 4 || out.EmbeddingDimensions != 16 || out.Exchanges != 1 {
		t.Errorf("status = %+v", out)
	}
}

func TestHandleStatus_WithDiskUsage(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "chat.db")
	log, err := storage.NewSQLiteLog(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()
	cfg := &config.Config{
		Storage:   config.StorageConfig{DatabasePath: dbPath},
		Embedding: config.EmbeddingConfig{Provider: "hash"},
	}
	srv := newTestServer(t, log, cfg)
	postChat(t, srv, `{"message":"hello"}`)

	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	var out struct {
		DiskUsageBytes *int64 `json:"disk_usage_bytes"`
		Config         struct {
			EmbeddingProvider string `json:"embedding_provider"`
		} `json:"config"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.DiskUsageBytes == nil || *out.DiskUsageBytes < 1 {
		t.Errorf("disk_usage_bytes = %v, want >= 1", out.DiskUsageBytes)
	}
	if out.Config.EmbeddingProvider != "hash" {
		t.Errorf("embedding_provider = %q", out.Config.EmbeddingProvider)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, storage.NewMemoryLog(), nil)
	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("health: %d %s", w.Code, w.Body.String())
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{chat.ErrInvalidQuery, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", chat.ErrInvalidQuery), http.StatusBadRequest},
		{embedding.ErrEncoding, http.StatusInternalServerError},
		{storage.ErrLogWrite, http.StatusInternalServerError},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusForError(tt.err); got != tt.want {
			t.Errorf("statusForError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
