// Package models defines core data structures for chat exchanges and replies.
package models

// ChatExchange is one logged query/answer pair. IDs increase strictly in append order.
type ChatExchange struct {
	ID          int64  `json:"id" db:"id"`
	UserMessage string `json:"user_message" db:"user_message"`
	BotResponse string `json:"bot_response" db:"bot_response"`
	Timestamp   string `json:"timestamp" db:"timestamp"` // RFC 3339 (ISO-8601)
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// ChatReply is the outcome of handling one message.
type ChatReply struct {
	Response        string  `json:"response"`
	MatchIndex      int     `json:"match_index"`
	MatchedQuestion string  `json:"matched_question"`
	Score           float64 `json:"score"`
	RecordID        int64   `json:"record_id"`
	RequestID       string  `json:"request_id,omitempty"`
}

// Status describes the running service.
type Status struct {
	KnowledgeBaseSize   int           `json:"knowledge_base_size"`
	EmbeddingDimensions int           `json:"embedding_dimensions"`
	Exchanges           int64         `json:"exchanges"`
	DiskUsageBytes      *int64        `json:"disk_usage_bytes,omitempty"`
	Config              *StatusConfig `json:"config,omitempty"`
}

// StatusConfig is the subset of configuration reported by Status.
type StatusConfig struct {
	EmbeddingProvider string `json:"embedding_provider"`
	EmbeddingCache    string `json:"embedding_cache"`
	DatabasePath      string `json:"database_path"`
	KnowledgePath     string `json:"knowledge_path,omitempty"`
}

// LogsResponse is the body returned by GET /api/v1/logs.
type LogsResponse struct {
	Exchanges []*ChatExchange `json:"exchanges"`
	Total     int             `json:"total"`
}
