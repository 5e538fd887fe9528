// Package cli provides CLI utilities for Tanya.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/tanya/internal/models"
	"github.com/hyperjump/tanya/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates an --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteReply writes a chat reply to w in the given format.
func WriteReply(w io.Writer, reply *models.ChatReply, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, reply)
	}
	fmt.Fprintln(w, reply.Response)
	if reply.MatchedQuestion != "" {
		fmt.Fprintf(w, "\n# matched %q (index %d, score %.4f)\n", reply.MatchedQuestion, reply.MatchIndex, reply.Score)
	}
	return nil
}

// WriteExchanges writes logged exchanges to w, oldest first.
func WriteExchanges(w io.Writer, exchanges []*models.ChatExchange, format OutputFormat) error {
	if format == OutputJSON {
		if exchanges == nil {
			exchanges = []*models.ChatExchange{}
		}
		return writeJSON(w, models.LogsResponse{Exchanges: exchanges, Total: len(exchanges)})
	}
	if len(exchanges) == 0 {
		fmt.Fprintln(w, "No exchanges recorded.")
		return nil
	}
	for _, ex := range exchanges {
		fmt.Fprintf(w, "#%d  %s\n", ex.ID, ex.Timestamp)
		fmt.Fprintf(w, "  user: %s\n", utils.Truncate(ex.UserMessage, 200))
		fmt.Fprintf(w, "  bot:  %s\n", utils.Truncate(ex.BotResponse, 200))
	}
	fmt.Fprintf(w, "\n%d exchanges\n", len(exchanges))
	return nil
}

// WriteStatus writes service status to w.
func WriteStatus(w io.Writer, status *models.Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	fmt.Fprintf(w, "knowledge_base_size:  %d   # FAQ entries\n", status.KnowledgeBaseSize)
	fmt.Fprintf(w, "embedding_dims:       %d\n", status.EmbeddingDimensions)
	fmt.Fprintf(w, "exchanges:            %d   # logged conversations\n", status.Exchanges)
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:     %d   # conversation log on disk\n", *status.DiskUsageBytes)
	}
	if c := status.Config; c != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		fmt.Fprintf(w, "embedding_provider:   %s\n", c.EmbeddingProvider)
		if c.EmbeddingCache != "" {
			fmt.Fprintf(w, "embedding_cache:      %s\n", c.EmbeddingCache)
		}
		if c.DatabasePath != "" {
			fmt.Fprintf(w, "database_path:        %s\n", c.DatabasePath)
		}
		if c.KnowledgePath != "" {
			fmt.Fprintf(w, "knowledge_path:       %s\n", c.KnowledgePath)
		} else {
			fmt.Fprintln(w, "knowledge_path:       (built-in)")
		}
	}
	return nil
}
