package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/tanya/internal/models"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"json", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteReply(t *testing.T) {
	reply := &models.ChatReply{
		Response:        "Our return policy lasts 30 days.",
		MatchIndex:      0,
		MatchedQuestion: "What is your return policy?",
		Score:           0.87,
		RecordID:        3,
	}
	var buf bytes.Buffer
	if err := WriteReply(&buf, reply, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Our return policy lasts 30 days.\n") {
		t.Errorf("text output should start with the answer: %q", out)
	}
	if !strings.Contains(out, "score 0.8700") {
		t.Errorf("text output missing score: %q", out)
	}

	buf.Reset()
	if err := WriteReply(&buf, &models.ChatReply{Response: "hi"}, OutputText); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hi\n" {
		t.Errorf("reply without match details = %q", buf.String())
	}

	buf.Reset()
	if err := WriteReply(&buf, reply, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.ChatReply
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.RecordID != 3 || decoded.MatchedQuestion != reply.MatchedQuestion {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteExchanges(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteExchanges(&buf, nil, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No exchanges") {
		t.Errorf("empty text = %q", buf.String())
	}

	buf.Reset()
	if err := WriteExchanges(&buf, nil, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"exchanges": []`) {
		t.Errorf("empty json = %q", buf.String())
	}

	exchanges := []*models.ChatExchange{
		{ID: 1, UserMessage: "hi", BotResponse: "hello", Timestamp: "2024-01-01T00:00:00Z"},
		{ID: 2, UserMessage: strings.Repeat("x", 300), BotResponse: "ok", Timestamp: "2024-01-01T00:00:01Z"},
	}
	buf.Reset()
	if err := WriteExchanges(&buf, exchanges, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "#1  2024-01-01T00:00:00Z") || !strings.Contains(out, "2 exchanges") {
		t.Errorf("text output = %q", out)
	}
	if strings.Contains(out, strings.Repeat("x", 201)) {
		t.Error("long messages should be truncated")
	}
}

func TestWriteStatus(t *testing.T) {
	disk := int64(4096)
	status := &models.Status{
		KnowledgeBaseSize:   4,
		EmbeddingDimensions: 384,
		Exchanges:           10,
		DiskUsageBytes:      &disk,
		Config:              &models.StatusConfig{EmbeddingProvider: "onnx", DatabasePath: "/tmp/chat.db"},
	}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, status, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"knowledge_base_size:  4", "disk_usage_bytes:     4096", "embedding_provider:   onnx", "(built-in)"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteStatus(&buf, &models.Status{KnowledgeBaseSize: 4}, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "disk_usage_bytes") {
		t.Errorf("json should omit unset disk usage: %s", buf.String())
	}
}
