package benchmark

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/tanya/internal/chat"
	"github.com/hyperjump/tanya/internal/embedding"
	"github.com/hyperjump/tanya/internal/knowledge"
	"github.com/hyperjump/tanya/internal/storage"
	"github.com/hyperjump/tanya/internal/vector"
)

func BenchmarkFindBest(b *testing.B) {
	const n, dims = 1000, 384
	emb := embedding.NewHashEmbedder(dims)
	ctx := context.Background()
	candidates := make([][]float32, n)
	for i := range candidates {
		candidates[i], _ = emb.Embed(ctx, fmt.Sprintf("question %d", i))
	}
	query, _ := emb.Embed(ctx, "benchmark query")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = vector.FindBest(query, candidates)
	}
}

func BenchmarkHashEmbedder_Embed(b *testing.B) {
	e := embedding.NewHashEmbedder(384)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark query text for embedding")
	}
}

func BenchmarkCachedEmbedder_Hit(b *testing.B) {
	e := embedding.NewCachedEmbedder(embedding.NewHashEmbedder(384), embedding.NewLRUCache(100))
	ctx := context.Background()
	_, _ = e.Embed(ctx, "benchmark query text for embedding")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark query text for embedding")
	}
}

func BenchmarkSQLiteLog_Append(b *testing.B) {
	log, err := storage.NewSQLiteLog(filepath.Join(b.TempDir(), "chat.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer log.Close()
	ctx := context.Background()
	now := time.Now()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = log.Append(ctx, "where is my order", "You can track your order.", now)
	}
}

func BenchmarkHandler_Handle(b *testing.B) {
	ctx := context.Background()
	emb := embedding.NewHashEmbedder(384)
	kb, err := knowledge.Build(ctx, knowledge.DefaultPairs(), emb)
	if err != nil {
		b.Fatal(err)
	}
	h, err := chat.NewHandler(kb, emb, storage.NewMemoryLog())
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = h.Handle(ctx, "How do I check where my package is?")
	}
}
