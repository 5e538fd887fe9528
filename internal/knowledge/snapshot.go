package knowledge

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/hyperjump/tanya/internal/embedding"
	"github.com/hyperjump/tanya/internal/vector"
)

// BuildCached builds the knowledge base, reusing question vectors stored at snapshotPath when
// the snapshot was written for the same model, dimension and questions. Otherwise every question
// is encoded and the snapshot is rewritten. An empty snapshotPath behaves like Build.
// A snapshot that cannot be read or written is logged and never fails the build.
func BuildCached(ctx context.Context, pairs []Pair, emb embedding.Embedder, modelKey, snapshotPath string, logger *zap.Logger) (*KnowledgeBase, error) {
	if snapshotPath == "" {
		return Build(ctx, pairs, emb)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := validatePairs(pairs); err != nil {
		return nil, err
	}
	ids := Fingerprints(modelKey, pairs)

	storedIDs, vecs, err := vector.LoadSnapshot(snapshotPath, emb.Dimensions())
	switch {
	case err == nil && sameIDs(storedIDs, ids):
		logger.Debug("Using embedding snapshot", zap.String("path", snapshotPath), zap.Int("entries", len(ids)))
		return New(pairs, vecs)
	case err == nil:
		logger.Info("Embedding snapshot is stale, re-encoding", zap.String("path", snapshotPath))
	case errors.Is(err, vector.ErrNoSnapshot):
	default:
		logger.Warn("Ignoring unreadable embedding snapshot", zap.String("path", snapshotPath), zap.Error(err))
	}

	kb, err := Build(ctx, pairs, emb)
	if err != nil {
		return nil, err
	}
	if err := vector.SaveSnapshot(snapshotPath, kb.Dimensions(), ids, kb.Embeddings()); err != nil {
		logger.Warn("Failed to save embedding snapshot", zap.String("path", snapshotPath), zap.Error(err))
	}
	return kb, nil
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
