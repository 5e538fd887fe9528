package embedding

import (
	"fmt"

	"go.uber.org/zap"
)

// Provider names accepted by New.
const (
	ProviderONNX   = "onnx"
	ProviderOllama = "ollama"
	ProviderHash   = "hash"
)

// Options selects and configures an embedding provider.
type Options struct {
	Provider    string
	ModelPath   string
	VocabPath   string
	Dimensions  int
	MaxTokens   int
	OllamaURL   string
	OllamaModel string
}

// New creates the embedder named by opts.Provider ("onnx" when empty). A provider that cannot
// be brought up reports ErrEncoding; the hash embedder is only ever returned when asked for.
func New(opts Options, logger *zap.Logger) (Embedder, error) {
	switch opts.Provider {
	case ProviderONNX, "":
		e, err := NewONNXEmbedder(opts.ModelPath, opts.VocabPath, opts.Dimensions, opts.MaxTokens)
		if err != nil {
			return nil, fmt.Errorf("%w: onnx provider unavailable: %v", ErrEncoding, err)
		}
		return e, nil
	case ProviderOllama:
		return NewOllamaEmbedder(opts.OllamaURL, opts.OllamaModel, opts.Dimensions, WithOllamaLogger(logger)), nil
	case ProviderHash:
		return NewHashEmbedder(opts.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: onnx, ollama, hash)", opts.Provider)
	}
}

// ModelKey identifies the model behind opts, so vectors from different models are never mixed.
func (o Options) ModelKey() string {
	switch o.Provider {
	case ProviderOllama:
		return fmt.Sprintf("%s:%s:%d", o.Provider, o.OllamaModel, o.Dimensions)
	case ProviderHash:
		return fmt.Sprintf("%s:%d", o.Provider, o.Dimensions)
	default:
		return fmt.Sprintf("%s:%s:%d", ProviderONNX, o.ModelPath, o.Dimensions)
	}
}
