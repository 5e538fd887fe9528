package embedding

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	e := NewHashEmbedder(16)
	a, err := e.Embed(ctx, "What is your return policy?")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed(ctx, "What is your return policy?")
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 16 {
		t.Fatalf("len = %d, want 16", len(a))
	}
	var norm float64
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding differs at %d", i)
		}
		norm += float64(a[i]) * float64(a[i])
	}
	if math.Abs(norm-1) > 1e-4 {
		t.Errorf("expected unit norm, got %f", norm)
	}
}

func TestHashEmbedder_RejectsInvalidText(t *testing.T) {
	e := NewHashEmbedder(4)
	for _, text := range []string{"", "   ", "\t\n", string([]byte{0xff, 0xfe})} {
		if _, err := e.Embed(context.Background(), text); !errors.Is(err, ErrEncoding) {
			t.Errorf("Embed(%q) err = %v, want ErrEncoding", text, err)
		}
	}
}

func TestHashEmbedder_EmbedBatch(t *testing.T) {
	e := NewHashEmbedder(4)
	out, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if _, err := e.EmbedBatch(context.Background(), []string{"a", ""}); !errors.Is(err, ErrEncoding) {
		t.Errorf("batch with empty text: err = %v, want ErrEncoding", err)
	}
}

func TestNew(t *testing.T) {
	e, err := New(Options{Provider: ProviderHash, Dimensions: 8}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.Dimensions() != 8 {
		t.Errorf("Dimensions() = %d, want 8", e.Dimensions())
	}
	if _, err := New(Options{Provider: ProviderOllama, Dimensions: 8}, nil); err != nil {
		t.Errorf("ollama provider: %v", err)
	}
	if _, err := New(Options{Provider: "bogus"}, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNew_ONNXUnavailable(t *testing.T) {
	// Without CGO the stub refuses; with CGO the model file is missing. Either way no
	// embedder comes back and the failure is an encoding error.
	opts := Options{Provider: ProviderONNX, ModelPath: filepath.Join(t.TempDir(), "missing.onnx"), Dimensions: 384}
	e, err := New(opts, nil)
	if !errors.Is(err, ErrEncoding) {
		t.Fatalf("err = %v, want ErrEncoding", err)
	}
	if e != nil {
		t.Errorf("expected no embedder, got %T", e)
	}
}

func TestOptions_ModelKey(t *testing.T) {
	onnx := Options{Provider: ProviderONNX, ModelPath: "/m.onnx", Dimensions: 384}
	hash := Options{Provider: ProviderHash, Dimensions: 384}
	if onnx.ModelKey() == hash.ModelKey() {
		t.Error("different providers should have different model keys")
	}
	if (Options{ModelPath: "/m.onnx", Dimensions: 384}).ModelKey() != onnx.ModelKey() {
		t.Error("empty provider should default to onnx")
	}
}
