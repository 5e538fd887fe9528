package knowledge

import (
	"crypto/sha256"
	"encoding/hex"
)

const fingerprintPrefix = "q:"

// Fingerprint returns a stable ID for question as encoded by the model identified by modelKey.
// The same model and question always yield the same ID.
func Fingerprint(modelKey, question string) string {
	h := sha256.New()
	h.Write([]byte(modelKey))
	h.Write([]byte{0})
	h.Write([]byte(question))
	return fingerprintPrefix + hex.EncodeToString(h.Sum(nil))
}

// Fingerprints returns the Fingerprint of each pair's question, in order.
func Fingerprints(modelKey string, pairs []Pair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = Fingerprint(modelKey, p.Question)
	}
	return out
}
