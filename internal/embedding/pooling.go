package embedding

import "github.com/hyperjump/tanya/pkg/utils"

// meanPool averages the token vectors of hidden (a row-major seqLen x dimensions
// last_hidden_state) over positions whose attention mask is set, then L2-normalizes the result.
func meanPool(hidden []float32, attentionMask []int64, dimensions int) []float32 {
	out := make([]float32, dimensions)
	var count float32
	for pos, m := range attentionMask {
		if m == 0 {
			continue
		}
		row := hidden[pos*dimensions : (pos+1)*dimensions]
		for i, v := range row {
			out[i] += v
		}
		count++
	}
	if count > 0 {
		for i := range out {
			out[i] /= count
		}
	}
	utils.NormalizeL2(out)
	return out
}
