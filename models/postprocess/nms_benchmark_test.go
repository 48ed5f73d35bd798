package postprocess

import (
	"math/rand"
	"testing"

	"github.com/nvr-ai/go-detection-output/images"
)

func benchmarkCandidates(n int) ([]images.Rect, []float32) {
	rng := rand.New(rand.NewSource(1))
	boxes := make([]images.Rect, n)
	scores := make([]float32, n)
	for i := range boxes {
		x, y := rng.Float32()*0.8, rng.Float32()*0.8
		boxes[i] = images.Rect{X1: x, Y1: y, X2: x + 0.1 + rng.Float32()*0.1, Y2: y + 0.1 + rng.Float32()*0.1}
		scores[i] = rng.Float32()
	}
	return boxes, scores
}

func BenchmarkApplyNMS(b *testing.B) {
	boxes, scores := benchmarkCandidates(2000)
	config := NMSConfig{IoUThreshold: 0.45, TopK: 400}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ApplyNMS(boxes, scores, &config, nil); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkApplyNMS_SharedCache suppresses 20 classes over one box list, as
// with shared locations on VOC.
func BenchmarkApplyNMS_SharedCache(b *testing.B) {
	boxes, _ := benchmarkCandidates(2000)
	rng := rand.New(rand.NewSource(2))
	classScores := make([][]float32, 20)
	for c := range classScores {
		classScores[c] = make([]float32, len(boxes))
		for i := range classScores[c] {
			classScores[c][i] = rng.Float32()
		}
	}
	config := NMSConfig{IoUThreshold: 0.45, TopK: 400}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache := NewOverlapCache()
		for _, scores := range classScores {
			if _, err := ApplyNMS(boxes, scores, &config, cache); err != nil {
				b.Fatal(err)
			}
		}
	}
}
