// Package postprocess - provides Non-Maximum Suppression for detection results.
package postprocess

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detection-output/images"
)

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	// IoUThreshold is the overlap above which a candidate is suppressed.
	IoUThreshold float32 `koanf:"threshold" yaml:"threshold"`
	// TopK caps the candidate pool before suppression. -1 means unbounded.
	TopK int `koanf:"topk" yaml:"topk"`
}

// DefaultNMSConfig returns a config with an unbounded candidate pool.
func DefaultNMSConfig() NMSConfig {
	return NMSConfig{
		IoUThreshold: 0.45,
		TopK:         -1,
	}
}

// Validate checks the threshold and top-k bounds.
func (c *NMSConfig) Validate() error {
	if c.IoUThreshold < 0 {
		return errors.Errorf("nms threshold must be non negative, got %v", c.IoUThreshold)
	}
	if c.TopK < -1 {
		return errors.Errorf("nms top_k must be -1 or non negative, got %d", c.TopK)
	}
	return nil
}

// SortScoreIndices orders anchor indices by descending score.
//
// Equal scores keep their original relative order, so the lower anchor index
// always wins a tie and the ranking is deterministic.
//
// Arguments:
//   - scores: The per-anchor scores of a single class.
//   - topK: Keep at most this many indices; -1 keeps all of them.
//
// Returns:
//   - The ranked anchor indices.
func SortScoreIndices(scores []float32, topK int) []int {
	indices := make([]int, len(scores))
	for i := range indices {
		indices[i] = i
	}

	sort.SliceStable(indices, func(a, b int) bool {
		return scores[indices[a]] > scores[indices[b]]
	})

	if topK > -1 && topK < len(indices) {
		indices = indices[:topK]
	}
	return indices
}

// OverlapCache memoizes pairwise IoU values between anchors of one decoded box
// list. Classes that suppress over the same shared boxes can reuse it, so each
// pair is computed at most once per image.
type OverlapCache struct {
	overlaps map[[2]int]float32
}

// NewOverlapCache returns an empty cache.
func NewOverlapCache() *OverlapCache {
	return &OverlapCache{overlaps: make(map[[2]int]float32)}
}

// Len returns the number of memoized pairs.
func (c *OverlapCache) Len() int {
	return len(c.overlaps)
}

func (c *OverlapCache) overlap(boxes []images.Rect, i, j int) float32 {
	if c == nil {
		return images.CalculateIoU(boxes[i], boxes[j])
	}
	key := [2]int{i, j}
	if j < i {
		key = [2]int{j, i}
	}
	if v, ok := c.overlaps[key]; ok {
		return v
	}
	v := images.CalculateIoU(boxes[i], boxes[j])
	c.overlaps[key] = v
	return v
}

// ApplyNMS performs greedy Non-Maximum Suppression over the anchors of one class.
//
// Candidates are visited in SortScoreIndices order; a candidate is kept unless
// its IoU with an already kept box exceeds config.IoUThreshold. Overlaps are
// measured on the boxes exactly as given (decoded, not clipped).
//
// Arguments:
//   - boxes: Decoded boxes, one per anchor.
//   - scores: Scores of the class, index-aligned with boxes.
//   - config: Threshold and top-k cap.
//   - cache: Optional overlap cache shared by classes using the same boxes; may be nil.
//
// Returns:
//   - The kept anchor indices, in acceptance order.
//   - An ErrStructural error if boxes and scores disagree in length.
func ApplyNMS(boxes []images.Rect, scores []float32, config *NMSConfig, cache *OverlapCache) ([]int, error) {
	if len(boxes) != len(scores) {
		return nil, Structuralf("%d boxes but %d scores", len(boxes), len(scores))
	}

	candidates := SortScoreIndices(scores, config.TopK)
	kept := make([]int, 0, len(candidates))

	for _, idx := range candidates {
		keep := true
		for _, k := range kept {
			if cache.overlap(boxes, idx, k) > config.IoUThreshold {
				keep = false
				break
			}
		}
		if keep {
			kept = append(kept, idx)
		}
	}

	return kept, nil
}
