package ssd

import (
	"github.com/nvr-ai/go-detection-output/images"
	"github.com/nvr-ai/go-detection-output/models/postprocess"
)

// GetPriorBoxes splits a prior tensor into boxes and variances.
//
// The tensor holds numPriors boxes as [xmin, ymin, xmax, ymax] followed by
// numPriors variance vectors of 4 values each. Priors are identical for every
// image in a batch.
//
// Arguments:
//   - data: The flattened (1, 2, numPriors*4) prior tensor.
//   - numPriors: The number of priors.
//
// Returns:
//   - The prior boxes.
//   - The variances, index-aligned with the boxes.
//   - An ErrStructural error if data is shorter than 8*numPriors.
func GetPriorBoxes(data []float32, numPriors int) ([]images.Rect, [][4]float32, error) {
	if numPriors < 0 || len(data) < numPriors*8 {
		return nil, nil, postprocess.Structuralf("prior tensor has %d values, want %d for %d priors",
			len(data), numPriors*8, numPriors)
	}

	boxes := make([]images.Rect, numPriors)
	variances := make([][4]float32, numPriors)
	for i := range boxes {
		off := i * 4
		boxes[i] = images.Rect{
			X1: data[off],
			Y1: data[off+1],
			X2: data[off+2],
			Y2: data[off+3],
		}
	}

	base := numPriors * 4
	for i := range variances {
		off := base + i*4
		copy(variances[i][:], data[off:off+4])
	}

	return boxes, variances, nil
}
