// Package postprocess - Postprocessing utilities for detection models.
package postprocess

import (
	"github.com/nvr-ai/go-detection-output/images"
)

// RecordSize is the number of float32 fields in a packed detection record:
// [image_index, class_label, confidence, xmin, ymin, xmax, ymax].
const RecordSize = 7

// Result represents a single kept detection.
type Result struct {
	// The index of the image within the batch.
	Image int
	// The predicted class label of the result.
	Class int
	// The confidence score of the result.
	Score float32
	// The clipped bounding box of the result.
	Box images.Rect
}

// Record flattens the result into its packed 7-field form.
func (r Result) Record() [RecordSize]float32 {
	return [RecordSize]float32{
		float32(r.Image),
		float32(r.Class),
		r.Score,
		r.Box.X1,
		r.Box.Y1,
		r.Box.X2,
		r.Box.Y2,
	}
}
