package ssd

import (
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detection-output/images"
	"github.com/nvr-ai/go-detection-output/models/postprocess"
)

// imageDetections holds the suppression state of one image.
type imageDetections struct {
	// boxes are the decoded boxes per location slot; nil for skipped slots.
	boxes [][]images.Rect
	// scores are the raw scores per class.
	scores [][]float32
	// indices are the kept anchors per class; nil for the background class.
	indices [][]int
}

// Output is the packed result of a forward pass.
type Output struct {
	// Detections are the kept detections ordered by image, then class label,
	// then suppression rank.
	Detections []postprocess.Result

	data    []float32
	offsets []int
}

// Count returns the number of kept detections in the batch.
func (o *Output) Count() int {
	return len(o.Detections)
}

// Data returns the row-major count x 7 record buffer.
func (o *Output) Data() []float32 {
	return o.data
}

// Shape returns the buffer shape, (1, 1, count, 7).
func (o *Output) Shape() []int {
	return []int{1, 1, o.Count(), postprocess.RecordSize}
}

// ImageResults returns the detections of image i.
func (o *Output) ImageResults(i int) []postprocess.Result {
	return o.Detections[o.offsets[i]:o.offsets[i+1]]
}

// Tensor wraps the record buffer in a (1, 1, count, 7) tensor without copying.
func (o *Output) Tensor() *tensor.Dense {
	return tensor.New(
		tensor.WithShape(o.Shape()...),
		tensor.WithBacking(o.data),
	)
}

// packDetections sizes the output from the kept index lists, then writes one
// clipped record per kept anchor.
func packDetections(all []imageDetections, p *Params) (*Output, error) {
	count := 0
	for _, det := range all {
		for _, kept := range det.indices {
			count += len(kept)
		}
	}

	out := &Output{
		Detections: make([]postprocess.Result, 0, count),
		data:       make([]float32, count*postprocess.RecordSize),
		offsets:    make([]int, len(all)+1),
	}

	for i, det := range all {
		out.offsets[i] = len(out.Detections)
		for label, kept := range det.indices {
			if len(kept) == 0 {
				continue
			}
			slot := locSlot(p.LocLabel(label))
			if slot >= len(det.boxes) || det.boxes[slot] == nil {
				return nil, postprocess.Structuralf("could not find location predictions for label %d", p.LocLabel(label))
			}
			boxes := det.boxes[slot]
			scores := det.scores[label]

			for _, idx := range kept {
				r := postprocess.Result{
					Image: i,
					Class: label,
					Score: scores[idx],
					Box:   boxes[idx].Clip(),
				}
				rec := r.Record()
				copy(out.data[len(out.Detections)*postprocess.RecordSize:], rec[:])
				out.Detections = append(out.Detections, r)
			}
		}
	}
	out.offsets[len(all)] = len(out.Detections)

	return out, nil
}
