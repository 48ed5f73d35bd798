package ssd

import (
	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-detection-output/images"
	"github.com/nvr-ai/go-detection-output/models/postprocess"
)

// GetLocPredictions regroups a flat location tensor.
//
// The tensor is laid out as [image][prior][locClass][4]. The result is indexed
// [image][slot][prior], where slot is the location class (always 0 when
// locations are shared; see locSlot).
//
// Arguments:
//   - data: The flattened location tensor.
//   - num: The number of images.
//   - numPriors: The number of priors per image.
//   - numLocClasses: 1 when locations are shared, the class count otherwise.
//
// Returns:
//   - The encoded predictions, one box per prior per slot per image.
//   - An ErrStructural error if data does not match the requested shape.
func GetLocPredictions(data []float32, num, numPriors, numLocClasses int) ([][][]images.Rect, error) {
	if want := num * numPriors * numLocClasses * 4; len(data) != want {
		return nil, postprocess.Structuralf("location tensor has %d values, want %d (%d images x %d priors x %d classes x 4)",
			len(data), want, num, numPriors, numLocClasses)
	}

	preds := make([][][]images.Rect, num)
	for i := range preds {
		preds[i] = make([][]images.Rect, numLocClasses)
		for c := range preds[i] {
			preds[i][c] = make([]images.Rect, numPriors)
		}
		for p := 0; p < numPriors; p++ {
			start := ((i*numPriors + p) * numLocClasses) * 4
			for c := 0; c < numLocClasses; c++ {
				off := start + c*4
				preds[i][c][p] = images.Rect{
					X1: data[off],
					Y1: data[off+1],
					X2: data[off+2],
					Y2: data[off+3],
				}
			}
		}
	}

	return preds, nil
}

// locSlot maps a location label to its slot; the shared label -1 uses slot 0.
func locSlot(label int) int {
	if label < 0 {
		return 0
	}
	return label
}

// DecodeBox inverts the prior encoding of a single prediction.
//
// For CENTER_SIZE:
//
//	cx = v0 * loc.X1 * priorWidth  + priorCenterX
//	cy = v1 * loc.Y1 * priorHeight + priorCenterY
//	w  = exp(v2 * loc.X2) * priorWidth
//	h  = exp(v3 * loc.Y2) * priorHeight
func DecodeBox(prior images.Rect, variance [4]float32, code CodeType, loc images.Rect) images.Rect {
	switch code {
	case CodeTypeCorner:
		return images.Rect{
			X1: prior.X1 + variance[0]*loc.X1,
			Y1: prior.Y1 + variance[1]*loc.Y1,
			X2: prior.X2 + variance[2]*loc.X2,
			Y2: prior.Y2 + variance[3]*loc.Y2,
		}
	case CodeTypeCornerSize:
		w := prior.Width()
		h := prior.Height()
		return images.Rect{
			X1: prior.X1 + variance[0]*loc.X1*w,
			Y1: prior.Y1 + variance[1]*loc.Y1*h,
			X2: prior.X2 + variance[2]*loc.X2*w,
			Y2: prior.Y2 + variance[3]*loc.Y2*h,
		}
	default:
		pw := prior.Width()
		ph := prior.Height()
		pcx := (prior.X1 + prior.X2) / 2
		pcy := (prior.Y1 + prior.Y2) / 2

		cx := variance[0]*loc.X1*pw + pcx
		cy := variance[1]*loc.Y1*ph + pcy
		w := math32.Exp(variance[2]*loc.X2) * pw
		h := math32.Exp(variance[3]*loc.Y2) * ph

		return images.Rect{
			X1: cx - w/2,
			Y1: cy - h/2,
			X2: cx + w/2,
			Y2: cy + h/2,
		}
	}
}

// DecodeBoxes decodes one prediction per prior.
//
// Returns:
//   - The decoded boxes, index-aligned with priors.
//   - An ErrStructural error if priors, variances and predictions differ in length.
func DecodeBoxes(priors []images.Rect, variances [][4]float32, code CodeType, preds []images.Rect) ([]images.Rect, error) {
	if len(priors) != len(variances) || len(priors) != len(preds) {
		return nil, postprocess.Structuralf("%d priors, %d variances and %d predictions",
			len(priors), len(variances), len(preds))
	}

	decoded := make([]images.Rect, len(preds))
	for i, loc := range preds {
		decoded[i] = DecodeBox(priors[i], variances[i], code, loc)
	}
	return decoded, nil
}
