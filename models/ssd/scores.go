package ssd

import (
	"github.com/nvr-ai/go-detection-output/models/postprocess"
)

// GetConfidenceScores regroups a flat [image][prior][class] confidence tensor
// into [image][class][prior]. Scores are copied as is.
func GetConfidenceScores(data []float32, num, numPriors, numClasses int) ([][][]float32, error) {
	if want := num * numPriors * numClasses; len(data) != want {
		return nil, postprocess.Structuralf("confidence tensor has %d values, want %d (%d images x %d priors x %d classes)",
			len(data), want, num, numPriors, numClasses)
	}

	scores := make([][][]float32, num)
	for i := range scores {
		scores[i] = make([][]float32, numClasses)
		for c := range scores[i] {
			scores[i][c] = make([]float32, numPriors)
		}
		for p := 0; p < numPriors; p++ {
			start := (i*numPriors + p) * numClasses
			for c := 0; c < numClasses; c++ {
				scores[i][c][p] = data[start+c]
			}
		}
	}

	return scores, nil
}
