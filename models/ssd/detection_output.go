package ssd

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detection-output/eval"
	"github.com/nvr-ai/go-detection-output/images"
	"github.com/nvr-ai/go-detection-output/models"
	"github.com/nvr-ai/go-detection-output/models/postprocess"
	"github.com/nvr-ai/go-detection-output/util"
)

// DetectionOutput decodes, suppresses and packs SSD head outputs.
//
// Forward passes are serialized: the VOC writer matches images to names with
// a counter that must advance in batch order.
type DetectionOutput struct {
	mu     sync.Mutex
	params Params
	writer *eval.VOCWriter
	logger *zap.Logger
}

// Option customizes a DetectionOutput.
type Option func(*DetectionOutput)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(d *DetectionOutput) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDetectionOutput validates params and prepares the optional VOC output.
//
// Persistence problems that only affect evaluation output (no VOC format, no
// or unreadable label map, no or unreadable name/size file) are logged as
// warnings and disable persistence. A directory that cannot be created is an
// error.
//
// Arguments:
//   - params: The detection output parameters.
//   - opts: Optional settings such as WithLogger.
//
// Returns:
//   - The detection output.
//   - An error wrapping ErrConfig for invalid parameters, or a filesystem error.
func NewDetectionOutput(params Params, opts ...Option) (*DetectionOutput, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.CodeType == "" {
		params.CodeType = CodeTypeCenterSize
	}
	if params.NumWorkers == 0 {
		params.NumWorkers = 1
	}

	d := &DetectionOutput{
		params: params,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	writer, err := d.newWriter()
	if err != nil {
		return nil, err
	}
	d.writer = writer

	return d, nil
}

func (d *DetectionOutput) newWriter() (*eval.VOCWriter, error) {
	save := d.params.Save
	if save.OutputDirectory == "" {
		return nil, nil
	}

	if !d.params.saveEnabledFormat() {
		d.logger.Warn("Unsupported output format, results will not be saved",
			zap.String("format", save.OutputFormat))
		return nil, nil
	}
	if save.LabelMapFile == "" {
		d.logger.Warn("Provide label_map_file if output results for VOC")
		return nil, nil
	}
	if save.NameSizeFile == "" {
		d.logger.Warn("Provide name_size_file if output results for VOC")
		return nil, nil
	}

	labels, err := models.LoadLabelMap(save.LabelMapFile)
	if err != nil {
		d.logger.Warn("Failed to load label map, results will not be saved", zap.Error(err))
		return nil, nil
	}
	sizes, err := util.LoadNameSizeFile(save.NameSizeFile)
	if err != nil {
		d.logger.Warn("Failed to load name size file, results will not be saved", zap.Error(err))
		return nil, nil
	}

	return eval.NewVOCWriter(eval.NewVOCWriterArgs{
		OutputDirectory:   save.OutputDirectory,
		OutputNamePrefix:  save.OutputNamePrefix,
		Labels:            labels,
		BackgroundLabelID: d.params.BackgroundLabelID,
		Images:            sizes,
		Logger:            d.logger,
	})
}

// Params returns the effective parameters.
func (d *DetectionOutput) Params() Params {
	return d.params
}

// Saving reports whether results are persisted.
func (d *DetectionOutput) Saving() bool {
	return d.writer != nil
}

// Inputs are the flattened tensors of one batch.
type Inputs struct {
	// Loc is (NumImages, numPriors*numLocClasses*4).
	Loc []float32
	// Conf is (NumImages, numPriors*NumClasses).
	Conf []float32
	// Prior is (1, 2, numPriors*4): boxes, then variances.
	Prior []float32
	// NumImages is the batch size.
	NumImages int
}

// Forward runs decode, suppression and packing over a batch, then appends the
// results to the VOC output when enabled.
//
// Arguments:
//   - in: The batch tensors.
//
// Returns:
//   - The packed detections.
//   - An ErrStructural error if the tensors disagree with each other or with the
//     parameters. Nothing is written in that case.
func (d *DetectionOutput) Forward(in Inputs) (*Output, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := &d.params
	num := in.NumImages
	if num < 0 {
		return nil, postprocess.Structuralf("negative batch size %d", num)
	}
	if len(in.Prior)%8 != 0 {
		return nil, postprocess.Structuralf("prior tensor has %d values, want a multiple of 8", len(in.Prior))
	}
	numPriors := len(in.Prior) / 8

	if want := num * numPriors * p.NumLocClasses() * 4; len(in.Loc) != want {
		return nil, postprocess.Structuralf("number of priors must match number of location predictions: %d values, want %d",
			len(in.Loc), want)
	}
	if want := num * numPriors * p.NumClasses; len(in.Conf) != want {
		return nil, postprocess.Structuralf("number of priors must match number of confidence predictions: %d values, want %d",
			len(in.Conf), want)
	}

	locPreds, err := GetLocPredictions(in.Loc, num, numPriors, p.NumLocClasses())
	if err != nil {
		return nil, err
	}
	confScores, err := GetConfidenceScores(in.Conf, num, numPriors, p.NumClasses)
	if err != nil {
		return nil, err
	}
	priors, variances, err := GetPriorBoxes(in.Prior, numPriors)
	if err != nil {
		return nil, err
	}

	// Each image writes only its own slot, so the packed order does not depend
	// on scheduling.
	all := make([]imageDetections, num)
	var g errgroup.Group
	g.SetLimit(p.NumWorkers)
	for i := 0; i < num; i++ {
		i := i
		g.Go(func() error {
			det, err := d.detectImage(locPreds[i], confScores[i], priors, variances)
			if err != nil {
				return errors.WithMessagef(err, "image %d", i)
			}
			all[i] = det
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out, err := packDetections(all, p)
	if err != nil {
		return nil, err
	}

	if d.writer != nil {
		for i := 0; i < num; i++ {
			if err := d.writer.WriteImage(out.ImageResults(i)); err != nil {
				return nil, errors.WithMessagef(err, "image %d", i)
			}
		}
	}

	d.logger.Debug("Detection output",
		zap.Int("images", num),
		zap.Int("priors", numPriors),
		zap.Int("kept", out.Count()))

	return out, nil
}

// detectImage decodes the boxes of one image and suppresses every
// non-background class.
func (d *DetectionOutput) detectImage(locPreds [][]images.Rect, scores [][]float32,
	priors []images.Rect, variances [][4]float32) (imageDetections, error) {
	p := &d.params
	det := imageDetections{
		boxes:   make([][]images.Rect, p.NumLocClasses()),
		scores:  scores,
		indices: make([][]int, p.NumClasses),
	}

	for c := 0; c < p.NumLocClasses(); c++ {
		label := p.LocLabel(c)
		if label == p.BackgroundLabelID {
			continue
		}
		slot := locSlot(label)
		if slot >= len(locPreds) || locPreds[slot] == nil {
			return det, postprocess.Structuralf("could not find location predictions for label %d", label)
		}
		decoded, err := DecodeBoxes(priors, variances, p.CodeType, locPreds[slot])
		if err != nil {
			return det, errors.WithMessagef(err, "label %d", label)
		}
		det.boxes[slot] = decoded
	}

	// With shared locations every class suppresses over the same boxes, so
	// their pairwise overlaps are computed once.
	var cache *postprocess.OverlapCache
	if p.ShareLocation {
		cache = postprocess.NewOverlapCache()
	}

	for c := 0; c < p.NumClasses; c++ {
		if c == p.BackgroundLabelID {
			continue
		}
		if c >= len(scores) || scores[c] == nil {
			return det, postprocess.Structuralf("could not find confidence predictions for label %d", c)
		}
		label := p.LocLabel(c)
		slot := locSlot(label)
		if slot >= len(det.boxes) || det.boxes[slot] == nil {
			return det, postprocess.Structuralf("could not find location predictions for label %d", label)
		}

		kept, err := postprocess.ApplyNMS(det.boxes[slot], scores[c], &p.NMS, cache)
		if err != nil {
			return det, errors.WithMessagef(err, "class %d", c)
		}
		det.indices[c] = kept
	}

	return det, nil
}

// ForwardTensors is Forward for framework tensors.
//
// Arguments:
//   - loc: (images, priors*locClasses*4[, 1, 1]) float32 tensor.
//   - conf: (images, priors*classes[, 1, 1]) float32 tensor.
//   - prior: (1, 2, priors*4) float32 tensor.
//
// Returns:
//   - The packed detections; Output.Tensor wraps them as (1, 1, count, 7).
//   - An ErrStructural error for tensors of the wrong type or shape.
func (d *DetectionOutput) ForwardTensors(loc, conf, prior *tensor.Dense) (*Output, error) {
	locData, err := float32Data("location", loc)
	if err != nil {
		return nil, err
	}
	confData, err := float32Data("confidence", conf)
	if err != nil {
		return nil, err
	}
	priorData, err := float32Data("prior", prior)
	if err != nil {
		return nil, err
	}

	locShape := loc.Shape()
	if locShape.Dims() < 2 {
		return nil, postprocess.Structuralf("location tensor must be at least 2-D, got %v", locShape)
	}
	if confShape := conf.Shape(); confShape.Dims() < 2 || confShape[0] != locShape[0] {
		return nil, postprocess.Structuralf("confidence tensor %v does not match location batch %d", confShape, locShape[0])
	}
	if priorShape := prior.Shape(); priorShape.Dims() != 3 || priorShape[0] != 1 || priorShape[1] != 2 {
		return nil, postprocess.Structuralf("prior tensor must be (1, 2, priors*4), got %v", priorShape)
	}

	return d.Forward(Inputs{
		Loc:       locData,
		Conf:      confData,
		Prior:     priorData,
		NumImages: locShape[0],
	})
}

func float32Data(name string, t *tensor.Dense) ([]float32, error) {
	if t == nil {
		return nil, postprocess.Structuralf("missing %s tensor", name)
	}
	if t.Dtype() != tensor.Float32 {
		return nil, postprocess.Structuralf("%s tensor must be float32, got %v", name, t.Dtype())
	}
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, postprocess.Structuralf("%s tensor has no float32 backing", name)
	}
	return data, nil
}
