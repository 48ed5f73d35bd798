// Package eval - Writes detections in the per-class text format used by
// Pascal VOC style evaluation tools.
package eval

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-detection-output/models"
	"github.com/nvr-ai/go-detection-output/models/postprocess"
	"github.com/nvr-ai/go-detection-output/util"
)

// NewVOCWriterArgs is the arguments for creating a new VOCWriter.
type NewVOCWriterArgs struct {
	// OutputDirectory receives one file per class. Created if missing.
	OutputDirectory string
	// OutputNamePrefix is prepended to every class file name.
	OutputNamePrefix string
	// Labels maps class labels to the names used in file names.
	Labels *models.OutputClassSet
	// BackgroundLabelID is never written.
	BackgroundLabelID int
	// Images lists image names and sizes in the order images are processed.
	Images []util.NameSize
	// Logger is optional.
	Logger *zap.Logger
}

// VOCWriter appends detections to <dir>/<prefix><class name>.txt, one line per
// detection:
//
//	<image name> <confidence> <xmin> <ymin> <xmax> <ymax>
//
// Coordinates are pixels in the original image, truncated toward zero. Images
// are matched to Images by an internal counter that advances once per
// WriteImage call.
type VOCWriter struct {
	mu         sync.Mutex
	dir        string
	prefix     string
	labels     *models.OutputClassSet
	background int
	images     []util.NameSize
	count      int
	logger     *zap.Logger
}

// NewVOCWriter creates the output directory and truncates the file of every
// non-background label, so results from a previous run are never mixed in.
//
// Arguments:
//   - args: The arguments for creating a new VOCWriter.
//
// Returns:
//   - The writer.
//   - An error if the directory or any class file cannot be created.
func NewVOCWriter(args NewVOCWriterArgs) (*VOCWriter, error) {
	if args.OutputDirectory == "" {
		return nil, errors.New("NewVOCWriter requires an output directory")
	}
	if args.Labels == nil {
		return nil, errors.New("NewVOCWriter requires a label map")
	}

	logger := args.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(args.OutputDirectory, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create directory %s", args.OutputDirectory)
	}

	w := &VOCWriter{
		dir:        args.OutputDirectory,
		prefix:     args.OutputNamePrefix,
		labels:     args.Labels,
		background: args.BackgroundLabelID,
		images:     args.Images,
		logger:     logger,
	}

	for _, class := range args.Labels.Classes {
		if class.Index == w.background {
			continue
		}
		f, err := os.Create(w.path(class.Name))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to truncate output for label %d", class.Index)
		}
		if err := f.Close(); err != nil {
			return nil, errors.Wrapf(err, "failed to truncate output for label %d", class.Index)
		}
	}

	logger.Info("VOC output enabled",
		zap.String("directory", w.dir),
		zap.String("prefix", w.prefix),
		zap.Int("images", len(w.images)))

	return w, nil
}

func (w *VOCWriter) path(name string) string {
	return filepath.Join(w.dir, w.prefix+name+".txt")
}

// Path returns the output file of a label.
func (w *VOCWriter) Path(label int) (string, bool) {
	name, ok := w.labels.Name(label)
	if !ok {
		return "", false
	}
	return w.path(name), true
}

// Count returns how many images have been written so far.
func (w *VOCWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// WriteImage appends the detections of the next image.
//
// Results must belong to a single image and be grouped by class, which is the
// order the packer emits them in. Every call consumes one name/size entry, even
// when results is empty.
//
// Returns:
//   - An ErrStructural error if the name/size list is exhausted or a class has
//     no name in the label map.
//   - A filesystem error if a class file cannot be appended to.
func (w *VOCWriter) WriteImage(results []postprocess.Result) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.count >= len(w.images) {
		return postprocess.Structuralf("image %d is past the %d entries of the name size list",
			w.count, len(w.images))
	}
	image := w.images[w.count]

	for start := 0; start < len(results); {
		end := start + 1
		for end < len(results) && results[end].Class == results[start].Class {
			end++
		}
		if err := w.appendClass(image, results[start:end]); err != nil {
			return err
		}
		start = end
	}

	w.count++
	return nil
}

func (w *VOCWriter) appendClass(image util.NameSize, results []postprocess.Result) error {
	label := results[0].Class
	path, ok := w.Path(label)
	if !ok {
		return postprocess.Structuralf("cannot find label %d in the label map", label)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}

	for _, r := range results {
		scaled := r.Box.Scale(image.Height, image.Width)
		_, err = fmt.Fprintf(f, "%s %s %d %d %d %d\n",
			image.Name,
			strconv.FormatFloat(float64(r.Score), 'g', 6, 32),
			int(scaled.X1),
			int(scaled.Y1),
			int(scaled.X2),
			int(scaled.Y2))
		if err != nil {
			f.Close()
			return errors.Wrapf(err, "failed to write %s", path)
		}
	}

	return errors.Wrapf(f.Close(), "failed to close %s", path)
}
