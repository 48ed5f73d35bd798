// Package ssd - Detection output stage of Single Shot Detector style models.
//
// The stage turns the raw location, confidence and prior tensors of an SSD head
// into a flat list of [image_id, label, confidence, xmin, ymin, xmax, ymax]
// records, optionally appending them to per-class evaluation files.
package ssd

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detection-output/models/postprocess"
)

// ErrConfig marks a DetectionOutput configuration that cannot be used.
var ErrConfig = errors.New("invalid detection output configuration")

// CodeType selects how location predictions are encoded relative to priors.
type CodeType string

const (
	// CodeTypeCenterSize encodes center offsets scaled by the prior size and
	// log-space width/height ratios.
	CodeTypeCenterSize CodeType = "CENTER_SIZE"
	// CodeTypeCorner encodes raw corner offsets from the prior corners.
	CodeTypeCorner CodeType = "CORNER"
	// CodeTypeCornerSize encodes corner offsets scaled by the prior size.
	CodeTypeCornerSize CodeType = "CORNER_SIZE"
)

// OutputFormatVOC is the only output format that enables persistence. It is
// matched exactly; "voc" does not enable it.
const OutputFormatVOC = "VOC"

// SaveParams configures the optional evaluation output.
type SaveParams struct {
	OutputDirectory  string `koanf:"outputdirectory" yaml:"outputdirectory"`
	OutputNamePrefix string `koanf:"outputnameprefix" yaml:"outputnameprefix"`
	OutputFormat     string `koanf:"outputformat" yaml:"outputformat"`
	LabelMapFile     string `koanf:"labelmapfile" yaml:"labelmapfile"`
	NameSizeFile     string `koanf:"namesizefile" yaml:"namesizefile"`
}

// Params configures a DetectionOutput.
type Params struct {
	// NumClasses is the number of classes, background included. Required.
	NumClasses int `koanf:"numclasses" yaml:"numclasses"`
	// ShareLocation is true when one box is predicted per prior for all classes.
	ShareLocation bool `koanf:"sharelocation" yaml:"sharelocation"`
	// BackgroundLabelID is skipped during decoding and suppression.
	BackgroundLabelID int `koanf:"backgroundlabelid" yaml:"backgroundlabelid"`
	// CodeType is the box encoding. Empty means CENTER_SIZE.
	CodeType CodeType `koanf:"codetype" yaml:"codetype"`
	// NMS configures suppression.
	NMS postprocess.NMSConfig `koanf:"nms" yaml:"nms"`
	// Save configures the optional VOC output.
	Save SaveParams `koanf:"save" yaml:"save"`
	// NumWorkers bounds how many images are decoded and suppressed concurrently.
	NumWorkers int `koanf:"numworkers" yaml:"numworkers"`
}

// DefaultParams returns shared-location CENTER_SIZE parameters with background
// label 0. NumClasses must still be set.
func DefaultParams() Params {
	return Params{
		ShareLocation:     true,
		BackgroundLabelID: 0,
		CodeType:          CodeTypeCenterSize,
		NMS:               postprocess.DefaultNMSConfig(),
		NumWorkers:        1,
	}
}

// Validate checks the parameters.
//
// Returns:
//   - An error wrapping ErrConfig describing the first problem found.
func (p *Params) Validate() error {
	if p.NumClasses <= 0 {
		return errors.Wrap(ErrConfig, "must specify num_classes")
	}
	switch p.CodeType {
	case "", CodeTypeCenterSize, CodeTypeCorner, CodeTypeCornerSize:
	default:
		return errors.Wrapf(ErrConfig, "unknown code type %q", p.CodeType)
	}
	if err := p.NMS.Validate(); err != nil {
		return errors.Wrap(ErrConfig, err.Error())
	}
	if p.NumWorkers < 0 {
		return errors.Wrapf(ErrConfig, "num_workers must be non negative, got %d", p.NumWorkers)
	}
	return nil
}

// NumLocClasses returns how many location predictions exist per prior.
func (p *Params) NumLocClasses() int {
	if p.ShareLocation {
		return 1
	}
	return p.NumClasses
}

// LocLabel returns the location label used by class c: -1 when locations are
// shared, c otherwise.
func (p *Params) LocLabel(c int) int {
	if p.ShareLocation {
		return -1
	}
	return c
}

func (p *Params) saveEnabledFormat() bool {
	return p.Save.OutputFormat == OutputFormatVOC
}
