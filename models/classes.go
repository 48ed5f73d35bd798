package models

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// OutputClass represents one detection label.
type OutputClass struct {
	// The integer label produced by the model.
	Index int `yaml:"label"`
	// The name used for output files.
	Name string `yaml:"name"`
	// The human-readable label, informational only.
	DisplayName string `yaml:"display_name,omitempty"`
}

// OutputClassSet ties a style to its full list of labels.
type OutputClassSet struct {
	// Class set identifier.
	Style ModelFamily `yaml:"-"`
	// Classes that are supported and mappable.
	Classes []OutputClass `yaml:"items"`
	// idxToName for lookup by label
	idxToName map[int]string
}

// BuildIndexNameMap builds the label->name map.
//
// Returns:
//   - An error if two classes share a label or a class has no name.
func (s *OutputClassSet) BuildIndexNameMap() error {
	s.idxToName = make(map[int]string, len(s.Classes))
	for _, c := range s.Classes {
		if c.Name == "" {
			return errors.Errorf("label %d has no name", c.Index)
		}
		if _, ok := s.idxToName[c.Index]; ok {
			return errors.Errorf("duplicate label %d", c.Index)
		}
		s.idxToName[c.Index] = c.Name
	}
	return nil
}

// Name returns the name for a label.
//
// Name never writes to the set, so it is safe for concurrent use. Without a
// built index it scans Classes.
func (s *OutputClassSet) Name(idx int) (string, bool) {
	if s.idxToName == nil {
		for _, c := range s.Classes {
			if c.Index == idx {
				return c.Name, true
			}
		}
		return "", false
	}
	name, ok := s.idxToName[idx]
	return name, ok
}

// PascalVOCClasses is the 20 Pascal VOC classes + "background" at index 0.
var PascalVOCClasses = OutputClassSet{
	Style: ModelFamilyVOC,
	Classes: []OutputClass{
		{0, "background", "background"},
		{1, "aeroplane", "aeroplane"},
		{2, "bicycle", "bicycle"},
		{3, "bird", "bird"},
		{4, "boat", "boat"},
		{5, "bottle", "bottle"},
		{6, "bus", "bus"},
		{7, "car", "car"},
		{8, "cat", "cat"},
		{9, "chair", "chair"},
		{10, "cow", "cow"},
		{11, "diningtable", "diningtable"},
		{12, "dog", "dog"},
		{13, "horse", "horse"},
		{14, "motorbike", "motorbike"},
		{15, "person", "person"},
		{16, "pottedplant", "pottedplant"},
		{17, "sheep", "sheep"},
		{18, "sofa", "sofa"},
		{19, "train", "train"},
		{20, "tvmonitor", "tvmonitor"},
	},
}

// LoadLabelMap reads a YAML label map.
//
// The file lists one entry per label:
//
//	items:
//	  - name: background
//	    label: 0
//	  - name: aeroplane
//	    label: 1
//	    display_name: Aeroplane
//
// Arguments:
//   - path: Path to the YAML file, or a built-in family name ("voc", "coco").
//
// Returns:
//   - The label map, with its lookup index built.
//   - An error if the file cannot be read, is malformed, or maps a label twice.
func LoadLabelMap(path string) (*OutputClassSet, error) {
	if IsBuiltinLabelMap(path) {
		return NewBuiltinLabelMap(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read label map file %s", path)
	}

	set := &OutputClassSet{Style: ModelFamilyCustom}
	if err := yaml.Unmarshal(data, set); err != nil {
		return nil, errors.Wrapf(err, "failed to parse label map file %s", path)
	}
	if len(set.Classes) == 0 {
		return nil, errors.Errorf("label map file %s has no items", path)
	}
	if err := set.BuildIndexNameMap(); err != nil {
		return nil, errors.Wrapf(err, "failed to convert label to name in %s", path)
	}

	return set, nil
}
