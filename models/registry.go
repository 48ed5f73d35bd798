// Package models - Label maps for detection model outputs.
package models

import (
	"strings"

	"github.com/pkg/errors"
)

// COCOClasses is the 80 COCO classes + "background" at index 0, as emitted by
// SSD heads trained on COCO. Names are file safe; spaces live in DisplayName.
var COCOClasses = OutputClassSet{
	Style: ModelFamilyCOCO,
	Classes: []OutputClass{
		{0, "background", "background"},
		{1, "person", "person"},
		{2, "bicycle", "bicycle"},
		{3, "car", "car"},
		{4, "motorcycle", "motorcycle"},
		{5, "airplane", "airplane"},
		{6, "bus", "bus"},
		{7, "train", "train"},
		{8, "truck", "truck"},
		{9, "boat", "boat"},
		{10, "traffic_light", "traffic light"},
		{11, "fire_hydrant", "fire hydrant"},
		{12, "stop_sign", "stop sign"},
		{13, "parking_meter", "parking meter"},
		{14, "bench", "bench"},
		{15, "bird", "bird"},
		{16, "cat", "cat"},
		{17, "dog", "dog"},
		{18, "horse", "horse"},
		{19, "sheep", "sheep"},
		{20, "cow", "cow"},
		{21, "elephant", "elephant"},
		{22, "bear", "bear"},
		{23, "zebra", "zebra"},
		{24, "giraffe", "giraffe"},
		{25, "backpack", "backpack"},
		{26, "umbrella", "umbrella"},
		{27, "handbag", "handbag"},
		{28, "tie", "tie"},
		{29, "suitcase", "suitcase"},
		{30, "frisbee", "frisbee"},
		{31, "skis", "skis"},
		{32, "snowboard", "snowboard"},
		{33, "sports_ball", "sports ball"},
		{34, "kite", "kite"},
		{35, "baseball_bat", "baseball bat"},
		{36, "baseball_glove", "baseball glove"},
		{37, "skateboard", "skateboard"},
		{38, "surfboard", "surfboard"},
		{39, "tennis_racket", "tennis racket"},
		{40, "bottle", "bottle"},
		{41, "wine_glass", "wine glass"},
		{42, "cup", "cup"},
		{43, "fork", "fork"},
		{44, "knife", "knife"},
		{45, "spoon", "spoon"},
		{46, "bowl", "bowl"},
		{47, "banana", "banana"},
		{48, "apple", "apple"},
		{49, "sandwich", "sandwich"},
		{50, "orange", "orange"},
		{51, "broccoli", "broccoli"},
		{52, "carrot", "carrot"},
		{53, "hot_dog", "hot dog"},
		{54, "pizza", "pizza"},
		{55, "donut", "donut"},
		{56, "cake", "cake"},
		{57, "chair", "chair"},
		{58, "couch", "couch"},
		{59, "potted_plant", "potted plant"},
		{60, "bed", "bed"},
		{61, "dining_table", "dining table"},
		{62, "toilet", "toilet"},
		{63, "tv", "tv"},
		{64, "laptop", "laptop"},
		{65, "mouse", "mouse"},
		{66, "remote", "remote"},
		{67, "keyboard", "keyboard"},
		{68, "cell_phone", "cell phone"},
		{69, "microwave", "microwave"},
		{70, "oven", "oven"},
		{71, "toaster", "toaster"},
		{72, "sink", "sink"},
		{73, "refrigerator", "refrigerator"},
		{74, "book", "book"},
		{75, "clock", "clock"},
		{76, "vase", "vase"},
		{77, "scissors", "scissors"},
		{78, "teddy_bear", "teddy bear"},
		{79, "hair_drier", "hair drier"},
		{80, "toothbrush", "toothbrush"},
	},
}

// builtinLabelMaps holds the label maps selectable by family name.
var builtinLabelMaps = map[ModelFamily]*OutputClassSet{
	ModelFamilyVOC:  &PascalVOCClasses,
	ModelFamilyCOCO: &COCOClasses,
}

func init() {
	for family, set := range builtinLabelMaps {
		if err := set.BuildIndexNameMap(); err != nil {
			panic(errors.Wrapf(err, "built-in label map %s", family))
		}
	}
}

// IsBuiltinLabelMap reports whether name selects a built-in label map.
func IsBuiltinLabelMap(name string) bool {
	_, ok := builtinLabelMaps[ModelFamily(strings.ToLower(name))]
	return ok
}

// NewBuiltinLabelMap returns a fresh copy of a built-in label map.
//
// Arguments:
//   - name: The family name, case insensitive ("voc" or "coco").
//
// Returns:
//   - The label map, with its lookup index built.
//   - An error if the family has no built-in label map.
func NewBuiltinLabelMap(name string) (*OutputClassSet, error) {
	family := ModelFamily(strings.ToLower(name))
	builtin, ok := builtinLabelMaps[family]
	if !ok {
		return nil, errors.Errorf("no built-in label map for %q", name)
	}

	set := &OutputClassSet{
		Style:   builtin.Style,
		Classes: append([]OutputClass(nil), builtin.Classes...),
	}
	if err := set.BuildIndexNameMap(); err != nil {
		return nil, err
	}
	return set, nil
}
