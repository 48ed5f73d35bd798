package models

// ModelFamily identifies the dataset a label map was built for.
type ModelFamily string

const (
	// ModelFamilyVOC is the Pascal VOC model family (20 classes + background).
	ModelFamilyVOC ModelFamily = "voc"
	// ModelFamilyCOCO is the COCO model family (80 classes + background).
	ModelFamilyCOCO ModelFamily = "coco"
	// ModelFamilyCustom is a label map loaded from a file.
	ModelFamilyCustom ModelFamily = "custom"
)
