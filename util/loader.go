package util

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// NameSize is one entry of a name/size file: the image name used in
// evaluation output and the original image dimensions in pixels.
type NameSize struct {
	// Name is the image identifier written at the start of each output line.
	Name string
	// Height is the original image height.
	Height int
	// Width is the original image width.
	Width int
}

// LoadNameSizeFile reads an ordered list of images and their sizes.
//
// The file holds whitespace separated "name height width" triples, usually one
// per line. Entries keep file order; the n-th entry describes the n-th image
// fed through the detector.
//
// Arguments:
// - path: Path of the name/size file.
//
// Returns:
// - []NameSize: The entries in file order.
// - error: Error if the file cannot be opened or a triple is malformed.
func LoadNameSizeFile(path string) ([]NameSize, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open name size file %s", path)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Split(bufio.ScanWords)

	var fields []string
	for scanner.Scan() {
		fields = append(fields, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read name size file %s", path)
	}
	if len(fields)%3 != 0 {
		return nil, errors.Errorf("name size file %s has %d fields, want name height width triples", path, len(fields))
	}

	entries := make([]NameSize, 0, len(fields)/3)
	for i := 0; i < len(fields); i += 3 {
		height, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid height for %s", fields[i])
		}
		width, err := strconv.Atoi(fields[i+2])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid width for %s", fields[i])
		}
		if height <= 0 || width <= 0 {
			return nil, errors.Errorf("invalid size %dx%d for %s", width, height, fields[i])
		}
		entries = append(entries, NameSize{
			Name:   strings.TrimSpace(fields[i]),
			Height: height,
			Width:  width,
		})
	}

	return entries, nil
}
