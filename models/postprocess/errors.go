package postprocess

import "github.com/pkg/errors"

// ErrStructural marks inputs that are internally inconsistent, such as
// prediction tensors whose anchor counts disagree or a class with no scores.
// A pass that hits it must stop: skipping the offending entry would silently
// corrupt every downstream metric.
var ErrStructural = errors.New("inconsistent detection inputs")

// Structuralf returns an error wrapping ErrStructural with a formatted message.
func Structuralf(format string, args ...any) error {
	return errors.Wrapf(ErrStructural, format, args...)
}

// IsStructural reports whether err was caused by inconsistent inputs.
func IsStructural(err error) bool {
	return errors.Is(err, ErrStructural)
}
