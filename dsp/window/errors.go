package window

import "errors"

var (
	errInvalidLength    = errors.New("window: length must be positive")
	errMismatchedLength = errors.New("window: samples and coefficients differ in length")
)

func validateLength(size int) error {
	if size <= 0 {
		return errInvalidLength
	}

	return nil
}
