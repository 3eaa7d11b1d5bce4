package decoder

import (
	"errors"
	"image/jpeg"
	"image/png"
	"strings"

	apperrors "github.com/Skryldev/image-compressor/errors"
)

// decodeError classifies a codec failure.  Valid-but-unhandled features
// become ErrUnsupportedVariant; anything else (bad structure, truncation,
// checksum mismatch) is ErrCorrupt.
func decodeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUnsupported(err) {
		return apperrors.Wrap(apperrors.CategoryDecode, op, apperrors.ErrUnsupportedVariant, err)
	}
	return apperrors.Wrap(apperrors.CategoryDecode, op, apperrors.ErrCorrupt, err)
}

func isUnsupported(err error) bool {
	var pu png.UnsupportedError
	var ju jpeg.UnsupportedError
	if errors.As(err, &pu) || errors.As(err, &ju) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unsupported") ||
		strings.Contains(msg, "not supported") ||
		strings.Contains(msg, "not implemented")
}
