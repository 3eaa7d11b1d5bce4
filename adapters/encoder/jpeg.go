// Package encoder provides format-specific encoders for core.Raster values.
package encoder

import (
	"bytes"
	"context"
	"image/jpeg"

	"github.com/Skryldev/image-compressor/core"
	apperrors "github.com/Skryldev/image-compressor/errors"
)

// JPEG encodes baseline JPEG with the standard library.  Quality maps
// directly onto the libjpeg scale; 0 is raised to 1, the lowest the
// encoder accepts.
type JPEG struct{}

func NewJPEG() *JPEG { return &JPEG{} }

func (j *JPEG) Encode(_ context.Context, r *core.Raster, quality int) ([]byte, error) {
	var buf bytes.Buffer
	opts := &jpeg.Options{Quality: max(1, core.ClampQuality(quality))}
	if err := jpeg.Encode(&buf, r.NRGBA(), opts); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "jpeg.encode", apperrors.ErrBackendFailure, err)
	}
	return buf.Bytes(), nil
}
