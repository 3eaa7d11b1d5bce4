// Package decoder provides format-specific image decoders producing
// core.Raster values.
package decoder

import (
	"bytes"
	"context"
	"image/jpeg"

	"github.com/Skryldev/image-compressor/core"
)

// JPEG decodes baseline and progressive JPEG using the standard library.
// CMYK and YCCK inputs are converted to RGBA.
type JPEG struct{}

// NewJPEG returns an initialised JPEG decoder.
func NewJPEG() *JPEG { return &JPEG{} }

func (j *JPEG) Dimensions(data []byte) (int, int, error) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, decodeError("jpeg.config", err)
	}
	return cfg.Width, cfg.Height, nil
}

func (j *JPEG) Decode(_ context.Context, data []byte) (*core.Raster, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, decodeError("jpeg.decode", err)
	}
	return core.RasterFromImage(img), nil
}
