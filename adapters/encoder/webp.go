package encoder

import (
	"bytes"
	"context"
	"image"

	"github.com/chai2010/webp"

	"github.com/Skryldev/image-compressor/core"
	apperrors "github.com/Skryldev/image-compressor/errors"
)

// WebP encodes lossy WebP through libwebp (github.com/chai2010/webp).
// Quality maps directly onto libwebp's 0-100 scale.  libwebp runs
// single-threaded here, so output is deterministic.
type WebP struct{}

func NewWebP() *WebP { return &WebP{} }

func (w *WebP) Encode(_ context.Context, r *core.Raster, quality int) ([]byte, error) {
	var buf bytes.Buffer
	opts := &webp.Options{
		Lossless: false,
		Quality:  float32(core.ClampQuality(quality)),
	}
	if err := webp.Encode(&buf, straightRGBA(r), opts); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "webp.encode", apperrors.ErrBackendFailure, err)
	}
	return buf.Bytes(), nil
}

// straightRGBA wraps the raster bytes as an *image.RGBA without converting
// them.  libwebp's RGBA import expects straight alpha, which is what a Raster
// already holds, and an *image.RGBA is passed through to it untouched.
func straightRGBA(r *core.Raster) *image.RGBA {
	return &image.RGBA{
		Pix:    r.Pix,
		Stride: r.Width * core.Channels,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}
