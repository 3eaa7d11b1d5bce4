package decoder

import (
	"bytes"
	"context"
	"errors"

	"golang.org/x/image/webp"

	"github.com/Skryldev/image-compressor/core"
	apperrors "github.com/Skryldev/image-compressor/errors"
	"github.com/Skryldev/image-compressor/utils"
)

var errAnimatedWebP = errors.New("animated WebP is not supported")

// WebP decodes lossy (VP8) and lossless (VP8L) WebP, including the alpha
// chunk, using golang.org/x/image/webp.  Animated WebP is rejected as an
// unsupported variant before decoding starts.
type WebP struct{}

func NewWebP() *WebP { return &WebP{} }

func (w *WebP) Dimensions(data []byte) (int, int, error) {
	if utils.IsAnimatedWebP(data) {
		return 0, 0, apperrors.Wrap(apperrors.CategoryDecode, "webp.config", apperrors.ErrUnsupportedVariant, errAnimatedWebP)
	}
	cfg, err := webp.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, decodeError("webp.config", err)
	}
	return cfg.Width, cfg.Height, nil
}

func (w *WebP) Decode(_ context.Context, data []byte) (*core.Raster, error) {
	if utils.IsAnimatedWebP(data) {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "webp.decode", apperrors.ErrUnsupportedVariant, errAnimatedWebP)
	}
	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, decodeError("webp.decode", err)
	}
	return core.RasterFromImage(img), nil
}
