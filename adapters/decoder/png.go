package decoder

import (
	"bytes"
	"context"
	"image/png"

	"github.com/Skryldev/image-compressor/core"
)

// PNG decodes PNG images using the standard library.  CRC mismatches and
// truncated IDAT streams surface as corrupt input.
type PNG struct{}

func NewPNG() *PNG { return &PNG{} }

func (p *PNG) Dimensions(data []byte) (int, int, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, decodeError("png.config", err)
	}
	return cfg.Width, cfg.Height, nil
}

func (p *PNG) Decode(_ context.Context, data []byte) (*core.Raster, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, decodeError("png.decode", err)
	}
	return core.RasterFromImage(img), nil
}
