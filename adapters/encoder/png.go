package encoder

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"

	"github.com/Skryldev/image-compressor/core"
	apperrors "github.com/Skryldev/image-compressor/errors"
)

// PNG encodes lossless PNG.  Because PNG never discards pixel data, quality
// selects encoder effort instead: a higher quality spends more CPU for a
// smaller file.  See CompressionLevel for the mapping.
//
// Opaque images with at most 256 distinct colours are written as an
// indexed PNG with an exact palette, which is still lossless.
type PNG struct{}

func NewPNG() *PNG { return &PNG{} }

// CompressionLevel maps quality onto zlib effort:
//
//	 0-32  png.BestSpeed
//	33-65  png.DefaultCompression
//	66-100 png.BestCompression
func CompressionLevel(quality int) png.CompressionLevel {
	switch q := core.ClampQuality(quality); {
	case q <= 32:
		return png.BestSpeed
	case q <= 65:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

func (p *PNG) Encode(_ context.Context, r *core.Raster, quality int) ([]byte, error) {
	var img image.Image = r.NRGBA()
	if pm, ok := exactPalette(r); ok {
		img = pm
	}

	enc := &png.Encoder{CompressionLevel: CompressionLevel(quality)}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, img); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "png.encode", apperrors.ErrBackendFailure, err)
	}
	return buf.Bytes(), nil
}

// exactPalette returns a paletted copy of r when r is opaque and uses no
// more than 256 colours.  Palette order is first-occurrence, so the output
// is deterministic.
func exactPalette(r *core.Raster) (*image.Paletted, bool) {
	if r.Empty() || !r.Opaque() {
		return nil, false
	}
	index := make(map[uint32]uint8, 256)
	palette := make(color.Palette, 0, 256)
	indices := make([]uint8, r.Width*r.Height)
	for i, px := 0, 0; i < len(r.Pix); i, px = i+core.Channels, px+1 {
		key := uint32(r.Pix[i])<<16 | uint32(r.Pix[i+1])<<8 | uint32(r.Pix[i+2])
		idx, seen := index[key]
		if !seen {
			if len(palette) == 256 {
				return nil, false
			}
			idx = uint8(len(palette))
			index[key] = idx
			palette = append(palette, color.NRGBA{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2], A: 0xFF})
		}
		indices[px] = idx
	}
	return &image.Paletted{
		Pix:     indices,
		Stride:  r.Width,
		Rect:    image.Rect(0, 0, r.Width, r.Height),
		Palette: palette,
	}, true
}
