package encoder

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"math"

	"github.com/ericpauley/go-quantize/quantize"
	xdraw "golang.org/x/image/draw"

	"github.com/Skryldev/image-compressor/core"
	apperrors "github.com/Skryldev/image-compressor/errors"
)

// GIF encodes single- and multi-frame GIF.  Quality controls palette size
// (see PaletteSize); each frame gets its own median-cut palette and is
// Floyd-Steinberg dithered whenever that palette is smaller than 256
// colours.
type GIF struct{}

func NewGIF() *GIF { return &GIF{} }

// PaletteSize maps quality onto the number of palette entries:
// round(256*q/100), never fewer than 2.
func PaletteSize(quality int) int {
	n := int(math.Round(256 * float64(core.ClampQuality(quality)) / 100))
	return max(2, n)
}

func (g *GIF) Encode(ctx context.Context, r *core.Raster, quality int) ([]byte, error) {
	return g.EncodeAll(ctx, &core.Animation{
		Width:  r.Width,
		Height: r.Height,
		Frames: []core.Frame{{Raster: r}},
	}, quality)
}

func (g *GIF) EncodeAll(_ context.Context, a *core.Animation, quality int) ([]byte, error) {
	colors := PaletteSize(quality)
	out := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(a.Frames)),
		Delay:     make([]int, 0, len(a.Frames)),
		Disposal:  make([]byte, 0, len(a.Frames)),
		LoopCount: a.LoopCount,
		Config:    image.Config{Width: a.Width, Height: a.Height},
	}
	for _, f := range a.Frames {
		out.Image = append(out.Image, quantizeFrame(f.Raster, colors))
		out.Delay = append(out.Delay, f.Delay)
		// Frames are full canvases, so clear before drawing the next one.
		out.Disposal = append(out.Disposal, gif.DisposalBackground)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, out); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "gif.encode", apperrors.ErrBackendFailure, err)
	}
	return buf.Bytes(), nil
}

func quantizeFrame(r *core.Raster, colors int) *image.Paletted {
	src := r.NRGBA()
	q := quantize.MedianCutQuantizer{AddTransparent: !r.Opaque()}
	palette := q.Quantize(make(color.Palette, 0, colors), src)

	dst := image.NewPaletted(src.Bounds(), palette)
	var drawer xdraw.Drawer = xdraw.Src
	if colors < 256 {
		drawer = xdraw.FloydSteinberg
	}
	drawer.Draw(dst, dst.Bounds(), src, image.Point{})
	return dst
}
