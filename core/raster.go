package core

import (
	"fmt"
	"image"
	"image/draw"
)

// Channels is the number of bytes per pixel in a Raster (R, G, B, A).
const Channels = 4

// Raster is the canonical decoded image: 8-bit RGBA with straight
// (non-premultiplied) alpha, row-major, stride Width*Channels.
//
// Invariant: len(Pix) == Width*Height*Channels.
type Raster struct {
	Width  int
	Height int
	Pix    []byte
}

// NewRaster allocates a zeroed (fully transparent) raster.
func NewRaster(width, height int) *Raster {
	return &Raster{Width: width, Height: height, Pix: make([]byte, width*height*Channels)}
}

// Validate checks the buffer-length invariant.
func (r *Raster) Validate() error {
	if r == nil {
		return fmt.Errorf("raster is nil")
	}
	if r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("raster has negative dimensions %dx%d", r.Width, r.Height)
	}
	if want := r.Width * r.Height * Channels; len(r.Pix) != want {
		return fmt.Errorf("raster buffer is %d bytes, want %d for %dx%d", len(r.Pix), want, r.Width, r.Height)
	}
	return nil
}

// Empty reports whether the raster has zero area.
func (r *Raster) Empty() bool { return r == nil || r.Width == 0 || r.Height == 0 }

// NRGBA returns an *image.NRGBA view sharing the raster's buffer.
func (r *Raster) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    r.Pix,
		Stride: r.Width * Channels,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// Opaque reports whether every pixel has full alpha.
func (r *Raster) Opaque() bool {
	for i := 3; i < len(r.Pix); i += Channels {
		if r.Pix[i] != 0xFF {
			return false
		}
	}
	return true
}

// RasterFromImage converts img to a Raster anchored at the origin.  A tightly
// packed *image.NRGBA at the origin is adopted without copying, so callers
// must hand over ownership of img.
func RasterFromImage(img image.Image) *Raster {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == w*Channels && len(n.Pix) == w*h*Channels {
		return &Raster{Width: w, Height: h, Pix: n.Pix}
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &Raster{Width: w, Height: h, Pix: dst.Pix}
}

// Frame is one fully composited animation frame.
type Frame struct {
	Raster *Raster
	Delay  int // hundredths of a second
}

// Animation is a decoded multi-frame image.  Every frame covers the whole
// Width x Height canvas.
type Animation struct {
	Width     int
	Height    int
	LoopCount int // GIF semantics: 0 loops forever, -1 plays once
	Frames    []Frame
}
