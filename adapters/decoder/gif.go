package decoder

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/gif"

	xdraw "golang.org/x/image/draw"

	"github.com/Skryldev/image-compressor/core"
)

var errNoFrames = errors.New("gif: no image frames")

// GIF decodes GIF87a/GIF89a.  Every frame is composited onto the logical
// screen (transparent background) honouring the frame disposal methods, so
// each resulting Raster covers the full canvas.
//
// Decode reads only up to the first frame; DecodeAll returns every frame.
type GIF struct{}

func NewGIF() *GIF { return &GIF{} }

func (g *GIF) Dimensions(data []byte) (int, int, error) {
	cfg, err := gif.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, decodeError("gif.config", err)
	}
	return cfg.Width, cfg.Height, nil
}

func (g *GIF) FrameCount(data []byte) (int, error) {
	if _, _, err := g.Dimensions(data); err != nil {
		return 0, err
	}
	return countFrames(data), nil
}

func (g *GIF) Decode(_ context.Context, data []byte) (*core.Raster, error) {
	cfg, err := gif.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, decodeError("gif.config", err)
	}
	// gif.Decode stops after the first image descriptor.
	frame, err := gif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, decodeError("gif.decode", err)
	}

	canvas := image.NewNRGBA(screen(cfg.Width, cfg.Height, frame.Bounds()))
	xdraw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, xdraw.Over)
	return core.RasterFromImage(canvas), nil
}

func (g *GIF) DecodeAll(_ context.Context, data []byte) (*core.Animation, error) {
	src, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, decodeError("gif.decode", err)
	}
	if len(src.Image) == 0 {
		return nil, decodeError("gif.decode", errNoFrames)
	}

	rect := screen(src.Config.Width, src.Config.Height, src.Image[0].Bounds())
	canvas := image.NewNRGBA(rect)
	anim := &core.Animation{
		Width:     rect.Dx(),
		Height:    rect.Dy(),
		LoopCount: src.LoopCount,
		Frames:    make([]core.Frame, 0, len(src.Image)),
	}

	for i, frame := range src.Image {
		disposal := byte(gif.DisposalNone)
		if i < len(src.Disposal) {
			disposal = src.Disposal[i]
		}

		var previous *image.NRGBA
		if disposal == gif.DisposalPrevious {
			previous = cloneNRGBA(canvas)
		}

		xdraw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, xdraw.Over)

		delay := 0
		if i < len(src.Delay) {
			delay = src.Delay[i]
		}
		anim.Frames = append(anim.Frames, core.Frame{
			Raster: core.RasterFromImage(cloneNRGBA(canvas)),
			Delay:  delay,
		})

		switch disposal {
		case gif.DisposalBackground:
			xdraw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, xdraw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}
	return anim, nil
}

// screen is the canvas rectangle.  Some encoders leave the logical screen
// empty; fall back to the first frame's extent.
func screen(w, h int, first image.Rectangle) image.Rectangle {
	if w == 0 || h == 0 {
		w, h = first.Max.X, first.Max.Y
	}
	return image.Rect(0, 0, w, h)
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

// countFrames walks the GIF block structure and counts image descriptors
// without touching any LZW data.  A truncated or malformed stream stops the
// count early; reporting corruption is left to the decoder.
func countFrames(data []byte) int {
	const (
		headerLen      = 13 // signature + logical screen descriptor
		descriptorLen  = 10 // separator + image descriptor
		colorTableFlag = 0x80

		extensionIntroducer = 0x21
		imageSeparator      = 0x2C
	)
	if len(data) < headerLen {
		return 0
	}
	pos := headerLen
	if flags := data[10]; flags&colorTableFlag != 0 {
		pos += colorTableLen(flags)
	}

	frames := 0
	for pos < len(data) {
		switch data[pos] {
		case extensionIntroducer:
			pos = skipSubBlocks(data, pos+2)
		case imageSeparator:
			if pos+descriptorLen > len(data) {
				return frames
			}
			frames++
			flags := data[pos+9]
			pos += descriptorLen
			if flags&colorTableFlag != 0 {
				pos += colorTableLen(flags)
			}
			pos = skipSubBlocks(data, pos+1) // +1 for the LZW minimum code size
		default: // trailer or garbage
			return frames
		}
	}
	return frames
}

func colorTableLen(flags byte) int { return 3 * (1 << ((flags & 0x07) + 1)) }

// skipSubBlocks returns the offset just past the block terminator at or
// after pos, or len(data) when the stream ends first.
func skipSubBlocks(data []byte, pos int) int {
	for pos < len(data) {
		size := int(data[pos])
		pos++
		if size == 0 {
			return pos
		}
		pos += size
	}
	return len(data)
}
