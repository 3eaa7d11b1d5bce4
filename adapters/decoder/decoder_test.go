package decoder

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/image-compressor/core"
	apperrors "github.com/Skryldev/image-compressor/errors"
)

// ── Fixtures ──────────────────────────────────────────────────────────────────

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / max(1, w-1)), G: uint8(y * 255 / max(1, h-1)), B: 90, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func encodeWebP(t *testing.T, img image.Image, lossless bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, webp.Encode(&buf, img, &webp.Options{Lossless: lossless, Quality: 90}))
	return buf.Bytes()
}

func encodeGIF(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

// dotsGIF is a w x h logical screen holding n one-pixel frames.
func dotsGIF(t *testing.T, w, h, n int) []byte {
	t.Helper()
	g := &gif.GIF{Config: image.Config{Width: w, Height: h}}
	for i := 0; i < n; i++ {
		x := i % w
		f := image.NewPaletted(image.Rect(x, 0, x+1, 1), gifPalette)
		f.Pix[0] = 1
		g.Image = append(g.Image, f)
		g.Delay = append(g.Delay, 1)
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	return buf.Bytes()
}

var gifPalette = color.Palette{
	color.NRGBA{A: 0},
	color.NRGBA{R: 255, A: 255},
	color.NRGBA{G: 255, A: 255},
	color.NRGBA{B: 255, A: 255},
}

// twoFrameGIF draws a red 4x4 frame, then a green 2x2 patch at (2,2) with
// the given disposal on the first frame.
func twoFrameGIF(t *testing.T, firstDisposal byte) []byte {
	t.Helper()
	f1 := image.NewPaletted(image.Rect(0, 0, 4, 4), gifPalette)
	for i := range f1.Pix {
		f1.Pix[i] = 1
	}
	f2 := image.NewPaletted(image.Rect(2, 2, 4, 4), gifPalette)
	for i := range f2.Pix {
		f2.Pix[i] = 2
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, &gif.GIF{
		Image:     []*image.Paletted{f1, f2},
		Delay:     []int{10, 20},
		Disposal:  []byte{firstDisposal, gif.DisposalNone},
		LoopCount: 3,
	}))
	return buf.Bytes()
}

func pixel(r *core.Raster, x, y int) color.NRGBA {
	i := (y*r.Width + x) * core.Channels
	return color.NRGBA{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2], A: r.Pix[i+3]}
}

// ── Round trips ───────────────────────────────────────────────────────────────

func TestPNG_DecodeExact(t *testing.T) {
	src := gradient(7, 5)
	src.SetNRGBA(3, 2, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	data := encodePNG(t, src)

	d := NewPNG()
	w, h, err := d.Dimensions(data)
	require.NoError(t, err)
	assert.Equal(t, 7, w)
	assert.Equal(t, 5, h)

	r, err := d.Decode(context.Background(), data)
	require.NoError(t, err)
	require.NoError(t, r.Validate())
	assert.Equal(t, src.Pix, r.Pix)
}

func TestPNG_DecodePalettedAndGray(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 2, 1), color.Palette{color.NRGBA{R: 9, A: 255}, color.NRGBA{B: 7, A: 255}})
	pal.Pix[1] = 1
	r, err := NewPNG().Decode(context.Background(), encodePNG(t, pal))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 9, A: 255}, pixel(r, 0, 0))
	assert.Equal(t, color.NRGBA{B: 7, A: 255}, pixel(r, 1, 0))

	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.Pix[0] = 77
	r, err = NewPNG().Decode(context.Background(), encodePNG(t, gray))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 77, G: 77, B: 77, A: 255}, pixel(r, 0, 0))
}

func TestJPEG_Decode(t *testing.T) {
	data := encodeJPEG(t, gradient(16, 8))
	d := NewJPEG()

	w, h, err := d.Dimensions(data)
	require.NoError(t, err)
	assert.Equal(t, 16, w)
	assert.Equal(t, 8, h)

	r, err := d.Decode(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 16, r.Width)
	assert.Equal(t, 8, r.Height)
	assert.True(t, r.Opaque())
}

func TestWebP_DecodeLossyAndLossless(t *testing.T) {
	src := gradient(9, 6)
	for _, lossless := range []bool{false, true} {
		data := encodeWebP(t, src, lossless)
		d := NewWebP()

		w, h, err := d.Dimensions(data)
		require.NoError(t, err)
		assert.Equal(t, 9, w)
		assert.Equal(t, 6, h)

		r, err := d.Decode(context.Background(), data)
		require.NoError(t, err, "lossless=%v", lossless)
		assert.Equal(t, 9, r.Width)
		assert.Equal(t, 6, r.Height)
		if lossless {
			assert.Equal(t, src.Pix, r.Pix)
		}
	}
}

func TestWebP_RejectsAnimation(t *testing.T) {
	// RIFF header + VP8X chunk with the animation flag set.
	data := []byte("RIFF\x00\x00\x00\x00WEBPVP8X\x0a\x00\x00\x00\x02\x00\x00\x00\x00\x00\x00\x00\x00\x00")

	_, _, err := NewWebP().Dimensions(data)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedVariant)

	_, err = NewWebP().Decode(context.Background(), data)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedVariant)
}

// ── GIF compositing ───────────────────────────────────────────────────────────

func TestGIF_DecodeFirstFrame(t *testing.T) {
	r, err := NewGIF().Decode(context.Background(), twoFrameGIF(t, gif.DisposalNone))
	require.NoError(t, err)
	assert.Equal(t, 4, r.Width)
	assert.Equal(t, 4, r.Height)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, pixel(r, 3, 3))
}

func TestGIF_DecodeAll_Disposal(t *testing.T) {
	tests := []struct {
		name     string
		disposal byte
		corner   color.NRGBA // frame 2 pixel at (0,0), outside the patch
	}{
		{"none keeps frame one", gif.DisposalNone, color.NRGBA{R: 255, A: 255}},
		{"background clears", gif.DisposalBackground, color.NRGBA{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			anim, err := NewGIF().DecodeAll(context.Background(), twoFrameGIF(t, tc.disposal))
			require.NoError(t, err)
			require.Len(t, anim.Frames, 2)
			assert.Equal(t, 3, anim.LoopCount)
			assert.Equal(t, 10, anim.Frames[0].Delay)
			assert.Equal(t, 20, anim.Frames[1].Delay)

			f2 := anim.Frames[1].Raster
			assert.Equal(t, 4, f2.Width, "frames cover the full canvas")
			assert.Equal(t, color.NRGBA{G: 255, A: 255}, pixel(f2, 3, 3))
			assert.Equal(t, tc.corner, pixel(f2, 0, 0))

			// Frame one is an independent copy.
			assert.Equal(t, color.NRGBA{R: 255, A: 255}, pixel(anim.Frames[0].Raster, 3, 3))
		})
	}
}

func TestGIF_DecodeFirstFrameUsesScreen(t *testing.T) {
	r, err := NewGIF().Decode(context.Background(), dotsGIF(t, 6, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, 6, r.Width)
	assert.Equal(t, 3, r.Height)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, pixel(r, 0, 0))
	assert.Equal(t, color.NRGBA{}, pixel(r, 1, 0), "later frames are not composited")
}

func TestGIF_FrameCount(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want int
	}{
		{"two frames", twoFrameGIF(t, gif.DisposalNone), 2},
		{"single", encodeGIF(t, gradient(16, 16)), 1},
		{"many dots", dotsGIF(t, 50, 50, 300), 300},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, err := NewGIF().FrameCount(tc.data)
			require.NoError(t, err)
			assert.Equal(t, tc.want, n)

			anim, err := NewGIF().DecodeAll(context.Background(), tc.data)
			require.NoError(t, err)
			assert.Len(t, anim.Frames, n, "count matches the decoder")
		})
	}
}

func TestGIF_FrameCountTruncated(t *testing.T) {
	data := dotsGIF(t, 10, 10, 20)
	assert.Less(t, countFrames(data[:len(data)/2]), 20)
	assert.Equal(t, 0, countFrames(data[:5]))

	_, err := NewGIF().FrameCount([]byte("GIF89a"))
	assert.ErrorIs(t, err, apperrors.ErrCorrupt)
}

// ── Failure classification ────────────────────────────────────────────────────

func TestDecoders_TruncatedInputIsCorrupt(t *testing.T) {
	src := gradient(32, 32)
	tests := []struct {
		name string
		dec  core.Decoder
		data []byte
	}{
		{"png", NewPNG(), encodePNG(t, src)},
		{"jpeg", NewJPEG(), encodeJPEG(t, src)},
		{"webp", NewWebP(), encodeWebP(t, src, false)},
		{"gif", NewGIF(), encodeGIF(t, src)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			truncated := tc.data[:len(tc.data)/2]
			r, err := tc.dec.Decode(context.Background(), truncated)
			assert.Nil(t, r)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrCorrupt)
			assert.True(t, apperrors.IsCategory(err, apperrors.CategoryDecode))
		})
	}
}

func TestPNG_BadChecksumIsCorrupt(t *testing.T) {
	data := encodePNG(t, gradient(4, 4))
	// signature(8) + IHDR length(4) + type(4) + data(13); the CRC follows.
	data[29] ^= 0xFF
	_, err := NewPNG().Decode(context.Background(), data)
	assert.ErrorIs(t, err, apperrors.ErrCorrupt)
}

func TestDecodeError_Classification(t *testing.T) {
	assert.NoError(t, decodeError("x", nil))
	assert.ErrorIs(t, decodeError("x", png.UnsupportedError("interlace")), apperrors.ErrUnsupportedVariant)
	assert.ErrorIs(t, decodeError("x", jpeg.UnsupportedError("arithmetic")), apperrors.ErrUnsupportedVariant)
	assert.ErrorIs(t, decodeError("x", jpeg.FormatError("bad marker")), apperrors.ErrCorrupt)
}
