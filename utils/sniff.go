package utils

import (
	"bytes"
	"math"
)

const (
	formatJPEG    = "jpeg"
	formatPNG     = "png"
	formatWebP    = "webp"
	formatGIF     = "gif"
	formatUnknown = "unknown"
)

var (
	pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
	jpegSOI      = []byte{0xFF, 0xD8, 0xFF}
	gif87a       = []byte("GIF87a")
	gif89a       = []byte("GIF89a")
	riffTag      = []byte("RIFF")
	webpTag      = []byte("WEBP")
	vp8xTag      = []byte("VP8X")
)

// DetectFormat classifies data by its magic-number prefix.  Only the first
// 12 bytes are ever inspected; buffers too short for any signature are
// "unknown".
func DetectFormat(data []byte) string {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return formatPNG
	case bytes.HasPrefix(data, jpegSOI):
		return formatJPEG
	case bytes.HasPrefix(data, gif87a), bytes.HasPrefix(data, gif89a):
		return formatGIF
	case len(data) >= 12 && bytes.Equal(data[0:4], riffTag) && bytes.Equal(data[8:12], webpTag):
		return formatWebP
	}
	return formatUnknown
}

// IsAnimatedWebP reports whether a WebP container declares the animation
// flag in its VP8X header.
func IsAnimatedWebP(data []byte) bool {
	// RIFF(4) size(4) WEBP(4) VP8X(4) chunk-size(4) flags(1)
	if len(data) < 21 || !bytes.Equal(data[12:16], vp8xTag) {
		return false
	}
	const animationFlag = 0x02
	return data[20]&animationFlag != 0
}

// ScaleDimensions scales (w, h) by factor, rounding to nearest and never
// returning an axis smaller than one pixel.
func ScaleDimensions(w, h int, factor float64) (int, int) {
	return scaleAxis(w, factor), scaleAxis(h, factor)
}

func scaleAxis(n int, factor float64) int {
	v := int(math.Round(float64(n) * factor))
	if v < 1 {
		return 1
	}
	return v
}
