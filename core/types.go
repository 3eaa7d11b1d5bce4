package core

import (
	"context"
	"time"

	"github.com/Skryldev/image-compressor/utils"
)

// Format identifies an image codec family.
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatWebP    Format = "webp"
	FormatGIF     Format = "gif"
	FormatUnknown Format = "unknown"
)

// Classify sniffs the magic-number prefix of data.  Unknown is a valid
// result, not an error.
func Classify(data []byte) Format { return Format(utils.DetectFormat(data)) }

// ImageData is the per-call state handed from stage to stage.  Each stage
// takes ownership of the value it receives and returns a new one; nothing
// is shared across calls.
type ImageData struct {
	// Input holds the original encoded bytes.  Never mutated.
	Input  []byte
	Format Format
	Params Params

	// Exactly one of Raster or Animation is set after decoding.
	Raster    *Raster
	Animation *Animation

	// Output holds the re-encoded bytes once the encode stage has run.
	Output []byte
}

// Dimensions returns the current pixel size, or 0x0 before decoding.
func (d *ImageData) Dimensions() (width, height int) {
	switch {
	case d == nil:
		return 0, 0
	case d.Raster != nil:
		return d.Raster.Width, d.Raster.Height
	case d.Animation != nil:
		return d.Animation.Width, d.Animation.Height
	}
	return 0, 0
}

// Result is returned to the caller after the full pipeline completes.
type Result struct {
	Data   []byte
	Format Format
	Width  int
	Height int
	Frames int

	InputSize  int64
	OutputSize int64

	ProcessingTime time.Duration
	StageTimings   map[string]time.Duration
}

// Step is one stage of the compression pipeline.  Steps hold no per-call
// state and are safe for concurrent use.
type Step interface {
	Name() string
	Execute(ctx context.Context, img *ImageData) (*ImageData, error)
}

// Hook is an optional observer invoked around pipeline steps.
type Hook interface {
	BeforeStep(ctx context.Context, stepName string, img *ImageData)
	AfterStep(ctx context.Context, stepName string, img *ImageData, d time.Duration, err error)
}
