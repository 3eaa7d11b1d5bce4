// Package imagecompressor re-encodes a single in-memory PNG, JPEG, WebP or
// GIF image into a smaller file of the same format, optionally downscaled.
//
// Compression is synchronous, CPU-bound and free of shared mutable state:
// independent calls may run concurrently on any number of goroutines.
package imagecompressor

import (
	"context"
	"sync"

	"github.com/Skryldev/image-compressor/adapters/decoder"
	"github.com/Skryldev/image-compressor/adapters/encoder"
	"github.com/Skryldev/image-compressor/adapters/vips"
	"github.com/Skryldev/image-compressor/config"
	"github.com/Skryldev/image-compressor/core"
	apperrors "github.com/Skryldev/image-compressor/errors"
	"github.com/Skryldev/image-compressor/pipeline"
)

// Re-export Format constants for convenience.
const (
	JPEG    = core.FormatJPEG
	PNG     = core.FormatPNG
	WebP    = core.FormatWebP
	GIF     = core.FormatGIF
	Unknown = core.FormatUnknown
)

// Re-export the error kinds so callers can match with errors.Is without
// importing the errors package.
var (
	ErrEmptyInput         = apperrors.ErrEmptyInput
	ErrUnsupportedFormat  = apperrors.ErrUnsupportedFormat
	ErrInvalidParameter   = apperrors.ErrInvalidParameter
	ErrCorrupt            = apperrors.ErrCorrupt
	ErrUnsupportedVariant = apperrors.ErrUnsupportedVariant
	ErrDegenerateInput    = apperrors.ErrDegenerateInput
	ErrBackendFailure     = apperrors.ErrBackendFailure
)

// DefaultConfig returns a sensible production configuration.
func DefaultConfig() config.Config { return config.Default() }

// Processor is the primary entry point.
type Processor struct {
	inner *core.Processor
}

// New creates a fully wired Processor.  With the std backend the PNG, JPEG,
// WebP and GIF codecs from adapters/ are installed; with the vips backend
// libvips handles every format.
func New(cfg config.Config) (*Processor, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConfig, "new", apperrors.ErrInvalidParameter, err)
	}

	codecs := StdCodecs()
	if cfg.Backend == config.BackendVips {
		if err := vips.Register(codecs, cfg.Vips); err != nil {
			return nil, err
		}
	}
	return &Processor{inner: core.New(cfg, codecs)}, nil
}

// StdCodecs returns the codec table backed by Go codecs and libwebp.
func StdCodecs() *core.Codecs {
	return &core.Codecs{
		PNG:  core.Codec{Decoder: decoder.NewPNG(), Encoder: encoder.NewPNG()},
		JPEG: core.Codec{Decoder: decoder.NewJPEG(), Encoder: encoder.NewJPEG()},
		WebP: core.Codec{Decoder: decoder.NewWebP(), Encoder: encoder.NewWebP()},
		GIF:  core.Codec{Decoder: decoder.NewGIF(), Encoder: encoder.NewGIF()},
	}
}

// SetLogger attaches a structured logger.
func (p *Processor) SetLogger(l core.Logger) { p.inner.SetLogger(l) }

// SetMetrics attaches a metrics collector.
func (p *Processor) SetMetrics(m core.MetricsCollector) { p.inner.SetMetrics(m) }

// AddHook registers an observer for pipeline stage events.
func (p *Processor) AddHook(h core.Hook) { p.inner.AddHook(h) }

// Compress re-encodes data in its own format family.
//
// quality is clamped to [0,100]; for JPEG and WebP it is the lossy quality,
// for PNG it selects compression effort, for GIF the palette size.
// resizeFactor scales both axes and must be in (0,1]; values above 1 are
// treated as 1 and values <= 0 fail with ErrInvalidParameter.
//
// On failure the returned slice is nil; there is never partial output.
func (p *Processor) Compress(ctx context.Context, data []byte, quality int, resizeFactor float64) ([]byte, error) {
	res, err := p.CompressDetailed(ctx, data, quality, resizeFactor)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// CompressDetailed is Compress returning dimensions, sizes and stage
// timings alongside the bytes.
func (p *Processor) CompressDetailed(ctx context.Context, data []byte, quality int, resizeFactor float64) (*core.Result, error) {
	if len(data) == 0 {
		return nil, p.inner.Reject(apperrors.New(apperrors.CategoryInput, "compress", apperrors.ErrEmptyInput))
	}

	format := core.Classify(data)
	if format == core.FormatUnknown {
		return nil, p.inner.Reject(apperrors.New(apperrors.CategoryInput, "compress", apperrors.ErrUnsupportedFormat))
	}

	params, err := core.NewParams(quality, resizeFactor)
	if err != nil {
		return nil, p.inner.Reject(err)
	}

	img := &core.ImageData{Input: data, Format: format, Params: params}
	steps := pipeline.Plan(p.inner.Codecs(), p.inner.Config(), params)
	return p.inner.Run(ctx, img, steps...)
}

// Stats returns lightweight processing statistics.
func (p *Processor) Stats() (processed, errors int64) {
	return p.inner.ProcessedCount(), p.inner.ErrorCount()
}

// defaultProcessor is built on first use and never modified afterwards.
var defaultProcessor = sync.OnceValue(func() *Processor {
	p, err := New(config.Default())
	if err != nil {
		panic(err) // the default config always validates
	}
	return p
})

// Compress re-encodes data with the default configuration.  See
// Processor.Compress for the meaning of quality and resizeFactor.
func Compress(data []byte, quality int, resizeFactor float64) ([]byte, error) {
	return defaultProcessor().Compress(context.Background(), data, quality, resizeFactor)
}

// FactorFromPercent converts a 0-100 UI percentage into a resize factor.
func FactorFromPercent(percent float64) float64 { return percent / 100 }

// Detect classifies data by its magic number without decoding it.
func Detect(data []byte) core.Format { return core.Classify(data) }
