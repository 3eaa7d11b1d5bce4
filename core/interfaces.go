package core

import (
	"context"
	"time"
)

// Decoder turns encoded bytes of one format family into a Raster.
// Implementations live in adapters/decoder/ and adapters/vips/.
type Decoder interface {
	// Decode returns a freshly allocated Raster owned by the caller.
	Decode(ctx context.Context, data []byte) (*Raster, error)
	// Dimensions reads only the header and reports the pixel size.
	Dimensions(data []byte) (width, height int, err error)
}

// AnimationDecoder is implemented by decoders that can return every frame.
type AnimationDecoder interface {
	// FrameCount reads only the container structure, not pixel data, so
	// callers can bound the cost of DecodeAll before running it.
	FrameCount(data []byte) (int, error)
	DecodeAll(ctx context.Context, data []byte) (*Animation, error)
}

// Encoder serialises a Raster in one format family.  quality is already
// clamped to [0,100]; each encoder documents how it interprets it.
type Encoder interface {
	Encode(ctx context.Context, r *Raster, quality int) ([]byte, error)
}

// AnimationEncoder is implemented by encoders that can write every frame.
type AnimationEncoder interface {
	EncodeAll(ctx context.Context, a *Animation, quality int) ([]byte, error)
}

// MetricsCollector receives performance observations from the pipeline.
type MetricsCollector interface {
	RecordStageTime(stage string, d time.Duration)
	RecordCompression(format Format, inputBytes, outputBytes int64)
	RecordError(stage string, kind string)
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
