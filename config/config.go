package config

import (
	"errors"
	"strings"
)

// Backend selects the codec implementation.
type Backend string

const (
	BackendStd  Backend = "std"  // Go image codecs + chai2010/webp
	BackendVips Backend = "vips" // libvips via govips; requires the govips build tag
)

// GIFPolicy controls how animated GIF input is handled.
type GIFPolicy string

const (
	// GIFFirstFrame decodes and re-encodes only the first frame.
	GIFFirstFrame GIFPolicy = "first-frame"
	// GIFAllFrames re-encodes every frame, resizing each one.
	GIFAllFrames GIFPolicy = "all-frames"
)

// Config is the top-level configuration struct.  The zero value is usable;
// Default fills in the documented defaults.
type Config struct {
	Backend Backend
	GIF     GIFPolicy

	// MaxPixels rejects images whose width*height exceeds it before any
	// pixel buffer is allocated.  0 = no limit.
	MaxPixels int64

	// Logging.
	LogLevel string // "debug", "info", "warn", "error"

	Vips VipsConfig
}

// VipsConfig configures the libvips backend.
type VipsConfig struct {
	// ConcurrencyLevel is pinned to 1 by default so output bytes do not
	// depend on libvips thread scheduling.
	ConcurrencyLevel int
	MaxCacheSize     int
	ReportLeaks      bool
}

// Default returns a Config populated with production defaults.
func Default() Config {
	return Config{
		Backend:   BackendStd,
		GIF:       GIFFirstFrame,
		MaxPixels: 100_000_000,
		LogLevel:  "info",
		Vips: VipsConfig{
			ConcurrencyLevel: 1,
			MaxCacheSize:     0,
		},
	}
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	switch c.Backend {
	case "", BackendStd, BackendVips:
	default:
		return errors.New("config: Backend must be \"std\" or \"vips\"")
	}
	switch c.GIF {
	case "", GIFFirstFrame, GIFAllFrames:
	default:
		return errors.New("config: GIF must be \"first-frame\" or \"all-frames\"")
	}
	if c.Backend == BackendVips && c.GIF == GIFAllFrames {
		return errors.New("config: the vips backend decodes only the first GIF frame; use GIF \"first-frame\"")
	}
	if c.MaxPixels < 0 {
		return errors.New("config: MaxPixels must not be negative")
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.New("config: LogLevel must be one of debug, info, warn, error")
	}
	if c.Vips.ConcurrencyLevel < 0 {
		return errors.New("config: Vips.ConcurrencyLevel must not be negative")
	}
	return nil
}
