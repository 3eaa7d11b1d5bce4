//go:build !govips || !cgo

package vips

import (
	"errors"

	"github.com/Skryldev/image-compressor/config"
	"github.com/Skryldev/image-compressor/core"
	apperrors "github.com/Skryldev/image-compressor/errors"
)

var errNotCompiled = errors.New("libvips backend not compiled in; rebuild with -tags govips and cgo enabled")

// Available reports whether the libvips backend is compiled in.
func Available() bool { return false }

func Startup(config.VipsConfig) {}

func Shutdown() {}

// Register always fails in builds without the govips tag.
func Register(*core.Codecs, config.VipsConfig) error {
	return apperrors.Wrap(apperrors.CategoryConfig, "vips.register", apperrors.ErrBackendFailure, errNotCompiled)
}
