//go:build govips && cgo

// Package vips provides a libvips-powered codec set for all four formats.
// It is compiled only with the govips build tag and cgo enabled.
package vips

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"sync"

	govips "github.com/davidbyttow/govips/v2/vips"

	"github.com/Skryldev/image-compressor/config"
	"github.com/Skryldev/image-compressor/core"
	apperrors "github.com/Skryldev/image-compressor/errors"
)

var (
	startupOnce sync.Once
	shutdownMu  sync.Mutex
	started     bool
)

// Available reports whether the libvips backend is compiled in.
func Available() bool { return true }

// Startup initialises libvips exactly once for the process.
func Startup(cfg config.VipsConfig) {
	startupOnce.Do(func() {
		concurrency := cfg.ConcurrencyLevel
		if concurrency <= 0 {
			concurrency = 1
		}
		govips.LoggingSettings(nil, govips.LogLevelError)
		govips.Startup(&govips.Config{
			ConcurrencyLevel: concurrency,
			MaxCacheSize:     cfg.MaxCacheSize,
			ReportLeaks:      cfg.ReportLeaks,
		})
		shutdownMu.Lock()
		started = true
		shutdownMu.Unlock()
	})
}

// Shutdown releases all libvips resources.  Call once at process exit.
func Shutdown() {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	if !started {
		return
	}
	govips.Shutdown()
	started = false
}

// Register starts libvips and installs it as decoder and encoder for every
// format in codecs.
func Register(codecs *core.Codecs, cfg config.VipsConfig) error {
	Startup(cfg)
	for _, f := range []core.Format{core.FormatPNG, core.FormatJPEG, core.FormatWebP, core.FormatGIF} {
		c := &Codec{format: f}
		codecs.Set(f, core.Codec{Decoder: c, Encoder: c})
	}
	return nil
}

// Codec decodes and encodes one format family through libvips.
type Codec struct {
	format core.Format
}

func (c *Codec) op(action string) string { return "vips." + string(c.format) + "." + action }

func (c *Codec) Dimensions(data []byte) (int, int, error) {
	ref, err := govips.NewImageFromBuffer(data)
	if err != nil {
		return 0, 0, apperrors.Wrap(apperrors.CategoryDecode, c.op("config"), apperrors.ErrCorrupt, err)
	}
	defer ref.Close()
	return ref.Width(), ref.Height(), nil
}

// Decode loads only the first page/frame.
func (c *Codec) Decode(_ context.Context, data []byte) (*core.Raster, error) {
	ref, err := govips.NewImageFromBuffer(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, c.op("decode"), apperrors.ErrCorrupt, err)
	}
	defer ref.Close()

	img, err := ref.ToImage(nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, c.op("decode"), apperrors.ErrUnsupportedVariant, err)
	}
	return core.RasterFromImage(img), nil
}

func (c *Codec) Encode(_ context.Context, r *core.Raster, quality int) ([]byte, error) {
	ref, err := fromRaster(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, c.op("import"), apperrors.ErrBackendFailure, err)
	}
	defer ref.Close()

	q := core.ClampQuality(quality)
	var out []byte
	switch c.format {
	case core.FormatJPEG:
		ep := govips.NewJpegExportParams()
		ep.Quality = max(1, q)
		ep.StripMetadata = true
		out, _, err = ref.ExportJpeg(ep)
	case core.FormatPNG:
		ep := govips.NewPngExportParams()
		ep.Compression = pngEffort(q)
		ep.StripMetadata = true
		out, _, err = ref.ExportPng(ep)
	case core.FormatWebP:
		ep := govips.NewWebpExportParams()
		ep.Quality = max(1, q)
		ep.Lossless = false
		ep.StripMetadata = true
		out, _, err = ref.ExportWebp(ep)
	case core.FormatGIF:
		ep := govips.NewGifExportParams()
		ep.Quality = max(1, q)
		ep.StripMetadata = true
		out, _, err = ref.ExportGIF(ep)
	default:
		err = fmt.Errorf("no vips exporter for %s", c.format)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, c.op("encode"), apperrors.ErrBackendFailure, err)
	}
	return out, nil
}

// pngEffort maps quality 0-100 onto zlib levels 1-9.
func pngEffort(q int) int {
	return 1 + q*8/100
}

// fromRaster hands the raster to libvips through an uncompressed PNG, the
// one lossless container every libvips build can load.
func fromRaster(r *core.Raster) (*govips.ImageRef, error) {
	var buf bytes.Buffer
	enc := &png.Encoder{CompressionLevel: png.NoCompression}
	if err := enc.Encode(&buf, r.NRGBA()); err != nil {
		return nil, err
	}
	return govips.NewImageFromBuffer(buf.Bytes())
}

var (
	_ core.Decoder = (*Codec)(nil)
	_ core.Encoder = (*Codec)(nil)
)
