// Package pipeline implements the decode, resize and encode stages and
// assembles them into the fixed compression plan.
package pipeline

import (
	"github.com/Skryldev/image-compressor/config"
	"github.com/Skryldev/image-compressor/core"
)

// Stage names, as reported to hooks and in core.Result.StageTimings.
const (
	StageDecode = "decode"
	StageResize = "resize"
	StageEncode = "encode"
)

// Plan returns the steps for one compression call: decode, resize (only
// when params ask for a smaller image) and encode.
func Plan(codecs *core.Codecs, cfg config.Config, params core.Params) []core.Step {
	steps := make([]core.Step, 0, 3)
	steps = append(steps, &DecodeStep{
		Codecs:    codecs,
		GIF:       cfg.GIF,
		MaxPixels: cfg.MaxPixels,
	})
	if params.NeedsResize() {
		steps = append(steps, &ResizeStep{})
	}
	steps = append(steps, &EncodeStep{Codecs: codecs})
	return steps
}
