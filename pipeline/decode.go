package pipeline

import (
	"context"
	"fmt"

	"github.com/Skryldev/image-compressor/config"
	"github.com/Skryldev/image-compressor/core"
	apperrors "github.com/Skryldev/image-compressor/errors"
)

// DecodeStep decodes img.Input into a Raster, or into an Animation when the
// input is GIF and the all-frames policy is selected.
type DecodeStep struct {
	Codecs    *core.Codecs
	GIF       config.GIFPolicy
	MaxPixels int64 // 0 = no limit
}

func (s *DecodeStep) Name() string { return StageDecode }

func (s *DecodeStep) Execute(ctx context.Context, img *core.ImageData) (out *core.ImageData, err error) {
	dec, ok := s.Codecs.DecoderFor(img.Format)
	if !ok {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, s.Name(), apperrors.ErrUnsupportedFormat,
			fmt.Errorf("no decoder for %s", img.Format))
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = apperrors.Wrap(apperrors.CategoryDecode, s.Name(), apperrors.ErrCorrupt,
				fmt.Errorf("decoder panic: %v", r))
		}
	}()

	if s.MaxPixels > 0 {
		w, h, err := dec.Dimensions(img.Input)
		if err != nil {
			return nil, asDecodeError(s.Name(), err)
		}
		if int64(w)*int64(h) > s.MaxPixels {
			return nil, apperrors.Wrap(apperrors.CategoryDecode, s.Name(), apperrors.ErrUnsupportedVariant,
				fmt.Errorf("%dx%d exceeds the %d pixel limit", w, h, s.MaxPixels))
		}
	}

	next := *img
	if img.Format == core.FormatGIF && s.GIF == config.GIFAllFrames {
		ad, ok := dec.(core.AnimationDecoder)
		if !ok {
			return nil, apperrors.Wrap(apperrors.CategoryDecode, s.Name(), apperrors.ErrUnsupportedVariant,
				fmt.Errorf("%s decoder cannot read every frame", img.Format))
		}
		if err := s.checkFrames(dec, ad, img.Input); err != nil {
			return nil, err
		}
		anim, err := ad.DecodeAll(ctx, img.Input)
		if err != nil {
			return nil, asDecodeError(s.Name(), err)
		}
		if err := checkAnimation(anim); err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryDecode, s.Name(), apperrors.ErrCorrupt, err)
		}
		next.Animation = anim
		return &next, nil
	}

	r, err := dec.Decode(ctx, img.Input)
	if err != nil {
		return nil, asDecodeError(s.Name(), err)
	}
	if err := checkRaster(r); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, s.Name(), apperrors.ErrCorrupt, err)
	}
	next.Raster = r
	return &next, nil
}

// checkFrames applies MaxPixels to the whole animation: every frame is
// composited onto its own full-screen canvas, so the cost is screen area
// times frame count.
func (s *DecodeStep) checkFrames(dec core.Decoder, ad core.AnimationDecoder, data []byte) error {
	if s.MaxPixels <= 0 {
		return nil
	}
	w, h, err := dec.Dimensions(data)
	if err != nil {
		return asDecodeError(s.Name(), err)
	}
	frames, err := ad.FrameCount(data)
	if err != nil {
		return asDecodeError(s.Name(), err)
	}
	if total := int64(w) * int64(h) * int64(frames); total > s.MaxPixels {
		return apperrors.Wrap(apperrors.CategoryDecode, s.Name(), apperrors.ErrUnsupportedVariant,
			fmt.Errorf("%d frames of %dx%d exceed the %d pixel limit", frames, w, h, s.MaxPixels))
	}
	return nil
}

// asDecodeError keeps errors already classified by the codec and treats
// anything else as corrupt input.
func asDecodeError(op string, err error) error {
	if apperrors.KindOf(err) != nil {
		return err
	}
	return apperrors.Wrap(apperrors.CategoryDecode, op, apperrors.ErrCorrupt, err)
}

func checkRaster(r *core.Raster) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Empty() {
		return fmt.Errorf("decoded image has zero area (%dx%d)", r.Width, r.Height)
	}
	return nil
}

func checkAnimation(a *core.Animation) error {
	if a == nil || len(a.Frames) == 0 {
		return fmt.Errorf("decoded animation has no frames")
	}
	for i, f := range a.Frames {
		if err := checkRaster(f.Raster); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return nil
}
