package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skryldev/image-compressor/core"
	apperrors "github.com/Skryldev/image-compressor/errors"
)

var errEmptyOutput = errors.New("encoder produced no bytes")

// EncodeStep re-encodes the raster (or animation) in the detected format
// family using the call's quality.
type EncodeStep struct {
	Codecs *core.Codecs
}

func (s *EncodeStep) Name() string { return StageEncode }

func (s *EncodeStep) Execute(ctx context.Context, img *core.ImageData) (out *core.ImageData, err error) {
	enc, ok := s.Codecs.EncoderFor(img.Format)
	if !ok {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, s.Name(), apperrors.ErrUnsupportedFormat,
			fmt.Errorf("no encoder for %s", img.Format))
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = apperrors.Wrap(apperrors.CategoryEncode, s.Name(), apperrors.ErrBackendFailure,
				fmt.Errorf("encoder panic: %v", r))
		}
	}()

	var data []byte
	switch {
	case img.Animation != nil:
		ae, ok := enc.(core.AnimationEncoder)
		if !ok {
			return nil, apperrors.Wrap(apperrors.CategoryEncode, s.Name(), apperrors.ErrBackendFailure,
				fmt.Errorf("%s encoder cannot write animations", img.Format))
		}
		data, err = ae.EncodeAll(ctx, img.Animation, img.Params.Quality)
	case img.Raster != nil:
		data, err = enc.Encode(ctx, img.Raster, img.Params.Quality)
	default:
		return nil, apperrors.New(apperrors.CategoryEncode, s.Name(), apperrors.ErrDegenerateInput)
	}
	if err != nil {
		if apperrors.KindOf(err) != nil {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.CategoryEncode, s.Name(), apperrors.ErrBackendFailure, err)
	}
	if len(data) == 0 {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, s.Name(), apperrors.ErrBackendFailure, errEmptyOutput)
	}

	next := *img
	next.Output = data
	return &next, nil
}
