package pipeline

import (
	"context"
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/Skryldev/image-compressor/core"
	apperrors "github.com/Skryldev/image-compressor/errors"
	"github.com/Skryldev/image-compressor/utils"
)

// kernel is the resampling filter used for every resize.  Catmull-Rom is
// deterministic and, because x/image kernels widen their support when
// shrinking, averages over the source area on downscale.  Read-only.
var kernel = xdraw.CatmullRom

// Resize scales r by factor.  A factor of 1 (or any factor that leaves the
// dimensions unchanged) returns r itself without a resampling pass.  New
// dimensions are max(1, round(w*factor)) x max(1, round(h*factor)).
func Resize(r *core.Raster, factor float64) (*core.Raster, error) {
	if r.Empty() {
		w, h := 0, 0
		if r != nil {
			w, h = r.Width, r.Height
		}
		return nil, apperrors.Wrap(apperrors.CategoryResize, StageResize, apperrors.ErrDegenerateInput,
			fmt.Errorf("cannot resize a %dx%d raster", w, h))
	}
	if math.IsNaN(factor) || factor <= 0 {
		return nil, apperrors.Wrap(apperrors.CategoryResize, StageResize, apperrors.ErrInvalidParameter,
			fmt.Errorf("resize factor must be in (0, 1], got %v", factor))
	}
	if factor >= 1 {
		return r, nil
	}

	w, h := utils.ScaleDimensions(r.Width, r.Height, factor)
	if w == r.Width && h == r.Height {
		return r, nil
	}

	src := r.NRGBA()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	kernel.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return &core.Raster{Width: w, Height: h, Pix: dst.Pix}, nil
}

// ResizeStep applies Resize with the call's resize factor, frame by frame
// for animations.
type ResizeStep struct{}

func (s *ResizeStep) Name() string { return StageResize }

func (s *ResizeStep) Execute(_ context.Context, img *core.ImageData) (*core.ImageData, error) {
	factor := img.Params.ResizeFactor
	next := *img

	if img.Animation != nil {
		anim := *img.Animation
		anim.Frames = make([]core.Frame, len(img.Animation.Frames))
		for i, f := range img.Animation.Frames {
			r, err := Resize(f.Raster, factor)
			if err != nil {
				return nil, err
			}
			anim.Frames[i] = core.Frame{Raster: r, Delay: f.Delay}
		}
		if len(anim.Frames) > 0 {
			anim.Width, anim.Height = anim.Frames[0].Raster.Width, anim.Frames[0].Raster.Height
		}
		next.Animation = &anim
		return &next, nil
	}

	r, err := Resize(img.Raster, factor)
	if err != nil {
		return nil, err
	}
	next.Raster = r
	return &next, nil
}
