package core

import (
	"fmt"
	"math"

	apperrors "github.com/Skryldev/image-compressor/errors"
)

const (
	MinQuality = 0
	MaxQuality = 100
)

// Params are the validated, immutable compression parameters.
type Params struct {
	Quality      int     // always within [MinQuality, MaxQuality]
	ResizeFactor float64 // always within (0, 1]
}

// NewParams clamps quality into [0,100] and resizeFactor into (0,1].
// Quality is never invalid; a resize factor that is zero, negative or NaN is
// rejected with ErrInvalidParameter because it would produce an empty image.
func NewParams(quality int, resizeFactor float64) (Params, error) {
	if math.IsNaN(resizeFactor) || resizeFactor <= 0 {
		return Params{}, apperrors.Wrap(apperrors.CategoryInput, "params", apperrors.ErrInvalidParameter,
			fmt.Errorf("resize factor must be in (0, 1], got %v", resizeFactor))
	}
	return Params{
		Quality:      ClampQuality(quality),
		ResizeFactor: math.Min(resizeFactor, 1),
	}, nil
}

// ClampQuality bounds q to [MinQuality, MaxQuality].
func ClampQuality(q int) int {
	return max(MinQuality, min(q, MaxQuality))
}

// NeedsResize reports whether the resize stage has any work to do.
func (p Params) NeedsResize() bool { return p.ResizeFactor < 1 }
