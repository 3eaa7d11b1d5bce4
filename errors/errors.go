package errors

import (
	"errors"
	"fmt"
)

// Category names the pipeline stage an error came from.
type Category string

const (
	CategoryInput  Category = "input"
	CategoryDecode Category = "decode"
	CategoryResize Category = "resize"
	CategoryEncode Category = "encode"
	CategoryConfig Category = "config"
)

// Sentinel error kinds.  Every error returned by the compressor matches
// exactly one of these under errors.Is.
var (
	ErrEmptyInput         = errors.New("empty input")
	ErrUnsupportedFormat  = errors.New("unsupported image format")
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrCorrupt            = errors.New("corrupt image data")
	ErrUnsupportedVariant = errors.New("unsupported image variant")
	ErrDegenerateInput    = errors.New("degenerate raster")
	ErrBackendFailure     = errors.New("encoder backend failure")
)

var kinds = []error{
	ErrEmptyInput,
	ErrUnsupportedFormat,
	ErrInvalidParameter,
	ErrCorrupt,
	ErrUnsupportedVariant,
	ErrDegenerateInput,
	ErrBackendFailure,
}

// ProcessingError is the structured error type used throughout the module.
type ProcessingError struct {
	Category Category
	Op       string // operation name, e.g. "png.decode"
	Kind     error  // one of the sentinel kinds
	Err      error  // underlying cause; may be nil
}

func (e *ProcessingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s: %v", e.Category, e.Op, e.Kind)
	}
	return fmt.Sprintf("[%s] %s: %v: %v", e.Category, e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause, so errors.Is matches the
// sentinel and errors.As still reaches codec-specific error types.
func (e *ProcessingError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New creates a ProcessingError without an underlying cause.
func New(category Category, op string, kind error) *ProcessingError {
	return &ProcessingError{Category: category, Op: op, Kind: kind}
}

// Wrap attaches kind and stage context to err.  A nil err yields nil.
func Wrap(category Category, op string, kind error, err error) error {
	if err == nil {
		return nil
	}
	return &ProcessingError{Category: category, Op: op, Kind: kind, Err: err}
}

// IsCategory reports whether err belongs to the given category.
func IsCategory(err error, cat Category) bool {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Category == cat
	}
	return false
}

// KindOf returns the sentinel kind carried by err, or nil when err is not
// one of ours.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// CategoryOf returns the category of err, or "" when err carries none.
func CategoryOf(err error) Category {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ""
}
