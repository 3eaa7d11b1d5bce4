package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/image-compressor/config"
	apperrors "github.com/Skryldev/image-compressor/errors"
)

// ── Fakes ─────────────────────────────────────────────────────────────────────

type funcStep struct {
	name string
	fn   func(*ImageData) (*ImageData, error)
}

func (s funcStep) Name() string { return s.name }
func (s funcStep) Execute(_ context.Context, img *ImageData) (*ImageData, error) {
	return s.fn(img)
}

type recordingHook struct {
	mu     sync.Mutex
	events []string
}

func (h *recordingHook) BeforeStep(_ context.Context, name string, _ *ImageData) {
	h.mu.Lock()
	h.events = append(h.events, "before:"+name)
	h.mu.Unlock()
}

func (h *recordingHook) AfterStep(_ context.Context, name string, _ *ImageData, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.events = append(h.events, "error:"+name)
		return
	}
	h.events = append(h.events, "after:"+name)
}

type recordingMetrics struct {
	mu           sync.Mutex
	stages       []string
	compressions int
	errors       []string
}

func (m *recordingMetrics) RecordStageTime(stage string, _ time.Duration) {
	m.mu.Lock()
	m.stages = append(m.stages, stage)
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordCompression(Format, int64, int64) {
	m.mu.Lock()
	m.compressions++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordError(stage, kind string) {
	m.mu.Lock()
	m.errors = append(m.errors, stage+"/"+kind)
	m.mu.Unlock()
}

func rasterStep(w, h int) funcStep {
	return funcStep{name: "decode", fn: func(img *ImageData) (*ImageData, error) {
		next := *img
		next.Raster = NewRaster(w, h)
		return &next, nil
	}}
}

func outputStep(out []byte) funcStep {
	return funcStep{name: "encode", fn: func(img *ImageData) (*ImageData, error) {
		next := *img
		next.Output = out
		return &next, nil
	}}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestProcessor_Run_Success(t *testing.T) {
	p := New(config.Default(), &Codecs{})
	hook := &recordingHook{}
	metrics := &recordingMetrics{}
	p.AddHook(hook)
	p.SetMetrics(metrics)

	in := &ImageData{Input: []byte("0123456789"), Format: FormatPNG}
	res, err := p.Run(context.Background(), in, rasterStep(4, 3), outputStep([]byte("abc")))
	require.NoError(t, err)

	assert.Equal(t, []byte("abc"), res.Data)
	assert.Equal(t, FormatPNG, res.Format)
	assert.Equal(t, 4, res.Width)
	assert.Equal(t, 3, res.Height)
	assert.Equal(t, 1, res.Frames)
	assert.Equal(t, int64(10), res.InputSize)
	assert.Equal(t, int64(3), res.OutputSize)
	assert.Contains(t, res.StageTimings, "decode")
	assert.Contains(t, res.StageTimings, "encode")

	assert.Equal(t, []string{"before:decode", "after:decode", "before:encode", "after:encode"}, hook.events)
	assert.Equal(t, []string{"decode", "encode"}, metrics.stages)
	assert.Equal(t, 1, metrics.compressions)
	assert.Equal(t, int64(1), p.ProcessedCount())
	assert.Equal(t, int64(0), p.ErrorCount())

	assert.Nil(t, in.Raster, "steps must not mutate the caller's ImageData")
}

func TestProcessor_Run_StopsAtFirstError(t *testing.T) {
	p := New(config.Default(), &Codecs{})
	hook := &recordingHook{}
	metrics := &recordingMetrics{}
	p.AddHook(hook)
	p.SetMetrics(metrics)

	boom := apperrors.New(apperrors.CategoryDecode, "decode", apperrors.ErrCorrupt)
	failing := funcStep{name: "decode", fn: func(*ImageData) (*ImageData, error) { return nil, boom }}
	never := funcStep{name: "encode", fn: func(*ImageData) (*ImageData, error) {
		t.Fatal("encode must not run after a failed decode")
		return nil, nil
	}}

	res, err := p.Run(context.Background(), &ImageData{Format: FormatJPEG}, failing, never)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperrors.ErrCorrupt)

	assert.Equal(t, []string{"before:decode", "error:decode"}, hook.events)
	assert.Equal(t, []string{"decode/" + apperrors.ErrCorrupt.Error()}, metrics.errors)
	assert.Equal(t, int64(0), p.ProcessedCount())
	assert.Equal(t, int64(1), p.ErrorCount())
}

func TestProcessor_Run_AnimationFrames(t *testing.T) {
	p := New(config.Default(), &Codecs{})
	anim := funcStep{name: "decode", fn: func(img *ImageData) (*ImageData, error) {
		next := *img
		next.Animation = &Animation{Width: 2, Height: 2, Frames: []Frame{
			{Raster: NewRaster(2, 2)}, {Raster: NewRaster(2, 2)}, {Raster: NewRaster(2, 2)},
		}}
		return &next, nil
	}}

	res, err := p.Run(context.Background(), &ImageData{Format: FormatGIF}, anim, outputStep([]byte{1}))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Frames)
	assert.Equal(t, 2, res.Width)
}

func TestProcessor_Reject(t *testing.T) {
	p := New(config.Default(), &Codecs{})
	metrics := &recordingMetrics{}
	p.SetMetrics(metrics)

	in := apperrors.New(apperrors.CategoryInput, "compress", apperrors.ErrEmptyInput)
	err := p.Reject(in)
	assert.Same(t, in, err)
	assert.Equal(t, int64(1), p.ErrorCount())
	assert.Equal(t, []string{"validate/" + apperrors.ErrEmptyInput.Error()}, metrics.errors)
}

func TestProcessor_RecordError_UnclassifiedKind(t *testing.T) {
	p := New(config.Default(), &Codecs{})
	metrics := &recordingMetrics{}
	p.SetMetrics(metrics)

	_ = p.Reject(errors.New("plain"))
	assert.Equal(t, []string{"validate/unknown"}, metrics.errors)
}

func TestProcessor_SetLoggerNil(t *testing.T) {
	p := New(config.Default(), &Codecs{})
	p.SetLogger(nil)
	assert.NotNil(t, p.Logger())
	assert.NotPanics(t, func() { _ = p.Reject(errors.New("x")) })
}

// ── Codecs ────────────────────────────────────────────────────────────────────

type nameDecoder string

func (nameDecoder) Decode(context.Context, []byte) (*Raster, error) { return NewRaster(1, 1), nil }
func (nameDecoder) Dimensions([]byte) (int, int, error)             { return 1, 1, nil }

func TestCodecs_Dispatch(t *testing.T) {
	c := &Codecs{}
	for _, f := range []Format{FormatPNG, FormatJPEG, FormatWebP, FormatGIF} {
		_, ok := c.DecoderFor(f)
		assert.False(t, ok, "empty table has no decoder for %s", f)

		c.Set(f, Codec{Decoder: nameDecoder(f)})
		d, ok := c.DecoderFor(f)
		require.True(t, ok)
		assert.Equal(t, nameDecoder(f), d)

		_, ok = c.EncoderFor(f)
		assert.False(t, ok)
	}

	_, ok := c.DecoderFor(FormatUnknown)
	assert.False(t, ok)
	c.Set(FormatUnknown, Codec{Decoder: nameDecoder("x")})
	_, ok = c.DecoderFor(FormatUnknown)
	assert.False(t, ok)
}
