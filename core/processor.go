package core

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Skryldev/image-compressor/config"
	apperrors "github.com/Skryldev/image-compressor/errors"
)

// Processor runs pipeline steps with hooks, timings and counters.  It holds
// no per-call state and is safe for concurrent use once configured; attach
// the logger, metrics and hooks before the first call.
type Processor struct {
	cfg     config.Config
	codecs  *Codecs
	hooks   []Hook
	logger  Logger
	metrics MetricsCollector

	processedCount atomic.Int64
	errorCount     atomic.Int64
}

// New creates a Processor over the given codec table.
func New(cfg config.Config, codecs *Codecs) *Processor {
	return &Processor{
		cfg:    cfg,
		codecs: codecs,
		logger: nopLogger{},
	}
}

// SetLogger attaches a structured logger.
func (p *Processor) SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}
	p.logger = l
}

// SetMetrics attaches a metrics collector.
func (p *Processor) SetMetrics(m MetricsCollector) { p.metrics = m }

// AddHook registers a pipeline hook.
func (p *Processor) AddHook(h Hook) { p.hooks = append(p.hooks, h) }

// Codecs returns the codec table.
func (p *Processor) Codecs() *Codecs { return p.codecs }

// Config returns the configuration the processor was built with.
func (p *Processor) Config() config.Config { return p.cfg }

// Logger returns the attached logger (never nil).
func (p *Processor) Logger() Logger { return p.logger }

// Run executes steps in order on img, stopping at the first failure.  There
// is no cancellation: ctx only carries tracing and logging context.
func (p *Processor) Run(ctx context.Context, img *ImageData, steps ...Step) (*Result, error) {
	start := time.Now()
	timings := make(map[string]time.Duration, len(steps))

	current := img
	for _, step := range steps {
		p.notifyBefore(ctx, step.Name(), current)
		t := time.Now()
		next, err := step.Execute(ctx, current)
		elapsed := time.Since(t)
		timings[step.Name()] = elapsed
		p.notifyAfter(ctx, step.Name(), next, elapsed, err)
		if p.metrics != nil {
			p.metrics.RecordStageTime(step.Name(), elapsed)
		}
		if err != nil {
			p.errorCount.Add(1)
			p.recordError(step.Name(), err)
			return nil, err
		}
		current = next
	}

	p.processedCount.Add(1)

	w, h := current.Dimensions()
	res := &Result{
		Data:           current.Output,
		Format:         current.Format,
		Width:          w,
		Height:         h,
		Frames:         1,
		InputSize:      int64(len(current.Input)),
		OutputSize:     int64(len(current.Output)),
		ProcessingTime: time.Since(start),
		StageTimings:   timings,
	}
	if current.Animation != nil {
		res.Frames = len(current.Animation.Frames)
	}
	if p.metrics != nil {
		p.metrics.RecordCompression(res.Format, res.InputSize, res.OutputSize)
	}
	p.logger.Debug("compress.done",
		"format", res.Format,
		"width", res.Width,
		"height", res.Height,
		"input_bytes", res.InputSize,
		"output_bytes", res.OutputSize,
		"duration_ms", res.ProcessingTime.Milliseconds(),
	)
	return res, nil
}

// Reject records a failure that happened before any step ran (input
// validation) so counters and logs stay complete.
func (p *Processor) Reject(err error) error {
	p.errorCount.Add(1)
	p.recordError("validate", err)
	return err
}

func (p *Processor) recordError(stage string, err error) {
	kind := "unknown"
	if k := apperrors.KindOf(err); k != nil {
		kind = k.Error()
	}
	if p.metrics != nil {
		p.metrics.RecordError(stage, kind)
	}
	p.logger.Warn("compress.failed", "stage", stage, "kind", kind, "error", err.Error())
}

func (p *Processor) notifyBefore(ctx context.Context, name string, img *ImageData) {
	for _, h := range p.hooks {
		h.BeforeStep(ctx, name, img)
	}
}

func (p *Processor) notifyAfter(ctx context.Context, name string, img *ImageData, d time.Duration, err error) {
	for _, h := range p.hooks {
		h.AfterStep(ctx, name, img, d, err)
	}
}

// ProcessedCount returns the total number of successfully compressed images.
func (p *Processor) ProcessedCount() int64 { return p.processedCount.Load() }

// ErrorCount returns the total number of failed calls.
func (p *Processor) ErrorCount() int64 { return p.errorCount.Load() }
