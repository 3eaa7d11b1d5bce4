// Package hooks provides production-ready Hook, Logger and MetricsCollector
// implementations.
package hooks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Skryldev/image-compressor/core"
	apperrors "github.com/Skryldev/image-compressor/errors"
)

// ── Structured logger adapter ─────────────────────────────────────────────────

// SlogLogger wraps the standard library slog.Logger to satisfy core.Logger.
type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger creates a logger backed by slog.
func NewSlogLogger(l *slog.Logger) *SlogLogger { return &SlogLogger{log: l} }

// NewJSONLogger creates a JSON slog logger writing to w at the named level
// (debug, info, warn or error; anything else means info).
func NewJSONLogger(w io.Writer, level string) *SlogLogger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return NewSlogLogger(slog.New(h))
}

// ParseLevel maps a config.LogLevel string to a slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (s *SlogLogger) Debug(msg string, fields ...interface{}) {
	s.log.Debug(msg, toAttrs(fields)...)
}
func (s *SlogLogger) Info(msg string, fields ...interface{}) {
	s.log.Info(msg, toAttrs(fields)...)
}
func (s *SlogLogger) Warn(msg string, fields ...interface{}) {
	s.log.Warn(msg, toAttrs(fields)...)
}
func (s *SlogLogger) Error(msg string, fields ...interface{}) {
	s.log.Error(msg, toAttrs(fields)...)
}

func toAttrs(fields []interface{}) []any { return fields }

// ── Logging hook ──────────────────────────────────────────────────────────────

// LoggingHook logs before/after each pipeline step.
type LoggingHook struct {
	logger core.Logger
}

// NewLoggingHook creates a LoggingHook.
func NewLoggingHook(l core.Logger) *LoggingHook { return &LoggingHook{logger: l} }

func (h *LoggingHook) BeforeStep(_ context.Context, stepName string, img *core.ImageData) {
	w, ht := img.Dimensions()
	h.logger.Debug("pipeline.step.start",
		"step", stepName,
		"format", img.Format,
		"width", w,
		"height", ht,
		"input_bytes", len(img.Input),
	)
}

func (h *LoggingHook) AfterStep(_ context.Context, stepName string, img *core.ImageData, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("pipeline.step.error",
			"step", stepName,
			"duration_ms", d.Milliseconds(),
			"kind", kindLabel(err),
			"error", err.Error(),
		)
		return
	}
	out := "nil"
	if img != nil {
		w, ht := img.Dimensions()
		out = fmt.Sprintf("%dx%d %s %dB", w, ht, img.Format, len(img.Output))
	}
	h.logger.Debug("pipeline.step.done",
		"step", stepName,
		"duration_ms", d.Milliseconds(),
		"output", out,
	)
}

// ── In-memory metrics collector ───────────────────────────────────────────────

// InMemoryMetrics accumulates metrics atomically; safe for concurrent use.
type InMemoryMetrics struct {
	mu sync.RWMutex

	stageDurations map[string]time.Duration // cumulative per stage
	stageCalls     map[string]int64
	errors         map[string]int64 // keyed "stage/kind"
	compressions   map[core.Format]int64

	totalInputB  atomic.Int64
	totalOutputB atomic.Int64
}

// NewInMemoryMetrics creates an empty metrics store.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		stageDurations: make(map[string]time.Duration),
		stageCalls:     make(map[string]int64),
		errors:         make(map[string]int64),
		compressions:   make(map[core.Format]int64),
	}
}

func (m *InMemoryMetrics) RecordStageTime(stage string, d time.Duration) {
	m.mu.Lock()
	m.stageDurations[stage] += d
	m.stageCalls[stage]++
	m.mu.Unlock()
}

func (m *InMemoryMetrics) RecordCompression(format core.Format, inputBytes, outputBytes int64) {
	m.mu.Lock()
	m.compressions[format]++
	m.mu.Unlock()
	m.totalInputB.Add(inputBytes)
	m.totalOutputB.Add(outputBytes)
}

func (m *InMemoryMetrics) RecordError(stage string, kind string) {
	m.mu.Lock()
	m.errors[stage+"/"+kind]++
	m.mu.Unlock()
}

// Snapshot returns a copy of current metrics.
func (m *InMemoryMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		StageDurations: make(map[string]time.Duration, len(m.stageDurations)),
		StageCalls:     make(map[string]int64, len(m.stageCalls)),
		Errors:         make(map[string]int64, len(m.errors)),
		Compressions:   make(map[core.Format]int64, len(m.compressions)),
		TotalInputB:    m.totalInputB.Load(),
		TotalOutputB:   m.totalOutputB.Load(),
	}
	for k, v := range m.stageDurations {
		snap.StageDurations[k] = v
	}
	for k, v := range m.stageCalls {
		snap.StageCalls[k] = v
	}
	for k, v := range m.errors {
		snap.Errors[k] = v
	}
	for k, v := range m.compressions {
		snap.Compressions[k] = v
	}
	return snap
}

// MetricsSnapshot is an immutable point-in-time copy of metrics.
type MetricsSnapshot struct {
	StageDurations map[string]time.Duration
	StageCalls     map[string]int64
	Errors         map[string]int64
	Compressions   map[core.Format]int64
	TotalInputB    int64
	TotalOutputB   int64
}

// SavedBytes is the total input size minus the total output size.
func (s MetricsSnapshot) SavedBytes() int64 { return s.TotalInputB - s.TotalOutputB }

// ── Metrics hook ──────────────────────────────────────────────────────────────

// MetricsHook feeds stage events into a MetricsCollector.  Use it instead
// of Processor.SetMetrics when several collectors should observe the same
// processor; wiring both counts every stage twice.
type MetricsHook struct {
	collector core.MetricsCollector
}

// NewMetricsHook creates a MetricsHook.
func NewMetricsHook(c core.MetricsCollector) *MetricsHook { return &MetricsHook{collector: c} }

func (h *MetricsHook) BeforeStep(_ context.Context, _ string, _ *core.ImageData) {}

func (h *MetricsHook) AfterStep(_ context.Context, stepName string, img *core.ImageData, d time.Duration, err error) {
	h.collector.RecordStageTime(stepName, d)
	if err != nil {
		h.collector.RecordError(stepName, kindLabel(err))
		return
	}
	if img != nil && len(img.Output) > 0 {
		h.collector.RecordCompression(img.Format, int64(len(img.Input)), int64(len(img.Output)))
	}
}

func kindLabel(err error) string {
	if k := apperrors.KindOf(err); k != nil {
		return k.Error()
	}
	return "unknown"
}
