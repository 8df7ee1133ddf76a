package trace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

var logger = log.WithField("package", "trace")

// ReportFileName is written into the trace directory on shutdown
const ReportFileName = "performance-report.json"

const tracerName = "notesync"

var (
	tracer       trace.Tracer
	spanRecorder *SpanRecorder
	outputDir    string
)

// SpanRecorder records ended spans for the performance report
type SpanRecorder struct {
	mu    sync.Mutex
	spans []spanRecord
}

type spanRecord struct {
	Name       string
	Duration   time.Duration
	Start      time.Time
	End        time.Time
	ParentID   string
	SpanID     string
	Attributes map[string]string
}

type SpanInfo struct {
	Name       string            `json:"name"`
	DurationMs float64           `json:"durationMs"`
	Start      string            `json:"start"`
	End        string            `json:"end"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Children   []SpanInfo        `json:"children,omitempty"`
}

type PerformanceReport struct {
	Spans           []SpanInfo `json:"spans"`
	TotalDurationMs float64    `json:"totalDurationMs"`
	Timestamp       string     `json:"timestamp"`
}

func (r *SpanRecorder) add(rec spanRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spans = append(r.spans, rec)
}

func (r *SpanRecorder) snapshot() []spanRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]spanRecord(nil), r.spans...)
}

// InitTracer initializes OpenTelemetry tracing. An empty outDir disables
// tracing and returns a no-op shutdown.
func InitTracer(serviceName, outDir string) (func(), error) {
	if outDir == "" {
		tracer = nil
		spanRecorder = nil
		return func() {}, nil
	}

	spanRecorder = &SpanRecorder{spans: make([]spanRecord, 0)}
	outputDir = outDir

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(&recordingSpanProcessor{recorder: spanRecorder}),
	)

	otel.SetTracerProvider(tp)
	tracer = tp.Tracer(tracerName)

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("Failed to shut down tracer provider")
		}
		if err := ExportReport(); err != nil {
			logger.WithError(err).Warn("Failed to export performance report")
		}
	}

	return shutdown, nil
}

// StartSpan starts a new span. Without InitTracer it returns the span
// already in ctx, so callers can always defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// recordingSpanProcessor feeds ended spans to the recorder
type recordingSpanProcessor struct {
	recorder *SpanRecorder
}

func (p *recordingSpanProcessor) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {}

func (p *recordingSpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	if p.recorder == nil {
		return
	}
	parentID := ""
	if s.Parent().IsValid() {
		parentID = s.Parent().SpanID().String()
	}
	var attrs map[string]string
	if kvs := s.Attributes(); len(kvs) > 0 {
		attrs = make(map[string]string, len(kvs))
		for _, kv := range kvs {
			attrs[string(kv.Key)] = kv.Value.Emit()
		}
	}
	p.recorder.add(spanRecord{
		Name:       s.Name(),
		Duration:   s.EndTime().Sub(s.StartTime()),
		Start:      s.StartTime(),
		End:        s.EndTime(),
		SpanID:     s.SpanContext().SpanID().String(),
		ParentID:   parentID,
		Attributes: attrs,
	})
}

func (p *recordingSpanProcessor) Shutdown(ctx context.Context) error   { return nil }
func (p *recordingSpanProcessor) ForceFlush(ctx context.Context) error { return nil }

// ExportReport writes the performance report to the trace directory
func ExportReport() error {
	if spanRecorder == nil || outputDir == "" {
		return nil
	}
	records := spanRecorder.snapshot()
	if len(records) == 0 {
		return nil
	}

	hierarchy := buildHierarchy(records)

	totalDurationMs := 0.0
	for _, span := range hierarchy {
		totalDurationMs += span.DurationMs
	}

	report := PerformanceReport{
		Spans:           hierarchy,
		TotalDurationMs: totalDurationMs,
		Timestamp:       time.Now().Format(time.RFC3339Nano),
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	reportPath := filepath.Join(outputDir, ReportFileName)
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(reportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.WithField("path", reportPath).Info("Wrote performance report")
	return nil
}

// buildHierarchy converts flat span records into a tree ordered by start
// time. Spans whose parent was not recorded become roots.
func buildHierarchy(records []spanRecord) []SpanInfo {
	known := make(map[string]bool, len(records))
	for _, r := range records {
		known[r.SpanID] = true
	}

	children := make(map[string][]spanRecord)
	var roots []spanRecord
	for _, r := range records {
		if r.ParentID == "" || !known[r.ParentID] {
			roots = append(roots, r)
			continue
		}
		children[r.ParentID] = append(children[r.ParentID], r)
	}

	var build func(rs []spanRecord) []SpanInfo
	build = func(rs []spanRecord) []SpanInfo {
		sort.Slice(rs, func(i, j int) bool { return rs[i].Start.Before(rs[j].Start) })
		out := make([]SpanInfo, 0, len(rs))
		for _, r := range rs {
			out = append(out, SpanInfo{
				Name:       r.Name,
				DurationMs: float64(r.Duration.Microseconds()) / 1000.0,
				Start:      r.Start.Format(time.RFC3339Nano),
				End:        r.End.Format(time.RFC3339Nano),
				Attributes: r.Attributes,
				Children:   build(children[r.SpanID]),
			})
		}
		return out
	}

	return build(roots)
}
