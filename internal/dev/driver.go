package dev

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/routegen-dev/routegen/internal/errors"
	"github.com/routegen-dev/routegen/pkg/router"
)

// Default tracer name for generation passes.
const defaultTracerName = "routegen"

// DriverConfig configures the generation driver.
type DriverConfig struct {
	// RoutesDir is the pages directory the compiler walks.
	RoutesDir string

	// OutputPath is where the generated table is written.
	OutputPath string

	// PackageName is the package name of the generated file.
	PackageName string

	// Scanner overrides the export scanner. Nil uses the Go parser.
	Scanner router.ExportScanner

	// WriteFile overrides how output is written. Nil writes to disk.
	WriteFile func(path string, data []byte) error

	// TracerName is the name of the tracer (default: "routegen").
	TracerName string

	// Metrics records pass outcomes. Nil disables recording.
	Metrics *Metrics
}

// PassResult contains the result of one generation pass.
type PassResult struct {
	// Success indicates the pass produced a valid table.
	Success bool

	// Superseded indicates a newer pass cancelled this one before its
	// output was written. The result carries no table.
	Superseded bool

	// Written indicates the output file was updated. A successful pass
	// whose output matches the previous bytes leaves the file untouched.
	Written bool

	// Duration is how long the pass took.
	Duration time.Duration

	// Table is the compiled table on success.
	Table *router.RouterTable

	// Error is the pass error, if any.
	Error error
}

// Driver runs generation passes. Each pass works on a private snapshot of the
// pages tree; starting a pass cancels the one before it. Cancellation is
// cooperative and observed at exactly one point, immediately before the
// output write, so a cancelled pass never leaves a partial file behind.
type Driver struct {
	config DriverConfig
	tracer trace.Tracer

	mu         sync.Mutex
	cancelPrev context.CancelFunc
	lastOutput []byte
}

// NewDriver creates a generation driver.
func NewDriver(config DriverConfig) *Driver {
	if config.TracerName == "" {
		config.TracerName = defaultTracerName
	}
	if config.WriteFile == nil {
		config.WriteFile = writeFileAtomic
	}
	return &Driver{
		config: config,
		tracer: otel.Tracer(config.TracerName),
	}
}

// Generate runs one full pass: collect, compile, render, write. The returned
// result reflects exactly one of success, failure, or supersession.
func (d *Driver) Generate(ctx context.Context) PassResult {
	d.mu.Lock()
	if d.cancelPrev != nil {
		d.cancelPrev()
	}
	passCtx, cancel := context.WithCancel(ctx)
	d.cancelPrev = cancel
	d.mu.Unlock()

	start := time.Now()
	passCtx, span := d.tracer.Start(passCtx, "routegen.pass",
		trace.WithAttributes(
			attribute.String("routegen.routes_dir", d.config.RoutesDir),
			attribute.String("routegen.output", d.config.OutputPath),
		))
	defer span.End()

	table, src, err := d.compile(passCtx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		result := PassResult{Duration: time.Since(start), Error: err}
		d.record(result)
		return result
	}

	// The single cancellation point: a pass that lost the race stops here,
	// with the filesystem untouched.
	if passCtx.Err() != nil {
		span.SetStatus(codes.Error, "superseded")
		result := PassResult{Superseded: true, Duration: time.Since(start)}
		d.record(result)
		return result
	}

	written, err := d.write(src)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		result := PassResult{Duration: time.Since(start), Error: err}
		d.record(result)
		return result
	}

	span.SetStatus(codes.Ok, "")
	span.SetAttributes(attribute.Bool("routegen.written", written))
	result := PassResult{
		Success:  true,
		Written:  written,
		Duration: time.Since(start),
		Table:    table,
	}
	d.record(result)
	return result
}

// compile runs the pipeline stages under their own spans.
func (d *Driver) compile(ctx context.Context) (*router.RouterTable, []byte, error) {
	_, span := d.tracer.Start(ctx, "routegen.compile")
	table, err := router.Compile(os.DirFS(d.config.RoutesDir), d.config.Scanner)
	if err != nil {
		span.RecordError(err)
		span.End()
		return nil, nil, err
	}
	span.SetAttributes(attribute.Int("routegen.forest_size", len(table.Forest)))
	span.End()

	_, span = d.tracer.Start(ctx, "routegen.render")
	src, err := router.NewGenerator(table, d.config.PackageName).Generate()
	span.End()
	if err != nil {
		return nil, nil, err
	}
	return table, src, nil
}

// write stores the rendered table, skipping the write when the bytes are
// unchanged. Deterministic output keeps file churn minimal.
func (d *Driver) write(src []byte) (bool, error) {
	d.mu.Lock()
	unchanged := d.lastOutput != nil && string(d.lastOutput) == string(src)
	d.mu.Unlock()
	if unchanged {
		return false, nil
	}

	if current, err := os.ReadFile(d.config.OutputPath); err == nil && string(current) == string(src) {
		d.mu.Lock()
		d.lastOutput = src
		d.mu.Unlock()
		return false, nil
	}

	if err := d.config.WriteFile(d.config.OutputPath, src); err != nil {
		return false, errors.New("R202").Wrap(err)
	}

	d.mu.Lock()
	d.lastOutput = src
	d.mu.Unlock()
	return true, nil
}

// record feeds the pass outcome into the metrics, if configured.
func (d *Driver) record(result PassResult) {
	m := d.config.Metrics
	if m == nil {
		return
	}
	switch {
	case result.Superseded:
		m.RecordPass("superseded", result.Duration)
	case result.Success:
		m.RecordPass("success", result.Duration)
		if result.Table != nil {
			m.RecordRoutes(countPages(result.Table))
		}
	default:
		m.RecordPass("failure", result.Duration)
	}
}

// countPages counts the distinct pages reachable from the forest.
func countPages(table *router.RouterTable) int {
	pages := make(map[string]bool)
	var walk func(b router.Branch)
	walk = func(b router.Branch) {
		switch br := b.(type) {
		case router.SwitchBranch:
			for _, c := range br.Cases {
				walk(c.Branch)
			}
			walk(br.Default)
		case router.DynamicBranch:
			walk(br.Next)
		case router.MiddlewareBranch:
			walk(br.Next)
		case router.RewriteBranch:
			walk(br.Then)
			walk(br.Rewrite)
		case router.NextBranch:
			pages[br.Page] = true
		}
	}
	for _, b := range table.Forest {
		walk(b)
	}
	return len(pages)
}

// Stop cancels any in-flight pass.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancelPrev != nil {
		d.cancelPrev()
		d.cancelPrev = nil
	}
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
