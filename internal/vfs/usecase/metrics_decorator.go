package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gnos-os/gnos/internal/metrics"
	"github.com/gnos-os/gnos/internal/vfs/domain"
)

// dispatcherWithMetrics decorates Dispatcher with metrics instrumentation.
// Audit records capture the authoritative outcome per operation; metrics add
// the aggregate counters and latency histograms scraped by Prometheus.
type dispatcherWithMetrics struct {
	next    Dispatcher
	metrics metrics.BusinessMetrics
}

// NewDispatcherWithMetrics wraps a Dispatcher with metrics recording.
func NewDispatcherWithMetrics(dispatcher Dispatcher, m metrics.BusinessMetrics) Dispatcher {
	return &dispatcherWithMetrics{
		next:    dispatcher,
		metrics: m,
	}
}

func (d *dispatcherWithMetrics) observe(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	d.metrics.RecordOperation(ctx, "vfs", operation, status)
	d.metrics.RecordDuration(ctx, "vfs", operation, time.Since(start), status)
}

func (d *dispatcherWithMetrics) Lookup(ctx context.Context, path string) (*domain.VirtualNode, error) {
	start := time.Now()
	node, err := d.next.Lookup(ctx, path)
	d.observe(ctx, "lookup", start, err)
	return node, err
}

func (d *dispatcherWithMetrics) GetAttr(ctx context.Context, path string) (*domain.VirtualNode, error) {
	start := time.Now()
	node, err := d.next.GetAttr(ctx, path)
	d.observe(ctx, "getattr", start, err)
	return node, err
}

func (d *dispatcherWithMetrics) Open(
	ctx context.Context,
	path string,
	mode domain.OpenMode,
	encodedToken string,
) (uuid.UUID, error) {
	start := time.Now()
	handleID, err := d.next.Open(ctx, path, mode, encodedToken)
	d.observe(ctx, "open", start, err)
	return handleID, err
}

func (d *dispatcherWithMetrics) Read(
	ctx context.Context,
	handleID uuid.UUID,
	offset int64,
	length int,
) ([]byte, error) {
	start := time.Now()
	data, err := d.next.Read(ctx, handleID, offset, length)
	d.observe(ctx, "read", start, err)
	return data, err
}

func (d *dispatcherWithMetrics) Write(
	ctx context.Context,
	handleID uuid.UUID,
	offset int64,
	data []byte,
) (int, error) {
	start := time.Now()
	written, err := d.next.Write(ctx, handleID, offset, data)
	d.observe(ctx, "write", start, err)
	return written, err
}

func (d *dispatcherWithMetrics) Release(ctx context.Context, handleID uuid.UUID) error {
	start := time.Now()
	err := d.next.Release(ctx, handleID)
	d.observe(ctx, "release", start, err)
	return err
}

func (d *dispatcherWithMetrics) ReadDir(
	ctx context.Context,
	path string,
	encodedToken string,
) ([]domain.DirEntry, error) {
	start := time.Now()
	entries, err := d.next.ReadDir(ctx, path, encodedToken)
	d.observe(ctx, "readdir", start, err)
	return entries, err
}

func (d *dispatcherWithMetrics) Create(
	ctx context.Context,
	path string,
	mode domain.OpenMode,
	encodedToken string,
) (uuid.UUID, error) {
	start := time.Now()
	handleID, err := d.next.Create(ctx, path, mode, encodedToken)
	d.observe(ctx, "create", start, err)
	return handleID, err
}

func (d *dispatcherWithMetrics) Unlink(ctx context.Context, path string, encodedToken string) error {
	start := time.Now()
	err := d.next.Unlink(ctx, path, encodedToken)
	d.observe(ctx, "unlink", start, err)
	return err
}
