// Package web implements the HTTP endpoint backend. Paths under the mount
// map to URLs below a configured base: reading a path issues a GET, writing
// issues a POST with the payload as the request body.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/gnos-os/gnos/internal/errors"
	"github.com/gnos-os/gnos/internal/vfs/domain"
)

// maxResponseBytes bounds how much of an upstream response is read into
// memory per request.
const maxResponseBytes = 8 << 20

// Driver forwards filesystem operations to an HTTP service.
type Driver struct {
	baseURL string
	client  *http.Client
}

// Name identifies the driver variant.
func (d *Driver) Name() string {
	return "web"
}

// Read issues a GET for the endpoint at remainder and returns the response
// body.
func (d *Driver) Read(ctx context.Context, remainder string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint(remainder), nil)
	if err != nil {
		return nil, apperrors.Wrap(domain.ErrDriverInvalidInput, err.Error())
	}
	return d.do(req)
}

// Write issues a POST with data as the request body.
func (d *Driver) Write(ctx context.Context, remainder string, data []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint(remainder), bytes.NewReader(data))
	if err != nil {
		return 0, apperrors.Wrap(domain.ErrDriverInvalidInput, err.Error())
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	if _, err := d.do(req); err != nil {
		return 0, err
	}
	return len(data), nil
}

// ReadDir is not meaningful for HTTP endpoints.
func (d *Driver) ReadDir(ctx context.Context, remainder string) ([]domain.DirEntry, error) {
	return nil, apperrors.Wrap(domain.ErrDriverNotSupported, "endpoints are not listable")
}

// GetAttr probes the endpoint with a HEAD request. Endpoints appear as
// device nodes since their content is generated per request.
func (d *Driver) GetAttr(ctx context.Context, remainder string) (*domain.VirtualNode, error) {
	if remainder == "" {
		return &domain.VirtualNode{Kind: domain.DirectoryNode, Mode: 0o555}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, d.endpoint(remainder), nil)
	if err != nil {
		return nil, apperrors.Wrap(domain.ErrDriverInvalidInput, err.Error())
	}
	if _, err := d.do(req); err != nil {
		return nil, err
	}

	return &domain.VirtualNode{
		Kind:       domain.DeviceNode,
		Mode:       0o644,
		ModifiedAt: time.Now().UTC(),
	}, nil
}

// Open starts a session; the upstream connection is per request so there is
// no driver state to hold.
func (d *Driver) Open(ctx context.Context, remainder string, mode domain.OpenMode) (domain.DriverState, error) {
	return nil, nil
}

// Release ends a session.
func (d *Driver) Release(ctx context.Context, state domain.DriverState) error {
	return nil
}

func (d *Driver) endpoint(remainder string) string {
	if remainder == "" {
		return d.baseURL
	}
	return d.baseURL + "/" + remainder
}

func (d *Driver) do(req *http.Request) ([]byte, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.Wrap(domain.ErrDriverTimeout, err.Error())
		}
		return nil, apperrors.Wrap(domain.ErrDriverUnavailable, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.Wrap(domain.ErrDriverUnavailable, err.Error())
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "endpoint not found")
	case resp.StatusCode >= 500:
		return nil, apperrors.Wrap(domain.ErrDriverUnavailable, fmt.Sprintf("upstream returned %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return nil, apperrors.Wrap(domain.ErrDriverInvalidInput, fmt.Sprintf("upstream returned %d", resp.StatusCode))
	}
	return body, nil
}

// NewDriver creates a web driver rooted at baseURL. The timeout bounds each
// upstream request independently of the dispatcher's own deadline.
func NewDriver(baseURL string, timeout time.Duration) *Driver {
	return &Driver{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

var _ domain.Driver = (*Driver)(nil)
