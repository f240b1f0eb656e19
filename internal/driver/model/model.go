// Package model implements the inference backend. Each model appears as a
// directory holding a prompt file and a completion file: writing the prompt
// file submits a request, reading the completion file returns the result.
// The engine behind it is simulated; the filesystem contract is the real one.
package model

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "github.com/gnos-os/gnos/internal/errors"
	"github.com/gnos-os/gnos/internal/vfs/domain"
)

const (
	promptFile     = "prompt"
	completionFile = "completion"
)

// Driver exposes a fixed catalog of models under the mount root.
type Driver struct {
	models []string

	mu      sync.RWMutex
	prompts map[string][]byte
}

// Name identifies the driver variant.
func (d *Driver) Name() string {
	return "model"
}

// Read returns the stored prompt or the simulated completion for a model.
func (d *Driver) Read(ctx context.Context, remainder string) ([]byte, error) {
	model, file, err := d.splitRemainder(remainder)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	prompt, ok := d.prompts[model]
	d.mu.RUnlock()

	switch file {
	case promptFile:
		if !ok {
			return []byte{}, nil
		}
		return prompt, nil
	case completionFile:
		if !ok {
			return nil, apperrors.Wrap(domain.ErrDriverInvalidInput, "no prompt submitted")
		}
		return d.complete(model, prompt), nil
	default:
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "unknown model file")
	}
}

// Write submits a prompt. Only the prompt file accepts writes.
func (d *Driver) Write(ctx context.Context, remainder string, data []byte) (int, error) {
	model, file, err := d.splitRemainder(remainder)
	if err != nil {
		return 0, err
	}
	if file != promptFile {
		return 0, apperrors.Wrap(domain.ErrDriverNotSupported, "only the prompt file is writable")
	}
	if len(data) == 0 {
		return 0, apperrors.Wrap(domain.ErrDriverInvalidInput, "empty prompt")
	}

	stored := make([]byte, len(data))
	copy(stored, data)

	d.mu.Lock()
	d.prompts[model] = stored
	d.mu.Unlock()

	return len(data), nil
}

// ReadDir lists models at the root and the two files inside each model.
func (d *Driver) ReadDir(ctx context.Context, remainder string) ([]domain.DirEntry, error) {
	if remainder == "" {
		entries := make([]domain.DirEntry, 0, len(d.models))
		for _, name := range d.models {
			entries = append(entries, domain.DirEntry{Name: name, Kind: domain.DirectoryNode})
		}
		return entries, nil
	}

	if !d.hasModel(remainder) {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "unknown model")
	}
	return []domain.DirEntry{
		{Name: completionFile, Kind: domain.FileNode},
		{Name: promptFile, Kind: domain.FileNode},
	}, nil
}

// GetAttr resolves the root, a model directory, or one of its files.
func (d *Driver) GetAttr(ctx context.Context, remainder string) (*domain.VirtualNode, error) {
	if remainder == "" {
		return &domain.VirtualNode{Kind: domain.DirectoryNode, Mode: 0o555}, nil
	}
	if d.hasModel(remainder) {
		return &domain.VirtualNode{Kind: domain.DirectoryNode, Mode: 0o555}, nil
	}

	model, file, err := d.splitRemainder(remainder)
	if err != nil {
		return nil, err
	}

	node := &domain.VirtualNode{Kind: domain.FileNode, ModifiedAt: time.Now().UTC()}
	switch file {
	case promptFile:
		node.Mode = 0o644
		d.mu.RLock()
		node.Size = int64(len(d.prompts[model]))
		d.mu.RUnlock()
	case completionFile:
		node.Mode = 0o444
	default:
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "unknown model file")
	}
	return node, nil
}

// Open validates the target; sessions carry no driver state.
func (d *Driver) Open(ctx context.Context, remainder string, mode domain.OpenMode) (domain.DriverState, error) {
	if _, _, err := d.splitRemainder(remainder); err != nil {
		return nil, err
	}
	return nil, nil
}

// Release ends a session.
func (d *Driver) Release(ctx context.Context, state domain.DriverState) error {
	return nil
}

// complete produces a deterministic simulated completion for a prompt.
func (d *Driver) complete(model string, prompt []byte) []byte {
	excerpt := string(prompt)
	if len(excerpt) > 64 {
		excerpt = excerpt[:64]
	}
	excerpt = strings.TrimSpace(excerpt)
	return fmt.Appendf(nil, "model=%s status=simulated prompt_bytes=%d\n%s\n", model, len(prompt), excerpt)
}

func (d *Driver) hasModel(name string) bool {
	for _, m := range d.models {
		if m == name {
			return true
		}
	}
	return false
}

func (d *Driver) splitRemainder(remainder string) (model, file string, err error) {
	model, file, ok := strings.Cut(remainder, "/")
	if !ok || model == "" || file == "" || strings.Contains(file, "/") {
		return "", "", apperrors.Wrap(apperrors.ErrNotFound, "path is not a model file")
	}
	if !d.hasModel(model) {
		return "", "", apperrors.Wrap(apperrors.ErrNotFound, "unknown model")
	}
	return model, file, nil
}

// NewDriver creates a model driver with the given catalog. The catalog is
// sorted once so directory listings stay stable.
func NewDriver(models []string) *Driver {
	catalog := make([]string, len(models))
	copy(catalog, models)
	sort.Strings(catalog)
	return &Driver{
		models:  catalog,
		prompts: make(map[string][]byte),
	}
}

var _ domain.Driver = (*Driver)(nil)
