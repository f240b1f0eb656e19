// Package blob implements the cloud storage backend. It adapts a
// gocloud.dev bucket to the driver contract, so the same code serves S3,
// GCS, Azure, local files, and the in-memory bucket used in tests.
package blob

import (
	"context"
	"io"
	"sort"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	apperrors "github.com/gnos-os/gnos/internal/errors"
	"github.com/gnos-os/gnos/internal/vfs/domain"
)

// Driver exposes a bucket as a filesystem subtree. Object keys map directly
// to remainder paths; "/" delimited prefixes appear as directories.
type Driver struct {
	bucket *blob.Bucket
}

// Name identifies the driver variant.
func (d *Driver) Name() string {
	return "blob"
}

// Read returns the full content of the object at remainder.
func (d *Driver) Read(ctx context.Context, remainder string) ([]byte, error) {
	data, err := d.bucket.ReadAll(ctx, remainder)
	if err != nil {
		return nil, mapBucketErr(err, "failed to read object")
	}
	return data, nil
}

// Write stores data as the object at remainder, replacing any existing
// content.
func (d *Driver) Write(ctx context.Context, remainder string, data []byte) (int, error) {
	if err := d.bucket.WriteAll(ctx, remainder, data, nil); err != nil {
		return 0, mapBucketErr(err, "failed to write object")
	}
	return len(data), nil
}

// ReadDir lists the objects and prefixes directly under remainder.
func (d *Driver) ReadDir(ctx context.Context, remainder string) ([]domain.DirEntry, error) {
	prefix := remainder
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	iter := d.bucket.List(&blob.ListOptions{
		Prefix:    prefix,
		Delimiter: "/",
	})

	entries := []domain.DirEntry{}
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, mapBucketErr(err, "failed to list objects")
		}

		name := strings.TrimPrefix(obj.Key, prefix)
		kind := domain.FileNode
		if obj.IsDir {
			name = strings.TrimSuffix(name, "/")
			kind = domain.DirectoryNode
		}
		entries = append(entries, domain.DirEntry{Name: name, Kind: kind})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// GetAttr resolves remainder to either an object or a prefix directory.
func (d *Driver) GetAttr(ctx context.Context, remainder string) (*domain.VirtualNode, error) {
	if remainder == "" {
		return &domain.VirtualNode{Kind: domain.DirectoryNode, Mode: 0o755}, nil
	}

	attrs, err := d.bucket.Attributes(ctx, remainder)
	if err == nil {
		return &domain.VirtualNode{
			Kind:       domain.FileNode,
			Size:       attrs.Size,
			Mode:       0o644,
			ModifiedAt: attrs.ModTime,
		}, nil
	}
	if gcerrors.Code(err) != gcerrors.NotFound {
		return nil, mapBucketErr(err, "failed to stat object")
	}

	// No object with this exact key. It is still a directory when at least
	// one object lives under the prefix.
	iter := d.bucket.List(&blob.ListOptions{Prefix: remainder + "/"})
	if _, err := iter.Next(ctx); err == nil {
		return &domain.VirtualNode{Kind: domain.DirectoryNode, Mode: 0o755}, nil
	}

	return nil, apperrors.Wrap(apperrors.ErrNotFound, "object not found")
}

// Open starts a session; the bucket is stateless so no per-handle state is
// needed.
func (d *Driver) Open(ctx context.Context, remainder string, mode domain.OpenMode) (domain.DriverState, error) {
	if mode&domain.OpenCreate == 0 && !mode.CanWrite() {
		if _, err := d.GetAttr(ctx, remainder); err != nil {
			return nil, err
		}
	}
	return remainder, nil
}

// Release ends a session.
func (d *Driver) Release(ctx context.Context, state domain.DriverState) error {
	return nil
}

// Remove deletes the object at remainder.
func (d *Driver) Remove(ctx context.Context, remainder string) error {
	if err := d.bucket.Delete(ctx, remainder); err != nil {
		return mapBucketErr(err, "failed to delete object")
	}
	return nil
}

// mapBucketErr translates gocloud error codes into the driver error taxonomy.
func mapBucketErr(err error, message string) error {
	switch gcerrors.Code(err) {
	case gcerrors.NotFound:
		return apperrors.Wrap(apperrors.ErrNotFound, message+": "+err.Error())
	case gcerrors.InvalidArgument:
		return apperrors.Wrap(domain.ErrDriverInvalidInput, message+": "+err.Error())
	case gcerrors.DeadlineExceeded:
		return apperrors.Wrap(domain.ErrDriverTimeout, message+": "+err.Error())
	default:
		return apperrors.Wrap(domain.ErrDriverUnavailable, message+": "+err.Error())
	}
}

// NewDriver creates a blob driver backed by an opened bucket. The caller
// owns the bucket's lifecycle.
func NewDriver(bucket *blob.Bucket) *Driver {
	return &Driver{bucket: bucket}
}

var (
	_ domain.Driver  = (*Driver)(nil)
	_ domain.Remover = (*Driver)(nil)
)
