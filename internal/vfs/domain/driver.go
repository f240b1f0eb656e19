package domain

import (
	"context"
)

// DriverState is an opaque per-handle value owned by the driver that issued
// it. The core stores it in the handle table and passes it back on Release;
// it never inspects it.
type DriverState any

// Driver is the uniform capability contract every backend implements. A
// backend attaches by registering a Driver instance at a mount prefix; the
// core treats all variants identically and never assumes anything about a
// driver's internals beyond these methods being safe for concurrent use.
//
// Remainder paths are relative to the driver's mount prefix, without a
// leading slash; the empty string addresses the mount root. Drivers signal
// failures with the driver error taxonomy (ErrNotSupported, ErrUnavailable,
// ErrTimeout, ErrInvalidInput) wrapped with context.
type Driver interface {
	// Name identifies the driver variant in mount listings and logs.
	Name() string

	// Read returns the full content of the resource at remainder.
	Read(ctx context.Context, remainder string) ([]byte, error)

	// Write stores data at remainder and returns the number of bytes written.
	Write(ctx context.Context, remainder string, data []byte) (int, error)

	// ReadDir lists the entries of the directory at remainder in a stable order.
	ReadDir(ctx context.Context, remainder string) ([]DirEntry, error)

	// GetAttr returns the attributes of the node at remainder.
	GetAttr(ctx context.Context, remainder string) (*VirtualNode, error)

	// Open starts a file session at remainder and returns the driver-owned
	// state for it. The state is passed back verbatim on Release.
	Open(ctx context.Context, remainder string, mode OpenMode) (DriverState, error)

	// Release ends a file session previously started by Open.
	Release(ctx context.Context, state DriverState) error
}

// Remover is an optional extension a driver may implement to support
// unlinking resources. Drivers that do not implement it yield ErrNotSupported
// on unlink, the same way io/fs optional interfaces degrade.
type Remover interface {
	// Remove deletes the resource at remainder.
	Remove(ctx context.Context, remainder string) error
}

// DirEntry is a single directory listing entry.
type DirEntry struct {
	Name string   `json:"name"`
	Kind NodeKind `json:"kind"`
}

// OpenMode describes how a handle is opened.
type OpenMode uint8

const (
	// OpenRead opens the resource for reading.
	OpenRead OpenMode = 1 << iota

	// OpenWrite opens the resource for writing.
	OpenWrite

	// OpenCreate creates the resource if it does not exist.
	OpenCreate
)

// CanRead reports whether the mode permits reads.
func (m OpenMode) CanRead() bool { return m&OpenRead != 0 }

// CanWrite reports whether the mode permits writes.
func (m OpenMode) CanWrite() bool { return m&OpenWrite != 0 }

// RequiredPermission returns the capability permission a token must carry to
// open a handle with this mode. Any write or create intent requires write.
func (m OpenMode) RequiredPermission() Permission {
	if m.CanWrite() || m&OpenCreate != 0 {
		return WritePermission
	}
	return ReadPermission
}
