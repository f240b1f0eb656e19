package domain

import (
	"time"
)

// NodeKind classifies a resolved path.
type NodeKind string

const (
	// DirectoryNode is a listable container of other nodes.
	DirectoryNode NodeKind = "directory"

	// FileNode is a readable/writable leaf.
	FileNode NodeKind = "file"

	// DeviceNode is a leaf backed by a device-style endpoint.
	DeviceNode NodeKind = "device"
)

// VirtualNode is the resolved view of a path. It is computed on demand from
// the owning driver's GetAttr and never persisted by the core.
type VirtualNode struct {
	Kind       NodeKind
	Size       int64
	Mode       uint32
	ModifiedAt time.Time

	// DriverName identifies the driver that produced this view.
	DriverName string
}
