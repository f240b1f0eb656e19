// Package usecase implements business logic orchestration for the virtual
// filesystem: capability issuance and authorization, audit recording, and
// operation dispatch to backend drivers.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/gnos-os/gnos/internal/vfs/domain"
)

// CapabilityUseCase issues, authorizes, and revokes capability tokens.
type CapabilityUseCase interface {
	// Issue creates a fresh signed token for the given scope, permission set,
	// and TTL. The TTL is clamped to the configured maximum; there is no
	// implicit refresh, renewal is a new Issue call.
	Issue(ctx context.Context, input *domain.IssueTokenInput) (*domain.IssueTokenOutput, error)

	// Authorize runs the five-step check against an encoded token: signature,
	// revocation, expiry, path scope, and permission, in that order. The
	// first failing step determines the returned error. The decoded token is
	// returned whenever the string could be parsed, even on failure, so
	// callers can attribute the attempt in audit records.
	Authorize(
		ctx context.Context,
		encodedToken string,
		path string,
		perm domain.Permission,
	) (*domain.Token, error)

	// Revoke adds a token id to the revocation set. Idempotent; takes effect
	// on the next Authorize call regardless of the token's expiry.
	Revoke(ctx context.Context, tokenID uuid.UUID) error
}

// AuditLogUseCase assigns operation sequence numbers and records outcomes.
type AuditLogUseCase interface {
	// Begin atomically reserves the next sequence number. Dispatchers call it
	// when the authorization check begins, so sequence order reflects
	// authorization order rather than completion order.
	Begin() uint64

	// Record signs and persists one audit record. The record's ID and
	// timestamp are filled in when zero.
	Record(ctx context.Context, record *domain.AuditRecord) error

	// List returns records ordered by sequence descending (newest first).
	List(ctx context.Context, offset, limit int) ([]*domain.AuditRecord, error)

	// Verify checks a record's signature against its content.
	Verify(record *domain.AuditRecord) error
}

// AuditLogRepository persists audit records. Implementations must be safe for
// concurrent writers and must never reorder or drop records they accepted.
type AuditLogRepository interface {
	Create(ctx context.Context, record *domain.AuditRecord) error
	List(ctx context.Context, offset, limit int) ([]*domain.AuditRecord, error)
}

// Resolver maintains the mount table consumed by the dispatcher and the
// admin surface. Implemented by service.MountTable.
type Resolver interface {
	Register(prefix string, driver domain.Driver) error
	Unregister(prefix string) error
	Resolve(path string) (domain.Driver, string, error)
	List() []domain.MountInfo
}

// Dispatcher exposes one entry point per kernel callback. Every entry point
// runs the same sequence: reserve an audit sequence number, authorize,
// resolve, invoke the driver, and record the outcome, unconditionally, with
// whatever partial information is available at the failure point.
type Dispatcher interface {
	// Lookup resolves a path to its node view without requiring a token.
	Lookup(ctx context.Context, path string) (*domain.VirtualNode, error)

	// GetAttr returns the attributes of the node at path.
	GetAttr(ctx context.Context, path string) (*domain.VirtualNode, error)

	// Open authorizes the mode's required permission and starts a file
	// session, returning the handle id for subsequent reads and writes.
	Open(ctx context.Context, path string, mode domain.OpenMode, encodedToken string) (uuid.UUID, error)

	// Read returns up to length bytes of the handle's content from offset.
	Read(ctx context.Context, handleID uuid.UUID, offset int64, length int) ([]byte, error)

	// Write sends data to the handle's driver and returns the bytes written.
	Write(ctx context.Context, handleID uuid.UUID, offset int64, data []byte) (int, error)

	// Release ends a file session. The handle is not reusable afterwards.
	Release(ctx context.Context, handleID uuid.UUID) error

	// ReadDir authorizes list permission and returns the directory entries at path.
	ReadDir(ctx context.Context, path string, encodedToken string) ([]domain.DirEntry, error)

	// Create authorizes write permission and opens a handle with create intent.
	Create(ctx context.Context, path string, mode domain.OpenMode, encodedToken string) (uuid.UUID, error)

	// Unlink authorizes write permission and removes the resource at path.
	Unlink(ctx context.Context, path string, encodedToken string) error
}
