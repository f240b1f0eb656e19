package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/gnos-os/gnos/internal/errors"
	"github.com/gnos-os/gnos/internal/vfs/domain"
	vfsService "github.com/gnos-os/gnos/internal/vfs/service"
)

// auditLogUseCase implements AuditLogUseCase. The sequence counter lives here
// rather than in the repository so sequence numbers stay process-global and
// strictly increasing regardless of which store backs the records.
type auditLogUseCase struct {
	auditRepo AuditLogRepository
	signer    vfsService.AuditSigner
	sequence  atomic.Uint64
}

// Begin atomically reserves the next audit sequence number.
func (a *auditLogUseCase) Begin() uint64 {
	return a.sequence.Add(1)
}

// Record fills in the record's identity fields when unset, signs it, and
// persists it. Records are immutable once written.
func (a *auditLogUseCase) Record(ctx context.Context, record *domain.AuditRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.Must(uuid.NewV7())
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	signature, err := a.signer.Sign(record)
	if err != nil {
		return apperrors.Wrap(err, "failed to sign audit record")
	}
	record.Signature = signature

	if err := a.auditRepo.Create(ctx, record); err != nil {
		return apperrors.Wrap(err, "failed to create audit record")
	}
	return nil
}

// List retrieves audit records ordered by sequence descending (newest first)
// with pagination. Returns an empty slice when no records match.
func (a *auditLogUseCase) List(ctx context.Context, offset, limit int) ([]*domain.AuditRecord, error) {
	records, err := a.auditRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit records")
	}
	return records, nil
}

// Verify checks a stored record's signature against its content.
func (a *auditLogUseCase) Verify(record *domain.AuditRecord) error {
	return a.signer.Verify(record)
}

// NewAuditLogUseCase creates an AuditLogUseCase starting at sequence 1.
func NewAuditLogUseCase(auditRepo AuditLogRepository, signer vfsService.AuditSigner) AuditLogUseCase {
	return &auditLogUseCase{
		auditRepo: auditRepo,
		signer:    signer,
	}
}
