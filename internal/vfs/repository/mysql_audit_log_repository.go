package repository

import (
	"context"
	"database/sql"

	apperrors "github.com/gnos-os/gnos/internal/errors"
	"github.com/gnos-os/gnos/internal/vfs/domain"
)

// MySQLAuditLogRepository implements audit record persistence for MySQL
// databases. Records are append-only; there is no update path.
type MySQLAuditLogRepository struct {
	db *sql.DB
}

// Create inserts one audit record.
func (m *MySQLAuditLogRepository) Create(ctx context.Context, record *domain.AuditRecord) error {
	query := `INSERT INTO audit_records (sequence, id, timestamp, path, operation, token_id, outcome, reason, latency_ns, signature)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := m.db.ExecContext(
		ctx,
		query,
		record.Sequence,
		record.ID,
		record.Timestamp,
		record.Path,
		record.Operation,
		record.TokenID,
		record.Outcome,
		record.Reason,
		record.Latency.Nanoseconds(),
		record.Signature,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit record")
	}
	return nil
}

// List retrieves audit records ordered by sequence descending with pagination.
func (m *MySQLAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*domain.AuditRecord, error) {
	query := `SELECT sequence, id, timestamp, path, operation, token_id, outcome, reason, latency_ns, signature
			  FROM audit_records
			  ORDER BY sequence DESC
			  LIMIT ? OFFSET ?`

	rows, err := m.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit records")
	}
	defer func() { _ = rows.Close() }()

	return scanAuditRecords(rows)
}

// NewMySQLAuditLogRepository creates a new MySQL audit record repository
// instance.
func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}
