package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/gnos-os/gnos/internal/errors"
	"github.com/gnos-os/gnos/internal/vfs/domain"
)

// PostgreSQLAuditLogRepository implements audit record persistence for
// PostgreSQL databases. Records are append-only; there is no update path.
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// Create inserts one audit record.
func (p *PostgreSQLAuditLogRepository) Create(ctx context.Context, record *domain.AuditRecord) error {
	query := `INSERT INTO audit_records (sequence, id, timestamp, path, operation, token_id, outcome, reason, latency_ns, signature)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := p.db.ExecContext(
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
func (p *PostgreSQLAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*domain.AuditRecord, error) {
	query := `SELECT sequence, id, timestamp, path, operation, token_id, outcome, reason, latency_ns, signature
			  FROM audit_records
			  ORDER BY sequence DESC
			  LIMIT $1 OFFSET $2`

	rows, err := p.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit records")
	}
	defer func() { _ = rows.Close() }()

	return scanAuditRecords(rows)
}

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL audit record
// repository instance.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}

func scanAuditRecords(rows *sql.Rows) ([]*domain.AuditRecord, error) {
	records := []*domain.AuditRecord{}
	for rows.Next() {
		var record domain.AuditRecord
		var tokenID uuid.NullUUID
		var latencyNs int64
		err := rows.Scan(
			&record.Sequence,
			&record.ID,
			&record.Timestamp,
			&record.Path,
			&record.Operation,
			&tokenID,
			&record.Outcome,
			&record.Reason,
			&latencyNs,
			&record.Signature,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit record")
		}
		if tokenID.Valid {
			id := tokenID.UUID
			record.TokenID = &id
		}
		record.Latency = time.Duration(latencyNs)
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit records")
	}
	return records, nil
}
