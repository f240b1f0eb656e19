package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gnos-os/gnos/internal/app"
	"github.com/gnos-os/gnos/internal/config"
	"github.com/gnos-os/gnos/internal/vfs/domain"
)

// RunListAuditLogs prints audit records from the configured store, newest
// first. Only useful with a SQL audit backend; the in-memory store belongs
// to the server process.
func RunListAuditLogs(ctx context.Context, io IOTuple, offset, limit int, format string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	if limit <= 0 {
		limit = 50
	}

	auditLogUseCase, err := container.AuditLogUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize audit log use case: %w", err)
	}

	records, err := auditLogUseCase.List(ctx, offset, limit)
	if err != nil {
		return fmt.Errorf("failed to list audit records: %w", err)
	}

	if format == "json" {
		return outputJSON(io.Writer, map[string]any{
			"records": records,
			"offset":  offset,
			"limit":   limit,
		})
	}

	outputAuditLogsText(io.Writer, records)
	return nil
}

func outputAuditLogsText(writer io.Writer, records []*domain.AuditRecord) {
	_, _ = fmt.Fprintf(writer, "Audit Records\n")
	_, _ = fmt.Fprintf(writer, "=============\n\n")

	if len(records) == 0 {
		_, _ = fmt.Fprintf(writer, "No records found\n")
		return
	}

	for _, record := range records {
		tokenID := "-"
		if record.TokenID != nil {
			tokenID = record.TokenID.String()
		}
		_, _ = fmt.Fprintf(writer, "#%d %s %-8s %-12s %-30s token=%s %s\n",
			record.Sequence,
			record.Timestamp.Format(time.RFC3339),
			record.Operation,
			record.Outcome,
			record.Path,
			tokenID,
			record.Reason,
		)
	}
}
