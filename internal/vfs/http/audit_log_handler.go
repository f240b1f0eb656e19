package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gnos-os/gnos/internal/httputil"
	"github.com/gnos-os/gnos/internal/vfs/http/dto"
	vfsUseCase "github.com/gnos-os/gnos/internal/vfs/usecase"
)

// AuditLogHandler handles HTTP requests for audit record access.
type AuditLogHandler struct {
	auditLogUseCase vfsUseCase.AuditLogUseCase
	logger          *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler with required dependencies.
func NewAuditLogHandler(
	auditLogUseCase vfsUseCase.AuditLogUseCase,
	logger *slog.Logger,
) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUseCase: auditLogUseCase,
		logger:          logger,
	}
}

// ListHandler lists audit records, newest first.
// GET /v1/audit-logs?offset=0&limit=50 - Requires the admin key.
// Returns 200 OK with the paginated records.
func (h *AuditLogHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	records, err := h.auditLogUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	responses := make([]dto.AuditRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, dto.NewAuditRecordResponse(record))
	}

	c.JSON(http.StatusOK, dto.AuditRecordListResponse{
		Records: responses,
		Offset:  offset,
		Limit:   limit,
	})
}
