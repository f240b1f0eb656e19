package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gnos-os/gnos/internal/httputil"
	customValidation "github.com/gnos-os/gnos/internal/validation"
	"github.com/gnos-os/gnos/internal/vfs/domain"
	"github.com/gnos-os/gnos/internal/vfs/http/dto"
	vfsUseCase "github.com/gnos-os/gnos/internal/vfs/usecase"
)

// TokenHandler handles HTTP requests for capability token operations.
type TokenHandler struct {
	capabilityUseCase vfsUseCase.CapabilityUseCase
	logger            *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(
	capabilityUseCase vfsUseCase.CapabilityUseCase,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		capabilityUseCase: capabilityUseCase,
		logger:            logger,
	}
}

// IssueHandler issues a new capability token.
// POST /v1/tokens - Requires the admin key; rate limited per IP.
// Returns 201 Created with the encoded token and its claims.
func (h *TokenHandler) IssueHandler(c *gin.Context) {
	var req dto.IssueTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	perms := make([]domain.Permission, 0, len(req.Permissions))
	for _, name := range req.Permissions {
		perm, err := domain.ParsePermission(name)
		if err != nil {
			httputil.HandleValidationErrorGin(c, err, h.logger)
			return
		}
		perms = append(perms, perm)
	}

	input := &domain.IssueTokenInput{
		PathScope:   req.PathScope,
		Permissions: perms,
		TTL:         time.Duration(req.TTLSeconds) * time.Second,
	}

	output, err := h.capabilityUseCase.Issue(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.NewIssueTokenResponse(output))
}

// RevokeHandler revokes a capability token by id.
// DELETE /v1/tokens/:id - Requires the admin key.
// Returns 204 No Content; revocation is idempotent.
func (h *TokenHandler) RevokeHandler(c *gin.Context) {
	tokenID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid token ID format: must be a valid UUID"),
			h.logger)
		return
	}

	if err := h.capabilityUseCase.Revoke(c.Request.Context(), tokenID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
