package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gnos-os/gnos/internal/vfs/http/dto"
	vfsUseCase "github.com/gnos-os/gnos/internal/vfs/usecase"
)

// MountHandler handles HTTP requests for mount table inspection.
type MountHandler struct {
	resolver vfsUseCase.Resolver
	logger   *slog.Logger
}

// NewMountHandler creates a new mount handler with required dependencies.
func NewMountHandler(resolver vfsUseCase.Resolver, logger *slog.Logger) *MountHandler {
	return &MountHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// ListHandler lists the registered mount prefixes and their drivers.
// GET /v1/mounts - Requires the admin key.
// Returns 200 OK with mounts sorted by prefix.
func (h *MountHandler) ListHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"mounts": dto.NewMountResponses(h.resolver.List()),
	})
}
