package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches the admin API routes to the router. Every route
// sits behind the admin key middleware; token issuance additionally carries
// the per-IP rate limit.
func RegisterRoutes(
	router *gin.Engine,
	tokenHandler *TokenHandler,
	mountHandler *MountHandler,
	auditLogHandler *AuditLogHandler,
	adminKeyMiddleware gin.HandlerFunc,
	tokenRateLimitMiddleware gin.HandlerFunc,
) {
	v1 := router.Group("/v1", adminKeyMiddleware)

	v1.POST("/tokens", tokenRateLimitMiddleware, tokenHandler.IssueHandler)
	v1.DELETE("/tokens/:id", tokenHandler.RevokeHandler)
	v1.GET("/mounts", mountHandler.ListHandler)
	v1.GET("/audit-logs", auditLogHandler.ListHandler)
}
