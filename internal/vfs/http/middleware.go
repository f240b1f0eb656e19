// Package http provides the admin API handlers for token issuance, mount
// inspection, and audit record access.
package http

import (
	"log/slog"
	"net/http"

	"github.com/allisson/go-pwdhash"
	"github.com/gin-gonic/gin"
)

// adminKeyHeader carries the admin credential on every admin API request.
const adminKeyHeader = "X-Admin-Key"

// AdminKeyMiddleware authenticates admin API requests by verifying the
// X-Admin-Key header against the configured Argon2id hash. The plain key is
// never stored server-side; only its hash appears in configuration.
func AdminKeyMiddleware(adminKeyHash string, logger *slog.Logger) gin.HandlerFunc {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		// Only reachable with an invalid built-in policy.
		panic(err)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(adminKeyHeader)
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authentication is required",
			})
			c.Abort()
			return
		}

		ok, err := hasher.Verify([]byte(key), adminKeyHash)
		if err != nil || !ok {
			logger.Warn("admin key rejected",
				slog.String("client_ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authentication is required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
