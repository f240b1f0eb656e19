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

// RunIssueToken issues a capability token and prints it. The command signs
// with the same configured secret as the server, so tokens minted here are
// accepted by any server instance sharing that secret.
func RunIssueToken(
	ctx context.Context,
	io IOTuple,
	pathScope string,
	permissionsStr string,
	ttlSeconds int64,
	format string,
) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	var perms []domain.Permission
	if permissionsStr != "" {
		parsed, err := domain.ParsePermissions(permissionsStr)
		if err != nil {
			return fmt.Errorf("invalid permissions: %w", err)
		}
		perms = parsed
	}

	if ttlSeconds <= 0 {
		return fmt.Errorf("ttl-seconds must be positive")
	}

	capabilityUseCase, err := container.CapabilityUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize capability engine: %w", err)
	}

	output, err := capabilityUseCase.Issue(ctx, &domain.IssueTokenInput{
		PathScope:   pathScope,
		Permissions: perms,
		TTL:         time.Duration(ttlSeconds) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	if format == "json" {
		return outputJSON(io.Writer, map[string]any{
			"id":          output.Token.ID.String(),
			"token":       output.Encoded,
			"path_scope":  output.Token.PathScope,
			"permissions": output.Token.Permissions,
			"issued_at":   output.Token.IssuedAt,
			"expires_at":  output.Token.ExpiresAt,
		})
	}

	outputIssueTokenText(io.Writer, output)
	return nil
}

func outputIssueTokenText(writer io.Writer, output *domain.IssueTokenOutput) {
	_, _ = fmt.Fprintf(writer, "Capability Token Issued\n")
	_, _ = fmt.Fprintf(writer, "=======================\n\n")
	_, _ = fmt.Fprintf(writer, "ID:          %s\n", output.Token.ID)
	_, _ = fmt.Fprintf(writer, "Path Scope:  %s\n", output.Token.PathScope)
	_, _ = fmt.Fprintf(writer, "Permissions: %v\n", output.Token.Permissions)
	_, _ = fmt.Fprintf(writer, "Issued At:   %s\n", output.Token.IssuedAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(writer, "Expires At:  %s\n\n", output.Token.ExpiresAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(writer, "Token (save it now, it is not stored):\n%s\n", output.Encoded)
}
