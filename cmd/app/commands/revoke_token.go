package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RunRevokeToken revokes a token on a running server through its admin API.
// The revocation set lives in the server process, so revocation must go
// through the server rather than a fresh local engine.
func RunRevokeToken(
	ctx context.Context,
	writer io.Writer,
	serverURL string,
	adminKey string,
	tokenIDStr string,
) error {
	tokenID, err := uuid.Parse(tokenIDStr)
	if err != nil {
		return fmt.Errorf("invalid token ID format: must be a valid UUID")
	}
	if serverURL == "" {
		return fmt.Errorf("server-url is required")
	}
	if adminKey == "" {
		return fmt.Errorf("admin-key is required")
	}

	url := fmt.Sprintf("%s/v1/tokens/%s", serverURL, tokenID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Admin-Key", adminKey)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("server rejected revocation: %s", resp.Status)
	}

	_, _ = fmt.Fprintf(writer, "Token %s revoked\n", tokenID)
	return nil
}
