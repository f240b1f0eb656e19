package commands

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// setTestEnv configures a self-contained environment: random signing secret,
// in-memory audit backend, quiet logging.
func setTestEnv(t *testing.T) {
	t.Helper()
	os.Clearenv()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	t.Setenv("SECURITY_SECRET_KEY", base64.StdEncoding.EncodeToString(key))
	t.Setenv("AUDIT_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "error")
}

func TestRunIssueToken(t *testing.T) {
	ctx := context.Background()

	t.Run("success-text", func(t *testing.T) {
		setTestEnv(t)

		var out bytes.Buffer
		err := RunIssueToken(ctx, IOTuple{Writer: &out}, "/proc/llama3", "read,write", 3600, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Capability Token Issued")
		require.Contains(t, out.String(), "/proc/llama3")
		require.Contains(t, out.String(), "gnos.")
	})

	t.Run("success-json", func(t *testing.T) {
		setTestEnv(t)

		var out bytes.Buffer
		err := RunIssueToken(ctx, IOTuple{Writer: &out}, "/dev/sensors", "", 60, "json")
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, "/dev/sensors", result["path_scope"])
		require.True(t, strings.HasPrefix(result["token"].(string), "gnos."))
	})

	t.Run("invalid-permissions", func(t *testing.T) {
		setTestEnv(t)

		err := RunIssueToken(ctx, IOTuple{}, "/proc", "admin", 3600, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid permissions")
	})

	t.Run("non-positive-ttl", func(t *testing.T) {
		setTestEnv(t)

		err := RunIssueToken(ctx, IOTuple{}, "/proc", "read", 0, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "ttl-seconds must be positive")
	})

	t.Run("missing-secret", func(t *testing.T) {
		os.Clearenv()
		t.Setenv("LOG_LEVEL", "error")

		err := RunIssueToken(ctx, IOTuple{}, "/proc", "read", 3600, "text")

		require.Error(t, err)
	})
}
