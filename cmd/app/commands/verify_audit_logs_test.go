package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunVerifyAuditLogs(t *testing.T) {
	ctx := context.Background()

	t.Run("success-empty-trail", func(t *testing.T) {
		setTestEnv(t)

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, IOTuple{Writer: &out}, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Audit Trail Integrity Verification")
		require.Contains(t, out.String(), "No records found")
	})

	t.Run("success-json", func(t *testing.T) {
		setTestEnv(t)

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, IOTuple{Writer: &out}, "json")
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, float64(0), result["total_checked"])
		require.Equal(t, true, result["passed"])
	})
}
