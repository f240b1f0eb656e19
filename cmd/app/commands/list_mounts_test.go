package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunListMounts(t *testing.T) {
	t.Run("success-text", func(t *testing.T) {
		setTestEnv(t)

		var out bytes.Buffer
		err := RunListMounts(IOTuple{Writer: &out}, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Mount Table")
		require.Contains(t, out.String(), "/proc")
		require.Contains(t, out.String(), "/cloud")
		require.Contains(t, out.String(), "/dev")
	})

	t.Run("success-json", func(t *testing.T) {
		setTestEnv(t)

		var out bytes.Buffer
		err := RunListMounts(IOTuple{Writer: &out}, "json")
		require.NoError(t, err)

		var result struct {
			Mounts []struct {
				Prefix     string `json:"prefix"`
				DriverName string `json:"driver_name"`
			} `json:"mounts"`
		}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.NotEmpty(t, result.Mounts)
	})

	t.Run("drivers-disabled", func(t *testing.T) {
		setTestEnv(t)
		t.Setenv("DRIVER_MODEL_ENABLED", "false")
		t.Setenv("DRIVER_BLOB_ENABLED", "false")
		t.Setenv("DRIVER_SENSOR_ENABLED", "false")

		var out bytes.Buffer
		err := RunListMounts(IOTuple{Writer: &out}, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "No drivers mounted")
	})
}
