package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gnos-os/gnos/internal/vfs/domain"
	"github.com/gnos-os/gnos/internal/vfs/http/dto"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Register(prefix string, driver domain.Driver) error {
	args := m.Called(prefix, driver)
	return args.Error(0)
}

func (m *mockResolver) Unregister(prefix string) error {
	args := m.Called(prefix)
	return args.Error(0)
}

func (m *mockResolver) Resolve(path string) (domain.Driver, string, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(domain.Driver), args.String(1), args.Error(2)
}

func (m *mockResolver) List() []domain.MountInfo {
	args := m.Called()
	return args.Get(0).([]domain.MountInfo)
}

func setupMountTestHandler(t *testing.T) (*MountHandler, *mockResolver) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	resolver := new(mockResolver)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMountHandler(resolver, logger), resolver
}

func TestMountHandler_ListHandler(t *testing.T) {
	t.Run("Success_ListMounts", func(t *testing.T) {
		handler, resolver := setupMountTestHandler(t)

		resolver.On("List").Return([]domain.MountInfo{
			{Prefix: "/dev/sensors", DriverName: "sensor"},
			{Prefix: "/proc", DriverName: "model"},
		})

		c, w := createTestContext(http.MethodGet, "/v1/mounts", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response struct {
			Mounts []dto.MountResponse `json:"mounts"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Mounts, 2)
		assert.Equal(t, "/dev/sensors", response.Mounts[0].Prefix)
		assert.Equal(t, "sensor", response.Mounts[0].DriverName)
		assert.Equal(t, "model", response.Mounts[1].DriverName)
		resolver.AssertExpectations(t)
	})

	t.Run("Success_EmptyMountTable", func(t *testing.T) {
		handler, resolver := setupMountTestHandler(t)

		resolver.On("List").Return([]domain.MountInfo{})

		c, w := createTestContext(http.MethodGet, "/v1/mounts", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"mounts":[]}`, w.Body.String())
		resolver.AssertExpectations(t)
	})
}
