package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gnos-os/gnos/internal/errors"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestHandleErrorGin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"NotFound", apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
		{"Conflict", apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{"InvalidInput", apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input"},
		{"Unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"Forbidden", apperrors.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"NotSupported", apperrors.ErrNotSupported, http.StatusNotImplemented, "not_supported"},
		{"Unavailable", apperrors.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{"Timeout", apperrors.ErrTimeout, http.StatusGatewayTimeout, "timeout"},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()

			HandleErrorGin(c, tt.err, logger)

			assert.Equal(t, tt.wantStatus, w.Code)
			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.wantError, response.Error)
		})
	}

	t.Run("WrappedErrorsMapBySentinel", func(t *testing.T) {
		c, w := newTestContext()

		HandleErrorGin(c, apperrors.Wrap(apperrors.ErrTimeout, "driver call"), logger)

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	})

	t.Run("InternalDetailsStayServerSide", func(t *testing.T) {
		c, w := newTestContext()

		HandleErrorGin(c, errors.New("pq: connection refused"), logger)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})

	t.Run("NilErrorWritesNothing", func(t *testing.T) {
		c, w := newTestContext()

		HandleErrorGin(c, nil, logger)

		assert.Empty(t, w.Body.String())
	})
}

func TestHandleBadRequestGin(t *testing.T) {
	c, w := newTestContext()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	HandleBadRequestGin(c, errors.New("invalid offset parameter"), logger)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bad_request")
	assert.Contains(t, w.Body.String(), "invalid offset parameter")
}

func TestHandleValidationErrorGin(t *testing.T) {
	c, w := newTestContext()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	HandleValidationErrorGin(c, errors.New("path_scope: must not be blank"), logger)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
}
