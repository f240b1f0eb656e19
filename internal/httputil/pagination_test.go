package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paginationContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	t.Run("Success_Defaults", func(t *testing.T) {
		offset, limit, err := ParsePagination(paginationContext(""))

		require.NoError(t, err)
		assert.Equal(t, 0, offset)
		assert.Equal(t, 50, limit)
	})

	t.Run("Success_ExplicitValues", func(t *testing.T) {
		offset, limit, err := ParsePagination(paginationContext("offset=20&limit=100"))

		require.NoError(t, err)
		assert.Equal(t, 20, offset)
		assert.Equal(t, 100, limit)
	})

	t.Run("Error_NegativeOffset", func(t *testing.T) {
		_, _, err := ParsePagination(paginationContext("offset=-1"))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid offset parameter")
	})

	t.Run("Error_NonNumericOffset", func(t *testing.T) {
		_, _, err := ParsePagination(paginationContext("offset=abc"))

		assert.Error(t, err)
	})

	t.Run("Error_ZeroLimit", func(t *testing.T) {
		_, _, err := ParsePagination(paginationContext("limit=0"))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid limit parameter")
	})

	t.Run("Error_LimitAboveMaximum", func(t *testing.T) {
		_, _, err := ParsePagination(paginationContext("limit=101"))

		assert.Error(t, err)
	})
}
