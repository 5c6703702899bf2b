package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/rajatc17/india-ecom/internal/service"
)

func errStatus(t *testing.T, err error) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, err)
	return w.Code
}

func TestRespondErrorMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, errStatus(t, service.ErrNotFound))
	assert.Equal(t, http.StatusUnauthorized, errStatus(t, service.ErrInvalidCredentials))
	assert.Equal(t, http.StatusConflict, errStatus(t, service.ErrEmailTaken))
	// Business-rule failures are 400s, not conflicts.
	assert.Equal(t, http.StatusBadRequest, errStatus(t, &service.InsufficientStockError{ProductName: "Vase", Available: 1, Requested: 3}))
	assert.Equal(t, http.StatusBadRequest, errStatus(t, &service.InvalidTransitionError{Field: "status", From: "shipped", To: "created"}))
	assert.Equal(t, http.StatusBadRequest, errStatus(t, service.Validationf("bad input")))
	assert.Equal(t, http.StatusBadRequest, errStatus(t, service.ErrEmptyCart))
	assert.Equal(t, http.StatusInternalServerError, errStatus(t, errors.New("connection refused")))
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Empty(t, bearerToken(c))

	c.Request.Header.Set("Authorization", "Bearer abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", bearerToken(c))

	c.Request.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Empty(t, bearerToken(c))
}

func TestQueryInt(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=3&limit=abc", nil)

	assert.Equal(t, 3, queryInt(c, "page", 1))
	assert.Equal(t, 20, queryInt(c, "limit", 20))
	assert.Equal(t, 1, queryInt(c, "missing", 1))
}
