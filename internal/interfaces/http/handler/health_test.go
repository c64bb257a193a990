package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Up(t *testing.T) {
	db := new(MockDatabaseProbe)
	db.On("Driver").Return("sqlite")
	db.On("Ping", mock.Anything).Return(nil)
	db.On("Stats").Return(persistence.ConnectionStats{MaxOpenConnections: 1, OpenConnections: 1, Idle: 1}, nil)

	r := gin.New()
	r.GET("/health", NewHealthHandler(db, "1.2.3").Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "up", data["status"])
	assert.Equal(t, "1.2.3", data["version"])
	assert.Equal(t, "sqlite", data["database"].(map[string]any)["driver"])
	assert.NotNil(t, data["pool"])
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	db := new(MockDatabaseProbe)
	db.On("Driver").Return("postgres")
	db.On("Ping", mock.Anything).Return(errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	r := gin.New()
	r.GET("/health", NewHealthHandler(db, "dev").Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "degraded", data["status"])
	assert.Equal(t, "down", data["database"].(map[string]any)["status"])
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	db.AssertNotCalled(t, "Stats")
}
