package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nestling-app/nestling-server/src/database"
)

func TestHandleHealth(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		gin.SetMode(gin.TestMode)
		handler := NewHealthHandler(database.NewDatabaseFromPool(tdb.Pool))

		w, c := createTestContext()
		c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
		handler.HandleHealth(c)

		assertStatusCode(t, w, http.StatusOK)
		if !strings.Contains(w.Body.String(), `"database":"connected"`) {
			t.Errorf("expected connected database, got %s", w.Body.String())
		}
	})
}

func TestHandleReady(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		gin.SetMode(gin.TestMode)
		handler := NewHealthHandler(database.NewDatabaseFromPool(tdb.Pool))

		w, c := createTestContext()
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)
		handler.HandleReady(c)

		assertStatusCode(t, w, http.StatusOK)
	})
}

func TestHandleInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewHealthHandler(nil)

	w, c := createTestContext()
	c.Request = httptest.NewRequest(http.MethodGet, "/info", nil)
	handler.HandleInfo(c)

	assertStatusCode(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "nestling-server") {
		t.Errorf("expected service name, got %s", w.Body.String())
	}
}
