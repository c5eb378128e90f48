package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/DRafi2006/FOUND/handlers"
	"github.com/DRafi2006/FOUND/services"
	"github.com/DRafi2006/FOUND/utils"
)

func newPresenceRouter(t *testing.T) (*gin.Engine, *services.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := utils.NewLogger()
	registry := services.NewRegistry()
	presence := services.NewPresenceBroadcaster(registry, nil, 0, logger)
	h := handlers.NewPresenceHandler(registry, presence, logger)

	router := gin.New()
	router.GET("/presence/online", h.GetOnlineUsers)
	router.GET("/presence/status/:userId", h.GetStatus)
	return router, registry
}

func TestPresenceHandler_GetOnlineUsers(t *testing.T) {
	router, registry := newPresenceRouter(t)

	c := services.NewConnection(nil, 1)
	registry.Add(c)
	registry.Register("u1", c.ID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/presence/online", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp handlers.OnlineUsersResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Users) != 1 || resp.Users[0] != "u1" {
		t.Errorf("response = %+v, want exactly u1 online", resp)
	}
}

func TestPresenceHandler_GetStatus(t *testing.T) {
	router, registry := newPresenceRouter(t)

	c := services.NewConnection(nil, 1)
	registry.Add(c)
	registry.Register("u1", c.ID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/presence/status/u1", nil))

	var resp handlers.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.IsOnline || resp.Status != "online" {
		t.Errorf("response = %+v, want u1 online", resp)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/presence/status/stranger", nil))

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.IsOnline || resp.Status != "offline" {
		t.Errorf("response = %+v, want stranger offline", resp)
	}
}
