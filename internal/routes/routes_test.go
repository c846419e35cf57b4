package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/logpulse/backend/internal/storage"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupRoutes(r, nil, storage.NewMemoryStore())
	return r
}

func TestSetupRoutesRegistersEndpoints(t *testing.T) {
	r := setupTestRouter()

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/refresh",
		"POST /api/v1/auth/change-password",
		"GET /api/v1/users/me",
		"GET /api/v1/preferences",
		"PUT /api/v1/preferences",
		"POST /api/v1/projects/:id/logs",
		"GET /api/v1/projects/:id/risk",
		"POST /api/v1/projects/:id/risk/rescore",
		"GET /api/v1/projects/:id/risk/trend",
		"GET /api/v1/projects/:id/forecast",
		"POST /api/v1/projects/:id/feedback",
		"GET /api/v1/projects/:id/patterns",
		"GET /metrics",
	}
	for _, want := range expected {
		if !registered[want] {
			t.Errorf("Expected route %q to be registered", want)
		}
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	r := setupTestRouter()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/auth/change-password"},
		{http.MethodGet, "/api/v1/preferences"},
		{http.MethodGet, "/api/v1/projects/1/forecast"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without a token, got %d", p.method, p.path, w.Code)
		}
	}
}
