package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newAuthRouter(env string, hit *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(env))
	handle := func(c *gin.Context) {
		*hit = true
		c.String(http.StatusOK, UserIDFromContext(c))
	}
	r.GET("/ping", handle)
	r.OPTIONS("/ping", handle)
	return r
}

func TestAuthStoresUserID(t *testing.T) {
	var hit bool
	r := newAuthRouter("prod", &hit)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-User-Id", "user-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "user-1" {
		t.Fatalf("expected user-1 in context, got %q", w.Body.String())
	}
}

func TestAuthRejectsMissingIdentity(t *testing.T) {
	var hit bool
	r := newAuthRouter("prod", &hit)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if hit {
		t.Fatal("handler must not run without an identity")
	}
}

func TestAuthDevFallback(t *testing.T) {
	var hit bool
	r := newAuthRouter("dev", &hit)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "demo" {
		t.Fatalf("expected demo identity, got %q", w.Body.String())
	}
}

func TestAuthPreflightStopsChain(t *testing.T) {
	var hit bool
	r := newAuthRouter("prod", &hit)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/ping", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if hit {
		t.Fatal("preflight must not reach the handlers")
	}
}
