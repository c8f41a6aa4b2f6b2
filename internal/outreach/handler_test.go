package outreach

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T, f *fixture) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	api := router.Group("/api/v1")
	NewHandler(f.svc).RegisterRoutes(api)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHandlerDraftAndDispatchFlow(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(t, f)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/jobs/job-1/outreach", map[string]string{
		"recipientEmail": "hr@acme.test",
		"subject":        "Application",
		"body":           "Hello",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		ID    string `json:"id"`
		State string `json:"state"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.State != "draft" {
		t.Fatalf("expected draft state, got %q", created.State)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/outreach/"+created.ID+"/dispatch", nil)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", resp.Code, resp.Body.String())
	}

	var dispatched struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &dispatched); err != nil {
		t.Fatalf("decode dispatch response: %v", err)
	}
	if dispatched.State != "sending" {
		t.Fatalf("expected sending state, got %q", dispatched.State)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/v1/outreach/"+created.ID+"/history", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var history struct {
		State   string `json:"state"`
		History []struct {
			Kind string `json:"kind"`
		} `json:"history"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode history response: %v", err)
	}
	if len(history.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history.History))
	}
	if history.History[0].Kind != "created" || history.History[1].Kind != "dispatched" {
		t.Fatalf("unexpected history kinds: %+v", history.History)
	}
}

func TestHandlerDispatchValidation(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(t, f)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/jobs/job-1/outreach", map[string]string{
		"body": "Hello",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/outreach/"+created.ID+"/dispatch", nil)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestHandlerDuplicateInFlightConflict(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(t, f)

	first := f.draft(t, "user-1")
	resp := doJSON(t, router, http.MethodPost, "/api/v1/outreach/"+first.ID+"/dispatch", nil)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", resp.Code)
	}

	second := f.draft(t, "user-1")
	resp = doJSON(t, router, http.MethodPost, "/api/v1/outreach/"+second.ID+"/dispatch", nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestHandlerProviderEventConflict(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(t, f)

	msg := f.draft(t, "user-1")
	resp := doJSON(t, router, http.MethodPost, "/api/v1/outreach/"+msg.ID+"/events", map[string]string{
		"kind": "opened",
	})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for draft message, got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/outreach/"+msg.ID+"/events", map[string]string{
		"kind": "imaginary",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown kind, got %d", resp.Code)
	}
}

func TestHandlerDiscard(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(t, f)

	msg := f.draft(t, "user-1")
	resp := doJSON(t, router, http.MethodDelete, "/api/v1/outreach/"+msg.ID, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/v1/outreach/"+msg.ID, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after discard, got %d", resp.Code)
	}
}
