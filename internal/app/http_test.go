package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"launchpad/api/internal/engine"
	"launchpad/api/internal/store"
)

func doRequest(t *testing.T, handler http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	payload := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("invalid JSON response for %s %s: %v", method, path, err)
		}
	}
	return rec, payload
}

func TestHealthEndpoint(t *testing.T) {
	handler := NewHTTPServer(newTestService(&fakeStore{}), "*").Handler()

	rec, payload := doRequest(t, handler, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if payload["ok"] != true {
		t.Errorf("payload = %v", payload)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Errorf("missing request id header")
	}
}

func TestCreateFragmentEndpoint(t *testing.T) {
	fake := &fakeStore{}
	handler := NewHTTPServer(newTestService(fake), "*").Handler()

	rec, payload := doRequest(t, handler, http.MethodPost, "/api/v1/fragments",
		`{"title":"Bedside tablets","roughThought":"Patients want entertainment","submitterName":"Dana"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %v", rec.Code, payload)
	}
	if payload["status"] != engine.StatusIncubating {
		t.Errorf("status = %v", payload["status"])
	}
	id, _ := payload["id"].(string)
	if !strings.HasPrefix(id, "frag_") {
		t.Errorf("id = %q", id)
	}
}

func TestCreateFragmentEndpointValidation(t *testing.T) {
	handler := NewHTTPServer(newTestService(&fakeStore{}), "*").Handler()

	rec, payload := doRequest(t, handler, http.MethodPost, "/api/v1/fragments", `{"title":"","roughThought":"x"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if payload["code"] != "VALIDATION_ERROR" {
		t.Errorf("code = %v", payload["code"])
	}
}

func TestPromoteEndpointMapsDomainErrors(t *testing.T) {
	fake := &fakeStore{
		getFragment: func(ctx context.Context, fragmentID string) (store.Fragment, error) {
			return store.Fragment{ID: fragmentID, Status: engine.StatusIncubating, MaturityScore: 10}, nil
		},
	}
	handler := NewHTTPServer(newTestService(fake), "*").Handler()

	rec, payload := doRequest(t, handler, http.MethodPost, "/api/v1/fragments/frag_1/promote", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	if payload["code"] != "INSUFFICIENT_MATURITY" {
		t.Errorf("code = %v", payload["code"])
	}
	details, _ := payload["details"].(map[string]any)
	if details["requiredScore"] != float64(40) {
		t.Errorf("details = %v", details)
	}
}

func TestUpvoteEndpoint(t *testing.T) {
	fake := &fakeStore{
		getFragment: func(ctx context.Context, fragmentID string) (store.Fragment, error) {
			return store.Fragment{ID: fragmentID, Status: engine.StatusIncubating, MaturityScore: 38}, nil
		},
	}
	handler := NewHTTPServer(newTestService(fake), "*").Handler()

	rec, payload := doRequest(t, handler, http.MethodPost, "/api/v1/fragments/frag_1/upvote", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rec.Code, payload)
	}
	if payload["maturityScore"] != float64(40) {
		t.Errorf("maturityScore = %v, want 40", payload["maturityScore"])
	}
	if payload["status"] != engine.StatusMaturing {
		t.Errorf("status = %v, want maturing at 40", payload["status"])
	}
}

func TestRubricDimensionsEndpoint(t *testing.T) {
	handler := NewHTTPServer(newTestService(&fakeStore{}), "*").Handler()

	rec, payload := doRequest(t, handler, http.MethodGet, "/api/v1/rubric/dimensions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	dims, _ := payload["dimensions"].([]any)
	if len(dims) != 6 {
		t.Errorf("expected 6 dimensions, got %d", len(dims))
	}
	quadrants, _ := payload["quadrants"].([]any)
	if len(quadrants) != 4 {
		t.Errorf("expected 4 quadrants, got %d", len(quadrants))
	}
}

func TestRubricSaveEndpoint(t *testing.T) {
	fake := &fakeStore{
		getIdea: func(ctx context.Context, ideaID string) (store.Idea, error) {
			return store.Idea{ID: ideaID}, nil
		},
	}
	handler := NewHTTPServer(newTestService(fake), "*").Handler()

	body := `{"scores":{"emotionalNeeds":9,"revenueImpact":9,"drasticChange":9,"pilotComplexity":9,"peopleBuild":9,"technologyCapex":9}}`
	rec, payload := doRequest(t, handler, http.MethodPost, "/api/v1/rubric/idea_1/save", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rec.Code, payload)
	}
	calculated, _ := payload["calculated"].(map[string]any)
	if calculated["quadrant"] != engine.QuadrantBigBets {
		t.Errorf("quadrant = %v, want Big Bets", calculated["quadrant"])
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	handler := NewHTTPServer(newTestService(&fakeStore{}), "*").Handler()

	rec, payload := doRequest(t, handler, http.MethodGet, "/api/v1/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if payload["code"] != "NOT_FOUND" {
		t.Errorf("code = %v", payload["code"])
	}
}

func TestInvalidLimitRejected(t *testing.T) {
	handler := NewHTTPServer(newTestService(&fakeStore{}), "*").Handler()

	rec, payload := doRequest(t, handler, http.MethodGet, "/api/v1/fragments?limit=abc", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if payload["code"] != "VALIDATION_ERROR" {
		t.Errorf("code = %v", payload["code"])
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := NewHTTPServer(newTestService(&fakeStore{}), "https://launchpad.example").Handler()

	rec, _ := doRequest(t, handler, http.MethodOptions, "/api/v1/fragments", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://launchpad.example" {
		t.Errorf("origin = %q", got)
	}
}
