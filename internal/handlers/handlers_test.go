package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"ulemsee/internal/models"
	"ulemsee/internal/services"
)

// ─── Stubs ───

type stubAnswerer struct {
	resp     *models.QuestionResponse
	err      error
	question string
}

func (s *stubAnswerer) Answer(ctx context.Context, question string) (*models.QuestionResponse, error) {
	s.question = question
	return s.resp, s.err
}

type stubHistory struct {
	items     []*models.HistoryEntry
	lastLimit int
	deleteErr error
	deletedID string
	cleared   int
}

func (s *stubHistory) List(ctx context.Context, limit int) ([]*models.HistoryEntry, error) {
	s.lastLimit = limit
	return s.items, nil
}

func (s *stubHistory) Delete(ctx context.Context, id string) error {
	s.deletedID = id
	return s.deleteErr
}

func (s *stubHistory) Clear(ctx context.Context) (int, error) {
	return s.cleared, nil
}

type fixedCounter int64

func (c fixedCounter) Count() int64 { return int64(c) }

type fixedAvailability bool

func (a fixedAvailability) Available() bool { return bool(a) }

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.APIError {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp.Error
}

// ─── Question Handler Tests ───

func TestQuestionHandler_Success(t *testing.T) {
	answers := &stubAnswerer{resp: &models.QuestionResponse{Response: "Paris.", ModelUsed: "llama3-70b-8192", ResponseTime: 0.42}}
	h := NewQuestionHandler(answers)

	body, _ := json.Marshal(models.QuestionRequest{Question: "What is the capital of France?"})
	req := httptest.NewRequest(http.MethodPost, "/api/question", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	h.Ask(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if answers.question != "What is the capital of France?" {
		t.Errorf("Unexpected question passed through: %q", answers.question)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["response"] != "Paris." || result["model_used"] != "llama3-70b-8192" {
		t.Errorf("Unexpected response body: %v", result)
	}
	if _, ok := result["response_time"]; !ok {
		t.Errorf("Expected response_time in body: %v", result)
	}
}

func TestQuestionHandler_InvalidBody(t *testing.T) {
	h := NewQuestionHandler(&stubAnswerer{})

	req := httptest.NewRequest(http.MethodPost, "/api/question", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()

	h.Ask(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR, got %q", e.Code)
	}
}

func TestQuestionHandler_OversizedBodyRejectedUnread(t *testing.T) {
	answers := &stubAnswerer{resp: &models.QuestionResponse{Response: "unused"}}
	h := NewQuestionHandler(answers)

	body := `{"question":"` + strings.Repeat("a", 4<<20) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/question", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h.Ask(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Expected status 413, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != "REQUEST_TOO_LARGE" {
		t.Errorf("Expected REQUEST_TOO_LARGE, got %q", e.Code)
	}
	if answers.question != "" {
		t.Errorf("Answerer should not be called for an oversized body")
	}
}

func TestQuestionHandler_EmptyQuestionRejected(t *testing.T) {
	svc := services.NewAnswerService(nil, nil, "primary", "fallback", nil, nil)
	h := NewQuestionHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/question", strings.NewReader(`{"question":"   "}`))
	rr := httptest.NewRecorder()

	h.Ask(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}
	e := decodeError(t, rr)
	if e.Code != "VALIDATION_ERROR" || e.Fields["question"] == "" {
		t.Errorf("Expected field-level validation error, got %+v", e)
	}
}

func TestHandleServiceError_Mapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"question": "required"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", &services.NotFoundError{Message: "History item not found"}, http.StatusNotFound, "NOT_FOUND"},
		{"auth 401", &services.UpstreamAuthError{Status: 401, Message: "bad key"}, http.StatusUnauthorized, "UPSTREAM_AUTH_ERROR"},
		{"auth 403", &services.UpstreamAuthError{Status: 403, Message: "forbidden"}, http.StatusForbidden, "UPSTREAM_AUTH_ERROR"},
		{"rate limited", &services.RateLimitError{Message: "slow down"}, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"timeout", &services.UpstreamTimeoutError{Message: "slow"}, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"},
		{"network", &services.NetworkError{Message: "unreachable"}, http.StatusServiceUnavailable, "NETWORK_ERROR"},
		{"upstream", &services.UpstreamError{Status: 400, Message: "bad model"}, http.StatusBadRequest, "UPSTREAM_ERROR"},
		{"upstream odd status", &services.UpstreamError{Status: 302, Message: "moved"}, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"internal", &services.InternalError{Message: "not configured"}, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/question", nil)
			req.Header.Set("X-Request-ID", "req-1")
			rr := httptest.NewRecorder()

			handleServiceError(rr, req, tc.err)

			if rr.Code != tc.status {
				t.Fatalf("Expected status %d, got %d", tc.status, rr.Code)
			}
			e := decodeError(t, rr)
			if e.Code != tc.code {
				t.Errorf("Expected code %q, got %q", tc.code, e.Code)
			}
			if e.RequestID != "req-1" {
				t.Errorf("Expected request id to be echoed, got %q", e.RequestID)
			}
		})
	}
}

func TestHandleServiceError_UnknownDoesNotLeakDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rr := httptest.NewRecorder()

	handleServiceError(rr, req, errors.New("pq: secret connection string"))

	if e := decodeError(t, rr); strings.Contains(e.Message, "secret") {
		t.Fatalf("internal error details leaked: %q", e.Message)
	}
}

// ─── History Handler Tests ───

func newTestInfo() *ServerInfo {
	return NewServerInfo(time.Now().Add(-time.Minute), fixedCounter(7))
}

func TestHistoryHandler_ListLimit(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected int
	}{
		{"default", "", 50},
		{"explicit", "?limit=5", 5},
		{"non-numeric", "?limit=abc", 50},
		{"negative", "?limit=-1", 50},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			history := &stubHistory{}
			h := NewHistoryHandler(history, newTestInfo())

			rr := httptest.NewRecorder()
			h.List(rr, httptest.NewRequest(http.MethodGet, "/api/history"+tc.query, nil))

			if rr.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", rr.Code)
			}
			if history.lastLimit != tc.expected {
				t.Errorf("Expected limit %d, got %d", tc.expected, history.lastLimit)
			}
			if strings.TrimSpace(rr.Body.String()) != "[]" {
				t.Errorf("Expected empty JSON array, got %q", rr.Body.String())
			}
		})
	}
}

func TestHistoryHandler_DeleteMissing(t *testing.T) {
	history := &stubHistory{deleteErr: &services.NotFoundError{Message: "History item not found"}}
	h := NewHistoryHandler(history, newTestInfo())

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "missing-id")

	req := httptest.NewRequest(http.MethodDelete, "/api/history/missing-id", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rr := httptest.NewRecorder()
	h.Delete(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rr.Code)
	}
	if history.deletedID != "missing-id" {
		t.Errorf("Expected delete for missing-id, got %q", history.deletedID)
	}
}

func TestHistoryHandler_DeleteExisting(t *testing.T) {
	history := &stubHistory{}
	h := NewHistoryHandler(history, newTestInfo())

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "entry-1")

	req := httptest.NewRequest(http.MethodDelete, "/api/history/entry-1", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rr := httptest.NewRecorder()
	h.Delete(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var payload models.StatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if payload.Status != "History item deleted successfully" || payload.RequestCount != 7 {
		t.Errorf("Unexpected status payload: %+v", payload)
	}
}

func TestHistoryHandler_ClearReportsCount(t *testing.T) {
	h := NewHistoryHandler(&stubHistory{cleared: 12}, newTestInfo())

	rr := httptest.NewRecorder()
	h.Clear(rr, httptest.NewRequest(http.MethodDelete, "/api/history", nil))

	var payload models.StatusResponse
	json.NewDecoder(rr.Body).Decode(&payload)
	if !strings.Contains(payload.Status, "(12 items removed)") {
		t.Errorf("Expected removed count in status, got %q", payload.Status)
	}
}

// ─── Status Handler Tests ───

func TestStatusHandler_Health(t *testing.T) {
	tests := []struct {
		name      string
		available bool
		expected  string
	}{
		{"healthy", true, "healthy"},
		{"degraded", false, "degraded"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewStatusHandler(newTestInfo(), fixedAvailability(tc.available))

			rr := httptest.NewRecorder()
			h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			var payload models.HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if payload.Status != tc.expected || payload.GroqAvailable != tc.available {
				t.Errorf("Unexpected health payload: %+v", payload)
			}
			if payload.UptimeSeconds < 59 {
				t.Errorf("Expected roughly a minute of uptime, got %f", payload.UptimeSeconds)
			}
		})
	}
}

func TestStatusHandler_Root(t *testing.T) {
	h := NewStatusHandler(newTestInfo(), fixedAvailability(true))

	rr := httptest.NewRecorder()
	h.Root(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", rr.Header().Get("Content-Type"))
	}

	var payload models.StatusResponse
	json.NewDecoder(rr.Body).Decode(&payload)
	if payload.RequestCount != 7 {
		t.Errorf("Expected request_count 7, got %d", payload.RequestCount)
	}
}
