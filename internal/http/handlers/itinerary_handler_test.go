// README: Handler tests for the itinerary error mapping.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripgen/internal/ai"
	"tripgen/internal/http/handlers"
	"tripgen/internal/maps"
	"tripgen/internal/modules/itinerary"
	"tripgen/internal/modules/usage"
)

// stubPlanner returns canned results and remembers what it was asked.
type stubPlanner struct {
	it      itinerary.Itinerary
	err     error
	gotReq  itinerary.TripRequest
	gotSess itinerary.Session
	hasDead bool
}

func (s *stubPlanner) Generate(ctx context.Context, req itinerary.TripRequest) (itinerary.Itinerary, error) {
	s.gotReq = req
	_, s.hasDead = ctx.Deadline()
	return s.it, s.err
}

func (s *stubPlanner) Regenerate(_ context.Context, sess itinerary.Session) (itinerary.Session, error) {
	s.gotSess = sess
	if s.err != nil {
		return itinerary.Session{}, s.err
	}
	return itinerary.Session{Itinerary: s.it, FormData: sess.FormData}, nil
}

func buildTestRouter(p handlers.Planner, timeout time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handlers.NewItineraryHandler(p, timeout)
	r.POST("/api/generate-itinerary", h.Generate)
	r.POST("/api/itineraries/regenerate", h.Regenerate)
	r.GET("/api/itineraries/options", h.Options)
	return r
}

func doRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch v := body.(type) {
	case nil:
	case string:
		buf.WriteString(v)
	default:
		_ = json.NewEncoder(&buf).Encode(v)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var tokyoForm = map[string]any{
	"destination": "Tokyo",
	"startDate":   "2025-06-01",
	"endDate":     "2025-06-03",
	"budget":      "medium",
	"pace":        "balanced",
	"interests":   []string{"food"},
}

func TestGenerateReturnsItinerary(t *testing.T) {
	p := &stubPlanner{it: itinerary.Itinerary{Days: []itinerary.Day{{
		Date:       "2025-06-01",
		Activities: []itinerary.Activity{{Time: "09:00", Title: "Tsukiji", Description: "Breakfast"}},
	}}}}
	w := doRequest(buildTestRouter(p, time.Minute), http.MethodPost, "/api/generate-itinerary", tokyoForm)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"days":[{"date":"2025-06-01","activities":[{"time":"09:00","title":"Tsukiji","description":"Breakfast"}]}]}`, w.Body.String())
	assert.Equal(t, "Tokyo", p.gotReq.Destination)
	assert.Equal(t, itinerary.PaceBalanced, p.gotReq.Pace)
	assert.True(t, p.hasDead)
}

func TestGenerateWithoutTimeoutHasNoDeadline(t *testing.T) {
	p := &stubPlanner{}
	w := doRequest(buildTestRouter(p, 0), http.MethodPost, "/api/generate-itinerary", tokyoForm)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, p.hasDead)
}

func TestGenerateRejectsMalformedJSON(t *testing.T) {
	w := doRequest(buildTestRouter(&stubPlanner{}, 0), http.MethodPost, "/api/generate-itinerary", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		want   map[string]any
	}{
		{
			name:   "missing fields",
			err:    itinerary.ErrMissingFields,
			status: http.StatusBadRequest,
			want:   map[string]any{"error": "Missing required fields"},
		},
		{
			name:   "invalid range",
			err:    itinerary.ErrInvalidDateRange,
			status: http.StatusBadRequest,
			want:   map[string]any{"error": "Invalid date range"},
		},
		{
			name:   "upstream status",
			err:    &ai.GatewayError{Status: 500, Body: `{"error":"boom"}`, Err: errors.New("status 500")},
			status: http.StatusServiceUnavailable,
			want:   map[string]any{"error": "AI service unavailable", "status": 500.0, "details": `{"error":"boom"}`},
		},
		{
			name:   "transport failure",
			err:    &ai.GatewayError{Err: errors.New("dial tcp: refused")},
			status: http.StatusServiceUnavailable,
			want:   map[string]any{"error": "AI service unavailable", "details": "dial tcp: refused"},
		},
		{
			name:   "no reply",
			err:    &ai.GatewayError{Status: 200, Body: `{"candidates":[]}`, Err: ai.ErrNoReply},
			status: http.StatusInternalServerError,
			want:   map[string]any{"error": "No response from AI", "details": `{"candidates":[]}`},
		},
		{
			name:   "parse",
			err:    &itinerary.ParseError{Raw: "Sure! Day 1", Err: errors.New("invalid character 'S'")},
			status: http.StatusInternalServerError,
			want:   map[string]any{"error": "Invalid AI response format", "details": "Sure! Day 1", "parseError": "invalid character 'S'"},
		},
		{
			name:   "shape",
			err:    &itinerary.ShapeError{Value: map[string]any{"trip": "x"}, Reason: "days is missing"},
			status: http.StatusInternalServerError,
			want:   map[string]any{"error": "Invalid itinerary structure", "details": map[string]any{"trip": "x"}},
		},
		{
			name:   "other",
			err:    errors.New("kaboom"),
			status: http.StatusInternalServerError,
			want:   map[string]any{"error": "Internal server error", "details": "kaboom"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(buildTestRouter(&stubPlanner{err: tc.err}, 0), http.MethodPost, "/api/generate-itinerary", tokyoForm)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.want, decode(t, w))
		})
	}
}

func TestRegenerateReturnsSession(t *testing.T) {
	p := &stubPlanner{it: itinerary.Itinerary{Days: []itinerary.Day{{Date: "2025-06-01"}}}}
	w := doRequest(buildTestRouter(p, 0), http.MethodPost, "/api/itineraries/regenerate", map[string]any{
		"itinerary": map[string]any{"days": []any{}},
		"formData":  tokyoForm,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var sess itinerary.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.Equal(t, "Tokyo", sess.FormData.Destination)
	require.Len(t, sess.Itinerary.Days, 1)
	assert.Equal(t, "2025-06-03", p.gotSess.FormData.EndDate)
}

func TestRegenerateMapsErrors(t *testing.T) {
	w := doRequest(buildTestRouter(&stubPlanner{err: itinerary.ErrMissingFields}, 0), http.MethodPost, "/api/itineraries/regenerate", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptionsListsFormChoices(t *testing.T) {
	w := doRequest(buildTestRouter(&stubPlanner{}, 0), http.MethodGet, "/api/itineraries/options", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, []any{"low", "medium", "high"}, body["budgets"])
	assert.Equal(t, "travelItinerary", body["sessionKey"])
}

type stubSuggester struct {
	out []maps.Suggestion
	err error
}

func (s stubSuggester) Suggest(context.Context, string) ([]maps.Suggestion, error) {
	return s.out, s.err
}

func TestSuggest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	build := func(s handlers.Suggester) *gin.Engine {
		r := gin.New()
		r.GET("/api/destinations/suggest", handlers.NewPlacesHandler(s).Suggest)
		return r
	}

	w := doRequest(build(stubSuggester{out: []maps.Suggestion{{Description: "Tokyo, Japan", PlaceID: "p1"}}}), http.MethodGet, "/api/destinations/suggest?q=tok", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"suggestions":[{"description":"Tokyo, Japan","placeId":"p1"}]}`, w.Body.String())

	w = doRequest(build(stubSuggester{err: maps.ErrQueryTooShort}), http.MethodGet, "/api/destinations/suggest?q=t", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(build(stubSuggester{err: errors.New("quota")}), http.MethodGet, "/api/destinations/suggest?q=tok", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

type stubUsage struct {
	window time.Duration
}

func (s *stubUsage) Summary(_ context.Context, window time.Duration) (usage.Summary, error) {
	s.window = window
	return usage.Summary{Total: 3, ByOutcome: []usage.OutcomeCount{{Outcome: usage.OutcomeOK, Count: 3}}}, nil
}

func TestUsageSummaryWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	su := &stubUsage{}
	r := gin.New()
	r.GET("/api/usage", handlers.NewUsageHandler(su).Summary)

	w := doRequest(r, http.MethodGet, "/api/usage", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 24*time.Hour, su.window)
	assert.Equal(t, 3.0, decode(t, w)["total"])

	w = doRequest(r, http.MethodGet, "/api/usage?since=2h", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2*time.Hour, su.window)

	for _, bad := range []string{"yesterday", "-1h", "10000h"} {
		w = doRequest(r, http.MethodGet, "/api/usage?since="+bad, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}
