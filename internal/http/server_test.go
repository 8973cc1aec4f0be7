// README: End-to-end tests: full router, real Gemini gateway against a local endpoint.
package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripgen/internal/ai"
	httptransport "tripgen/internal/http"
	"tripgen/internal/logging"
	"tripgen/internal/metrics"
	"tripgen/internal/modules/itinerary"
	"tripgen/internal/modules/ratelimit"
	"tripgen/internal/service"
)

const modelReply = "```json\n{\"days\":[" +
	"{\"date\":\"2025-06-01\",\"activities\":[{\"time\":\"09:00\",\"title\":\"Meiji Shrine\",\"description\":\"Morning walk\"}]}," +
	"{\"date\":\"2025-06-02\",\"activities\":[{\"time\":\"10:00\",\"title\":\"Tsukiji\",\"description\":\"Market\"}]}" +
	"]}\n```"

// fakeGemini serves generateContent and counts calls.
func fakeGemini(t *testing.T, status int, text string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = io.WriteString(w, text)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": text}}},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

type fixture struct {
	handler http.Handler
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, geminiURL string, policy ratelimit.Policy) fixture {
	t.Helper()
	gw, err := ai.NewGeminiGateway(ai.GeminiOptions{APIKey: "test-key", BaseURL: geminiURL})
	require.NoError(t, err)

	m := metrics.New()
	logger := logging.Discard()
	deps := httptransport.ServerDeps{
		Planner:         service.NewTripPlanner(gw, logger, service.WithMetrics(m)),
		Metrics:         m,
		Logger:          logger,
		GenerateTimeout: 5 * time.Second,
		CORSOrigins:     []string{"https://app.example"},
	}
	if policy.Enabled() {
		deps.Limiter = ratelimit.NewMemoryLimiter(policy)
	}
	return fixture{handler: httptransport.NewServer(deps).Routes(), metrics: m}
}

func post(h http.Handler, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func tokyoRequest() itinerary.TripRequest {
	return itinerary.TripRequest{
		Destination: "Tokyo",
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-03",
		Budget:      itinerary.BudgetMedium,
		Pace:        itinerary.PaceBalanced,
		Interests:   []string{"food", "history"},
	}
}

func TestGenerateItineraryEndToEnd(t *testing.T) {
	gemini, calls := fakeGemini(t, http.StatusOK, modelReply)
	f := newFixture(t, gemini.URL, ratelimit.Policy{})

	w := post(f.handler, "/api/generate-itinerary", tokyoRequest())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var it itinerary.Itinerary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &it))
	require.Len(t, it.Days, 2)
	assert.Equal(t, "2025-06-01", it.Days[0].Date)
	assert.Equal(t, "2025-06-02", it.Days[1].Date)
	assert.Equal(t, int32(1), calls.Load())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PipelineRuns.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.HTTPRequests.WithLabelValues("/api/generate-itinerary", "200")))
}

func TestRegenerateEndToEnd(t *testing.T) {
	gemini, calls := fakeGemini(t, http.StatusOK, modelReply)
	f := newFixture(t, gemini.URL, ratelimit.Policy{})

	w := post(f.handler, "/api/itineraries/regenerate", itinerary.Session{FormData: tokyoRequest()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sess itinerary.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.Equal(t, tokyoRequest(), sess.FormData)
	assert.Len(t, sess.Itinerary.Days, 2)
	assert.Equal(t, int32(1), calls.Load())
}

func TestInvalidRequestNeverReachesModel(t *testing.T) {
	gemini, calls := fakeGemini(t, http.StatusOK, modelReply)
	f := newFixture(t, gemini.URL, ratelimit.Policy{})

	req := tokyoRequest()
	req.EndDate = "2025-05-30"
	w := post(f.handler, "/api/generate-itinerary", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid date range"}`, w.Body.String())

	req = tokyoRequest()
	req.Budget = ""
	w = post(f.handler, "/api/generate-itinerary", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing required fields"}`, w.Body.String())

	assert.Zero(t, calls.Load())
}

func TestUpstreamFailureIsServiceUnavailable(t *testing.T) {
	gemini, _ := fakeGemini(t, http.StatusInternalServerError, `{"error":{"message":"overloaded"}}`)
	f := newFixture(t, gemini.URL, ratelimit.Policy{})

	w := post(f.handler, "/api/generate-itinerary", tokyoRequest())
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "AI service unavailable", body["error"])
	assert.Equal(t, 500.0, body["status"])
	assert.Equal(t, `{"error":{"message":"overloaded"}}`, body["details"])
}

func TestProseReplyIsFormatError(t *testing.T) {
	gemini, _ := fakeGemini(t, http.StatusOK, "Here is a lovely trip to Tokyo!")
	f := newFixture(t, gemini.URL, ratelimit.Policy{})

	w := post(f.handler, "/api/generate-itinerary", tokyoRequest())
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid AI response format", body["error"])
	assert.Equal(t, "Here is a lovely trip to Tokyo!", body["details"])
	assert.NotEmpty(t, body["parseError"])
}

func TestRateLimitedAfterBudget(t *testing.T) {
	gemini, calls := fakeGemini(t, http.StatusOK, modelReply)
	f := newFixture(t, gemini.URL, ratelimit.Policy{Requests: 1, Window: time.Hour})

	w := post(f.handler, "/api/generate-itinerary", tokyoRequest())
	require.Equal(t, http.StatusOK, w.Code)

	w = post(f.handler, "/api/generate-itinerary", tokyoRequest())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RateLimited))
}

func postFrom(h http.Handler, remoteAddr, forwardedFor string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(tokyoRequest())
	req := httptest.NewRequest(http.MethodPost, "/api/generate-itinerary", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestForwardedForDoesNotResetRateLimit(t *testing.T) {
	gemini, calls := fakeGemini(t, http.StatusOK, modelReply)
	f := newFixture(t, gemini.URL, ratelimit.Policy{Requests: 1, Window: time.Hour})

	require.Equal(t, http.StatusOK, postFrom(f.handler, "198.51.100.7:4000", "203.0.113.1").Code)
	for i := 2; i <= 5; i++ {
		w := postFrom(f.handler, "198.51.100.7:4000", fmt.Sprintf("203.0.113.%d", i))
		assert.Equal(t, http.StatusTooManyRequests, w.Code, "X-Forwarded-For 203.0.113.%d", i)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestTrustedProxyForwardsClientAddress(t *testing.T) {
	gemini, calls := fakeGemini(t, http.StatusOK, modelReply)
	gw, err := ai.NewGeminiGateway(ai.GeminiOptions{APIKey: "test-key", BaseURL: gemini.URL})
	require.NoError(t, err)
	logger := logging.Discard()
	h := httptransport.NewServer(httptransport.ServerDeps{
		Planner:        service.NewTripPlanner(gw, logger),
		Limiter:        ratelimit.NewMemoryLimiter(ratelimit.Policy{Requests: 1, Window: time.Hour}),
		Logger:         logger,
		TrustedProxies: []string{"10.0.0.0/8"},
	}).Routes()

	// Behind the proxy, distinct clients get their own budget.
	assert.Equal(t, http.StatusOK, postFrom(h, "10.1.2.3:5000", "203.0.113.1").Code)
	assert.Equal(t, http.StatusOK, postFrom(h, "10.1.2.3:5000", "203.0.113.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, postFrom(h, "10.1.2.3:5000", "203.0.113.2").Code)

	// A direct peer outside the trusted range is keyed on its socket address.
	assert.Equal(t, http.StatusOK, postFrom(h, "198.51.100.7:4000", "203.0.113.9").Code)
	assert.Equal(t, http.StatusTooManyRequests, postFrom(h, "198.51.100.7:4000", "203.0.113.10").Code)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHealthMetricsAndCORS(t *testing.T) {
	gemini, _ := fakeGemini(t, http.StatusOK, modelReply)
	f := newFixture(t, gemini.URL, ratelimit.Policy{})

	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = httptest.NewRecorder()
	f.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	req := httptest.NewRequest(http.MethodOptions, "/api/generate-itinerary", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
}

// TestLiveServer drives a running tripgen-api, which calls the real model.
// It skips the test unless TRIPGEN_API_BASE_URL is set.
func TestLiveServer(t *testing.T) {
	baseURL := strings.TrimRight(os.Getenv("TRIPGEN_API_BASE_URL"), "/")
	if baseURL == "" {
		t.Skip("TRIPGEN_API_BASE_URL not set; skipping live test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	payload, err := json.Marshal(tokyoRequest())
	require.NoError(t, err)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/generate-itinerary", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var it itinerary.Itinerary
	require.NoError(t, json.Unmarshal(body, &it))
	assert.NotEmpty(t, it.Days)
	t.Logf("live itinerary has %d days", len(it.Days))
}
