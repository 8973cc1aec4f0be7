package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tripgen/internal/infra"
	"tripgen/internal/modules/itinerary"
)

// smokeConfig drives `tripgen smoke`, a check runner against a deployed tripgen-api.
type smokeConfig struct {
	BaseURL   string
	DSN       string
	RedisAddr string
	Live      bool
	Burst     int
	Timeout   time.Duration
}

type smokeResult struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type smokeCase struct {
	Name string
	Run  func(ctx context.Context, r *smokeRunner) smokeResult
}

type smokeRunner struct {
	cfg   smokeConfig
	httpc *http.Client
}

func newSmokeCmd() *cobra.Command {
	var cfg smokeConfig
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run smoke checks against a running tripgen-api",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
			defer cancel()

			r := &smokeRunner{cfg: cfg, httpc: &http.Client{Timeout: cfg.Timeout}}
			results := r.runAll(ctx, cmd.OutOrStdout())

			pass, fail, skipped := 0, 0, 0
			for _, res := range results {
				switch res.Status {
				case "PASS":
					pass++
				case "FAIL":
					fail++
				case "SKIP":
					skipped++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nPASS=%d FAIL=%d SKIP=%d\n", pass, fail, skipped)
			if fail > 0 {
				return fmt.Errorf("%d smoke checks failed", fail)
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&cfg.BaseURL, "base-url", "http://localhost:8080", "API base URL")
	fl.StringVar(&cfg.DSN, "dsn", "", "Postgres DSN to ping (optional)")
	fl.StringVar(&cfg.RedisAddr, "redis", "", "Redis address to ping (optional)")
	fl.BoolVar(&cfg.Live, "live", false, "also generate a real itinerary (calls the model)")
	fl.IntVar(&cfg.Burst, "burst", 0, "send this many concurrent invalid requests and expect some 429s")
	fl.DurationVar(&cfg.Timeout, "timeout", 2*time.Minute, "total timeout")
	return cmd
}

func (r *smokeRunner) runAll(ctx context.Context, w io.Writer) []smokeResult {
	cases := r.cases()
	results := make([]smokeResult, 0, len(cases))
	for _, tc := range cases {
		start := time.Now()
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		if res.Latency == 0 && res.Status != "SKIP" {
			res.Latency = time.Since(start).Round(time.Millisecond)
		}
		results = append(results, res)

		fmt.Fprintf(w, "%-5s %s", res.Status, res.Name)
		if res.Latency > 0 {
			fmt.Fprintf(w, " (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Fprintf(w, " - %s", res.Note)
		}
		fmt.Fprintln(w)
	}
	return results
}

func (r *smokeRunner) cases() []smokeCase {
	sample := itinerary.TripRequest{
		Destination: "Lisbon",
		StartDate:   time.Now().AddDate(0, 1, 0).Format(time.DateOnly),
		EndDate:     time.Now().AddDate(0, 1, 2).Format(time.DateOnly),
		Budget:      itinerary.BudgetLow,
		Pace:        itinerary.PaceRelaxed,
		Interests:   []string{"food"},
	}
	missing := sample
	missing.Destination = ""
	backwards := sample
	backwards.StartDate, backwards.EndDate = sample.EndDate, sample.StartDate

	return []smokeCase{
		{Name: "Env: Postgres connect", Run: func(ctx context.Context, r *smokeRunner) smokeResult {
			if r.cfg.DSN == "" {
				return smokeResult{Status: "SKIP", Note: "no --dsn"}
			}
			db, err := infra.NewDB(ctx, r.cfg.DSN)
			if err != nil {
				return smokeResult{Status: "FAIL", Note: err.Error()}
			}
			db.Close()
			return smokeResult{Status: "PASS"}
		}},
		{Name: "Env: Redis connect", Run: func(ctx context.Context, r *smokeRunner) smokeResult {
			if r.cfg.RedisAddr == "" {
				return smokeResult{Status: "SKIP", Note: "no --redis"}
			}
			rdb, err := infra.NewRedis(ctx, r.cfg.RedisAddr)
			if err != nil {
				return smokeResult{Status: "FAIL", Note: err.Error()}
			}
			_ = rdb.Close()
			return smokeResult{Status: "PASS"}
		}},
		{Name: "GET /health", Run: func(ctx context.Context, r *smokeRunner) smokeResult {
			return r.expect(ctx, http.MethodGet, "/health", nil, http.StatusOK, "")
		}},
		{Name: "GET /api/itineraries/options", Run: func(ctx context.Context, r *smokeRunner) smokeResult {
			return r.expect(ctx, http.MethodGet, "/api/itineraries/options", nil, http.StatusOK, itinerary.SessionKey)
		}},
		{Name: "Generate: missing fields is 400", Run: func(ctx context.Context, r *smokeRunner) smokeResult {
			return r.expect(ctx, http.MethodPost, "/api/generate-itinerary", missing, http.StatusBadRequest, "Missing required fields")
		}},
		{Name: "Generate: reversed dates is 400", Run: func(ctx context.Context, r *smokeRunner) smokeResult {
			return r.expect(ctx, http.MethodPost, "/api/generate-itinerary", backwards, http.StatusBadRequest, "Invalid date range")
		}},
		{Name: "Generate: live itinerary", Run: func(ctx context.Context, r *smokeRunner) smokeResult {
			if !r.cfg.Live {
				return smokeResult{Status: "SKIP", Note: "no --live"}
			}
			return r.expect(ctx, http.MethodPost, "/api/generate-itinerary", sample, http.StatusOK, `"days"`)
		}},
		{Name: "Rate limit: burst", Run: func(ctx context.Context, r *smokeRunner) smokeResult {
			if r.cfg.Burst <= 0 {
				return smokeResult{Status: "SKIP", Note: "no --burst"}
			}
			return r.burst(ctx, missing)
		}},
	}
}

func (r *smokeRunner) do(ctx context.Context, method, path string, body any) (int, string, error) {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, "", err
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, rd)
	if err != nil {
		return 0, "", err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return resp.StatusCode, string(raw), nil
}

func (r *smokeRunner) expect(ctx context.Context, method, path string, body any, status int, contains string) smokeResult {
	start := time.Now()
	got, text, err := r.do(ctx, method, path, body)
	latency := time.Since(start).Round(time.Millisecond)
	if err != nil {
		return smokeResult{Status: "FAIL", Latency: latency, Note: err.Error()}
	}
	if got != status {
		return smokeResult{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status %d, want %d: %s", got, status, truncate(text, 200))}
	}
	if contains != "" && !strings.Contains(text, contains) {
		return smokeResult{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("body lacks %q", contains)}
	}
	return smokeResult{Status: "PASS", Latency: latency}
}

// burst fires invalid requests concurrently; they never reach the model, but they do
// count against the limiter.
func (r *smokeRunner) burst(ctx context.Context, req itinerary.TripRequest) smokeResult {
	var limited, other atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(16)
	for i := 0; i < r.cfg.Burst; i++ {
		g.Go(func() error {
			status, _, err := r.do(gctx, http.MethodPost, "/api/generate-itinerary", req)
			if err != nil {
				return err
			}
			switch status {
			case http.StatusTooManyRequests:
				limited.Add(1)
			case http.StatusBadRequest:
			default:
				other.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return smokeResult{Status: "FAIL", Note: err.Error()}
	}
	note := fmt.Sprintf("%d/%d limited", limited.Load(), r.cfg.Burst)
	if other.Load() > 0 {
		return smokeResult{Status: "FAIL", Note: fmt.Sprintf("%s, %d unexpected statuses", note, other.Load())}
	}
	if limited.Load() == 0 {
		return smokeResult{Status: "FAIL", Note: note}
	}
	return smokeResult{Status: "PASS", Note: note}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
