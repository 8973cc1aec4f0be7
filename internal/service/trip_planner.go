package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tripgen/internal/ai"
	"tripgen/internal/metrics"
	"tripgen/internal/modules/itinerary"
	"tripgen/internal/modules/usage"
)

// RunRecorder receives one entry per pipeline run. Recording failures are logged and
// never change the pipeline result.
type RunRecorder interface {
	Record(ctx context.Context, run usage.Run) error
}

// Draft is everything the pipeline derives before calling the model.
type Draft struct {
	Request itinerary.TripRequest
	Dates   itinerary.DateSequence
	Prompt  string
}

// TripPlanner runs the itinerary pipeline: validate, expand dates, build the prompt,
// call the model, parse the reply. Every stage fails fast. A TripPlanner holds no
// per-request state and is safe for concurrent use.
type TripPlanner struct {
	gateway  ai.Gateway
	logger   *slog.Logger
	metrics  *metrics.Metrics
	recorder RunRecorder
	now      func() time.Time
}

type Option func(*TripPlanner)

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *TripPlanner) { p.metrics = m }
}

func WithRecorder(r RunRecorder) Option {
	return func(p *TripPlanner) { p.recorder = r }
}

// NewTripPlanner creates a TripPlanner around the given model gateway.
func NewTripPlanner(gateway ai.Gateway, logger *slog.Logger, opts ...Option) *TripPlanner {
	if logger == nil {
		logger = slog.Default()
	}
	p := &TripPlanner{
		gateway: gateway,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare runs the pure stages of the pipeline. It never touches the network.
func (p *TripPlanner) Prepare(req itinerary.TripRequest) (Draft, error) {
	req, err := itinerary.Validate(req)
	if err != nil {
		return Draft{}, err
	}
	n, start, err := itinerary.DayCount(req.StartDate, req.EndDate)
	if err != nil {
		return Draft{}, err
	}
	dates, err := itinerary.Expand(start, n)
	if err != nil {
		return Draft{}, err
	}
	return Draft{
		Request: req,
		Dates:   dates,
		Prompt:  itinerary.BuildPrompt(req, dates),
	}, nil
}

// Generate produces a fresh itinerary for req. Errors are *itinerary.ValidationError,
// *ai.GatewayError, *itinerary.ParseError, *itinerary.ShapeError or an internal fault.
func (p *TripPlanner) Generate(ctx context.Context, req itinerary.TripRequest) (it itinerary.Itinerary, err error) {
	started := p.now()
	var draft Draft

	defer func() {
		if r := recover(); r != nil {
			it, err = itinerary.Itinerary{}, fmt.Errorf("internal error: %v", r)
		}
		p.finish(ctx, started, len(draft.Dates), err)
	}()

	draft, err = p.Prepare(req)
	if err != nil {
		return itinerary.Itinerary{}, err
	}

	callStart := p.now()
	reply, err := p.gateway.Generate(ctx, draft.Prompt)
	p.metrics.ObserveGateway(p.now().Sub(callStart))
	if err != nil {
		return itinerary.Itinerary{}, err
	}

	return itinerary.ParseReply(reply)
}

// Regenerate re-sends the request stored in sess unchanged and returns a new session.
// The previous itinerary is discarded.
func (p *TripPlanner) Regenerate(ctx context.Context, sess itinerary.Session) (itinerary.Session, error) {
	it, err := p.Generate(ctx, sess.FormData)
	if err != nil {
		return itinerary.Session{}, err
	}
	return itinerary.Session{Itinerary: it, FormData: sess.FormData}, nil
}

func (p *TripPlanner) finish(ctx context.Context, started time.Time, days int, err error) {
	outcome, status := Classify(err)
	p.metrics.ObservePipeline(string(outcome))

	switch outcome {
	case usage.OutcomeOK:
		p.logger.InfoContext(ctx, "itinerary generated", slog.Int("days", days), slog.Duration("elapsed", p.now().Sub(started)))
	case usage.OutcomeValidation:
		p.logger.DebugContext(ctx, "trip request rejected", slog.String("error", err.Error()))
	default:
		p.logger.WarnContext(ctx, "itinerary generation failed",
			slog.String("outcome", string(outcome)),
			slog.Int("upstream_status", status),
			slog.String("error", err.Error()),
		)
	}

	if p.recorder == nil || outcome == usage.OutcomeValidation {
		return
	}
	run := usage.Run{
		StartedAt:      started,
		Duration:       p.now().Sub(started),
		DayCount:       days,
		Outcome:        outcome,
		UpstreamStatus: status,
	}
	if recErr := p.recorder.Record(context.WithoutCancel(ctx), run); recErr != nil {
		p.logger.ErrorContext(ctx, "record usage", slog.String("error", recErr.Error()))
	}
}

// Classify maps a pipeline error to its outcome and, for gateway failures, the
// upstream HTTP status.
func Classify(err error) (usage.Outcome, int) {
	if err == nil {
		return usage.OutcomeOK, 0
	}
	var (
		vErr *itinerary.ValidationError
		gErr *ai.GatewayError
		pErr *itinerary.ParseError
		sErr *itinerary.ShapeError
	)
	switch {
	case errors.As(err, &vErr):
		return usage.OutcomeValidation, 0
	case errors.As(err, &gErr):
		if gErr.NoReply() {
			return usage.OutcomeNoReply, gErr.Status
		}
		return usage.OutcomeGateway, gErr.Status
	case errors.As(err, &pErr):
		return usage.OutcomeParse, 0
	case errors.As(err, &sErr):
		return usage.OutcomeShape, 0
	default:
		return usage.OutcomeInternal, 0
	}
}
