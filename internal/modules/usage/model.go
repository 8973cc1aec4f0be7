// README: Generation usage ledger types. Only run outcomes are kept, never itinerary content.
package usage

import (
	"errors"
	"time"
)

// Outcome classifies how a pipeline run ended.
type Outcome string

const (
	OutcomeOK         Outcome = "ok"
	OutcomeValidation Outcome = "validation"
	OutcomeGateway    Outcome = "gateway"
	OutcomeNoReply    Outcome = "no_reply"
	OutcomeParse      Outcome = "parse"
	OutcomeShape      Outcome = "shape"
	OutcomeInternal   Outcome = "internal"
)

var ErrBadRun = errors.New("usage: run has no outcome")

// Run is one pipeline invocation as recorded in generation_runs.
type Run struct {
	StartedAt      time.Time
	Duration       time.Duration
	DayCount       int
	Outcome        Outcome
	UpstreamStatus int
}

type OutcomeCount struct {
	Outcome Outcome `json:"outcome"`
	Count   int64   `json:"count"`
}

// Summary aggregates runs started at or after Since.
type Summary struct {
	Since     time.Time      `json:"since"`
	Total     int64          `json:"total"`
	ByOutcome []OutcomeCount `json:"byOutcome"`
}
