package ai

import (
	"errors"
	"fmt"
)

// ErrNoReply is wrapped by GatewayError when the model answered successfully but the
// envelope carries no reply text.
var ErrNoReply = errors.New("no response from AI")

// GatewayError reports a failed model call. Status is the upstream HTTP status, zero
// when the request never got one. Body is the raw upstream body (error details, or
// the envelope when Err is ErrNoReply).
type GatewayError struct {
	Status int
	Body   string
	Err    error
}

func (e *GatewayError) Error() string {
	switch {
	case errors.Is(e.Err, ErrNoReply):
		return "gemini: " + ErrNoReply.Error()
	case e.Status == 0, e.Status >= 200 && e.Status < 300:
		return fmt.Sprintf("gemini: request failed: %v", e.Err)
	default:
		return fmt.Sprintf("gemini: upstream returned status %d", e.Status)
	}
}

func (e *GatewayError) Unwrap() error { return e.Err }

// NoReply reports whether the upstream succeeded without usable reply text.
func (e *GatewayError) NoReply() bool { return errors.Is(e.Err, ErrNoReply) }
