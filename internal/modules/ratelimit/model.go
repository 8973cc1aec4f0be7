// README: Request rate limiting in front of the model gateway.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether key may make another request now.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Policy is a request budget per window.
type Policy struct {
	Requests int
	Window   time.Duration
}

// Enabled reports whether the policy limits anything at all.
func (p Policy) Enabled() bool {
	return p.Requests > 0 && p.Window > 0
}
