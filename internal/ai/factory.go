package ai

import (
	"context"
	"fmt"
	"time"
)

// Transports understood by Open.
const (
	TransportHTTP = "http"
	TransportSDK  = "sdk"
)

// Open builds the gateway for transport. The returned close func is never nil.
func Open(ctx context.Context, transport string, opts GeminiOptions) (Gateway, func() error, error) {
	noop := func() error { return nil }
	switch transport {
	case "", TransportHTTP:
		gw, err := NewGeminiGateway(opts)
		if err != nil {
			return nil, noop, err
		}
		return gw, noop, nil
	case TransportSDK:
		cfg := DefaultGenerationConfig
		if opts.Config != nil {
			cfg = *opts.Config
		}
		gw, err := NewSDKGateway(ctx, opts.APIKey, opts.Model, cfg)
		if err != nil {
			return nil, noop, err
		}
		if opts.Timeout > 0 {
			return timeoutGateway{next: gw, timeout: opts.Timeout}, gw.Close, nil
		}
		return gw, gw.Close, nil
	default:
		return nil, noop, fmt.Errorf("gemini: unknown transport %q", transport)
	}
}

type timeoutGateway struct {
	next    Gateway
	timeout time.Duration
}

func (g timeoutGateway) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.next.Generate(ctx, prompt)
}
