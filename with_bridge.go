package agentbridge

import (
	"context"
	"fmt"
)

// WithBridge manages bridge lifecycle with automatic cleanup.
//
// This helper creates a bridge, starts a session, runs the callback and
// closes the bridge when the callback returns. If Close fails, a warning is
// logged but does not override the callback's error.
//
// Example usage:
//
//	err := agentbridge.WithBridge(ctx, func(b agentbridge.Bridge) error {
//	    <-ctx.Done()
//	    return nil
//	},
//	    agentbridge.WithLogger(log),
//	    agentbridge.WithTools(tools...),
//	)
func WithBridge(ctx context.Context, fn func(Bridge) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyOptions(opts)

	b, err := newBridge(options)
	if err != nil {
		return fmt.Errorf("failed to create bridge: %w", err)
	}

	defer func() {
		if closeErr := b.Close(); closeErr != nil {
			options.Logger.Warn("failed to close bridge", "error", closeErr)
		}
	}()

	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bridge: %w", err)
	}

	return fn(b)
}
