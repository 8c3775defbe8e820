package agentground

import (
	"context"
	"fmt"
)

// WithAgent manages agent lifecycle with automatic cleanup.
//
// This helper creates an agent, starts it with the provided options, executes
// the callback, and ensures cleanup via Close when done.
//
// The callback receives a fully started Agent that is ready for use. If the
// callback returns an error, it is returned to the caller. If Close fails, a
// warning is logged but does not override the callback's error.
//
// Example usage:
//
//	err := agentground.WithAgent(ctx, func(a agentground.Agent) error {
//	    result, err := a.Run(ctx, "What is 2+2?")
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(result.Output)
//	    return nil
//	},
//	    agentground.WithServer("toolbox", &agentground.SSEServerConfig{
//	        URL: "http://localhost:9000/sse",
//	    }),
//	)
func WithAgent(ctx context.Context, fn func(Agent) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyOptions(opts)
	log := options.Logger

	agent := NewAgent()
	if err := agent.Start(ctx, opts...); err != nil {
		return fmt.Errorf("failed to start agent: %w", err)
	}

	defer func() {
		if closeErr := agent.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close agent")
		}
	}()

	return fn(agent)
}
