// Package camunda connects to the Zeebe gateway and opens job workers.
package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"university-matcher/internal/common/logger"
	"university-matcher/internal/common/retry"
)

// ClientConfig holds the gateway address and connection retry policy.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	MaxAttempts            int
	InitialDelay           time.Duration
}

// Connect creates a Zeebe client and waits for the broker topology,
// retrying with exponential backoff until MaxAttempts is exhausted.
func Connect(ctx context.Context, cfg ClientConfig, log logger.Logger) (zbc.Client, error) {
	if cfg.ConnectionTimeout <= 0 {
		cfg.ConnectionTimeout = 10 * time.Second
	}

	var client zbc.Client
	err := retry.WithBackoff(ctx, func(ctx context.Context) error {
		c, err := zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.GatewayAddress,
			UsePlaintextConnection: cfg.UsePlaintextConnection,
		})
		if err != nil {
			return err
		}

		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectionTimeout)
		defer cancel()
		if _, err := c.NewTopologyCommand().Send(pingCtx); err != nil {
			_ = c.Close()
			return fmt.Errorf("broker at %s: %w", cfg.GatewayAddress, err)
		}
		client = c
		return nil
	}, cfg.MaxAttempts, cfg.InitialDelay, log, "zeebe connection")
	if err != nil {
		return nil, err
	}
	return client, nil
}
