// Package retry repeats connection attempts with exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"

	"university-matcher/internal/common/logger"
)

// WithBackoff runs op up to maxAttempts times, doubling the delay
// after each failure. It stops early when ctx is done.
func WithBackoff(ctx context.Context, op func(context.Context) error, maxAttempts int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var err error
	delay := initialDelay
	for i := 0; i < maxAttempts; i++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if i == maxAttempts-1 {
			break
		}

		log.Warn(operationName+" failed, retrying", map[string]interface{}{
			"error":       err.Error(),
			"attempt":     i + 1,
			"maxAttempts": maxAttempts,
			"nextRetryIn": delay.String(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled after %d attempts: %w", operationName, i+1, ctx.Err())
		}
		delay *= 2
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxAttempts, err)
}
