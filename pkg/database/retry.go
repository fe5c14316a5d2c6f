package database

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/jordanlanch/leadboard/pkg/logger"
)

// Connect retry policy; stores started by docker compose are often a few seconds behind the API
var (
	connectAttempts uint = 5
	connectDelay         = time.Second
)

func withRetry(ctx context.Context, log logger.Logger, store string, ping func(context.Context) error) error {
	return retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return ping(pingCtx)
		},
		retry.Context(ctx),
		retry.Attempts(connectAttempts),
		retry.Delay(connectDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			log.Warn("store not ready, retrying", "store", store, "attempt", attempt+1, "error", err)
		}),
	)
}
