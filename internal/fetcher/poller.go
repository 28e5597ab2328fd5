package fetcher

import (
	"context"
	"smart_alarm/internal/logger"
	"time"
)

// Refresher обновляет ленту уведомлений.
type Refresher interface {
	Refresh(ctx context.Context) int
}

// StartPolling обновляет ленту сразу и затем каждые interval, пока не отменён ctx.
func StartPolling(ctx context.Context, r Refresher, interval time.Duration) {
	log := logger.WithService("poller").WithField("interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	poll := func() {
		log.Debug("Starting new polling cycle")
		if n := r.Refresh(ctx); n > 0 {
			log.WithField("items_count", n).Info("New notifications")
		}
	}

	poll()
	for {
		select {
		case <-ticker.C:
			poll()

		case <-ctx.Done():
			log.Info("Stopping poller by context")
			return
		}
	}
}
