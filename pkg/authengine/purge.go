package authengine

import (
	"context"
	"time"

	"authgateway/internal/observability"
)

// RunPurge deletes expired sessions every interval until ctx is done. A
// non-positive interval disables purging.
func (e *Engine) RunPurge(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		n, err := e.PurgeExpired(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			e.logger.Error("purge expired sessions", "error", err)
			continue
		}
		if n > 0 {
			observability.SessionsPurged.Add(float64(n))
			e.logger.Info("expired sessions purged", "count", n)
		}
	}
}
