package storage

import (
	"context"
	"log/slog"
	"time"
)

// RunSweeper removes artifacts older than ttl every interval until ctx is
// done. onSwept, if set, receives the number removed by each non-empty sweep.
func RunSweeper(ctx context.Context, store Store, interval, ttl time.Duration, onSwept func(int)) {
	if interval <= 0 || ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := store.CleanupOlderThan(ttl)
			if n == 0 {
				continue
			}
			slog.Info("expired exports removed", "count", n)
			if onSwept != nil {
				onSwept(n)
			}
		}
	}
}
