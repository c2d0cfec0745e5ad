package logging

import (
	"context"
	"log/slog"
	"time"
)

// LogPurger deletes persisted log records older than a cutoff.
type LogPurger interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// StartCleanup runs a daily goroutine that deletes system_logs older than
// retentionDays. It returns when ctx is cancelled.
func StartCleanup(ctx context.Context, store LogPurger, retentionDays int) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				purge(ctx, store, retentionDays, time.Now())
			case <-ctx.Done():
				return
			}
		}
	}()
}

func purge(ctx context.Context, store LogPurger, retentionDays int, now time.Time) int64 {
	cutoff := now.AddDate(0, 0, -retentionDays)
	deleted, err := store.DeleteBefore(ctx, cutoff)
	if err != nil {
		slog.Warn("log cleanup failed", "error", err)
		return 0
	}
	if deleted > 0 {
		slog.Info("log cleanup completed", "deleted", deleted, "cutoff", cutoff)
	}
	return deleted
}
