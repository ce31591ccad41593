package workout

import (
	"context"
	"errors"
	"time"
)

// RunClock drives the session clock at the given interval until ctx is done.
// The tracker itself never schedules time; this loop owns the cadence and
// simply skips ticks while the session is paused or absent.
func (t *Tracker) RunClock(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.Tick(interval); err != nil {
				if errors.Is(err, ErrNoSession) || errors.Is(err, ErrNotActive) {
					continue
				}
				t.log.Error("session tick failed", "error", err)
			}
		}
	}
}

// RunAutosave snapshots the in-progress session at the given interval until
// ctx is done. A failed save is logged and retried on the next interval.
func (t *Tracker) RunAutosave(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.Snapshot(ctx); err != nil {
				t.log.Warn("session autosave failed", "error", err)
			}
		}
	}
}
