package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// StartSweeper launches the staleness sweeper. Every SweepInterval it
// force-fails jobs that have not been updated within StaleAfter, catching
// workers that died without reaching a terminal status. Returns when ctx
// is cancelled.
func (m *Manager) StartSweeper(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.cfg.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep(ctx)
			}
		}
	}()
}

func (m *Manager) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-m.cfg.StaleAfter)
	reason := fmt.Sprintf("no progress within %s", m.cfg.StaleAfter)

	failed, err := m.store.FailStaleJobs(ctx, cutoff, reason)
	if err != nil {
		slog.Error("stale job sweep failed", "error", err)
		return
	}

	for _, job := range failed {
		m.mirror(ctx, job)
		slog.Warn("stale job failed by sweeper", "job_id", job.ID, "kind", job.Kind)
	}
}
