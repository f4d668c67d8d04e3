// Package retention prunes old entries from the local message mirror on a
// cron schedule. The remote service is the system of record, so pruning the
// mirror never loses data a load cannot re-fetch.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
	"github.com/dustin/go-humanize"

	"threadsync/pkg/config"
	"threadsync/pkg/engine"
	"threadsync/pkg/logger"
	"threadsync/pkg/metrics"
	"threadsync/pkg/store"
)

// Start starts the retention scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg *config.Config, eng *engine.Engine, st *store.Store) (context.CancelFunc, error) {
	if !cfg.Retention.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}

	maxAge, err := cfg.RetentionMaxAge()
	if err != nil {
		logger.Error("retention_invalid_max_age", "max_age", cfg.Retention.MaxAge, "error", err)
		return nil, fmt.Errorf("invalid retention max_age: %w", err)
	}
	if maxAge <= 0 {
		logger.Info("retention_no_max_age")
		return func() {}, nil
	}

	// map empty cron to default daily @02:00
	cronExpr := cfg.Retention.Cron
	if cronExpr == "" {
		cronExpr = "0 2 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("retention_invalid_cron", "cron", cfg.Retention.Cron)
		return nil, fmt.Errorf("invalid retention cron expression: %s", cfg.Retention.Cron)
	}

	logger.Info("retention_enabled", "cron", cronExpr, "max_age", maxAge.String())
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr, maxAge, eng, st)
	return cancel, nil
}

// runScheduler computes the next cron tick with gronx and sleeps until that
// time, triggering one prune pass per tick.
func runScheduler(ctx context.Context, cronExpr string, maxAge time.Duration, eng *engine.Engine, st *store.Store) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("retention_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			if err := RunOnce(eng, st, maxAge); err != nil {
				logger.Error("retention_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		}
	}
}

// RunOnce executes a single prune pass over every conversation with
// persisted local messages. Exposed for tests and admin triggers.
func RunOnce(eng *engine.Engine, st *store.Store, maxAge time.Duration) error {
	cutoff := time.Now().UTC().Add(-maxAge)
	convs, err := st.ListConversations()
	if err != nil {
		return err
	}
	total := 0
	for _, id := range convs {
		n, perr := eng.PruneLocal(id, cutoff)
		if perr != nil {
			logger.Warn("retention_prune_failed", "conversation", id, "error", perr)
			continue
		}
		total += n
	}
	if total > 0 {
		metrics.RetentionPruned.Add(float64(total))
	}
	logger.Info("retention_run_complete",
		"pruned", total,
		"conversations", len(convs),
		"store_size", humanize.Bytes(st.Size()),
	)
	return nil
}
