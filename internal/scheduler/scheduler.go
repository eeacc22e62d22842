package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/inkpress/blog-api/internal/metrics"
	"github.com/inkpress/blog-api/internal/repo"
)

// Run starts a background cron job that refreshes the pending-posts gauge and
// logs a moderation reminder when the queue is non-empty. cronExpr uses the
// standard five-field syntax; an empty expression disables the job. The
// returned cron can be stopped on shutdown.
func Run(posts *repo.PostRepo, cronExpr string) *cron.Cron {
	c := cron.New()
	if cronExpr == "" {
		return c
	}

	job := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n, err := posts.CountPending(ctx)
		if err != nil {
			slog.Error("scheduler: count pending posts", "err", err)
			return
		}
		metrics.SetPostsPending(n)
		if n > 0 {
			slog.Info("posts awaiting approval", "count", n)
		}
	}

	if _, err := c.AddFunc(cronExpr, job); err != nil {
		slog.Error("scheduler: invalid cron expression", "cron", cronExpr, "err", err)
		return c
	}

	// Prime the gauge at startup instead of waiting for the first tick.
	go job()

	c.Start()
	return c
}
