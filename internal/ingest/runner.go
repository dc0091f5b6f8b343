// Package ingest keeps the champion catalog and champion role metadata in
// sync with the public upstream data feeds.
package ingest

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Job is one ingestion task executed on a fixed period.
type Job interface {
	Run(ctx context.Context) error
}

// Runner executes a job immediately and then on every period tick until the
// context is cancelled. Failed runs are logged and retried on the next tick,
// so a broken upstream feed never kills the loop.
type Runner struct {
	name   string
	job    Job
	period time.Duration
}

func NewRunner(name string, job Job, period time.Duration) *Runner {
	return &Runner{name: name, job: job, period: period}
}

func (r *Runner) Run(ctx context.Context) {
	log.WithFields(log.Fields{
		"job":    r.name,
		"period": r.period,
	}).Info("starting ingest loop")

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		r.runOnce(ctx)
		select {
		case <-ctx.Done():
			log.WithField("job", r.name).Info("ingest loop stopped")
			return
		case <-ticker.C:
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	if err := r.job.Run(ctx); err != nil {
		syncRunsTotal.WithLabelValues(r.name, "error").Inc()
		log.WithError(err).WithField("job", r.name).Error("ingest run failed")
		return
	}
	syncRunsTotal.WithLabelValues(r.name, "ok").Inc()
}
