package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var syncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "draft_together_ingest_runs_total",
	Help: "counter of ingest job runs, by job and outcome",
}, []string{"job", "result"})
