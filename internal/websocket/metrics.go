package websocket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var editsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "draft_together_edits_total",
	Help: "counter of received edit frames, by outcome",
}, []string{"result"})
