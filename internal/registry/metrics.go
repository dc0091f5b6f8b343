package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var roomsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "draft_together_rooms_active",
	Help: "number of rooms currently held in memory",
})

var peersConnected = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "draft_together_peers_connected",
	Help: "number of websocket peers currently joined to a room",
})

var draftSavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "draft_together_draft_saves_total",
	Help: "counter of draft persistence attempts, by trigger and outcome",
}, []string{"trigger", "result"})
