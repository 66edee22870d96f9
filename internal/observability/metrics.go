package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WebSocketBackpressureDrops counts messages dropped because a client's send
// buffer was full or its channel already closed.
var WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gearswap_websocket_backpressure_drops_total",
	Help: "Messages dropped due to websocket backpressure, by hub and reason",
}, []string{"hub", "reason"})
