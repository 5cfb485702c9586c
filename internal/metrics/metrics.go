// Package metrics exposes Prometheus instrumentation on its own HTTP
// listener so scrapes never contend with API traffic.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_sent_total",
		Help: "Messages accepted by the send pipeline.",
	})
	MessagesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_deleted_total",
		Help: "Messages tombstoned or hidden.",
	})
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_events_published_total",
		Help: "Events handed to the broker, by type.",
	}, []string{"type"})
	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_ws_connections",
		Help: "Currently open websocket connections.",
	})
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_cache_requests_total",
		Help: "Read-through cache lookups, by outcome.",
	}, []string{"outcome"})
)

// Server hosts the /metrics endpoint.
type Server struct {
	srv *http.Server
	log *zap.SugaredLogger
}

func NewServer(port int, log *zap.SugaredLogger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Start blocks serving scrapes until Shutdown is called.
func (s *Server) Start() {
	s.log.Infow("metrics listener starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.log.Errorw("metrics listener failed", "error", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
