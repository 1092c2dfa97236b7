package http

import (
	"net/http"

	"github.com/mauv0809/nuvla-job-stats-scraper/internal/scheduler"
)

var _ CycleReporter = (*scheduler.Scheduler)(nil)

func NewServer(metricsHandler http.Handler, cycles CycleReporter) *Server {
	server := &Server{
		MetricsHandler: metricsHandler,
		Cycles:         cycles,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/status", Chain(s.StatusHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
