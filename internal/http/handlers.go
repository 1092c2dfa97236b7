package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// StatusHandler reports the latest collection cycle. It answers 503 until the
// first cycle finished.
func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, ok := s.Cycles.LastCycle()
		if !ok {
			http.Error(w, "No collection cycle has finished yet", http.StatusServiceUnavailable)
			return
		}

		resp := StatusResponse{
			CycleID:        report.ID,
			Start:          report.Start,
			ElapsedSeconds: report.Elapsed.Seconds(),
			Points:         report.Points,
			Published:      report.PublishErr == nil,
		}
		if len(report.Failures) > 0 {
			resp.FailedOperations = make(map[string]string, len(report.Failures))
			for op, err := range report.Failures {
				resp.FailedOperations[op] = err.Error()
			}
		}
		if report.PublishErr != nil {
			resp.PublishError = report.PublishErr.Error()
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Error("Failed to encode status response", "error", err)
		}
	}
}
