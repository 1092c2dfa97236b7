package http

import (
	"net/http"
	"time"

	"github.com/mauv0809/nuvla-job-stats-scraper/internal/scheduler"
)

// CycleReporter gives access to the outcome of the latest collection cycle.
type CycleReporter interface {
	LastCycle() (scheduler.CycleReport, bool)
}

type Server struct {
	MetricsHandler http.Handler
	Cycles         CycleReporter
	Router         *http.ServeMux
}

// StatusResponse is the JSON body served on /status.
type StatusResponse struct {
	CycleID          string            `json:"cycle_id"`
	Start            time.Time         `json:"start"`
	ElapsedSeconds   float64           `json:"elapsed_seconds"`
	Points           int               `json:"points"`
	FailedOperations map[string]string `json:"failed_operations,omitempty"`
	Published        bool              `json:"published"`
	PublishError     string            `json:"publish_error,omitempty"`
}
