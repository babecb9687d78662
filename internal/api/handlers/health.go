package handlers

import (
	"net/http"
	"time"

	"github.com/vv031/Stock-Market/internal/scheduler"
)

// SourceStatus reports the last data source probe
type SourceStatus interface {
	Status() (healthy bool, lastCheck time.Time, lastError string)
}

// JobReporter exposes background job statistics
type JobReporter interface {
	GetJobStats() map[string]scheduler.JobStats
}

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	service string
	source  SourceStatus
	jobs    JobReporter
}

// NewHealthHandler creates a health handler. source may be nil when no
// probe is scheduled.
func NewHealthHandler(service string, source SourceStatus) *HealthHandler {
	return &HealthHandler{service: service, source: source}
}

// WithJobs adds scheduler statistics to the health response
func (h *HealthHandler) WithJobs(jobs JobReporter) *HealthHandler {
	h.jobs = jobs
	return h
}

// Check returns "healthy" while the process is serving. The data source
// probe is reported alongside and never fails the check.
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "healthy",
		"service": h.service,
	}

	if h.source != nil {
		healthy, lastCheck, lastError := h.source.Status()
		source := map[string]interface{}{
			"healthy": healthy,
		}
		if !lastCheck.IsZero() {
			source["last_check"] = lastCheck
		}
		if lastError != "" {
			source["error"] = lastError
		}
		resp["source"] = source
	}

	if h.jobs != nil {
		resp["jobs"] = h.jobs.GetJobStats()
	}

	respondJSON(w, http.StatusOK, resp)
}
