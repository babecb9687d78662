package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/vv031/Stock-Market/pkg/logger"
)

// HealthChecker is anything with a liveness probe, e.g. a Gateway
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthCheckJob probes the data source and remembers the outcome for /health
type HealthCheckJob struct {
	checker HealthChecker
	logger  *logger.Logger

	mu        sync.RWMutex
	healthy   bool
	lastCheck time.Time
	lastError string
}

// NewHealthCheckJob creates a new health check job
func NewHealthCheckJob(checker HealthChecker, log *logger.Logger) *HealthCheckJob {
	return &HealthCheckJob{
		checker: checker,
		logger:  log,
	}
}

// Name returns the job name
func (j *HealthCheckJob) Name() string {
	return "source_health"
}

// Schedule returns the cron schedule (every minute)
func (j *HealthCheckJob) Schedule() string {
	return "0 * * * * *"
}

// Run probes the source once
func (j *HealthCheckJob) Run(ctx context.Context) error {
	err := j.checker.Health(ctx)

	j.mu.Lock()
	wasHealthy := j.healthy
	j.healthy = err == nil
	j.lastCheck = time.Now()
	j.lastError = ""
	if err != nil {
		j.lastError = err.Error()
	}
	j.mu.Unlock()

	switch {
	case err != nil && wasHealthy:
		j.logger.WithError(err).Warn("Data source became unhealthy")
	case err == nil && !wasHealthy:
		j.logger.Info("Data source healthy")
	}
	return err
}

// Status returns the last probe outcome. A zero lastCheck means no probe ran.
func (j *HealthCheckJob) Status() (healthy bool, lastCheck time.Time, lastError string) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.healthy, j.lastCheck, j.lastError
}
