// Package jobs contains the scheduled job implementations.
package jobs

import (
	"context"
	"time"

	"github.com/wonseok/quarters/internal/estimates"
	"github.com/wonseok/quarters/pkg/logger"
)

const refreshTimeout = 5 * time.Minute

// RefreshJob re-fetches the analyst report log and rebuilds the loaders.
// Newly fetched reports only affect queries issued after the swap; tables
// already materialized keep the knowledge they were built with.
type RefreshJob struct {
	service  *estimates.Service
	schedule string
	logger   *logger.Logger
}

// NewRefreshJob creates a refresh job with the given cron schedule.
func NewRefreshJob(service *estimates.Service, schedule string, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		service:  service,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "estimates_refresh"
}

// Schedule returns the cron schedule
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run executes the refresh
func (j *RefreshJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	j.logger.Debug("Starting scheduled report refresh")

	if err := j.service.Reload(ctx); err != nil {
		return err
	}

	st := j.service.Status()
	j.logger.WithFields(map[string]interface{}{
		"reports":  st.Reports,
		"entities": st.Entities,
	}).Info("Report refresh completed")

	return nil
}
