package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jordanlanch/leadboard/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DefaultStatsSchedule refreshes lead gauges every five minutes
const DefaultStatsSchedule = "@every 5m"

const statsJobTimeout = time.Minute

// CronManager manages scheduled jobs
type CronManager struct {
	cron     *cron.Cron
	monitor  *LeadMonitor
	schedule string
	logger   logger.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(monitor *LeadMonitor, schedule string, log logger.Logger) *CronManager {
	if log == nil {
		log = logger.Nop()
	}
	if schedule == "" {
		schedule = DefaultStatsSchedule
	}
	return &CronManager{
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
		monitor:  monitor,
		schedule: schedule,
		logger:   log.With("component", "cron"),
	}
}

// SetupJobs registers all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	if _, err := cm.cron.AddFunc(cm.schedule, cm.runStats); err != nil {
		return fmt.Errorf("invalid stats schedule %q: %w", cm.schedule, err)
	}
	cm.logger.Info("cron jobs configured", "stats_schedule", cm.schedule)
	return nil
}

func (cm *CronManager) runStats() {
	ctx, cancel := context.WithTimeout(context.Background(), statsJobTimeout)
	defer cancel()

	if _, err := cm.monitor.Collect(ctx); err != nil {
		cm.logger.Error("lead stats job failed", "error", err)
	}
}

// Start runs the scheduler in the background, collecting once immediately
func (cm *CronManager) Start() {
	go cm.runStats()
	cm.cron.Start()
	cm.logger.Info("cron scheduler started")
}

// Stop stops the scheduler and waits for running jobs until ctx is done
func (cm *CronManager) Stop(ctx context.Context) {
	select {
	case <-cm.cron.Stop().Done():
	case <-ctx.Done():
	}
	cm.logger.Info("cron scheduler stopped")
}
