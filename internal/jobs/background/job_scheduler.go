package background

import (
	"context"
	"time"

	"github.com/hudsonargollo/agend4i-sub002/internal/jobs"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// JobScheduler runs the periodic booking maintenance sweeps.
type JobScheduler struct {
	scheduler   gocron.Scheduler
	maintenance *jobs.BookingMaintenance
	logger      *zap.Logger
}

func NewJobScheduler(maintenance *jobs.BookingMaintenance, logger *zap.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:   scheduler,
		maintenance: maintenance,
		logger:      logger,
	}
	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) registerJobs() error {
	// Stale pending sweep - every 5 minutes
	if _, err := js.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(func() {
			_ = js.maintenance.ExpireStalePending(context.Background())
		}),
		gocron.WithName("expire-stale-pending"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return err
	}

	// Completion sweep - every 15 minutes
	if _, err := js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(func() {
			_ = js.maintenance.CompletePastConfirmed(context.Background())
		}),
		gocron.WithName("complete-past-confirmed"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return err
	}

	return nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}
