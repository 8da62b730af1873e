package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/oe/sunrain-sub002/content-fetcher/internal/config"
	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
)

func newScheduleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the configured fetch jobs on their cron schedule",
		Long: `Runs every entry of the schedule config list, for example

  schedule:
    - spec: "0 3 * * *"
      type: all
    - spec: "@daily"
      type: quotes

until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			defer func() { _ = d.log.Sync() }()

			d.serveMetrics(cmd.Context())
			return runSchedule(cmd.Context(), d)
		},
	}
}

// scheduledJob is one cron entry bound to its fetch.
type scheduledJob struct {
	spec string
	run  func()
}

// fetchFunc runs one fetch pass.
type fetchFunc func(ctx context.Context, d *deps, opts fetchOptions) error

func runSchedule(ctx context.Context, d *deps) error {
	if len(d.cfg.Schedule) == 0 {
		return errors.New("no schedule entries configured")
	}
	jobs, err := scheduledJobs(ctx, d, runFetch)
	if err != nil {
		return err
	}

	c := cron.New(
		cron.WithParser(config.CronParser()),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	for _, job := range jobs {
		if _, err = c.AddFunc(job.spec, job.run); err != nil {
			return fmt.Errorf("schedule %q: %w", job.spec, err)
		}
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	d.log.Info("Scheduler stopped")
	return nil
}

// scheduledJobs binds each schedule entry to fetch. Runs of different
// entries are serialized because every run rewrites the shared manifest.
func scheduledJobs(ctx context.Context, d *deps, fetch fetchFunc) ([]scheduledJob, error) {
	var mu sync.Mutex
	jobs := make([]scheduledJob, 0, len(d.cfg.Schedule))
	for _, entry := range d.cfg.Schedule {
		types, err := parseTypes(entry.Type)
		if err != nil {
			return nil, err
		}
		log := d.log.With(infralogger.String("spec", entry.Spec), infralogger.String("job_type", entry.Type))
		jobs = append(jobs, scheduledJob{
			spec: entry.Spec,
			run: func() {
				mu.Lock()
				defer mu.Unlock()

				log.Info("Scheduled fetch starting")
				if runErr := fetch(ctx, d, fetchOptions{types: types}); runErr != nil {
					log.Error("Scheduled fetch failed", infralogger.Error(runErr))
					return
				}
				log.Info("Scheduled fetch finished")
			},
		})
		log.Info("Job scheduled")
	}
	return jobs, nil
}
