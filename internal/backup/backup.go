// Package backup copies the catway registry and the reservation ledger to
// object storage on a cron schedule.
package backup

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/port-russell/marina/internal/importer"
	"github.com/port-russell/marina/internal/storage"
)

// DefaultSchedule runs every night at midnight (seconds field first).
const DefaultSchedule = "0 0 0 * * *"

const runTimeout = 5 * time.Minute

// Exporter produces the JSON documents a snapshot is made of.
type Exporter interface {
	ExportCatways(ctx context.Context) ([]byte, error)
	ExportReservations(ctx context.Context) ([]byte, error)
}

// Job writes one snapshot per run under <prefix>/<timestamp>/.
type Job struct {
	exporter Exporter
	objects  storage.ObjectStorage
	prefix   string
	now      func() time.Time
}

func NewJob(exporter Exporter, objects storage.ObjectStorage, prefix string) *Job {
	return &Job{exporter: exporter, objects: objects, prefix: prefix, now: time.Now}
}

// Run writes catways.json and reservations.json and returns the folder
// they were written to.
func (j *Job) Run(ctx context.Context) (string, error) {
	dir := path.Join(j.prefix, j.now().UTC().Format("20060102T150405Z"))

	catways, err := j.exporter.ExportCatways(ctx)
	if err != nil {
		return "", fmt.Errorf("export catways: %w", err)
	}
	reservations, err := j.exporter.ExportReservations(ctx)
	if err != nil {
		return "", fmt.Errorf("export reservations: %w", err)
	}

	for name, data := range map[string][]byte{
		"catways.json":      catways,
		"reservations.json": reservations,
	} {
		dst := importer.Source{Path: path.Join(dir, name), Object: true}
		if err := importer.Write(ctx, dst, j.objects, data); err != nil {
			return "", fmt.Errorf("write %s: %w", dst.Path, err)
		}
	}
	return dir, nil
}

// Scheduler runs a Job on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	job    *Job
	logger *slog.Logger
}

func NewScheduler(job *Job, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		job:    job,
		logger: logger,
	}
}

// Start registers the job and starts the cron loop. schedule has six
// fields, seconds first, or is a descriptor such as "@daily".
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	s.logger.Info("backup scheduler started", "schedule", schedule, "bucket", s.job.objects.Bucket())
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	started := time.Now()
	dir, err := s.job.Run(ctx)
	if err != nil {
		s.logger.Error("backup failed", "error", err)
		return
	}
	s.logger.Info("backup written", "prefix", dir, "duration", time.Since(started))
}

// Stop prevents further runs and waits for a running backup until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
