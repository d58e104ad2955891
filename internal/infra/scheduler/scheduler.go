package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"availability_watcher/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Accepts standard 5-field specs, an optional leading seconds field and descriptors like @hourly.
var specParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

type WatchScheduler struct {
	cronEngine       *cron.Cron
	watchService     app.WatchService
	logger           logrus.FieldLogger
	cronSpec         string
	runOnStartup     bool
	pastDueTolerance time.Duration
	runTimeout       time.Duration
	entryID          cron.EntryID
	now              func() time.Time

	// running serializes scheduled and startup runs; they share the state blob.
	running sync.Mutex
	startup sync.WaitGroup
}

func NewWatchScheduler(
	watchService app.WatchService,
	logger logrus.FieldLogger,
	cronSpec string, // e.g., "*/30 * * * *" (every 30 minutes)
	location *time.Location,
	runOnStartup bool,
	pastDueTolerance time.Duration,
) *WatchScheduler {
	if location == nil {
		location = time.UTC
	}
	return &WatchScheduler{
		cronEngine: cron.New(
			cron.WithLocation(location),
			cron.WithParser(specParser),
			cron.WithLogger(cronLogger{logger}),
		),
		watchService:     watchService,
		logger:           logger,
		cronSpec:         cronSpec,
		runOnStartup:     runOnStartup,
		pastDueTolerance: pastDueTolerance,
		runTimeout:       5 * time.Minute,
		now:              time.Now,
	}
}

// ValidateSpec reports whether spec can be scheduled.
func ValidateSpec(spec string) error {
	if _, err := specParser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

func (s *WatchScheduler) Start() error {
	s.logger.Info("Starting watch scheduler...")

	id, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		scheduledAt := s.cronEngine.Entry(s.entryID).Prev
		s.logger.Info("Cron job triggered for availability check.")
		s.execute(s.scheduledTrigger(scheduledAt))
	})
	if err != nil {
		return fmt.Errorf("could not add availability cron job: %w", err)
	}
	s.entryID = id

	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{
		"spec": s.cronSpec,
		"next": s.cronEngine.Entry(id).Next.Format(time.RFC3339),
	}).Info("Watch scheduler started.")

	if s.runOnStartup {
		s.logger.Info("Running availability check on startup.")
		trigger := app.Trigger{Source: "startup", ScheduledAt: s.now()}
		s.startup.Add(1)
		go func() {
			defer s.startup.Done()
			s.execute(trigger)
		}()
	}
	return nil
}

// scheduledTrigger marks the run past due when it starts later than the
// tolerance after its scheduled time.
func (s *WatchScheduler) scheduledTrigger(scheduledAt time.Time) app.Trigger {
	now := s.now()
	if scheduledAt.IsZero() {
		scheduledAt = now
	}
	return app.Trigger{
		Source:      "schedule",
		ScheduledAt: scheduledAt,
		PastDue:     s.pastDueTolerance > 0 && now.Sub(scheduledAt) > s.pastDueTolerance,
	}
}

// execute runs the check unless another run is still in progress.
func (s *WatchScheduler) execute(trigger app.Trigger) {
	if !s.running.TryLock() {
		s.logger.WithField("trigger", trigger.Source).Warn("Previous availability check still running. Skipping this trigger.")
		return
	}
	defer s.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	report, err := s.watchService.Run(ctx, trigger)
	if err != nil {
		s.logger.WithError(err).Error("Availability check failed. Will retry on the next trigger.")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"new":       len(report.NewlyFound),
		"persisted": report.Persisted,
	}).Info("Availability check completed.")
}

func (s *WatchScheduler) Stop() {
	s.logger.Info("Stopping watch scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.startup.Wait()           // The startup run is not tracked by cron.
	s.logger.Info("Watch scheduler gracefully stopped.")
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	l logrus.FieldLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.WithFields(kvFields(keysAndValues)).Debug("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.WithFields(kvFields(keysAndValues)).WithError(err).Error("cron: " + msg)
}

func kvFields(kv []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
