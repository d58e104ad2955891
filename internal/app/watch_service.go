// internal/app/watch_service.go
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"availability_watcher/internal/domain/availability"

	"github.com/sirupsen/logrus"
)

// Trigger describes why a run started.
type Trigger struct {
	Source      string // "schedule", "startup" or "manual"
	ScheduledAt time.Time
	PastDue     bool
}

// RunReport summarizes a completed run.
type RunReport struct {
	Now        time.Time
	Observed   int
	NewlyFound []availability.Date
	Pruned     []availability.Date
	Known      int
	Persisted  bool
}

// WatchService runs one reconciliation cycle.
type WatchService interface {
	Run(ctx context.Context, trigger Trigger) (*RunReport, error)
}

// WatchServiceImpl implements the WatchService interface.
type WatchServiceImpl struct {
	repo     availability.Repository
	source   availability.Source
	logger   logrus.FieldLogger
	location *time.Location
	now      func() time.Time
}

func NewWatchServiceImpl(
	repo availability.Repository,
	source availability.Source,
	logger logrus.FieldLogger,
	location *time.Location,
) *WatchServiceImpl {
	if location == nil {
		location = time.UTC
	}
	return &WatchServiceImpl{
		repo:     repo,
		source:   source,
		logger:   logger,
		location: location,
		now:      time.Now,
	}
}

// Run loads the known dates, fetches the current ones, logs what is new and
// persists the updated set. Any error aborts the run before anything is written.
func (s *WatchServiceImpl) Run(ctx context.Context, trigger Trigger) (*RunReport, error) {
	now := s.now() // sampled once; every comparison in this run uses it
	log := s.logger.WithField("run_at", now.Format(time.RFC3339))

	log.WithField("trigger", trigger.Source).Info("Run start: checking for new available dates.")
	if trigger.PastDue {
		log.WithField("scheduled_at", trigger.ScheduledAt.Format(time.RFC3339)).Warn("Trigger is past due.")
	}

	known, found, err := s.repo.Load(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load known dates.")
		return nil, fmt.Errorf("failed to load known dates: %w", err)
	}
	if !found {
		log.Warn("No prior state found. Starting with an empty set of known dates.")
	} else {
		log.WithField("known", known.Len()).Debug("Loaded known dates.")
	}

	raw, err := s.source.AvailableDates(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to fetch available dates.")
		return nil, fmt.Errorf("failed to fetch available dates: %w", err)
	}

	res, err := availability.Reconcile(known, raw, now, s.location)
	if err != nil {
		log.WithError(err).Error("Received a date that could not be parsed. Aborting without saving.")
		return nil, fmt.Errorf("failed to reconcile dates: %w", err)
	}

	report := &RunReport{
		Now:        now,
		Observed:   len(res.Observed),
		NewlyFound: res.NewlyFound,
		Pruned:     res.Pruned,
		Known:      res.Updated.Len(),
	}

	log.WithFields(logrus.Fields{
		"received": len(raw),
		"observed": len(res.Observed),
	}).Info("Received available dates. Checking for new entries...")

	if !res.HasNew() {
		log.Info("Did not find any new dates.")
	}
	for _, d := range res.NewlyFound {
		log.WithField("date", d.String()).Info("Found new available date.")
	}
	if len(res.Pruned) > 0 {
		log.WithFields(logrus.Fields{
			"pruned": len(res.Pruned),
			"dates":  strings.Join(availability.FormatDates(res.Pruned), ", "),
		}).Info("Dropping past dates from known dates.")
	}

	if !res.ShouldPersist() {
		return report, nil
	}

	if err := s.repo.Save(ctx, res.Updated); err != nil {
		log.WithError(err).Error("Failed to persist known dates.")
		return nil, fmt.Errorf("failed to persist known dates: %w", err)
	}
	report.Persisted = true

	log.WithFields(logrus.Fields{
		"new":   len(res.NewlyFound),
		"known": res.Updated.Len(),
		"dates": quoteAll(res.Updated.Strings()),
	}).Info("Persisted known dates.")

	return report, nil
}

func quoteAll(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = `"` + s + `"`
	}
	return strings.Join(quoted, ", ")
}
