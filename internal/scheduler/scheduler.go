// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/gameatlas/internal/store"
)

// DefaultRetentionSchedule runs the event pruning once a day.
const DefaultRetentionSchedule = "@daily"

// Scheduler handles scheduled tasks like pruning the event log.
type Scheduler struct {
	db        *sql.DB
	cron      *cron.Cron
	logger    *slog.Logger
	retention time.Duration
	now       func() time.Time
}

// New creates a scheduler that keeps events for retentionDays.
func New(db *sql.DB, logger *slog.Logger, retentionDays int) *Scheduler {
	return &Scheduler{
		db:        db,
		cron:      cron.New(),
		logger:    logger,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// Start registers the retention job and starts the cron runner.
func (s *Scheduler) Start() error {
	return s.StartWithSchedule(DefaultRetentionSchedule)
}

// StartWithSchedule is Start with a custom cron expression.
func (s *Scheduler) StartWithSchedule(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if _, err := s.PruneEvents(context.Background()); err != nil {
			s.logger.Error("failed to prune event log", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling event pruning: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// PruneEvents deletes events older than the retention window.
func (s *Scheduler) PruneEvents(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)

	removed, err := store.New(s.db).DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.logger.Info("pruned event log", "removed", removed, "cutoff", cutoff.Format(time.RFC3339))
	}
	return removed, nil
}
