// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultJobTimeout bounds a single job run.
const DefaultJobTimeout = 5 * time.Minute

// JobFunc is the body of a scheduled job.
type JobFunc func(ctx context.Context) error

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name        string
	Description string
	Schedule    string
	LastRun     time.Time
	LastError   string
	NextRun     time.Time
}

type registeredJob struct {
	name        string
	description string
	schedule    string
	entryID     cron.EntryID
	fn          JobFunc
	lastRun     time.Time
	lastErr     error
}

// Scheduler runs registered jobs with robfig/cron.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration

	mu   sync.RWMutex
	jobs map[string]*registeredJob
}

// New creates a new scheduler instance.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:    cron.New(),
		logger:  logger,
		timeout: DefaultJobTimeout,
		jobs:    make(map[string]*registeredJob),
	}
}

// Register adds a job under a unique name. schedule uses the standard
// five-field cron syntax or descriptors such as "@daily".
func (s *Scheduler) Register(name, description, schedule string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	job := &registeredJob{
		name:        name,
		description: description,
		schedule:    schedule,
		fn:          fn,
	}
	entryID, err := s.cron.AddFunc(schedule, func() { s.run(job) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %q: %w", schedule, name, err)
	}
	job.entryID = entryID
	s.jobs[name] = job

	s.logger.Info("job registered", "job", name, "schedule", schedule)
	return nil
}

// run executes job and records the outcome.
func (s *Scheduler) run(job *registeredJob) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	err := job.fn(ctx)

	s.mu.Lock()
	job.lastRun = start
	job.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduled job failed", "job", job.name, "error", err, "duration", time.Since(start))
		return
	}
	s.logger.Debug("scheduled job finished", "job", job.name, "duration", time.Since(start))
}

// TriggerNow runs a job synchronously outside its schedule.
func (s *Scheduler) TriggerNow(name string) error {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %q not found", name)
	}

	s.run(job)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return job.lastErr
}

// List returns all registered jobs sorted by name.
func (s *Scheduler) List() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, job := range s.jobs {
		info := JobInfo{
			Name:        job.name,
			Description: job.description,
			Schedule:    job.schedule,
			LastRun:     job.lastRun,
			NextRun:     s.cron.Entry(job.entryID).Next,
		}
		if job.lastErr != nil {
			info.LastError = job.lastErr.Error()
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Start begins running the registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
