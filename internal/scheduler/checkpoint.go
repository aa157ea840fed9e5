package scheduler // import "github.com/Xunop/e-editor/internal/scheduler"

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Xunop/e-editor/internal/log"
)

// Checkpointer truncates the write-ahead log of a database.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule reports whether spec is a five field cron expression.
func ValidateSchedule(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return errors.Wrapf(err, "invalid cron schedule %q", spec)
	}
	return nil
}

// CheckpointScheduler runs WAL checkpoints on a cron schedule.
type CheckpointScheduler struct {
	db Checkpointer

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

func NewCheckpointScheduler(db Checkpointer) *CheckpointScheduler {
	return &CheckpointScheduler{
		db:   db,
		cron: cron.New(cron.WithParser(parser)),
	}
}

// Start schedules checkpoints. An empty schedule leaves the scheduler off.
// The scheduler stops when ctx is done.
func (s *CheckpointScheduler) Start(ctx context.Context, schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if schedule == "" {
		log.Info("Checkpoint scheduler: disabled")
		return nil
	}
	if err := ValidateSchedule(schedule); err != nil {
		return err
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		if err := s.RunNow(); err != nil {
			log.Error("Checkpoint failed", zap.Error(err))
		}
	})
	if err != nil {
		return errors.Wrap(err, "failed to schedule checkpoint")
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	log.Info("Checkpoint scheduler: started", zap.String("schedule", schedule))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for a running checkpoint and stops the scheduler.
func (s *CheckpointScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron.Remove(s.entryID)

	s.isRunning = false
	log.Info("Checkpoint scheduler: stopped")
}

// RunNow runs a checkpoint immediately.
func (s *CheckpointScheduler) RunNow() error {
	start := time.Now()
	if err := s.db.Checkpoint(context.Background()); err != nil {
		return err
	}
	log.Debug("Checkpoint done", zap.Duration("duration", time.Since(start)))
	return nil
}

func (s *CheckpointScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next checkpoint is due, nil when stopped.
func (s *CheckpointScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}
