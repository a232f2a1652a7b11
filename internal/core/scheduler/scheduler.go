package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/utils"
)

// JobFunc is one scheduled unit of work
type JobFunc func(ctx context.Context) error

// Scheduler runs named jobs on cron expressions (with a seconds field)
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]cron.EntryID
	funcs   map[string]JobFunc
	jobsMux sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a new scheduler. Overlapping runs of the same job are skipped.
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		jobs:   make(map[string]cron.EntryID),
		funcs:  make(map[string]JobFunc),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	log.Println("⏰ Starting scheduler...")
	s.cron.Start()
	log.Println("✅ Scheduler started")
}

// Stop cancels running jobs and waits for them to return
func (s *Scheduler) Stop() {
	log.Println("⏰ Stopping scheduler...")
	s.cancel()
	<-s.cron.Stop().Done()
	log.Println("✅ Scheduler stopped")
}

// Add registers a job, replacing any job with the same name
func (s *Scheduler) Add(name, spec string, job JobFunc) error {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
	}

	entryID, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("failed to add cron job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	s.funcs[name] = job
	log.Printf("   ✅ Scheduled job %s: %s", name, spec)

	return nil
}

// Remove unregisters a job
func (s *Scheduler) Remove(name string) {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
		delete(s.funcs, name)
	}
}

// RunNow runs a registered job synchronously, outside its schedule
func (s *Scheduler) RunNow(name string) error {
	s.jobsMux.RLock()
	job, ok := s.funcs[name]
	s.jobsMux.RUnlock()
	if !ok {
		return fmt.Errorf("job not found: %s", name)
	}
	return s.run(name, job)
}

// Jobs returns the registered job names
func (s *Scheduler) Jobs() []string {
	s.jobsMux.RLock()
	defer s.jobsMux.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// Next returns the next activation time of a job
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.jobsMux.RLock()
	entryID, ok := s.jobs[name]
	s.jobsMux.RUnlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(entryID).Next, true
}

func (s *Scheduler) run(name string, job JobFunc) error {
	start := time.Now()
	err := job(s.ctx)
	fields := map[string]interface{}{
		"job":      name,
		"duration": time.Since(start).String(),
	}
	if err != nil {
		utils.LogError("Scheduled job failed", err, fields)
		return err
	}
	utils.LogInfo("Scheduled job finished", fields)
	return nil
}
