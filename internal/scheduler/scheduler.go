package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is one unit of periodic maintenance.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler runs its tasks on every tick until the context ends.
type Scheduler struct {
	Tasks    []Task
	Interval time.Duration
	Log      *slog.Logger

	mu      sync.Mutex
	running map[string]bool
	wg      sync.WaitGroup
}

func (s *Scheduler) Run(ctx context.Context) error {
	if s.Log == nil {
		s.Log = slog.Default()
	}
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	// kick immediately
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

// tick starts every task that is not still running from an earlier tick.
func (s *Scheduler) tick(ctx context.Context) {
	for _, task := range s.Tasks {
		if !s.claim(task.Name) {
			s.Log.Debug("scheduler: task still running", "task", task.Name)
			continue
		}
		task := task
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.release(task.Name)
			start := time.Now()
			if err := task.Run(ctx); err != nil {
				s.Log.Warn("scheduler: task failed", "task", task.Name, "error", err)
				return
			}
			s.Log.Debug("scheduler: task done", "task", task.Name, "took", time.Since(start))
		}()
	}
}

func (s *Scheduler) claim(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running == nil {
		s.running = map[string]bool{}
	}
	if s.running[name] {
		return false
	}
	s.running[name] = true
	return true
}

func (s *Scheduler) release(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, name)
}
