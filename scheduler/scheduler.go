// Package scheduler re-runs the scrape on a fixed interval so the output
// files track upstream price changes without manual invocations.
package scheduler

import (
	"context"
	"log"
	"time"
)

// RunFunc executes one full scrape-and-export cycle.
type RunFunc func(ctx context.Context) error

// Scheduler triggers a RunFunc immediately and then on every tick.
// Runs never overlap: the loop is single-threaded by design, matching
// the sequential resource model of the scraper itself.
type Scheduler struct {
	interval time.Duration
	run      RunFunc
	ctx      context.Context
	cancel   context.CancelFunc
}

// New creates a scheduler for the given interval.
func New(interval time.Duration, run RunFunc) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		interval: interval,
		run:      run,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the scheduler loop in a goroutine.
func (s *Scheduler) Start() {
	go s.loop()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.cancel()
	log.Println("Scheduler stopped")
}

func (s *Scheduler) loop() {
	s.runOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *Scheduler) runOnce() {
	started := time.Now()
	if err := s.run(s.ctx); err != nil {
		log.Printf("[warn] scheduled run failed after %v: %v\n", time.Since(started).Round(time.Second), err)
		return
	}
	log.Printf("[info] scheduled run completed in %v\n", time.Since(started).Round(time.Second))
}
