package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"MarketPulse/internal/pipeline"
	"MarketPulse/internal/report"
)

// Scheduler runs the pipeline on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Pipeline *pipeline.Pipeline
	Ctx      context.Context
}

// New creates a scheduler around the given pipeline.
func New(ctx context.Context, p *pipeline.Pipeline) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(),
		Pipeline: p,
		Ctx:      ctx,
	}
}

// Register adds the pipeline run at the given cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.runOnce); err != nil {
		return fmt.Errorf("register pipeline task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the pipeline immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() { s.runOnce() }

func (s *Scheduler) runOnce() {
	log.Println("[INFO] running pipeline")
	sum, err := s.Pipeline.Run(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] pipeline run: %v", err)
		return
	}
	log.Printf("[INFO] pipeline finished\n%s", report.FormatRunSummary(sum))
}
