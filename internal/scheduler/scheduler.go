package scheduler

import (
	"context"
	"fmt"
	"html"
	"log"
	"time"

	"TradeReplay/internal/collector"
	"TradeReplay/internal/engine"
	"TradeReplay/internal/model"
	"TradeReplay/internal/notifier"
	"TradeReplay/internal/session"

	"github.com/robfig/cron/v3"
)

// Job describes the replay to run on each tick.
type Job struct {
	Symbol string
	Start  time.Time
	End    time.Time
	Train  bool
}

// Scheduler runs the replay pipeline on a cron schedule.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Session   *session.Manager
	Formatter *notifier.Formatter
	Notifier  notifier.Notifier
	Job       Job
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, sm *session.Manager, f *notifier.Formatter, n notifier.Notifier, job Job) *Scheduler {
	if n == nil {
		n = notifier.LogNotifier{}
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		Collector: col,
		Session:   sm,
		Formatter: f,
		Notifier:  n,
		Job:       job,
		Ctx:       ctx,
	}
}

// RegisterAll registers the replay task.
func (s *Scheduler) RegisterAll(replayCron string) error {
	if _, err := s.Cron.AddFunc(replayCron, s.replayTask); err != nil {
		return fmt.Errorf("register replay task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running replay to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the pipeline once: collect, start a fresh session, replay
// the predictions and send the report.
func (s *Scheduler) RunNow(ctx context.Context) (*engine.Result, error) {
	log.Printf("[INFO] running replay for %s %s..%s", s.Job.Symbol,
		s.Job.Start.Format(model.DateLayout), s.Job.End.Format(model.DateLayout))

	batch, err := s.Collector.Collect(ctx, s.Job.Symbol, s.Job.Start, s.Job.End, s.Job.Train)
	if err != nil {
		s.trySend(ctx, fmt.Sprintf("❌ replay %s failed: %s", html.EscapeString(s.Job.Symbol), html.EscapeString(err.Error())))
		return nil, err
	}

	res, st := s.Session.Run(batch.Series, batch.Predictions)
	s.trySend(ctx, s.Formatter.FormatReplayReport(&res, &st))
	return &res, nil
}

func (s *Scheduler) replayTask() {
	if _, err := s.RunNow(s.Ctx); err != nil {
		log.Printf("[ERROR] scheduled replay: %v", err)
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
