package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"TradeReplay/internal/notifier"
	"TradeReplay/internal/scheduler"
	"TradeReplay/internal/session"
)

type runCmd struct {
	now bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run scheduled replays until interrupted" }
func (*runCmd) Usage() string {
	return `tradereplay run [-now]

  Runs the configured replay on schedule.replay_cron and sends each report
  to Telegram, or to the log when no chat is configured.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.now, "now", os.Getenv("RUN_ON_START") == "true", "Run one replay immediately on start")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log.Println("[INFO] TradeReplay starting...")

	cfg, err := loadConfig()
	if err != nil {
		log.Printf("[FATAL] load config: %v", err)
		return subcommands.ExitFailure
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("[FATAL] config validation: %v", err)
		return subcommands.ExitFailure
	}
	job, err := newJob(cfg)
	if err != nil {
		log.Printf("[FATAL] %v", err)
		return subcommands.ExitFailure
	}

	rec := newRecorder(cfg)
	defer rec.Close()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sm := session.NewManager(cfg.StartingCash(), rec)
	sched := scheduler.NewScheduler(ctx, newCollector(cfg, false), sm,
		notifier.NewFormatter(cfg.Portfolio.Currency), newNotifier(cfg), job)
	if err := sched.RegisterAll(cfg.Schedule.ReplayCron); err != nil {
		log.Printf("[FATAL] register cron tasks: %v", err)
		return subcommands.ExitFailure
	}
	sched.Start()
	defer sched.Stop()

	if c.now {
		log.Println("[INFO] run-on-start enabled, executing replay now")
		go func() {
			if _, err := sched.RunNow(ctx); err != nil {
				log.Printf("[ERROR] initial replay: %v", err)
			}
		}()
	}

	log.Println("[INFO] TradeReplay is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	return subcommands.ExitSuccess
}
