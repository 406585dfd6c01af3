package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/convy/flow/pkg/clients"
	"github.com/convy/flow/pkg/engine"
	"github.com/convy/flow/pkg/eventbus"
	"github.com/convy/flow/pkg/persistence"
	"github.com/convy/flow/pkg/registry"
	"github.com/convy/flow/pkg/workflow"
)

// Worker consumes inbound conversation events from the bus, drives the
// runner, and schedules the wait-timeout sweep.
type Worker struct {
	id            string
	logger        *slog.Logger
	eventBus      eventbus.EventBus
	runner        *workflow.Runner
	scheduler     *cron.Cron
	sweepSchedule string
}

func NewWorker(id string, logger *slog.Logger, persist persistence.Persistence, eventBus eventbus.EventBus, sweepSchedule string) *Worker {
	reg := registry.NewRegistry(logger)
	registry.RegisterDefaults(reg, registry.Dependencies{
		Messenger: clients.NewLogMessenger(logger),
		AI:        clients.NewLogAIClient(logger),
		CRM:       clients.NewLogCRMService(logger),
		Billing:   clients.NewLogBillingService(logger),
		Notifier:  clients.NewLogNotifier(logger),
	})

	eng := engine.NewEngine(logger, reg, persist, eventBus)
	matcher := workflow.NewMatcher(logger, persist)
	runner := workflow.NewRunner(logger, persist, eng, matcher)

	return &Worker{
		id:            id,
		logger:        logger,
		eventBus:      eventBus,
		runner:        runner,
		scheduler:     cron.New(),
		sweepSchedule: sweepSchedule,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	w.eventBus.HandleInbound(w.runner.HandleInbound)

	if err := w.eventBus.Subscribe(ctx); err != nil {
		return err
	}

	if _, err := w.scheduler.AddFunc(w.sweepSchedule, func() {
		if err := w.runner.SweepTimeouts(ctx, time.Now().UTC()); err != nil {
			w.logger.ErrorContext(ctx, "Timeout sweep failed", "error", err)
		}
	}); err != nil {
		return err
	}

	w.scheduler.Start()

	w.logger.InfoContext(ctx, "Worker started", "sweep_schedule", w.sweepSchedule)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	w.logger.InfoContext(ctx, "Shutting down worker")

	stopped := w.scheduler.Stop()
	<-stopped.Done()

	return nil
}
