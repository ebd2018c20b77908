package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"skm_agent_backend/platform/config"
	"skm_agent_backend/platform/logger"
)

const sweepInterval = "@every 15m"

// ConversationSweeper marks stale bot conversations as abandoned.
type ConversationSweeper interface {
	MarkAbandoned(ctx context.Context, inactiveSince time.Time) ([]uuid.UUID, error)
}

// Worker runs the asynq server together with the periodic task scheduler.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	sweeper   ConversationSweeper
	cfg       config.SchedulerConfig
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sweeper ConversationSweeper, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"default": 1,
		},
	})

	sched := asynq.NewScheduler(opt, &asynq.SchedulerOpts{})
	task, err := NewConversationSweepTask(ConversationSweepPayload{RequestedBy: "scheduler"})
	if err != nil {
		return nil, err
	}
	if _, err := sched.Register(sweepInterval, task); err != nil {
		return nil, fmt.Errorf("register sweep task: %w", err)
	}

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		scheduler: sched,
		mux:       mux,
		sweeper:   sweeper,
		cfg:       cfg,
		log:       log,
	}
	mux.HandleFunc(TaskConversationSweep, w.handleConversationSweep)

	return w, nil
}

func (w *Worker) handleConversationSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseConversationSweepPayload(task)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-w.cfg.GetAbandonAfter())
	ids, err := w.sweeper.MarkAbandoned(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("mark abandoned conversations: %w", err)
	}

	if len(ids) > 0 {
		w.log.Info("swept abandoned conversations",
			"count", len(ids), "cutoff", cutoff, "requested_by", payload.RequestedBy)
	}
	return nil
}

// Run starts the worker and the periodic scheduler, blocking until the
// context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		w.scheduler.Shutdown()
		w.server.Shutdown()
	}()

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.server.Run(w.mux)
	})
	g.Go(func() error {
		return w.scheduler.Run()
	})
	return g.Wait()
}
