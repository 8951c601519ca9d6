package engine

import (
	"context"
	"log/slog"
	"time"

	"factbot/app/service/dispatch"
	"factbot/app/service/queue"

	"github.com/samber/do"
	"golang.org/x/sync/semaphore"
)

// upper bound on events in flight; users are independent, so one slow
// fact-check must not hold up everyone else behind it
const maxWorkers = 8

type eventProcessor interface {
	ProcessEvent(ctx context.Context, event queue.Event)
}

// Service drains the event queue and hands every event to the dispatcher.
// It is the only consumer of the queue channel.
type Service struct {
	dispatchSvc eventProcessor
	queueSvc    *queue.Service
	workers     *semaphore.Weighted
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		dispatchSvc: do.MustInvoke[*dispatch.Service](di),
		queueSvc:    do.MustInvoke[*queue.Service](di),
		workers:     semaphore.NewWeighted(maxWorkers),
	}, nil
}

func (s *Service) Run(ctx context.Context) {
	slog.Info("Engine started")

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.queueSvc.Channel():
			if !ok {
				return
			}

			if err := s.workers.Acquire(ctx, 1); err != nil {
				return
			}

			go func() {
				defer s.workers.Release(1)

				start := time.Now()
				s.dispatchSvc.ProcessEvent(ctx, event)

				slog.Debug("Processed event",
					"platform", event.Platform,
					"kind", event.Kind,
					"elapsed", time.Since(start),
				)
			}()
		}
	}
}
