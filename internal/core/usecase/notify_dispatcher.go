package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
	"github.com/nmadhukar/workforcenexus/internal/core/ports"
	"github.com/nmadhukar/workforcenexus/internal/log"
	"github.com/nmadhukar/workforcenexus/internal/metrics"
)

// NotifyDispatcher drains the outbox on an interval and hands events to
// the configured publisher. Failures are retried with square backoff and
// dead-lettered after maxRetry attempts.
type NotifyDispatcher struct {
	repo      ports.OutboxRepository
	publisher ports.EventPublisher
	interval  time.Duration
	batchSize int
	maxRetry  int

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	successTotal atomic.Int64
	failureTotal atomic.Int64
	deadTotal    atomic.Int64
}

type NotifyDispatcherMetrics struct {
	SuccessTotal int64
	FailureTotal int64
	DeadTotal    int64
}

func NewNotifyDispatcher(repo ports.OutboxRepository, publisher ports.EventPublisher, interval time.Duration, batchSize int) *NotifyDispatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &NotifyDispatcher{repo: repo, publisher: publisher, interval: interval, batchSize: batchSize, maxRetry: 5}
}

func (d *NotifyDispatcher) Start(parent context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel
	d.wg.Add(1)
	go d.loop(ctx)
}

func (d *NotifyDispatcher) Close() error {
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	d.wg.Wait()
	return nil
}

func (d *NotifyDispatcher) loop(ctx context.Context) {
	defer d.wg.Done()
	logger := log.WithComponent("notify-dispatcher")
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if err := d.DispatchBatch(ctx); err != nil {
			logger.Error().Err(err).Msg("dispatch batch")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// DispatchBatch processes one batch of pending events. Exported so the
// scheduler and tests can force a drain.
func (d *NotifyDispatcher) DispatchBatch(ctx context.Context) error {
	events, err := d.repo.FetchPending(ctx, d.batchSize)
	if err != nil {
		return err
	}

	for _, event := range events {
		var envelope domain.EventEnvelope
		if err := json.Unmarshal(event.PayloadJSON, &envelope); err != nil {
			if markErr := d.markFailure(ctx, event, fmt.Sprintf("decode payload: %v", err)); markErr != nil {
				return markErr
			}
			d.failureTotal.Add(1)
			metrics.NotificationsDispatchedTotal.WithLabelValues("failure").Inc()
			continue
		}

		if err := d.publisher.Publish(ctx, event.Topic, envelope); err != nil {
			if markErr := d.markFailure(ctx, event, err.Error()); markErr != nil {
				return markErr
			}
			d.failureTotal.Add(1)
			metrics.NotificationsDispatchedTotal.WithLabelValues("failure").Inc()
			continue
		}

		if err := d.repo.MarkDispatched(ctx, event.ID); err != nil {
			return err
		}
		d.successTotal.Add(1)
		metrics.NotificationsDispatchedTotal.WithLabelValues("success").Inc()
	}

	return nil
}

func (d *NotifyDispatcher) markFailure(ctx context.Context, event domain.OutboxEvent, errMsg string) error {
	attempts := event.Attempts + 1
	if attempts >= d.maxRetry {
		if err := d.repo.MarkDead(ctx, event.ID, attempts, errMsg); err != nil {
			return err
		}
		d.deadTotal.Add(1)
		metrics.NotificationsDispatchedTotal.WithLabelValues("dead").Inc()
		return nil
	}
	next := time.Now().UTC().Add(backoffDuration(attempts))
	return d.repo.MarkFailed(ctx, event.ID, attempts, next, errMsg)
}

func (d *NotifyDispatcher) Metrics() NotifyDispatcherMetrics {
	return NotifyDispatcherMetrics{
		SuccessTotal: d.successTotal.Load(),
		FailureTotal: d.failureTotal.Load(),
		DeadTotal:    d.deadTotal.Load(),
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt <= 1 {
		return 1 * time.Second
	}
	d := time.Duration(attempt*attempt) * time.Second
	if d > 5*time.Minute {
		return 5 * time.Minute
	}
	return d
}
