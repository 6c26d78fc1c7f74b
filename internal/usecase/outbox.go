package usecase

import (
	"context"
	"time"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"
	"dispatch-console/pkg/logger"
	"dispatch-console/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// Publisher accepts batches of outbound messages without waiting for delivery
type Publisher interface {
	Publish(batch []*entity.OutboundMessage) bool
}

// Outbox queues notification batches and delivers them in the background.
// Messages of one batch are sent concurrently and awaited together; a
// failed send is logged and counted, never retried.
type Outbox struct {
	queue       chan []*entity.OutboundMessage
	sender      repository.NotificationRepository
	concurrency int
	metrics     *metrics.Metrics
	logger      logger.Logger
}

// NewOutbox creates an outbox holding up to size pending batches
func NewOutbox(sender repository.NotificationRepository, size, concurrency int, metrics *metrics.Metrics, logger logger.Logger) *Outbox {
	if size <= 0 {
		size = 16
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Outbox{
		queue:       make(chan []*entity.OutboundMessage, size),
		sender:      sender,
		concurrency: concurrency,
		metrics:     metrics,
		logger:      logger,
	}
}

// Publish enqueues a batch. It never blocks: when the queue is full the
// batch is dropped and false is returned.
func (o *Outbox) Publish(batch []*entity.OutboundMessage) bool {
	if len(batch) == 0 {
		return true
	}
	select {
	case o.queue <- batch:
		return true
	default:
		for _, msg := range batch {
			msg.Status = entity.MessageDropped
		}
		o.metrics.NotificationsDropped.Add(float64(len(batch)))
		o.logger.Warn("Outbox full, dropping notifications", "count", len(batch))
		return false
	}
}

// Pending returns the number of queued batches
func (o *Outbox) Pending() int {
	return len(o.queue)
}

// Run delivers queued batches until ctx is done
func (o *Outbox) Run(ctx context.Context) {
	o.logger.Info("Outbox started", "concurrency", o.concurrency)
	for {
		select {
		case <-ctx.Done():
			o.logger.Info("Outbox stopped", "pending", len(o.queue))
			return
		case batch := <-o.queue:
			o.Dispatch(ctx, batch)
		}
	}
}

// Drain delivers whatever is queued right now and returns
func (o *Outbox) Drain(ctx context.Context) {
	for {
		select {
		case batch := <-o.queue:
			o.Dispatch(ctx, batch)
		default:
			return
		}
	}
}

// Dispatch sends one batch and returns how many messages were accepted
func (o *Outbox) Dispatch(ctx context.Context, batch []*entity.OutboundMessage) int {
	var g errgroup.Group
	g.SetLimit(o.concurrency)

	sent := make([]bool, len(batch))
	for i, msg := range batch {
		g.Go(func() error {
			taskID, err := o.sender.Send(ctx, msg)
			if err != nil {
				msg.Status = entity.MessageFailed
				o.metrics.NotificationsFailed.Inc()
				o.logger.Error("Failed to send notification",
					"transactionID", msg.TransactionID,
					"phone", msg.Phone,
					"error", err)
				return nil
			}
			msg.Status = entity.MessageSent
			msg.SentAt = time.Now()
			sent[i] = true
			o.metrics.NotificationsSent.Inc()
			o.logger.Debug("Notification sent", "transactionID", msg.TransactionID, "taskId", taskID)
			return nil
		})
	}
	_ = g.Wait()

	count := 0
	for _, ok := range sent {
		if ok {
			count++
		}
	}
	return count
}
