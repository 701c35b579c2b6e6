package services

import (
	"context"
	"errors"
	"time"

	"eventify/internal/metrics"
	"eventify/internal/queue"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DeliveryDispatcher drains the ticket queue with a fixed pool of workers.
// Each job gets exactly one send attempt; failures are logged and counted.
type DeliveryDispatcher struct {
	queue       queue.Queue
	renderer    *TicketEmailRenderer
	mailer      Mailer
	workers     int
	sendTimeout time.Duration
	logger      zerolog.Logger
}

func NewDeliveryDispatcher(q queue.Queue, renderer *TicketEmailRenderer, mailer Mailer, workers int, logger zerolog.Logger) *DeliveryDispatcher {
	if workers < 1 {
		workers = 1
	}
	return &DeliveryDispatcher{
		queue:       q,
		renderer:    renderer,
		mailer:      mailer,
		workers:     workers,
		sendTimeout: 30 * time.Second,
		logger:      logger.With().Str("component", "ticket_delivery").Logger(),
	}
}

// Run blocks until the queue is closed and drained. Cancelling ctx stops
// the workers early; jobs an in-memory queue still holds are then dropped
// and counted as such.
func (d *DeliveryDispatcher) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < d.workers; i++ {
		worker := i
		g.Go(func() error {
			return d.work(gctx, worker)
		})
	}
	d.logger.Info().Int("workers", d.workers).Msg("ticket delivery workers started")

	err := g.Wait()
	if ctx.Err() != nil {
		d.dropPending()
	}
	return err
}

func (d *DeliveryDispatcher) dropPending() {
	q, ok := d.queue.(queue.Discarder)
	if !ok {
		return
	}
	if n := q.Discard(); n > 0 {
		metrics.TicketDeliveriesTotal.WithLabelValues("dropped").Add(float64(n))
		d.logger.Warn().Int("dropped", n).Msg("ticket deliveries abandoned at shutdown")
	}
}

func (d *DeliveryDispatcher) work(ctx context.Context, worker int) error {
	for {
		job, err := d.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, queue.ErrQueueClosed) {
				return nil
			}
			d.logger.Error().Err(err).Int("worker", worker).Msg("dequeue failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		// an in-flight send outlives shutdown up to sendTimeout
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.sendTimeout)
		_ = d.Deliver(sendCtx, job)
		cancel()
	}
}

// Deliver renders and sends one ticket. The returned error is informational;
// no caller propagates it.
func (d *DeliveryDispatcher) Deliver(ctx context.Context, job *queue.Job) error {
	start := time.Now()
	defer func() {
		metrics.TicketDeliveryDuration.Observe(time.Since(start).Seconds())
	}()

	delivery := job.Delivery
	log := d.logger.With().
		Str("job_id", job.ID).
		Int("event_id", delivery.EventID).
		Str("participant_id", delivery.ParticipantID).
		Logger()

	msg, err := d.renderer.Render(delivery)
	if err != nil {
		metrics.TicketDeliveriesTotal.WithLabelValues("failed").Inc()
		log.Error().Err(err).Msg("failed to render ticket email")
		return err
	}

	if err := d.mailer.Send(ctx, msg); err != nil {
		metrics.TicketDeliveriesTotal.WithLabelValues("failed").Inc()
		log.Error().Err(err).Str("to", delivery.ParticipantEmail).Msg("failed to send ticket email")
		return err
	}

	metrics.TicketDeliveriesTotal.WithLabelValues("sent").Inc()
	log.Info().Dur("latency", time.Since(job.EnqueuedAt)).Msg("ticket email sent")
	return nil
}
