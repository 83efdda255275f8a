package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastcart/fastcart/internal/domain/order"
	"github.com/fastcart/fastcart/internal/stream"
	"github.com/fastcart/fastcart/pkg/metrics"
)

// EventPublisher pushes a flat payload onto a named stream.
// Satisfied by *stream.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, stream string, fields map[string]any) error
}

// OrderProcessor completes pending orders off the request path. Jobs go
// through a bounded buffer to a pool of workers, so the per-order
// processing delay does not serialize completions; if the buffer is full
// the job is dropped with a warning and the order stays pending.
type OrderProcessor struct {
	repo       order.Repository
	publisher  EventPublisher
	streamName string
	delay      time.Duration
	log        *zap.Logger
	metrics    *metrics.Collector

	jobs chan int64
	wg   sync.WaitGroup
	done chan struct{}
}

func NewOrderProcessor(repo order.Repository, publisher EventPublisher, streamName string, delay time.Duration, bufferSize, workers int, log *zap.Logger, m *metrics.Collector) *OrderProcessor {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	if workers <= 0 {
		workers = 8
	}
	p := &OrderProcessor{
		repo:       repo,
		publisher:  publisher,
		streamName: streamName,
		delay:      delay,
		log:        log,
		metrics:    m,
		jobs:       make(chan int64, bufferSize),
		done:       make(chan struct{}),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	go func() {
		p.wg.Wait()
		close(p.done)
	}()
	return p
}

// Enqueue submits an order for completion. Returns false when the
// buffer is full.
func (p *OrderProcessor) Enqueue(orderID int64) bool {
	select {
	case p.jobs <- orderID:
		if p.metrics != nil {
			p.metrics.ProcessorQueueDepth.Set(float64(len(p.jobs)))
		}
		return true
	default:
		if p.metrics != nil {
			p.metrics.ProcessorDroppedTotal.Inc()
		}
		return false
	}
}

// Shutdown stops accepting jobs and waits up to timeout for the workers
// to drain.
func (p *OrderProcessor) Shutdown(timeout time.Duration) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	close(p.jobs)
	select {
	case <-p.done:
	case <-time.After(timeout):
		p.log.Warn("order processor shutdown timed out; queued completions remain pending")
	}
}

func (p *OrderProcessor) worker() {
	defer p.wg.Done()
	for orderID := range p.jobs {
		if p.metrics != nil {
			p.metrics.ProcessorQueueDepth.Set(float64(len(p.jobs)))
		}
		p.complete(orderID)
	}
}

// complete re-fetches the order in a fresh context, marks it completed,
// and publishes the completion event. An order deleted before the worker
// gets to it is logged and never published.
func (p *OrderProcessor) complete(orderID int64) {
	// Simulated payment-processing latency.
	time.Sleep(p.delay)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	o, err := p.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			p.log.Warn("order deleted before completion, skipping",
				zap.Int64("order_id", orderID),
			)
			return
		}
		p.log.Error("failed to fetch order for completion",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		return
	}

	if !o.Status.CanTransitionTo(order.StatusCompleted) {
		p.log.Warn("order not completable, skipping",
			zap.Int64("order_id", orderID),
			zap.String("status", string(o.Status)),
		)
		return
	}

	if err := p.repo.UpdateStatus(ctx, orderID, order.StatusCompleted); err != nil {
		p.log.Error("failed to complete order",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		return
	}

	ev := stream.OrderEvent{
		OrderID:   o.ID,
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
	}
	if err := p.publisher.Publish(ctx, p.streamName, ev.Fields()); err != nil {
		// Status already committed; the stock decrement is lost until
		// the event is re-driven by hand.
		p.log.Error("failed to publish order completed event",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		return
	}

	if p.metrics != nil {
		p.metrics.OrdersCompletedTotal.Inc()
	}
	p.log.Info("order completed",
		zap.Int64("order_id", orderID),
		zap.String("product_id", o.ProductID),
	)
}
