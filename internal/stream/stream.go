// Package stream wraps Redis Streams with consumer-group semantics.
// Payloads are flat field-to-string mappings; delivery is at-least-once
// with acknowledgment only after a message is processed successfully.
package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastcart/fastcart/pkg/metrics"
)

// Client is the slice of the redis client the stream components use.
// Satisfied by *redis.Client.
type Client interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

type Publisher struct {
	client Client
	log    *zap.Logger
}

func NewPublisher(client Client, log *zap.Logger) *Publisher {
	return &Publisher{client: client, log: log}
}

func (p *Publisher) Publish(ctx context.Context, stream string, fields map[string]any) error {
	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		ID:     "*",
		Values: fields,
	}).Result()
	if err != nil {
		return fmt.Errorf("publishing to stream %s: %w", stream, err)
	}

	p.log.Debug("published stream message",
		zap.String("stream", stream),
		zap.String("message_id", id),
	)
	return nil
}

// Handler processes one stream message. A non-nil error leaves the
// message pending in the group for redelivery.
type Handler func(ctx context.Context, fields map[string]string) error

type Consumer struct {
	client   Client
	stream   string
	group    string
	consumer string
	block    time.Duration
	idle     time.Duration
	handler  Handler
	log      *zap.Logger
	metrics  *metrics.Collector
}

func NewConsumer(client Client, stream, group, consumer string, block, idle time.Duration, handler Handler, log *zap.Logger, m *metrics.Collector) *Consumer {
	return &Consumer{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		block:    block,
		idle:     idle,
		handler:  handler,
		log:      log,
		metrics:  m,
	}
}

// Run reads from the stream until ctx is cancelled. Messages this
// consumer received but never acked are re-processed first, then each
// XREADGROUP call blocks for a bounded interval so cancellation is
// observed between reads. Processing errors never stop the loop.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return err
	}

	c.log.Info("stream consumer started",
		zap.String("stream", c.stream),
		zap.String("group", c.group),
		zap.String("consumer", c.consumer),
	)

	if err := c.drainPending(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			c.log.Info("stream consumer stopping", zap.String("stream", c.stream))
			return nil
		default:
		}

		res, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.consumer,
			Streams:  []string{c.stream, ">"},
			Block:    c.block,
		}).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if errors.Is(err, redis.Nil) {
				// Blocking read timed out with nothing to deliver.
				c.backoff(ctx)
				continue
			}
			c.log.Error("stream read failed", zap.String("stream", c.stream), zap.Error(err))
			c.backoff(ctx)
			continue
		}

		for _, s := range res {
			for _, msg := range s.Messages {
				c.process(ctx, msg)
			}
		}
	}
}

// drainPending re-processes messages delivered to this consumer that
// were never acked, walking the pending entries from the oldest id. A
// message whose handler fails again stays pending and is retried on the
// next start; the cursor moves past it so the walk always terminates.
func (c *Consumer) drainPending(ctx context.Context) error {
	cursor := "0"
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		res, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.consumer,
			Streams:  []string{c.stream, cursor},
			Count:    64,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return fmt.Errorf("reading pending entries on stream %s: %w", c.stream, err)
		}

		seen := 0
		for _, s := range res {
			for _, msg := range s.Messages {
				seen++
				cursor = msg.ID
				c.process(ctx, msg)
			}
		}
		if seen == 0 {
			return nil
		}

		c.log.Info("re-processed pending stream messages",
			zap.String("stream", c.stream),
			zap.Int("count", seen),
		)
	}
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	fields := stringValues(msg.Values)

	if err := c.handler(ctx, fields); err != nil {
		// Left unacked: re-processed from the pending list on the next
		// consumer start.
		c.log.Error("stream message processing failed",
			zap.String("stream", c.stream),
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
		if c.metrics != nil {
			c.metrics.StreamErrorsTotal.WithLabelValues(c.stream).Inc()
		}
		return
	}

	if err := c.client.XAck(ctx, c.stream, c.group, msg.ID).Err(); err != nil {
		c.log.Warn("stream ack failed",
			zap.String("stream", c.stream),
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
	}
	if c.metrics != nil {
		c.metrics.StreamMessagesTotal.WithLabelValues(c.stream).Inc()
	}
}

// ensureGroup creates the consumer group, treating "already exists" as
// success so every replica can bootstrap unconditionally.
func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("creating group %s on stream %s: %w", c.group, c.stream, err)
	}
	if err != nil {
		c.log.Debug("consumer group already exists",
			zap.String("stream", c.stream),
			zap.String("group", c.group),
		)
	}
	return nil
}

func (c *Consumer) backoff(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(c.idle):
	}
}

func stringValues(values map[string]any) map[string]string {
	fields := make(map[string]string, len(values))
	for k, v := range values {
		if s, ok := v.(string); ok {
			fields[k] = s
		} else {
			fields[k] = fmt.Sprint(v)
		}
	}
	return fields
}
