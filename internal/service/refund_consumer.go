package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastcart/fastcart/internal/domain/order"
	"github.com/fastcart/fastcart/internal/stream"
	"github.com/fastcart/fastcart/pkg/metrics"
)

// NewRefundHandler returns the handler for the refund stream: mark the
// referenced order refunded. An unknown order id is logged and dropped
// rather than redelivered forever.
func NewRefundHandler(orders order.Repository, log *zap.Logger, m *metrics.Collector) stream.Handler {
	return func(ctx context.Context, fields map[string]string) error {
		ev, err := stream.ParseOrderEvent(fields)
		if err != nil {
			return fmt.Errorf("refund event: %w", err)
		}

		o, err := orders.GetByID(ctx, ev.OrderID)
		if err != nil {
			if errors.Is(err, order.ErrOrderNotFound) {
				log.Warn("order not found for refund, dropping",
					zap.Int64("order_id", ev.OrderID),
				)
				return nil
			}
			return fmt.Errorf("fetching order %d: %w", ev.OrderID, err)
		}

		if o.Status == order.StatusRefunded {
			// Redelivered message; the refund already landed.
			return nil
		}

		if err := orders.UpdateStatus(ctx, ev.OrderID, order.StatusRefunded); err != nil {
			return fmt.Errorf("refunding order %d: %w", ev.OrderID, err)
		}

		if m != nil {
			m.OrdersRefundedTotal.Inc()
		}
		log.Info("order refunded", zap.Int64("order_id", ev.OrderID))
		return nil
	}
}
