package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastcart/fastcart/internal/domain/product"
	"github.com/fastcart/fastcart/internal/stream"
)

// NewInventoryHandler returns the handler for the order-completed
// stream: decrement the referenced product's stock, or publish a
// compensating refund event when the product no longer exists.
// Invalidation of the product caches rides on AdjustQuantity.
func NewInventoryHandler(products *ProductService, publisher EventPublisher, refundStream string, log *zap.Logger) stream.Handler {
	return func(ctx context.Context, fields map[string]string) error {
		ev, err := stream.ParseOrderEvent(fields)
		if err != nil {
			return fmt.Errorf("order completed event: %w", err)
		}

		_, err = products.AdjustQuantity(ctx, ev.ProductID, -ev.Quantity)
		if err == nil {
			log.Info("inventory decremented",
				zap.String("product_id", ev.ProductID),
				zap.Int64("order_quantity", ev.Quantity),
			)
			return nil
		}

		if !errors.Is(err, product.ErrProductNotFound) {
			return fmt.Errorf("decrementing product %s: %w", ev.ProductID, err)
		}

		log.Warn("product not found, requesting refund",
			zap.String("product_id", ev.ProductID),
			zap.Int64("order_id", ev.OrderID),
		)
		if err := publisher.Publish(ctx, refundStream, ev.Fields()); err != nil {
			return fmt.Errorf("publishing refund for order %d: %w", ev.OrderID, err)
		}
		return nil
	}
}
