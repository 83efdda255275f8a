package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fastcart/fastcart/internal/domain/order"
	"github.com/fastcart/fastcart/internal/domain/product"
	"github.com/fastcart/fastcart/pkg/metrics"
)

// feeRate is the per-unit surcharge applied on top of the product price.
var feeRate = decimal.NewFromFloat(0.2)

// ProductFetcher resolves a product from the inventory service. The
// payment side reaches inventory over the network, so this is an
// injected boundary rather than a repository.
type ProductFetcher interface {
	Fetch(ctx context.Context, id string) (*product.Product, error)
}

// CompletionQueue accepts order ids for asynchronous completion.
type CompletionQueue interface {
	Enqueue(orderID int64) bool
}

type OrderService struct {
	repo    order.Repository
	fetcher ProductFetcher
	queue   CompletionQueue
	log     *zap.Logger
	metrics *metrics.Collector
}

func NewOrderService(repo order.Repository, fetcher ProductFetcher, queue CompletionQueue, log *zap.Logger, m *metrics.Collector) *OrderService {
	return &OrderService{
		repo:    repo,
		fetcher: fetcher,
		queue:   queue,
		log:     log,
		metrics: m,
	}
}

// PlaceOrder runs the request pipeline: validate stock against the
// inventory service, price the order, persist it pending, and hand the
// id to the completion worker. The pending order is returned to the
// caller before completion runs.
func (s *OrderService) PlaceOrder(ctx context.Context, req *order.CreateOrderRequest) (*order.Order, error) {
	if req.ProductID == "" {
		return nil, &ValidationError{Fields: []string{"product_id is required"}}
	}
	if req.Quantity <= 0 {
		return nil, &ValidationError{Fields: []string{"order_quantity must be positive"}}
	}

	p, err := s.fetcher.Fetch(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	if req.Quantity > p.Quantity {
		if s.metrics != nil {
			s.metrics.StockRejectionsTotal.Inc()
		}
		s.log.Info("order rejected for insufficient stock",
			zap.String("product_id", req.ProductID),
			zap.Int64("requested", req.Quantity),
			zap.Int64("available", p.Quantity),
		)
		return nil, &ValidationError{Fields: []string{
			fmt.Sprintf("insufficient stock: requested %d, available %d", req.Quantity, p.Quantity),
		}}
	}

	qty := decimal.NewFromInt(req.Quantity)
	fee := p.Price.Mul(feeRate)
	total := p.Price.Add(fee).Mul(qty)

	o := &order.Order{
		ProductID: p.ID,
		Price:     p.Price,
		Fee:       fee,
		Total:     total,
		Quantity:  req.Quantity,
		Status:    order.StatusPending,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		s.log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCreatedTotal.Inc()
	}
	s.log.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.String("product_id", o.ProductID),
		zap.String("total", o.Total.String()),
	)

	if !s.queue.Enqueue(o.ID) {
		// The order stays pending; an operator can re-drive it.
		s.log.Warn("completion queue rejected order", zap.Int64("order_id", o.ID))
	}

	return o, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]*order.Order, error) {
	return s.repo.List(ctx)
}

func (s *OrderService) UpdateOrder(ctx context.Context, id int64, cmd *order.UpdateOrderCommand) (*order.Order, error) {
	if cmd.Status != nil && !cmd.Status.IsValid() {
		return nil, order.ErrInvalidStatus
	}
	return s.repo.Update(ctx, id, cmd)
}

func (s *OrderService) DeleteOrder(ctx context.Context, id int64) (*order.Order, error) {
	return s.repo.Delete(ctx, id)
}
