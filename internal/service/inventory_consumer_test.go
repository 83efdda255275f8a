package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fastcart/fastcart/internal/domain/product"
	"github.com/fastcart/fastcart/internal/stream"
)

func orderCompletedFields(orderID int64, productID string, qty int64) map[string]string {
	return map[string]string{
		stream.FieldOrderID:       strconv.FormatInt(orderID, 10),
		stream.FieldProductID:     productID,
		stream.FieldOrderQuantity: strconv.FormatInt(qty, 10),
	}
}

func TestInventoryHandlerDecrementsStock(t *testing.T) {
	repo := newFakeProductRepo()
	cache := newMemCache()
	products := newProductService(repo, cache)
	pub := newFakePublisher()

	if _, err := products.AddProduct(context.Background(), &product.CreateProductCommand{
		ID: "p1", Name: "Widget", Price: decimal.NewFromInt(10), Quantity: 10,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	handler := NewInventoryHandler(products, pub, "refund_order", zap.NewNop())

	if err := handler(context.Background(), orderCompletedFields(1, "p1", 3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := products.GetProduct(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Quantity != 7 {
		t.Fatalf("expected quantity 7 after consuming order of 3, got %d", p.Quantity)
	}
	if pub.count() != 0 {
		t.Fatalf("no refund expected, got %d events", pub.count())
	}
}

func TestInventoryHandlerPublishesRefundForUnknownProduct(t *testing.T) {
	products := newProductService(newFakeProductRepo(), newMemCache())
	pub := newFakePublisher()
	handler := NewInventoryHandler(products, pub, "refund_order", zap.NewNop())

	if err := handler(context.Background(), orderCompletedFields(42, "ghost", 2)); err != nil {
		t.Fatalf("refund path should succeed, got %v", err)
	}

	if pub.count() != 1 {
		t.Fatalf("expected one refund event, got %d", pub.count())
	}
	ev := <-pub.ch
	if ev.stream != "refund_order" {
		t.Fatalf("refund published to wrong stream: %s", ev.stream)
	}
	if ev.fields[stream.FieldOrderID] != "42" {
		t.Fatalf("refund payload missing order id: %v", ev.fields)
	}
}

func TestInventoryHandlerRejectsMalformedMessage(t *testing.T) {
	products := newProductService(newFakeProductRepo(), newMemCache())
	handler := NewInventoryHandler(products, newFakePublisher(), "refund_order", zap.NewNop())

	cases := []map[string]string{
		{},
		{stream.FieldOrderID: "1", stream.FieldProductID: "p1"},
		{stream.FieldOrderID: "1", stream.FieldProductID: "p1", stream.FieldOrderQuantity: "lots"},
		{stream.FieldOrderID: "abc", stream.FieldProductID: "p1", stream.FieldOrderQuantity: "1"},
	}
	for _, fields := range cases {
		if err := handler(context.Background(), fields); err == nil {
			t.Fatalf("expected error for fields %v", fields)
		}
	}
}

func TestInventoryHandlerInvalidatesCachesOnDecrement(t *testing.T) {
	repo := newFakeProductRepo()
	cache := newMemCache()
	products := newProductService(repo, cache)
	handler := NewInventoryHandler(products, newFakePublisher(), "refund_order", zap.NewNop())

	if _, err := products.AddProduct(context.Background(), &product.CreateProductCommand{
		ID: "p1", Name: "Widget", Price: decimal.NewFromInt(10), Quantity: 10,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Prime both caches.
	if _, err := products.GetProduct(context.Background(), "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := products.ListProducts(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := handler(context.Background(), orderCompletedFields(1, "p1", 4)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, _ := products.GetProduct(context.Background(), "p1")
	if p.Quantity != 6 {
		t.Fatalf("item cache served stale quantity: %d", p.Quantity)
	}
	list, _ := products.ListProducts(context.Background())
	if len(list) != 1 || list[0].Quantity != 6 {
		t.Fatalf("list cache served stale quantity: %+v", list)
	}
}
