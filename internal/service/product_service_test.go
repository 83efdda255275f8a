package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fastcart/fastcart/internal/domain/product"
)

func newProductService(repo *fakeProductRepo, c *memCache) *ProductService {
	return NewProductService(repo, c, zap.NewNop())
}

func TestAddProductAssignsIDAndStampsTimestamp(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newProductService(repo, newMemCache())

	p, err := svc.AddProduct(context.Background(), &product.CreateProductCommand{
		Name:     "New Product",
		Price:    decimal.NewFromFloat(34.99),
		Quantity: 30,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if p.CreatedAt == "" {
		t.Fatalf("expected creation timestamp")
	}

	got, err := svc.GetProduct(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "New Product" || !got.Price.Equal(decimal.NewFromFloat(34.99)) || got.Quantity != 30 {
		t.Fatalf("fetched product differs: %+v", got)
	}
}

func TestAddProductKeepsCallerID(t *testing.T) {
	svc := newProductService(newFakeProductRepo(), newMemCache())

	p, err := svc.AddProduct(context.Background(), &product.CreateProductCommand{
		ID:       "p1",
		Name:     "Widget",
		Price:    decimal.NewFromInt(5),
		Quantity: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "p1" {
		t.Fatalf("expected p1, got %s", p.ID)
	}
}

func TestAddProductValidation(t *testing.T) {
	svc := newProductService(newFakeProductRepo(), newMemCache())

	_, err := svc.AddProduct(context.Background(), &product.CreateProductCommand{
		Name:     "  ",
		Price:    decimal.NewFromInt(-1),
		Quantity: -5,
	})
	var validErr *ValidationError
	if !errors.As(err, &validErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validErr.Fields) != 3 {
		t.Fatalf("expected 3 field errors, got %v", validErr.Fields)
	}
}

func TestGetProductNotFound(t *testing.T) {
	svc := newProductService(newFakeProductRepo(), newMemCache())

	_, err := svc.GetProduct(context.Background(), "missing")
	if !errors.Is(err, product.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestListProductsEmptyIsNotAnError(t *testing.T) {
	svc := newProductService(newFakeProductRepo(), newMemCache())

	products, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected empty list, got %d", len(products))
	}
}

func TestUpdateProductPartialFieldsKeepOldValues(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newProductService(repo, newMemCache())

	added, err := svc.AddProduct(context.Background(), &product.CreateProductCommand{
		ID: "p1", Name: "Widget", Price: decimal.NewFromFloat(10.5), Quantity: 7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newQty := int64(3)
	updated, err := svc.UpdateProduct(context.Background(), "p1", &product.UpdateProductCommand{
		Quantity: &newQty,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", updated.Quantity)
	}
	if updated.Name != "Widget" || !updated.Price.Equal(decimal.NewFromFloat(10.5)) {
		t.Fatalf("unset fields changed: %+v", updated)
	}
	if updated.CreatedAt != added.CreatedAt {
		t.Fatalf("creation time changed on update")
	}
}

func TestUpdateProductEmptyCommand(t *testing.T) {
	svc := newProductService(newFakeProductRepo(), newMemCache())

	_, err := svc.UpdateProduct(context.Background(), "p1", &product.UpdateProductCommand{})
	var validErr *ValidationError
	if !errors.As(err, &validErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestDeleteProductReturnsRecordThenNotFound(t *testing.T) {
	svc := newProductService(newFakeProductRepo(), newMemCache())

	if _, err := svc.AddProduct(context.Background(), &product.CreateProductCommand{
		ID: "p1", Name: "Widget", Price: decimal.NewFromInt(2), Quantity: 1,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deleted, err := svc.DeleteProduct(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted.Name != "Widget" {
		t.Fatalf("expected deleted record back, got %+v", deleted)
	}

	if _, err := svc.GetProduct(context.Background(), "p1"); !errors.Is(err, product.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound after delete, got %v", err)
	}

	if _, err := svc.DeleteProduct(context.Background(), "p1"); !errors.Is(err, product.ErrProductNotFound) {
		t.Fatalf("deleting nonexistent id should be not found, got %v", err)
	}
}

// The list cache must never serve results that predate a mutation.
func TestMutationInvalidatesListCache(t *testing.T) {
	repo := newFakeProductRepo()
	cache := newMemCache()
	svc := newProductService(repo, cache)

	if _, err := svc.AddProduct(context.Background(), &product.CreateProductCommand{
		ID: "p1", Name: "One", Price: decimal.NewFromInt(1), Quantity: 1,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 product, got %d", len(first))
	}

	if _, err := svc.AddProduct(context.Background(), &product.CreateProductCommand{
		ID: "p2", Name: "Two", Price: decimal.NewFromInt(2), Quantity: 2,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("list served stale cache after add: got %d products", len(second))
	}

	if _, err := svc.DeleteProduct(context.Background(), "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	third, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(third) != 1 || third[0].ID != "p2" {
		t.Fatalf("list served stale cache after delete: %+v", third)
	}
}

func TestUpdateInvalidatesItemCache(t *testing.T) {
	repo := newFakeProductRepo()
	cache := newMemCache()
	svc := newProductService(repo, cache)

	if _, err := svc.AddProduct(context.Background(), &product.CreateProductCommand{
		ID: "p1", Name: "Widget", Price: decimal.NewFromInt(1), Quantity: 1,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Prime the item cache.
	if _, err := svc.GetProduct(context.Background(), "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newName := "Gadget"
	if _, err := svc.UpdateProduct(context.Background(), "p1", &product.UpdateProductCommand{
		Name: &newName,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.GetProduct(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Gadget" {
		t.Fatalf("item cache served stale record: %+v", got)
	}
}

func TestAdjustQuantity(t *testing.T) {
	repo := newFakeProductRepo()
	cache := newMemCache()
	svc := newProductService(repo, cache)

	if _, err := svc.AddProduct(context.Background(), &product.CreateProductCommand{
		ID: "p1", Name: "Widget", Price: decimal.NewFromInt(1), Quantity: 10,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := svc.AdjustQuantity(context.Background(), "p1", -3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", p.Quantity)
	}

	if _, err := svc.AdjustQuantity(context.Background(), "missing", -1); !errors.Is(err, product.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
