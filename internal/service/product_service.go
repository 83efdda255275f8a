package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastcart/fastcart/internal/domain/product"
)

// Cache key namespaces. List results sit under the bare list namespace;
// single items under {item namespace}:{id}. The names differ by one
// letter on purpose so the list wildcard never sweeps item entries.
const (
	NamespaceProducts = "inventory.products"
	NamespaceProduct  = "inventory.product"
)

// ProductCache is the slice of the cache-aside component the product
// service needs. Satisfied by *cache.Cache.
type ProductCache interface {
	GetOrCompute(ctx context.Context, namespace, key string, ttl time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, error)
	Invalidate(ctx context.Context, namespace, id string)
	InvalidateNamespace(ctx context.Context, namespace string)
	ItemKey(namespace, id string) string
	NamespaceKey(namespace string) string
	TTL() time.Duration
}

type ProductService struct {
	repo  product.Repository
	cache ProductCache
	log   *zap.Logger
}

func NewProductService(repo product.Repository, cache ProductCache, log *zap.Logger) *ProductService {
	return &ProductService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// ListProducts returns every product, read through the list-namespace
// cache. An empty inventory is an empty slice, not an error.
func (s *ProductService) ListProducts(ctx context.Context) ([]*product.Product, error) {
	key := s.cache.NamespaceKey(NamespaceProducts)

	raw, err := s.cache.GetOrCompute(ctx, NamespaceProducts, key, s.cache.TTL(), func(ctx context.Context) ([]byte, error) {
		products, err := s.listFromStore(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(products)
	})
	if err != nil {
		return nil, err
	}

	products := []*product.Product{}
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("decoding cached product list: %w", err)
	}
	return products, nil
}

func (s *ProductService) listFromStore(ctx context.Context) ([]*product.Product, error) {
	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	products := make([]*product.Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, product.ErrProductNotFound) {
				// Deleted between the scan and the fetch.
				continue
			}
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// GetProduct resolves one product, read through the item cache.
// A missing id is ErrProductNotFound, distinct from an empty inventory.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	key := s.cache.ItemKey(NamespaceProduct, id)

	raw, err := s.cache.GetOrCompute(ctx, NamespaceProduct, key, s.cache.TTL(), func(ctx context.Context) ([]byte, error) {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return json.Marshal(p)
	})
	if err != nil {
		return nil, err
	}

	var p product.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decoding cached product: %w", err)
	}
	return &p, nil
}

func (s *ProductService) AddProduct(ctx context.Context, cmd *product.CreateProductCommand) (*product.Product, error) {
	if err := validateCreateProduct(cmd); err != nil {
		return nil, err
	}

	p := &product.Product{
		ID:       cmd.ID,
		Name:     strings.TrimSpace(cmd.Name),
		Price:    cmd.Price,
		Quantity: cmd.Quantity,
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Stamp(time.Now())

	if err := s.repo.Save(ctx, p); err != nil {
		s.log.Error("failed to save product", zap.Error(err))
		return nil, fmt.Errorf("saving product: %w", err)
	}

	// List results are content-dependent aggregates; the whole namespace
	// goes, not just one key.
	s.cache.InvalidateNamespace(ctx, NamespaceProducts)

	s.log.Info("product added",
		zap.String("product_id", p.ID),
		zap.String("name", p.Name),
	)
	return p, nil
}

// UpdateProduct overlays only the fields set in cmd; unset fields keep
// their stored value.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, cmd *product.UpdateProductCommand) (*product.Product, error) {
	if cmd.Empty() {
		return nil, &ValidationError{Fields: []string{"no fields provided for update"}}
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cmd.Apply(p)

	if err := s.repo.Save(ctx, p); err != nil {
		s.log.Error("failed to update product", zap.String("product_id", id), zap.Error(err))
		return nil, fmt.Errorf("updating product: %w", err)
	}

	s.invalidateProduct(ctx, id)
	return p, nil
}

// DeleteProduct removes the record and returns it.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*product.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.invalidateProduct(ctx, id)

	s.log.Info("product deleted", zap.String("product_id", id))
	return p, nil
}

// AdjustQuantity shifts stock by delta (negative to decrement). The hash
// record has no versioning, so a concurrent user update races with this
// as last-writer-wins.
func (s *ProductService) AdjustQuantity(ctx context.Context, id string, delta int64) (*product.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Quantity += delta

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("adjusting product quantity: %w", err)
	}

	s.invalidateProduct(ctx, id)

	s.log.Info("product quantity adjusted",
		zap.String("product_id", id),
		zap.Int64("delta", delta),
		zap.Int64("quantity", p.Quantity),
	)
	return p, nil
}

func (s *ProductService) invalidateProduct(ctx context.Context, id string) {
	s.cache.Invalidate(ctx, NamespaceProduct, id)
	s.cache.InvalidateNamespace(ctx, NamespaceProducts)
}

func validateCreateProduct(cmd *product.CreateProductCommand) error {
	var errs []string

	if strings.TrimSpace(cmd.Name) == "" {
		errs = append(errs, "name is required")
	}
	if cmd.Price.IsNegative() {
		errs = append(errs, "price cannot be negative")
	}
	if cmd.Quantity < 0 {
		errs = append(errs, "quantity cannot be negative")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
