// Package redisrepo stores products as Redis hashes, one hash per
// record at {globalPrefix}:{modelPrefix}:{id}.
package redisrepo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/fastcart/fastcart/internal/domain/product"
)

const (
	fieldID        = "id"
	fieldName      = "name"
	fieldPrice     = "price"
	fieldQuantity  = "quantity"
	fieldCreatedAt = "creation_time"
)

type ProductRepository struct {
	client       *redis.Client
	globalPrefix string
	modelPrefix  string
}

func NewProductRepository(client *redis.Client, globalPrefix, modelPrefix string) *ProductRepository {
	return &ProductRepository{
		client:       client,
		globalPrefix: globalPrefix,
		modelPrefix:  modelPrefix,
	}
}

func (r *ProductRepository) key(id string) string {
	return r.globalPrefix + ":" + r.modelPrefix + ":" + id
}

func (r *ProductRepository) Save(ctx context.Context, p *product.Product) error {
	if err := r.client.HSet(ctx, r.key(p.ID), hashFields(p)).Err(); err != nil {
		return fmt.Errorf("saving product %s: %w", p.ID, err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	fields, err := r.client.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetching product %s: %w", id, err)
	}
	// HGETALL returns an empty map, not a nil error, for a missing key.
	if len(fields) == 0 {
		return nil, product.ErrProductNotFound
	}
	return parseHash(id, fields)
}

func (r *ProductRepository) ListIDs(ctx context.Context) ([]string, error) {
	prefix := r.globalPrefix + ":" + r.modelPrefix + ":"
	pattern := prefix + "*"

	var ids []string
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning product keys: %w", err)
	}
	return ids, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	removed, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("deleting product %s: %w", id, err)
	}
	if removed == 0 {
		return product.ErrProductNotFound
	}
	return nil
}

func hashFields(p *product.Product) map[string]any {
	return map[string]any{
		fieldID:        p.ID,
		fieldName:      p.Name,
		fieldPrice:     p.Price.String(),
		fieldQuantity:  strconv.FormatInt(p.Quantity, 10),
		fieldCreatedAt: p.CreatedAt,
	}
}

func parseHash(id string, fields map[string]string) (*product.Product, error) {
	price, err := decimal.NewFromString(fields[fieldPrice])
	if err != nil {
		return nil, fmt.Errorf("product %s has malformed price %q: %w", id, fields[fieldPrice], err)
	}

	quantity, err := strconv.ParseInt(fields[fieldQuantity], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("product %s has malformed quantity %q: %w", id, fields[fieldQuantity], err)
	}

	return &product.Product{
		ID:        id,
		Name:      fields[fieldName],
		Price:     price,
		Quantity:  quantity,
		CreatedAt: fields[fieldCreatedAt],
	}, nil
}
