package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fastcart/fastcart/internal/domain/order"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		return fmt.Errorf("creating order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("fetching order %d: %w", id, err)
	}
	return &o, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]*order.Order, error) {
	var orders []*order.Order
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, nil
}

// Update runs a single UPDATE ... RETURNING so the returned row reflects
// exactly what was written, with no second round trip.
func (r *OrderRepository) Update(ctx context.Context, id int64, cmd *order.UpdateOrderCommand) (*order.Order, error) {
	if cmd.Empty() {
		return nil, order.ErrNoUpdateFields
	}

	var updated order.Order
	result := r.db.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(cmd.Changes())
	if result.Error != nil {
		return nil, fmt.Errorf("updating order %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, order.ErrOrderNotFound
	}
	return &updated, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	if !status.IsValid() {
		return order.ErrInvalidStatus
	}

	result := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("updating order %d status: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// Delete loads the row first so callers get the deleted order back.
func (r *OrderRepository) Delete(ctx context.Context, id int64) (*order.Order, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Delete(&order.Order{}, id).Error; err != nil {
		return nil, fmt.Errorf("deleting order %d: %w", id, err)
	}
	return o, nil
}
