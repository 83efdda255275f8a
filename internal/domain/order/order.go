package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusRefunded  Status = "refunded"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether the move is a legal lifecycle step.
// Orders start pending and end either completed or refunded.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusCompleted || next == StatusRefunded
	case StatusCompleted:
		return next == StatusRefunded
	}
	return false
}

type Order struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID string          `gorm:"column:product_id;type:varchar(64);index;not null" json:"product_id"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Fee       decimal.Decimal `gorm:"column:fee;type:numeric(12,2);not null" json:"fee"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	Quantity  int64           `gorm:"column:quantity;not null" json:"quantity"`
	Status    Status          `gorm:"column:status;type:varchar(20);default:'pending';index" json:"status"`
	CreatedAt time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

// CreateOrderRequest is what a buyer submits: the product and how many.
type CreateOrderRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"order_quantity"`
}

// UpdateOrderCommand applies partial updates: nil fields keep the
// stored value.
type UpdateOrderCommand struct {
	ProductID *string
	Price     *decimal.Decimal
	Fee       *decimal.Decimal
	Total     *decimal.Decimal
	Quantity  *int64
	Status    *Status
}

func (c *UpdateOrderCommand) Empty() bool {
	return c.ProductID == nil && c.Price == nil && c.Fee == nil &&
		c.Total == nil && c.Quantity == nil && c.Status == nil
}

// Changes flattens the set fields into a column map for the UPDATE.
func (c *UpdateOrderCommand) Changes() map[string]any {
	m := make(map[string]any)
	if c.ProductID != nil {
		m["product_id"] = *c.ProductID
	}
	if c.Price != nil {
		m["price"] = *c.Price
	}
	if c.Fee != nil {
		m["fee"] = *c.Fee
	}
	if c.Total != nil {
		m["total"] = *c.Total
	}
	if c.Quantity != nil {
		m["quantity"] = *c.Quantity
	}
	if c.Status != nil {
		m["status"] = *c.Status
	}
	return m
}
