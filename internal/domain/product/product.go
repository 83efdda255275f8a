package product

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the unit of inventory. It lives in a Redis hash keyed by
// {global_prefix}:{model_prefix}:{id}; there is no record versioning, so
// concurrent writers are last-writer-wins.
type Product struct {
	ID        string          `json:"id" redis:"id"`
	Name      string          `json:"name" redis:"name"`
	Price     decimal.Decimal `json:"price" redis:"price"`
	Quantity  int64           `json:"quantity" redis:"quantity"`
	CreatedAt string          `json:"creation_time" redis:"creation_time"`
}

// Stamp fills in the creation timestamp if the caller did not supply one.
func (p *Product) Stamp(now time.Time) {
	if p.CreatedAt == "" {
		p.CreatedAt = now.Format(time.RFC3339)
	}
}

// CreateProductCommand carries a new product. ID is optional; one is
// assigned when absent.
type CreateProductCommand struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Quantity int64
}

// UpdateProductCommand applies partial updates: nil fields keep the
// stored value.
type UpdateProductCommand struct {
	Name     *string
	Price    *decimal.Decimal
	Quantity *int64
}

func (c *UpdateProductCommand) Empty() bool {
	return c.Name == nil && c.Price == nil && c.Quantity == nil
}

// Apply overlays the set fields onto p.
func (c *UpdateProductCommand) Apply(p *Product) {
	if c.Name != nil {
		p.Name = strings.TrimSpace(*c.Name)
	}
	if c.Price != nil {
		p.Price = *c.Price
	}
	if c.Quantity != nil {
		p.Quantity = *c.Quantity
	}
}
