package order

import "context"

type Repository interface {
	// Create inserts the order and populates the generated id.
	Create(ctx context.Context, o *Order) error

	// GetByID retrieves one order. Returns ErrOrderNotFound if absent.
	GetByID(ctx context.Context, id int64) (*Order, error)

	// List returns all orders, newest first.
	List(ctx context.Context) ([]*Order, error)

	// Update applies the set fields and returns the post-update row.
	// Returns ErrNoUpdateFields when the command is empty and
	// ErrOrderNotFound when the order is absent.
	Update(ctx context.Context, id int64, cmd *UpdateOrderCommand) (*Order, error)

	// UpdateStatus moves the order to the given status.
	UpdateStatus(ctx context.Context, id int64, status Status) error

	// Delete removes the order, returning the deleted row.
	Delete(ctx context.Context, id int64) (*Order, error)
}
