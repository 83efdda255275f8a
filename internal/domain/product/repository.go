package product

import "context"

type Repository interface {
	// Save writes the full record, creating or overwriting it.
	Save(ctx context.Context, p *Product) error

	// GetByID retrieves one product. Returns ErrProductNotFound if absent.
	GetByID(ctx context.Context, id string) (*Product, error)

	// ListIDs enumerates every stored product id.
	ListIDs(ctx context.Context) ([]string, error)

	// Delete removes the record. Returns ErrProductNotFound if absent.
	Delete(ctx context.Context, id string) error
}
