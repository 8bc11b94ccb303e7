package invoice

import "context"

// Repository defines the persistence operations for invoices.
type Repository interface {
	// List returns every invoice ordered by business date descending.
	List(ctx context.Context) ([]*Invoice, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	Create(ctx context.Context, inv *Invoice) (*Invoice, error)
	// Replace performs a full-row update keyed by id and returns
	// ErrInvoiceNotFound when no row was affected. It never inserts.
	Replace(ctx context.Context, id string, inv *Invoice) (*Invoice, error)
	// Delete removes the invoice if present. Deleting a missing id is
	// not an error.
	Delete(ctx context.Context, id string) error
}
