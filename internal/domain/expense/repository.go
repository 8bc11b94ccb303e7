package expense

import "context"

// Repository defines the persistence operations for expenses.
// There is no update operation: expenses are append-and-delete records.
type Repository interface {
	List(ctx context.Context) ([]*Expense, error)
	Create(ctx context.Context, e *Expense) (*Expense, error)
	Delete(ctx context.Context, id string) error
}
