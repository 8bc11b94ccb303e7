package postgres

import (
	"context"
	"fmt"

	"cascadeconnect/internal/domain/expense"
)

type ExpenseRepository struct {
	db *DB
}

func NewExpenseRepository(db *DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) List(ctx context.Context) ([]*expense.Expense, error) {
	query := `
		SELECT id, to_char(date, 'YYYY-MM-DD'), payee, category, amount, description, created_at
		FROM expenses
		ORDER BY date DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*expense.Expense
	for rows.Next() {
		var e expense.Expense
		err := rows.Scan(&e.ID, &e.Date, &e.Payee, &e.Category, &e.Amount, &e.Description, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, nil
}

func (r *ExpenseRepository) Create(ctx context.Context, e *expense.Expense) (*expense.Expense, error) {
	query := `
		INSERT INTO expenses (id, date, payee, category, amount, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, to_char(date, 'YYYY-MM-DD'), payee, category, amount, description, created_at
	`

	var created expense.Expense
	err := r.db.QueryRowContext(
		ctx, query,
		e.ID, e.Date, e.Payee, e.Category, e.Amount, e.Description,
	).Scan(
		&created.ID, &created.Date, &created.Payee, &created.Category,
		&created.Amount, &created.Description, &created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	return &created, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	// Deleting a missing expense is not an error
	_, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}
