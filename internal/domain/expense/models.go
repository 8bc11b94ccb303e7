package expense

import (
	"errors"
	"fmt"
	"time"

	"cascadeconnect/internal/domain/money"
)

var ErrExpenseNotFound = errors.New("expense not found")

const dateLayout = "2006-01-02"

// Expense is a business expense record. Like invoices, the id comes from
// the client and the amount is a decimal string.
type Expense struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Payee       string    `json:"payee"`
	Category    string    `json:"category"`
	Amount      string    `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (e *Expense) Normalize() error {
	amount, err := money.Normalize(e.Amount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	e.Amount = amount
	return nil
}

func (e *Expense) Validate() error {
	if e.ID == "" {
		return errors.New("id is required")
	}
	if e.Payee == "" {
		return errors.New("payee is required")
	}
	if e.Amount == "" {
		return errors.New("amount is required")
	}
	if _, err := money.ParseCents(e.Amount); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	if e.Date == "" {
		return errors.New("date is required")
	}
	if _, err := time.Parse(dateLayout, e.Date); err != nil {
		return errors.New("date must be in YYYY-MM-DD format")
	}
	return nil
}
