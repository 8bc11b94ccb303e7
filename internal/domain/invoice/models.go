package invoice

import (
	"errors"
	"fmt"
	"time"

	"cascadeconnect/internal/domain/money"
)

// Invoice statuses
const (
	StatusDraft   = "draft"
	StatusOpen    = "open"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
	StatusVoid    = "void"
)

var validStatuses = map[string]struct{}{
	StatusDraft:   {},
	StatusOpen:    {},
	StatusPaid:    {},
	StatusOverdue: {},
	StatusVoid:    {},
}

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrInvalidStatus   = errors.New("invalid invoice status")
)

const dateLayout = "2006-01-02"

// LineItem is a single billable line on an invoice. The sequence is
// persisted as a JSON document and its order is preserved.
type LineItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	Amount      string `json:"amount"`
}

// Invoice is a client-owned record: the id is generated by the caller and
// the monetary total is carried as a decimal string end to end.
type Invoice struct {
	ID             string     `json:"id"`
	InvoiceNumber  string     `json:"invoiceNumber"`
	ClientName     string     `json:"clientName"`
	ClientEmail    string     `json:"clientEmail"`
	ProjectDetails string     `json:"projectDetails"`
	PaymentLink    string     `json:"paymentLink"`
	CheckNumber    string     `json:"checkNumber"`
	Date           string     `json:"date"`
	DueDate        string     `json:"dueDate"`
	DatePaid       *string    `json:"datePaid"`
	Total          string     `json:"total"`
	Status         string     `json:"status"`
	Items          []LineItem `json:"items"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Normalize canonicalizes the monetary fields in place ("10" → "10.00").
func (inv *Invoice) Normalize() error {
	total, err := money.Normalize(inv.Total)
	if err != nil {
		return fmt.Errorf("total: %w", err)
	}
	inv.Total = total
	return nil
}

func (inv *Invoice) Validate() error {
	if inv.ID == "" {
		return errors.New("id is required")
	}
	if inv.InvoiceNumber == "" {
		return errors.New("invoiceNumber is required")
	}
	if inv.ClientName == "" {
		return errors.New("clientName is required")
	}
	if inv.Total == "" {
		return errors.New("total is required")
	}
	if _, err := money.ParseCents(inv.Total); err != nil {
		return fmt.Errorf("total: %w", err)
	}
	if inv.Status == "" {
		return errors.New("status is required")
	}
	if !IsValidStatus(inv.Status) {
		return ErrInvalidStatus
	}
	if err := validateDate("date", inv.Date, true); err != nil {
		return err
	}
	if err := validateDate("dueDate", inv.DueDate, false); err != nil {
		return err
	}
	if inv.DatePaid != nil {
		if err := validateDate("datePaid", *inv.DatePaid, false); err != nil {
			return err
		}
	}
	return nil
}

func IsValidStatus(s string) bool {
	_, ok := validStatuses[s]
	return ok
}

func validateDate(field, value string, required bool) error {
	if value == "" {
		if required {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return fmt.Errorf("%s must be in YYYY-MM-DD format", field)
	}
	return nil
}
