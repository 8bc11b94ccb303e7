package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"cascadeconnect/internal/domain/invoice"
)

type InvoiceRepository struct {
	db *DB
}

func NewInvoiceRepository(db *DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `
	id, invoice_number, client_name, client_email, project_details,
	payment_link, check_number,
	to_char(date, 'YYYY-MM-DD'),
	to_char(due_date, 'YYYY-MM-DD'),
	to_char(date_paid, 'YYYY-MM-DD'),
	total, status, items, created_at, updated_at
`

func (r *InvoiceRepository) List(ctx context.Context) ([]*invoice.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		ORDER BY date DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	return invoices, nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE id = $1
	`

	inv, err := scanInvoice(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, invoice.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return inv, nil
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, error) {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode invoice items: %w", err)
	}

	query := `
		INSERT INTO invoices (
			id, invoice_number, client_name, client_email, project_details,
			payment_link, check_number, date, due_date, date_paid,
			total, status, items
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + invoiceColumns

	created, err := scanInvoice(r.db.QueryRowContext(
		ctx, query,
		inv.ID, inv.InvoiceNumber, inv.ClientName, inv.ClientEmail, inv.ProjectDetails,
		inv.PaymentLink, inv.CheckNumber, inv.Date, inv.DueDate, inv.DatePaid,
		inv.Total, inv.Status, items,
	).Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	return created, nil
}

func (r *InvoiceRepository) Replace(ctx context.Context, id string, inv *invoice.Invoice) (*invoice.Invoice, error) {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode invoice items: %w", err)
	}

	query := `
		UPDATE invoices
		SET invoice_number = $1,
		    client_name = $2,
		    client_email = $3,
		    project_details = $4,
		    payment_link = $5,
		    check_number = $6,
		    date = $7,
		    due_date = $8,
		    date_paid = $9,
		    total = $10,
		    status = $11,
		    items = $12,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $13
		RETURNING ` + invoiceColumns

	updated, err := scanInvoice(r.db.QueryRowContext(
		ctx, query,
		inv.InvoiceNumber, inv.ClientName, inv.ClientEmail, inv.ProjectDetails,
		inv.PaymentLink, inv.CheckNumber, inv.Date, inv.DueDate, inv.DatePaid,
		inv.Total, inv.Status, items, id,
	).Scan)
	if err == sql.ErrNoRows {
		return nil, invoice.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	return updated, nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	// Deleting a missing invoice is not an error
	_, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return nil
}

// scanInvoice reads one invoice row. The scan function comes either from
// *sql.Rows or from a traced row so both paths share the column layout.
func scanInvoice(scan func(dest ...any) error) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	var checkNumber, datePaid sql.NullString
	var items []byte

	err := scan(
		&inv.ID, &inv.InvoiceNumber, &inv.ClientName, &inv.ClientEmail, &inv.ProjectDetails,
		&inv.PaymentLink, &checkNumber, &inv.Date, &inv.DueDate, &datePaid,
		&inv.Total, &inv.Status, &items, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	inv.CheckNumber = checkNumber.String
	if datePaid.Valid {
		inv.DatePaid = &datePaid.String
	}

	inv.Items = []invoice.LineItem{}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &inv.Items); err != nil {
			return nil, fmt.Errorf("failed to decode invoice items: %w", err)
		}
	}

	return &inv, nil
}
