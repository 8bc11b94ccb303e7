package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"cascadeconnect/internal/domain/invoice"
)

type InvoiceHandler struct {
	invoiceRepo invoice.Repository
}

func NewInvoiceHandler(invoiceRepo invoice.Repository) *InvoiceHandler {
	return &InvoiceHandler{invoiceRepo: invoiceRepo}
}

// HandleInvoices routes collection-level requests based on method
func (h *InvoiceHandler) HandleInvoices(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListInvoices(w, r)
	case http.MethodPost:
		h.handleCreateInvoice(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleInvoiceByID routes requests for a specific invoice
func (h *InvoiceHandler) HandleInvoiceByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGetInvoice(w, r)
	case http.MethodPut:
		h.handleReplaceInvoice(w, r)
	case http.MethodDelete:
		h.handleDeleteInvoice(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *InvoiceHandler) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.invoiceRepo.List(r.Context())
	if err != nil {
		log.Printf("Error listing invoices: %v", err)
		http.Error(w, "Failed to list invoices", http.StatusInternalServerError)
		return
	}

	if invoices == nil {
		invoices = []*invoice.Invoice{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(invoices)
}

// invoiceID validates the client-supplied id before it reaches the UUID
// column; anything malformed is a 400, not a database error.
func invoiceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Invoice ID is required", http.StatusBadRequest)
		return "", false
	}
	if err := uuid.Validate(id); err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func (h *InvoiceHandler) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	inv, err := h.invoiceRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, invoice.ErrInvoiceNotFound) {
			http.Error(w, "Invoice not found", http.StatusNotFound)
			return
		}
		log.Printf("Error getting invoice %s: %v", id, err)
		http.Error(w, "Failed to get invoice", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(inv)
}

func (h *InvoiceHandler) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv invoice.Invoice
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		log.Printf("Error decoding create invoice request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if inv.ID == "" {
		inv.ID = uuid.NewString()
	} else if err := uuid.Validate(inv.ID); err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	if err := inv.Normalize(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := inv.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.invoiceRepo.Create(r.Context(), &inv)
	if err != nil {
		log.Printf("Error creating invoice: %v", err)
		http.Error(w, "Failed to create invoice", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *InvoiceHandler) handleReplaceInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	var inv invoice.Invoice
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		log.Printf("Error decoding update invoice request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// The path id wins over any id in the body
	inv.ID = id
	if err := inv.Normalize(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := inv.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.invoiceRepo.Replace(r.Context(), id, &inv)
	if err != nil {
		if errors.Is(err, invoice.ErrInvoiceNotFound) {
			http.Error(w, "Invoice not found", http.StatusNotFound)
			return
		}
		log.Printf("Error updating invoice %s: %v", id, err)
		http.Error(w, "Failed to update invoice", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *InvoiceHandler) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	// Deleting a missing id still returns 204
	if err := h.invoiceRepo.Delete(r.Context(), id); err != nil {
		log.Printf("Error deleting invoice %s: %v", id, err)
		http.Error(w, "Failed to delete invoice", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
