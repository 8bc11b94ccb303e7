package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cascadeconnect/internal/domain/money"
	"cascadeconnect/internal/infrastructure/square"
	"cascadeconnect/internal/shared/middleware"
)

// LinkCreator is the slice of the Square client the payment handler needs.
type LinkCreator interface {
	CreateLink(ctx context.Context, params square.CreateLinkParams) (*square.PaymentLink, error)
}

type PaymentHandler struct {
	payments LinkCreator
}

func NewPaymentHandler(payments LinkCreator) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type CreatePaymentLinkRequest struct {
	OrderID        string `json:"orderId"`
	Amount         string `json:"amount"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

// HandleCreatePaymentLink creates a Square quick-pay link for an order.
func (h *PaymentHandler) HandleCreatePaymentLink(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreatePaymentLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding payment link request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Amount == "" {
		http.Error(w, "Amount is required", http.StatusBadRequest)
		return
	}
	if _, err := money.ParseCents(req.Amount); err != nil {
		http.Error(w, "Amount must be a decimal number", http.StatusBadRequest)
		return
	}

	// Caller-supplied idempotency key wins over the header form.
	idempotencyKey := req.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = r.Header.Get("Idempotency-Key")
	}

	link, err := h.payments.CreateLink(r.Context(), square.CreateLinkParams{
		OrderID:        req.OrderID,
		Amount:         req.Amount,
		Name:           req.Name,
		Description:    req.Description,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		var vendorErr *square.VendorError
		if errors.As(err, &vendorErr) {
			http.Error(w, vendorErr.Message, vendorErr.StatusCode)
			return
		}
		if errors.Is(err, square.ErrNotConfigured) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Printf("Error creating payment link for user %s: %v", userID, err)
		http.Error(w, "Failed to create payment link", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(link)
}
