package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cascadeconnect/internal/infrastructure/email"
	"cascadeconnect/internal/shared/middleware"
)

// EmailSender is the slice of the email client the handler needs.
type EmailSender interface {
	Send(ctx context.Context, params email.SendParams) (string, error)
}

type EmailHandler struct {
	sender EmailSender
}

func NewEmailHandler(sender EmailSender) *EmailHandler {
	return &EmailHandler{sender: sender}
}

type SendEmailRequest struct {
	To         string            `json:"to"`
	Subject    string            `json:"subject"`
	Text       string            `json:"text"`
	HTML       string            `json:"html"`
	Attachment *email.Attachment `json:"attachment,omitempty"`
}

type SendEmailResponse struct {
	MessageID string `json:"messageId"`
}

// HandleSendEmail sends one email through SendGrid, falling back to SMTP
// when no SendGrid key is configured.
func (h *EmailHandler) HandleSendEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req SendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding email request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.To == "" {
		http.Error(w, "Recipient is required", http.StatusBadRequest)
		return
	}
	if req.Subject == "" {
		http.Error(w, "Subject is required", http.StatusBadRequest)
		return
	}
	if req.Text == "" && req.HTML == "" {
		http.Error(w, "Email body is required", http.StatusBadRequest)
		return
	}

	messageID, err := h.sender.Send(r.Context(), email.SendParams{
		To:         req.To,
		Subject:    req.Subject,
		Text:       req.Text,
		HTML:       req.HTML,
		Attachment: req.Attachment,
	})
	if err != nil {
		if errors.Is(err, email.ErrNotConfigured) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Printf("Error sending email for user %s: %v", userID, err)
		http.Error(w, "Failed to send email", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SendEmailResponse{MessageID: messageID})
}
