package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cascadeconnect/internal/infrastructure/telnyx"
	"cascadeconnect/internal/infrastructure/twilio"
	"cascadeconnect/internal/shared/middleware"
)

// TwilioMinter mints Twilio voice access tokens.
type TwilioMinter interface {
	Mint(identity string) (*twilio.Token, error)
}

// TelnyxTokenCreator creates Telnyx telephony credential tokens.
type TelnyxTokenCreator interface {
	CreateToken(ctx context.Context, username string) (*telnyx.Token, error)
}

type VoiceHandler struct {
	twilio TwilioMinter
	telnyx TelnyxTokenCreator
}

func NewVoiceHandler(twilioMinter TwilioMinter, telnyxClient TelnyxTokenCreator) *VoiceHandler {
	return &VoiceHandler{twilio: twilioMinter, telnyx: telnyxClient}
}

// HandleTwilioToken mints a Twilio voice token for the authenticated
// user. The user ID is the token identity.
func (h *VoiceHandler) HandleTwilioToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := h.twilio.Mint(userID)
	if err != nil {
		if errors.Is(err, twilio.ErrNotConfigured) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Printf("Error minting Twilio token for user %s: %v", userID, err)
		http.Error(w, "Failed to mint voice token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(token)
}

// HandleTelnyxToken requests a Telnyx on-demand credential token for the
// authenticated user.
func (h *VoiceHandler) HandleTelnyxToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := h.telnyx.CreateToken(r.Context(), userID)
	if err != nil {
		if errors.Is(err, telnyx.ErrNotConfigured) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Printf("Error creating Telnyx token for user %s: %v", userID, err)
		http.Error(w, "Failed to create voice token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(token)
}
