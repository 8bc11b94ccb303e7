package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cascadeconnect/internal/domain/push"
	"cascadeconnect/internal/shared/middleware"
)

type PushHandler struct {
	pushService *push.Service
}

func NewPushHandler(pushService *push.Service) *PushHandler {
	return &PushHandler{pushService: pushService}
}

type SubscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Platform string `json:"platform"`
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// HandleSubscriptions routes push subscription requests based on method.
func (h *PushHandler) HandleSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleListSubscriptions(w, r, userID)
	case http.MethodPost:
		h.handleSubscribe(w, r, userID)
	case http.MethodDelete:
		h.handleUnsubscribe(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PushHandler) handleListSubscriptions(w http.ResponseWriter, r *http.Request, userID string) {
	subs, err := h.pushService.List(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing push subscriptions for user %s: %v", userID, err)
		http.Error(w, "Failed to list subscriptions", http.StatusInternalServerError)
		return
	}

	if subs == nil {
		subs = []*push.Subscription{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(subs)
}

func (h *PushHandler) handleSubscribe(w http.ResponseWriter, r *http.Request, userID string) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding subscribe request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sub, err := h.pushService.Subscribe(r.Context(), push.SubscribeParams{
		UserID:   userID,
		Endpoint: req.Endpoint,
		Platform: req.Platform,
	})
	if err != nil {
		if errors.Is(err, push.ErrInvalidEndpoint) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("Error subscribing user %s: %v", userID, err)
		http.Error(w, "Failed to subscribe", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sub)
}

func (h *PushHandler) handleUnsubscribe(w http.ResponseWriter, r *http.Request, userID string) {
	var req UnsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding unsubscribe request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.pushService.Unsubscribe(r.Context(), userID, req.Endpoint); err != nil {
		if errors.Is(err, push.ErrInvalidEndpoint) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("Error unsubscribing user %s: %v", userID, err)
		http.Error(w, "Failed to unsubscribe", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
