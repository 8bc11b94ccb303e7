package http

import (
	"encoding/json"
	"log"
	"net/http"

	"cascadeconnect/internal/domain/contact"
	"cascadeconnect/internal/shared/middleware"
)

type ContactHandler struct {
	contactRepo contact.Repository
}

func NewContactHandler(contactRepo contact.Repository) *ContactHandler {
	return &ContactHandler{contactRepo: contactRepo}
}

type SyncContactsRequest struct {
	Contacts []contact.SyncContact `json:"contacts"`
}

type SyncContactsResponse struct {
	Synced int `json:"synced"`
}

// HandleContacts routes contact requests based on method. Every
// operation requires an authenticated caller; an unauthenticated POST
// performs no writes.
func (h *ContactHandler) HandleContacts(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleListContacts(w, r, userID)
	case http.MethodPost:
		h.handleSyncContacts(w, r, userID)
	case http.MethodDelete:
		h.handleClearContacts(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ContactHandler) handleListContacts(w http.ResponseWriter, r *http.Request, userID string) {
	// ?phone= looks up a single contact
	if phone := r.URL.Query().Get("phone"); phone != "" {
		c, err := h.contactRepo.FindByPhone(r.Context(), userID, phone)
		if err != nil {
			log.Printf("Error looking up contact for user %s: %v", userID, err)
			http.Error(w, "Failed to look up contact", http.StatusInternalServerError)
			return
		}
		if c == nil {
			http.Error(w, "Contact not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(c)
		return
	}

	contacts, err := h.contactRepo.ListByUserID(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing contacts for user %s: %v", userID, err)
		http.Error(w, "Failed to list contacts", http.StatusInternalServerError)
		return
	}

	if contacts == nil {
		contacts = []*contact.Contact{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(contacts)
}

func (h *ContactHandler) handleSyncContacts(w http.ResponseWriter, r *http.Request, userID string) {
	var req SyncContactsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding contact sync request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	valid := make([]contact.SyncContact, 0, len(req.Contacts))
	for _, c := range req.Contacts {
		if err := c.Validate(); err != nil {
			continue // skip entries without a usable phone
		}
		valid = append(valid, c)
	}

	count, err := h.contactRepo.BulkUpsert(r.Context(), userID, valid)
	if err != nil {
		log.Printf("Error syncing contacts for user %s: %v", userID, err)
		http.Error(w, "Failed to sync contacts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SyncContactsResponse{Synced: count})
}

func (h *ContactHandler) handleClearContacts(w http.ResponseWriter, r *http.Request, userID string) {
	if err := h.contactRepo.DeleteAll(r.Context(), userID); err != nil {
		log.Printf("Error clearing contacts for user %s: %v", userID, err)
		http.Error(w, "Failed to clear contacts", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
