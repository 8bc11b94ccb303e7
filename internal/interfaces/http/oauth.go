package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"cascadeconnect/internal/domain/integration"
	"cascadeconnect/internal/shared/middleware"
)

type OAuthHandler struct {
	integrations *integration.Service
	appRedirect  string
}

func NewOAuthHandler(integrations *integration.Service, appRedirect string) *OAuthHandler {
	return &OAuthHandler{integrations: integrations, appRedirect: appRedirect}
}

// HandleGustoCallback completes the Gusto account link. The state
// parameter carries the user ID that initiated the authorization. The
// browser is always redirected back to the app; linked=1 only when the
// token pair was exchanged and persisted.
func (h *OAuthHandler) HandleGustoCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
		return
	}

	userID := state
	_, err := h.integrations.CompleteLink(r.Context(), userID, integration.ProviderGusto, code)
	if err != nil {
		log.Printf("Gusto link failed for user %s: %v", userID, err)
		http.Redirect(w, r, h.redirectURL("0"), http.StatusFound)
		return
	}

	http.Redirect(w, r, h.redirectURL("1"), http.StatusFound)
}

func (h *OAuthHandler) redirectURL(linked string) string {
	u, err := url.Parse(h.appRedirect)
	if err != nil {
		return h.appRedirect + "?linked=" + linked
	}
	q := u.Query()
	q.Set("linked", linked)
	u.RawQuery = q.Encode()
	return u.String()
}

type IntegrationStatusResponse struct {
	Provider string `json:"provider"`
	State    string `json:"state"`
}

// HandleIntegration reports or removes the authenticated user's link for
// a provider.
func (h *OAuthHandler) HandleIntegration(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	provider := r.PathValue("provider")

	switch r.Method {
	case http.MethodGet:
		state, err := h.integrations.Status(r.Context(), userID, provider)
		if err != nil {
			h.writeIntegrationError(w, userID, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(IntegrationStatusResponse{Provider: provider, State: state})
	case http.MethodDelete:
		if err := h.integrations.Unlink(r.Context(), userID, provider); err != nil {
			h.writeIntegrationError(w, userID, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *OAuthHandler) writeIntegrationError(w http.ResponseWriter, userID string, err error) {
	if errors.Is(err, integration.ErrUnknownProvider) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	log.Printf("Integration error for user %s: %v", userID, err)
	http.Error(w, "Integration request failed", http.StatusInternalServerError)
}
