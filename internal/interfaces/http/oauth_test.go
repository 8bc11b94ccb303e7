package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cascadeconnect/internal/domain/integration"
)

type MockIntegrationRepo struct {
	UpsertFunc               func(ctx context.Context, token *integration.Token) (*integration.Token, error)
	GetByUserAndProviderFunc func(ctx context.Context, userID, provider string) (*integration.Token, error)
	DeleteFunc               func(ctx context.Context, userID, provider string) error
}

func (m *MockIntegrationRepo) Upsert(ctx context.Context, token *integration.Token) (*integration.Token, error) {
	return m.UpsertFunc(ctx, token)
}

func (m *MockIntegrationRepo) GetByUserAndProvider(ctx context.Context, userID, provider string) (*integration.Token, error) {
	return m.GetByUserAndProviderFunc(ctx, userID, provider)
}

func (m *MockIntegrationRepo) Delete(ctx context.Context, userID, provider string) error {
	return m.DeleteFunc(ctx, userID, provider)
}

type MockExchanger struct {
	ExchangeCodeFunc func(ctx context.Context, code string) (*integration.TokenPair, error)
	RefreshTokenFunc func(ctx context.Context, refreshToken string) (*integration.TokenPair, error)
}

func (m *MockExchanger) ExchangeCode(ctx context.Context, code string) (*integration.TokenPair, error) {
	return m.ExchangeCodeFunc(ctx, code)
}

func (m *MockExchanger) RefreshToken(ctx context.Context, refreshToken string) (*integration.TokenPair, error) {
	return m.RefreshTokenFunc(ctx, refreshToken)
}

func gustoService(repo *MockIntegrationRepo, ex *MockExchanger) *integration.Service {
	svc := integration.NewService(repo)
	if ex != nil {
		svc.RegisterExchanger(integration.ProviderGusto, ex)
	}
	return svc
}

func TestGustoCallback_Linked(t *testing.T) {
	var stored *integration.Token
	repo := &MockIntegrationRepo{
		UpsertFunc: func(ctx context.Context, token *integration.Token) (*integration.Token, error) {
			stored = token
			return token, nil
		},
	}
	ex := &MockExchanger{
		ExchangeCodeFunc: func(ctx context.Context, code string) (*integration.TokenPair, error) {
			if code != "auth-code-1" {
				t.Errorf("Expected code auth-code-1, got %s", code)
			}
			return &integration.TokenPair{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 3600}, nil
		},
	}
	handler := NewOAuthHandler(gustoService(repo, ex), "/settings/integrations")

	req := httptest.NewRequest("GET", "/api/oauth/gusto/callback?code=auth-code-1&state=user-5", nil)
	w := httptest.NewRecorder()

	handler.HandleGustoCallback(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("Expected status 302, got %d", w.Code)
	}
	location := w.Header().Get("Location")
	if !strings.Contains(location, "linked=1") {
		t.Errorf("Expected linked=1 in redirect, got %s", location)
	}
	if stored == nil {
		t.Fatal("Expected the token pair to be persisted")
	}
	if stored.UserID != "user-5" || stored.Provider != integration.ProviderGusto {
		t.Errorf("Token stored for wrong key: %s/%s", stored.UserID, stored.Provider)
	}
	if stored.State != integration.StateLinked {
		t.Errorf("Expected state linked, got %s", stored.State)
	}
}

func TestGustoCallback_MissingParams(t *testing.T) {
	ex := &MockExchanger{
		ExchangeCodeFunc: func(ctx context.Context, code string) (*integration.TokenPair, error) {
			t.Fatal("Token endpoint should not be called when code or state is missing")
			return nil, nil
		},
	}
	handler := NewOAuthHandler(gustoService(&MockIntegrationRepo{}, ex), "/settings/integrations")

	tests := []struct {
		name   string
		target string
	}{
		{"missing code", "/api/oauth/gusto/callback?state=user-5"},
		{"missing state", "/api/oauth/gusto/callback?code=auth-code-1"},
		{"missing both", "/api/oauth/gusto/callback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			w := httptest.NewRecorder()

			handler.HandleGustoCallback(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestGustoCallback_PersistenceFailureSurfaced(t *testing.T) {
	repo := &MockIntegrationRepo{
		UpsertFunc: func(ctx context.Context, token *integration.Token) (*integration.Token, error) {
			return nil, errors.New("connection refused")
		},
	}
	ex := &MockExchanger{
		ExchangeCodeFunc: func(ctx context.Context, code string) (*integration.TokenPair, error) {
			return &integration.TokenPair{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 3600}, nil
		},
	}
	handler := NewOAuthHandler(gustoService(repo, ex), "/settings/integrations")

	req := httptest.NewRequest("GET", "/api/oauth/gusto/callback?code=auth-code-1&state=user-5", nil)
	w := httptest.NewRecorder()

	handler.HandleGustoCallback(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("Expected status 302, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Location"), "linked=0") {
		t.Errorf("Expected linked=0 after persistence failure, got %s", w.Header().Get("Location"))
	}
}

func TestGustoCallback_ExchangeFailure(t *testing.T) {
	repo := &MockIntegrationRepo{
		UpsertFunc: func(ctx context.Context, token *integration.Token) (*integration.Token, error) {
			t.Fatal("Nothing should be persisted when the exchange fails")
			return nil, nil
		},
	}
	ex := &MockExchanger{
		ExchangeCodeFunc: func(ctx context.Context, code string) (*integration.TokenPair, error) {
			return nil, errors.New("invalid_grant")
		},
	}
	handler := NewOAuthHandler(gustoService(repo, ex), "/settings/integrations")

	req := httptest.NewRequest("GET", "/api/oauth/gusto/callback?code=expired&state=user-5", nil)
	w := httptest.NewRecorder()

	handler.HandleGustoCallback(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("Expected status 302, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Location"), "linked=0") {
		t.Errorf("Expected linked=0 after exchange failure, got %s", w.Header().Get("Location"))
	}
}

func TestIntegrationStatus(t *testing.T) {
	repo := &MockIntegrationRepo{
		GetByUserAndProviderFunc: func(ctx context.Context, userID, provider string) (*integration.Token, error) {
			return nil, nil
		},
	}
	handler := NewOAuthHandler(gustoService(repo, nil), "/settings/integrations")

	mux := http.NewServeMux()
	mux.HandleFunc("/api/integrations/{provider}", handler.HandleIntegration)

	req := httptest.NewRequest("GET", "/api/integrations/gusto", nil)
	req = req.WithContext(authedContext(req.Context(), "user-5"))
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp IntegrationStatusResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.State != integration.StatePending {
		t.Errorf("Expected pending state before any token exists, got %s", resp.State)
	}
}

func TestIntegrationUnlink(t *testing.T) {
	var deleted bool
	repo := &MockIntegrationRepo{
		DeleteFunc: func(ctx context.Context, userID, provider string) error {
			deleted = true
			return nil
		},
	}
	handler := NewOAuthHandler(gustoService(repo, nil), "/settings/integrations")

	mux := http.NewServeMux()
	mux.HandleFunc("/api/integrations/{provider}", handler.HandleIntegration)

	req := httptest.NewRequest("DELETE", "/api/integrations/gusto", nil)
	req = req.WithContext(authedContext(req.Context(), "user-5"))
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if !deleted {
		t.Error("Expected the stored token to be deleted")
	}
}

func TestIntegrationStatus_UnknownProvider(t *testing.T) {
	handler := NewOAuthHandler(gustoService(&MockIntegrationRepo{}, nil), "/settings/integrations")

	mux := http.NewServeMux()
	mux.HandleFunc("/api/integrations/{provider}", handler.HandleIntegration)

	req := httptest.NewRequest("GET", "/api/integrations/quickbooks", nil)
	req = req.WithContext(authedContext(req.Context(), "user-5"))
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
