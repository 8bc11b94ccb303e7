package config

import (
	"os"
	"testing"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-jwt-secret-key")
	t.Setenv("ENCRYPTION_KEY", "01234567890123456789012345678901")
}

func TestLoad_Success(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.JWT.Secret != "test-jwt-secret-key" {
		t.Errorf("JWT.Secret = %q, want %q", cfg.JWT.Secret, "test-jwt-secret-key")
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, 5432)
	}
	if cfg.Square.Environment != "sandbox" {
		t.Errorf("Square.Environment = %q, want %q", cfg.Square.Environment, "sandbox")
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for missing JWT_SECRET, got nil")
	}
}

func TestLoad_InvalidDBPort(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("DB_PORT", "not-a-number")

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for invalid DB_PORT, got nil")
	}
}

func TestLoad_InvalidTwilioTTL(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("TWILIO_TOKEN_TTL", "an hour")

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for invalid TWILIO_TOKEN_TTL, got nil")
	}
}

func TestLoad_AllowedOrigins(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com, http://localhost:3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if len(cfg.Server.AllowedOrigins) != 3 {
		t.Errorf("AllowedOrigins length = %d, want 3", len(cfg.Server.AllowedOrigins))
	}
}

func TestLoad_VendorCredentialsOptional(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Missing vendor credentials must not fail startup; the adapters
	// report configuration errors at call time instead.
	if cfg.Square.AccessToken != "" {
		t.Errorf("Square.AccessToken = %q, want empty", cfg.Square.AccessToken)
	}
	if cfg.Email.SendGridAPIKey != "" {
		t.Errorf("Email.SendGridAPIKey = %q, want empty", cfg.Email.SendGridAPIKey)
	}
}

func TestLoad_GustoCallbackURL(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("HOST_URL", "https://api.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Gusto.RedirectURL != "https://api.example.com/api/oauth/gusto/callback" {
		t.Errorf("Gusto.RedirectURL = %q", cfg.Gusto.RedirectURL)
	}
}

func TestLoad_GustoCallbackURLOverride(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("HOST_URL", "https://api.example.com")
	t.Setenv("GUSTO_REDIRECT_URL", "https://other.example.com/callback")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Gusto.RedirectURL != "https://other.example.com/callback" {
		t.Errorf("Gusto.RedirectURL = %q", cfg.Gusto.RedirectURL)
	}
}

func TestGetBoolEnv(t *testing.T) {
	tests := []struct {
		value    string
		defVal   bool
		expected bool
	}{
		{"true", false, true},
		{"TRUE", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"invalid", true, true},   // returns default
		{"invalid", false, false}, // returns default
		{"", true, true},          // empty returns default
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			key := "TEST_BOOL_ENV"
			if tt.value == "" {
				os.Unsetenv(key)
			} else {
				t.Setenv(key, tt.value)
			}

			got := getBoolEnv(key, tt.defVal)
			if got != tt.expected {
				t.Errorf("getBoolEnv(%q, %v) = %v, want %v", tt.value, tt.defVal, got, tt.expected)
			}
		})
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
		SSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	got := cfg.ConnectionString()
	if got != expected {
		t.Errorf("ConnectionString() = %q, want %q", got, expected)
	}
}
