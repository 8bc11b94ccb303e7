package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Encryption EncryptionConfig
	Square     SquareConfig
	Email      EmailConfig
	Cloudinary CloudinaryConfig
	Telnyx     TelnyxConfig
	Twilio     TwilioConfig
	Gusto      GustoConfig
	Firebase   FirebaseConfig
	Telemetry  TelemetryConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	AllowedOrigins []string
	// AllowedHosts guards the HTTP→HTTPS redirect when ForceHTTPS is on.
	AllowedHosts []string
	// ForceHTTPS is for deployments where the proxy forwards plain HTTP.
	ForceHTTPS bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret string
}

type EncryptionConfig struct {
	// Key is the 32-byte AES-256 key protecting stored vendor tokens.
	Key string
}

type SquareConfig struct {
	AccessToken string
	LocationID  string
	Environment string // "sandbox" or "production"
}

type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	SMTPHost       string
	SMTPPort       string
	SMTPUser       string
	SMTPPassword   string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type TelnyxConfig struct {
	APIKey       string
	CredentialID string
}

type TwilioConfig struct {
	AccountSID   string
	APIKeySID    string
	APIKeySecret string
	AppSID       string
	TokenTTLSecs int
}

type GustoConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// AppRedirect is where the browser lands after the callback completes.
	AppRedirect string
}

type FirebaseConfig struct {
	CredentialsFile string
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
}

func Load() (*Config, error) {

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	twilioTTL, err := strconv.Atoi(getEnv("TWILIO_TOKEN_TTL", "3600"))
	if err != nil {
		return nil, fmt.Errorf("invalid TWILIO_TOKEN_TTL: %w", err)
	}

	// Parse allowed origins and hosts (comma-separated lists)
	allowedOrigins := splitList(getEnv("ALLOWED_ORIGINS", ""))
	allowedHosts := splitList(getEnv("ALLOWED_HOSTS", ""))

	// Construct the OAuth callback URL from HOST_URL unless overridden
	hostURL := getEnv("HOST_URL", "")
	gustoRedirect := getEnv("GUSTO_REDIRECT_URL", "")
	if gustoRedirect == "" && hostURL != "" {
		gustoRedirect = hostURL + "/api/oauth/gusto/callback"
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Host:           getEnv("HOST", "0.0.0.0"),
			AllowedOrigins: allowedOrigins,
			AllowedHosts:   allowedHosts,
			ForceHTTPS:     getBoolEnv("FORCE_HTTPS", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "cascade"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "cascadeconnect"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Encryption: EncryptionConfig{
			Key: getEnv("ENCRYPTION_KEY", ""),
		},
		Square: SquareConfig{
			AccessToken: getEnv("SQUARE_ACCESS_TOKEN", ""),
			LocationID:  getEnv("SQUARE_LOCATION_ID", ""),
			Environment: getEnv("SQUARE_ENVIRONMENT", "sandbox"),
		},
		Email: EmailConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromEmail:      getEnv("EMAIL_FROM", "no-reply@cascadeconnect.app"),
			FromName:       getEnv("EMAIL_FROM_NAME", "CascadeConnect"),
			SMTPHost:       getEnv("SMTP_HOST", ""),
			SMTPPort:       getEnv("SMTP_PORT", "587"),
			SMTPUser:       getEnv("SMTP_USER", ""),
			SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "cascadeconnect"),
		},
		Telnyx: TelnyxConfig{
			APIKey:       getEnv("TELNYX_API_KEY", ""),
			CredentialID: getEnv("TELNYX_CREDENTIAL_ID", ""),
		},
		Twilio: TwilioConfig{
			AccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
			APIKeySID:    getEnv("TWILIO_API_KEY_SID", ""),
			APIKeySecret: getEnv("TWILIO_API_KEY_SECRET", ""),
			AppSID:       getEnv("TWILIO_APP_SID", ""),
			TokenTTLSecs: twilioTTL,
		},
		Gusto: GustoConfig{
			ClientID:     getEnv("GUSTO_CLIENT_ID", ""),
			ClientSecret: getEnv("GUSTO_CLIENT_SECRET", ""),
			RedirectURL:  gustoRedirect,
			AppRedirect:  getEnv("GUSTO_APP_REDIRECT", "/settings/integrations"),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "cascadeconnect-api"),
			Environment:  getEnv("OTEL_ENVIRONMENT", "development"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("METRICS_PORT", "9464"),
		},
	}

	// Validate required fields. Vendor credential sets stay optional:
	// each adapter reports a configuration error at call time instead.
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Encryption.Key == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
