package main

import (
	"context"
	"log"
	"time"

	"cascadeconnect/internal/domain/chat"
	"cascadeconnect/internal/domain/integration"
	"cascadeconnect/internal/domain/push"
	"cascadeconnect/internal/infrastructure/cloudinary"
	"cascadeconnect/internal/infrastructure/crypto"
	"cascadeconnect/internal/infrastructure/email"
	"cascadeconnect/internal/infrastructure/firebase"
	"cascadeconnect/internal/infrastructure/gusto"
	"cascadeconnect/internal/infrastructure/postgres"
	"cascadeconnect/internal/infrastructure/square"
	"cascadeconnect/internal/infrastructure/telnyx"
	"cascadeconnect/internal/infrastructure/twilio"
	httphandlers "cascadeconnect/internal/interfaces/http"
	"cascadeconnect/internal/shared/auth"
	"cascadeconnect/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	InvoiceHandler *httphandlers.InvoiceHandler
	ExpenseHandler *httphandlers.ExpenseHandler
	ChatHandler    *httphandlers.ChatHandler
	ContactHandler *httphandlers.ContactHandler
	PushHandler    *httphandlers.PushHandler
	PaymentHandler *httphandlers.PaymentHandler
	EmailHandler   *httphandlers.EmailHandler
	UploadHandler  *httphandlers.UploadHandler
	VoiceHandler   *httphandlers.VoiceHandler
	OAuthHandler   *httphandlers.OAuthHandler

	// Auth
	JWT *auth.JWT
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize encryptor for vendor tokens at rest
	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Initialize repositories
	invoiceRepo := postgres.NewInvoiceRepository(db)
	expenseRepo := postgres.NewExpenseRepository(db)
	contactRepo := postgres.NewContactRepository(db)
	chatRepo := postgres.NewChatRepository(db)
	pushRepo := postgres.NewPushSubscriptionRepository(db)
	tokenRepo := postgres.NewIntegrationTokenRepository(db, encryptor)

	// Initialize push messaging. A missing credentials file disables
	// delivery but keeps subscription storage working.
	var messenger push.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		fcm, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, pushRepo.DeleteEndpointEverywhere)
		if err != nil {
			log.Printf("Warning: Failed to initialize Firebase messaging: %v", err)
		} else {
			messenger = fcm
		}
	} else {
		log.Println("Firebase credentials not set, push delivery disabled")
	}

	// Initialize domain services
	pushService := push.NewService(pushRepo, messenger)
	chatService := chat.NewService(chatRepo, pushService)

	integrationService := integration.NewService(tokenRepo)
	gustoClient := gusto.NewClient(cfg.Gusto.ClientID, cfg.Gusto.ClientSecret, cfg.Gusto.RedirectURL)
	integrationService.RegisterExchanger(integration.ProviderGusto, gustoClient)

	// Initialize vendor clients
	squareClient := square.NewClient(cfg.Square.AccessToken, cfg.Square.LocationID, cfg.Square.Environment)
	emailClient := email.NewClient(email.Config{
		SendGridAPIKey: cfg.Email.SendGridAPIKey,
		FromEmail:      cfg.Email.FromEmail,
		FromName:       cfg.Email.FromName,
		SMTPHost:       cfg.Email.SMTPHost,
		SMTPPort:       cfg.Email.SMTPPort,
		SMTPUser:       cfg.Email.SMTPUser,
		SMTPPassword:   cfg.Email.SMTPPassword,
	})
	cloudinaryClient := cloudinary.NewClient(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
	telnyxClient := telnyx.NewClient(cfg.Telnyx.APIKey, cfg.Telnyx.CredentialID)
	twilioMinter := twilio.NewTokenMinter(
		cfg.Twilio.AccountSID,
		cfg.Twilio.APIKeySID,
		cfg.Twilio.APIKeySecret,
		cfg.Twilio.AppSID,
		time.Duration(cfg.Twilio.TokenTTLSecs)*time.Second,
	)

	// Initialize auth components
	jwt := auth.NewJWT(cfg.JWT.Secret)

	return &Dependencies{
		DB:             db,
		InvoiceHandler: httphandlers.NewInvoiceHandler(invoiceRepo),
		ExpenseHandler: httphandlers.NewExpenseHandler(expenseRepo),
		ChatHandler:    httphandlers.NewChatHandler(chatService),
		ContactHandler: httphandlers.NewContactHandler(contactRepo),
		PushHandler:    httphandlers.NewPushHandler(pushService),
		PaymentHandler: httphandlers.NewPaymentHandler(squareClient),
		EmailHandler:   httphandlers.NewEmailHandler(emailClient),
		UploadHandler:  httphandlers.NewUploadHandler(cloudinaryClient),
		VoiceHandler:   httphandlers.NewVoiceHandler(twilioMinter, telnyxClient),
		OAuthHandler:   httphandlers.NewOAuthHandler(integrationService, cfg.Gusto.AppRedirect),
		JWT:            jwt,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
