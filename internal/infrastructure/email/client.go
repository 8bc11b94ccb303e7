package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/smtp"
	"net/textproto"
	"time"

	"github.com/google/uuid"
)

const (
	sendGridURL    = "https://api.sendgrid.com/v3/mail/send"
	defaultTimeout = 30 * time.Second
)

var ErrNotConfigured = errors.New("email is not configured: set SENDGRID_API_KEY or SMTP_HOST")

// Config holds sender identity and transport credentials. SendGrid is
// preferred; SMTP is the fallback when no API key is present.
type Config struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	SMTPHost       string
	SMTPPort       string
	SMTPUser       string
	SMTPPassword   string
}

// Attachment is an optional file carried with the message.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"content"`
}

// SendParams describes one outbound message. Exactly one of Text or HTML
// must be set; Text bodies get an HTML companion generated from them.
type SendParams struct {
	To         string
	Subject    string
	Text       string
	HTML       string
	Attachment *Attachment
}

// Client sends transactional email.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cfg        Config
}

func NewClient(cfg Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    sendGridURL,
		cfg:        cfg,
	}
}

// Configured reports whether any transport is available.
func (c *Client) Configured() bool {
	return c.cfg.SendGridAPIKey != "" || c.cfg.SMTPHost != ""
}

// Send delivers the message and returns a message id. Plain-text bodies
// are linkified and newline-converted for the HTML part; HTML bodies get
// a text companion with markup stripped.
func (c *Client) Send(ctx context.Context, params SendParams) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	text, html := renderBodies(params.Text, params.HTML)

	if c.cfg.SendGridAPIKey != "" {
		return c.sendViaSendGrid(ctx, params, text, html)
	}
	return c.sendViaSMTP(params, text, html)
}

type sendGridRequest struct {
	Personalizations []personalization  `json:"personalizations"`
	From             emailAddress       `json:"from"`
	Subject          string             `json:"subject"`
	Content          []sendGridContent  `json:"content"`
	Attachments      []sendGridAttached `json:"attachments,omitempty"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridAttached struct {
	Content  string `json:"content"`
	Type     string `json:"type,omitempty"`
	Filename string `json:"filename"`
}

func (c *Client) sendViaSendGrid(ctx context.Context, params SendParams, text, html string) (string, error) {
	reqBody := sendGridRequest{
		Personalizations: []personalization{{To: []emailAddress{{Email: params.To}}}},
		From:             emailAddress{Email: c.cfg.FromEmail, Name: c.cfg.FromName},
		Subject:          params.Subject,
		Content: []sendGridContent{
			// text/plain must precede text/html per the v3 API
			{Type: "text/plain", Value: text},
			{Type: "text/html", Value: html},
		},
	}

	if params.Attachment != nil {
		reqBody.Attachments = []sendGridAttached{{
			Content:  base64.StdEncoding.EncodeToString(params.Attachment.Content),
			Type:     params.Attachment.ContentType,
			Filename: params.Attachment.Filename,
		}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SendGridAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("sendgrid error (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	messageID := resp.Header.Get("X-Message-Id")
	if messageID == "" {
		messageID = uuid.NewString()
	}
	return messageID, nil
}

func (c *Client) sendViaSMTP(params SendParams, text, html string) (string, error) {
	addr := c.cfg.SMTPHost + ":" + c.cfg.SMTPPort

	msg, err := buildSMTPMessage(c.cfg.FromEmail, params.To, params.Subject, text, html)
	if err != nil {
		return "", fmt.Errorf("failed to build mail message: %w", err)
	}

	var auth smtp.Auth
	if c.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", c.cfg.SMTPUser, c.cfg.SMTPPassword, c.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, c.cfg.FromEmail, []string{params.To}, msg); err != nil {
		return "", fmt.Errorf("smtp send failed: %w", err)
	}

	return uuid.NewString(), nil
}

// buildSMTPMessage assembles a multipart/alternative message so SMTP
// recipients get the same text+HTML pair the SendGrid path sends.
func buildSMTPMessage(from, to, subject, text, html string) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	textPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/plain; charset="UTF-8"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(textPart, text); err != nil {
		return nil, err
	}

	htmlPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="UTF-8"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(htmlPart, html); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(`Content-Type: multipart/alternative; boundary="` + mw.Boundary() + `"` + "\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	return msg.Bytes(), nil
}
