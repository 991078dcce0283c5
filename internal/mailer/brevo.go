// Package mailer sends OTP verification emails via the Brevo API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const brevoURL = "https://api.brevo.com/v3/smtp/email"

// Sender delivers one-time passcodes to users. Delivery is fire-and-forget:
// Send reports success as a bool and never blocks registration on failure.
type Sender interface {
	Send(ctx context.Context, recipient, code string, expiryMinutes int) bool
}

// BrevoClient sends transactional email through Brevo
type BrevoClient struct {
	apiKey      string
	senderName  string
	senderEmail string
	client      *http.Client
}

// NewBrevoClient creates a Brevo mail client
func NewBrevoClient(apiKey, senderName, senderEmail string) *BrevoClient {
	return &BrevoClient{
		apiKey:      apiKey,
		senderName:  senderName,
		senderEmail: senderEmail,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type emailAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      emailAddress   `json:"sender"`
	To          []emailAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

// Send delivers the OTP email. Without API credentials it logs the code
// instead, which keeps local development working.
func (c *BrevoClient) Send(ctx context.Context, recipient, code string, expiryMinutes int) bool {
	if c.apiKey == "" || c.senderEmail == "" {
		slog.Info("mail credentials not configured, logging OTP instead",
			"recipient", recipient, "otp", code, "expiry_minutes", expiryMinutes)
		return true
	}

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; line-height:1.4;">
  <h3>Verify your PaySub account</h3>
  <p>Your OTP: <strong style="font-size:18px">%s</strong></p>
  <p>This code will expire in %d minutes.</p>
  <p>If you did not request this, ignore this email.</p>
</div>`, code, expiryMinutes)

	payload := sendRequest{
		Sender:      emailAddress{Name: c.senderName, Email: c.senderEmail},
		To:          []emailAddress{{Email: recipient}},
		Subject:     "PaySub: Your verification code",
		HTMLContent: html,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal mail payload", "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoURL, bytes.NewReader(body))
	if err != nil {
		slog.Error("failed to build mail request", "error", err)
		return false
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("content-type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		slog.Error("failed to send OTP email", "recipient", recipient, "error", err)
		return false
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(res.Body)
		slog.Error("mail provider rejected OTP email",
			"recipient", recipient, "status", res.StatusCode, "body", string(respBody))
		return false
	}

	return true
}
