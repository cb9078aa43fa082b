package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// Recipient is one addressee of a Message.
type Recipient struct {
	Name  string
	Email string
}

// BrevoService delivers Messages through Brevo's transactional email API.
type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string

	endpoint string
	client   *http.Client
	timeout  time.Duration
}

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoPayload struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

type brevoError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEmailService returns nil when any setting is missing. A nil
// *BrevoService accepts every call and sends nothing.
func NewEmailService(apiKey, senderEmail, senderName string) *BrevoService {
	if apiKey == "" || senderEmail == "" || senderName == "" {
		log.Println("⚠️ Email service not configured. Missing API Key, Sender Email, or Sender Name.")
		return nil
	}

	log.Printf("✅ Email service initialized for sender %s <%s>", senderName, senderEmail)
	return &BrevoService{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
		endpoint:    brevoEndpoint,
		client:      &http.Client{},
		timeout:     10 * time.Second,
	}
}

// Send delivers msg to to and logs the outcome. Callers usually run it in a
// goroutine so a slow mail API never holds up a request.
func (s *BrevoService) Send(to Recipient, msg Message) {
	if s == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.deliver(ctx, to, msg); err != nil {
		log.Printf("🔥 Failed to send %q to %s: %v", msg.Subject, to.Email, err)
		return
	}
	log.Printf("✅ Email %q sent to %s", msg.Subject, to.Email)
}

func (s *BrevoService) deliver(ctx context.Context, to Recipient, msg Message) error {
	req, err := s.newRequest(ctx, to, msg)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("brevo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var apiErr brevoError
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Code != "" {
		return fmt.Errorf("brevo %d %s: %s", resp.StatusCode, apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("brevo %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}

// newRequest builds the API call for one rendered template. A recipient
// without a name is addressed by the local part of the email.
func (s *BrevoService) newRequest(ctx context.Context, to Recipient, msg Message) (*http.Request, error) {
	local, _, ok := strings.Cut(to.Email, "@")
	if !ok || local == "" {
		return nil, fmt.Errorf("invalid recipient email: %q", to.Email)
	}
	if to.Name == "" {
		to.Name = local
	}

	body, err := json.Marshal(brevoPayload{
		Sender:      brevoContact{Name: s.SenderName, Email: s.SenderEmail},
		To:          []brevoContact{{Name: to.Name, Email: to.Email}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api-key", s.APIKey)
	return req, nil
}
