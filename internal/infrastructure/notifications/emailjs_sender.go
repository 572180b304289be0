package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/medreportai/companion/internal/domain/providers"
	"github.com/medreportai/companion/pkg/config"
)

// EmailJSSender sends doctor notifications via the EmailJS REST API
type EmailJSSender struct {
	serviceID  string
	templateID string
	publicKey  string
	httpClient *http.Client
	baseURL    string
}

// NewEmailJSSender creates a new EmailJS sender
func NewEmailJSSender(cfg *config.NotifierConfig) (*EmailJSSender, error) {
	if cfg == nil || cfg.ServiceID == "" || cfg.TemplateID == "" || cfg.PublicKey == "" {
		return nil, fmt.Errorf("EMAILJS_SERVICE_ID, EMAILJS_TEMPLATE_ID and EMAILJS_PUBLIC_KEY must be set")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.emailjs.com/api/v1.0"
	}

	return &EmailJSSender{
		serviceID:  cfg.ServiceID,
		templateID: cfg.TemplateID,
		publicKey:  cfg.PublicKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}, nil
}

// emailJSRequest represents the send-email request body
type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send dispatches a flat key/value payload as template parameters
func (s *EmailJSSender) Send(ctx context.Context, payload map[string]string) (string, error) {
	request := emailJSRequest{
		ServiceID:      s.serviceID,
		TemplateID:     s.templateID,
		UserID:         s.publicKey,
		TemplateParams: payload,
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal notification: %w", err)
	}

	url := s.baseURL + "/email/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("EmailJS API error (status %d): %s", resp.StatusCode, string(body))
	}

	return strings.TrimSpace(string(body)), nil
}

var _ providers.NotificationSender = (*EmailJSSender)(nil)
