package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/medreportai/companion/internal/domain/entities"
	"github.com/medreportai/companion/internal/domain/providers"
	"github.com/medreportai/companion/pkg/config"
	apperrors "github.com/medreportai/companion/pkg/errors"
)

const (
	analyzePath = "/analyze"
	chatPath    = "/api/chat"
)

// Client talks JSON-over-HTTP to the report analysis backend. It
// implements both the AnalysisProvider and ChatProvider interfaces.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new insight client
func NewClient(cfg *config.InsightConfig) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.New("insight base url is required")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// errorEnvelope probes a response body for a service-reported failure.
// Presence of the error field is authoritative regardless of HTTP status.
type errorEnvelope struct {
	Error         string          `json:"error"`
	SafetyRatings json.RawMessage `json:"safety_ratings"`
}

type chatEnvelope struct {
	Response string `json:"response"`
}

// Analyze submits a document for analysis and returns the structured result
func (c *Client) Analyze(ctx context.Context, req providers.AnalysisRequest) (*entities.AnalysisResult, error) {
	endpoint := c.baseURL + analyzePath

	start := time.Now()
	body, err := c.post(ctx, endpoint, req)
	if err != nil {
		recordInsightMetric(ctx, "analyze", 0, time.Since(start), err)
		return nil, apperrors.NewTransportError(
			fmt.Sprintf("failed to reach analysis backend at %s", endpoint), err)
	}

	if remoteErr := probeRemoteError(body); remoteErr != nil {
		recordInsightMetric(ctx, "analyze", http.StatusOK, time.Since(start), remoteErr)
		return nil, remoteErr
	}

	var result entities.AnalysisResult
	if err := json.Unmarshal(body, &result); err != nil {
		recordInsightMetric(ctx, "analyze", http.StatusOK, time.Since(start), err)
		return nil, apperrors.NewTransportError(
			fmt.Sprintf("malformed analysis response from %s", endpoint), err)
	}

	recordInsightMetric(ctx, "analyze", http.StatusOK, time.Since(start), nil)
	return &result, nil
}

// SendMessage exchanges one chat turn with the assistant
func (c *Client) SendMessage(ctx context.Context, message string) (string, error) {
	endpoint := c.baseURL + chatPath

	start := time.Now()
	body, err := c.post(ctx, endpoint, map[string]string{"message": message})
	if err != nil {
		recordInsightMetric(ctx, "chat", 0, time.Since(start), err)
		return "", apperrors.NewTransportError(
			fmt.Sprintf("failed to reach chat backend at %s", endpoint), err)
	}

	if remoteErr := probeRemoteError(body); remoteErr != nil {
		recordInsightMetric(ctx, "chat", http.StatusOK, time.Since(start), remoteErr)
		return "", remoteErr
	}

	var envelope chatEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		recordInsightMetric(ctx, "chat", http.StatusOK, time.Since(start), err)
		return "", apperrors.NewTransportError(
			fmt.Sprintf("malformed chat response from %s", endpoint), err)
	}

	recordInsightMetric(ctx, "chat", http.StatusOK, time.Since(start), nil)
	return envelope.Response, nil
}

// post sends a JSON request and returns the raw response body. The
// body is returned even on non-2xx status so the error field can be
// inspected; only an unreachable or unreadable backend is an error here.
func (c *Client) post(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("empty response (status %d)", resp.StatusCode)
	}
	return body, nil
}

func probeRemoteError(body []byte) *providers.RemoteError {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	if envelope.Error == "" {
		return nil
	}
	return &providers.RemoteError{
		Message:       envelope.Error,
		SafetyFlagged: len(envelope.SafetyRatings) > 0 && string(envelope.SafetyRatings) != "null",
	}
}
