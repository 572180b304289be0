package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medreportai/companion/pkg/config"
)

func TestNewEmailJSSenderRequiresCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.NotifierConfig
	}{
		{"all empty", config.NotifierConfig{}},
		{"missing template", config.NotifierConfig{ServiceID: "s", PublicKey: "k"}},
		{"missing key", config.NotifierConfig{ServiceID: "s", TemplateID: "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEmailJSSender(&tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestEmailJSSenderSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/email/send", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			ServiceID      string            `json:"service_id"`
			TemplateID     string            `json:"template_id"`
			UserID         string            `json:"user_id"`
			TemplateParams map[string]string `json:"template_params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "svc", body.ServiceID)
		assert.Equal(t, "tpl", body.TemplateID)
		assert.Equal(t, "key", body.UserID)
		assert.Equal(t, "dr@example.com", body.TemplateParams["to_email"])

		w.Write([]byte("OK"))
	}))
	defer server.Close()

	sender, err := NewEmailJSSender(&config.NotifierConfig{
		BaseURL:    server.URL,
		ServiceID:  "svc",
		TemplateID: "tpl",
		PublicKey:  "key",
	})
	require.NoError(t, err)

	response, err := sender.Send(context.Background(), map[string]string{
		"to_email": "dr@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "OK", response)
}

func TestEmailJSSenderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("invalid public key"))
	}))
	defer server.Close()

	sender, err := NewEmailJSSender(&config.NotifierConfig{
		BaseURL:    server.URL,
		ServiceID:  "svc",
		TemplateID: "tpl",
		PublicKey:  "bad",
	})
	require.NoError(t, err)

	_, err = sender.Send(context.Background(), map[string]string{"to_email": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "invalid public key")
}

func TestLogSenderAlwaysSucceeds(t *testing.T) {
	sender := NewLogSender()
	response, err := sender.Send(context.Background(), map[string]string{"to_email": "x"})
	require.NoError(t, err)
	assert.Equal(t, "logged", response)
}
