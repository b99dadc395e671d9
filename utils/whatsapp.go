package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// WhatsAppClient talks to the hosted WhatsApp gateway used for lead dialogs
// and operator pings. Sends are best-effort; an unconfigured client is a no-op.
type WhatsAppClient struct {
	APIURL string
	Token  string
	HTTP   *http.Client
	Logger *log.Logger
}

func NewWhatsAppClient(apiURL, token string, logger *log.Logger) *WhatsAppClient {
	return &WhatsAppClient{
		APIURL: apiURL,
		Token:  token,
		HTTP:   &http.Client{Timeout: 10 * time.Second},
		Logger: logger,
	}
}

// Configured reports whether the gateway is reachable in this deployment.
func (w *WhatsAppClient) Configured() bool {
	return w != nil && w.APIURL != ""
}

// SendMessage pushes a text message to the given phone number through the
// gateway.
func (w *WhatsAppClient) SendMessage(ctx context.Context, to, body string) error {
	if !w.Configured() {
		return fmt.Errorf("whatsapp gateway not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"to":   to,
		"body": body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.APIURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+w.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp gateway: unexpected status %d", resp.StatusCode)
	}
	return nil
}
