package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// MailServiceInterface is what controllers depend on for transactional
// sending, so tests can substitute a stub that records calls.
type MailServiceInterface interface {
	SendEmail(ctx context.Context, input SendEmailInput) (string, error)
}

// SendEmailInput describes one transactional email.
type SendEmailInput struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// Broadcast is a campaign as the provider reports it. The application keeps
// no copy of broadcast content; this struct only carries provider state.
type Broadcast struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AudienceID  string `json:"audience_id"`
	From        string `json:"from"`
	Subject     string `json:"subject"`
	HTML        string `json:"html,omitempty"`
	Status      string `json:"status"` // draft, scheduled, sent
	CreatedAt   string `json:"created_at"`
	ScheduledAt string `json:"scheduled_at,omitempty"`
	SentAt      string `json:"sent_at,omitempty"`
}

// CreateBroadcastInput holds the create/update payload for a broadcast.
type CreateBroadcastInput struct {
	Name       string `json:"name,omitempty"`
	AudienceID string `json:"audience_id,omitempty"`
	From       string `json:"from,omitempty"`
	Subject    string `json:"subject,omitempty"`
	HTML       string `json:"html,omitempty"`
}

// ResendClient is a thin client for the Resend REST API covering the email
// and broadcast surfaces this service uses.
type ResendClient struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
	Logger  *log.Logger
}

func NewResendClient(apiKey string, logger *log.Logger) *ResendClient {
	return &ResendClient{
		APIKey:  apiKey,
		BaseURL: "https://api.resend.com",
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Logger:  logger,
	}
}

// SendEmail sends one transactional email and returns the provider message id.
func (r *ResendClient) SendEmail(ctx context.Context, input SendEmailInput) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := r.do(ctx, http.MethodPost, "/emails", input, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// CreateBroadcast creates a draft broadcast at the provider and returns its id.
func (r *ResendClient) CreateBroadcast(ctx context.Context, input CreateBroadcastInput) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := r.do(ctx, http.MethodPost, "/broadcasts", input, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// ListBroadcasts returns every broadcast the provider knows about.
func (r *ResendClient) ListBroadcasts(ctx context.Context) ([]Broadcast, error) {
	var out struct {
		Data []Broadcast `json:"data"`
	}
	if err := r.do(ctx, http.MethodGet, "/broadcasts", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (r *ResendClient) GetBroadcast(ctx context.Context, id string) (*Broadcast, error) {
	var out Broadcast
	if err := r.do(ctx, http.MethodGet, "/broadcasts/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ResendClient) UpdateBroadcast(ctx context.Context, id string, input CreateBroadcastInput) error {
	return r.do(ctx, http.MethodPatch, "/broadcasts/"+id, input, nil)
}

func (r *ResendClient) DeleteBroadcast(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, "/broadcasts/"+id, nil, nil)
}

// SendBroadcast triggers delivery of a draft broadcast. scheduledAt may be
// empty for immediate sending.
func (r *ResendClient) SendBroadcast(ctx context.Context, id, scheduledAt string) (string, error) {
	body := map[string]string{}
	if scheduledAt != "" {
		body["scheduled_at"] = scheduledAt
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := r.do(ctx, http.MethodPost, "/broadcasts/"+id+"/send", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (r *ResendClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("resend request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read resend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
			Name    string `json:"name"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("resend: %s (status %d)", apiErr.Message, resp.StatusCode)
		}
		return fmt.Errorf("resend: unexpected status %d", resp.StatusCode)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode resend response: %w", err)
		}
	}
	return nil
}
