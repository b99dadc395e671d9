package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*ResendClient, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewResendClient("re_test_key", testDiscardLogger())
	client.BaseURL = srv.URL
	return client, srv
}

func TestSendEmailReturnsMessageID(t *testing.T) {
	var gotAuth string
	var gotBody SendEmailInput

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/emails", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"em_abc"}`))
	})

	id, err := client.SendEmail(context.Background(), SendEmailInput{
		From:    "noreply@primeuae.example",
		To:      []string{"customer@example.com"},
		Subject: "Hello",
		HTML:    "<p>Hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "em_abc", id)
	assert.Equal(t, "Bearer re_test_key", gotAuth)
	assert.Equal(t, []string{"customer@example.com"}, gotBody.To)
}

func TestSendEmailAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"Invalid from address","name":"validation_error"}`))
	})

	_, err := client.SendEmail(context.Background(), SendEmailInput{From: "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid from address")
	assert.Contains(t, err.Error(), "422")
}

func TestListBroadcasts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/broadcasts", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":"bc_1","name":"March promo","status":"draft"}]}`))
	})

	list, err := client.ListBroadcasts(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bc_1", list[0].ID)
	assert.Equal(t, "draft", list[0].Status)
}

func TestUpdateBroadcastUsesPatch(t *testing.T) {
	var gotMethod, gotPath string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"id":"bc_1"}`))
	})

	err := client.UpdateBroadcast(context.Background(), "bc_1", CreateBroadcastInput{Subject: "New subject"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/broadcasts/bc_1", gotPath)
}

func TestSendBroadcastSchedule(t *testing.T) {
	var gotBody map[string]string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/broadcasts/bc_1/send", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"id":"bc_1"}`))
	})

	_, err := client.SendBroadcast(context.Background(), "bc_1", "in 1 hour")
	require.NoError(t, err)
	assert.Equal(t, "in 1 hour", gotBody["scheduled_at"])
}

func TestRenderEmailTemplateUnknown(t *testing.T) {
	_, err := RenderEmailTemplate("no_such_template", nil)
	assert.Error(t, err)
}

func TestRenderTicketReply(t *testing.T) {
	html, err := RenderEmailTemplate("ticket_reply", map[string]interface{}{
		"Subject":      "Your visa",
		"CustomerName": "Ahmed",
		"Message":      "All good.",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Dear Ahmed")
	assert.Contains(t, html, "All good.")
}
