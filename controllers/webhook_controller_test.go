package controller

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ismail6385/primeuaeservices-sub000/models"
	"github.com/ismail6385/primeuaeservices-sub000/utils"
)

const webhookSecret = "whsec_test"

func newWebhookApp(db *gorm.DB, secret string) *fiber.App {
	app := fiber.New()
	wc := NewWebhookController(db, testLogger(), secret)
	app.Post("/webhooks/resend", wc.HandleResendWebhook)
	return app
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, app *fiber.App, body []byte, signature string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/resend", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("resend-signature", signature)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestWebhookBouncedEventRecordsAndNotes(t *testing.T) {
	db := setupTestDB(t)
	app := newWebhookApp(db, webhookSecret)

	ticket := models.Ticket{Name: "Ahmed", Email: "ahmed@example.com", Status: models.TicketStatusOpen}
	require.NoError(t, db.Create(&ticket).Error)
	require.NoError(t, db.Create(&models.OutboundMessage{
		EmailID:  "em_123",
		TicketID: utils.Pointer(ticket.ID),
		To:       ticket.Email,
		Kind:     models.OutboundKindReply,
	}).Error)

	body := []byte(`{"type":"email.bounced","data":{"email_id":"em_123","to":["ahmed@example.com"],"subject":"Your visa status","reason":"mailbox full"}}`)
	resp := postWebhook(t, app, body, sign(body, webhookSecret))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var event models.EmailEvent
	require.NoError(t, db.First(&event).Error)
	assert.Equal(t, models.EmailEventBounced, event.EventType)
	assert.Equal(t, "em_123", event.EmailID)
	assert.Equal(t, "ahmed@example.com", event.Recipient)
	require.NotNil(t, event.TicketID)
	assert.Equal(t, ticket.ID, *event.TicketID)
	assert.Equal(t, string(body), event.Payload)

	var updated models.Ticket
	require.NoError(t, db.First(&updated, ticket.ID).Error)
	assert.Contains(t, updated.Notes, "Email Bounced: mailbox full (message em_123)")
}

func TestWebhookInvalidSignatureRejected(t *testing.T) {
	db := setupTestDB(t)
	app := newWebhookApp(db, webhookSecret)

	body := []byte(`{"type":"email.delivered","data":{"email_id":"em_1","to":["a@b.com"]}}`)
	resp := postWebhook(t, app, body, sign(body, "wrong-secret"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var count int64
	db.Model(&models.EmailEvent{}).Count(&count)
	assert.Zero(t, count)
}

func TestWebhookMissingSignatureRejected(t *testing.T) {
	db := setupTestDB(t)
	app := newWebhookApp(db, webhookSecret)

	body := []byte(`{"type":"email.delivered","data":{"email_id":"em_1"}}`)
	resp := postWebhook(t, app, body, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebhookNoSecretSkipsVerification(t *testing.T) {
	db := setupTestDB(t)
	app := newWebhookApp(db, "")

	body := []byte(`{"type":"email.opened","data":{"email_id":"em_2","to":["a@b.com"],"subject":"Hello"}}`)
	resp := postWebhook(t, app, body, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	db.Model(&models.EmailEvent{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestWebhookSignaturePrefixAccepted(t *testing.T) {
	db := setupTestDB(t)
	app := newWebhookApp(db, webhookSecret)

	body := []byte(`{"type":"email.sent","data":{"email_id":"em_3"}}`)
	resp := postWebhook(t, app, body, "sha256="+sign(body, webhookSecret))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebhookUnknownEventTypeIgnored(t *testing.T) {
	db := setupTestDB(t)
	app := newWebhookApp(db, webhookSecret)

	body := []byte(`{"type":"contact.updated","data":{"email_id":"em_4"}}`)
	resp := postWebhook(t, app, body, sign(body, webhookSecret))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	db.Model(&models.EmailEvent{}).Count(&count)
	assert.Zero(t, count)
}

func TestWebhookInvalidPayloadStillAccepted(t *testing.T) {
	db := setupTestDB(t)
	app := newWebhookApp(db, webhookSecret)

	body := []byte(`not json`)
	resp := postWebhook(t, app, body, sign(body, webhookSecret))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeBody(t, resp)
	assert.Equal(t, true, out["received"])
}

func TestWebhookProcessingFailureStillAccepted(t *testing.T) {
	db := setupTestDB(t)
	app := newWebhookApp(db, webhookSecret)

	// Simulate a storage failure; the provider contract is still 200
	require.NoError(t, db.Migrator().DropTable(&models.EmailEvent{}))

	body := []byte(`{"type":"email.delivered","data":{"email_id":"em_5","to":["a@b.com"]}}`)
	resp := postWebhook(t, app, body, sign(body, webhookSecret))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebhookResolvesByOutboundMessageBeforeRecency(t *testing.T) {
	db := setupTestDB(t)
	app := newWebhookApp(db, webhookSecret)

	older := models.Ticket{Name: "Old", Email: "same@example.com"}
	older.CreatedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, db.Create(&older).Error)

	newer := models.Ticket{Name: "New", Email: "same@example.com"}
	newer.CreatedAt = time.Now()
	require.NoError(t, db.Create(&newer).Error)

	// The message id maps to the older ticket; recency would pick the newer
	require.NoError(t, db.Create(&models.OutboundMessage{
		EmailID:  "em_owned",
		TicketID: utils.Pointer(older.ID),
		To:       "same@example.com",
		Kind:     models.OutboundKindReply,
	}).Error)

	body := []byte(`{"type":"email.delivered","data":{"email_id":"em_owned","to":["same@example.com"],"subject":"Hi"}}`)
	resp := postWebhook(t, app, body, sign(body, webhookSecret))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var event models.EmailEvent
	require.NoError(t, db.First(&event).Error)
	require.NotNil(t, event.TicketID)
	assert.Equal(t, older.ID, *event.TicketID)
}

func TestWebhookFallsBackToMostRecentTicketByEmail(t *testing.T) {
	db := setupTestDB(t)
	app := newWebhookApp(db, webhookSecret)

	older := models.Ticket{Name: "Old", Email: "same@example.com"}
	older.CreatedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, db.Create(&older).Error)

	newer := models.Ticket{Name: "New", Email: "same@example.com"}
	newer.CreatedAt = time.Now()
	require.NoError(t, db.Create(&newer).Error)

	body := []byte(`{"type":"email.delivered","data":{"email_id":"em_unknown","to":["same@example.com"],"subject":"Hi"}}`)
	resp := postWebhook(t, app, body, sign(body, webhookSecret))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var event models.EmailEvent
	require.NoError(t, db.First(&event).Error)
	require.NotNil(t, event.TicketID)
	assert.Equal(t, newer.ID, *event.TicketID)
}

func TestListEmailEventsFilter(t *testing.T) {
	db := setupTestDB(t)
	wc := NewWebhookController(db, testLogger(), "")

	app := fiber.New()
	app.Get("/email-events", wc.ListEmailEvents)

	require.NoError(t, db.Create(&models.EmailEvent{EmailID: "em_1", EventType: models.EmailEventDelivered}).Error)
	require.NoError(t, db.Create(&models.EmailEvent{EmailID: "em_2", EventType: models.EmailEventBounced}).Error)
	require.NoError(t, db.Create(&models.EmailEvent{EmailID: "em_3", EventType: models.EmailEventBounced}).Error)

	resp := doJSON(t, app, http.MethodGet, "/email-events?event_type=bounced", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeBody(t, resp)
	data := out["data"].([]interface{})
	assert.Len(t, data, 2)
}

func TestNormalizeEventType(t *testing.T) {
	for _, known := range []string{
		"email.sent", "email.delivered", "email.delivery_delayed",
		"email.complained", "email.bounced", "email.opened",
		"email.clicked", "email.unsubscribed",
	} {
		name, ok := normalizeEventType(known)
		assert.True(t, ok, known)
		assert.NotEmpty(t, name)
	}

	_, ok := normalizeEventType("email.something_else")
	assert.False(t, ok)
}
