package controller

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ismail6385/primeuaeservices-sub000/models"
	"github.com/ismail6385/primeuaeservices-sub000/utils"
)

type WebhookController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Secret string // shared webhook secret; empty disables verification
}

func NewWebhookController(db *gorm.DB, logger *log.Logger, secret string) *WebhookController {
	return &WebhookController{
		DB:     db,
		Logger: logger,
		Secret: secret,
	}
}

type resendWebhookPayload struct {
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
	Data      struct {
		EmailID    string   `json:"email_id"`
		To         []string `json:"to"`
		Subject    string   `json:"subject"`
		BounceType string   `json:"bounce_type"`
		Reason     string   `json:"reason"`
		Link       string   `json:"link"`
		Location   string   `json:"location"`
	} `json:"data"`
}

// HandleResendWebhook receives email lifecycle callbacks. Apart from a
// signature mismatch (401), the handler always answers 200 so the provider
// never retries; processing failures are visible only in logs.
func (wc *WebhookController) HandleResendWebhook(c *fiber.Ctx) error {
	body := c.Body()

	if wc.Secret == "" {
		wc.Logger.Println("⚠️ webhook signature verification skipped: no secret configured")
	} else if !verifySignature(body, c.Get("resend-signature"), wc.Secret) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid signature",
		})
	}

	var payload resendWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		wc.Logger.Printf("webhook: invalid payload: %v", err)
		return c.JSON(fiber.Map{"received": true, "error": "invalid payload"})
	}

	eventType, ok := normalizeEventType(payload.Type)
	if !ok {
		wc.Logger.Printf("webhook: unknown event type %q", payload.Type)
		return c.JSON(fiber.Map{"received": true})
	}

	recipient := ""
	if len(payload.Data.To) > 0 {
		recipient = payload.Data.To[0]
	}

	ticketID := wc.resolveTicket(payload.Data.EmailID, recipient)

	event := models.EmailEvent{
		EmailID:   payload.Data.EmailID,
		EventType: eventType,
		Recipient: recipient,
		Subject:   payload.Data.Subject,
		TicketID:  ticketID,
		Payload:   string(body),
	}
	if err := wc.DB.Create(&event).Error; err != nil {
		utils.LogError("email_event_insert_failed", err, map[string]interface{}{
			"event_type": eventType,
			"email_id":   payload.Data.EmailID,
		})
		return c.JSON(fiber.Map{"received": true})
	}

	if ticketID != nil {
		if note := noteForEvent(eventType, payload); note != "" {
			wc.appendTicketNote(*ticketID, note)
		}
	}

	return c.JSON(fiber.Map{"received": true})
}

// ListEmailEvents returns the most recent events for the admin activity view,
// capped at 1000 rows.
func (wc *WebhookController) ListEmailEvents(c *fiber.Ctx) error {
	query := wc.DB.Model(&models.EmailEvent{}).Order("created_at DESC").Limit(1000)

	if eventType := c.Query("event_type"); eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}
	if ticketID := c.Query("ticket_id"); ticketID != "" {
		query = query.Where("ticket_id = ?", utils.ParseUint(ticketID))
	}

	var events []models.EmailEvent
	if err := query.Find(&events).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch email events", err)
	}
	return c.JSON(utils.SuccessResponse(events))
}

// resolveTicket finds the ticket an event belongs to. The outbound message
// table (written at send time) is authoritative; matching the most recent
// ticket by recipient email is a heuristic fallback that can misattribute.
func (wc *WebhookController) resolveTicket(emailID, recipient string) *uint {
	if emailID != "" {
		var outbound models.OutboundMessage
		if err := wc.DB.Where("email_id = ?", emailID).First(&outbound).Error; err == nil {
			return outbound.TicketID
		}
	}

	if recipient == "" {
		return nil
	}
	var ticket models.Ticket
	if err := wc.DB.Where("email = ?", recipient).Order("created_at DESC").First(&ticket).Error; err != nil {
		return nil
	}
	return utils.Pointer(ticket.ID)
}

// appendTicketNote does a read-then-write append; concurrent appends can
// lose lines, which the notes log tolerates.
func (wc *WebhookController) appendTicketNote(ticketID uint, note string) {
	var ticket models.Ticket
	if err := wc.DB.First(&ticket, ticketID).Error; err != nil {
		wc.Logger.Printf("webhook: ticket %d not found for note append", ticketID)
		return
	}

	ticket.AppendNote(note)
	if err := wc.DB.Save(&ticket).Error; err != nil {
		utils.LogError("ticket_note_append_failed", err, map[string]interface{}{
			"ticket_id": ticketID,
		})
	}
}

// normalizeEventType maps the provider's "email.*" names onto the stored enum.
func normalizeEventType(t string) (string, bool) {
	name := strings.TrimPrefix(t, "email.")
	switch name {
	case models.EmailEventSent,
		models.EmailEventDelivered,
		models.EmailEventDelayed,
		models.EmailEventComplained,
		models.EmailEventBounced,
		models.EmailEventOpened,
		models.EmailEventClicked,
		models.EmailEventUnsubscribed:
		return name, true
	}
	return "", false
}

// noteForEvent builds the ticket note line for events worth surfacing to the
// admin. Sent/delayed/unsubscribed events are recorded but not noted.
func noteForEvent(eventType string, payload resendWebhookPayload) string {
	switch eventType {
	case models.EmailEventDelivered:
		return fmt.Sprintf("Email Delivered: %s (message %s)", payload.Data.Subject, payload.Data.EmailID)
	case models.EmailEventOpened:
		return fmt.Sprintf("Email Opened: %s (message %s)", payload.Data.Subject, payload.Data.EmailID)
	case models.EmailEventClicked:
		return fmt.Sprintf("Email Link Clicked: %s (message %s)", payload.Data.Link, payload.Data.EmailID)
	case models.EmailEventBounced:
		reason := payload.Data.Reason
		if reason == "" {
			reason = payload.Data.BounceType
		}
		return fmt.Sprintf("Email Bounced: %s (message %s)", reason, payload.Data.EmailID)
	case models.EmailEventComplained:
		return fmt.Sprintf("Spam Complaint received (message %s)", payload.Data.EmailID)
	}
	return ""
}

// verifySignature checks the hex HMAC-SHA256 of the raw body.
func verifySignature(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.TrimPrefix(signature, "sha256=")))
}
