package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ismail6385/primeuaeservices-sub000/models"
	"github.com/ismail6385/primeuaeservices-sub000/utils"
)

type ContactController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Mail   utils.MailServiceInterface

	FromEmail         string
	OperatorEmail     string
	InternalNotifyURL string

	Hub *TicketHub
}

func NewContactController(db *gorm.DB, logger *log.Logger, mail utils.MailServiceInterface) *ContactController {
	return &ContactController{
		DB:     db,
		Logger: logger,
		Mail:   mail,
	}
}

// SubmitContact handles public contact form submissions. The policy is to
// never block the visitor: once validation passes the response reports
// success, and database or email failures are only logged.
func (cc *ContactController) SubmitContact(c *fiber.Ctx) error {
	var input struct {
		Name    string `json:"name" validate:"required"`
		Email   string `json:"email" validate:"required"`
		Phone   string `json:"phone" validate:"required"`
		Service string `json:"service"`
		Message string `json:"message" validate:"required"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	// Presence validation only; the intake path accepts any phone/email shape
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	ticket := models.Ticket{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Service: input.Service,
		Message: input.Message,
		Status:  models.TicketStatusOpen,
		Source:  models.TicketSourceContactForm,
	}

	if err := cc.DB.Create(&ticket).Error; err != nil {
		// Deliberately not surfaced to the submitter
		utils.LogError("contact_insert_failed", err, map[string]interface{}{
			"email": input.Email,
		})
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Thank you for contacting us. We will get back to you shortly.",
		})
	}

	if cc.Hub != nil {
		cc.Hub.BroadcastTicket(ticket)
	}

	// Best-effort operator notification; a failed send is logged and lost
	emailID := cc.notifyOperator(ticket)

	// Redundant internal notification, fully fire-and-forget
	go cc.notifyInternal(ticket)

	resp := fiber.Map{
		"success": true,
		"message": "Thank you for contacting us. We will get back to you shortly.",
	}
	if emailID != "" {
		resp["emailId"] = emailID
	}
	return c.JSON(resp)
}

func (cc *ContactController) notifyOperator(ticket models.Ticket) string {
	if cc.Mail == nil || cc.OperatorEmail == "" {
		cc.Logger.Println("operator notification skipped: mail service not configured")
		return ""
	}

	html, err := utils.RenderEmailTemplate("contact_notification", fiber.Map{
		"TicketID": ticket.ID,
		"Name":     ticket.Name,
		"Email":    ticket.Email,
		"Phone":    ticket.Phone,
		"Service":  ticket.Service,
		"Message":  ticket.Message,
	})
	if err != nil {
		utils.LogError("contact_notification_render_failed", err, nil)
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	emailID, err := cc.Mail.SendEmail(ctx, utils.SendEmailInput{
		From:    cc.FromEmail,
		To:      []string{cc.OperatorEmail},
		Subject: "New inquiry: " + ticket.Name,
		HTML:    html,
		ReplyTo: ticket.Email,
	})
	if err != nil {
		utils.LogError("contact_notification_failed", err, map[string]interface{}{
			"ticket_id": ticket.ID,
		})
		return ""
	}

	outbound := models.OutboundMessage{
		EmailID:  emailID,
		TicketID: utils.Pointer(ticket.ID),
		To:       cc.OperatorEmail,
		Subject:  "New inquiry: " + ticket.Name,
		Kind:     models.OutboundKindContactNotification,
	}
	if err := cc.DB.Create(&outbound).Error; err != nil {
		cc.Logger.Printf("failed to record outbound message %s: %v", emailID, err)
	}
	return emailID
}

func (cc *ContactController) notifyInternal(ticket models.Ticket) {
	if cc.InternalNotifyURL == "" {
		return
	}

	payload, err := json.Marshal(fiber.Map{
		"ticket_id": ticket.ID,
		"name":      ticket.Name,
		"email":     ticket.Email,
		"phone":     ticket.Phone,
		"service":   ticket.Service,
		"source":    ticket.Source,
	})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cc.InternalNotifyURL, bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		utils.LogError("internal_notify_failed", err, map[string]interface{}{
			"ticket_id": ticket.ID,
		})
		return
	}
	resp.Body.Close()
}
