package controller

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ismail6385/primeuaeservices-sub000/models"
	"github.com/ismail6385/primeuaeservices-sub000/utils"
)

type WhatsAppController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Gateway  *utils.WhatsAppClient
	Operator string // operator phone for new-lead pings

	Hub *TicketHub
}

func NewWhatsAppController(db *gorm.DB, logger *log.Logger, gateway *utils.WhatsAppClient) *WhatsAppController {
	return &WhatsAppController{
		DB:      db,
		Logger:  logger,
		Gateway: gateway,
	}
}

// HandleIncoming receives lead-dialog callbacks from the WhatsApp gateway and
// records each completed dialog as a ticket.
func (wc *WhatsAppController) HandleIncoming(c *fiber.Ctx) error {
	var input struct {
		From    string `json:"from" validate:"required"` // phone number
		Name    string `json:"name"`
		Email   string `json:"email"`
		Service string `json:"service"`
		Body    string `json:"body" validate:"required"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	name := input.Name
	if name == "" {
		name = "WhatsApp lead"
	}

	ticket := models.Ticket{
		Name:    name,
		Email:   input.Email,
		Phone:   input.From,
		Service: input.Service,
		Message: input.Body,
		Status:  models.TicketStatusOpen,
		Source:  models.TicketSourceWhatsApp,
	}

	if err := wc.DB.Create(&ticket).Error; err != nil {
		utils.LogError("whatsapp_lead_insert_failed", err, map[string]interface{}{
			"from": input.From,
		})
		// Same never-block policy as the contact form
		return c.JSON(fiber.Map{"success": true})
	}

	if wc.Hub != nil {
		wc.Hub.BroadcastTicket(ticket)
	}

	// Best-effort operator ping
	if wc.Gateway.Configured() && wc.Operator != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			msg := fmt.Sprintf("New WhatsApp lead #%d from %s (%s)", ticket.ID, ticket.Name, ticket.Phone)
			if err := wc.Gateway.SendMessage(ctx, wc.Operator, msg); err != nil {
				utils.LogError("whatsapp_operator_ping_failed", err, map[string]interface{}{
					"ticket_id": ticket.ID,
				})
			}
		}()
	}

	return c.JSON(fiber.Map{"success": true, "ticketId": ticket.ID})
}
