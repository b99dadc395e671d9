package controller

import (
	"context"
	"log"
	"time"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ismail6385/primeuaeservices-sub000/models"
	"github.com/ismail6385/primeuaeservices-sub000/utils"
)

type TicketController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Mail   utils.MailServiceInterface

	FromEmail string
}

func NewTicketController(db *gorm.DB, logger *log.Logger, mail utils.MailServiceInterface) *TicketController {
	return &TicketController{
		DB:     db,
		Logger: logger,
		Mail:   mail,
	}
}

// GetTickets returns tickets for the admin table, newest first. Status and
// free-text filters are optional; the list is capped rather than paginated.
func (tc *TicketController) GetTickets(c *fiber.Ctx) error {
	status := c.Query("status")
	search := c.Query("search")

	query := tc.DB.Model(&models.Ticket{}).Order("created_at DESC").Limit(1000)

	if status != "" {
		if !models.ValidTicketStatus(status) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown ticket status", nil)
		}
		query = query.Where("status = ?", status)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"name LIKE ? OR email LIKE ? OR phone LIKE ? OR service LIKE ?",
			like, like, like, like,
		)
	}

	var tickets []models.Ticket
	if err := query.Find(&tickets).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tickets", err)
	}

	return c.JSON(utils.SuccessResponse(tickets))
}

func (tc *TicketController) GetTicket(c *fiber.Ctx) error {
	var ticket models.Ticket
	if err := tc.DB.First(&ticket, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Ticket not found", nil)
	}
	return c.JSON(utils.SuccessResponse(ticket))
}

// UpdateTicket replaces the editable fields. Concurrent edits resolve by
// last write wins; there is no optimistic-lock check.
func (tc *TicketController) UpdateTicket(c *fiber.Ctx) error {
	var ticket models.Ticket
	if err := tc.DB.First(&ticket, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Ticket not found", nil)
	}

	var input struct {
		Name    string `json:"name" validate:"required"`
		Email   string `json:"email" validate:"required"`
		Phone   string `json:"phone"`
		Service string `json:"service"`
		Message string `json:"message"`
		Status  string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.Status != "" && !models.ValidTicketStatus(input.Status) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown ticket status", nil)
	}

	ticket.Name = input.Name
	ticket.Email = input.Email
	ticket.Phone = input.Phone
	ticket.Service = input.Service
	ticket.Message = input.Message
	if input.Status != "" {
		ticket.Status = input.Status
	}

	if err := tc.DB.Save(&ticket).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update ticket", err)
	}
	return c.JSON(utils.SuccessResponse(ticket))
}

// UpdateTicketStatus flips just the lifecycle status.
func (tc *TicketController) UpdateTicketStatus(c *fiber.Ctx) error {
	var input struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if !models.ValidTicketStatus(input.Status) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown ticket status", nil)
	}

	var ticket models.Ticket
	if err := tc.DB.First(&ticket, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Ticket not found", nil)
	}

	ticket.Status = input.Status
	if err := tc.DB.Save(&ticket).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update ticket", err)
	}
	return c.JSON(utils.SuccessResponse(ticket))
}

func (tc *TicketController) DeleteTicket(c *fiber.Ctx) error {
	if err := tc.DB.Delete(&models.Ticket{}, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete ticket", err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Ticket deleted"})
}

// SendReply sends a reply email to a customer. Unlike intake, the recipient
// address is checked for a valid format here.
func (tc *TicketController) SendReply(c *fiber.Ctx) error {
	var input struct {
		TicketID     *uint  `json:"ticketId"`
		To           string `json:"to" validate:"required"`
		Subject      string `json:"subject" validate:"required"`
		Message      string `json:"message" validate:"required"`
		CustomerName string `json:"customerName"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := checkmail.ValidateFormat(input.To); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid recipient email address"})
	}

	if tc.Mail == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Email service is not configured",
		})
	}

	customerName := input.CustomerName
	if customerName == "" {
		customerName = "Customer"
	}

	html, err := utils.RenderEmailTemplate("ticket_reply", fiber.Map{
		"Subject":      input.Subject,
		"CustomerName": customerName,
		"Message":      input.Message,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to render email"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	emailID, err := tc.Mail.SendEmail(ctx, utils.SendEmailInput{
		From:    tc.FromEmail,
		To:      []string{input.To},
		Subject: input.Subject,
		HTML:    html,
	})
	if err != nil {
		utils.LogError("reply_send_failed", err, map[string]interface{}{
			"to": input.To,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to send email"})
	}

	// Record the message id so webhook events resolve to the right ticket
	outbound := models.OutboundMessage{
		EmailID:  emailID,
		TicketID: input.TicketID,
		To:       input.To,
		Subject:  input.Subject,
		Kind:     models.OutboundKindReply,
	}
	if err := tc.DB.Create(&outbound).Error; err != nil {
		tc.Logger.Printf("failed to record outbound message %s: %v", emailID, err)
	}

	if input.TicketID != nil {
		var ticket models.Ticket
		if err := tc.DB.First(&ticket, *input.TicketID).Error; err == nil {
			ticket.AppendNote("Reply sent to " + input.To + ": " + input.Subject)
			if err := tc.DB.Save(&ticket).Error; err != nil {
				tc.Logger.Printf("failed to append reply note to ticket %d: %v", ticket.ID, err)
			}
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Reply sent",
		"emailId": emailID,
	})
}
