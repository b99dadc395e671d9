package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/ismail6385/primeuaeservices-sub000/utils"
)

// BroadcastController is a thin proxy onto the email provider's broadcast
// API. The application holds no copy of broadcast state.
type BroadcastController struct {
	Resend *utils.ResendClient
	Logger *log.Logger

	FromEmail string
}

func NewBroadcastController(resend *utils.ResendClient, logger *log.Logger) *BroadcastController {
	return &BroadcastController{
		Resend: resend,
		Logger: logger,
	}
}

func notConfigured(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Email provider is not configured",
	})
}

func (bc *BroadcastController) GetBroadcasts(c *fiber.Ctx) error {
	if bc.Resend == nil {
		return notConfigured(c)
	}

	broadcasts, err := bc.Resend.ListBroadcasts(c.Context())
	if err != nil {
		utils.LogError("broadcast_list_failed", err, nil)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch broadcasts", err)
	}
	return c.JSON(utils.SuccessResponse(broadcasts))
}

func (bc *BroadcastController) CreateBroadcast(c *fiber.Ctx) error {
	if bc.Resend == nil {
		return notConfigured(c)
	}

	var input struct {
		Name      string `json:"name"`
		Subject   string `json:"subject" validate:"required"`
		HTML      string `json:"html" validate:"required"`
		SegmentID string `json:"segment_id" validate:"required"`
		From      string `json:"from"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	from := input.From
	if from == "" {
		from = bc.FromEmail
	}

	id, err := bc.Resend.CreateBroadcast(c.Context(), utils.CreateBroadcastInput{
		Name:       input.Name,
		AudienceID: input.SegmentID,
		From:       from,
		Subject:    input.Subject,
		HTML:       input.HTML,
	})
	if err != nil {
		utils.LogError("broadcast_create_failed", err, nil)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create broadcast", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "id": id})
}

func (bc *BroadcastController) GetBroadcast(c *fiber.Ctx) error {
	if bc.Resend == nil {
		return notConfigured(c)
	}

	broadcast, err := bc.Resend.GetBroadcast(c.Context(), c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Broadcast not found", err)
	}
	return c.JSON(utils.SuccessResponse(broadcast))
}

func (bc *BroadcastController) UpdateBroadcast(c *fiber.Ctx) error {
	if bc.Resend == nil {
		return notConfigured(c)
	}

	var input struct {
		Name      string `json:"name"`
		Subject   string `json:"subject"`
		HTML      string `json:"html"`
		SegmentID string `json:"segment_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	err := bc.Resend.UpdateBroadcast(c.Context(), c.Params("id"), utils.CreateBroadcastInput{
		Name:       input.Name,
		AudienceID: input.SegmentID,
		Subject:    input.Subject,
		HTML:       input.HTML,
	})
	if err != nil {
		utils.LogError("broadcast_update_failed", err, map[string]interface{}{
			"broadcast_id": c.Params("id"),
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update broadcast", err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Broadcast updated"})
}

func (bc *BroadcastController) DeleteBroadcast(c *fiber.Ctx) error {
	if bc.Resend == nil {
		return notConfigured(c)
	}

	if err := bc.Resend.DeleteBroadcast(c.Context(), c.Params("id")); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete broadcast", err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Broadcast deleted"})
}

func (bc *BroadcastController) SendBroadcast(c *fiber.Ctx) error {
	if bc.Resend == nil {
		return notConfigured(c)
	}

	var input struct {
		ScheduledAt string `json:"scheduled_at"`
	}
	// Body is optional for immediate sends
	_ = c.BodyParser(&input)

	id, err := bc.Resend.SendBroadcast(c.Context(), c.Params("id"), input.ScheduledAt)
	if err != nil {
		utils.LogError("broadcast_send_failed", err, map[string]interface{}{
			"broadcast_id": c.Params("id"),
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to send broadcast", err)
	}
	return c.JSON(fiber.Map{"success": true, "id": id})
}
