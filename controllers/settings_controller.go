package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ismail6385/primeuaeservices-sub000/models"
	"github.com/ismail6385/primeuaeservices-sub000/utils"
)

type SettingsController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSettingsController(db *gorm.DB, logger *log.Logger) *SettingsController {
	return &SettingsController{
		DB:     db,
		Logger: logger,
	}
}

// GetSettings returns the profile row for the current admin, creating the
// default row on first read.
func (sc *SettingsController) GetSettings(c *fiber.Ctx) error {
	admin := c.Locals("admin").(*models.AdminUser)

	var settings models.AdminSetting
	err := sc.DB.Where("admin_user_id = ?", admin.ID).
		Attrs(models.AdminSetting{
			AdminUserID:    admin.ID,
			DisplayName:    admin.Name,
			NotifyEmail:    admin.Email,
			NotifyOnTicket: true,
			NotifyOnBounce: true,
			Theme:          "light",
		}).
		FirstOrCreate(&settings).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch settings", err)
	}

	return c.JSON(utils.SuccessResponse(settings))
}

// UpdateSettings upserts the profile row. Last write wins.
func (sc *SettingsController) UpdateSettings(c *fiber.Ctx) error {
	admin := c.Locals("admin").(*models.AdminUser)

	var input struct {
		DisplayName    string `json:"display_name"`
		NotifyEmail    string `json:"notify_email"`
		NotifyOnTicket *bool  `json:"notify_on_ticket"`
		NotifyOnBounce *bool  `json:"notify_on_bounce"`
		DailyDigest    *bool  `json:"daily_digest"`
		Theme          string `json:"theme"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	var settings models.AdminSetting
	if err := sc.DB.Where("admin_user_id = ?", admin.ID).FirstOrCreate(&settings, models.AdminSetting{AdminUserID: admin.ID}).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load settings", err)
	}

	if input.DisplayName != "" {
		settings.DisplayName = input.DisplayName
	}
	if input.NotifyEmail != "" {
		settings.NotifyEmail = input.NotifyEmail
	}
	if input.NotifyOnTicket != nil {
		settings.NotifyOnTicket = *input.NotifyOnTicket
	}
	if input.NotifyOnBounce != nil {
		settings.NotifyOnBounce = *input.NotifyOnBounce
	}
	if input.DailyDigest != nil {
		settings.DailyDigest = *input.DailyDigest
	}
	if input.Theme != "" {
		settings.Theme = input.Theme
	}

	if err := sc.DB.Save(&settings).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update settings", err)
	}
	return c.JSON(utils.SuccessResponse(settings))
}
