package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ismail6385/primeuaeservices-sub000/models"
	"github.com/ismail6385/primeuaeservices-sub000/utils"
)

type AuthController struct {
	DB        *gorm.DB
	Logger    *log.Logger
	JWTSecret string
}

func NewAuthController(db *gorm.DB, logger *log.Logger, jwtSecret string) *AuthController {
	return &AuthController{
		DB:        db,
		Logger:    logger,
		JWTSecret: jwtSecret,
	}
}

// Login authenticates an admin and returns an access token.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var admin models.AdminUser
	if err := ac.DB.Where("email = ?", input.Email).First(&admin).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid email or password",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid email or password",
		})
	}

	token, err := utils.GenerateAdminToken(admin.ID, ac.JWTSecret)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to issue token", err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"access_token": token,
		"admin": fiber.Map{
			"id":    admin.ID,
			"email": admin.Email,
			"name":  admin.Name,
		},
	})
}

// Me returns the authenticated admin.
func (ac *AuthController) Me(c *fiber.Ctx) error {
	admin := c.Locals("admin").(*models.AdminUser)
	return c.JSON(utils.SuccessResponse(admin))
}

// EnsureAdminUser seeds the operator account on first boot. Existing
// accounts are left untouched.
func EnsureAdminUser(db *gorm.DB, email, password, name string, logger *log.Logger) error {
	if email == "" || password == "" {
		logger.Println("⚠️ ADMIN_EMAIL/ADMIN_PASSWORD not set - no admin account seeded")
		return nil
	}

	var count int64
	if err := db.Model(&models.AdminUser{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.AdminUser{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Printf("Seeded admin account for %s", email)
	return nil
}
