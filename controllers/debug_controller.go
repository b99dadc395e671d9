package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ismail6385/primeuaeservices-sub000/models"
)

// DebugController exposes raw query endpoints used while developing the blog
// integration. These routes are only registered outside production.
type DebugController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDebugController(db *gorm.DB, logger *log.Logger) *DebugController {
	return &DebugController{
		DB:     db,
		Logger: logger,
	}
}

// DebugBlogPosts dumps every post row, any status, no shaping.
func (dc *DebugController) DebugBlogPosts(c *fiber.Ctx) error {
	var posts []models.BlogPost
	err := dc.DB.Preload("Tags").Find(&posts).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"count": len(posts),
		"posts": posts,
	})
}

// TestBlogInsert inserts a post straight from the request body, skipping the
// admin validation path, and returns the raw result.
func (dc *DebugController) TestBlogInsert(c *fiber.Ctx) error {
	var post models.BlogPost
	if err := c.BodyParser(&post); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	err := dc.DB.Create(&post).Error
	if err != nil {
		return c.JSON(fiber.Map{
			"inserted": false,
			"error":    err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"inserted": true,
		"post":     post,
	})
}
