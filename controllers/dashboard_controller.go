package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ismail6385/primeuaeservices-sub000/models"
	"github.com/ismail6385/primeuaeservices-sub000/utils"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logger,
	}
}

// GetDashboardStats aggregates ticket and email-event counts for the admin
// landing page.
func (dc *DashboardController) GetDashboardStats(c *fiber.Ctx) error {
	stats := fiber.Map{}

	// Ticket counts per status
	type statusCount struct {
		Status string
		Count  int64
	}
	var ticketCounts []statusCount
	if err := dc.DB.Model(&models.Ticket{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&ticketCounts).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch stats", err)
	}
	tickets := fiber.Map{
		models.TicketStatusOpen:    int64(0),
		models.TicketStatusPending: int64(0),
		models.TicketStatusClosed:  int64(0),
	}
	var total int64
	for _, sc := range ticketCounts {
		tickets[sc.Status] = sc.Count
		total += sc.Count
	}
	tickets["total"] = total
	stats["tickets"] = tickets

	// Email event counts over the last 30 days
	var eventCounts []statusCount
	since := time.Now().AddDate(0, 0, -30)
	if err := dc.DB.Model(&models.EmailEvent{}).
		Select("event_type as status, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("event_type").
		Scan(&eventCounts).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch stats", err)
	}
	events := fiber.Map{}
	for _, ec := range eventCounts {
		events[ec.Status] = ec.Count
	}
	stats["email_events"] = events

	var published int64
	dc.DB.Model(&models.BlogPost{}).Where("status = ?", models.BlogStatusPublished).Count(&published)
	stats["published_posts"] = published

	// Most recent inquiries
	var recent []models.Ticket
	if err := dc.DB.Order("created_at DESC").Limit(5).Find(&recent).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch stats", err)
	}
	stats["recent_tickets"] = recent

	return c.JSON(utils.SuccessResponse(stats))
}
