package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"github.com/ismail6385/primeuaeservices-sub000/config"
	controller "github.com/ismail6385/primeuaeservices-sub000/controllers"
	"github.com/ismail6385/primeuaeservices-sub000/middleware"
	"github.com/ismail6385/primeuaeservices-sub000/utils"
)

// SetupRoutes wires every controller and mounts the public, webhook and
// admin route groups.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	cfg := config.AppConfig

	// Shared clients
	var resendClient *utils.ResendClient
	if cfg.ResendAPIKey != "" {
		resendClient = utils.NewResendClient(cfg.ResendAPIKey, log.New(os.Stdout, "RESEND: ", log.LstdFlags))
	}
	whatsappClient := utils.NewWhatsAppClient(cfg.WhatsAppAPIURL, cfg.WhatsAppToken, log.New(os.Stdout, "WHATSAPP: ", log.LstdFlags))

	var mailService utils.MailServiceInterface
	if resendClient != nil {
		mailService = resendClient
	}

	hub := controller.NewTicketHub(log.New(os.Stdout, "WS: ", log.LstdFlags))

	// Controllers
	contactController := controller.NewContactController(db, log.New(os.Stdout, "CONTACT: ", log.LstdFlags), mailService)
	contactController.FromEmail = cfg.FromEmail
	contactController.OperatorEmail = cfg.OperatorEmail
	contactController.InternalNotifyURL = cfg.InternalNotifyURL
	contactController.Hub = hub

	whatsappController := controller.NewWhatsAppController(db, log.New(os.Stdout, "WHATSAPP: ", log.LstdFlags), whatsappClient)
	whatsappController.Operator = cfg.WhatsAppOperator
	whatsappController.Hub = hub

	ticketController := controller.NewTicketController(db, log.New(os.Stdout, "TICKET: ", log.LstdFlags), mailService)
	ticketController.FromEmail = cfg.FromEmail

	webhookController := controller.NewWebhookController(db, log.New(os.Stdout, "WEBHOOK: ", log.LstdFlags), cfg.ResendWebhookSecret)
	blogController := controller.NewBlogController(db, log.New(os.Stdout, "BLOG: ", log.LstdFlags))

	broadcastController := controller.NewBroadcastController(resendClient, log.New(os.Stdout, "BROADCAST: ", log.LstdFlags))
	broadcastController.FromEmail = cfg.FromEmail

	authController := controller.NewAuthController(db, log.New(os.Stdout, "AUTH: ", log.LstdFlags), cfg.JWTSecret)
	settingsController := controller.NewSettingsController(db, log.New(os.Stdout, "SETTINGS: ", log.LstdFlags))
	dashboardController := controller.NewDashboardController(db, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))

	requestLogger := logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	})

	// Public endpoints (no authentication)
	public := app.Group("/api", requestLogger)
	public.Post("/contact", middleware.ContactRateLimiter(), contactController.SubmitContact)
	public.Get("/blog", blogController.GetPublishedPosts)
	public.Get("/blog/:slug", blogController.GetPostBySlug)

	// Provider callbacks
	public.Post("/webhooks/resend", webhookController.HandleResendWebhook)
	public.Post("/whatsapp/incoming", whatsappController.HandleIncoming)

	// Auth
	auth := app.Group("/auth", requestLogger)
	auth.Post("/login", authController.Login)
	auth.Get("/me", middleware.Protected(db, cfg.JWTSecret), authController.Me)

	// Admin API (JWT protected); the /api group logger already covers it
	admin := app.Group("/api/admin", middleware.Protected(db, cfg.JWTSecret))

	tickets := admin.Group("/tickets")

	// Live ticket feed for the admin dashboard; registered before /:id so
	// the path is not swallowed by the param route
	tickets.Use("/feed", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	tickets.Get("/feed", websocket.New(hub.HandleFeed))

	tickets.Get("/", ticketController.GetTickets)
	tickets.Post("/reply", ticketController.SendReply)
	tickets.Get("/:id", ticketController.GetTicket)
	tickets.Put("/:id", ticketController.UpdateTicket)
	tickets.Patch("/:id/status", ticketController.UpdateTicketStatus)
	tickets.Delete("/:id", ticketController.DeleteTicket)

	blog := admin.Group("/blog")
	blog.Get("/", blogController.GetPosts)
	blog.Post("/", blogController.CreatePost)
	blog.Get("/:id", blogController.GetPost)
	blog.Put("/:id", blogController.UpdatePost)
	blog.Post("/:id/publish", blogController.PublishPost)
	blog.Delete("/:id", blogController.DeletePost)

	broadcasts := admin.Group("/broadcasts")
	broadcasts.Get("/", broadcastController.GetBroadcasts)
	broadcasts.Post("/", broadcastController.CreateBroadcast)
	broadcasts.Get("/:id", broadcastController.GetBroadcast)
	broadcasts.Patch("/:id", broadcastController.UpdateBroadcast)
	broadcasts.Delete("/:id", broadcastController.DeleteBroadcast)
	broadcasts.Post("/:id/send", broadcastController.SendBroadcast)

	admin.Get("/email-events", webhookController.ListEmailEvents)

	admin.Get("/settings", settingsController.GetSettings)
	admin.Put("/settings", settingsController.UpdateSettings)
	admin.Get("/dashboard/stats", dashboardController.GetDashboardStats)

	// Debug endpoints stay off in production
	if cfg.Environment != "production" {
		debugController := controller.NewDebugController(db, log.New(os.Stdout, "DEBUG: ", log.LstdFlags))
		app.Get("/api/debug/blog-posts", debugController.DebugBlogPosts)
		app.Post("/api/test/blog-insert", debugController.TestBlogInsert)
	}

	log.Println("✅ Routes initialized successfully")
}
