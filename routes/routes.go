package routes

import (
	"log"
	"os"
	"time"

	"journeyboard/config"
	controller "journeyboard/controllers"
	"journeyboard/middleware"
	"journeyboard/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

func buildDispatcher(dispatchLogger *log.Logger) *utils.ReminderDispatcher {
	var notifier utils.NotifierInterface
	if config.AppConfig.NotifyFunctionURL != "" {
		notifier = utils.NewFunctionNotifier(config.AppConfig.NotifyFunctionURL, 15*time.Second)
	} else {
		notifier = &utils.SMTPNotifier{
			Host:      config.AppConfig.SMTP.Host,
			Port:      config.AppConfig.SMTP.Port,
			Username:  config.AppConfig.SMTP.Username,
			Password:  config.AppConfig.SMTP.Password,
			FromEmail: config.AppConfig.FromEmail,
			FromName:  config.AppConfig.FromName,
		}
	}
	return utils.NewReminderDispatcher(notifier, dispatchLogger)
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize controllers with their respective loggers
	funnelController := controller.NewFunnelController(db, log.New(os.Stdout, "FUNNEL: ", log.LstdFlags))
	analyticsController := controller.NewAnalyticsController(db, log.New(os.Stdout, "ANALYTICS: ", log.LstdFlags))
	templateController := controller.NewTemplateController(db, log.New(os.Stdout, "TEMPLATE: ", log.LstdFlags))
	variantController := controller.NewVariantController(db, log.New(os.Stdout, "VARIANT: ", log.LstdFlags))
	trackingController := controller.NewTrackingController(db, log.New(os.Stdout, "TRACKING: ", log.LstdFlags))

	reminderLogger := log.New(os.Stdout, "REMINDER: ", log.Ldate|log.Ltime|log.Lshortfile)
	reminderController := controller.NewReminderController(db, reminderLogger, buildDispatcher(reminderLogger))

	// API group with versioning and request logging
	api := app.Group("/api/v1", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Journey routes
	journey := api.Group("/journey")
	journey.Get("/funnel", funnelController.GetFunnel)
	journey.Get("/users", funnelController.GetUsersInStage)
	journey.Get("/analytics", analyticsController.GetJourneyAnalytics)
	journey.Get("/reminders", reminderController.ListReminders)
	journey.Get("/reminders/intents", reminderController.GetReminderIntents)
	journey.Post("/reminders", middleware.ReminderRateLimiter(), reminderController.SendReminder)

	// WebSocket route for live funnel updates
	app.Get("/api/v1/journey/funnel/live", websocket.New(func(c *websocket.Conn) {
		funnelController.HandleFunnelLiveWS(c)
	}))

	// Template routes
	template := api.Group("/templates")
	template.Post("/", templateController.CreateTemplate)
	template.Get("/", templateController.GetTemplates)
	template.Get("/:id", templateController.GetTemplate)
	template.Put("/:id", templateController.UpdateTemplate)
	template.Delete("/:id", templateController.DeleteTemplate)
	template.Get("/:id/preview", templateController.PreviewTemplate)
	template.Get("/:id/metrics", variantController.GetVariantMetrics)

	// Variant routes
	variant := api.Group("/variants")
	variant.Get("/", variantController.GetVariants)
	variant.Post("/", variantController.CreateVariant)

	// Delivery event routes
	api.Post("/events/webhook", trackingController.HandleEventWebhook)
	app.Get("/track/open/:messageID/:token", trackingController.HandleOpenTracking)
	app.Get("/track/click/:messageID/:token", trackingController.HandleClickTracking)

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup API routes
	SetupAPIRoutes(app, db)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
