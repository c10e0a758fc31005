package controller

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"journeyboard/config"
	"journeyboard/models"
	"journeyboard/utils"
)

type TrackingController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTrackingController(db *gorm.DB, logger *log.Logger) *TrackingController {
	return &TrackingController{DB: db, Logger: logger}
}

// HandleOpenTracking records a reminder open and serves the pixel.
func (tc *TrackingController) HandleOpenTracking(c *fiber.Ctx) error {
	messageID := c.Params("messageID")
	token := c.Params("token")

	if !utils.VerifyTrackingToken(messageID, config.AppConfig.TrackingSecret, token) {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid token")
	}

	tc.updateOpenStats(messageID)

	return c.Type("gif").Send(transparentPixel())
}

// HandleClickTracking records a link click and forwards to the original URL.
func (tc *TrackingController) HandleClickTracking(c *fiber.Ctx) error {
	messageID := c.Params("messageID")
	token := c.Params("token")
	originalURL := c.Query("url")

	if !utils.VerifyTrackingToken(messageID, config.AppConfig.TrackingSecret, token) {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid token")
	}
	if originalURL == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Missing url")
	}

	tc.updateClickStats(messageID)

	return c.Redirect(originalURL, fiber.StatusFound)
}

// HandleEventWebhook processes events reported by the external sender.
// A send event registers a variant campaign dispatch; open, click and
// conversion events update the matching activity row.
func (tc *TrackingController) HandleEventWebhook(c *fiber.Ctx) error {
	var input struct {
		EventType string `json:"event_type"` // send, open, click, conversion
		MessageID string `json:"message_id"`
		Timestamp int64  `json:"timestamp"`

		// send events only
		VariantID    *uint  `json:"variant_id"`
		UserID       string `json:"user_id"`
		Email        string `json:"email"`
		FullName     string `json:"full_name"`
		JourneyStage string `json:"journey_stage"`
		Subject      string `json:"subject"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if input.EventType == "send" {
		return tc.registerVariantSend(c, input.MessageID, input.VariantID, input.UserID,
			input.Email, input.FullName, input.JourneyStage, input.Subject, input.Timestamp)
	}

	var activity models.ReminderActivity
	if err := tc.DB.Where("message_id = ?", input.MessageID).First(&activity).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Activity not found", nil)
	}

	eventTime := time.Now()
	if input.Timestamp > 0 {
		eventTime = time.Unix(input.Timestamp, 0)
	}

	switch input.EventType {
	case "open":
		if activity.OpenedAt == nil {
			activity.OpenedAt = utils.Pointer(eventTime)
		}
		activity.OpenCount++
	case "click":
		if activity.ClickedAt == nil {
			activity.ClickedAt = utils.Pointer(eventTime)
		}
		activity.ClickCount++
	case "conversion":
		if activity.ConvertedAt == nil {
			activity.ConvertedAt = utils.Pointer(eventTime)
		}
	default:
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown event type", fmt.Errorf("unsupported event %q", input.EventType))
	}

	if err := tc.DB.Save(&activity).Error; err != nil {
		tc.Logger.Printf("Failed to record %s event for message %s: %v", input.EventType, input.MessageID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update activity", err)
	}

	return c.JSON(fiber.Map{
		"message": "Webhook processed successfully",
	})
}

func (tc *TrackingController) registerVariantSend(c *fiber.Ctx, messageID string, variantID *uint, userID, email, fullName, journeyStage, subject string, timestamp int64) error {
	if messageID == "" || variantID == nil || email == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Missing send event fields", nil)
	}

	stage, err := models.ParseStage(journeyStage)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid journey stage", err)
	}

	var variant models.ABVariant
	if err := tc.DB.First(&variant, *variantID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Variant not found", nil)
	}

	sentAt := time.Now()
	if timestamp > 0 {
		sentAt = time.Unix(timestamp, 0)
	}

	activity := models.ReminderActivity{
		UserID:       userID,
		Email:        email,
		FullName:     fullName,
		JourneyStage: stage,
		VariantID:    variantID,
		Intent:       "variant",
		Subject:      subject,
		MessageID:    messageID,
		Status:       models.ReminderStatusSent,
		SentAt:       &sentAt,
	}

	if err := tc.DB.Create(&activity).Error; err != nil {
		tc.Logger.Printf("Failed to register variant send %s: %v", messageID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to register send", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Send registered successfully",
		"activity": activity,
	})
}

func (tc *TrackingController) updateOpenStats(messageID string) {
	tc.DB.Model(&models.ReminderActivity{}).
		Where("message_id = ?", messageID).
		Updates(map[string]interface{}{
			"open_count": gorm.Expr("open_count + 1"),
			"opened_at":  gorm.Expr("COALESCE(opened_at, ?)", time.Now()),
		})
}

func (tc *TrackingController) updateClickStats(messageID string) {
	tc.DB.Model(&models.ReminderActivity{}).
		Where("message_id = ?", messageID).
		Updates(map[string]interface{}{
			"click_count": gorm.Expr("click_count + 1"),
			"clicked_at":  gorm.Expr("COALESCE(clicked_at, ?)", time.Now()),
		})
}

func transparentPixel() []byte {
	// 1x1 transparent GIF
	return []byte{
		0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
		0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x21,
		0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00,
		0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44,
		0x01, 0x00, 0x3b,
	}
}
