package controller

import (
	"context"
	"errors"
	"log"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"journeyboard/config"
	"journeyboard/models"
	"journeyboard/utils"
)

type ReminderController struct {
	DB         *gorm.DB
	Logger     *log.Logger
	Dispatcher *utils.ReminderDispatcher
}

func NewReminderController(db *gorm.DB, logger *log.Logger, dispatcher *utils.ReminderDispatcher) *ReminderController {
	return &ReminderController{
		DB:         db,
		Logger:     logger,
		Dispatcher: dispatcher,
	}
}

type sendReminderInput struct {
	RecordID uint   `json:"record_id" validate:"required"`
	Intent   string `json:"intent" validate:"required,oneof=complete_profile choose_plan complete_payment custom"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}

// SendReminder dispatches one reminder to one user. The send runs inside
// the request: the operator waits for the outcome rather than getting a
// fire-and-forget acknowledgement.
func (rc *ReminderController) SendReminder(c *fiber.Ctx) error {
	var input sendReminderInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var record models.UserJourneyRecord
	if err := rc.DB.First(&record, input.RecordID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Journey record not found", err)
	}

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	result, err := rc.Dispatcher.Dispatch(ctx, &record, input.Intent, input.Subject, input.Message)
	if err != nil {
		if errors.Is(err, utils.ErrMissingFields) {
			// Blocked before any outbound call was made.
			return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.ErrMissingFields.Error(), nil)
		}

		rc.recordActivity(&record, input.Intent, input.Subject, input.Message, "", err)
		rc.reportDispatchFailure(&record, input.Intent, err)

		// The collaborator's message travels verbatim so the operator can
		// decide whether to retry.
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Failed to send reminder", err)
	}

	activity := rc.recordActivity(&record, input.Intent, result.Subject, result.Message, result.MessageID, nil)

	cfg := config.AppConfig
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message":            "Reminder sent successfully",
		"recipient":          result.Recipient,
		"message_id":         result.MessageID,
		"activity":           activity,
		"tracking_pixel_url": utils.GenerateTrackingPixelURL(cfg.BaseURL, result.MessageID, cfg.TrackingSecret),
	}))
}

func (rc *ReminderController) recordActivity(record *models.UserJourneyRecord, intent, subject, message, messageID string, sendErr error) *models.ReminderActivity {
	activity := models.ReminderActivity{
		UserID:       record.UserID,
		Email:        record.Email,
		FullName:     record.FullName,
		JourneyStage: record.JourneyStage,
		Intent:       intent,
		Subject:      subject,
		Message:      message,
		MessageID:    messageID,
		Status:       models.ReminderStatusSent,
		SentAt:       utils.Pointer(time.Now()),
	}
	if sendErr != nil {
		activity.Status = models.ReminderStatusFailed
		activity.Error = sendErr.Error()
		activity.SentAt = nil
	}

	if err := rc.DB.Create(&activity).Error; err != nil {
		rc.Logger.Printf("Failed to record reminder activity for user %s: %v", record.UserID, err)
	}
	return &activity
}

func (rc *ReminderController) reportDispatchFailure(record *models.UserJourneyRecord, intent string, err error) {
	logrus.WithFields(logrus.Fields{
		"user_id": record.UserID,
		"email":   record.Email,
		"stage":   record.JourneyStage,
		"intent":  intent,
	}).WithError(err).Error("reminder dispatch failed")

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", "reminder_dispatcher")
		scope.SetExtra("user_id", record.UserID)
		scope.SetExtra("intent", intent)
		sentry.CaptureException(err)
	})
}

// ListReminders returns the recent dispatch history, newest first.
func (rc *ReminderController) ListReminders(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var activities []models.ReminderActivity
	if err := rc.DB.Where("variant_id IS NULL").
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch reminders", err)
	}

	return c.JSON(utils.SuccessResponse(activities))
}

// GetReminderIntents exposes the built-in catalog for the compose dialog.
func (rc *ReminderController) GetReminderIntents(c *fiber.Ctx) error {
	return c.JSON(utils.SuccessResponse(utils.BuiltinIntents()))
}
