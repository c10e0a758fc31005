package controller

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"journeyboard/models"
	"journeyboard/utils"
)

type AnalyticsController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewAnalyticsController(db *gorm.DB, logger *log.Logger) *AnalyticsController {
	return &AnalyticsController{DB: db, Logger: logger}
}

const dateParamLayout = "2006-01-02"

var (
	errParamDateFormat = errors.New("expected YYYY-MM-DD")
	errEndBeforeStart  = errors.New("end_date is before start_date")
)

// GetJourneyAnalytics returns per-day per-stage metrics for the requested
// date range, plus daily rollups and an overall summary. Defaults to the
// trailing 30 days when no range is given.
func (ac *AnalyticsController) GetJourneyAnalytics(c *fiber.Ctx) error {
	now := time.Now()
	start := now.AddDate(0, 0, -30)
	end := now
	displayEnd := now

	if raw := c.Query("start_date"); raw != "" {
		parsed, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid start_date", errParamDateFormat)
		}
		start = parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid end_date", errParamDateFormat)
		}
		// Make the end date inclusive
		displayEnd = parsed
		end = parsed.AddDate(0, 0, 1)
	}
	if end.Before(start) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid date range", errEndBeforeStart)
	}

	stageFilter := models.JourneyStage("")
	if raw := c.Query("stage"); raw != "" && raw != "all" {
		parsed, err := models.ParseStage(raw)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid stage", err)
		}
		stageFilter = parsed
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	var records []models.UserJourneyRecord
	err := ac.DB.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Find(&records).Error
	if err != nil {
		ac.Logger.Printf("Failed to load journey records for analytics: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute analytics", err)
	}

	metrics := utils.BuildDailyMetrics(records, now)
	metrics = utils.FilterByStage(metrics, stageFilter)
	daily := utils.AggregateByDate(metrics)
	summary := utils.SummarizeDaily(metrics)

	return c.JSON(fiber.Map{
		"start_date": start.Format(dateParamLayout),
		"end_date":   displayEnd.Format(dateParamLayout),
		"stage":      string(stageFilter),
		"metrics":    metrics,
		"daily":      daily,
		"summary":    summary,
	})
}
