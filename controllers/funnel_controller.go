package controller

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"journeyboard/models"
	"journeyboard/utils"
)

type FunnelController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewFunnelController(db *gorm.DB, logger *log.Logger) *FunnelController {
	return &FunnelController{
		DB:     db,
		Logger: logger,
	}
}

// FunnelResponse bundles the per-stage stats with the derived headline
// numbers so the dashboard renders from a single fetch.
type FunnelResponse struct {
	Stats   []utils.FunnelStat  `json:"stats"`
	Summary utils.FunnelSummary `json:"summary"`
}

// RosterEntry is a journey record annotated with its derived fields.
type RosterEntry struct {
	models.UserJourneyRecord
	StageLabel     string  `json:"stage_label"`
	HoursInStage   float64 `json:"hours_in_stage"`
	NeedsAttention bool    `json:"needs_attention"`
}

// GetFunnel computes the funnel over all current journey records.
func (fc *FunnelController) GetFunnel(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	response, err := fc.computeFunnel(ctx)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute funnel", err)
	}

	return c.JSON(utils.SuccessResponse(response))
}

func (fc *FunnelController) computeFunnel(ctx context.Context) (*FunnelResponse, error) {
	var records []models.UserJourneyRecord
	if err := fc.DB.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	stats := utils.ComputeFunnel(records, now)
	return &FunnelResponse{
		Stats:   stats,
		Summary: utils.Summarize(stats),
	}, nil
}

// GetUsersInStage lists the users currently in a stage, newest first.
// Omitting the stage (or passing "all") returns every stage.
func (fc *FunnelController) GetUsersInStage(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	query := fc.DB.WithContext(ctx).Model(&models.UserJourneyRecord{})

	if stageParam := c.Query("stage"); stageParam != "" && stageParam != "all" {
		stage, err := models.ParseStage(stageParam)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid journey stage", err)
		}
		query = query.Where("journey_stage = ?", stage)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count journey records", err)
	}

	var records []models.UserJourneyRecord
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&records).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch journey records", err)
	}

	now := time.Now()
	entries := make([]RosterEntry, 0, len(records))
	for _, r := range records {
		if !r.JourneyStage.IsValid() {
			// Fail loud: a bad stage value in storage corrupts every
			// aggregate downstream.
			fc.Logger.Printf("Data integrity error: record %d has unrecognized stage %q", r.ID, r.JourneyStage)
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Data integrity error",
				models.UnrecognizedStageError(r.JourneyStage))
		}
		entries = append(entries, RosterEntry{
			UserJourneyRecord: r,
			StageLabel:        r.JourneyStage.Label(),
			HoursInStage:      r.HoursInStage(now),
			NeedsAttention:    r.NeedsAttention(now),
		})
	}

	return c.JSON(utils.PaginatedResponse{
		Data:   entries,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// HandleFunnelLiveWS streams the funnel stats over a websocket until the
// client disconnects.
func (fc *FunnelController) HandleFunnelLiveWS(c *websocket.Conn) {
	defer c.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		response, err := fc.computeFunnel(ctx)
		cancel()
		if err != nil {
			fc.Logger.Printf("Live funnel refresh failed: %v", err)
			return
		}

		if err := c.WriteJSON(response); err != nil {
			return
		}

		<-ticker.C
	}
}
