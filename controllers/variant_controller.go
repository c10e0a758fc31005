package controller

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"journeyboard/models"
	"journeyboard/utils"
)

type VariantController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewVariantController(db *gorm.DB, logger *log.Logger) *VariantController {
	return &VariantController{DB: db, Logger: logger}
}

var errInactiveTemplate = errors.New("variants can only be added to active templates")

type variantInput struct {
	TemplateID        uint    `json:"template_id" validate:"required"`
	VariantName       string  `json:"variant_name" validate:"required,min=1,max=100"`
	Subject           string  `json:"subject" validate:"required,min=1,max=255"`
	HTMLContent       string  `json:"html_content" validate:"required"`
	TextContent       string  `json:"text_content"`
	TrafficPercentage *int    `json:"traffic_percentage" validate:"omitempty,min=0,max=100"`
	IsActive          *bool   `json:"is_active"`
}

type variantView struct {
	models.ABVariant
	TemplateName  string `json:"template_name"`
	TemplateStage string `json:"template_stage"`
}

// GetVariants returns all variants newest first, each joined with the name
// and stage of its parent template.
func (vc *VariantController) GetVariants(c *fiber.Ctx) error {
	var variants []variantView
	err := vc.DB.Raw(`
        SELECT v.*, t.name AS template_name, t.journey_stage AS template_stage
        FROM ab_variants v
        JOIN email_templates t ON t.id = v.template_id
        WHERE v.deleted_at IS NULL
        ORDER BY v.created_at DESC
    `).Scan(&variants).Error
	if err != nil {
		vc.Logger.Printf("Failed to list variants: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch variants", err)
	}

	return c.JSON(fiber.Map{"variants": variants})
}

// CreateVariant attaches a new variant to an existing active template. The
// combined traffic share of a template's active variants may exceed 100; the
// response carries a warning instead of rejecting the write.
func (vc *VariantController) CreateVariant(c *fiber.Ctx) error {
	var input variantInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var template models.EmailTemplate
	if err := vc.DB.First(&template, input.TemplateID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load template", err)
	}
	if !template.IsActive {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Template is inactive", errInactiveTemplate)
	}

	traffic := 50
	if input.TrafficPercentage != nil {
		traffic = *input.TrafficPercentage
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	variant := models.ABVariant{
		TemplateID:        template.ID,
		VariantName:       input.VariantName,
		Subject:           input.Subject,
		HTMLContent:       input.HTMLContent,
		TextContent:       input.TextContent,
		TrafficPercentage: traffic,
		IsActive:          active,
	}

	if err := vc.DB.Create(&variant).Error; err != nil {
		vc.Logger.Printf("Failed to create variant for template %d: %v", template.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create variant", err)
	}

	response := fiber.Map{
		"message": "Variant created successfully",
		"variant": variant,
	}

	var totalTraffic int64
	vc.DB.Model(&models.ABVariant{}).
		Where("template_id = ? AND is_active = ?", template.ID, true).
		Select("COALESCE(SUM(traffic_percentage), 0)").
		Scan(&totalTraffic)
	if totalTraffic > 100 {
		vc.Logger.Printf("Template %d active variants sum to %d%% traffic", template.ID, totalTraffic)
		response["warning"] = "Active variants for this template exceed 100% combined traffic"
		response["total_traffic_percentage"] = totalTraffic
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

// GetVariantMetrics reports per-variant send, open, click and conversion
// totals for one template over a trailing window (default 30 days).
func (vc *VariantController) GetVariantMetrics(c *fiber.Ctx) error {
	templateID := utils.ParseUint(c.Params("id"))
	if templateID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid template ID", nil)
	}

	windowDays := c.QueryInt("window_days", 30)
	if windowDays < 1 {
		windowDays = 30
	}
	since := time.Now().AddDate(0, 0, -windowDays)

	var template models.EmailTemplate
	if err := vc.DB.First(&template, templateID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load template", err)
	}

	var counts []utils.VariantCounts
	err := vc.DB.Raw(`
        SELECT
            v.id AS variant_id,
            v.variant_name,
            t.name AS template_name,
            COUNT(ra.id) AS total_sends,
            COALESCE(SUM(CASE WHEN ra.opened_at IS NOT NULL THEN 1 ELSE 0 END), 0) AS total_opens,
            COALESCE(SUM(CASE WHEN ra.clicked_at IS NOT NULL THEN 1 ELSE 0 END), 0) AS total_clicks,
            COALESCE(SUM(CASE WHEN ra.converted_at IS NOT NULL THEN 1 ELSE 0 END), 0) AS total_conversions
        FROM ab_variants v
        JOIN email_templates t ON t.id = v.template_id
        LEFT JOIN reminder_activities ra
            ON ra.variant_id = v.id
            AND ra.status = ?
            AND ra.created_at >= ?
        WHERE v.template_id = ? AND v.deleted_at IS NULL
        GROUP BY v.id, v.variant_name, t.name
        ORDER BY v.created_at ASC
    `, models.ReminderStatusSent, since, templateID).Scan(&counts).Error
	if err != nil {
		vc.Logger.Printf("Failed to aggregate variant metrics for template %d: %v", templateID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute metrics", err)
	}

	return c.JSON(fiber.Map{
		"template_id":   template.ID,
		"template_name": template.Name,
		"window_days":   windowDays,
		"metrics":       utils.BuildABMetrics(counts),
	})
}
