package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"journeyboard/models"
	"journeyboard/utils"
)

type TemplateController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTemplateController(db *gorm.DB, logger *log.Logger) *TemplateController {
	return &TemplateController{
		DB:     db,
		Logger: logger,
	}
}

type templateInput struct {
	Name         string `json:"name" validate:"required"`
	Subject      string `json:"subject" validate:"required"`
	HTMLContent  string `json:"html_content" validate:"required"`
	TextContent  string `json:"text_content"`
	JourneyStage string `json:"journey_stage" validate:"required"`
	IsActive     *bool  `json:"is_active"`
}

// GetTemplates returns all templates, newest first. active=true narrows to
// templates eligible as a base for new variants.
func (tc *TemplateController) GetTemplates(c *fiber.Ctx) error {
	query := tc.DB.Model(&models.EmailTemplate{})
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var templates []models.EmailTemplate
	if err := query.Order("created_at DESC").Find(&templates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch templates", err)
	}

	return c.JSON(utils.SuccessResponse(templates))
}

// GetTemplate returns a single template with its variants.
func (tc *TemplateController) GetTemplate(c *fiber.Ctx) error {
	var template models.EmailTemplate
	if err := tc.DB.Preload("Variants").First(&template, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", err)
	}

	return c.JSON(utils.SuccessResponse(template))
}

// CreateTemplate creates a managed template. The variable catalog is always
// the full fixed set; which tokens the content actually uses is not
// validated here.
func (tc *TemplateController) CreateTemplate(c *fiber.Ctx) error {
	var input templateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	stage, err := models.ParseStage(input.JourneyStage)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid journey stage", err)
	}

	template := models.EmailTemplate{
		Name:         input.Name,
		Subject:      input.Subject,
		HTMLContent:  input.HTMLContent,
		TextContent:  input.TextContent,
		JourneyStage: stage,
		Variables:    models.TemplateVariables,
		IsActive:     true,
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}

	if err := tc.DB.Create(&template).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create template", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(template))
}

// UpdateTemplate applies a partial update. Omitted fields keep their
// stored values.
func (tc *TemplateController) UpdateTemplate(c *fiber.Ctx) error {
	var template models.EmailTemplate
	if err := tc.DB.First(&template, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", err)
	}

	var input struct {
		Name         *string `json:"name"`
		Subject      *string `json:"subject"`
		HTMLContent  *string `json:"html_content"`
		TextContent  *string `json:"text_content"`
		JourneyStage *string `json:"journey_stage"`
		IsActive     *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if input.Name != nil {
		template.Name = *input.Name
	}
	if input.Subject != nil {
		template.Subject = *input.Subject
	}
	if input.HTMLContent != nil {
		template.HTMLContent = *input.HTMLContent
	}
	if input.TextContent != nil {
		template.TextContent = *input.TextContent
	}
	if input.JourneyStage != nil {
		stage, err := models.ParseStage(*input.JourneyStage)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid journey stage", err)
		}
		template.JourneyStage = stage
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}

	if err := tc.DB.Save(&template).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update template", err)
	}

	return c.JSON(utils.SuccessResponse(template))
}

// DeleteTemplate removes a template and its variants. Irreversible; the
// dashboard asks for confirmation before calling this.
func (tc *TemplateController) DeleteTemplate(c *fiber.Ctx) error {
	var template models.EmailTemplate
	if err := tc.DB.First(&template, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", err)
	}

	if err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", template.ID).Delete(&models.ABVariant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&template).Error
	}); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete template", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Template deleted successfully",
	}))
}

// PreviewTemplate renders the raw HTML as stored. Placeholders appear
// literally; substitution only happens at send time in the notification
// function.
func (tc *TemplateController) PreviewTemplate(c *fiber.Ctx) error {
	var template models.EmailTemplate
	if err := tc.DB.First(&template, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", err)
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString(template.HTMLContent)
}
