package models

import "gorm.io/gorm"

// TemplateVariables is the fixed catalog of placeholder tokens a managed
// template may use. Every template is created with the full catalog; which
// tokens actually appear in the content is not validated here.
var TemplateVariables = []string{
	"{{user_name}}",
	"{{user_email}}",
	"{{stage_name}}",
	"{{action_url}}",
	"{{support_email}}",
}

// EmailTemplate is a reusable managed message targeting one journey stage.
// Substitution happens at send time in the notification function; the
// template is stored and previewed raw.
type EmailTemplate struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Subject     string `gorm:"not null" json:"subject"`
	HTMLContent string `gorm:"type:text;not null" json:"html_content"`
	TextContent string `gorm:"type:text" json:"text_content"`

	JourneyStage JourneyStage `gorm:"not null;index" json:"journey_stage"`
	Variables    []string     `gorm:"type:jsonb;serializer:json" json:"variables"`
	IsActive     bool         `gorm:"default:true" json:"is_active"`

	// Relations
	Variants []ABVariant `gorm:"foreignKey:TemplateID" json:"variants,omitempty"`
}

// ABVariant is an alternate version of a template competing for a share of
// send traffic. Traffic percentages are operator intent; the sum across a
// template's active variants is warned about, not enforced.
type ABVariant struct {
	gorm.Model
	TemplateID uint `gorm:"not null;index" json:"template_id"`

	VariantName string `gorm:"not null" json:"variant_name"`
	Subject     string `gorm:"not null" json:"subject"`
	HTMLContent string `gorm:"type:text;not null" json:"html_content"`
	TextContent string `gorm:"type:text" json:"text_content"`

	TrafficPercentage int  `gorm:"default:50" json:"traffic_percentage"`
	IsActive          bool `gorm:"default:true" json:"is_active"`

	// Relations
	Template EmailTemplate `json:"-"`
}
