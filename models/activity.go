package models

import (
	"time"

	"gorm.io/gorm"
)

// Reminder dispatch outcome.
const (
	ReminderStatusSent   = "sent"
	ReminderStatusFailed = "failed"
)

// ReminderActivity is one row per outbound message: operator-triggered
// reminders and variant campaign sends alike. Open/click/conversion events
// land on this row keyed by MessageID, which is what the A/B metrics window
// aggregates over.
type ReminderActivity struct {
	gorm.Model
	UserID       string       `gorm:"not null;index" json:"user_id"`
	Email        string       `gorm:"not null" json:"email"`
	FullName     string       `json:"full_name"`
	JourneyStage JourneyStage `gorm:"not null;index" json:"journey_stage"`

	// nil for ad hoc reminders, set for A/B variant sends
	VariantID *uint `gorm:"index" json:"variant_id,omitempty"`

	Intent  string `gorm:"not null" json:"intent"` // complete_profile, choose_plan, complete_payment, custom, variant
	Subject string `gorm:"not null" json:"subject"`
	Message string `gorm:"type:text" json:"message"`

	MessageID string `gorm:"index" json:"message_id"`
	Status    string `gorm:"not null;index" json:"status"` // sent, failed
	Error     string `json:"error,omitempty"`

	SentAt      *time.Time `json:"sent_at"`
	OpenedAt    *time.Time `json:"opened_at"`
	OpenCount   int        `gorm:"default:0" json:"open_count"`
	ClickedAt   *time.Time `json:"clicked_at"`
	ClickCount  int        `gorm:"default:0" json:"click_count"`
	ConvertedAt *time.Time `json:"converted_at"`

	// Relations
	Variant *ABVariant `json:"-"`
}
