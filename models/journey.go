package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// JourneyStage is one discrete phase of the user lifecycle, from first
// signup to active subscriber. The ordering is fixed and drives every
// funnel computation.
type JourneyStage string

const (
	StageSignup           JourneyStage = "signup"
	StageProfileCompleted JourneyStage = "profile_completed"
	StagePlanSelected     JourneyStage = "plan_selected"
	StagePaymentPending   JourneyStage = "payment_pending"
	StagePaymentConfirmed JourneyStage = "payment_confirmed"
	StageActive           JourneyStage = "active"
)

// StuckThresholdHours is the business rule for flagging a user (or a whole
// stage, by average) as needing attention.
const StuckThresholdHours = 48.0

var stageOrder = []JourneyStage{
	StageSignup,
	StageProfileCompleted,
	StagePlanSelected,
	StagePaymentPending,
	StagePaymentConfirmed,
	StageActive,
}

var stageLabels = map[JourneyStage]string{
	StageSignup:           "Cadastro Inicial",
	StageProfileCompleted: "Perfil Completo",
	StagePlanSelected:     "Plano Selecionado",
	StagePaymentPending:   "Pagamento Pendente",
	StagePaymentConfirmed: "Pagamento Confirmado",
	StageActive:           "Usuário Ativo",
}

// AllStages returns the six stages in funnel order.
func AllStages() []JourneyStage {
	out := make([]JourneyStage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// Ordinal returns the stage position in the funnel, or -1 for an
// unrecognized value.
func (s JourneyStage) Ordinal() int {
	for i, stage := range stageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// Label returns the display label for the stage.
func (s JourneyStage) Label() string {
	return stageLabels[s]
}

// IsValid reports whether s is one of the six known stages.
func (s JourneyStage) IsValid() bool {
	return s.Ordinal() >= 0
}

// UnrecognizedStageError builds the data-integrity error for a stage value
// that is not part of the closed enumeration.
func UnrecognizedStageError(s JourneyStage) error {
	return fmt.Errorf("unrecognized journey stage %q", s)
}

// ParseStage validates a stage string coming from a request or a stored
// record. Unknown values are a data-integrity error and are never coerced
// to a default stage.
func ParseStage(value string) (JourneyStage, error) {
	s := JourneyStage(value)
	if !s.IsValid() {
		return "", fmt.Errorf("unrecognized journey stage %q", value)
	}
	return s, nil
}

// UserJourneyRecord is one row per (user, current stage assignment).
// CreatedAt doubles as the stage entry time; progression writes a new
// record rather than deleting history.
type UserJourneyRecord struct {
	gorm.Model
	UserID   string `gorm:"not null;index" json:"user_id"`
	Email    string `gorm:"not null;index" json:"email"`
	FullName string `json:"full_name"`

	JourneyStage   JourneyStage `gorm:"not null;index" json:"journey_stage"`
	StageCompleted bool         `gorm:"default:false" json:"stage_completed"`

	Metadata map[string]interface{} `gorm:"type:jsonb;serializer:json" json:"metadata,omitempty"`
}

// HoursInStage returns how long the user has been in the current stage.
func (r *UserJourneyRecord) HoursInStage(now time.Time) float64 {
	return now.Sub(r.CreatedAt).Hours()
}

// NeedsAttention reports whether the user has been stuck past the
// threshold. Exactly 48h is not yet stuck.
func (r *UserJourneyRecord) NeedsAttention(now time.Time) bool {
	return r.HoursInStage(now) > StuckThresholdHours
}

// DisplayName is the name used in reminder salutations: the full name when
// present, the email address otherwise.
func (r *UserJourneyRecord) DisplayName() string {
	if r.FullName != "" {
		return r.FullName
	}
	return r.Email
}
