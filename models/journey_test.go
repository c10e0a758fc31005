package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStageOrdering(t *testing.T) {
	stages := AllStages()
	require.Len(t, stages, 6)

	assert.Equal(t, StageSignup, stages[0])
	assert.Equal(t, StageActive, stages[5])

	for i, stage := range stages {
		assert.Equal(t, i, stage.Ordinal())
		assert.True(t, stage.IsValid())
		assert.NotEmpty(t, stage.Label())
	}
}

func TestUnknownStage(t *testing.T) {
	unknown := JourneyStage("trial_period")
	assert.Equal(t, -1, unknown.Ordinal())
	assert.False(t, unknown.IsValid())

	_, err := ParseStage("trial_period")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trial_period")
}

func TestParseStage(t *testing.T) {
	stage, err := ParseStage("payment_pending")
	require.NoError(t, err)
	assert.Equal(t, StagePaymentPending, stage)
}

func TestNeedsAttentionBoundary(t *testing.T) {
	now := time.Now()

	record := UserJourneyRecord{
		Model:        gorm.Model{CreatedAt: now.Add(-48 * time.Hour)},
		UserID:       "u1",
		JourneyStage: StageSignup,
	}
	assert.False(t, record.NeedsAttention(now), "exactly 48h is not yet stuck")

	record.CreatedAt = now.Add(-48*time.Hour - time.Minute)
	assert.True(t, record.NeedsAttention(now))

	record.CreatedAt = now.Add(-time.Hour)
	assert.False(t, record.NeedsAttention(now))
}

func TestHoursInStage(t *testing.T) {
	now := time.Now()
	record := UserJourneyRecord{
		Model: gorm.Model{CreatedAt: now.Add(-90 * time.Minute)},
	}
	assert.InDelta(t, 1.5, record.HoursInStage(now), 0.001)
}

func TestDisplayName(t *testing.T) {
	record := UserJourneyRecord{Email: "x@y.com", FullName: "Maria Silva"}
	assert.Equal(t, "Maria Silva", record.DisplayName())

	record.FullName = ""
	assert.Equal(t, "x@y.com", record.DisplayName())
}
