package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"journeyboard/models"
)

func journeyRecord(userID string, stage models.JourneyStage, hoursAgo float64, completed bool, now time.Time) models.UserJourneyRecord {
	return models.UserJourneyRecord{
		Model:          gorm.Model{CreatedAt: now.Add(-time.Duration(hoursAgo * float64(time.Hour)))},
		UserID:         userID,
		Email:          userID + "@example.com",
		JourneyStage:   stage,
		StageCompleted: completed,
	}
}

func TestComputeFunnel(t *testing.T) {
	now := time.Now()
	records := []models.UserJourneyRecord{
		journeyRecord("u1", models.StageSignup, 10, false, now),
		journeyRecord("u2", models.StageSignup, 60, false, now),
		journeyRecord("u3", models.StageActive, 5, true, now),
	}

	stats := ComputeFunnel(records, now)
	require.Len(t, stats, 2, "only stages present in the data appear")

	signup := stats[0]
	assert.Equal(t, models.StageSignup, signup.Stage)
	assert.Equal(t, "Cadastro Inicial", signup.StageLabel)
	assert.Equal(t, int64(2), signup.UserCount)
	assert.InDelta(t, 35, signup.AvgHoursInStage, 0.01)
	assert.Equal(t, 0.0, signup.CompletionRate)
	assert.False(t, signup.NeedsAttention, "flag follows the stage average, not one slow user")

	active := stats[1]
	assert.Equal(t, models.StageActive, active.Stage)
	assert.Equal(t, int64(1), active.UserCount)
	assert.InDelta(t, 5, active.AvgHoursInStage, 0.01)
	assert.Equal(t, 100.0, active.CompletionRate)

	summary := Summarize(stats)
	assert.Equal(t, int64(3), summary.TotalUsers)
	assert.Equal(t, int64(1), summary.ActiveUsers)
	assert.InDelta(t, 33.33, summary.ConversionRate, 0.01)
	assert.Equal(t, 0, summary.StuckStageCount)
}

func TestComputeFunnelDistinctUsers(t *testing.T) {
	now := time.Now()
	records := []models.UserJourneyRecord{
		journeyRecord("u1", models.StageSignup, 10, false, now),
		journeyRecord("u1", models.StageSignup, 20, false, now),
	}

	stats := ComputeFunnel(records, now)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(1), stats[0].UserCount, "same user counted once")
	assert.InDelta(t, 15, stats[0].AvgHoursInStage, 0.01, "average still spans all records")
}

func TestComputeFunnelStageOrder(t *testing.T) {
	now := time.Now()
	records := []models.UserJourneyRecord{
		journeyRecord("u1", models.StageActive, 1, true, now),
		journeyRecord("u2", models.StagePlanSelected, 1, false, now),
		journeyRecord("u3", models.StageSignup, 1, false, now),
	}

	stats := ComputeFunnel(records, now)
	require.Len(t, stats, 3)
	assert.Equal(t, models.StageSignup, stats[0].Stage)
	assert.Equal(t, models.StagePlanSelected, stats[1].Stage)
	assert.Equal(t, models.StageActive, stats[2].Stage)
}

func TestStuckStageDetection(t *testing.T) {
	now := time.Now()
	records := []models.UserJourneyRecord{
		journeyRecord("u1", models.StagePaymentPending, 60, false, now),
		journeyRecord("u2", models.StagePaymentPending, 50, false, now),
		journeyRecord("u3", models.StageSignup, 2, false, now),
	}

	stats := ComputeFunnel(records, now)
	require.Len(t, stats, 2)

	assert.False(t, stats[0].NeedsAttention)
	assert.True(t, stats[1].NeedsAttention, "average of 55h is past the threshold")

	summary := Summarize(stats)
	assert.Equal(t, 1, summary.StuckStageCount)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	assert.Equal(t, int64(0), summary.TotalUsers)
	assert.Equal(t, 0.0, summary.ConversionRate)
	assert.Equal(t, 0.0, summary.AvgTimeToActive)
}

func TestRate(t *testing.T) {
	assert.Equal(t, 0.0, Rate(0, 0), "zero denominator yields zero, not NaN")
	assert.Equal(t, 0.0, Rate(5, 0))
	assert.Equal(t, 50.0, Rate(1, 2))
	assert.InDelta(t, 33.33, Rate(1, 3), 0.001)
	assert.Equal(t, 100.0, Rate(3, 3))
}

func TestBuildDailyMetrics(t *testing.T) {
	now := time.Now().UTC()
	day := now.Format("2006-01-02")

	records := []models.UserJourneyRecord{
		journeyRecord("u1", models.StageSignup, 2, true, now),
		journeyRecord("u2", models.StageSignup, 4, false, now),
	}

	metrics := BuildDailyMetrics(records, now)
	require.Len(t, metrics, 1)

	m := metrics[0]
	assert.Equal(t, day, m.Date)
	assert.Equal(t, models.StageSignup, m.JourneyStage)
	assert.Equal(t, int64(2), m.UsersEntered)
	assert.Equal(t, int64(1), m.UsersCompleted)
	assert.Equal(t, int64(0), m.UsersAbandoned, "recent incomplete records are not abandoned")
	assert.Equal(t, 50.0, m.ConversionRate)
	assert.InDelta(t, 3, m.AvgTimeHours, 0.01)
}

func TestBuildDailyMetricsAbandonment(t *testing.T) {
	now := time.Now().UTC()
	records := []models.UserJourneyRecord{
		journeyRecord("u1", models.StagePlanSelected, 72, false, now),
		journeyRecord("u2", models.StagePlanSelected, 72, true, now),
	}

	metrics := BuildDailyMetrics(records, now)
	require.Len(t, metrics, 1)
	assert.Equal(t, int64(1), metrics[0].UsersAbandoned, "completed records never count as abandoned")
	assert.Equal(t, int64(1), metrics[0].UsersCompleted)
}

func TestFilterByStage(t *testing.T) {
	rows := []AdvancedMetric{
		{Date: "2026-08-01", JourneyStage: models.StageSignup},
		{Date: "2026-08-01", JourneyStage: models.StageActive},
		{Date: "2026-08-02", JourneyStage: models.StageSignup},
	}

	all := FilterByStage(rows, "")
	assert.Len(t, all, 3, "empty stage is a pass-through")

	signupOnly := FilterByStage(rows, models.StageSignup)
	require.Len(t, signupOnly, 2)
	for _, row := range signupOnly {
		assert.Equal(t, models.StageSignup, row.JourneyStage)
	}
}

func TestAggregateByDate(t *testing.T) {
	rows := []AdvancedMetric{
		{Date: "2026-08-01", JourneyStage: models.StageSignup, UsersEntered: 3, UsersCompleted: 1},
		{Date: "2026-08-01", JourneyStage: models.StageActive, UsersEntered: 5, UsersCompleted: 5},
		{Date: "2026-08-02", JourneyStage: models.StageSignup, UsersEntered: 2},
	}

	daily := AggregateByDate(rows)
	require.Len(t, daily, 2)

	assert.Equal(t, "2026-08-01", daily[0].Date)
	assert.Equal(t, int64(8), daily[0].UsersEntered)
	assert.Equal(t, int64(6), daily[0].UsersCompleted)
	assert.Equal(t, "2026-08-02", daily[1].Date)
	assert.Equal(t, int64(2), daily[1].UsersEntered)
}

func TestSummarizeDailyUnweighted(t *testing.T) {
	rows := []AdvancedMetric{
		{Date: "2026-08-01", UsersEntered: 100, UsersCompleted: 100, ConversionRate: 100, AvgTimeHours: 10},
		{Date: "2026-08-02", UsersEntered: 2, UsersCompleted: 0, ConversionRate: 0, AvgTimeHours: 30},
	}

	summary := SummarizeDaily(rows)
	assert.Equal(t, int64(102), summary.TotalEntered)
	assert.Equal(t, int64(100), summary.TotalCompleted)
	assert.Equal(t, 50.0, summary.AvgConversionRate, "rows weigh equally regardless of volume")
	assert.Equal(t, 20.0, summary.AvgTimeHours)
}

func TestSummarizeDailyEmpty(t *testing.T) {
	summary := SummarizeDaily(nil)
	assert.Equal(t, int64(0), summary.TotalEntered)
	assert.Equal(t, 0.0, summary.AvgConversionRate)
}
