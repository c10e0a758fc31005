package worker

import (
	"context"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"journeyboard/models"
)

// StaleStageWorker periodically scans for users parked in a stage past the
// attention threshold and reports how many are stuck per stage.
type StaleStageWorker struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Interval time.Duration
}

func NewStaleStageWorker(db *gorm.DB, logger *log.Logger) *StaleStageWorker {
	return &StaleStageWorker{
		DB:       db,
		Logger:   logger,
		Interval: time.Hour,
	}
}

func (sw *StaleStageWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	sw.Logger.Println("Stale stage worker started")

	ticker := time.NewTicker(sw.Interval)
	defer ticker.Stop()

	sw.scanStaleStages()

	for {
		select {
		case <-ctx.Done():
			sw.Logger.Println("Stale stage worker shutting down...")
			return
		case <-ticker.C:
			sw.scanStaleStages()
		}
	}
}

type staleStageCount struct {
	JourneyStage string `json:"journey_stage"`
	StuckUsers   int64  `json:"stuck_users"`
	OldestHours  float64
}

func (sw *StaleStageWorker) scanStaleStages() {
	cutoff := time.Now().Add(-time.Duration(models.StuckThresholdHours * float64(time.Hour)))

	var counts []staleStageCount
	err := sw.DB.Model(&models.UserJourneyRecord{}).
		Select("journey_stage, COUNT(*) AS stuck_users, MAX(EXTRACT(EPOCH FROM (NOW() - updated_at)) / 3600) AS oldest_hours").
		Where("stage_completed = ? AND updated_at < ?", false, cutoff).
		Group("journey_stage").
		Scan(&counts).Error
	if err != nil {
		sw.Logger.Printf("Error scanning stale stages: %v", err)
		return
	}

	if len(counts) == 0 {
		sw.Logger.Println("No users stuck past the attention threshold")
		return
	}

	for _, c := range counts {
		stage := models.JourneyStage(c.JourneyStage)
		if !stage.IsValid() {
			logrus.WithField("journey_stage", c.JourneyStage).Error("Unrecognized stage in stale scan")
			continue
		}
		logrus.WithFields(logrus.Fields{
			"journey_stage": c.JourneyStage,
			"stage_label":   stage.Label(),
			"stuck_users":   c.StuckUsers,
			"oldest_hours":  c.OldestHours,
		}).Warn("Users stuck past attention threshold")
	}
}
