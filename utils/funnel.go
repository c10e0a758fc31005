package utils

import (
	"math"
	"sort"
	"time"

	"journeyboard/models"
)

// FunnelStat is the derived per-stage aggregate. Never persisted; computed
// on demand from the journey records.
type FunnelStat struct {
	Stage           models.JourneyStage `json:"stage"`
	StageLabel      string              `json:"stage_label"`
	UserCount       int64               `json:"user_count"`
	AvgHoursInStage float64             `json:"avg_hours_in_stage"`
	CompletionRate  float64             `json:"completion_rate"`
	NeedsAttention  bool                `json:"needs_attention"`
}

// FunnelSummary holds the dashboard headline numbers derived from the
// per-stage stats.
type FunnelSummary struct {
	TotalUsers      int64   `json:"total_users"`
	ActiveUsers     int64   `json:"active_users"`
	ConversionRate  float64 `json:"conversion_rate"`
	AvgTimeToActive float64 `json:"avg_time_to_active_hours"`
	StuckStageCount int     `json:"stuck_stage_count"`
}

// ComputeFunnel aggregates journey records into one FunnelStat per stage
// present in the input, ordered by stage ordinal. user_count is the
// distinct-user count for the stage; avg_hours is the plain mean across the
// stage's records; completion_rate is the percentage of records with the
// stage marked completed.
func ComputeFunnel(records []models.UserJourneyRecord, now time.Time) []FunnelStat {
	type bucket struct {
		users     map[string]struct{}
		hoursSum  float64
		completed int
		total     int
	}
	buckets := make(map[models.JourneyStage]*bucket)

	for i := range records {
		r := &records[i]
		b, ok := buckets[r.JourneyStage]
		if !ok {
			b = &bucket{users: make(map[string]struct{})}
			buckets[r.JourneyStage] = b
		}
		b.users[r.UserID] = struct{}{}
		b.hoursSum += r.HoursInStage(now)
		if r.StageCompleted {
			b.completed++
		}
		b.total++
	}

	stats := make([]FunnelStat, 0, len(buckets))
	for _, stage := range models.AllStages() {
		b, ok := buckets[stage]
		if !ok {
			continue
		}
		avg := b.hoursSum / float64(b.total)
		stats = append(stats, FunnelStat{
			Stage:           stage,
			StageLabel:      stage.Label(),
			UserCount:       int64(len(b.users)),
			AvgHoursInStage: round2(avg),
			CompletionRate:  Rate(int64(b.completed), int64(b.total)),
			NeedsAttention:  avg > models.StuckThresholdHours,
		})
	}
	return stats
}

// Summarize derives the headline values from a funnel. All rates are 0, not
// NaN, when the denominators are empty.
func Summarize(stats []FunnelStat) FunnelSummary {
	var summary FunnelSummary
	var weightedHours float64

	for _, s := range stats {
		summary.TotalUsers += s.UserCount
		weightedHours += s.AvgHoursInStage * float64(s.UserCount)
		if s.Stage == models.StageActive {
			summary.ActiveUsers = s.UserCount
		}
		if s.AvgHoursInStage > models.StuckThresholdHours {
			summary.StuckStageCount++
		}
	}

	summary.ConversionRate = Rate(summary.ActiveUsers, summary.TotalUsers)
	if summary.TotalUsers > 0 {
		summary.AvgTimeToActive = round2(weightedHours / float64(summary.TotalUsers))
	}
	return summary
}

// AdvancedMetric is one (date, stage) row of the daily rollup.
type AdvancedMetric struct {
	Date           string              `json:"date"`
	JourneyStage   models.JourneyStage `json:"journey_stage"`
	UsersEntered   int64               `json:"users_entered"`
	UsersCompleted int64               `json:"users_completed"`
	UsersAbandoned int64               `json:"users_abandoned"`
	ConversionRate float64             `json:"conversion_rate"`
	AvgTimeHours   float64             `json:"avg_time_hours"`
}

// DailyRollup is the per-date aggregate after collapsing stages.
type DailyRollup struct {
	Date           string `json:"date"`
	UsersEntered   int64  `json:"users_entered"`
	UsersCompleted int64  `json:"users_completed"`
	UsersAbandoned int64  `json:"users_abandoned"`
}

// DailySummary holds the totals and plain (unweighted) means over a rollup
// row set. A low-volume stage contributes to the averages the same as a
// high-volume one.
type DailySummary struct {
	TotalEntered      int64   `json:"total_entered"`
	TotalCompleted    int64   `json:"total_completed"`
	TotalAbandoned    int64   `json:"total_abandoned"`
	AvgConversionRate float64 `json:"avg_conversion_rate"`
	AvgTimeHours      float64 `json:"avg_time_hours"`
}

const dateLayout = "2006-01-02"

// BuildDailyMetrics groups journey records by entry date and stage. A user
// counts as abandoned for a day when the stage was never completed and the
// record has aged past the attention threshold.
func BuildDailyMetrics(records []models.UserJourneyRecord, now time.Time) []AdvancedMetric {
	type bucket struct {
		entered   int64
		completed int64
		abandoned int64
		hoursSum  float64
	}
	type key struct {
		date  string
		stage models.JourneyStage
	}
	buckets := make(map[key]*bucket)

	for i := range records {
		r := &records[i]
		k := key{date: r.CreatedAt.UTC().Format(dateLayout), stage: r.JourneyStage}
		b, ok := buckets[k]
		if !ok {
			b = &bucket{}
			buckets[k] = b
		}
		b.entered++
		b.hoursSum += r.HoursInStage(now)
		if r.StageCompleted {
			b.completed++
		} else if r.NeedsAttention(now) {
			b.abandoned++
		}
	}

	metrics := make([]AdvancedMetric, 0, len(buckets))
	for k, b := range buckets {
		metrics = append(metrics, AdvancedMetric{
			Date:           k.date,
			JourneyStage:   k.stage,
			UsersEntered:   b.entered,
			UsersCompleted: b.completed,
			UsersAbandoned: b.abandoned,
			ConversionRate: Rate(b.completed, b.entered),
			AvgTimeHours:   round2(b.hoursSum / float64(b.entered)),
		})
	}

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].Date != metrics[j].Date {
			return metrics[i].Date < metrics[j].Date
		}
		return metrics[i].JourneyStage.Ordinal() < metrics[j].JourneyStage.Ordinal()
	})
	return metrics
}

// FilterByStage keeps rows for one stage; an empty stage means all stages.
func FilterByStage(rows []AdvancedMetric, stage models.JourneyStage) []AdvancedMetric {
	if stage == "" {
		return rows
	}
	out := make([]AdvancedMetric, 0, len(rows))
	for _, row := range rows {
		if row.JourneyStage == stage {
			out = append(out, row)
		}
	}
	return out
}

// AggregateByDate sums the counts of rows sharing a date. With a
// single-stage input this is a pass-through, one rollup per row.
func AggregateByDate(rows []AdvancedMetric) []DailyRollup {
	byDate := make(map[string]*DailyRollup)
	for _, row := range rows {
		agg, ok := byDate[row.Date]
		if !ok {
			agg = &DailyRollup{Date: row.Date}
			byDate[row.Date] = agg
		}
		agg.UsersEntered += row.UsersEntered
		agg.UsersCompleted += row.UsersCompleted
		agg.UsersAbandoned += row.UsersAbandoned
	}

	out := make([]DailyRollup, 0, len(byDate))
	for _, agg := range byDate {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// SummarizeDaily computes straight sums and unweighted means over the
// filtered row set.
func SummarizeDaily(rows []AdvancedMetric) DailySummary {
	var summary DailySummary
	if len(rows) == 0 {
		return summary
	}

	var convSum, hoursSum float64
	for _, row := range rows {
		summary.TotalEntered += row.UsersEntered
		summary.TotalCompleted += row.UsersCompleted
		summary.TotalAbandoned += row.UsersAbandoned
		convSum += row.ConversionRate
		hoursSum += row.AvgTimeHours
	}
	summary.AvgConversionRate = round2(convSum / float64(len(rows)))
	summary.AvgTimeHours = round2(hoursSum / float64(len(rows)))
	return summary
}

// Rate returns numerator/denominator as a percentage rounded to two decimal
// places, 0 when the denominator is 0.
func Rate(numerator, denominator int64) float64 {
	if denominator == 0 {
		return 0
	}
	return round2(float64(numerator) / float64(denominator) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
