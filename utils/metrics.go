package utils

// VariantCounts are the raw event totals for one variant over the metrics
// window, as aggregated by the store.
type VariantCounts struct {
	VariantID        uint   `json:"variant_id"`
	VariantName      string `json:"variant_name"`
	TemplateName     string `json:"template_name"`
	TotalSends       int64  `json:"total_sends"`
	TotalOpens       int64  `json:"total_opens"`
	TotalClicks      int64  `json:"total_clicks"`
	TotalConversions int64  `json:"total_conversions"`
}

// ABMetrics is the comparative per-variant report the dashboard renders.
type ABMetrics struct {
	VariantCounts
	OpenRate       float64 `json:"open_rate"`
	ClickRate      float64 `json:"click_rate"`
	ConversionRate float64 `json:"conversion_rate"`
}

// BuildABMetrics turns raw counts into rate percentages. A variant with no
// sends reports all rates as 0 rather than an error.
func BuildABMetrics(counts []VariantCounts) []ABMetrics {
	out := make([]ABMetrics, 0, len(counts))
	for _, c := range counts {
		out = append(out, ABMetrics{
			VariantCounts:  c,
			OpenRate:       Rate(c.TotalOpens, c.TotalSends),
			ClickRate:      Rate(c.TotalClicks, c.TotalSends),
			ConversionRate: Rate(c.TotalConversions, c.TotalSends),
		})
	}
	return out
}
