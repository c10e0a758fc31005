package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildABMetrics(t *testing.T) {
	counts := []VariantCounts{
		{VariantID: 1, VariantName: "A", TotalSends: 200, TotalOpens: 50, TotalClicks: 20, TotalConversions: 5},
		{VariantID: 2, VariantName: "B", TotalSends: 100, TotalOpens: 40, TotalClicks: 10, TotalConversions: 1},
	}

	metrics := BuildABMetrics(counts)
	require.Len(t, metrics, 2)

	assert.Equal(t, 25.0, metrics[0].OpenRate)
	assert.Equal(t, 10.0, metrics[0].ClickRate)
	assert.Equal(t, 2.5, metrics[0].ConversionRate)

	assert.Equal(t, 40.0, metrics[1].OpenRate)
	assert.Equal(t, 10.0, metrics[1].ClickRate)
	assert.Equal(t, 1.0, metrics[1].ConversionRate)
}

func TestBuildABMetricsZeroSends(t *testing.T) {
	metrics := BuildABMetrics([]VariantCounts{
		{VariantID: 3, VariantName: "C", TotalSends: 0},
	})
	require.Len(t, metrics, 1)

	assert.Equal(t, 0.0, metrics[0].OpenRate)
	assert.Equal(t, 0.0, metrics[0].ClickRate)
	assert.Equal(t, 0.0, metrics[0].ConversionRate)
}

func TestBuildABMetricsEmpty(t *testing.T) {
	assert.Empty(t, BuildABMetrics(nil))
}
