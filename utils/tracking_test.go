package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackingTokenDeterministic(t *testing.T) {
	a := TrackingToken("msg-1", "secret")
	b := TrackingToken("msg-1", "secret")
	assert.Equal(t, a, b)
	assert.Len(t, a, 20)

	assert.NotEqual(t, a, TrackingToken("msg-2", "secret"))
	assert.NotEqual(t, a, TrackingToken("msg-1", "other-secret"))
}

func TestVerifyTrackingToken(t *testing.T) {
	token := TrackingToken("msg-1", "secret")

	assert.True(t, VerifyTrackingToken("msg-1", "secret", token))
	assert.False(t, VerifyTrackingToken("msg-2", "secret", token))
	assert.False(t, VerifyTrackingToken("msg-1", "wrong", token))
	assert.False(t, VerifyTrackingToken("msg-1", "secret", ""))
}

func TestGenerateTrackingURLs(t *testing.T) {
	pixel := GenerateTrackingPixelURL("https://api.example.com", "msg-1", "secret")
	assert.Contains(t, pixel, "/track/open/msg-1/")

	click := GenerateClickTrackURL("https://api.example.com", "msg-1", "secret", "https://app.example.com/planos?x=1")
	assert.Contains(t, click, "/track/click/msg-1/")
	assert.Contains(t, click, "url=https%3A%2F%2Fapp.example.com%2Fplanos%3Fx%3D1")
}
