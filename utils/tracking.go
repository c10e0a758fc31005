package utils

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
)

// GenerateTrackingPixelURL generates a tracking pixel URL for message opens
func GenerateTrackingPixelURL(baseURL, messageID, secret string) string {
	token := TrackingToken(messageID, secret)
	return fmt.Sprintf("%s/track/open/%s/%s", baseURL, messageID, token)
}

// GenerateClickTrackURL generates a tracked URL for links
func GenerateClickTrackURL(baseURL, messageID, secret, originalURL string) string {
	token := TrackingToken(messageID, secret)
	encodedURL := url.QueryEscape(originalURL)
	return fmt.Sprintf("%s/track/click/%s/%s?url=%s", baseURL, messageID, token, encodedURL)
}

// TrackingToken derives the per-message token. Deterministic so the
// tracking endpoints can verify it without storing anything extra.
func TrackingToken(messageID, secret string) string {
	hash := sha256.Sum256([]byte(secret + ":" + messageID))
	return base64.URLEncoding.EncodeToString(hash[:])[:20]
}

// VerifyTrackingToken checks a token received on a tracking endpoint.
func VerifyTrackingToken(messageID, secret, token string) bool {
	return token != "" && token == TrackingToken(messageID, secret)
}
