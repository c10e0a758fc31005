package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journeyboard/models"
)

func TestRenderBuiltinSubstitutesEveryName(t *testing.T) {
	record := &models.UserJourneyRecord{
		UserID:   "u1",
		Email:    "maria@example.com",
		FullName: "Maria Silva",
	}

	for _, intent := range BuiltinIntents() {
		subject, body, err := RenderBuiltin(intent, record)
		require.NoError(t, err, intent)
		assert.NotEmpty(t, subject, intent)
		assert.NotEmpty(t, body, intent)
		assert.NotContains(t, subject, "{name}", intent)
		assert.NotContains(t, body, "{name}", intent)
		assert.Contains(t, body, "Maria Silva", intent)
	}
}

func TestRenderBuiltinFallsBackToEmail(t *testing.T) {
	record := &models.UserJourneyRecord{
		UserID: "u2",
		Email:  "x@y.com",
	}

	_, body, err := RenderBuiltin(IntentCompleteProfile, record)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(body, "Olá x@y.com,"), "salutation uses the email when the name is empty")
}

func TestRenderBuiltinUnknownIntent(t *testing.T) {
	record := &models.UserJourneyRecord{Email: "x@y.com"}
	_, _, err := RenderBuiltin("nudge_gently", record)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nudge_gently")
}

func TestComposeReminderCustom(t *testing.T) {
	record := &models.UserJourneyRecord{Email: "x@y.com"}

	subject, message, err := ComposeReminder(IntentCustom, record, "Oferta especial", "Corpo da mensagem")
	require.NoError(t, err)
	assert.Equal(t, "Oferta especial", subject)
	assert.Equal(t, "Corpo da mensagem", message)
}

func TestComposeReminderCustomMissingFields(t *testing.T) {
	record := &models.UserJourneyRecord{Email: "x@y.com"}

	cases := []struct {
		name    string
		subject string
		message string
	}{
		{"empty subject", "", "Corpo"},
		{"empty message", "Assunto", ""},
		{"both empty", "", ""},
		{"whitespace only", "   ", "\t"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ComposeReminder(IntentCustom, record, tc.subject, tc.message)
			require.ErrorIs(t, err, ErrMissingFields)
			assert.Equal(t, "Campos obrigatórios", err.Error())
		})
	}
}

func TestComposeReminderBuiltinNeverEmpty(t *testing.T) {
	record := &models.UserJourneyRecord{Email: "x@y.com"}

	for _, intent := range BuiltinIntents() {
		subject, message, err := ComposeReminder(intent, record, "", "")
		require.NoError(t, err, intent)
		assert.NotEmpty(t, subject, intent)
		assert.NotEmpty(t, message, intent)
	}
}
