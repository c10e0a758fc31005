package utils

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journeyboard/models"
)

type fakeNotifier struct {
	calls       int
	lastPayload ReminderPayload
	messageID   string
	err         error
}

func (f *fakeNotifier) Send(_ context.Context, payload ReminderPayload) (string, error) {
	f.calls++
	f.lastPayload = payload
	if f.err != nil {
		return "", f.err
	}
	return f.messageID, nil
}

func newTestDispatcher(notifier NotifierInterface) *ReminderDispatcher {
	return NewReminderDispatcher(notifier, log.New(io.Discard, "", 0))
}

func validRecord() *models.UserJourneyRecord {
	return &models.UserJourneyRecord{
		UserID:       "u1",
		Email:        "maria@example.com",
		FullName:     "Maria Silva",
		JourneyStage: models.StagePaymentPending,
	}
}

func TestDispatchBuiltinIntent(t *testing.T) {
	notifier := &fakeNotifier{messageID: "msg-123"}
	dispatcher := newTestDispatcher(notifier)

	result, err := dispatcher.Dispatch(context.Background(), validRecord(), IntentCompletePayment, "", "")
	require.NoError(t, err)

	assert.Equal(t, 1, notifier.calls, "exactly one send per dispatch")
	assert.Equal(t, "msg-123", result.MessageID)
	assert.Equal(t, "maria@example.com", result.Recipient)
	assert.NotEmpty(t, result.Subject)
	assert.NotEmpty(t, result.Message)

	assert.Equal(t, "u1", notifier.lastPayload.UserID)
	assert.Equal(t, "Maria Silva", notifier.lastPayload.UserName)
	assert.Equal(t, "payment_pending", notifier.lastPayload.JourneyStage)
}

func TestDispatchCustomMissingFieldsBlocksSend(t *testing.T) {
	notifier := &fakeNotifier{messageID: "msg-123"}
	dispatcher := newTestDispatcher(notifier)

	_, err := dispatcher.Dispatch(context.Background(), validRecord(), IntentCustom, "", "Corpo")
	require.ErrorIs(t, err, ErrMissingFields)
	assert.Equal(t, 0, notifier.calls, "nothing reaches the notifier")

	_, err = dispatcher.Dispatch(context.Background(), validRecord(), IntentCustom, "Assunto", "")
	require.ErrorIs(t, err, ErrMissingFields)
	assert.Equal(t, 0, notifier.calls)
}

func TestDispatchNotifierErrorPassedThrough(t *testing.T) {
	providerErr := errors.New("provider quota exceeded")
	notifier := &fakeNotifier{err: providerErr}
	dispatcher := newTestDispatcher(notifier)

	_, err := dispatcher.Dispatch(context.Background(), validRecord(), IntentChoosePlan, "", "")
	require.Error(t, err)
	assert.Equal(t, providerErr, err, "collaborator error is not rewrapped")
	assert.Equal(t, 1, notifier.calls)
}

func TestDispatchInvalidEmail(t *testing.T) {
	notifier := &fakeNotifier{messageID: "msg-123"}
	dispatcher := newTestDispatcher(notifier)

	record := validRecord()
	record.Email = "not-an-address"

	_, err := dispatcher.Dispatch(context.Background(), record, IntentCompleteProfile, "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-an-address")
	assert.Equal(t, 0, notifier.calls)
}

func TestDispatchUnrecognizedStage(t *testing.T) {
	notifier := &fakeNotifier{messageID: "msg-123"}
	dispatcher := newTestDispatcher(notifier)

	record := validRecord()
	record.JourneyStage = "trial_period"

	_, err := dispatcher.Dispatch(context.Background(), record, IntentCompleteProfile, "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trial_period")
	assert.Equal(t, 0, notifier.calls)
}
