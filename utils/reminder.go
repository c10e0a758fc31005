package utils

import (
	"context"
	"fmt"
	"log"

	"github.com/badoux/checkmail"

	"journeyboard/models"
)

// ReminderDispatcher composes a reminder for one journey record and submits
// it to the notification collaborator exactly once per call. No automatic
// retry; a failed dispatch is reported back to the operator, who may retry
// manually.
type ReminderDispatcher struct {
	Notifier NotifierInterface
	Logger   *log.Logger
}

func NewReminderDispatcher(notifier NotifierInterface, logger *log.Logger) *ReminderDispatcher {
	return &ReminderDispatcher{
		Notifier: notifier,
		Logger:   logger,
	}
}

// DispatchResult reports a completed send.
type DispatchResult struct {
	MessageID string
	Subject   string
	Message   string
	Recipient string
}

// Dispatch validates, composes and sends. Validation failures return before
// any outbound call; notifier errors are passed through verbatim so the
// operator sees the collaborator's own message.
func (rd *ReminderDispatcher) Dispatch(ctx context.Context, record *models.UserJourneyRecord, intent, customSubject, customMessage string) (*DispatchResult, error) {
	if !record.JourneyStage.IsValid() {
		return nil, fmt.Errorf("unrecognized journey stage %q", record.JourneyStage)
	}
	if err := checkmail.ValidateFormat(record.Email); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", record.Email, err)
	}

	subject, message, err := ComposeReminder(intent, record, customSubject, customMessage)
	if err != nil {
		return nil, err
	}

	payload := ReminderPayload{
		UserID:       record.UserID,
		UserEmail:    record.Email,
		UserName:     record.DisplayName(),
		JourneyStage: string(record.JourneyStage),
		Subject:      subject,
		Message:      message,
	}

	messageID, err := rd.Notifier.Send(ctx, payload)
	if err != nil {
		return nil, err
	}

	rd.Logger.Printf("Reminder %s sent to %s (stage %s, intent %s)", messageID, record.Email, record.JourneyStage, intent)

	return &DispatchResult{
		MessageID: messageID,
		Subject:   subject,
		Message:   message,
		Recipient: record.Email,
	}, nil
}
