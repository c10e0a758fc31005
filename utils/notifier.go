package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"gopkg.in/gomail.v2"
)

// ReminderPayload is the single-operation contract of the notification
// collaborator. Transport (email, SMS, push) is the collaborator's concern.
type ReminderPayload struct {
	UserID       string `json:"user_id"`
	UserEmail    string `json:"user_email"`
	UserName     string `json:"user_name"`
	JourneyStage string `json:"journey_stage"`
	Subject      string `json:"subject"`
	Message      string `json:"message"`
}

// NotifierInterface abstracts the outbound send so the dispatcher can be
// tested without a network.
type NotifierInterface interface {
	Send(ctx context.Context, payload ReminderPayload) (messageID string, err error)
}

// FunctionNotifier invokes the external notification function over HTTP
// with the payload as JSON.
type FunctionNotifier struct {
	URL     string
	Timeout time.Duration
	client  *fasthttp.Client
}

func NewFunctionNotifier(url string, timeout time.Duration) *FunctionNotifier {
	return &FunctionNotifier{
		URL:     url,
		Timeout: timeout,
		client:  &fasthttp.Client{},
	}
}

type functionResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (n *FunctionNotifier) Send(ctx context.Context, payload ReminderPayload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(n.URL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	timeout := n.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	if err := n.client.DoTimeout(req, resp, timeout); err != nil {
		return "", fmt.Errorf("notification function unreachable: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return "", fmt.Errorf("notification function returned status %d", resp.StatusCode())
	}

	var out functionResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("invalid notification function response: %w", err)
	}
	if !out.Success {
		if out.Error != "" {
			return "", fmt.Errorf("%s", out.Error)
		}
		return "", fmt.Errorf("notification function reported failure")
	}

	return uuid.New().String(), nil
}

// SMTPNotifier delivers reminders directly over SMTP. Used when no
// notification function URL is configured.
type SMTPNotifier struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

func (n *SMTPNotifier) Send(ctx context.Context, payload ReminderPayload) (string, error) {
	messageID := uuid.New().String()

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(n.FromEmail, n.FromName))
	m.SetHeader("To", payload.UserEmail)
	m.SetHeader("Subject", payload.Subject)
	m.SetHeader("Message-ID", fmt.Sprintf("<%s@journeyboard>", messageID))
	m.SetBody("text/plain", payload.Message)

	d := gomail.NewDialer(n.Host, n.Port, n.Username, n.Password)

	done := make(chan error, 1)
	go func() { done <- d.DialAndSend(m) }()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("failed to send email: %w", err)
		}
	}

	return messageID, nil
}
