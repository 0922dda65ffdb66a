// README: Canned emergency WhatsApp alerts and the IVR call trigger (automation webhook or Twilio voice).
package emergency

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"roamgenie/internal/notify"
)

const webhookTimeout = 15 * time.Second

var logger = log.New(log.Writer(), "[emergency] ", log.LstdFlags)

var (
	// ErrInputRejected marks a request without a phone number.
	ErrInputRejected = errors.New("input rejected")
	// ErrInvalidNumber rejects numbers that are not +91 followed by ten characters.
	ErrInvalidNumber = errors.New("please provide a valid phone number starting with +91 (e.g. +919876543210)")
)

// Alert names a canned emergency message.
type Alert string

const (
	FlightCancellation Alert = "flight-cancellation"
	OfflineFallback    Alert = "offline-fallback"
)

var alertBodies = map[Alert]string{
	FlightCancellation: "🚨 [Emergency] Your flight AI302 has been CANCELLED. " +
		"Please check your email for rebooking or call +91-9999999999 for help.",
	OfflineFallback: "📴 [Fallback] Our systems are temporarily offline. " +
		"For urgent help, call +91-9999999999 or visit your nearest airline office.",
}

var alertConfirmations = map[Alert]string{
	FlightCancellation: "Emergency alert sent!",
	OfflineFallback:    "Offline fallback message sent!",
}

// VoiceMessage is read aloud when the call is placed through Twilio directly.
const VoiceMessage = "Hello from RoamGenie. This is an automated travel assistance call. " +
	"Please check your WhatsApp messages for the latest update on your trip."

// Body returns the message text for an alert.
func (a Alert) Body() (string, bool) {
	b, ok := alertBodies[a]
	return b, ok
}

// ValidIndianNumber accepts "+91" plus ten characters, with or without a "whatsapp:" prefix.
func ValidIndianNumber(n string) bool {
	if len(n) >= len("whatsapp:") && strings.EqualFold(n[:len("whatsapp:")], "whatsapp:") {
		n = n[len("whatsapp:"):]
	}
	return strings.HasPrefix(n, "+91") && len(n) == 13
}

func checkNumber(field, n string) error {
	if n == "" {
		return fmt.Errorf("%w: field %q is required", ErrInputRejected, field)
	}
	if !ValidIndianNumber(n) {
		return ErrInvalidNumber
	}
	return nil
}

// Caller places voice calls.
type Caller interface {
	Call(ctx context.Context, to, message string) (notify.Delivery, error)
}

// AlertResult is the outcome of SendAlert.
type AlertResult struct {
	Success bool   `json:"success"`
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CallResult is the outcome of TriggerCall.
type CallResult struct {
	Success bool   `json:"success"`
	SID     string `json:"sid,omitempty"`
	Message string `json:"message"`
}

// WebhookError carries the status and body of a failed webhook call.
type WebhookError struct {
	Status int
	Body   string
}

func (e *WebhookError) Error() string {
	return fmt.Sprintf("call initiation failed. Status: %d. Details: %s", e.Status, e.Body)
}

// Service sends emergency notifications.
type Service struct {
	sender     notify.Sender
	caller     Caller
	webhookURL string
	httpClient *http.Client
}

// NewService creates a Service. sender and caller may be nil; webhookURL may be empty.
func NewService(sender notify.Sender, caller Caller, webhookURL string) *Service {
	return &Service{
		sender:     sender,
		caller:     caller,
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: webhookTimeout},
	}
}

// SendAlert delivers a canned alert over WhatsApp.
func (s *Service) SendAlert(ctx context.Context, alert Alert, whatsappNumber string) (AlertResult, error) {
	body, ok := alert.Body()
	if !ok {
		return AlertResult{}, fmt.Errorf("%w: unknown alert %q", ErrInputRejected, alert)
	}
	whatsappNumber = strings.TrimSpace(whatsappNumber)
	if err := checkNumber("whatsappNumber", whatsappNumber); err != nil {
		return AlertResult{}, err
	}
	if s.sender == nil {
		return AlertResult{}, notify.ErrNotConfigured
	}

	logger.Printf("sending %s alert to %s", alert, whatsappNumber)
	d, err := s.sender.Send(ctx, whatsappNumber, body)
	if err != nil {
		return AlertResult{}, fmt.Errorf("%s alert: %w", alert, err)
	}
	return AlertResult{Success: true, SID: d.SID, Status: d.Status, Message: alertConfirmations[alert]}, nil
}

// TriggerCall starts an IVR call. The automation webhook is used when configured;
// otherwise the call is placed directly.
func (s *Service) TriggerCall(ctx context.Context, toNumber string) (CallResult, error) {
	toNumber = strings.TrimSpace(toNumber)
	if err := checkNumber("toNumber", toNumber); err != nil {
		return CallResult{}, err
	}

	if s.webhookURL != "" {
		return s.callViaWebhook(ctx, toNumber)
	}
	if s.caller == nil {
		return CallResult{}, notify.ErrNotConfigured
	}

	logger.Printf("placing IVR call to %s", toNumber)
	d, err := s.caller.Call(ctx, toNumber, VoiceMessage)
	if err != nil {
		return CallResult{}, fmt.Errorf("ivr call: %w", err)
	}
	return CallResult{Success: true, SID: d.SID, Message: "Call initiated successfully!"}, nil
}

type webhookReply struct {
	Success bool   `json:"success"`
	SID     string `json:"sid"`
}

func (s *Service) callViaWebhook(ctx context.Context, toNumber string) (CallResult, error) {
	logger.Printf("forwarding call request to webhook for %s", toNumber)
	payload, err := json.Marshal(map[string]string{"to_number": toNumber})
	if err != nil {
		return CallResult{}, fmt.Errorf("ivr webhook: marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, webhookTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return CallResult{}, fmt.Errorf("ivr webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return CallResult{}, fmt.Errorf("ivr webhook: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return CallResult{}, fmt.Errorf("ivr webhook: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		logger.Printf("ivr webhook error: status %d", resp.StatusCode)
		return CallResult{}, &WebhookError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var reply webhookReply
	if err := json.Unmarshal(body, &reply); err != nil || !reply.Success {
		logger.Printf("WARNING: webhook returned non-success: %s", strings.TrimSpace(string(body)))
		return CallResult{Success: false, Message: "Call request sent, but no SID returned."}, nil
	}
	logger.Printf("call initiated: SID %s", reply.SID)
	return CallResult{Success: true, SID: reply.SID, Message: "Call initiated successfully!"}, nil
}
