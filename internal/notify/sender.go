// README: Outbound notification transports (Twilio WhatsApp/voice, Firebase push) behind one Sender contract.
package notify

import (
	"context"
	"errors"
	"log"
	"strings"

	"roamgenie/internal/metrics"
)

// ErrNotConfigured is returned when the transport for an address has no credentials.
var ErrNotConfigured = errors.New("notification transport not configured")

// PushPrefix marks an address as a Firebase device token.
const PushPrefix = "fcm:"

// Delivery identifies an accepted message.
type Delivery struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Channel string `json:"channel"`
}

// Sender delivers a message body to an address.
// Callers treat failures as non-fatal to the pipeline that produced the body.
type Sender interface {
	Send(ctx context.Context, to, body string) (Delivery, error)
}

var logger = log.New(log.Writer(), "[notify] ", log.LstdFlags)

// Dispatcher routes "fcm:<token>" addresses to push and everything else to WhatsApp.
type Dispatcher struct {
	whatsapp Sender
	push     Sender
}

// NewDispatcher creates a Dispatcher; either transport may be nil.
func NewDispatcher(whatsapp, push Sender) *Dispatcher {
	return &Dispatcher{whatsapp: whatsapp, push: push}
}

// Send implements Sender.
func (d *Dispatcher) Send(ctx context.Context, to, body string) (Delivery, error) {
	to = strings.TrimSpace(to)
	channel, target, sender := "whatsapp", to, d.whatsapp
	if strings.HasPrefix(to, PushPrefix) {
		channel, target, sender = "push", strings.TrimPrefix(to, PushPrefix), d.push
	}

	if sender == nil || isNilSender(sender) {
		metrics.Notifications.WithLabelValues(channel, "not_configured").Inc()
		return Delivery{}, ErrNotConfigured
	}

	delivery, err := sender.Send(ctx, target, body)
	if err != nil {
		metrics.Notifications.WithLabelValues(channel, "error").Inc()
		logger.Printf("WARNING: %s send failed: %v", channel, err)
		return Delivery{}, err
	}
	metrics.Notifications.WithLabelValues(channel, "sent").Inc()
	delivery.Channel = channel
	return delivery, nil
}

// isNilSender catches typed-nil pointers stored in the interface.
func isNilSender(s Sender) bool {
	switch v := s.(type) {
	case *Twilio:
		return v == nil
	case *FCM:
		return v == nil
	}
	return false
}
