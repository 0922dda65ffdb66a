package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
)

// pushBodyLimit caps the body, in runes, in both the notification and the data payload.
const pushBodyLimit = 1000

type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCM delivers messages as Firebase Cloud Messaging push notifications.
type FCM struct {
	client messagingClient
}

// NewFCM creates a push sender from an initialised Firebase app.
func NewFCM(ctx context.Context, app *firebase.App) (*FCM, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialising firebase messaging client: %w", err)
	}
	return &FCM{client: client}, nil
}

// Send implements Sender; to is a device registration token.
func (f *FCM) Send(ctx context.Context, to, body string) (Delivery, error) {
	if to == "" {
		return Delivery{}, fmt.Errorf("fcm: empty device token")
	}
	short := body
	if r := []rune(short); len(r) > pushBodyLimit {
		short = string(r[:pushBodyLimit])
	}

	msg := &messaging.Message{
		Token: to,
		Data: map[string]string{
			"type": "roamgenie_alert",
			"body": short,
		},
		Notification: &messaging.Notification{
			Title: "RoamGenie",
			Body:  short,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	messageID, err := f.client.Send(ctx, msg)
	if err != nil {
		return Delivery{}, fmt.Errorf("sending FCM to token %s: %w", to, err)
	}
	logger.Printf("FCM sent, message_id=%s", messageID)
	return Delivery{SID: messageID, Status: "sent", Channel: "push"}, nil
}
