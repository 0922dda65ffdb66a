package notify

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"roamgenie/internal/config"
)

const whatsappPrefix = "whatsapp:"

// twilioAPI is the subset of the Twilio REST API used here.
type twilioAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
	CreateCall(params *twilioApi.CreateCallParams) (*twilioApi.ApiV2010Call, error)
}

// Twilio sends WhatsApp messages and places voice calls.
type Twilio struct {
	api          twilioAPI
	whatsappFrom string
	phoneFrom    string
}

// NewTwilio returns nil when the account credentials are missing.
func NewTwilio(cfg config.TwilioConfig) *Twilio {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return newTwilio(client.Api, cfg.WhatsAppFrom, cfg.PhoneNumber)
}

func newTwilio(api twilioAPI, whatsappFrom, phoneFrom string) *Twilio {
	if whatsappFrom == "" {
		whatsappFrom = "whatsapp:+14155238886"
	}
	if !strings.HasPrefix(whatsappFrom, whatsappPrefix) {
		whatsappFrom = whatsappPrefix + whatsappFrom
	}
	return &Twilio{api: api, whatsappFrom: whatsappFrom, phoneFrom: phoneFrom}
}

// Send delivers body over WhatsApp. The SDK call is synchronous and ignores ctx.
func (t *Twilio) Send(_ context.Context, to, body string) (Delivery, error) {
	if !strings.HasPrefix(to, whatsappPrefix) {
		to = whatsappPrefix + to
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.whatsappFrom)
	params.SetBody(body)

	logger.Printf("sending WhatsApp message to %s", to)
	msg, err := t.api.CreateMessage(params)
	if err != nil {
		return Delivery{}, fmt.Errorf("twilio: create message: %w", err)
	}
	d := Delivery{Channel: "whatsapp"}
	if msg.Sid != nil {
		d.SID = *msg.Sid
	}
	if msg.Status != nil {
		d.Status = *msg.Status
	}
	logger.Printf("WhatsApp SID: %s", d.SID)
	return d, nil
}

// Call places a text-to-speech voice call reading message aloud.
func (t *Twilio) Call(_ context.Context, to, message string) (Delivery, error) {
	if t.phoneFrom == "" {
		return Delivery{}, fmt.Errorf("twilio: %w: no caller number", ErrNotConfigured)
	}
	params := &twilioApi.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(t.phoneFrom)
	params.SetTwiml(SayTwiML(message))

	logger.Printf("initiating voice call to %s", to)
	call, err := t.api.CreateCall(params)
	if err != nil {
		return Delivery{}, fmt.Errorf("twilio: create call: %w", err)
	}
	d := Delivery{Channel: "voice"}
	if call.Sid != nil {
		d.SID = *call.Sid
	}
	if call.Status != nil {
		d.Status = *call.Status
	}
	return d, nil
}

// SayTwiML wraps message in a <Say> verb with XML escaping.
func SayTwiML(message string) string {
	var buf bytes.Buffer
	buf.WriteString("<Response><Say>")
	_ = xml.EscapeText(&buf, []byte(message))
	buf.WriteString("</Say></Response>")
	return buf.String()
}
