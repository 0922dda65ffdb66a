// README: Trip DNA Scanner pipeline: OCR -> booking parse -> itinerary -> WhatsApp summary -> optional send.
package scanner

import (
	"context"
	"fmt"
	"strings"

	"roamgenie/internal/ai"
	"roamgenie/internal/metrics"
	"roamgenie/internal/notify"
)

// Request carries the optional traveller context for one scan.
type Request struct {
	Text            string `json:"text"`
	PassportCountry string `json:"passportCountry"`
	WhatsAppNumber  string `json:"whatsappNumber"`
}

// Result is everything one scan produced. OCRText is set only for image scans.
type Result struct {
	OCRText         string  `json:"ocrText,omitempty"`
	Booking         Booking `json:"booking"`
	Itinerary       string  `json:"itinerary"`
	WhatsAppSummary string  `json:"whatsappSummary"`
	WhatsAppSent    bool    `json:"whatsappSent"`
	WhatsAppError   *string `json:"whatsappError"`
}

// Service sequences the scanner pipeline.
type Service struct {
	parser *Parser
	synth  *Synthesizer
	ocr    ai.TextExtractor
	sender notify.Sender
}

// NewService wires the pipeline. ocr, transfer and sender may be nil.
func NewService(gen ai.Generator, ocr ai.TextExtractor, transfer TransferEstimator, sender notify.Sender) *Service {
	return &Service{
		parser: NewParser(gen),
		synth:  NewSynthesizer(gen, transfer),
		ocr:    ocr,
		sender: sender,
	}
}

// ProcessText runs the pipeline on confirmation text.
// Empty text is rejected with ErrInputRejected before any model call.
func (s *Service) ProcessText(ctx context.Context, req Request) (Result, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Result{}, fmt.Errorf("%w: field \"text\" is required", ErrInputRejected)
	}
	logger.Printf("processing text booking confirmation (%d chars)", len(text))
	return s.process(ctx, text, req)
}

// ProcessImage extracts text from image and runs the pipeline on it.
// An image that yields no text is rejected with ErrInputRejected.
func (s *Service) ProcessImage(ctx context.Context, image []byte, mimeType string, req Request) (Result, error) {
	if len(image) == 0 {
		return Result{}, fmt.Errorf("%w: no file uploaded", ErrInputRejected)
	}
	if s.ocr == nil {
		return Result{}, ErrOCRUnavailable
	}

	logger.Printf("running OCR on uploaded image (%s, %d bytes)", mimeType, len(image))
	ocrText, err := s.ocr.ExtractText(ctx, image, mimeType)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("scanner", "error").Inc()
		return Result{}, fmt.Errorf("ocr: %w", err)
	}
	ocrText = strings.TrimSpace(ocrText)
	if ocrText == "" {
		return Result{}, ErrNoTextExtracted
	}

	res, err := s.process(ctx, ocrText, req)
	if err != nil {
		return Result{}, err
	}
	res.OCRText = ocrText
	return res, nil
}

func (s *Service) process(ctx context.Context, text string, req Request) (Result, error) {
	booking, err := s.parser.ParseBooking(ctx, text)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("scanner", "error").Inc()
		return Result{}, err
	}

	passport := strings.TrimSpace(req.PassportCountry)
	itinerary, err := s.synth.Synthesize(ctx, booking, passport)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("scanner", "error").Inc()
		return Result{}, err
	}

	res := Result{
		Booking:         booking,
		Itinerary:       itinerary,
		WhatsAppSummary: BuildSummary(booking, itinerary, passport),
	}

	if to := strings.TrimSpace(req.WhatsAppNumber); to != "" {
		res.WhatsAppSent, res.WhatsAppError = s.send(ctx, to, res.WhatsAppSummary)
	}

	outcome := "ok"
	if booking.ParseError {
		outcome = "degraded"
	}
	metrics.PipelineRuns.WithLabelValues("scanner", outcome).Inc()
	return res, nil
}

// send never fails the pipeline; the error text is reported back instead.
func (s *Service) send(ctx context.Context, to, body string) (bool, *string) {
	if s.sender == nil {
		msg := notify.ErrNotConfigured.Error()
		return false, &msg
	}
	logger.Printf("sending summary to %s", to)
	if _, err := s.sender.Send(ctx, to, body); err != nil {
		logger.Printf("WARNING: summary send failed: %v", err)
		msg := err.Error()
		return false, &msg
	}
	return true, nil
}
