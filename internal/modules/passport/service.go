package passport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"roamgenie/internal/ai"
)

var (
	// ErrCountryNotDetected means the passport image yielded no recognisable issuing country.
	ErrCountryNotDetected = errors.New("could not extract passport information, please try a clearer image")
	// ErrUnsupportedImage rejects uploads that are not JPG, PNG or WEBP.
	ErrUnsupportedImage = errors.New("only JPG, PNG and WEBP images are accepted")
	// ErrInputRejected marks a request without a passport country.
	ErrInputRejected = errors.New("input rejected")
	// ErrOCRUnavailable means no OCR backend is configured.
	ErrOCRUnavailable = errors.New("image text extraction not configured")
)

var acceptedImages = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// ScanResult is the visa picture for a scanned passport.
type ScanResult struct {
	Detection
	VisaFreeResult
}

// LookupResult is the visa picture for a named passport country.
type LookupResult struct {
	Country string `json:"country"`
	VisaFreeResult
	AvailablePassports []string `json:"availablePassports"`
}

// Service answers passport and visa questions.
type Service struct {
	dataset *Dataset
	ocr     ai.TextExtractor
}

// NewService creates a Service. ocr may be nil, which disables Scan.
func NewService(dataset *Dataset, ocr ai.TextExtractor) *Service {
	return &Service{dataset: dataset, ocr: ocr}
}

// Scan reads the issuing country off a passport image and looks up its visa-free destinations.
func (s *Service) Scan(ctx context.Context, image []byte, mimeType string) (ScanResult, error) {
	if !acceptedImages[strings.ToLower(mimeType)] {
		return ScanResult{}, ErrUnsupportedImage
	}
	if s.ocr == nil {
		return ScanResult{}, ErrOCRUnavailable
	}

	logger.Printf("scanning passport image (%d bytes)", len(image))
	text, err := s.ocr.ExtractText(ctx, image, mimeType)
	if err != nil {
		return ScanResult{}, fmt.Errorf("passport ocr: %w", err)
	}
	det, ok := DetectCountry(text)
	if !ok {
		return ScanResult{}, ErrCountryNotDetected
	}
	return ScanResult{Detection: det, VisaFreeResult: s.dataset.VisaFree(ctx, det.Country)}, nil
}

// Lookup returns the visa-free destinations for a passport country.
func (s *Service) Lookup(ctx context.Context, country string) (LookupResult, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return LookupResult{}, fmt.Errorf("%w: field \"country\" (string) is required", ErrInputRejected)
	}
	logger.Printf("finding visa-free countries for: %s", country)
	return LookupResult{
		Country:            country,
		VisaFreeResult:     s.dataset.VisaFree(ctx, country),
		AvailablePassports: s.dataset.Passports(ctx),
	}, nil
}

// Countries lists every passport country in the dataset.
func (s *Service) Countries(ctx context.Context) []string {
	return s.dataset.Passports(ctx)
}

// VisaStatus answers whether a passport can enter a destination without a visa,
// for the travel planner. It returns false when the passport is unknown.
func (d *Dataset) VisaStatus(ctx context.Context, passport, destination string) bool {
	if strings.TrimSpace(destination) == "" {
		return false
	}
	for _, c := range d.VisaFree(ctx, passport).Countries {
		if strings.EqualFold(c, destination) {
			return true
		}
	}
	return false
}
