// README: War Room pipeline: flight status + advisories (concurrent) -> intel brief -> optional alert.
package warroom

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"roamgenie/internal/ai"
	"roamgenie/internal/metrics"
	"roamgenie/internal/notify"
)

const defaultDestination = "your destination"

// MonitorRequest describes the flight to watch.
type MonitorRequest struct {
	FlightIATA     string `json:"flightIata"`
	Destination    string `json:"destination"`
	LayoverMinutes *int   `json:"layoverMinutes"`
	WhatsAppNumber string `json:"whatsappNumber"`
}

// MonitorResult is the full War Room answer for one flight.
type MonitorResult struct {
	FlightStatus FlightStatus `json:"flightStatus"`
	Advisories   []string     `json:"advisories"`
	Intel        IntelBrief   `json:"intel"`
	WhatsAppSent bool         `json:"whatsappSent"`
}

// Service runs the disruption pipeline.
type Service struct {
	status     StatusSource
	advisories AdvisorySource
	gen        ai.Generator
	sender     notify.Sender
}

// NewService creates a Service. sender may be nil.
func NewService(status StatusSource, advisories AdvisorySource, gen ai.Generator, sender notify.Sender) *Service {
	return &Service{status: status, advisories: advisories, gen: gen, sender: sender}
}

// Monitor fetches status and advisories concurrently, builds the brief and, when a
// number is given and the level is not green, pushes the alert. Send failures are logged only.
func (s *Service) Monitor(ctx context.Context, req MonitorRequest) (MonitorResult, error) {
	iata := strings.ToUpper(strings.TrimSpace(req.FlightIATA))
	if iata == "" {
		return MonitorResult{}, fmt.Errorf("%w: field \"flightIata\" is required (e.g. \"EK502\")", ErrInputRejected)
	}
	dest := strings.TrimSpace(req.Destination)
	logger.Printf("monitoring %s -> %s", iata, orNA(dest, "unknown"))

	var (
		status     FlightStatus
		advisories = []string{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		status = s.status.FlightStatus(gctx, iata)
		return nil
	})
	if dest != "" {
		g.Go(func() error {
			advisories = s.advisories.Advisories(gctx, dest)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return MonitorResult{}, err
	}

	intel := BuildIntelBrief(ctx, s.gen, status, advisories, BriefContext{
		Destination:    orNA(dest, defaultDestination),
		LayoverMinutes: req.LayoverMinutes,
	})

	res := MonitorResult{FlightStatus: status, Advisories: advisories, Intel: intel}
	if to := strings.TrimSpace(req.WhatsAppNumber); to != "" && intel.AlertLevel != AlertGreen {
		res.WhatsAppSent = s.alert(ctx, to, intel)
	}

	metrics.PipelineRuns.WithLabelValues("warroom", string(intel.AlertLevel)).Inc()
	return res, nil
}

func (s *Service) alert(ctx context.Context, to string, intel IntelBrief) bool {
	if s.sender == nil {
		logger.Printf("WARNING: alert for %s not sent: %v", to, notify.ErrNotConfigured)
		return false
	}
	if _, err := s.sender.Send(ctx, to, intel.WhatsAppAlert); err != nil {
		logger.Printf("WARNING: alert send failed: %v", err)
		return false
	}
	logger.Printf("alert sent (level: %s)", intel.AlertLevel)
	return true
}

// FlightStatus returns the status for one flight code, uppercased.
func (s *Service) FlightStatus(ctx context.Context, iata string) (FlightStatus, error) {
	iata = strings.ToUpper(strings.TrimSpace(iata))
	if iata == "" {
		return FlightStatus{}, fmt.Errorf("%w: query param \"iata\" is required (e.g. ?iata=EK502)", ErrInputRejected)
	}
	return s.status.FlightStatus(ctx, iata), nil
}

// Advisories returns advisory headlines for a destination.
func (s *Service) Advisories(ctx context.Context, destination string) ([]string, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, fmt.Errorf("%w: query param \"destination\" is required", ErrInputRejected)
	}
	return s.advisories.Advisories(ctx, destination), nil
}
