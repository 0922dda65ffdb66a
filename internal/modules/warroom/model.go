package warroom

import "errors"

// ErrInputRejected marks a request missing the fields the pipeline needs.
var ErrInputRejected = errors.New("input rejected")

// AlertLevel grades a disruption: green nominal, amber monitor, red act now.
type AlertLevel string

const (
	AlertGreen AlertLevel = "green"
	AlertAmber AlertLevel = "amber"
	AlertRed   AlertLevel = "red"
)

// Valid reports whether l is one of the three levels.
func (l AlertLevel) Valid() bool {
	switch l {
	case AlertGreen, AlertAmber, AlertRed:
		return true
	}
	return false
}

// Endpoint is one side of a flight as reported by the status provider.
type Endpoint struct {
	Airport   string  `json:"airport"`
	IATA      string  `json:"iata"`
	Scheduled *string `json:"scheduled"`
	Estimated *string `json:"estimated"`
	Delay     int     `json:"delay"`
	Terminal  *string `json:"terminal"`
	Gate      *string `json:"gate"`
}

// FlightStatus is the normalized live status of one flight.
// Mock records carry IsMock and otherwise satisfy the same contract.
type FlightStatus struct {
	FlightIATA string   `json:"flightIata"`
	Airline    string   `json:"airline"`
	Status     string   `json:"status"`
	Departure  Endpoint `json:"departure"`
	Arrival    Endpoint `json:"arrival"`
	IsMock     bool     `json:"isMock"`
}

// IntelBrief is the disruption assessment sent back to the traveller.
// ConnectionViable is nil when there is not enough information to judge.
type IntelBrief struct {
	AlertLevel         AlertLevel `json:"alertLevel"`
	Headline           string     `json:"headline"`
	Summary            string     `json:"summary"`
	ConnectionViable   *bool      `json:"connectionViable"`
	RecommendedActions []string   `json:"recommendedActions"`
	WhatsAppAlert      string     `json:"whatsappAlert"`
}

// BriefContext is the trip context the assessment is made against.
type BriefContext struct {
	Destination    string
	LayoverMinutes *int
}
