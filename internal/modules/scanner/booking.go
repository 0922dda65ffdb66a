package scanner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// BookingType discriminates which details a Booking carries.
type BookingType string

const (
	TypeFlight    BookingType = "flight"
	TypeHotel     BookingType = "hotel"
	TypeCarRental BookingType = "car_rental"
	TypeTour      BookingType = "tour"
	TypeUnknown   BookingType = "unknown"
)

// Booking is the structured representation of one travel document.
// Details holds exactly the sub-record matching Type and is nil for TypeUnknown.
// A Booking with ParseError set carries only Type (unknown) and Summary.
type Booking struct {
	Type             BookingType
	BookingReference *string
	PNR              *string
	PassengerName    *string
	TotalPrice       *string
	Currency         *string
	Summary          string
	ParseError       bool
	Details          Details
}

// Details is implemented by the four typed booking records.
type Details interface {
	bookingType() BookingType
}

// Endpoint is one end of a flight leg. Any field the confirmation omits stays nil.
type Endpoint struct {
	Airport  *string `json:"airport"`
	IATA     *string `json:"iata"`
	City     *string `json:"city"`
	Terminal *string `json:"terminal"`
	Time     *string `json:"time"`
	Date     *string `json:"date"`
}

// Layover is a connection stop between departure and arrival.
type Layover struct {
	City     *string `json:"city"`
	IATA     *string `json:"iata"`
	Duration *string `json:"duration"`
}

// FlightDetails is the flight booking record. Booking.MarshalJSON flattens it into the booking object.
type FlightDetails struct {
	Airline          *string
	FlightNumber     *string
	Departure        Endpoint
	Arrival          Endpoint
	Seat             *string
	Class            *string
	BaggageAllowance *string
	Layovers         []Layover
}

type HotelDetails struct {
	Name     *string `json:"name"`
	CheckIn  *string `json:"checkIn"`
	CheckOut *string `json:"checkOut"`
	RoomType *string `json:"roomType"`
	Address  *string `json:"address"`
}

type CarRentalDetails struct {
	Company        *string `json:"company"`
	PickupDate     *string `json:"pickupDate"`
	ReturnDate     *string `json:"returnDate"`
	PickupLocation *string `json:"pickupLocation"`
}

type TourDetails struct {
	Name       *string  `json:"name"`
	StartDate  *string  `json:"startDate"`
	EndDate    *string  `json:"endDate"`
	Inclusions []string `json:"inclusions"`
}

func (*FlightDetails) bookingType() BookingType    { return TypeFlight }
func (*HotelDetails) bookingType() BookingType     { return TypeHotel }
func (*CarRentalDetails) bookingType() BookingType { return TypeCarRental }
func (*TourDetails) bookingType() BookingType      { return TypeTour }

// Flight returns the flight details when the booking is a flight.
func (b Booking) Flight() (*FlightDetails, bool) {
	d, ok := b.Details.(*FlightDetails)
	return d, ok && !b.ParseError
}

// Hotel returns the hotel details when the booking is a hotel stay.
func (b Booking) Hotel() (*HotelDetails, bool) {
	d, ok := b.Details.(*HotelDetails)
	return d, ok && !b.ParseError
}

// CarRental returns the rental details when the booking is a car rental.
func (b Booking) CarRental() (*CarRentalDetails, bool) {
	d, ok := b.Details.(*CarRentalDetails)
	return d, ok && !b.ParseError
}

// Tour returns the tour details when the booking is a tour.
func (b Booking) Tour() (*TourDetails, bool) {
	d, ok := b.Details.(*TourDetails)
	return d, ok && !b.ParseError
}

// Reference returns the PNR, falling back to the booking reference.
func (b Booking) Reference() string {
	if v := deref(b.PNR); v != "" {
		return v
	}
	return deref(b.BookingReference)
}

// DegradedBooking is the fallback produced when extraction cannot yield a valid record.
func DegradedBooking(summary string) Booking {
	return Booking{Type: TypeUnknown, Summary: summary, ParseError: true}
}

// errMalformed marks model output that parsed as JSON but does not fit the booking schema.
var errMalformed = errors.New("malformed booking")

// DecodeBooking validates model JSON against the booking schema.
// Sub-objects that do not belong to the declared type are dropped.
func DecodeBooking(data []byte) (Booking, error) {
	var w wireBooking
	if err := json.Unmarshal(data, &w); err != nil {
		return Booking{}, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if w.Type == nil {
		return Booking{}, fmt.Errorf("%w: missing type", errMalformed)
	}
	typ, ok := normalizeType(string(*w.Type))
	if !ok {
		return Booking{}, fmt.Errorf("%w: unsupported type %q", errMalformed, string(*w.Type))
	}

	b := Booking{
		Type:             typ,
		BookingReference: w.BookingReference.ptr(),
		PNR:              w.PNR.ptr(),
		PassengerName:    w.PassengerName.ptr(),
		TotalPrice:       w.TotalPrice.ptr(),
		Currency:         w.Currency.ptr(),
		Summary:          deref(w.Summary.ptr()),
	}

	switch typ {
	case TypeFlight:
		f := &FlightDetails{
			Airline:          w.Airline.ptr(),
			FlightNumber:     w.FlightNumber.ptr(),
			Departure:        w.Departure.endpoint(),
			Arrival:          w.Arrival.endpoint(),
			Seat:             w.Seat.ptr(),
			Class:            w.Class.ptr(),
			BaggageAllowance: w.BaggageAllowance.ptr(),
		}
		for _, l := range w.Layovers {
			lay := Layover{City: l.City.ptr(), IATA: l.IATA.ptr(), Duration: l.Duration.ptr()}
			if lay.City == nil && lay.IATA == nil && lay.Duration == nil {
				continue
			}
			f.Layovers = append(f.Layovers, lay)
		}
		b.Details = f
	case TypeHotel:
		h := &HotelDetails{}
		if w.Hotel != nil {
			h.Name, h.CheckIn, h.CheckOut = w.Hotel.Name.ptr(), w.Hotel.CheckIn.ptr(), w.Hotel.CheckOut.ptr()
			h.RoomType, h.Address = w.Hotel.RoomType.ptr(), w.Hotel.Address.ptr()
		}
		b.Details = h
	case TypeCarRental:
		c := &CarRentalDetails{}
		if w.CarRental != nil {
			c.Company, c.PickupDate = w.CarRental.Company.ptr(), w.CarRental.PickupDate.ptr()
			c.ReturnDate, c.PickupLocation = w.CarRental.ReturnDate.ptr(), w.CarRental.PickupLocation.ptr()
		}
		b.Details = c
	case TypeTour:
		t := &TourDetails{}
		if w.Tour != nil {
			t.Name, t.StartDate, t.EndDate = w.Tour.Name.ptr(), w.Tour.StartDate.ptr(), w.Tour.EndDate.ptr()
			for _, inc := range w.Tour.Inclusions {
				if v := inc.ptr(); v != nil {
					t.Inclusions = append(t.Inclusions, *v)
				}
			}
		}
		b.Details = t
	}

	if b.Summary == "" {
		b.Summary = deriveSummary(b)
	}
	return b, nil
}

func normalizeType(v string) (BookingType, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.NewReplacer(" ", "_", "-", "_").Replace(v)
	switch BookingType(v) {
	case TypeFlight, TypeHotel, TypeCarRental, TypeTour, TypeUnknown:
		return BookingType(v), true
	case "carrental", "car":
		return TypeCarRental, true
	}
	return "", false
}

// deriveSummary builds a one-line description when the model omitted one.
func deriveSummary(b Booking) string {
	var parts []string
	switch d := b.Details.(type) {
	case *FlightDetails:
		parts = append(parts, "Flight")
		if name := strings.TrimSpace(deref(d.Airline) + " " + deref(d.FlightNumber)); name != "" {
			parts = append(parts, name)
		}
		if from, to := firstOf(d.Departure.City, d.Departure.IATA), firstOf(d.Arrival.City, d.Arrival.IATA); from != "" && to != "" {
			parts = append(parts, from+" to "+to)
		}
	case *HotelDetails:
		parts = append(parts, "Hotel stay")
		if n := deref(d.Name); n != "" {
			parts = append(parts, "at "+n)
		}
	case *CarRentalDetails:
		parts = append(parts, "Car rental")
		if c := deref(d.Company); c != "" {
			parts = append(parts, "with "+c)
		}
	case *TourDetails:
		parts = append(parts, "Tour")
		if n := deref(d.Name); n != "" {
			parts = append(parts, n)
		}
	default:
		parts = append(parts, "Travel booking")
	}
	if ref := b.Reference(); ref != "" {
		parts = append(parts, "(ref "+ref+")")
	}
	return strings.Join(parts, " ")
}

// wire types mirror the model schema; every scalar is nullable.

type wireBooking struct {
	Type             *flexString   `json:"type"`
	BookingReference *flexString   `json:"bookingReference"`
	PNR              *flexString   `json:"pnr"`
	Airline          *flexString   `json:"airline"`
	FlightNumber     *flexString   `json:"flightNumber"`
	Departure        *wireEndpoint `json:"departure"`
	Arrival          *wireEndpoint `json:"arrival"`
	Seat             *flexString   `json:"seat"`
	Class            *flexString   `json:"class"`
	BaggageAllowance *flexString   `json:"baggageAllowance"`
	Layovers         []wireLayover `json:"layovers"`
	PassengerName    *flexString   `json:"passengerName"`
	Hotel            *struct {
		Name     *flexString `json:"name"`
		CheckIn  *flexString `json:"checkIn"`
		CheckOut *flexString `json:"checkOut"`
		RoomType *flexString `json:"roomType"`
		Address  *flexString `json:"address"`
	} `json:"hotel"`
	CarRental *struct {
		Company        *flexString `json:"company"`
		PickupDate     *flexString `json:"pickupDate"`
		ReturnDate     *flexString `json:"returnDate"`
		PickupLocation *flexString `json:"pickupLocation"`
	} `json:"carRental"`
	Tour *struct {
		Name       *flexString   `json:"name"`
		StartDate  *flexString   `json:"startDate"`
		EndDate    *flexString   `json:"endDate"`
		Inclusions []*flexString `json:"inclusions"`
	} `json:"tour"`
	TotalPrice *flexString `json:"totalPrice"`
	Currency   *flexString `json:"currency"`
	Summary    *flexString `json:"summary"`
}

type wireEndpoint struct {
	Airport  *flexString `json:"airport"`
	IATA     *flexString `json:"iata"`
	City     *flexString `json:"city"`
	Terminal *flexString `json:"terminal"`
	Time     *flexString `json:"time"`
	Date     *flexString `json:"date"`
}

type wireLayover struct {
	City     *flexString `json:"city"`
	IATA     *flexString `json:"iata"`
	Duration *flexString `json:"duration"`
}

func (e *wireEndpoint) endpoint() Endpoint {
	if e == nil {
		return Endpoint{}
	}
	return Endpoint{
		Airport:  e.Airport.ptr(),
		IATA:     e.IATA.ptr(),
		City:     e.City.ptr(),
		Terminal: e.Terminal.ptr(),
		Time:     e.Time.ptr(),
		Date:     e.Date.ptr(),
	}
}

// flexString accepts a JSON string, number or boolean. Models often emit prices as numbers.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(strconv.FormatBool(v))
	case 'n':
		*s = ""
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string, got %s", data)
		}
		*s = flexString(n.String())
	}
	return nil
}

// ptr returns nil for absent or blank values.
func (s *flexString) ptr() *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(string(*s))
	if v == "" {
		return nil
	}
	return &v
}

// MarshalJSON emits the nested-with-nulls shape clients and prompts expect.
func (b Booking) MarshalJSON() ([]byte, error) {
	if b.ParseError {
		return json.Marshal(struct {
			Type       BookingType `json:"type"`
			Summary    string      `json:"summary"`
			ParseError bool        `json:"parseError"`
		}{TypeUnknown, b.Summary, true})
	}

	out := bookingJSON{
		Type:             b.Type,
		BookingReference: b.BookingReference,
		PNR:              b.PNR,
		PassengerName:    b.PassengerName,
		TotalPrice:       b.TotalPrice,
		Currency:         b.Currency,
		Summary:          b.Summary,
		Layovers:         []Layover{},
	}
	switch d := b.Details.(type) {
	case *FlightDetails:
		out.Airline, out.FlightNumber = d.Airline, d.FlightNumber
		dep, arr := d.Departure, d.Arrival
		out.Departure, out.Arrival = &dep, &arr
		out.Seat, out.Class, out.BaggageAllowance = d.Seat, d.Class, d.BaggageAllowance
		if len(d.Layovers) > 0 {
			out.Layovers = d.Layovers
		}
	case *HotelDetails:
		out.Hotel = d
	case *CarRentalDetails:
		out.CarRental = d
	case *TourDetails:
		tour := *d
		if tour.Inclusions == nil {
			tour.Inclusions = []string{}
		}
		out.Tour = &tour
	}
	return json.Marshal(out)
}

type bookingJSON struct {
	Type             BookingType       `json:"type"`
	BookingReference *string           `json:"bookingReference"`
	PNR              *string           `json:"pnr"`
	Airline          *string           `json:"airline"`
	FlightNumber     *string           `json:"flightNumber"`
	Departure        *Endpoint         `json:"departure"`
	Arrival          *Endpoint         `json:"arrival"`
	Seat             *string           `json:"seat"`
	Class            *string           `json:"class"`
	BaggageAllowance *string           `json:"baggageAllowance"`
	Layovers         []Layover         `json:"layovers"`
	PassengerName    *string           `json:"passengerName"`
	Hotel            *HotelDetails     `json:"hotel"`
	CarRental        *CarRentalDetails `json:"carRental"`
	Tour             *TourDetails      `json:"tour"`
	TotalPrice       *string           `json:"totalPrice"`
	Currency         *string           `json:"currency"`
	Summary          string            `json:"summary"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// firstOf returns the first non-empty value.
func firstOf(vals ...*string) string {
	for _, v := range vals {
		if s := deref(v); s != "" {
			return s
		}
	}
	return ""
}
