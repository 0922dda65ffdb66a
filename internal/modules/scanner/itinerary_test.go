package scanner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"roamgenie/internal/ai"
)

type fakeTransfer struct {
	d      time.Duration
	dist   string
	err    error
	origin string
	dest   string
}

func (f *fakeTransfer) GetTravelEstimate(_ context.Context, origin, destination string) (time.Duration, string, error) {
	f.origin, f.dest = origin, destination
	return f.d, f.dist, f.err
}

func emiratesBooking(t *testing.T) Booking {
	t.Helper()
	res := ai.ParseJSON(emiratesReply)
	b, err := DecodeBooking(res.Data)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return b
}

func newTestSynthesizer(gen ai.Generator, transfer TransferEstimator) *Synthesizer {
	s := NewSynthesizer(gen, transfer)
	s.now = fixedClock
	return s
}

func TestSynthesize_DegradedSkipsModel(t *testing.T) {
	gen := ai.NewMockGenerator("## Day 1\nshould never be produced")
	got, err := newTestSynthesizer(gen, nil).Synthesize(context.Background(), DegradedBooking("garbled"), "India")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if got != ItineraryUnavailable {
		t.Errorf("itinerary = %q", got)
	}
	if gen.Calls() != 0 {
		t.Errorf("model called %d times for a degraded booking", gen.Calls())
	}
}

func TestSynthesize_FlightContext(t *testing.T) {
	gen := ai.NewMockGenerator("  ## Day 1\nLand in Dubai.  \n")
	got, err := newTestSynthesizer(gen, nil).Synthesize(context.Background(), emiratesBooking(t), "India")
	if err != nil {
		t.Fatal(err)
	}
	if got != "## Day 1\nLand in Dubai." {
		t.Errorf("itinerary not trimmed: %q", got)
	}
	if gen.Calls() != 1 {
		t.Fatalf("calls = %d", gen.Calls())
	}
	call := gen.Call(0)
	for _, want := range []string{
		"• Flight: Emirates EK 202",
		"• Route: Mumbai (BOM) → Dubai (DXB)",
		"• Departure: 2026-11-02 at 09:40",
		"• Seat: 32A (Economy)",
		"• Layovers: Frankfurt (2h 15m)",
		"• Traveller's passport: India",
		"• Booking reference: ABCD12",
		"• Passenger: John Doe",
	} {
		if !strings.Contains(call.UserPrompt, want) {
			t.Errorf("user prompt missing %q\n%s", want, call.UserPrompt)
		}
	}
	if !strings.Contains(call.SystemInstruction, "## Day 1") || !strings.Contains(call.SystemInstruction, "2026-10-18") {
		t.Error("system instruction lacks format or date grounding")
	}
}

func TestSynthesize_SparseBookingStillCallsModel(t *testing.T) {
	gen := ai.NewMockGenerator("## Day 1\nExplore.")
	b := Booking{Type: TypeHotel, Summary: "Hotel stay", Details: &HotelDetails{}}
	if _, err := newTestSynthesizer(gen, nil).Synthesize(context.Background(), b, ""); err != nil {
		t.Fatal(err)
	}
	call := gen.Call(0)
	if !strings.Contains(call.UserPrompt, "• Hotel: Unknown") || !strings.Contains(call.UserPrompt, "• Booking reference: N/A") {
		t.Errorf("sparse prompt = %s", call.UserPrompt)
	}
}

func TestSynthesize_TransferHint(t *testing.T) {
	tr := &fakeTransfer{d: 34*time.Minute + 40*time.Second, dist: "21.3 km"}
	gen := ai.NewMockGenerator("## Day 1")
	if _, err := newTestSynthesizer(gen, tr).Synthesize(context.Background(), emiratesBooking(t), ""); err != nil {
		t.Fatal(err)
	}
	if tr.origin != "Dubai International (DXB)" || tr.dest != "Dubai city centre" {
		t.Errorf("estimate asked for %q -> %q", tr.origin, tr.dest)
	}
	if !strings.Contains(gen.Call(0).UserPrompt, "Airport transfer estimate: about 35 min by road (21.3 km)") {
		t.Errorf("prompt missing transfer hint:\n%s", gen.Call(0).UserPrompt)
	}
}

func TestSynthesize_TransferFailureIsDropped(t *testing.T) {
	tr := &fakeTransfer{err: errors.New("ZERO_RESULTS")}
	gen := ai.NewMockGenerator("## Day 1")
	if _, err := newTestSynthesizer(gen, tr).Synthesize(context.Background(), emiratesBooking(t), ""); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(gen.Call(0).UserPrompt, "transfer estimate") {
		t.Error("failed estimate leaked into prompt")
	}
}

func TestSynthesize_UpstreamError(t *testing.T) {
	gen := ai.NewFailingGenerator(&ai.UpstreamError{Provider: "mock", Timeout: true, Err: context.DeadlineExceeded})
	_, err := newTestSynthesizer(gen, nil).Synthesize(context.Background(), emiratesBooking(t), "")
	if !errors.Is(err, ai.ErrUpstreamTimeout) {
		t.Fatalf("err = %v, want ErrUpstreamTimeout", err)
	}
}
