package availability

import (
	"fmt"
	"sort"

	"github.com/derekprior/courtplan/internal/tournament"
)

const (
	dayStart = 0
	dayEnd   = tournament.MinutesPerDay
)

// Window is the effective bookable period of one court on one date.
type Window struct {
	StartTime string
	EndTime   string
	Bookings  []tournament.Booking
}

// Minutes returns the window bounds as minutes after midnight.
func (w Window) Minutes() (start, end int) {
	start, _ = tournament.ParseTime(w.StartTime)
	end, _ = tournament.ParseTime(w.EndTime)
	return start, end
}

// CourtWindow is a resolved window tagged with its court.
type CourtWindow struct {
	CourtID string
	VenueID string
	Window
}

type span struct {
	start, end int
}

func (s span) empty() bool { return s.end <= s.start }

func intersect(a, b span) span {
	return span{start: max(a.start, b.start), end: min(a.end, b.end)}
}

// ResolveCourtAvailability returns the effective windows of court on date.
// The venue window (date override, else venue defaults, else unconstrained)
// is intersected with the court window (date override, else court default,
// else the full day); bookings from both levels are unioned.
func ResolveCourtAvailability(court tournament.Court, venue tournament.Venue, date string) ([]Window, error) {
	if _, err := tournament.ParseDate(date); err != nil {
		return nil, err
	}
	date = tournament.ExtractDate(date)
	if err := validateVenueWindow(venue); err != nil {
		return nil, err
	}
	if err := ValidateCourt(court); err != nil {
		return nil, err
	}

	venueSpan, venueBookings := venueWindow(venue, date)
	courtSpan, courtBookings := courtWindow(court, date)

	win := intersect(venueSpan, courtSpan)
	if win.empty() {
		return nil, nil
	}

	bookings := mergeBookings(append(append([]tournament.Booking{}, venueBookings...), courtBookings...), win)
	return []Window{{
		StartTime: tournament.FormatMinutes(win.start),
		EndTime:   tournament.FormatMinutes(win.end),
		Bookings:  bookings,
	}}, nil
}

// VenueAvailability resolves every court of venue on date, in listing order.
// Courts with no availability are omitted.
func VenueAvailability(venue tournament.Venue, date string) ([]CourtWindow, error) {
	var out []CourtWindow
	for _, c := range venue.Courts {
		windows, err := ResolveCourtAvailability(c, venue, date)
		if err != nil {
			return nil, fmt.Errorf("court %s: %w", c.CourtID, err)
		}
		for _, w := range windows {
			out = append(out, CourtWindow{CourtID: c.CourtID, VenueID: venue.VenueID, Window: w})
		}
	}
	return out, nil
}

func venueWindow(venue tournament.Venue, date string) (span, []tournament.Booking) {
	if e, ok := tournament.DateEntry(venue.DateAvailability, date); ok {
		return entrySpan(e), e.Bookings
	}
	if venue.DefaultStartTime != "" && venue.DefaultEndTime != "" {
		start, _ := tournament.ParseTime(venue.DefaultStartTime)
		end, _ := tournament.ParseTime(venue.DefaultEndTime)
		var bookings []tournament.Booking
		if e, ok := tournament.DefaultEntry(venue.DateAvailability); ok {
			bookings = e.Bookings
		}
		return span{start, end}, bookings
	}
	if e, ok := tournament.DefaultEntry(venue.DateAvailability); ok {
		return entrySpan(e), e.Bookings
	}
	return span{dayStart, dayEnd}, nil
}

func courtWindow(court tournament.Court, date string) (span, []tournament.Booking) {
	if e, ok := tournament.EntryFor(court.DateAvailability, date); ok {
		return entrySpan(e), e.Bookings
	}
	return span{dayStart, dayEnd}, nil
}

func entrySpan(e tournament.DateAvailability) span {
	start, _ := tournament.ParseTime(e.StartTime)
	end, _ := tournament.ParseTime(e.EndTime)
	return span{start, end}
}

// mergeBookings clips bookings to win and coalesces overlaps. A merged
// booking keeps its type only when every part shares it.
func mergeBookings(bookings []tournament.Booking, win span) []tournament.Booking {
	type part struct {
		span
		booking tournament.Booking
	}
	var parts []part
	for _, b := range bookings {
		start, err1 := tournament.ParseTime(b.StartTime)
		end, err2 := tournament.ParseTime(b.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		s := intersect(span{start, end}, win)
		if s.empty() {
			continue
		}
		parts = append(parts, part{span: s, booking: b})
	}
	if len(parts) == 0 {
		return nil
	}
	sort.SliceStable(parts, func(i, j int) bool { return parts[i].start < parts[j].start })

	var merged []tournament.Booking
	cur := parts[0]
	for _, p := range parts[1:] {
		if p.start < cur.end {
			cur.end = max(cur.end, p.end)
			if cur.booking.BookingType != p.booking.BookingType {
				cur.booking.BookingType = ""
			}
			if cur.booking.BookingID == "" {
				cur.booking.BookingID = p.booking.BookingID
			}
			continue
		}
		merged = append(merged, finish(cur.booking, cur.span))
		cur = p
	}
	return append(merged, finish(cur.booking, cur.span))
}

func finish(b tournament.Booking, s span) tournament.Booking {
	b.StartTime = tournament.FormatMinutes(s.start)
	b.EndTime = tournament.FormatMinutes(s.end)
	return b
}
