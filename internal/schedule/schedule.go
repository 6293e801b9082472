// Package schedule places matchUps on dates, times, courts and grid rows and
// applies bulk schedule mutations. Every entry point reads a tournament
// snapshot and returns the deltas to apply; the snapshot is never modified.
package schedule

import (
	"fmt"
	"slices"

	"github.com/derekprior/courtplan/internal/availability"
	"github.com/derekprior/courtplan/internal/garman"
	"github.com/derekprior/courtplan/internal/tournament"
)

// MatchUpBooking is the booking type written for court time taken by a
// scheduled matchUp.
const MatchUpBooking = "MATCHUP"

// BookingDelta is a court booking the scheduler wants recorded.
type BookingDelta struct {
	VenueID string
	CourtID string
	Date    string
	Booking tournament.Booking
}

// ApplyBookings returns a copy of venues with every booking recorded on its
// court. Deltas for unknown courts are ignored.
func ApplyBookings(venues []tournament.Venue, deltas []BookingDelta) []tournament.Venue {
	out := make([]tournament.Venue, len(venues))
	for i, v := range venues {
		v.Courts = slices.Clone(v.Courts)
		out[i] = v
	}
	for _, d := range deltas {
		for i := range out {
			if d.VenueID != "" && out[i].VenueID != d.VenueID {
				continue
			}
			for j := range out[i].Courts {
				if out[i].Courts[j].CourtID == d.CourtID {
					out[i].Courts[j] = availability.AddBooking(out[i].Courts[j], d.Date, d.Booking)
				}
			}
		}
	}
	return out
}

// diff returns a delta for every matchUp whose schedule changed, in input
// order.
func diff(before, after []tournament.MatchUp) []tournament.ScheduleDelta {
	var deltas []tournament.ScheduleDelta
	for i := range after {
		if before[i].Schedule.Equal(after[i].Schedule) {
			continue
		}
		deltas = append(deltas, tournament.ScheduleDelta{
			MatchUpID: after[i].MatchUpID,
			Before:    before[i].Schedule.Clone(),
			After:     after[i].Schedule.Clone(),
		})
	}
	return deltas
}

type gridKey struct {
	date    string
	courtID string
	order   int
}

type timeKey struct {
	date    string
	courtID string
	minutes int
}

// findDoubleBooking returns the id of another matchUp already holding the
// same court at the same court order or time on the same date.
func findDoubleBooking(matchUps []tournament.MatchUp, matchUpID string, s tournament.Schedule) (string, bool) {
	if s.CourtID == "" || s.ScheduledDate == "" {
		return "", false
	}
	minutes, hasTime := s.Minutes()
	for _, m := range matchUps {
		if m.MatchUpID == matchUpID {
			continue
		}
		o := m.Schedule
		if o.CourtID != s.CourtID || o.ScheduledDate != s.ScheduledDate {
			continue
		}
		if s.CourtOrder > 0 && o.CourtOrder == s.CourtOrder {
			return m.MatchUpID, true
		}
		if hasTime {
			if om, ok := o.Minutes(); ok && om == minutes {
				return m.MatchUpID, true
			}
		}
	}
	return "", false
}

// resolvePlacement checks the references of s and fills VenueID from the
// court when it is missing.
func resolvePlacement(t *tournament.Tournament, s tournament.Schedule) (tournament.Schedule, error) {
	if err := s.Validate(); err != nil {
		return s, err
	}
	if s.VenueID != "" {
		if _, err := t.Venue(s.VenueID); err != nil {
			return s, err
		}
	}
	if s.CourtID != "" {
		_, venue, err := t.Court(s.CourtID)
		if err != nil {
			return s, err
		}
		if s.VenueID != "" && s.VenueID != venue.VenueID {
			return s, fmt.Errorf("%w: court %s is not at venue %s", tournament.ErrCourtNotFound, s.CourtID, s.VenueID)
		}
		s.VenueID = venue.VenueID
	}
	return s, nil
}

// courtTracker knows, for one date, which courts are free for a matchUp of
// fixed length starting at a given minute.
type courtTracker struct {
	minutes int
	order   []string
	free    map[string][]span
	busy    map[string][]span
}

type span struct {
	start, end int
}

func newCourtTracker(windows []availability.CourtWindow, includeBookingTypes []string, minutes int) *courtTracker {
	c := &courtTracker{
		minutes: minutes,
		free:    make(map[string][]span),
		busy:    make(map[string][]span),
	}
	for _, w := range windows {
		if _, ok := c.free[w.CourtID]; !ok {
			c.order = append(c.order, w.CourtID)
		}
		for _, ts := range garman.GenerateTimeSlots(w.Window, includeBookingTypes) {
			s, e := ts.Minutes()
			c.free[w.CourtID] = append(c.free[w.CourtID], span{s, e})
		}
	}
	return c
}

func (c *courtTracker) occupy(courtID string, start int) {
	c.busy[courtID] = append(c.busy[courtID], span{start, start + c.minutes})
}

func (c *courtTracker) available(courtID string, start int) bool {
	end := start + c.minutes
	fits := false
	for _, s := range c.free[courtID] {
		if start >= s.start && end <= s.end {
			fits = true
			break
		}
	}
	if !fits {
		return false
	}
	for _, b := range c.busy[courtID] {
		if start < b.end && b.start < end {
			return false
		}
	}
	return true
}

// assign takes the first free court in listing order, or returns "" when
// every court is still busy and the matchUp waits on deck.
func (c *courtTracker) assign(start int) string {
	for _, id := range c.order {
		if c.available(id, start) {
			c.occupy(id, start)
			return id
		}
	}
	return ""
}
