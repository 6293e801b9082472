package availability

import (
	"slices"

	"github.com/derekprior/courtplan/internal/tournament"
)

// AddBooking returns a copy of court with booking recorded on date. When the
// court has no entry for date one is created from its default window, or
// from the full day when it has none.
func AddBooking(court tournament.Court, date string, booking tournament.Booking) tournament.Court {
	date = tournament.ExtractDate(date)
	out := court
	out.DateAvailability = make([]tournament.DateAvailability, len(court.DateAvailability))
	for i, e := range court.DateAvailability {
		e.Bookings = slices.Clone(e.Bookings)
		out.DateAvailability[i] = e
	}

	for i := range out.DateAvailability {
		e := &out.DateAvailability[i]
		if e.Date != "" && tournament.ExtractDate(e.Date) == date {
			e.Bookings = append(e.Bookings, booking)
			return out
		}
	}

	entry := tournament.DateAvailability{Date: date, StartTime: "00:00", EndTime: "24:00"}
	if def, ok := tournament.DefaultEntry(court.DateAvailability); ok {
		entry.StartTime = def.StartTime
		entry.EndTime = def.EndTime
		entry.Bookings = slices.Clone(def.Bookings)
	}
	entry.Bookings = append(entry.Bookings, booking)
	out.DateAvailability = append(out.DateAvailability, entry)
	return out
}
