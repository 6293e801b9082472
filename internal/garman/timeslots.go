package garman

import (
	"slices"
	"sort"

	"github.com/derekprior/courtplan/internal/availability"
	"github.com/derekprior/courtplan/internal/tournament"
)

// TimeSlot is a free sub-interval of a court day.
type TimeSlot struct {
	StartTime string
	EndTime   string
}

func (t TimeSlot) Minutes() (start, end int) {
	start, _ = tournament.ParseTime(t.StartTime)
	end, _ = tournament.ParseTime(t.EndTime)
	return start, end
}

// GenerateTimeSlots returns the parts of w not covered by bookings. Bookings
// whose type appears in includeBookingTypes do not block; untyped bookings
// always do.
func GenerateTimeSlots(w availability.Window, includeBookingTypes []string) []TimeSlot {
	start, end := w.Minutes()
	if end <= start {
		return nil
	}

	var blocks []span
	for _, b := range w.Bookings {
		if b.BookingType != "" && slices.Contains(includeBookingTypes, b.BookingType) {
			continue
		}
		bs, err1 := tournament.ParseTime(b.StartTime)
		be, err2 := tournament.ParseTime(b.EndTime)
		if err1 != nil || err2 != nil || be <= bs {
			continue
		}
		blocks = append(blocks, span{max(bs, start), min(be, end)})
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].start < blocks[j].start })

	var out []TimeSlot
	cursor := start
	for _, b := range blocks {
		if b.end <= b.start {
			continue
		}
		if b.start > cursor {
			out = append(out, TimeSlot{tournament.FormatMinutes(cursor), tournament.FormatMinutes(b.start)})
		}
		cursor = max(cursor, b.end)
	}
	if cursor < end {
		out = append(out, TimeSlot{tournament.FormatMinutes(cursor), tournament.FormatMinutes(end)})
	}
	return out
}
