package tournament

// Booking blocks part of a court or venue day.
type Booking struct {
	BookingID   string `yaml:"booking_id,omitempty"`
	StartTime   string `yaml:"start_time"`
	EndTime     string `yaml:"end_time"`
	BookingType string `yaml:"booking_type,omitempty"`
}

// DateAvailability is a bookable window. An empty Date is the default entry
// applying to every date without its own entry.
type DateAvailability struct {
	Date      string    `yaml:"date,omitempty"`
	StartTime string    `yaml:"start_time"`
	EndTime   string    `yaml:"end_time"`
	Bookings  []Booking `yaml:"bookings,omitempty"`
}

type Court struct {
	CourtID          string             `yaml:"court_id"`
	CourtName        string             `yaml:"court_name,omitempty"`
	VenueID          string             `yaml:"venue_id,omitempty"`
	DateAvailability []DateAvailability `yaml:"date_availability,omitempty"`
}

type Venue struct {
	VenueID          string             `yaml:"venue_id"`
	VenueName        string             `yaml:"venue_name,omitempty"`
	DefaultStartTime string             `yaml:"default_start_time,omitempty"`
	DefaultEndTime   string             `yaml:"default_end_time,omitempty"`
	DateAvailability []DateAvailability `yaml:"date_availability,omitempty"`
	Courts           []Court            `yaml:"courts"`
}

// Court looks up a court by id.
func (v *Venue) Court(courtID string) (*Court, bool) {
	for i := range v.Courts {
		if v.Courts[i].CourtID == courtID {
			return &v.Courts[i], true
		}
	}
	return nil, false
}

// EntryFor returns the date-specific entry for date, falling back to the
// default entry. The bool reports whether any entry matched.
func EntryFor(entries []DateAvailability, date string) (DateAvailability, bool) {
	var def *DateAvailability
	for i := range entries {
		e := &entries[i]
		if e.Date == "" {
			if def == nil {
				def = e
			}
			continue
		}
		if ExtractDate(e.Date) == date {
			return *e, true
		}
	}
	if def != nil {
		return *def, true
	}
	return DateAvailability{}, false
}

// DateEntry returns only a date-specific entry.
func DateEntry(entries []DateAvailability, date string) (DateAvailability, bool) {
	for _, e := range entries {
		if e.Date != "" && ExtractDate(e.Date) == date {
			return e, true
		}
	}
	return DateAvailability{}, false
}

// DefaultEntry returns the entry without a date.
func DefaultEntry(entries []DateAvailability) (DateAvailability, bool) {
	for _, e := range entries {
		if e.Date == "" {
			return e, true
		}
	}
	return DateAvailability{}, false
}
