package availability

import (
	"fmt"

	"github.com/derekprior/courtplan/internal/tournament"
)

// ValidateVenue rejects half-specified defaults and inverted windows on the
// venue and on each of its courts.
func ValidateVenue(venue tournament.Venue) error {
	if err := validateVenueWindow(venue); err != nil {
		return err
	}
	for _, c := range venue.Courts {
		if err := ValidateCourt(c); err != nil {
			return err
		}
	}
	return nil
}

func validateVenueWindow(venue tournament.Venue) error {
	hasStart := venue.DefaultStartTime != ""
	hasEnd := venue.DefaultEndTime != ""
	if hasStart != hasEnd {
		return fmt.Errorf("%w: venue %s must set both default start and end times", tournament.ErrInvalidAvailability, venue.VenueID)
	}
	if hasStart {
		start, err := tournament.ParseTime(venue.DefaultStartTime)
		if err != nil {
			return err
		}
		end, err := tournament.ParseTime(venue.DefaultEndTime)
		if err != nil {
			return err
		}
		if end <= start {
			return fmt.Errorf("%w: venue %s default end %s is not after start %s",
				tournament.ErrInvalidAvailability, venue.VenueID, venue.DefaultEndTime, venue.DefaultStartTime)
		}
	}
	for _, e := range venue.DateAvailability {
		if err := validateEntry(e); err != nil {
			return fmt.Errorf("venue %s: %w", venue.VenueID, err)
		}
	}
	return nil
}

// ValidateCourt checks every dateAvailability entry of court.
func ValidateCourt(court tournament.Court) error {
	for _, e := range court.DateAvailability {
		if err := validateEntry(e); err != nil {
			return fmt.Errorf("court %s: %w", court.CourtID, err)
		}
	}
	return nil
}

func validateEntry(e tournament.DateAvailability) error {
	if e.Date != "" {
		if _, err := tournament.ParseDate(e.Date); err != nil {
			return err
		}
	}
	if (e.StartTime == "") != (e.EndTime == "") {
		return fmt.Errorf("%w: entry %q must set both start and end times", tournament.ErrInvalidAvailability, e.Date)
	}
	start, err := tournament.ParseTime(e.StartTime)
	if err != nil {
		return err
	}
	end, err := tournament.ParseTime(e.EndTime)
	if err != nil {
		return err
	}
	if end <= start {
		return fmt.Errorf("%w: entry %q end %s is not after start %s",
			tournament.ErrInvalidAvailability, e.Date, e.EndTime, e.StartTime)
	}
	for _, b := range e.Bookings {
		bs, err := tournament.ParseTime(b.StartTime)
		if err != nil {
			return err
		}
		be, err := tournament.ParseTime(b.EndTime)
		if err != nil {
			return err
		}
		if be <= bs {
			return fmt.Errorf("%w: booking %s-%s is inverted", tournament.ErrInvalidAvailability, b.StartTime, b.EndTime)
		}
	}
	return nil
}
