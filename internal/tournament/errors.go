package tournament

import "errors"

// Input validation errors. Returned before any schedule is modified.
var (
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidTime         = errors.New("invalid time")
	ErrInvalidValues       = errors.New("invalid values")
	ErrMissingMatchUpIDs   = errors.New("missing matchUp ids")
	ErrInvalidRoundSegment = errors.New("invalid round segment")
	ErrInvalidAvailability = errors.New("invalid availability")
	ErrInvalidDelta        = errors.New("invalid reschedule delta")
)

// Referential errors.
var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrVenueNotFound      = errors.New("venue not found")
	ErrCourtNotFound      = errors.New("court not found")
	ErrMatchUpNotFound    = errors.New("matchUp not found")
	ErrDrawNotFound       = errors.New("draw not found")
	ErrStructureNotFound  = errors.New("structure not found")
)

// Placement errors.
var (
	ErrDoubleBooking    = errors.New("court is already booked at this court order")
	ErrNoAvailability   = errors.New("no court availability")
	ErrDuplicateMatchUp = errors.New("duplicate matchUp id")
)
