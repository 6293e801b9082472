package schedule

import (
	"fmt"

	"github.com/derekprior/courtplan/internal/tournament"
)

type AssignRequest struct {
	MatchUpID string
	// Schedule replaces the matchUp's schedule; the zero value clears it.
	Schedule tournament.Schedule
	// DisableConflictDetection allows two matchUps on the same court slot.
	DisableConflictDetection bool
}

// AssignSchedule places a single matchUp. Unlike the bulk operations it
// rejects a double booking outright with ErrDoubleBooking.
func AssignSchedule(t *tournament.Tournament, req AssignRequest) (*tournament.ScheduleDelta, error) {
	m, err := t.MatchUp(req.MatchUpID)
	if err != nil {
		return nil, err
	}
	after, err := resolvePlacement(t, req.Schedule)
	if err != nil {
		return nil, err
	}
	if !req.DisableConflictDetection {
		if other, ok := findDoubleBooking(t.MatchUps, m.MatchUpID, after); ok {
			return nil, fmt.Errorf("%w: %s already holds court %s on %s",
				tournament.ErrDoubleBooking, other, after.CourtID, after.ScheduledDate)
		}
	}
	return &tournament.ScheduleDelta{
		MatchUpID: m.MatchUpID,
		Before:    m.Schedule.Clone(),
		After:     after.Clone(),
	}, nil
}
