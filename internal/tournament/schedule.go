package tournament

import (
	"fmt"
	"slices"
)

// Schedule is the mutable placement of a matchUp. Either every field is empty
// (unscheduled) or the populated fields are well formed.
type Schedule struct {
	ScheduledDate string   `yaml:"scheduled_date,omitempty"`
	ScheduledTime string   `yaml:"scheduled_time,omitempty"`
	CourtID       string   `yaml:"court_id,omitempty"`
	VenueID       string   `yaml:"venue_id,omitempty"`
	CourtOrder    int      `yaml:"court_order,omitempty"`
	TimeModifiers []string `yaml:"time_modifiers,omitempty"`
}

// IsScheduled reports whether any schedule field is set.
func (s Schedule) IsScheduled() bool {
	return s.ScheduledDate != "" || s.ScheduledTime != "" || s.CourtID != "" ||
		s.VenueID != "" || s.CourtOrder != 0 || len(s.TimeModifiers) > 0
}

// HasGridPosition reports a (courtId, courtOrder, date) placement.
func (s Schedule) HasGridPosition() bool {
	return s.CourtID != "" && s.CourtOrder > 0 && s.ScheduledDate != ""
}

// Validate checks the populated fields.
func (s Schedule) Validate() error {
	if s.ScheduledDate != "" {
		if _, err := ParseDate(s.ScheduledDate); err != nil {
			return err
		}
	}
	if s.ScheduledTime != "" {
		if _, err := ParseTime(s.ScheduledTime); err != nil {
			return err
		}
		if HasDatePrefix(s.ScheduledTime) {
			if _, err := ParseDate(s.ScheduledTime); err != nil {
				return err
			}
		}
	}
	if s.CourtOrder < 0 {
		return fmt.Errorf("%w: court order %d", ErrInvalidValues, s.CourtOrder)
	}
	return nil
}

// Minutes returns the scheduled time as minutes after midnight.
func (s Schedule) Minutes() (int, bool) {
	if s.ScheduledTime == "" {
		return 0, false
	}
	m, err := ParseTime(s.ScheduledTime)
	if err != nil {
		return 0, false
	}
	return m, true
}

func (s Schedule) Clone() Schedule {
	c := s
	c.TimeModifiers = slices.Clone(s.TimeModifiers)
	return c
}

// Equal compares every field.
func (s Schedule) Equal(o Schedule) bool {
	return s.ScheduledDate == o.ScheduledDate && s.ScheduledTime == o.ScheduledTime &&
		s.CourtID == o.CourtID && s.VenueID == o.VenueID && s.CourtOrder == o.CourtOrder &&
		slices.Equal(s.TimeModifiers, o.TimeModifiers)
}

// ScheduleDelta records one schedule change so callers can apply it and
// publish notifications themselves.
type ScheduleDelta struct {
	MatchUpID string   `yaml:"matchup_id"`
	Before    Schedule `yaml:"before"`
	After     Schedule `yaml:"after"`
}

// ApplyDeltas returns a copy of matchUps with each delta's After schedule
// written. Deltas for unknown ids are ignored.
func ApplyDeltas(matchUps []MatchUp, deltas []ScheduleDelta) []MatchUp {
	out := CloneMatchUps(matchUps)
	idx := make(map[string]int, len(out))
	for i, m := range out {
		idx[m.MatchUpID] = i
	}
	for _, d := range deltas {
		if i, ok := idx[d.MatchUpID]; ok {
			out[i].Schedule = d.After.Clone()
		}
	}
	return out
}
