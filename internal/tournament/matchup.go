package tournament

import (
	"fmt"
	"slices"
)

type MatchUpType string

const (
	Singles MatchUpType = "SINGLES"
	Doubles MatchUpType = "DOUBLES"
	Team    MatchUpType = "TEAM"
)

type MatchUpStatus string

const (
	StatusToBePlayed     MatchUpStatus = "TO_BE_PLAYED"
	StatusInProgress     MatchUpStatus = "IN_PROGRESS"
	StatusCompleted      MatchUpStatus = "COMPLETED"
	StatusBye            MatchUpStatus = "BYE"
	StatusWalkover       MatchUpStatus = "WALKOVER"
	StatusDoubleWalkover MatchUpStatus = "DOUBLE_WALKOVER"
	StatusDefaulted      MatchUpStatus = "DEFAULTED"
	StatusRetired        MatchUpStatus = "RETIRED"
	StatusCancelled      MatchUpStatus = "CANCELLED"
	StatusAbandoned      MatchUpStatus = "ABANDONED"
)

// IsCompleted reports statuses for which an outcome is already known.
func (s MatchUpStatus) IsCompleted() bool {
	switch s {
	case StatusCompleted, StatusWalkover, StatusDoubleWalkover, StatusDefaulted,
		StatusRetired, StatusCancelled, StatusAbandoned, StatusBye:
		return true
	}
	return false
}

// Side is one competitor slot of a matchUp. For DOUBLES and TEAM matchUps the
// individual ids carry the composition.
type Side struct {
	SideNumber               int      `yaml:"side_number,omitempty"`
	ParticipantID            string   `yaml:"participant_id,omitempty"`
	IndividualParticipantIDs []string `yaml:"individual_participant_ids,omitempty"`
	Bye                      bool     `yaml:"bye,omitempty"`
}

type FinishingPositionRange struct {
	Winner []int `yaml:"winner,omitempty"`
	Loser  []int `yaml:"loser,omitempty"`
}

// MatchUp is a single contest. Only Schedule is written by this module.
type MatchUp struct {
	TournamentID           string                 `yaml:"tournament_id,omitempty"`
	EventID                string                 `yaml:"event_id,omitempty"`
	DrawID                 string                 `yaml:"draw_id"`
	StructureID            string                 `yaml:"structure_id"`
	MatchUpID              string                 `yaml:"matchup_id"`
	RoundNumber            int                    `yaml:"round_number"`
	RoundPosition          int                    `yaml:"round_position,omitempty"`
	MatchUpType            MatchUpType            `yaml:"matchup_type,omitempty"`
	Sides                  []Side                 `yaml:"sides,omitempty"`
	FinishingPositionRange FinishingPositionRange `yaml:"finishing_position_range,omitempty"`
	WinnerMatchUpID        string                 `yaml:"winner_matchup_id,omitempty"`
	LoserMatchUpID         string                 `yaml:"loser_matchup_id,omitempty"`
	Schedule               Schedule               `yaml:"schedule,omitempty"`
	MatchUpStatus          MatchUpStatus          `yaml:"matchup_status,omitempty"`
}

// Type defaults to SINGLES.
func (m *MatchUp) Type() MatchUpType {
	if m.MatchUpType == "" {
		return Singles
	}
	return m.MatchUpType
}

// IsBye reports a matchUp that will never be played.
func (m *MatchUp) IsBye() bool {
	if m.MatchUpStatus == StatusBye {
		return true
	}
	for _, s := range m.Sides {
		if s.Bye {
			return true
		}
	}
	return false
}

// IsResolved reports a matchUp whose outcome no longer waits on play.
func (m *MatchUp) IsResolved() bool {
	return m.MatchUpStatus.IsCompleted() || m.IsBye()
}

// ParticipantIDs returns the side-level participant ids present on the matchUp.
func (m *MatchUp) ParticipantIDs() []string {
	var ids []string
	for _, s := range m.Sides {
		if s.ParticipantID != "" {
			ids = append(ids, s.ParticipantID)
		}
	}
	return ids
}

// IndividualIDs returns the individual participants of every side; a side
// without composition contributes its own participant id.
func (m *MatchUp) IndividualIDs() []string {
	var ids []string
	for _, s := range m.Sides {
		if len(s.IndividualParticipantIDs) > 0 {
			ids = append(ids, s.IndividualParticipantIDs...)
		} else if s.ParticipantID != "" {
			ids = append(ids, s.ParticipantID)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// Label is a short display name used in grids and logs.
func (m *MatchUp) Label() string {
	if m.RoundPosition > 0 {
		return fmt.Sprintf("%s R%d-%d", m.StructureID, m.RoundNumber, m.RoundPosition)
	}
	return fmt.Sprintf("%s R%d %s", m.StructureID, m.RoundNumber, m.MatchUpID)
}

// Clone returns a deep copy.
func (m MatchUp) Clone() MatchUp {
	c := m
	c.Sides = make([]Side, len(m.Sides))
	for i, s := range m.Sides {
		s.IndividualParticipantIDs = slices.Clone(s.IndividualParticipantIDs)
		c.Sides[i] = s
	}
	c.FinishingPositionRange.Winner = slices.Clone(m.FinishingPositionRange.Winner)
	c.FinishingPositionRange.Loser = slices.Clone(m.FinishingPositionRange.Loser)
	c.Schedule = m.Schedule.Clone()
	return c
}

// CloneMatchUps deep-copies a slice of matchUps.
func CloneMatchUps(matchUps []MatchUp) []MatchUp {
	out := make([]MatchUp, len(matchUps))
	for i, m := range matchUps {
		out[i] = m.Clone()
	}
	return out
}

// IndexMatchUps maps matchUp id to slice index, rejecting duplicates.
func IndexMatchUps(matchUps []MatchUp) (map[string]int, error) {
	idx := make(map[string]int, len(matchUps))
	for i, m := range matchUps {
		if m.MatchUpID == "" {
			return nil, fmt.Errorf("%w: matchUp at index %d has no id", ErrInvalidValues, i)
		}
		if _, ok := idx[m.MatchUpID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMatchUp, m.MatchUpID)
		}
		idx[m.MatchUpID] = i
	}
	return idx, nil
}
