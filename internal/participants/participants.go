// Package participants expands pair and team participants into the
// individuals who actually take the court.
package participants

import (
	"errors"
	"fmt"
	"slices"

	"github.com/derekprior/courtplan/internal/tournament"
)

var ErrParticipantNotFound = errors.New("participant not found")

// Resolver maps a participant id to its individual participant ids.
type Resolver interface {
	IndividualParticipantIDs(participantID string) ([]string, error)
}

// Static is a Resolver backed by a fixed map, as loaded from the tournament
// file.
type Static map[string][]string

func (s Static) IndividualParticipantIDs(participantID string) ([]string, error) {
	ids, ok := s[participantID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrParticipantNotFound, participantID)
	}
	return slices.Clone(ids), nil
}

// Individuals returns the sorted individual ids of every side of m. Sides that
// carry their own composition win; otherwise r is asked, and a participant r
// does not know stands for itself.
func Individuals(r Resolver, m *tournament.MatchUp) ([]string, error) {
	if r == nil {
		return m.IndividualIDs(), nil
	}
	var ids []string
	for _, s := range m.Sides {
		switch {
		case len(s.IndividualParticipantIDs) > 0:
			ids = append(ids, s.IndividualParticipantIDs...)
		case s.ParticipantID != "":
			resolved, err := r.IndividualParticipantIDs(s.ParticipantID)
			if errors.Is(err, ErrParticipantNotFound) || (err == nil && len(resolved) == 0) {
				ids = append(ids, s.ParticipantID)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("resolving %s on matchUp %s: %w", s.ParticipantID, m.MatchUpID, err)
			}
			ids = append(ids, resolved...)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}
