// Package draws builds small, fully linked draws for fixtures and starter
// files. It is not a general bracket generator.
package draws

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/derekprior/courtplan/internal/tournament"
)

// IDFunc produces unique identifiers.
type IDFunc func() string

// UUIDs is the default id source.
func UUIDs() IDFunc { return uuid.NewString }

// Sequential returns prefix-1, prefix-2, ... for deterministic fixtures.
func Sequential(prefix string) IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// Spec describes the draw to build.
type Spec struct {
	TournamentID string
	EventID      string
	DrawID       string
	DrawSize     int
	MatchUpType  tournament.MatchUpType
	// Participants fill first-round sides in order; generated when empty.
	Participants []string
	IDs          IDFunc
}

// Draw is a generated set of matchUps and the links between its structures.
type Draw struct {
	DrawID   string
	MatchUps []tournament.MatchUp
	Links    []tournament.StructureLink
}

// Find returns the matchUp at round/position of structureID.
func (d *Draw) Find(structureID string, round, position int) *tournament.MatchUp {
	for i := range d.MatchUps {
		m := &d.MatchUps[i]
		if m.StructureID == structureID && m.RoundNumber == round && m.RoundPosition == position {
			return m
		}
	}
	return nil
}

// Round returns the matchUps of a structure round in position order.
func (d *Draw) Round(structureID string, round int) []tournament.MatchUp {
	var out []tournament.MatchUp
	for _, m := range d.MatchUps {
		if m.StructureID == structureID && m.RoundNumber == round {
			out = append(out, m)
		}
	}
	return out
}

// Strategy generates a draw.
type Strategy interface {
	Generate(spec Spec) (*Draw, error)
}

// Get returns a Strategy by name.
func Get(name string) (Strategy, error) {
	switch name {
	case "single_elimination":
		return &SingleElimination{}, nil
	case "round_robin_playoff":
		return &RoundRobinPlayoff{GroupSize: 4}, nil
	case "qualifying_main":
		return &QualifyingMain{QualifyingSize: 8, Qualifiers: 2}, nil
	default:
		return nil, fmt.Errorf("unknown draw strategy: %q", name)
	}
}

func (s Spec) withDefaults(prefix string) Spec {
	if s.IDs == nil {
		s.IDs = UUIDs()
	}
	if s.DrawID == "" {
		s.DrawID = s.IDs()
	}
	if s.MatchUpType == "" {
		s.MatchUpType = tournament.Singles
	}
	for len(s.Participants) < s.DrawSize {
		s.Participants = append(s.Participants, fmt.Sprintf("%s-%s-P%d", s.DrawID, prefix, len(s.Participants)+1))
	}
	return s
}

// side builds a side for participant id; DOUBLES and TEAM sides get a
// two-person composition derived from the id.
func side(n int, participantID string, t tournament.MatchUpType) tournament.Side {
	s := tournament.Side{SideNumber: n, ParticipantID: participantID}
	if participantID != "" && t != tournament.Singles {
		s.IndividualParticipantIDs = []string{participantID + "-a", participantID + "-b"}
	}
	return s
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
