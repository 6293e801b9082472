package draws

import (
	"fmt"

	"github.com/derekprior/courtplan/internal/tournament"
)

// SingleElimination builds one knockout structure with winner edges.
type SingleElimination struct{}

func (s *SingleElimination) Generate(spec Spec) (*Draw, error) {
	if !isPowerOfTwo(spec.DrawSize) || spec.DrawSize < 2 {
		return nil, fmt.Errorf("draw size %d is not a power of 2", spec.DrawSize)
	}
	spec = spec.withDefaults("MAIN")
	structureID := spec.DrawID + "-MAIN"
	matchUps := elimination(spec, structureID, spec.Participants)
	return &Draw{DrawID: spec.DrawID, MatchUps: matchUps}, nil
}

// elimination generates rounds for len(entrants) positions. Empty entrant ids
// leave sides unfilled (to be decided by a feed).
func elimination(spec Spec, structureID string, entrants []string) []tournament.MatchUp {
	size := len(entrants)
	var rounds [][]tournament.MatchUp
	for count, round := size/2, 1; count >= 1; count, round = count/2, round+1 {
		var ms []tournament.MatchUp
		for pos := 1; pos <= count; pos++ {
			m := tournament.MatchUp{
				TournamentID:  spec.TournamentID,
				EventID:       spec.EventID,
				DrawID:        spec.DrawID,
				StructureID:   structureID,
				MatchUpID:     spec.IDs(),
				RoundNumber:   round,
				RoundPosition: pos,
				MatchUpType:   spec.MatchUpType,
				MatchUpStatus: tournament.StatusToBePlayed,
				FinishingPositionRange: tournament.FinishingPositionRange{
					Winner: []int{1, count},
					Loser:  []int{count + 1, 2 * count},
				},
			}
			if round == 1 {
				m.Sides = []tournament.Side{
					side(1, entrants[2*pos-2], spec.MatchUpType),
					side(2, entrants[2*pos-1], spec.MatchUpType),
				}
			}
			ms = append(ms, m)
		}
		rounds = append(rounds, ms)
	}

	for r := 0; r+1 < len(rounds); r++ {
		for i := range rounds[r] {
			rounds[r][i].WinnerMatchUpID = rounds[r+1][i/2].MatchUpID
		}
	}

	var out []tournament.MatchUp
	for _, ms := range rounds {
		out = append(out, ms...)
	}
	return out
}

// QualifyingMain builds a qualifying knockout whose last Qualifiers rounds'
// winners enter the main draw through a WINNER link.
type QualifyingMain struct {
	QualifyingSize int
	Qualifiers     int
}

func (q *QualifyingMain) Generate(spec Spec) (*Draw, error) {
	if !isPowerOfTwo(spec.DrawSize) || spec.DrawSize < 2 {
		return nil, fmt.Errorf("draw size %d is not a power of 2", spec.DrawSize)
	}
	if !isPowerOfTwo(q.QualifyingSize) || !isPowerOfTwo(q.Qualifiers) || q.Qualifiers >= q.QualifyingSize {
		return nil, fmt.Errorf("qualifying size %d with %d qualifiers is invalid", q.QualifyingSize, q.Qualifiers)
	}
	if q.Qualifiers > spec.DrawSize {
		return nil, fmt.Errorf("%d qualifiers do not fit a draw of %d", q.Qualifiers, spec.DrawSize)
	}
	direct := spec.DrawSize - q.Qualifiers
	spec.DrawSize = direct + q.QualifyingSize
	spec = spec.withDefaults("Q")

	qualStructure := spec.DrawID + "-QUALIFYING"
	mainStructure := spec.DrawID + "-MAIN"

	qual := elimination(spec, qualStructure, spec.Participants[direct:])
	// Only the rounds down to Qualifiers matchUps are played in qualifying.
	qualRounds := 0
	for n := q.QualifyingSize / 2; n >= q.Qualifiers; n /= 2 {
		qualRounds++
	}
	var kept []tournament.MatchUp
	for _, m := range qual {
		if m.RoundNumber > qualRounds {
			continue
		}
		if m.RoundNumber == qualRounds {
			m.WinnerMatchUpID = ""
		}
		kept = append(kept, m)
	}

	entrants := append([]string{}, spec.Participants[:direct]...)
	for i := 0; i < q.Qualifiers; i++ {
		entrants = append(entrants, "")
	}
	main := elimination(spec, mainStructure, entrants)

	link := tournament.StructureLink{
		LinkType: tournament.LinkWinner,
		Source:   tournament.LinkSource{DrawID: spec.DrawID, StructureID: qualStructure, RoundNumber: qualRounds},
		Target:   tournament.LinkTarget{DrawID: spec.DrawID, StructureID: mainStructure, RoundNumber: 1, FeedProfile: tournament.FeedRound},
	}
	return &Draw{
		DrawID:   spec.DrawID,
		MatchUps: append(kept, main...),
		Links:    []tournament.StructureLink{link},
	}, nil
}
