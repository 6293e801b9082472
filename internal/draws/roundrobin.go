package draws

import (
	"fmt"

	"github.com/derekprior/courtplan/internal/tournament"
)

// RoundRobinPlayoff splits the draw into groups of GroupSize, plays each
// group as a round robin and feeds the top two of every group into a
// knockout playoff through POSITION links.
type RoundRobinPlayoff struct {
	GroupSize int
}

func (r *RoundRobinPlayoff) Generate(spec Spec) (*Draw, error) {
	size := r.GroupSize
	if size < 4 || size%2 != 0 {
		return nil, fmt.Errorf("group size %d must be even and at least 4", size)
	}
	if spec.DrawSize%size != 0 {
		return nil, fmt.Errorf("draw size %d is not a multiple of group size %d", spec.DrawSize, size)
	}
	groups := spec.DrawSize / size
	if !isPowerOfTwo(groups * 2) {
		return nil, fmt.Errorf("%d groups do not produce a power-of-2 playoff", groups)
	}
	spec = spec.withDefaults("RR")

	draw := &Draw{DrawID: spec.DrawID}
	playoffID := spec.DrawID + "-PLAYOFF"
	for g := 0; g < groups; g++ {
		structureID := fmt.Sprintf("%s-G%d", spec.DrawID, g+1)
		members := spec.Participants[g*size : (g+1)*size]
		draw.MatchUps = append(draw.MatchUps, roundRobin(spec, structureID, members)...)
		draw.Links = append(draw.Links, tournament.StructureLink{
			LinkType: tournament.LinkPosition,
			Source:   tournament.LinkSource{DrawID: spec.DrawID, StructureID: structureID, FinishingPositions: []int{1, 2}},
			Target:   tournament.LinkTarget{DrawID: spec.DrawID, StructureID: playoffID, RoundNumber: 1, FeedProfile: tournament.FeedRound},
		})
	}

	draw.MatchUps = append(draw.MatchUps, elimination(spec, playoffID, make([]string, groups*2))...)
	return draw, nil
}

// roundRobin schedules every pairing once using the circle method: len-1
// rounds of len/2 matchUps.
func roundRobin(spec Spec, structureID string, members []string) []tournament.MatchUp {
	n := len(members)
	ring := make([]string, n)
	copy(ring, members)

	var out []tournament.MatchUp
	for round := 1; round < n; round++ {
		for i := 0; i < n/2; i++ {
			a, b := ring[i], ring[n-1-i]
			out = append(out, tournament.MatchUp{
				TournamentID:  spec.TournamentID,
				EventID:       spec.EventID,
				DrawID:        spec.DrawID,
				StructureID:   structureID,
				MatchUpID:     spec.IDs(),
				RoundNumber:   round,
				RoundPosition: i + 1,
				MatchUpType:   spec.MatchUpType,
				MatchUpStatus: tournament.StatusToBePlayed,
				Sides: []tournament.Side{
					side(1, a, spec.MatchUpType),
					side(2, b, spec.MatchUpType),
				},
			})
		}
		// rotate everything but the first member
		last := ring[n-1]
		copy(ring[2:], ring[1:n-1])
		ring[1] = last
	}
	return out
}
