package dependency

import (
	"sort"

	"github.com/derekprior/courtplan/internal/tournament"
)

type structureKey struct {
	drawID      string
	structureID string
}

func matches(mu tournament.MatchUp, drawID, structureID string) bool {
	if mu.StructureID != structureID {
		return false
	}
	return drawID == "" || mu.DrawID == drawID
}

// addLink wires a structure link. WINNER and LOSER links make the target
// round depend on the source round (the final round when unspecified);
// POSITION links depend on every matchUp of the source structure since all of
// them settle finishing positions. DRAW feeds apply to the whole target
// structure, other feeds to the target round only.
func (m *Map) addLink(matchUps []tournament.MatchUp, link tournament.StructureLink) {
	var sources []tournament.MatchUp
	finalRound := 0
	for _, mu := range matchUps {
		if matches(mu, link.Source.DrawID, link.Source.StructureID) && mu.RoundNumber > finalRound {
			finalRound = mu.RoundNumber
		}
	}
	for _, mu := range matchUps {
		if !matches(mu, link.Source.DrawID, link.Source.StructureID) {
			continue
		}
		switch link.LinkType {
		case tournament.LinkPosition:
			if link.Source.RoundNumber > 0 && mu.RoundNumber != link.Source.RoundNumber {
				continue
			}
		default:
			round := link.Source.RoundNumber
			if round == 0 {
				round = finalRound
			}
			if mu.RoundNumber != round {
				continue
			}
		}
		sources = append(sources, mu)
	}

	kind := KindPosition
	switch link.LinkType {
	case tournament.LinkWinner:
		kind = KindWinner
	case tournament.LinkLoser:
		kind = KindLoser
	}

	wholeStructure := link.Target.FeedProfile == tournament.FeedDraw || link.Target.RoundNumber == 0
	for _, mu := range matchUps {
		if !matches(mu, link.Target.DrawID, link.Target.StructureID) {
			continue
		}
		if !wholeStructure && mu.RoundNumber != link.Target.RoundNumber {
			continue
		}
		for _, src := range sources {
			m.addDirect(mu.MatchUpID, src.MatchUpID, kind)
		}
	}
}

// addRoundAdjacency infers elimination feeds for structures that carry no
// explicit winner or loser edges: when every round is half the size of the
// previous one, round r+1 position p is fed by round r positions 2p-1 and 2p.
func (m *Map) addRoundAdjacency(matchUps []tournament.MatchUp) {
	rounds := make(map[structureKey]map[int][]tournament.MatchUp)
	explicit := make(map[structureKey]bool)
	for _, mu := range matchUps {
		k := structureKey{mu.DrawID, mu.StructureID}
		if rounds[k] == nil {
			rounds[k] = make(map[int][]tournament.MatchUp)
		}
		rounds[k][mu.RoundNumber] = append(rounds[k][mu.RoundNumber], mu)
		if mu.WinnerMatchUpID != "" || mu.LoserMatchUpID != "" {
			explicit[k] = true
		}
	}

	for k, byRound := range rounds {
		if explicit[k] || len(byRound) < 2 {
			continue
		}
		numbers := make([]int, 0, len(byRound))
		for r := range byRound {
			numbers = append(numbers, r)
		}
		sort.Ints(numbers)
		if !halving(numbers, byRound) {
			continue
		}
		for i := 1; i < len(numbers); i++ {
			prev := byRound[numbers[i-1]]
			for _, mu := range byRound[numbers[i]] {
				for _, src := range prev {
					if mu.RoundPosition > 0 && src.RoundPosition > 0 &&
						(src.RoundPosition+1)/2 != mu.RoundPosition {
						continue
					}
					m.addDirect(mu.MatchUpID, src.MatchUpID, KindRound)
				}
			}
		}
	}
}

func halving(numbers []int, byRound map[int][]tournament.MatchUp) bool {
	for i := 1; i < len(numbers); i++ {
		if numbers[i] != numbers[i-1]+1 {
			return false
		}
		if len(byRound[numbers[i-1]]) != 2*len(byRound[numbers[i]]) {
			return false
		}
	}
	return true
}
