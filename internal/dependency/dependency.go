// Package dependency derives, for every matchUp, the matchUps that must be
// resolved before it can be played.
package dependency

import (
	"sort"

	"github.com/derekprior/courtplan/internal/tournament"
)

// Kind labels how a source feeds a dependent matchUp.
type Kind string

const (
	KindWinner   Kind = "WINNER"
	KindLoser    Kind = "LOSER"
	KindPosition Kind = "POSITION"
	KindRound    Kind = "ROUND"
)

type Options struct {
	// Deep expands sources transitively; SourceDistance records the hops.
	Deep  bool
	Links []tournament.StructureLink
}

// Map is an immutable dependency graph keyed by matchUp id.
type Map struct {
	order map[string]int

	direct     map[string]map[string]Kind // dependent -> source -> kind
	sources    map[string]map[string]int  // dependent -> source -> distance
	dependents map[string]map[string]int  // source -> dependent -> distance
}

// Compute builds the dependency map for matchUps. It is a pure function of
// its inputs; recompute it whenever the matchUp set changes.
func Compute(matchUps []tournament.MatchUp, opts Options) *Map {
	m := &Map{
		order:      make(map[string]int, len(matchUps)),
		direct:     make(map[string]map[string]Kind),
		sources:    make(map[string]map[string]int),
		dependents: make(map[string]map[string]int),
	}
	for i, mu := range matchUps {
		m.order[mu.MatchUpID] = i
	}

	for _, mu := range matchUps {
		if mu.WinnerMatchUpID != "" {
			m.addDirect(mu.WinnerMatchUpID, mu.MatchUpID, KindWinner)
		}
		if mu.LoserMatchUpID != "" {
			m.addDirect(mu.LoserMatchUpID, mu.MatchUpID, KindLoser)
		}
	}

	for _, link := range opts.Links {
		m.addLink(matchUps, link)
	}

	m.addRoundAdjacency(matchUps)

	for target, srcs := range m.direct {
		for src := range srcs {
			m.setDistance(target, src, 1)
		}
	}
	if opts.Deep {
		m.expand()
	}
	return m
}

func (m *Map) addDirect(target, source string, kind Kind) {
	if target == source {
		return
	}
	if _, ok := m.order[target]; !ok {
		return
	}
	if _, ok := m.order[source]; !ok {
		return
	}
	if m.direct[target] == nil {
		m.direct[target] = make(map[string]Kind)
	}
	if _, exists := m.direct[target][source]; !exists {
		m.direct[target][source] = kind
	}
}

func (m *Map) setDistance(target, source string, d int) {
	if m.sources[target] == nil {
		m.sources[target] = make(map[string]int)
	}
	if prev, ok := m.sources[target][source]; ok && prev <= d {
		return
	}
	m.sources[target][source] = d
	if m.dependents[source] == nil {
		m.dependents[source] = make(map[string]int)
	}
	m.dependents[source][target] = d
}

// expand walks every dependent's sources breadth first to the structure root.
func (m *Map) expand() {
	for target := range m.direct {
		type item struct {
			id   string
			dist int
		}
		seen := map[string]bool{target: true}
		queue := []item{{target, 0}}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for src := range m.direct[cur.id] {
				if seen[src] {
					continue
				}
				seen[src] = true
				m.setDistance(target, src, cur.dist+1)
				queue = append(queue, item{src, cur.dist + 1})
			}
		}
	}
}

// Sources returns every upstream matchUp of id, nearest first.
func (m *Map) Sources(id string) []string {
	return m.sorted(m.sources[id])
}

// DirectSources returns the immediate feeders of id.
func (m *Map) DirectSources(id string) []string {
	out := make(map[string]int, len(m.direct[id]))
	for src := range m.direct[id] {
		out[src] = 1
	}
	return m.sorted(out)
}

// Dependents returns every downstream matchUp of id, nearest first.
func (m *Map) Dependents(id string) []string {
	return m.sorted(m.dependents[id])
}

// DirectDependents returns matchUps fed directly by id.
func (m *Map) DirectDependents(id string) []string {
	out := make(map[string]int)
	for dep, d := range m.dependents[id] {
		if d == 1 {
			out[dep] = 1
		}
	}
	return m.sorted(out)
}

// Distance returns the number of hops from source up to dependent.
func (m *Map) Distance(dependent, source string) (int, bool) {
	d, ok := m.sources[dependent][source]
	return d, ok
}

// Kind returns the edge kind of a direct dependency.
func (m *Map) Kind(dependent, source string) (Kind, bool) {
	k, ok := m.direct[dependent][source]
	return k, ok
}

// DependsOn reports whether source is upstream of dependent.
func (m *Map) DependsOn(dependent, source string) bool {
	_, ok := m.sources[dependent][source]
	return ok
}

// MustPrecede reports whether a has to be played before b.
func (m *Map) MustPrecede(a, b string) bool {
	return m.DependsOn(b, a)
}

// Upstream returns the map as plain data: matchUp id to upstream ids.
func (m *Map) Upstream() map[string][]string {
	out := make(map[string][]string, len(m.order))
	for id := range m.order {
		out[id] = m.Sources(id)
	}
	return out
}

func (m *Map) sorted(set map[string]int) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		di, dj := set[ids[i]], set[ids[j]]
		if di != dj {
			return di < dj
		}
		return m.order[ids[i]] < m.order[ids[j]]
	})
	return ids
}
