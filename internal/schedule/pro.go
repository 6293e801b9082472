package schedule

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/derekprior/courtplan/internal/availability"
	"github.com/derekprior/courtplan/internal/dependency"
	"github.com/derekprior/courtplan/internal/participants"
	"github.com/derekprior/courtplan/internal/tournament"
)

type ProOptions struct {
	ScheduledDate string
	// VenueIDs limits the grid columns to these venues; every venue when empty.
	VenueIDs []string
	// MatchUpIDs are placed in the given order; every unscheduled playable
	// matchUp when empty.
	MatchUpIDs       []string
	MinCourtGridRows int
	Participants     participants.Resolver
	Logger           zerolog.Logger
}

type ProResult struct {
	Success                bool
	ScheduledMatchUpIDs    []string
	NotScheduledMatchUpIDs []string
	// CourtIDs are the grid columns in order.
	CourtIDs []string
	RowCount int
	Modified []tournament.ScheduleDelta
}

// ProAutoSchedule fills a row by court grid for one date. A matchUp goes on
// the lowest row after all of its same-day sources where a court is free and
// none of its participants already plays. Existing placements are kept.
func ProAutoSchedule(t *tournament.Tournament, opts ProOptions) (*ProResult, error) {
	if _, err := tournament.ParseDate(opts.ScheduledDate); err != nil {
		return nil, err
	}
	date := tournament.ExtractDate(opts.ScheduledDate)
	if opts.MinCourtGridRows < 0 {
		return nil, fmt.Errorf("%w: min court grid rows %d", tournament.ErrInvalidValues, opts.MinCourtGridRows)
	}
	idx, err := tournament.IndexMatchUps(t.MatchUps)
	if err != nil {
		return nil, err
	}
	for _, id := range opts.MatchUpIDs {
		if _, ok := idx[id]; !ok {
			return nil, fmt.Errorf("%w: %s", tournament.ErrMatchUpNotFound, id)
		}
	}

	courts, venueOf, err := gridCourts(t, opts.VenueIDs, date)
	if err != nil {
		return nil, err
	}
	if len(courts) == 0 {
		return nil, fmt.Errorf("%w: no courts available on %s", tournament.ErrNoAvailability, date)
	}

	matchUps := tournament.CloneMatchUps(t.MatchUps)
	deps := dependency.Compute(matchUps, dependency.Options{Links: t.Links})
	g := &grid{
		date:     date,
		courts:   courts,
		occupied: make(map[gridKey]string),
		rowOf:    make(map[string]int),
		players:  make(map[int]map[string]bool),
	}
	people := make(map[string][]string, len(matchUps))
	for i := range matchUps {
		m := &matchUps[i]
		ids, err := participants.Individuals(opts.Participants, m)
		if err != nil {
			return nil, err
		}
		people[m.MatchUpID] = ids
		if m.Schedule.ScheduledDate == date && m.Schedule.CourtOrder > 0 {
			if other, ok := g.occupied[gridKey{date, m.Schedule.CourtID, m.Schedule.CourtOrder}]; ok {
				opts.Logger.Warn().Str("date", date).Str("court", m.Schedule.CourtID).
					Int("row", m.Schedule.CourtOrder).Str("matchUp", m.MatchUpID).Str("other", other).
					Msg("existing placements share a grid cell")
			}
			g.take(m.MatchUpID, m.Schedule.CourtID, m.Schedule.CourtOrder, ids)
		}
	}

	candidates := opts.MatchUpIDs
	if len(candidates) == 0 {
		candidates = unscheduled(matchUps)
	}
	candidates = slices.DeleteFunc(slices.Clone(candidates), func(id string) bool {
		_, onGrid := g.rowOf[id]
		return onGrid
	})

	log := opts.Logger.With().Str("date", date).Logger()
	result := &ProResult{Success: true, CourtIDs: courts}
	pending := candidates
	for len(pending) > 0 {
		var keep []string
		for _, id := range pending {
			m := &matchUps[idx[id]]
			if m.IsBye() {
				keep = append(keep, id)
				continue
			}
			minRow, ok := g.minRow(id, deps, matchUps, idx)
			if !ok {
				keep = append(keep, id)
				continue
			}
			row, court := g.slot(minRow, people[id], len(candidates))
			if court == "" {
				keep = append(keep, id)
				continue
			}
			g.take(id, court, row, people[id])
			m.Schedule.ScheduledDate = date
			m.Schedule.CourtID = court
			m.Schedule.VenueID = venueOf[court]
			m.Schedule.CourtOrder = row
			result.ScheduledMatchUpIDs = append(result.ScheduledMatchUpIDs, id)
		}
		if len(keep) == len(pending) {
			break
		}
		pending = keep
	}
	result.NotScheduledMatchUpIDs = pending
	if len(pending) > 0 {
		log.Warn().Int("count", len(pending)).Msg("matchUps left off the grid")
	}

	result.RowCount = max(opts.MinCourtGridRows, g.rows)
	result.Modified = diff(t.MatchUps, matchUps)
	log.Debug().Int("rows", result.RowCount).Int("courts", len(courts)).
		Int("scheduled", len(result.ScheduledMatchUpIDs)).Msg("grid filled")
	return result, nil
}

// gridCourts lists the courts with availability on date, venue by venue in
// listing order.
func gridCourts(t *tournament.Tournament, venueIDs []string, date string) ([]string, map[string]string, error) {
	venues := t.Venues
	if len(venueIDs) > 0 {
		venues = nil
		for _, id := range venueIDs {
			v, err := t.Venue(id)
			if err != nil {
				return nil, nil, err
			}
			venues = append(venues, *v)
		}
	}
	var courts []string
	venueOf := make(map[string]string)
	for _, v := range venues {
		windows, err := availability.VenueAvailability(v, date)
		if err != nil {
			return nil, nil, err
		}
		for _, w := range windows {
			if _, seen := venueOf[w.CourtID]; seen {
				continue
			}
			venueOf[w.CourtID] = v.VenueID
			courts = append(courts, w.CourtID)
		}
	}
	return courts, venueOf, nil
}

// unscheduled returns every playable matchUp without a schedule, round by
// round across structures.
func unscheduled(matchUps []tournament.MatchUp) []string {
	structures := make(map[string]int)
	var out []*tournament.MatchUp
	for i := range matchUps {
		m := &matchUps[i]
		if _, ok := structures[m.StructureID]; !ok {
			structures[m.StructureID] = len(structures)
		}
		if m.IsResolved() || m.Schedule.IsScheduled() {
			continue
		}
		out = append(out, m)
	}
	slices.SortStableFunc(out, func(a, b *tournament.MatchUp) int {
		return cmp.Or(
			cmp.Compare(a.RoundNumber, b.RoundNumber),
			cmp.Compare(structures[a.StructureID], structures[b.StructureID]),
			cmp.Compare(a.RoundPosition, b.RoundPosition),
		)
	})
	ids := make([]string, len(out))
	for i, m := range out {
		ids[i] = m.MatchUpID
	}
	return ids
}

type grid struct {
	date     string
	courts   []string
	rows     int
	occupied map[gridKey]string
	rowOf    map[string]int
	players  map[int]map[string]bool
}

func (g *grid) take(id, court string, row int, people []string) {
	g.occupied[gridKey{g.date, court, row}] = id
	g.rowOf[id] = row
	g.rows = max(g.rows, row)
	if g.players[row] == nil {
		g.players[row] = make(map[string]bool)
	}
	for _, p := range people {
		g.players[row][p] = true
	}
}

// minRow returns the first row id may use, or false while a source is
// neither resolved, on an earlier date, nor on this grid.
func (g *grid) minRow(id string, deps *dependency.Map, matchUps []tournament.MatchUp, idx map[string]int) (int, bool) {
	row := 1
	for _, src := range deps.DirectSources(id) {
		m := &matchUps[idx[src]]
		if m.IsResolved() {
			continue
		}
		if r, ok := g.rowOf[src]; ok {
			row = max(row, r+1)
			continue
		}
		d := m.Schedule.ScheduledDate
		if d == "" || d >= g.date {
			return 0, false
		}
	}
	return row, true
}

// slot finds the lowest row from minRow with a free court and no participant
// already on it. Rows are searched up to limit past the current grid.
func (g *grid) slot(minRow int, people []string, limit int) (int, string) {
	for row := minRow; row <= max(g.rows, minRow)+limit; row++ {
		if g.busy(row, people) {
			continue
		}
		for _, c := range g.courts {
			if _, taken := g.occupied[gridKey{g.date, c, row}]; !taken {
				return row, c
			}
		}
	}
	return 0, ""
}

func (g *grid) busy(row int, people []string) bool {
	for _, p := range people {
		if g.players[row][p] {
			return true
		}
	}
	return false
}
