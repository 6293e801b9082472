// Package conflicts analyzes a court grid (row = courtOrder, column = court)
// for double booking, participant overlap and dependency ordering problems.
// Findings are advisory; nothing here blocks a write.
package conflicts

import (
	"cmp"
	"slices"

	"github.com/rs/zerolog"

	"github.com/derekprior/courtplan/internal/dependency"
	"github.com/derekprior/courtplan/internal/participants"
	"github.com/derekprior/courtplan/internal/tournament"
)

// Severity is the issue code shown to operators.
type Severity string

const (
	DoubleBooking   Severity = "SCHEDULE_CONFLICT_DOUBLE_BOOKING"
	Conflict        Severity = "SCHEDULE_CONFLICT"
	ScheduleError   Severity = "SCHEDULE_ERROR"
	ScheduleWarning Severity = "SCHEDULE_WARNING"
)

type IssueType string

const (
	TypeDoubleBooking         IssueType = "CONFLICT_DOUBLE_BOOKING"
	TypeParticipants          IssueType = "CONFLICT_PARTICIPANTS"
	TypePotentialParticipants IssueType = "CONFLICT_POTENTIAL_PARTICIPANTS"
	TypeOrder                 IssueType = "CONFLICT_ORDER"
	TypeAdjacent              IssueType = "CONFLICT_ADJACENT_ROUND"
	TypeSourceDistance        IssueType = "CONFLICT_SOURCE_DISTANCE"
	TypePositionLink          IssueType = "CONFLICT_POSITION_LINK"
)

// Issue is one finding against a placed matchUp. IssueIDs lists the other
// matchUps involved.
type Issue struct {
	MatchUpID string
	CourtID   string
	Row       int
	Issue     Severity
	IssueType IssueType
	IssueIDs  []string
}

type Options struct {
	// UseDeepDependencies adds the transitive passes.
	UseDeepDependencies bool
	Links               []tournament.StructureLink
	Participants        participants.Resolver
	// ScheduledDate limits the grid to one date. Rows are only ever compared
	// within a date, but RowIssues mixes dates when this is empty.
	ScheduledDate string
	Logger        zerolog.Logger
}

// Result holds every issue twice: under its court and under its row.
type Result struct {
	Success     bool
	CourtIssues map[string][]Issue
	RowIssues   map[int][]Issue
}

// Issues returns every issue by row, in pass order within a row.
func (r *Result) Issues() []Issue {
	rows := make([]int, 0, len(r.RowIssues))
	for row := range r.RowIssues {
		rows = append(rows, row)
	}
	slices.Sort(rows)
	var out []Issue
	for _, row := range rows {
		out = append(out, r.RowIssues[row]...)
	}
	return out
}

// Count returns the number of issues with severity s.
func (r *Result) Count(s Severity) int {
	n := 0
	for _, issues := range r.RowIssues {
		for _, i := range issues {
			if i.Issue == s {
				n++
			}
		}
	}
	return n
}

// Blocking reports double bookings or ordering errors.
func (r *Result) Blocking() bool {
	return r.Count(DoubleBooking) > 0 || r.Count(ScheduleError) > 0
}

type placed struct {
	id    string
	date  string
	court string
	row   int
}

type cell struct {
	date  string
	court string
	row   int
}

type rowKey struct {
	date string
	row  int
}

type analyzer struct {
	matchUps []tournament.MatchUp
	idx      map[string]int
	deps     *dependency.Map
	grid     []placed
	at       map[string]placed
	people   map[string][]string
	flagged  map[string]bool
	result   *Result
}

type pass struct {
	name string
	run  func(a *analyzer)
}

// ProConflicts runs the detection passes over every matchUp with a grid
// position. A matchUp is flagged at most once; the first pass to find it
// wins. UseDeepDependencies false gives exactly the result of the base passes.
func ProConflicts(matchUps []tournament.MatchUp, opts Options) (*Result, error) {
	date := ""
	if opts.ScheduledDate != "" {
		if _, err := tournament.ParseDate(opts.ScheduledDate); err != nil {
			return nil, err
		}
		date = tournament.ExtractDate(opts.ScheduledDate)
	}
	idx, err := tournament.IndexMatchUps(matchUps)
	if err != nil {
		return nil, err
	}

	a := &analyzer{
		matchUps: matchUps,
		idx:      idx,
		deps:     dependency.Compute(matchUps, dependency.Options{Deep: opts.UseDeepDependencies, Links: opts.Links}),
		at:       make(map[string]placed),
		people:   make(map[string][]string, len(matchUps)),
		flagged:  make(map[string]bool),
		result: &Result{
			Success:     true,
			CourtIssues: make(map[string][]Issue),
			RowIssues:   make(map[int][]Issue),
		},
	}
	for i := range matchUps {
		m := &matchUps[i]
		ids, err := participants.Individuals(opts.Participants, m)
		if err != nil {
			return nil, err
		}
		a.people[m.MatchUpID] = ids

		s := m.Schedule
		if !s.HasGridPosition() || (date != "" && s.ScheduledDate != date) {
			continue
		}
		p := placed{id: m.MatchUpID, date: s.ScheduledDate, court: s.CourtID, row: s.CourtOrder}
		a.grid = append(a.grid, p)
		a.at[p.id] = p
	}

	passes := []pass{
		{"double booking", (*analyzer).doubleBookings},
		{"participants", (*analyzer).participantOverlap},
		{"ordering", (*analyzer).ordering},
		{"adjacent rounds", (*analyzer).adjacentRounds},
	}
	if opts.UseDeepDependencies {
		passes = append(passes,
			pass{"potential participants", (*analyzer).potentialParticipants},
			pass{"source distance", (*analyzer).sourceDistance},
			pass{"dependents", (*analyzer).dependentsBefore},
			pass{"position links", (*analyzer).positionLinks},
		)
	}
	for _, p := range passes {
		before := len(a.flagged)
		p.run(a)
		opts.Logger.Debug().Str("pass", p.name).Int("issues", len(a.flagged)-before).Msg("conflict pass")
	}
	return a.result, nil
}

func (a *analyzer) flag(p placed, s Severity, t IssueType, ids []string) {
	if a.flagged[p.id] {
		return
	}
	a.flagged[p.id] = true
	issue := Issue{MatchUpID: p.id, CourtID: p.court, Row: p.row, Issue: s, IssueType: t, IssueIDs: ids}
	a.result.RowIssues[p.row] = append(a.result.RowIssues[p.row], issue)
	a.result.CourtIssues[p.court] = append(a.result.CourtIssues[p.court], issue)
}

func (a *analyzer) matchUp(id string) *tournament.MatchUp {
	return &a.matchUps[a.idx[id]]
}

// sameDay returns the grid placement of id when it is on p's date.
func (a *analyzer) sameDay(id string, p placed) (placed, bool) {
	q, ok := a.at[id]
	if !ok || q.date != p.date {
		return placed{}, false
	}
	return q, true
}

func (a *analyzer) doubleBookings() {
	cells := make(map[cell][]string)
	for _, p := range a.grid {
		k := cell{p.date, p.court, p.row}
		cells[k] = append(cells[k], p.id)
	}
	for _, p := range a.grid {
		ids := cells[cell{p.date, p.court, p.row}]
		if len(ids) > 1 {
			a.flag(p, DoubleBooking, TypeDoubleBooking, others(ids, p.id))
		}
	}
}

func (a *analyzer) participantOverlap() {
	a.overlap(func(id string) []string { return a.people[id] }, func(string, string) bool { return true },
		Conflict, TypeParticipants)
}

// overlap flags matchUps sharing a person, as given by people, with another
// matchUp on the same row when related allows the pair.
func (a *analyzer) overlap(people func(id string) []string, related func(x, y string) bool, s Severity, t IssueType) {
	rows := make(map[rowKey]map[string][]string)
	for _, p := range a.grid {
		k := rowKey{p.date, p.row}
		if rows[k] == nil {
			rows[k] = make(map[string][]string)
		}
		for _, person := range people(p.id) {
			rows[k][person] = append(rows[k][person], p.id)
		}
	}
	for _, p := range a.grid {
		var with []string
		for _, person := range people(p.id) {
			for _, id := range rows[rowKey{p.date, p.row}][person] {
				if id != p.id && related(p.id, id) && !slices.Contains(with, id) {
					with = append(with, id)
				}
			}
		}
		if len(with) > 0 {
			a.flag(p, s, t, with)
		}
	}
}

// ordering flags a matchUp placed at or before the row of a direct source,
// or on a date before one.
func (a *analyzer) ordering() {
	for _, p := range a.grid {
		var ids []string
		for _, src := range a.deps.DirectSources(p.id) {
			s := a.matchUp(src)
			if s.IsResolved() {
				continue
			}
			if q, ok := a.sameDay(src, p); ok {
				if q.row >= p.row {
					ids = append(ids, src)
				}
				continue
			}
			if d := s.Schedule.ScheduledDate; d != "" && d > p.date {
				ids = append(ids, src)
			}
		}
		if len(ids) > 0 {
			a.flag(p, ScheduleError, TypeOrder, ids)
		}
	}
}

// adjacentRounds warns about a dependent placed on the row right after its
// source.
func (a *analyzer) adjacentRounds() {
	for _, p := range a.grid {
		var ids []string
		for _, src := range a.deps.DirectSources(p.id) {
			if a.matchUp(src).IsResolved() {
				continue
			}
			if q, ok := a.sameDay(src, p); ok && q.row == p.row-1 {
				ids = append(ids, src)
			}
		}
		if len(ids) > 0 {
			a.flag(p, ScheduleWarning, TypeAdjacent, ids)
		}
	}
}

// potentials returns the individuals who may still play id: its own
// participants and those of every unresolved upstream matchUp.
func (a *analyzer) potentials(id string) []string {
	out := slices.Clone(a.people[id])
	for _, src := range a.deps.Sources(id) {
		if a.matchUp(src).IsResolved() {
			continue
		}
		out = append(out, a.people[src]...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (a *analyzer) potentialParticipants() {
	cache := make(map[string][]string)
	people := func(id string) []string {
		if p, ok := cache[id]; ok {
			return p
		}
		cache[id] = a.potentials(id)
		return cache[id]
	}
	unrelated := func(x, y string) bool {
		return !a.deps.DependsOn(x, y) && !a.deps.DependsOn(y, x)
	}
	a.overlap(people, unrelated, ScheduleWarning, TypePotentialParticipants)
}

// sourceDistance requires a row gap of at least the hop count between a
// matchUp and each transitive source on the same day.
func (a *analyzer) sourceDistance() {
	for _, p := range a.grid {
		var ids []string
		for _, src := range a.deps.Sources(p.id) {
			d, _ := a.deps.Distance(p.id, src)
			if d < 2 || a.matchUp(src).IsResolved() {
				continue
			}
			if q, ok := a.sameDay(src, p); ok && p.row-q.row < d {
				ids = append(ids, src)
			}
		}
		if len(ids) > 0 {
			a.flag(p, ScheduleError, TypeSourceDistance, ids)
		}
	}
}

// dependentsBefore flags both sides when a dependent sits on an earlier row
// than one of its sources.
func (a *analyzer) dependentsBefore() {
	found := make(map[string][]string)
	for _, p := range a.grid {
		if a.matchUp(p.id).IsResolved() {
			continue
		}
		for _, dep := range a.deps.Dependents(p.id) {
			if q, ok := a.sameDay(dep, p); ok && q.row < p.row {
				found[p.id] = append(found[p.id], dep)
				found[dep] = append(found[dep], p.id)
			}
		}
	}
	for _, p := range a.grid {
		if ids := found[p.id]; len(ids) > 0 {
			slices.SortFunc(ids, func(x, y string) int { return cmp.Compare(a.idx[x], a.idx[y]) })
			a.flag(p, ScheduleError, TypeOrder, slices.Compact(ids))
		}
	}
}

// positionLinks warns about matchUps fed by a POSITION link whose sources are
// neither resolved, on this grid, nor played on an earlier date.
func (a *analyzer) positionLinks() {
	for _, p := range a.grid {
		var missing []string
		for _, src := range a.deps.DirectSources(p.id) {
			if k, _ := a.deps.Kind(p.id, src); k != dependency.KindPosition {
				continue
			}
			s := a.matchUp(src)
			if s.IsResolved() {
				continue
			}
			if _, ok := a.sameDay(src, p); ok {
				continue
			}
			if d := s.Schedule.ScheduledDate; d != "" && d < p.date {
				continue
			}
			missing = append(missing, src)
		}
		if len(missing) > 0 {
			a.flag(p, ScheduleWarning, TypePositionLink, missing)
		}
	}
}

func others(ids []string, self string) []string {
	var out []string
	for _, id := range ids {
		if id != self {
			out = append(out, id)
		}
	}
	return out
}
