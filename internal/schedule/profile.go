package schedule

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/derekprior/courtplan/internal/availability"
	"github.com/derekprior/courtplan/internal/config"
	"github.com/derekprior/courtplan/internal/dependency"
	"github.com/derekprior/courtplan/internal/garman"
	"github.com/derekprior/courtplan/internal/participants"
	"github.com/derekprior/courtplan/internal/tournament"
)

type ProfileOptions struct {
	Policies config.Policies
	// ScheduleDates limits planning to these profile dates when set.
	ScheduleDates []string
	// BlockCourts records a MATCHUP booking for every court assignment.
	BlockCourts  bool
	Participants participants.Resolver
	// BookingIDs generates booking ids; uuid.NewString when nil.
	BookingIDs func() string
	Logger     zerolog.Logger
}

// DateResult itemizes the outcome of one profile date.
type DateResult struct {
	ScheduleDate        string
	RequestedRounds     []tournament.ProfileRound
	ScheduledMatchUpIDs []string
	NoTimeMatchUpIDs    []string
	OverLimitMatchUpIDs []string
}

type ProfileResult struct {
	Success  bool
	Dates    []DateResult
	Modified []tournament.ScheduleDelta
	Bookings []BookingDelta
	// Iterations is the largest number of passes any date needed.
	Iterations int
}

// ScheduleProfileRounds walks the profile in date order and gives every
// ready matchUp of each requested round the next capacity slot at its venue.
// Rounds blocked on unscheduled sources are retried in later passes, up to
// the configured iteration cap.
func ScheduleProfileRounds(t *tournament.Tournament, profile tournament.SchedulingProfile, opts ProfileOptions) (*ProfileResult, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if _, err := tournament.IndexMatchUps(t.MatchUps); err != nil {
		return nil, err
	}
	for _, d := range opts.ScheduleDates {
		if _, err := tournament.ParseDate(d); err != nil {
			return nil, err
		}
	}

	dates := slices.Clone(profile)
	slices.SortStableFunc(dates, func(a, b tournament.ProfileDate) int {
		return cmp.Compare(tournament.ExtractDate(a.ScheduleDate), tournament.ExtractDate(b.ScheduleDate))
	})
	if len(opts.ScheduleDates) > 0 {
		dates = slices.DeleteFunc(dates, func(d tournament.ProfileDate) bool {
			return !slices.Contains(opts.ScheduleDates, tournament.ExtractDate(d.ScheduleDate))
		})
	}
	for _, d := range dates {
		for _, v := range d.Venues {
			if _, err := t.Venue(v.VenueID); err != nil {
				return nil, err
			}
			for _, r := range v.Rounds {
				if !t.HasDraw(r.DrawID) {
					return nil, fmt.Errorf("%w: %s", tournament.ErrDrawNotFound, r.DrawID)
				}
				if r.StructureID != "" && !t.HasStructure(r.DrawID, r.StructureID) {
					return nil, fmt.Errorf("%w: %s in draw %s", tournament.ErrStructureNotFound, r.StructureID, r.DrawID)
				}
			}
		}
	}

	s, err := newProfileScheduler(t, opts)
	if err != nil {
		return nil, err
	}
	result := &ProfileResult{Success: true}
	for _, d := range dates {
		dr, passes, err := s.scheduleDate(d)
		if err != nil {
			return nil, err
		}
		result.Dates = append(result.Dates, dr)
		result.Iterations = max(result.Iterations, passes)
	}
	result.Modified = diff(t.MatchUps, s.matchUps)
	result.Bookings = s.bookings
	return result, nil
}

// rejectionReason categorizes why a matchUp was not placed in a pass.
type rejectionReason int

const (
	placed rejectionReason = iota
	rejectNotReady
	rejectOverLimit
	rejectNoTime
)

type profileScheduler struct {
	t        *tournament.Tournament
	opts     ProfileOptions
	policies config.Policies
	log      zerolog.Logger

	matchUps []tournament.MatchUp
	idx      map[string]int
	deps     *dependency.Map
	people   map[string][]string // matchUp -> own individual participants

	load     *dailyLoad
	recovery *recovery
	claimed  map[string]bool
	bookings []BookingDelta
}

func newProfileScheduler(t *tournament.Tournament, opts ProfileOptions) (*profileScheduler, error) {
	s := &profileScheduler{
		t:        t,
		opts:     opts,
		policies: opts.Policies.WithDefaults(),
		log:      opts.Logger,
		matchUps: tournament.CloneMatchUps(t.MatchUps),
		people:   make(map[string][]string),
		claimed:  make(map[string]bool),
	}
	if s.opts.BookingIDs == nil {
		s.opts.BookingIDs = uuid.NewString
	}
	idx, err := tournament.IndexMatchUps(s.matchUps)
	if err != nil {
		return nil, err
	}
	s.idx = idx
	s.deps = dependency.Compute(s.matchUps, dependency.Options{Deep: true, Links: t.Links})
	for i := range s.matchUps {
		ids, err := participants.Individuals(opts.Participants, &s.matchUps[i])
		if err != nil {
			return nil, err
		}
		s.people[s.matchUps[i].MatchUpID] = ids
	}
	s.load = newDailyLoad(s.policies.DailyLimits)
	s.recovery = newRecovery(s.policies.AverageMatchUpMinutes, s.policies.RecoveryMinutes)

	for i := range s.matchUps {
		m := &s.matchUps[i]
		start, ok := m.Schedule.Minutes()
		if m.Schedule.ScheduledDate == "" || !ok {
			continue
		}
		people := s.potentials(m.MatchUpID)
		s.load.add(m.Schedule.ScheduledDate, m.Type(), people)
		s.recovery.add(m.Schedule.ScheduledDate, start, people)
	}
	return s, nil
}

// potentials returns the individuals who may take part in a matchUp: its own
// sides plus everyone in unresolved upstream matchUps.
func (s *profileScheduler) potentials(id string) []string {
	ids := slices.Clone(s.people[id])
	for _, src := range s.deps.Sources(id) {
		if s.matchUps[s.idx[src]].IsResolved() {
			continue
		}
		ids = append(ids, s.people[src]...)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

type venuePlan struct {
	venueID string
	planner *garman.Planner
	courts  *courtTracker
	rounds  [][]string
}

func (s *profileScheduler) scheduleDate(pd tournament.ProfileDate) (DateResult, int, error) {
	date := tournament.ExtractDate(pd.ScheduleDate)
	res := DateResult{ScheduleDate: date}
	log := s.log.With().Str("date", date).Logger()
	// Rounds left over from an earlier date may be requested again.
	clear(s.claimed)

	var plans []*venuePlan
	for _, pv := range pd.Venues {
		venue, err := s.t.Venue(pv.VenueID)
		if err != nil {
			return res, 0, err
		}
		plan, err := s.planVenue(*venue, date)
		if err != nil {
			return res, 0, err
		}
		for _, r := range pv.Rounds {
			res.RequestedRounds = append(res.RequestedRounds, r)
			plan.rounds = append(plan.rounds, s.roundMatchUps(r))
		}
		plans = append(plans, plan)
	}

	pending := 0
	for _, p := range plans {
		for _, r := range p.rounds {
			pending += len(r)
		}
	}

	passes := 0
	for passes < s.policies.Iterations && pending > 0 {
		passes++
		progressed := false
		for _, plan := range plans {
			for ri, round := range plan.rounds {
				var keep []string
				for _, id := range round {
					switch s.place(id, date, plan) {
					case placed:
						res.ScheduledMatchUpIDs = append(res.ScheduledMatchUpIDs, id)
						progressed = true
						pending--
					case rejectOverLimit:
						res.OverLimitMatchUpIDs = append(res.OverLimitMatchUpIDs, id)
						pending--
					case rejectNoTime:
						res.NoTimeMatchUpIDs = append(res.NoTimeMatchUpIDs, id)
						pending--
					default:
						keep = append(keep, id)
					}
				}
				plan.rounds[ri] = keep
			}
		}
		log.Debug().Int("pass", passes).Int("scheduled", len(res.ScheduledMatchUpIDs)).Int("pending", pending).Msg("profile pass")
		if !progressed {
			break
		}
	}
	if pending > 0 && passes == s.policies.Iterations {
		log.Warn().Int("iterations", passes).Int("pending", pending).Msg("iteration cap reached")
	}

	for _, plan := range plans {
		for _, round := range plan.rounds {
			res.NoTimeMatchUpIDs = append(res.NoTimeMatchUpIDs, round...)
		}
	}
	if len(res.NoTimeMatchUpIDs) > 0 {
		log.Warn().Int("count", len(res.NoTimeMatchUpIDs)).Msg("matchUps left without time")
	}
	return res, passes, nil
}

func (s *profileScheduler) planVenue(venue tournament.Venue, date string) (*venuePlan, error) {
	windows, err := availability.VenueAvailability(venue, date)
	if err != nil {
		return nil, err
	}
	times, err := garman.GetScheduleTimes(garman.Params{
		Courts:                windows,
		PeriodLength:          s.policies.PeriodLength,
		AverageMatchUpMinutes: s.policies.AverageMatchUpMinutes,
		IncludeBookingTypes:   s.policies.IncludeBookingTypes,
	})
	if err != nil {
		return nil, err
	}
	plan := &venuePlan{
		venueID: venue.VenueID,
		planner: garman.NewPlanner(times),
		courts:  newCourtTracker(windows, s.policies.IncludeBookingTypes, s.policies.AverageMatchUpMinutes),
	}

	for i := range s.matchUps {
		sched := s.matchUps[i].Schedule
		start, ok := sched.Minutes()
		if !ok || sched.ScheduledDate != date || sched.VenueID != venue.VenueID {
			continue
		}
		plan.planner.Claim(start)
		if sched.CourtID != "" {
			plan.courts.occupy(sched.CourtID, start)
		}
	}
	s.log.Debug().Str("venue", venue.VenueID).Str("date", date).
		Int("courts", len(windows)).Int("capacity", len(times.ScheduleTimes)).Msg("venue capacity")
	return plan, nil
}

// roundMatchUps selects the unscheduled, playable matchUps a profile round
// asks for, in structure and round position order.
func (s *profileScheduler) roundMatchUps(r tournament.ProfileRound) []string {
	roundSize := make(map[string]int)
	for _, m := range s.matchUps {
		if m.DrawID == r.DrawID {
			roundSize[roundKey(m.StructureID, m.RoundNumber)]++
		}
	}

	var ids []string
	structures := make(map[string]int)
	for i := range s.matchUps {
		m := &s.matchUps[i]
		if m.DrawID != r.DrawID {
			continue
		}
		if _, ok := structures[m.StructureID]; !ok {
			structures[m.StructureID] = len(structures)
		}
		if r.StructureID != "" && m.StructureID != r.StructureID {
			continue
		}
		if r.RoundNumber > 0 && m.RoundNumber != r.RoundNumber {
			continue
		}
		if r.RoundSegment != nil && !r.RoundSegment.Contains(m.RoundPosition, roundSize[roundKey(m.StructureID, m.RoundNumber)]) {
			continue
		}
		if r.WinnerFinishingPositionRange != "" && formatRange(m.FinishingPositionRange.Winner) != r.WinnerFinishingPositionRange {
			continue
		}
		if m.IsResolved() || m.Schedule.ScheduledDate != "" || m.Schedule.ScheduledTime != "" || s.claimed[m.MatchUpID] {
			continue
		}
		s.claimed[m.MatchUpID] = true
		ids = append(ids, m.MatchUpID)
	}

	slices.SortStableFunc(ids, func(a, b string) int {
		ma, mb := &s.matchUps[s.idx[a]], &s.matchUps[s.idx[b]]
		return cmp.Or(
			cmp.Compare(structures[ma.StructureID], structures[mb.StructureID]),
			cmp.Compare(ma.RoundNumber, mb.RoundNumber),
			cmp.Compare(ma.RoundPosition, mb.RoundPosition),
		)
	})
	return ids
}

func roundKey(structureID string, round int) string {
	return structureID + "#" + strconv.Itoa(round)
}

// formatRange renders a finishing position range as "1-2", or "1" for a
// single position.
func formatRange(r []int) string {
	if len(r) == 0 {
		return ""
	}
	lo, hi := slices.Min(r), slices.Max(r)
	if lo == hi {
		return strconv.Itoa(lo)
	}
	return strings.Join([]string{strconv.Itoa(lo), strconv.Itoa(hi)}, "-")
}

// ready reports whether every direct source is resolved or already scheduled
// on date or earlier.
func (s *profileScheduler) ready(id, date string) bool {
	for _, src := range s.deps.DirectSources(id) {
		m := &s.matchUps[s.idx[src]]
		if m.IsResolved() {
			continue
		}
		d := m.Schedule.ScheduledDate
		if d == "" || d > date {
			return false
		}
	}
	return true
}

// earliest is the first minute id may start on date, honouring participant
// recovery and same-day sources finishing.
func (s *profileScheduler) earliest(id, date string, people []string) int {
	e := s.recovery.earliest(date, people)
	for _, src := range s.deps.DirectSources(id) {
		sched := s.matchUps[s.idx[src]].Schedule
		if sched.ScheduledDate != date {
			continue
		}
		if start, ok := sched.Minutes(); ok {
			e = max(e, s.recovery.timeAfterRecovery(start))
		}
	}
	return e
}

func (s *profileScheduler) place(id, date string, plan *venuePlan) rejectionReason {
	if !s.ready(id, date) {
		return rejectNotReady
	}
	m := &s.matchUps[s.idx[id]]
	people := s.potentials(id)
	if s.load.exceeds(date, m.Type(), people) {
		return rejectOverLimit
	}
	tm, ok := plan.planner.Next(s.earliest(id, date, people))
	if !ok {
		return rejectNoTime
	}
	start, _ := tournament.ParseTime(tm)
	court := plan.courts.assign(start)

	m.Schedule = tournament.Schedule{
		ScheduledDate: date,
		ScheduledTime: tm,
		VenueID:       plan.venueID,
		CourtID:       court,
	}
	s.load.add(date, m.Type(), people)
	s.recovery.add(date, start, people)

	if court != "" && s.opts.BlockCourts {
		s.bookings = append(s.bookings, BookingDelta{
			VenueID: plan.venueID,
			CourtID: court,
			Date:    date,
			Booking: tournament.Booking{
				BookingID:   s.opts.BookingIDs(),
				StartTime:   tm,
				EndTime:     tournament.FormatMinutes(min(start+s.policies.AverageMatchUpMinutes, tournament.MinutesPerDay)),
				BookingType: MatchUpBooking,
			},
		})
	}
	return placed
}
