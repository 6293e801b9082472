package schedule

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/derekprior/courtplan/internal/tournament"
)

// Fields selects the schedule fields a bulk call writes. A nil field is left
// alone; a pointer to the zero value clears it.
type Fields struct {
	ScheduledDate *string
	ScheduledTime *string
	VenueID       *string
	CourtID       *string
	CourtOrder    *int
}

func (f Fields) validate(t *tournament.Tournament) error {
	if f.ScheduledDate != nil && *f.ScheduledDate != "" {
		if _, err := tournament.ParseDate(*f.ScheduledDate); err != nil {
			return err
		}
	}
	if f.ScheduledTime != nil && *f.ScheduledTime != "" {
		if _, err := tournament.ParseTime(*f.ScheduledTime); err != nil {
			return err
		}
	}
	if f.VenueID != nil && *f.VenueID != "" {
		if _, err := t.Venue(*f.VenueID); err != nil {
			return err
		}
	}
	if f.CourtID != nil && *f.CourtID != "" {
		if _, _, err := t.Court(*f.CourtID); err != nil {
			return err
		}
	}
	if f.CourtOrder != nil && *f.CourtOrder < 0 {
		return fmt.Errorf("%w: court order %d", tournament.ErrInvalidValues, *f.CourtOrder)
	}
	return nil
}

func (f Fields) apply(s tournament.Schedule) tournament.Schedule {
	out := s.Clone()
	if f.ScheduledDate != nil {
		out.ScheduledDate = tournament.ExtractDate(*f.ScheduledDate)
	}
	if f.ScheduledTime != nil {
		out.ScheduledTime = *f.ScheduledTime
	}
	if f.VenueID != nil {
		out.VenueID = *f.VenueID
	}
	if f.CourtID != nil {
		out.CourtID = *f.CourtID
	}
	if f.CourtOrder != nil {
		out.CourtOrder = *f.CourtOrder
	}
	return out
}

type BulkOptions struct {
	// ScheduleByeMatchUps lets matchUps with a BYE side be scheduled.
	ScheduleByeMatchUps      bool
	DisableConflictDetection bool
	Logger                   zerolog.Logger
}

// BulkResult partitions the requested matchUps. Success can be true with
// matchUps left unscheduled.
type BulkResult struct {
	Success                bool
	ScheduledMatchUpIDs    []string
	NotScheduledMatchUpIDs []string
	Modified               []tournament.ScheduleDelta
}

type bulkItem struct {
	matchUpID string
	fields    Fields
}

// BulkScheduleMatchUps writes the same fields to every listed matchUp.
// Malformed input fails the whole call before anything is placed.
func BulkScheduleMatchUps(t *tournament.Tournament, matchUpIDs []string, fields Fields, opts BulkOptions) (*BulkResult, error) {
	if len(matchUpIDs) == 0 {
		return nil, tournament.ErrMissingMatchUpIDs
	}
	items := make([]bulkItem, len(matchUpIDs))
	for i, id := range matchUpIDs {
		items[i] = bulkItem{matchUpID: id, fields: fields}
	}
	if err := validateItems(t, items); err != nil {
		return nil, err
	}
	return bulkSchedule(t, items, opts), nil
}

// MatchUpDetail is one entry of a multi-tournament bulk call.
type MatchUpDetail struct {
	TournamentID string
	MatchUpID    string
	Fields       Fields
}

type TournamentBulkResult struct {
	Success bool
	// Results is keyed by tournament id.
	Results map[string]*BulkResult
}

// BulkScheduleTournamentMatchUps groups details by tournament and schedules
// each group. Every detail is validated before any tournament is touched.
// A detail without a tournament id belongs to the only tournament given.
func BulkScheduleTournamentMatchUps(tournaments []*tournament.Tournament, details []MatchUpDetail, opts BulkOptions) (*TournamentBulkResult, error) {
	if len(details) == 0 {
		return nil, tournament.ErrMissingMatchUpIDs
	}
	byID := make(map[string]*tournament.Tournament, len(tournaments))
	for _, t := range tournaments {
		byID[t.TournamentID] = t
	}

	var order []string
	groups := make(map[string][]bulkItem)
	for _, d := range details {
		tid := d.TournamentID
		if tid == "" && len(tournaments) == 1 {
			tid = tournaments[0].TournamentID
		}
		if _, ok := byID[tid]; !ok {
			return nil, fmt.Errorf("%w: %q", tournament.ErrTournamentNotFound, d.TournamentID)
		}
		if _, ok := groups[tid]; !ok {
			order = append(order, tid)
		}
		groups[tid] = append(groups[tid], bulkItem{matchUpID: d.MatchUpID, fields: d.Fields})
	}
	for _, tid := range order {
		if err := validateItems(byID[tid], groups[tid]); err != nil {
			return nil, fmt.Errorf("tournament %s: %w", tid, err)
		}
	}

	result := &TournamentBulkResult{Success: true, Results: make(map[string]*BulkResult)}
	for _, tid := range order {
		opts.Logger.Debug().Str("tournament", tid).Int("matchUps", len(groups[tid])).Msg("bulk schedule")
		result.Results[tid] = bulkSchedule(byID[tid], groups[tid], opts)
	}
	return result, nil
}

func validateItems(t *tournament.Tournament, items []bulkItem) error {
	for _, it := range items {
		if it.matchUpID == "" {
			return fmt.Errorf("%w: empty matchUp id", tournament.ErrMissingMatchUpIDs)
		}
		if _, err := t.MatchUp(it.matchUpID); err != nil {
			return err
		}
		if err := it.fields.validate(t); err != nil {
			return err
		}
	}
	return nil
}

func bulkSchedule(t *tournament.Tournament, items []bulkItem, opts BulkOptions) *BulkResult {
	matchUps := tournament.CloneMatchUps(t.MatchUps)
	idx, _ := tournament.IndexMatchUps(matchUps)
	result := &BulkResult{Success: true}

	for _, it := range items {
		m := &matchUps[idx[it.matchUpID]]
		if m.IsBye() && !opts.ScheduleByeMatchUps {
			result.NotScheduledMatchUpIDs = append(result.NotScheduledMatchUpIDs, m.MatchUpID)
			continue
		}
		after, err := resolvePlacement(t, it.fields.apply(m.Schedule))
		if err != nil {
			opts.Logger.Debug().Err(err).Str("matchUp", m.MatchUpID).Msg("placement rejected")
			result.NotScheduledMatchUpIDs = append(result.NotScheduledMatchUpIDs, m.MatchUpID)
			continue
		}
		if !opts.DisableConflictDetection {
			if other, ok := findDoubleBooking(matchUps, m.MatchUpID, after); ok {
				opts.Logger.Debug().Str("matchUp", m.MatchUpID).Str("holder", other).Msg("double booking")
				result.NotScheduledMatchUpIDs = append(result.NotScheduledMatchUpIDs, m.MatchUpID)
				continue
			}
		}
		m.Schedule = after
		result.ScheduledMatchUpIDs = append(result.ScheduledMatchUpIDs, m.MatchUpID)
	}
	result.Modified = diff(t.MatchUps, matchUps)
	return result
}

// Shift is a relative reschedule.
type Shift struct {
	DaysChange    int
	MinutesChange int
}

type RescheduleResult struct {
	Success               bool
	RescheduledMatchUpIDs []string
	NotRescheduled        []string
	Modified              []tournament.ScheduleDelta
}

// BulkRescheduleMatchUps moves scheduled matchUps by shift. DaysChange moves
// scheduledDate; MinutesChange moves the time of day and keeps any date the
// scheduled time carries. Unscheduled matchUps and times pushed past either
// end of the day are itemized in NotRescheduled.
func BulkRescheduleMatchUps(t *tournament.Tournament, matchUpIDs []string, shift Shift, opts BulkOptions) (*RescheduleResult, error) {
	if len(matchUpIDs) == 0 {
		return nil, tournament.ErrMissingMatchUpIDs
	}
	if shift.MinutesChange <= -tournament.MinutesPerDay || shift.MinutesChange >= tournament.MinutesPerDay {
		return nil, fmt.Errorf("%w: minutes change %d exceeds a day", tournament.ErrInvalidDelta, shift.MinutesChange)
	}
	for _, id := range matchUpIDs {
		if _, err := t.MatchUp(id); err != nil {
			return nil, err
		}
	}

	matchUps := tournament.CloneMatchUps(t.MatchUps)
	idx, _ := tournament.IndexMatchUps(matchUps)
	result := &RescheduleResult{Success: true}
	for _, id := range matchUpIDs {
		m := &matchUps[idx[id]]
		after, ok := shifted(m.Schedule, shift)
		if !ok {
			result.NotRescheduled = append(result.NotRescheduled, id)
			continue
		}
		m.Schedule = after
		result.RescheduledMatchUpIDs = append(result.RescheduledMatchUpIDs, id)
	}
	result.Modified = diff(t.MatchUps, matchUps)
	opts.Logger.Debug().Int("rescheduled", len(result.RescheduledMatchUpIDs)).
		Int("notRescheduled", len(result.NotRescheduled)).Msg("bulk reschedule")
	return result, nil
}

func shifted(s tournament.Schedule, shift Shift) (tournament.Schedule, bool) {
	if s.ScheduledDate == "" && s.ScheduledTime == "" {
		return s, false
	}
	out := s.Clone()
	if shift.DaysChange != 0 {
		if s.ScheduledDate == "" {
			return s, false
		}
		d, err := tournament.AddDays(s.ScheduledDate, shift.DaysChange)
		if err != nil {
			return s, false
		}
		out.ScheduledDate = d
	}
	if shift.MinutesChange != 0 {
		start, ok := s.Minutes()
		if !ok {
			return s, false
		}
		next := start + shift.MinutesChange
		if next < 0 || next >= tournament.MinutesPerDay {
			return s, false
		}
		out.ScheduledTime = tournament.ReplaceTime(s.ScheduledTime, next)
	}
	return out, true
}

type CourtAssignment struct {
	MatchUpID string
	// CourtID "" removes the court.
	CourtID string
}

// BulkUpdateCourtAssignments changes only the court (and the venue it
// implies) of each matchUp, across draws and events.
func BulkUpdateCourtAssignments(t *tournament.Tournament, assignments []CourtAssignment, opts BulkOptions) (*BulkResult, error) {
	if len(assignments) == 0 {
		return nil, tournament.ErrMissingMatchUpIDs
	}
	items := make([]bulkItem, len(assignments))
	for i, a := range assignments {
		court := a.CourtID
		f := Fields{CourtID: &court}
		if court != "" {
			_, venue, err := t.Court(court)
			if err != nil {
				return nil, err
			}
			f.VenueID = &venue.VenueID
		}
		items[i] = bulkItem{matchUpID: a.MatchUpID, fields: f}
	}
	if err := validateItems(t, items); err != nil {
		return nil, err
	}
	opts.ScheduleByeMatchUps = true
	return bulkSchedule(t, items, opts), nil
}

type ClearOptions struct {
	// IgnoreMatchUpStatuses keeps the schedules of matchUps in these
	// statuses; completed statuses when nil.
	IgnoreMatchUpStatuses []tournament.MatchUpStatus
	// ScheduledDates limits clearing to these dates when set.
	ScheduledDates []string
	Logger         zerolog.Logger
}

type ClearResult struct {
	Success           bool
	ClearedMatchUpIDs []string
	Modified          []tournament.ScheduleDelta
}

// ClearScheduledMatchUps removes the schedule of every matchUp that passes
// the status and date filters.
func ClearScheduledMatchUps(t *tournament.Tournament, opts ClearOptions) (*ClearResult, error) {
	dates := make([]string, len(opts.ScheduledDates))
	for i, d := range opts.ScheduledDates {
		if _, err := tournament.ParseDate(d); err != nil {
			return nil, err
		}
		dates[i] = tournament.ExtractDate(d)
	}
	keep := func(m *tournament.MatchUp) bool {
		if opts.IgnoreMatchUpStatuses == nil {
			return m.MatchUpStatus.IsCompleted()
		}
		return slices.Contains(opts.IgnoreMatchUpStatuses, m.MatchUpStatus)
	}

	matchUps := tournament.CloneMatchUps(t.MatchUps)
	result := &ClearResult{Success: true}
	for i := range matchUps {
		m := &matchUps[i]
		if !m.Schedule.IsScheduled() || keep(m) {
			continue
		}
		if len(dates) > 0 && !slices.Contains(dates, m.Schedule.ScheduledDate) {
			continue
		}
		m.Schedule = tournament.Schedule{}
		result.ClearedMatchUpIDs = append(result.ClearedMatchUpIDs, m.MatchUpID)
	}
	result.Modified = diff(t.MatchUps, matchUps)
	opts.Logger.Debug().Int("cleared", len(result.ClearedMatchUpIDs)).Msg("schedules cleared")
	return result, nil
}
