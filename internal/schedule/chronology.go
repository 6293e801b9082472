package schedule

import (
	"cmp"
	"slices"

	"github.com/derekprior/courtplan/internal/config"
	"github.com/derekprior/courtplan/internal/participants"
	"github.com/derekprior/courtplan/internal/tournament"
)

// ChronologyIssue is a participant starting a matchUp before recovering from
// the previous one on the same date.
type ChronologyIssue struct {
	ParticipantID  string
	ScheduledDate  string
	PriorMatchUpID string
	MatchUpID      string
	// Earliest is the timeAfterRecovery of the prior matchUp.
	Earliest string
}

// CheckChronology reports every participant whose consecutive timed
// matchUps on a date start before the earlier one's timeAfterRecovery.
func CheckChronology(matchUps []tournament.MatchUp, policies config.Policies, r participants.Resolver) ([]ChronologyIssue, error) {
	policies = policies.WithDefaults()
	rec := newRecovery(policies.AverageMatchUpMinutes, policies.RecoveryMinutes)

	type played struct {
		matchUpID string
		start     int
	}
	schedules := make(map[personDay][]played)
	var keys []personDay
	for i := range matchUps {
		m := &matchUps[i]
		start, ok := m.Schedule.Minutes()
		if !ok || m.Schedule.ScheduledDate == "" {
			continue
		}
		people, err := participants.Individuals(r, m)
		if err != nil {
			return nil, err
		}
		for _, p := range people {
			k := personDay{m.Schedule.ScheduledDate, p}
			if _, seen := schedules[k]; !seen {
				keys = append(keys, k)
			}
			schedules[k] = append(schedules[k], played{m.MatchUpID, start})
		}
	}

	var issues []ChronologyIssue
	for _, k := range keys {
		list := schedules[k]
		slices.SortStableFunc(list, func(a, b played) int { return cmp.Compare(a.start, b.start) })
		for i := 1; i < len(list); i++ {
			earliest := rec.timeAfterRecovery(list[i-1].start)
			if list[i].start < earliest {
				issues = append(issues, ChronologyIssue{
					ParticipantID:  k.person,
					ScheduledDate:  k.date,
					PriorMatchUpID: list[i-1].matchUpID,
					MatchUpID:      list[i].matchUpID,
					Earliest:       tournament.FormatMinutes(earliest),
				})
			}
		}
	}
	return issues, nil
}
