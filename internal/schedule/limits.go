package schedule

import (
	"github.com/derekprior/courtplan/internal/config"
	"github.com/derekprior/courtplan/internal/tournament"
)

type personDay struct {
	date   string
	person string
}

type dayLoad struct {
	byType map[tournament.MatchUpType]int
	total  int
}

// dailyLoad counts matchUps per individual participant per date.
type dailyLoad struct {
	limits config.DailyLimits
	load   map[personDay]*dayLoad
}

func newDailyLoad(limits config.DailyLimits) *dailyLoad {
	return &dailyLoad{limits: limits, load: make(map[personDay]*dayLoad)}
}

func (d *dailyLoad) get(date, person string) *dayLoad {
	k := personDay{date, person}
	l, ok := d.load[k]
	if !ok {
		l = &dayLoad{byType: make(map[tournament.MatchUpType]int)}
		d.load[k] = l
	}
	return l
}

// exceeds reports whether one more matchUp of type t would take any of
// people over a limit on date.
func (d *dailyLoad) exceeds(date string, t tournament.MatchUpType, people []string) bool {
	if d.limits.IsZero() {
		return false
	}
	limit := d.limits.For(t)
	for _, p := range people {
		l := d.get(date, p)
		if limit > 0 && l.byType[t]+1 > limit {
			return true
		}
		if d.limits.Total > 0 && l.total+1 > d.limits.Total {
			return true
		}
	}
	return false
}

func (d *dailyLoad) add(date string, t tournament.MatchUpType, people []string) {
	for _, p := range people {
		l := d.get(date, p)
		l.byType[t]++
		l.total++
	}
}

// recovery tracks the earliest minute each participant may start again on a
// date: scheduledTime + averageMatchUpMinutes + recoveryMinutes of their
// latest matchUp.
type recovery struct {
	matchUpMinutes  int
	recoveryMinutes int
	after           map[personDay]int
}

func newRecovery(matchUpMinutes, recoveryMinutes int) *recovery {
	return &recovery{
		matchUpMinutes:  matchUpMinutes,
		recoveryMinutes: recoveryMinutes,
		after:           make(map[personDay]int),
	}
}

// timeAfterRecovery is the first minute a participant of a matchUp starting
// at start may play again.
func (r *recovery) timeAfterRecovery(start int) int {
	return start + r.matchUpMinutes + r.recoveryMinutes
}

func (r *recovery) earliest(date string, people []string) int {
	e := 0
	for _, p := range people {
		e = max(e, r.after[personDay{date, p}])
	}
	return e
}

func (r *recovery) add(date string, start int, people []string) {
	next := r.timeAfterRecovery(start)
	for _, p := range people {
		k := personDay{date, p}
		r.after[k] = max(r.after[k], next)
	}
}
