package garman

import (
	"sort"

	"github.com/derekprior/courtplan/internal/tournament"
)

// Planner hands out schedule times one matchUp at a time.
type Planner struct {
	times []int
	used  []bool
	left  int
}

func NewPlanner(r *Result) *Planner {
	p := &Planner{}
	for _, t := range r.ScheduleTimes {
		m, err := tournament.ParseTime(t)
		if err != nil {
			continue
		}
		p.times = append(p.times, m)
	}
	sort.Ints(p.times)
	p.used = make([]bool, len(p.times))
	p.left = len(p.times)
	return p
}

// Next claims the first unused time at or after earliest (minutes).
func (p *Planner) Next(earliest int) (string, bool) {
	i, ok := p.peek(earliest)
	if !ok {
		return "", false
	}
	p.used[i] = true
	p.left--
	return tournament.FormatMinutes(p.times[i]), true
}

// Peek returns the time Next would claim without claiming it.
func (p *Planner) Peek(earliest int) (string, bool) {
	i, ok := p.peek(earliest)
	if !ok {
		return "", false
	}
	return tournament.FormatMinutes(p.times[i]), true
}

func (p *Planner) peek(earliest int) (int, bool) {
	start := sort.SearchInts(p.times, earliest)
	for i := start; i < len(p.times); i++ {
		if !p.used[i] {
			return i, true
		}
	}
	return 0, false
}

// Claim marks a specific time as used, for matchUps already placed before
// planning started. It reports whether a slot at that time was free.
func (p *Planner) Claim(minutes int) bool {
	start := sort.SearchInts(p.times, minutes)
	for i := start; i < len(p.times) && p.times[i] == minutes; i++ {
		if !p.used[i] {
			p.used[i] = true
			p.left--
			return true
		}
	}
	return false
}

// Remaining returns the number of unclaimed times.
func (p *Planner) Remaining() int { return p.left }
