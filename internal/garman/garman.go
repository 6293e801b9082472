// Package garman converts court availability and an average match length
// into a grid of periods and the number of matchUps each period can start.
package garman

import (
	"fmt"
	"slices"

	"github.com/derekprior/courtplan/internal/availability"
	"github.com/derekprior/courtplan/internal/tournament"
)

const (
	DefaultPeriodLength          = 30
	DefaultAverageMatchUpMinutes = 90

	// onDeck is how many matchUps wait behind the first one on a court that
	// opens in a period.
	onDeck = 1
)

type Params struct {
	Courts []availability.CourtWindow
	// StartTime and EndTime bound the periods; derived from the courts when
	// empty (earliest open, latest possible start).
	StartTime             string
	EndTime               string
	PeriodLength          int
	AverageMatchUpMinutes int
	// IncludeBookingTypes lists booking types whose time stays available.
	IncludeBookingTypes []string
}

type Period struct {
	PeriodStart     string
	CourtsAvailable int
	NewCourts       int
	Add             int
	TotalMatchUps   int
}

type Result struct {
	TimingProfile []Period
	// ScheduleTimes holds one entry per matchUp that can start, in order.
	ScheduleTimes []string
	DayStartTime  string
	DayEndTime    string
}

// GetScheduleTimes walks periods from StartTime to EndTime inclusive. A court
// that opens in a period takes a matchUp on court plus onDeck waiting; courts
// that stayed open through the previous period turn over
// courts*periodLength/averageMatchUpMinutes matchUps, remainders carried.
func GetScheduleTimes(p Params) (*Result, error) {
	if p.PeriodLength == 0 {
		p.PeriodLength = DefaultPeriodLength
	}
	if p.AverageMatchUpMinutes == 0 {
		p.AverageMatchUpMinutes = DefaultAverageMatchUpMinutes
	}
	if p.PeriodLength < 0 || p.AverageMatchUpMinutes < 0 {
		return nil, fmt.Errorf("%w: period length %d, average minutes %d",
			tournament.ErrInvalidValues, p.PeriodLength, p.AverageMatchUpMinutes)
	}

	slots := make([][]span, len(p.Courts))
	for i, c := range p.Courts {
		for _, ts := range GenerateTimeSlots(c.Window, p.IncludeBookingTypes) {
			s, e := ts.Minutes()
			slots[i] = append(slots[i], span{s, e})
		}
	}

	start, end, err := bounds(p, slots)
	if err != nil {
		return nil, err
	}
	res := &Result{
		DayStartTime: tournament.FormatMinutes(start),
		DayEndTime:   tournament.FormatMinutes(end),
	}
	if end < start {
		return res, nil
	}

	prev, carry, total := 0, 0, 0
	for t := start; t <= end; t += p.PeriodLength {
		avail := countAvailable(slots, t, p.AverageMatchUpMinutes)
		newCourts := max(0, avail-prev)
		continuing := min(avail, prev)

		carry += continuing * p.PeriodLength
		turnover := carry / p.AverageMatchUpMinutes
		carry %= p.AverageMatchUpMinutes
		if avail == 0 {
			turnover, carry = 0, 0
		}

		add := newCourts*(1+onDeck) + turnover
		total += add
		periodStart := tournament.FormatMinutes(t)
		res.TimingProfile = append(res.TimingProfile, Period{
			PeriodStart:     periodStart,
			CourtsAvailable: avail,
			NewCourts:       newCourts,
			Add:             add,
			TotalMatchUps:   total,
		})
		for i := 0; i < add; i++ {
			res.ScheduleTimes = append(res.ScheduleTimes, periodStart)
		}
		prev = avail
	}
	return res, nil
}

func bounds(p Params, slots [][]span) (int, int, error) {
	start, end := -1, -1
	if p.StartTime != "" {
		s, err := tournament.ParseTime(p.StartTime)
		if err != nil {
			return 0, 0, err
		}
		start = s
	}
	if p.EndTime != "" {
		e, err := tournament.ParseTime(p.EndTime)
		if err != nil {
			return 0, 0, err
		}
		end = e
	}
	if start >= 0 && end >= 0 {
		return start, end, nil
	}

	earliest, latest := tournament.MinutesPerDay, 0
	for _, court := range slots {
		for _, s := range court {
			earliest = min(earliest, s.start)
			latest = max(latest, s.end)
		}
	}
	if start < 0 {
		start = earliest
	}
	if end < 0 {
		end = latest - p.AverageMatchUpMinutes
	}
	return start, end, nil
}

type span struct {
	start, end int
}

func countAvailable(slots [][]span, periodStart, minutes int) int {
	n := 0
	for _, court := range slots {
		if fits(court, periodStart, minutes) {
			n++
		}
	}
	return n
}

// fits uses half-open intervals: a matchUp ending exactly at close is valid.
func fits(court []span, periodStart, minutes int) bool {
	for _, s := range court {
		if periodStart >= s.start && periodStart+minutes <= s.end {
			return true
		}
	}
	return false
}

// CourtsAvailableAtPeriodStart returns the ids of courts that can host a
// matchUp of averageMatchUpMinutes starting at periodStart.
func CourtsAvailableAtPeriodStart(courts []availability.CourtWindow, periodStart string, averageMatchUpMinutes int, includeBookingTypes []string) ([]string, error) {
	t, err := tournament.ParseTime(periodStart)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, c := range courts {
		var spans []span
		for _, ts := range GenerateTimeSlots(c.Window, includeBookingTypes) {
			s, e := ts.Minutes()
			spans = append(spans, span{s, e})
		}
		if fits(spans, t, averageMatchUpMinutes) && !slices.Contains(ids, c.CourtID) {
			ids = append(ids, c.CourtID)
		}
	}
	return ids, nil
}
