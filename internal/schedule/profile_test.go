package schedule

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/derekprior/courtplan/internal/config"
	"github.com/derekprior/courtplan/internal/dependency"
	"github.com/derekprior/courtplan/internal/draws"
	"github.com/derekprior/courtplan/internal/tournament"
)

const day = "2026-05-02"

// fixture builds a tournament with one singles elimination draw at one venue
// open 08:00-20:00.
func fixture(t *testing.T, drawSize, courts int) *tournament.Tournament {
	t.Helper()
	d, err := (&draws.SingleElimination{}).Generate(draws.Spec{
		TournamentID: "T",
		DrawID:       "D",
		DrawSize:     drawSize,
		IDs:          draws.Sequential("m"),
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	venue := tournament.Venue{VenueID: "v1", DefaultStartTime: "08:00", DefaultEndTime: "20:00"}
	for i := 1; i <= courts; i++ {
		venue.Courts = append(venue.Courts, tournament.Court{CourtID: fmt.Sprintf("c%d", i)})
	}
	return &tournament.Tournament{TournamentID: "T", Venues: []tournament.Venue{venue}, MatchUps: d.MatchUps}
}

func profileFor(rounds ...int) tournament.SchedulingProfile {
	var rs []tournament.ProfileRound
	for _, r := range rounds {
		rs = append(rs, tournament.ProfileRound{DrawID: "D", RoundNumber: r})
	}
	return tournament.SchedulingProfile{{
		ScheduleDate: day,
		Venues:       []tournament.ProfileVenue{{VenueID: "v1", Rounds: rs}},
	}}
}

func applied(t *tournament.Tournament, deltas []tournament.ScheduleDelta) map[string]tournament.MatchUp {
	out := make(map[string]tournament.MatchUp)
	for _, m := range tournament.ApplyDeltas(t.MatchUps, deltas) {
		out[m.MatchUpID] = m
	}
	return out
}

func TestScheduleProfileRounds(t *testing.T) {
	tour := fixture(t, 16, 8)
	result, err := ScheduleProfileRounds(tour, profileFor(1, 2, 3, 4), ProfileOptions{
		Policies: config.Policies{RecoveryMinutes: 30},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || len(result.Dates) != 1 {
		t.Fatalf("result = %+v", result)
	}
	dr := result.Dates[0]
	after := applied(tour, result.Modified)

	t.Run("every matchUp scheduled", func(t *testing.T) {
		if len(dr.ScheduledMatchUpIDs) != 15 {
			t.Errorf("scheduled = %d, want 15 (no time %v)", len(dr.ScheduledMatchUpIDs), dr.NoTimeMatchUpIDs)
		}
		if len(result.Modified) != 15 {
			t.Errorf("modified = %d, want 15", len(result.Modified))
		}
		if len(dr.RequestedRounds) != 4 {
			t.Errorf("requested rounds = %d, want 4", len(dr.RequestedRounds))
		}
	})

	t.Run("first round opens every court at 08:00", func(t *testing.T) {
		var courts []string
		for _, m := range after {
			if m.RoundNumber != 1 {
				continue
			}
			if m.Schedule.ScheduledTime != "08:00" || m.Schedule.VenueID != "v1" || m.Schedule.ScheduledDate != day {
				t.Errorf("%s schedule = %+v", m.MatchUpID, m.Schedule)
			}
			courts = append(courts, m.Schedule.CourtID)
		}
		slices.Sort(courts)
		if len(slices.Compact(courts)) != 8 || courts[0] == "" {
			t.Errorf("courts = %v, want 8 distinct", courts)
		}
	})

	t.Run("sources finish and recover before dependents", func(t *testing.T) {
		deps := dependency.Compute(tour.MatchUps, dependency.Options{})
		for id, m := range after {
			start, _ := m.Schedule.Minutes()
			for _, src := range deps.DirectSources(id) {
				srcStart, _ := after[src].Schedule.Minutes()
				if start < srcStart+90+30 {
					t.Errorf("%s at %s starts before source %s at %s recovers",
						id, m.Schedule.ScheduledTime, src, after[src].Schedule.ScheduledTime)
				}
			}
		}
	})

	t.Run("no court holds two matchUps at once", func(t *testing.T) {
		type courtTime struct {
			court string
			time  string
		}
		seen := make(map[courtTime]string)
		for id, m := range after {
			if m.Schedule.CourtID == "" {
				continue
			}
			k := courtTime{m.Schedule.CourtID, m.Schedule.ScheduledTime}
			if other, ok := seen[k]; ok {
				t.Errorf("%s and %s share %v", id, other, k)
			}
			seen[k] = id
		}
	})

	t.Run("input is not modified", func(t *testing.T) {
		for _, m := range tour.MatchUps {
			if m.Schedule.IsScheduled() {
				t.Fatalf("%s was scheduled in place", m.MatchUpID)
			}
		}
	})
}

func TestScheduleProfileRoundsRespectsRecovery(t *testing.T) {
	tour := fixture(t, 4, 4)
	// p1 already plays a doubles matchUp at 08:00
	tour.MatchUps = append(tour.MatchUps, tournament.MatchUp{
		DrawID:      "X",
		StructureID: "X-MAIN",
		MatchUpID:   "x-1",
		RoundNumber: 1,
		MatchUpType: tournament.Doubles,
		Sides: []tournament.Side{
			{SideNumber: 1, ParticipantID: "pair-1", IndividualParticipantIDs: []string{"D-MAIN-P1", "z1"}},
			{SideNumber: 2, ParticipantID: "pair-2", IndividualParticipantIDs: []string{"z2", "z3"}},
		},
		Schedule: tournament.Schedule{ScheduledDate: day, ScheduledTime: "08:00", VenueID: "v1", CourtID: "c4"},
	})

	policies := config.Policies{RecoveryMinutes: 15}
	result, err := ScheduleProfileRounds(tour, profileFor(1, 2), ProfileOptions{Policies: policies})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	matchUps := tournament.ApplyDeltas(tour.MatchUps, result.Modified)

	issues, err := CheckChronology(matchUps, policies, nil)
	if err != nil {
		t.Fatalf("CheckChronology error: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("recovery violated: %+v", issues)
	}
	for _, m := range matchUps {
		if m.MatchUpID == "m-1" && m.Schedule.ScheduledTime < "09:45" {
			t.Errorf("m-1 at %s, want at or after 09:45", m.Schedule.ScheduledTime)
		}
	}
}

func TestScheduleProfileRoundsDefersUnreadyRounds(t *testing.T) {
	tour := fixture(t, 8, 4)
	result, err := ScheduleProfileRounds(tour, profileFor(3, 2, 1), ProfileOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dr := result.Dates[0]
	if len(dr.ScheduledMatchUpIDs) != 7 {
		t.Errorf("scheduled = %v, want all 7", dr.ScheduledMatchUpIDs)
	}
	if result.Iterations != 3 {
		t.Errorf("iterations = %d, want 3", result.Iterations)
	}
}

func TestScheduleProfileRoundsIterationCap(t *testing.T) {
	tour := fixture(t, 8, 4)
	result, err := ScheduleProfileRounds(tour, profileFor(3, 2, 1), ProfileOptions{
		Policies: config.Policies{Iterations: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dr := result.Dates[0]
	if len(dr.ScheduledMatchUpIDs) != 4 {
		t.Errorf("scheduled = %v, want only round 1", dr.ScheduledMatchUpIDs)
	}
	if len(dr.NoTimeMatchUpIDs) != 3 {
		t.Errorf("no time = %v, want rounds 2 and 3", dr.NoTimeMatchUpIDs)
	}
}

func TestScheduleProfileRoundsDailyLimits(t *testing.T) {
	tour := fixture(t, 16, 8)
	result, err := ScheduleProfileRounds(tour, profileFor(1, 2, 3, 4), ProfileOptions{
		Policies: config.Policies{DailyLimits: config.DailyLimits{Singles: 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dr := result.Dates[0]
	if len(dr.ScheduledMatchUpIDs) != 12 {
		t.Errorf("scheduled = %d, want rounds 1 and 2", len(dr.ScheduledMatchUpIDs))
	}
	if len(dr.OverLimitMatchUpIDs) != 2 {
		t.Errorf("over limit = %v, want both semifinals", dr.OverLimitMatchUpIDs)
	}
	if len(dr.NoTimeMatchUpIDs) != 1 {
		t.Errorf("no time = %v, want the final", dr.NoTimeMatchUpIDs)
	}
}

func TestScheduleProfileRoundsNoTime(t *testing.T) {
	tour := fixture(t, 4, 1)
	tour.Venues[0].DefaultEndTime = "10:00"
	result, err := ScheduleProfileRounds(tour, profileFor(1, 2), ProfileOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dr := result.Dates[0]
	if len(dr.ScheduledMatchUpIDs) != 2 || len(dr.NoTimeMatchUpIDs) != 1 {
		t.Fatalf("scheduled %v, no time %v", dr.ScheduledMatchUpIDs, dr.NoTimeMatchUpIDs)
	}

	after := applied(tour, result.Modified)
	onDeck := 0
	for _, id := range dr.ScheduledMatchUpIDs {
		if after[id].Schedule.CourtID == "" {
			onDeck++
		}
	}
	if onDeck != 1 {
		t.Errorf("on deck = %d, want 1 waiting for the only court", onDeck)
	}
}

func TestScheduleProfileRoundsCarriesRoundToNextDate(t *testing.T) {
	const nextDay = "2026-05-03"
	tour := fixture(t, 4, 1)
	tour.Venues[0].DefaultEndTime = "10:00"
	profile := tournament.SchedulingProfile{
		// listed out of order; dates are consumed in calendar order
		{ScheduleDate: nextDay, Venues: []tournament.ProfileVenue{{VenueID: "v1", Rounds: []tournament.ProfileRound{
			{DrawID: "D", RoundNumber: 2},
		}}}},
		profileFor(1, 2)[0],
	}

	result, err := ScheduleProfileRounds(tour, profile, ProfileOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Dates) != 2 || result.Dates[0].ScheduleDate != day || result.Dates[1].ScheduleDate != nextDay {
		t.Fatalf("dates = %+v", result.Dates)
	}

	first, second := result.Dates[0], result.Dates[1]
	if len(first.ScheduledMatchUpIDs) != 2 || !slices.Equal(first.NoTimeMatchUpIDs, []string{"m-3"}) {
		t.Errorf("%s: scheduled %v, no time %v", day, first.ScheduledMatchUpIDs, first.NoTimeMatchUpIDs)
	}
	if !slices.Equal(second.ScheduledMatchUpIDs, []string{"m-3"}) || len(second.NoTimeMatchUpIDs) != 0 {
		t.Errorf("%s: scheduled %v, no time %v", nextDay, second.ScheduledMatchUpIDs, second.NoTimeMatchUpIDs)
	}

	final := applied(tour, result.Modified)["m-3"].Schedule
	if final.ScheduledDate != nextDay || final.ScheduledTime != "08:00" || final.CourtID != "c1" {
		t.Errorf("final schedule = %+v", final)
	}
}

func TestScheduleProfileRoundsSegment(t *testing.T) {
	tour := fixture(t, 16, 8)
	profile := profileFor()
	profile[0].Venues[0].Rounds = []tournament.ProfileRound{{
		DrawID:       "D",
		RoundNumber:  1,
		RoundSegment: &tournament.RoundSegment{SegmentNumber: 2, SegmentsCount: 2},
	}}
	result, err := ScheduleProfileRounds(tour, profile, ProfileOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := applied(tour, result.Modified)
	for _, id := range result.Dates[0].ScheduledMatchUpIDs {
		if pos := after[id].RoundPosition; pos < 5 {
			t.Errorf("%s at position %d is outside the second half", id, pos)
		}
	}
	if got := len(result.Dates[0].ScheduledMatchUpIDs); got != 4 {
		t.Errorf("scheduled = %d, want 4", got)
	}
}

func TestScheduleProfileRoundsBlockCourts(t *testing.T) {
	tour := fixture(t, 4, 2)
	result, err := ScheduleProfileRounds(tour, profileFor(1), ProfileOptions{
		BlockCourts: true,
		BookingIDs:  draws.Sequential("b"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Bookings) != 2 {
		t.Fatalf("bookings = %+v, want 2", result.Bookings)
	}
	b := result.Bookings[0]
	if b.Booking.BookingID != "b-1" || b.Booking.StartTime != "08:00" || b.Booking.EndTime != "09:30" || b.Booking.BookingType != MatchUpBooking {
		t.Errorf("booking = %+v", b.Booking)
	}

	venues := ApplyBookings(tour.Venues, result.Bookings)
	entry, ok := tournament.DateEntry(venues[0].Courts[0].DateAvailability, day)
	if !ok || len(entry.Bookings) != 1 {
		t.Errorf("court c1 entry = %+v", entry)
	}
	if len(tour.Venues[0].Courts[0].DateAvailability) != 0 {
		t.Error("ApplyBookings modified the input venues")
	}
}

func TestScheduleProfileRoundsValidation(t *testing.T) {
	tests := map[string]struct {
		mutate func(p tournament.SchedulingProfile)
		want   error
	}{
		"unknown venue": {
			mutate: func(p tournament.SchedulingProfile) { p[0].Venues[0].VenueID = "nowhere" },
			want:   tournament.ErrVenueNotFound,
		},
		"unknown draw": {
			mutate: func(p tournament.SchedulingProfile) { p[0].Venues[0].Rounds[0].DrawID = "nope" },
			want:   tournament.ErrDrawNotFound,
		},
		"unknown structure": {
			mutate: func(p tournament.SchedulingProfile) { p[0].Venues[0].Rounds[0].StructureID = "nope" },
			want:   tournament.ErrStructureNotFound,
		},
		"bad date": {
			mutate: func(p tournament.SchedulingProfile) { p[0].ScheduleDate = "02/05/2026" },
			want:   tournament.ErrInvalidDate,
		},
		"bad segment": {
			mutate: func(p tournament.SchedulingProfile) {
				p[0].Venues[0].Rounds[0].RoundSegment = &tournament.RoundSegment{SegmentNumber: 1, SegmentsCount: 3}
			},
			want: tournament.ErrInvalidRoundSegment,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := profileFor(1)
			tt.mutate(p)
			_, err := ScheduleProfileRounds(fixture(t, 4, 2), p, ProfileOptions{})
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
