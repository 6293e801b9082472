package main

import (
	"fmt"
	"time"

	"github.com/derekprior/courtplan/internal/config"
	"github.com/derekprior/courtplan/internal/draws"
	"github.com/derekprior/courtplan/internal/tournament"
)

const starterHeader = `# courtplan tournament file
# =========================
# tournament: venues, courts and the matchUps of every draw. MatchUps carry
#   their own schedule (scheduled_date, scheduled_time, court_id, court_order).
#   links feed one structure into another (WINNER, LOSER or POSITION).
# profile: which rounds each venue plays on each date. Used by
#   "courtplan schedule profile", which gives every matchUp a time and court.
# grid: dates laid out as row by court grids by "courtplan schedule pro".
# policies:
#   average_matchup_minutes  expected length of a matchUp (default 90)
#   period_length            time slot granularity in minutes (default 30)
#   recovery_minutes         rest before a participant plays again
#   daily_limits             most matchUps per participant per day (0 = none)
#   iterations               passes per profile date (default 10)
#   min_court_grid_rows      smallest grid "schedule pro" draws
#
# Dates are YYYY-MM-DD, times HH:MM (24-hour).

`

var (
	starterDay1 = time.Date(2026, time.June, 6, 0, 0, 0, 0, time.UTC)
	starterDay2 = starterDay1.AddDate(0, 0, 1)
)

// starterConfig builds a two-day tournament: a 16 draw singles knockout and
// an 8 player round robin whose top two per group go to a playoff.
func starterConfig() (*config.Config, error) {
	const tournamentID = "courtplan-open"

	singles, err := generate("single_elimination", draws.Spec{
		TournamentID: tournamentID,
		EventID:      "singles",
		DrawID:       "singles",
		DrawSize:     16,
		IDs:          draws.Sequential("s"),
	})
	if err != nil {
		return nil, err
	}
	groups, err := generate("round_robin_playoff", draws.Spec{
		TournamentID: tournamentID,
		EventID:      "groups",
		DrawID:       "groups",
		DrawSize:     8,
		IDs:          draws.Sequential("g"),
	})
	if err != nil {
		return nil, err
	}

	day1 := starterDay1.Format(tournament.DateLayout)
	t := tournament.Tournament{
		TournamentID: tournamentID,
		Venues: []tournament.Venue{
			{
				VenueID:          "center",
				VenueName:        "Tennis Center",
				DefaultStartTime: "08:00",
				DefaultEndTime:   "20:00",
				Courts:           courts("c", 6),
			},
			{
				VenueID:          "park",
				VenueName:        "Park Courts",
				DefaultStartTime: "09:00",
				DefaultEndTime:   "18:00",
				Courts:           courts("p", 4),
			},
		},
		MatchUps: append(singles.MatchUps, groups.MatchUps...),
		Links:    append(singles.Links, groups.Links...),
	}
	// Court p1 is resurfaced over lunch on the first day.
	t.Venues[1].Courts[0].DateAvailability = []tournament.DateAvailability{{
		Date:      day1,
		StartTime: "09:00",
		EndTime:   "18:00",
		Bookings: []tournament.Booking{{
			StartTime:   "12:00",
			EndTime:     "13:00",
			BookingType: "MAINTENANCE",
		}},
	}}

	return &config.Config{
		Tournament: t,
		Profile: tournament.SchedulingProfile{{
			ScheduleDate: day1,
			Venues: []tournament.ProfileVenue{
				{VenueID: "center", Rounds: []tournament.ProfileRound{
					{DrawID: "singles", RoundNumber: 1},
					{DrawID: "singles", RoundNumber: 2},
				}},
				{VenueID: "park", Rounds: groupRounds("groups", 2, 3)},
			},
		}},
		Grid: config.Grid{Dates: []config.Date{{Time: starterDay2}}},
		Policies: config.Policies{
			AverageMatchUpMinutes: config.DefaultAverageMatchUpMinutes,
			PeriodLength:          config.DefaultPeriodLength,
			RecoveryMinutes:       30,
			DailyLimits:           config.DailyLimits{Singles: 3},
			Iterations:            config.DefaultIterations,
		},
	}, nil
}

func generate(strategy string, spec draws.Spec) (*draws.Draw, error) {
	s, err := draws.Get(strategy)
	if err != nil {
		return nil, err
	}
	return s.Generate(spec)
}

// groupRounds lists every round robin round, group by group within a round,
// so the playoff is left for the grid.
func groupRounds(drawID string, groups, rounds int) []tournament.ProfileRound {
	var out []tournament.ProfileRound
	for r := 1; r <= rounds; r++ {
		for g := 1; g <= groups; g++ {
			out = append(out, tournament.ProfileRound{
				DrawID:      drawID,
				StructureID: fmt.Sprintf("%s-G%d", drawID, g),
				RoundNumber: r,
			})
		}
	}
	return out
}

func courts(prefix string, n int) []tournament.Court {
	out := make([]tournament.Court, n)
	for i := range out {
		id := prefix + string(rune('1'+i))
		out[i] = tournament.Court{CourtID: id, CourtName: "Court " + id}
	}
	return out
}
