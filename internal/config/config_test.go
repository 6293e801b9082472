package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/derekprior/courtplan/internal/tournament"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

const testConfigYAML = `
tournament:
  tournament_id: spring-open
  venues:
    - venue_id: central
      venue_name: Central Park Courts
      default_start_time: "08:00"
      default_end_time: "20:00"
      date_availability:
        - date: "2026-05-02"
          start_time: "09:00"
          end_time: "18:00"
      courts:
        - court_id: c1
          court_name: Court 1
        - court_id: c2
          court_name: Court 2
          date_availability:
            - start_time: "08:00"
              end_time: "16:00"
              bookings:
                - start_time: "12:00"
                  end_time: "13:00"
                  booking_type: PRACTICE
  matchups:
    - draw_id: D
      structure_id: D-MAIN
      matchup_id: m-1
      round_number: 1
      round_position: 1
      winner_matchup_id: m-3
      sides:
        - side_number: 1
          participant_id: p1
        - side_number: 2
          participant_id: p2
    - draw_id: D
      structure_id: D-MAIN
      matchup_id: m-2
      round_number: 1
      round_position: 2
      winner_matchup_id: m-3
    - draw_id: D
      structure_id: D-MAIN
      matchup_id: m-3
      round_number: 2
      round_position: 1
      schedule:
        scheduled_date: "2026-05-02"
        scheduled_time: "14:00"

participants:
  pair-1: [p1, p3]

profile:
  - schedule_date: "2026-05-02"
    venues:
      - venue_id: central
        rounds:
          - draw_id: D
            round_number: 1
            round_segment:
              segment_number: 1
              segments_count: 2

grid:
  dates: ["2026-05-02", "2026-05-03"]

policies:
  average_matchup_minutes: 60
  recovery_minutes: 30
  daily_limits:
    singles: 2
    total: 3
  include_booking_types: [PRACTICE]
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("venues and courts", func(t *testing.T) {
		if len(cfg.Tournament.Venues) != 1 {
			t.Fatalf("venues = %d, want 1", len(cfg.Tournament.Venues))
		}
		v := cfg.Tournament.Venues[0]
		if v.DefaultStartTime != "08:00" || v.DefaultEndTime != "20:00" {
			t.Errorf("defaults = %s-%s", v.DefaultStartTime, v.DefaultEndTime)
		}
		if len(v.Courts) != 2 {
			t.Fatalf("courts = %d, want 2", len(v.Courts))
		}
		b := v.Courts[1].DateAvailability[0].Bookings[0]
		if b.BookingType != "PRACTICE" {
			t.Errorf("booking type = %q, want PRACTICE", b.BookingType)
		}
	})

	t.Run("matchUps", func(t *testing.T) {
		if len(cfg.Tournament.MatchUps) != 3 {
			t.Fatalf("matchUps = %d, want 3", len(cfg.Tournament.MatchUps))
		}
		m := cfg.Tournament.MatchUps[2]
		if m.Schedule.ScheduledTime != "14:00" {
			t.Errorf("scheduled time = %q", m.Schedule.ScheduledTime)
		}
		if cfg.Tournament.MatchUps[0].WinnerMatchUpID != "m-3" {
			t.Errorf("winner edge = %q", cfg.Tournament.MatchUps[0].WinnerMatchUpID)
		}
	})

	t.Run("profile", func(t *testing.T) {
		if len(cfg.Profile) != 1 {
			t.Fatalf("profile dates = %d, want 1", len(cfg.Profile))
		}
		r := cfg.Profile[0].Venues[0].Rounds[0]
		if r.RoundSegment == nil || r.RoundSegment.SegmentsCount != 2 {
			t.Errorf("round segment = %+v", r.RoundSegment)
		}
	})

	t.Run("grid dates", func(t *testing.T) {
		if len(cfg.Grid.Dates) != 2 {
			t.Fatalf("grid dates = %d, want 2", len(cfg.Grid.Dates))
		}
		if cfg.Grid.Dates[1].Time != mustDate("2026-05-03") {
			t.Errorf("grid date = %v", cfg.Grid.Dates[1].Time)
		}
	})

	t.Run("policies with defaults", func(t *testing.T) {
		p := cfg.Policies.WithDefaults()
		if p.AverageMatchUpMinutes != 60 {
			t.Errorf("average = %d, want 60", p.AverageMatchUpMinutes)
		}
		if p.PeriodLength != DefaultPeriodLength {
			t.Errorf("period length = %d, want %d", p.PeriodLength, DefaultPeriodLength)
		}
		if p.Iterations != DefaultIterations {
			t.Errorf("iterations = %d, want %d", p.Iterations, DefaultIterations)
		}
		if p.DailyLimits.For(tournament.Singles) != 2 || p.DailyLimits.For(tournament.Doubles) != 0 {
			t.Errorf("daily limits = %+v", p.DailyLimits)
		}
	})

	t.Run("participant resolver", func(t *testing.T) {
		r := cfg.Resolver()
		if r == nil {
			t.Fatal("expected a resolver")
		}
		ids, err := r.IndividualParticipantIDs("pair-1")
		if err != nil || len(ids) != 2 {
			t.Errorf("pair-1 = %v, %v", ids, err)
		}
	})

	t.Run("scheduled dates", func(t *testing.T) {
		dates := cfg.ScheduledDates()
		if len(dates) != 1 || dates[0] != "2026-05-02" {
			t.Errorf("dates = %v", dates)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if !strings.Contains(string(data), `- "2026-05-02"`) && !strings.Contains(string(data), "- 2026-05-02") {
		t.Errorf("grid dates not written as plain dates:\n%s", data)
	}
	again, err := LoadFromBytes(data)
	if err != nil {
		t.Fatalf("reloading marshalled config: %v", err)
	}
	if len(again.Tournament.MatchUps) != 3 || again.Policies.RecoveryMinutes != 30 {
		t.Errorf("reloaded config lost data: %+v", again.Policies)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	const venue = `
tournament:
  venues:
    - venue_id: v
      courts:
        - court_id: c1
`
	tests := map[string]struct {
		yaml string
		want error
	}{
		"no venues": {
			yaml: "tournament:\n  venues: []\n",
		},
		"half specified venue defaults": {
			yaml: `
tournament:
  venues:
    - venue_id: v
      default_start_time: "08:00"
      courts:
        - court_id: c1
`,
			want: tournament.ErrInvalidAvailability,
		},
		"inverted court window": {
			yaml: `
tournament:
  venues:
    - venue_id: v
      courts:
        - court_id: c1
          date_availability:
            - start_time: "18:00"
              end_time: "09:00"
`,
			want: tournament.ErrInvalidAvailability,
		},
		"duplicate matchUp ids": {
			yaml: venue + `
  matchups:
    - {draw_id: D, structure_id: S, matchup_id: m, round_number: 1}
    - {draw_id: D, structure_id: S, matchup_id: m, round_number: 2}
`,
			want: tournament.ErrDuplicateMatchUp,
		},
		"malformed scheduled time": {
			yaml: venue + `
  matchups:
    - draw_id: D
      structure_id: S
      matchup_id: m
      round_number: 1
      schedule:
        scheduled_time: "8 o'clock"
`,
			want: tournament.ErrInvalidTime,
		},
		"round segment not a power of two": {
			yaml: venue + `
profile:
  - schedule_date: "2026-05-02"
    venues:
      - venue_id: v
        rounds:
          - draw_id: D
            round_segment: {segment_number: 1, segments_count: 3}
`,
			want: tournament.ErrInvalidRoundSegment,
		},
		"profile venue unknown": {
			yaml: venue + `
profile:
  - schedule_date: "2026-05-02"
    venues:
      - venue_id: elsewhere
        rounds:
          - draw_id: D
`,
			want: tournament.ErrVenueNotFound,
		},
		"negative policy": {
			yaml: venue + `
policies:
  recovery_minutes: -10
`,
			want: tournament.ErrInvalidValues,
		},
		"duplicate court across venues": {
			yaml: venue + `    - venue_id: w
      courts:
        - court_id: c1
`,
			want: tournament.ErrInvalidValues,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
