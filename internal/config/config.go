package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/derekprior/courtplan/internal/availability"
	"github.com/derekprior/courtplan/internal/participants"
	"github.com/derekprior/courtplan/internal/tournament"
)

// Date is a wrapper around time.Time for YAML date parsing.
type Date struct {
	Time time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse(tournament.DateLayout, value.Value)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value.Value, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d Date) String() string {
	return d.Time.Format(tournament.DateLayout)
}

// DailyLimits caps matchUps per individual participant per day. Zero means
// no limit.
type DailyLimits struct {
	Singles int `yaml:"singles,omitempty"`
	Doubles int `yaml:"doubles,omitempty"`
	Team    int `yaml:"team,omitempty"`
	Total   int `yaml:"total,omitempty"`
}

// For returns the limit for one matchUp type.
func (d DailyLimits) For(t tournament.MatchUpType) int {
	switch t {
	case tournament.Doubles:
		return d.Doubles
	case tournament.Team:
		return d.Team
	default:
		return d.Singles
	}
}

func (d DailyLimits) IsZero() bool {
	return d == DailyLimits{}
}

type Policies struct {
	AverageMatchUpMinutes int         `yaml:"average_matchup_minutes"`
	PeriodLength          int         `yaml:"period_length"`
	RecoveryMinutes       int         `yaml:"recovery_minutes"`
	DailyLimits           DailyLimits `yaml:"daily_limits"`
	Iterations            int         `yaml:"iterations"`
	MinCourtGridRows      int         `yaml:"min_court_grid_rows"`
	IncludeBookingTypes   []string    `yaml:"include_booking_types,omitempty"`
}

const (
	DefaultAverageMatchUpMinutes = 90
	DefaultPeriodLength          = 30
	DefaultIterations            = 10
)

// WithDefaults fills unset policies.
func (p Policies) WithDefaults() Policies {
	if p.AverageMatchUpMinutes == 0 {
		p.AverageMatchUpMinutes = DefaultAverageMatchUpMinutes
	}
	if p.PeriodLength == 0 {
		p.PeriodLength = DefaultPeriodLength
	}
	if p.Iterations == 0 {
		p.Iterations = DefaultIterations
	}
	return p
}

// Grid lists the dates the pro scheduler lays out as court grids.
type Grid struct {
	Dates  []Date   `yaml:"dates"`
	Venues []string `yaml:"venues,omitempty"`
}

type Config struct {
	Tournament   tournament.Tournament        `yaml:"tournament"`
	Participants map[string][]string          `yaml:"participants,omitempty"`
	Profile      tournament.SchedulingProfile `yaml:"profile,omitempty"`
	Grid         Grid                         `yaml:"grid,omitempty"`
	Policies     Policies                     `yaml:"policies"`
}

// Resolver returns the participant resolver described by the file, or nil
// when the file lists no compositions.
func (c *Config) Resolver() participants.Resolver {
	if len(c.Participants) == 0 {
		return nil
	}
	return participants.Static(c.Participants)
}

// ScheduledDates returns the distinct scheduled dates of every matchUp in
// first-seen order.
func (c *Config) ScheduledDates() []string {
	seen := make(map[string]bool)
	var dates []string
	for _, m := range c.Tournament.MatchUps {
		d := m.Schedule.ScheduledDate
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		dates = append(dates, d)
	}
	return dates
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

// Marshal renders the config back to YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteFile writes the config to path.
func (c *Config) WriteFile(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if len(c.Tournament.Venues) == 0 {
		return fmt.Errorf("at least one venue is required")
	}

	venues := make(map[string]bool)
	courts := make(map[string]string)
	for _, v := range c.Tournament.Venues {
		if v.VenueID == "" {
			return fmt.Errorf("%w: venue without venue_id", tournament.ErrInvalidValues)
		}
		if venues[v.VenueID] {
			return fmt.Errorf("%w: venue %q appears twice", tournament.ErrInvalidValues, v.VenueID)
		}
		venues[v.VenueID] = true
		if err := availability.ValidateVenue(v); err != nil {
			return fmt.Errorf("venue %q: %w", v.VenueID, err)
		}
		for _, court := range v.Courts {
			if prev, ok := courts[court.CourtID]; ok {
				return fmt.Errorf("%w: court %q appears in both %q and %q",
					tournament.ErrInvalidValues, court.CourtID, prev, v.VenueID)
			}
			courts[court.CourtID] = v.VenueID
		}
	}

	if _, err := tournament.IndexMatchUps(c.Tournament.MatchUps); err != nil {
		return err
	}
	for _, m := range c.Tournament.MatchUps {
		if err := m.Schedule.Validate(); err != nil {
			return fmt.Errorf("matchUp %q: %w", m.MatchUpID, err)
		}
	}

	if err := c.Profile.Validate(); err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	for _, d := range c.Profile {
		for _, v := range d.Venues {
			if !venues[v.VenueID] {
				return fmt.Errorf("profile %s: %w: %s", d.ScheduleDate, tournament.ErrVenueNotFound, v.VenueID)
			}
		}
	}
	for _, id := range c.Grid.Venues {
		if !venues[id] {
			return fmt.Errorf("grid: %w: %s", tournament.ErrVenueNotFound, id)
		}
	}

	p := c.Policies
	if p.AverageMatchUpMinutes < 0 || p.PeriodLength < 0 || p.RecoveryMinutes < 0 ||
		p.Iterations < 0 || p.MinCourtGridRows < 0 {
		return fmt.Errorf("%w: policies must not be negative", tournament.ErrInvalidValues)
	}
	l := p.DailyLimits
	if l.Singles < 0 || l.Doubles < 0 || l.Team < 0 || l.Total < 0 {
		return fmt.Errorf("%w: daily limits must not be negative", tournament.ErrInvalidValues)
	}

	return nil
}
