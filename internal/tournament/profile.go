package tournament

import (
	"fmt"
	"math/bits"
)

// RoundSegment splits a round into SegmentsCount equal parts; SegmentNumber
// is 1-based.
type RoundSegment struct {
	SegmentNumber int `yaml:"segment_number"`
	SegmentsCount int `yaml:"segments_count"`
}

func (s RoundSegment) Validate() error {
	if s.SegmentsCount < 1 || bits.OnesCount(uint(s.SegmentsCount)) != 1 {
		return fmt.Errorf("%w: segments count %d is not a power of 2", ErrInvalidRoundSegment, s.SegmentsCount)
	}
	if s.SegmentNumber < 1 || s.SegmentNumber > s.SegmentsCount {
		return fmt.Errorf("%w: segment %d of %d", ErrInvalidRoundSegment, s.SegmentNumber, s.SegmentsCount)
	}
	return nil
}

// Contains reports whether roundPosition (1-based) of a round with
// matchUpsCount matchUps falls inside the segment.
func (s RoundSegment) Contains(roundPosition, matchUpsCount int) bool {
	size := (matchUpsCount + s.SegmentsCount - 1) / s.SegmentsCount
	if size == 0 {
		return false
	}
	first := (s.SegmentNumber-1)*size + 1
	last := first + size - 1
	return roundPosition >= first && roundPosition <= last
}

// ProfileRound is one unit of work for the profile scheduler.
type ProfileRound struct {
	TournamentID                 string        `yaml:"tournament_id,omitempty"`
	EventID                      string        `yaml:"event_id,omitempty"`
	DrawID                       string        `yaml:"draw_id"`
	StructureID                  string        `yaml:"structure_id,omitempty"`
	RoundNumber                  int           `yaml:"round_number,omitempty"`
	RoundSegment                 *RoundSegment `yaml:"round_segment,omitempty"`
	WinnerFinishingPositionRange string        `yaml:"winner_finishing_position_range,omitempty"`
}

func (r ProfileRound) Validate() error {
	if r.DrawID == "" {
		return fmt.Errorf("%w: profile round requires draw_id", ErrInvalidValues)
	}
	if r.RoundNumber < 0 {
		return fmt.Errorf("%w: round number %d", ErrInvalidValues, r.RoundNumber)
	}
	if r.RoundSegment != nil {
		return r.RoundSegment.Validate()
	}
	return nil
}

type ProfileVenue struct {
	VenueID string         `yaml:"venue_id"`
	Rounds  []ProfileRound `yaml:"rounds"`
}

type ProfileDate struct {
	ScheduleDate string         `yaml:"schedule_date"`
	Venues       []ProfileVenue `yaml:"venues"`
}

// SchedulingProfile is the ordered plan of rounds per venue per date.
type SchedulingProfile []ProfileDate

// Validate checks dates and rounds without looking anything up.
func (p SchedulingProfile) Validate() error {
	for _, d := range p {
		if _, err := ParseDate(d.ScheduleDate); err != nil {
			return err
		}
		for _, v := range d.Venues {
			if v.VenueID == "" {
				return fmt.Errorf("%w: profile venue requires venue_id", ErrInvalidValues)
			}
			for _, r := range v.Rounds {
				if err := r.Validate(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
