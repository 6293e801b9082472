package tournament

import (
	"errors"
	"testing"
)

func TestParseTime(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    int
		wantErr bool
	}{
		"hours and minutes": {input: "08:30", want: 510},
		"datetime":          {input: "2022-01-01T08:00", want: 480},
		"seconds ignored":   {input: "17:45:00", want: 1065},
		"end of day":        {input: "24:00", want: 1440},
		"past end of day":   {input: "24:30", wantErr: true},
		"bad minutes":       {input: "08:75", wantErr: true},
		"garbage":           {input: "noon", wantErr: true},
		"empty":             {input: "", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseTime(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidTime) {
					t.Fatalf("ParseTime(%q) error = %v, want ErrInvalidTime", tc.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTime(%q) error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ParseTime(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestReplaceTime(t *testing.T) {
	if got := ReplaceTime("2022-01-01T08:00", 570); got != "2022-01-01T09:30" {
		t.Errorf("ReplaceTime with date prefix = %q", got)
	}
	if got := ReplaceTime("08:00", 570); got != "09:30" {
		t.Errorf("ReplaceTime = %q", got)
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2022-01-31", 1)
	if err != nil {
		t.Fatalf("AddDays error: %v", err)
	}
	if got != "2022-02-01" {
		t.Errorf("AddDays = %q, want 2022-02-01", got)
	}
	if _, err := AddDays("2022-13-01", 1); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("AddDays invalid date error = %v", err)
	}
}

func TestRoundSegment(t *testing.T) {
	t.Run("segments count must be a power of two", func(t *testing.T) {
		err := RoundSegment{SegmentNumber: 1, SegmentsCount: 3}.Validate()
		if !errors.Is(err, ErrInvalidRoundSegment) {
			t.Errorf("error = %v, want ErrInvalidRoundSegment", err)
		}
	})

	t.Run("segment number within count", func(t *testing.T) {
		err := RoundSegment{SegmentNumber: 3, SegmentsCount: 2}.Validate()
		if !errors.Is(err, ErrInvalidRoundSegment) {
			t.Errorf("error = %v, want ErrInvalidRoundSegment", err)
		}
	})

	t.Run("contains splits round positions", func(t *testing.T) {
		seg := RoundSegment{SegmentNumber: 2, SegmentsCount: 2}
		for pos := 1; pos <= 8; pos++ {
			want := pos > 4
			if got := seg.Contains(pos, 8); got != want {
				t.Errorf("Contains(%d, 8) = %v, want %v", pos, got, want)
			}
		}
	})
}

func TestScheduleValidate(t *testing.T) {
	if err := (Schedule{}).Validate(); err != nil {
		t.Errorf("empty schedule error: %v", err)
	}
	if (Schedule{}).IsScheduled() {
		t.Error("empty schedule reported as scheduled")
	}
	good := Schedule{ScheduledDate: "2022-01-01", ScheduledTime: "2022-01-01T08:00", CourtOrder: 2}
	if err := good.Validate(); err != nil {
		t.Errorf("valid schedule error: %v", err)
	}
	bad := Schedule{ScheduledDate: "2022-01-01", CourtOrder: -1}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidValues) {
		t.Errorf("negative court order error = %v", err)
	}
}

func TestIndividualIDs(t *testing.T) {
	m := MatchUp{
		MatchUpType: Doubles,
		Sides: []Side{
			{ParticipantID: "pair-1", IndividualParticipantIDs: []string{"b", "a"}},
			{ParticipantID: "pair-2", IndividualParticipantIDs: []string{"c", "a"}},
		},
	}
	got := m.IndividualIDs()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("IndividualIDs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IndividualIDs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestApplyDeltas(t *testing.T) {
	matchUps := []MatchUp{{MatchUpID: "m1"}, {MatchUpID: "m2"}}
	deltas := []ScheduleDelta{{MatchUpID: "m2", After: Schedule{ScheduledDate: "2022-01-01"}}}
	out := ApplyDeltas(matchUps, deltas)
	if out[1].Schedule.ScheduledDate != "2022-01-01" {
		t.Errorf("delta not applied: %+v", out[1].Schedule)
	}
	if matchUps[1].Schedule.ScheduledDate != "" {
		t.Error("ApplyDeltas mutated its input")
	}
}
