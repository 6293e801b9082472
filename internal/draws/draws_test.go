package draws

import (
	"testing"

	"github.com/derekprior/courtplan/internal/tournament"
)

func TestSingleElimination(t *testing.T) {
	s := &SingleElimination{}
	d, err := s.Generate(Spec{DrawID: "D", DrawSize: 16, IDs: Sequential("m")})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	t.Run("matchUp count", func(t *testing.T) {
		if len(d.MatchUps) != 15 {
			t.Errorf("matchUps = %d, want 15", len(d.MatchUps))
		}
	})

	t.Run("winner edges point at the next round", func(t *testing.T) {
		for _, m := range d.MatchUps {
			if m.RoundNumber == 4 {
				if m.WinnerMatchUpID != "" {
					t.Errorf("final has winner edge %s", m.WinnerMatchUpID)
				}
				continue
			}
			next := d.Find("D-MAIN", m.RoundNumber+1, (m.RoundPosition+1)/2)
			if next == nil || next.MatchUpID != m.WinnerMatchUpID {
				t.Errorf("%s winner edge = %s", m.Label(), m.WinnerMatchUpID)
			}
		}
	})

	t.Run("first round has participants", func(t *testing.T) {
		for _, m := range d.Round("D-MAIN", 1) {
			if len(m.ParticipantIDs()) != 2 {
				t.Errorf("%s participants = %v", m.Label(), m.ParticipantIDs())
			}
		}
	})

	t.Run("rejects non power of two", func(t *testing.T) {
		if _, err := s.Generate(Spec{DrawSize: 12}); err == nil {
			t.Error("expected error for draw size 12")
		}
	})
}

func TestRoundRobinPlayoff(t *testing.T) {
	s := &RoundRobinPlayoff{GroupSize: 4}
	d, err := s.Generate(Spec{DrawID: "RR", DrawSize: 8, IDs: Sequential("rr")})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	t.Run("every pairing plays once per group", func(t *testing.T) {
		type pair struct{ a, b string }
		seen := make(map[pair]int)
		for _, m := range d.MatchUps {
			if m.StructureID == "RR-PLAYOFF" {
				continue
			}
			ids := m.ParticipantIDs()
			a, b := ids[0], ids[1]
			if a > b {
				a, b = b, a
			}
			seen[pair{a, b}]++
		}
		if len(seen) != 12 {
			t.Errorf("distinct pairings = %d, want 12", len(seen))
		}
		for p, n := range seen {
			if n != 1 {
				t.Errorf("%v played %d times", p, n)
			}
		}
	})

	t.Run("groups link to the playoff by position", func(t *testing.T) {
		if len(d.Links) != 2 {
			t.Fatalf("links = %d, want 2", len(d.Links))
		}
		for _, l := range d.Links {
			if l.LinkType != tournament.LinkPosition || l.Target.StructureID != "RR-PLAYOFF" {
				t.Errorf("link = %+v", l)
			}
		}
	})

	t.Run("playoff has no participants yet", func(t *testing.T) {
		for _, m := range d.Round("RR-PLAYOFF", 1) {
			if len(m.ParticipantIDs()) != 0 {
				t.Errorf("%s participants = %v", m.Label(), m.ParticipantIDs())
			}
		}
	})
}

func TestQualifyingMain(t *testing.T) {
	q := &QualifyingMain{QualifyingSize: 8, Qualifiers: 2}
	d, err := q.Generate(Spec{DrawID: "Q", DrawSize: 8, IDs: Sequential("q")})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	qual := 0
	for _, m := range d.MatchUps {
		if m.StructureID == "Q-QUALIFYING" {
			qual++
			if m.RoundNumber > 2 {
				t.Errorf("qualifying round %d should not be played", m.RoundNumber)
			}
		}
	}
	if qual != 6 {
		t.Errorf("qualifying matchUps = %d, want 6", qual)
	}
	if len(d.Links) != 1 || d.Links[0].LinkType != tournament.LinkWinner {
		t.Errorf("links = %+v", d.Links)
	}
}

func TestDoublesComposition(t *testing.T) {
	s := &SingleElimination{}
	d, err := s.Generate(Spec{DrawID: "DBL", DrawSize: 4, MatchUpType: tournament.Doubles, IDs: Sequential("d")})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	m := d.Find("DBL-MAIN", 1, 1)
	if got := len(m.IndividualIDs()); got != 4 {
		t.Errorf("individuals = %d, want 4", got)
	}
}
