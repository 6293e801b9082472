package conflicts

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"testing"

	"github.com/derekprior/courtplan/internal/draws"
	"github.com/derekprior/courtplan/internal/participants"
	"github.com/derekprior/courtplan/internal/schedule"
	"github.com/derekprior/courtplan/internal/tournament"
)

const day = "2026-05-02"

func elimination(t *testing.T, size int) *draws.Draw {
	t.Helper()
	d, err := (&draws.SingleElimination{}).Generate(draws.Spec{DrawID: "D", DrawSize: size, IDs: draws.Sequential("m")})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	return d
}

func place(t *testing.T, matchUps []tournament.MatchUp, id, court string, row int) {
	t.Helper()
	for i := range matchUps {
		if matchUps[i].MatchUpID == id {
			matchUps[i].Schedule = tournament.Schedule{ScheduledDate: day, CourtID: court, CourtOrder: row, VenueID: "v1"}
			return
		}
	}
	t.Fatalf("no matchUp %s", id)
}

func analyze(t *testing.T, matchUps []tournament.MatchUp, opts Options) *Result {
	t.Helper()
	r, err := ProConflicts(matchUps, opts)
	if err != nil {
		t.Fatalf("ProConflicts error: %v", err)
	}
	return r
}

func issueFor(r *Result, id string) (Issue, bool) {
	for _, i := range r.Issues() {
		if i.MatchUpID == id {
			return i, true
		}
	}
	return Issue{}, false
}

// proGrid auto-schedules a 16 draw on 8 courts and returns the placed matchUps.
func proGrid(t *testing.T) (*draws.Draw, []tournament.MatchUp) {
	t.Helper()
	d := elimination(t, 16)
	venue := tournament.Venue{VenueID: "v1", DefaultStartTime: "08:00", DefaultEndTime: "20:00"}
	for i := 1; i <= 8; i++ {
		venue.Courts = append(venue.Courts, tournament.Court{CourtID: fmt.Sprintf("c%d", i)})
	}
	tour := &tournament.Tournament{TournamentID: "T", Venues: []tournament.Venue{venue}, MatchUps: d.MatchUps}
	result, err := schedule.ProAutoSchedule(tour, schedule.ProOptions{ScheduledDate: day})
	if err != nil {
		t.Fatalf("ProAutoSchedule error: %v", err)
	}
	return d, tournament.ApplyDeltas(tour.MatchUps, result.Modified)
}

func TestProConflictsAfterProAutoSchedule(t *testing.T) {
	d, matchUps := proGrid(t)

	for _, deep := range []bool{false, true} {
		t.Run(fmt.Sprintf("baseline deep=%v", deep), func(t *testing.T) {
			r := analyze(t, matchUps, Options{UseDeepDependencies: deep})
			if r.Blocking() || r.Count(Conflict) != 0 {
				t.Errorf("issues = %+v", r.Issues())
			}
			// R2, R3 and the final each follow their sources on the next row.
			if n := r.Count(ScheduleWarning); n != 7 {
				t.Errorf("warnings = %d, want 7", n)
			}
		})
	}

	moved := tournament.CloneMatchUps(matchUps)
	semi := d.Find("D-MAIN", 3, 1)
	place(t, moved, semi.MatchUpID, "c8", 2)

	for _, deep := range []bool{false, true} {
		t.Run(fmt.Sprintf("dependent on its source row deep=%v", deep), func(t *testing.T) {
			r := analyze(t, moved, Options{UseDeepDependencies: deep})
			if n := r.Count(ScheduleError); n != 1 {
				t.Fatalf("errors = %d, want 1: %+v", n, r.Issues())
			}
			issue, ok := issueFor(r, semi.MatchUpID)
			if !ok || issue.Issue != ScheduleError || issue.IssueType != TypeOrder {
				t.Fatalf("issue = %+v", issue)
			}
			want := []string{d.Find("D-MAIN", 2, 1).MatchUpID, d.Find("D-MAIN", 2, 2).MatchUpID}
			if !slices.Equal(issue.IssueIDs, want) {
				t.Errorf("issue ids = %v, want %v", issue.IssueIDs, want)
			}
			if issue.Row != 2 || issue.CourtID != "c8" || len(r.CourtIssues["c8"]) != 1 {
				t.Errorf("issue at row %d court %s", issue.Row, issue.CourtID)
			}
		})
	}
}

func TestProConflictsDeepFalseMatchesOmission(t *testing.T) {
	d, matchUps := proGrid(t)
	place(t, matchUps, d.Find("D-MAIN", 4, 1).MatchUpID, "c2", 2)
	place(t, matchUps, d.Find("D-MAIN", 3, 2).MatchUpID, "c8", 2)

	omitted := analyze(t, matchUps, Options{})
	explicit := analyze(t, matchUps, Options{UseDeepDependencies: false})
	if !reflect.DeepEqual(omitted, explicit) {
		t.Errorf("results differ:\n%+v\n%+v", omitted.Issues(), explicit.Issues())
	}
	if omitted.Count(DoubleBooking) != 2 || omitted.Count(ScheduleError) == 0 {
		t.Errorf("issues = %+v", omitted.Issues())
	}
}

func TestDoubleBooking(t *testing.T) {
	d := elimination(t, 4)
	ms := d.MatchUps
	place(t, ms, "m-1", "c1", 1)
	place(t, ms, "m-2", "c1", 1)

	r := analyze(t, ms, Options{})
	for _, id := range []string{"m-1", "m-2"} {
		issue, ok := issueFor(r, id)
		if !ok || issue.Issue != DoubleBooking {
			t.Errorf("%s issue = %+v", id, issue)
		}
	}
	if len(r.RowIssues[1]) != 2 || len(r.CourtIssues["c1"]) != 2 {
		t.Errorf("row issues = %v", r.RowIssues)
	}
}

func TestParticipantOverlap(t *testing.T) {
	ms := []tournament.MatchUp{
		{DrawID: "A", StructureID: "A", MatchUpID: "a", RoundNumber: 1, Sides: []tournament.Side{{ParticipantID: "p1"}, {ParticipantID: "p2"}}},
		{DrawID: "B", StructureID: "B", MatchUpID: "b", RoundNumber: 1, Sides: []tournament.Side{{ParticipantID: "p1"}, {ParticipantID: "p3"}}},
		{DrawID: "C", StructureID: "C", MatchUpID: "c", RoundNumber: 1, MatchUpType: tournament.Doubles,
			Sides: []tournament.Side{{ParticipantID: "x"}, {ParticipantID: "y"}}},
		{DrawID: "E", StructureID: "E", MatchUpID: "e", RoundNumber: 1, Sides: []tournament.Side{{ParticipantID: "p1"}, {ParticipantID: "p4"}}},
	}
	place(t, ms, "a", "c1", 1)
	place(t, ms, "b", "c2", 1)
	place(t, ms, "c", "c3", 1)
	place(t, ms, "e", "c1", 2)

	tests := map[string]struct {
		resolver participants.Resolver
		want     map[string][]string
	}{
		"sides only": {
			want: map[string][]string{"a": {"b"}, "b": {"a"}},
		},
		"pairs expanded": {
			resolver: participants.Static{"x": {"p2", "p9"}, "y": {"p7", "p8"}},
			want:     map[string][]string{"a": {"b", "c"}, "b": {"a"}, "c": {"a"}},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := analyze(t, ms, Options{Participants: tt.resolver})
			got := make(map[string][]string)
			for _, i := range r.Issues() {
				if i.Issue != Conflict || i.IssueType != TypeParticipants {
					t.Errorf("unexpected issue %+v", i)
				}
				got[i.MatchUpID] = i.IssueIDs
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("conflicts = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrderingAcrossDates(t *testing.T) {
	ms := elimination(t, 4).MatchUps
	place(t, ms, "m-3", "c1", 1)
	ms[0].Schedule = tournament.Schedule{ScheduledDate: "2026-05-03", ScheduledTime: "09:00"}
	ms[1].Schedule = tournament.Schedule{ScheduledDate: "2026-05-01", ScheduledTime: "09:00"}

	r := analyze(t, ms, Options{})
	issue, ok := issueFor(r, "m-3")
	if !ok || issue.Issue != ScheduleError || !slices.Equal(issue.IssueIDs, []string{"m-1"}) {
		t.Errorf("issue = %+v", issue)
	}
}

func TestResolvedSourcesIgnored(t *testing.T) {
	ms := elimination(t, 4).MatchUps
	place(t, ms, "m-1", "c1", 2)
	place(t, ms, "m-2", "c2", 1)
	place(t, ms, "m-3", "c1", 1)
	ms[0].MatchUpStatus = tournament.StatusCompleted

	r := analyze(t, ms, Options{UseDeepDependencies: true})
	issue, ok := issueFor(r, "m-3")
	if !ok || !slices.Equal(issue.IssueIDs, []string{"m-2"}) {
		t.Errorf("issue = %+v", issue)
	}
}

func TestDependentsBefore(t *testing.T) {
	ms := elimination(t, 4).MatchUps
	place(t, ms, "m-3", "c1", 1)
	place(t, ms, "m-1", "c1", 2)
	place(t, ms, "m-2", "c1", 3)

	base := analyze(t, ms, Options{})
	if n := base.Count(ScheduleError); n != 1 {
		t.Errorf("base errors = %d, want 1", n)
	}

	deep := analyze(t, ms, Options{UseDeepDependencies: true})
	if n := deep.Count(ScheduleError); n != 3 {
		t.Fatalf("deep errors = %d, want 3: %+v", n, deep.Issues())
	}
	for _, id := range []string{"m-1", "m-2"} {
		issue, _ := issueFor(deep, id)
		if issue.IssueType != TypeOrder || !slices.Equal(issue.IssueIDs, []string{"m-3"}) {
			t.Errorf("%s issue = %+v", id, issue)
		}
	}
}

func TestSourceDistance(t *testing.T) {
	ms := elimination(t, 8).MatchUps
	place(t, ms, "m-1", "c1", 2)
	place(t, ms, "m-7", "c1", 3)

	if r := analyze(t, ms, Options{}); len(r.Issues()) != 0 {
		t.Errorf("base issues = %+v", r.Issues())
	}
	r := analyze(t, ms, Options{UseDeepDependencies: true})
	issue, ok := issueFor(r, "m-7")
	if !ok || issue.Issue != ScheduleError || issue.IssueType != TypeSourceDistance {
		t.Fatalf("issue = %+v", issue)
	}
	if !slices.Equal(issue.IssueIDs, []string{"m-1"}) {
		t.Errorf("issue ids = %v", issue.IssueIDs)
	}

	place(t, ms, "m-7", "c1", 4)
	if r := analyze(t, ms, Options{UseDeepDependencies: true}); len(r.Issues()) != 0 {
		t.Errorf("two row gap issues = %+v", r.Issues())
	}
}

func TestPotentialParticipants(t *testing.T) {
	ms := elimination(t, 8).MatchUps
	ms = append(ms, tournament.MatchUp{
		DrawID: "X", StructureID: "X", MatchUpID: "x", RoundNumber: 1,
		Sides: []tournament.Side{{ParticipantID: "D-MAIN-P1"}, {ParticipantID: "Q"}},
	})
	place(t, ms, "m-5", "c1", 1)
	place(t, ms, "x", "c2", 1)

	if r := analyze(t, ms, Options{}); len(r.Issues()) != 0 {
		t.Errorf("base issues = %+v", r.Issues())
	}
	r := analyze(t, ms, Options{UseDeepDependencies: true})
	for id, other := range map[string]string{"m-5": "x", "x": "m-5"} {
		issue, ok := issueFor(r, id)
		if !ok || issue.Issue != ScheduleWarning || issue.IssueType != TypePotentialParticipants {
			t.Errorf("%s issue = %+v", id, issue)
			continue
		}
		if !slices.Equal(issue.IssueIDs, []string{other}) {
			t.Errorf("%s issue ids = %v", id, issue.IssueIDs)
		}
	}
}

func TestPositionLinks(t *testing.T) {
	d, err := (&draws.RoundRobinPlayoff{GroupSize: 4}).Generate(draws.Spec{DrawID: "RR", DrawSize: 8, IDs: draws.Sequential("rr")})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	ms := d.MatchUps
	final := d.Find("RR-PLAYOFF", 1, 1)
	place(t, ms, final.MatchUpID, "c1", 1)

	if r := analyze(t, ms, Options{Links: d.Links}); len(r.Issues()) != 0 {
		t.Errorf("base issues = %+v", r.Issues())
	}

	r := analyze(t, ms, Options{Links: d.Links, UseDeepDependencies: true})
	issue, ok := issueFor(r, final.MatchUpID)
	if !ok || issue.Issue != ScheduleWarning || issue.IssueType != TypePositionLink {
		t.Fatalf("issue = %+v", issue)
	}
	if len(issue.IssueIDs) != 12 {
		t.Errorf("missing sources = %d, want 12", len(issue.IssueIDs))
	}

	for i := range ms {
		if ms[i].StructureID != "RR-PLAYOFF" {
			ms[i].Schedule = tournament.Schedule{ScheduledDate: "2026-05-01"}
		}
	}
	if r := analyze(t, ms, Options{Links: d.Links, UseDeepDependencies: true}); len(r.Issues()) != 0 {
		t.Errorf("groups played the day before: %+v", r.Issues())
	}
}

func TestProConflictsErrors(t *testing.T) {
	ms := elimination(t, 4).MatchUps
	if _, err := ProConflicts(ms, Options{ScheduledDate: "May 2"}); !errors.Is(err, tournament.ErrInvalidDate) {
		t.Errorf("error = %v, want ErrInvalidDate", err)
	}
	dup := append(slices.Clone(ms), ms[0])
	if _, err := ProConflicts(dup, Options{}); !errors.Is(err, tournament.ErrDuplicateMatchUp) {
		t.Errorf("error = %v, want ErrDuplicateMatchUp", err)
	}
}

func TestAnalyzeByDate(t *testing.T) {
	ms := elimination(t, 8).MatchUps
	place(t, ms, "m-1", "c1", 1)
	place(t, ms, "m-2", "c1", 1)
	place(t, ms, "m-3", "c1", 1)
	ms[2].Schedule.ScheduledDate = "2026-05-03"
	place(t, ms, "m-4", "c2", 1)
	ms[3].Schedule.ScheduledDate = "2026-05-03"

	results, err := AnalyzeByDate(context.Background(), ms, Options{ScheduledDate: "ignored"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %v", results)
	}
	if n := results[day].Count(DoubleBooking); n != 2 {
		t.Errorf("%s double bookings = %d, want 2", day, n)
	}
	if n := len(results["2026-05-03"].Issues()); n != 0 {
		t.Errorf("2026-05-03 issues = %d, want 0", n)
	}
	if got := GridDates(ms); !slices.Equal(got, []string{day, "2026-05-03"}) {
		t.Errorf("dates = %v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := AnalyzeByDate(ctx, ms, Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
