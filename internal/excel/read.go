package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/courtplan/internal/tournament"
)

// Placement is one matchUp found in a grid cell.
type Placement struct {
	MatchUpID string
	CourtID   string
	Row       int
	// Cell is the sheet reference, for messages.
	Cell string
}

// ReadGrid reads the Court Grid sheet of f: the date from A1, courts from the
// header row and one placement per bracketed matchUp id in a cell. Cells
// without an id are notes and are skipped.
func ReadGrid(f *excelize.File) (Grid, []Placement, error) {
	rows, err := f.GetRows(GridSheet)
	if err != nil {
		return Grid{}, nil, fmt.Errorf("reading %s: %w", GridSheet, err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Grid{}, nil, fmt.Errorf("%s is empty", GridSheet)
	}

	header := rows[0]
	date := strings.TrimSpace(header[0])
	if _, err := tournament.ParseDate(date); err != nil {
		return Grid{}, nil, fmt.Errorf("%s A1: %w", GridSheet, err)
	}
	g := Grid{Date: tournament.ExtractDate(date)}
	for i := 1; i < len(header); i++ {
		g.Courts = append(g.Courts, strings.TrimSpace(header[i]))
	}

	var placements []Placement
	for i, row := range rows {
		if i == 0 {
			continue
		}
		// Grid rows follow sheet rows; the row label column is informational.
		gridRow := i
		g.Rows = max(g.Rows, gridRow)
		for col := 1; col < len(row) && col <= len(g.Courts); col++ {
			for _, id := range cellMatchUpIDs(row[col]) {
				placements = append(placements, Placement{
					MatchUpID: id,
					CourtID:   g.Courts[col-1],
					Row:       gridRow,
					Cell:      cellRef(col+1, i+1),
				})
			}
		}
	}
	return g, placements, nil
}

// ReadGridFile opens path and reads its grid.
func ReadGridFile(path string) (Grid, []Placement, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Grid{}, nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return ReadGrid(f)
}

// Deltas turns a read grid into schedule changes against t: every placement
// moves its matchUp to (g.Date, court, row), and matchUps that were on this
// date's grid but are missing from the sheet lose their court and row.
func Deltas(t *tournament.Tournament, g Grid, placements []Placement) ([]tournament.ScheduleDelta, error) {
	matchUps := tournament.CloneMatchUps(t.MatchUps)
	idx, err := tournament.IndexMatchUps(matchUps)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(placements))
	for _, p := range placements {
		i, ok := idx[p.MatchUpID]
		if !ok {
			return nil, fmt.Errorf("%s: %w: %s", p.Cell, tournament.ErrMatchUpNotFound, p.MatchUpID)
		}
		_, venue, err := t.Court(p.CourtID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Cell, err)
		}
		seen[p.MatchUpID] = true
		s := &matchUps[i].Schedule
		s.ScheduledDate = g.Date
		s.CourtID = p.CourtID
		s.VenueID = venue.VenueID
		s.CourtOrder = p.Row
	}
	for i := range matchUps {
		s := &matchUps[i].Schedule
		if seen[matchUps[i].MatchUpID] || s.ScheduledDate != g.Date || s.CourtOrder == 0 {
			continue
		}
		s.CourtID = ""
		s.CourtOrder = 0
	}

	var deltas []tournament.ScheduleDelta
	for i := range matchUps {
		if t.MatchUps[i].Schedule.Equal(matchUps[i].Schedule) {
			continue
		}
		deltas = append(deltas, tournament.ScheduleDelta{
			MatchUpID: matchUps[i].MatchUpID,
			Before:    t.MatchUps[i].Schedule.Clone(),
			After:     matchUps[i].Schedule.Clone(),
		})
	}
	return deltas, nil
}
