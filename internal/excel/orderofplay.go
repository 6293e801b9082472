package excel

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/courtplan/internal/tournament"
)

// GenerateOrderOfPlay creates one sheet per scheduled date listing matchUps
// by time, then court. MatchUps without a time come last on their date.
func GenerateOrderOfPlay(t *tournament.Tournament) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetDefaultFont("Arial")

	byDate := make(map[string][]*tournament.MatchUp)
	var dates []string
	for i := range t.MatchUps {
		m := &t.MatchUps[i]
		d := m.Schedule.ScheduledDate
		if d == "" {
			continue
		}
		if _, ok := byDate[d]; !ok {
			dates = append(dates, d)
		}
		byDate[d] = append(byDate[d], m)
	}
	slices.Sort(dates)

	for _, d := range dates {
		if err := writeDateSheet(f, t, d, byDate[d]); err != nil {
			return nil, fmt.Errorf("writing %s: %w", d, err)
		}
	}
	if len(dates) > 0 {
		f.DeleteSheet("Sheet1")
	}
	return f, nil
}

func writeDateSheet(f *excelize.File, t *tournament.Tournament, date string, matchUps []*tournament.MatchUp) error {
	sheet := date
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Time", "Court", "Venue", "Row", "MatchUp", "Participants"}
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if headerStyle != 0 {
		for i := range headers {
			f.SetCellStyle(sheet, cellRef(i+1, 1), cellRef(i+1, 1), headerStyle)
		}
	}

	courtOrder := make(map[string]int)
	for i, c := range t.AllCourts() {
		courtOrder[c.CourtID] = i
	}
	minutes := func(m *tournament.MatchUp) int {
		if v, ok := m.Schedule.Minutes(); ok {
			return v
		}
		return tournament.MinutesPerDay
	}
	slices.SortStableFunc(matchUps, func(a, b *tournament.MatchUp) int {
		return cmp.Or(
			cmp.Compare(minutes(a), minutes(b)),
			cmp.Compare(a.Schedule.CourtOrder, b.Schedule.CourtOrder),
			cmp.Compare(courtOrder[a.Schedule.CourtID], courtOrder[b.Schedule.CourtID]),
		)
	})

	cellStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 14, Family: "Arial"},
	})
	for i, m := range matchUps {
		row := i + 2
		s := m.Schedule
		f.SetCellValue(sheet, cellRef(1, row), tournament.ExtractTime(s.ScheduledTime))
		f.SetCellValue(sheet, cellRef(2, row), s.CourtID)
		f.SetCellValue(sheet, cellRef(3, row), s.VenueID)
		if s.CourtOrder > 0 {
			f.SetCellValue(sheet, cellRef(4, row), s.CourtOrder)
		}
		f.SetCellValue(sheet, cellRef(5, row), m.Label())
		f.SetCellValue(sheet, cellRef(6, row), strings.Join(m.ParticipantIDs(), " v "))
		if cellStyle != 0 {
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), cellStyle)
		}
	}

	// Set column widths (sized for Arial 14)
	widths := map[string]float64{"A": 10, "B": 12, "C": 12, "D": 8, "E": 28, "F": 40}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}
	return nil
}
