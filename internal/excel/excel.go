// Package excel writes court grids and orders of play as xlsx workbooks and
// reads edited grids back.
package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/courtplan/internal/conflicts"
	"github.com/derekprior/courtplan/internal/tournament"
)

const (
	GridSheet   = "Court Grid"
	IssuesSheet = "Issues"
)

// Grid is one date of a row by court grid.
type Grid struct {
	Date   string
	Courts []string
	// Rows is the number of rows to draw; placements below it still show.
	Rows int
}

// GenerateGrid creates a workbook with the grid for g.Date and, when issues
// is not nil, highlighted cells and an Issues sheet.
func GenerateGrid(t *tournament.Tournament, g Grid, issues *conflicts.Result) (*excelize.File, error) {
	f := excelize.NewFile()

	// Set default font for the workbook
	f.SetDefaultFont("Arial")

	if err := writeGridSheet(f, t, g, issues); err != nil {
		return nil, fmt.Errorf("writing grid sheet: %w", err)
	}
	if issues != nil {
		if err := WriteIssues(f, t, issues); err != nil {
			return nil, err
		}
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

// cellText renders a matchUp so ReadGrid can find its id again.
func cellText(m *tournament.MatchUp) string {
	text := fmt.Sprintf("%s [%s]", m.Label(), m.MatchUpID)
	if ids := m.ParticipantIDs(); len(ids) > 0 {
		text = strings.Join(ids, " v ") + "\n" + text
	}
	return text
}

// cellMatchUpIDs returns every bracketed id in a cell, in order.
func cellMatchUpIDs(cell string) []string {
	var ids []string
	for {
		start := strings.Index(cell, "[")
		if start < 0 {
			return ids
		}
		end := strings.Index(cell[start:], "]")
		if end < 0 {
			return ids
		}
		if id := strings.TrimSpace(cell[start+1 : start+end]); id != "" {
			ids = append(ids, id)
		}
		cell = cell[start+end+1:]
	}
}

func writeGridSheet(f *excelize.File, t *tournament.Tournament, g Grid, issues *conflicts.Result) error {
	sheet := GridSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	// Headers: <date>, <court1>, <court2>, ...
	headers := append([]string{g.Date}, g.Courts...)
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if headerStyle != 0 {
		f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(headers), 1), headerStyle)
	}

	courtCol := make(map[string]int, len(g.Courts))
	for i, c := range g.Courts {
		courtCol[c] = i + 2
	}

	severity := make(map[string]conflicts.Severity)
	if issues != nil {
		for _, i := range issues.Issues() {
			severity[i.MatchUpID] = i.Issue
		}
	}

	rows := g.Rows
	type placedCell struct {
		col, row int
		m        *tournament.MatchUp
	}
	var cells []placedCell
	for i := range t.MatchUps {
		m := &t.MatchUps[i]
		s := m.Schedule
		if s.ScheduledDate != g.Date || s.CourtOrder <= 0 {
			continue
		}
		col, ok := courtCol[s.CourtID]
		if !ok {
			continue
		}
		cells = append(cells, placedCell{col, s.CourtOrder, m})
		rows = max(rows, s.CourtOrder)
	}

	cellStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 12, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	rowStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	for r := 1; r <= rows; r++ {
		f.SetCellValue(sheet, cellRef(1, r+1), r)
		if rowStyle != 0 {
			f.SetCellStyle(sheet, cellRef(1, r+1), cellRef(1, r+1), rowStyle)
		}
		if cellStyle != 0 && len(g.Courts) > 0 {
			f.SetCellStyle(sheet, cellRef(2, r+1), cellRef(len(headers), r+1), cellStyle)
		}
		f.SetRowHeight(sheet, r+1, 40)
	}

	fills := issueStyles(f)
	for _, c := range cells {
		ref := cellRef(c.col, c.row+1)
		// Double bookings share a cell.
		if prev, _ := f.GetCellValue(sheet, ref); prev != "" {
			f.SetCellValue(sheet, ref, prev+"\n"+cellText(c.m))
		} else {
			f.SetCellValue(sheet, ref, cellText(c.m))
		}
		if style, ok := fills[severity[c.m.MatchUpID]]; ok && style != 0 {
			f.SetCellStyle(sheet, ref, ref, style)
		}
	}

	f.SetColWidth(sheet, "A", "A", 14)
	if len(g.Courts) > 0 {
		f.SetColWidth(sheet, colLetter(2), colLetter(len(headers)), 28)
	}
	return nil
}

func issueStyles(f *excelize.File) map[conflicts.Severity]int {
	colors := map[conflicts.Severity]string{
		conflicts.DoubleBooking:   "#FF7C80",
		conflicts.ScheduleError:   "#FFC7CE",
		conflicts.Conflict:        "#F8CBAD",
		conflicts.ScheduleWarning: "#FFEB9C",
	}
	out := make(map[conflicts.Severity]int, len(colors))
	for s, color := range colors {
		style, _ := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
			Font:      &excelize.Font{Size: 12, Family: "Arial"},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		})
		out[s] = style
	}
	return out
}

// WriteIssues replaces the Issues sheet with one line per issue.
func WriteIssues(f *excelize.File, t *tournament.Tournament, issues *conflicts.Result) error {
	sheet := IssuesSheet
	if idx, _ := f.GetSheetIndex(sheet); idx >= 0 {
		if err := f.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("clearing issues sheet: %w", err)
		}
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("writing issues sheet: %w", err)
	}

	headers := []string{"Row", "Court", "MatchUp", "Issue", "Type", "Related"}
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 12, Family: "Arial"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
	})
	if headerStyle != 0 {
		f.SetCellStyle(sheet, "A1", cellRef(len(headers), 1), headerStyle)
	}

	label := func(id string) string {
		if t != nil {
			if m, err := t.MatchUp(id); err == nil {
				return m.Label()
			}
		}
		return id
	}
	for i, issue := range issues.Issues() {
		row := i + 2
		related := make([]string, len(issue.IssueIDs))
		for j, id := range issue.IssueIDs {
			related[j] = label(id)
		}
		f.SetCellValue(sheet, cellRef(1, row), issue.Row)
		f.SetCellValue(sheet, cellRef(2, row), issue.CourtID)
		f.SetCellValue(sheet, cellRef(3, row), label(issue.MatchUpID))
		f.SetCellValue(sheet, cellRef(4, row), string(issue.Issue))
		f.SetCellValue(sheet, cellRef(5, row), string(issue.IssueType))
		f.SetCellValue(sheet, cellRef(6, row), strings.Join(related, ", "))
	}

	widths := map[string]float64{"A": 8, "B": 12, "C": 24, "D": 36, "E": 34, "F": 48}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}
	return nil
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
