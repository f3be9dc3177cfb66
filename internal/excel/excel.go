// Package excel writes draft schedules to a review workbook and reads the
// machine-readable Games sheet back.
package excel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/derekprior/tourney/internal/clock"
	"github.com/derekprior/tourney/internal/schedule"
	"github.com/derekprior/tourney/internal/tournament"
)

const (
	MasterSheet     = "Master Schedule"
	GamesSheet      = "Games"
	ViolationsSheet = "Violations"
)

// gamesHeaders is the Games sheet layout. ReadGames depends on the order.
var gamesHeaders = []string{
	"ID", "Game", "Date", "Start", "Minutes", "Diamond",
	"Home", "Away", "Pool", "Division", "Playoff", "Round", "Home Source", "Away Source",
}

// Workbook is everything a review workbook shows.
type Workbook struct {
	Tournament  tournament.Tournament
	Teams       []tournament.Team
	Diamonds    []tournament.Diamond
	Allocations []tournament.Allocation
	Games       []tournament.Game
	Violations  []tournament.Violation
}

func (wb *Workbook) teamName(id string) string {
	for _, t := range wb.Teams {
		if t.ID == id && t.Name != "" {
			return t.Name
		}
	}
	return id
}

func (wb *Workbook) participant(g tournament.Game, home bool) string {
	id := g.AwayTeamID
	if home {
		id = g.HomeTeamID
	}
	if id != "" {
		return wb.teamName(id)
	}
	return schedule.Participant(g, home)
}

// Generate creates the workbook: master grid, Games, one sheet per team and
// Violations.
func Generate(wb Workbook) (*excelize.File, error) {
	f := excelize.NewFile()

	// Set default font for the workbook
	f.SetDefaultFont("Arial")

	if err := writeMasterSheet(f, &wb); err != nil {
		return nil, errors.Wrap(err, "writing master sheet")
	}
	if err := writeGamesSheet(f, &wb); err != nil {
		return nil, errors.Wrap(err, "writing games sheet")
	}
	if err := writeTeamSheets(f, &wb); err != nil {
		return nil, errors.Wrap(err, "writing team sheets")
	}
	if err := writeViolationsSheet(f, &wb); err != nil {
		return nil, errors.Wrap(err, "writing violations sheet")
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

type styles struct {
	header, cell, centered int
}

func newStyles(f *excelize.File) styles {
	var s styles
	s.header, _ = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	s.cell, _ = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 14, Family: "Arial"},
	})
	s.centered, _ = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 14, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	return s
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}
	if style != 0 {
		f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(headers), 1), style)
	}
}

func writeMasterSheet(f *excelize.File, wb *Workbook) error {
	sheet := MasterSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	st := newStyles(f)

	headers := []string{"Date", "Day", "Time"}
	for _, d := range wb.Diamonds {
		headers = append(headers, d.Label())
	}
	writeHeader(f, sheet, headers, st.header)

	type slotKey struct {
		date    time.Time
		start   clock.Minutes
		diamond string
	}
	games := make(map[slotKey]tournament.Game)
	for _, g := range wb.Games {
		if g.Placed() {
			games[slotKey{tournament.Day(g.Date), g.Start, g.DiamondID}] = g
		}
	}

	// Rows are the placement grid plus any off-grid start a manual edit
	// introduced.
	type row struct {
		date  time.Time
		start clock.Minutes
	}
	rules := wb.Tournament.Rules
	seen := make(map[row]bool)
	var rows []row
	for _, s := range schedule.GenerateSlots(wb.Tournament.Dates(), wb.Diamonds, rules.SlotStep(), rules.GameLength()) {
		r := row{tournament.Day(s.Date), s.Start}
		if !seen[r] {
			seen[r] = true
			rows = append(rows, r)
		}
	}
	for k := range games {
		r := row{k.date, k.start}
		if !seen[r] {
			seen[r] = true
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].date.Equal(rows[j].date) {
			return rows[i].date.Before(rows[j].date)
		}
		return rows[i].start < rows[j].start
	})

	for i, r := range rows {
		n := i + 2
		f.SetCellValue(sheet, cellRef(1, n), r.date.Format("01/02/2006"))
		f.SetCellValue(sheet, cellRef(2, n), r.date.Format("Mon"))
		f.SetCellValue(sheet, cellRef(3, n), r.start.String())

		for di, d := range wb.Diamonds {
			col := di + 4
			if g, ok := games[slotKey{r.date, r.start, d.ID}]; ok {
				f.SetCellValue(sheet, cellRef(col, n), fmt.Sprintf("%s @ %s", wb.participant(g, false), wb.participant(g, true)))
				continue
			}
			if reason, ok := allocationAt(wb.Allocations, d.ID, r.date, r.start); ok {
				f.SetCellValue(sheet, cellRef(col, n), reason)
			}
		}

		if st.cell != 0 {
			f.SetCellStyle(sheet, cellRef(1, n), cellRef(3, n), st.cell)
			f.SetCellStyle(sheet, cellRef(4, n), cellRef(len(headers), n), st.centered)
		}
	}

	f.SetColWidth(sheet, "A", "A", 16)
	f.SetColWidth(sheet, "B", "B", 8)
	f.SetColWidth(sheet, "C", "C", 10)
	for i := range wb.Diamonds {
		col := colLetter(i + 4)
		f.SetColWidth(sheet, col, col, 30)
	}

	// Non-game cells in diamond columns are reservations; shade them.
	if len(rows) > 0 && len(wb.Diamonds) > 0 {
		redFill, _ := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
			Font: &excelize.Font{Size: 14, Family: "Arial"},
		})
		lastRow := len(rows) + 1
		for i := range wb.Diamonds {
			col := colLetter(i + 4)
			top := fmt.Sprintf("%s2", col)
			f.SetConditionalFormat(sheet, fmt.Sprintf("%s2:%s%d", col, col, lastRow), []excelize.ConditionalFormatOptions{
				{
					Type:     "formula",
					Criteria: fmt.Sprintf(`AND(%s<>"",ISERROR(FIND(" @ ",%s)))`, top, top),
					Format:   &redFill,
				},
			})
		}
	}
	return nil
}

func allocationAt(allocations []tournament.Allocation, diamondID string, date time.Time, start clock.Minutes) (string, bool) {
	for _, a := range allocations {
		if a.DiamondID != diamondID || !tournament.Day(a.Date).Equal(date) {
			continue
		}
		if start >= a.Start && start < a.End {
			reason := a.Reason
			if reason == "" {
				reason = "Reserved"
			}
			if a.DivisionID != "" {
				reason += " (" + a.DivisionID + ")"
			}
			return reason, true
		}
	}
	return "", false
}

func writeGamesSheet(f *excelize.File, wb *Workbook) error {
	sheet := GamesSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	st := newStyles(f)
	writeHeader(f, sheet, gamesHeaders, st.header)

	games := make([]tournament.Game, len(wb.Games))
	copy(games, wb.Games)
	sort.SliceStable(games, func(i, j int) bool { return games[i].Number < games[j].Number })

	for i, g := range games {
		n := i + 2
		values := []any{
			g.ID, g.Number, "", "", g.Duration(), g.DiamondID,
			g.HomeTeamID, g.AwayTeamID, g.PoolID, g.DivisionID, "", "",
			tournament.EncodeSource(g.HomeSource), tournament.EncodeSource(g.AwaySource),
		}
		if g.Placed() {
			values[2] = g.Date.Format(tournament.DateLayout)
			values[3] = g.Start.String()
		}
		if g.IsPlayoff {
			values[10] = "yes"
			values[11] = g.Round
		}
		if err := f.SetSheetRow(sheet, cellRef(1, n), &values); err != nil {
			return err
		}
	}
	f.SetColWidth(sheet, "A", "A", 38)
	return nil
}

func writeTeamSheets(f *excelize.File, wb *Workbook) error {
	st := newStyles(f)
	used := map[string]bool{
		strings.ToLower(MasterSheet):     true,
		strings.ToLower(GamesSheet):      true,
		strings.ToLower(ViolationsSheet): true,
	}

	for _, team := range wb.Teams {
		sheet := sheetName(wb.teamName(team.ID), used)
		if _, err := f.NewSheet(sheet); err != nil {
			return errors.Wrapf(err, "sheet for %s", team.ID)
		}

		headers := []string{"Date", "Day", "Time", "Diamond", "Opponent", "Home/Away", "Game"}
		writeHeader(f, sheet, headers, st.header)

		var games []tournament.Game
		for _, g := range wb.Games {
			if g.Placed() && g.Involves(team.ID) {
				games = append(games, g)
			}
		}
		sort.Slice(games, func(i, j int) bool {
			if !games[i].Date.Equal(games[j].Date) {
				return games[i].Date.Before(games[j].Date)
			}
			return games[i].Start < games[j].Start
		})

		for i, g := range games {
			n := i + 2
			home := g.HomeTeamID == team.ID
			homeAway := "Away"
			if home {
				homeAway = "Home"
			}
			values := []any{
				g.Date.Format("01/02/2006"),
				g.Date.Format("Mon"),
				g.Start.String(),
				diamondLabel(wb.Diamonds, g.DiamondID),
				wb.participant(g, !home),
				homeAway,
				fmt.Sprintf("Game %d", g.Number),
			}
			f.SetSheetRow(sheet, cellRef(1, n), &values)
			if st.cell != 0 {
				f.SetCellStyle(sheet, cellRef(1, n), cellRef(len(headers), n), st.cell)
			}
		}

		widths := map[string]float64{"A": 16, "B": 8, "C": 10, "D": 24, "E": 20, "F": 12, "G": 12}
		for col, w := range widths {
			f.SetColWidth(sheet, col, col, w)
		}
	}
	return nil
}

func writeViolationsSheet(f *excelize.File, wb *Workbook) error {
	sheet := ViolationsSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	st := newStyles(f)
	writeHeader(f, sheet, []string{"Severity", "Game", "Team", "Message"}, st.header)

	number := make(map[string]int, len(wb.Games))
	for _, g := range wb.Games {
		number[g.ID] = g.Number
	}
	for i, v := range wb.Violations {
		game := ""
		if n, ok := number[v.GameID]; ok {
			game = fmt.Sprintf("Game %d", n)
		}
		team := ""
		if v.TeamID != "" {
			team = wb.teamName(v.TeamID)
		}
		values := []any{string(v.Severity), game, team, v.Message}
		f.SetSheetRow(sheet, cellRef(1, i+2), &values)
	}
	f.SetColWidth(sheet, "D", "D", 80)
	return nil
}

// ReadGames opens a workbook and parses its Games sheet.
func ReadGames(path string) ([]tournament.Game, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	return GamesFrom(f)
}

// GamesFrom parses the Games sheet of an open workbook. Blank date and start
// cells mean the game is unplaced.
func GamesFrom(f *excelize.File) ([]tournament.Game, error) {
	rows, err := f.GetRows(GamesSheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s sheet", GamesSheet)
	}
	if len(rows) == 0 {
		return nil, errors.Newf("%s sheet is empty", GamesSheet)
	}

	var games []tournament.Game
	for i, row := range rows[1:] {
		line := i + 2
		cell := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}
		if cell(0) == "" {
			continue
		}

		g := tournament.Game{
			ID:         cell(0),
			DiamondID:  cell(5),
			HomeTeamID: cell(6),
			AwayTeamID: cell(7),
			PoolID:     cell(8),
			DivisionID: cell(9),
			IsPlayoff:  strings.EqualFold(cell(10), "yes"),
		}
		if g.Number, err = atoi(cell(1)); err != nil {
			return nil, errors.Wrapf(err, "row %d: game number", line)
		}
		if g.DurationMinutes, err = atoi(cell(4)); err != nil {
			return nil, errors.Wrapf(err, "row %d: minutes", line)
		}
		if g.Round, err = atoi(cell(11)); err != nil {
			return nil, errors.Wrapf(err, "row %d: round", line)
		}
		if s := cell(2); s != "" {
			if g.Date, err = tournament.ParseDate(s); err != nil {
				return nil, errors.Wrapf(err, "row %d: date", line)
			}
		}
		if s := cell(3); s != "" {
			if g.Start, err = clock.Parse(s); err != nil {
				return nil, errors.Wrapf(err, "row %d: start", line)
			}
		}
		if g.HomeSource, err = tournament.DecodeSource(cell(12)); err != nil {
			return nil, errors.Wrapf(err, "row %d: home source", line)
		}
		if g.AwaySource, err = tournament.DecodeSource(cell(13)); err != nil {
			return nil, errors.Wrapf(err, "row %d: away source", line)
		}
		games = append(games, g)
	}
	return games, nil
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func diamondLabel(diamonds []tournament.Diamond, id string) string {
	for _, d := range diamonds {
		if d.ID == id {
			return d.Label()
		}
	}
	return id
}

// sheetName makes name a unique, legal sheet name. Sheet names compare
// case-insensitively, so used is keyed by lower case.
func sheetName(name string, used map[string]bool) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, name)
	if len([]rune(name)) > 31 {
		name = string([]rune(name)[:31])
	}
	base := name
	for i := 2; used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		name = string([]rune(base)[:min(len([]rune(base)), 31-len(suffix))]) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
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
