package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cueleague/snooker-scores/internal/domain/snooker"
)

// Spreadsheet day-serial epoch. Day 1 is 1899-12-31, which puts day 0 on
// 1899-12-30 and absorbs the spreadsheet world's 1900 leap-year bug.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const (
	roundDateLayout = "02.01.2006"
	timestampLayout = "2006-01-02 15:04:05"
)

func serialFromTime(t time.Time, loc *time.Location) int {
	local := t.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return int(day.Sub(serialEpoch) / (24 * time.Hour))
}

func timeFromSerial(serial float64, loc *time.Location) time.Time {
	day := serialEpoch.AddDate(0, 0, int(serial))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
}

// columnLetter converts a zero-based column index to its A1 letters.
func columnLetter(index int) string {
	letters := make([]byte, 0, 2)
	for index >= 0 {
		letters = append([]byte{byte('A' + index%26)}, letters...)
		index = index/26 - 1
	}
	return string(letters)
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

// fixtureTable is one read of the fixtures sheet: the header row and the data
// rows under it. Column positions are resolved by header name so the sheet
// can gain or reorder columns without breaking the codec.
type fixtureTable struct {
	headers []string
	rows    [][]string
}

func newFixtureTable(values [][]string) (fixtureTable, error) {
	if len(values) == 0 {
		return fixtureTable{}, fmt.Errorf("fixtures sheet has no header row")
	}
	headers := make([]string, len(values[0]))
	for i, h := range values[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return fixtureTable{headers: headers, rows: values[1:]}, nil
}

func (t fixtureTable) column(name string) (int, bool) {
	for i, h := range t.headers {
		if h == name {
			return i, true
		}
	}
	return 0, false
}

func (t fixtureTable) mustColumn(name string) (int, error) {
	index, ok := t.column(name)
	if !ok {
		return 0, fmt.Errorf("fixtures sheet has no %q column", name)
	}
	return index, nil
}

// sheetRow returns the 1-based spreadsheet row number of data row i, offset
// past the header row.
func (t fixtureTable) sheetRow(i int) int {
	return i + 2
}

// match decodes data row i. Outcome presence is decided by the score cells:
// both filled means completed, both blank means unplayed, anything else is a
// corrupt row.
func (t fixtureTable) match(i int, format snooker.Format, loc *time.Location) (snooker.Match, error) {
	row := t.rows[i]

	get := func(name string) (string, error) {
		index, err := t.mustColumn(name)
		if err != nil {
			return "", err
		}
		return cell(row, index), nil
	}

	id, err := get(snooker.ColumnID)
	if err != nil {
		return snooker.Match{}, err
	}
	roundText, err := get(snooker.ColumnRound)
	if err != nil {
		return snooker.Match{}, err
	}
	round, err := strconv.Atoi(roundText)
	if err != nil {
		return snooker.Match{}, fmt.Errorf("row %d: parse round %q: %w", t.sheetRow(i), roundText, err)
	}
	group, err := get(snooker.ColumnGroup)
	if err != nil {
		return snooker.Match{}, err
	}
	player1, err := get(snooker.ColumnPlayer1)
	if err != nil {
		return snooker.Match{}, err
	}
	player2, err := get(snooker.ColumnPlayer2)
	if err != nil {
		return snooker.Match{}, err
	}

	score1, err := get(snooker.ColumnPlayer1Score)
	if err != nil {
		return snooker.Match{}, err
	}
	score2, err := get(snooker.ColumnPlayer2Score)
	if err != nil {
		return snooker.Match{}, err
	}

	var outcome *snooker.Outcome
	switch {
	case score1 == "" && score2 == "":
		outcome = nil
	case score1 != "" && score2 != "":
		p1, err := strconv.Atoi(score1)
		if err != nil {
			return snooker.Match{}, fmt.Errorf("row %d: parse player1 score %q: %w", t.sheetRow(i), score1, err)
		}
		p2, err := strconv.Atoi(score2)
		if err != nil {
			return snooker.Match{}, fmt.Errorf("row %d: parse player2 score %q: %w", t.sheetRow(i), score2, err)
		}
		dateText, err := get(snooker.ColumnDate)
		if err != nil {
			return snooker.Match{}, err
		}
		var date time.Time
		if dateText != "" {
			serial, err := strconv.ParseFloat(dateText, 64)
			if err != nil {
				return snooker.Match{}, fmt.Errorf("row %d: parse date serial %q: %w", t.sheetRow(i), dateText, err)
			}
			date = timeFromSerial(serial, loc)
		}
		o := snooker.NewOutcome(date, p1, p2, nil)
		outcome = &o
	default:
		return snooker.Match{}, fmt.Errorf("row %d: half-filled scoreline %q-%q", t.sheetRow(i), score1, score2)
	}

	m, err := snooker.RehydrateMatch(id, round, group,
		snooker.Player{Name: player1, Group: group},
		snooker.Player{Name: player2, Group: group},
		format, outcome)
	if err != nil {
		return snooker.Match{}, fmt.Errorf("row %d: %w", t.sheetRow(i), err)
	}
	return m, nil
}

// fixtureAppendRow lays out a new fixture in header order with the result
// columns left blank.
func fixtureAppendRow(t fixtureTable, m snooker.Match) ([]any, error) {
	row := make([]any, len(t.headers))
	for i := range row {
		row[i] = ""
	}

	set := func(name string, value any) error {
		index, err := t.mustColumn(name)
		if err != nil {
			return err
		}
		row[index] = value
		return nil
	}

	if err := set(snooker.ColumnID, m.ID); err != nil {
		return nil, err
	}
	if err := set(snooker.ColumnRound, m.Round); err != nil {
		return nil, err
	}
	if err := set(snooker.ColumnGroup, m.Group); err != nil {
		return nil, err
	}
	if err := set(snooker.ColumnPlayer1, m.Player1.Name); err != nil {
		return nil, err
	}
	if err := set(snooker.ColumnPlayer2, m.Player2.Name); err != nil {
		return nil, err
	}
	return row, nil
}

func parseRoundWindows(rows [][]string) ([]snooker.RoundWindow, error) {
	windows := make([]snooker.RoundWindow, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 || cell(row, 0) == "" {
			continue
		}
		round, err := strconv.Atoi(cell(row, 0))
		if err != nil {
			return nil, fmt.Errorf("rounds row %d: parse round %q: %w", i+1, cell(row, 0), err)
		}
		start, err := time.Parse(roundDateLayout, cell(row, 1))
		if err != nil {
			return nil, fmt.Errorf("rounds row %d: parse start %q: %w", i+1, cell(row, 1), err)
		}
		window := snooker.RoundWindow{Round: round, Start: start}
		if endText := cell(row, 2); endText != "" {
			end, err := time.Parse(roundDateLayout, endText)
			if err != nil {
				return nil, fmt.Errorf("rounds row %d: parse end %q: %w", i+1, endText, err)
			}
			window.End = end
		}
		windows = append(windows, window)
	}
	return windows, nil
}

func parsePlayers(rows [][]string) []snooker.Player {
	players := make([]snooker.Player, 0, len(rows))
	for _, row := range rows {
		name := cell(row, 0)
		if name == "" {
			continue
		}
		players = append(players, snooker.Player{Name: name, Group: cell(row, 1)})
	}
	return players
}
