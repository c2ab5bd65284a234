package sheets

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cueleague/snooker-scores/internal/domain/snooker"
)

// ValuesAPI is the slice of the spreadsheet values API the ledger needs.
// *gsheets.Client satisfies it.
type ValuesAPI interface {
	GetRange(ctx context.Context, rangeA1 string) ([][]string, error)
	AppendRows(ctx context.Context, rangeA1 string, rows [][]any) error
	UpdateRange(ctx context.Context, rangeA1 string, rows [][]any) error
}

type Config struct {
	// FixturesSheet and BreaksSheet are worksheet titles; PlayersRange and
	// RoundsRange are named ranges defined on the spreadsheet.
	FixturesSheet string
	BreaksSheet   string
	PlayersRange  string
	RoundsRange   string
	// Format applies to every fixture read from the sheet; the sheet itself
	// does not carry one.
	Format snooker.Format
	// Location is the league's wall clock. Day serials and break timestamps
	// are rendered in it.
	Location *time.Location
	Now      func() time.Time
}

// Ledger keeps the league on a spreadsheet: roster and rounds calendar in
// named ranges, fixtures and breaks in worksheets. Fixture rows are updated
// cell by cell, addressed by column header name.
type Ledger struct {
	api      ValuesAPI
	fixtures string
	breaks   string
	players  string
	rounds   string
	format   snooker.Format
	loc      *time.Location
	now      func() time.Time
}

func NewLedger(api ValuesAPI, cfg Config) *Ledger {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	format := cfg.Format
	if format.BestOf == 0 {
		format = snooker.LeagueFormat
	}
	return &Ledger{
		api:      api,
		fixtures: withDefault(cfg.FixturesSheet, "fixtures"),
		breaks:   withDefault(cfg.BreaksSheet, "breaks"),
		players:  withDefault(cfg.PlayersRange, "nr_currentPlayers"),
		rounds:   withDefault(cfg.RoundsRange, "nr_rounds"),
		format:   format,
		loc:      loc,
		now:      now,
	}
}

func withDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

func (l *Ledger) GetCurrentPlayers(ctx context.Context) ([]snooker.Player, error) {
	rows, err := l.api.GetRange(ctx, l.players)
	if err != nil {
		return nil, fmt.Errorf("read players range %s: %w", l.players, err)
	}
	return parsePlayers(rows), nil
}

func (l *Ledger) CurrentRound(ctx context.Context) (int, error) {
	rows, err := l.api.GetRange(ctx, l.rounds)
	if err != nil {
		return 0, fmt.Errorf("read rounds range %s: %w", l.rounds, err)
	}
	windows, err := parseRoundWindows(rows)
	if err != nil {
		return 0, err
	}
	return snooker.CurrentRoundAt(windows, l.now().In(l.loc)), nil
}

func (l *Ledger) GetFixturesForRound(ctx context.Context, round int) ([]snooker.Match, error) {
	table, err := l.readFixtureTable(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]snooker.Match, 0, len(table.rows))
	for i := range table.rows {
		m, err := table.match(i, l.format, l.loc)
		if err != nil {
			return nil, err
		}
		if m.Round == round {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

func (l *Ledger) GetFixtureByID(ctx context.Context, matchID string) (snooker.Match, error) {
	table, err := l.readFixtureTable(ctx)
	if err != nil {
		return snooker.Match{}, err
	}

	i, err := l.findFixtureRow(table, matchID)
	if err != nil {
		return snooker.Match{}, err
	}
	return table.match(i, l.format, l.loc)
}

func (l *Ledger) AppendFixtureRows(ctx context.Context, matches []snooker.Match) error {
	if len(matches) == 0 {
		return nil
	}
	table, err := l.readFixtureTable(ctx)
	if err != nil {
		return err
	}

	rows := make([][]any, 0, len(matches))
	for _, m := range matches {
		row, err := fixtureAppendRow(table, m)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	if err := l.api.AppendRows(ctx, l.fixtures, rows); err != nil {
		return fmt.Errorf("append %d fixture rows: %w", len(rows), err)
	}
	return nil
}

func (l *Ledger) AppendBreakRow(ctx context.Context, rec snooker.BreakRecord) error {
	row := []any{
		l.now().In(l.loc).Format(timestampLayout),
		rec.Source,
		rec.Passage,
		rec.Break.Player.Name,
		rec.Break.Points,
		serialFromTime(rec.Date, l.loc),
		rec.Round,
	}
	if err := l.api.AppendRows(ctx, l.breaks, [][]any{row}); err != nil {
		return fmt.Errorf("append break row: %w", err)
	}
	return nil
}

func (l *Ledger) UpdateFixtureRow(ctx context.Context, matchID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	table, err := l.readFixtureTable(ctx)
	if err != nil {
		return err
	}
	i, err := l.findFixtureRow(table, matchID)
	if err != nil {
		return err
	}
	rowNumber := table.sheetRow(i)

	// Cells go out one by one in column-name order, so two writes of the
	// same fields touch the sheet in the same sequence.
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		column, err := table.mustColumn(name)
		if err != nil {
			return err
		}
		cellRange := fmt.Sprintf("%s!%s%d", l.fixtures, columnLetter(column), rowNumber)
		if err := l.api.UpdateRange(ctx, cellRange, [][]any{{l.encodeCell(fields[name])}}); err != nil {
			return fmt.Errorf("update %s for match %s: %w", cellRange, matchID, err)
		}
	}
	return nil
}

func (l *Ledger) readFixtureTable(ctx context.Context) (fixtureTable, error) {
	values, err := l.api.GetRange(ctx, l.fixtures)
	if err != nil {
		return fixtureTable{}, fmt.Errorf("read fixtures sheet %s: %w", l.fixtures, err)
	}
	return newFixtureTable(values)
}

func (l *Ledger) findFixtureRow(table fixtureTable, matchID string) (int, error) {
	idColumn, err := table.mustColumn(snooker.ColumnID)
	if err != nil {
		return 0, err
	}
	for i, row := range table.rows {
		if cell(row, idColumn) == matchID {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", snooker.ErrMatchNotFound, matchID)
}

func (l *Ledger) encodeCell(value any) any {
	if t, ok := value.(time.Time); ok {
		return serialFromTime(t, l.loc)
	}
	return value
}
