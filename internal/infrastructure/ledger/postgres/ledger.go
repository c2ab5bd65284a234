package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cueleague/snooker-scores/internal/domain/snooker"
	qb "github.com/cueleague/snooker-scores/internal/platform/querybuilder"
)

const (
	playersTable  = "league_players"
	roundsTable   = "league_rounds"
	fixturesTable = "league_fixtures"
	breaksTable   = "league_breaks"
)

// fixtureColumns maps ledger field names to their SQL columns. Callers
// address fixture cells by the sheet header names; the table keeps its own.
var fixtureColumns = map[string]string{
	snooker.ColumnID:           "match_id",
	snooker.ColumnRound:        "round",
	snooker.ColumnGroup:        "group_name",
	snooker.ColumnPlayer1:      "player1_name",
	snooker.ColumnPlayer2:      "player2_name",
	snooker.ColumnDate:         "played_on",
	snooker.ColumnPlayer1Score: "player1_score",
	snooker.ColumnPlayer2Score: "player2_score",
	snooker.ColumnWinner:       "winner_name",
	snooker.ColumnLog:          "report_log",
}

type Config struct {
	// Format applies to every fixture read from the table; the schema itself
	// does not carry one.
	Format snooker.Format
	// Location is the league's wall clock. Match dates are stored and read as
	// calendar days in it.
	Location *time.Location
	Now      func() time.Time
}

// Ledger keeps the league in Postgres: roster, rounds calendar, fixtures and
// the break log each in their own table. Rows are soft-deleted, reads only
// see rows whose deleted_at is null.
type Ledger struct {
	db     *sqlx.DB
	format snooker.Format
	loc    *time.Location
	now    func() time.Time
}

func NewLedger(db *sqlx.DB, cfg Config) *Ledger {
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
		db:     db,
		format: format,
		loc:    loc,
		now:    now,
	}
}

func (l *Ledger) GetCurrentPlayers(ctx context.Context) ([]snooker.Player, error) {
	query, args, err := qb.Select("*").From(playersTable).
		Where(qb.IsNull("deleted_at")).
		OrderBy("group_name", "name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerTableModel
	if err := l.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	players := make([]snooker.Player, 0, len(rows))
	for _, row := range rows {
		players = append(players, snooker.Player{Name: row.Name, Group: row.GroupName})
	}
	return players, nil
}

func (l *Ledger) CurrentRound(ctx context.Context) (int, error) {
	query, args, err := qb.Select("*").From(roundsTable).
		Where(qb.IsNull("deleted_at")).
		OrderBy("round").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build select rounds query: %w", err)
	}

	var rows []roundTableModel
	if err := l.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return 0, fmt.Errorf("select rounds: %w", err)
	}

	windows := make([]snooker.RoundWindow, 0, len(rows))
	for _, row := range rows {
		window := snooker.RoundWindow{Round: row.Round, Start: l.dayInLocation(row.StartsOn)}
		if row.EndsOn.Valid {
			window.End = l.dayInLocation(row.EndsOn.Time)
		}
		windows = append(windows, window)
	}
	return snooker.CurrentRoundAt(windows, l.now().In(l.loc)), nil
}

func (l *Ledger) GetFixturesForRound(ctx context.Context, round int) ([]snooker.Match, error) {
	query, args, err := qb.Select("*").From(fixturesTable).
		Where(
			qb.Eq("round", round),
			qb.IsNull("deleted_at"),
		).
		OrderBy("group_name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixtures by round query: %w", err)
	}

	var rows []fixtureTableModel
	if err := l.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixtures by round: %w", err)
	}

	matches := make([]snooker.Match, 0, len(rows))
	for _, row := range rows {
		m, err := l.match(row)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (l *Ledger) GetFixtureByID(ctx context.Context, matchID string) (snooker.Match, error) {
	query, args, err := qb.Select("*").From(fixturesTable).
		Where(
			qb.Eq("match_id", matchID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return snooker.Match{}, fmt.Errorf("build select fixture by id query: %w", err)
	}

	var row fixtureTableModel
	if err := l.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return snooker.Match{}, fmt.Errorf("%w: %s", snooker.ErrMatchNotFound, matchID)
		}
		return snooker.Match{}, fmt.Errorf("select fixture by id: %w", err)
	}
	return l.match(row)
}

func (l *Ledger) AppendFixtureRows(ctx context.Context, matches []snooker.Match) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx append fixtures: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, m := range matches {
		insertModel := fixtureInsertModel{
			MatchID:     m.ID,
			Round:       m.Round,
			GroupName:   m.Group,
			Player1Name: m.Player1.Name,
			Player2Name: m.Player2.Name,
		}
		query, args, err := qb.InsertModel(fixturesTable, insertModel)
		if err != nil {
			return fmt.Errorf("build insert fixture query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert fixture %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append fixtures: %w", err)
	}
	return nil
}

func (l *Ledger) AppendBreakRow(ctx context.Context, rec snooker.BreakRecord) error {
	insertModel := breakInsertModel{
		RecordedAt: l.now(),
		Source:     rec.Source,
		ReportLog:  rec.Passage,
		PlayerName: rec.Break.Player.Name,
		Points:     rec.Break.Points,
		PlayedOn:   l.nullDay(rec.Date),
		Round:      rec.Round,
	}
	query, args, err := qb.InsertModel(breaksTable, insertModel)
	if err != nil {
		return fmt.Errorf("build insert break query: %w", err)
	}
	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert break row: %w", err)
	}
	return nil
}

func (l *Ledger) UpdateFixtureRow(ctx context.Context, matchID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	// Assignments go into the statement in field-name order, so two writes
	// of the same fields produce the same SQL.
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	update := qb.Update(fixturesTable)
	for _, name := range names {
		column, ok := fixtureColumns[name]
		if !ok {
			return fmt.Errorf("fixtures table has no %q column", name)
		}
		update = update.Set(column, l.encodeField(fields[name]))
	}

	query, args, err := update.
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("match_id", matchID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update fixture query: %w", err)
	}

	result, err := l.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update fixture %s: %w", matchID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update fixture %s: %w", matchID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", snooker.ErrMatchNotFound, matchID)
	}
	return nil
}

// match decodes one fixture row. Outcome presence is decided by the score
// columns: both set means completed, both null means unplayed, anything else
// is a corrupt row.
func (l *Ledger) match(row fixtureTableModel) (snooker.Match, error) {
	var outcome *snooker.Outcome
	switch {
	case !row.Player1Score.Valid && !row.Player2Score.Valid:
		outcome = nil
	case row.Player1Score.Valid && row.Player2Score.Valid:
		var date time.Time
		if row.PlayedOn.Valid {
			date = l.dayInLocation(row.PlayedOn.Time)
		}
		o := snooker.NewOutcome(date, int(row.Player1Score.Int64), int(row.Player2Score.Int64), nil)
		outcome = &o
	default:
		return snooker.Match{}, fmt.Errorf("fixture %s: half-filled scoreline", row.MatchID)
	}

	m, err := snooker.RehydrateMatch(row.MatchID, row.Round, row.GroupName,
		snooker.Player{Name: row.Player1Name, Group: row.GroupName},
		snooker.Player{Name: row.Player2Name, Group: row.GroupName},
		l.format, outcome)
	if err != nil {
		return snooker.Match{}, fmt.Errorf("fixture %s: %w", row.MatchID, err)
	}
	return m, nil
}

// encodeField normalizes values for their column types. Timestamps land in
// DATE columns, so they are reduced to the calendar day first.
func (l *Ledger) encodeField(value any) any {
	if t, ok := value.(time.Time); ok {
		return l.day(t)
	}
	return value
}

// day reduces an instant to its calendar day on the league's wall clock,
// anchored at UTC midnight the way the driver writes DATE values.
func (l *Ledger) day(t time.Time) time.Time {
	local := t.In(l.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func (l *Ledger) nullDay(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: l.day(t), Valid: true}
}

// dayInLocation re-anchors a DATE value, scanned at UTC midnight, to the
// league's wall clock.
func (l *Ledger) dayInLocation(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, l.loc)
}
