package postgres

import (
	"database/sql"
	"time"
)

type playerTableModel struct {
	ID        int64      `db:"id"`
	Name      string     `db:"name"`
	GroupName string     `db:"group_name"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type roundTableModel struct {
	ID        int64        `db:"id"`
	Round     int          `db:"round"`
	StartsOn  time.Time    `db:"starts_on"`
	EndsOn    sql.NullTime `db:"ends_on"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
	DeletedAt *time.Time   `db:"deleted_at"`
}

type fixtureTableModel struct {
	ID           int64          `db:"id"`
	MatchID      string         `db:"match_id"`
	Round        int            `db:"round"`
	GroupName    string         `db:"group_name"`
	Player1Name  string         `db:"player1_name"`
	Player2Name  string         `db:"player2_name"`
	PlayedOn     sql.NullTime   `db:"played_on"`
	Player1Score sql.NullInt64  `db:"player1_score"`
	Player2Score sql.NullInt64  `db:"player2_score"`
	WinnerName   sql.NullString `db:"winner_name"`
	ReportLog    sql.NullString `db:"report_log"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	DeletedAt    *time.Time     `db:"deleted_at"`
}

type fixtureInsertModel struct {
	MatchID     string `db:"match_id"`
	Round       int    `db:"round"`
	GroupName   string `db:"group_name"`
	Player1Name string `db:"player1_name"`
	Player2Name string `db:"player2_name"`
}

type breakInsertModel struct {
	RecordedAt time.Time    `db:"recorded_at"`
	Source     string       `db:"source"`
	ReportLog  string       `db:"report_log"`
	PlayerName string       `db:"player_name"`
	Points     int          `db:"points"`
	PlayedOn   sql.NullTime `db:"played_on"`
	Round      int          `db:"round"`
}
