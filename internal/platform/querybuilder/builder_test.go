package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("*").
		From("league_fixtures").
		Where(Eq("round", 2), IsNull("deleted_at")).
		OrderBy("group_name", "id").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT * FROM league_fixtures WHERE round = $1 AND deleted_at IS NULL ORDER BY group_name, id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderRequiresShape(t *testing.T) {
	if _, _, err := Select().From("league_players").ToSQL(); err == nil {
		t.Fatal("expected an error without columns")
	}
	if _, _, err := Select("*").ToSQL(); err == nil {
		t.Fatal("expected an error without a table")
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("league_breaks").
		Columns("player_name", "points").
		Values("Virtanen Aatos", 65).
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO league_breaks (player_name, points) VALUES ($1, $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "Virtanen Aatos" || args[1] != 65 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderValueCountMustMatch(t *testing.T) {
	_, _, err := InsertInto("league_breaks").
		Columns("player_name", "points").
		Values("Virtanen Aatos").
		ToSQL()
	if err == nil {
		t.Fatal("expected an error for a short value row")
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("league_fixtures").
		Set("winner_name", "Virtanen Aatos").
		SetExpr("updated_at", "NOW()").
		Where(Eq("match_id", "kx7p2"), IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE league_fixtures SET winner_name = $1, updated_at = NOW() WHERE match_id = $2 AND deleted_at IS NULL"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "Virtanen Aatos" || args[1] != "kx7p2" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilderSetExprBindsArgs(t *testing.T) {
	query, args, err := Update("league_fixtures").
		SetExpr("report_log", "left(?, 500)", "a long passage").
		Where(Eq("match_id", "kx7p2")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE league_fixtures SET report_log = left($1, 500) WHERE match_id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "a long passage" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type breakRow struct {
		PlayerName string `db:"player_name"`
		Points     int    `db:"points"`
		Skipped    string `db:"-"`
		Untagged   string
	}

	query, args, err := InsertModel("league_breaks", &breakRow{PlayerName: "Virtanen Aatos", Points: 65})
	if err != nil {
		t.Fatalf("build insert from model: %v", err)
	}

	wantQuery := "INSERT INTO league_breaks (player_name, points) VALUES ($1, $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "Virtanen Aatos" || args[1] != 65 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModelRejectsNonStructs(t *testing.T) {
	if _, _, err := InsertModel("league_breaks", 42); err == nil {
		t.Fatal("expected an error for a non-struct model")
	}
	var row *struct {
		ID string `db:"id"`
	}
	if _, _, err := InsertModel("league_breaks", row); err == nil {
		t.Fatal("expected an error for a nil model")
	}
	if _, _, err := InsertModel("league_breaks", struct{ Name string }{}); err == nil {
		t.Fatal("expected an error for a model without db tags")
	}
}
