package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "external_id").
		From("contests").
		Where(Eq("season", 2026), Eq("week", 3), IsNull("deleted_at")).
		OrderBy("scheduled_at", "id").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, external_id FROM contests WHERE season = $1 AND week = $2 AND deleted_at IS NULL ORDER BY scheduled_at, id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != 2026 || args[1] != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_InCondition(t *testing.T) {
	query, args, err := Select("id").
		From("picks").
		Where(In("contest_id", []any{int64(7), int64(9)})).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM picks WHERE contest_id IN ($1, $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EmptyInNeverMatches(t *testing.T) {
	query, _, err := Select("id").
		From("picks").
		Where(In("contest_id", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM picks WHERE 1=0"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("picks").
		Set("confidence", nil).
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", int64(12))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE picks SET confidence = $1, updated_at = NOW() WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != nil || args[1] != int64(12) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder_SetExprBindsArgs(t *testing.T) {
	query, args, err := Update("picks").
		SetExpr("points", "GREATEST(points, ?)", 0).
		Where(Eq("id", int64(3))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE picks SET points = GREATEST(points, $1) WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestBuilderValidation(t *testing.T) {
	if _, _, err := Select().From("contests").ToSQL(); err == nil {
		t.Fatal("expected error for select without columns")
	}
	if _, _, err := Select("id").ToSQL(); err == nil {
		t.Fatal("expected error for select without table")
	}
	if _, _, err := Update("picks").ToSQL(); err == nil {
		t.Fatal("expected error for update without sets")
	}
}
