package plan

import (
	"errors"
	"strings"
	"testing"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
	"github.com/pgdelta/pgdelta/internal/render"
)

func mustScript(t *testing.T, changes []change.Change) string {
	t.Helper()
	p, err := New(changes)
	if err != nil {
		t.Fatalf("Failed to build plan: %v", err)
	}
	script, err := p.Script(render.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("Failed to render script: %v", err)
	}
	return script
}

func statementIndex(t *testing.T, script, needle string) int {
	t.Helper()
	i := strings.Index(script, needle)
	if i < 0 {
		t.Fatalf("statement %q missing from script:\n%s", needle, script)
	}
	return i
}

func table(schema, name string, deps ...string) *catalog.Table {
	return &catalog.Table{
		Schema:       schema,
		Name:         name,
		Columns:      []*catalog.Column{{Name: "id", DataType: "bigint"}},
		Dependencies: deps,
	}
}

func foreignKey(schema, tbl, name, refTable string) *catalog.Constraint {
	return &catalog.Constraint{
		Schema: schema, Table: tbl, Name: name,
		Type:              catalog.ConstraintTypeForeignKey,
		Columns:           []string{"id"},
		ReferencedSchema:  schema,
		ReferencedTable:   refTable,
		ReferencedColumns: []string{"id"},
		Validated:         true,
	}
}

func TestPlanOrdersCreatesByRequirement(t *testing.T) {
	tbl := table("app", "users")
	idx := &catalog.Index{
		Schema: "app", Table: "users", Name: "users_id_idx",
		Method:  "btree",
		Columns: []catalog.IndexColumn{{Expression: "id"}},
	}
	// Deliberately reversed input.
	script := mustScript(t, []change.Change{
		&change.CreateIndex{Index: idx},
		&change.CreateTable{Table: tbl},
		&change.CreateSchema{Schema: &catalog.Schema{Name: "app"}},
	})

	schemaAt := statementIndex(t, script, "CREATE SCHEMA app")
	tableAt := statementIndex(t, script, "CREATE TABLE app.users")
	indexAt := statementIndex(t, script, "CREATE INDEX users_id_idx")
	if !(schemaAt < tableAt && tableAt < indexAt) {
		t.Errorf("wrong order:\n%s", script)
	}
}

func TestPlanDropRunsBeforeRecreate(t *testing.T) {
	old := &catalog.Index{
		Schema: "public", Table: "t", Name: "t_v_idx",
		Method:  "btree",
		Columns: []catalog.IndexColumn{{Expression: "v"}},
	}
	new := &catalog.Index{
		Schema: "public", Table: "t", Name: "t_v_idx",
		Method:  "hash",
		Columns: []catalog.IndexColumn{{Expression: "v"}},
	}
	script := mustScript(t, []change.Change{
		&change.CreateIndex{Index: new},
		&change.DropIndex{Index: old},
	})

	dropAt := statementIndex(t, script, "DROP INDEX public.t_v_idx")
	createAt := statementIndex(t, script, "CREATE INDEX t_v_idx")
	if dropAt > createAt {
		t.Errorf("replacement must drop first:\n%s", script)
	}
}

func TestPlanRequirementHeldUntilDrop(t *testing.T) {
	tbl := table("public", "old_data")
	idx := &catalog.Index{
		Schema: "public", Table: "old_data", Name: "old_data_idx",
		Method:  "btree",
		Columns: []catalog.IndexColumn{{Expression: "id"}},
	}
	// The tie-break alone would put the table drop first; the dependency
	// edge must win.
	script := mustScript(t, []change.Change{
		&change.DropTable{Table: tbl},
		&change.DropIndex{Index: idx},
	})

	indexAt := statementIndex(t, script, "DROP INDEX public.old_data_idx")
	tableAt := statementIndex(t, script, "DROP TABLE public.old_data")
	if indexAt > tableAt {
		t.Errorf("index drop must precede its table's drop:\n%s", script)
	}
}

func TestPlanMaterializedViewIndexAfterView(t *testing.T) {
	mv := &catalog.MaterializedView{
		Schema:     "public",
		Name:       "daily_stats",
		Definition: "SELECT day, count(*) AS n FROM events GROUP BY day",
	}
	idx := &catalog.Index{
		Schema: "public", Table: "daily_stats", Name: "daily_stats_day_idx",
		Unique:             true,
		Columns:            []catalog.IndexColumn{{Expression: "day"}},
		OnMaterializedView: true,
	}
	// The index tie-breaks ahead of the materialized view; the dependency
	// edge must hold it back.
	script := mustScript(t, []change.Change{
		&change.CreateIndex{Index: idx},
		&change.CreateMaterializedView{View: mv},
		&change.CreateSchema{Schema: &catalog.Schema{Name: "public"}},
	})

	viewAt := statementIndex(t, script, "CREATE MATERIALIZED VIEW public.daily_stats")
	indexAt := statementIndex(t, script, "CREATE UNIQUE INDEX daily_stats_day_idx")
	if indexAt < viewAt {
		t.Errorf("index created before its materialized view:\n%s", script)
	}
}

func TestPlanTableReplaceKeepsIndexOrder(t *testing.T) {
	old := table("public", "events")
	new := &catalog.Table{
		Schema:            "public",
		Name:              "events",
		Columns:           []*catalog.Column{{Name: "id", DataType: "bigint"}},
		PartitionStrategy: "RANGE",
		PartitionKey:      "id",
	}
	idx := &catalog.Index{
		Schema: "public", Table: "events", Name: "events_id_idx",
		Method:  "btree",
		Columns: []catalog.IndexColumn{{Expression: "id"}},
	}
	staleIdx := &catalog.Index{
		Schema: "public", Table: "events", Name: "events_stale_idx",
		Method:  "btree",
		Columns: []catalog.IndexColumn{{Expression: "id"}},
	}
	script := mustScript(t, []change.Change{
		&change.CreateIndex{Index: idx},
		&change.DropIndex{Index: staleIdx},
		&change.CreateTable{Table: new},
		&change.DropTable{Table: old},
	})

	staleAt := statementIndex(t, script, "DROP INDEX public.events_stale_idx")
	dropAt := statementIndex(t, script, "DROP TABLE public.events")
	createAt := statementIndex(t, script, "CREATE TABLE public.events")
	indexAt := statementIndex(t, script, "CREATE INDEX events_id_idx")
	if !(staleAt < dropAt && dropAt < createAt && createAt < indexAt) {
		t.Errorf("table replacement out of order:\n%s", script)
	}
}

func TestPlanCircularForeignKeys(t *testing.T) {
	a := table("public", "a")
	b := table("public", "b")
	script := mustScript(t, []change.Change{
		&change.AddConstraint{Constraint: foreignKey("public", "a", "a_b_fkey", "b")},
		&change.AddConstraint{Constraint: foreignKey("public", "b", "b_a_fkey", "a")},
		&change.CreateTable{Table: a},
		&change.CreateTable{Table: b},
	})

	lastCreate := statementIndex(t, script, "CREATE TABLE public.b")
	if at := statementIndex(t, script, "CREATE TABLE public.a"); at > lastCreate {
		lastCreate = at
	}
	for _, fk := range []string{"a_b_fkey", "b_a_fkey"} {
		if statementIndex(t, script, fk) < lastCreate {
			t.Errorf("constraint %s emitted before both tables exist:\n%s", fk, script)
		}
	}
}

func TestPlanCycleError(t *testing.T) {
	v1 := &catalog.View{
		Schema: "public", Name: "v1",
		Definition:   "SELECT * FROM v2",
		Dependencies: []string{catalog.ViewID("public", "v2")},
	}
	v2 := &catalog.View{
		Schema: "public", Name: "v2",
		Definition:   "SELECT * FROM v1",
		Dependencies: []string{catalog.ViewID("public", "v1")},
	}
	_, err := New([]change.Change{
		&change.CreateView{View: v1},
		&change.CreateView{View: v2},
	})
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if len(cycle.IDs) == 0 || !strings.Contains(cycle.Error(), "dependency cycle") {
		t.Errorf("unhelpful cycle error: %v", cycle)
	}
}

func TestPlanDeterministic(t *testing.T) {
	build := func() []change.Change {
		return []change.Change{
			&change.CreateSchema{Schema: &catalog.Schema{Name: "app"}},
			&change.CreateTable{Table: table("app", "users")},
			&change.CreateTable{Table: table("app", "orders")},
			&change.CreateRole{Role: &catalog.Role{Name: "app", Inherit: true}},
			&change.DropView{View: &catalog.View{Schema: "public", Name: "stale", Definition: "SELECT 1"}},
		}
	}
	changes := build()
	reversed := build()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}

	first := mustScript(t, changes)
	second := mustScript(t, reversed)
	if first != second {
		t.Errorf("input order leaked into the script:\n--- first\n%s\n--- second\n%s", first, second)
	}
}

func TestPlanScriptFormat(t *testing.T) {
	script := mustScript(t, []change.Change{
		&change.CreateSchema{Schema: &catalog.Schema{Name: "app"}},
		&change.CreateTable{Table: table("app", "t")},
	})
	want := "CREATE SCHEMA app;\n\nCREATE TABLE app.t (\n    id bigint\n);\n"
	if script != want {
		t.Errorf("got %q, want %q", script, want)
	}

	empty, err := (&Plan{}).Script(render.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("Failed to render empty plan: %v", err)
	}
	if empty != "" {
		t.Errorf("empty plan rendered %q", empty)
	}
}

func TestPlanHooksFilter(t *testing.T) {
	p, err := New([]change.Change{
		&change.CreateRole{Role: &catalog.Role{Name: "app", Inherit: true}},
		&change.CreateSchema{Schema: &catalog.Schema{Name: "app"}},
	})
	if err != nil {
		t.Fatalf("Failed to build plan: %v", err)
	}
	hooks := &Hooks{
		Filter: func(ch change.Change) bool { return ch.ObjectType() != change.ObjectTypeRole },
	}
	steps, err := p.Steps(render.DefaultOptions(), hooks)
	if err != nil {
		t.Fatalf("Failed to render steps: %v", err)
	}
	if len(steps) != 1 || steps[0].ObjectType != change.ObjectTypeSchema {
		t.Errorf("filter not applied: %+v", steps)
	}
}

func TestPlanHooksSerializer(t *testing.T) {
	p, err := New([]change.Change{
		&change.CreateRole{Role: &catalog.Role{Name: "app", Inherit: true, Password: "SCRAM-SHA-256$secret"}},
	})
	if err != nil {
		t.Fatalf("Failed to build plan: %v", err)
	}
	hooks := &Hooks{
		Serializer: func(ch change.Change, opts render.Options) (string, bool, error) {
			if ch.ObjectType() != change.ObjectTypeRole {
				return "", false, nil
			}
			return "CREATE ROLE app", true, nil
		},
	}
	script, err := p.Script(render.DefaultOptions(), hooks)
	if err != nil {
		t.Fatalf("Failed to render script: %v", err)
	}
	if strings.Contains(script, "secret") {
		t.Errorf("serializer override ignored: %q", script)
	}
}
