package change

import (
	"errors"
	"strings"
	"testing"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

func mustSerialize(t *testing.T, ch Change) string {
	t.Helper()
	sql, err := ch.Serialize(render.DefaultOptions())
	if err != nil {
		t.Fatalf("Failed to serialize %T: %v", ch, err)
	}
	return sql
}

func TestCreateTableSerialize(t *testing.T) {
	email := "'nobody@example.com'"
	table := &catalog.Table{
		Schema: "public",
		Name:   "users",
		Columns: []*catalog.Column{
			{Name: "id", DataType: "bigint", NotNull: true, Identity: "ALWAYS"},
			{Name: "email", DataType: "text", NotNull: true, Default: &email},
		},
		Constraints: map[string]*catalog.Constraint{
			"users_pkey": {
				Schema: "public", Table: "users", Name: "users_pkey",
				Type: catalog.ConstraintTypePrimaryKey, Columns: []string{"id"},
			},
		},
	}

	sql := mustSerialize(t, &CreateTable{Table: table})
	want := "CREATE TABLE public.users (\n" +
		"    id bigint NOT NULL GENERATED ALWAYS AS IDENTITY,\n" +
		"    email text NOT NULL DEFAULT 'nobody@example.com',\n" +
		"    CONSTRAINT users_pkey PRIMARY KEY (id)\n" +
		")"
	if sql != want {
		t.Errorf("CreateTable serialized to:\n%s\nwant:\n%s", sql, want)
	}
}

func TestCreateTableSkipsForeignKeys(t *testing.T) {
	table := &catalog.Table{
		Schema:  "public",
		Name:    "orders",
		Columns: []*catalog.Column{{Name: "user_id", DataType: "bigint"}},
		Constraints: map[string]*catalog.Constraint{
			"orders_user_id_fkey": {
				Schema: "public", Table: "orders", Name: "orders_user_id_fkey",
				Type:              catalog.ConstraintTypeForeignKey,
				Columns:           []string{"user_id"},
				ReferencedSchema:  "public",
				ReferencedTable:   "users",
				ReferencedColumns: []string{"id"},
			},
		},
	}

	ch := &CreateTable{Table: table}
	sql := mustSerialize(t, ch)
	if strings.Contains(sql, "FOREIGN KEY") {
		t.Errorf("CreateTable embedded a foreign key:\n%s", sql)
	}
	for _, id := range ch.Creates() {
		if id == catalog.ConstraintID("public", "orders", "orders_user_id_fkey") {
			t.Error("CreateTable claims the foreign-key constraint ID")
		}
	}
}

func TestCreateTablePartition(t *testing.T) {
	parent := &catalog.Table{
		Schema:            "public",
		Name:              "events",
		Columns:           []*catalog.Column{{Name: "at", DataType: "timestamptz", NotNull: true}},
		PartitionStrategy: "RANGE",
		PartitionKey:      "at",
	}
	sql := mustSerialize(t, &CreateTable{Table: parent})
	if !strings.HasSuffix(sql, ") PARTITION BY RANGE (at)") {
		t.Errorf("partitioned parent missing PARTITION BY clause:\n%s", sql)
	}

	child := &catalog.Table{
		Schema:          "public",
		Name:            "events_2024",
		PartitionParent: "public.events",
		PartitionBound:  "FOR VALUES FROM ('2024-01-01') TO ('2025-01-01')",
	}
	sql = mustSerialize(t, &CreateTable{Table: child})
	want := "CREATE TABLE public.events_2024 PARTITION OF public.events FOR VALUES FROM ('2024-01-01') TO ('2025-01-01')"
	if sql != want {
		t.Errorf("partition child serialized to %q, want %q", sql, want)
	}

	ch := &CreateTable{Table: child}
	found := false
	for _, id := range ch.Requires() {
		if id == catalog.TableID("public", "events") {
			found = true
		}
	}
	if !found {
		t.Error("partition child does not require its parent table")
	}
}

func TestCreateTableUnloggedWithOptions(t *testing.T) {
	table := &catalog.Table{
		Schema:         "public",
		Name:           "scratch",
		Persistence:    catalog.PersistenceUnlogged,
		Columns:        []*catalog.Column{{Name: "v", DataType: "integer"}},
		StorageOptions: []string{"fillfactor", "70"},
		Tablespace:     "fast",
	}
	sql := mustSerialize(t, &CreateTable{Table: table})
	if !strings.HasPrefix(sql, "CREATE UNLOGGED TABLE public.scratch") {
		t.Errorf("missing UNLOGGED:\n%s", sql)
	}
	if !strings.Contains(sql, "WITH (fillfactor=70)") {
		t.Errorf("missing storage options:\n%s", sql)
	}
	if !strings.HasSuffix(sql, "TABLESPACE fast") {
		t.Errorf("missing tablespace:\n%s", sql)
	}
}

func TestAlterTableAddColumn(t *testing.T) {
	def := "'x'"
	ch := &AlterTableAddColumn{
		Schema: "public",
		Table:  "t",
		Column: &catalog.Column{Name: "name", DataType: "text", NotNull: true, Default: &def},
	}
	sql := mustSerialize(t, ch)
	want := "ALTER TABLE public.t ADD COLUMN name text NOT NULL DEFAULT 'x'"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestAlterTableAddGeneratedColumn(t *testing.T) {
	ch := &AlterTableAddColumn{
		Schema: "public",
		Table:  "t",
		Column: &catalog.Column{Name: "total", DataType: "numeric", Generated: "price * qty"},
	}
	sql := mustSerialize(t, ch)
	want := "ALTER TABLE public.t ADD COLUMN total numeric GENERATED ALWAYS AS (price * qty) STORED"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestAlterTableColumnChanges(t *testing.T) {
	cases := []struct {
		ch   Change
		want string
	}{
		{
			&AlterTableAlterColumnType{Schema: "public", Table: "t", Column: "v", DataType: "bigint", Using: "v::bigint"},
			"ALTER TABLE public.t ALTER COLUMN v TYPE bigint USING v::bigint",
		},
		{
			&AlterTableSetColumnDefault{Schema: "public", Table: "t", Column: "v", Default: "0"},
			"ALTER TABLE public.t ALTER COLUMN v SET DEFAULT 0",
		},
		{
			&AlterTableDropColumnDefault{Schema: "public", Table: "t", Column: "v"},
			"ALTER TABLE public.t ALTER COLUMN v DROP DEFAULT",
		},
		{
			&AlterTableSetColumnNotNull{Schema: "public", Table: "t", Column: "v", NotNull: true},
			"ALTER TABLE public.t ALTER COLUMN v SET NOT NULL",
		},
		{
			&AlterTableSetColumnNotNull{Schema: "public", Table: "t", Column: "v"},
			"ALTER TABLE public.t ALTER COLUMN v DROP NOT NULL",
		},
		{
			&AlterTableDropColumn{Schema: "public", Table: "t", Column: "v"},
			"ALTER TABLE public.t DROP COLUMN v",
		},
		{
			&AlterTableSetColumnStatistics{Schema: "public", Table: "t", Column: "v", Statistics: 500},
			"ALTER TABLE public.t ALTER COLUMN v SET STATISTICS 500",
		},
		{
			&AlterTableSetColumnStorage{Schema: "public", Table: "t", Column: "v", Storage: "EXTERNAL"},
			"ALTER TABLE public.t ALTER COLUMN v SET STORAGE EXTERNAL",
		},
	}
	for _, tc := range cases {
		sql := mustSerialize(t, tc.ch)
		if sql != tc.want {
			t.Errorf("got %q, want %q", sql, tc.want)
		}
	}
}

func TestAlterTableStorageParameters(t *testing.T) {
	ch := &AlterTableSetStorageParameters{
		Schema: "public",
		Table:  "t",
		Set:    []Option{{Key: "fillfactor", Value: "80"}},
		Reset:  []string{"autovacuum_enabled"},
	}
	sql := mustSerialize(t, ch)
	if !strings.Contains(sql, "SET (fillfactor=80)") {
		t.Errorf("missing SET clause: %q", sql)
	}
	if !strings.Contains(sql, "RESET (autovacuum_enabled)") {
		t.Errorf("missing RESET clause: %q", sql)
	}
}

func TestAlterTableSetColumnDefaultEmpty(t *testing.T) {
	ch := &AlterTableSetColumnDefault{Schema: "public", Table: "t", Column: "v"}
	if _, err := ch.Serialize(render.DefaultOptions()); !errors.Is(err, ErrInvalidChange) {
		t.Errorf("expected ErrInvalidChange, got %v", err)
	}
}

func TestDropTableRequiresDependencies(t *testing.T) {
	table := &catalog.Table{
		Schema:       "public",
		Name:         "t",
		Dependencies: []string{catalog.TypeID("public", "status")},
	}
	ch := &DropTable{Table: table}
	if got := mustSerialize(t, ch); got != "DROP TABLE public.t" {
		t.Errorf("got %q", got)
	}
	found := false
	for _, id := range ch.Requires() {
		if id == catalog.TypeID("public", "status") {
			found = true
		}
	}
	if !found {
		t.Error("DropTable does not require the column type")
	}
}

func TestAlterTableMisc(t *testing.T) {
	cases := []struct {
		ch   Change
		want string
	}{
		{&AlterTableOwner{Schema: "public", Table: "t", Owner: "app"}, "ALTER TABLE public.t OWNER TO app"},
		{&AlterTableSetLogged{Schema: "public", Table: "t", Logged: true}, "ALTER TABLE public.t SET LOGGED"},
		{&AlterTableSetLogged{Schema: "public", Table: "t"}, "ALTER TABLE public.t SET UNLOGGED"},
		{&AlterTableSetTablespace{Schema: "public", Table: "t", Tablespace: "fast"}, "ALTER TABLE public.t SET TABLESPACE fast"},
		{&AlterTableSetTablespace{Schema: "public", Table: "t"}, "ALTER TABLE public.t SET TABLESPACE pg_default"},
		{&AlterTableRowSecurity{Schema: "public", Table: "t", Clause: "ENABLE"}, "ALTER TABLE public.t ENABLE ROW LEVEL SECURITY"},
	}
	for _, tc := range cases {
		sql := mustSerialize(t, tc.ch)
		if sql != tc.want {
			t.Errorf("got %q, want %q", sql, tc.want)
		}
	}
}

func TestReservedIdentifiersQuoted(t *testing.T) {
	table := &catalog.Table{
		Schema:  "public",
		Name:    "user",
		Columns: []*catalog.Column{{Name: "order", DataType: "integer"}},
	}
	sql := mustSerialize(t, &CreateTable{Table: table})
	want := "CREATE TABLE public.\"user\" (\n    \"order\" integer\n)"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}

	drop := &AlterTableDropColumn{Schema: "public", Table: "user", Column: "select"}
	if got := mustSerialize(t, drop); got != `ALTER TABLE public."user" DROP COLUMN "select"` {
		t.Errorf("got %q", got)
	}
}

func TestLowercaseKeywords(t *testing.T) {
	opts := render.Options{KeywordCase: render.KeywordCaseLower, IndentWidth: 4}
	ch := &AlterTableDropColumn{Schema: "public", Table: "t", Column: "v"}
	sql, err := ch.Serialize(opts)
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}
	if sql != "alter table public.t drop column v" {
		t.Errorf("got %q", sql)
	}
}
