package change

import (
	"strings"
	"testing"

	"github.com/pgdelta/pgdelta/internal/catalog"
)

func TestCreateSchema(t *testing.T) {
	ch := &CreateSchema{Schema: &catalog.Schema{Name: "app", Owner: "deploy"}}
	if sql := mustSerialize(t, ch); sql != "CREATE SCHEMA app AUTHORIZATION deploy" {
		t.Errorf("got %q", sql)
	}
	if ch.Requires()[0] != catalog.RoleID("deploy") {
		t.Error("schema with owner does not require the role")
	}
}

func TestCreateExtension(t *testing.T) {
	ch := &CreateExtension{Extension: &catalog.Extension{Name: "pg_trgm", Schema: "public"}}
	if sql := mustSerialize(t, ch); sql != "CREATE EXTENSION pg_trgm WITH SCHEMA public" {
		t.Errorf("got %q", sql)
	}
	// public needs no CREATE SCHEMA first.
	if len(ch.Requires()) != 0 {
		t.Errorf("extension in public requires %v", ch.Requires())
	}
}

func TestAlterExtensionUpdate(t *testing.T) {
	ch := &AlterExtensionUpdate{Name: "pg_trgm", Version: "1.6"}
	if sql := mustSerialize(t, ch); sql != "ALTER EXTENSION pg_trgm UPDATE TO '1.6'" {
		t.Errorf("got %q", sql)
	}
}

func TestCreateCollation(t *testing.T) {
	ch := &CreateCollation{Collation: &catalog.Collation{
		Schema:   "public",
		Name:     "german",
		Locale:   "de-DE-x-icu",
		Provider: "icu",
	}}
	if sql := mustSerialize(t, ch); sql != "CREATE COLLATION public.german (LOCALE = 'de-DE-x-icu', PROVIDER = icu, DETERMINISTIC = FALSE)" {
		t.Errorf("got %q", sql)
	}
}

func TestCreateSequence(t *testing.T) {
	min := int64(100)
	seq := &catalog.Sequence{
		Schema:    "public",
		Name:      "order_seq",
		DataType:  "bigint",
		Start:     100,
		Increment: 10,
		MinValue:  &min,
		Cache:     20,
		Cycle:     true,
	}
	sql := mustSerialize(t, &CreateSequence{Sequence: seq})
	want := "CREATE SEQUENCE public.order_seq INCREMENT BY 10 MINVALUE 100 START WITH 100 CACHE 20 CYCLE"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestCreateSequenceDefaults(t *testing.T) {
	seq := &catalog.Sequence{Schema: "public", Name: "s", DataType: "bigint", Start: 1, Increment: 1}
	if sql := mustSerialize(t, &CreateSequence{Sequence: seq}); sql != "CREATE SEQUENCE public.s" {
		t.Errorf("default bounds must stay implicit, got %q", sql)
	}
}

func TestAlterSequence(t *testing.T) {
	seq := &catalog.Sequence{Schema: "public", Name: "s", Increment: 5, MaxValue: nil}
	ch := &AlterSequence{Sequence: seq, SetIncrement: true, SetMaxValue: true}
	if sql := mustSerialize(t, ch); sql != "ALTER SEQUENCE public.s INCREMENT BY 5 NO MAXVALUE" {
		t.Errorf("got %q", sql)
	}
}

func TestCreateView(t *testing.T) {
	v := &catalog.View{
		Schema:     "public",
		Name:       "active_users",
		Definition: " SELECT id, email\n   FROM users\n  WHERE active;",
	}
	sql := mustSerialize(t, &CreateView{View: v})
	want := "CREATE VIEW public.active_users AS\n SELECT id, email\n   FROM users\n  WHERE active"
	if sql != want {
		t.Errorf("got:\n%s\nwant:\n%s", sql, want)
	}

	replaced := mustSerialize(t, &CreateView{View: v, OrReplace: true})
	if !strings.HasPrefix(replaced, "CREATE OR REPLACE VIEW ") {
		t.Errorf("got %q", replaced)
	}
}

func TestCreateViewCheckOption(t *testing.T) {
	v := &catalog.View{
		Schema:      "public",
		Name:        "adults",
		Definition:  "SELECT * FROM people WHERE age >= 18",
		CheckOption: "CASCADED",
		Options:     []string{"security_barrier", "true"},
	}
	sql := mustSerialize(t, &CreateView{View: v})
	if !strings.Contains(sql, "WITH (security_barrier=true)") {
		t.Errorf("missing options:\n%s", sql)
	}
	if !strings.HasSuffix(sql, "WITH CASCADED CHECK OPTION") {
		t.Errorf("missing check option:\n%s", sql)
	}
}

func TestCreateFunction(t *testing.T) {
	f := &catalog.Function{
		Schema:     "public",
		Name:       "add_one",
		Arguments:  "integer",
		Signature:  "x integer",
		Definition: "\nselect x + 1;\n",
		ReturnType: "integer",
		Language:   "sql",
		Volatility: "IMMUTABLE",
		Strict:     true,
	}
	sql := mustSerialize(t, &CreateFunction{Function: f})
	want := "CREATE FUNCTION public.add_one(x integer)\n" +
		"RETURNS integer\n" +
		"LANGUAGE sql\n" +
		"IMMUTABLE\n" +
		"STRICT\n" +
		"AS $$\nselect x + 1;\n$$"
	if sql != want {
		t.Errorf("got:\n%s\nwant:\n%s", sql, want)
	}
}

func TestDropFunctionNamesArguments(t *testing.T) {
	f := &catalog.Function{Schema: "public", Name: "add_one", Arguments: "integer"}
	if sql := mustSerialize(t, &DropFunction{Function: f}); sql != "DROP FUNCTION public.add_one(integer)" {
		t.Errorf("got %q", sql)
	}
}

func TestCreateEnumType(t *testing.T) {
	ty := &catalog.Type{
		Schema:     "public",
		Name:       "status",
		Kind:       catalog.TypeKindEnum,
		EnumValues: []string{"pending", "active", "closed"},
	}
	sql := mustSerialize(t, &CreateType{Type: ty})
	want := "CREATE TYPE public.status AS ENUM (\n" +
		"    'pending',\n" +
		"    'active',\n" +
		"    'closed'\n" +
		")"
	if sql != want {
		t.Errorf("got:\n%s\nwant:\n%s", sql, want)
	}
}

func TestCreateDomainType(t *testing.T) {
	ty := &catalog.Type{
		Schema:   "public",
		Name:     "email",
		Kind:     catalog.TypeKindDomain,
		BaseType: "text",
		NotNull:  true,
		Constraints: []catalog.DomainConstraint{
			{Name: "email_format", Check: "CHECK ((VALUE ~ '@'::text))"},
		},
	}
	sql := mustSerialize(t, &CreateType{Type: ty})
	want := "CREATE DOMAIN public.email AS text NOT NULL\n" +
		"    CONSTRAINT email_format CHECK ((VALUE ~ '@'::text))"
	if sql != want {
		t.Errorf("got:\n%s\nwant:\n%s", sql, want)
	}
}

func TestAlterTypeAddEnumValue(t *testing.T) {
	ch := &AlterTypeAddEnumValue{Schema: "public", Name: "status", Value: "archived", After: "closed"}
	if sql := mustSerialize(t, ch); sql != "ALTER TYPE public.status ADD VALUE 'archived' AFTER 'closed'" {
		t.Errorf("got %q", sql)
	}
}

func TestCreateTrigger(t *testing.T) {
	tr := &catalog.Trigger{
		Schema:   "public",
		Table:    "users",
		Name:     "users_audit",
		Timing:   "AFTER",
		Events:   []string{"INSERT", "UPDATE"},
		Level:    "ROW",
		Function: "audit.log_change()",
	}
	sql := mustSerialize(t, &CreateTrigger{Trigger: tr})
	want := "CREATE TRIGGER users_audit\n" +
		"    AFTER INSERT OR UPDATE ON public.users\n" +
		"    FOR EACH ROW\n" +
		"    EXECUTE FUNCTION audit.log_change()"
	if sql != want {
		t.Errorf("got:\n%s\nwant:\n%s", sql, want)
	}
}

func TestDropTrigger(t *testing.T) {
	tr := &catalog.Trigger{Schema: "public", Table: "users", Name: "users_audit"}
	if sql := mustSerialize(t, &DropTrigger{Trigger: tr}); sql != "DROP TRIGGER users_audit ON public.users" {
		t.Errorf("got %q", sql)
	}
}
