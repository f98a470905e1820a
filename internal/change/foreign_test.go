package change

import (
	"strings"
	"testing"

	"github.com/pgdelta/pgdelta/internal/catalog"
)

func TestCreateForeignDataWrapper(t *testing.T) {
	w := &catalog.ForeignDataWrapper{
		Name:      "postgres_fdw",
		Handler:   "postgres_fdw_handler",
		Validator: "postgres_fdw_validator",
	}
	sql := mustSerialize(t, &CreateForeignDataWrapper{Wrapper: w})
	want := "CREATE FOREIGN DATA WRAPPER postgres_fdw HANDLER postgres_fdw_handler VALIDATOR postgres_fdw_validator"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestCreateForeignServer(t *testing.T) {
	s := &catalog.ForeignServer{
		Name:    "shard1",
		Wrapper: "postgres_fdw",
		Options: []string{"host", "shard1.internal", "dbname", "app"},
	}
	sql := mustSerialize(t, &CreateForeignServer{Server: s})
	want := "CREATE SERVER shard1 FOREIGN DATA WRAPPER postgres_fdw OPTIONS (host 'shard1.internal', dbname 'app')"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestAlterForeignServerOptionsDelta(t *testing.T) {
	ch := &AlterForeignServer{
		Server:      &catalog.ForeignServer{Name: "shard1", Wrapper: "postgres_fdw"},
		AddOptions:  []Option{{Key: "port", Value: "5433"}},
		SetOptions:  []Option{{Key: "host", Value: "shard1b.internal"}},
		DropOptions: []string{"dbname"},
	}
	sql := mustSerialize(t, ch)
	want := "ALTER SERVER shard1 OPTIONS (ADD port '5433', SET host 'shard1b.internal', DROP dbname)"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestUserMappingSerialize(t *testing.T) {
	m := &catalog.UserMapping{
		Server:  "shard1",
		Role:    "app",
		Options: []string{"user", "remote_app"},
	}
	sql := mustSerialize(t, &CreateUserMapping{Mapping: m})
	want := `CREATE USER MAPPING FOR app SERVER shard1 OPTIONS ("user" 'remote_app')`
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}

	public := &catalog.UserMapping{Server: "shard1", Role: "public"}
	sql = mustSerialize(t, &DropUserMapping{Mapping: public})
	if sql != "DROP USER MAPPING FOR PUBLIC SERVER shard1" {
		t.Errorf("got %q", sql)
	}
}

func TestUserMappingRequiresRole(t *testing.T) {
	named := &CreateUserMapping{Mapping: &catalog.UserMapping{Server: "s", Role: "app"}}
	found := false
	for _, id := range named.Requires() {
		if id == catalog.RoleID("app") {
			found = true
		}
	}
	if !found {
		t.Error("mapping for a named role does not require the role")
	}

	public := &CreateUserMapping{Mapping: &catalog.UserMapping{Server: "s", Role: "public"}}
	for _, id := range public.Requires() {
		if id == catalog.RoleID("public") {
			t.Error("PUBLIC mapping must not require a role")
		}
	}
}

func TestCreateForeignTable(t *testing.T) {
	ft := &catalog.ForeignTable{
		Schema: "public",
		Name:   "remote_users",
		Server: "shard1",
		Columns: []*catalog.Column{
			{Name: "id", DataType: "bigint", NotNull: true},
			{Name: "email", DataType: "text"},
		},
		Options: []string{"schema_name", "public", "table_name", "users"},
	}
	sql := mustSerialize(t, &CreateForeignTable{Table: ft})
	if !strings.HasPrefix(sql, "CREATE FOREIGN TABLE public.remote_users (") {
		t.Errorf("unexpected prefix:\n%s", sql)
	}
	if !strings.Contains(sql, "SERVER shard1") {
		t.Errorf("missing SERVER clause:\n%s", sql)
	}
	if !strings.Contains(sql, "OPTIONS (schema_name 'public', table_name 'users')") {
		t.Errorf("missing OPTIONS clause:\n%s", sql)
	}

	ch := &CreateForeignTable{Table: ft}
	found := false
	for _, id := range ch.Requires() {
		if id == catalog.ForeignServerID("shard1") {
			found = true
		}
	}
	if !found {
		t.Error("foreign table does not require its server")
	}
}

func TestCreatePolicySerialize(t *testing.T) {
	p := &catalog.Policy{
		Schema:     "public",
		Table:      "accounts",
		Name:       "accounts_owner",
		Command:    "SELECT",
		Permissive: true,
		Roles:      []string{"app"},
		Using:      "owner = current_user",
	}
	sql := mustSerialize(t, &CreatePolicy{Policy: p})
	want := "CREATE POLICY accounts_owner ON public.accounts\n" +
		"    FOR SELECT\n" +
		"    TO app\n" +
		"    USING (owner = current_user)"
	if sql != want {
		t.Errorf("got:\n%s\nwant:\n%s", sql, want)
	}
}

func TestCreatePolicyRestrictivePublic(t *testing.T) {
	p := &catalog.Policy{
		Schema:    "public",
		Table:     "accounts",
		Name:      "deny_all",
		Command:   "ALL",
		WithCheck: "false",
	}
	sql := mustSerialize(t, &CreatePolicy{Policy: p})
	if !strings.Contains(sql, "AS RESTRICTIVE") {
		t.Errorf("missing AS RESTRICTIVE:\n%s", sql)
	}
	if !strings.Contains(sql, "TO PUBLIC") {
		t.Errorf("empty role list must render PUBLIC:\n%s", sql)
	}
	if strings.Contains(sql, "FOR ALL") {
		t.Errorf("ALL command must stay implicit:\n%s", sql)
	}
}

func TestDropPolicy(t *testing.T) {
	p := &catalog.Policy{Schema: "public", Table: "accounts", Name: "accounts_owner"}
	if sql := mustSerialize(t, &DropPolicy{Policy: p}); sql != "DROP POLICY accounts_owner ON public.accounts" {
		t.Errorf("got %q", sql)
	}
}
