package change

import (
	"errors"
	"testing"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

func grants(names ...string) []catalog.PrivilegeGrant {
	out := make([]catalog.PrivilegeGrant, len(names))
	for i, n := range names {
		out[i] = catalog.PrivilegeGrant{Name: n}
	}
	return out
}

func tablePrivilege(grantee string) *catalog.Privilege {
	return &catalog.Privilege{
		ObjectType: catalog.PrivilegeObjectTable,
		ObjectID:   catalog.TableID("public", "t"),
		ObjectName: "public.t",
		Grantee:    grantee,
	}
}

func TestGrantPrivilegesCollapsesToAll(t *testing.T) {
	ch := &GrantPrivileges{
		Privilege:     tablePrivilege("app"),
		Grants:        grants("SELECT", "INSERT", "UPDATE", "DELETE", "TRUNCATE", "REFERENCES", "TRIGGER"),
		ServerVersion: 16,
	}
	sql := mustSerialize(t, ch)
	if sql != "GRANT ALL ON TABLE public.t TO app" {
		t.Errorf("got %q", sql)
	}
}

func TestGrantPrivilegesFullSetIsNotAllOnNewerServer(t *testing.T) {
	// On 17 the table universe includes MAINTAIN, so the 16-era seven
	// privileges must be listed explicitly.
	ch := &GrantPrivileges{
		Privilege:     tablePrivilege("app"),
		Grants:        grants("SELECT", "INSERT", "UPDATE", "DELETE", "TRUNCATE", "REFERENCES", "TRIGGER"),
		ServerVersion: 17,
	}
	sql := mustSerialize(t, ch)
	want := "GRANT SELECT, INSERT, UPDATE, DELETE, TRUNCATE, REFERENCES, TRIGGER ON TABLE public.t TO app"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestGrantPrivilegesCanonicalOrder(t *testing.T) {
	ch := &GrantPrivileges{
		Privilege:     tablePrivilege("app"),
		Grants:        grants("UPDATE", "SELECT"),
		ServerVersion: 16,
	}
	sql := mustSerialize(t, ch)
	if sql != "GRANT SELECT, UPDATE ON TABLE public.t TO app" {
		t.Errorf("got %q", sql)
	}
}

func TestGrantPrivilegesPublicAndGrantOption(t *testing.T) {
	ch := &GrantPrivileges{
		Privilege:     tablePrivilege("public"),
		Grants:        []catalog.PrivilegeGrant{{Name: "SELECT", Grantable: true}},
		ServerVersion: 16,
	}
	sql := mustSerialize(t, ch)
	if sql != "GRANT SELECT ON TABLE public.t TO PUBLIC WITH GRANT OPTION" {
		t.Errorf("got %q", sql)
	}
}

func TestGrantPrivilegesMixedGrantable(t *testing.T) {
	ch := &GrantPrivileges{
		Privilege: tablePrivilege("app"),
		Grants: []catalog.PrivilegeGrant{
			{Name: "SELECT", Grantable: true},
			{Name: "INSERT"},
		},
		ServerVersion: 16,
	}
	if _, err := ch.Serialize(render.DefaultOptions()); !errors.Is(err, ErrInvalidChange) {
		t.Errorf("expected ErrInvalidChange, got %v", err)
	}
}

func TestGrantPrivilegesEmpty(t *testing.T) {
	ch := &GrantPrivileges{Privilege: tablePrivilege("app"), ServerVersion: 16}
	if _, err := ch.Serialize(render.DefaultOptions()); !errors.Is(err, ErrInvalidChange) {
		t.Errorf("expected ErrInvalidChange, got %v", err)
	}
}

func TestRevokePrivileges(t *testing.T) {
	ch := &RevokePrivileges{
		Privilege:     tablePrivilege("app"),
		Grants:        grants("UPDATE"),
		ServerVersion: 16,
	}
	if sql := mustSerialize(t, ch); sql != "REVOKE UPDATE ON TABLE public.t FROM app" {
		t.Errorf("got %q", sql)
	}
}

func TestRevokeGrantOptionOnly(t *testing.T) {
	ch := &RevokePrivileges{
		Privilege:       tablePrivilege("app"),
		Grants:          grants("SELECT"),
		ServerVersion:   16,
		GrantOptionOnly: true,
	}
	if sql := mustSerialize(t, ch); sql != "REVOKE GRANT OPTION FOR SELECT ON TABLE public.t FROM app" {
		t.Errorf("got %q", sql)
	}
}

func TestGrantPrivilegesOnFunction(t *testing.T) {
	ch := &GrantPrivileges{
		Privilege: &catalog.Privilege{
			ObjectType: catalog.PrivilegeObjectFunction,
			ObjectID:   catalog.FunctionID("public", "f", "integer"),
			ObjectName: "public.f(integer)",
			Grantee:    "app",
		},
		Grants:        grants("EXECUTE"),
		ServerVersion: 16,
	}
	if sql := mustSerialize(t, ch); sql != "GRANT ALL ON FUNCTION public.f(integer) TO app" {
		t.Errorf("got %q", sql)
	}
}

func TestGrantPrivilegesEntryIDs(t *testing.T) {
	p := tablePrivilege("app")
	entry := &GrantPrivileges{Privilege: p, Grants: grants("SELECT"), ServerVersion: 16, Entry: true}
	if len(entry.Creates()) != 1 || entry.Creates()[0] != p.StableID() {
		t.Errorf("entry grant creates %v", entry.Creates())
	}
	widen := &GrantPrivileges{Privilege: p, Grants: grants("INSERT"), ServerVersion: 16}
	if len(widen.Creates()) != 0 {
		t.Errorf("widening grant creates %v", widen.Creates())
	}
}

func TestDefaultPrivileges(t *testing.T) {
	d := &catalog.DefaultPrivilege{
		Role:       "owner",
		Schema:     "app",
		ObjectType: "TABLES",
		Grantee:    "readers",
	}
	grant := &GrantDefaultPrivileges{Default: d, Grants: grants("SELECT"), ServerVersion: 16}
	sql := mustSerialize(t, grant)
	want := "ALTER DEFAULT PRIVILEGES FOR ROLE owner IN SCHEMA app GRANT SELECT ON TABLES TO readers"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}

	revoke := &RevokeDefaultPrivileges{Default: d, Grants: grants("SELECT"), ServerVersion: 16}
	sql = mustSerialize(t, revoke)
	want = "ALTER DEFAULT PRIVILEGES FOR ROLE owner IN SCHEMA app REVOKE SELECT ON TABLES FROM readers"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestDefaultPrivilegesUnscoped(t *testing.T) {
	d := &catalog.DefaultPrivilege{
		Role:       "owner",
		ObjectType: "SEQUENCES",
		Grantee:    "app",
	}
	grant := &GrantDefaultPrivileges{Default: d, Grants: grants("USAGE", "SELECT", "UPDATE"), ServerVersion: 16}
	sql := mustSerialize(t, grant)
	if sql != "ALTER DEFAULT PRIVILEGES FOR ROLE owner GRANT ALL ON SEQUENCES TO app" {
		t.Errorf("got %q", sql)
	}
}
