package change

import (
	"testing"

	"github.com/pgdelta/pgdelta/internal/catalog"
)

func TestCreateRoleSerialize(t *testing.T) {
	role := &catalog.Role{
		Name:     "app",
		Login:    true,
		Inherit:  true,
		Password: "SCRAM-SHA-256$4096:salt$stored:server",
	}
	sql := mustSerialize(t, &CreateRole{Role: role})
	want := "CREATE ROLE app WITH NOSUPERUSER NOCREATEDB NOCREATEROLE INHERIT LOGIN NOREPLICATION NOBYPASSRLS PASSWORD 'SCRAM-SHA-256$4096:salt$stored:server'"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestCreateRoleConnectionLimit(t *testing.T) {
	role := &catalog.Role{Name: "pool", Inherit: true, Login: true, ConnectionLimit: 20}
	sql := mustSerialize(t, &CreateRole{Role: role})
	want := "CREATE ROLE pool WITH NOSUPERUSER NOCREATEDB NOCREATEROLE INHERIT LOGIN NOREPLICATION NOBYPASSRLS CONNECTION LIMIT 20"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestAlterRoleSerialize(t *testing.T) {
	role := &catalog.Role{Name: "app", Inherit: true, CreateDB: true}
	sql := mustSerialize(t, &AlterRole{Role: role})
	want := "ALTER ROLE app WITH NOSUPERUSER CREATEDB NOCREATEROLE INHERIT NOLOGIN NOREPLICATION NOBYPASSRLS"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestDropRole(t *testing.T) {
	sql := mustSerialize(t, &DropRole{Role: &catalog.Role{Name: "app"}})
	if sql != "DROP ROLE app" {
		t.Errorf("got %q", sql)
	}
}

func TestAlterRoleSetConfig(t *testing.T) {
	set := &AlterRoleSetConfig{Role: "app", Key: "search_path", Value: "app, public"}
	if sql := mustSerialize(t, set); sql != "ALTER ROLE app SET search_path = app, public" {
		t.Errorf("got %q", sql)
	}
	reset := &AlterRoleSetConfig{Role: "app", Key: "search_path"}
	if sql := mustSerialize(t, reset); sql != "ALTER ROLE app RESET search_path" {
		t.Errorf("got %q", sql)
	}
}

func TestRoleMembership(t *testing.T) {
	m := &catalog.RoleMembership{Role: "readers", Member: "app"}
	if sql := mustSerialize(t, &GrantRoleMembership{Membership: m}); sql != "GRANT readers TO app" {
		t.Errorf("got %q", sql)
	}

	admin := &catalog.RoleMembership{Role: "readers", Member: "ops", Admin: true}
	if sql := mustSerialize(t, &GrantRoleMembership{Membership: admin}); sql != "GRANT readers TO ops WITH ADMIN OPTION" {
		t.Errorf("got %q", sql)
	}

	if sql := mustSerialize(t, &RevokeRoleMembership{Membership: m}); sql != "REVOKE readers FROM app" {
		t.Errorf("got %q", sql)
	}

	if sql := mustSerialize(t, &RevokeRoleAdminOption{Membership: admin}); sql != "REVOKE ADMIN OPTION FOR readers FROM ops" {
		t.Errorf("got %q", sql)
	}
}

func TestMembershipIdentity(t *testing.T) {
	plain := &catalog.RoleMembership{Role: "r", Member: "m"}
	admin := &catalog.RoleMembership{Role: "r", Member: "m", Admin: true}
	if plain.StableID() != admin.StableID() {
		t.Error("admin option must not change membership identity")
	}
	grant := &GrantRoleMembership{Membership: plain}
	if grant.Scope() != ScopeMembership {
		t.Errorf("unexpected scope %v", grant.Scope())
	}
}
