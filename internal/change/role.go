package change

import (
	"fmt"
	"strings"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

// roleFlags renders the boolean role attributes in canonical order.
func roleFlags(r *catalog.Role, opts render.Options) []string {
	var flags []string
	add := func(on bool, yes, no string) {
		if on {
			flags = append(flags, kw(opts, yes))
		} else {
			flags = append(flags, kw(opts, no))
		}
	}
	add(r.Superuser, "SUPERUSER", "NOSUPERUSER")
	add(r.CreateDB, "CREATEDB", "NOCREATEDB")
	add(r.CreateRole, "CREATEROLE", "NOCREATEROLE")
	add(r.Inherit, "INHERIT", "NOINHERIT")
	add(r.Login, "LOGIN", "NOLOGIN")
	add(r.Replication, "REPLICATION", "NOREPLICATION")
	add(r.BypassRLS, "BYPASSRLS", "NOBYPASSRLS")
	return flags
}

// CreateRole creates a role with its full attribute set.
type CreateRole struct {
	Role *catalog.Role
}

func (c *CreateRole) ObjectType() ObjectType { return ObjectTypeRole }
func (c *CreateRole) Operation() Operation   { return OperationCreate }
func (c *CreateRole) Scope() Scope           { return ScopeObject }

func (c *CreateRole) Creates() []string {
	return []string{c.Role.StableID()}
}

func (c *CreateRole) Drops() []string    { return nil }
func (c *CreateRole) Requires() []string { return nil }

func (c *CreateRole) Serialize(opts render.Options) (string, error) {
	r := c.Role
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE ROLE "))
	b.WriteString(quoteIdent(r.Name))
	b.WriteString(" " + kw(opts, "WITH") + " " + strings.Join(roleFlags(r, opts), " "))
	if r.ConnectionLimit != 0 && r.ConnectionLimit != -1 {
		fmt.Fprintf(&b, " %s %d", kw(opts, "CONNECTION LIMIT"), r.ConnectionLimit)
	}
	if r.Password != "" {
		b.WriteString(" " + kw(opts, "PASSWORD") + " " + quoteLiteral(r.Password))
	}
	if r.ValidUntil != "" {
		b.WriteString(" " + kw(opts, "VALID UNTIL") + " " + quoteLiteral(r.ValidUntil))
	}
	return b.String(), nil
}

// DropRole drops a role.
type DropRole struct {
	Role *catalog.Role
}

func (c *DropRole) ObjectType() ObjectType { return ObjectTypeRole }
func (c *DropRole) Operation() Operation   { return OperationDrop }
func (c *DropRole) Scope() Scope           { return ScopeObject }
func (c *DropRole) Creates() []string      { return nil }

func (c *DropRole) Drops() []string {
	return []string{c.Role.StableID()}
}

func (c *DropRole) Requires() []string { return nil }

func (c *DropRole) Serialize(opts render.Options) (string, error) {
	return kw(opts, "DROP ROLE ") + quoteIdent(c.Role.Name), nil
}

// AlterRole re-issues the full attribute set when any attribute changed.
// Role attributes are all alterable in one statement, so no finer split is
// needed.
type AlterRole struct {
	Role *catalog.Role
}

func (c *AlterRole) ObjectType() ObjectType { return ObjectTypeRole }
func (c *AlterRole) Operation() Operation   { return OperationAlter }
func (c *AlterRole) Scope() Scope           { return ScopeObject }
func (c *AlterRole) Creates() []string      { return nil }
func (c *AlterRole) Drops() []string        { return nil }

func (c *AlterRole) Requires() []string {
	return []string{c.Role.StableID()}
}

func (c *AlterRole) Serialize(opts render.Options) (string, error) {
	r := c.Role
	var b strings.Builder
	b.WriteString(kw(opts, "ALTER ROLE "))
	b.WriteString(quoteIdent(r.Name))
	b.WriteString(" " + kw(opts, "WITH") + " " + strings.Join(roleFlags(r, opts), " "))
	if r.ConnectionLimit != 0 {
		fmt.Fprintf(&b, " %s %d", kw(opts, "CONNECTION LIMIT"), r.ConnectionLimit)
	}
	if r.Password != "" {
		b.WriteString(" " + kw(opts, "PASSWORD") + " " + quoteLiteral(r.Password))
	}
	if r.ValidUntil != "" {
		b.WriteString(" " + kw(opts, "VALID UNTIL") + " " + quoteLiteral(r.ValidUntil))
	}
	return b.String(), nil
}

// AlterRoleSetConfig sets one role-level configuration parameter.
type AlterRoleSetConfig struct {
	Role  string
	Key   string
	Value string // empty resets the parameter
}

func (c *AlterRoleSetConfig) ObjectType() ObjectType { return ObjectTypeRole }
func (c *AlterRoleSetConfig) Operation() Operation   { return OperationAlter }
func (c *AlterRoleSetConfig) Scope() Scope           { return ScopeObject }
func (c *AlterRoleSetConfig) Creates() []string      { return nil }
func (c *AlterRoleSetConfig) Drops() []string        { return nil }

func (c *AlterRoleSetConfig) Requires() []string {
	return []string{catalog.RoleID(c.Role)}
}

func (c *AlterRoleSetConfig) Serialize(opts render.Options) (string, error) {
	if c.Value == "" {
		return fmt.Sprintf("%s %s %s %s",
			kw(opts, "ALTER ROLE"), quoteIdent(c.Role), kw(opts, "RESET"), c.Key), nil
	}
	return fmt.Sprintf("%s %s %s %s = %s",
		kw(opts, "ALTER ROLE"), quoteIdent(c.Role), kw(opts, "SET"), c.Key, c.Value), nil
}

// GrantRoleMembership grants one role to a member.
type GrantRoleMembership struct {
	Membership *catalog.RoleMembership
}

func (c *GrantRoleMembership) ObjectType() ObjectType { return ObjectTypeRole }
func (c *GrantRoleMembership) Operation() Operation   { return OperationCreate }
func (c *GrantRoleMembership) Scope() Scope           { return ScopeMembership }

func (c *GrantRoleMembership) Creates() []string {
	return []string{c.Membership.StableID()}
}

func (c *GrantRoleMembership) Drops() []string { return nil }

func (c *GrantRoleMembership) Requires() []string {
	m := c.Membership
	return []string{catalog.RoleID(m.Role), catalog.RoleID(m.Member)}
}

func (c *GrantRoleMembership) Serialize(opts render.Options) (string, error) {
	m := c.Membership
	stmt := fmt.Sprintf("%s %s %s %s",
		kw(opts, "GRANT"), quoteIdent(m.Role), kw(opts, "TO"), quoteIdent(m.Member))
	if m.Admin {
		stmt += " " + kw(opts, "WITH ADMIN OPTION")
	}
	return stmt, nil
}

// RevokeRoleMembership revokes a role from a member.
type RevokeRoleMembership struct {
	Membership *catalog.RoleMembership
}

func (c *RevokeRoleMembership) ObjectType() ObjectType { return ObjectTypeRole }
func (c *RevokeRoleMembership) Operation() Operation   { return OperationDrop }
func (c *RevokeRoleMembership) Scope() Scope           { return ScopeMembership }
func (c *RevokeRoleMembership) Creates() []string      { return nil }

func (c *RevokeRoleMembership) Drops() []string {
	return []string{c.Membership.StableID()}
}

func (c *RevokeRoleMembership) Requires() []string {
	m := c.Membership
	return []string{catalog.RoleID(m.Role), catalog.RoleID(m.Member)}
}

func (c *RevokeRoleMembership) Serialize(opts render.Options) (string, error) {
	m := c.Membership
	return fmt.Sprintf("%s %s %s %s",
		kw(opts, "REVOKE"), quoteIdent(m.Role), kw(opts, "FROM"), quoteIdent(m.Member)), nil
}

// RevokeRoleAdminOption downgrades an admin membership to a plain one.
type RevokeRoleAdminOption struct {
	Membership *catalog.RoleMembership
}

func (c *RevokeRoleAdminOption) ObjectType() ObjectType { return ObjectTypeRole }
func (c *RevokeRoleAdminOption) Operation() Operation   { return OperationAlter }
func (c *RevokeRoleAdminOption) Scope() Scope           { return ScopeMembership }
func (c *RevokeRoleAdminOption) Creates() []string      { return nil }
func (c *RevokeRoleAdminOption) Drops() []string        { return nil }

func (c *RevokeRoleAdminOption) Requires() []string {
	return []string{c.Membership.StableID()}
}

func (c *RevokeRoleAdminOption) Serialize(opts render.Options) (string, error) {
	m := c.Membership
	return fmt.Sprintf("%s %s %s %s",
		kw(opts, "REVOKE ADMIN OPTION FOR"), quoteIdent(m.Role), kw(opts, "FROM"), quoteIdent(m.Member)), nil
}
