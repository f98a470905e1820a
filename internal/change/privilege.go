package change

import (
	"strings"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

// privilegeObjectType maps an ACL object class to its change object type.
func privilegeObjectType(t catalog.PrivilegeObjectType) ObjectType {
	switch t {
	case catalog.PrivilegeObjectTable:
		return ObjectTypeTable
	case catalog.PrivilegeObjectSequence:
		return ObjectTypeSequence
	case catalog.PrivilegeObjectFunction:
		return ObjectTypeFunction
	case catalog.PrivilegeObjectSchema:
		return ObjectTypeSchema
	case catalog.PrivilegeObjectType_:
		return ObjectTypeType
	case catalog.PrivilegeObjectFDW:
		return ObjectTypeForeignDataWrapper
	case catalog.PrivilegeObjectServer:
		return ObjectTypeForeignServer
	}
	return ObjectTypeTable
}

// granteeName renders a grantee, where "public" means PUBLIC.
func granteeName(grantee string, opts render.Options) string {
	if grantee == "public" {
		return kw(opts, "PUBLIC")
	}
	return quoteIdent(grantee)
}

// privilegeList renders a grant set. When the set equals the full universe
// for the object type and server version it collapses to ALL; otherwise
// the names are listed in the universe's canonical order.
func privilegeList(names []string, objectType catalog.PrivilegeObjectType, serverVersion int, opts render.Options) string {
	universe := catalog.PrivilegeUniverse(objectType, serverVersion)
	if len(names) == len(universe) && len(universe) > 0 {
		have := make(map[string]bool, len(names))
		for _, n := range names {
			have[n] = true
		}
		all := true
		for _, u := range universe {
			if !have[u] {
				all = false
				break
			}
		}
		if all {
			return kw(opts, "ALL")
		}
	}
	ordered := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, u := range universe {
		for _, n := range names {
			if n == u && !seen[n] {
				ordered = append(ordered, kw(opts, n))
				seen[n] = true
			}
		}
	}
	for _, n := range names {
		if !seen[n] {
			ordered = append(ordered, kw(opts, n))
			seen[n] = true
		}
	}
	return strings.Join(ordered, ", ")
}

// grantSetNames splits a grant list by grant-option flag and reports
// whether it mixes both flavors.
func grantSetNames(grants []catalog.PrivilegeGrant) (names []string, grantable bool, mixed bool) {
	if len(grants) == 0 {
		return nil, false, false
	}
	grantable = grants[0].Grantable
	for _, g := range grants {
		if g.Grantable != grantable {
			return nil, false, true
		}
		names = append(names, g.Name)
	}
	return names, grantable, false
}

// GrantPrivileges grants a set of privileges on one object to one grantee.
// All grants in one change must share the same grant-option flag; a diff
// needing both emits two changes.
type GrantPrivileges struct {
	Privilege     *catalog.Privilege
	Grants        []catalog.PrivilegeGrant
	ServerVersion int

	// Entry marks the change that establishes the grantee's ACL entry,
	// as opposed to widening an existing one.
	Entry bool
}

func (c *GrantPrivileges) ObjectType() ObjectType {
	return privilegeObjectType(c.Privilege.ObjectType)
}

func (c *GrantPrivileges) Operation() Operation { return OperationCreate }
func (c *GrantPrivileges) Scope() Scope         { return ScopePrivilege }

func (c *GrantPrivileges) Creates() []string {
	if !c.Entry {
		return nil
	}
	return []string{c.Privilege.StableID()}
}

func (c *GrantPrivileges) Drops() []string { return nil }

func (c *GrantPrivileges) Requires() []string {
	p := c.Privilege
	ids := []string{p.ObjectID}
	if p.Grantee != "public" {
		ids = append(ids, catalog.RoleID(p.Grantee))
	}
	return ids
}

func (c *GrantPrivileges) Serialize(opts render.Options) (string, error) {
	p := c.Privilege
	if len(c.Grants) == 0 {
		return "", invalidf("grant on %s to %s has no privileges", p.ObjectName, p.Grantee)
	}
	names, grantable, mixed := grantSetNames(c.Grants)
	if mixed {
		return "", invalidf("grant on %s to %s mixes grantable and plain privileges", p.ObjectName, p.Grantee)
	}
	var b strings.Builder
	b.WriteString(kw(opts, "GRANT") + " ")
	b.WriteString(privilegeList(names, p.ObjectType, c.ServerVersion, opts))
	b.WriteString(" " + kw(opts, "ON") + " " + kw(opts, string(p.ObjectType)) + " " + p.ObjectName)
	b.WriteString(" " + kw(opts, "TO") + " " + granteeName(p.Grantee, opts))
	if grantable {
		b.WriteString(" " + kw(opts, "WITH GRANT OPTION"))
	}
	return b.String(), nil
}

// RevokePrivileges revokes a set of privileges on one object from one
// grantee. With GrantOptionOnly it revokes just the grant option and
// leaves the privileges in place.
type RevokePrivileges struct {
	Privilege     *catalog.Privilege
	Grants        []catalog.PrivilegeGrant
	ServerVersion int

	GrantOptionOnly bool

	// Entry marks the change that removes the grantee's last privileges
	// on the object.
	Entry bool
}

func (c *RevokePrivileges) ObjectType() ObjectType {
	return privilegeObjectType(c.Privilege.ObjectType)
}

func (c *RevokePrivileges) Operation() Operation { return OperationDrop }
func (c *RevokePrivileges) Scope() Scope         { return ScopePrivilege }
func (c *RevokePrivileges) Creates() []string    { return nil }

func (c *RevokePrivileges) Drops() []string {
	if !c.Entry {
		return nil
	}
	return []string{c.Privilege.StableID()}
}

func (c *RevokePrivileges) Requires() []string {
	p := c.Privilege
	ids := []string{p.ObjectID}
	if p.Grantee != "public" {
		ids = append(ids, catalog.RoleID(p.Grantee))
	}
	return ids
}

func (c *RevokePrivileges) Serialize(opts render.Options) (string, error) {
	p := c.Privilege
	if len(c.Grants) == 0 {
		return "", invalidf("revoke on %s from %s has no privileges", p.ObjectName, p.Grantee)
	}
	names := make([]string, 0, len(c.Grants))
	for _, g := range c.Grants {
		names = append(names, g.Name)
	}
	var b strings.Builder
	b.WriteString(kw(opts, "REVOKE") + " ")
	if c.GrantOptionOnly {
		b.WriteString(kw(opts, "GRANT OPTION FOR") + " ")
	}
	b.WriteString(privilegeList(names, p.ObjectType, c.ServerVersion, opts))
	b.WriteString(" " + kw(opts, "ON") + " " + kw(opts, string(p.ObjectType)) + " " + p.ObjectName)
	b.WriteString(" " + kw(opts, "FROM") + " " + granteeName(p.Grantee, opts))
	return b.String(), nil
}

// defaultPrivilegeUniverse maps an ALTER DEFAULT PRIVILEGES object class
// (plural form) to the matching ACL object class.
func defaultPrivilegeUniverse(objectType string) catalog.PrivilegeObjectType {
	switch objectType {
	case "TABLES":
		return catalog.PrivilegeObjectTable
	case "SEQUENCES":
		return catalog.PrivilegeObjectSequence
	case "FUNCTIONS", "ROUTINES":
		return catalog.PrivilegeObjectFunction
	case "TYPES":
		return catalog.PrivilegeObjectType_
	case "SCHEMAS":
		return catalog.PrivilegeObjectSchema
	}
	return ""
}

func defaultPrivilegePrefix(d *catalog.DefaultPrivilege, opts render.Options) string {
	var b strings.Builder
	b.WriteString(kw(opts, "ALTER DEFAULT PRIVILEGES"))
	if d.Role != "" {
		b.WriteString(" " + kw(opts, "FOR ROLE") + " " + quoteIdent(d.Role))
	}
	if d.Schema != "" {
		b.WriteString(" " + kw(opts, "IN SCHEMA") + " " + quoteIdent(d.Schema))
	}
	return b.String()
}

func defaultPrivilegeRequires(d *catalog.DefaultPrivilege) []string {
	var ids []string
	if d.Role != "" {
		ids = append(ids, catalog.RoleID(d.Role))
	}
	if d.Schema != "" {
		ids = append(ids, catalog.SchemaID(d.Schema))
	}
	if d.Grantee != "public" {
		ids = append(ids, catalog.RoleID(d.Grantee))
	}
	return ids
}

// GrantDefaultPrivileges grants default privileges for objects created by
// a role, optionally scoped to a schema.
type GrantDefaultPrivileges struct {
	Default       *catalog.DefaultPrivilege
	Grants        []catalog.PrivilegeGrant
	ServerVersion int

	Entry bool
}

func (c *GrantDefaultPrivileges) ObjectType() ObjectType {
	return privilegeObjectType(defaultPrivilegeUniverse(c.Default.ObjectType))
}

func (c *GrantDefaultPrivileges) Operation() Operation { return OperationCreate }
func (c *GrantDefaultPrivileges) Scope() Scope         { return ScopeDefaultPrivilege }

func (c *GrantDefaultPrivileges) Creates() []string {
	if !c.Entry {
		return nil
	}
	return []string{c.Default.StableID()}
}

func (c *GrantDefaultPrivileges) Drops() []string { return nil }

func (c *GrantDefaultPrivileges) Requires() []string {
	return defaultPrivilegeRequires(c.Default)
}

func (c *GrantDefaultPrivileges) Serialize(opts render.Options) (string, error) {
	d := c.Default
	if len(c.Grants) == 0 {
		return "", invalidf("default privilege grant for %s to %s has no privileges", d.Role, d.Grantee)
	}
	names, grantable, mixed := grantSetNames(c.Grants)
	if mixed {
		return "", invalidf("default privilege grant for %s to %s mixes grantable and plain privileges", d.Role, d.Grantee)
	}
	var b strings.Builder
	b.WriteString(defaultPrivilegePrefix(d, opts))
	b.WriteString(" " + kw(opts, "GRANT") + " ")
	b.WriteString(privilegeList(names, defaultPrivilegeUniverse(d.ObjectType), c.ServerVersion, opts))
	b.WriteString(" " + kw(opts, "ON") + " " + kw(opts, d.ObjectType))
	b.WriteString(" " + kw(opts, "TO") + " " + granteeName(d.Grantee, opts))
	if grantable {
		b.WriteString(" " + kw(opts, "WITH GRANT OPTION"))
	}
	return b.String(), nil
}

// RevokeDefaultPrivileges revokes default privileges for objects created
// by a role.
type RevokeDefaultPrivileges struct {
	Default       *catalog.DefaultPrivilege
	Grants        []catalog.PrivilegeGrant
	ServerVersion int

	Entry bool
}

func (c *RevokeDefaultPrivileges) ObjectType() ObjectType {
	return privilegeObjectType(defaultPrivilegeUniverse(c.Default.ObjectType))
}

func (c *RevokeDefaultPrivileges) Operation() Operation { return OperationDrop }
func (c *RevokeDefaultPrivileges) Scope() Scope         { return ScopeDefaultPrivilege }
func (c *RevokeDefaultPrivileges) Creates() []string    { return nil }

func (c *RevokeDefaultPrivileges) Drops() []string {
	if !c.Entry {
		return nil
	}
	return []string{c.Default.StableID()}
}

func (c *RevokeDefaultPrivileges) Requires() []string {
	return defaultPrivilegeRequires(c.Default)
}

func (c *RevokeDefaultPrivileges) Serialize(opts render.Options) (string, error) {
	d := c.Default
	if len(c.Grants) == 0 {
		return "", invalidf("default privilege revoke for %s from %s has no privileges", d.Role, d.Grantee)
	}
	names := make([]string, 0, len(c.Grants))
	for _, g := range c.Grants {
		names = append(names, g.Name)
	}
	var b strings.Builder
	b.WriteString(defaultPrivilegePrefix(d, opts))
	b.WriteString(" " + kw(opts, "REVOKE") + " ")
	b.WriteString(privilegeList(names, defaultPrivilegeUniverse(d.ObjectType), c.ServerVersion, opts))
	b.WriteString(" " + kw(opts, "ON") + " " + kw(opts, d.ObjectType))
	b.WriteString(" " + kw(opts, "FROM") + " " + granteeName(d.Grantee, opts))
	return b.String(), nil
}
