package catalog

import "sort"

// PrivilegeObjectType names the DDL object class a grant applies to.
type PrivilegeObjectType string

const (
	PrivilegeObjectTable    PrivilegeObjectType = "TABLE"
	PrivilegeObjectSequence PrivilegeObjectType = "SEQUENCE"
	PrivilegeObjectFunction PrivilegeObjectType = "FUNCTION"
	PrivilegeObjectSchema   PrivilegeObjectType = "SCHEMA"
	PrivilegeObjectDatabase PrivilegeObjectType = "DATABASE"
	PrivilegeObjectType_    PrivilegeObjectType = "TYPE"
	PrivilegeObjectFDW      PrivilegeObjectType = "FOREIGN DATA WRAPPER"
	PrivilegeObjectServer   PrivilegeObjectType = "FOREIGN SERVER"
)

// PrivilegeGrant is one granted privilege with its grant-option flag.
type PrivilegeGrant struct {
	Name      string `json:"name"`
	Grantable bool   `json:"grantable,omitempty"`
}

// Privilege represents one grantee's ACL entry on one object. Identity is
// the (object, grantee) pair; the privilege set is data.
type Privilege struct {
	ObjectID   string              `json:"object_id"` // stable ID of the target object
	ObjectType PrivilegeObjectType `json:"object_type"`
	ObjectName string              `json:"object_name"` // SQL-renderable name, e.g. "public.t"
	Grantee    string              `json:"grantee"`     // "public" for PUBLIC

	Grants []PrivilegeGrant `json:"grants"`
}

func (p *Privilege) StableID() string {
	return ACLID(p.ObjectID, p.Grantee)
}

// DefaultPrivilege represents one ALTER DEFAULT PRIVILEGES entry. Schema is
// empty for database-wide defaults.
type DefaultPrivilege struct {
	Role       string `json:"role"`        // defaults apply to objects created by this role
	ObjectType string `json:"object_type"` // TABLES, SEQUENCES, FUNCTIONS, TYPES, SCHEMAS
	Schema     string `json:"schema,omitempty"`
	Grantee    string `json:"grantee"`

	Grants []PrivilegeGrant `json:"grants"`
}

func (d *DefaultPrivilege) StableID() string {
	return DefaultACLID(d.Role, d.ObjectType, d.Schema, d.Grantee)
}

// PrivilegeUniverse returns the full privilege set for an object type on a
// given server major version, in canonical order. A grant set equal to the
// universe renders as ALL.
func PrivilegeUniverse(objectType PrivilegeObjectType, serverVersion int) []string {
	switch objectType {
	case PrivilegeObjectTable:
		universe := []string{"SELECT", "INSERT", "UPDATE", "DELETE", "TRUNCATE", "REFERENCES", "TRIGGER"}
		if serverVersion >= 17 {
			universe = append(universe, "MAINTAIN")
		}
		return universe
	case PrivilegeObjectSequence:
		return []string{"USAGE", "SELECT", "UPDATE"}
	case PrivilegeObjectFunction:
		return []string{"EXECUTE"}
	case PrivilegeObjectSchema:
		return []string{"USAGE", "CREATE"}
	case PrivilegeObjectDatabase:
		return []string{"CREATE", "CONNECT", "TEMPORARY"}
	case PrivilegeObjectType_:
		return []string{"USAGE"}
	case PrivilegeObjectFDW, PrivilegeObjectServer:
		return []string{"USAGE"}
	}
	return nil
}

// GrantNames returns the privilege names of a grant list, sorted.
func GrantNames(grants []PrivilegeGrant) []string {
	names := make([]string, 0, len(grants))
	for _, g := range grants {
		names = append(names, g.Name)
	}
	sort.Strings(names)
	return names
}

// GrantsEqual reports whether two grant lists carry the same privileges
// with the same grant-option flags, ignoring order.
func GrantsEqual(a, b []PrivilegeGrant) bool {
	if len(a) != len(b) {
		return false
	}
	am := make(map[string]bool, len(a))
	for _, g := range a {
		am[g.Name] = g.Grantable
	}
	for _, g := range b {
		grantable, ok := am[g.Name]
		if !ok || grantable != g.Grantable {
			return false
		}
	}
	return true
}
