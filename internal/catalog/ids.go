package catalog

import "fmt"

// Stable IDs name database objects across snapshots. The format is
// "kind:identity" for first-class objects and "kind(args)" for dependent
// sub-objects such as comments and ACL grants. IDs are used as map keys in
// the Catalog and as dependency-edge endpoints by the ordering engine, so
// two snapshots of the same database must derive identical IDs for
// unchanged objects.

// RoleID returns the stable ID for a role. Roles are cluster-global.
func RoleID(name string) string {
	return "role:" + name
}

// SchemaID returns the stable ID for a schema (namespace).
func SchemaID(name string) string {
	return "schema:" + name
}

// ExtensionID returns the stable ID for an extension.
func ExtensionID(name string) string {
	return "extension:" + name
}

// CollationID returns the stable ID for a collation.
func CollationID(schema, name string) string {
	return fmt.Sprintf("collation:%s.%s", schema, name)
}

// TypeID returns the stable ID for a user-defined type (enum, composite,
// domain or range).
func TypeID(schema, name string) string {
	return fmt.Sprintf("type:%s.%s", schema, name)
}

// TableID returns the stable ID for a table.
func TableID(schema, name string) string {
	return fmt.Sprintf("table:%s.%s", schema, name)
}

// ColumnID returns the stable ID for a table column.
func ColumnID(schema, table, name string) string {
	return fmt.Sprintf("column(%s,%s,%s)", schema, table, name)
}

// ConstraintID returns the stable ID for a table constraint. Constraint
// names are unique per table in PostgreSQL.
func ConstraintID(schema, table, name string) string {
	return fmt.Sprintf("constraint:%s.%s.%s", schema, table, name)
}

// IndexID returns the stable ID for an index. Index names are unique per
// schema, not per table.
func IndexID(schema, name string) string {
	return fmt.Sprintf("index:%s.%s", schema, name)
}

// SequenceID returns the stable ID for a sequence.
func SequenceID(schema, name string) string {
	return fmt.Sprintf("sequence:%s.%s", schema, name)
}

// ViewID returns the stable ID for a view.
func ViewID(schema, name string) string {
	return fmt.Sprintf("view:%s.%s", schema, name)
}

// MaterializedViewID returns the stable ID for a materialized view.
func MaterializedViewID(schema, name string) string {
	return fmt.Sprintf("matview:%s.%s", schema, name)
}

// FunctionID returns the stable ID for a function. The argument signature
// participates in identity because functions can be overloaded.
func FunctionID(schema, name, args string) string {
	return fmt.Sprintf("function:%s.%s(%s)", schema, name, args)
}

// ProcedureID returns the stable ID for a procedure.
func ProcedureID(schema, name, args string) string {
	return fmt.Sprintf("procedure:%s.%s(%s)", schema, name, args)
}

// AggregateID returns the stable ID for an aggregate.
func AggregateID(schema, name, args string) string {
	return fmt.Sprintf("aggregate:%s.%s(%s)", schema, name, args)
}

// TriggerID returns the stable ID for a trigger. Trigger names are scoped
// to their table.
func TriggerID(schema, table, name string) string {
	return fmt.Sprintf("trigger:%s.%s.%s", schema, table, name)
}

// RuleID returns the stable ID for a rewrite rule.
func RuleID(schema, table, name string) string {
	return fmt.Sprintf("rule:%s.%s.%s", schema, table, name)
}

// PolicyID returns the stable ID for a row-level security policy.
func PolicyID(schema, table, name string) string {
	return fmt.Sprintf("policy:%s.%s.%s", schema, table, name)
}

// EventTriggerID returns the stable ID for an event trigger.
func EventTriggerID(name string) string {
	return "eventtrigger:" + name
}

// PublicationID returns the stable ID for a logical replication publication.
func PublicationID(name string) string {
	return "publication:" + name
}

// SubscriptionID returns the stable ID for a logical replication subscription.
func SubscriptionID(name string) string {
	return "subscription:" + name
}

// ForeignDataWrapperID returns the stable ID for a foreign-data wrapper.
func ForeignDataWrapperID(name string) string {
	return "fdw:" + name
}

// ForeignServerID returns the stable ID for a foreign server.
func ForeignServerID(name string) string {
	return "server:" + name
}

// UserMappingID returns the stable ID for a user mapping. Identity is the
// (server, role) pair; PUBLIC mappings use the literal "public".
func UserMappingID(server, role string) string {
	return fmt.Sprintf("usermapping(%s,%s)", server, role)
}

// ForeignTableID returns the stable ID for a foreign table.
func ForeignTableID(schema, name string) string {
	return fmt.Sprintf("foreigntable:%s.%s", schema, name)
}

// CommentID returns the dependent stable ID for the comment attached to
// another object.
func CommentID(ownerID string) string {
	return fmt.Sprintf("comment(%s)", ownerID)
}

// ACLID returns the dependent stable ID for one grantee's privileges on an
// object.
func ACLID(objectID, grantee string) string {
	return fmt.Sprintf("acl(%s,%s)", objectID, grantee)
}

// MembershipID returns the stable ID for a role membership grant.
func MembershipID(role, member string) string {
	return fmt.Sprintf("membership(%s,%s)", role, member)
}

// DefaultACLID returns the stable ID for a default privilege entry. Schema
// is empty for database-wide defaults.
func DefaultACLID(role, objectType, schema, grantee string) string {
	return fmt.Sprintf("defacl(%s,%s,%s,%s)", role, objectType, schema, grantee)
}
