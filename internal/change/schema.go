package change

import (
	"fmt"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

// CreateSchema creates a namespace.
type CreateSchema struct {
	Schema *catalog.Schema
}

func (c *CreateSchema) ObjectType() ObjectType { return ObjectTypeSchema }
func (c *CreateSchema) Operation() Operation   { return OperationCreate }
func (c *CreateSchema) Scope() Scope           { return ScopeObject }

func (c *CreateSchema) Creates() []string {
	return []string{c.Schema.StableID()}
}

func (c *CreateSchema) Drops() []string { return nil }

func (c *CreateSchema) Requires() []string {
	if c.Schema.Owner != "" {
		return []string{catalog.RoleID(c.Schema.Owner)}
	}
	return nil
}

func (c *CreateSchema) Serialize(opts render.Options) (string, error) {
	stmt := kw(opts, "CREATE SCHEMA ") + quoteIdent(c.Schema.Name)
	if c.Schema.Owner != "" {
		stmt += " " + kw(opts, "AUTHORIZATION") + " " + quoteIdent(c.Schema.Owner)
	}
	return stmt, nil
}

// DropSchema drops a namespace. Objects inside it carry their own drop
// changes, so no CASCADE is emitted.
type DropSchema struct {
	Schema *catalog.Schema
}

func (c *DropSchema) ObjectType() ObjectType { return ObjectTypeSchema }
func (c *DropSchema) Operation() Operation   { return OperationDrop }
func (c *DropSchema) Scope() Scope           { return ScopeObject }
func (c *DropSchema) Creates() []string      { return nil }

func (c *DropSchema) Drops() []string {
	return []string{c.Schema.StableID()}
}

func (c *DropSchema) Requires() []string { return nil }

func (c *DropSchema) Serialize(opts render.Options) (string, error) {
	return kw(opts, "DROP SCHEMA ") + quoteIdent(c.Schema.Name), nil
}

// AlterSchemaOwner transfers schema ownership.
type AlterSchemaOwner struct {
	Name  string
	Owner string
}

func (c *AlterSchemaOwner) ObjectType() ObjectType { return ObjectTypeSchema }
func (c *AlterSchemaOwner) Operation() Operation   { return OperationAlter }
func (c *AlterSchemaOwner) Scope() Scope           { return ScopeObject }
func (c *AlterSchemaOwner) Creates() []string      { return nil }
func (c *AlterSchemaOwner) Drops() []string        { return nil }

func (c *AlterSchemaOwner) Requires() []string {
	return []string{catalog.SchemaID(c.Name), catalog.RoleID(c.Owner)}
}

func (c *AlterSchemaOwner) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s",
		kw(opts, "ALTER SCHEMA"), quoteIdent(c.Name), kw(opts, "OWNER TO"), quoteIdent(c.Owner)), nil
}

// CreateExtension installs an extension.
type CreateExtension struct {
	Extension *catalog.Extension
}

func (c *CreateExtension) ObjectType() ObjectType { return ObjectTypeExtension }
func (c *CreateExtension) Operation() Operation   { return OperationCreate }
func (c *CreateExtension) Scope() Scope           { return ScopeObject }

func (c *CreateExtension) Creates() []string {
	return []string{c.Extension.StableID()}
}

func (c *CreateExtension) Drops() []string { return nil }

func (c *CreateExtension) Requires() []string {
	if s := c.Extension.Schema; s != "" && s != "pg_catalog" && s != "public" {
		return []string{catalog.SchemaID(s)}
	}
	return nil
}

func (c *CreateExtension) Serialize(opts render.Options) (string, error) {
	stmt := kw(opts, "CREATE EXTENSION ") + quoteIdent(c.Extension.Name)
	if c.Extension.Schema != "" {
		stmt += " " + kw(opts, "WITH SCHEMA") + " " + quoteIdent(c.Extension.Schema)
	}
	if c.Extension.Version != "" {
		stmt += " " + kw(opts, "VERSION") + " " + quoteLiteral(c.Extension.Version)
	}
	return stmt, nil
}

// DropExtension removes an extension.
type DropExtension struct {
	Extension *catalog.Extension
}

func (c *DropExtension) ObjectType() ObjectType { return ObjectTypeExtension }
func (c *DropExtension) Operation() Operation   { return OperationDrop }
func (c *DropExtension) Scope() Scope           { return ScopeObject }
func (c *DropExtension) Creates() []string      { return nil }

func (c *DropExtension) Drops() []string {
	return []string{c.Extension.StableID()}
}

func (c *DropExtension) Requires() []string { return nil }

func (c *DropExtension) Serialize(opts render.Options) (string, error) {
	return kw(opts, "DROP EXTENSION ") + quoteIdent(c.Extension.Name), nil
}

// AlterExtensionUpdate upgrades an extension to a target version.
type AlterExtensionUpdate struct {
	Name    string
	Version string
}

func (c *AlterExtensionUpdate) ObjectType() ObjectType { return ObjectTypeExtension }
func (c *AlterExtensionUpdate) Operation() Operation   { return OperationAlter }
func (c *AlterExtensionUpdate) Scope() Scope           { return ScopeObject }
func (c *AlterExtensionUpdate) Creates() []string      { return nil }
func (c *AlterExtensionUpdate) Drops() []string        { return nil }

func (c *AlterExtensionUpdate) Requires() []string {
	return []string{catalog.ExtensionID(c.Name)}
}

func (c *AlterExtensionUpdate) Serialize(opts render.Options) (string, error) {
	stmt := kw(opts, "ALTER EXTENSION ") + quoteIdent(c.Name) + " " + kw(opts, "UPDATE")
	if c.Version != "" {
		stmt += " " + kw(opts, "TO") + " " + quoteLiteral(c.Version)
	}
	return stmt, nil
}

// CreateCollation creates a collation.
type CreateCollation struct {
	Collation *catalog.Collation
}

func (c *CreateCollation) ObjectType() ObjectType { return ObjectTypeCollation }
func (c *CreateCollation) Operation() Operation   { return OperationCreate }
func (c *CreateCollation) Scope() Scope           { return ScopeObject }

func (c *CreateCollation) Creates() []string {
	return []string{c.Collation.StableID()}
}

func (c *CreateCollation) Drops() []string { return nil }

func (c *CreateCollation) Requires() []string {
	return []string{catalog.SchemaID(c.Collation.Schema)}
}

func (c *CreateCollation) Serialize(opts render.Options) (string, error) {
	col := c.Collation
	if col.Locale == "" {
		return "", invalidf("collation %s.%s has no locale", col.Schema, col.Name)
	}
	stmt := kw(opts, "CREATE COLLATION ") + qualify(col.Schema, col.Name) +
		" (" + kw(opts, "LOCALE") + " = " + quoteLiteral(col.Locale)
	if col.Provider != "" {
		stmt += ", " + kw(opts, "PROVIDER") + " = " + col.Provider
	}
	if !col.Deterministic {
		stmt += ", " + kw(opts, "DETERMINISTIC") + " = " + kw(opts, "FALSE")
	}
	return stmt + ")", nil
}

// DropCollation drops a collation.
type DropCollation struct {
	Collation *catalog.Collation
}

func (c *DropCollation) ObjectType() ObjectType { return ObjectTypeCollation }
func (c *DropCollation) Operation() Operation   { return OperationDrop }
func (c *DropCollation) Scope() Scope           { return ScopeObject }
func (c *DropCollation) Creates() []string      { return nil }

func (c *DropCollation) Drops() []string {
	return []string{c.Collation.StableID()}
}

func (c *DropCollation) Requires() []string {
	return []string{catalog.SchemaID(c.Collation.Schema)}
}

func (c *DropCollation) Serialize(opts render.Options) (string, error) {
	return kw(opts, "DROP COLLATION ") + qualify(c.Collation.Schema, c.Collation.Name), nil
}
