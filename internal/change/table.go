package change

import (
	"fmt"
	"strings"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

// CreateTable creates a table. Foreign-key constraints are never embedded
// in the statement; the diff always splits them into AddConstraint changes
// so circular references between tables order safely.
type CreateTable struct {
	Table *catalog.Table
}

func (c *CreateTable) ObjectType() ObjectType { return ObjectTypeTable }
func (c *CreateTable) Operation() Operation   { return OperationCreate }
func (c *CreateTable) Scope() Scope           { return ScopeObject }

func (c *CreateTable) Creates() []string {
	t := c.Table
	ids := []string{t.StableID()}
	for _, col := range t.Columns {
		ids = append(ids, catalog.ColumnID(t.Schema, t.Name, col.Name))
	}
	for _, con := range t.SortedConstraints() {
		if con.Type != catalog.ConstraintTypeForeignKey {
			ids = append(ids, con.StableID())
		}
	}
	return ids
}

func (c *CreateTable) Drops() []string { return nil }

func (c *CreateTable) Requires() []string {
	t := c.Table
	ids := []string{catalog.SchemaID(t.Schema)}
	ids = append(ids, t.Dependencies...)
	if t.PartitionParent != "" {
		schema, name, ok := strings.Cut(t.PartitionParent, ".")
		if ok {
			ids = append(ids, catalog.TableID(schema, name))
		}
	}
	return ids
}

func (c *CreateTable) Serialize(opts render.Options) (string, error) {
	t := c.Table
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE "))
	if t.Persistence == catalog.PersistenceUnlogged {
		b.WriteString(kw(opts, "UNLOGGED "))
	}
	b.WriteString(kw(opts, "TABLE "))
	b.WriteString(qualify(t.Schema, t.Name))

	if t.PartitionParent != "" {
		// Partition children are defined entirely by parent plus bound.
		schema, name, _ := strings.Cut(t.PartitionParent, ".")
		b.WriteString(" " + kw(opts, "PARTITION OF") + " " + qualify(schema, name))
		if t.PartitionBound != "" {
			b.WriteString(" " + t.PartitionBound)
		} else {
			b.WriteString(" " + kw(opts, "DEFAULT"))
		}
	} else {
		b.WriteString(" (")
		var defs []string
		for _, col := range t.Columns {
			defs = append(defs, "\n"+opts.Indent()+columnDef(col, opts))
		}
		for _, con := range t.SortedConstraints() {
			if con.Type == catalog.ConstraintTypeForeignKey {
				continue
			}
			def, err := constraintDef(con, opts)
			if err != nil {
				return "", err
			}
			defs = append(defs, "\n"+opts.Indent()+kw(opts, "CONSTRAINT")+" "+quoteIdent(con.Name)+" "+def)
		}
		b.WriteString(strings.Join(defs, ","))
		b.WriteString("\n)")
	}

	if t.PartitionStrategy != "" && t.PartitionParent == "" {
		b.WriteString(fmt.Sprintf(" %s %s (%s)", kw(opts, "PARTITION BY"), kw(opts, t.PartitionStrategy), t.PartitionKey))
	}
	if len(t.StorageOptions) > 0 {
		b.WriteString(" " + kw(opts, "WITH") + " (" + formatStorageOptions(t.StorageOptions) + ")")
	}
	if t.Tablespace != "" {
		b.WriteString(" " + kw(opts, "TABLESPACE") + " " + quoteIdent(t.Tablespace))
	}
	return b.String(), nil
}

// DropTable drops a table and everything scoped inside it.
type DropTable struct {
	Table *catalog.Table
}

func (c *DropTable) ObjectType() ObjectType { return ObjectTypeTable }
func (c *DropTable) Operation() Operation   { return OperationDrop }
func (c *DropTable) Scope() Scope           { return ScopeObject }
func (c *DropTable) Creates() []string      { return nil }

func (c *DropTable) Drops() []string {
	t := c.Table
	ids := []string{t.StableID()}
	for _, col := range t.Columns {
		ids = append(ids, catalog.ColumnID(t.Schema, t.Name, col.Name))
	}
	for _, con := range t.SortedConstraints() {
		ids = append(ids, con.StableID())
	}
	return ids
}

func (c *DropTable) Requires() []string {
	ids := []string{catalog.SchemaID(c.Table.Schema)}
	return append(ids, c.Table.Dependencies...)
}

func (c *DropTable) Serialize(opts render.Options) (string, error) {
	return kw(opts, "DROP TABLE ") + qualify(c.Table.Schema, c.Table.Name), nil
}

// relationKeyword picks the ALTER target keyword for changes shared
// between tables and foreign tables.
func relationKeyword(opts render.Options, foreign bool) string {
	if foreign {
		return kw(opts, "ALTER FOREIGN TABLE")
	}
	return kw(opts, "ALTER TABLE")
}

// AlterTableAddColumn adds one column. Foreign switches the statement to
// ALTER FOREIGN TABLE.
type AlterTableAddColumn struct {
	Schema  string
	Table   string
	Column  *catalog.Column
	Foreign bool
}

func (c *AlterTableAddColumn) ObjectType() ObjectType {
	if c.Foreign {
		return ObjectTypeForeignTable
	}
	return ObjectTypeTable
}
func (c *AlterTableAddColumn) Operation() Operation { return OperationAlter }
func (c *AlterTableAddColumn) Scope() Scope         { return ScopeObject }

func (c *AlterTableAddColumn) Creates() []string {
	return []string{catalog.ColumnID(c.Schema, c.Table, c.Column.Name)}
}
func (c *AlterTableAddColumn) Drops() []string { return nil }
func (c *AlterTableAddColumn) Requires() []string {
	return []string{c.relationID()}
}

func (c *AlterTableAddColumn) relationID() string {
	if c.Foreign {
		return catalog.ForeignTableID(c.Schema, c.Table)
	}
	return catalog.TableID(c.Schema, c.Table)
}

func (c *AlterTableAddColumn) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s",
		relationKeyword(opts, c.Foreign), qualify(c.Schema, c.Table),
		kw(opts, "ADD COLUMN"), columnDef(c.Column, opts)), nil
}

// AlterTableDropColumn drops one column.
type AlterTableDropColumn struct {
	Schema  string
	Table   string
	Column  string
	Foreign bool
}

func (c *AlterTableDropColumn) ObjectType() ObjectType {
	if c.Foreign {
		return ObjectTypeForeignTable
	}
	return ObjectTypeTable
}
func (c *AlterTableDropColumn) Operation() Operation { return OperationAlter }
func (c *AlterTableDropColumn) Scope() Scope         { return ScopeObject }
func (c *AlterTableDropColumn) Creates() []string    { return nil }

func (c *AlterTableDropColumn) Drops() []string {
	return []string{catalog.ColumnID(c.Schema, c.Table, c.Column)}
}

func (c *AlterTableDropColumn) Requires() []string {
	if c.Foreign {
		return []string{catalog.ForeignTableID(c.Schema, c.Table)}
	}
	return []string{catalog.TableID(c.Schema, c.Table)}
}

func (c *AlterTableDropColumn) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s",
		relationKeyword(opts, c.Foreign), qualify(c.Schema, c.Table),
		kw(opts, "DROP COLUMN"), quoteIdent(c.Column)), nil
}

// AlterTableAlterColumnType changes a column's data type.
type AlterTableAlterColumnType struct {
	Schema    string
	Table     string
	Column    string
	DataType  string
	Collation string
	Using     string
	Foreign   bool
}

func (c *AlterTableAlterColumnType) ObjectType() ObjectType {
	if c.Foreign {
		return ObjectTypeForeignTable
	}
	return ObjectTypeTable
}
func (c *AlterTableAlterColumnType) Operation() Operation { return OperationAlter }
func (c *AlterTableAlterColumnType) Scope() Scope         { return ScopeObject }
func (c *AlterTableAlterColumnType) Creates() []string    { return nil }
func (c *AlterTableAlterColumnType) Drops() []string      { return nil }

func (c *AlterTableAlterColumnType) Requires() []string {
	return []string{catalog.ColumnID(c.Schema, c.Table, c.Column)}
}

func (c *AlterTableAlterColumnType) Serialize(opts render.Options) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s %s %s %s",
		relationKeyword(opts, c.Foreign), qualify(c.Schema, c.Table),
		kw(opts, "ALTER COLUMN"), quoteIdent(c.Column), kw(opts, "TYPE"), c.DataType)
	if c.Collation != "" {
		b.WriteString(" " + kw(opts, "COLLATE") + " " + quoteIdent(c.Collation))
	}
	if c.Using != "" {
		b.WriteString(" " + kw(opts, "USING") + " " + c.Using)
	}
	return b.String(), nil
}

// AlterTableSetColumnDefault sets or replaces a column default.
type AlterTableSetColumnDefault struct {
	Schema  string
	Table   string
	Column  string
	Default string
	Foreign bool
}

func (c *AlterTableSetColumnDefault) ObjectType() ObjectType {
	if c.Foreign {
		return ObjectTypeForeignTable
	}
	return ObjectTypeTable
}
func (c *AlterTableSetColumnDefault) Operation() Operation { return OperationAlter }
func (c *AlterTableSetColumnDefault) Scope() Scope         { return ScopeObject }
func (c *AlterTableSetColumnDefault) Creates() []string    { return nil }
func (c *AlterTableSetColumnDefault) Drops() []string      { return nil }

func (c *AlterTableSetColumnDefault) Requires() []string {
	return []string{catalog.ColumnID(c.Schema, c.Table, c.Column)}
}

func (c *AlterTableSetColumnDefault) Serialize(opts render.Options) (string, error) {
	if c.Default == "" {
		return "", invalidf("empty default for column %s.%s.%s", c.Schema, c.Table, c.Column)
	}
	return fmt.Sprintf("%s %s %s %s %s %s",
		relationKeyword(opts, c.Foreign), qualify(c.Schema, c.Table),
		kw(opts, "ALTER COLUMN"), quoteIdent(c.Column), kw(opts, "SET DEFAULT"), c.Default), nil
}

// AlterTableDropColumnDefault removes a column default.
type AlterTableDropColumnDefault struct {
	Schema  string
	Table   string
	Column  string
	Foreign bool
}

func (c *AlterTableDropColumnDefault) ObjectType() ObjectType {
	if c.Foreign {
		return ObjectTypeForeignTable
	}
	return ObjectTypeTable
}
func (c *AlterTableDropColumnDefault) Operation() Operation { return OperationAlter }
func (c *AlterTableDropColumnDefault) Scope() Scope         { return ScopeObject }
func (c *AlterTableDropColumnDefault) Creates() []string    { return nil }
func (c *AlterTableDropColumnDefault) Drops() []string      { return nil }

func (c *AlterTableDropColumnDefault) Requires() []string {
	return []string{catalog.ColumnID(c.Schema, c.Table, c.Column)}
}

func (c *AlterTableDropColumnDefault) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s %s",
		relationKeyword(opts, c.Foreign), qualify(c.Schema, c.Table),
		kw(opts, "ALTER COLUMN"), quoteIdent(c.Column), kw(opts, "DROP DEFAULT")), nil
}

// AlterTableSetColumnNotNull toggles a column's NOT NULL constraint.
type AlterTableSetColumnNotNull struct {
	Schema  string
	Table   string
	Column  string
	NotNull bool
	Foreign bool
}

func (c *AlterTableSetColumnNotNull) ObjectType() ObjectType {
	if c.Foreign {
		return ObjectTypeForeignTable
	}
	return ObjectTypeTable
}
func (c *AlterTableSetColumnNotNull) Operation() Operation { return OperationAlter }
func (c *AlterTableSetColumnNotNull) Scope() Scope         { return ScopeObject }
func (c *AlterTableSetColumnNotNull) Creates() []string    { return nil }
func (c *AlterTableSetColumnNotNull) Drops() []string      { return nil }

func (c *AlterTableSetColumnNotNull) Requires() []string {
	return []string{catalog.ColumnID(c.Schema, c.Table, c.Column)}
}

func (c *AlterTableSetColumnNotNull) Serialize(opts render.Options) (string, error) {
	verb := "DROP NOT NULL"
	if c.NotNull {
		verb = "SET NOT NULL"
	}
	return fmt.Sprintf("%s %s %s %s %s",
		relationKeyword(opts, c.Foreign), qualify(c.Schema, c.Table),
		kw(opts, "ALTER COLUMN"), quoteIdent(c.Column), kw(opts, verb)), nil
}

// AlterTableSetColumnStatistics sets a per-column statistics target.
type AlterTableSetColumnStatistics struct {
	Schema     string
	Table      string
	Column     string
	Statistics int
}

func (c *AlterTableSetColumnStatistics) ObjectType() ObjectType { return ObjectTypeTable }
func (c *AlterTableSetColumnStatistics) Operation() Operation   { return OperationAlter }
func (c *AlterTableSetColumnStatistics) Scope() Scope           { return ScopeObject }
func (c *AlterTableSetColumnStatistics) Creates() []string      { return nil }
func (c *AlterTableSetColumnStatistics) Drops() []string        { return nil }

func (c *AlterTableSetColumnStatistics) Requires() []string {
	return []string{catalog.ColumnID(c.Schema, c.Table, c.Column)}
}

func (c *AlterTableSetColumnStatistics) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s %s %d",
		kw(opts, "ALTER TABLE"), qualify(c.Schema, c.Table),
		kw(opts, "ALTER COLUMN"), quoteIdent(c.Column), kw(opts, "SET STATISTICS"), c.Statistics), nil
}

// AlterTableSetColumnStorage sets a column storage mode.
type AlterTableSetColumnStorage struct {
	Schema  string
	Table   string
	Column  string
	Storage string // PLAIN, EXTERNAL, EXTENDED, MAIN
}

func (c *AlterTableSetColumnStorage) ObjectType() ObjectType { return ObjectTypeTable }
func (c *AlterTableSetColumnStorage) Operation() Operation   { return OperationAlter }
func (c *AlterTableSetColumnStorage) Scope() Scope           { return ScopeObject }
func (c *AlterTableSetColumnStorage) Creates() []string      { return nil }
func (c *AlterTableSetColumnStorage) Drops() []string        { return nil }

func (c *AlterTableSetColumnStorage) Requires() []string {
	return []string{catalog.ColumnID(c.Schema, c.Table, c.Column)}
}

func (c *AlterTableSetColumnStorage) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s %s %s",
		kw(opts, "ALTER TABLE"), qualify(c.Schema, c.Table),
		kw(opts, "ALTER COLUMN"), quoteIdent(c.Column), kw(opts, "SET STORAGE"), kw(opts, c.Storage)), nil
}

// Option is one storage-parameter key/value pair.
type Option struct {
	Key   string
	Value string
}

// AlterTableSetStorageParameters applies a minimal storage-parameter delta:
// SET only keys whose values changed, RESET only keys that were removed.
type AlterTableSetStorageParameters struct {
	Schema string
	Table  string
	Set    []Option
	Reset  []string
}

func (c *AlterTableSetStorageParameters) ObjectType() ObjectType { return ObjectTypeTable }
func (c *AlterTableSetStorageParameters) Operation() Operation   { return OperationAlter }
func (c *AlterTableSetStorageParameters) Scope() Scope           { return ScopeObject }
func (c *AlterTableSetStorageParameters) Creates() []string      { return nil }
func (c *AlterTableSetStorageParameters) Drops() []string        { return nil }

func (c *AlterTableSetStorageParameters) Requires() []string {
	return []string{catalog.TableID(c.Schema, c.Table)}
}

func (c *AlterTableSetStorageParameters) Serialize(opts render.Options) (string, error) {
	if len(c.Set) == 0 && len(c.Reset) == 0 {
		return "", invalidf("storage parameter change for %s.%s has no actions", c.Schema, c.Table)
	}
	var clauses []string
	if len(c.Set) > 0 {
		var parts []string
		for _, o := range c.Set {
			parts = append(parts, o.Key+"="+o.Value)
		}
		clauses = append(clauses, kw(opts, "SET")+" ("+strings.Join(parts, ", ")+")")
	}
	if len(c.Reset) > 0 {
		clauses = append(clauses, kw(opts, "RESET")+" ("+strings.Join(c.Reset, ", ")+")")
	}
	return fmt.Sprintf("%s %s %s",
		kw(opts, "ALTER TABLE"), qualify(c.Schema, c.Table), strings.Join(clauses, ", ")), nil
}

// AlterTableOwner transfers table ownership.
type AlterTableOwner struct {
	Schema string
	Table  string
	Owner  string
}

func (c *AlterTableOwner) ObjectType() ObjectType { return ObjectTypeTable }
func (c *AlterTableOwner) Operation() Operation   { return OperationAlter }
func (c *AlterTableOwner) Scope() Scope           { return ScopeObject }
func (c *AlterTableOwner) Creates() []string      { return nil }
func (c *AlterTableOwner) Drops() []string        { return nil }

func (c *AlterTableOwner) Requires() []string {
	return []string{catalog.TableID(c.Schema, c.Table), catalog.RoleID(c.Owner)}
}

func (c *AlterTableOwner) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s",
		kw(opts, "ALTER TABLE"), qualify(c.Schema, c.Table), kw(opts, "OWNER TO"), quoteIdent(c.Owner)), nil
}

// AlterTableSetLogged toggles UNLOGGED persistence.
type AlterTableSetLogged struct {
	Schema string
	Table  string
	Logged bool
}

func (c *AlterTableSetLogged) ObjectType() ObjectType { return ObjectTypeTable }
func (c *AlterTableSetLogged) Operation() Operation   { return OperationAlter }
func (c *AlterTableSetLogged) Scope() Scope           { return ScopeObject }
func (c *AlterTableSetLogged) Creates() []string      { return nil }
func (c *AlterTableSetLogged) Drops() []string        { return nil }

func (c *AlterTableSetLogged) Requires() []string {
	return []string{catalog.TableID(c.Schema, c.Table)}
}

func (c *AlterTableSetLogged) Serialize(opts render.Options) (string, error) {
	verb := "SET UNLOGGED"
	if c.Logged {
		verb = "SET LOGGED"
	}
	return fmt.Sprintf("%s %s %s",
		kw(opts, "ALTER TABLE"), qualify(c.Schema, c.Table), kw(opts, verb)), nil
}

// AlterTableSetTablespace moves the table to another tablespace.
type AlterTableSetTablespace struct {
	Schema     string
	Table      string
	Tablespace string
}

func (c *AlterTableSetTablespace) ObjectType() ObjectType { return ObjectTypeTable }
func (c *AlterTableSetTablespace) Operation() Operation   { return OperationAlter }
func (c *AlterTableSetTablespace) Scope() Scope           { return ScopeObject }
func (c *AlterTableSetTablespace) Creates() []string      { return nil }
func (c *AlterTableSetTablespace) Drops() []string        { return nil }

func (c *AlterTableSetTablespace) Requires() []string {
	return []string{catalog.TableID(c.Schema, c.Table)}
}

func (c *AlterTableSetTablespace) Serialize(opts render.Options) (string, error) {
	ts := c.Tablespace
	if ts == "" {
		ts = "pg_default"
	}
	return fmt.Sprintf("%s %s %s %s",
		kw(opts, "ALTER TABLE"), qualify(c.Schema, c.Table), kw(opts, "SET TABLESPACE"), quoteIdent(ts)), nil
}

// AlterTableRowSecurity toggles ENABLE/DISABLE and FORCE/NO FORCE row
// security.
type AlterTableRowSecurity struct {
	Schema string
	Table  string
	Clause string // "ENABLE", "DISABLE", "FORCE", "NO FORCE"
}

func (c *AlterTableRowSecurity) ObjectType() ObjectType { return ObjectTypeTable }
func (c *AlterTableRowSecurity) Operation() Operation   { return OperationAlter }
func (c *AlterTableRowSecurity) Scope() Scope           { return ScopeObject }
func (c *AlterTableRowSecurity) Creates() []string      { return nil }
func (c *AlterTableRowSecurity) Drops() []string        { return nil }

func (c *AlterTableRowSecurity) Requires() []string {
	return []string{catalog.TableID(c.Schema, c.Table)}
}

func (c *AlterTableRowSecurity) Serialize(opts render.Options) (string, error) {
	switch c.Clause {
	case "ENABLE", "DISABLE", "FORCE", "NO FORCE":
	default:
		return "", invalidf("unknown row security clause %q", c.Clause)
	}
	return fmt.Sprintf("%s %s %s %s",
		kw(opts, "ALTER TABLE"), qualify(c.Schema, c.Table), kw(opts, c.Clause), kw(opts, "ROW LEVEL SECURITY")), nil
}

// columnDef renders one column definition.
func columnDef(col *catalog.Column, opts render.Options) string {
	var b strings.Builder
	b.WriteString(quoteIdent(col.Name))
	b.WriteString(" ")
	b.WriteString(col.DataType)
	if col.Collation != "" {
		b.WriteString(" " + kw(opts, "COLLATE") + " " + quoteIdent(col.Collation))
	}
	if col.Generated != "" {
		b.WriteString(fmt.Sprintf(" %s (%s) %s", kw(opts, "GENERATED ALWAYS AS"), col.Generated, kw(opts, "STORED")))
	}
	if col.NotNull {
		b.WriteString(" " + kw(opts, "NOT NULL"))
	}
	if col.Identity != "" {
		b.WriteString(fmt.Sprintf(" %s %s %s", kw(opts, "GENERATED"), kw(opts, col.Identity), kw(opts, "AS IDENTITY")))
	} else if col.Default != nil && col.Generated == "" {
		b.WriteString(" " + kw(opts, "DEFAULT") + " " + *col.Default)
	}
	return b.String()
}

// formatStorageOptions renders flat key/value pairs as "k=v, k=v".
func formatStorageOptions(pairs []string) string {
	m := catalog.OptionMap(pairs)
	var parts []string
	for _, k := range catalog.OptionKeys(m) {
		if m[k] == "" {
			parts = append(parts, k)
		} else {
			parts = append(parts, k+"="+m[k])
		}
	}
	return strings.Join(parts, ", ")
}
