package change

import (
	"fmt"
	"strings"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

// CreateIndex creates a secondary index. Constraint-backed indexes never
// reach this change; the constraint DDL creates them implicitly.
type CreateIndex struct {
	Index *catalog.Index
}

func (c *CreateIndex) ObjectType() ObjectType { return ObjectTypeIndex }
func (c *CreateIndex) Operation() Operation   { return OperationCreate }
func (c *CreateIndex) Scope() Scope           { return ScopeObject }

func (c *CreateIndex) Creates() []string {
	return []string{c.Index.StableID()}
}

func (c *CreateIndex) Drops() []string { return nil }

func (c *CreateIndex) Requires() []string {
	return []string{c.Index.ParentID()}
}

func (c *CreateIndex) Serialize(opts render.Options) (string, error) {
	idx := c.Index
	if len(idx.Columns) == 0 {
		return "", invalidf("index %s.%s has no key columns", idx.Schema, idx.Name)
	}
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE "))
	if idx.Unique {
		b.WriteString(kw(opts, "UNIQUE "))
	}
	b.WriteString(kw(opts, "INDEX "))
	b.WriteString(quoteIdent(idx.Name))
	b.WriteString(" " + kw(opts, "ON") + " ")
	b.WriteString(qualify(idx.Schema, idx.Table))

	// btree is the default access method and is left implicit.
	if idx.Method != "" && idx.Method != "btree" {
		b.WriteString(" " + kw(opts, "USING") + " " + idx.Method)
	}

	var cols []string
	for _, col := range idx.Columns {
		part := col.Expression
		if col.Collation != "" {
			part += " " + kw(opts, "COLLATE") + " " + quoteIdent(col.Collation)
		}
		if col.OpClass != "" {
			part += " " + col.OpClass
		}
		if col.Direction != "" {
			part += " " + kw(opts, col.Direction)
		}
		if col.NullsOrder != "" {
			part += " " + kw(opts, col.NullsOrder)
		}
		cols = append(cols, part)
	}
	b.WriteString(" (" + strings.Join(cols, ", ") + ")")

	if len(idx.StorageOptions) > 0 {
		b.WriteString(" " + kw(opts, "WITH") + " (" + formatStorageOptions(idx.StorageOptions) + ")")
	}
	if idx.Tablespace != "" {
		b.WriteString(" " + kw(opts, "TABLESPACE") + " " + quoteIdent(idx.Tablespace))
	}
	if idx.Where != "" {
		b.WriteString(" " + kw(opts, "WHERE") + " " + idx.Where)
	}
	return b.String(), nil
}

// DropIndex drops an index.
type DropIndex struct {
	Index *catalog.Index
}

func (c *DropIndex) ObjectType() ObjectType { return ObjectTypeIndex }
func (c *DropIndex) Operation() Operation   { return OperationDrop }
func (c *DropIndex) Scope() Scope           { return ScopeObject }
func (c *DropIndex) Creates() []string      { return nil }

func (c *DropIndex) Drops() []string {
	return []string{c.Index.StableID()}
}

func (c *DropIndex) Requires() []string {
	return []string{c.Index.ParentID()}
}

func (c *DropIndex) Serialize(opts render.Options) (string, error) {
	return kw(opts, "DROP INDEX ") + qualify(c.Index.Schema, c.Index.Name), nil
}

// AlterIndexSetStorageParameters applies a minimal storage-parameter delta
// to an index.
type AlterIndexSetStorageParameters struct {
	Schema string
	Name   string
	Set    []Option
	Reset  []string
}

func (c *AlterIndexSetStorageParameters) ObjectType() ObjectType { return ObjectTypeIndex }
func (c *AlterIndexSetStorageParameters) Operation() Operation   { return OperationAlter }
func (c *AlterIndexSetStorageParameters) Scope() Scope           { return ScopeObject }
func (c *AlterIndexSetStorageParameters) Creates() []string      { return nil }
func (c *AlterIndexSetStorageParameters) Drops() []string        { return nil }

func (c *AlterIndexSetStorageParameters) Requires() []string {
	return []string{catalog.IndexID(c.Schema, c.Name)}
}

func (c *AlterIndexSetStorageParameters) Serialize(opts render.Options) (string, error) {
	if len(c.Set) == 0 && len(c.Reset) == 0 {
		return "", invalidf("storage parameter change for index %s.%s has no actions", c.Schema, c.Name)
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
		kw(opts, "ALTER INDEX"), qualify(c.Schema, c.Name), strings.Join(clauses, ", ")), nil
}

// AlterIndexSetTablespace moves an index to another tablespace.
type AlterIndexSetTablespace struct {
	Schema     string
	Name       string
	Tablespace string
}

func (c *AlterIndexSetTablespace) ObjectType() ObjectType { return ObjectTypeIndex }
func (c *AlterIndexSetTablespace) Operation() Operation   { return OperationAlter }
func (c *AlterIndexSetTablespace) Scope() Scope           { return ScopeObject }
func (c *AlterIndexSetTablespace) Creates() []string      { return nil }
func (c *AlterIndexSetTablespace) Drops() []string        { return nil }

func (c *AlterIndexSetTablespace) Requires() []string {
	return []string{catalog.IndexID(c.Schema, c.Name)}
}

func (c *AlterIndexSetTablespace) Serialize(opts render.Options) (string, error) {
	ts := c.Tablespace
	if ts == "" {
		ts = "pg_default"
	}
	return fmt.Sprintf("%s %s %s %s",
		kw(opts, "ALTER INDEX"), qualify(c.Schema, c.Name), kw(opts, "SET TABLESPACE"), quoteIdent(ts)), nil
}
