package change

import (
	"fmt"
	"strings"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

// AddConstraint adds a table constraint via ALTER TABLE. Foreign keys are
// always added this way, never inline in CREATE TABLE, which is what lets
// the ordering engine handle circular references between tables.
type AddConstraint struct {
	Constraint *catalog.Constraint
}

func (c *AddConstraint) ObjectType() ObjectType { return ObjectTypeConstraint }
func (c *AddConstraint) Operation() Operation   { return OperationCreate }
func (c *AddConstraint) Scope() Scope           { return ScopeObject }

func (c *AddConstraint) Creates() []string {
	return []string{c.Constraint.StableID()}
}

func (c *AddConstraint) Drops() []string { return nil }

func (c *AddConstraint) Requires() []string {
	con := c.Constraint
	ids := []string{catalog.TableID(con.Schema, con.Table)}
	if con.Type == catalog.ConstraintTypeForeignKey {
		refSchema := con.ReferencedSchema
		if refSchema == "" {
			refSchema = con.Schema
		}
		ids = append(ids, catalog.TableID(refSchema, con.ReferencedTable))
	}
	return ids
}

func (c *AddConstraint) Serialize(opts render.Options) (string, error) {
	con := c.Constraint
	def, err := constraintDef(con, opts)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s %s %s",
		kw(opts, "ALTER TABLE"), qualify(con.Schema, con.Table),
		kw(opts, "ADD CONSTRAINT"), quoteIdent(con.Name), def), nil
}

// DropConstraint drops a table constraint.
type DropConstraint struct {
	Schema string
	Table  string
	Name   string
}

func (c *DropConstraint) ObjectType() ObjectType { return ObjectTypeConstraint }
func (c *DropConstraint) Operation() Operation   { return OperationDrop }
func (c *DropConstraint) Scope() Scope           { return ScopeObject }
func (c *DropConstraint) Creates() []string      { return nil }

func (c *DropConstraint) Drops() []string {
	return []string{catalog.ConstraintID(c.Schema, c.Table, c.Name)}
}

func (c *DropConstraint) Requires() []string {
	return []string{catalog.TableID(c.Schema, c.Table)}
}

func (c *DropConstraint) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s",
		kw(opts, "ALTER TABLE"), qualify(c.Schema, c.Table),
		kw(opts, "DROP CONSTRAINT"), quoteIdent(c.Name)), nil
}

// constraintDef renders the defining clause of a constraint, without the
// CONSTRAINT name prefix.
func constraintDef(con *catalog.Constraint, opts render.Options) (string, error) {
	var b strings.Builder
	switch con.Type {
	case catalog.ConstraintTypePrimaryKey:
		if len(con.Columns) == 0 {
			return "", invalidf("primary key %s on %s.%s has no columns", con.Name, con.Schema, con.Table)
		}
		b.WriteString(kw(opts, "PRIMARY KEY") + " (" + identList(con.Columns) + ")")
	case catalog.ConstraintTypeUnique:
		if len(con.Columns) == 0 {
			return "", invalidf("unique constraint %s on %s.%s has no columns", con.Name, con.Schema, con.Table)
		}
		b.WriteString(kw(opts, "UNIQUE") + " (" + identList(con.Columns) + ")")
	case catalog.ConstraintTypeCheck:
		if con.CheckClause == "" {
			return "", invalidf("check constraint %s on %s.%s has no clause", con.Name, con.Schema, con.Table)
		}
		b.WriteString(con.CheckClause)
		if con.NoInherit {
			b.WriteString(" " + kw(opts, "NO INHERIT"))
		}
	case catalog.ConstraintTypeForeignKey:
		refSchema := con.ReferencedSchema
		if refSchema == "" {
			refSchema = con.Schema
		}
		fmt.Fprintf(&b, "%s (%s) %s %s (%s)",
			kw(opts, "FOREIGN KEY"), identList(con.Columns),
			kw(opts, "REFERENCES"), qualify(refSchema, con.ReferencedTable),
			identList(con.ReferencedColumns))
		if con.OnUpdate != "" && con.OnUpdate != "NO ACTION" {
			b.WriteString(" " + kw(opts, "ON UPDATE") + " " + kw(opts, con.OnUpdate))
		}
		if con.OnDelete != "" && con.OnDelete != "NO ACTION" {
			b.WriteString(" " + kw(opts, "ON DELETE") + " " + kw(opts, con.OnDelete))
		}
	case catalog.ConstraintTypeExclusion:
		if con.ExclusionDefinition == "" {
			return "", invalidf("exclusion constraint %s on %s.%s has no definition", con.Name, con.Schema, con.Table)
		}
		b.WriteString(con.ExclusionDefinition)
	default:
		return "", invalidf("unknown constraint type %q for %s", con.Type, con.Name)
	}
	if con.Deferrable {
		b.WriteString(" " + kw(opts, "DEFERRABLE"))
		if con.InitiallyDeferred {
			b.WriteString(" " + kw(opts, "INITIALLY DEFERRED"))
		}
	}
	return b.String(), nil
}

func identList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}
