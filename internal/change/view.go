package change

import (
	"fmt"
	"strings"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

// CreateView creates or replaces a view. Replace is safe because a view
// with the same identity but a different definition is the same object to
// its dependents.
type CreateView struct {
	View      *catalog.View
	OrReplace bool
}

func (c *CreateView) ObjectType() ObjectType { return ObjectTypeView }
func (c *CreateView) Operation() Operation {
	if c.OrReplace {
		return OperationAlter
	}
	return OperationCreate
}
func (c *CreateView) Scope() Scope { return ScopeObject }

func (c *CreateView) Creates() []string {
	if c.OrReplace {
		return nil
	}
	return []string{c.View.StableID()}
}

func (c *CreateView) Drops() []string { return nil }

func (c *CreateView) Requires() []string {
	ids := []string{catalog.SchemaID(c.View.Schema)}
	if c.OrReplace {
		ids = append(ids, c.View.StableID())
	}
	return append(ids, c.View.Dependencies...)
}

func (c *CreateView) Serialize(opts render.Options) (string, error) {
	v := c.View
	if v.Definition == "" {
		return "", invalidf("view %s.%s has no definition", v.Schema, v.Name)
	}
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE "))
	if c.OrReplace {
		b.WriteString(kw(opts, "OR REPLACE "))
	}
	b.WriteString(kw(opts, "VIEW "))
	b.WriteString(qualify(v.Schema, v.Name))
	if len(v.Options) > 0 {
		b.WriteString(" " + kw(opts, "WITH") + " (" + formatStorageOptions(v.Options) + ")")
	}
	b.WriteString(" " + kw(opts, "AS") + "\n")
	b.WriteString(strings.TrimRight(v.Definition, ";\n "))
	if v.CheckOption != "" {
		b.WriteString("\n" + kw(opts, "WITH") + " " + kw(opts, v.CheckOption) + " " + kw(opts, "CHECK OPTION"))
	}
	return b.String(), nil
}

// DropView drops a view.
type DropView struct {
	View *catalog.View
}

func (c *DropView) ObjectType() ObjectType { return ObjectTypeView }
func (c *DropView) Operation() Operation   { return OperationDrop }
func (c *DropView) Scope() Scope           { return ScopeObject }
func (c *DropView) Creates() []string      { return nil }

func (c *DropView) Drops() []string {
	return []string{c.View.StableID()}
}

func (c *DropView) Requires() []string {
	ids := []string{catalog.SchemaID(c.View.Schema)}
	return append(ids, c.View.Dependencies...)
}

func (c *DropView) Serialize(opts render.Options) (string, error) {
	return kw(opts, "DROP VIEW ") + qualify(c.View.Schema, c.View.Name), nil
}

// AlterViewOwner transfers view ownership.
type AlterViewOwner struct {
	Schema string
	Name   string
	Owner  string
}

func (c *AlterViewOwner) ObjectType() ObjectType { return ObjectTypeView }
func (c *AlterViewOwner) Operation() Operation   { return OperationAlter }
func (c *AlterViewOwner) Scope() Scope           { return ScopeObject }
func (c *AlterViewOwner) Creates() []string      { return nil }
func (c *AlterViewOwner) Drops() []string        { return nil }

func (c *AlterViewOwner) Requires() []string {
	return []string{catalog.ViewID(c.Schema, c.Name), catalog.RoleID(c.Owner)}
}

func (c *AlterViewOwner) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s",
		kw(opts, "ALTER VIEW"), qualify(c.Schema, c.Name), kw(opts, "OWNER TO"), quoteIdent(c.Owner)), nil
}

// AlterViewSetOptions applies a minimal view option delta.
type AlterViewSetOptions struct {
	Schema string
	Name   string
	Set    []Option
	Reset  []string
}

func (c *AlterViewSetOptions) ObjectType() ObjectType { return ObjectTypeView }
func (c *AlterViewSetOptions) Operation() Operation   { return OperationAlter }
func (c *AlterViewSetOptions) Scope() Scope           { return ScopeObject }
func (c *AlterViewSetOptions) Creates() []string      { return nil }
func (c *AlterViewSetOptions) Drops() []string        { return nil }

func (c *AlterViewSetOptions) Requires() []string {
	return []string{catalog.ViewID(c.Schema, c.Name)}
}

func (c *AlterViewSetOptions) Serialize(opts render.Options) (string, error) {
	if len(c.Set) == 0 && len(c.Reset) == 0 {
		return "", invalidf("view option change for %s.%s has no actions", c.Schema, c.Name)
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
		kw(opts, "ALTER VIEW"), qualify(c.Schema, c.Name), strings.Join(clauses, ", ")), nil
}

// CreateMaterializedView creates a materialized view.
type CreateMaterializedView struct {
	View *catalog.MaterializedView
}

func (c *CreateMaterializedView) ObjectType() ObjectType { return ObjectTypeMaterializedView }
func (c *CreateMaterializedView) Operation() Operation   { return OperationCreate }
func (c *CreateMaterializedView) Scope() Scope           { return ScopeObject }

func (c *CreateMaterializedView) Creates() []string {
	return []string{c.View.StableID()}
}

func (c *CreateMaterializedView) Drops() []string { return nil }

func (c *CreateMaterializedView) Requires() []string {
	ids := []string{catalog.SchemaID(c.View.Schema)}
	return append(ids, c.View.Dependencies...)
}

func (c *CreateMaterializedView) Serialize(opts render.Options) (string, error) {
	v := c.View
	if v.Definition == "" {
		return "", invalidf("materialized view %s.%s has no definition", v.Schema, v.Name)
	}
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE MATERIALIZED VIEW "))
	b.WriteString(qualify(v.Schema, v.Name))
	if len(v.StorageOptions) > 0 {
		b.WriteString(" " + kw(opts, "WITH") + " (" + formatStorageOptions(v.StorageOptions) + ")")
	}
	if v.Tablespace != "" {
		b.WriteString(" " + kw(opts, "TABLESPACE") + " " + quoteIdent(v.Tablespace))
	}
	b.WriteString(" " + kw(opts, "AS") + "\n")
	b.WriteString(strings.TrimRight(v.Definition, ";\n "))
	return b.String(), nil
}

// DropMaterializedView drops a materialized view.
type DropMaterializedView struct {
	View *catalog.MaterializedView
}

func (c *DropMaterializedView) ObjectType() ObjectType { return ObjectTypeMaterializedView }
func (c *DropMaterializedView) Operation() Operation   { return OperationDrop }
func (c *DropMaterializedView) Scope() Scope           { return ScopeObject }
func (c *DropMaterializedView) Creates() []string      { return nil }

func (c *DropMaterializedView) Drops() []string {
	return []string{c.View.StableID()}
}

func (c *DropMaterializedView) Requires() []string {
	ids := []string{catalog.SchemaID(c.View.Schema)}
	return append(ids, c.View.Dependencies...)
}

func (c *DropMaterializedView) Serialize(opts render.Options) (string, error) {
	return kw(opts, "DROP MATERIALIZED VIEW ") + qualify(c.View.Schema, c.View.Name), nil
}

// AlterMaterializedViewOwner transfers materialized view ownership.
type AlterMaterializedViewOwner struct {
	Schema string
	Name   string
	Owner  string
}

func (c *AlterMaterializedViewOwner) ObjectType() ObjectType { return ObjectTypeMaterializedView }
func (c *AlterMaterializedViewOwner) Operation() Operation   { return OperationAlter }
func (c *AlterMaterializedViewOwner) Scope() Scope           { return ScopeObject }
func (c *AlterMaterializedViewOwner) Creates() []string      { return nil }
func (c *AlterMaterializedViewOwner) Drops() []string        { return nil }

func (c *AlterMaterializedViewOwner) Requires() []string {
	return []string{catalog.MaterializedViewID(c.Schema, c.Name), catalog.RoleID(c.Owner)}
}

func (c *AlterMaterializedViewOwner) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s",
		kw(opts, "ALTER MATERIALIZED VIEW"), qualify(c.Schema, c.Name), kw(opts, "OWNER TO"), quoteIdent(c.Owner)), nil
}
