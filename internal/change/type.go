package change

import (
	"fmt"
	"strings"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

// CreateType creates an enum, composite, domain or range type.
type CreateType struct {
	Type *catalog.Type

	// TypeDependencies holds stable IDs of other user-defined types the
	// definition references (domain base types, composite attributes).
	TypeDependencies []string
}

func (c *CreateType) ObjectType() ObjectType { return ObjectTypeType }
func (c *CreateType) Operation() Operation   { return OperationCreate }
func (c *CreateType) Scope() Scope           { return ScopeObject }

func (c *CreateType) Creates() []string {
	return []string{c.Type.StableID()}
}

func (c *CreateType) Drops() []string { return nil }

func (c *CreateType) Requires() []string {
	ids := []string{catalog.SchemaID(c.Type.Schema)}
	return append(ids, c.TypeDependencies...)
}

func (c *CreateType) Serialize(opts render.Options) (string, error) {
	t := c.Type
	name := qualify(t.Schema, t.Name)
	switch t.Kind {
	case catalog.TypeKindEnum:
		var values []string
		for _, v := range t.EnumValues {
			values = append(values, "\n"+opts.Indent()+quoteLiteral(v))
		}
		return kw(opts, "CREATE TYPE ") + name + " " + kw(opts, "AS ENUM") + " (" +
			strings.Join(values, ",") + "\n)", nil
	case catalog.TypeKindComposite:
		var attrs []string
		for _, a := range t.Attributes {
			attr := "\n" + opts.Indent() + quoteIdent(a.Name) + " " + a.DataType
			if a.Collation != "" {
				attr += " " + kw(opts, "COLLATE") + " " + quoteIdent(a.Collation)
			}
			attrs = append(attrs, attr)
		}
		return kw(opts, "CREATE TYPE ") + name + " " + kw(opts, "AS") + " (" +
			strings.Join(attrs, ",") + "\n)", nil
	case catalog.TypeKindDomain:
		if t.BaseType == "" {
			return "", invalidf("domain %s.%s has no base type", t.Schema, t.Name)
		}
		var b strings.Builder
		b.WriteString(kw(opts, "CREATE DOMAIN ") + name + " " + kw(opts, "AS") + " " + t.BaseType)
		if t.Default != "" {
			b.WriteString(" " + kw(opts, "DEFAULT") + " " + t.Default)
		}
		if t.NotNull {
			b.WriteString(" " + kw(opts, "NOT NULL"))
		}
		for _, con := range t.Constraints {
			b.WriteString("\n" + opts.Indent())
			if con.Name != "" {
				b.WriteString(kw(opts, "CONSTRAINT") + " " + quoteIdent(con.Name) + " ")
			}
			b.WriteString(con.Check)
		}
		return b.String(), nil
	case catalog.TypeKindRange:
		if t.Subtype == "" {
			return "", invalidf("range type %s.%s has no subtype", t.Schema, t.Name)
		}
		stmt := kw(opts, "CREATE TYPE ") + name + " " + kw(opts, "AS RANGE") +
			" (" + kw(opts, "SUBTYPE") + " = " + t.Subtype
		if t.SubtypeOpClass != "" {
			stmt += ", " + kw(opts, "SUBTYPE_OPCLASS") + " = " + t.SubtypeOpClass
		}
		if t.RangeCollation != "" {
			stmt += ", " + kw(opts, "COLLATION") + " = " + quoteIdent(t.RangeCollation)
		}
		return stmt + ")", nil
	}
	return "", invalidf("unknown type kind %q for %s.%s", t.Kind, t.Schema, t.Name)
}

// DropType drops a user-defined type.
type DropType struct {
	Type *catalog.Type

	TypeDependencies []string
}

func (c *DropType) ObjectType() ObjectType { return ObjectTypeType }
func (c *DropType) Operation() Operation   { return OperationDrop }
func (c *DropType) Scope() Scope           { return ScopeObject }
func (c *DropType) Creates() []string      { return nil }

func (c *DropType) Drops() []string {
	return []string{c.Type.StableID()}
}

func (c *DropType) Requires() []string {
	ids := []string{catalog.SchemaID(c.Type.Schema)}
	return append(ids, c.TypeDependencies...)
}

func (c *DropType) Serialize(opts render.Options) (string, error) {
	t := c.Type
	if t.Kind == catalog.TypeKindDomain {
		return kw(opts, "DROP DOMAIN ") + qualify(t.Schema, t.Name), nil
	}
	return kw(opts, "DROP TYPE ") + qualify(t.Schema, t.Name), nil
}

// AlterTypeAddEnumValue appends or inserts one enum label. Enum labels can
// only be added in place; any other label change forces a type replace.
type AlterTypeAddEnumValue struct {
	Schema string
	Name   string
	Value  string
	Before string // position anchors; at most one is set
	After  string
}

func (c *AlterTypeAddEnumValue) ObjectType() ObjectType { return ObjectTypeType }
func (c *AlterTypeAddEnumValue) Operation() Operation   { return OperationAlter }
func (c *AlterTypeAddEnumValue) Scope() Scope           { return ScopeObject }
func (c *AlterTypeAddEnumValue) Creates() []string      { return nil }
func (c *AlterTypeAddEnumValue) Drops() []string        { return nil }

func (c *AlterTypeAddEnumValue) Requires() []string {
	return []string{catalog.TypeID(c.Schema, c.Name)}
}

func (c *AlterTypeAddEnumValue) Serialize(opts render.Options) (string, error) {
	if c.Before != "" && c.After != "" {
		return "", invalidf("enum value %q for %s.%s anchors both BEFORE and AFTER", c.Value, c.Schema, c.Name)
	}
	stmt := fmt.Sprintf("%s %s %s %s",
		kw(opts, "ALTER TYPE"), qualify(c.Schema, c.Name), kw(opts, "ADD VALUE"), quoteLiteral(c.Value))
	if c.Before != "" {
		stmt += " " + kw(opts, "BEFORE") + " " + quoteLiteral(c.Before)
	} else if c.After != "" {
		stmt += " " + kw(opts, "AFTER") + " " + quoteLiteral(c.After)
	}
	return stmt, nil
}

// AlterTypeOwner transfers type ownership.
type AlterTypeOwner struct {
	Schema string
	Name   string
	Owner  string
}

func (c *AlterTypeOwner) ObjectType() ObjectType { return ObjectTypeType }
func (c *AlterTypeOwner) Operation() Operation   { return OperationAlter }
func (c *AlterTypeOwner) Scope() Scope           { return ScopeObject }
func (c *AlterTypeOwner) Creates() []string      { return nil }
func (c *AlterTypeOwner) Drops() []string        { return nil }

func (c *AlterTypeOwner) Requires() []string {
	return []string{catalog.TypeID(c.Schema, c.Name), catalog.RoleID(c.Owner)}
}

func (c *AlterTypeOwner) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s",
		kw(opts, "ALTER TYPE"), qualify(c.Schema, c.Name), kw(opts, "OWNER TO"), quoteIdent(c.Owner)), nil
}
