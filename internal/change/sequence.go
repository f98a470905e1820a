package change

import (
	"fmt"
	"strings"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

// CreateSequence creates a standalone sequence. Identity- and serial-owned
// sequences never reach this change; their column DDL implies them.
type CreateSequence struct {
	Sequence *catalog.Sequence
}

func (c *CreateSequence) ObjectType() ObjectType { return ObjectTypeSequence }
func (c *CreateSequence) Operation() Operation   { return OperationCreate }
func (c *CreateSequence) Scope() Scope           { return ScopeObject }

func (c *CreateSequence) Creates() []string {
	return []string{c.Sequence.StableID()}
}

func (c *CreateSequence) Drops() []string { return nil }

func (c *CreateSequence) Requires() []string {
	s := c.Sequence
	ids := []string{catalog.SchemaID(s.Schema)}
	if s.OwnedByTable != "" {
		ids = append(ids, catalog.TableID(s.Schema, s.OwnedByTable))
	}
	return ids
}

func (c *CreateSequence) Serialize(opts render.Options) (string, error) {
	s := c.Sequence
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE SEQUENCE "))
	b.WriteString(qualify(s.Schema, s.Name))
	if s.DataType != "" && s.DataType != "bigint" {
		b.WriteString(" " + kw(opts, "AS") + " " + s.DataType)
	}
	if s.Increment != 0 && s.Increment != 1 {
		fmt.Fprintf(&b, " %s %d", kw(opts, "INCREMENT BY"), s.Increment)
	}
	if s.MinValue != nil {
		fmt.Fprintf(&b, " %s %d", kw(opts, "MINVALUE"), *s.MinValue)
	}
	if s.MaxValue != nil {
		fmt.Fprintf(&b, " %s %d", kw(opts, "MAXVALUE"), *s.MaxValue)
	}
	if s.Start != 0 && s.Start != 1 {
		fmt.Fprintf(&b, " %s %d", kw(opts, "START WITH"), s.Start)
	}
	if s.Cache > 1 {
		fmt.Fprintf(&b, " %s %d", kw(opts, "CACHE"), s.Cache)
	}
	if s.Cycle {
		b.WriteString(" " + kw(opts, "CYCLE"))
	}
	if s.OwnedByTable != "" && s.OwnedByColumn != "" {
		b.WriteString(" " + kw(opts, "OWNED BY") + " " +
			qualify(s.Schema, s.OwnedByTable) + "." + quoteIdent(s.OwnedByColumn))
	}
	return b.String(), nil
}

// DropSequence drops a sequence.
type DropSequence struct {
	Sequence *catalog.Sequence
}

func (c *DropSequence) ObjectType() ObjectType { return ObjectTypeSequence }
func (c *DropSequence) Operation() Operation   { return OperationDrop }
func (c *DropSequence) Scope() Scope           { return ScopeObject }
func (c *DropSequence) Creates() []string      { return nil }

func (c *DropSequence) Drops() []string {
	return []string{c.Sequence.StableID()}
}

func (c *DropSequence) Requires() []string {
	return []string{catalog.SchemaID(c.Sequence.Schema)}
}

func (c *DropSequence) Serialize(opts render.Options) (string, error) {
	return kw(opts, "DROP SEQUENCE ") + qualify(c.Sequence.Schema, c.Sequence.Name), nil
}

// AlterSequence applies changed numeric properties in one statement.
type AlterSequence struct {
	Sequence *catalog.Sequence

	SetDataType  bool
	SetIncrement bool
	SetMinValue  bool
	SetMaxValue  bool
	SetStart     bool
	SetCache     bool
	SetCycle     bool
}

func (c *AlterSequence) ObjectType() ObjectType { return ObjectTypeSequence }
func (c *AlterSequence) Operation() Operation   { return OperationAlter }
func (c *AlterSequence) Scope() Scope           { return ScopeObject }
func (c *AlterSequence) Creates() []string      { return nil }
func (c *AlterSequence) Drops() []string        { return nil }

func (c *AlterSequence) Requires() []string {
	return []string{c.Sequence.StableID()}
}

func (c *AlterSequence) Serialize(opts render.Options) (string, error) {
	s := c.Sequence
	var clauses []string
	if c.SetDataType {
		clauses = append(clauses, kw(opts, "AS")+" "+s.DataType)
	}
	if c.SetIncrement {
		clauses = append(clauses, fmt.Sprintf("%s %d", kw(opts, "INCREMENT BY"), s.Increment))
	}
	if c.SetMinValue {
		if s.MinValue == nil {
			clauses = append(clauses, kw(opts, "NO MINVALUE"))
		} else {
			clauses = append(clauses, fmt.Sprintf("%s %d", kw(opts, "MINVALUE"), *s.MinValue))
		}
	}
	if c.SetMaxValue {
		if s.MaxValue == nil {
			clauses = append(clauses, kw(opts, "NO MAXVALUE"))
		} else {
			clauses = append(clauses, fmt.Sprintf("%s %d", kw(opts, "MAXVALUE"), *s.MaxValue))
		}
	}
	if c.SetStart {
		clauses = append(clauses, fmt.Sprintf("%s %d", kw(opts, "START WITH"), s.Start))
	}
	if c.SetCache {
		clauses = append(clauses, fmt.Sprintf("%s %d", kw(opts, "CACHE"), s.Cache))
	}
	if c.SetCycle {
		if s.Cycle {
			clauses = append(clauses, kw(opts, "CYCLE"))
		} else {
			clauses = append(clauses, kw(opts, "NO CYCLE"))
		}
	}
	if len(clauses) == 0 {
		return "", invalidf("sequence change for %s.%s has no actions", s.Schema, s.Name)
	}
	return kw(opts, "ALTER SEQUENCE ") + qualify(s.Schema, s.Name) + " " + strings.Join(clauses, " "), nil
}

// AlterSequenceOwner transfers sequence ownership.
type AlterSequenceOwner struct {
	Schema string
	Name   string
	Owner  string
}

func (c *AlterSequenceOwner) ObjectType() ObjectType { return ObjectTypeSequence }
func (c *AlterSequenceOwner) Operation() Operation   { return OperationAlter }
func (c *AlterSequenceOwner) Scope() Scope           { return ScopeObject }
func (c *AlterSequenceOwner) Creates() []string      { return nil }
func (c *AlterSequenceOwner) Drops() []string        { return nil }

func (c *AlterSequenceOwner) Requires() []string {
	return []string{catalog.SequenceID(c.Schema, c.Name), catalog.RoleID(c.Owner)}
}

func (c *AlterSequenceOwner) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s",
		kw(opts, "ALTER SEQUENCE"), qualify(c.Schema, c.Name), kw(opts, "OWNER TO"), quoteIdent(c.Owner)), nil
}
