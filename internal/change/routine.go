package change

import (
	"fmt"
	"strings"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

// CreateFunction creates or replaces a function. Replacement is used for
// body and attribute changes; identity changes (name or input argument
// types) are a drop-and-create decided by the diff.
type CreateFunction struct {
	Function  *catalog.Function
	OrReplace bool
}

func (c *CreateFunction) ObjectType() ObjectType { return ObjectTypeFunction }
func (c *CreateFunction) Operation() Operation {
	if c.OrReplace {
		return OperationAlter
	}
	return OperationCreate
}
func (c *CreateFunction) Scope() Scope { return ScopeObject }

func (c *CreateFunction) Creates() []string {
	if c.OrReplace {
		return nil
	}
	return []string{c.Function.StableID()}
}

func (c *CreateFunction) Drops() []string { return nil }

func (c *CreateFunction) Requires() []string {
	ids := []string{catalog.SchemaID(c.Function.Schema)}
	if c.OrReplace {
		ids = append(ids, c.Function.StableID())
	}
	return append(ids, c.Function.Dependencies...)
}

func (c *CreateFunction) Serialize(opts render.Options) (string, error) {
	f := c.Function
	if f.Definition == "" {
		return "", invalidf("function %s.%s has no definition", f.Schema, f.Name)
	}
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE "))
	if c.OrReplace {
		b.WriteString(kw(opts, "OR REPLACE "))
	}
	b.WriteString(kw(opts, "FUNCTION "))
	b.WriteString(qualify(f.Schema, f.Name))
	b.WriteString("(" + f.Signature + ")")
	if f.ReturnType != "" {
		b.WriteString("\n" + kw(opts, "RETURNS") + " " + f.ReturnType)
	}
	b.WriteString("\n" + kw(opts, "LANGUAGE") + " " + f.Language)
	if f.Volatility != "" && f.Volatility != "VOLATILE" {
		b.WriteString("\n" + kw(opts, f.Volatility))
	}
	if f.Strict {
		b.WriteString("\n" + kw(opts, "STRICT"))
	}
	if f.SecurityDefiner {
		b.WriteString("\n" + kw(opts, "SECURITY DEFINER"))
	}
	if f.Leakproof {
		b.WriteString("\n" + kw(opts, "LEAKPROOF"))
	}
	if f.Parallel != "" && f.Parallel != "UNSAFE" {
		b.WriteString("\n" + kw(opts, "PARALLEL") + " " + kw(opts, f.Parallel))
	}
	for _, cfg := range f.Config {
		b.WriteString("\n" + kw(opts, "SET") + " " + cfg)
	}
	b.WriteString("\n" + kw(opts, "AS") + " $$" + f.Definition + "$$")
	return b.String(), nil
}

// DropFunction drops a function, naming the argument signature because of
// overloading.
type DropFunction struct {
	Function *catalog.Function
}

func (c *DropFunction) ObjectType() ObjectType { return ObjectTypeFunction }
func (c *DropFunction) Operation() Operation   { return OperationDrop }
func (c *DropFunction) Scope() Scope           { return ScopeObject }
func (c *DropFunction) Creates() []string      { return nil }

func (c *DropFunction) Drops() []string {
	return []string{c.Function.StableID()}
}

func (c *DropFunction) Requires() []string {
	ids := []string{catalog.SchemaID(c.Function.Schema)}
	return append(ids, c.Function.Dependencies...)
}

func (c *DropFunction) Serialize(opts render.Options) (string, error) {
	f := c.Function
	return fmt.Sprintf("%s %s(%s)",
		kw(opts, "DROP FUNCTION"), qualify(f.Schema, f.Name), f.Arguments), nil
}

// AlterFunctionOwner transfers function ownership.
type AlterFunctionOwner struct {
	Schema    string
	Name      string
	Arguments string
	Owner     string
}

func (c *AlterFunctionOwner) ObjectType() ObjectType { return ObjectTypeFunction }
func (c *AlterFunctionOwner) Operation() Operation   { return OperationAlter }
func (c *AlterFunctionOwner) Scope() Scope           { return ScopeObject }
func (c *AlterFunctionOwner) Creates() []string      { return nil }
func (c *AlterFunctionOwner) Drops() []string        { return nil }

func (c *AlterFunctionOwner) Requires() []string {
	return []string{catalog.FunctionID(c.Schema, c.Name, c.Arguments), catalog.RoleID(c.Owner)}
}

func (c *AlterFunctionOwner) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s(%s) %s %s",
		kw(opts, "ALTER FUNCTION"), qualify(c.Schema, c.Name), c.Arguments,
		kw(opts, "OWNER TO"), quoteIdent(c.Owner)), nil
}

// CreateProcedure creates or replaces a procedure.
type CreateProcedure struct {
	Procedure *catalog.Procedure
	OrReplace bool
}

func (c *CreateProcedure) ObjectType() ObjectType { return ObjectTypeProcedure }
func (c *CreateProcedure) Operation() Operation {
	if c.OrReplace {
		return OperationAlter
	}
	return OperationCreate
}
func (c *CreateProcedure) Scope() Scope { return ScopeObject }

func (c *CreateProcedure) Creates() []string {
	if c.OrReplace {
		return nil
	}
	return []string{c.Procedure.StableID()}
}

func (c *CreateProcedure) Drops() []string { return nil }

func (c *CreateProcedure) Requires() []string {
	ids := []string{catalog.SchemaID(c.Procedure.Schema)}
	if c.OrReplace {
		ids = append(ids, c.Procedure.StableID())
	}
	return append(ids, c.Procedure.Dependencies...)
}

func (c *CreateProcedure) Serialize(opts render.Options) (string, error) {
	p := c.Procedure
	if p.Definition == "" {
		return "", invalidf("procedure %s.%s has no definition", p.Schema, p.Name)
	}
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE "))
	if c.OrReplace {
		b.WriteString(kw(opts, "OR REPLACE "))
	}
	b.WriteString(kw(opts, "PROCEDURE "))
	b.WriteString(qualify(p.Schema, p.Name))
	b.WriteString("(" + p.Signature + ")")
	b.WriteString("\n" + kw(opts, "LANGUAGE") + " " + p.Language)
	if p.SecurityDefiner {
		b.WriteString("\n" + kw(opts, "SECURITY DEFINER"))
	}
	b.WriteString("\n" + kw(opts, "AS") + " $$" + p.Definition + "$$")
	return b.String(), nil
}

// DropProcedure drops a procedure.
type DropProcedure struct {
	Procedure *catalog.Procedure
}

func (c *DropProcedure) ObjectType() ObjectType { return ObjectTypeProcedure }
func (c *DropProcedure) Operation() Operation   { return OperationDrop }
func (c *DropProcedure) Scope() Scope           { return ScopeObject }
func (c *DropProcedure) Creates() []string      { return nil }

func (c *DropProcedure) Drops() []string {
	return []string{c.Procedure.StableID()}
}

func (c *DropProcedure) Requires() []string {
	ids := []string{catalog.SchemaID(c.Procedure.Schema)}
	return append(ids, c.Procedure.Dependencies...)
}

func (c *DropProcedure) Serialize(opts render.Options) (string, error) {
	p := c.Procedure
	return fmt.Sprintf("%s %s(%s)",
		kw(opts, "DROP PROCEDURE"), qualify(p.Schema, p.Name), p.Arguments), nil
}

// CreateAggregate creates an aggregate.
type CreateAggregate struct {
	Aggregate *catalog.Aggregate
}

func (c *CreateAggregate) ObjectType() ObjectType { return ObjectTypeAggregate }
func (c *CreateAggregate) Operation() Operation   { return OperationCreate }
func (c *CreateAggregate) Scope() Scope           { return ScopeObject }

func (c *CreateAggregate) Creates() []string {
	return []string{c.Aggregate.StableID()}
}

func (c *CreateAggregate) Drops() []string { return nil }

func (c *CreateAggregate) Requires() []string {
	return []string{catalog.SchemaID(c.Aggregate.Schema)}
}

func (c *CreateAggregate) Serialize(opts render.Options) (string, error) {
	a := c.Aggregate
	if a.TransitionFunc == "" || a.StateType == "" {
		return "", invalidf("aggregate %s.%s is missing sfunc or stype", a.Schema, a.Name)
	}
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE AGGREGATE "))
	b.WriteString(qualify(a.Schema, a.Name))
	b.WriteString("(" + a.Arguments + ") (")
	b.WriteString("\n" + opts.Indent() + kw(opts, "SFUNC") + " = " + a.TransitionFunc + ",")
	b.WriteString("\n" + opts.Indent() + kw(opts, "STYPE") + " = " + a.StateType)
	if a.FinalFunc != "" {
		b.WriteString(",\n" + opts.Indent() + kw(opts, "FINALFUNC") + " = " + a.FinalFunc)
	}
	if a.InitialCondition != "" {
		b.WriteString(",\n" + opts.Indent() + kw(opts, "INITCOND") + " = " + quoteLiteral(a.InitialCondition))
	}
	b.WriteString("\n)")
	return b.String(), nil
}

// DropAggregate drops an aggregate.
type DropAggregate struct {
	Aggregate *catalog.Aggregate
}

func (c *DropAggregate) ObjectType() ObjectType { return ObjectTypeAggregate }
func (c *DropAggregate) Operation() Operation   { return OperationDrop }
func (c *DropAggregate) Scope() Scope           { return ScopeObject }
func (c *DropAggregate) Creates() []string      { return nil }

func (c *DropAggregate) Drops() []string {
	return []string{c.Aggregate.StableID()}
}

func (c *DropAggregate) Requires() []string {
	return []string{catalog.SchemaID(c.Aggregate.Schema)}
}

func (c *DropAggregate) Serialize(opts render.Options) (string, error) {
	a := c.Aggregate
	return fmt.Sprintf("%s %s(%s)",
		kw(opts, "DROP AGGREGATE"), qualify(a.Schema, a.Name), a.Arguments), nil
}
