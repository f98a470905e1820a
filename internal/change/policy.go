package change

import (
	"fmt"
	"strings"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

// policyRoles renders a policy's role list, defaulting to PUBLIC.
func policyRoles(roles []string, opts render.Options) string {
	if len(roles) == 0 {
		return kw(opts, "PUBLIC")
	}
	quoted := make([]string, len(roles))
	for i, r := range roles {
		quoted[i] = quoteIdent(r)
	}
	return strings.Join(quoted, ", ")
}

// CreatePolicy creates a row-level security policy.
type CreatePolicy struct {
	Policy *catalog.Policy
}

func (c *CreatePolicy) ObjectType() ObjectType { return ObjectTypePolicy }
func (c *CreatePolicy) Operation() Operation   { return OperationCreate }
func (c *CreatePolicy) Scope() Scope           { return ScopeObject }

func (c *CreatePolicy) Creates() []string {
	return []string{c.Policy.StableID()}
}

func (c *CreatePolicy) Drops() []string { return nil }

func (c *CreatePolicy) Requires() []string {
	p := c.Policy
	ids := []string{catalog.TableID(p.Schema, p.Table)}
	for _, r := range p.Roles {
		ids = append(ids, catalog.RoleID(r))
	}
	return ids
}

func (c *CreatePolicy) Serialize(opts render.Options) (string, error) {
	p := c.Policy
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE POLICY "))
	b.WriteString(quoteIdent(p.Name))
	b.WriteString(" " + kw(opts, "ON") + " " + qualify(p.Schema, p.Table))
	if !p.Permissive {
		b.WriteString("\n" + opts.Indent() + kw(opts, "AS RESTRICTIVE"))
	}
	if p.Command != "" && p.Command != "ALL" {
		b.WriteString("\n" + opts.Indent() + kw(opts, "FOR") + " " + kw(opts, p.Command))
	}
	b.WriteString("\n" + opts.Indent() + kw(opts, "TO") + " " + policyRoles(p.Roles, opts))
	if p.Using != "" {
		b.WriteString("\n" + opts.Indent() + kw(opts, "USING") + " (" + p.Using + ")")
	}
	if p.WithCheck != "" {
		b.WriteString("\n" + opts.Indent() + kw(opts, "WITH CHECK") + " (" + p.WithCheck + ")")
	}
	return b.String(), nil
}

// DropPolicy drops a policy.
type DropPolicy struct {
	Policy *catalog.Policy
}

func (c *DropPolicy) ObjectType() ObjectType { return ObjectTypePolicy }
func (c *DropPolicy) Operation() Operation   { return OperationDrop }
func (c *DropPolicy) Scope() Scope           { return ScopeObject }
func (c *DropPolicy) Creates() []string      { return nil }

func (c *DropPolicy) Drops() []string {
	return []string{c.Policy.StableID()}
}

func (c *DropPolicy) Requires() []string {
	p := c.Policy
	ids := []string{catalog.TableID(p.Schema, p.Table)}
	for _, r := range p.Roles {
		ids = append(ids, catalog.RoleID(r))
	}
	return ids
}

func (c *DropPolicy) Serialize(opts render.Options) (string, error) {
	p := c.Policy
	return fmt.Sprintf("%s %s %s %s",
		kw(opts, "DROP POLICY"), quoteIdent(p.Name), kw(opts, "ON"), qualify(p.Schema, p.Table)), nil
}

// AlterPolicy updates the alterable parts of a policy: role list and
// expressions. Command and permissiveness have no ALTER syntax; changing
// them is a replace decided by the diff.
type AlterPolicy struct {
	Policy *catalog.Policy

	SetRoles     bool
	SetUsing     bool
	SetWithCheck bool
}

func (c *AlterPolicy) ObjectType() ObjectType { return ObjectTypePolicy }
func (c *AlterPolicy) Operation() Operation   { return OperationAlter }
func (c *AlterPolicy) Scope() Scope           { return ScopeObject }
func (c *AlterPolicy) Creates() []string      { return nil }
func (c *AlterPolicy) Drops() []string        { return nil }

func (c *AlterPolicy) Requires() []string {
	p := c.Policy
	ids := []string{p.StableID()}
	if c.SetRoles {
		for _, r := range p.Roles {
			ids = append(ids, catalog.RoleID(r))
		}
	}
	return ids
}

func (c *AlterPolicy) Serialize(opts render.Options) (string, error) {
	p := c.Policy
	if !c.SetRoles && !c.SetUsing && !c.SetWithCheck {
		return "", invalidf("policy change for %s on %s.%s has no actions", p.Name, p.Schema, p.Table)
	}
	var b strings.Builder
	b.WriteString(kw(opts, "ALTER POLICY "))
	b.WriteString(quoteIdent(p.Name))
	b.WriteString(" " + kw(opts, "ON") + " " + qualify(p.Schema, p.Table))
	if c.SetRoles {
		b.WriteString("\n" + opts.Indent() + kw(opts, "TO") + " " + policyRoles(p.Roles, opts))
	}
	if c.SetUsing {
		b.WriteString("\n" + opts.Indent() + kw(opts, "USING") + " (" + p.Using + ")")
	}
	if c.SetWithCheck {
		b.WriteString("\n" + opts.Indent() + kw(opts, "WITH CHECK") + " (" + p.WithCheck + ")")
	}
	return b.String(), nil
}
