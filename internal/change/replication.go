package change

import (
	"fmt"
	"strings"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

// publicationTable renders a "schema.name" entry from a publication's
// table list with proper quoting.
func publicationTable(entry string) string {
	schema, name, ok := strings.Cut(entry, ".")
	if !ok {
		return quoteIdent(entry)
	}
	return qualify(schema, name)
}

func publicationTableIDs(p *catalog.Publication) []string {
	ids := make([]string, 0, len(p.Tables))
	for _, t := range p.Tables {
		schema, name, ok := strings.Cut(t, ".")
		if !ok {
			continue
		}
		ids = append(ids, catalog.TableID(schema, name))
	}
	return ids
}

// CreatePublication creates a logical replication publication.
type CreatePublication struct {
	Publication *catalog.Publication
}

func (c *CreatePublication) ObjectType() ObjectType { return ObjectTypePublication }
func (c *CreatePublication) Operation() Operation   { return OperationCreate }
func (c *CreatePublication) Scope() Scope           { return ScopeObject }

func (c *CreatePublication) Creates() []string {
	return []string{c.Publication.StableID()}
}

func (c *CreatePublication) Drops() []string { return nil }

func (c *CreatePublication) Requires() []string {
	return publicationTableIDs(c.Publication)
}

func (c *CreatePublication) Serialize(opts render.Options) (string, error) {
	p := c.Publication
	if p.AllTables && len(p.Tables) > 0 {
		return "", invalidf("publication %s lists tables and FOR ALL TABLES", p.Name)
	}
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE PUBLICATION "))
	b.WriteString(quoteIdent(p.Name))
	if p.AllTables {
		b.WriteString(" " + kw(opts, "FOR ALL TABLES"))
	} else if len(p.Tables) > 0 {
		rendered := make([]string, len(p.Tables))
		for i, t := range p.Tables {
			rendered[i] = publicationTable(t)
		}
		b.WriteString(" " + kw(opts, "FOR TABLE") + " " + strings.Join(rendered, ", "))
	}
	var params []string
	if len(p.Operations) > 0 {
		params = append(params, "publish = '"+strings.Join(p.Operations, ", ")+"'")
	}
	if p.ViaRoot {
		params = append(params, "publish_via_partition_root = true")
	}
	if len(params) > 0 {
		b.WriteString(" " + kw(opts, "WITH") + " (" + strings.Join(params, ", ") + ")")
	}
	return b.String(), nil
}

// DropPublication drops a publication.
type DropPublication struct {
	Publication *catalog.Publication
}

func (c *DropPublication) ObjectType() ObjectType { return ObjectTypePublication }
func (c *DropPublication) Operation() Operation   { return OperationDrop }
func (c *DropPublication) Scope() Scope           { return ScopeObject }
func (c *DropPublication) Creates() []string      { return nil }

func (c *DropPublication) Drops() []string {
	return []string{c.Publication.StableID()}
}

func (c *DropPublication) Requires() []string {
	return publicationTableIDs(c.Publication)
}

func (c *DropPublication) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s", kw(opts, "DROP PUBLICATION"), quoteIdent(c.Publication.Name)), nil
}

// AlterPublication reconciles a publication's table membership and
// parameters in place.
type AlterPublication struct {
	Publication *catalog.Publication

	AddTables     []string // "schema.name"
	DropTables    []string
	SetOperations bool
	SetViaRoot    bool
}

func (c *AlterPublication) ObjectType() ObjectType { return ObjectTypePublication }
func (c *AlterPublication) Operation() Operation   { return OperationAlter }
func (c *AlterPublication) Scope() Scope           { return ScopeObject }
func (c *AlterPublication) Creates() []string      { return nil }
func (c *AlterPublication) Drops() []string        { return nil }

func (c *AlterPublication) Requires() []string {
	ids := []string{c.Publication.StableID()}
	for _, t := range c.AddTables {
		schema, name, ok := strings.Cut(t, ".")
		if ok {
			ids = append(ids, catalog.TableID(schema, name))
		}
	}
	return ids
}

func (c *AlterPublication) Serialize(opts render.Options) (string, error) {
	p := c.Publication
	if len(c.AddTables) == 0 && len(c.DropTables) == 0 && !c.SetOperations && !c.SetViaRoot {
		return "", invalidf("publication change for %s has no actions", p.Name)
	}
	name := quoteIdent(p.Name)
	var stmts []string
	if len(c.DropTables) > 0 {
		rendered := make([]string, len(c.DropTables))
		for i, t := range c.DropTables {
			rendered[i] = publicationTable(t)
		}
		stmts = append(stmts, fmt.Sprintf("%s %s %s %s",
			kw(opts, "ALTER PUBLICATION"), name, kw(opts, "DROP TABLE"), strings.Join(rendered, ", ")))
	}
	if len(c.AddTables) > 0 {
		rendered := make([]string, len(c.AddTables))
		for i, t := range c.AddTables {
			rendered[i] = publicationTable(t)
		}
		stmts = append(stmts, fmt.Sprintf("%s %s %s %s",
			kw(opts, "ALTER PUBLICATION"), name, kw(opts, "ADD TABLE"), strings.Join(rendered, ", ")))
	}
	var params []string
	if c.SetOperations {
		params = append(params, "publish = '"+strings.Join(p.Operations, ", ")+"'")
	}
	if c.SetViaRoot {
		via := "false"
		if p.ViaRoot {
			via = "true"
		}
		params = append(params, "publish_via_partition_root = "+via)
	}
	if len(params) > 0 {
		stmts = append(stmts, fmt.Sprintf("%s %s %s (%s)",
			kw(opts, "ALTER PUBLICATION"), name, kw(opts, "SET"), strings.Join(params, ", ")))
	}
	return strings.Join(stmts, ";\n"), nil
}

// CreateSubscription creates a logical replication subscription.
type CreateSubscription struct {
	Subscription *catalog.Subscription
}

func (c *CreateSubscription) ObjectType() ObjectType { return ObjectTypeSubscription }
func (c *CreateSubscription) Operation() Operation   { return OperationCreate }
func (c *CreateSubscription) Scope() Scope           { return ScopeObject }

func (c *CreateSubscription) Creates() []string {
	return []string{c.Subscription.StableID()}
}

func (c *CreateSubscription) Drops() []string    { return nil }
func (c *CreateSubscription) Requires() []string { return nil }

func (c *CreateSubscription) Serialize(opts render.Options) (string, error) {
	s := c.Subscription
	if len(s.Publications) == 0 {
		return "", invalidf("subscription %s has no publications", s.Name)
	}
	pubs := make([]string, len(s.Publications))
	for i, p := range s.Publications {
		pubs[i] = quoteIdent(p)
	}
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE SUBSCRIPTION "))
	b.WriteString(quoteIdent(s.Name))
	b.WriteString("\n" + opts.Indent() + kw(opts, "CONNECTION") + " " + quoteLiteral(s.Connection))
	b.WriteString("\n" + opts.Indent() + kw(opts, "PUBLICATION") + " " + strings.Join(pubs, ", "))
	var params []string
	if !s.Enabled {
		params = append(params, "enabled = false")
	}
	if s.SlotName != "" {
		params = append(params, "slot_name = "+quoteLiteral(s.SlotName))
	}
	if len(params) > 0 {
		b.WriteString("\n" + opts.Indent() + kw(opts, "WITH") + " (" + strings.Join(params, ", ") + ")")
	}
	return b.String(), nil
}

// DropSubscription drops a subscription.
type DropSubscription struct {
	Subscription *catalog.Subscription
}

func (c *DropSubscription) ObjectType() ObjectType { return ObjectTypeSubscription }
func (c *DropSubscription) Operation() Operation   { return OperationDrop }
func (c *DropSubscription) Scope() Scope           { return ScopeObject }
func (c *DropSubscription) Creates() []string      { return nil }

func (c *DropSubscription) Drops() []string {
	return []string{c.Subscription.StableID()}
}

func (c *DropSubscription) Requires() []string { return nil }

func (c *DropSubscription) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s", kw(opts, "DROP SUBSCRIPTION"), quoteIdent(c.Subscription.Name)), nil
}

// AlterSubscription reconciles subscription settings in place.
type AlterSubscription struct {
	Subscription *catalog.Subscription

	SetConnection   bool
	SetPublications bool
	SetEnabled      bool
}

func (c *AlterSubscription) ObjectType() ObjectType { return ObjectTypeSubscription }
func (c *AlterSubscription) Operation() Operation   { return OperationAlter }
func (c *AlterSubscription) Scope() Scope           { return ScopeObject }
func (c *AlterSubscription) Creates() []string      { return nil }
func (c *AlterSubscription) Drops() []string        { return nil }

func (c *AlterSubscription) Requires() []string {
	return []string{c.Subscription.StableID()}
}

func (c *AlterSubscription) Serialize(opts render.Options) (string, error) {
	s := c.Subscription
	if !c.SetConnection && !c.SetPublications && !c.SetEnabled {
		return "", invalidf("subscription change for %s has no actions", s.Name)
	}
	name := quoteIdent(s.Name)
	var stmts []string
	if c.SetConnection {
		stmts = append(stmts, fmt.Sprintf("%s %s %s %s",
			kw(opts, "ALTER SUBSCRIPTION"), name, kw(opts, "CONNECTION"), quoteLiteral(s.Connection)))
	}
	if c.SetPublications {
		pubs := make([]string, len(s.Publications))
		for i, p := range s.Publications {
			pubs[i] = quoteIdent(p)
		}
		stmts = append(stmts, fmt.Sprintf("%s %s %s %s",
			kw(opts, "ALTER SUBSCRIPTION"), name, kw(opts, "SET PUBLICATION"), strings.Join(pubs, ", ")))
	}
	if c.SetEnabled {
		action := "DISABLE"
		if s.Enabled {
			action = "ENABLE"
		}
		stmts = append(stmts, fmt.Sprintf("%s %s %s",
			kw(opts, "ALTER SUBSCRIPTION"), name, kw(opts, action)))
	}
	return strings.Join(stmts, ";\n"), nil
}
