package change

import (
	"fmt"
	"strings"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

// optionsClause renders an OPTIONS (...) list from flat key/value pairs.
func optionsClause(pairs []string, opts render.Options) string {
	if len(pairs) == 0 {
		return ""
	}
	items := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		items = append(items, quoteIdent(pairs[i])+" "+quoteLiteral(pairs[i+1]))
	}
	return kw(opts, "OPTIONS") + " (" + strings.Join(items, ", ") + ")"
}

// optionsDelta renders an OPTIONS (ADD/SET/DROP ...) reconciliation list.
func optionsDelta(add, set []Option, drop []string, opts render.Options) string {
	items := make([]string, 0, len(add)+len(set)+len(drop))
	for _, o := range add {
		items = append(items, kw(opts, "ADD")+" "+quoteIdent(o.Key)+" "+quoteLiteral(o.Value))
	}
	for _, o := range set {
		items = append(items, kw(opts, "SET")+" "+quoteIdent(o.Key)+" "+quoteLiteral(o.Value))
	}
	for _, k := range drop {
		items = append(items, kw(opts, "DROP")+" "+quoteIdent(k))
	}
	return kw(opts, "OPTIONS") + " (" + strings.Join(items, ", ") + ")"
}

// CreateForeignDataWrapper creates a foreign-data wrapper.
type CreateForeignDataWrapper struct {
	Wrapper *catalog.ForeignDataWrapper
}

func (c *CreateForeignDataWrapper) ObjectType() ObjectType { return ObjectTypeForeignDataWrapper }
func (c *CreateForeignDataWrapper) Operation() Operation   { return OperationCreate }
func (c *CreateForeignDataWrapper) Scope() Scope           { return ScopeObject }

func (c *CreateForeignDataWrapper) Creates() []string {
	return []string{c.Wrapper.StableID()}
}

func (c *CreateForeignDataWrapper) Drops() []string    { return nil }
func (c *CreateForeignDataWrapper) Requires() []string { return nil }

func (c *CreateForeignDataWrapper) Serialize(opts render.Options) (string, error) {
	w := c.Wrapper
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE FOREIGN DATA WRAPPER "))
	b.WriteString(quoteIdent(w.Name))
	if w.Handler != "" {
		b.WriteString(" " + kw(opts, "HANDLER") + " " + w.Handler)
	}
	if w.Validator != "" {
		b.WriteString(" " + kw(opts, "VALIDATOR") + " " + w.Validator)
	}
	if clause := optionsClause(w.Options, opts); clause != "" {
		b.WriteString(" " + clause)
	}
	return b.String(), nil
}

// DropForeignDataWrapper drops a foreign-data wrapper.
type DropForeignDataWrapper struct {
	Wrapper *catalog.ForeignDataWrapper
}

func (c *DropForeignDataWrapper) ObjectType() ObjectType { return ObjectTypeForeignDataWrapper }
func (c *DropForeignDataWrapper) Operation() Operation   { return OperationDrop }
func (c *DropForeignDataWrapper) Scope() Scope           { return ScopeObject }
func (c *DropForeignDataWrapper) Creates() []string      { return nil }

func (c *DropForeignDataWrapper) Drops() []string {
	return []string{c.Wrapper.StableID()}
}

func (c *DropForeignDataWrapper) Requires() []string { return nil }

func (c *DropForeignDataWrapper) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s", kw(opts, "DROP FOREIGN DATA WRAPPER"), quoteIdent(c.Wrapper.Name)), nil
}

// AlterForeignDataWrapper reconciles wrapper routines and options.
type AlterForeignDataWrapper struct {
	Wrapper *catalog.ForeignDataWrapper

	SetHandler   bool
	SetValidator bool
	AddOptions   []Option
	SetOptions   []Option
	DropOptions  []string
}

func (c *AlterForeignDataWrapper) ObjectType() ObjectType { return ObjectTypeForeignDataWrapper }
func (c *AlterForeignDataWrapper) Operation() Operation   { return OperationAlter }
func (c *AlterForeignDataWrapper) Scope() Scope           { return ScopeObject }
func (c *AlterForeignDataWrapper) Creates() []string      { return nil }
func (c *AlterForeignDataWrapper) Drops() []string        { return nil }

func (c *AlterForeignDataWrapper) Requires() []string {
	return []string{c.Wrapper.StableID()}
}

func (c *AlterForeignDataWrapper) Serialize(opts render.Options) (string, error) {
	w := c.Wrapper
	var actions []string
	if c.SetHandler {
		if w.Handler == "" {
			actions = append(actions, kw(opts, "NO HANDLER"))
		} else {
			actions = append(actions, kw(opts, "HANDLER")+" "+w.Handler)
		}
	}
	if c.SetValidator {
		if w.Validator == "" {
			actions = append(actions, kw(opts, "NO VALIDATOR"))
		} else {
			actions = append(actions, kw(opts, "VALIDATOR")+" "+w.Validator)
		}
	}
	if len(c.AddOptions) > 0 || len(c.SetOptions) > 0 || len(c.DropOptions) > 0 {
		actions = append(actions, optionsDelta(c.AddOptions, c.SetOptions, c.DropOptions, opts))
	}
	if len(actions) == 0 {
		return "", invalidf("foreign data wrapper change for %s has no actions", w.Name)
	}
	return fmt.Sprintf("%s %s %s",
		kw(opts, "ALTER FOREIGN DATA WRAPPER"), quoteIdent(w.Name), strings.Join(actions, " ")), nil
}

// CreateForeignServer creates a foreign server.
type CreateForeignServer struct {
	Server *catalog.ForeignServer
}

func (c *CreateForeignServer) ObjectType() ObjectType { return ObjectTypeForeignServer }
func (c *CreateForeignServer) Operation() Operation   { return OperationCreate }
func (c *CreateForeignServer) Scope() Scope           { return ScopeObject }

func (c *CreateForeignServer) Creates() []string {
	return []string{c.Server.StableID()}
}

func (c *CreateForeignServer) Drops() []string { return nil }

func (c *CreateForeignServer) Requires() []string {
	return []string{catalog.ForeignDataWrapperID(c.Server.Wrapper)}
}

func (c *CreateForeignServer) Serialize(opts render.Options) (string, error) {
	s := c.Server
	if s.Wrapper == "" {
		return "", invalidf("foreign server %s has no wrapper", s.Name)
	}
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE SERVER "))
	b.WriteString(quoteIdent(s.Name))
	if s.Type != "" {
		b.WriteString(" " + kw(opts, "TYPE") + " " + quoteLiteral(s.Type))
	}
	if s.Version != "" {
		b.WriteString(" " + kw(opts, "VERSION") + " " + quoteLiteral(s.Version))
	}
	b.WriteString(" " + kw(opts, "FOREIGN DATA WRAPPER") + " " + quoteIdent(s.Wrapper))
	if clause := optionsClause(s.Options, opts); clause != "" {
		b.WriteString(" " + clause)
	}
	return b.String(), nil
}

// DropForeignServer drops a foreign server.
type DropForeignServer struct {
	Server *catalog.ForeignServer
}

func (c *DropForeignServer) ObjectType() ObjectType { return ObjectTypeForeignServer }
func (c *DropForeignServer) Operation() Operation   { return OperationDrop }
func (c *DropForeignServer) Scope() Scope           { return ScopeObject }
func (c *DropForeignServer) Creates() []string      { return nil }

func (c *DropForeignServer) Drops() []string {
	return []string{c.Server.StableID()}
}

func (c *DropForeignServer) Requires() []string {
	return []string{catalog.ForeignDataWrapperID(c.Server.Wrapper)}
}

func (c *DropForeignServer) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s", kw(opts, "DROP SERVER"), quoteIdent(c.Server.Name)), nil
}

// AlterForeignServer reconciles server version and options.
type AlterForeignServer struct {
	Server *catalog.ForeignServer

	SetVersion  bool
	AddOptions  []Option
	SetOptions  []Option
	DropOptions []string
}

func (c *AlterForeignServer) ObjectType() ObjectType { return ObjectTypeForeignServer }
func (c *AlterForeignServer) Operation() Operation   { return OperationAlter }
func (c *AlterForeignServer) Scope() Scope           { return ScopeObject }
func (c *AlterForeignServer) Creates() []string      { return nil }
func (c *AlterForeignServer) Drops() []string        { return nil }

func (c *AlterForeignServer) Requires() []string {
	return []string{c.Server.StableID()}
}

func (c *AlterForeignServer) Serialize(opts render.Options) (string, error) {
	s := c.Server
	var actions []string
	if c.SetVersion {
		actions = append(actions, kw(opts, "VERSION")+" "+quoteLiteral(s.Version))
	}
	if len(c.AddOptions) > 0 || len(c.SetOptions) > 0 || len(c.DropOptions) > 0 {
		actions = append(actions, optionsDelta(c.AddOptions, c.SetOptions, c.DropOptions, opts))
	}
	if len(actions) == 0 {
		return "", invalidf("foreign server change for %s has no actions", s.Name)
	}
	return fmt.Sprintf("%s %s %s",
		kw(opts, "ALTER SERVER"), quoteIdent(s.Name), strings.Join(actions, " ")), nil
}

// mappingRole renders a user mapping's role, where "public" means PUBLIC
// and "user" the current user.
func mappingRole(role string, opts render.Options) string {
	switch role {
	case "public":
		return kw(opts, "PUBLIC")
	case "user":
		return kw(opts, "CURRENT_USER")
	default:
		return quoteIdent(role)
	}
}

// CreateUserMapping creates a user mapping on a foreign server.
type CreateUserMapping struct {
	Mapping *catalog.UserMapping
}

func (c *CreateUserMapping) ObjectType() ObjectType { return ObjectTypeUserMapping }
func (c *CreateUserMapping) Operation() Operation   { return OperationCreate }
func (c *CreateUserMapping) Scope() Scope           { return ScopeObject }

func (c *CreateUserMapping) Creates() []string {
	return []string{c.Mapping.StableID()}
}

func (c *CreateUserMapping) Drops() []string { return nil }

func (c *CreateUserMapping) Requires() []string {
	m := c.Mapping
	ids := []string{catalog.ForeignServerID(m.Server)}
	if m.Role != "public" && m.Role != "user" {
		ids = append(ids, catalog.RoleID(m.Role))
	}
	return ids
}

func (c *CreateUserMapping) Serialize(opts render.Options) (string, error) {
	m := c.Mapping
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE USER MAPPING FOR "))
	b.WriteString(mappingRole(m.Role, opts))
	b.WriteString(" " + kw(opts, "SERVER") + " " + quoteIdent(m.Server))
	if clause := optionsClause(m.Options, opts); clause != "" {
		b.WriteString(" " + clause)
	}
	return b.String(), nil
}

// DropUserMapping drops a user mapping.
type DropUserMapping struct {
	Mapping *catalog.UserMapping
}

func (c *DropUserMapping) ObjectType() ObjectType { return ObjectTypeUserMapping }
func (c *DropUserMapping) Operation() Operation   { return OperationDrop }
func (c *DropUserMapping) Scope() Scope           { return ScopeObject }
func (c *DropUserMapping) Creates() []string      { return nil }

func (c *DropUserMapping) Drops() []string {
	return []string{c.Mapping.StableID()}
}

func (c *DropUserMapping) Requires() []string {
	m := c.Mapping
	ids := []string{catalog.ForeignServerID(m.Server)}
	if m.Role != "public" && m.Role != "user" {
		ids = append(ids, catalog.RoleID(m.Role))
	}
	return ids
}

func (c *DropUserMapping) Serialize(opts render.Options) (string, error) {
	m := c.Mapping
	return fmt.Sprintf("%s %s %s %s",
		kw(opts, "DROP USER MAPPING FOR"), mappingRole(m.Role, opts),
		kw(opts, "SERVER"), quoteIdent(m.Server)), nil
}

// AlterUserMapping reconciles mapping options.
type AlterUserMapping struct {
	Mapping *catalog.UserMapping

	AddOptions  []Option
	SetOptions  []Option
	DropOptions []string
}

func (c *AlterUserMapping) ObjectType() ObjectType { return ObjectTypeUserMapping }
func (c *AlterUserMapping) Operation() Operation   { return OperationAlter }
func (c *AlterUserMapping) Scope() Scope           { return ScopeObject }
func (c *AlterUserMapping) Creates() []string      { return nil }
func (c *AlterUserMapping) Drops() []string        { return nil }

func (c *AlterUserMapping) Requires() []string {
	return []string{c.Mapping.StableID()}
}

func (c *AlterUserMapping) Serialize(opts render.Options) (string, error) {
	m := c.Mapping
	if len(c.AddOptions) == 0 && len(c.SetOptions) == 0 && len(c.DropOptions) == 0 {
		return "", invalidf("user mapping change for %s on %s has no actions", m.Role, m.Server)
	}
	return fmt.Sprintf("%s %s %s %s %s",
		kw(opts, "ALTER USER MAPPING FOR"), mappingRole(m.Role, opts),
		kw(opts, "SERVER"), quoteIdent(m.Server),
		optionsDelta(c.AddOptions, c.SetOptions, c.DropOptions, opts)), nil
}

// CreateForeignTable creates a foreign table.
type CreateForeignTable struct {
	Table *catalog.ForeignTable
}

func (c *CreateForeignTable) ObjectType() ObjectType { return ObjectTypeForeignTable }
func (c *CreateForeignTable) Operation() Operation   { return OperationCreate }
func (c *CreateForeignTable) Scope() Scope           { return ScopeObject }

func (c *CreateForeignTable) Creates() []string {
	t := c.Table
	ids := []string{t.StableID()}
	for _, col := range t.Columns {
		ids = append(ids, catalog.ColumnID(t.Schema, t.Name, col.Name))
	}
	return ids
}

func (c *CreateForeignTable) Drops() []string { return nil }

func (c *CreateForeignTable) Requires() []string {
	t := c.Table
	return []string{
		catalog.SchemaID(t.Schema),
		catalog.ForeignServerID(t.Server),
	}
}

func (c *CreateForeignTable) Serialize(opts render.Options) (string, error) {
	t := c.Table
	if t.Server == "" {
		return "", invalidf("foreign table %s.%s has no server", t.Schema, t.Name)
	}
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE FOREIGN TABLE "))
	b.WriteString(qualify(t.Schema, t.Name))
	b.WriteString(" (")
	for i, col := range t.Columns {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n" + opts.Indent() + columnDef(col, opts))
	}
	if len(t.Columns) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(")")
	b.WriteString(" " + kw(opts, "SERVER") + " " + quoteIdent(t.Server))
	if clause := optionsClause(t.Options, opts); clause != "" {
		b.WriteString(" " + clause)
	}
	return b.String(), nil
}

// DropForeignTable drops a foreign table.
type DropForeignTable struct {
	Table *catalog.ForeignTable
}

func (c *DropForeignTable) ObjectType() ObjectType { return ObjectTypeForeignTable }
func (c *DropForeignTable) Operation() Operation   { return OperationDrop }
func (c *DropForeignTable) Scope() Scope           { return ScopeObject }
func (c *DropForeignTable) Creates() []string      { return nil }

func (c *DropForeignTable) Drops() []string {
	t := c.Table
	ids := []string{t.StableID()}
	for _, col := range t.Columns {
		ids = append(ids, catalog.ColumnID(t.Schema, t.Name, col.Name))
	}
	return ids
}

func (c *DropForeignTable) Requires() []string {
	t := c.Table
	return []string{
		catalog.SchemaID(t.Schema),
		catalog.ForeignServerID(t.Server),
	}
}

func (c *DropForeignTable) Serialize(opts render.Options) (string, error) {
	return fmt.Sprintf("%s %s", kw(opts, "DROP FOREIGN TABLE"), qualify(c.Table.Schema, c.Table.Name)), nil
}

// AlterForeignTableOptions reconciles a foreign table's options.
type AlterForeignTableOptions struct {
	Table *catalog.ForeignTable

	AddOptions  []Option
	SetOptions  []Option
	DropOptions []string
}

func (c *AlterForeignTableOptions) ObjectType() ObjectType { return ObjectTypeForeignTable }
func (c *AlterForeignTableOptions) Operation() Operation   { return OperationAlter }
func (c *AlterForeignTableOptions) Scope() Scope           { return ScopeObject }
func (c *AlterForeignTableOptions) Creates() []string      { return nil }
func (c *AlterForeignTableOptions) Drops() []string        { return nil }

func (c *AlterForeignTableOptions) Requires() []string {
	return []string{c.Table.StableID()}
}

func (c *AlterForeignTableOptions) Serialize(opts render.Options) (string, error) {
	t := c.Table
	if len(c.AddOptions) == 0 && len(c.SetOptions) == 0 && len(c.DropOptions) == 0 {
		return "", invalidf("foreign table change for %s.%s has no actions", t.Schema, t.Name)
	}
	return fmt.Sprintf("%s %s %s",
		kw(opts, "ALTER FOREIGN TABLE"), qualify(t.Schema, t.Name),
		optionsDelta(c.AddOptions, c.SetOptions, c.DropOptions, opts)), nil
}
