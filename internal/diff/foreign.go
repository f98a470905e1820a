package diff

import (
	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
)

func (c *context) diffForeignDataWrappers() {
	for _, id := range unionKeys(c.main.ForeignDataWrappers, c.branch.ForeignDataWrappers) {
		old, inMain := c.main.ForeignDataWrappers[id]
		new, inBranch := c.branch.ForeignDataWrappers[id]
		switch {
		case !inMain:
			c.add(&change.CreateForeignDataWrapper{Wrapper: new})
			c.createComment(change.ObjectTypeForeignDataWrapper, "FOREIGN DATA WRAPPER", change.Ident(new.Name), id, new.Comment)
		case !inBranch:
			c.add(&change.DropForeignDataWrapper{Wrapper: old})
		default:
			alter := &change.AlterForeignDataWrapper{Wrapper: new}
			if old.Handler != new.Handler {
				alter.SetHandler = true
			}
			if old.Validator != new.Validator {
				alter.SetValidator = true
			}
			alter.AddOptions, alter.SetOptions, alter.DropOptions = optionReconcile(old.Options, new.Options)
			if alter.SetHandler || alter.SetValidator ||
				len(alter.AddOptions) > 0 || len(alter.SetOptions) > 0 || len(alter.DropOptions) > 0 {
				c.add(alter)
			}
			c.diffComment(change.ObjectTypeForeignDataWrapper, "FOREIGN DATA WRAPPER", change.Ident(new.Name), id, old.Comment, new.Comment)
		}
	}
}

func (c *context) diffForeignServers() {
	for _, id := range unionKeys(c.main.ForeignServers, c.branch.ForeignServers) {
		old, inMain := c.main.ForeignServers[id]
		new, inBranch := c.branch.ForeignServers[id]
		switch {
		case !inMain:
			c.add(&change.CreateForeignServer{Server: new})
			c.createComment(change.ObjectTypeForeignServer, "SERVER", change.Ident(new.Name), id, new.Comment)
		case !inBranch:
			c.add(&change.DropForeignServer{Server: old})
		default:
			// Wrapper and type are fixed at creation.
			if old.Wrapper != new.Wrapper || old.Type != new.Type {
				c.add(&change.DropForeignServer{Server: old})
				c.add(&change.CreateForeignServer{Server: new})
				c.createComment(change.ObjectTypeForeignServer, "SERVER", change.Ident(new.Name), id, new.Comment)
				continue
			}
			alter := &change.AlterForeignServer{Server: new}
			if old.Version != new.Version && new.Version != "" {
				alter.SetVersion = true
			}
			alter.AddOptions, alter.SetOptions, alter.DropOptions = optionReconcile(old.Options, new.Options)
			if alter.SetVersion || len(alter.AddOptions) > 0 || len(alter.SetOptions) > 0 || len(alter.DropOptions) > 0 {
				c.add(alter)
			}
			c.diffComment(change.ObjectTypeForeignServer, "SERVER", change.Ident(new.Name), id, old.Comment, new.Comment)
		}
	}
}

func (c *context) diffUserMappings() {
	for _, id := range unionKeys(c.main.UserMappings, c.branch.UserMappings) {
		old, inMain := c.main.UserMappings[id]
		new, inBranch := c.branch.UserMappings[id]
		switch {
		case !inMain:
			c.add(&change.CreateUserMapping{Mapping: new})
		case !inBranch:
			// A dropped server or role takes its mappings with it.
			if c.objectDropped(catalog.ForeignServerID(old.Server)) || c.objectDropped(catalog.RoleID(old.Role)) {
				continue
			}
			c.add(&change.DropUserMapping{Mapping: old})
		default:
			add, set, drop := optionReconcile(old.Options, new.Options)
			if len(add) > 0 || len(set) > 0 || len(drop) > 0 {
				c.add(&change.AlterUserMapping{Mapping: new, AddOptions: add, SetOptions: set, DropOptions: drop})
			}
		}
	}
}

func (c *context) diffForeignTables() {
	for _, id := range unionKeys(c.main.ForeignTables, c.branch.ForeignTables) {
		old, inMain := c.main.ForeignTables[id]
		new, inBranch := c.branch.ForeignTables[id]
		switch {
		case !inMain:
			c.createForeignTable(new)
		case !inBranch:
			if c.objectDropped(catalog.ForeignServerID(old.Server)) {
				continue
			}
			c.add(&change.DropForeignTable{Table: old})
		default:
			// The backing server is fixed at creation.
			if old.Server != new.Server {
				c.add(&change.DropForeignTable{Table: old})
				c.createForeignTable(new)
				continue
			}
			c.diffForeignTableColumns(old, new)
			add, set, drop := optionReconcile(old.Options, new.Options)
			if len(add) > 0 || len(set) > 0 || len(drop) > 0 {
				c.add(&change.AlterForeignTableOptions{Table: new, AddOptions: add, SetOptions: set, DropOptions: drop})
			}
			c.diffComment(change.ObjectTypeForeignTable, "FOREIGN TABLE", change.Qualified(new.Schema, new.Name), id, old.Comment, new.Comment)
		}
	}
}

func (c *context) createForeignTable(t *catalog.ForeignTable) {
	c.add(&change.CreateForeignTable{Table: t})
	c.createComment(change.ObjectTypeForeignTable, "FOREIGN TABLE", change.Qualified(t.Schema, t.Name), t.StableID(), t.Comment)
	for _, col := range t.Columns {
		c.createComment(change.ObjectTypeForeignTable, "COLUMN",
			change.Qualified(t.Schema, t.Name)+"."+change.Ident(col.Name),
			catalog.ColumnID(t.Schema, t.Name, col.Name), col.Comment)
	}
}

// diffForeignTableColumns reuses the relation column changes with the
// Foreign flag switching statements to ALTER FOREIGN TABLE.
func (c *context) diffForeignTableColumns(old, new *catalog.ForeignTable) {
	oldCols := columnsByName(old.Columns)
	for _, col := range new.Columns {
		oldCol, ok := oldCols[col.Name]
		if !ok {
			c.add(&change.AlterTableAddColumn{Schema: new.Schema, Table: new.Name, Column: col, Foreign: true})
			continue
		}
		if oldCol.DataType != col.DataType || oldCol.Collation != col.Collation {
			c.add(&change.AlterTableAlterColumnType{
				Schema:    new.Schema,
				Table:     new.Name,
				Column:    col.Name,
				DataType:  col.DataType,
				Collation: col.Collation,
				Foreign:   true,
			})
		}
		if !columnDefaultEqual(oldCol.Default, col.Default) {
			if col.Default != nil {
				c.add(&change.AlterTableSetColumnDefault{Schema: new.Schema, Table: new.Name, Column: col.Name, Default: *col.Default, Foreign: true})
			} else {
				c.add(&change.AlterTableDropColumnDefault{Schema: new.Schema, Table: new.Name, Column: col.Name, Foreign: true})
			}
		}
		if oldCol.NotNull != col.NotNull {
			c.add(&change.AlterTableSetColumnNotNull{Schema: new.Schema, Table: new.Name, Column: col.Name, NotNull: col.NotNull, Foreign: true})
		}
	}
	newCols := columnsByName(new.Columns)
	for _, col := range old.Columns {
		if _, ok := newCols[col.Name]; !ok {
			c.add(&change.AlterTableDropColumn{Schema: new.Schema, Table: new.Name, Column: col.Name, Foreign: true})
		}
	}
}
