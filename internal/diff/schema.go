package diff

import (
	"github.com/pgdelta/pgdelta/internal/change"
)

func (c *context) diffSchemas() {
	for _, id := range unionKeys(c.main.Schemas, c.branch.Schemas) {
		old, inMain := c.main.Schemas[id]
		new, inBranch := c.branch.Schemas[id]
		switch {
		case !inMain:
			c.add(&change.CreateSchema{Schema: new})
			c.createComment(change.ObjectTypeSchema, "SCHEMA", change.Ident(new.Name), id, new.Comment)
		case !inBranch:
			c.add(&change.DropSchema{Schema: old})
		default:
			if old.Owner != new.Owner && new.Owner != "" {
				c.add(&change.AlterSchemaOwner{Name: new.Name, Owner: new.Owner})
			}
			c.diffComment(change.ObjectTypeSchema, "SCHEMA", change.Ident(new.Name), id, old.Comment, new.Comment)
		}
	}
}

func (c *context) diffExtensions() {
	for _, id := range unionKeys(c.main.Extensions, c.branch.Extensions) {
		old, inMain := c.main.Extensions[id]
		new, inBranch := c.branch.Extensions[id]
		switch {
		case !inMain:
			c.add(&change.CreateExtension{Extension: new})
			c.createComment(change.ObjectTypeExtension, "EXTENSION", change.Ident(new.Name), id, new.Comment)
		case !inBranch:
			c.add(&change.DropExtension{Extension: old})
		default:
			// Schema relocation would need ALTER EXTENSION SET SCHEMA plus a
			// dependency sweep; treat it as a replace.
			if old.Schema != new.Schema {
				c.add(&change.DropExtension{Extension: old})
				c.add(&change.CreateExtension{Extension: new})
				c.createComment(change.ObjectTypeExtension, "EXTENSION", change.Ident(new.Name), id, new.Comment)
				continue
			}
			if old.Version != new.Version && new.Version != "" {
				c.add(&change.AlterExtensionUpdate{Name: new.Name, Version: new.Version})
			}
			c.diffComment(change.ObjectTypeExtension, "EXTENSION", change.Ident(new.Name), id, old.Comment, new.Comment)
		}
	}
}

func (c *context) diffCollations() {
	for _, id := range unionKeys(c.main.Collations, c.branch.Collations) {
		old, inMain := c.main.Collations[id]
		new, inBranch := c.branch.Collations[id]
		var name string
		if inBranch {
			name = change.Qualified(new.Schema, new.Name)
		} else {
			name = change.Qualified(old.Schema, old.Name)
		}
		switch {
		case !inMain:
			c.add(&change.CreateCollation{Collation: new})
			c.createComment(change.ObjectTypeCollation, "COLLATION", name, id, new.Comment)
		case !inBranch:
			c.add(&change.DropCollation{Collation: old})
		default:
			// Collations have no ALTER for provider, locale or determinism.
			if old.Provider != new.Provider || old.Locale != new.Locale || old.Deterministic != new.Deterministic {
				c.add(&change.DropCollation{Collation: old})
				c.add(&change.CreateCollation{Collation: new})
				c.createComment(change.ObjectTypeCollation, "COLLATION", name, id, new.Comment)
				continue
			}
			c.diffComment(change.ObjectTypeCollation, "COLLATION", name, id, old.Comment, new.Comment)
		}
	}
}
