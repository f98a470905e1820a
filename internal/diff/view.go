package diff

import (
	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
)

func (c *context) diffViews() {
	for _, id := range unionKeys(c.main.Views, c.branch.Views) {
		old, inMain := c.main.Views[id]
		new, inBranch := c.branch.Views[id]
		switch {
		case !inMain:
			c.add(&change.CreateView{View: new})
			c.createComment(change.ObjectTypeView, "VIEW", change.Qualified(new.Schema, new.Name), id, new.Comment)
		case !inBranch:
			c.add(&change.DropView{View: old})
		default:
			// Definition and check option both live in CREATE OR REPLACE.
			if !catalog.StatementsEquivalent(old.Definition, new.Definition) || old.CheckOption != new.CheckOption {
				c.add(&change.CreateView{View: new, OrReplace: true})
			}
			if set, reset := optionDelta(old.Options, new.Options); len(set) > 0 || len(reset) > 0 {
				c.add(&change.AlterViewSetOptions{Schema: new.Schema, Name: new.Name, Set: set, Reset: reset})
			}
			if old.Owner != new.Owner && new.Owner != "" {
				c.add(&change.AlterViewOwner{Schema: new.Schema, Name: new.Name, Owner: new.Owner})
			}
			c.diffComment(change.ObjectTypeView, "VIEW", change.Qualified(new.Schema, new.Name), id, old.Comment, new.Comment)
		}
	}
}

// materializedViewReplaceNeeded reports whether a materialized view change
// cannot be expressed as ALTER statements. There is no OR REPLACE form.
func materializedViewReplaceNeeded(old, new *catalog.MaterializedView) bool {
	return !catalog.StatementsEquivalent(old.Definition, new.Definition) ||
		!catalog.OptionsEqual(old.StorageOptions, new.StorageOptions) ||
		old.Tablespace != new.Tablespace
}

func (c *context) diffMaterializedViews() {
	for _, id := range unionKeys(c.main.MaterializedViews, c.branch.MaterializedViews) {
		old, inMain := c.main.MaterializedViews[id]
		new, inBranch := c.branch.MaterializedViews[id]
		switch {
		case !inMain:
			c.add(&change.CreateMaterializedView{View: new})
			c.createComment(change.ObjectTypeMaterializedView, "MATERIALIZED VIEW", change.Qualified(new.Schema, new.Name), id, new.Comment)
		case !inBranch:
			c.add(&change.DropMaterializedView{View: old})
		default:
			// Materialized views have no OR REPLACE; any definition or
			// storage change rebuilds them.
			if materializedViewReplaceNeeded(old, new) {
				c.add(&change.DropMaterializedView{View: old})
				c.add(&change.CreateMaterializedView{View: new})
				c.createComment(change.ObjectTypeMaterializedView, "MATERIALIZED VIEW", change.Qualified(new.Schema, new.Name), id, new.Comment)
				continue
			}
			if old.Owner != new.Owner && new.Owner != "" {
				c.add(&change.AlterMaterializedViewOwner{Schema: new.Schema, Name: new.Name, Owner: new.Owner})
			}
			c.diffComment(change.ObjectTypeMaterializedView, "MATERIALIZED VIEW", change.Qualified(new.Schema, new.Name), id, old.Comment, new.Comment)
		}
	}
}
