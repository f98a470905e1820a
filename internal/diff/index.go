package diff

import (
	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
)

// indexManaged reports whether an index's lifecycle belongs to something
// else: constraint-backing indexes arrive with the constraint, partition
// children with the parent index.
func indexManaged(i *catalog.Index) bool {
	return i.OwnedByConstraint != "" || i.IsPartitionChild
}

// indexKeyEqual compares the parts of an index that CREATE INDEX fixes
// forever: method, uniqueness, key columns and predicate.
func indexKeyEqual(a, b *catalog.Index) bool {
	if a.Method != b.Method || a.Unique != b.Unique || len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		ac, bc := a.Columns[i], b.Columns[i]
		if !catalog.ExpressionsEquivalent(ac.Expression, bc.Expression) {
			return false
		}
		if ac.OpClass != bc.OpClass || ac.Direction != bc.Direction ||
			ac.NullsOrder != bc.NullsOrder || ac.Collation != bc.Collation {
			return false
		}
	}
	return catalog.ExpressionsEquivalent(a.Where, b.Where)
}

func (c *context) diffIndexes() {
	for _, id := range unionKeys(c.main.Indexes, c.branch.Indexes) {
		old, inMain := c.main.Indexes[id]
		new, inBranch := c.branch.Indexes[id]
		switch {
		case !inMain:
			if indexManaged(new) {
				continue
			}
			c.add(&change.CreateIndex{Index: new})
			c.createComment(change.ObjectTypeIndex, "INDEX", change.Qualified(new.Schema, new.Name), id, new.Comment)
		case !inBranch:
			if indexManaged(old) || c.objectDropped(old.ParentID()) || c.objectReplaced(old.ParentID()) {
				continue
			}
			c.add(&change.DropIndex{Index: old})
		default:
			if indexManaged(old) || indexManaged(new) {
				continue
			}
			if c.objectReplaced(new.ParentID()) {
				// The parent relation is dropped and re-created; the index
				// goes down with it and comes back from scratch.
				c.add(&change.CreateIndex{Index: new})
				c.createComment(change.ObjectTypeIndex, "INDEX", change.Qualified(new.Schema, new.Name), id, new.Comment)
				continue
			}
			if !indexKeyEqual(old, new) || old.Table != new.Table {
				c.add(&change.DropIndex{Index: old})
				c.add(&change.CreateIndex{Index: new})
				c.createComment(change.ObjectTypeIndex, "INDEX", change.Qualified(new.Schema, new.Name), id, new.Comment)
				continue
			}
			if set, reset := optionDelta(old.StorageOptions, new.StorageOptions); len(set) > 0 || len(reset) > 0 {
				c.add(&change.AlterIndexSetStorageParameters{Schema: new.Schema, Name: new.Name, Set: set, Reset: reset})
			}
			if old.Tablespace != new.Tablespace && new.Tablespace != "" {
				c.add(&change.AlterIndexSetTablespace{Schema: new.Schema, Name: new.Name, Tablespace: new.Tablespace})
			}
			c.diffComment(change.ObjectTypeIndex, "INDEX", change.Qualified(new.Schema, new.Name), id, old.Comment, new.Comment)
		}
	}
}
