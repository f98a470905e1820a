package diff

import (
	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
)

func (c *context) diffTables() {
	for _, id := range unionKeys(c.main.Tables, c.branch.Tables) {
		old, inMain := c.main.Tables[id]
		new, inBranch := c.branch.Tables[id]
		switch {
		case !inMain:
			c.createTable(new)
		case !inBranch:
			c.add(&change.DropTable{Table: old})
		default:
			c.alterTable(old, new)
		}
	}
}

// createTable emits CREATE TABLE plus everything the statement cannot
// carry: foreign keys (always split out so circular references order
// safely), row security, and comments.
func (c *context) createTable(t *catalog.Table) {
	c.add(&change.CreateTable{Table: t})
	for _, con := range t.SortedConstraints() {
		if con.Type == catalog.ConstraintTypeForeignKey {
			c.add(&change.AddConstraint{Constraint: con})
		}
	}
	if t.RLSEnabled {
		c.add(&change.AlterTableRowSecurity{Schema: t.Schema, Table: t.Name, Clause: "ENABLE"})
	}
	if t.RLSForced {
		c.add(&change.AlterTableRowSecurity{Schema: t.Schema, Table: t.Name, Clause: "FORCE"})
	}
	c.createComment(change.ObjectTypeTable, "TABLE", change.Qualified(t.Schema, t.Name), t.StableID(), t.Comment)
	for _, col := range t.Columns {
		c.createComment(change.ObjectTypeTable, "COLUMN",
			change.Qualified(t.Schema, t.Name)+"."+change.Ident(col.Name),
			catalog.ColumnID(t.Schema, t.Name, col.Name), col.Comment)
	}
	for _, con := range t.SortedConstraints() {
		c.createComment(change.ObjectTypeConstraint, "CONSTRAINT",
			change.Ident(con.Name)+" ON "+change.Qualified(t.Schema, t.Name),
			con.StableID(), con.Comment)
	}
}

// tableReplaceNeeded reports whether a table change cannot be expressed as
// ALTER statements. Partitioning shape is fixed at creation.
func tableReplaceNeeded(old, new *catalog.Table) bool {
	return old.PartitionStrategy != new.PartitionStrategy ||
		old.PartitionKey != new.PartitionKey ||
		old.PartitionParent != new.PartitionParent ||
		old.PartitionBound != new.PartitionBound
}

func (c *context) alterTable(old, new *catalog.Table) {
	if tableReplaceNeeded(old, new) {
		c.add(&change.DropTable{Table: old})
		c.createTable(new)
		return
	}

	c.diffColumns(old, new)
	c.diffConstraints(old, new)

	if set, reset := optionDelta(old.StorageOptions, new.StorageOptions); len(set) > 0 || len(reset) > 0 {
		c.add(&change.AlterTableSetStorageParameters{Schema: new.Schema, Table: new.Name, Set: set, Reset: reset})
	}
	if old.Persistence != new.Persistence {
		c.add(&change.AlterTableSetLogged{
			Schema: new.Schema,
			Table:  new.Name,
			Logged: new.Persistence != catalog.PersistenceUnlogged,
		})
	}
	if old.Tablespace != new.Tablespace && new.Tablespace != "" {
		c.add(&change.AlterTableSetTablespace{Schema: new.Schema, Table: new.Name, Tablespace: new.Tablespace})
	}
	if old.RLSEnabled != new.RLSEnabled {
		clause := "DISABLE"
		if new.RLSEnabled {
			clause = "ENABLE"
		}
		c.add(&change.AlterTableRowSecurity{Schema: new.Schema, Table: new.Name, Clause: clause})
	}
	if old.RLSForced != new.RLSForced {
		clause := "NO FORCE"
		if new.RLSForced {
			clause = "FORCE"
		}
		c.add(&change.AlterTableRowSecurity{Schema: new.Schema, Table: new.Name, Clause: clause})
	}
	if old.Owner != new.Owner && new.Owner != "" {
		c.add(&change.AlterTableOwner{Schema: new.Schema, Table: new.Name, Owner: new.Owner})
	}
	c.diffComment(change.ObjectTypeTable, "TABLE", change.Qualified(new.Schema, new.Name), new.StableID(), old.Comment, new.Comment)
}

func columnsByName(cols []*catalog.Column) map[string]*catalog.Column {
	m := make(map[string]*catalog.Column, len(cols))
	for _, col := range cols {
		m[col.Name] = col
	}
	return m
}

// columnDefaultEqual compares default expressions through fingerprinting
// so cosmetic rewrites by the server never show as changes.
func columnDefaultEqual(a, b *string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || catalog.ExpressionsEquivalent(*a, *b)
}

func (c *context) diffColumns(old, new *catalog.Table) {
	oldCols := columnsByName(old.Columns)

	// Additions and changes follow the branch's column order; drops come
	// after so a rename seen as drop+add keeps a stable shape.
	for _, col := range new.Columns {
		oldCol, ok := oldCols[col.Name]
		if !ok {
			c.add(&change.AlterTableAddColumn{Schema: new.Schema, Table: new.Name, Column: col})
			c.createComment(change.ObjectTypeTable, "COLUMN",
				change.Qualified(new.Schema, new.Name)+"."+change.Ident(col.Name),
				catalog.ColumnID(new.Schema, new.Name, col.Name), col.Comment)
			continue
		}
		c.alterColumn(new, oldCol, col)
	}

	newCols := columnsByName(new.Columns)
	for _, col := range old.Columns {
		if _, ok := newCols[col.Name]; !ok {
			c.add(&change.AlterTableDropColumn{Schema: new.Schema, Table: new.Name, Column: col.Name})
		}
	}
}

func (c *context) alterColumn(t *catalog.Table, old, new *catalog.Column) {
	// Identity and generation clauses cannot be rewritten in place.
	if old.Identity != new.Identity || !catalog.ExpressionsEquivalent(old.Generated, new.Generated) {
		c.add(&change.AlterTableDropColumn{Schema: t.Schema, Table: t.Name, Column: old.Name})
		c.add(&change.AlterTableAddColumn{Schema: t.Schema, Table: t.Name, Column: new})
		c.createComment(change.ObjectTypeTable, "COLUMN",
			change.Qualified(t.Schema, t.Name)+"."+change.Ident(new.Name),
			catalog.ColumnID(t.Schema, t.Name, new.Name), new.Comment)
		return
	}

	if old.DataType != new.DataType || old.Collation != new.Collation {
		c.add(&change.AlterTableAlterColumnType{
			Schema:    t.Schema,
			Table:     t.Name,
			Column:    new.Name,
			DataType:  new.DataType,
			Collation: new.Collation,
		})
	}
	if !columnDefaultEqual(old.Default, new.Default) {
		if new.Default != nil {
			c.add(&change.AlterTableSetColumnDefault{Schema: t.Schema, Table: t.Name, Column: new.Name, Default: *new.Default})
		} else {
			c.add(&change.AlterTableDropColumnDefault{Schema: t.Schema, Table: t.Name, Column: new.Name})
		}
	}
	if old.NotNull != new.NotNull {
		c.add(&change.AlterTableSetColumnNotNull{Schema: t.Schema, Table: t.Name, Column: new.Name, NotNull: new.NotNull})
	}
	if !catalog.IntPtrEqual(old.Statistics, new.Statistics) {
		stats := -1 // reset to the system default
		if new.Statistics != nil {
			stats = *new.Statistics
		}
		c.add(&change.AlterTableSetColumnStatistics{Schema: t.Schema, Table: t.Name, Column: new.Name, Statistics: stats})
	}
	if old.Storage != new.Storage && new.Storage != "" {
		c.add(&change.AlterTableSetColumnStorage{Schema: t.Schema, Table: t.Name, Column: new.Name, Storage: new.Storage})
	}
	c.diffComment(change.ObjectTypeTable, "COLUMN",
		change.Qualified(t.Schema, t.Name)+"."+change.Ident(new.Name),
		catalog.ColumnID(t.Schema, t.Name, new.Name), old.Comment, new.Comment)
}

// constraintsEqual compares the data fields of a constraint. Any
// difference replaces the constraint; constraints have no usable ALTER.
func constraintsEqual(a, b *catalog.Constraint) bool {
	return a.Type == b.Type &&
		catalog.StringSlicesEqual(a.Columns, b.Columns) &&
		a.ReferencedSchema == b.ReferencedSchema &&
		a.ReferencedTable == b.ReferencedTable &&
		catalog.StringSlicesEqual(a.ReferencedColumns, b.ReferencedColumns) &&
		a.OnUpdate == b.OnUpdate &&
		a.OnDelete == b.OnDelete &&
		catalog.StatementsEquivalent(a.CheckClause, b.CheckClause) &&
		a.NoInherit == b.NoInherit &&
		a.ExclusionDefinition == b.ExclusionDefinition &&
		a.Deferrable == b.Deferrable &&
		a.InitiallyDeferred == b.InitiallyDeferred &&
		a.Validated == b.Validated
}

func (c *context) diffConstraints(old, new *catalog.Table) {
	for _, id := range unionKeys(old.Constraints, new.Constraints) {
		oldCon, inMain := old.Constraints[id]
		newCon, inBranch := new.Constraints[id]
		name := change.Qualified(new.Schema, new.Name)
		switch {
		case !inMain:
			c.add(&change.AddConstraint{Constraint: newCon})
			c.createComment(change.ObjectTypeConstraint, "CONSTRAINT",
				change.Ident(newCon.Name)+" ON "+name, newCon.StableID(), newCon.Comment)
		case !inBranch:
			c.add(&change.DropConstraint{Schema: new.Schema, Table: new.Name, Name: oldCon.Name})
		default:
			if !constraintsEqual(oldCon, newCon) {
				c.add(&change.DropConstraint{Schema: new.Schema, Table: new.Name, Name: oldCon.Name})
				c.add(&change.AddConstraint{Constraint: newCon})
				c.createComment(change.ObjectTypeConstraint, "CONSTRAINT",
					change.Ident(newCon.Name)+" ON "+name, newCon.StableID(), newCon.Comment)
				continue
			}
			c.diffComment(change.ObjectTypeConstraint, "CONSTRAINT",
				change.Ident(newCon.Name)+" ON "+name, newCon.StableID(), oldCon.Comment, newCon.Comment)
		}
	}
}
