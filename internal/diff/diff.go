// Package diff compares two catalog snapshots and produces the typed
// changes that transform the first into the second. Diff functions only
// detect and describe changes; ordering is the plan package's job.
package diff

import (
	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
)

// context carries the two snapshots and collects changes. droppedIDs holds
// the stable IDs of first-class objects present in main but absent in
// branch; sub-object diffs consult it so a DROP TABLE is not accompanied by
// drops of the indexes, triggers and policies it already removes.
// replacedIDs holds relations present in both snapshots whose change can
// only be expressed as drop+create; their surviving sub-objects go down
// with the drop and must be re-established.
type context struct {
	main   *catalog.Catalog
	branch *catalog.Catalog

	serverVersion int
	droppedIDs    map[string]bool
	replacedIDs   map[string]bool

	changes []change.Change
}

func (c *context) add(ch change.Change) {
	c.changes = append(c.changes, ch)
}

func (c *context) objectDropped(id string) bool {
	return c.droppedIDs[id]
}

func (c *context) objectReplaced(id string) bool {
	return c.replacedIDs[id]
}

// Diff computes the changes that transform the main snapshot into the
// branch snapshot. Emission order is deterministic but carries no execution
// semantics; ordering happens in the plan package.
func Diff(main, branch *catalog.Catalog) []change.Change {
	version := branch.ServerVersion
	if version == 0 {
		version = main.ServerVersion
	}
	ctx := &context{
		main:          main,
		branch:        branch,
		serverVersion: version,
		droppedIDs:    droppedObjectIDs(main, branch),
		replacedIDs:   replacedRelationIDs(main, branch),
	}

	ctx.diffRoles()
	ctx.diffMemberships()
	ctx.diffSchemas()
	ctx.diffExtensions()
	ctx.diffCollations()
	ctx.diffTypes()
	ctx.diffSequences()
	ctx.diffTables()
	ctx.diffIndexes()
	ctx.diffViews()
	ctx.diffMaterializedViews()
	ctx.diffFunctions()
	ctx.diffProcedures()
	ctx.diffAggregates()
	ctx.diffTriggers()
	ctx.diffRules()
	ctx.diffPolicies()
	ctx.diffEventTriggers()
	ctx.diffPublications()
	ctx.diffSubscriptions()
	ctx.diffForeignDataWrappers()
	ctx.diffForeignServers()
	ctx.diffUserMappings()
	ctx.diffForeignTables()
	ctx.diffPrivileges()
	ctx.diffDefaultPrivileges()

	return ctx.changes
}

// droppedObjectIDs collects the stable IDs of first-class objects that
// exist in main but not in branch.
func droppedObjectIDs(main, branch *catalog.Catalog) map[string]bool {
	ids := map[string]bool{}
	markDropped(ids, main.Schemas, branch.Schemas)
	markDropped(ids, main.Tables, branch.Tables)
	markDropped(ids, main.Views, branch.Views)
	markDropped(ids, main.MaterializedViews, branch.MaterializedViews)
	markDropped(ids, main.Sequences, branch.Sequences)
	markDropped(ids, main.Functions, branch.Functions)
	markDropped(ids, main.Procedures, branch.Procedures)
	markDropped(ids, main.Types, branch.Types)
	markDropped(ids, main.Roles, branch.Roles)
	markDropped(ids, main.ForeignDataWrappers, branch.ForeignDataWrappers)
	markDropped(ids, main.ForeignServers, branch.ForeignServers)
	markDropped(ids, main.ForeignTables, branch.ForeignTables)
	return ids
}

func markDropped[T any](ids map[string]bool, main, branch map[string]T) {
	for id := range main {
		if _, ok := branch[id]; !ok {
			ids[id] = true
		}
	}
}

// replacedRelationIDs collects relations present in both snapshots that the
// diff will drop and re-create rather than alter.
func replacedRelationIDs(main, branch *catalog.Catalog) map[string]bool {
	ids := map[string]bool{}
	for id, old := range main.Tables {
		if new, ok := branch.Tables[id]; ok && tableReplaceNeeded(old, new) {
			ids[id] = true
		}
	}
	for id, old := range main.MaterializedViews {
		if new, ok := branch.MaterializedViews[id]; ok && materializedViewReplaceNeeded(old, new) {
			ids[id] = true
		}
	}
	return ids
}
