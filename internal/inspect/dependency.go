package inspect

import (
	"context"
	"sort"

	"github.com/pgdelta/pgdelta/internal/catalog"
)

// loadRelationDependencies fills the Dependencies lists that drive
// statement ordering: tables depend on the user types their columns use and
// on their partition parent, views and materialized views depend on the
// relations and functions their definitions reference.
func (i *Inspector) loadRelationDependencies(ctx context.Context, cat *catalog.Catalog) error {
	deps := map[string]map[string]bool{}
	record := func(ownerID, depID string) {
		if depID == "" || depID == ownerID {
			return
		}
		if deps[ownerID] == nil {
			deps[ownerID] = map[string]bool{}
		}
		deps[ownerID][depID] = true
	}

	for id, t := range cat.Tables {
		if t.PartitionParent != "" {
			if schema, name, ok := splitRelation(t.PartitionParent); ok {
				record(id, catalog.TableID(schema, name))
			}
		}
	}

	if err := i.loadColumnTypeDependencies(ctx, record); err != nil {
		return err
	}
	if err := i.loadViewDependencies(ctx, record); err != nil {
		return err
	}

	for ownerID, set := range deps {
		ids := make([]string, 0, len(set))
		for depID := range set {
			ids = append(ids, depID)
		}
		sort.Strings(ids)
		if t, ok := cat.Tables[ownerID]; ok {
			t.Dependencies = ids
		} else if v, ok := cat.Views[ownerID]; ok {
			v.Dependencies = ids
		} else if m, ok := cat.MaterializedViews[ownerID]; ok {
			m.Dependencies = ids
		}
	}
	return nil
}

func splitRelation(qualified string) (schema, name string, ok bool) {
	for idx := 0; idx < len(qualified); idx++ {
		if qualified[idx] == '.' {
			return qualified[:idx], qualified[idx+1:], true
		}
	}
	return "", "", false
}

func (i *Inspector) loadColumnTypeDependencies(ctx context.Context, record func(ownerID, depID string)) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, c.relname, tn.nspname, ut.typname
		FROM pg_attribute a
		JOIN pg_class c ON c.oid = a.attrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_type t ON t.oid = a.atttypid
		JOIN pg_type ut ON ut.oid = CASE WHEN t.typelem <> 0 AND t.typlen = -1 THEN t.typelem ELSE t.oid END
		JOIN pg_namespace tn ON tn.oid = ut.typnamespace
		WHERE c.relkind IN ('r', 'p') AND a.attnum > 0 AND NOT a.attisdropped
		  AND ut.typtype IN ('e', 'c', 'd', 'r')
		  AND n.`+userSchemaFilter+`
		  AND tn.`+userSchemaFilter)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var schema, table, typeSchema, typeName string
		if err := rows.Scan(&schema, &table, &typeSchema, &typeName); err != nil {
			return err
		}
		record(catalog.TableID(schema, table), catalog.TypeID(typeSchema, typeName))
	}
	return rows.Err()
}

func (i *Inspector) loadViewDependencies(ctx context.Context, record func(ownerID, depID string)) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT vn.nspname, v.relname, v.relkind::text, rn.nspname, r.relname, r.relkind::text, '' AS args
		FROM pg_depend d
		JOIN pg_rewrite rw ON rw.oid = d.objid AND d.classid = 'pg_rewrite'::regclass
		JOIN pg_class v ON v.oid = rw.ev_class AND v.relkind IN ('v', 'm')
		JOIN pg_namespace vn ON vn.oid = v.relnamespace
		JOIN pg_class r ON r.oid = d.refobjid AND d.refclassid = 'pg_class'::regclass
		JOIN pg_namespace rn ON rn.oid = r.relnamespace
		WHERE r.oid <> v.oid AND vn.`+userSchemaFilter+` AND rn.`+userSchemaFilter+`
		UNION
		SELECT vn.nspname, v.relname, v.relkind::text, pn.nspname, p.proname, 'F',
		       pg_get_function_identity_arguments(p.oid)
		FROM pg_depend d
		JOIN pg_rewrite rw ON rw.oid = d.objid AND d.classid = 'pg_rewrite'::regclass
		JOIN pg_class v ON v.oid = rw.ev_class AND v.relkind IN ('v', 'm')
		JOIN pg_namespace vn ON vn.oid = v.relnamespace
		JOIN pg_proc p ON p.oid = d.refobjid AND d.refclassid = 'pg_proc'::regclass
		JOIN pg_namespace pn ON pn.oid = p.pronamespace
		WHERE vn.`+userSchemaFilter+` AND pn.`+userSchemaFilter)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var viewSchema, viewName, viewKind, depSchema, depName, depKind, args string
		if err := rows.Scan(&viewSchema, &viewName, &viewKind, &depSchema, &depName, &depKind, &args); err != nil {
			return err
		}
		ownerID := catalog.ViewID(viewSchema, viewName)
		if viewKind == "m" {
			ownerID = catalog.MaterializedViewID(viewSchema, viewName)
		}
		var depID string
		switch depKind {
		case "r", "p":
			depID = catalog.TableID(depSchema, depName)
		case "v":
			depID = catalog.ViewID(depSchema, depName)
		case "m":
			depID = catalog.MaterializedViewID(depSchema, depName)
		case "f":
			depID = catalog.ForeignTableID(depSchema, depName)
		case "S":
			depID = catalog.SequenceID(depSchema, depName)
		case "F":
			depID = catalog.FunctionID(depSchema, depName, args)
		}
		record(ownerID, depID)
	}
	return rows.Err()
}
