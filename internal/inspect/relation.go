package inspect

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"github.com/pgdelta/pgdelta/internal/catalog"
)

// relationFilter excludes extension-owned relations; the alias is c.
const relationFilter = `
	  AND NOT EXISTS (
	    SELECT 1 FROM pg_depend d
	    WHERE d.classid = 'pg_class'::regclass AND d.objid = c.oid AND d.deptype = 'e')`

func (i *Inspector) loadTables(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, c.relname, pg_get_userbyid(c.relowner), c.relpersistence,
		       CASE pt.partstrat WHEN 'r' THEN 'RANGE' WHEN 'l' THEN 'LIST' WHEN 'h' THEN 'HASH' ELSE '' END,
		       COALESCE(pg_get_partkeydef(c.oid), ''),
		       COALESCE(pg_get_expr(c.relpartbound, c.oid), ''),
		       COALESCE(pn.nspname || '.' || pc.relname, ''),
		       c.reloptions,
		       COALESCE(ts.spcname, ''),
		       c.relrowsecurity, c.relforcerowsecurity,
		       COALESCE(obj_description(c.oid, 'pg_class'), '')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN pg_partitioned_table pt ON pt.partrelid = c.oid
		LEFT JOIN pg_inherits inh ON inh.inhrelid = c.oid
		LEFT JOIN pg_class pc ON pc.oid = inh.inhparent
		LEFT JOIN pg_namespace pn ON pn.oid = pc.relnamespace
		LEFT JOIN pg_tablespace ts ON ts.oid = c.reltablespace
		WHERE c.relkind IN ('r', 'p') AND n.`+userSchemaFilter+relationFilter+`
		ORDER BY n.nspname, c.relname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		t := &catalog.Table{Constraints: map[string]*catalog.Constraint{}}
		var persistence string
		var options []string
		if err := rows.Scan(&t.Schema, &t.Name, &t.Owner, &persistence,
			&t.PartitionStrategy, &t.PartitionKey, &t.PartitionBound, &t.PartitionParent,
			pq.Array(&options), &t.Tablespace,
			&t.RLSEnabled, &t.RLSForced, &t.Comment); err != nil {
			return err
		}
		t.Persistence = catalog.Persistence(persistence)
		t.StorageOptions = flatPairs(options)
		// pg_get_partkeydef returns "RANGE (expr)"; the strategy is already
		// split out, so keep only the key expression.
		if t.PartitionKey != "" {
			if open := strings.IndexByte(t.PartitionKey, '('); open >= 0 {
				t.PartitionKey = strings.TrimSuffix(t.PartitionKey[open+1:], ")")
			}
		}
		cat.Tables[t.StableID()] = t
	}
	return rows.Err()
}

func (i *Inspector) loadForeignTables(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, c.relname, pg_get_userbyid(c.relowner), fs.srvname,
		       ft.ftoptions,
		       COALESCE(obj_description(c.oid, 'pg_class'), '')
		FROM pg_foreign_table ft
		JOIN pg_class c ON c.oid = ft.ftrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_foreign_server fs ON fs.oid = ft.ftserver
		WHERE n.`+userSchemaFilter+relationFilter+`
		ORDER BY n.nspname, c.relname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		t := &catalog.ForeignTable{}
		var options []string
		if err := rows.Scan(&t.Schema, &t.Name, &t.Owner, &t.Server,
			pq.Array(&options), &t.Comment); err != nil {
			return err
		}
		t.Options = flatPairs(options)
		cat.ForeignTables[t.StableID()] = t
	}
	return rows.Err()
}

func (i *Inspector) loadColumns(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, c.relname, c.relkind, a.attname, a.attnum,
		       format_type(a.atttypid, a.atttypmod), a.attnotnull,
		       pg_get_expr(ad.adbin, ad.adrelid),
		       CASE WHEN a.attcollation <> 0 AND a.attcollation <> at.typcollation
		            THEN (SELECT collname FROM pg_collation WHERE oid = a.attcollation)
		            ELSE '' END,
		       CASE a.attidentity WHEN 'a' THEN 'ALWAYS' WHEN 'd' THEN 'BY DEFAULT' ELSE '' END,
		       a.attgenerated <> '',
		       CASE WHEN a.attstorage <> at.typstorage THEN
		            CASE a.attstorage WHEN 'p' THEN 'PLAIN' WHEN 'e' THEN 'EXTERNAL'
		                 WHEN 'x' THEN 'EXTENDED' WHEN 'm' THEN 'MAIN' END
		            ELSE '' END,
		       NULLIF(a.attstattarget, -1),
		       COALESCE(col_description(c.oid, a.attnum), '')
		FROM pg_attribute a
		JOIN pg_class c ON c.oid = a.attrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_type at ON at.oid = a.atttypid
		LEFT JOIN pg_attrdef ad ON ad.adrelid = a.attrelid AND ad.adnum = a.attnum
		WHERE c.relkind IN ('r', 'p', 'f') AND a.attnum > 0 AND NOT a.attisdropped
		  AND n.`+userSchemaFilter+relationFilter+`
		ORDER BY n.nspname, c.relname, a.attnum`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var schema, table, relkind string
		var expr sql.NullString
		var generated bool
		var stats sql.NullInt64
		col := &catalog.Column{}
		if err := rows.Scan(&schema, &table, &relkind, &col.Name, &col.Position,
			&col.DataType, &col.NotNull, &expr, &col.Collation, &col.Identity,
			&generated, &col.Storage, &stats, &col.Comment); err != nil {
			return err
		}
		// pg_attrdef stores both plain defaults and generation expressions.
		if generated {
			col.Generated = text(expr)
		} else {
			col.Default = textPtr(expr)
		}
		if stats.Valid {
			n := int(stats.Int64)
			col.Statistics = &n
		}
		if relkind == "f" {
			if t, ok := cat.ForeignTables[catalog.ForeignTableID(schema, table)]; ok {
				t.Columns = append(t.Columns, col)
			}
			continue
		}
		if t, ok := cat.Tables[catalog.TableID(schema, table)]; ok {
			t.Columns = append(t.Columns, col)
		}
	}
	return rows.Err()
}

func (i *Inspector) loadConstraints(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, c.relname, con.conname, con.contype,
		       COALESCE((SELECT array_agg(a.attname ORDER BY k.ord)
		                 FROM unnest(con.conkey) WITH ORDINALITY k(attnum, ord)
		                 JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum), '{}'),
		       COALESCE(rn.nspname, ''), COALESCE(rc.relname, ''),
		       COALESCE((SELECT array_agg(a.attname ORDER BY k.ord)
		                 FROM unnest(con.confkey) WITH ORDINALITY k(attnum, ord)
		                 JOIN pg_attribute a ON a.attrelid = con.confrelid AND a.attnum = k.attnum), '{}'),
		       con.confupdtype, con.confdeltype,
		       CASE WHEN con.contype IN ('c', 'x') THEN pg_get_constraintdef(con.oid) ELSE '' END,
		       con.connoinherit, con.condeferrable, con.condeferred, con.convalidated,
		       COALESCE(ic.relname, ''),
		       COALESCE(obj_description(con.oid, 'pg_constraint'), '')
		FROM pg_constraint con
		JOIN pg_class c ON c.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN pg_class rc ON rc.oid = con.confrelid
		LEFT JOIN pg_namespace rn ON rn.oid = rc.relnamespace
		LEFT JOIN pg_class ic ON ic.oid = con.conindid AND con.contype IN ('p', 'u')
		WHERE con.contype IN ('p', 'u', 'f', 'c', 'x') AND con.conislocal
		  AND n.`+userSchemaFilter+relationFilter+`
		ORDER BY n.nspname, c.relname, con.conname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	actions := map[string]string{"a": "NO ACTION", "r": "RESTRICT", "c": "CASCADE", "n": "SET NULL", "d": "SET DEFAULT"}
	for rows.Next() {
		con := &catalog.Constraint{}
		var contype, onUpdate, onDelete, def string
		var columns, refColumns []string
		if err := rows.Scan(&con.Schema, &con.Table, &con.Name, &contype,
			pq.Array(&columns), &con.ReferencedSchema, &con.ReferencedTable,
			pq.Array(&refColumns), &onUpdate, &onDelete, &def,
			&con.NoInherit, &con.Deferrable, &con.InitiallyDeferred, &con.Validated,
			&con.BackingIndex, &con.Comment); err != nil {
			return err
		}
		con.Type = catalog.ConstraintType(contype)
		con.Columns = columns
		switch con.Type {
		case catalog.ConstraintTypeForeignKey:
			con.ReferencedColumns = refColumns
			// NO ACTION is the default and renders as absent.
			if onUpdate != "a" {
				con.OnUpdate = actions[onUpdate]
			}
			if onDelete != "a" {
				con.OnDelete = actions[onDelete]
			}
		case catalog.ConstraintTypeCheck:
			con.CheckClause = def
			con.ReferencedSchema, con.ReferencedTable = "", ""
		case catalog.ConstraintTypeExclusion:
			con.ExclusionDefinition = def
			con.ReferencedSchema, con.ReferencedTable = "", ""
		default:
			con.ReferencedSchema, con.ReferencedTable = "", ""
		}
		if t, ok := cat.Tables[catalog.TableID(con.Schema, con.Table)]; ok {
			t.Constraints[con.Name] = con
		}
	}
	return rows.Err()
}

func (i *Inspector) loadIndexes(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, c.relname, ic.relname, am.amname, ix.indisunique,
		       c.relkind = 'm',
		       COALESCE(pg_get_expr(ix.indpred, ix.indrelid), ''),
		       ic.reloptions, COALESCE(ts.spcname, ''),
		       COALESCE(con.conname, ''),
		       EXISTS (SELECT 1 FROM pg_inherits inh WHERE inh.inhrelid = ic.oid),
		       COALESCE(obj_description(ic.oid, 'pg_class'), '')
		FROM pg_index ix
		JOIN pg_class ic ON ic.oid = ix.indexrelid
		JOIN pg_class c ON c.oid = ix.indrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_am am ON am.oid = ic.relam
		LEFT JOIN pg_tablespace ts ON ts.oid = ic.reltablespace
		LEFT JOIN pg_constraint con ON con.conindid = ic.oid AND con.contype IN ('p', 'u', 'x')
		WHERE c.relkind IN ('r', 'p', 'm') AND ix.indislive
		  AND n.`+userSchemaFilter+relationFilter+`
		ORDER BY n.nspname, ic.relname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		idx := &catalog.Index{}
		var options []string
		if err := rows.Scan(&idx.Schema, &idx.Table, &idx.Name, &idx.Method, &idx.Unique,
			&idx.OnMaterializedView, &idx.Where, pq.Array(&options), &idx.Tablespace,
			&idx.OwnedByConstraint, &idx.IsPartitionChild, &idx.Comment); err != nil {
			return err
		}
		idx.StorageOptions = flatPairs(options)
		cat.Indexes[idx.StableID()] = idx
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return i.loadIndexColumns(ctx, cat)
}

func (i *Inspector) loadIndexColumns(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, ic.relname, k.ord,
		       pg_get_indexdef(ix.indexrelid, k.ord::int, true),
		       COALESCE((SELECT opcname FROM pg_opclass oc
		                 WHERE oc.oid = ix.indclass[k.ord - 1] AND NOT oc.opcdefault), ''),
		       ix.indoption[k.ord - 1],
		       CASE WHEN ix.indcollation[k.ord - 1] <> 0 THEN
		            COALESCE((SELECT collname FROM pg_collation
		                      WHERE oid = ix.indcollation[k.ord - 1] AND collname <> 'default'), '')
		            ELSE '' END
		FROM pg_index ix
		JOIN pg_class ic ON ic.oid = ix.indexrelid
		JOIN pg_class c ON c.oid = ix.indrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		CROSS JOIN LATERAL generate_series(1, ix.indnkeyatts::int) k(ord)
		WHERE c.relkind IN ('r', 'p', 'm') AND ix.indislive
		  AND n.`+userSchemaFilter+relationFilter+`
		ORDER BY n.nspname, ic.relname, k.ord`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var schema, index string
		var ord int
		var col catalog.IndexColumn
		var option int
		if err := rows.Scan(&schema, &index, &ord, &col.Expression,
			&col.OpClass, &option, &col.Collation); err != nil {
			return err
		}
		// indoption bit 0 is DESC, bit 1 is NULLS FIRST. The default nulls
		// placement follows the direction, so only deviations are recorded.
		desc := option&1 != 0
		nullsFirst := option&2 != 0
		if desc {
			col.Direction = "DESC"
			if !nullsFirst {
				col.NullsOrder = "NULLS LAST"
			}
		} else if nullsFirst {
			col.NullsOrder = "NULLS FIRST"
		}
		if idx, ok := cat.Indexes[catalog.IndexID(schema, index)]; ok {
			idx.Columns = append(idx.Columns, col)
		}
	}
	return rows.Err()
}
