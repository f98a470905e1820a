package inspect

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/pgdelta/pgdelta/internal/catalog"
)

func (i *Inspector) loadSchemas(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, pg_get_userbyid(n.nspowner),
		       COALESCE(obj_description(n.oid, 'pg_namespace'), '')
		FROM pg_namespace n
		WHERE n.`+userSchemaFilter+`
		  AND NOT EXISTS (
		    SELECT 1 FROM pg_depend d
		    WHERE d.classid = 'pg_namespace'::regclass AND d.objid = n.oid AND d.deptype = 'e')
		ORDER BY n.nspname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		s := &catalog.Schema{}
		if err := rows.Scan(&s.Name, &s.Owner, &s.Comment); err != nil {
			return err
		}
		cat.Schemas[s.StableID()] = s
	}
	return rows.Err()
}

func (i *Inspector) loadExtensions(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT e.extname, n.nspname, e.extversion,
		       COALESCE(obj_description(e.oid, 'pg_extension'), '')
		FROM pg_extension e
		JOIN pg_namespace n ON n.oid = e.extnamespace
		WHERE e.extname <> 'plpgsql'
		ORDER BY e.extname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		e := &catalog.Extension{}
		if err := rows.Scan(&e.Name, &e.Schema, &e.Version, &e.Comment); err != nil {
			return err
		}
		cat.Extensions[e.StableID()] = e
	}
	return rows.Err()
}

func (i *Inspector) loadCollations(ctx context.Context, cat *catalog.Catalog) error {
	// The ICU locale column moved across releases: colliculocale appeared
	// in 15 and became colllocale in 17.
	locale := "c.collcollate"
	switch {
	case cat.ServerVersion >= 17:
		locale = "COALESCE(c.colllocale, c.collcollate)"
	case cat.ServerVersion >= 15:
		locale = "COALESCE(c.colliculocale, c.collcollate)"
	}
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, c.collname, c.collprovider, COALESCE(`+locale+`, ''),
		       c.collisdeterministic, pg_get_userbyid(c.collowner),
		       COALESCE(obj_description(c.oid, 'pg_collation'), '')
		FROM pg_collation c
		JOIN pg_namespace n ON n.oid = c.collnamespace
		WHERE n.`+userSchemaFilter+`
		  AND NOT EXISTS (
		    SELECT 1 FROM pg_depend d
		    WHERE d.classid = 'pg_collation'::regclass AND d.objid = c.oid AND d.deptype = 'e')
		ORDER BY n.nspname, c.collname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	providers := map[string]string{"i": "icu", "c": "libc", "b": "builtin"}
	for rows.Next() {
		c := &catalog.Collation{}
		var provider string
		if err := rows.Scan(&c.Schema, &c.Name, &provider, &c.Locale,
			&c.Deterministic, &c.Owner, &c.Comment); err != nil {
			return err
		}
		c.Provider = providers[provider]
		cat.Collations[c.StableID()] = c
	}
	return rows.Err()
}

// typeFilter matches user-defined types that are not table row types and
// not owned by an extension.
const typeFilter = `
	  AND NOT EXISTS (
	    SELECT 1 FROM pg_depend d
	    WHERE d.classid = 'pg_type'::regclass AND d.objid = t.oid AND d.deptype = 'e')`

func (i *Inspector) loadTypes(ctx context.Context, cat *catalog.Catalog) error {
	if err := i.loadEnumTypes(ctx, cat); err != nil {
		return err
	}
	if err := i.loadCompositeTypes(ctx, cat); err != nil {
		return err
	}
	if err := i.loadDomainTypes(ctx, cat); err != nil {
		return err
	}
	return i.loadRangeTypes(ctx, cat)
}

func (i *Inspector) loadEnumTypes(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, t.typname, pg_get_userbyid(t.typowner),
		       ARRAY(SELECT e.enumlabel FROM pg_enum e WHERE e.enumtypid = t.oid ORDER BY e.enumsortorder),
		       COALESCE(obj_description(t.oid, 'pg_type'), '')
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE t.typtype = 'e' AND n.`+userSchemaFilter+typeFilter+`
		ORDER BY n.nspname, t.typname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		t := &catalog.Type{Kind: catalog.TypeKindEnum}
		var values []string
		if err := rows.Scan(&t.Schema, &t.Name, &t.Owner, pq.Array(&values), &t.Comment); err != nil {
			return err
		}
		t.EnumValues = values
		cat.Types[t.StableID()] = t
	}
	return rows.Err()
}

func (i *Inspector) loadCompositeTypes(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, t.typname, a.attname,
		       format_type(a.atttypid, a.atttypmod),
		       CASE WHEN a.attcollation <> at.typcollation
		            THEN (SELECT collname FROM pg_collation WHERE oid = a.attcollation)
		            ELSE '' END,
		       pg_get_userbyid(t.typowner),
		       COALESCE(obj_description(t.oid, 'pg_type'), '')
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace
		JOIN pg_class c ON c.oid = t.typrelid AND c.relkind = 'c'
		JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum > 0 AND NOT a.attisdropped
		JOIN pg_type at ON at.oid = a.atttypid
		WHERE t.typtype = 'c' AND n.`+userSchemaFilter+typeFilter+`
		ORDER BY n.nspname, t.typname, a.attnum`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var schema, name, owner, comment string
		var attr catalog.TypeAttribute
		if err := rows.Scan(&schema, &name, &attr.Name, &attr.DataType, &attr.Collation,
			&owner, &comment); err != nil {
			return err
		}
		id := catalog.TypeID(schema, name)
		t, ok := cat.Types[id]
		if !ok {
			t = &catalog.Type{Schema: schema, Name: name, Kind: catalog.TypeKindComposite, Owner: owner, Comment: comment}
			cat.Types[id] = t
		}
		t.Attributes = append(t.Attributes, attr)
	}
	return rows.Err()
}

func (i *Inspector) loadDomainTypes(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, t.typname, format_type(t.typbasetype, t.typtypmod),
		       t.typnotnull, COALESCE(t.typdefault, ''), pg_get_userbyid(t.typowner),
		       COALESCE(obj_description(t.oid, 'pg_type'), '')
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE t.typtype = 'd' AND n.`+userSchemaFilter+typeFilter+`
		ORDER BY n.nspname, t.typname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		t := &catalog.Type{Kind: catalog.TypeKindDomain}
		if err := rows.Scan(&t.Schema, &t.Name, &t.BaseType, &t.NotNull, &t.Default,
			&t.Owner, &t.Comment); err != nil {
			return err
		}
		cat.Types[t.StableID()] = t
	}
	if err := rows.Err(); err != nil {
		return err
	}

	conRows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, t.typname, c.conname, pg_get_constraintdef(c.oid)
		FROM pg_constraint c
		JOIN pg_type t ON t.oid = c.contypid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE c.contype = 'c' AND n.`+userSchemaFilter+`
		ORDER BY n.nspname, t.typname, c.conname`)
	if err != nil {
		return err
	}
	defer conRows.Close()

	for conRows.Next() {
		var schema, name string
		var con catalog.DomainConstraint
		if err := conRows.Scan(&schema, &name, &con.Name, &con.Check); err != nil {
			return err
		}
		if t, ok := cat.Types[catalog.TypeID(schema, name)]; ok {
			t.Constraints = append(t.Constraints, con)
		}
	}
	return conRows.Err()
}

func (i *Inspector) loadRangeTypes(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, t.typname, format_type(r.rngsubtype, NULL),
		       COALESCE((SELECT opcname FROM pg_opclass WHERE oid = r.rngsubopc AND NOT opcdefault), ''),
		       COALESCE((SELECT collname FROM pg_collation WHERE oid = r.rngcollation), ''),
		       pg_get_userbyid(t.typowner),
		       COALESCE(obj_description(t.oid, 'pg_type'), '')
		FROM pg_type t
		JOIN pg_range r ON r.rngtypid = t.oid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE t.typtype = 'r' AND n.`+userSchemaFilter+typeFilter+`
		ORDER BY n.nspname, t.typname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		t := &catalog.Type{Kind: catalog.TypeKindRange}
		if err := rows.Scan(&t.Schema, &t.Name, &t.Subtype, &t.SubtypeOpClass,
			&t.RangeCollation, &t.Owner, &t.Comment); err != nil {
			return err
		}
		cat.Types[t.StableID()] = t
	}
	return rows.Err()
}

func (i *Inspector) loadSequences(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, c.relname, pg_get_userbyid(c.relowner),
		       format_type(s.seqtypid, NULL), s.seqstart, s.seqincrement,
		       s.seqmin, s.seqmax, s.seqcache, s.seqcycle,
		       COALESCE(ot.relname, ''), COALESCE(oa.attname, ''),
		       COALESCE(obj_description(c.oid, 'pg_class'), '')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_sequence s ON s.seqrelid = c.oid
		LEFT JOIN pg_depend dep ON dep.classid = 'pg_class'::regclass AND dep.objid = c.oid
		     AND dep.refclassid = 'pg_class'::regclass AND dep.deptype IN ('a', 'i')
		LEFT JOIN pg_class ot ON ot.oid = dep.refobjid
		LEFT JOIN pg_attribute oa ON oa.attrelid = dep.refobjid AND oa.attnum = dep.refobjsubid
		WHERE c.relkind = 'S' AND n.`+userSchemaFilter+`
		  AND NOT EXISTS (
		    SELECT 1 FROM pg_depend d
		    WHERE d.classid = 'pg_class'::regclass AND d.objid = c.oid AND d.deptype = 'e')
		ORDER BY n.nspname, c.relname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		s := &catalog.Sequence{}
		var min, max sql.NullInt64
		if err := rows.Scan(&s.Schema, &s.Name, &s.Owner, &s.DataType, &s.Start,
			&s.Increment, &min, &max, &s.Cache, &s.Cycle,
			&s.OwnedByTable, &s.OwnedByColumn, &s.Comment); err != nil {
			return err
		}
		// Bounds matching the data type's natural range read as unset.
		if min.Valid && !defaultSequenceBound(s.DataType, s.Increment, min.Int64, true) {
			s.MinValue = &min.Int64
		}
		if max.Valid && !defaultSequenceBound(s.DataType, s.Increment, max.Int64, false) {
			s.MaxValue = &max.Int64
		}
		cat.Sequences[s.StableID()] = s
	}
	return rows.Err()
}

func defaultSequenceBound(dataType string, increment, bound int64, min bool) bool {
	var lo, hi int64
	switch dataType {
	case "smallint":
		lo, hi = -32768, 32767
	case "integer":
		lo, hi = -2147483648, 2147483647
	default:
		lo, hi = -9223372036854775808, 9223372036854775807
	}
	if min {
		if increment > 0 {
			return bound == 1
		}
		return bound == lo
	}
	if increment > 0 {
		return bound == hi
	}
	return bound == -1
}
