package inspect

import (
	"context"

	"github.com/lib/pq"

	"github.com/pgdelta/pgdelta/internal/catalog"
)

// routineFilter excludes extension-owned routines; the alias is p.
const routineFilter = `
	  AND NOT EXISTS (
	    SELECT 1 FROM pg_depend d
	    WHERE d.classid = 'pg_proc'::regclass AND d.objid = p.oid AND d.deptype = 'e')`

func (i *Inspector) loadFunctions(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, p.proname,
		       pg_get_function_identity_arguments(p.oid),
		       pg_get_function_arguments(p.oid),
		       pg_get_userbyid(p.proowner), p.prosrc,
		       pg_get_function_result(p.oid), l.lanname,
		       CASE p.provolatile WHEN 'i' THEN 'IMMUTABLE' WHEN 's' THEN 'STABLE' ELSE 'VOLATILE' END,
		       p.proisstrict, p.prosecdef, p.proleakproof,
		       CASE p.proparallel WHEN 's' THEN 'SAFE' WHEN 'r' THEN 'RESTRICTED' ELSE 'UNSAFE' END,
		       p.proconfig,
		       COALESCE(obj_description(p.oid, 'pg_proc'), '')
		FROM pg_proc p
		JOIN pg_namespace n ON n.oid = p.pronamespace
		JOIN pg_language l ON l.oid = p.prolang
		WHERE p.prokind = 'f' AND n.`+userSchemaFilter+routineFilter+`
		ORDER BY n.nspname, p.proname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		f := &catalog.Function{}
		var config []string
		if err := rows.Scan(&f.Schema, &f.Name, &f.Arguments, &f.Signature,
			&f.Owner, &f.Definition, &f.ReturnType, &f.Language,
			&f.Volatility, &f.Strict, &f.SecurityDefiner, &f.Leakproof,
			&f.Parallel, pq.Array(&config), &f.Comment); err != nil {
			return err
		}
		f.Config = config
		cat.Functions[f.StableID()] = f
	}
	return rows.Err()
}

func (i *Inspector) loadProcedures(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, p.proname,
		       pg_get_function_identity_arguments(p.oid),
		       pg_get_function_arguments(p.oid),
		       pg_get_userbyid(p.proowner), p.prosrc, l.lanname, p.prosecdef,
		       COALESCE(obj_description(p.oid, 'pg_proc'), '')
		FROM pg_proc p
		JOIN pg_namespace n ON n.oid = p.pronamespace
		JOIN pg_language l ON l.oid = p.prolang
		WHERE p.prokind = 'p' AND n.`+userSchemaFilter+routineFilter+`
		ORDER BY n.nspname, p.proname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		p := &catalog.Procedure{}
		if err := rows.Scan(&p.Schema, &p.Name, &p.Arguments, &p.Signature,
			&p.Owner, &p.Definition, &p.Language, &p.SecurityDefiner,
			&p.Comment); err != nil {
			return err
		}
		cat.Procedures[p.StableID()] = p
	}
	return rows.Err()
}

func (i *Inspector) loadAggregates(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, p.proname,
		       pg_get_function_identity_arguments(p.oid),
		       pg_get_userbyid(p.proowner),
		       a.aggtransfn::regproc::text,
		       format_type(a.aggtranstype, NULL),
		       CASE WHEN a.aggfinalfn <> 0 THEN a.aggfinalfn::regproc::text ELSE '' END,
		       COALESCE(a.agginitval, ''),
		       COALESCE(obj_description(p.oid, 'pg_proc'), '')
		FROM pg_proc p
		JOIN pg_aggregate a ON a.aggfnoid = p.oid
		JOIN pg_namespace n ON n.oid = p.pronamespace
		WHERE p.prokind = 'a' AND n.`+userSchemaFilter+routineFilter+`
		ORDER BY n.nspname, p.proname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		a := &catalog.Aggregate{}
		if err := rows.Scan(&a.Schema, &a.Name, &a.Arguments, &a.Owner,
			&a.TransitionFunc, &a.StateType, &a.FinalFunc, &a.InitialCondition,
			&a.Comment); err != nil {
			return err
		}
		cat.Aggregates[a.StableID()] = a
	}
	return rows.Err()
}
