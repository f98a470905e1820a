package inspect

import (
	"context"
	"strings"

	"github.com/lib/pq"

	"github.com/pgdelta/pgdelta/internal/catalog"
)

func (i *Inspector) loadViews(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, c.relname, pg_get_userbyid(c.relowner),
		       pg_get_viewdef(c.oid), c.reloptions,
		       COALESCE(obj_description(c.oid, 'pg_class'), '')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind = 'v' AND n.`+userSchemaFilter+relationFilter+`
		ORDER BY n.nspname, c.relname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		v := &catalog.View{}
		var options []string
		if err := rows.Scan(&v.Schema, &v.Name, &v.Owner, &v.Definition,
			pq.Array(&options), &v.Comment); err != nil {
			return err
		}
		v.Definition = strings.TrimSuffix(strings.TrimSpace(v.Definition), ";")
		v.CheckOption, v.Options = splitCheckOption(options)
		cat.Views[v.StableID()] = v
	}
	return rows.Err()
}

// splitCheckOption pulls the check_option reloption out of a view's option
// list; it renders as WITH CHECK OPTION, not as a storage parameter.
func splitCheckOption(raw []string) (string, []string) {
	var checkOption string
	var rest []string
	for _, opt := range raw {
		key, value, _ := strings.Cut(opt, "=")
		if key == "check_option" {
			checkOption = strings.ToUpper(value)
			continue
		}
		rest = append(rest, opt)
	}
	return checkOption, flatPairs(rest)
}

func (i *Inspector) loadMaterializedViews(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, c.relname, pg_get_userbyid(c.relowner),
		       pg_get_viewdef(c.oid), c.reloptions, COALESCE(ts.spcname, ''),
		       COALESCE(obj_description(c.oid, 'pg_class'), '')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN pg_tablespace ts ON ts.oid = c.reltablespace
		WHERE c.relkind = 'm' AND n.`+userSchemaFilter+relationFilter+`
		ORDER BY n.nspname, c.relname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		v := &catalog.MaterializedView{}
		var options []string
		if err := rows.Scan(&v.Schema, &v.Name, &v.Owner, &v.Definition,
			pq.Array(&options), &v.Tablespace, &v.Comment); err != nil {
			return err
		}
		v.Definition = strings.TrimSuffix(strings.TrimSpace(v.Definition), ";")
		v.StorageOptions = flatPairs(options)
		cat.MaterializedViews[v.StableID()] = v
	}
	return rows.Err()
}

func (i *Inspector) loadTriggers(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, c.relname, t.tgname, t.tgtype,
		       pg_get_triggerdef(t.oid),
		       COALESCE(pg_get_expr(t.tgqual, t.tgrelid), ''),
		       t.tgconstraint <> 0, t.tgdeferrable, t.tginitdeferred,
		       COALESCE(obj_description(t.oid, 'pg_trigger'), '')
		FROM pg_trigger t
		JOIN pg_class c ON c.oid = t.tgrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE NOT t.tgisinternal AND n.`+userSchemaFilter+relationFilter+`
		ORDER BY n.nspname, c.relname, t.tgname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		t := &catalog.Trigger{}
		var tgtype int
		var def string
		if err := rows.Scan(&t.Schema, &t.Table, &t.Name, &tgtype, &def,
			&t.Condition, &t.Constraint, &t.Deferrable, &t.InitiallyDeferred,
			&t.Comment); err != nil {
			return err
		}
		t.Timing, t.Events, t.Level = decodeTriggerType(tgtype)
		t.Function = triggerFunctionCall(def)
		cat.Triggers[t.StableID()] = t
	}
	return rows.Err()
}

// decodeTriggerType unpacks pg_trigger.tgtype bits.
func decodeTriggerType(tgtype int) (timing string, events []string, level string) {
	level = "STATEMENT"
	if tgtype&1 != 0 {
		level = "ROW"
	}
	switch {
	case tgtype&64 != 0:
		timing = "INSTEAD OF"
	case tgtype&2 != 0:
		timing = "BEFORE"
	default:
		timing = "AFTER"
	}
	if tgtype&4 != 0 {
		events = append(events, "INSERT")
	}
	if tgtype&8 != 0 {
		events = append(events, "DELETE")
	}
	if tgtype&16 != 0 {
		events = append(events, "UPDATE")
	}
	if tgtype&32 != 0 {
		events = append(events, "TRUNCATE")
	}
	return timing, events, level
}

// triggerFunctionCall extracts the function call from a deparsed trigger
// definition; arguments stored in tgargs only surface there.
func triggerFunctionCall(def string) string {
	for _, marker := range []string{" EXECUTE FUNCTION ", " EXECUTE PROCEDURE "} {
		if _, call, ok := strings.Cut(def, marker); ok {
			return call
		}
	}
	return ""
}

func (i *Inspector) loadRules(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, c.relname, r.rulename, pg_get_ruledef(r.oid),
		       COALESCE(obj_description(r.oid, 'pg_rewrite'), '')
		FROM pg_rewrite r
		JOIN pg_class c ON c.oid = r.ev_class
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE r.rulename <> '_RETURN' AND n.`+userSchemaFilter+relationFilter+`
		ORDER BY n.nspname, c.relname, r.rulename`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		r := &catalog.Rule{}
		if err := rows.Scan(&r.Schema, &r.Table, &r.Name, &r.Definition, &r.Comment); err != nil {
			return err
		}
		r.Definition = strings.TrimSuffix(strings.TrimSpace(r.Definition), ";")
		cat.Rules[r.StableID()] = r
	}
	return rows.Err()
}

func (i *Inspector) loadPolicies(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, c.relname, p.polname,
		       CASE p.polcmd WHEN 'r' THEN 'SELECT' WHEN 'a' THEN 'INSERT'
		            WHEN 'w' THEN 'UPDATE' WHEN 'd' THEN 'DELETE' ELSE 'ALL' END,
		       p.polpermissive,
		       ARRAY(SELECT rolname FROM pg_roles WHERE oid = ANY(p.polroles) ORDER BY rolname),
		       COALESCE(pg_get_expr(p.polqual, p.polrelid), ''),
		       COALESCE(pg_get_expr(p.polwithcheck, p.polrelid), ''),
		       COALESCE(obj_description(p.oid, 'pg_policy'), '')
		FROM pg_policy p
		JOIN pg_class c ON c.oid = p.polrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.`+userSchemaFilter+relationFilter+`
		ORDER BY n.nspname, c.relname, p.polname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		p := &catalog.Policy{}
		var roles []string
		if err := rows.Scan(&p.Schema, &p.Table, &p.Name, &p.Command, &p.Permissive,
			pq.Array(&roles), &p.Using, &p.WithCheck, &p.Comment); err != nil {
			return err
		}
		// polroles = {0} means PUBLIC, which the catalog encodes as an
		// empty role list.
		p.Roles = roles
		cat.Policies[p.StableID()] = p
	}
	return rows.Err()
}
