package inspect

import (
	"context"

	"github.com/lib/pq"

	"github.com/pgdelta/pgdelta/internal/catalog"
)

func (i *Inspector) loadForeignDataWrappers(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT w.fdwname, pg_get_userbyid(w.fdwowner),
		       CASE WHEN w.fdwhandler <> 0 THEN w.fdwhandler::regproc::text ELSE '' END,
		       CASE WHEN w.fdwvalidator <> 0 THEN w.fdwvalidator::regproc::text ELSE '' END,
		       w.fdwoptions,
		       COALESCE(obj_description(w.oid, 'pg_foreign_data_wrapper'), '')
		FROM pg_foreign_data_wrapper w
		WHERE NOT EXISTS (
		    SELECT 1 FROM pg_depend d
		    WHERE d.classid = 'pg_foreign_data_wrapper'::regclass AND d.objid = w.oid AND d.deptype = 'e')
		ORDER BY w.fdwname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		w := &catalog.ForeignDataWrapper{}
		var options []string
		if err := rows.Scan(&w.Name, &w.Owner, &w.Handler, &w.Validator,
			pq.Array(&options), &w.Comment); err != nil {
			return err
		}
		w.Options = flatPairs(options)
		cat.ForeignDataWrappers[w.StableID()] = w
	}
	return rows.Err()
}

func (i *Inspector) loadForeignServers(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT s.srvname, pg_get_userbyid(s.srvowner), w.fdwname,
		       COALESCE(s.srvtype, ''), COALESCE(s.srvversion, ''), s.srvoptions,
		       COALESCE(obj_description(s.oid, 'pg_foreign_server'), '')
		FROM pg_foreign_server s
		JOIN pg_foreign_data_wrapper w ON w.oid = s.srvfdw
		ORDER BY s.srvname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		s := &catalog.ForeignServer{}
		var options []string
		if err := rows.Scan(&s.Name, &s.Owner, &s.Wrapper, &s.Type, &s.Version,
			pq.Array(&options), &s.Comment); err != nil {
			return err
		}
		s.Options = flatPairs(options)
		cat.ForeignServers[s.StableID()] = s
	}
	return rows.Err()
}

func (i *Inspector) loadUserMappings(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT s.srvname,
		       CASE WHEN um.umuser = 0 THEN 'public' ELSE pg_get_userbyid(um.umuser) END,
		       um.umoptions
		FROM pg_user_mapping um
		JOIN pg_foreign_server s ON s.oid = um.umserver
		ORDER BY s.srvname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		m := &catalog.UserMapping{}
		var options []string
		if err := rows.Scan(&m.Server, &m.Role, pq.Array(&options)); err != nil {
			return err
		}
		m.Options = flatPairs(options)
		cat.UserMappings[m.StableID()] = m
	}
	return rows.Err()
}
