package inspect

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/pgdelta/pgdelta/internal/catalog"
)

func (i *Inspector) loadRoles(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT r.rolname, r.rolsuper, r.rolcreatedb, r.rolcreaterole, r.rolinherit,
		       r.rolcanlogin, r.rolreplication, r.rolbypassrls, r.rolconnlimit,
		       COALESCE(r.rolvaliduntil::text, ''), r.rolconfig,
		       COALESCE(shobj_description(r.oid, 'pg_authid'), '')
		FROM pg_roles r
		WHERE r.rolname NOT LIKE 'pg\_%'
		ORDER BY r.rolname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		r := &catalog.Role{}
		var config []string
		if err := rows.Scan(&r.Name, &r.Superuser, &r.CreateDB, &r.CreateRole, &r.Inherit,
			&r.Login, &r.Replication, &r.BypassRLS, &r.ConnectionLimit,
			&r.ValidUntil, pq.Array(&config), &r.Comment); err != nil {
			return err
		}
		r.Config = config
		cat.Roles[r.StableID()] = r
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// Password hashes live in pg_authid, which only superusers can read.
	// They are best-effort: without access the snapshot simply carries no
	// hashes, and masking hooks have nothing to hide.
	pwRows, err := i.db.QueryContext(ctx, `
		SELECT rolname, rolpassword
		FROM pg_authid
		WHERE rolpassword IS NOT NULL AND rolname NOT LIKE 'pg\_%'`)
	if err != nil {
		return nil
	}
	defer pwRows.Close()
	for pwRows.Next() {
		var name, password string
		if err := pwRows.Scan(&name, &password); err != nil {
			return err
		}
		if r, ok := cat.Roles[catalog.RoleID(name)]; ok {
			r.Password = password
		}
	}
	return pwRows.Err()
}

func (i *Inspector) loadMemberships(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT r.rolname, m.rolname, am.admin_option
		FROM pg_auth_members am
		JOIN pg_roles r ON r.oid = am.roleid
		JOIN pg_roles m ON m.oid = am.member
		WHERE r.rolname NOT LIKE 'pg\_%' AND m.rolname NOT LIKE 'pg\_%'
		ORDER BY r.rolname, m.rolname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		m := &catalog.RoleMembership{}
		if err := rows.Scan(&m.Role, &m.Member, &m.Admin); err != nil {
			return err
		}
		cat.Memberships[m.StableID()] = m
	}
	return rows.Err()
}

func (i *Inspector) loadEventTriggers(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT e.evtname, e.evtevent, n.nspname, p.proname, e.evttags,
		       e.evtenabled, pg_get_userbyid(e.evtowner),
		       COALESCE(obj_description(e.oid, 'pg_event_trigger'), '')
		FROM pg_event_trigger e
		JOIN pg_proc p ON p.oid = e.evtfoid
		JOIN pg_namespace n ON n.oid = p.pronamespace
		ORDER BY e.evtname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		e := &catalog.EventTrigger{}
		var fnSchema, fnName string
		var tags []sql.NullString
		if err := rows.Scan(&e.Name, &e.Event, &fnSchema, &fnName, pq.Array(&tags),
			&e.Enabled, &e.Owner, &e.Comment); err != nil {
			return err
		}
		e.Function = fmt.Sprintf("%s.%s()", fnSchema, fnName)
		for _, t := range tags {
			if t.Valid {
				e.Tags = append(e.Tags, t.String)
			}
		}
		cat.EventTriggers[e.StableID()] = e
	}
	return rows.Err()
}
