package inspect

import (
	"context"
	"database/sql"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
)

// granteeExpr renders an aclexplode grantee; oid 0 is PUBLIC.
const granteeExpr = `CASE WHEN acl.grantee = 0 THEN 'public' ELSE pg_get_userbyid(acl.grantee) END`

// addGrant accumulates one aclexplode row into the privilege map.
func addGrant(cat *catalog.Catalog, objectID string, objectType catalog.PrivilegeObjectType, objectName, grantee, privilege string, grantable bool) {
	id := catalog.ACLID(objectID, grantee)
	p, ok := cat.Privileges[id]
	if !ok {
		p = &catalog.Privilege{
			ObjectID:   objectID,
			ObjectType: objectType,
			ObjectName: objectName,
			Grantee:    grantee,
		}
		cat.Privileges[id] = p
	}
	p.Grants = append(p.Grants, catalog.PrivilegeGrant{Name: privilege, Grantable: grantable})
}

func (i *Inspector) loadPrivileges(ctx context.Context, cat *catalog.Catalog) error {
	if err := i.loadRelationPrivileges(ctx, cat); err != nil {
		return err
	}
	if err := i.loadSchemaPrivileges(ctx, cat); err != nil {
		return err
	}
	if err := i.loadRoutinePrivileges(ctx, cat); err != nil {
		return err
	}
	if err := i.loadTypePrivileges(ctx, cat); err != nil {
		return err
	}
	return i.loadForeignPrivileges(ctx, cat)
}

func (i *Inspector) loadRelationPrivileges(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, c.relname, c.relkind, `+granteeExpr+`,
		       acl.privilege_type, acl.is_grantable
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		CROSS JOIN LATERAL aclexplode(c.relacl) acl
		WHERE c.relkind IN ('r', 'p', 'v', 'm', 'f', 'S') AND c.relacl IS NOT NULL
		  AND n.`+userSchemaFilter+relationFilter+`
		ORDER BY n.nspname, c.relname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var schema, name, relkind, grantee, privilege string
		var grantable bool
		if err := rows.Scan(&schema, &name, &relkind, &grantee, &privilege, &grantable); err != nil {
			return err
		}
		objectType := catalog.PrivilegeObjectTable
		var objectID string
		switch relkind {
		case "S":
			objectType = catalog.PrivilegeObjectSequence
			objectID = catalog.SequenceID(schema, name)
		case "v":
			objectID = catalog.ViewID(schema, name)
		case "m":
			objectID = catalog.MaterializedViewID(schema, name)
		case "f":
			objectID = catalog.ForeignTableID(schema, name)
		default:
			objectID = catalog.TableID(schema, name)
		}
		addGrant(cat, objectID, objectType, change.Qualified(schema, name), grantee, privilege, grantable)
	}
	return rows.Err()
}

func (i *Inspector) loadSchemaPrivileges(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, `+granteeExpr+`, acl.privilege_type, acl.is_grantable
		FROM pg_namespace n
		CROSS JOIN LATERAL aclexplode(n.nspacl) acl
		WHERE n.nspacl IS NOT NULL AND n.`+userSchemaFilter+`
		ORDER BY n.nspname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, grantee, privilege string
		var grantable bool
		if err := rows.Scan(&name, &grantee, &privilege, &grantable); err != nil {
			return err
		}
		addGrant(cat, catalog.SchemaID(name), catalog.PrivilegeObjectSchema, change.Ident(name), grantee, privilege, grantable)
	}
	return rows.Err()
}

func (i *Inspector) loadRoutinePrivileges(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, p.proname, p.prokind,
		       pg_get_function_identity_arguments(p.oid),
		       `+granteeExpr+`, acl.privilege_type, acl.is_grantable
		FROM pg_proc p
		JOIN pg_namespace n ON n.oid = p.pronamespace
		CROSS JOIN LATERAL aclexplode(p.proacl) acl
		WHERE p.proacl IS NOT NULL AND p.prokind IN ('f', 'p')
		  AND n.`+userSchemaFilter+routineFilter+`
		ORDER BY n.nspname, p.proname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var schema, name, prokind, args, grantee, privilege string
		var grantable bool
		if err := rows.Scan(&schema, &name, &prokind, &args, &grantee, &privilege, &grantable); err != nil {
			return err
		}
		objectID := catalog.FunctionID(schema, name, args)
		if prokind == "p" {
			objectID = catalog.ProcedureID(schema, name, args)
		}
		objectName := change.Qualified(schema, name) + "(" + args + ")"
		addGrant(cat, objectID, catalog.PrivilegeObjectFunction, objectName, grantee, privilege, grantable)
	}
	return rows.Err()
}

func (i *Inspector) loadTypePrivileges(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT n.nspname, t.typname, `+granteeExpr+`, acl.privilege_type, acl.is_grantable
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace
		CROSS JOIN LATERAL aclexplode(t.typacl) acl
		WHERE t.typacl IS NOT NULL AND t.typtype IN ('e', 'c', 'd', 'r')
		  AND n.`+userSchemaFilter+typeFilter+`
		ORDER BY n.nspname, t.typname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var schema, name, grantee, privilege string
		var grantable bool
		if err := rows.Scan(&schema, &name, &grantee, &privilege, &grantable); err != nil {
			return err
		}
		addGrant(cat, catalog.TypeID(schema, name), catalog.PrivilegeObjectType_, change.Qualified(schema, name), grantee, privilege, grantable)
	}
	return rows.Err()
}

func (i *Inspector) loadForeignPrivileges(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT w.fdwname, 'W', `+granteeExpr+`, acl.privilege_type, acl.is_grantable
		FROM pg_foreign_data_wrapper w
		CROSS JOIN LATERAL aclexplode(w.fdwacl) acl
		WHERE w.fdwacl IS NOT NULL
		UNION ALL
		SELECT s.srvname, 'S', `+granteeExpr+`, acl.privilege_type, acl.is_grantable
		FROM pg_foreign_server s
		CROSS JOIN LATERAL aclexplode(s.srvacl) acl
		WHERE s.srvacl IS NOT NULL
		ORDER BY 1`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, class, grantee, privilege string
		var grantable bool
		if err := rows.Scan(&name, &class, &grantee, &privilege, &grantable); err != nil {
			return err
		}
		if class == "W" {
			addGrant(cat, catalog.ForeignDataWrapperID(name), catalog.PrivilegeObjectFDW, change.Ident(name), grantee, privilege, grantable)
			continue
		}
		addGrant(cat, catalog.ForeignServerID(name), catalog.PrivilegeObjectServer, change.Ident(name), grantee, privilege, grantable)
	}
	return rows.Err()
}

func (i *Inspector) loadDefaultPrivileges(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT pg_get_userbyid(da.defaclrole),
		       CASE da.defaclobjtype WHEN 'r' THEN 'TABLES' WHEN 'S' THEN 'SEQUENCES'
		            WHEN 'f' THEN 'FUNCTIONS' WHEN 'T' THEN 'TYPES' WHEN 'n' THEN 'SCHEMAS' END,
		       COALESCE(n.nspname, ''),
		       `+granteeExpr+`, acl.privilege_type, acl.is_grantable
		FROM pg_default_acl da
		LEFT JOIN pg_namespace n ON n.oid = da.defaclnamespace
		CROSS JOIN LATERAL aclexplode(da.defaclacl) acl
		ORDER BY 1, 2, 3`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var role, grantee, privilege string
		var objectType, schema sql.NullString
		var grantable bool
		if err := rows.Scan(&role, &objectType, &schema, &grantee, &privilege, &grantable); err != nil {
			return err
		}
		if !objectType.Valid {
			continue
		}
		id := catalog.DefaultACLID(role, objectType.String, schema.String, grantee)
		d, ok := cat.DefaultPrivileges[id]
		if !ok {
			d = &catalog.DefaultPrivilege{
				Role:       role,
				ObjectType: objectType.String,
				Schema:     schema.String,
				Grantee:    grantee,
			}
			cat.DefaultPrivileges[id] = d
		}
		d.Grants = append(d.Grants, catalog.PrivilegeGrant{Name: privilege, Grantable: grantable})
	}
	return rows.Err()
}
