package inspect

import (
	"context"

	"github.com/lib/pq"

	"github.com/pgdelta/pgdelta/internal/catalog"
)

func (i *Inspector) loadPublications(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT p.pubname, pg_get_userbyid(p.pubowner), p.puballtables,
		       p.pubinsert, p.pubupdate, p.pubdelete, p.pubtruncate, p.pubviaroot,
		       ARRAY(SELECT pt.schemaname || '.' || pt.tablename
		             FROM pg_publication_tables pt
		             WHERE pt.pubname = p.pubname
		             ORDER BY pt.schemaname, pt.tablename),
		       COALESCE(obj_description(p.oid, 'pg_publication'), '')
		FROM pg_publication p
		ORDER BY p.pubname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		p := &catalog.Publication{}
		var insert, update, del, truncate bool
		var tables []string
		if err := rows.Scan(&p.Name, &p.Owner, &p.AllTables,
			&insert, &update, &del, &truncate, &p.ViaRoot,
			pq.Array(&tables), &p.Comment); err != nil {
			return err
		}
		if !p.AllTables {
			p.Tables = tables
		}
		if insert {
			p.Operations = append(p.Operations, "insert")
		}
		if update {
			p.Operations = append(p.Operations, "update")
		}
		if del {
			p.Operations = append(p.Operations, "delete")
		}
		if truncate {
			p.Operations = append(p.Operations, "truncate")
		}
		cat.Publications[p.StableID()] = p
	}
	return rows.Err()
}

func (i *Inspector) loadSubscriptions(ctx context.Context, cat *catalog.Catalog) error {
	// pg_subscription is cluster-wide and readable only with elevated
	// privileges; a permission error just leaves subscriptions out of the
	// snapshot.
	rows, err := i.db.QueryContext(ctx, `
		SELECT s.subname, pg_get_userbyid(s.subowner), s.subconninfo,
		       s.subpublications, s.subenabled, COALESCE(s.subslotname, ''),
		       COALESCE(obj_description(s.oid, 'pg_subscription'), '')
		FROM pg_subscription s
		WHERE s.subdbid = (SELECT oid FROM pg_database WHERE datname = current_database())
		ORDER BY s.subname`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	for rows.Next() {
		s := &catalog.Subscription{}
		var publications []string
		if err := rows.Scan(&s.Name, &s.Owner, &s.Connection,
			pq.Array(&publications), &s.Enabled, &s.SlotName, &s.Comment); err != nil {
			return err
		}
		s.Publications = publications
		cat.Subscriptions[s.StableID()] = s
	}
	return rows.Err()
}
