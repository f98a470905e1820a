// Package inspect builds catalog snapshots from a live database. One query
// method per object kind; independent queries run concurrently. Only user
// objects are collected: system schemas and extension-owned objects are
// filtered out at the query level.
package inspect

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/pgdelta/pgdelta/internal/catalog"
)

// userSchemaFilter excludes system namespaces. Query fragments interpolate
// it with the namespace alias applied.
const userSchemaFilter = `nspname NOT IN ('pg_catalog', 'information_schema') AND nspname NOT LIKE 'pg\_toast%' AND nspname NOT LIKE 'pg\_temp%'`

// Connect opens a database connection for the given DSN and verifies it.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return db, nil
}

// Inspector reads schema state from one database.
type Inspector struct {
	db *sql.DB
}

// New creates an inspector over an open connection. The inspector does not
// close the connection.
func New(db *sql.DB) *Inspector {
	return &Inspector{db: db}
}

// Snapshot builds a complete catalog snapshot.
//
// Relations load first because column, constraint and index loaders attach
// to them; the remaining loaders each write a distinct catalog map and run
// concurrently.
func (i *Inspector) Snapshot(ctx context.Context) (*catalog.Catalog, error) {
	cat := catalog.New()

	if err := i.loadServerVersion(ctx, cat); err != nil {
		return nil, fmt.Errorf("reading server version: %w", err)
	}
	if err := i.loadRoles(ctx, cat); err != nil {
		return nil, fmt.Errorf("loading roles: %w", err)
	}
	if err := i.loadTables(ctx, cat); err != nil {
		return nil, fmt.Errorf("loading tables: %w", err)
	}
	if err := i.loadForeignTables(ctx, cat); err != nil {
		return nil, fmt.Errorf("loading foreign tables: %w", err)
	}

	loaders := []struct {
		name string
		fn   func(context.Context, *catalog.Catalog) error
	}{
		{"role memberships", i.loadMemberships},
		{"schemas", i.loadSchemas},
		{"extensions", i.loadExtensions},
		{"collations", i.loadCollations},
		{"types", i.loadTypes},
		{"sequences", i.loadSequences},
		{"columns", i.loadColumns},
		{"constraints", i.loadConstraints},
		{"indexes", i.loadIndexes},
		{"views", i.loadViews},
		{"materialized views", i.loadMaterializedViews},
		{"functions", i.loadFunctions},
		{"procedures", i.loadProcedures},
		{"aggregates", i.loadAggregates},
		{"triggers", i.loadTriggers},
		{"rules", i.loadRules},
		{"policies", i.loadPolicies},
		{"event triggers", i.loadEventTriggers},
		{"publications", i.loadPublications},
		{"subscriptions", i.loadSubscriptions},
		{"foreign data wrappers", i.loadForeignDataWrappers},
		{"foreign servers", i.loadForeignServers},
		{"user mappings", i.loadUserMappings},
		{"privileges", i.loadPrivileges},
		{"default privileges", i.loadDefaultPrivileges},
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for _, l := range loaders {
		eg.Go(func() error {
			if err := l.fn(egCtx, cat); err != nil {
				return fmt.Errorf("loading %s: %w", l.name, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if err := i.loadRelationDependencies(ctx, cat); err != nil {
		return nil, fmt.Errorf("loading relation dependencies: %w", err)
	}
	return cat, nil
}

func (i *Inspector) loadServerVersion(ctx context.Context, cat *catalog.Catalog) error {
	var raw string
	if err := i.db.QueryRowContext(ctx, "SHOW server_version_num").Scan(&raw); err != nil {
		return err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("unexpected server_version_num %q: %w", raw, err)
	}
	cat.ServerVersion = n / 10000
	return nil
}

// text returns the string of a nullable column.
func text(v sql.NullString) string {
	if v.Valid {
		return v.String
	}
	return ""
}

// textPtr returns a pointer for a nullable column, nil when NULL.
func textPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// flatPairs splits "key=value" option strings into the flat pair encoding
// catalogs use. A string with no '=' becomes a key with an empty value.
func flatPairs(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	pairs := make([]string, 0, 2*len(raw))
	for _, opt := range raw {
		key, value, _ := strings.Cut(opt, "=")
		pairs = append(pairs, key, value)
	}
	return pairs
}
