// Package pgdelta computes the DDL script that transforms one PostgreSQL
// database's schema state into another's. Two catalog snapshots go in, one
// deterministically ordered SQL script comes out; the diff core performs no
// I/O of its own.
package pgdelta

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
	"github.com/pgdelta/pgdelta/internal/diff"
	"github.com/pgdelta/pgdelta/internal/inspect"
	"github.com/pgdelta/pgdelta/internal/plan"
	"github.com/pgdelta/pgdelta/internal/render"
)

// Snapshot connects to a database and builds its catalog snapshot.
func Snapshot(ctx context.Context, dsn string) (*catalog.Catalog, error) {
	db, err := inspect.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return inspect.New(db).Snapshot(ctx)
}

// Diff computes the changes that transform the main snapshot into the
// branch snapshot.
func Diff(main, branch *catalog.Catalog) []change.Change {
	return diff.Diff(main, branch)
}

// NewPlan orders changes into an executable plan.
func NewPlan(changes []change.Change) (*plan.Plan, error) {
	return plan.New(changes)
}

// PlanDatabases snapshots both databases, diffs them, and returns the
// ordered plan. The two snapshots load concurrently.
func PlanDatabases(ctx context.Context, mainDSN, branchDSN string) (*plan.Plan, error) {
	var mainCat, branchCat *catalog.Catalog
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		if mainCat, err = Snapshot(egCtx, mainDSN); err != nil {
			return fmt.Errorf("snapshotting main: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		if branchCat, err = Snapshot(egCtx, branchDSN); err != nil {
			return fmt.Errorf("snapshotting branch: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return plan.New(diff.Diff(mainCat, branchCat))
}

// SecretPlaceholder replaces masked credentials in rendered DDL.
const SecretPlaceholder = "********"

// MaskSecrets returns hooks that mask credentials embedded in DDL: role
// password hashes, subscription connection strings, and password-bearing
// options on foreign servers and user mappings. Catalogs are never mutated;
// masking re-renders a copy.
func MaskSecrets() *plan.Hooks {
	return &plan.Hooks{Serializer: maskSecret}
}

func maskSecret(ch change.Change, opts render.Options) (string, bool, error) {
	switch c := ch.(type) {
	case *change.CreateRole:
		if c.Role.Password == "" {
			return "", false, nil
		}
		role := *c.Role
		role.Password = SecretPlaceholder
		sql, err := (&change.CreateRole{Role: &role}).Serialize(opts)
		return sql, true, err
	case *change.AlterRole:
		if c.Role.Password == "" {
			return "", false, nil
		}
		role := *c.Role
		role.Password = SecretPlaceholder
		sql, err := (&change.AlterRole{Role: &role}).Serialize(opts)
		return sql, true, err
	case *change.CreateSubscription:
		sub := *c.Subscription
		sub.Connection = SecretPlaceholder
		sql, err := (&change.CreateSubscription{Subscription: &sub}).Serialize(opts)
		return sql, true, err
	case *change.AlterSubscription:
		if !c.SetConnection {
			return "", false, nil
		}
		sub := *c.Subscription
		sub.Connection = SecretPlaceholder
		masked := *c
		masked.Subscription = &sub
		sql, err := masked.Serialize(opts)
		return sql, true, err
	case *change.CreateForeignServer:
		if !hasSecretOption(c.Server.Options) {
			return "", false, nil
		}
		server := *c.Server
		server.Options = maskOptionPairs(server.Options)
		sql, err := (&change.CreateForeignServer{Server: &server}).Serialize(opts)
		return sql, true, err
	case *change.AlterForeignServer:
		if !hasSecretValue(c.AddOptions) && !hasSecretValue(c.SetOptions) {
			return "", false, nil
		}
		masked := *c
		masked.AddOptions = maskOptions(c.AddOptions)
		masked.SetOptions = maskOptions(c.SetOptions)
		sql, err := masked.Serialize(opts)
		return sql, true, err
	case *change.CreateUserMapping:
		if !hasSecretOption(c.Mapping.Options) {
			return "", false, nil
		}
		mapping := *c.Mapping
		mapping.Options = maskOptionPairs(mapping.Options)
		sql, err := (&change.CreateUserMapping{Mapping: &mapping}).Serialize(opts)
		return sql, true, err
	case *change.AlterUserMapping:
		if !hasSecretValue(c.AddOptions) && !hasSecretValue(c.SetOptions) {
			return "", false, nil
		}
		masked := *c
		masked.AddOptions = maskOptions(c.AddOptions)
		masked.SetOptions = maskOptions(c.SetOptions)
		sql, err := masked.Serialize(opts)
		return sql, true, err
	}
	return "", false, nil
}

// secretOption matches option keys that carry credentials.
func secretOption(key string) bool {
	switch key {
	case "password", "sslkey", "sslpassword":
		return true
	}
	return false
}

func hasSecretOption(pairs []string) bool {
	for i := 0; i+1 < len(pairs); i += 2 {
		if secretOption(pairs[i]) {
			return true
		}
	}
	return false
}

// maskOptionPairs masks secret values in flat key/value pairs.
func maskOptionPairs(pairs []string) []string {
	masked := make([]string, len(pairs))
	copy(masked, pairs)
	for i := 0; i+1 < len(masked); i += 2 {
		if secretOption(masked[i]) {
			masked[i+1] = SecretPlaceholder
		}
	}
	return masked
}

func hasSecretValue(options []change.Option) bool {
	for _, o := range options {
		if secretOption(o.Key) {
			return true
		}
	}
	return false
}

func maskOptions(options []change.Option) []change.Option {
	masked := make([]change.Option, len(options))
	copy(masked, options)
	for i := range masked {
		if secretOption(masked[i].Key) {
			masked[i].Value = SecretPlaceholder
		}
	}
	return masked
}
