package pgdelta

import (
	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
	"github.com/pgdelta/pgdelta/internal/plan"
	"github.com/pgdelta/pgdelta/internal/render"
)

// Re-exported types for external consumption.

// Catalog is one immutable snapshot of a database's schema state.
type Catalog = catalog.Catalog

// Change is one schema modification with its dependency edges.
type Change = change.Change

// Plan is an ordered change list ready for rendering.
type Plan = plan.Plan

// Step is one ordered change with its rendered SQL.
type Step = plan.Step

// Hooks customize script generation (filtering, secret masking).
type Hooks = plan.Hooks

// CycleError reports an unresolvable dependency cycle.
type CycleError = plan.CycleError

// RenderOptions control keyword case and indentation of emitted DDL.
type RenderOptions = render.Options

// DefaultRenderOptions returns the standard rendering configuration.
func DefaultRenderOptions() RenderOptions {
	return render.DefaultOptions()
}
