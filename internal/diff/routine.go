package diff

import (
	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
)

// functionSignature renders the COMMENT ON / DROP target for a routine.
func functionSignature(schema, name, arguments string) string {
	return change.Qualified(schema, name) + "(" + arguments + ")"
}

// functionBodyEqual compares the replaceable parts of a function: body and
// the attributes CREATE OR REPLACE re-states.
func functionBodyEqual(a, b *catalog.Function) bool {
	return catalog.StatementsEquivalent(a.Definition, b.Definition) &&
		a.Signature == b.Signature &&
		a.Volatility == b.Volatility &&
		a.Strict == b.Strict &&
		a.SecurityDefiner == b.SecurityDefiner &&
		a.Leakproof == b.Leakproof &&
		a.Parallel == b.Parallel &&
		catalog.StringSlicesEqual(a.Config, b.Config)
}

func (c *context) diffFunctions() {
	for _, id := range unionKeys(c.main.Functions, c.branch.Functions) {
		old, inMain := c.main.Functions[id]
		new, inBranch := c.branch.Functions[id]
		switch {
		case !inMain:
			c.add(&change.CreateFunction{Function: new})
			c.createComment(change.ObjectTypeFunction, "FUNCTION",
				functionSignature(new.Schema, new.Name, new.Arguments), id, new.Comment)
		case !inBranch:
			c.add(&change.DropFunction{Function: old})
		default:
			// OR REPLACE cannot change the return type or language.
			if old.ReturnType != new.ReturnType || old.Language != new.Language {
				c.add(&change.DropFunction{Function: old})
				c.add(&change.CreateFunction{Function: new})
				c.createComment(change.ObjectTypeFunction, "FUNCTION",
					functionSignature(new.Schema, new.Name, new.Arguments), id, new.Comment)
				continue
			}
			if !functionBodyEqual(old, new) {
				c.add(&change.CreateFunction{Function: new, OrReplace: true})
			}
			if old.Owner != new.Owner && new.Owner != "" {
				c.add(&change.AlterFunctionOwner{Schema: new.Schema, Name: new.Name, Arguments: new.Arguments, Owner: new.Owner})
			}
			c.diffComment(change.ObjectTypeFunction, "FUNCTION",
				functionSignature(new.Schema, new.Name, new.Arguments), id, old.Comment, new.Comment)
		}
	}
}

func (c *context) diffProcedures() {
	for _, id := range unionKeys(c.main.Procedures, c.branch.Procedures) {
		old, inMain := c.main.Procedures[id]
		new, inBranch := c.branch.Procedures[id]
		switch {
		case !inMain:
			c.add(&change.CreateProcedure{Procedure: new})
			c.createComment(change.ObjectTypeProcedure, "PROCEDURE",
				functionSignature(new.Schema, new.Name, new.Arguments), id, new.Comment)
		case !inBranch:
			c.add(&change.DropProcedure{Procedure: old})
		default:
			if old.Language != new.Language {
				c.add(&change.DropProcedure{Procedure: old})
				c.add(&change.CreateProcedure{Procedure: new})
				c.createComment(change.ObjectTypeProcedure, "PROCEDURE",
					functionSignature(new.Schema, new.Name, new.Arguments), id, new.Comment)
				continue
			}
			if !catalog.StatementsEquivalent(old.Definition, new.Definition) ||
				old.Signature != new.Signature ||
				old.SecurityDefiner != new.SecurityDefiner {
				c.add(&change.CreateProcedure{Procedure: new, OrReplace: true})
			}
			c.diffComment(change.ObjectTypeProcedure, "PROCEDURE",
				functionSignature(new.Schema, new.Name, new.Arguments), id, old.Comment, new.Comment)
		}
	}
}

func aggregatesEqual(a, b *catalog.Aggregate) bool {
	return a.TransitionFunc == b.TransitionFunc &&
		a.StateType == b.StateType &&
		a.FinalFunc == b.FinalFunc &&
		a.InitialCondition == b.InitialCondition
}

func (c *context) diffAggregates() {
	for _, id := range unionKeys(c.main.Aggregates, c.branch.Aggregates) {
		old, inMain := c.main.Aggregates[id]
		new, inBranch := c.branch.Aggregates[id]
		switch {
		case !inMain:
			c.add(&change.CreateAggregate{Aggregate: new})
			c.createComment(change.ObjectTypeAggregate, "AGGREGATE",
				functionSignature(new.Schema, new.Name, new.Arguments), id, new.Comment)
		case !inBranch:
			c.add(&change.DropAggregate{Aggregate: old})
		default:
			if !aggregatesEqual(old, new) {
				c.add(&change.DropAggregate{Aggregate: old})
				c.add(&change.CreateAggregate{Aggregate: new})
				c.createComment(change.ObjectTypeAggregate, "AGGREGATE",
					functionSignature(new.Schema, new.Name, new.Arguments), id, new.Comment)
				continue
			}
			c.diffComment(change.ObjectTypeAggregate, "AGGREGATE",
				functionSignature(new.Schema, new.Name, new.Arguments), id, old.Comment, new.Comment)
		}
	}
}
