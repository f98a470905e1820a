package diff

import (
	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
)

func policyCommentName(p *catalog.Policy) string {
	return change.Ident(p.Name) + " ON " + change.Qualified(p.Schema, p.Table)
}

func (c *context) diffPolicies() {
	for _, id := range unionKeys(c.main.Policies, c.branch.Policies) {
		old, inMain := c.main.Policies[id]
		new, inBranch := c.branch.Policies[id]
		switch {
		case !inMain:
			c.add(&change.CreatePolicy{Policy: new})
			c.createComment(change.ObjectTypePolicy, "POLICY", policyCommentName(new), id, new.Comment)
		case !inBranch:
			if c.objectDropped(catalog.TableID(old.Schema, old.Table)) || c.objectReplaced(catalog.TableID(old.Schema, old.Table)) {
				continue
			}
			c.add(&change.DropPolicy{Policy: old})
		default:
			if c.objectReplaced(catalog.TableID(new.Schema, new.Table)) {
				c.add(&change.CreatePolicy{Policy: new})
				c.createComment(change.ObjectTypePolicy, "POLICY", policyCommentName(new), id, new.Comment)
				continue
			}
			// Command and permissiveness are fixed at creation, and ALTER
			// POLICY cannot remove a USING or WITH CHECK clause outright.
			clauseDropped := (old.Using != "" && new.Using == "") || (old.WithCheck != "" && new.WithCheck == "")
			if old.Command != new.Command || old.Permissive != new.Permissive || clauseDropped {
				c.add(&change.DropPolicy{Policy: old})
				c.add(&change.CreatePolicy{Policy: new})
				c.createComment(change.ObjectTypePolicy, "POLICY", policyCommentName(new), id, new.Comment)
				continue
			}
			alter := &change.AlterPolicy{Policy: new}
			if !catalog.StringSetsEqual(old.Roles, new.Roles) {
				alter.SetRoles = true
			}
			if !catalog.ExpressionsEquivalent(old.Using, new.Using) {
				alter.SetUsing = true
			}
			if !catalog.ExpressionsEquivalent(old.WithCheck, new.WithCheck) {
				alter.SetWithCheck = true
			}
			if alter.SetRoles || alter.SetUsing || alter.SetWithCheck {
				c.add(alter)
			}
			c.diffComment(change.ObjectTypePolicy, "POLICY", policyCommentName(new), id, old.Comment, new.Comment)
		}
	}
}
