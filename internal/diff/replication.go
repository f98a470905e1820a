package diff

import (
	"sort"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
)

// tableListDelta computes the added and removed entries between two sorted
// "schema.name" lists.
func tableListDelta(oldTables, newTables []string) (added, removed []string) {
	oldSet := make(map[string]bool, len(oldTables))
	for _, t := range oldTables {
		oldSet[t] = true
	}
	newSet := make(map[string]bool, len(newTables))
	for _, t := range newTables {
		newSet[t] = true
		if !oldSet[t] {
			added = append(added, t)
		}
	}
	for _, t := range oldTables {
		if !newSet[t] {
			removed = append(removed, t)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

func (c *context) diffPublications() {
	for _, id := range unionKeys(c.main.Publications, c.branch.Publications) {
		old, inMain := c.main.Publications[id]
		new, inBranch := c.branch.Publications[id]
		switch {
		case !inMain:
			c.add(&change.CreatePublication{Publication: new})
			c.createComment(change.ObjectTypePublication, "PUBLICATION", change.Ident(new.Name), id, new.Comment)
		case !inBranch:
			c.add(&change.DropPublication{Publication: old})
		default:
			// FOR ALL TABLES is fixed at creation.
			if old.AllTables != new.AllTables {
				c.add(&change.DropPublication{Publication: old})
				c.add(&change.CreatePublication{Publication: new})
				c.createComment(change.ObjectTypePublication, "PUBLICATION", change.Ident(new.Name), id, new.Comment)
				continue
			}
			alter := &change.AlterPublication{Publication: new}
			if !new.AllTables {
				alter.AddTables, alter.DropTables = tableListDelta(old.Tables, new.Tables)
			}
			if !catalog.StringSetsEqual(old.Operations, new.Operations) {
				alter.SetOperations = true
			}
			if old.ViaRoot != new.ViaRoot {
				alter.SetViaRoot = true
			}
			if len(alter.AddTables) > 0 || len(alter.DropTables) > 0 || alter.SetOperations || alter.SetViaRoot {
				c.add(alter)
			}
			c.diffComment(change.ObjectTypePublication, "PUBLICATION", change.Ident(new.Name), id, old.Comment, new.Comment)
		}
	}
}

func (c *context) diffSubscriptions() {
	for _, id := range unionKeys(c.main.Subscriptions, c.branch.Subscriptions) {
		old, inMain := c.main.Subscriptions[id]
		new, inBranch := c.branch.Subscriptions[id]
		switch {
		case !inMain:
			c.add(&change.CreateSubscription{Subscription: new})
			c.createComment(change.ObjectTypeSubscription, "SUBSCRIPTION", change.Ident(new.Name), id, new.Comment)
		case !inBranch:
			c.add(&change.DropSubscription{Subscription: old})
		default:
			// The replication slot binding is fixed at creation.
			if old.SlotName != new.SlotName {
				c.add(&change.DropSubscription{Subscription: old})
				c.add(&change.CreateSubscription{Subscription: new})
				c.createComment(change.ObjectTypeSubscription, "SUBSCRIPTION", change.Ident(new.Name), id, new.Comment)
				continue
			}
			alter := &change.AlterSubscription{Subscription: new}
			if old.Connection != new.Connection {
				alter.SetConnection = true
			}
			if !catalog.StringSetsEqual(old.Publications, new.Publications) {
				alter.SetPublications = true
			}
			if old.Enabled != new.Enabled {
				alter.SetEnabled = true
			}
			if alter.SetConnection || alter.SetPublications || alter.SetEnabled {
				c.add(alter)
			}
			c.diffComment(change.ObjectTypeSubscription, "SUBSCRIPTION", change.Ident(new.Name), id, old.Comment, new.Comment)
		}
	}
}
