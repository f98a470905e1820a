package diff

import (
	"strings"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
)

// triggerFunctionID derives the stable ID of a trigger function from its
// rendered call ("audit.log()" or "log('arg')"). Trigger functions are
// declared with no parameters, so the identity argument list is empty.
func triggerFunctionID(call string) string {
	name := call
	if i := strings.Index(name, "("); i >= 0 {
		name = name[:i]
	}
	schema := "public"
	if s, n, ok := strings.Cut(name, "."); ok {
		schema, name = s, n
	}
	return catalog.FunctionID(schema, name, "")
}

func triggersEqual(a, b *catalog.Trigger) bool {
	return a.Timing == b.Timing &&
		catalog.StringSlicesEqual(a.Events, b.Events) &&
		a.Level == b.Level &&
		a.Function == b.Function &&
		catalog.ExpressionsEquivalent(a.Condition, b.Condition) &&
		a.Constraint == b.Constraint &&
		a.Deferrable == b.Deferrable &&
		a.InitiallyDeferred == b.InitiallyDeferred
}

func triggerCommentName(t *catalog.Trigger) string {
	return change.Ident(t.Name) + " ON " + change.Qualified(t.Schema, t.Table)
}

func (c *context) diffTriggers() {
	for _, id := range unionKeys(c.main.Triggers, c.branch.Triggers) {
		old, inMain := c.main.Triggers[id]
		new, inBranch := c.branch.Triggers[id]
		switch {
		case !inMain:
			c.add(&change.CreateTrigger{Trigger: new, FunctionID: triggerFunctionID(new.Function)})
			c.createComment(change.ObjectTypeTrigger, "TRIGGER", triggerCommentName(new), id, new.Comment)
		case !inBranch:
			if c.objectDropped(catalog.TableID(old.Schema, old.Table)) || c.objectReplaced(catalog.TableID(old.Schema, old.Table)) {
				continue
			}
			c.add(&change.DropTrigger{Trigger: old})
		default:
			if c.objectReplaced(catalog.TableID(new.Schema, new.Table)) {
				c.add(&change.CreateTrigger{Trigger: new, FunctionID: triggerFunctionID(new.Function)})
				c.createComment(change.ObjectTypeTrigger, "TRIGGER", triggerCommentName(new), id, new.Comment)
				continue
			}
			if !triggersEqual(old, new) {
				c.add(&change.DropTrigger{Trigger: old})
				c.add(&change.CreateTrigger{Trigger: new, FunctionID: triggerFunctionID(new.Function)})
				c.createComment(change.ObjectTypeTrigger, "TRIGGER", triggerCommentName(new), id, new.Comment)
				continue
			}
			c.diffComment(change.ObjectTypeTrigger, "TRIGGER", triggerCommentName(new), id, old.Comment, new.Comment)
		}
	}
}

func ruleCommentName(r *catalog.Rule) string {
	return change.Ident(r.Name) + " ON " + change.Qualified(r.Schema, r.Table)
}

func (c *context) diffRules() {
	for _, id := range unionKeys(c.main.Rules, c.branch.Rules) {
		old, inMain := c.main.Rules[id]
		new, inBranch := c.branch.Rules[id]
		switch {
		case !inMain:
			c.add(&change.CreateRule{Rule: new})
			c.createComment(change.ObjectTypeRule, "RULE", ruleCommentName(new), id, new.Comment)
		case !inBranch:
			if c.objectDropped(catalog.TableID(old.Schema, old.Table)) || c.objectReplaced(catalog.TableID(old.Schema, old.Table)) {
				continue
			}
			c.add(&change.DropRule{Rule: old})
		default:
			if c.objectReplaced(catalog.TableID(new.Schema, new.Table)) {
				c.add(&change.CreateRule{Rule: new})
				c.createComment(change.ObjectTypeRule, "RULE", ruleCommentName(new), id, new.Comment)
				continue
			}
			if !catalog.StatementsEquivalent(old.Definition, new.Definition) {
				c.add(&change.DropRule{Rule: old})
				c.add(&change.CreateRule{Rule: new})
				c.createComment(change.ObjectTypeRule, "RULE", ruleCommentName(new), id, new.Comment)
				continue
			}
			c.diffComment(change.ObjectTypeRule, "RULE", ruleCommentName(new), id, old.Comment, new.Comment)
		}
	}
}

func eventTriggersEqual(a, b *catalog.EventTrigger) bool {
	return a.Event == b.Event &&
		a.Function == b.Function &&
		catalog.StringSetsEqual(a.Tags, b.Tags)
}

func (c *context) diffEventTriggers() {
	for _, id := range unionKeys(c.main.EventTriggers, c.branch.EventTriggers) {
		old, inMain := c.main.EventTriggers[id]
		new, inBranch := c.branch.EventTriggers[id]
		switch {
		case !inMain:
			c.add(&change.CreateEventTrigger{EventTrigger: new, FunctionID: triggerFunctionID(new.Function)})
			if new.Enabled != "" && new.Enabled != "O" {
				c.add(&change.AlterEventTriggerEnable{Name: new.Name, Enabled: new.Enabled})
			}
			c.createComment(change.ObjectTypeEventTrigger, "EVENT TRIGGER", change.Ident(new.Name), id, new.Comment)
		case !inBranch:
			c.add(&change.DropEventTrigger{EventTrigger: old})
		default:
			if !eventTriggersEqual(old, new) {
				c.add(&change.DropEventTrigger{EventTrigger: old})
				c.add(&change.CreateEventTrigger{EventTrigger: new, FunctionID: triggerFunctionID(new.Function)})
				if new.Enabled != "" && new.Enabled != "O" {
					c.add(&change.AlterEventTriggerEnable{Name: new.Name, Enabled: new.Enabled})
				}
				c.createComment(change.ObjectTypeEventTrigger, "EVENT TRIGGER", change.Ident(new.Name), id, new.Comment)
				continue
			}
			if old.Enabled != new.Enabled {
				enabled := new.Enabled
				if enabled == "" {
					enabled = "O"
				}
				c.add(&change.AlterEventTriggerEnable{Name: new.Name, Enabled: enabled})
			}
			c.diffComment(change.ObjectTypeEventTrigger, "EVENT TRIGGER", change.Ident(new.Name), id, old.Comment, new.Comment)
		}
	}
}
