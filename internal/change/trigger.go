package change

import (
	"fmt"
	"strings"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

// CreateTrigger creates a trigger.
type CreateTrigger struct {
	Trigger *catalog.Trigger

	// FunctionID is the stable ID of the trigger function, derived by the
	// diff from the function reference.
	FunctionID string
}

func (c *CreateTrigger) ObjectType() ObjectType { return ObjectTypeTrigger }
func (c *CreateTrigger) Operation() Operation   { return OperationCreate }
func (c *CreateTrigger) Scope() Scope           { return ScopeObject }

func (c *CreateTrigger) Creates() []string {
	return []string{c.Trigger.StableID()}
}

func (c *CreateTrigger) Drops() []string { return nil }

func (c *CreateTrigger) Requires() []string {
	t := c.Trigger
	ids := []string{catalog.TableID(t.Schema, t.Table)}
	if c.FunctionID != "" {
		ids = append(ids, c.FunctionID)
	}
	return ids
}

func (c *CreateTrigger) Serialize(opts render.Options) (string, error) {
	t := c.Trigger
	if len(t.Events) == 0 {
		return "", invalidf("trigger %s on %s.%s has no events", t.Name, t.Schema, t.Table)
	}
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE "))
	if t.Constraint {
		b.WriteString(kw(opts, "CONSTRAINT "))
	}
	b.WriteString(kw(opts, "TRIGGER "))
	b.WriteString(quoteIdent(t.Name))
	b.WriteString("\n" + opts.Indent() + kw(opts, t.Timing) + " ")
	events := make([]string, len(t.Events))
	for i, e := range t.Events {
		events[i] = kw(opts, e)
	}
	b.WriteString(strings.Join(events, " "+kw(opts, "OR")+" "))
	b.WriteString(" " + kw(opts, "ON") + " " + qualify(t.Schema, t.Table))
	if t.Deferrable {
		b.WriteString("\n" + opts.Indent() + kw(opts, "DEFERRABLE"))
		if t.InitiallyDeferred {
			b.WriteString(" " + kw(opts, "INITIALLY DEFERRED"))
		}
	}
	b.WriteString("\n" + opts.Indent() + kw(opts, "FOR EACH") + " " + kw(opts, t.Level))
	if t.Condition != "" {
		b.WriteString("\n" + opts.Indent() + kw(opts, "WHEN") + " (" + t.Condition + ")")
	}
	b.WriteString("\n" + opts.Indent() + kw(opts, "EXECUTE FUNCTION") + " " + t.Function)
	return b.String(), nil
}

// DropTrigger drops a trigger.
type DropTrigger struct {
	Trigger *catalog.Trigger
}

func (c *DropTrigger) ObjectType() ObjectType { return ObjectTypeTrigger }
func (c *DropTrigger) Operation() Operation   { return OperationDrop }
func (c *DropTrigger) Scope() Scope           { return ScopeObject }
func (c *DropTrigger) Creates() []string      { return nil }

func (c *DropTrigger) Drops() []string {
	return []string{c.Trigger.StableID()}
}

func (c *DropTrigger) Requires() []string {
	t := c.Trigger
	return []string{catalog.TableID(t.Schema, t.Table)}
}

func (c *DropTrigger) Serialize(opts render.Options) (string, error) {
	t := c.Trigger
	return fmt.Sprintf("%s %s %s %s",
		kw(opts, "DROP TRIGGER"), quoteIdent(t.Name), kw(opts, "ON"), qualify(t.Schema, t.Table)), nil
}

// CreateRule creates a rewrite rule from its catalog definition.
type CreateRule struct {
	Rule *catalog.Rule
}

func (c *CreateRule) ObjectType() ObjectType { return ObjectTypeRule }
func (c *CreateRule) Operation() Operation   { return OperationCreate }
func (c *CreateRule) Scope() Scope           { return ScopeObject }

func (c *CreateRule) Creates() []string {
	return []string{c.Rule.StableID()}
}

func (c *CreateRule) Drops() []string { return nil }

func (c *CreateRule) Requires() []string {
	r := c.Rule
	return []string{catalog.TableID(r.Schema, r.Table)}
}

func (c *CreateRule) Serialize(opts render.Options) (string, error) {
	if c.Rule.Definition == "" {
		return "", invalidf("rule %s on %s.%s has no definition", c.Rule.Name, c.Rule.Schema, c.Rule.Table)
	}
	return strings.TrimRight(c.Rule.Definition, ";\n "), nil
}

// DropRule drops a rewrite rule.
type DropRule struct {
	Rule *catalog.Rule
}

func (c *DropRule) ObjectType() ObjectType { return ObjectTypeRule }
func (c *DropRule) Operation() Operation   { return OperationDrop }
func (c *DropRule) Scope() Scope           { return ScopeObject }
func (c *DropRule) Creates() []string      { return nil }

func (c *DropRule) Drops() []string {
	return []string{c.Rule.StableID()}
}

func (c *DropRule) Requires() []string {
	r := c.Rule
	return []string{catalog.TableID(r.Schema, r.Table)}
}

func (c *DropRule) Serialize(opts render.Options) (string, error) {
	r := c.Rule
	return fmt.Sprintf("%s %s %s %s",
		kw(opts, "DROP RULE"), quoteIdent(r.Name), kw(opts, "ON"), qualify(r.Schema, r.Table)), nil
}

// CreateEventTrigger creates an event trigger.
type CreateEventTrigger struct {
	EventTrigger *catalog.EventTrigger
	FunctionID   string
}

func (c *CreateEventTrigger) ObjectType() ObjectType { return ObjectTypeEventTrigger }
func (c *CreateEventTrigger) Operation() Operation   { return OperationCreate }
func (c *CreateEventTrigger) Scope() Scope           { return ScopeObject }

func (c *CreateEventTrigger) Creates() []string {
	return []string{c.EventTrigger.StableID()}
}

func (c *CreateEventTrigger) Drops() []string { return nil }

func (c *CreateEventTrigger) Requires() []string {
	if c.FunctionID != "" {
		return []string{c.FunctionID}
	}
	return nil
}

func (c *CreateEventTrigger) Serialize(opts render.Options) (string, error) {
	et := c.EventTrigger
	var b strings.Builder
	b.WriteString(kw(opts, "CREATE EVENT TRIGGER "))
	b.WriteString(quoteIdent(et.Name))
	b.WriteString(" " + kw(opts, "ON") + " " + et.Event)
	if len(et.Tags) > 0 {
		tags := make([]string, len(et.Tags))
		for i, tag := range et.Tags {
			tags[i] = quoteLiteral(tag)
		}
		b.WriteString("\n" + opts.Indent() + kw(opts, "WHEN TAG IN") + " (" + strings.Join(tags, ", ") + ")")
	}
	b.WriteString("\n" + opts.Indent() + kw(opts, "EXECUTE FUNCTION") + " " + et.Function)
	return b.String(), nil
}

// DropEventTrigger drops an event trigger.
type DropEventTrigger struct {
	EventTrigger *catalog.EventTrigger
}

func (c *DropEventTrigger) ObjectType() ObjectType { return ObjectTypeEventTrigger }
func (c *DropEventTrigger) Operation() Operation   { return OperationDrop }
func (c *DropEventTrigger) Scope() Scope           { return ScopeObject }
func (c *DropEventTrigger) Creates() []string      { return nil }

func (c *DropEventTrigger) Drops() []string {
	return []string{c.EventTrigger.StableID()}
}

func (c *DropEventTrigger) Requires() []string { return nil }

func (c *DropEventTrigger) Serialize(opts render.Options) (string, error) {
	return kw(opts, "DROP EVENT TRIGGER ") + quoteIdent(c.EventTrigger.Name), nil
}

// AlterEventTriggerEnable switches an event trigger's firing mode.
type AlterEventTriggerEnable struct {
	Name    string
	Enabled string // pg_event_trigger.evtenabled: O, D, R, A
}

func (c *AlterEventTriggerEnable) ObjectType() ObjectType { return ObjectTypeEventTrigger }
func (c *AlterEventTriggerEnable) Operation() Operation   { return OperationAlter }
func (c *AlterEventTriggerEnable) Scope() Scope           { return ScopeObject }
func (c *AlterEventTriggerEnable) Creates() []string      { return nil }
func (c *AlterEventTriggerEnable) Drops() []string        { return nil }

func (c *AlterEventTriggerEnable) Requires() []string {
	return []string{catalog.EventTriggerID(c.Name)}
}

func (c *AlterEventTriggerEnable) Serialize(opts render.Options) (string, error) {
	var verb string
	switch c.Enabled {
	case "O":
		verb = "ENABLE"
	case "D":
		verb = "DISABLE"
	case "R":
		verb = "ENABLE REPLICA"
	case "A":
		verb = "ENABLE ALWAYS"
	default:
		return "", invalidf("unknown event trigger mode %q for %s", c.Enabled, c.Name)
	}
	return fmt.Sprintf("%s %s %s",
		kw(opts, "ALTER EVENT TRIGGER"), quoteIdent(c.Name), kw(opts, verb)), nil
}
