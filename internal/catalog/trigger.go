package catalog

// Trigger represents a table trigger.
type Trigger struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Name   string `json:"name"`

	Timing            string   `json:"timing"`   // BEFORE, AFTER, INSTEAD OF
	Events            []string `json:"events"`   // INSERT, UPDATE, DELETE, TRUNCATE
	Level             string   `json:"level"`    // ROW or STATEMENT
	Function          string   `json:"function"` // schema-qualified call, e.g. "audit.log()"
	Condition         string   `json:"condition,omitempty"`
	Constraint        bool     `json:"constraint,omitempty"`
	Deferrable        bool     `json:"deferrable,omitempty"`
	InitiallyDeferred bool     `json:"initially_deferred,omitempty"`
	Comment           string   `json:"comment,omitempty"`
}

func (t *Trigger) StableID() string {
	return TriggerID(t.Schema, t.Table, t.Name)
}

// Rule represents a query rewrite rule.
type Rule struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Name   string `json:"name"`

	// Definition is the full CREATE RULE statement as reported by
	// pg_get_ruledef.
	Definition string `json:"definition"`
	Comment    string `json:"comment,omitempty"`
}

func (r *Rule) StableID() string {
	return RuleID(r.Schema, r.Table, r.Name)
}

// EventTrigger represents a database-wide event trigger.
type EventTrigger struct {
	Name     string   `json:"name"`
	Event    string   `json:"event"` // ddl_command_start, ddl_command_end, sql_drop, table_rewrite
	Function string   `json:"function"`
	Tags     []string `json:"tags,omitempty"`
	Enabled  string   `json:"enabled,omitempty"` // O, D, R, A (pg_event_trigger.evtenabled)
	Owner    string   `json:"owner,omitempty"`
	Comment  string   `json:"comment,omitempty"`
}

func (e *EventTrigger) StableID() string {
	return EventTriggerID(e.Name)
}
