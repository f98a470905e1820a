package catalog

// Policy represents a row-level security policy.
type Policy struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Name   string `json:"name"`

	Command    string   `json:"command"` // ALL, SELECT, INSERT, UPDATE, DELETE
	Permissive bool     `json:"permissive"`
	Roles      []string `json:"roles,omitempty"` // empty means PUBLIC
	Using      string   `json:"using,omitempty"`
	WithCheck  string   `json:"with_check,omitempty"`
	Comment    string   `json:"comment,omitempty"`
}

func (p *Policy) StableID() string {
	return PolicyID(p.Schema, p.Table, p.Name)
}
