package catalog

// ForeignDataWrapper represents a foreign-data wrapper.
type ForeignDataWrapper struct {
	Name      string   `json:"name"`
	Owner     string   `json:"owner,omitempty"`
	Handler   string   `json:"handler,omitempty"`
	Validator string   `json:"validator,omitempty"`
	Options   []string `json:"options,omitempty"` // flat key/value pairs
	Comment   string   `json:"comment,omitempty"`
}

func (w *ForeignDataWrapper) StableID() string {
	return ForeignDataWrapperID(w.Name)
}

// ForeignServer represents a foreign server. Options may embed connection
// secrets; masking hooks can suppress them at render time.
type ForeignServer struct {
	Name    string   `json:"name"`
	Owner   string   `json:"owner,omitempty"`
	Wrapper string   `json:"wrapper"`
	Type    string   `json:"type,omitempty"`
	Version string   `json:"version,omitempty"`
	Options []string `json:"options,omitempty"`
	Comment string   `json:"comment,omitempty"`
}

func (s *ForeignServer) StableID() string {
	return ForeignServerID(s.Name)
}

// UserMapping represents a user mapping on a foreign server. Identity is
// the (server, role) pair; PUBLIC mappings use role "public".
type UserMapping struct {
	Server  string   `json:"server"`
	Role    string   `json:"role"`
	Options []string `json:"options,omitempty"`
}

func (m *UserMapping) StableID() string {
	return UserMappingID(m.Server, m.Role)
}

// ForeignTable represents a foreign table.
type ForeignTable struct {
	Schema  string    `json:"schema"`
	Name    string    `json:"name"`
	Owner   string    `json:"owner,omitempty"`
	Server  string    `json:"server"`
	Columns []*Column `json:"columns"`
	Options []string  `json:"options,omitempty"`
	Comment string    `json:"comment,omitempty"`
}

func (t *ForeignTable) StableID() string {
	return ForeignTableID(t.Schema, t.Name)
}
