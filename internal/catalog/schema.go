package catalog

// Schema represents a namespace. Identity is the name; owner and comment
// are data fields.
type Schema struct {
	Name    string `json:"name"`
	Owner   string `json:"owner,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// StableID implements the identity scheme for schemas.
func (s *Schema) StableID() string {
	return SchemaID(s.Name)
}

// Extension represents an installed extension.
type Extension struct {
	Name    string `json:"name"`
	Schema  string `json:"schema,omitempty"`
	Version string `json:"version,omitempty"`
	Comment string `json:"comment,omitempty"`
}

func (e *Extension) StableID() string {
	return ExtensionID(e.Name)
}

// Collation represents a user-defined collation.
type Collation struct {
	Schema        string `json:"schema"`
	Name          string `json:"name"`
	Provider      string `json:"provider,omitempty"` // "icu", "libc" or "builtin"
	Locale        string `json:"locale,omitempty"`
	Deterministic bool   `json:"deterministic"`
	Owner         string `json:"owner,omitempty"`
	Comment       string `json:"comment,omitempty"`
}

func (c *Collation) StableID() string {
	return CollationID(c.Schema, c.Name)
}
