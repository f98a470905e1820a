package catalog

// View represents a regular view. Definition holds the SELECT body as
// reported by pg_get_viewdef; comparison normalizes it via query
// fingerprinting so formatting differences are not treated as changes.
type View struct {
	Schema      string `json:"schema"`
	Name        string `json:"name"`
	Owner       string `json:"owner,omitempty"`
	Definition  string `json:"definition"`
	CheckOption string `json:"check_option,omitempty"` // "", "LOCAL", "CASCADED"

	Options []string `json:"options,omitempty"` // flat key/value pairs (security_barrier, ...)
	Comment string   `json:"comment,omitempty"`

	// Dependencies holds stable IDs of relations and functions the view
	// definition references.
	Dependencies []string `json:"dependencies,omitempty"`
}

func (v *View) StableID() string {
	return ViewID(v.Schema, v.Name)
}

// MaterializedView represents a materialized view.
type MaterializedView struct {
	Schema     string `json:"schema"`
	Name       string `json:"name"`
	Owner      string `json:"owner,omitempty"`
	Definition string `json:"definition"`

	StorageOptions []string `json:"storage_options,omitempty"`
	Tablespace     string   `json:"tablespace,omitempty"`
	Comment        string   `json:"comment,omitempty"`

	Dependencies []string `json:"dependencies,omitempty"`
}

func (v *MaterializedView) StableID() string {
	return MaterializedViewID(v.Schema, v.Name)
}
