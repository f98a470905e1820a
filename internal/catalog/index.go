package catalog

// Index represents a secondary index. Indexes backing PRIMARY KEY and
// UNIQUE constraints are created implicitly by the constraint DDL and are
// marked with OwnedByConstraint so the diff never emits them directly;
// likewise partition-child indexes arrive via the parent index.
type Index struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Name   string `json:"name"`

	Method  string        `json:"method,omitempty"` // btree, gin, gist, hash, ...
	Unique  bool          `json:"unique,omitempty"`
	Columns []IndexColumn `json:"columns"`
	Where   string        `json:"where,omitempty"` // partial index predicate

	StorageOptions []string `json:"storage_options,omitempty"` // flat key/value pairs
	Tablespace     string   `json:"tablespace,omitempty"`
	Comment        string   `json:"comment,omitempty"`

	OwnedByConstraint  string `json:"owned_by_constraint,omitempty"`
	IsPartitionChild   bool   `json:"is_partition_child,omitempty"`
	OnMaterializedView bool   `json:"on_materialized_view,omitempty"`
}

// IndexColumn is one key column or expression of an index.
type IndexColumn struct {
	Expression string `json:"expression"` // column name or expression text
	OpClass    string `json:"opclass,omitempty"`
	Direction  string `json:"direction,omitempty"`   // "" or "DESC"
	NullsOrder string `json:"nulls_order,omitempty"` // "" or "NULLS FIRST"/"NULLS LAST"
	Collation  string `json:"collation,omitempty"`
}

func (i *Index) StableID() string {
	return IndexID(i.Schema, i.Name)
}

// ParentID returns the stable ID of the relation the index is built on.
// Indexes exist on tables and on materialized views; dependency edges must
// point at the right kind or they dangle.
func (i *Index) ParentID() string {
	if i.OnMaterializedView {
		return MaterializedViewID(i.Schema, i.Table)
	}
	return TableID(i.Schema, i.Table)
}
