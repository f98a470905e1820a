package catalog

import "sort"

// Persistence mirrors pg_class.relpersistence.
type Persistence string

const (
	PersistencePermanent Persistence = "p"
	PersistenceUnlogged  Persistence = "u"
)

// Table represents a base table, including its columns and constraints.
// Constraints are nested here because their lifecycle is bound to the table,
// but each constraint carries its own stable ID so foreign keys can be
// ordered independently of CREATE TABLE.
type Table struct {
	Schema      string      `json:"schema"`
	Name        string      `json:"name"`
	Owner       string      `json:"owner,omitempty"`
	Persistence Persistence `json:"persistence,omitempty"`

	Columns     []*Column              `json:"columns"`
	Constraints map[string]*Constraint `json:"constraints,omitempty"` // constraint name -> Constraint

	// Partitioning. PartitionBound/PartitionParent are set on children.
	PartitionStrategy string `json:"partition_strategy,omitempty"` // RANGE, LIST, HASH
	PartitionKey      string `json:"partition_key,omitempty"`
	PartitionBound    string `json:"partition_bound,omitempty"`
	PartitionParent   string `json:"partition_parent,omitempty"` // "schema.name"

	StorageOptions []string `json:"storage_options,omitempty"` // flat key/value pairs
	Tablespace     string   `json:"tablespace,omitempty"`
	RLSEnabled     bool     `json:"rls_enabled,omitempty"`
	RLSForced      bool     `json:"rls_forced,omitempty"`
	Comment        string   `json:"comment,omitempty"`

	// Dependencies holds stable IDs of objects the table definition itself
	// references (types used by columns, collations, parent partitions).
	Dependencies []string `json:"dependencies,omitempty"`
}

func (t *Table) StableID() string {
	return TableID(t.Schema, t.Name)
}

// SortedConstraints returns the table's constraints ordered by name.
func (t *Table) SortedConstraints() []*Constraint {
	cons := make([]*Constraint, 0, len(t.Constraints))
	for _, c := range t.Constraints {
		cons = append(cons, c)
	}
	sort.Slice(cons, func(i, j int) bool { return cons[i].Name < cons[j].Name })
	return cons
}

// Column represents a table column. Columns are identified within their
// table by name; position only affects emission order, never identity.
type Column struct {
	Name      string  `json:"name"`
	Position  int     `json:"position"`
	DataType  string  `json:"data_type"`
	NotNull   bool    `json:"not_null,omitempty"`
	Default   *string `json:"default,omitempty"`
	Collation string  `json:"collation,omitempty"`

	Identity  string `json:"identity,omitempty"`  // "ALWAYS" or "BY DEFAULT"
	Generated string `json:"generated,omitempty"` // generation expression

	Storage    string `json:"storage,omitempty"` // PLAIN, EXTERNAL, EXTENDED, MAIN
	Statistics *int   `json:"statistics,omitempty"`
	Comment    string `json:"comment,omitempty"`
}

// ConstraintType mirrors pg_constraint.contype.
type ConstraintType string

const (
	ConstraintTypePrimaryKey ConstraintType = "p"
	ConstraintTypeUnique     ConstraintType = "u"
	ConstraintTypeForeignKey ConstraintType = "f"
	ConstraintTypeCheck      ConstraintType = "c"
	ConstraintTypeExclusion  ConstraintType = "x"
)

// Constraint represents a table constraint.
type Constraint struct {
	Schema string         `json:"schema"`
	Table  string         `json:"table"`
	Name   string         `json:"name"`
	Type   ConstraintType `json:"type"`

	Columns []string `json:"columns,omitempty"`

	// Foreign keys
	ReferencedSchema  string   `json:"referenced_schema,omitempty"`
	ReferencedTable   string   `json:"referenced_table,omitempty"`
	ReferencedColumns []string `json:"referenced_columns,omitempty"`
	OnUpdate          string   `json:"on_update,omitempty"`
	OnDelete          string   `json:"on_delete,omitempty"`

	// Checks
	CheckClause string `json:"check_clause,omitempty"` // includes "CHECK (...)"
	NoInherit   bool   `json:"no_inherit,omitempty"`

	// Exclusion
	ExclusionDefinition string `json:"exclusion_definition,omitempty"`

	Deferrable        bool   `json:"deferrable,omitempty"`
	InitiallyDeferred bool   `json:"initially_deferred,omitempty"`
	Validated         bool   `json:"validated"`
	BackingIndex      string `json:"backing_index,omitempty"` // PK/UNIQUE index name
	Comment           string `json:"comment,omitempty"`
}

func (c *Constraint) StableID() string {
	return ConstraintID(c.Schema, c.Table, c.Name)
}
