package catalog

// TypeKind discriminates the flavors of user-defined types.
type TypeKind string

const (
	TypeKindEnum      TypeKind = "enum"
	TypeKindComposite TypeKind = "composite"
	TypeKindDomain    TypeKind = "domain"
	TypeKindRange     TypeKind = "range"
)

// Type represents a user-defined type. Only the fields matching Kind are
// populated.
type Type struct {
	Schema string   `json:"schema"`
	Name   string   `json:"name"`
	Kind   TypeKind `json:"kind"`
	Owner  string   `json:"owner,omitempty"`

	// Enum
	EnumValues []string `json:"enum_values,omitempty"`

	// Composite
	Attributes []TypeAttribute `json:"attributes,omitempty"`

	// Domain
	BaseType    string             `json:"base_type,omitempty"`
	NotNull     bool               `json:"not_null,omitempty"`
	Default     string             `json:"default,omitempty"`
	Constraints []DomainConstraint `json:"constraints,omitempty"`

	// Range
	Subtype        string `json:"subtype,omitempty"`
	SubtypeOpClass string `json:"subtype_opclass,omitempty"`
	RangeCollation string `json:"range_collation,omitempty"`

	Comment string `json:"comment,omitempty"`
}

// TypeAttribute is one field of a composite type.
type TypeAttribute struct {
	Name      string `json:"name"`
	DataType  string `json:"data_type"`
	Collation string `json:"collation,omitempty"`
}

// DomainConstraint is one CHECK constraint on a domain.
type DomainConstraint struct {
	Name  string `json:"name,omitempty"`
	Check string `json:"check"`
}

func (t *Type) StableID() string {
	return TypeID(t.Schema, t.Name)
}
