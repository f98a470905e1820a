package catalog

// Sequence represents a sequence. Sequences owned by identity or serial
// columns are tracked with OwnedByTable/OwnedByColumn; the table diff
// implies their lifecycle, so the sequence diff skips them.
type Sequence struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
	Owner  string `json:"owner,omitempty"`

	DataType  string `json:"data_type,omitempty"` // smallint, integer, bigint
	Start     int64  `json:"start"`
	Increment int64  `json:"increment"`
	MinValue  *int64 `json:"min_value,omitempty"`
	MaxValue  *int64 `json:"max_value,omitempty"`
	Cache     int64  `json:"cache,omitempty"`
	Cycle     bool   `json:"cycle,omitempty"`

	OwnedByTable  string `json:"owned_by_table,omitempty"`
	OwnedByColumn string `json:"owned_by_column,omitempty"`
	Comment       string `json:"comment,omitempty"`
}

func (s *Sequence) StableID() string {
	return SequenceID(s.Schema, s.Name)
}
