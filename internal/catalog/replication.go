package catalog

// Publication represents a logical replication publication.
type Publication struct {
	Name       string   `json:"name"`
	Owner      string   `json:"owner,omitempty"`
	AllTables  bool     `json:"all_tables,omitempty"`
	Tables     []string `json:"tables,omitempty"` // "schema.name", sorted by the inspector
	Operations []string `json:"operations"`       // insert, update, delete, truncate
	ViaRoot    bool     `json:"via_root,omitempty"`
	Comment    string   `json:"comment,omitempty"`
}

func (p *Publication) StableID() string {
	return PublicationID(p.Name)
}

// Subscription represents a logical replication subscription. The
// connection string may embed credentials; masking hooks can suppress it at
// render time.
type Subscription struct {
	Name         string   `json:"name"`
	Owner        string   `json:"owner,omitempty"`
	Connection   string   `json:"connection"`
	Publications []string `json:"publications"`
	Enabled      bool     `json:"enabled"`
	SlotName     string   `json:"slot_name,omitempty"`
	Comment      string   `json:"comment,omitempty"`
}

func (s *Subscription) StableID() string {
	return SubscriptionID(s.Name)
}
