package catalog

// Catalog is one immutable snapshot of a database's schema state. Every map
// is keyed by stable ID. Snapshots are constructed once (by the inspector or
// by tests), compared, and discarded; nothing mutates a Catalog after
// construction.
type Catalog struct {
	// ServerVersion is the PostgreSQL major version the snapshot was taken
	// from. It affects the privilege universe (e.g. MAINTAIN exists on 17+).
	ServerVersion int

	Schemas             map[string]*Schema
	Extensions          map[string]*Extension
	Collations          map[string]*Collation
	Roles               map[string]*Role
	Memberships         map[string]*RoleMembership
	Types               map[string]*Type
	Tables              map[string]*Table
	Indexes             map[string]*Index
	Sequences           map[string]*Sequence
	Views               map[string]*View
	MaterializedViews   map[string]*MaterializedView
	Functions           map[string]*Function
	Procedures          map[string]*Procedure
	Aggregates          map[string]*Aggregate
	Triggers            map[string]*Trigger
	Rules               map[string]*Rule
	Policies            map[string]*Policy
	EventTriggers       map[string]*EventTrigger
	Publications        map[string]*Publication
	Subscriptions       map[string]*Subscription
	ForeignDataWrappers map[string]*ForeignDataWrapper
	ForeignServers      map[string]*ForeignServer
	UserMappings        map[string]*UserMapping
	ForeignTables       map[string]*ForeignTable
	Privileges          map[string]*Privilege
	DefaultPrivileges   map[string]*DefaultPrivilege
}

// New returns an empty catalog with all maps initialized.
func New() *Catalog {
	return &Catalog{
		Schemas:             map[string]*Schema{},
		Extensions:          map[string]*Extension{},
		Collations:          map[string]*Collation{},
		Roles:               map[string]*Role{},
		Memberships:         map[string]*RoleMembership{},
		Types:               map[string]*Type{},
		Tables:              map[string]*Table{},
		Indexes:             map[string]*Index{},
		Sequences:           map[string]*Sequence{},
		Views:               map[string]*View{},
		MaterializedViews:   map[string]*MaterializedView{},
		Functions:           map[string]*Function{},
		Procedures:          map[string]*Procedure{},
		Aggregates:          map[string]*Aggregate{},
		Triggers:            map[string]*Trigger{},
		Rules:               map[string]*Rule{},
		Policies:            map[string]*Policy{},
		EventTriggers:       map[string]*EventTrigger{},
		Publications:        map[string]*Publication{},
		Subscriptions:       map[string]*Subscription{},
		ForeignDataWrappers: map[string]*ForeignDataWrapper{},
		ForeignServers:      map[string]*ForeignServer{},
		UserMappings:        map[string]*UserMapping{},
		ForeignTables:       map[string]*ForeignTable{},
		Privileges:          map[string]*Privilege{},
		DefaultPrivileges:   map[string]*DefaultPrivilege{},
	}
}
