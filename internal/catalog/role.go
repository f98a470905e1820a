package catalog

// Role represents a cluster-global role. The password hash is carried so
// masking hooks can decide what to emit; the diff core treats it as an
// opaque data field.
type Role struct {
	Name            string   `json:"name"`
	Superuser       bool     `json:"superuser,omitempty"`
	CreateDB        bool     `json:"create_db,omitempty"`
	CreateRole      bool     `json:"create_role,omitempty"`
	Inherit         bool     `json:"inherit"`
	Login           bool     `json:"login,omitempty"`
	Replication     bool     `json:"replication,omitempty"`
	BypassRLS       bool     `json:"bypass_rls,omitempty"`
	ConnectionLimit int      `json:"connection_limit,omitempty"` // -1 means unlimited
	ValidUntil      string   `json:"valid_until,omitempty"`
	Password        string   `json:"password,omitempty"`
	Config          []string `json:"config,omitempty"` // role-level SET parameters, "key=value"
	Comment         string   `json:"comment,omitempty"`
}

func (r *Role) StableID() string {
	return RoleID(r.Name)
}

// RoleMembership represents one GRANT role TO member edge. Identity is the
// (role, member) pair; the admin option is a data field.
type RoleMembership struct {
	Role   string `json:"role"`
	Member string `json:"member"`
	Admin  bool   `json:"admin,omitempty"`
}

func (m *RoleMembership) StableID() string {
	return MembershipID(m.Role, m.Member)
}
