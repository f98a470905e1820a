package diff

import (
	"strings"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
)

func roleAttributesEqual(a, b *catalog.Role) bool {
	return a.Superuser == b.Superuser &&
		a.CreateDB == b.CreateDB &&
		a.CreateRole == b.CreateRole &&
		a.Inherit == b.Inherit &&
		a.Login == b.Login &&
		a.Replication == b.Replication &&
		a.BypassRLS == b.BypassRLS &&
		a.ConnectionLimit == b.ConnectionLimit &&
		a.ValidUntil == b.ValidUntil &&
		a.Password == b.Password
}

// roleConfigDelta emits ALTER ROLE SET/RESET for changed "key=value"
// entries.
func (c *context) roleConfigDelta(name string, oldConfig, newConfig []string) {
	oldMap := configMap(oldConfig)
	newMap := configMap(newConfig)
	for _, k := range catalog.OptionKeys(newMap) {
		if oldV, ok := oldMap[k]; !ok || oldV != newMap[k] {
			c.add(&change.AlterRoleSetConfig{Role: name, Key: k, Value: newMap[k]})
		}
	}
	for _, k := range catalog.OptionKeys(oldMap) {
		if _, ok := newMap[k]; !ok {
			c.add(&change.AlterRoleSetConfig{Role: name, Key: k})
		}
	}
}

// configMap splits "key=value" entries into a map.
func configMap(entries []string) map[string]string {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		if k, v, ok := strings.Cut(e, "="); ok {
			m[k] = v
		}
	}
	return m
}

func (c *context) diffRoles() {
	for _, id := range unionKeys(c.main.Roles, c.branch.Roles) {
		old, inMain := c.main.Roles[id]
		new, inBranch := c.branch.Roles[id]
		switch {
		case !inMain:
			c.add(&change.CreateRole{Role: new})
			c.roleConfigDelta(new.Name, nil, new.Config)
			c.createComment(change.ObjectTypeRole, "ROLE", change.Ident(new.Name), id, new.Comment)
		case !inBranch:
			c.add(&change.DropRole{Role: old})
		default:
			if !roleAttributesEqual(old, new) {
				c.add(&change.AlterRole{Role: new})
			}
			c.roleConfigDelta(new.Name, old.Config, new.Config)
			c.diffComment(change.ObjectTypeRole, "ROLE", change.Ident(new.Name), id, old.Comment, new.Comment)
		}
	}
}

func (c *context) diffMemberships() {
	for _, id := range unionKeys(c.main.Memberships, c.branch.Memberships) {
		old, inMain := c.main.Memberships[id]
		new, inBranch := c.branch.Memberships[id]
		switch {
		case !inMain:
			c.add(&change.GrantRoleMembership{Membership: new})
		case !inBranch:
			// A dropped role takes its memberships with it.
			if c.objectDropped(catalog.RoleID(old.Role)) || c.objectDropped(catalog.RoleID(old.Member)) {
				continue
			}
			c.add(&change.RevokeRoleMembership{Membership: old})
		default:
			if old.Admin == new.Admin {
				continue
			}
			if new.Admin {
				// GRANT ... WITH ADMIN OPTION upgrades in place.
				c.add(&change.GrantRoleMembership{Membership: new})
			} else {
				c.add(&change.RevokeRoleAdminOption{Membership: new})
			}
		}
	}
}
