package diff

import (
	"sort"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
)

// splitByGrantable partitions a grant list into plain and grant-option
// groups, each sorted by privilege name. One GRANT statement cannot mix
// the two.
func splitByGrantable(grants []catalog.PrivilegeGrant) (plain, grantable []catalog.PrivilegeGrant) {
	for _, g := range grants {
		if g.Grantable {
			grantable = append(grantable, g)
		} else {
			plain = append(plain, g)
		}
	}
	sort.Slice(plain, func(i, j int) bool { return plain[i].Name < plain[j].Name })
	sort.Slice(grantable, func(i, j int) bool { return grantable[i].Name < grantable[j].Name })
	return plain, grantable
}

func grantMap(grants []catalog.PrivilegeGrant) map[string]bool {
	m := make(map[string]bool, len(grants))
	for _, g := range grants {
		m[g.Name] = g.Grantable
	}
	return m
}

func sortedGrantNames(m map[string]bool) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// grantEntry emits the GRANT statements establishing one ACL entry.
func (c *context) grantEntry(p *catalog.Privilege) {
	plain, grantable := splitByGrantable(p.Grants)
	entry := true
	if len(plain) > 0 {
		c.add(&change.GrantPrivileges{Privilege: p, Grants: plain, ServerVersion: c.serverVersion, Entry: entry})
		entry = false
	}
	if len(grantable) > 0 {
		c.add(&change.GrantPrivileges{Privilege: p, Grants: grantable, ServerVersion: c.serverVersion, Entry: entry})
	}
}

// reconcileGrants emits the minimal GRANT/REVOKE set turning one grant
// list into another for an existing ACL entry.
func (c *context) reconcileGrants(p *catalog.Privilege, oldGrants, newGrants []catalog.PrivilegeGrant) {
	oldMap := grantMap(oldGrants)
	newMap := grantMap(newGrants)

	var removed []catalog.PrivilegeGrant
	var downgraded []catalog.PrivilegeGrant
	for _, n := range sortedGrantNames(oldMap) {
		newGrantable, ok := newMap[n]
		switch {
		case !ok:
			removed = append(removed, catalog.PrivilegeGrant{Name: n, Grantable: oldMap[n]})
		case oldMap[n] && !newGrantable:
			downgraded = append(downgraded, catalog.PrivilegeGrant{Name: n, Grantable: true})
		}
	}
	var added []catalog.PrivilegeGrant
	for _, n := range sortedGrantNames(newMap) {
		oldGrantable, ok := oldMap[n]
		if !ok || (!oldGrantable && newMap[n]) {
			added = append(added, catalog.PrivilegeGrant{Name: n, Grantable: newMap[n]})
		}
	}

	if len(removed) > 0 {
		c.add(&change.RevokePrivileges{Privilege: p, Grants: removed, ServerVersion: c.serverVersion})
	}
	if len(downgraded) > 0 {
		c.add(&change.RevokePrivileges{Privilege: p, Grants: downgraded, ServerVersion: c.serverVersion, GrantOptionOnly: true})
	}
	if len(added) > 0 {
		plain, grantable := splitByGrantable(added)
		if len(plain) > 0 {
			c.add(&change.GrantPrivileges{Privilege: p, Grants: plain, ServerVersion: c.serverVersion})
		}
		if len(grantable) > 0 {
			c.add(&change.GrantPrivileges{Privilege: p, Grants: grantable, ServerVersion: c.serverVersion})
		}
	}
}

func (c *context) diffPrivileges() {
	for _, id := range unionKeys(c.main.Privileges, c.branch.Privileges) {
		old, inMain := c.main.Privileges[id]
		new, inBranch := c.branch.Privileges[id]
		switch {
		case !inMain:
			c.grantEntry(new)
		case !inBranch:
			// Dropping or replacing the object, or dropping the grantee,
			// removes the ACL entry.
			if c.objectDropped(old.ObjectID) || c.objectReplaced(old.ObjectID) || c.objectDropped(catalog.RoleID(old.Grantee)) {
				continue
			}
			grants := append([]catalog.PrivilegeGrant(nil), old.Grants...)
			sort.Slice(grants, func(i, j int) bool { return grants[i].Name < grants[j].Name })
			c.add(&change.RevokePrivileges{Privilege: old, Grants: grants, ServerVersion: c.serverVersion, Entry: true})
		default:
			if c.objectReplaced(new.ObjectID) {
				// A re-created object starts with an empty ACL.
				c.grantEntry(new)
				continue
			}
			if catalog.GrantsEqual(old.Grants, new.Grants) {
				continue
			}
			c.reconcileGrants(new, old.Grants, new.Grants)
		}
	}
}

// reconcileDefaultGrants handles default-privilege entries; grant-option
// flips are expressed as revoke plus re-grant.
func (c *context) reconcileDefaultGrants(d *catalog.DefaultPrivilege, oldGrants, newGrants []catalog.PrivilegeGrant) {
	oldMap := grantMap(oldGrants)
	newMap := grantMap(newGrants)

	var removed []catalog.PrivilegeGrant
	for _, n := range sortedGrantNames(oldMap) {
		if newGrantable, ok := newMap[n]; !ok || newGrantable != oldMap[n] {
			removed = append(removed, catalog.PrivilegeGrant{Name: n, Grantable: oldMap[n]})
		}
	}
	var added []catalog.PrivilegeGrant
	for _, n := range sortedGrantNames(newMap) {
		if oldGrantable, ok := oldMap[n]; !ok || oldGrantable != newMap[n] {
			added = append(added, catalog.PrivilegeGrant{Name: n, Grantable: newMap[n]})
		}
	}

	if len(removed) > 0 {
		c.add(&change.RevokeDefaultPrivileges{Default: d, Grants: removed, ServerVersion: c.serverVersion})
	}
	if len(added) > 0 {
		plain, grantable := splitByGrantable(added)
		if len(plain) > 0 {
			c.add(&change.GrantDefaultPrivileges{Default: d, Grants: plain, ServerVersion: c.serverVersion})
		}
		if len(grantable) > 0 {
			c.add(&change.GrantDefaultPrivileges{Default: d, Grants: grantable, ServerVersion: c.serverVersion})
		}
	}
}

func (c *context) diffDefaultPrivileges() {
	for _, id := range unionKeys(c.main.DefaultPrivileges, c.branch.DefaultPrivileges) {
		old, inMain := c.main.DefaultPrivileges[id]
		new, inBranch := c.branch.DefaultPrivileges[id]
		switch {
		case !inMain:
			plain, grantable := splitByGrantable(new.Grants)
			entry := true
			if len(plain) > 0 {
				c.add(&change.GrantDefaultPrivileges{Default: new, Grants: plain, ServerVersion: c.serverVersion, Entry: entry})
				entry = false
			}
			if len(grantable) > 0 {
				c.add(&change.GrantDefaultPrivileges{Default: new, Grants: grantable, ServerVersion: c.serverVersion, Entry: entry})
			}
		case !inBranch:
			if c.objectDropped(catalog.RoleID(old.Role)) || c.objectDropped(catalog.RoleID(old.Grantee)) {
				continue
			}
			grants := append([]catalog.PrivilegeGrant(nil), old.Grants...)
			sort.Slice(grants, func(i, j int) bool { return grants[i].Name < grants[j].Name })
			c.add(&change.RevokeDefaultPrivileges{Default: old, Grants: grants, ServerVersion: c.serverVersion, Entry: true})
		default:
			if catalog.GrantsEqual(old.Grants, new.Grants) {
				continue
			}
			c.reconcileDefaultGrants(new, old.Grants, new.Grants)
		}
	}
}
