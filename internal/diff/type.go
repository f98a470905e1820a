package diff

import (
	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
)

func typeCommentKeyword(t *catalog.Type) string {
	if t.Kind == catalog.TypeKindDomain {
		return "DOMAIN"
	}
	return "TYPE"
}

func typeAttributesEqual(a, b []catalog.TypeAttribute) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func domainConstraintsEqual(a, b []catalog.DomainConstraint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !catalog.ExpressionsEquivalent(a[i].Check, b[i].Check) {
			return false
		}
	}
	return true
}

// typeDefinitionEqual compares the non-enum data fields of a type.
func typeDefinitionEqual(a, b *catalog.Type) bool {
	return typeAttributesEqual(a.Attributes, b.Attributes) &&
		a.BaseType == b.BaseType &&
		a.NotNull == b.NotNull &&
		catalog.ExpressionsEquivalent(a.Default, b.Default) &&
		domainConstraintsEqual(a.Constraints, b.Constraints) &&
		a.Subtype == b.Subtype &&
		a.SubtypeOpClass == b.SubtypeOpClass &&
		a.RangeCollation == b.RangeCollation
}

// isSubsequence reports whether sub appears within seq in order.
func isSubsequence(sub, seq []string) bool {
	i := 0
	for _, v := range seq {
		if i < len(sub) && sub[i] == v {
			i++
		}
	}
	return i == len(sub)
}

// addEnumValues emits ADD VALUE changes for values present in new but not
// old, anchored so the final order matches. Callers ensure old is a
// subsequence of new.
func (c *context) addEnumValues(t *catalog.Type, oldValues, newValues []string) {
	idx := 0
	for i, v := range newValues {
		if idx < len(oldValues) && oldValues[idx] == v {
			idx++
			continue
		}
		add := &change.AlterTypeAddEnumValue{Schema: t.Schema, Name: t.Name, Value: v}
		if idx < len(oldValues) {
			add.Before = oldValues[idx]
		} else if i > 0 {
			add.After = newValues[i-1]
		}
		c.add(add)
	}
}

func (c *context) replaceType(old, new *catalog.Type, id string) {
	c.add(&change.DropType{Type: old})
	c.add(&change.CreateType{Type: new})
	c.createComment(change.ObjectTypeType, typeCommentKeyword(new), change.Qualified(new.Schema, new.Name), id, new.Comment)
}

func (c *context) diffTypes() {
	for _, id := range unionKeys(c.main.Types, c.branch.Types) {
		old, inMain := c.main.Types[id]
		new, inBranch := c.branch.Types[id]
		switch {
		case !inMain:
			c.add(&change.CreateType{Type: new})
			c.createComment(change.ObjectTypeType, typeCommentKeyword(new), change.Qualified(new.Schema, new.Name), id, new.Comment)
		case !inBranch:
			c.add(&change.DropType{Type: old})
		default:
			if old.Kind != new.Kind {
				c.replaceType(old, new, id)
				continue
			}
			if new.Kind == catalog.TypeKindEnum {
				if !catalog.StringSlicesEqual(old.EnumValues, new.EnumValues) {
					// Enums only grow in place; removals and reorders replace
					// the type.
					if isSubsequence(old.EnumValues, new.EnumValues) {
						c.addEnumValues(new, old.EnumValues, new.EnumValues)
					} else {
						c.replaceType(old, new, id)
						continue
					}
				}
			} else if !typeDefinitionEqual(old, new) {
				c.replaceType(old, new, id)
				continue
			}
			if old.Owner != new.Owner && new.Owner != "" {
				c.add(&change.AlterTypeOwner{Schema: new.Schema, Name: new.Name, Owner: new.Owner})
			}
			c.diffComment(change.ObjectTypeType, typeCommentKeyword(new), change.Qualified(new.Schema, new.Name), id, old.Comment, new.Comment)
		}
	}
}
