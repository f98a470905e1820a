package diff

import (
	"sort"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
)

// sortedKeys returns a map's keys in sorted order so diff emission never
// depends on map iteration order.
func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// unionKeys returns the sorted union of two maps' keys.
func unionKeys[T any](a, b map[string]T) []string {
	seen := make(map[string]bool, len(a)+len(b))
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		seen[k] = true
		keys = append(keys, k)
	}
	for k := range b {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// optionDelta computes the minimal SET/RESET lists turning one flat
// key/value pair list into another. Keys are emitted in sorted order.
func optionDelta(oldPairs, newPairs []string) (set []change.Option, reset []string) {
	oldMap, newMap := catalog.OptionMap(oldPairs), catalog.OptionMap(newPairs)
	for _, k := range catalog.OptionKeys(newMap) {
		if oldV, ok := oldMap[k]; !ok || oldV != newMap[k] {
			set = append(set, change.Option{Key: k, Value: newMap[k]})
		}
	}
	for _, k := range catalog.OptionKeys(oldMap) {
		if _, ok := newMap[k]; !ok {
			reset = append(reset, k)
		}
	}
	return set, reset
}

// optionReconcile computes the ADD/SET/DROP lists for OPTIONS clauses,
// which distinguish adding a new key from changing an existing one.
func optionReconcile(oldPairs, newPairs []string) (add, set []change.Option, drop []string) {
	oldMap, newMap := catalog.OptionMap(oldPairs), catalog.OptionMap(newPairs)
	for _, k := range catalog.OptionKeys(newMap) {
		oldV, ok := oldMap[k]
		switch {
		case !ok:
			add = append(add, change.Option{Key: k, Value: newMap[k]})
		case oldV != newMap[k]:
			set = append(set, change.Option{Key: k, Value: newMap[k]})
		}
	}
	for _, k := range catalog.OptionKeys(oldMap) {
		if _, ok := newMap[k]; !ok {
			drop = append(drop, k)
		}
	}
	return add, set, drop
}

// diffComment emits the comment sub-change for one object, comparing the
// old and new comment text. Keyword and name are the COMMENT ON target.
func (c *context) diffComment(target change.ObjectType, keyword, name, ownerID, oldComment, newComment string) {
	switch {
	case oldComment == newComment:
	case newComment != "":
		c.add(&change.SetComment{
			Target:  target,
			Keyword: keyword,
			Name:    name,
			OwnerID: ownerID,
			Comment: newComment,
		})
	default:
		c.add(&change.DropComment{
			Target:  target,
			Keyword: keyword,
			Name:    name,
			OwnerID: ownerID,
		})
	}
}

// createComment emits the comment sub-change for a newly created object.
func (c *context) createComment(target change.ObjectType, keyword, name, ownerID, comment string) {
	c.diffComment(target, keyword, name, ownerID, "", comment)
}
