package catalog

import "sort"

// Options from pg_catalog arrive as flat [key1, value1, key2, value2, ...]
// pair lists (reloptions, fdwoptions, srvoptions, umoptions, ftoptions).
// Diff functions compare them as maps so reordering never produces a change.

// OptionMap converts a flat pair list into a key -> value map. A trailing
// key without a value maps to the empty string.
func OptionMap(pairs []string) map[string]string {
	m := make(map[string]string, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		if i+1 < len(pairs) {
			m[pairs[i]] = pairs[i+1]
		} else {
			m[pairs[i]] = ""
		}
	}
	return m
}

// OptionKeys returns the sorted keys of an option map.
func OptionKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OptionsEqual reports whether two flat pair lists describe the same
// key/value set, ignoring order.
func OptionsEqual(a, b []string) bool {
	am, bm := OptionMap(a), OptionMap(b)
	if len(am) != len(bm) {
		return false
	}
	for k, v := range am {
		if bv, ok := bm[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// StringSlicesEqual reports whether two slices are element-wise equal.
// Order matters; enum values and publication operation lists are ordered.
func StringSlicesEqual(a, b []string) bool {
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

// StringSetsEqual reports whether two slices contain the same elements
// regardless of order. Used for role lists and privilege sets.
func StringSetsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// StringPtrEqual reports whether two optional strings are equal.
func StringPtrEqual(a, b *string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

// IntPtrEqual reports whether two optional ints are equal.
func IntPtrEqual(a, b *int) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
