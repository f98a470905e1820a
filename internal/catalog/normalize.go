package catalog

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// SQL text reported by the catalog can differ cosmetically between
// snapshots (whitespace, casing, redundant parentheses, default clauses
// spelled out) without any semantic change. Comparison goes through query
// fingerprinting so those differences never produce a diff.

// StatementsEquivalent reports whether two SQL statements are semantically
// equivalent. Falls back to exact string comparison when either side does
// not parse.
func StatementsEquivalent(a, b string) bool {
	if a == b {
		return true
	}
	fa, errA := pg_query.Fingerprint(a)
	fb, errB := pg_query.Fingerprint(b)
	if errA != nil || errB != nil {
		return false
	}
	return fa == fb
}

// ExpressionsEquivalent reports whether two scalar SQL expressions (policy
// predicates, check clauses, generation expressions) are semantically
// equivalent.
func ExpressionsEquivalent(a, b string) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	return StatementsEquivalent("SELECT "+a, "SELECT "+b)
}
