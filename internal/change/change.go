package change

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/pgdelta/pgdelta/internal/render"
)

// ObjectType tags the database object kind a change applies to.
type ObjectType string

const (
	ObjectTypeSchema             ObjectType = "schema"
	ObjectTypeExtension          ObjectType = "extension"
	ObjectTypeCollation          ObjectType = "collation"
	ObjectTypeRole               ObjectType = "role"
	ObjectTypeType               ObjectType = "type"
	ObjectTypeTable              ObjectType = "table"
	ObjectTypeConstraint         ObjectType = "constraint"
	ObjectTypeIndex              ObjectType = "index"
	ObjectTypeSequence           ObjectType = "sequence"
	ObjectTypeView               ObjectType = "view"
	ObjectTypeMaterializedView   ObjectType = "materialized_view"
	ObjectTypeFunction           ObjectType = "function"
	ObjectTypeProcedure          ObjectType = "procedure"
	ObjectTypeAggregate          ObjectType = "aggregate"
	ObjectTypeTrigger            ObjectType = "trigger"
	ObjectTypeRule               ObjectType = "rule"
	ObjectTypePolicy             ObjectType = "policy"
	ObjectTypeEventTrigger       ObjectType = "event_trigger"
	ObjectTypePublication        ObjectType = "publication"
	ObjectTypeSubscription       ObjectType = "subscription"
	ObjectTypeForeignDataWrapper ObjectType = "foreign_data_wrapper"
	ObjectTypeForeignServer      ObjectType = "foreign_server"
	ObjectTypeUserMapping        ObjectType = "user_mapping"
	ObjectTypeForeignTable       ObjectType = "foreign_table"
)

// Operation is the DDL verb.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationAlter  Operation = "alter"
	OperationDrop   Operation = "drop"
)

// Scope distinguishes first-class object changes from dependent
// sub-changes.
type Scope string

const (
	ScopeObject           Scope = "object"
	ScopeComment          Scope = "comment"
	ScopePrivilege        Scope = "privilege"
	ScopeMembership       Scope = "membership"
	ScopeDefaultPrivilege Scope = "default_privilege"
)

// ErrInvalidChange is wrapped by errors reported for changes whose
// construction arguments cannot be expressed as a single SQL statement.
// Such errors signal a bug in the diff function that built the change, not
// a recoverable runtime condition.
var ErrInvalidChange = errors.New("invalid change")

// Change is one unit of DDL. Creates lists stable IDs that exist only
// after the statement runs, Drops lists IDs that cease to exist, and
// Requires lists IDs that must still exist when it runs. The ordering
// engine consumes those edges; Serialize produces the statement text
// without a trailing separator.
type Change interface {
	ObjectType() ObjectType
	Operation() Operation
	Scope() Scope
	Creates() []string
	Drops() []string
	Requires() []string
	Serialize(opts render.Options) (string, error)
}

// invalidf builds an ErrInvalidChange error.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidChange}, args...)...)
}

// reservedIdents are names that would parse as keywords if left bare.
// Add more as needed.
var reservedIdents = map[string]bool{
	"user":   true,
	"order":  true,
	"group":  true,
	"select": true,
	"from":   true,
	"where":  true,
	"table":  true,
}

// quoteIdent quotes an identifier only when it is not a plain lower-case
// name, keeping generated SQL close to what people write by hand.
func quoteIdent(name string) string {
	if isSafeIdent(name) {
		return name
	}
	return pq.QuoteIdentifier(name)
}

func isSafeIdent(name string) bool {
	if name == "" || reservedIdents[name] {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// qualify renders a schema-qualified name.
func qualify(schema, name string) string {
	if schema == "" {
		return quoteIdent(name)
	}
	return quoteIdent(schema) + "." + quoteIdent(name)
}

// quoteLiteral renders a SQL string literal.
func quoteLiteral(s string) string {
	return pq.QuoteLiteral(s)
}

// kw renders a keyword per options.
func kw(opts render.Options, s string) string {
	return opts.Keyword(s)
}

// joinKeywords renders a space-joined keyword phrase.
func joinKeywords(opts render.Options, words ...string) string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = opts.Keyword(w)
	}
	return strings.Join(out, " ")
}
