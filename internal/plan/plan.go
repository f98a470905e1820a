// Package plan linearizes a set of changes into an executable script.
// Ordering is derived purely from the stable-ID edges changes expose;
// ties are broken deterministically so identical inputs always produce
// byte-identical scripts.
package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pgdelta/pgdelta/internal/change"
	"github.com/pgdelta/pgdelta/internal/render"
)

// CycleError reports an unresolvable dependency cycle. Cycles between
// tables never occur because foreign keys are always split out of CREATE
// TABLE; a cycle here means the snapshots describe mutually dependent
// objects that no statement order can satisfy.
type CycleError struct {
	IDs []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle involving %s", strings.Join(e.IDs, ", "))
}

// Step is one ordered change with its rendered SQL.
type Step struct {
	ObjectType change.ObjectType `json:"object_type"`
	Operation  change.Operation  `json:"operation"`
	Scope      change.Scope      `json:"scope"`
	SQL        string            `json:"sql"`
}

// Hooks customize script generation. Filter drops a change before
// rendering when it returns false. Serializer overrides rendering for the
// changes it recognizes (secret masking); returning false falls through to
// the change's own Serialize. Hooks never mutate changes.
type Hooks struct {
	Filter     func(change.Change) bool
	Serializer func(change.Change, render.Options) (string, bool, error)
}

// Plan holds an ordered change list.
type Plan struct {
	Changes []change.Change
}

// New orders changes so that every statement's requirements hold when it
// runs:
//
//  1. a change requiring X runs after the change creating X,
//  2. a change requiring X runs before the change dropping X,
//  3. when one ID is dropped and re-created, the drop runs first; drops
//     requiring X then follow rule 2 only, everything else rule 1 only.
func New(changes []change.Change) (*Plan, error) {
	ordered, err := order(changes)
	if err != nil {
		return nil, err
	}
	return &Plan{Changes: ordered}, nil
}

// Steps renders the ordered changes, applying hooks.
func (p *Plan) Steps(opts render.Options, hooks *Hooks) ([]Step, error) {
	steps := make([]Step, 0, len(p.Changes))
	for _, ch := range p.Changes {
		if hooks != nil && hooks.Filter != nil && !hooks.Filter(ch) {
			continue
		}
		var sql string
		var handled bool
		var err error
		if hooks != nil && hooks.Serializer != nil {
			sql, handled, err = hooks.Serializer(ch, opts)
			if err != nil {
				return nil, fmt.Errorf("serializing %s %s: %w", ch.Operation(), ch.ObjectType(), err)
			}
		}
		if !handled {
			sql, err = ch.Serialize(opts)
			if err != nil {
				return nil, fmt.Errorf("serializing %s %s: %w", ch.Operation(), ch.ObjectType(), err)
			}
		}
		steps = append(steps, Step{
			ObjectType: ch.ObjectType(),
			Operation:  ch.Operation(),
			Scope:      ch.Scope(),
			SQL:        sql,
		})
	}
	return steps, nil
}

// Script renders the full SQL script.
func (p *Plan) Script(opts render.Options, hooks *Hooks) (string, error) {
	steps, err := p.Steps(opts, hooks)
	if err != nil {
		return "", err
	}
	if len(steps) == 0 {
		return "", nil
	}
	var b strings.Builder
	for i, s := range steps {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s.SQL)
		b.WriteString(";\n")
	}
	return b.String(), nil
}

// kindRank orders object kinds in natural creation order; it only breaks
// ties the dependency graph leaves open.
var kindRank = map[change.ObjectType]int{
	change.ObjectTypeRole:               0,
	change.ObjectTypeSchema:             1,
	change.ObjectTypeExtension:          2,
	change.ObjectTypeCollation:          3,
	change.ObjectTypeType:               4,
	change.ObjectTypeSequence:           5,
	change.ObjectTypeFunction:           6,
	change.ObjectTypeProcedure:          7,
	change.ObjectTypeAggregate:          8,
	change.ObjectTypeTable:              9,
	change.ObjectTypeConstraint:         10,
	change.ObjectTypeIndex:              11,
	change.ObjectTypeView:               12,
	change.ObjectTypeMaterializedView:   13,
	change.ObjectTypeTrigger:            14,
	change.ObjectTypeRule:               15,
	change.ObjectTypePolicy:             16,
	change.ObjectTypeEventTrigger:       17,
	change.ObjectTypeForeignDataWrapper: 18,
	change.ObjectTypeForeignServer:      19,
	change.ObjectTypeUserMapping:        20,
	change.ObjectTypeForeignTable:       21,
	change.ObjectTypePublication:        22,
	change.ObjectTypeSubscription:       23,
}

var scopeRank = map[change.Scope]int{
	change.ScopeObject:           0,
	change.ScopeMembership:       1,
	change.ScopeComment:          2,
	change.ScopePrivilege:        3,
	change.ScopeDefaultPrivilege: 4,
}

// primaryID picks the stable ID a change is "about", for tie-breaking and
// cycle reporting.
func primaryID(ch change.Change) string {
	if ids := ch.Creates(); len(ids) > 0 {
		return ids[0]
	}
	if ids := ch.Drops(); len(ids) > 0 {
		return ids[0]
	}
	if ids := ch.Requires(); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// sortKey builds the deterministic tie-break key: creates and alters
// first in kind order, unconstrained drops last.
func sortKey(ch change.Change) string {
	opRank := 0
	if ch.Operation() == change.OperationDrop {
		opRank = 1
	}
	return fmt.Sprintf("%d|%02d|%d|%s", opRank, kindRank[ch.ObjectType()], scopeRank[ch.Scope()], primaryID(ch))
}

type node struct {
	change change.Change
	key    string
}

// order runs Kahn's algorithm over the creates/drops/requires graph with a
// sorted ready queue.
func order(changes []change.Change) ([]change.Change, error) {
	nodes := make([]node, len(changes))
	for i, ch := range changes {
		nodes[i] = node{change: ch, key: sortKey(ch)}
	}

	creators := map[string][]int{}
	droppers := map[string][]int{}
	for i, ch := range changes {
		for _, id := range ch.Creates() {
			creators[id] = append(creators[id], i)
		}
		for _, id := range ch.Drops() {
			droppers[id] = append(droppers[id], i)
		}
	}

	succ := make([][]int, len(changes))
	indegree := make([]int, len(changes))
	addEdge := func(from, to int) {
		if from == to {
			return
		}
		succ[from] = append(succ[from], to)
		indegree[to]++
	}

	for i, ch := range changes {
		isDrop := ch.Operation() == change.OperationDrop
		for _, id := range ch.Requires() {
			// The creator of a requirement runs first; its dropper runs
			// after every change still needing it. When the requirement is
			// dropped and re-created, only one of the two edges applies:
			// drops operate on the old object and run before its drop,
			// everything else needs the new object and runs after its
			// re-create. Keeping both edges would close a cycle through
			// the drop-before-create rule.
			replaced := len(creators[id]) > 0 && len(droppers[id]) > 0
			if !isDrop || !replaced {
				for _, p := range creators[id] {
					addEdge(p, i)
				}
			}
			if isDrop || !replaced {
				for _, d := range droppers[id] {
					addEdge(i, d)
				}
			}
		}
	}
	// Replaced IDs: the drop runs before the re-create.
	for id, ps := range creators {
		for _, d := range droppers[id] {
			for _, p := range ps {
				addEdge(d, p)
			}
		}
	}

	less := func(a, b int) bool {
		if nodes[a].key != nodes[b].key {
			return nodes[a].key < nodes[b].key
		}
		return a < b
	}
	var ready []int
	for i := range nodes {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return less(ready[i], ready[j]) })

	ordered := make([]change.Change, 0, len(changes))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		ordered = append(ordered, nodes[i].change)
		for _, next := range succ[i] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = insertSorted(ready, next, less)
			}
		}
	}

	if len(ordered) != len(changes) {
		var stuck []string
		for i := range nodes {
			if indegree[i] > 0 {
				stuck = append(stuck, primaryID(nodes[i].change))
			}
		}
		sort.Strings(stuck)
		return nil, &CycleError{IDs: stuck}
	}
	return ordered, nil
}

// insertSorted places idx into the ready queue keeping it sorted.
func insertSorted(ready []int, idx int, less func(a, b int) bool) []int {
	at := sort.Search(len(ready), func(k int) bool { return less(idx, ready[k]) })
	ready = append(ready, 0)
	copy(ready[at+1:], ready[at:])
	ready[at] = idx
	return ready
}
