package diff

import (
	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
)

// sequenceOwned reports whether a sequence belongs to an identity or
// serial column. The table diff implies the lifecycle of owned sequences,
// so the sequence diff never touches them.
func sequenceOwned(s *catalog.Sequence) bool {
	return s.OwnedByTable != ""
}

func (c *context) diffSequences() {
	for _, id := range unionKeys(c.main.Sequences, c.branch.Sequences) {
		old, inMain := c.main.Sequences[id]
		new, inBranch := c.branch.Sequences[id]
		switch {
		case !inMain:
			if sequenceOwned(new) {
				continue
			}
			c.add(&change.CreateSequence{Sequence: new})
			c.createComment(change.ObjectTypeSequence, "SEQUENCE", change.Qualified(new.Schema, new.Name), id, new.Comment)
		case !inBranch:
			if sequenceOwned(old) {
				continue
			}
			c.add(&change.DropSequence{Sequence: old})
		default:
			if sequenceOwned(old) || sequenceOwned(new) {
				continue
			}
			alter := &change.AlterSequence{Sequence: new}
			if old.DataType != new.DataType {
				alter.SetDataType = true
			}
			if old.Increment != new.Increment {
				alter.SetIncrement = true
			}
			if !int64PtrEqual(old.MinValue, new.MinValue) {
				alter.SetMinValue = true
			}
			if !int64PtrEqual(old.MaxValue, new.MaxValue) {
				alter.SetMaxValue = true
			}
			if old.Start != new.Start {
				alter.SetStart = true
			}
			if old.Cache != new.Cache {
				alter.SetCache = true
			}
			if old.Cycle != new.Cycle {
				alter.SetCycle = true
			}
			if alter.SetDataType || alter.SetIncrement || alter.SetMinValue || alter.SetMaxValue ||
				alter.SetStart || alter.SetCache || alter.SetCycle {
				c.add(alter)
			}
			if old.Owner != new.Owner && new.Owner != "" {
				c.add(&change.AlterSequenceOwner{Schema: new.Schema, Name: new.Name, Owner: new.Owner})
			}
			c.diffComment(change.ObjectTypeSequence, "SEQUENCE", change.Qualified(new.Schema, new.Name), id, old.Comment, new.Comment)
		}
	}
}

func int64PtrEqual(a, b *int64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
