package change

import (
	"fmt"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

// SetComment sets or replaces the comment on any object. Keyword is the
// COMMENT ON object class ("TABLE", "COLUMN", "FUNCTION", ...) and Name
// the already-rendered object name including any schema qualification or
// signature.
type SetComment struct {
	Target  ObjectType
	Keyword string
	Name    string
	OwnerID string // stable ID of the commented object
	Comment string
}

func (c *SetComment) ObjectType() ObjectType { return c.Target }
func (c *SetComment) Operation() Operation   { return OperationCreate }
func (c *SetComment) Scope() Scope           { return ScopeComment }

func (c *SetComment) Creates() []string {
	return []string{catalog.CommentID(c.OwnerID)}
}

func (c *SetComment) Drops() []string { return nil }

func (c *SetComment) Requires() []string {
	return []string{c.OwnerID}
}

func (c *SetComment) Serialize(opts render.Options) (string, error) {
	if c.Keyword == "" || c.Name == "" {
		return "", invalidf("comment change on %s has no target", c.OwnerID)
	}
	if c.Comment == "" {
		return "", invalidf("comment change on %s %s has empty text", c.Keyword, c.Name)
	}
	return fmt.Sprintf("%s %s %s %s %s",
		kw(opts, "COMMENT ON"), kw(opts, c.Keyword), c.Name,
		kw(opts, "IS"), quoteLiteral(c.Comment)), nil
}

// DropComment removes the comment on any object.
type DropComment struct {
	Target  ObjectType
	Keyword string
	Name    string
	OwnerID string
}

func (c *DropComment) ObjectType() ObjectType { return c.Target }
func (c *DropComment) Operation() Operation   { return OperationDrop }
func (c *DropComment) Scope() Scope           { return ScopeComment }
func (c *DropComment) Creates() []string      { return nil }

func (c *DropComment) Drops() []string {
	return []string{catalog.CommentID(c.OwnerID)}
}

func (c *DropComment) Requires() []string {
	return []string{c.OwnerID}
}

func (c *DropComment) Serialize(opts render.Options) (string, error) {
	if c.Keyword == "" || c.Name == "" {
		return "", invalidf("comment change on %s has no target", c.OwnerID)
	}
	return fmt.Sprintf("%s %s %s %s %s",
		kw(opts, "COMMENT ON"), kw(opts, c.Keyword), c.Name,
		kw(opts, "IS"), kw(opts, "NULL")), nil
}
