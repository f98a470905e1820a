package change

import (
	"errors"
	"testing"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

func TestSetComment(t *testing.T) {
	ch := &SetComment{
		Target:  ObjectTypeTable,
		Keyword: "TABLE",
		Name:    "public.users",
		OwnerID: catalog.TableID("public", "users"),
		Comment: "Registered accounts",
	}
	sql := mustSerialize(t, ch)
	if sql != "COMMENT ON TABLE public.users IS 'Registered accounts'" {
		t.Errorf("got %q", sql)
	}
	if ch.Requires()[0] != catalog.TableID("public", "users") {
		t.Error("comment does not require its object")
	}
	if ch.Creates()[0] != catalog.CommentID(catalog.TableID("public", "users")) {
		t.Error("comment ID is not derived from the owner ID")
	}
}

func TestSetCommentEscapesQuotes(t *testing.T) {
	ch := &SetComment{
		Target:  ObjectTypeTable,
		Keyword: "COLUMN",
		Name:    "public.users.email",
		OwnerID: catalog.ColumnID("public", "users", "email"),
		Comment: "the user's address",
	}
	sql := mustSerialize(t, ch)
	if sql != "COMMENT ON COLUMN public.users.email IS 'the user''s address'" {
		t.Errorf("got %q", sql)
	}
}

func TestDropComment(t *testing.T) {
	ch := &DropComment{
		Target:  ObjectTypeView,
		Keyword: "VIEW",
		Name:    "public.active_users",
		OwnerID: catalog.ViewID("public", "active_users"),
	}
	if sql := mustSerialize(t, ch); sql != "COMMENT ON VIEW public.active_users IS NULL" {
		t.Errorf("got %q", sql)
	}
}

func TestSetCommentInvalid(t *testing.T) {
	empty := &SetComment{Target: ObjectTypeTable, Keyword: "TABLE", Name: "public.t"}
	if _, err := empty.Serialize(render.DefaultOptions()); !errors.Is(err, ErrInvalidChange) {
		t.Errorf("expected ErrInvalidChange, got %v", err)
	}
	noTarget := &SetComment{Comment: "x"}
	if _, err := noTarget.Serialize(render.DefaultOptions()); !errors.Is(err, ErrInvalidChange) {
		t.Errorf("expected ErrInvalidChange, got %v", err)
	}
}
