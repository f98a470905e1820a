package change

import (
	"errors"
	"strings"
	"testing"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/render"
)

func TestCreatePublicationSerialize(t *testing.T) {
	pub := &catalog.Publication{
		Name:       "app_pub",
		Tables:     []string{"public.users", "public.orders"},
		Operations: []string{"insert", "update", "delete"},
	}
	sql := mustSerialize(t, &CreatePublication{Publication: pub})
	want := "CREATE PUBLICATION app_pub FOR TABLE public.users, public.orders WITH (publish = 'insert, update, delete')"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestCreatePublicationAllTables(t *testing.T) {
	pub := &catalog.Publication{Name: "everything", AllTables: true, ViaRoot: true}
	sql := mustSerialize(t, &CreatePublication{Publication: pub})
	want := "CREATE PUBLICATION everything FOR ALL TABLES WITH (publish_via_partition_root = true)"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestCreatePublicationConflictingShape(t *testing.T) {
	pub := &catalog.Publication{Name: "bad", AllTables: true, Tables: []string{"public.t"}}
	if _, err := (&CreatePublication{Publication: pub}).Serialize(render.DefaultOptions()); !errors.Is(err, ErrInvalidChange) {
		t.Errorf("expected ErrInvalidChange, got %v", err)
	}
}

func TestAlterPublicationTableMembership(t *testing.T) {
	ch := &AlterPublication{
		Publication: &catalog.Publication{Name: "app_pub"},
		AddTables:   []string{"public.invoices"},
		DropTables:  []string{"public.legacy"},
	}
	sql := mustSerialize(t, ch)
	// Drops come first so a rename never has both entries live at once.
	wantFirst := "ALTER PUBLICATION app_pub DROP TABLE public.legacy"
	wantSecond := "ALTER PUBLICATION app_pub ADD TABLE public.invoices"
	parts := strings.Split(sql, ";\n")
	if len(parts) != 2 || parts[0] != wantFirst || parts[1] != wantSecond {
		t.Errorf("got %q", sql)
	}
}

func TestAlterPublicationSetParameters(t *testing.T) {
	ch := &AlterPublication{
		Publication:   &catalog.Publication{Name: "app_pub", Operations: []string{"insert"}},
		SetOperations: true,
	}
	sql := mustSerialize(t, ch)
	if sql != "ALTER PUBLICATION app_pub SET (publish = 'insert')" {
		t.Errorf("got %q", sql)
	}
}

func TestCreateSubscriptionSerialize(t *testing.T) {
	sub := &catalog.Subscription{
		Name:         "mirror",
		Connection:   "host=primary dbname=app",
		Publications: []string{"app_pub"},
		Enabled:      true,
	}
	sql := mustSerialize(t, &CreateSubscription{Subscription: sub})
	want := "CREATE SUBSCRIPTION mirror\n" +
		"    CONNECTION 'host=primary dbname=app'\n" +
		"    PUBLICATION app_pub"
	if sql != want {
		t.Errorf("got:\n%s\nwant:\n%s", sql, want)
	}
}

func TestCreateSubscriptionDisabledWithSlot(t *testing.T) {
	sub := &catalog.Subscription{
		Name:         "mirror",
		Connection:   "host=primary dbname=app",
		Publications: []string{"app_pub"},
		SlotName:     "mirror_slot",
	}
	sql := mustSerialize(t, &CreateSubscription{Subscription: sub})
	if !strings.Contains(sql, "WITH (enabled = false, slot_name = 'mirror_slot')") {
		t.Errorf("missing WITH parameters:\n%s", sql)
	}
}

func TestAlterSubscription(t *testing.T) {
	sub := &catalog.Subscription{
		Name:         "mirror",
		Connection:   "host=replica dbname=app",
		Publications: []string{"app_pub", "audit_pub"},
		Enabled:      false,
	}
	ch := &AlterSubscription{Subscription: sub, SetConnection: true, SetPublications: true, SetEnabled: true}
	sql := mustSerialize(t, ch)
	parts := strings.Split(sql, ";\n")
	if len(parts) != 3 {
		t.Fatalf("expected 3 statements, got %q", sql)
	}
	if parts[0] != "ALTER SUBSCRIPTION mirror CONNECTION 'host=replica dbname=app'" {
		t.Errorf("got %q", parts[0])
	}
	if parts[1] != "ALTER SUBSCRIPTION mirror SET PUBLICATION app_pub, audit_pub" {
		t.Errorf("got %q", parts[1])
	}
	if parts[2] != "ALTER SUBSCRIPTION mirror DISABLE" {
		t.Errorf("got %q", parts[2])
	}
}

func TestPublicationRequiresTables(t *testing.T) {
	pub := &catalog.Publication{Name: "app_pub", Tables: []string{"public.users"}}
	ch := &CreatePublication{Publication: pub}
	found := false
	for _, id := range ch.Requires() {
		if id == catalog.TableID("public", "users") {
			found = true
		}
	}
	if !found {
		t.Error("publication does not require its member tables")
	}
}
