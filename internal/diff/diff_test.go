package diff

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pgdelta/pgdelta/internal/catalog"
	"github.com/pgdelta/pgdelta/internal/change"
	"github.com/pgdelta/pgdelta/internal/render"
)

// fixture builds a catalog with one of everything so the no-change case
// covers every diff function.
func fixture() *catalog.Catalog {
	cat := catalog.New()
	cat.ServerVersion = 16

	app := &catalog.Role{Name: "app", Login: true, Inherit: true}
	readers := &catalog.Role{Name: "readers", Inherit: true}
	cat.Roles[app.StableID()] = app
	cat.Roles[readers.StableID()] = readers

	m := &catalog.RoleMembership{Role: "readers", Member: "app"}
	cat.Memberships[m.StableID()] = m

	public := &catalog.Schema{Name: "public", Owner: "app"}
	cat.Schemas[public.StableID()] = public

	ext := &catalog.Extension{Name: "pg_trgm", Schema: "public", Version: "1.6"}
	cat.Extensions[ext.StableID()] = ext

	status := &catalog.Type{
		Schema:     "public",
		Name:       "status",
		Kind:       catalog.TypeKindEnum,
		EnumValues: []string{"pending", "active"},
	}
	cat.Types[status.StableID()] = status

	seq := &catalog.Sequence{Schema: "public", Name: "order_seq", DataType: "bigint", Start: 1, Increment: 1}
	cat.Sequences[seq.StableID()] = seq

	email := "'x'"
	users := &catalog.Table{
		Schema: "public",
		Name:   "users",
		Owner:  "app",
		Columns: []*catalog.Column{
			{Name: "id", DataType: "bigint", NotNull: true, Identity: "ALWAYS"},
			{Name: "email", DataType: "text", NotNull: true, Default: &email},
			{Name: "state", DataType: "public.status"},
		},
		Constraints: map[string]*catalog.Constraint{
			"users_pkey": {
				Schema: "public", Table: "users", Name: "users_pkey",
				Type: catalog.ConstraintTypePrimaryKey, Columns: []string{"id"},
				Validated: true, BackingIndex: "users_pkey",
			},
		},
		Dependencies: []string{catalog.TypeID("public", "status")},
	}
	cat.Tables[users.StableID()] = users

	idx := &catalog.Index{
		Schema: "public", Table: "users", Name: "users_email_idx",
		Method:  "btree",
		Columns: []catalog.IndexColumn{{Expression: "email"}},
	}
	cat.Indexes[idx.StableID()] = idx

	v := &catalog.View{
		Schema:       "public",
		Name:         "active_users",
		Definition:   "SELECT id, email FROM users WHERE state = 'active'",
		Dependencies: []string{users.StableID()},
	}
	cat.Views[v.StableID()] = v

	fn := &catalog.Function{
		Schema: "public", Name: "touch", Arguments: "",
		Definition: "begin return new; end;", ReturnType: "trigger", Language: "plpgsql",
	}
	cat.Functions[fn.StableID()] = fn

	trg := &catalog.Trigger{
		Schema: "public", Table: "users", Name: "users_touch",
		Timing: "BEFORE", Events: []string{"UPDATE"}, Level: "ROW",
		Function: "public.touch()",
	}
	cat.Triggers[trg.StableID()] = trg

	pol := &catalog.Policy{
		Schema: "public", Table: "users", Name: "users_self",
		Command: "SELECT", Permissive: true, Roles: []string{"app"},
		Using: "id = current_setting('app.uid')::bigint",
	}
	cat.Policies[pol.StableID()] = pol

	pub := &catalog.Publication{Name: "app_pub", Tables: []string{"public.users"}, Operations: []string{"insert", "update"}}
	cat.Publications[pub.StableID()] = pub

	priv := &catalog.Privilege{
		ObjectType: catalog.PrivilegeObjectTable,
		ObjectID:   users.StableID(),
		ObjectName: "public.users",
		Grantee:    "readers",
		Grants:     []catalog.PrivilegeGrant{{Name: "SELECT"}},
	}
	cat.Privileges[priv.StableID()] = priv

	return cat
}

func changesOf[T change.Change](changes []change.Change) []T {
	var out []T
	for _, ch := range changes {
		if t, ok := ch.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

func describe(changes []change.Change) string {
	s := ""
	for _, ch := range changes {
		s += fmt.Sprintf("%T %s/%s\n", ch, ch.Operation(), ch.ObjectType())
	}
	return s
}

func TestDiffIdenticalCatalogs(t *testing.T) {
	changes := Diff(fixture(), fixture())
	if len(changes) != 0 {
		t.Errorf("identical catalogs produced %d changes:\n%s", len(changes), describe(changes))
	}
}

func TestDiffEmptyToFixture(t *testing.T) {
	changes := Diff(catalog.New(), fixture())
	if len(changes) == 0 {
		t.Fatal("no changes for a populated branch")
	}
	// Every first-class object must arrive exactly once.
	counts := map[string]int{}
	for _, ch := range changes {
		if ch.Scope() == change.ScopeObject && ch.Operation() == change.OperationCreate {
			counts[string(ch.ObjectType())]++
		}
	}
	want := map[string]int{
		"role": 2, "schema": 1, "extension": 1, "type": 1, "sequence": 1,
		"table": 1, "index": 1, "view": 1, "function": 1, "trigger": 1,
		"policy": 1, "publication": 1,
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("create counts mismatch (-want +got):\n%s\n%s", diff, describe(changes))
	}
}

func TestDiffAddColumn(t *testing.T) {
	main := fixture()
	branch := fixture()
	def := "'x'"
	users := branch.Tables[catalog.TableID("public", "users")]
	users.Columns = append(users.Columns, &catalog.Column{
		Name: "name", DataType: "text", NotNull: true, Default: &def,
	})

	changes := Diff(main, branch)
	adds := changesOf[*change.AlterTableAddColumn](changes)
	if len(changes) != 1 || len(adds) != 1 {
		t.Fatalf("expected a single ADD COLUMN, got:\n%s", describe(changes))
	}
	sql, err := adds[0].Serialize(render.DefaultOptions())
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}
	if sql != "ALTER TABLE public.users ADD COLUMN name text NOT NULL DEFAULT 'x'" {
		t.Errorf("got %q", sql)
	}
}

func TestDiffDropColumnAndNotNull(t *testing.T) {
	main := fixture()
	branch := fixture()
	users := branch.Tables[catalog.TableID("public", "users")]
	users.Columns = users.Columns[:2] // drop "state"
	users.Columns[1].NotNull = false  // email loses NOT NULL

	changes := Diff(main, branch)
	if n := len(changesOf[*change.AlterTableDropColumn](changes)); n != 1 {
		t.Errorf("expected 1 DROP COLUMN, got %d:\n%s", n, describe(changes))
	}
	nn := changesOf[*change.AlterTableSetColumnNotNull](changes)
	if len(nn) != 1 || nn[0].NotNull {
		t.Errorf("expected 1 DROP NOT NULL, got:\n%s", describe(changes))
	}
}

func TestDiffCreateTableSplitsForeignKeys(t *testing.T) {
	branch := fixture()
	orders := &catalog.Table{
		Schema:  "public",
		Name:    "orders",
		Columns: []*catalog.Column{{Name: "user_id", DataType: "bigint"}},
		Constraints: map[string]*catalog.Constraint{
			"orders_user_id_fkey": {
				Schema: "public", Table: "orders", Name: "orders_user_id_fkey",
				Type:              catalog.ConstraintTypeForeignKey,
				Columns:           []string{"user_id"},
				ReferencedSchema:  "public",
				ReferencedTable:   "users",
				ReferencedColumns: []string{"id"},
				Validated:         true,
			},
		},
	}
	branch.Tables[orders.StableID()] = orders

	changes := Diff(fixture(), branch)
	var sawCreate, sawAdd bool
	for _, ch := range changes {
		switch c := ch.(type) {
		case *change.CreateTable:
			sawCreate = true
		case *change.AddConstraint:
			if c.Constraint.Type == catalog.ConstraintTypeForeignKey {
				sawAdd = true
			}
		}
	}
	if !sawCreate || !sawAdd {
		t.Errorf("foreign key not split out of CREATE TABLE:\n%s", describe(changes))
	}
}

func TestDiffDropTableSuppressesSubObjects(t *testing.T) {
	main := fixture()
	branch := fixture()
	delete(branch.Tables, catalog.TableID("public", "users"))
	delete(branch.Indexes, catalog.IndexID("public", "users_email_idx"))
	delete(branch.Triggers, catalog.TriggerID("public", "users", "users_touch"))
	delete(branch.Policies, catalog.PolicyID("public", "users", "users_self"))
	delete(branch.Views, catalog.ViewID("public", "active_users"))
	delete(branch.Publications, catalog.PublicationID("app_pub"))
	for id, p := range branch.Privileges {
		if p.ObjectID == catalog.TableID("public", "users") {
			delete(branch.Privileges, id)
		}
	}

	changes := Diff(main, branch)
	for _, ch := range changes {
		switch ch.(type) {
		case *change.DropTable, *change.DropView, *change.DropPublication:
		default:
			t.Errorf("unexpected change alongside DROP TABLE: %T", ch)
		}
	}
	if n := len(changesOf[*change.DropTable](changes)); n != 1 {
		t.Errorf("expected 1 DROP TABLE, got %d", n)
	}
}

func TestDiffTableReplaceKeepsSubObjects(t *testing.T) {
	main := fixture()
	branch := fixture()
	stale := &catalog.Index{
		Schema: "public", Table: "users", Name: "users_stale_idx",
		Method:  "btree",
		Columns: []catalog.IndexColumn{{Expression: "id"}},
	}
	main.Indexes[stale.StableID()] = stale
	users := branch.Tables[catalog.TableID("public", "users")]
	users.PartitionStrategy = "HASH"
	users.PartitionKey = "id"

	changes := Diff(main, branch)
	if n := len(changesOf[*change.DropTable](changes)); n != 1 {
		t.Fatalf("expected 1 DROP TABLE, got %d:\n%s", n, describe(changes))
	}
	if n := len(changesOf[*change.CreateTable](changes)); n != 1 {
		t.Fatalf("expected 1 CREATE TABLE, got %d:\n%s", n, describe(changes))
	}
	// Surviving sub-objects go down with the old table and must come back.
	if n := len(changesOf[*change.CreateIndex](changes)); n != 1 {
		t.Errorf("expected the surviving index re-created, got %d:\n%s", n, describe(changes))
	}
	if n := len(changesOf[*change.CreateTrigger](changes)); n != 1 {
		t.Errorf("expected the surviving trigger re-created, got %d:\n%s", n, describe(changes))
	}
	if n := len(changesOf[*change.CreatePolicy](changes)); n != 1 {
		t.Errorf("expected the surviving policy re-created, got %d:\n%s", n, describe(changes))
	}
	if n := len(changesOf[*change.GrantPrivileges](changes)); n != 1 {
		t.Errorf("expected the table grants re-established, got %d:\n%s", n, describe(changes))
	}
	// Drops are absorbed by the table drop, including the main-only index.
	for _, ch := range changes {
		switch ch.(type) {
		case *change.DropIndex, *change.DropTrigger, *change.DropPolicy, *change.RevokePrivileges:
			t.Errorf("sub-object drop alongside table replacement: %T", ch)
		}
	}
}

func TestDiffMaterializedViewReplaceKeepsIndex(t *testing.T) {
	main := fixture()
	branch := fixture()
	for _, cat := range []*catalog.Catalog{main, branch} {
		mv := &catalog.MaterializedView{
			Schema:     "public",
			Name:       "daily_stats",
			Definition: "SELECT state, count(*) AS n FROM users GROUP BY state",
		}
		cat.MaterializedViews[mv.StableID()] = mv
		idx := &catalog.Index{
			Schema: "public", Table: "daily_stats", Name: "daily_stats_state_idx",
			Method:             "btree",
			Columns:            []catalog.IndexColumn{{Expression: "state"}},
			OnMaterializedView: true,
		}
		cat.Indexes[idx.StableID()] = idx
	}
	branch.MaterializedViews[catalog.MaterializedViewID("public", "daily_stats")].Definition =
		"SELECT state, count(*) AS n, max(id) AS latest FROM users GROUP BY state"

	changes := Diff(main, branch)
	if len(changesOf[*change.DropMaterializedView](changes)) != 1 ||
		len(changesOf[*change.CreateMaterializedView](changes)) != 1 {
		t.Fatalf("expected the materialized view replaced, got:\n%s", describe(changes))
	}
	creates := changesOf[*change.CreateIndex](changes)
	if len(creates) != 1 {
		t.Fatalf("expected the surviving index re-created, got:\n%s", describe(changes))
	}
	want := catalog.MaterializedViewID("public", "daily_stats")
	if got := creates[0].Requires()[0]; got != want {
		t.Errorf("re-created index requires %q, want %q", got, want)
	}
	if len(changesOf[*change.DropIndex](changes)) != 0 {
		t.Errorf("index drop alongside materialized view replacement:\n%s", describe(changes))
	}
}

func TestDiffIndexMethodChangeReplaces(t *testing.T) {
	main := fixture()
	branch := fixture()
	branch.Indexes[catalog.IndexID("public", "users_email_idx")].Method = "hash"

	changes := Diff(main, branch)
	if len(changesOf[*change.DropIndex](changes)) != 1 || len(changesOf[*change.CreateIndex](changes)) != 1 {
		t.Errorf("method change must replace the index:\n%s", describe(changes))
	}
}

func TestDiffIndexStorageParameters(t *testing.T) {
	main := fixture()
	branch := fixture()
	branch.Indexes[catalog.IndexID("public", "users_email_idx")].StorageOptions = []string{"fillfactor", "90"}

	changes := Diff(main, branch)
	alters := changesOf[*change.AlterIndexSetStorageParameters](changes)
	if len(changes) != 1 || len(alters) != 1 {
		t.Fatalf("expected a single index alter, got:\n%s", describe(changes))
	}
}

func TestDiffConstraintBackedIndexIgnored(t *testing.T) {
	main := fixture()
	branch := fixture()
	pk := &catalog.Index{
		Schema: "public", Table: "users", Name: "users_pkey",
		Method: "btree", Unique: true,
		Columns:           []catalog.IndexColumn{{Expression: "id"}},
		OwnedByConstraint: "users_pkey",
	}
	branch.Indexes[pk.StableID()] = pk

	changes := Diff(main, branch)
	if len(changes) != 0 {
		t.Errorf("constraint-backed index must be invisible:\n%s", describe(changes))
	}
}

func TestDiffMembershipAdminOption(t *testing.T) {
	main := fixture()
	branch := fixture()
	branch.Memberships[catalog.MembershipID("readers", "app")].Admin = true

	changes := Diff(main, branch)
	ups := changesOf[*change.GrantRoleMembership](changes)
	if len(changes) != 1 || len(ups) != 1 || !ups[0].Membership.Admin {
		t.Fatalf("expected a single WITH ADMIN OPTION grant, got:\n%s", describe(changes))
	}

	// Downgrade goes the other way.
	changes = Diff(branch, main)
	downs := changesOf[*change.RevokeRoleAdminOption](changes)
	if len(changes) != 1 || len(downs) != 1 {
		t.Fatalf("expected a single admin-option revoke, got:\n%s", describe(changes))
	}
}

func TestDiffDroppedRoleTakesMemberships(t *testing.T) {
	main := fixture()
	branch := fixture()
	delete(branch.Roles, catalog.RoleID("readers"))
	delete(branch.Memberships, catalog.MembershipID("readers", "app"))
	for id, p := range branch.Privileges {
		if p.Grantee == "readers" {
			delete(branch.Privileges, id)
		}
	}

	changes := Diff(main, branch)
	if len(changesOf[*change.RevokeRoleMembership](changes)) != 0 {
		t.Errorf("membership revoke alongside DROP ROLE:\n%s", describe(changes))
	}
	if len(changesOf[*change.RevokePrivileges](changes)) != 0 {
		t.Errorf("privilege revoke alongside DROP ROLE:\n%s", describe(changes))
	}
	if len(changesOf[*change.DropRole](changes)) != 1 {
		t.Errorf("expected 1 DROP ROLE:\n%s", describe(changes))
	}
}

func TestDiffRoleConfig(t *testing.T) {
	main := fixture()
	branch := fixture()
	main.Roles[catalog.RoleID("app")].Config = []string{"statement_timeout=30s"}
	branch.Roles[catalog.RoleID("app")].Config = []string{"search_path=app"}

	changes := Diff(main, branch)
	sets := changesOf[*change.AlterRoleSetConfig](changes)
	if len(sets) != 2 {
		t.Fatalf("expected SET + RESET, got:\n%s", describe(changes))
	}
	var sawSet, sawReset bool
	for _, s := range sets {
		if s.Key == "search_path" && s.Value == "app" {
			sawSet = true
		}
		if s.Key == "statement_timeout" && s.Value == "" {
			sawReset = true
		}
	}
	if !sawSet || !sawReset {
		t.Errorf("wrong config delta: %+v", sets)
	}
}

func TestDiffViewRedefinition(t *testing.T) {
	main := fixture()
	branch := fixture()
	branch.Views[catalog.ViewID("public", "active_users")].Definition = "SELECT id FROM users WHERE state = 'active'"

	changes := Diff(main, branch)
	creates := changesOf[*change.CreateView](changes)
	if len(changes) != 1 || len(creates) != 1 || !creates[0].OrReplace {
		t.Fatalf("expected a single CREATE OR REPLACE VIEW, got:\n%s", describe(changes))
	}
}

func TestDiffEnumAppend(t *testing.T) {
	main := fixture()
	branch := fixture()
	branch.Types[catalog.TypeID("public", "status")].EnumValues = []string{"pending", "active", "closed"}

	changes := Diff(main, branch)
	adds := changesOf[*change.AlterTypeAddEnumValue](changes)
	if len(changes) != 1 || len(adds) != 1 {
		t.Fatalf("expected a single ADD VALUE, got:\n%s", describe(changes))
	}
	if adds[0].Value != "closed" || adds[0].After != "active" {
		t.Errorf("got %+v", adds[0])
	}
}

func TestDiffEnumInsertAnchorsBefore(t *testing.T) {
	main := fixture()
	branch := fixture()
	branch.Types[catalog.TypeID("public", "status")].EnumValues = []string{"pending", "review", "active"}

	changes := Diff(main, branch)
	adds := changesOf[*change.AlterTypeAddEnumValue](changes)
	if len(adds) != 1 || adds[0].Value != "review" || adds[0].Before != "active" {
		t.Fatalf("expected ADD VALUE 'review' BEFORE 'active', got:\n%s", describe(changes))
	}
}

func TestDiffEnumRemovalReplaces(t *testing.T) {
	main := fixture()
	branch := fixture()
	branch.Types[catalog.TypeID("public", "status")].EnumValues = []string{"active"}

	changes := Diff(main, branch)
	if len(changesOf[*change.DropType](changes)) != 1 || len(changesOf[*change.CreateType](changes)) != 1 {
		t.Errorf("enum removal must replace the type:\n%s", describe(changes))
	}
}
