package catalog

import "testing"

func TestOptionMap(t *testing.T) {
	m := OptionMap([]string{"fillfactor", "70", "autovacuum_enabled", "false"})
	if len(m) != 2 || m["fillfactor"] != "70" || m["autovacuum_enabled"] != "false" {
		t.Errorf("unexpected map: %v", m)
	}

	// A trailing key without a value keeps the key.
	m = OptionMap([]string{"host", "db1", "password"})
	if len(m) != 2 || m["password"] != "" {
		t.Errorf("unexpected map: %v", m)
	}
}

func TestOptionsEqual(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want bool
	}{
		{"both empty", nil, nil, true},
		{"reordered", []string{"a", "1", "b", "2"}, []string{"b", "2", "a", "1"}, true},
		{"changed value", []string{"a", "1"}, []string{"a", "2"}, false},
		{"missing key", []string{"a", "1", "b", "2"}, []string{"a", "1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OptionsEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("OptionsEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestStringSetsEqual(t *testing.T) {
	if !StringSetsEqual([]string{"b", "a"}, []string{"a", "b"}) {
		t.Error("order must not matter")
	}
	if StringSetsEqual([]string{"a", "a"}, []string{"a", "b"}) {
		t.Error("multiset mismatch not detected")
	}
	if StringSlicesEqual([]string{"b", "a"}, []string{"a", "b"}) {
		t.Error("StringSlicesEqual must be order-sensitive")
	}
}

func TestGrantsEqual(t *testing.T) {
	a := []PrivilegeGrant{{Name: "SELECT"}, {Name: "UPDATE", Grantable: true}}
	b := []PrivilegeGrant{{Name: "UPDATE", Grantable: true}, {Name: "SELECT"}}
	if !GrantsEqual(a, b) {
		t.Error("order must not matter")
	}
	c := []PrivilegeGrant{{Name: "UPDATE"}, {Name: "SELECT"}}
	if GrantsEqual(a, c) {
		t.Error("grant-option flip not detected")
	}
}

func TestPrivilegeUniverse(t *testing.T) {
	v16 := PrivilegeUniverse(PrivilegeObjectTable, 16)
	if len(v16) != 7 {
		t.Errorf("table universe on 16: %v", v16)
	}
	v17 := PrivilegeUniverse(PrivilegeObjectTable, 17)
	if len(v17) != 8 || v17[len(v17)-1] != "MAINTAIN" {
		t.Errorf("table universe on 17: %v", v17)
	}
	if got := PrivilegeUniverse(PrivilegeObjectFunction, 16); len(got) != 1 || got[0] != "EXECUTE" {
		t.Errorf("function universe: %v", got)
	}
}
