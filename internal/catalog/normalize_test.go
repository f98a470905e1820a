package catalog

import "testing"

func TestStatementsEquivalent(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{
			name: "identical",
			a:    "SELECT id FROM users",
			b:    "SELECT id FROM users",
			want: true,
		},
		{
			name: "whitespace and casing",
			a:    "SELECT id FROM users WHERE active",
			b:    "select  id\nfrom users\nwhere active",
			want: true,
		},
		{
			name: "different column list",
			a:    "SELECT id FROM users",
			b:    "SELECT id, email FROM users",
			want: false,
		},
		{
			name: "different predicate",
			a:    "SELECT id FROM users WHERE active",
			b:    "SELECT id FROM users WHERE deleted",
			want: false,
		},
		{
			name: "unparseable both sides",
			a:    "NOT SQL AT ALL ((",
			b:    "NOT SQL AT ALL [[",
			want: false,
		},
		{
			name: "unparseable but identical",
			a:    "NOT SQL AT ALL ((",
			b:    "NOT SQL AT ALL ((",
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatementsEquivalent(tt.a, tt.b); got != tt.want {
				t.Errorf("StatementsEquivalent(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestExpressionsEquivalent(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{
			name: "redundant parentheses",
			a:    "(price * qty)",
			b:    "price * qty",
			want: true,
		},
		{
			name: "cast spelling",
			a:    "status = 'active'::text",
			b:    "status = CAST('active' AS text)",
			want: true,
		},
		{
			// Fingerprints mask literal values, so two checks differing
			// only in a constant compare as equivalent.
			name: "differing constants",
			a:    "total >= 0",
			b:    "total >= 1",
			want: true,
		},
		{
			name: "different column",
			a:    "total >= 0",
			b:    "subtotal >= 0",
			want: false,
		},
		{
			name: "empty vs expression",
			a:    "",
			b:    "total >= 0",
			want: false,
		},
		{
			name: "both empty",
			a:    "",
			b:    "",
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpressionsEquivalent(tt.a, tt.b); got != tt.want {
				t.Errorf("ExpressionsEquivalent(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
