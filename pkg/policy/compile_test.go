package policy

import (
	"reflect"
	"testing"

	"github.com/prefixflow/prefixflow/pkg/bgpq"
)

func TestCompileStatementOrder(t *testing.T) {
	entries := []bgpq.Entry{
		{Prefix: "192.0.2.0/24", Qualifier: "exact"},
		{Prefix: "203.0.113.0/24", Qualifier: "upto /24"},
	}

	got := Compile(entries, "TEST")
	want := []string{
		"set policy-options policy-statement TEST term route-set1 from protocol bgp",
		"set policy-options policy-statement TEST term route-set1 from route-filter 192.0.2.0/24 exact",
		"set policy-options policy-statement TEST term route-set1 from route-filter 203.0.113.0/24 upto /24",
		"set policy-options policy-statement TEST term route-set1 then next policy",
		"set policy-options policy-statement TEST term reject then reject",
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Compile() = %#v, want %#v", got, want)
	}
}

func TestCompileStatementCount(t *testing.T) {
	// protocol line + one per entry + next-policy line + reject line
	tests := []struct {
		entries int
		want    int
	}{
		{1, 4},
		{2, 5},
		{10, 13},
	}

	for _, tt := range tests {
		entries := make([]bgpq.Entry, tt.entries)
		for i := range entries {
			entries[i] = bgpq.Entry{Prefix: "10.0.0.0/8", Qualifier: "exact"}
		}
		got := Compile(entries, "COUNT")
		if len(got) != tt.want {
			t.Errorf("Compile(%d entries) produced %d statements, want %d", tt.entries, len(got), tt.want)
		}
	}
}

func TestCompileEmptyReturnsNil(t *testing.T) {
	if got := Compile(nil, "EMPTY"); got != nil {
		t.Errorf("Compile(nil) = %#v, want nil", got)
	}
	if got := Compile([]bgpq.Entry{}, "EMPTY"); got != nil {
		t.Errorf("Compile(empty) = %#v, want nil", got)
	}
}

func TestCompileIdempotent(t *testing.T) {
	entries := []bgpq.Entry{
		{Prefix: "198.51.100.0/24", Qualifier: "upto /28"},
		{Prefix: "192.0.2.0/25", Qualifier: "exact"},
	}

	first := Compile(entries, "IDEM")
	second := Compile(entries, "IDEM")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Compile not deterministic:\nfirst:  %#v\nsecond: %#v", first, second)
	}
}

func TestCompileQualifierCarriedVerbatim(t *testing.T) {
	entries := []bgpq.Entry{{Prefix: "10.1.0.0/16", Qualifier: "upto /20"}}
	got := Compile(entries, "Q")
	want := "set policy-options policy-statement Q term route-set1 from route-filter 10.1.0.0/16 upto /20"
	if got[1] != want {
		t.Errorf("Compile()[1] = %q, want %q", got[1], want)
	}
}

func TestCommentHeader(t *testing.T) {
	got := CommentHeader("CUSTOMER-IN", "AS-EXAMPLE")
	want := "# BGP Prefix List for CUSTOMER-IN (AS-EXAMPLE)"
	if got != want {
		t.Errorf("CommentHeader() = %q, want %q", got, want)
	}
}
