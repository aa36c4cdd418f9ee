package bgpq

import (
	"errors"
	"testing"

	"github.com/prefixflow/prefixflow/pkg/util"
)

func TestRouteSetLabel(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"CUSTOMER-IN", "CUSTOMER-IN/route-set1"},
		{"CUSTOMER-IN/route-set1", "CUSTOMER-IN/route-set1"},
		{"MY-ROUTE-SET-FILTER", "MY-ROUTE-SET-FILTER"},
		{"as-set-derived", "as-set-derived"},
		{"PEER-AS-SET", "PEER-AS-SET"},
	}

	for _, tt := range tests {
		if got := RouteSetLabel(tt.name); got != tt.want {
			t.Errorf("RouteSetLabel(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

const sampleOutput = `policy-options {
 policy-statement TEST/route-set1 {
  term route-set1 {
   from {
    protocol bgp;
    route-filter 192.0.2.0/24 exact;
    route-filter 203.0.113.0/24 upto /24;
    route-filter 198.51.100.0/22 upto /24;
   }
   then next policy;
  }
 }
}
`

func TestParseRouteFilters(t *testing.T) {
	entries := ParseRouteFilters(sampleOutput)
	if len(entries) != 3 {
		t.Fatalf("ParseRouteFilters returned %d entries, want 3", len(entries))
	}

	want := []Entry{
		{Prefix: "192.0.2.0/24", Qualifier: "exact"},
		{Prefix: "203.0.113.0/24", Qualifier: "upto /24"},
		{Prefix: "198.51.100.0/22", Qualifier: "upto /24"},
	}
	for i, e := range entries {
		if e != want[i] {
			t.Errorf("entry[%d] = %+v, want %+v", i, e, want[i])
		}
	}
}

func TestParseRouteFiltersNoMatches(t *testing.T) {
	if entries := ParseRouteFilters("nothing useful here\n"); entries != nil {
		t.Errorf("ParseRouteFilters(garbage) = %v, want nil", entries)
	}
	if entries := ParseRouteFilters(""); entries != nil {
		t.Errorf("ParseRouteFilters(empty) = %v, want nil", entries)
	}
}

func TestLookupToolNotFound(t *testing.T) {
	r := &Runner{Binary: "definitely-not-a-real-binary-kjhg"}
	_, err := r.Lookup("AS-EXAMPLE", "TEST", "RIPE", 24)
	if !errors.Is(err, util.ErrLookupToolNotFound) {
		t.Errorf("Lookup with missing binary returned %v, want ErrLookupToolNotFound", err)
	}
}

func TestLookupNonZeroExit(t *testing.T) {
	// "false" exists everywhere and always exits non-zero.
	r := &Runner{Binary: "false"}
	_, err := r.Lookup("AS-EXAMPLE", "TEST", "RIPE", 24)
	if err == nil {
		t.Fatal("Lookup with failing tool returned nil error")
	}
	if errors.Is(err, util.ErrLookupToolNotFound) {
		t.Errorf("non-zero exit misclassified as missing binary: %v", err)
	}
	var lookupErr *util.LookupError
	if !errors.As(err, &lookupErr) {
		t.Errorf("Lookup error = %T, want *util.LookupError", err)
	}
}

func TestLookupEmptyOutput(t *testing.T) {
	// "true" exits zero with no output: a lookup that parsed nothing is a
	// failure, never an empty success.
	r := &Runner{Binary: "true"}
	_, err := r.Lookup("AS-EXAMPLE", "TEST", "RIPE", 24)
	if !errors.Is(err, util.ErrEmptyLookup) {
		t.Errorf("Lookup with empty output returned %v, want ErrEmptyLookup", err)
	}
}
