package semverhint

import (
	"errors"
	"testing"

	"github.com/depssmuggler/core/internal/ospkg"
)

func TestParseNoVersion(t *testing.T) {
	c, err := Parse("curl")
	if !errors.Is(err, ErrNoVersion) {
		t.Fatalf("Parse(%q) err = %v, want ErrNoVersion", "curl", err)
	}
	if c.Name != "curl" {
		t.Errorf("Name = %q, want curl", c.Name)
	}
}

func TestParseExact(t *testing.T) {
	c, err := Parse("curl@7.68.0")
	if err != nil {
		t.Fatalf("Parse() err = %v", err)
	}
	if c.Name != "curl" || c.Operator != ospkg.OpEQ || c.Version != "7.68.0" {
		t.Errorf("Parse() = %+v, want {curl = 7.68.0}", c)
	}
}

func TestParseCaretAndTilde(t *testing.T) {
	for _, spec := range []string{"curl@^7.68.0", "curl@~7.68.0"} {
		c, err := Parse(spec)
		if err != nil {
			t.Fatalf("Parse(%q) err = %v", spec, err)
		}
		if c.Operator != ospkg.OpGE {
			t.Errorf("Parse(%q).Operator = %q, want %q", spec, c.Operator, ospkg.OpGE)
		}
		if c.Version != "7.68.0" {
			t.Errorf("Parse(%q).Version = %q, want 7.68.0", spec, c.Version)
		}
	}
}

func TestParseExplicitOperators(t *testing.T) {
	tests := []struct {
		spec string
		op   ospkg.Operator
	}{
		{"curl@>=7.68.0", ospkg.OpGE},
		{"curl@<=7.68.0", ospkg.OpLE},
		{"curl@>7.68.0", ospkg.OpGT},
		{"curl@<7.68.0", ospkg.OpLT},
		{"curl@=7.68.0", ospkg.OpEQ},
	}
	for _, tt := range tests {
		c, err := Parse(tt.spec)
		if err != nil {
			t.Fatalf("Parse(%q) err = %v", tt.spec, err)
		}
		if c.Operator != tt.op {
			t.Errorf("Parse(%q).Operator = %q, want %q", tt.spec, c.Operator, tt.op)
		}
	}
}

func TestParseInvalidVersion(t *testing.T) {
	if _, err := Parse("curl@not-a-version"); err == nil {
		t.Error("Parse() with a non-semver version expression should fail")
	}
}

func TestParseEmptyExpr(t *testing.T) {
	c, err := Parse("curl@")
	if !errors.Is(err, ErrNoVersion) {
		t.Fatalf("Parse(%q) err = %v, want ErrNoVersion", "curl@", err)
	}
	if c.Name != "curl" {
		t.Errorf("Name = %q, want curl", c.Name)
	}
}
