// Package semverhint is a CLI-only convenience layer for a caller-supplied
// loose version constraint like "curl@^7" or "openssl@~1.1.1". It is never
// used by the resolver: none of RPM, Debian or Alpine's version grammars
// are semver, so actual candidate comparisons always go through
// rpmver/debver/apkver via internal/versionalg.Comparator. This package
// exists only to turn a semver-ish shorthand on the command line into the
// ospkg.Operator/version pair those comparators expect, before resolution
// ever starts.
package semverhint

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/depssmuggler/core/internal/ospkg"
)

// Constraint is a parsed "name@version-expr" request, lowered to a single
// operator/version pair. Range expressions (^, ~) are approximated as a
// lower bound (">="): this is deliberately loose, matching the
// "convenience", not a faithful range translation.
type Constraint struct {
	Name     string
	Operator ospkg.Operator
	Version  string
}

// ErrNoVersion is returned when spec has no "@version" suffix at all; the
// caller should treat this as "any version" rather than an error.
var ErrNoVersion = fmt.Errorf("semverhint: no version expression")

// Parse splits a "name@expr" CLI argument and lowers expr to an
// ospkg.Operator/version pair. Supported forms: "name" (no constraint,
// returns ErrNoVersion), "name@1.2.3" (exact), "name@^1.2.3" or
// "name@~1.2.3" (lowered to ">= 1.2.3"), "name@>=1.2.3" and friends
// (operator passed through after validating the version parses as
// semver).
func Parse(spec string) (Constraint, error) {
	name, expr, found := strings.Cut(spec, "@")
	if !found || expr == "" {
		return Constraint{Name: name}, ErrNoVersion
	}

	op, rest := splitOperator(expr)
	v, err := semver.NewVersion(rest)
	if err != nil {
		return Constraint{}, fmt.Errorf("semverhint: parse version %q in %q: %w", rest, spec, err)
	}

	return Constraint{Name: name, Operator: op, Version: v.String()}, nil
}

func splitOperator(expr string) (ospkg.Operator, string) {
	switch {
	case strings.HasPrefix(expr, "^"), strings.HasPrefix(expr, "~"):
		return ospkg.OpGE, expr[1:]
	case strings.HasPrefix(expr, ">="):
		return ospkg.OpGE, expr[2:]
	case strings.HasPrefix(expr, "<="):
		return ospkg.OpLE, expr[2:]
	case strings.HasPrefix(expr, ">"):
		return ospkg.OpGT, expr[1:]
	case strings.HasPrefix(expr, "<"):
		return ospkg.OpLT, expr[1:]
	case strings.HasPrefix(expr, "="):
		return ospkg.OpEQ, expr[1:]
	default:
		return ospkg.OpEQ, expr
	}
}
