// Package versionalg defines the Comparator contract that each package
// family's version grammar (internal/versionalg/rpmver, debver, apkver)
// implements (component C5). The resolver and mirror synthesiser only ever
// talk to this interface, never to a specific family's parsing rules.
package versionalg

import (
	"github.com/depssmuggler/core/internal/ospkg"
	"github.com/depssmuggler/core/internal/versionalg/apkver"
	"github.com/depssmuggler/core/internal/versionalg/debver"
	"github.com/depssmuggler/core/internal/versionalg/rpmver"
)

// Comparator is a total order over one family's version strings, plus the
// arithmetic interpretation of an Operator against that order.
type Comparator interface {
	// Compare returns -1, 0, or +1 as a is less than, equal to, or greater
	// than b under this family's ordering rules.
	Compare(a, b string) int

	// Matches reports whether version satisfies "op required" under this
	// family's ordering. For families without <</>> (RPM, APK), those
	// operators are treated identically to </>.
	Matches(version string, op ospkg.Operator, required string) bool
}

// matchesFromCompare implements Matches given a Compare function; every
// family's Comparator shares this since the operator semantics are the
// same arithmetic interpretation layered on a different order.
func matchesFromCompare(cmp func(a, b string) int, version string, op ospkg.Operator, required string) bool {
	c := cmp(version, required)
	switch op {
	case ospkg.OpEQ:
		return c == 0
	case ospkg.OpLT, ospkg.OpLL:
		return c < 0
	case ospkg.OpGT, ospkg.OpGG:
		return c > 0
	case ospkg.OpLE:
		return c <= 0
	case ospkg.OpGE:
		return c >= 0
	default:
		return false
	}
}

// ForFamily returns the Comparator for a package manager family.
func ForFamily(pm ospkg.PackageManager) Comparator {
	switch pm {
	case ospkg.PackageManagerYUM:
		return rpmComparator{}
	case ospkg.PackageManagerAPT:
		return debComparator{}
	case ospkg.PackageManagerAPK:
		return apkComparator{}
	default:
		return nil
	}
}

type rpmComparator struct{}

func (rpmComparator) Compare(a, b string) int { return rpmver.Compare(a, b) }
func (rpmComparator) Matches(version string, op ospkg.Operator, required string) bool {
	return matchesFromCompare(rpmver.Compare, version, op, required)
}

type debComparator struct{}

func (debComparator) Compare(a, b string) int { return debver.Compare(a, b) }
func (debComparator) Matches(version string, op ospkg.Operator, required string) bool {
	return matchesFromCompare(debver.Compare, version, op, required)
}

type apkComparator struct{}

func (apkComparator) Compare(a, b string) int { return apkver.Compare(a, b) }
func (apkComparator) Matches(version string, op ospkg.Operator, required string) bool {
	return matchesFromCompare(apkver.Compare, version, op, required)
}
