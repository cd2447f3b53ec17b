// Package mirror is the mirror synthesiser (component C8): it re-emits
// native repository metadata over a downloaded subset of packages so a
// downstream package manager can install from a file:// tree without
// network access. Family-specific emitters live in the yum, apt and apk
// subpackages; this file holds the shared deterministic-ordering contract
// they all follow.
package mirror

import (
	"sort"

	"github.com/depssmuggler/core/internal/ospkg"
)

// SortedByIdentity returns pkgs sorted by (name, then version), the
// ordering every emitter uses so two runs over the same input set
// produce byte-identical metadata files.
func SortedByIdentity(pkgs []ospkg.Package) []ospkg.Package {
	out := make([]ospkg.Package, len(pkgs))
	copy(out, pkgs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Version < out[j].Version
	})
	return out
}
