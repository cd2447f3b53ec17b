package ospkg

import "strings"

// Architecture is a canonical CPU/ABI tag drawn from a closed set shared by
// all three package families.
type Architecture string

const (
	ArchX86_64  Architecture = "x86_64"
	ArchAMD64   Architecture = "amd64"
	ArchAarch64 Architecture = "aarch64"
	ArchArm64   Architecture = "arm64"
	ArchI686    Architecture = "i686"
	ArchI386    Architecture = "i386"
	ArchX86     Architecture = "x86"
	ArchArmv7l  Architecture = "armv7l"
	ArchArmhf   Architecture = "armhf"
	ArchArmv7   Architecture = "armv7"
	ArchNoarch  Architecture = "noarch"
	ArchAll     Architecture = "all"
)

// aliasGroups partitions the closed architecture set into equivalence
// classes. canonical() picks a deterministic representative per group;
// PackageManager selects which representative a family prefers via
// CanonicalForFamily.
var aliasGroups = [][]Architecture{
	{ArchX86_64, ArchAMD64},
	{ArchAarch64, ArchArm64},
	{ArchI686, ArchI386, ArchX86},
	{ArchArmv7l, ArchArmhf, ArchArmv7},
	{ArchNoarch, ArchAll},
}

// groupOf returns the alias group index containing a, or -1.
func groupOf(a Architecture) int {
	a = Architecture(strings.ToLower(string(a)))
	for i, g := range aliasGroups {
		for _, m := range g {
			if m == a {
				return i
			}
		}
	}
	return -1
}

// Canonical collapses architecture aliases to a single representative per
// equivalence class (the group's first member). It is idempotent:
// Canonical(Canonical(a)) == Canonical(a).
func Canonical(a Architecture) Architecture {
	i := groupOf(a)
	if i < 0 {
		return Architecture(strings.ToLower(string(a)))
	}
	return aliasGroups[i][0]
}

// CanonicalForFamily returns the representative spelling a given package
// manager family prefers for a's equivalence class (e.g. apt wants "amd64",
// yum wants "x86_64"). Unknown architectures pass through lower-cased.
func CanonicalForFamily(a Architecture, pm PackageManager) Architecture {
	i := groupOf(a)
	if i < 0 {
		return Architecture(strings.ToLower(string(a)))
	}
	group := aliasGroups[i]
	switch pm {
	case PackageManagerAPT:
		for _, m := range group {
			if m == ArchAMD64 || m == ArchArm64 || m == ArchArmhf || m == ArchI386 || m == ArchAll {
				return m
			}
		}
	case PackageManagerAPK:
		for _, m := range group {
			if m == ArchX86_64 || m == ArchAarch64 || m == ArchArmv7 || m == ArchX86 || m == ArchNoarch {
				return m
			}
		}
	case PackageManagerYUM:
		for _, m := range group {
			if m == ArchX86_64 || m == ArchAarch64 || m == ArchArmv7l || m == ArchI686 || m == ArchNoarch {
				return m
			}
		}
	}
	return group[0]
}

// IsArchIndependent reports whether a means "installable on any
// architecture" (noarch/all).
func IsArchIndependent(a Architecture) bool {
	return Canonical(a) == ArchNoarch
}

// Compatible reports whether a package built for pkgArch can be installed
// on targetArch: true if either is architecture-independent, or their
// canonical forms match.
func Compatible(pkgArch, targetArch Architecture) bool {
	if IsArchIndependent(pkgArch) || IsArchIndependent(targetArch) {
		return true
	}
	return Canonical(pkgArch) == Canonical(targetArch)
}
