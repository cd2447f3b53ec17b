// Package ospkg defines the unified package/dependency/capability model that
// the YUM, APT and APK metadata parsers (internal/ospkg/yum, apt, apk) all
// produce, and that internal/resolve, internal/download and internal/mirror
// all consume. A Package is never mutated after a parser constructs it.
package ospkg

import "fmt"

// PackageManager identifies which of the three supported ecosystems a
// Distribution (internal/catalog) uses, and therefore which parser,
// version comparator (internal/versionalg) and mirror synthesiser
// (internal/mirror) apply.
type PackageManager string

const (
	PackageManagerYUM PackageManager = "yum"
	PackageManagerAPT PackageManager = "apt"
	PackageManagerAPK PackageManager = "apk"
)

// ChecksumType names the digest algorithm a Package's Checksum was computed
// with. Mirrors the set every family's metadata actually uses.
type ChecksumType string

const (
	ChecksumMD5    ChecksumType = "md5"
	ChecksumSHA1   ChecksumType = "sha1"
	ChecksumSHA256 ChecksumType = "sha256"
	ChecksumSHA512 ChecksumType = "sha512"
)

// Checksum pairs a digest algorithm with its expected hex value.
type Checksum struct {
	Type  ChecksumType
	Value string
}

// Operator is a version-constraint comparison operator. The RPM/APK set
// {=,<,>,<=,>=} and the Debian-only strict forms {<<,>>} share one type;
// internal/versionalg.Matches interprets it against a family comparator.
type Operator string

const (
	OpEQ Operator = "="
	OpLT Operator = "<"
	OpGT Operator = ">"
	OpLE Operator = "<="
	OpGE Operator = ">="
	OpLL Operator = "<<"
	OpGG Operator = ">>"
)

// Dependency is an edge-shaped demand on a Capability, optionally
// version-constrained. The left operand (Name) is a capability, not
// necessarily a package name: it may be satisfied by another package's
// Provides entry, a shared-library soname, or a command.
type Dependency struct {
	Name        string
	Version     string
	Operator    Operator
	IsOptional  bool
	IsRecommend bool // APT Recommends, gated separately from Suggests (IsOptional)
}

// String renders the dependency the way the source metadata would have
// spelled it, for diagnostics.
func (d Dependency) String() string {
	if d.Operator == "" || d.Version == "" {
		return d.Name
	}
	return fmt.Sprintf("%s %s %s", d.Name, d.Operator, d.Version)
}

// Key is the package identity tuple: (name, version, release, epoch,
// architecture). It is never the name alone — two packages with the same
// name but different versions/architectures are distinct identities, and
// Key is what every map keyed "by package" actually uses.
type Key struct {
	Name         string
	Version      string
	Release      string
	Epoch        string
	Architecture Architecture
}

// Package is the parser output type shared by all three families. It is
// immutable once constructed.
type Package struct {
	Name           string
	Version        string
	Release        string // RPM only; empty for apt/apk
	Epoch          string // RPM only; empty for apt/apk (Debian epochs stay inside Version)
	Architecture   Architecture
	Size           int64 // download size, bytes
	InstalledSize  int64 // on-disk size, bytes (0 if unknown)
	Checksum       Checksum
	Location       string // repository-relative path
	Repository     string // owning Repository.ID
	RepoPriority   int    // owning Repository.Priority; lower number = higher priority
	RepoOfficial   bool   // owning Repository.IsOfficial
	Dependencies   []Dependency
	Provides       []string
	Conflicts      []string
	Obsoletes      []string
	Suggests       []string
	Recommends     []string
	PackageManager PackageManager
}

// Key returns this package's identity tuple.
func (p Package) Key() Key {
	return Key{
		Name:         p.Name,
		Version:      p.Version,
		Release:      p.Release,
		Epoch:        p.Epoch,
		Architecture: p.Architecture,
	}
}

// EVR renders epoch:version-release for diagnostics and RPM-style display.
func (p Package) EVR() string {
	s := p.Version
	if p.Epoch != "" && p.Epoch != "0" {
		s = p.Epoch + ":" + s
	}
	if p.Release != "" {
		s = s + "-" + p.Release
	}
	return s
}

// Capabilities returns every string this package can satisfy a Dependency
// by: its own name, everything it Provides, and (for YUM) name variants
// stripped of a trailing "(...)" qualifier. Family-specific extensions
// (APK so:/cmd:, APT :arch) are applied by the resolver's FamilyAdapter,
// not here, since they depend on the requesting Dependency's shape.
func (p Package) Capabilities() []string {
	caps := make([]string, 0, len(p.Provides)+1)
	caps = append(caps, p.Name)
	caps = append(caps, p.Provides...)
	return caps
}
