// Package catalog is the static registry of supported distributions and
// their repositories (component C1). It is the single source of truth for
// architecture canonicalisation and for binding the $basearch/$releasever
// template variables in a Repository's base URL.
package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/depssmuggler/core/internal/ospkg"
)

// Repository is immutable once registered in a Distribution's repo list.
type Repository struct {
	ID         string
	Name       string
	BaseURL    string // may contain $basearch, $releasever
	Enabled    bool
	GPGCheck   bool
	GPGKeyURL  string
	Priority   int // lower number = higher priority; 0 means unset/default
	IsOfficial bool
}

// Distribution is immutable once registered in the catalog.
type Distribution struct {
	ID             string
	Name           string
	Version        string
	Codename       string
	PackageManager ospkg.PackageManager
	Architectures  []ospkg.Architecture
	DefaultRepos   []Repository
	ExtendedRepos  []Repository
}

// Catalog holds the registered distributions. The zero value is usable;
// Default() returns one pre-populated with the distributions this
// implementation ships.
type Catalog struct {
	distros map[string]Distribution
}

// New returns an empty Catalog. Callers that want the built-in
// distribution set should use Default().
func New() *Catalog {
	return &Catalog{distros: make(map[string]Distribution)}
}

// Register adds or replaces a Distribution by ID.
func (c *Catalog) Register(d Distribution) {
	c.distros[d.ID] = d
}

// ErrUnknownDistribution is a configuration-fatal error: the caller asked
// for a distribution ID the catalog has never heard of.
type ErrUnknownDistribution struct {
	ID string
}

func (e *ErrUnknownDistribution) Error() string {
	return fmt.Sprintf("catalog: unknown distribution %q", e.ID)
}

// Lookup resolves a distribution ID to its Distribution record.
func (c *Catalog) Lookup(distID string) (Distribution, error) {
	d, ok := c.distros[distID]
	if !ok {
		return Distribution{}, &ErrUnknownDistribution{ID: distID}
	}
	return d, nil
}

// ByPackageManager returns every registered distribution using the given
// package manager, in map iteration order, which may differ between calls.
func (c *Catalog) ByPackageManager(pm ospkg.PackageManager) []Distribution {
	var out []Distribution
	for _, d := range c.distros {
		if d.PackageManager == pm {
			out = append(out, d)
		}
	}
	return out
}

var releaseVerRe = regexp.MustCompile(`\d+`)

// ErrUnresolvedTemplate is a configuration-fatal error: a $basearch or
// $releasever placeholder survived substitution.
type ErrUnresolvedTemplate struct {
	URL string
}

func (e *ErrUnresolvedTemplate) Error() string {
	return fmt.Sprintf("catalog: unresolved template variable in URL %q", e.URL)
}

// ResolveURL substitutes $basearch (canonicalised for the repository's
// family) and $releasever (the first integer run in the distribution ID)
// into repo.BaseURL. An unresolved placeholder after substitution is
// reported as ErrUnresolvedTemplate — per spec this must be treated as a
// fatal, synchronous error raised before any I/O is attempted.
func ResolveURL(repo Repository, pm ospkg.PackageManager, arch ospkg.Architecture, distID string) (string, error) {
	basearch := string(ospkg.CanonicalForFamily(arch, pm))
	releasever := releaseVerRe.FindString(distID)

	url := repo.BaseURL
	url = strings.ReplaceAll(url, "$basearch", basearch)
	url = strings.ReplaceAll(url, "$releasever", releasever)

	if strings.Contains(url, "$basearch") || strings.Contains(url, "$releasever") {
		return "", &ErrUnresolvedTemplate{URL: repo.BaseURL}
	}
	return url, nil
}

// Compatible is re-exported from ospkg for convenience at call sites that
// only import catalog.
func Compatible(pkgArch, targetArch ospkg.Architecture) bool {
	return ospkg.Compatible(pkgArch, targetArch)
}
