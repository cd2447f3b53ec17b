// Package yum parses YUM/DNF repository metadata (repomd.xml +
// primary.xml.gz) into the unified internal/ospkg model (component C4).
package yum

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/depssmuggler/core/internal/fetch"
	"github.com/depssmuggler/core/internal/metacache"
	"github.com/depssmuggler/core/internal/ospkg"
)

// systemDepPrefixes names the dependency name prefixes that are always
// present on a host and never need to be resolved or downloaded.
var systemDepPrefixes = []string{
	"rpmlib(", "config(", "/", "libc.so", "libpthread.so", "libm.so",
	"libdl.so", "librt.so", "rtld(",
}

func isSystemDep(name string) bool {
	for _, p := range systemDepPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// --- repomd.xml ---

type repomd struct {
	XMLName xml.Name     `xml:"repomd"`
	Data    []repomdData `xml:"data"`
}

type repomdData struct {
	Type     string `xml:"type,attr"`
	Location struct {
		Href string `xml:"href,attr"`
	} `xml:"location"`
	Checksum struct {
		Type  string `xml:"type,attr"`
		Value string `xml:",chardata"`
	} `xml:"checksum"`
}

func (r repomd) locationFor(kind string) (string, bool) {
	for _, d := range r.Data {
		if d.Type == kind {
			return d.Location.Href, true
		}
	}
	return "", false
}

// --- primary.xml ---

type primaryMetadata struct {
	XMLName  xml.Name        `xml:"metadata"`
	Packages []primaryPkg    `xml:"package"`
}

type primaryPkg struct {
	Type    string `xml:"type,attr"`
	Name    string `xml:"name"`
	Arch    string `xml:"arch"`
	Version struct {
		Epoch string `xml:"epoch,attr"`
		Ver   string `xml:"ver,attr"`
		Rel   string `xml:"rel,attr"`
	} `xml:"version"`
	Checksum struct {
		Type string `xml:",attr"`
		Text string `xml:",chardata"`
	} `xml:"checksum"`
	Size struct {
		Package   int64 `xml:"package,attr"`
		Installed int64 `xml:"installed,attr"`
	} `xml:"size"`
	Location struct {
		Href string `xml:"href,attr"`
	} `xml:"location"`
	Format primaryFormat `xml:"format"`
}

type primaryFormat struct {
	Provides   primaryEntryList `xml:"provides"`
	Requires   primaryEntryList `xml:"requires"`
	Conflicts  primaryEntryList `xml:"conflicts"`
	Obsoletes  primaryEntryList `xml:"obsoletes"`
	Suggests   primaryEntryList `xml:"suggests"`
	Recommends primaryEntryList `xml:"recommends"`
}

type primaryEntryList struct {
	Entries []primaryEntry `xml:"entry"`
}

type primaryEntry struct {
	Name  string `xml:"name,attr"`
	Flags string `xml:"flags,attr"`
	Ver   string `xml:"ver,attr"`
}

func flagsToOperator(flags string) ospkg.Operator {
	switch flags {
	case "EQ":
		return ospkg.OpEQ
	case "LT":
		return ospkg.OpLT
	case "GT":
		return ospkg.OpGT
	case "LE":
		return ospkg.OpLE
	case "GE":
		return ospkg.OpGE
	default:
		return ""
	}
}

// stripParenSuffix removes a trailing "(...)" qualifier, e.g.
// "libfoo.so.1()(64bit)" -> "libfoo.so.1".
func stripParenSuffix(name string) string {
	if i := strings.IndexByte(name, '('); i >= 0 {
		return name[:i]
	}
	return name
}

func flattenNames(l primaryEntryList) []string {
	names := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		names = append(names, e.Name)
		if stripped := stripParenSuffix(e.Name); stripped != e.Name {
			names = append(names, stripped)
		}
	}
	return names
}

// Parser loads and parses YUM repository metadata.
type Parser struct {
	Fetcher *fetch.Fetcher
	Cache   *metacache.Cache
}

// New constructs a Parser.
func New(f *fetch.Fetcher, c *metacache.Cache) *Parser {
	return &Parser{Fetcher: f, Cache: c}
}

// LoadPackages fetches repomd.xml and primary.xml.gz rooted at baseURL and
// returns every Package compatible with targetArch (invariant 1 of spec
// §8). repoID is recorded on each returned Package.
func (p *Parser) LoadPackages(ctx context.Context, baseURL, repoID string, targetArch ospkg.Architecture) ([]ospkg.Package, error) {
	repomdURL := strings.TrimRight(baseURL, "/") + "/repodata/repomd.xml"

	key := metacache.Key{Family: ospkg.PackageManagerYUM, RepoURL: baseURL, Architecture: targetArch, Artefact: metacache.ArtefactRepomd}
	repomdBytes, err := p.cachedFetch(ctx, key, repomdURL)
	if err != nil {
		return nil, fmt.Errorf("yum: fetch repomd.xml: %w", err)
	}

	var rm repomd
	if err := xml.Unmarshal(repomdBytes, &rm); err != nil {
		return nil, fmt.Errorf("yum: parse repomd.xml: %w", err)
	}

	primaryHref, ok := rm.locationFor("primary")
	if !ok {
		return nil, fmt.Errorf("yum: repomd.xml has no primary data entry")
	}
	primaryURL := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(primaryHref, "/")

	pkey := metacache.Key{Family: ospkg.PackageManagerYUM, RepoURL: baseURL, Architecture: targetArch, Artefact: metacache.ArtefactPrimary}
	primaryGz, err := p.cachedFetch(ctx, pkey, primaryURL)
	if err != nil {
		return nil, fmt.Errorf("yum: fetch primary.xml.gz: %w", err)
	}

	primaryXML, err := fetch.GunzipAll(fetch.BytesReader(primaryGz))
	if err != nil {
		return nil, fmt.Errorf("yum: gunzip primary.xml: %w", err)
	}

	var md primaryMetadata
	if err := xml.Unmarshal(primaryXML, &md); err != nil {
		return nil, fmt.Errorf("yum: parse primary.xml: %w", err)
	}

	var out []ospkg.Package
	for _, raw := range md.Packages {
		if raw.Type != "" && raw.Type != "rpm" {
			continue
		}
		pkg := convertPackage(raw, repoID)
		if !ospkg.Compatible(pkg.Architecture, targetArch) {
			continue
		}
		out = append(out, pkg)
	}
	return out, nil
}

func (p *Parser) cachedFetch(ctx context.Context, key metacache.Key, url string) ([]byte, error) {
	if p.Cache != nil {
		if e, ok := p.Cache.Get(key); ok {
			return e.Data, nil
		}
	}
	b, err := p.Fetcher.GetBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	if p.Cache != nil {
		p.Cache.Set(key, b)
	}
	return b, nil
}

func convertPackage(raw primaryPkg, repoID string) ospkg.Package {
	var deps []ospkg.Dependency
	for _, e := range raw.Format.Requires.Entries {
		if isSystemDep(e.Name) {
			continue
		}
		deps = append(deps, ospkg.Dependency{
			Name:     e.Name,
			Version:  e.Ver,
			Operator: flagsToOperator(e.Flags),
		})
	}

	return ospkg.Package{
		Name:          raw.Name,
		Version:       raw.Version.Ver,
		Release:       raw.Version.Rel,
		Epoch:         raw.Version.Epoch,
		Architecture:  ospkg.Architecture(raw.Arch),
		Size:          raw.Size.Package,
		InstalledSize: raw.Size.Installed,
		Checksum: ospkg.Checksum{
			Type:  ospkg.ChecksumType(strings.ToLower(raw.Checksum.Type)),
			Value: strings.TrimSpace(raw.Checksum.Text),
		},
		Location:       raw.Location.Href,
		Repository:     repoID,
		Dependencies:   deps,
		Provides:       flattenNames(raw.Format.Provides),
		Conflicts:      flattenNames(raw.Format.Conflicts),
		Obsoletes:      flattenNames(raw.Format.Obsoletes),
		Suggests:       flattenNames(raw.Format.Suggests),
		Recommends:     flattenNames(raw.Format.Recommends),
		PackageManager: ospkg.PackageManagerYUM,
	}
}
