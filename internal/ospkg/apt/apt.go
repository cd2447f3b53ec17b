// Package apt parses Debian/APT repository metadata (Release +
// Packages.gz) into the unified internal/ospkg model (component C4).
package apt

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/depssmuggler/core/internal/fetch"
	"github.com/depssmuggler/core/internal/metacache"
	"github.com/depssmuggler/core/internal/ospkg"
)

// Release is the subset of a Debian Release file this implementation uses.
type Release struct {
	Origin        string
	Codename      string
	Architectures []string
	Components    []string
}

// parseRelease parses RFC-822-like control-file fields from a Release
// file. Continuation lines (leading space/tab) are folded into the prior
// field's value, joined by a space.
func parseRelease(b []byte) Release {
	fields := parseStanza(b)
	var rel Release
	rel.Origin = fields["Origin"]
	rel.Codename = fields["Codename"]
	if v, ok := fields["Architectures"]; ok {
		rel.Architectures = strings.Fields(v)
	}
	if v, ok := fields["Components"]; ok {
		rel.Components = strings.Fields(v)
	}
	return rel
}

// parseStanza parses one RFC-822-like stanza into a field-name -> value
// map, folding continuation lines (leading whitespace) into the previous
// field.
func parseStanza(b []byte) map[string]string {
	fields := make(map[string]string)
	var lastKey string

	scanner := bufio.NewScanner(strings.NewReader(string(b)))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if lastKey != "" {
				fields[lastKey] += " " + strings.TrimSpace(line)
			}
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		fields[key] = val
		lastKey = key
	}
	return fields
}

// splitStanzas splits a Packages file into per-package stanzas, separated
// by one or more blank lines.
func splitStanzas(b []byte) []string {
	raw := strings.ReplaceAll(string(b), "\r\n", "\n")
	parts := strings.Split(raw, "\n\n")
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func operatorFrom(s string) ospkg.Operator {
	switch s {
	case ">>":
		return ospkg.OpGG
	case "<<":
		return ospkg.OpLL
	case ">=":
		return ospkg.OpGE
	case "<=":
		return ospkg.OpLE
	case "=", "==":
		return ospkg.OpEQ
	default:
		return ""
	}
}

var depOpOrder = []string{">>", "<<", ">=", "<=", "==", "="}

// parseDepField parses a Depends/Recommends/Suggests-shaped field: comma
// separated, with "a | b | c" alternations from which only the first
// literal is kept. Names containing "{" or starting with ":" are
// rejected (rare malformed/templated entries). A "base:arch" name is
// returned as written; stripping ":arch" is left to the resolver's APT
// adapter.
func parseDepField(field string) []ospkg.Dependency {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	var deps []ospkg.Dependency
	for _, clause := range strings.Split(field, ",") {
		alts := strings.Split(clause, "|")
		first := strings.TrimSpace(alts[0])
		if first == "" {
			continue
		}
		name, ver, op := parseOneDep(first)
		if name == "" || strings.Contains(name, "{") || strings.HasPrefix(name, ":") {
			continue
		}
		deps = append(deps, ospkg.Dependency{Name: name, Version: ver, Operator: op})
	}
	return deps
}

func parseOneDep(s string) (name, version string, op ospkg.Operator) {
	s = strings.TrimSpace(s)
	// Drop architecture qualifier like "libc6 (>= 2.17) [amd64]".
	if i := strings.IndexByte(s, '['); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	paren := strings.IndexByte(s, '(')
	if paren < 0 {
		return strings.TrimSpace(s), "", ""
	}
	name = strings.TrimSpace(s[:paren])
	inside := strings.TrimSuffix(strings.TrimSpace(s[paren+1:]), ")")
	for _, o := range depOpOrder {
		if strings.HasPrefix(inside, o) {
			op = operatorFrom(o)
			version = strings.TrimSpace(inside[len(o):])
			return name, version, op
		}
	}
	return name, strings.TrimSpace(inside), ""
}

// Parser loads and parses APT repository metadata.
type Parser struct {
	Fetcher *fetch.Fetcher
	Cache   *metacache.Cache
}

// New constructs a Parser.
func New(f *fetch.Fetcher, c *metacache.Cache) *Parser {
	return &Parser{Fetcher: f, Cache: c}
}

// LoadPackages fetches Release, then {component}/binary-{arch}/Packages.gz
// for every enabled component, and returns every Package compatible with
// targetArch.
func (p *Parser) LoadPackages(ctx context.Context, baseURL, repoID string, components []string, targetArch ospkg.Architecture) ([]ospkg.Package, error) {
	releaseURL := strings.TrimRight(baseURL, "/") + "/Release"
	rkey := metacache.Key{Family: ospkg.PackageManagerAPT, RepoURL: baseURL, Architecture: targetArch, Artefact: metacache.ArtefactRelease}
	releaseBytes, err := p.cachedFetch(ctx, rkey, releaseURL)
	if err != nil {
		return nil, fmt.Errorf("apt: fetch Release: %w", err)
	}
	_ = parseRelease(releaseBytes)

	debArch := string(ospkg.CanonicalForFamily(targetArch, ospkg.PackageManagerAPT))

	var out []ospkg.Package
	for _, component := range components {
		pkgURL := fmt.Sprintf("%s/%s/binary-%s/Packages.gz", strings.TrimRight(baseURL, "/"), component, debArch)
		pkey := metacache.Key{Family: ospkg.PackageManagerAPT, RepoURL: pkgURL, Architecture: targetArch, Artefact: metacache.ArtefactPackages}
		gzBytes, err := p.cachedFetch(ctx, pkey, pkgURL)
		if err != nil {
			return nil, fmt.Errorf("apt: fetch %s: %w", pkgURL, err)
		}
		raw, err := fetch.GunzipAll(fetch.BytesReader(gzBytes))
		if err != nil {
			return nil, fmt.Errorf("apt: gunzip %s: %w", pkgURL, err)
		}
		for _, stanza := range splitStanzas(raw) {
			pkg := parseStanzaToPackage(stanza, repoID)
			if pkg.Name == "" {
				continue
			}
			if !ospkg.Compatible(pkg.Architecture, targetArch) {
				continue
			}
			out = append(out, pkg)
		}
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

func parseStanzaToPackage(stanza string, repoID string) ospkg.Package {
	f := parseStanza([]byte(stanza))

	checksum := ospkg.Checksum{}
	switch {
	case f["SHA256"] != "":
		checksum = ospkg.Checksum{Type: ospkg.ChecksumSHA256, Value: strings.Fields(f["SHA256"])[0]}
	case f["SHA1"] != "":
		checksum = ospkg.Checksum{Type: ospkg.ChecksumSHA1, Value: strings.Fields(f["SHA1"])[0]}
	case f["MD5sum"] != "":
		checksum = ospkg.Checksum{Type: ospkg.ChecksumMD5, Value: strings.Fields(f["MD5sum"])[0]}
	}

	var size int64
	if n, err := strconv.ParseInt(f["Size"], 10, 64); err == nil {
		size = n
	}
	var installedSize int64
	if n, err := strconv.ParseInt(f["Installed-Size"], 10, 64); err == nil {
		installedSize = n * 1024
	}

	deps := parseDepField(f["Depends"])
	var recommends, suggests []string
	for _, d := range parseDepField(f["Recommends"]) {
		d.IsRecommend = true
		deps = append(deps, d)
		recommends = append(recommends, d.Name)
	}
	for _, d := range parseDepField(f["Suggests"]) {
		d.IsOptional = true
		deps = append(deps, d)
		suggests = append(suggests, d.Name)
	}

	var conflicts []string
	for _, d := range parseDepField(f["Conflicts"]) {
		conflicts = append(conflicts, d.Name)
	}

	provides := strings.Split(f["Provides"], ",")
	for i := range provides {
		provides[i] = strings.TrimSpace(provides[i])
	}
	provides = removeEmpty(provides)

	return ospkg.Package{
		Name:           f["Package"],
		Version:        f["Version"],
		Architecture:   ospkg.Architecture(f["Architecture"]),
		Size:           size,
		InstalledSize:  installedSize,
		Checksum:       checksum,
		Location:       f["Filename"],
		Repository:     repoID,
		Dependencies:   deps,
		Provides:       provides,
		Conflicts:      conflicts,
		Suggests:       suggests,
		Recommends:     recommends,
		PackageManager: ospkg.PackageManagerAPT,
	}
}

func removeEmpty(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
