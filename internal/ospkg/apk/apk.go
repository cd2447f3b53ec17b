// Package apk parses Alpine/APK repository metadata (APKINDEX.tar.gz)
// into the unified internal/ospkg model (component C4).
package apk

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/depssmuggler/core/internal/fetch"
	"github.com/depssmuggler/core/internal/metacache"
	"github.com/depssmuggler/core/internal/ospkg"
)

// Parser loads and parses APK repository metadata.
type Parser struct {
	Fetcher *fetch.Fetcher
	Cache   *metacache.Cache
}

// New constructs a Parser.
func New(f *fetch.Fetcher, c *metacache.Cache) *Parser {
	return &Parser{Fetcher: f, Cache: c}
}

// LoadPackages fetches {baseURL}/APKINDEX.tar.gz, extracts the APKINDEX
// text member, parses its single-letter-keyed stanzas, and returns every
// Package compatible with targetArch. baseURL is expected to already be
// arch-specific (catalog.ResolveURL binds $basearch before this is
// called).
func (p *Parser) LoadPackages(ctx context.Context, baseURL, repoID string, targetArch ospkg.Architecture) ([]ospkg.Package, error) {
	indexURL := strings.TrimRight(baseURL, "/") + "/APKINDEX.tar.gz"

	key := metacache.Key{Family: ospkg.PackageManagerAPK, RepoURL: baseURL, Architecture: targetArch, Artefact: metacache.ArtefactAPKIndex}

	var raw []byte
	if p.Cache != nil {
		if e, ok := p.Cache.Get(key); ok {
			raw = e.Data
		}
	}
	if raw == nil {
		tgz, err := p.Fetcher.GetBytes(ctx, indexURL)
		if err != nil {
			return nil, fmt.Errorf("apk: fetch APKINDEX.tar.gz: %w", err)
		}
		gunzipped, err := fetch.GunzipAll(fetch.BytesReader(tgz))
		if err != nil {
			return nil, fmt.Errorf("apk: gunzip APKINDEX.tar.gz: %w", err)
		}
		member, err := fetch.ExtractTarMember(fetch.BytesReader(gunzipped), "APKINDEX")
		if err != nil {
			return nil, fmt.Errorf("apk: extract APKINDEX: %w", err)
		}
		raw = member
		if p.Cache != nil {
			p.Cache.Set(key, raw)
		}
	}

	var out []ospkg.Package
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
	return out, nil
}

// splitStanzas splits an APKINDEX text file into per-package stanzas,
// separated by blank lines.
func splitStanzas(raw []byte) []string {
	s := strings.ReplaceAll(string(raw), "\r\n", "\n")
	parts := strings.Split(s, "\n\n")
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func stripVersionSuffix(s string) string {
	if i := strings.IndexByte(s, '='); i >= 0 {
		return s[:i]
	}
	return s
}

func operatorAndVersion(s string) (ospkg.Operator, string) {
	for _, op := range []string{"<=", ">=", "=", "<", ">", "~"} {
		if strings.HasPrefix(s, op) {
			rest := s[len(op):]
			if op == "~" {
				return ospkg.OpGE, rest
			}
			return ospkg.Operator(op), rest
		}
	}
	return "", ""
}

func parseDepend(field string) ospkg.Dependency {
	// Each token may look like "name", "name>=1.2", "so:libssl.so.3",
	// "cmd:sh=1.2.3", "!conflict-name" (conflict, handled by caller).
	for _, op := range []string{"<=", ">=", "=", "<", ">", "~"} {
		if idx := strings.Index(field, op); idx > 0 {
			name := field[:idx]
			opSym, ver := operatorAndVersion(field[idx:])
			return ospkg.Dependency{Name: name, Version: ver, Operator: opSym}
		}
	}
	return ospkg.Dependency{Name: field}
}

func parseStanzaToPackage(stanza string, repoID string) ospkg.Package {
	fields := make(map[string][]string)
	for _, line := range strings.Split(stanza, "\n") {
		if len(line) < 2 || line[1] != ':' {
			continue
		}
		key := line[:1]
		val := strings.TrimSpace(line[2:])
		fields[key] = append(fields[key], val)
	}

	get := func(k string) string {
		if v := fields[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	var size, installedSize int64
	if n, err := strconv.ParseInt(get("S"), 10, 64); err == nil {
		size = n
	}
	if n, err := strconv.ParseInt(get("I"), 10, 64); err == nil {
		installedSize = n
	}

	checksum := parseChecksum(get("C"))

	var deps []ospkg.Dependency
	var conflicts []string
	if d := get("D"); d != "" {
		for _, tok := range strings.Fields(d) {
			if strings.HasPrefix(tok, "!") {
				conflicts = append(conflicts, strings.TrimPrefix(tok, "!"))
				continue
			}
			isOptional := false
			if strings.HasPrefix(tok, "~") {
				tok = strings.TrimPrefix(tok, "~")
				isOptional = true
			}
			dep := parseDepend(tok)
			dep.IsOptional = isOptional
			deps = append(deps, dep)
		}
	}

	var provides []string
	if pr := get("p"); pr != "" {
		for _, tok := range strings.Fields(pr) {
			provides = append(provides, tok)
			if stripped := stripVersionSuffix(tok); stripped != tok {
				provides = append(provides, stripped)
			}
		}
	}

	return ospkg.Package{
		Name:           get("P"),
		Version:        get("V"),
		Architecture:   ospkg.Architecture(get("A")),
		Size:           size,
		InstalledSize:  installedSize,
		Checksum:       checksum,
		Location:       get("P") + "-" + get("V") + ".apk",
		Repository:     repoID,
		Dependencies:   deps,
		Provides:       provides,
		Conflicts:      conflicts,
		PackageManager: ospkg.PackageManagerAPK,
	}
}

func parseChecksum(v string) ospkg.Checksum {
	switch {
	case strings.HasPrefix(v, "Q1"):
		decoded, err := base64.StdEncoding.DecodeString(v[2:])
		if err != nil {
			return ospkg.Checksum{}
		}
		return ospkg.Checksum{Type: ospkg.ChecksumSHA1, Value: hex.EncodeToString(decoded)}
	case strings.HasPrefix(v, "sha256:"):
		return ospkg.Checksum{Type: ospkg.ChecksumSHA256, Value: strings.TrimPrefix(v, "sha256:")}
	default:
		return ospkg.Checksum{}
	}
}
