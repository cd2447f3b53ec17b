// Package apt re-emits the index of a flat Debian/APT repository
// (Packages + Packages.gz + Release) over a downloaded package subset.
package apt

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/depssmuggler/core/internal/mirror"
	"github.com/depssmuggler/core/internal/ospkg"
)

// Synthesise writes Packages/Packages.gz/Release (flat repository layout)
// under outDir for pkgs (the downloaded subset); it does not copy the
// .deb files, whose paths come from each package's Location. archs names the
// architectures to list in Release (informational; all pkgs are expected
// to already be filtered to the target architecture set).
func Synthesise(outDir string, pkgs []ospkg.Package, archs []string) error {
	sorted := mirror.SortedByIdentity(pkgs)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	packagesText := buildPackagesText(sorted)

	if err := os.WriteFile(filepath.Join(outDir, "Packages"), []byte(packagesText), 0644); err != nil {
		return err
	}

	gz, err := gzipBytes([]byte(packagesText))
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "Packages.gz"), gz, 0644); err != nil {
		return err
	}

	release := buildRelease(archs, []byte(packagesText), gz)
	return os.WriteFile(filepath.Join(outDir, "Release"), []byte(release), 0644)
}

// buildPackagesText renders each package as a Debian control stanza,
// separated by a blank line, matching the field set internal/ospkg/apt
// parses back out (round-trip law in spec §8).
func buildPackagesText(sorted []ospkg.Package) string {
	var buf bytes.Buffer
	for i, p := range sorted {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "Package: %s\n", p.Name)
		fmt.Fprintf(&buf, "Version: %s\n", p.Version)
		fmt.Fprintf(&buf, "Architecture: %s\n", p.Architecture)
		if deps := filterDeps(p.Dependencies, func(d ospkg.Dependency) bool { return !d.IsRecommend && !d.IsOptional }); len(deps) > 0 {
			fmt.Fprintf(&buf, "Depends: %s\n", joinDeps(deps, false, false))
		}
		if recs := filterDeps(p.Dependencies, func(d ospkg.Dependency) bool { return d.IsRecommend }); len(recs) > 0 {
			fmt.Fprintf(&buf, "Recommends: %s\n", joinDeps(recs, false, false))
		}
		if sugs := filterDeps(p.Dependencies, func(d ospkg.Dependency) bool { return d.IsOptional }); len(sugs) > 0 {
			fmt.Fprintf(&buf, "Suggests: %s\n", joinDeps(sugs, false, false))
		}
		if len(p.Provides) > 0 {
			fmt.Fprintf(&buf, "Provides: %s\n", strings.Join(p.Provides, ", "))
		}
		if len(p.Conflicts) > 0 {
			fmt.Fprintf(&buf, "Conflicts: %s\n", strings.Join(p.Conflicts, ", "))
		}
		fmt.Fprintf(&buf, "Filename: %s\n", p.Location)
		fmt.Fprintf(&buf, "Size: %d\n", p.Size)
		if p.InstalledSize > 0 {
			fmt.Fprintf(&buf, "Installed-Size: %d\n", p.InstalledSize/1024)
		}
		if p.Checksum.Type == ospkg.ChecksumSHA256 {
			fmt.Fprintf(&buf, "SHA256: %s\n", p.Checksum.Value)
		}
	}
	return buf.String()
}

func filterDeps(deps []ospkg.Dependency, keep func(ospkg.Dependency) bool) []ospkg.Dependency {
	var out []ospkg.Dependency
	for _, d := range deps {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

func joinDeps(deps []ospkg.Dependency, _, _ bool) string {
	parts := make([]string, 0, len(deps))
	for _, d := range deps {
		if d.Operator == "" || d.Version == "" {
			parts = append(parts, d.Name)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s %s)", d.Name, d.Operator, d.Version))
	}
	return strings.Join(parts, ", ")
}

func gzipBytes(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildRelease(archs []string, packagesText, packagesGz []byte) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Origin: depssmuggler\n")
	fmt.Fprintf(&buf, "Codename: local\n")
	fmt.Fprintf(&buf, "Architectures: %s\n", strings.Join(archs, " "))
	fmt.Fprintf(&buf, "Components: ./\n")
	fmt.Fprintf(&buf, "SHA256:\n")
	fmt.Fprintf(&buf, " %s %d Packages\n", hexSHA256(packagesText), len(packagesText))
	fmt.Fprintf(&buf, " %s %d Packages.gz\n", hexSHA256(packagesGz), len(packagesGz))
	return buf.String()
}

func hexSHA256(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
