// Package yum re-emits a YUM/DNF repository (Packages/ + repodata/) over a
// downloaded package subset.
package yum

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/depssmuggler/core/internal/mirror"
	"github.com/depssmuggler/core/internal/ospkg"
)

type primaryMetadata struct {
	XMLName     xml.Name `xml:"metadata"`
	Xmlns       string   `xml:"xmlns,attr"`
	XmlnsRpm    string   `xml:"xmlns:rpm,attr"`
	PackageCnt  int      `xml:"packages,attr"`
	Packages    []primaryPackage `xml:"package"`
}

type primaryPackage struct {
	Type     string `xml:"type,attr"`
	Name     string `xml:"name"`
	Arch     string `xml:"arch"`
	Version  primaryVersion  `xml:"version"`
	Checksum primaryChecksum `xml:"checksum"`
	Size     primarySize     `xml:"size"`
	Location primaryLocation `xml:"location"`
	Format   primaryFormat   `xml:"format"`
}

type primaryVersion struct {
	Epoch string `xml:"epoch,attr"`
	Ver   string `xml:"ver,attr"`
	Rel   string `xml:"rel,attr"`
}

type primaryChecksum struct {
	Type string `xml:"type,attr"`
	Text string `xml:",chardata"`
}

type primarySize struct {
	Package   int64 `xml:"package,attr"`
	Installed int64 `xml:"installed,attr"`
}

type primaryLocation struct {
	Href string `xml:"href,attr"`
}

type primaryFormat struct {
	Provides primaryEntryList `xml:"provides"`
	Requires primaryEntryList `xml:"requires"`
}

type primaryEntryList struct {
	Entries []primaryEntry `xml:"entry"`
}

type primaryEntry struct {
	Name string `xml:"name,attr"`
}

// Synthesise writes repodata/{primary.xml.gz, filelists.xml.gz,
// other.xml.gz, repomd.xml} under outDir for pkgs (it does not copy the
// package files themselves),
// which must already be the downloaded subset. now stamps repomd.xml's
// <revision>; callers pass a fixed value in tests to get byte-identical
// output across runs.
func Synthesise(outDir string, pkgs []ospkg.Package, now time.Time) error {
	sorted := mirror.SortedByIdentity(pkgs)

	repodataDir := filepath.Join(outDir, "repodata")
	if err := os.MkdirAll(repodataDir, 0755); err != nil {
		return err
	}

	primaryXML, err := buildPrimaryXML(sorted)
	if err != nil {
		return err
	}
	filelistsXML := buildEmptyXML("filelists")
	otherXML := buildEmptyXML("otherdata")

	primaryGz, err := gzipBytes(primaryXML)
	if err != nil {
		return err
	}
	filelistsGz, err := gzipBytes(filelistsXML)
	if err != nil {
		return err
	}
	otherGz, err := gzipBytes(otherXML)
	if err != nil {
		return err
	}

	if err := writeFile(repodataDir, "primary.xml.gz", primaryGz); err != nil {
		return err
	}
	if err := writeFile(repodataDir, "filelists.xml.gz", filelistsGz); err != nil {
		return err
	}
	if err := writeFile(repodataDir, "other.xml.gz", otherGz); err != nil {
		return err
	}

	repomd := buildRepomd(primaryGz, filelistsGz, otherGz, now)
	if err := writeFile(repodataDir, "repomd.xml", repomd); err != nil {
		return err
	}

	return nil
}

func buildPrimaryXML(sorted []ospkg.Package) ([]byte, error) {
	md := primaryMetadata{
		Xmlns:      "http://linux.duke.edu/metadata/common",
		XmlnsRpm:   "http://linux.duke.edu/metadata/rpm",
		PackageCnt: len(sorted),
	}
	for _, p := range sorted {
		pp := primaryPackage{
			Type: "rpm",
			Name: p.Name,
			Arch: string(p.Architecture),
			Version: primaryVersion{
				Epoch: nonEmptyOr(p.Epoch, "0"),
				Ver:   p.Version,
				Rel:   nonEmptyOr(p.Release, "1"),
			},
			Checksum: primaryChecksum{Type: string(p.Checksum.Type), Text: p.Checksum.Value},
			Size:     primarySize{Package: p.Size, Installed: p.InstalledSize},
			Location: primaryLocation{Href: filepath.ToSlash(filepath.Join("Packages", filepath.Base(p.Location)))},
		}
		for _, prov := range p.Provides {
			pp.Format.Provides.Entries = append(pp.Format.Provides.Entries, primaryEntry{Name: prov})
		}
		for _, dep := range p.Dependencies {
			pp.Format.Requires.Entries = append(pp.Format.Requires.Entries, primaryEntry{Name: dep.Name})
		}
		md.Packages = append(md.Packages, pp)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(md); err != nil {
		return nil, fmt.Errorf("mirror/yum: encode primary.xml: %w", err)
	}
	return buf.Bytes(), nil
}

func buildEmptyXML(rootName string) []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	fmt.Fprintf(&buf, "<%s packages=\"0\"></%s>\n", rootName, rootName)
	return buf.Bytes()
}

type repomdXML struct {
	XMLName  xml.Name `xml:"repomd"`
	Xmlns    string   `xml:"xmlns,attr"`
	Revision int64    `xml:"revision"`
	Data     []repomdDataXML `xml:"data"`
}

type repomdDataXML struct {
	Type     string             `xml:"type,attr"`
	Checksum repomdChecksumXML  `xml:"checksum"`
	Location repomdLocationXML  `xml:"location"`
	Size     int64              `xml:"size"`
}

type repomdChecksumXML struct {
	Type string `xml:"type,attr"`
	Text string `xml:",chardata"`
}

type repomdLocationXML struct {
	Href string `xml:"href,attr"`
}

func buildRepomd(primaryGz, filelistsGz, otherGz []byte, now time.Time) []byte {
	rm := repomdXML{
		Xmlns:    "http://linux.duke.edu/metadata/repo",
		Revision: now.Unix(),
	}
	rm.Data = append(rm.Data, dataEntry("primary", "repodata/primary.xml.gz", primaryGz))
	rm.Data = append(rm.Data, dataEntry("filelists", "repodata/filelists.xml.gz", filelistsGz))
	rm.Data = append(rm.Data, dataEntry("other", "repodata/other.xml.gz", otherGz))

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	_ = enc.Encode(rm)
	return buf.Bytes()
}

func dataEntry(typ, href string, content []byte) repomdDataXML {
	sum := sha256.Sum256(content)
	return repomdDataXML{
		Type:     typ,
		Checksum: repomdChecksumXML{Type: "sha256", Text: hex.EncodeToString(sum[:])},
		Location: repomdLocationXML{Href: href},
		Size:     int64(len(content)),
	}
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

func writeFile(dir, name string, content []byte) error {
	return os.WriteFile(filepath.Join(dir, name), content, 0644)
}

func nonEmptyOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
