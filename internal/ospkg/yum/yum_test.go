package yum

import (
	"testing"

	"github.com/depssmuggler/core/internal/ospkg"
)

func TestIsSystemDep(t *testing.T) {
	cases := map[string]bool{
		"rpmlib(CompressedFileNames)": true,
		"config(curl)":                true,
		"/bin/sh":                     true,
		"libc.so.6()(64bit)":          true,
		"openssl-libs":                false,
	}
	for name, want := range cases {
		if got := isSystemDep(name); got != want {
			t.Errorf("isSystemDep(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestFlagsToOperator(t *testing.T) {
	cases := map[string]ospkg.Operator{
		"EQ": ospkg.OpEQ,
		"LT": ospkg.OpLT,
		"GT": ospkg.OpGT,
		"LE": ospkg.OpLE,
		"GE": ospkg.OpGE,
		"":   "",
		"XX": "",
	}
	for flags, want := range cases {
		if got := flagsToOperator(flags); got != want {
			t.Errorf("flagsToOperator(%q) = %q, want %q", flags, got, want)
		}
	}
}

func TestStripParenSuffix(t *testing.T) {
	if got := stripParenSuffix("libfoo.so.1()(64bit)"); got != "libfoo.so.1" {
		t.Errorf("stripParenSuffix() = %q, want libfoo.so.1", got)
	}
	if got := stripParenSuffix("curl"); got != "curl" {
		t.Errorf("stripParenSuffix() = %q, want curl unchanged", got)
	}
}

func TestFlattenNamesAddsStrippedVariant(t *testing.T) {
	l := primaryEntryList{Entries: []primaryEntry{
		{Name: "libfoo.so.1()(64bit)"},
		{Name: "curl"},
	}}
	got := flattenNames(l)
	want := []string{"libfoo.so.1()(64bit)", "libfoo.so.1", "curl"}
	if len(got) != len(want) {
		t.Fatalf("flattenNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("flattenNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestConvertPackage(t *testing.T) {
	raw := primaryPkg{
		Type: "rpm",
		Name: "curl",
		Arch: "x86_64",
	}
	raw.Version.Epoch = "0"
	raw.Version.Ver = "7.68.0"
	raw.Version.Rel = "1"
	raw.Checksum.Type = "SHA256"
	raw.Checksum.Text = "  deadbeef  "
	raw.Size.Package = 100
	raw.Size.Installed = 200
	raw.Location.Href = "Packages/curl-7.68.0-1.x86_64.rpm"
	raw.Format.Requires.Entries = []primaryEntry{
		{Name: "openssl-libs", Ver: "1.1.1", Flags: "GE"},
		{Name: "rpmlib(CompressedFileNames)"},
	}
	raw.Format.Provides.Entries = []primaryEntry{{Name: "curl"}}

	pkg := convertPackage(raw, "base")

	if pkg.Name != "curl" || pkg.Version != "7.68.0" || pkg.Release != "1" || pkg.Epoch != "0" {
		t.Errorf("package identity = %+v", pkg)
	}
	if pkg.Checksum.Type != ospkg.ChecksumSHA256 || pkg.Checksum.Value != "deadbeef" {
		t.Errorf("checksum = %+v, want sha256/deadbeef (trimmed, lowercased)", pkg.Checksum)
	}
	if pkg.Repository != "base" {
		t.Errorf("Repository = %q, want base", pkg.Repository)
	}
	if pkg.PackageManager != ospkg.PackageManagerYUM {
		t.Errorf("PackageManager = %q, want yum", pkg.PackageManager)
	}
	if len(pkg.Dependencies) != 1 || pkg.Dependencies[0].Name != "openssl-libs" || pkg.Dependencies[0].Operator != ospkg.OpGE {
		t.Errorf("Dependencies = %+v, want only openssl-libs >= (rpmlib dep filtered out)", pkg.Dependencies)
	}
}

func TestRepomdLocationFor(t *testing.T) {
	rm := repomd{Data: []repomdData{
		{Type: "primary", Location: struct {
			Href string `xml:"href,attr"`
		}{Href: "repodata/primary.xml.gz"}},
	}}
	href, ok := rm.locationFor("primary")
	if !ok || href != "repodata/primary.xml.gz" {
		t.Errorf("locationFor(primary) = (%q, %v), want repodata/primary.xml.gz, true", href, ok)
	}
	if _, ok := rm.locationFor("filelists"); ok {
		t.Error("locationFor(filelists) should report not found")
	}
}
