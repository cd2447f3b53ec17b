package apk

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/depssmuggler/core/internal/ospkg"
)

func sampleCurl() ospkg.Package {
	return ospkg.Package{
		Name:         "curl",
		Version:      "7.68.0-r1",
		Architecture: ospkg.ArchX86_64,
		Size:         512,
		InstalledSize: 1024,
		Checksum:     ospkg.Checksum{Type: ospkg.ChecksumSHA256, Value: "abc123"},
		Dependencies: []ospkg.Dependency{
			{Name: "so:libssl.so.3"},
			{Name: "optional-thing", IsOptional: true},
		},
		Conflicts: []string{"curl-old"},
		Provides:  []string{"curl", "cmd:curl"},
	}
}

func readIndexFile(t *testing.T, dir string) string {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, "APKINDEX.tar.gz"))
	if err != nil {
		t.Fatalf("Open(APKINDEX.tar.gz) err = %v", err)
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip.NewReader() err = %v", err)
	}
	defer gr.Close()
	tr := tar.NewReader(gr)
	hdr, err := tr.Next()
	if err != nil {
		t.Fatalf("tar.Next() err = %v", err)
	}
	if hdr.Name != "APKINDEX" {
		t.Fatalf("tar entry name = %q, want APKINDEX", hdr.Name)
	}
	body, err := io.ReadAll(tr)
	if err != nil {
		t.Fatalf("read tar entry err = %v", err)
	}
	return string(body)
}

func TestSynthesiseWritesAPKINDEX(t *testing.T) {
	dir := t.TempDir()
	if err := Synthesise(dir, []ospkg.Package{sampleCurl()}); err != nil {
		t.Fatalf("Synthesise() err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "APKINDEX.tar.gz")); err != nil {
		t.Errorf("expected APKINDEX.tar.gz to exist: %v", err)
	}
}

func TestSynthesiseIndexStanza(t *testing.T) {
	dir := t.TempDir()
	if err := Synthesise(dir, []ospkg.Package{sampleCurl()}); err != nil {
		t.Fatalf("Synthesise() err = %v", err)
	}
	body := readIndexFile(t, dir)
	for _, want := range []string{
		"P:curl\n",
		"V:7.68.0-r1\n",
		"A:x86_64\n",
		"C:sha256:abc123\n",
		"S:512\n",
		"I:1024\n",
		"D:so:libssl.so.3 ~optional-thing !curl-old\n",
		"p:curl cmd:curl\n",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("APKINDEX missing %q, got:\n%s", want, body)
		}
	}
}

func TestSynthesiseOrdersPackagesByIdentity(t *testing.T) {
	dir := t.TempDir()
	zlib := ospkg.Package{Name: "zlib", Version: "1.0-r0", Architecture: ospkg.ArchX86_64}
	curl := sampleCurl()
	if err := Synthesise(dir, []ospkg.Package{zlib, curl}); err != nil {
		t.Fatalf("Synthesise() err = %v", err)
	}
	body := readIndexFile(t, dir)
	if strings.Index(body, "P:curl") > strings.Index(body, "P:zlib") {
		t.Error("curl should be listed before zlib (sorted by identity)")
	}
}

func TestEncodeChecksumSHA1(t *testing.T) {
	c := ospkg.Checksum{Type: ospkg.ChecksumSHA1, Value: "2bb225f0"}
	got := encodeChecksum(c)
	if !strings.HasPrefix(got, "Q1") {
		t.Errorf("encodeChecksum(sha1) = %q, want Q1 prefix", got)
	}
}

func TestEncodeChecksumUnknownType(t *testing.T) {
	c := ospkg.Checksum{Type: ospkg.ChecksumMD5, Value: "ignored"}
	if got := encodeChecksum(c); got != "" {
		t.Errorf("encodeChecksum(md5) = %q, want empty string", got)
	}
}

func TestBuildIndexTarGzRoundTrip(t *testing.T) {
	tgz, err := buildIndexTarGz("P:curl\nV:1.0\n")
	if err != nil {
		t.Fatalf("buildIndexTarGz() err = %v", err)
	}
	gr, err := gzip.NewReader(bytes.NewReader(tgz))
	if err != nil {
		t.Fatalf("gzip.NewReader() err = %v", err)
	}
	tr := tar.NewReader(gr)
	hdr, err := tr.Next()
	if err != nil {
		t.Fatalf("tar.Next() err = %v", err)
	}
	if hdr.Name != "APKINDEX" {
		t.Errorf("tar entry name = %q, want APKINDEX", hdr.Name)
	}
}
