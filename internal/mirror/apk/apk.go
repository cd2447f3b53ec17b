// Package apk re-emits an Alpine/APK repository (flat pool +
// APKINDEX.tar.gz) over a downloaded package subset.
package apk

import (
	"archive/tar"
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/depssmuggler/core/internal/mirror"
	"github.com/depssmuggler/core/internal/ospkg"
)

// Synthesise writes APKINDEX.tar.gz under outDir for pkgs, which must
// already be the downloaded subset.
func Synthesise(outDir string, pkgs []ospkg.Package) error {
	sorted := mirror.SortedByIdentity(pkgs)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	index := buildIndexText(sorted)

	tgz, err := buildIndexTarGz(index)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(outDir, "APKINDEX.tar.gz"), tgz, 0644)
}

// buildIndexText renders the single-letter-keyed stanzas read back by
// internal/ospkg/apk, one per package, blank-line separated.
func buildIndexText(sorted []ospkg.Package) string {
	var buf bytes.Buffer
	for i, p := range sorted {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "P:%s\n", p.Name)
		fmt.Fprintf(&buf, "V:%s\n", p.Version)
		fmt.Fprintf(&buf, "A:%s\n", p.Architecture)
		if p.Checksum.Value != "" {
			fmt.Fprintf(&buf, "C:%s\n", encodeChecksum(p.Checksum))
		}
		fmt.Fprintf(&buf, "S:%d\n", p.Size)
		if p.InstalledSize > 0 {
			fmt.Fprintf(&buf, "I:%d\n", p.InstalledSize)
		}
		if len(p.Dependencies) > 0 || len(p.Conflicts) > 0 {
			fmt.Fprintf(&buf, "D:%s\n", joinDepends(p))
		}
		if len(p.Provides) > 0 {
			fmt.Fprintf(&buf, "p:%s\n", strings.Join(p.Provides, " "))
		}
	}
	return buf.String()
}

func joinDepends(p ospkg.Package) string {
	tokens := make([]string, 0, len(p.Dependencies)+len(p.Conflicts))
	for _, d := range p.Dependencies {
		tok := d.Name
		if d.Operator != "" && d.Version != "" {
			tok += string(d.Operator) + d.Version
		}
		if d.IsOptional {
			tok = "~" + tok
		}
		tokens = append(tokens, tok)
	}
	for _, c := range p.Conflicts {
		tokens = append(tokens, "!"+c)
	}
	return strings.Join(tokens, " ")
}

// encodeChecksum renders a Checksum back to APKINDEX's "C:" convention:
// "Q1"+base64 for sha1, "sha256:"+hex for sha256.
func encodeChecksum(c ospkg.Checksum) string {
	switch c.Type {
	case ospkg.ChecksumSHA1:
		raw, err := hex.DecodeString(c.Value)
		if err != nil {
			return ""
		}
		return "Q1" + base64.StdEncoding.EncodeToString(raw)
	case ospkg.ChecksumSHA256:
		return "sha256:" + c.Value
	default:
		return ""
	}
}

func buildIndexTarGz(index string) ([]byte, error) {
	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	hdr := &tar.Header{
		Name: "APKINDEX",
		Mode: 0644,
		Size: int64(len(index)),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return nil, err
	}
	if _, err := tw.Write([]byte(index)); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}

	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	if _, err := gw.Write(tarBuf.Bytes()); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return gzBuf.Bytes(), nil
}
