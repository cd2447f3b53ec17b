// Package archive bundles a downloaded package set into a portable
// archive (zip or tar.gz) carrying the package files, generated install
// scripts, ordered metadata, and a README, per the "archive" output
// mode.
package archive

import (
	"archive/tar"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/depssmuggler/core/internal/archive/scripts"
	"github.com/depssmuggler/core/internal/download"
	"github.com/depssmuggler/core/internal/ospkg"
)

// Format names an archive container format.
type Format string

const (
	FormatZip   Format = "zip"
	FormatTarGz Format = "tar.gz"
)

// Entry describes one downloaded package's on-disk location for bundling.
type Entry struct {
	Package  ospkg.Package
	FilePath string
}

// Build writes a self-contained archive to outPath containing
// packages/<files>, install.sh, install.ps1, metadata.json and
// README.txt, in the given format. entries must already be in
// topological install order.
func Build(outPath string, format Format, entries []Entry) error {
	meta := buildMetadata(entries)
	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	metaJSON = append(metaJSON, '\n')

	installSh := scripts.RenderShellInstaller(meta)
	installPs1 := scripts.RenderPowerShellInstaller(meta)
	readme := scripts.RenderReadme(meta)

	switch format {
	case FormatZip:
		return buildZip(outPath, entries, metaJSON, installSh, installPs1, readme)
	default:
		return buildTarGz(outPath, entries, metaJSON, installSh, installPs1, readme)
	}
}

func buildMetadata(entries []Entry) []scripts.PackageMeta {
	out := make([]scripts.PackageMeta, 0, len(entries))
	for _, e := range entries {
		out = append(out, scripts.PackageMeta{
			Name:     e.Package.Name,
			Version:  e.Package.Version,
			Arch:     string(e.Package.Architecture),
			Size:     e.Package.Size,
			Filename: download.Filename(e.Package),
		})
	}
	return out
}

func buildTarGz(outPath string, entries []Entry, metaJSON, installSh, installPs1, readme []byte) error {
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	defer gw.Close()
	tw := tar.NewWriter(gw)
	defer tw.Close()

	for _, e := range entries {
		if err := addFileToTar(tw, filepath.Join("packages", download.Filename(e.Package)), e.FilePath); err != nil {
			return err
		}
	}
	if err := addBytesToTar(tw, "install.sh", installSh, 0755); err != nil {
		return err
	}
	if err := addBytesToTar(tw, "install.ps1", installPs1, 0644); err != nil {
		return err
	}
	if err := addBytesToTar(tw, "metadata.json", metaJSON, 0644); err != nil {
		return err
	}
	return addBytesToTar(tw, "README.txt", readme, 0644)
}

func addFileToTar(tw *tar.Writer, name, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}

	hdr := &tar.Header{Name: name, Mode: 0644, Size: info.Size()}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, src)
	return err
}

func addBytesToTar(tw *tar.Writer, name string, content []byte, mode int64) error {
	hdr := &tar.Header{Name: name, Mode: mode, Size: int64(len(content))}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := tw.Write(content)
	return err
}
