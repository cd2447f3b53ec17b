package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"github.com/depssmuggler/core/internal/download"
)

func buildZip(outPath string, entries []Entry, metaJSON, installSh, installPs1, readme []byte) error {
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	for _, e := range entries {
		if err := addFileToZip(zw, filepath.Join("packages", download.Filename(e.Package)), e.FilePath); err != nil {
			return err
		}
	}
	if err := addBytesToZip(zw, "install.sh", installSh); err != nil {
		return err
	}
	if err := addBytesToZip(zw, "install.ps1", installPs1); err != nil {
		return err
	}
	if err := addBytesToZip(zw, "metadata.json", metaJSON); err != nil {
		return err
	}
	return addBytesToZip(zw, "README.txt", readme)
}

func addFileToZip(zw *zip.Writer, name, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func addBytesToZip(zw *zip.Writer, name string, content []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}
