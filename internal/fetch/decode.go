package fetch

import (
	"archive/tar"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// DecodeGzip wraps r in a gzip decompressor. Used on primary.xml.gz,
// Packages.gz and APKINDEX.tar.gz's outer gzip layer.
func DecodeGzip(r io.Reader) (io.ReadCloser, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("fetch: gzip decode: %w", err)
	}
	return gz, nil
}

// ExtractTarMember reads a tar stream from r and returns the content of
// the first member whose name matches. Used to pull the APKINDEX text
// file out of APKINDEX.tar.gz's (already gunzipped) tar layer.
func ExtractTarMember(r io.Reader, name string) ([]byte, error) {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("fetch: tar member %q not found", name)
		}
		if err != nil {
			return nil, fmt.Errorf("fetch: tar read: %w", err)
		}
		if hdr.Name != name {
			continue
		}
		return io.ReadAll(tr)
	}
}

// GunzipAll reads all of r, gzip-decompressing it in one step. Convenience
// for the common case of "fetch bytes, then fully decompress them".
func GunzipAll(r io.Reader) ([]byte, error) {
	gz, err := DecodeGzip(r)
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return io.ReadAll(gz)
}
