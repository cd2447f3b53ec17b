package download

import (
	"testing"

	"github.com/depssmuggler/core/internal/ospkg"
)

func TestFilenameYUM(t *testing.T) {
	p := ospkg.Package{Name: "curl", Version: "7.68.0", Release: "1", Architecture: ospkg.ArchX86_64, PackageManager: ospkg.PackageManagerYUM}
	if got := Filename(p); got != "curl-7.68.0-1.x86_64.rpm" {
		t.Errorf("Filename() = %q, want curl-7.68.0-1.x86_64.rpm", got)
	}
}

func TestFilenameYUMNoRelease(t *testing.T) {
	p := ospkg.Package{Name: "curl", Version: "7.68.0", Architecture: ospkg.ArchX86_64, PackageManager: ospkg.PackageManagerYUM}
	if got := Filename(p); got != "curl-7.68.0.x86_64.rpm" {
		t.Errorf("Filename() = %q, want curl-7.68.0.x86_64.rpm", got)
	}
}

func TestFilenameAPT(t *testing.T) {
	p := ospkg.Package{Name: "curl", Version: "7.68.0-1ubuntu2", Architecture: ospkg.ArchX86_64, PackageManager: ospkg.PackageManagerAPT}
	if got := Filename(p); got != "curl_7.68.0-1ubuntu2_amd64.deb" {
		t.Errorf("Filename() = %q, want curl_7.68.0-1ubuntu2_amd64.deb (arch canonicalised to amd64)", got)
	}
}

func TestFilenameAPK(t *testing.T) {
	p := ospkg.Package{Name: "curl", Version: "7.68.0-r1", Architecture: ospkg.ArchX86_64, PackageManager: ospkg.PackageManagerAPK}
	if got := Filename(p); got != "curl-7.68.0-r1.apk" {
		t.Errorf("Filename() = %q, want curl-7.68.0-r1.apk", got)
	}
}
