package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/depssmuggler/core/internal/catalog"
	"github.com/depssmuggler/core/internal/download"
	"github.com/depssmuggler/core/internal/ospkg"
	"github.com/depssmuggler/core/internal/resolve"
)

func TestLookupDistroKnown(t *testing.T) {
	dist, err := lookupDistro("rocky-9")
	if err != nil {
		t.Fatalf("lookupDistro() err = %v", err)
	}
	if dist.PackageManager != ospkg.PackageManagerYUM {
		t.Errorf("PackageManager = %q, want yum", dist.PackageManager)
	}
}

func TestLookupDistroUnknown(t *testing.T) {
	if _, err := lookupDistro("does-not-exist"); err == nil {
		t.Error("lookupDistro() should error for an unregistered distro ID")
	}
}

func TestNewFetcherReturnsUsableFetcher(t *testing.T) {
	if f := newFetcher(); f == nil {
		t.Error("newFetcher() returned nil")
	}
}

func TestNewMetaCacheReturnsUsableCache(t *testing.T) {
	cache, err := newMetaCache()
	if err != nil {
		t.Fatalf("newMetaCache() err = %v", err)
	}
	if cache == nil {
		t.Error("newMetaCache() returned nil cache")
	}
}

func TestResolveAllOrdersByDependency(t *testing.T) {
	candidates := []ospkg.Package{
		{Name: "curl", Version: "7.68.0", Architecture: ospkg.ArchX86_64, PackageManager: ospkg.PackageManagerYUM,
			Dependencies: []ospkg.Dependency{{Name: "openssl-libs", Operator: ospkg.OpGE, Version: "1.0"}}},
		{Name: "openssl-libs", Version: "1.0", Architecture: ospkg.ArchX86_64, PackageManager: ospkg.PackageManagerYUM},
	}
	result := resolveAll([]string{"curl"}, candidates, ospkg.PackageManagerYUM, ospkg.ArchX86_64, resolve.Options{})
	if len(result.Packages) != 2 {
		t.Fatalf("Packages = %+v, want 2 entries (curl + its dependency)", result.Packages)
	}
	if result.Packages[0].Name != "openssl-libs" || result.Packages[1].Name != "curl" {
		t.Errorf("install order = %v, want [openssl-libs curl]", result.Packages)
	}
}

func TestReportResolutionCleanResultReturnsTrue(t *testing.T) {
	if !reportResolution(resolve.Result{}) {
		t.Error("reportResolution() should return true when there are no unresolved deps")
	}
}

func TestReportResolutionUnresolvedReturnsFalse(t *testing.T) {
	result := resolve.Result{Unresolved: []resolve.Unresolved{
		{Package: ospkg.Key{Name: "curl"}, Dep: ospkg.Dependency{Name: "missing-lib"}, Reason: resolve.ReasonNotFound},
	}}
	if reportResolution(result) {
		t.Error("reportResolution() should return false when there are unresolved deps")
	}
}

func TestDownloadAllUnknownRepositoryErrors(t *testing.T) {
	pkg := ospkg.Package{Name: "curl", Version: "1.0", Repository: "nonexistent-repo"}
	if _, err := downloadAll(context.Background(), newFetcher(), []ospkg.Package{pkg}, map[string]catalog.Repository{}, t.TempDir(), "rocky-9"); err == nil {
		t.Error("downloadAll() should error when a package references an unknown repository")
	}
}

func TestDownloadAllSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bytes"))
	}))
	defer srv.Close()

	pkg := ospkg.Package{Name: "curl", Version: "1.0", Architecture: ospkg.ArchX86_64, Location: "curl.rpm", Repository: "base", PackageManager: ospkg.PackageManagerYUM}
	repoByID := map[string]catalog.Repository{"base": {ID: "base", BaseURL: srv.URL}}

	result, err := downloadAll(context.Background(), newFetcher(), []ospkg.Package{pkg}, repoByID, t.TempDir(), "rocky-9")
	if err != nil {
		t.Fatalf("downloadAll() err = %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Status() != download.StatusCompleted {
		t.Fatalf("Items = %+v, want one completed item", result.Items)
	}
}
