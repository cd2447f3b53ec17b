package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/depssmuggler/core/internal/catalog"
	"github.com/depssmuggler/core/internal/config"
	"github.com/depssmuggler/core/internal/download"
	"github.com/depssmuggler/core/internal/fetch"
	"github.com/depssmuggler/core/internal/log"
	"github.com/depssmuggler/core/internal/metacache"
	"github.com/depssmuggler/core/internal/ospkg"
	"github.com/depssmuggler/core/internal/ospkg/apk"
	"github.com/depssmuggler/core/internal/ospkg/apt"
	"github.com/depssmuggler/core/internal/ospkg/yum"
	"github.com/depssmuggler/core/internal/resolve"
	"github.com/depssmuggler/core/internal/versionalg"
	"github.com/depssmuggler/core/internal/versionalg/semverhint"
)

// newFetcher builds the shared HTTP fetcher every subcommand downloads
// metadata and packages through, configured from the environment (see
// internal/config).
func newFetcher() *fetch.Fetcher {
	return fetch.New(fetch.Options{
		MaxRetries: config.GetMaxRetries(),
		BaseDelay:  config.GetBaseDelay(),
		Logger:     log.Default(),
	})
}

// newMetaCache builds the metadata cache every subcommand fetches
// repository metadata through.
func newMetaCache() (*metacache.Cache, error) {
	return metacache.New(metacache.Options{
		Mode:    metacache.Mode(config.GetCacheMode()),
		TTL:     config.GetCacheTTL(),
		MaxSize: config.GetCacheMaxSize(),
	})
}

// loadCandidates fetches and parses every enabled repository's metadata
// for dist, returning the full candidate package universe plus a lookup
// from Repository.ID to the Repository it came from (needed later to
// resolve each downloaded package's source URL).
func loadCandidates(ctx context.Context, dist catalog.Distribution, f *fetch.Fetcher, cache *metacache.Cache, targetArch ospkg.Architecture, includeExtended bool) ([]ospkg.Package, map[string]catalog.Repository, error) {
	repoByID := make(map[string]catalog.Repository)
	var all []ospkg.Package

	repos := dist.DefaultRepos
	for _, repo := range repos {
		if !repo.Enabled {
			continue
		}
		pkgs, err := loadRepoPackages(ctx, dist, repo, f, cache, targetArch)
		if err != nil {
			return nil, nil, err
		}
		repoByID[repo.ID] = repo
		all = append(all, stampRepoMetadata(pkgs, repo)...)
	}

	if includeExtended {
		for _, repo := range dist.ExtendedRepos {
			pkgs, err := loadRepoPackages(ctx, dist, repo, f, cache, targetArch)
			if err != nil {
				return nil, nil, err
			}
			repoByID[repo.ID] = repo
			all = append(all, stampRepoMetadata(pkgs, repo)...)
		}
	}

	return all, repoByID, nil
}

// stampRepoMetadata annotates each package with its owning repository's
// Priority and IsOfficial so the resolver's bestMatch tie-break (spec
// §4.6: higher priority, then official-before-unofficial, then
// first-indexed) has something to compare beyond version order.
func stampRepoMetadata(pkgs []ospkg.Package, repo catalog.Repository) []ospkg.Package {
	for i := range pkgs {
		pkgs[i].RepoPriority = repo.Priority
		pkgs[i].RepoOfficial = repo.IsOfficial
	}
	return pkgs
}

func loadRepoPackages(ctx context.Context, dist catalog.Distribution, repo catalog.Repository, f *fetch.Fetcher, cache *metacache.Cache, targetArch ospkg.Architecture) ([]ospkg.Package, error) {
	baseURL, err := catalog.ResolveURL(repo, dist.PackageManager, targetArch, dist.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve %s/%s base URL: %w", dist.ID, repo.ID, err)
	}

	switch dist.PackageManager {
	case ospkg.PackageManagerYUM:
		pkgs, err := yum.New(f, cache).LoadPackages(ctx, baseURL, repo.ID, targetArch)
		if err != nil {
			return nil, fmt.Errorf("load %s/%s: %w", dist.ID, repo.ID, err)
		}
		return pkgs, nil
	case ospkg.PackageManagerAPT:
		pkgs, err := apt.New(f, cache).LoadPackages(ctx, baseURL, repo.ID, []string{repo.ID}, targetArch)
		if err != nil {
			return nil, fmt.Errorf("load %s/%s: %w", dist.ID, repo.ID, err)
		}
		return pkgs, nil
	case ospkg.PackageManagerAPK:
		pkgs, err := apk.New(f, cache).LoadPackages(ctx, baseURL, repo.ID, targetArch)
		if err != nil {
			return nil, fmt.Errorf("load %s/%s: %w", dist.ID, repo.ID, err)
		}
		return pkgs, nil
	default:
		return nil, fmt.Errorf("unsupported package manager %q", dist.PackageManager)
	}
}

// resolveAll resolves requested against candidates using the family
// adapter for pm.
func resolveAll(requested []string, candidates []ospkg.Package, pm ospkg.PackageManager, targetArch ospkg.Architecture, opts resolve.Options) resolve.Result {
	driver := resolve.New(resolve.DefaultAdapter(pm), targetArch, candidates, opts)
	return driver.Resolve(requested)
}

// reportResolution prints unresolved dependencies, conflicts and warnings
// to stderr via the default logger, returning true if the result is clean
// enough to proceed with a download.
func reportResolution(result resolve.Result) bool {
	logger := log.Default()
	ok := true
	for _, u := range result.Unresolved {
		logger.Warn("unresolved dependency", "package", u.Package.Name, "requires", u.Dep.String(), "reason", u.Reason)
		ok = false
	}
	for _, c := range result.Conflicts {
		logger.Warn("version conflict", "capability", c.Name, "versions", c.Versions)
	}
	for _, w := range result.Warnings {
		logger.Warn(w)
	}
	return ok
}

// downloadAll downloads every package in pkgs into outDir, looking up
// each package's source Repository by its Repository field.
func downloadAll(ctx context.Context, f *fetch.Fetcher, pkgs []ospkg.Package, repoByID map[string]catalog.Repository, outDir, distID string) (download.Result, error) {
	items := make([]*download.Item, 0, len(pkgs))
	for i, p := range pkgs {
		repo, ok := repoByID[p.Repository]
		if !ok {
			return download.Result{}, fmt.Errorf("package %s: unknown source repository %q", p.Name, p.Repository)
		}
		items = append(items, &download.Item{
			ID:   fmt.Sprintf("%s-%d", p.Name, i),
			Pkg:  p,
			Repo: repo,
		})
	}

	mgr := download.New(f, download.Options{
		OutputDir:      outDir,
		DistID:         distID,
		Concurrency:    config.GetConcurrency(),
		MaxRetries:     config.GetMaxRetries(),
		BaseDelay:      config.GetBaseDelay(),
		VerifyChecksum: true,
		Logger:         log.Default(),
	})

	return mgr.Download(ctx, items), nil
}

// lookupDistro resolves distID against the built-in catalog only; no
// community mirror list is consulted.
func lookupDistro(distID string) (catalog.Distribution, error) {
	return catalog.Default().Lookup(distID)
}

// mirrorRelPath computes the path, relative to a mirror's output
// directory, that pm's synthesised metadata expects to find p's package
// file at. YUM metadata points at "Packages/<basename of the original
// repo-relative location>"; APT metadata reuses the original pool path
// verbatim; APK's flat pool layout already matches download.Filename.
func mirrorRelPath(pm ospkg.PackageManager, p ospkg.Package) string {
	switch pm {
	case ospkg.PackageManagerYUM:
		return filepath.Join("Packages", filepath.Base(p.Location))
	case ospkg.PackageManagerAPT:
		return filepath.FromSlash(p.Location)
	default:
		return download.Filename(p)
	}
}

// placeForMirror copies every downloaded package file from its flat
// download-dir location into the layout pm's mirror synthesiser expects
// under outDir.
func placeForMirror(pm ospkg.PackageManager, downloadDir, outDir string, pkgs []ospkg.Package) error {
	for _, p := range pkgs {
		src := filepath.Join(downloadDir, download.Filename(p))
		dst := filepath.Join(outDir, mirrorRelPath(pm, p))
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("place %s for mirror: %w", p.Name, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// splitPackageSpecs separates each CLI package argument into the bare
// name the resolver looks up and, when it carries a "name@expr" semver-ish
// suffix, a Constraint to spot-check the resolved version against
// afterwards. This is a CLI convenience only (see
// internal/versionalg/semverhint) and never changes what the resolver
// itself does.
func splitPackageSpecs(args []string) ([]string, []semverhint.Constraint) {
	names := make([]string, 0, len(args))
	var hints []semverhint.Constraint
	for _, a := range args {
		c, err := semverhint.Parse(a)
		if err != nil {
			names = append(names, a)
			continue
		}
		names = append(names, c.Name)
		hints = append(hints, c)
	}
	return names, hints
}

// warnAboutSemverHints logs a warning for every hint whose resolved
// package version does not satisfy the requested constraint, under that
// family's real comparator (never semver itself).
func warnAboutSemverHints(hints []semverhint.Constraint, resolved []ospkg.Package, pm ospkg.PackageManager) {
	if len(hints) == 0 {
		return
	}
	cmp := versionalg.ForFamily(pm)
	for _, h := range hints {
		var found *ospkg.Package
		for i := range resolved {
			if resolved[i].Name == h.Name {
				found = &resolved[i]
				break
			}
		}
		if found == nil {
			continue
		}
		if !cmp.Matches(found.Version, h.Operator, h.Version) {
			log.Default().Warn("resolved version does not satisfy requested hint", "package", h.Name, "resolved", found.Version, "wanted", fmt.Sprintf("%s%s", h.Operator, h.Version))
		}
	}
}

// resolveTargetArch picks arch if non-empty, validating it against dist's
// declared architectures; otherwise it defaults to dist's first
// architecture.
func resolveTargetArch(dist catalog.Distribution, arch string) (ospkg.Architecture, error) {
	if arch == "" {
		if len(dist.Architectures) == 0 {
			return "", fmt.Errorf("distribution %q declares no architectures", dist.ID)
		}
		return dist.Architectures[0], nil
	}
	want := ospkg.Architecture(arch)
	for _, a := range dist.Architectures {
		if a == want {
			return want, nil
		}
	}
	return "", fmt.Errorf("distribution %q does not support architecture %q", dist.ID, arch)
}
