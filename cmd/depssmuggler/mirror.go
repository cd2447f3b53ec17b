package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/depssmuggler/core/internal/download"
	"github.com/depssmuggler/core/internal/resolve"
)

var (
	mirrorDistro            string
	mirrorArch              string
	mirrorOut               string
	mirrorIncludeOptional   bool
	mirrorIncludeRecommends bool
	mirrorExtendedRepos     bool
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror [packages...]",
	Short: "Resolve, download and synthesise a local file://-installable mirror",
	Long: `mirror is equivalent to "smuggle --output-type mirror": it resolves the
requested packages and their dependency closure, downloads every package
file, and writes family-native repository metadata (YUM primary.xml.gz,
APT Packages/Release, or an Alpine APKINDEX.tar.gz) alongside the package
files so the directory can be installed from directly via a local repo
configuration.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMirror,
}

func init() {
	mirrorCmd.Flags().StringVar(&mirrorDistro, "distro", "", "distribution ID from the catalog")
	mirrorCmd.Flags().StringVar(&mirrorArch, "arch", "", "target architecture")
	mirrorCmd.Flags().StringVar(&mirrorOut, "out", "./mirror", "mirror output directory")
	mirrorCmd.Flags().BoolVar(&mirrorIncludeOptional, "include-optional", false, "follow optional/suggested dependencies")
	mirrorCmd.Flags().BoolVar(&mirrorIncludeRecommends, "include-recommends", false, "follow APT Recommends")
	mirrorCmd.Flags().BoolVar(&mirrorExtendedRepos, "extended-repos", false, "also search non-default (extended) repositories")
	_ = mirrorCmd.MarkFlagRequired("distro")
}

func runMirror(cmd *cobra.Command, args []string) error {
	ctx := globalCtx

	dist, err := lookupDistro(mirrorDistro)
	if err != nil {
		exitWithCode(ExitDistroNotFound)
		return err
	}
	targetArch, err := resolveTargetArch(dist, mirrorArch)
	if err != nil {
		exitWithCode(ExitUsage)
		return err
	}

	f := newFetcher()
	cache, err := newMetaCache()
	if err != nil {
		return err
	}

	candidates, repoByID, err := loadCandidates(ctx, dist, f, cache, targetArch, mirrorExtendedRepos)
	if err != nil {
		exitWithCode(ExitNetwork)
		return err
	}

	names, hints := splitPackageSpecs(args)
	result := resolveAll(names, candidates, dist.PackageManager, targetArch, resolve.Options{
		IncludeOptional:   mirrorIncludeOptional,
		IncludeRecommends: mirrorIncludeRecommends,
	})
	warnAboutSemverHints(hints, result.Packages, dist.PackageManager)
	if !reportResolution(result) {
		exitWithCode(ExitResolveFailed)
		return fmt.Errorf("mirror: resolution incomplete, aborting")
	}

	downloadDir, err := os.MkdirTemp("", "depssmuggler-download-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(downloadDir)

	dlResult, err := downloadAll(ctx, f, result.Packages, repoByID, downloadDir, dist.ID)
	if err != nil {
		exitWithCode(ExitDownloadFailed)
		return err
	}
	for _, it := range dlResult.Items {
		if it.Status() != download.StatusCompleted {
			exitWithCode(ExitDownloadFailed)
			return fmt.Errorf("mirror: %s did not complete: %v", it.Pkg.Name, it.Err())
		}
	}

	if err := os.MkdirAll(mirrorOut, 0755); err != nil {
		exitWithCode(ExitMirrorFailed)
		return err
	}
	if err := placeForMirror(dist.PackageManager, downloadDir, mirrorOut, result.Packages); err != nil {
		exitWithCode(ExitMirrorFailed)
		return err
	}

	return writeMirror(dist.PackageManager, result, mirrorOut, []string{string(targetArch)})
}
