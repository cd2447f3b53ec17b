package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depssmuggler/core/internal/download"
	"github.com/depssmuggler/core/internal/resolve"
)

var (
	downloadDistro            string
	downloadArch              string
	downloadOut               string
	downloadIncludeOptional   bool
	downloadIncludeRecommends bool
	downloadExtendedRepos     bool
)

var downloadCmd = &cobra.Command{
	Use:   "download [packages...]",
	Short: "Resolve and download a package set's dependency closure",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDownload,
}

func init() {
	downloadCmd.Flags().StringVar(&downloadDistro, "distro", "", "distribution ID from the catalog")
	downloadCmd.Flags().StringVar(&downloadArch, "arch", "", "target architecture")
	downloadCmd.Flags().StringVar(&downloadOut, "out", "./packages", "directory to download package files into")
	downloadCmd.Flags().BoolVar(&downloadIncludeOptional, "include-optional", false, "follow optional/suggested dependencies")
	downloadCmd.Flags().BoolVar(&downloadIncludeRecommends, "include-recommends", false, "follow APT Recommends")
	downloadCmd.Flags().BoolVar(&downloadExtendedRepos, "extended-repos", false, "also search non-default (extended) repositories")
	_ = downloadCmd.MarkFlagRequired("distro")
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := globalCtx

	dist, err := lookupDistro(downloadDistro)
	if err != nil {
		exitWithCode(ExitDistroNotFound)
		return err
	}
	targetArch, err := resolveTargetArch(dist, downloadArch)
	if err != nil {
		exitWithCode(ExitUsage)
		return err
	}

	f := newFetcher()
	cache, err := newMetaCache()
	if err != nil {
		return err
	}

	candidates, repoByID, err := loadCandidates(ctx, dist, f, cache, targetArch, downloadExtendedRepos)
	if err != nil {
		exitWithCode(ExitNetwork)
		return err
	}

	names, hints := splitPackageSpecs(args)
	result := resolveAll(names, candidates, dist.PackageManager, targetArch, resolve.Options{
		IncludeOptional:   downloadIncludeOptional,
		IncludeRecommends: downloadIncludeRecommends,
	})
	warnAboutSemverHints(hints, result.Packages, dist.PackageManager)
	if !reportResolution(result) {
		exitWithCode(ExitResolveFailed)
		return fmt.Errorf("download: resolution incomplete, aborting")
	}

	dlResult, err := downloadAll(ctx, f, result.Packages, repoByID, downloadOut, dist.ID)
	if err != nil {
		exitWithCode(ExitDownloadFailed)
		return err
	}

	failed := 0
	for _, it := range dlResult.Items {
		if it.Status() == download.StatusFailed || it.Status() == download.StatusCancelled {
			failed++
			fmt.Printf("FAILED  %s: %v\n", it.Pkg.Name, it.Err())
			continue
		}
		fmt.Printf("ok      %s -> %s\n", it.Pkg.Name, it.FilePath())
	}
	if failed > 0 {
		exitWithCode(ExitDownloadFailed)
	}
	return nil
}
