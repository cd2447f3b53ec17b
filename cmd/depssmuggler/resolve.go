package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depssmuggler/core/internal/resolve"
)

var (
	resolveDistro            string
	resolveArch              string
	resolveIncludeOptional   bool
	resolveIncludeRecommends bool
	resolveExtendedRepos     bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [packages...]",
	Short: "Resolve a package set against upstream repository metadata",
	Long: `resolve fetches repository metadata for the given distribution, builds
the candidate universe, and resolves the requested packages plus their
transitive dependency closure, printing the install order and any
unresolved dependencies or conflicts. It does not download anything.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveDistro, "distro", "", "distribution ID from the catalog (e.g. rocky-9, ubuntu-22.04, alpine-3.19)")
	resolveCmd.Flags().StringVar(&resolveArch, "arch", "", "target architecture (defaults to the distribution's first architecture)")
	resolveCmd.Flags().BoolVar(&resolveIncludeOptional, "include-optional", false, "follow optional/suggested dependencies")
	resolveCmd.Flags().BoolVar(&resolveIncludeRecommends, "include-recommends", false, "follow APT Recommends")
	resolveCmd.Flags().BoolVar(&resolveExtendedRepos, "extended-repos", false, "also search non-default (extended) repositories")
	_ = resolveCmd.MarkFlagRequired("distro")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := globalCtx

	dist, err := lookupDistro(resolveDistro)
	if err != nil {
		exitWithCode(ExitDistroNotFound)
		return err
	}

	targetArch, err := resolveTargetArch(dist, resolveArch)
	if err != nil {
		exitWithCode(ExitUsage)
		return err
	}

	f := newFetcher()
	cache, err := newMetaCache()
	if err != nil {
		return err
	}

	candidates, _, err := loadCandidates(ctx, dist, f, cache, targetArch, resolveExtendedRepos)
	if err != nil {
		exitWithCode(ExitNetwork)
		return err
	}

	names, hints := splitPackageSpecs(args)
	result := resolveAll(names, candidates, dist.PackageManager, targetArch, resolve.Options{
		IncludeOptional:   resolveIncludeOptional,
		IncludeRecommends: resolveIncludeRecommends,
	})
	warnAboutSemverHints(hints, result.Packages, dist.PackageManager)
	clean := reportResolution(result)

	fmt.Printf("resolved %d package(s) in install order:\n", len(result.Packages))
	for _, p := range result.Packages {
		fmt.Printf("  %s-%s.%s\n", p.Name, p.EVR(), p.Architecture)
	}

	if !clean {
		exitWithCode(ExitResolveFailed)
	}
	return nil
}

