package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/depssmuggler/core/internal/archive"
	"github.com/depssmuggler/core/internal/download"
	"github.com/depssmuggler/core/internal/mirror/apk"
	"github.com/depssmuggler/core/internal/mirror/apt"
	"github.com/depssmuggler/core/internal/mirror/yum"
	"github.com/depssmuggler/core/internal/ospkg"
	"github.com/depssmuggler/core/internal/resolve"
)

var (
	smuggleFamily            string
	smuggleDistro            string
	smuggleArch              string
	smuggleOut               string
	smuggleOutputType        string
	smuggleArchiveFormat     string
	smuggleIncludeOptional   bool
	smuggleIncludeRecommends bool
	smuggleExtendedRepos     bool
	smuggleFile              string
)

// jobSpec is the declarative shape of a --file toml job, as an
// alternative to spelling every flag and package out on the command
// line. Fields mirror the flags above 1:1.
type jobSpec struct {
	Distro            string   `toml:"distro"`
	Arch              string   `toml:"arch"`
	Packages          []string `toml:"packages"`
	IncludeOptional   bool     `toml:"includeOptional"`
	IncludeRecommends bool     `toml:"includeRecommends"`
	ExtendedRepos     bool     `toml:"extendedRepos"`
	Output            struct {
		Type          string `toml:"type"`
		Dir           string `toml:"dir"`
		ArchiveFormat string `toml:"archiveFormat"`
	} `toml:"output"`
}

func loadJobSpec(path string) (jobSpec, error) {
	var spec jobSpec
	_, err := toml.DecodeFile(path, &spec)
	if err != nil {
		return jobSpec{}, fmt.Errorf("smuggle: parse job file %s: %w", path, err)
	}
	return spec, nil
}

var smuggleCmd = &cobra.Command{
	Use:   "smuggle [packages...]",
	Short: "Resolve, download and package a dependency closure for offline install",
	Long: `smuggle is the end-to-end command: it resolves the requested packages
and their transitive dependency closure against upstream repository
metadata, downloads every package file, and writes the result as either
a local file://-installable mirror (the default) or a portable archive,
ready to carry across an air gap and install with the target's native
package manager.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if smuggleFile != "" {
			return nil
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: runSmuggle,
}

func init() {
	smuggleCmd.Flags().StringVar(&smuggleFamily, "family", "", "package family: yum, apt or apk (picks a built-in default distribution)")
	smuggleCmd.Flags().StringVar(&smuggleDistro, "distro", "", "distribution ID from the catalog, overrides --family's default")
	smuggleCmd.Flags().StringVar(&smuggleArch, "arch", "", "target architecture (defaults to the distribution's first architecture)")
	smuggleCmd.Flags().StringVar(&smuggleOut, "out", "./smuggled", "output directory (mirror) or file (archive)")
	smuggleCmd.Flags().StringVar(&smuggleOutputType, "output-type", "mirror", "output.type: mirror or archive")
	smuggleCmd.Flags().StringVar(&smuggleArchiveFormat, "archive-format", "tar.gz", "output.archiveFormat when --output-type=archive: zip or tar.gz")
	smuggleCmd.Flags().BoolVar(&smuggleIncludeOptional, "include-optional", false, "follow optional/suggested dependencies")
	smuggleCmd.Flags().BoolVar(&smuggleIncludeRecommends, "include-recommends", false, "follow APT Recommends")
	smuggleCmd.Flags().BoolVar(&smuggleExtendedRepos, "extended-repos", false, "also search non-default (extended) repositories")
	smuggleCmd.Flags().StringVar(&smuggleFile, "file", "", "declarative TOML job file; when set, overrides --distro/--arch/--out/--output-type/--archive-format and the package arguments")
}

// defaultDistroForFamily names the built-in distribution --family picks
// when --distro is not given explicitly.
func defaultDistroForFamily(pm ospkg.PackageManager) (string, error) {
	switch pm {
	case ospkg.PackageManagerYUM:
		return "rocky-9", nil
	case ospkg.PackageManagerAPT:
		return "ubuntu-22.04", nil
	case ospkg.PackageManagerAPK:
		return "alpine-3.19", nil
	default:
		return "", fmt.Errorf("unknown family %q: must be one of yum, apt, apk", pm)
	}
}

func runSmuggle(cmd *cobra.Command, args []string) error {
	ctx := globalCtx

	distID := smuggleDistro
	arch := smuggleArch
	out := smuggleOut
	outputType := smuggleOutputType
	archiveFormat := smuggleArchiveFormat
	includeOptional := smuggleIncludeOptional
	includeRecommends := smuggleIncludeRecommends
	extendedRepos := smuggleExtendedRepos

	if smuggleFile != "" {
		job, err := loadJobSpec(smuggleFile)
		if err != nil {
			exitWithCode(ExitUsage)
			return err
		}
		if job.Distro != "" {
			distID = job.Distro
		}
		if job.Arch != "" {
			arch = job.Arch
		}
		if len(job.Packages) > 0 {
			args = job.Packages
		}
		if job.IncludeOptional {
			includeOptional = true
		}
		if job.IncludeRecommends {
			includeRecommends = true
		}
		if job.ExtendedRepos {
			extendedRepos = true
		}
		if job.Output.Type != "" {
			outputType = job.Output.Type
		}
		if job.Output.Dir != "" {
			out = job.Output.Dir
		}
		if job.Output.ArchiveFormat != "" {
			archiveFormat = job.Output.ArchiveFormat
		}
	}

	if distID == "" {
		d, err := defaultDistroForFamily(ospkg.PackageManager(smuggleFamily))
		if err != nil {
			exitWithCode(ExitUsage)
			return err
		}
		distID = d
	}

	dist, err := lookupDistro(distID)
	if err != nil {
		exitWithCode(ExitDistroNotFound)
		return err
	}
	targetArch, err := resolveTargetArch(dist, arch)
	if err != nil {
		exitWithCode(ExitUsage)
		return err
	}

	f := newFetcher()
	cache, err := newMetaCache()
	if err != nil {
		return err
	}

	candidates, repoByID, err := loadCandidates(ctx, dist, f, cache, targetArch, extendedRepos)
	if err != nil {
		exitWithCode(ExitNetwork)
		return err
	}

	names, hints := splitPackageSpecs(args)
	result := resolveAll(names, candidates, dist.PackageManager, targetArch, resolve.Options{
		IncludeOptional:   includeOptional,
		IncludeRecommends: includeRecommends,
	})
	warnAboutSemverHints(hints, result.Packages, dist.PackageManager)
	if !reportResolution(result) {
		exitWithCode(ExitResolveFailed)
		return fmt.Errorf("smuggle: resolution incomplete, aborting")
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
			return fmt.Errorf("smuggle: %s did not complete: %v", it.Pkg.Name, it.Err())
		}
	}

	switch outputType {
	case "archive":
		return writeArchive(dlResult, out, archiveFormat)
	default:
		if err := os.MkdirAll(out, 0755); err != nil {
			exitWithCode(ExitMirrorFailed)
			return err
		}
		if err := placeForMirror(dist.PackageManager, downloadDir, out, result.Packages); err != nil {
			exitWithCode(ExitMirrorFailed)
			return err
		}
		return writeMirror(dist.PackageManager, result, out, []string{string(targetArch)})
	}
}

func writeMirror(pm ospkg.PackageManager, result resolve.Result, outDir string, archs []string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		exitWithCode(ExitMirrorFailed)
		return err
	}

	var err error
	switch pm {
	case ospkg.PackageManagerYUM:
		err = yum.Synthesise(outDir, result.Packages, time.Now())
	case ospkg.PackageManagerAPT:
		err = apt.Synthesise(outDir, result.Packages, archs)
	case ospkg.PackageManagerAPK:
		err = apk.Synthesise(outDir, result.Packages)
	default:
		err = fmt.Errorf("unsupported package manager %q", pm)
	}
	if err != nil {
		exitWithCode(ExitMirrorFailed)
		return err
	}
	fmt.Printf("wrote %s mirror for %d package(s) to %s\n", pm, len(result.Packages), outDir)
	return nil
}

func writeArchive(dlResult download.Result, outPath, format string) error {
	entries := make([]archive.Entry, 0, len(dlResult.Items))
	for _, it := range dlResult.Items {
		entries = append(entries, archive.Entry{Package: it.Pkg, FilePath: it.FilePath()})
	}

	af := archive.FormatTarGz
	if format == "zip" {
		af = archive.FormatZip
	}

	if outPath == "./smuggled" {
		outPath = "./smuggled." + string(af)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		exitWithCode(ExitMirrorFailed)
		return err
	}

	if err := archive.Build(outPath, af, entries); err != nil {
		exitWithCode(ExitMirrorFailed)
		return err
	}
	fmt.Printf("wrote archive with %d package(s) to %s\n", len(entries), outPath)
	return nil
}
