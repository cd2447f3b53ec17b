package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depssmuggler/core/internal/catalog"
	"github.com/depssmuggler/core/internal/ospkg"
)

var distrosCmd = &cobra.Command{
	Use:   "distros",
	Short: "List the built-in distribution catalog",
	RunE:  runDistros,
}

func runDistros(cmd *cobra.Command, args []string) error {
	for _, pm := range []ospkg.PackageManager{ospkg.PackageManagerYUM, ospkg.PackageManagerAPT, ospkg.PackageManagerAPK} {
		dists := catalog.Default().ByPackageManager(pm)
		for _, d := range dists {
			fmt.Printf("%-16s %-8s %s %s (%v)\n", d.ID, pm, d.Name, d.Version, d.Architectures)
		}
	}
	return nil
}
