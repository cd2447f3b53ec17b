package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/depssmuggler/core/internal/config"
	"github.com/depssmuggler/core/internal/metacache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the repository metadata cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show metadata cache hit rate and size",
	RunE:  runCacheStats,
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove all cached repository metadata from disk",
	RunE:  runCacheClean,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cache, err := newMetaCache()
	if err != nil {
		return err
	}
	stats := cache.Stats()
	fmt.Printf("hits:        %d\n", stats.Hits)
	fmt.Printf("misses:      %d\n", stats.Misses)
	fmt.Printf("hit rate:    %.1f%%\n", stats.HitRate()*100)
	fmt.Printf("entries:     %d\n", stats.EntryCount)
	fmt.Printf("total size:  %d bytes\n", stats.TotalSize)
	return nil
}

func runCacheClean(cmd *cobra.Command, args []string) error {
	dir := metacache.DefaultDir()
	if mode := config.GetCacheMode(); mode == config.CacheModeNone {
		fmt.Println("cache mode is \"none\", nothing on disk to clean")
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	fmt.Printf("removed %s\n", dir)
	return nil
}
