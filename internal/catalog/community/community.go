// Package community optionally refreshes the built-in distro catalog
// from a community-maintained mirror list published as a JSON file in
// a GitHub repository. This is additive: callers that never invoke
// Refresh get exactly the built-in catalog from catalog.Default().
package community

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/go-github/v57/github"

	"github.com/depssmuggler/core/internal/catalog"
	"github.com/depssmuggler/core/internal/ospkg"
)

// Source names the GitHub-hosted mirror list to pull from.
type Source struct {
	Owner  string
	Repo   string
	Path   string // path to the mirror-list JSON within the repo
	Ref    string // branch, tag or commit; empty means the default branch
}

// mirrorListEntry mirrors one row of the community mirror list.
type mirrorListEntry struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Version       string   `json:"version"`
	Codename      string   `json:"codename"`
	PackageManager string  `json:"packageManager"`
	Architectures []string `json:"architectures"`
	Repos         []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		BaseURL  string `json:"baseUrl"`
		Official bool   `json:"official"`
	} `json:"repos"`
}

// Refresh fetches src's mirror-list JSON and registers every entry into cat.
// An entry whose ID is already registered replaces the existing one.
func Refresh(ctx context.Context, client *github.Client, src Source, cat *catalog.Catalog) error {
	contents, _, _, err := client.Repositories.GetContents(ctx, src.Owner, src.Repo, src.Path, &github.RepositoryContentGetOptions{Ref: src.Ref})
	if err != nil {
		return fmt.Errorf("community: fetch mirror list: %w", err)
	}
	if contents == nil {
		return fmt.Errorf("community: %s is a directory, not a file", src.Path)
	}

	raw, err := contents.GetContent()
	if err != nil {
		return fmt.Errorf("community: decode mirror list content: %w", err)
	}

	var entries []mirrorListEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return fmt.Errorf("community: parse mirror list JSON: %w", err)
	}

	for _, e := range entries {
		archs := make([]ospkg.Architecture, 0, len(e.Architectures))
		for _, a := range e.Architectures {
			archs = append(archs, ospkg.Architecture(a))
		}

		dist := catalog.Distribution{
			ID:             e.ID,
			Name:           e.Name,
			Version:        e.Version,
			Codename:       e.Codename,
			PackageManager: ospkg.PackageManager(e.PackageManager),
			Architectures:  archs,
		}
		for _, r := range e.Repos {
			dist.DefaultRepos = append(dist.DefaultRepos, catalog.Repository{
				ID:         r.ID,
				Name:       r.Name,
				BaseURL:    r.BaseURL,
				Enabled:    true,
				IsOfficial: r.Official,
			})
		}
		cat.Register(dist)
	}

	return nil
}
