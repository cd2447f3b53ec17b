package catalog

import "github.com/depssmuggler/core/internal/ospkg"

// Default returns a Catalog pre-populated with the distributions this
// implementation ships support for. Callers needing a different or
// extended set should start from New() and Register their own.
func Default() *Catalog {
	c := New()
	for _, d := range builtinDistros {
		c.Register(d)
	}
	return c
}

var builtinDistros = []Distribution{
	{
		ID:             "rocky-8",
		Name:           "Rocky Linux",
		Version:        "8",
		PackageManager: ospkg.PackageManagerYUM,
		Architectures:  []ospkg.Architecture{ospkg.ArchX86_64, ospkg.ArchAarch64},
		DefaultRepos: []Repository{
			{ID: "baseos", Name: "Rocky Linux $releasever - BaseOS", BaseURL: "https://dl.rockylinux.org/pub/rocky/$releasever/BaseOS/$basearch/os/", Enabled: true, GPGCheck: true, IsOfficial: true, Priority: 10},
			{ID: "appstream", Name: "Rocky Linux $releasever - AppStream", BaseURL: "https://dl.rockylinux.org/pub/rocky/$releasever/AppStream/$basearch/os/", Enabled: true, GPGCheck: true, IsOfficial: true, Priority: 10},
		},
		ExtendedRepos: []Repository{
			{ID: "extras", Name: "Rocky Linux $releasever - Extras", BaseURL: "https://dl.rockylinux.org/pub/rocky/$releasever/extras/$basearch/os/", Enabled: false, GPGCheck: true, IsOfficial: true, Priority: 20},
		},
	},
	{
		ID:             "rocky-9",
		Name:           "Rocky Linux",
		Version:        "9",
		PackageManager: ospkg.PackageManagerYUM,
		Architectures:  []ospkg.Architecture{ospkg.ArchX86_64, ospkg.ArchAarch64},
		DefaultRepos: []Repository{
			{ID: "baseos", Name: "Rocky Linux $releasever - BaseOS", BaseURL: "https://dl.rockylinux.org/pub/rocky/$releasever/BaseOS/$basearch/os/", Enabled: true, GPGCheck: true, IsOfficial: true, Priority: 10},
			{ID: "appstream", Name: "Rocky Linux $releasever - AppStream", BaseURL: "https://dl.rockylinux.org/pub/rocky/$releasever/AppStream/$basearch/os/", Enabled: true, GPGCheck: true, IsOfficial: true, Priority: 10},
		},
		ExtendedRepos: []Repository{
			{ID: "extras", Name: "Rocky Linux $releasever - Extras", BaseURL: "https://dl.rockylinux.org/pub/rocky/$releasever/extras/$basearch/os/", Enabled: false, GPGCheck: true, IsOfficial: true, Priority: 20},
		},
	},
	{
		ID:             "ubuntu-22.04",
		Name:           "Ubuntu",
		Version:        "22.04",
		Codename:       "jammy",
		PackageManager: ospkg.PackageManagerAPT,
		Architectures:  []ospkg.Architecture{ospkg.ArchAMD64, ospkg.ArchArm64},
		DefaultRepos: []Repository{
			{ID: "main", Name: "Ubuntu jammy main", BaseURL: "http://archive.ubuntu.com/ubuntu/dists/jammy/", Enabled: true, GPGCheck: true, IsOfficial: true, Priority: 10},
		},
		ExtendedRepos: []Repository{
			{ID: "universe", Name: "Ubuntu jammy universe", BaseURL: "http://archive.ubuntu.com/ubuntu/dists/jammy/", Enabled: false, GPGCheck: true, IsOfficial: true, Priority: 20},
		},
	},
	{
		ID:             "ubuntu-24.04",
		Name:           "Ubuntu",
		Version:        "24.04",
		Codename:       "noble",
		PackageManager: ospkg.PackageManagerAPT,
		Architectures:  []ospkg.Architecture{ospkg.ArchAMD64, ospkg.ArchArm64},
		DefaultRepos: []Repository{
			{ID: "main", Name: "Ubuntu noble main", BaseURL: "http://archive.ubuntu.com/ubuntu/dists/noble/", Enabled: true, GPGCheck: true, IsOfficial: true, Priority: 10},
		},
	},
	{
		ID:             "debian-12",
		Name:           "Debian",
		Version:        "12",
		Codename:       "bookworm",
		PackageManager: ospkg.PackageManagerAPT,
		Architectures:  []ospkg.Architecture{ospkg.ArchAMD64, ospkg.ArchArm64},
		DefaultRepos: []Repository{
			{ID: "main", Name: "Debian bookworm main", BaseURL: "http://deb.debian.org/debian/dists/bookworm/", Enabled: true, GPGCheck: true, IsOfficial: true, Priority: 10},
		},
	},
	{
		ID:             "alpine-3.19",
		Name:           "Alpine Linux",
		Version:        "3.19",
		PackageManager: ospkg.PackageManagerAPK,
		Architectures:  []ospkg.Architecture{ospkg.ArchX86_64, ospkg.ArchAarch64},
		DefaultRepos: []Repository{
			{ID: "main", Name: "Alpine 3.19 main", BaseURL: "https://dl-cdn.alpinelinux.org/alpine/v3.19/main/$basearch/", Enabled: true, GPGCheck: true, IsOfficial: true, Priority: 10},
			{ID: "community", Name: "Alpine 3.19 community", BaseURL: "https://dl-cdn.alpinelinux.org/alpine/v3.19/community/$basearch/", Enabled: true, GPGCheck: true, IsOfficial: true, Priority: 10},
		},
	},
	{
		ID:             "alpine-3.20",
		Name:           "Alpine Linux",
		Version:        "3.20",
		PackageManager: ospkg.PackageManagerAPK,
		Architectures:  []ospkg.Architecture{ospkg.ArchX86_64, ospkg.ArchAarch64},
		DefaultRepos: []Repository{
			{ID: "main", Name: "Alpine 3.20 main", BaseURL: "https://dl-cdn.alpinelinux.org/alpine/v3.20/main/$basearch/", Enabled: true, GPGCheck: true, IsOfficial: true, Priority: 10},
			{ID: "community", Name: "Alpine 3.20 community", BaseURL: "https://dl-cdn.alpinelinux.org/alpine/v3.20/community/$basearch/", Enabled: true, GPGCheck: true, IsOfficial: true, Priority: 10},
		},
	},
}
