package download

import (
	"fmt"

	"github.com/depssmuggler/core/internal/ospkg"
)

// Filename computes the on-disk filename for a downloaded package, per
// family convention: RPM "{name}-{version}[-{release}].{arch}.rpm", DEB
// "{name}_{version}_{debianArch}.deb", APK "{name}-{version}.apk".
func Filename(p ospkg.Package) string {
	switch p.PackageManager {
	case ospkg.PackageManagerYUM:
		if p.Release != "" {
			return fmt.Sprintf("%s-%s-%s.%s.rpm", p.Name, p.Version, p.Release, p.Architecture)
		}
		return fmt.Sprintf("%s-%s.%s.rpm", p.Name, p.Version, p.Architecture)
	case ospkg.PackageManagerAPT:
		debArch := ospkg.CanonicalForFamily(p.Architecture, ospkg.PackageManagerAPT)
		return fmt.Sprintf("%s_%s_%s.deb", p.Name, p.Version, debArch)
	case ospkg.PackageManagerAPK:
		return fmt.Sprintf("%s-%s.apk", p.Name, p.Version)
	default:
		return fmt.Sprintf("%s-%s", p.Name, p.Version)
	}
}
