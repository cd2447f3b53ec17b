package ospkg

import "testing"

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   Architecture
		want Architecture
	}{
		{ArchAMD64, ArchX86_64},
		{ArchArm64, ArchAarch64},
		{ArchI386, ArchI686},
		{ArchAll, ArchNoarch},
		{Architecture("RISCV64"), Architecture("riscv64")},
	}
	for _, tt := range tests {
		if got := Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalForFamily(t *testing.T) {
	tests := []struct {
		in   Architecture
		pm   PackageManager
		want Architecture
	}{
		{ArchX86_64, PackageManagerAPT, ArchAMD64},
		{ArchAMD64, PackageManagerYUM, ArchX86_64},
		{ArchAarch64, PackageManagerAPT, ArchArm64},
		{ArchArm64, PackageManagerAPK, ArchAarch64},
		{ArchNoarch, PackageManagerAPT, ArchAll},
	}
	for _, tt := range tests {
		if got := CanonicalForFamily(tt.in, tt.pm); got != tt.want {
			t.Errorf("CanonicalForFamily(%q, %q) = %q, want %q", tt.in, tt.pm, got, tt.want)
		}
	}
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		pkgArch, targetArch Architecture
		want                bool
	}{
		{ArchX86_64, ArchAMD64, true},
		{ArchNoarch, ArchX86_64, true},
		{ArchAll, ArchAarch64, true},
		{ArchX86_64, ArchAarch64, false},
		{ArchArmv7l, ArchArmhf, true},
	}
	for _, tt := range tests {
		if got := Compatible(tt.pkgArch, tt.targetArch); got != tt.want {
			t.Errorf("Compatible(%q, %q) = %v, want %v", tt.pkgArch, tt.targetArch, got, tt.want)
		}
	}
}

func TestIsArchIndependent(t *testing.T) {
	if !IsArchIndependent(ArchAll) {
		t.Error("ArchAll should be architecture-independent")
	}
	if IsArchIndependent(ArchX86_64) {
		t.Error("ArchX86_64 should not be architecture-independent")
	}
}
