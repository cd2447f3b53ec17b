package ospkg

import "testing"

func TestPackageEVR(t *testing.T) {
	tests := []struct {
		pkg  Package
		want string
	}{
		{Package{Version: "1.2.3"}, "1.2.3"},
		{Package{Version: "1.2.3", Release: "4.el9"}, "1.2.3-4.el9"},
		{Package{Version: "1.2.3", Epoch: "2", Release: "4.el9"}, "2:1.2.3-4.el9"},
		{Package{Version: "1.2.3", Epoch: "0"}, "1.2.3"},
	}
	for _, tt := range tests {
		if got := tt.pkg.EVR(); got != tt.want {
			t.Errorf("EVR() = %q, want %q", got, tt.want)
		}
	}
}

func TestPackageKey(t *testing.T) {
	p := Package{Name: "curl", Version: "7.68.0", Release: "1", Epoch: "0", Architecture: ArchX86_64}
	k := p.Key()
	want := Key{Name: "curl", Version: "7.68.0", Release: "1", Epoch: "0", Architecture: ArchX86_64}
	if k != want {
		t.Errorf("Key() = %+v, want %+v", k, want)
	}
}

func TestPackageCapabilities(t *testing.T) {
	p := Package{Name: "curl", Provides: []string{"webclient", "http-client"}}
	caps := p.Capabilities()
	want := []string{"curl", "webclient", "http-client"}
	if len(caps) != len(want) {
		t.Fatalf("Capabilities() = %v, want %v", caps, want)
	}
	for i := range want {
		if caps[i] != want[i] {
			t.Errorf("Capabilities()[%d] = %q, want %q", i, caps[i], want[i])
		}
	}
}

func TestDependencyString(t *testing.T) {
	tests := []struct {
		dep  Dependency
		want string
	}{
		{Dependency{Name: "glibc"}, "glibc"},
		{Dependency{Name: "glibc", Operator: OpGE, Version: "2.17"}, "glibc >= 2.17"},
	}
	for _, tt := range tests {
		if got := tt.dep.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
