package pkgfile

import (
	"testing"
	"time"
)

func detect(t *testing.T, fileName string) Package {
	t.Helper()

	pkg, err := Detect(fileName, "2.0.0", "https://example.org/"+fileName, time.Time{})
	if err != nil {
		t.Fatalf("Detect(%q): %v", fileName, err)
	}

	return pkg
}

func fileNames(packages []Package) []string {
	names := make([]string, 0, len(packages))
	for _, p := range packages {
		names = append(names, p.FileName())
	}
	return names
}

func TestSelect(t *testing.T) {
	candidates := []string{
		"OpenBangla-Keyboard_2.0.0-ubuntu22.04.deb",
		"OpenBangla-Keyboard_2.0.0-ubuntu20.04.deb",
		"OpenBangla-Keyboard_2.0.0-debian11.deb",
		"OpenBangla-Keyboard_2.0.0-fedora38.rpm",
		"fcitx-openbangla_3.0.0.deb",
		"ibus-openbangla_3.0.0.deb",
		"fcitx-openbangla_3.0.0.rpm",
		"ibus-openbangla_3.0.0.rpm",
	}

	tests := []struct {
		name string
		dist string
		want []string
	}{
		{
			name: "exact ubuntu release wins over dist-agnostic debs",
			dist: "ubuntu22.04",
			want: []string{"OpenBangla-Keyboard_2.0.0-ubuntu22.04.deb"},
		},
		{
			name: "other ubuntu release selects its own artifact",
			dist: "ubuntu20.04",
			want: []string{"OpenBangla-Keyboard_2.0.0-ubuntu20.04.deb"},
		},
		{
			name: "fedora takes only rpm artifacts",
			dist: "fedora38",
			want: []string{"OpenBangla-Keyboard_2.0.0-fedora38.rpm"},
		},
		{
			name: "release without a dedicated artifact falls back to every deb",
			dist: "debian12",
			want: []string{
				"OpenBangla-Keyboard_2.0.0-ubuntu22.04.deb",
				"OpenBangla-Keyboard_2.0.0-ubuntu20.04.deb",
				"OpenBangla-Keyboard_2.0.0-debian11.deb",
				"fcitx-openbangla_3.0.0.deb",
				"ibus-openbangla_3.0.0.deb",
			},
		},
		{
			name: "fedora release without a dedicated artifact falls back to every rpm",
			dist: "fedora39",
			want: []string{
				"OpenBangla-Keyboard_2.0.0-fedora38.rpm",
				"fcitx-openbangla_3.0.0.rpm",
				"ibus-openbangla_3.0.0.rpm",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packages := make([]Package, 0, len(candidates))
			for _, name := range candidates {
				packages = append(packages, detect(t, name))
			}

			dist, err := ParseDist(tt.dist)
			if err != nil {
				t.Fatalf("ParseDist(%q): %v", tt.dist, err)
			}

			got := fileNames(Select(packages, dist))

			if len(got) != len(tt.want) {
				t.Fatalf("Select() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Select()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSelectBothEnginePackagesForOneDist(t *testing.T) {
	packages := []Package{
		detect(t, "fcitx-openbangla_3.0.0.deb"),
		detect(t, "ibus-openbangla_3.0.0.deb"),
	}

	dist, err := ParseDist("ubuntu22.04")
	if err != nil {
		t.Fatal(err)
	}

	got := fileNames(Select(packages, dist))
	want := []string{"fcitx-openbangla_3.0.0.deb", "ibus-openbangla_3.0.0.deb"}

	if len(got) != len(want) {
		t.Fatalf("Select() = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("Select()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
