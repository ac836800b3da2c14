// Package pkgfile classifies release asset filenames into packages.
//
// Release pipelines publish artifacts named like
// "OpenBangla-Keyboard_2.0.0-ubuntu22.04.deb" or
// "ibus-openbangla_3.0.0-fedora38.rpm". The filename encodes the package
// format and, usually, the target distribution and its version. Detection
// is purely lexical; the archive contents are never inspected here.
package pkgfile

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/Masterminds/semver/v3"
)

// Type is the package archive format.
type Type string

const (
	// Deb is a Debian binary package.
	Deb Type = "deb"
	// Rpm is an RPM binary package.
	Rpm Type = "rpm"
)

// DistName identifies a supported distribution family.
type DistName string

const (
	Ubuntu DistName = "ubuntu"
	Debian DistName = "debian"
	Fedora DistName = "fedora"
)

// Dist is a distribution target, optionally pinned to a release version.
type Dist struct {
	Name DistName

	// Version is the distribution release ("22.04", "38"); nil when the
	// filename names the family without a release.
	Version *semver.Version
}

// Matches reports whether two dists name the same distribution release.
func (d Dist) Matches(other Dist) bool {
	if d.Name != other.Name {
		return false
	}
	if d.Version == nil || other.Version == nil {
		return d.Version == other.Version
	}
	return d.Version.Equal(other.Version)
}

// PackageType returns the archive format the distribution consumes.
func (d Dist) PackageType() Type {
	if d.Name == Fedora {
		return Rpm
	}
	return Deb
}

// String renders the dist the way filenames encode it.
func (d Dist) String() string {
	if d.Version == nil {
		return string(d.Name)
	}
	return fmt.Sprintf("%s%s", d.Name, d.Version.Original())
}

// ParseDist parses a distribution identifier such as "ubuntu22.04" or
// "fedora38". The family may appear without a release version.
func ParseDist(s string) (Dist, error) {
	for _, family := range []DistName{Ubuntu, Debian, Fedora} {
		if strings.HasPrefix(s, string(family)) {
			return Dist{Name: family, Version: parseDistVersion(s)}, nil
		}
	}
	return Dist{}, fmt.Errorf("unknown distribution %q", s)
}

// Package is a classified release artifact.
type Package struct {
	// Type is the archive format derived from the file extension.
	Type Type

	// Dist is the distribution target encoded in the filename, nil when
	// the filename carries no distribution marker.
	Dist *Dist

	// Version is the upstream release version the artifact belongs to.
	Version string

	// URL is the artifact download location.
	URL string

	// Created is the artifact publication time.
	Created time.Time
}

// Detect classifies an artifact filename. Filenames with an unrecognized
// extension are errors: the repository only serves deb and rpm.
func Detect(name, version, url string, created time.Time) (Package, error) {
	typ, stem, err := splitExtension(name)
	if err != nil {
		return Package{}, err
	}

	var dist *Dist

	// Sections are split on both '-' and '_'; publishers are not
	// consistent about which separator precedes the dist marker.
	for _, section := range strings.FieldsFunc(stem, func(r rune) bool {
		return r == '-' || r == '_'
	}) {
		for _, family := range []DistName{Ubuntu, Debian, Fedora} {
			if strings.Contains(section, string(family)) {
				dist = &Dist{Name: family, Version: parseDistVersion(section)}
			}
		}
	}

	return Package{
		Type:    typ,
		Dist:    dist,
		Version: version,
		URL:     url,
		Created: created,
	}, nil
}

// IsDeb reports whether the package is a Debian package.
func (p Package) IsDeb() bool { return p.Type == Deb }

// ForDist reports whether the package's format matches what dist installs.
func (p Package) ForDist(dist Dist) bool {
	return p.Type == dist.PackageType()
}

// FileName returns the artifact filename from its URL.
func (p Package) FileName() string {
	parts := strings.Split(p.URL, "/")
	return parts[len(parts)-1]
}

// splitExtension splits "name.deb" into its type and stem.
func splitExtension(name string) (Type, string, error) {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return "", "", fmt.Errorf("no package extension in %q", name)
	}

	stem, ext := name[:idx], name[idx+1:]

	switch ext {
	case "deb":
		return Deb, stem, nil
	case "rpm":
		return Rpm, stem, nil
	default:
		return "", "", fmt.Errorf("unsupported package extension %q in %q", ext, name)
	}
}

// parseDistVersion extracts the release version from a distribution
// identifier: "ubuntu22.04" yields 22.4.0, "fedora38" yields 38.0.0.
// Parsing is lenient because distro releases are not full semver.
func parseDistVersion(section string) *semver.Version {
	raw := splitAtNumeric(section)
	if raw == "" {
		return nil
	}

	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil
	}

	return v
}

// splitAtNumeric returns the tail of s starting at the first digit that
// follows a letter, "" when there is none.
func splitAtNumeric(s string) string {
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if unicode.IsLetter(runes[i-1]) && unicode.IsDigit(runes[i]) {
			return string(runes[i:])
		}
	}
	return ""
}
