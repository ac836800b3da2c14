package pkgfile

// Select picks the packages a distribution's repository should carry.
//
// Candidates are first narrowed to the distribution's package format.
// When any candidate targets the exact distribution release, only those
// are returned; otherwise every format-compatible package is, so that
// dist-agnostic artifacts (e.g. "fcitx-openbangla_3.0.0.deb") serve
// every release of the family.
func Select(from []Package, dist Dist) []Package {
	var packages []Package
	for _, p := range from {
		if p.ForDist(dist) {
			packages = append(packages, p)
		}
	}

	var selective []Package
	for _, p := range packages {
		if p.Dist != nil && p.Dist.Matches(dist) {
			selective = append(selective, p)
		}
	}

	if len(selective) > 0 {
		return selective
	}

	return packages
}
