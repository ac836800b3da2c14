package main

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	clierrors "github.com/repocheck-dev/repocheck/internal/errors"
	"github.com/repocheck-dev/repocheck/internal/index/apt"
	"github.com/repocheck-dev/repocheck/internal/index/rpm"
	"github.com/repocheck-dev/repocheck/internal/output"
	"github.com/repocheck-dev/repocheck/internal/pkgfile"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Generate repository index files from package artifacts",
		Long: `Generate the metadata files a package repository serves, from a
directory of built artifacts.

'index apt' renders Packages, Packages.gz and Release for .deb
artifacts; 'index rpm' renders the repodata documents (primary,
filelists, other, repomd) for .rpm artifacts. Output is deterministic
for a given input so regenerated indices diff cleanly.`,
	}

	cmd.AddCommand(newIndexAptCmd())
	cmd.AddCommand(newIndexRpmCmd())

	return cmd
}

func newIndexAptCmd() *cobra.Command {
	var (
		dir     string
		outDir  string
		version string
		dist    string
	)

	cmd := &cobra.Command{
		Use:   "apt",
		Short: "Render apt repository indices for .deb artifacts",
		Example: `  repocheck index apt --dir dist/ --release-version 2.0.0 --out repo/
  repocheck index apt --dir dist/ --release-version 2.0.0 --dist ubuntu22.04`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			artifacts, err := classifyArtifacts(dir, version, pkgfile.Deb)
			if err != nil {
				return err
			}

			if dist != "" {
				d, err := pkgfile.ParseDist(dist)
				if err != nil {
					return clierrors.New(clierrors.ExitUsage, err.Error()).
						WithHint("Use a family plus release, e.g. ubuntu22.04 or debian12")
				}
				artifacts = pkgfile.Select(artifacts, d)
			}

			if len(artifacts) == 0 {
				return clierrors.New(clierrors.ExitConfig,
					fmt.Sprintf("No .deb artifacts found in %s", dir))
			}

			var (
				packages []apt.Package
				newest   time.Time
			)

			for _, artifact := range artifacts {
				data, err := os.ReadFile(filepath.Join(dir, artifact.FileName()))
				if err != nil {
					return fmt.Errorf("read artifact: %w", err)
				}

				pkg, err := apt.NewPackage(artifact, data)
				if err != nil {
					return clierrors.Wrap(clierrors.ExitConfig, "Malformed .deb artifact", err).
						WithHint("Check that the file is a Debian binary package")
				}

				packages = append(packages, pkg)
				if artifact.Created.After(newest) {
					newest = artifact.Created
				}
			}

			ix := apt.NewIndex(packages, newest)
			packagesIndex := ix.PackagesIndex()

			files := map[string][]byte{
				"Packages":    []byte(packagesIndex),
				"Packages.gz": apt.Gzip([]byte(packagesIndex)),
				"Release":     []byte(ix.ReleaseIndex()),
			}

			if err := writeIndexFiles(outDir, files); err != nil {
				return err
			}

			out.Success("Indexed %d package(s) into %s", len(packages), outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory holding the .deb artifacts")
	cmd.Flags().StringVar(&outDir, "out", "repo", "Directory the index files are written to")
	cmd.Flags().StringVar(&version, "release-version", "", "Upstream release version the artifacts belong to")
	cmd.Flags().StringVar(&dist, "dist", "", "Only index artifacts for this distribution (e.g. ubuntu22.04)")

	if err := cmd.MarkFlagRequired("release-version"); err != nil {
		panic(err)
	}

	return cmd
}

func newIndexRpmCmd() *cobra.Command {
	var (
		dir         string
		outDir      string
		version     string
		summary     string
		description string
		url         string
		license     string
	)

	cmd := &cobra.Command{
		Use:     "rpm",
		Short:   "Render RPM repodata for .rpm artifacts",
		Example: `  repocheck index rpm --dir dist/ --release-version 3.0.0 --out repo/`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			artifacts, err := classifyArtifacts(dir, version, pkgfile.Rpm)
			if err != nil {
				return err
			}
			if len(artifacts) == 0 {
				return clierrors.New(clierrors.ExitConfig,
					fmt.Sprintf("No .rpm artifacts found in %s", dir))
			}

			var packages []rpm.Package

			for _, artifact := range artifacts {
				name := artifact.FileName()

				data, err := os.ReadFile(filepath.Join(dir, name))
				if err != nil {
					return fmt.Errorf("read artifact: %w", err)
				}

				pkg, err := rpmPackageFromFileName(name)
				if err != nil {
					return clierrors.Wrap(clierrors.ExitConfig, "Unrecognized .rpm filename", err).
						WithHint("Expected name-version-release.arch.rpm")
				}

				pkg.Summary = summary
				pkg.Description = description
				pkg.URL = url
				pkg.License = license
				pkg.Checksum = fmt.Sprintf("%x", sha256.Sum256(data))
				pkg.Size = len(data)
				pkg.Location = pkg.Arch + "/" + name
				pkg.FileTime = artifact.Created.Unix()

				packages = append(packages, pkg)
			}

			primary := []byte(rpm.PrimaryIndex(packages))
			filelists := []byte(rpm.FilelistsIndex(packages))
			other := []byte(rpm.OtherIndex(packages))

			files := map[string][]byte{
				"repodata/primary.xml":       primary,
				"repodata/primary.xml.zst":   rpm.Compress(primary),
				"repodata/filelists.xml":     filelists,
				"repodata/filelists.xml.zst": rpm.Compress(filelists),
				"repodata/other.xml":         other,
				"repodata/other.xml.zst":     rpm.Compress(other),
				"repodata/repomd.xml":        []byte(rpm.RepoMDIndex(packages)),
			}

			if err := writeIndexFiles(outDir, files); err != nil {
				return err
			}

			out.Success("Indexed %d package(s) into %s", len(packages), outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory holding the .rpm artifacts")
	cmd.Flags().StringVar(&outDir, "out", "repo", "Directory the repodata is written to")
	cmd.Flags().StringVar(&version, "release-version", "", "Upstream release version the artifacts belong to")
	cmd.Flags().StringVar(&summary, "summary", "", "Summary recorded in primary.xml")
	cmd.Flags().StringVar(&description, "description", "", "Description recorded in primary.xml")
	cmd.Flags().StringVar(&url, "url", "", "Upstream URL recorded in primary.xml")
	cmd.Flags().StringVar(&license, "license", "", "License recorded in primary.xml")

	if err := cmd.MarkFlagRequired("release-version"); err != nil {
		panic(err)
	}

	return cmd
}

// classifyArtifacts scans dir for artifacts of the given format. Files
// with other extensions are ignored so mixed release directories work.
func classifyArtifacts(dir, version string, typ pkgfile.Type) ([]pkgfile.Package, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, clierrors.Wrap(clierrors.ExitConfig, "Cannot read artifact directory", err).
			WithHint("Pass the directory holding the built packages with --dir")
	}

	var artifacts []pkgfile.Package

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "."+string(typ)) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat artifact: %w", err)
		}

		artifact, err := pkgfile.Detect(entry.Name(), version, entry.Name(), info.ModTime())
		if err != nil {
			return nil, clierrors.Wrap(clierrors.ExitConfig, "Unrecognized artifact", err).
				WithHint("Only .deb and .rpm artifacts are indexable")
		}

		artifacts = append(artifacts, artifact)
	}

	// ReadDir sorts by name already; keep that explicit so index output
	// stays stable if the listing source ever changes.
	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].FileName() < artifacts[j].FileName()
	})

	return artifacts, nil
}

// rpmPackageFromFileName parses "name-version-release.arch.rpm".
func rpmPackageFromFileName(name string) (rpm.Package, error) {
	stem := strings.TrimSuffix(name, ".rpm")
	if stem == name {
		return rpm.Package{}, fmt.Errorf("missing .rpm extension in %q", name)
	}

	archIdx := strings.LastIndexByte(stem, '.')
	if archIdx <= 0 {
		return rpm.Package{}, fmt.Errorf("missing architecture in %q", name)
	}
	arch := stem[archIdx+1:]

	fields := strings.Split(stem[:archIdx], "-")
	if len(fields) < 3 {
		return rpm.Package{}, fmt.Errorf("missing version-release in %q", name)
	}

	return rpm.Package{
		Name:    strings.Join(fields[:len(fields)-2], "-"),
		Version: fields[len(fields)-2],
		Release: fields[len(fields)-1],
		Arch:    arch,
	}, nil
}

func writeIndexFiles(outDir string, files map[string][]byte) error {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		full := filepath.Join(outDir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return fmt.Errorf("create index directory: %w", err)
		}
		if err := os.WriteFile(full, files[path], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	return nil
}
