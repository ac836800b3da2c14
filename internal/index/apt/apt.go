// Package apt renders Debian repository index files.
//
// The repository layout is the flat "stable" distribution apt expects:
// Packages lists every pool artifact with its control stanza and
// checksums, and Release carries checksum tables for Packages and
// Packages.gz. Output is deterministic for a given input so the indices
// can be diffed between releases.
package apt

import (
	"bytes"
	"compress/gzip"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"
	"text/template"
	"time"

	"github.com/repocheck-dev/repocheck/internal/deb"
	"github.com/repocheck-dev/repocheck/internal/pkgfile"
)

// Package is one pool artifact ready for indexing.
type Package struct {
	// Control is the package's control stanza, verbatim.
	Control string

	// Filename is the pool path apt downloads the artifact from.
	Filename string

	// Data is the artifact content; checksums and size derive from it.
	Data []byte
}

// NewPackage builds an index entry from a classified artifact and its
// data, extracting the control stanza from the archive.
func NewPackage(p pkgfile.Package, data []byte) (Package, error) {
	control, err := deb.ExtractControl(data)
	if err != nil {
		return Package{}, fmt.Errorf("extract control from %s: %w", p.FileName(), err)
	}

	return Package{
		Control:  control.Raw,
		Filename: fmt.Sprintf("pool/stable/%s/%s", p.Version, p.FileName()),
		Data:     data,
	}, nil
}

// Index renders the repository indices for a set of packages.
type Index struct {
	packages []Package

	// date is the newest artifact publication time; Release carries it.
	date time.Time
}

// NewIndex creates an Index. The date is the newest creation time among
// the classified artifacts backing the entries.
func NewIndex(packages []Package, date time.Time) *Index {
	return &Index{packages: packages, date: date}
}

var packagesTemplate = template.Must(template.New("Packages").Parse(
	`{{range .}}{{.Control}}
Filename: {{.Filename}}
Size: {{.Size}}
MD5sum: {{.MD5}}
SHA1: {{.SHA1}}
SHA256: {{.SHA256}}
SHA512: {{.SHA512}}

{{end}}`))

var releaseTemplate = template.Must(template.New("Release").Parse(
	`Origin: {{.Origin}}
Label: {{.Label}}
Date: {{.Date}}
MD5Sum:
{{range .Files}} {{.MD5}} {{.Size}} {{.Path}}
{{end}}SHA1:
{{range .Files}} {{.SHA1}} {{.Size}} {{.Path}}
{{end}}SHA256:
{{range .Files}} {{.SHA256}} {{.Size}} {{.Path}}
{{end}}SHA512:
{{range .Files}} {{.SHA512}} {{.Size}} {{.Path}}
{{end}}`))

type packageEntry struct {
	Control  string
	Filename string
	Size     int
	MD5      string
	SHA1     string
	SHA256   string
	SHA512   string
}

type releaseFile struct {
	MD5    string
	SHA1   string
	SHA256 string
	SHA512 string
	Size   int
	Path   string
}

type releaseIndex struct {
	Origin string
	Label  string
	Date   string
	Files  []releaseFile
}

// The repository serves a single flat distribution.
const originName = ". stable"

// PackagesIndex renders the Packages file.
func (ix *Index) PackagesIndex() string {
	entries := make([]packageEntry, 0, len(ix.packages))
	for _, p := range ix.packages {
		entries = append(entries, packageEntry{
			Control:  strings.TrimRight(p.Control, "\n \t"),
			Filename: p.Filename,
			Size:     len(p.Data),
			MD5:      hashsum(md5.New(), p.Data),
			SHA1:     hashsum(sha1.New(), p.Data),
			SHA256:   hashsum(sha256.New(), p.Data),
			SHA512:   hashsum(sha512.New(), p.Data),
		})
	}

	var buf bytes.Buffer
	// Static template over plain data; cannot fail at execution.
	_ = packagesTemplate.Execute(&buf, entries)

	return strings.TrimSpace(buf.String())
}

// ReleaseIndex renders the Release file, covering Packages and its
// gzipped variant.
func (ix *Index) ReleaseIndex() string {
	packages := []byte(ix.PackagesIndex())
	packagesGz := Gzip(packages)

	files := []releaseFile{
		digests(packages, "main/binary-amd64/Packages"),
		digests(packagesGz, "main/binary-amd64/Packages.gz"),
	}

	var buf bytes.Buffer
	_ = releaseTemplate.Execute(&buf, releaseIndex{
		Origin: originName,
		Label:  originName,
		Date:   ix.date.UTC().Format(time.RFC1123Z),
		Files:  files,
	})

	return buf.String()
}

func digests(data []byte, path string) releaseFile {
	return releaseFile{
		MD5:    hashsum(md5.New(), data),
		SHA1:   hashsum(sha1.New(), data),
		SHA256: hashsum(sha256.New(), data),
		SHA512: hashsum(sha512.New(), data),
		Size:   len(data),
		Path:   path,
	}
}

// Gzip compresses data with a zeroed modification time so repeated runs
// over identical input produce byte-identical archives.
func Gzip(data []byte) []byte {
	var buf bytes.Buffer

	w := gzip.NewWriter(&buf)
	// ModTime left as the zero value encodes as 0 in the gzip header.
	_, _ = w.Write(data)
	_ = w.Close()

	return buf.Bytes()
}

func hashsum(h hash.Hash, data []byte) string {
	h.Write(data)
	return fmt.Sprintf("%x", h.Sum(nil))
}
