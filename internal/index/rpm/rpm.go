// Package rpm renders RPM repository metadata (repodata).
//
// The repository serves the four documents dnf/zypper consume:
// primary.xml, filelists.xml, other.xml and the repomd.xml table of
// contents. Metadata documents are published zstd-compressed alongside
// their open form; repomd.xml records size and sha256 for both.
package rpm

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"text/template"

	"github.com/klauspost/compress/zstd"
)

// Package is one artifact's metadata, as primary.xml presents it.
type Package struct {
	Name        string
	Version     string
	Release     string
	Arch        string
	Summary     string
	Description string
	URL         string
	License     string

	// Checksum is the sha256 of the artifact, its pkgid.
	Checksum string

	// Size is the artifact size in bytes.
	Size int

	// Location is the artifact path relative to the repository root.
	Location string

	// FileTime is the artifact publication time as a Unix timestamp.
	FileTime int64

	// Files lists the paths the package installs.
	Files []string
}

var primaryTemplate = template.Must(template.New("primary").Parse(
	`<?xml version="1.0" encoding="UTF-8"?>
<metadata xmlns="http://linux.duke.edu/metadata/common" xmlns:rpm="http://linux.duke.edu/metadata/rpm" packages="{{len .}}">
{{range .}}  <package type="rpm">
    <name>{{.Name}}</name>
    <arch>{{.Arch}}</arch>
    <version epoch="0" ver="{{.Version}}" rel="{{.Release}}"/>
    <checksum type="sha256" pkgid="YES">{{.Checksum}}</checksum>
    <summary>{{.Summary}}</summary>
    <description>{{.Description}}</description>
    <url>{{.URL}}</url>
    <time file="{{.FileTime}}" build="{{.FileTime}}"/>
    <size package="{{.Size}}"/>
    <location href="{{.Location}}"/>
    <format>
      <rpm:license>{{.License}}</rpm:license>
    </format>
  </package>
{{end}}</metadata>
`))

var filelistsTemplate = template.Must(template.New("filelists").Parse(
	`<?xml version="1.0" encoding="UTF-8"?>
<filelists xmlns="http://linux.duke.edu/metadata/filelists" packages="{{len .}}">
{{range .}}  <package pkgid="{{.Checksum}}" name="{{.Name}}" arch="{{.Arch}}">
    <version epoch="0" ver="{{.Version}}" rel="{{.Release}}"/>
{{range .Files}}    <file>{{.}}</file>
{{end}}  </package>
{{end}}</filelists>
`))

var otherTemplate = template.Must(template.New("other").Parse(
	`<?xml version="1.0" encoding="UTF-8"?>
<otherdata xmlns="http://linux.duke.edu/metadata/other" packages="{{len .}}">
{{range .}}  <package pkgid="{{.Checksum}}" name="{{.Name}}" arch="{{.Arch}}">
    <version epoch="0" ver="{{.Version}}" rel="{{.Release}}"/>
  </package>
{{end}}</otherdata>
`))

var repomdTemplate = template.Must(template.New("repomd").Parse(
	`<?xml version="1.0" encoding="UTF-8"?>
<repomd xmlns="http://linux.duke.edu/metadata/repo" xmlns:rpm="http://linux.duke.edu/metadata/rpm">
  <revision>{{.Timestamp}}</revision>
{{range .Sections}}  <data type="{{.Type}}">
    <checksum type="sha256">{{.SHA256}}</checksum>
    <open-checksum type="sha256">{{.OpenSHA256}}</open-checksum>
    <location href="repodata/{{.Type}}.xml.zst"/>
    <timestamp>{{$.Timestamp}}</timestamp>
    <size>{{.Size}}</size>
    <open-size>{{.OpenSize}}</open-size>
  </data>
{{end}}</repomd>
`))

// PrimaryIndex renders primary.xml.
func PrimaryIndex(packages []Package) string {
	return render(primaryTemplate, packages)
}

// FilelistsIndex renders filelists.xml.
func FilelistsIndex(packages []Package) string {
	return render(filelistsTemplate, packages)
}

// OtherIndex renders other.xml.
func OtherIndex(packages []Package) string {
	return render(otherTemplate, packages)
}

// metadata describes one repodata document in repomd.xml.
type metadata struct {
	Type       string
	SHA256     string
	OpenSHA256 string
	Size       int
	OpenSize   int
}

type repomd struct {
	Timestamp int64
	Sections  []metadata
}

// RepoMDIndex renders repomd.xml covering the three metadata documents.
// The revision is the newest package timestamp.
func RepoMDIndex(packages []Package) string {
	var timestamp int64
	for _, p := range packages {
		if p.FileTime > timestamp {
			timestamp = p.FileTime
		}
	}

	sections := []metadata{
		describe("primary", PrimaryIndex(packages)),
		describe("filelists", FilelistsIndex(packages)),
		describe("other", OtherIndex(packages)),
	}

	var buf bytes.Buffer
	_ = repomdTemplate.Execute(&buf, repomd{Timestamp: timestamp, Sections: sections})

	return buf.String()
}

// describe computes the open and compressed digests of one document.
func describe(typ, content string) metadata {
	data := []byte(content)
	compressed := Compress(data)

	return metadata{
		Type:       typ,
		SHA256:     hashsum(compressed),
		OpenSHA256: hashsum(data),
		Size:       len(compressed),
		OpenSize:   len(data),
	}
}

// Compress zstd-compresses a metadata document.
func Compress(data []byte) []byte {
	// EncoderLevel defaults match what createrepo_c emits; a singleton
	// encoder is unnecessary for four small documents per run.
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		// NewWriter only fails on invalid options; none are passed.
		panic(fmt.Sprintf("rpm: create zstd encoder: %v", err))
	}
	defer enc.Close()

	return enc.EncodeAll(data, nil)
}

func render(t *template.Template, packages []Package) string {
	var buf bytes.Buffer
	_ = t.Execute(&buf, packages)
	return buf.String()
}

func hashsum(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
