// Package deb extracts control metadata from Debian binary packages.
//
// A .deb is a Unix ar archive carrying debian-binary, control.tar[.gz|
// .xz|.zst] and data.tar*. Only the control member is read here — the apt
// index needs the control stanza verbatim, nothing from the payload.
package deb

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Control is the parsed control member of a package.
type Control struct {
	// Raw is the full control stanza, trailing whitespace trimmed.
	Raw string

	// Fields maps control field names to values. Continuation lines are
	// folded into their field.
	Fields map[string]string
}

// Package returns the Package control field.
func (c *Control) Package() string { return c.Fields["Package"] }

// Version returns the Version control field.
func (c *Control) Version() string { return c.Fields["Version"] }

// Architecture returns the Architecture control field.
func (c *Control) Architecture() string { return c.Fields["Architecture"] }

const arMagic = "!<arch>\n"

// ExtractControl reads a .deb archive and returns its control metadata.
func ExtractControl(data []byte) (*Control, error) {
	tarball, compression, err := findControlMember(data)
	if err != nil {
		return nil, err
	}

	raw, err := readControlFile(tarball, compression)
	if err != nil {
		return nil, err
	}

	return parseControl(raw)
}

// findControlMember walks the ar archive for control.tar*.
func findControlMember(data []byte) ([]byte, string, error) {
	if len(data) < len(arMagic) || string(data[:len(arMagic)]) != arMagic {
		return nil, "", fmt.Errorf("not an ar archive")
	}

	offset := len(arMagic)
	for offset+60 <= len(data) {
		header := data[offset : offset+60]
		if header[58] != 0x60 || header[59] != '\n' {
			return nil, "", fmt.Errorf("corrupt ar member header at offset %d", offset)
		}

		name := strings.TrimRight(string(header[0:16]), " ")
		name = strings.TrimSuffix(name, "/") // GNU ar terminates names with '/'

		size, err := strconv.Atoi(strings.TrimSpace(string(header[48:58])))
		if err != nil || size < 0 {
			return nil, "", fmt.Errorf("corrupt ar member size for %q", name)
		}

		start := offset + 60
		if start+size > len(data) {
			return nil, "", fmt.Errorf("truncated ar member %q", name)
		}

		if compression, ok := controlCompression(name); ok {
			return data[start : start+size], compression, nil
		}

		// Members are 2-byte aligned.
		offset = start + size
		if size%2 == 1 {
			offset++
		}
	}

	return nil, "", fmt.Errorf("no control member found")
}

func controlCompression(name string) (string, bool) {
	switch name {
	case "control.tar":
		return "", true
	case "control.tar.gz":
		return "gz", true
	case "control.tar.xz":
		return "xz", true
	case "control.tar.zst":
		return "zst", true
	default:
		return "", false
	}
}

// readControlFile decompresses the control tarball and returns the
// ./control file contents.
func readControlFile(tarball []byte, compression string) (string, error) {
	var reader io.Reader = bytes.NewReader(tarball)

	switch compression {
	case "":
	case "gz":
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return "", fmt.Errorf("open control.tar.gz: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "xz":
		xzr, err := xz.NewReader(reader)
		if err != nil {
			return "", fmt.Errorf("open control.tar.xz: %w", err)
		}
		reader = xzr
	case "zst":
		zr, err := zstd.NewReader(reader)
		if err != nil {
			return "", fmt.Errorf("open control.tar.zst: %w", err)
		}
		defer zr.Close()
		reader = zr
	default:
		return "", fmt.Errorf("unsupported control compression %q", compression)
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return "", fmt.Errorf("control file not found in control member")
		}
		if err != nil {
			return "", fmt.Errorf("read control tarball: %w", err)
		}

		if strings.TrimPrefix(hdr.Name, "./") != "control" {
			continue
		}

		content, err := io.ReadAll(tr)
		if err != nil {
			return "", fmt.Errorf("read control file: %w", err)
		}

		return string(content), nil
	}
}

// parseControl splits the stanza into fields. Continuation lines (leading
// space or tab, as in multi-line Description fields) fold into the
// preceding field.
func parseControl(raw string) (*Control, error) {
	fields := map[string]string{}

	var last string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if line[0] == ' ' || line[0] == '\t' {
			if last == "" {
				return nil, fmt.Errorf("continuation line before any field")
			}
			fields[last] += "\n" + line
			continue
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed control line %q", line)
		}

		last = strings.TrimSpace(name)
		fields[last] = strings.TrimSpace(value)
	}

	if fields["Package"] == "" {
		return nil, fmt.Errorf("control stanza has no Package field")
	}

	return &Control{
		Raw:    strings.TrimRight(raw, "\n \t"),
		Fields: fields,
	}, nil
}
