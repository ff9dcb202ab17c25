// Package debian handles the Debian repository formats the client consumes:
// Packages indices and control-file paragraphs.
package debian

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Paragraph is one control-file stanza: field name to value.
type Paragraph map[string]string

// SHA256Line renders the index line that identifies a package by digest.
func SHA256Line(digest []byte) string {
	return "SHA256: " + hex.EncodeToString(digest)
}

// PackagesListSHA256 reports whether a Packages index lists the given digest.
// The match is an exact line comparison: a reindex in progress may contain the
// digest embedded in unrelated fields, but only a SHA256 field counts.
func PackagesListSHA256(r io.Reader, digest []byte) (bool, error) {
	line := SHA256Line(digest)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if scanner.Text() == line {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("scanning Packages index: %w", err)
	}
	return false, nil
}

// ParseControlFile reads the stanzas of a control file. Continuation lines
// (leading space or tab) fold into the preceding field.
func ParseControlFile(r io.Reader) ([]Paragraph, error) {
	var graphs []Paragraph
	current := Paragraph{}
	lastField := ""

	flush := func() {
		if len(current) > 0 {
			graphs = append(graphs, current)
			current = Paragraph{}
			lastField = ""
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.TrimSpace(line) == "":
			flush()
		case line[0] == ' ' || line[0] == '\t':
			if lastField == "" {
				return nil, fmt.Errorf("continuation line outside a field: %q", line)
			}
			current[lastField] += "\n" + strings.TrimRight(line[1:], " \t")
		default:
			field, value, ok := strings.Cut(line, ":")
			if !ok {
				return nil, fmt.Errorf("malformed control line: %q", line)
			}
			lastField = field
			current[field] = strings.TrimSpace(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning control file: %w", err)
	}
	flush()

	return graphs, nil
}
