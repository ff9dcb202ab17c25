package rpm

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Metadata is the primary catalog: every package the repository serves.
type Metadata struct {
	XMLName  xml.Name  `xml:"metadata"`
	Packages []Package `xml:"package"`
}

// Package is one catalog record.
type Package struct {
	Name     string   `xml:"name"`
	Arch     string   `xml:"arch"`
	Version  Version  `xml:"version"`
	Checksum Checksum `xml:"checksum"`
}

// Version is the epoch/version/release triple of a package.
type Version struct {
	Epoch string `xml:"epoch,attr"`
	Ver   string `xml:"ver,attr"`
	Rel   string `xml:"rel,attr"`
}

// Checksum is the digest the indexer computed for a package file.
type Checksum struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// Filename reconstructs the canonical package filename a catalog record
// describes. The epoch is omitted when zero.
func (p Package) Filename() string {
	if p.Version.Epoch == "0" || p.Version.Epoch == "" {
		return fmt.Sprintf("%s-%s-%s.%s.rpm", p.Name, p.Version.Ver, p.Version.Rel, p.Arch)
	}
	return fmt.Sprintf("%s:%s-%s-%s.%s.rpm", p.Version.Epoch, p.Name, p.Version.Ver, p.Version.Rel, p.Arch)
}

// ParsePrimary decodes a primary catalog, decompressing according to the
// compression its href advertises.
func ParsePrimary(r io.Reader, compression Compression) (*Metadata, error) {
	in, err := compression.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing primary catalog: %w", err)
	}

	var md Metadata
	if err := xml.NewDecoder(in).Decode(&md); err != nil {
		return nil, fmt.Errorf("decoding primary catalog: %w", err)
	}
	for i := range md.Packages {
		md.Packages[i].Checksum.Value = strings.TrimSpace(md.Packages[i].Checksum.Value)
	}
	return &md, nil
}

// FindPackage returns the catalog record whose canonical filename matches.
func (md *Metadata) FindPackage(filename string) (Package, bool) {
	for _, p := range md.Packages {
		if p.Filename() == filename {
			return p, true
		}
	}
	return Package{}, false
}
