// Package rpm parses the RPM repository metadata the client consumes: the
// repodata/repomd.xml manifest and the primary catalog it points to.
package rpm

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Repomd is the repodata manifest. It lists the derived metadata documents
// the indexer last generated, each addressed by a location href relative to
// the metadata root.
type Repomd struct {
	XMLName xml.Name `xml:"repomd"`
	Data    []Data   `xml:"data"`
}

// Data is one manifest entry.
type Data struct {
	Type     string   `xml:"type,attr"`
	Location Location `xml:"location"`
}

// Location is a document reference within the repository.
type Location struct {
	Href string `xml:"href,attr"`
}

// ParseRepomd decodes a repomd.xml manifest.
func ParseRepomd(r io.Reader) (*Repomd, error) {
	var md Repomd
	if err := xml.NewDecoder(r).Decode(&md); err != nil {
		return nil, fmt.Errorf("decoding repomd.xml: %w", err)
	}
	return &md, nil
}

// PrimaryHref returns the location of the primary catalog, relative to the
// metadata root. The entry is absent while the indexer rewrites the manifest.
func (md *Repomd) PrimaryHref() (string, bool) {
	for _, d := range md.Data {
		if d.Type == "primary" {
			return d.Location.Href, true
		}
	}
	return "", false
}
