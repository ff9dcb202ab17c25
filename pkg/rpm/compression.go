package rpm

import (
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/ulikunitz/xz"
)

type Compression string

const (
	CompressionNone Compression = ""
	CompressionGZIP Compression = "gz"
	CompressionXZ   Compression = "xz"
)

// CompressionForPath derives the compression from a metadata href, e.g.
// "repodata/abc123-primary.xml.gz".
func CompressionForPath(p string) Compression {
	switch {
	case strings.HasSuffix(p, ".gz"):
		return CompressionGZIP
	case strings.HasSuffix(p, ".xz"):
		return CompressionXZ
	default:
		return CompressionNone
	}
}

// NewReader wraps r with the matching decompressor.
func (c Compression) NewReader(r io.Reader) (io.Reader, error) {
	switch c {
	case CompressionGZIP:
		return gzip.NewReader(r)
	case CompressionXZ:
		return xz.NewReader(r)
	case CompressionNone:
		return r, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", string(c))
	}
}
