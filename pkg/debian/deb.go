package debian

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/blakesmith/ar"
	"github.com/ulikunitz/xz"
)

// ParagraphFromDeb extracts the control paragraph of a .deb archive: the
// control.tar member, then ./control within it.
func ParagraphFromDeb(in io.Reader) (*Paragraph, error) {
	arReader := ar.NewReader(in)
	for {
		hdr, err := arReader.Next()
		if errors.Is(err, io.EOF) {
			return nil, nil
		} else if err != nil {
			return nil, fmt.Errorf("reading deb archive: %w", err)
		}

		var controlTar io.Reader
		switch hdr.Name {
		case "control.tar.gz":
			gzIn, err := gzip.NewReader(arReader)
			if err != nil {
				return nil, fmt.Errorf("opening control.tar.gz: %w", err)
			}
			defer gzIn.Close()
			controlTar = gzIn
		case "control.tar.xz":
			xzIn, err := xz.NewReader(arReader)
			if err != nil {
				return nil, fmt.Errorf("opening control.tar.xz: %w", err)
			}
			controlTar = xzIn
		default:
			continue
		}

		graph, err := controlFromTar(controlTar)
		if err != nil || graph != nil {
			return graph, err
		}
	}
}

func controlFromTar(in io.Reader) (*Paragraph, error) {
	for tarReader := tar.NewReader(in); ; {
		hdr, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			return nil, nil
		} else if err != nil {
			return nil, fmt.Errorf("reading control archive: %w", err)
		}
		if hdr.Name != "./control" && hdr.Name != "control" {
			continue
		}

		graphs, err := ParseControlFile(tarReader)
		if err != nil {
			return nil, fmt.Errorf("parsing control file: %w", err)
		}
		if len(graphs) != 1 {
			return nil, fmt.Errorf("expected one control paragraph, found %d", len(graphs))
		}
		return &graphs[0], nil
	}
}

// ParagraphFromDebFile extracts the control paragraph from a .deb on disk.
func ParagraphFromDebFile(fn string) (*Paragraph, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParagraphFromDeb(f)
}
