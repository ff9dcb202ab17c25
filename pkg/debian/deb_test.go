package debian_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"testing"
	"time"

	"github.com/blakesmith/ar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabbitmq/bintray-go/pkg/debian"
)

const controlFile = `Package: foobar
Version: 1.2.3
Architecture: amd64
Maintainer: nobody
Description: test package
`

type arMember struct {
	name string
	body []byte
}

func buildDeb(tb testing.TB) []byte {
	tb.Helper()

	var controlTar bytes.Buffer
	tw := tar.NewWriter(&controlTar)
	require.NoError(tb, tw.WriteHeader(&tar.Header{
		Name: "./control",
		Mode: 0o644,
		Size: int64(len(controlFile)),
	}))
	_, err := tw.Write([]byte(controlFile))
	require.NoError(tb, err)
	require.NoError(tb, tw.Close())

	var controlGz bytes.Buffer
	gz := gzip.NewWriter(&controlGz)
	_, err = gz.Write(controlTar.Bytes())
	require.NoError(tb, err)
	require.NoError(tb, gz.Close())

	var deb bytes.Buffer
	aw := ar.NewWriter(&deb)
	require.NoError(tb, aw.WriteGlobalHeader())
	for _, member := range []arMember{
		{name: "debian-binary", body: []byte("2.0\n")},
		{name: "control.tar.gz", body: controlGz.Bytes()},
	} {
		require.NoError(tb, aw.WriteHeader(&ar.Header{
			Name:    member.name,
			ModTime: time.Unix(0, 0),
			Mode:    0o644,
			Size:    int64(len(member.body)),
		}))
		_, err = aw.Write(member.body)
		require.NoError(tb, err)
	}
	return deb.Bytes()
}

func TestParagraphFromDeb(t *testing.T) {
	t.Parallel()
	graph, err := debian.ParagraphFromDeb(bytes.NewReader(buildDeb(t)))
	require.NoError(t, err)
	require.NotNil(t, graph)

	assert.Equal(t, &debian.Paragraph{
		"Package":      "foobar",
		"Version":      "1.2.3",
		"Architecture": "amd64",
		"Maintainer":   "nobody",
		"Description":  "test package",
	}, graph)
}

func TestParagraphFromDeb_NoControl(t *testing.T) {
	t.Parallel()
	var deb bytes.Buffer
	aw := ar.NewWriter(&deb)
	require.NoError(t, aw.WriteGlobalHeader())
	require.NoError(t, aw.WriteHeader(&ar.Header{
		Name:    "debian-binary",
		ModTime: time.Unix(0, 0),
		Mode:    0o644,
		Size:    4,
	}))
	_, err := aw.Write([]byte("2.0\n"))
	require.NoError(t, err)

	graph, err := debian.ParagraphFromDeb(&deb)
	require.NoError(t, err)
	assert.Nil(t, graph)
}

func TestParagraphFromDebFile(t *testing.T) {
	t.Parallel()
	_, err := debian.ParagraphFromDebFile("testdata/missing.deb")
	require.Error(t, err)
}
