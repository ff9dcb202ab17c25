package bintray_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabbitmq/bintray-go/pkg/bintray"
)

func TestChecksumFromReader(t *testing.T) {
	t.Parallel()
	checksum, err := bintray.ChecksumFromReader(strings.NewReader("abc"))
	require.NoError(t, err)

	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", checksum.SHA1Hex())
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", checksum.SHA256Hex())
}

func TestChecksumFromFile(t *testing.T) {
	t.Parallel()
	fn := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(fn, nil, 0o600))

	checksum, err := bintray.ChecksumFromFile(fn)
	require.NoError(t, err)

	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", checksum.SHA1Hex())
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", checksum.SHA256Hex())
}

func TestChecksumFromFile_Missing(t *testing.T) {
	t.Parallel()
	_, err := bintray.ChecksumFromFile(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
