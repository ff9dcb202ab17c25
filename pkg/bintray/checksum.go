package bintray

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
)

// checksumHeader carries the hex SHA-256 of a download, when the mirror
// already knows it.
const checksumHeader = "X-Checksum-Sha2"

// Checksum holds the digests known for one piece of content. Fields are raw
// digest bytes; hex encoding happens only where a wire format needs it. Either
// field may be nil.
type Checksum struct {
	SHA1   []byte
	SHA256 []byte
}

func (c Checksum) SHA1Hex() string {
	return hex.EncodeToString(c.SHA1)
}

func (c Checksum) SHA256Hex() string {
	return hex.EncodeToString(c.SHA256)
}

// ChecksumFromReader digests r in a single pass.
func ChecksumFromReader(r io.Reader) (Checksum, error) {
	h1 := sha1.New()
	h256 := sha256.New()
	if _, err := io.Copy(io.MultiWriter(h1, h256), r); err != nil {
		return Checksum{}, fmt.Errorf("digesting content: %w", err)
	}
	return Checksum{
		SHA1:   h1.Sum(nil),
		SHA256: h256.Sum(nil),
	}, nil
}

// ChecksumFromFile digests the file at fn.
func ChecksumFromFile(fn string) (Checksum, error) {
	f, err := os.Open(fn)
	if err != nil {
		return Checksum{}, err
	}
	defer f.Close()

	return ChecksumFromReader(f)
}

// checksumFromResponse decodes the SHA-256 a mirror reports for the probed
// content. Returns nil when the header is absent or malformed.
func checksumFromResponse(resp *http.Response) []byte {
	v := resp.Header.Get(checksumHeader)
	if v == "" {
		return nil
	}
	digest, err := hex.DecodeString(v)
	if err != nil {
		return nil
	}
	return digest
}
