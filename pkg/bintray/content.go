package bintray

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"
)

// Content addresses one uploaded file within a package version. The identity
// is immutable once built; checksums and Debian index attributes are set
// through the With* builders before a wait starts.
type Content struct {
	client *Client

	subject    string
	repository string
	pkg        string
	version    string
	path       string

	repoType RepositoryType
	checksum Checksum

	debianDistributions []string
	debianComponents    []string
	debianArchitectures []string

	// probeInterval overrides the per-oracle retry intervals; tests only.
	probeInterval time.Duration
}

// Content addresses an uploaded file. The path is reduced to a pure relative
// path: root, drive and parent-navigation segments are stripped.
func (c *Client) Content(subject, repository, pkg, version, contentPath string) *Content {
	return &Content{
		client:     c,
		subject:    subject,
		repository: repository,
		pkg:        pkg,
		version:    version,
		path:       cleanPath(contentPath),
	}
}

// WithRepositoryType pins the repository type, skipping the lookup that
// WaitForIndexation would otherwise perform.
func (c *Content) WithRepositoryType(t RepositoryType) *Content {
	c.repoType = t
	return c
}

// WithChecksum sets the digests the waits verify against.
func (c *Content) WithChecksum(checksum Checksum) *Content {
	c.checksum = checksum
	return c
}

// WithDebianDistributions declares the distributions the content was uploaded
// to. Stored sorted, so waits walk combinations in a stable order.
func (c *Content) WithDebianDistributions(distributions ...string) *Content {
	c.debianDistributions = sortedCopy(distributions)
	return c
}

// WithDebianComponents declares the components the content was uploaded to.
func (c *Content) WithDebianComponents(components ...string) *Content {
	c.debianComponents = sortedCopy(components)
	return c
}

// WithDebianArchitectures declares the architectures the content was uploaded
// for.
func (c *Content) WithDebianArchitectures(architectures ...string) *Content {
	c.debianArchitectures = sortedCopy(architectures)
	return c
}

// Path returns the cleaned relative path of the content.
func (c *Content) Path() string {
	return c.path
}

// Checksum returns the digests currently known for the content.
func (c *Content) Checksum() Checksum {
	return c.checksum
}

// downloadURL is the content's location on the download mirrors.
func (c *Content) downloadURL() string {
	return c.client.DownloadURL(c.subject, c.repository, c.path)
}

// Exists probes the download mirrors once. When the content exists and no
// expected SHA-256 is set, the mirror-reported digest is adopted.
func (c *Content) Exists(ctx context.Context) (bool, error) {
	resp, err := c.client.Do(ctx, http.MethodHead, c.downloadURL())
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if statusSuccess(resp.StatusCode) {
		reported := checksumFromResponse(resp)
		if c.checksum.SHA256 != nil {
			return bytes.Equal(reported, c.checksum.SHA256), nil
		}
		c.checksum.SHA256 = reported
		return true, nil
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusNotFound:
		return false, nil
	default:
		return false, &UnexpectedStatusError{Status: resp.StatusCode}
	}
}

func (c *Content) String() string {
	return fmt.Sprintf("bintray.Content(%s:%s:%s:%s:%s)",
		c.subject, c.repository, c.pkg, c.version, c.path)
}

func (c *Content) interval(fallback time.Duration) time.Duration {
	if c.probeInterval > 0 {
		return c.probeInterval
	}
	return fallback
}

// resolveType returns the pinned repository type, or resolves it from the
// repository configuration.
func (c *Content) resolveType(ctx context.Context) (RepositoryType, error) {
	if c.repoType != "" {
		return c.repoType, nil
	}
	repo, err := c.client.Repository(ctx, c.subject, c.repository)
	if err != nil {
		return "", err
	}
	c.repoType = repo.Type
	return c.repoType, nil
}

func statusSuccess(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

// cleanPath strips everything that would make the path non-relative: drive
// prefixes, leading slashes, and any navigation above the implicit root.
func cleanPath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	// Only a letter-colon pair is a drive prefix. Colons appear legitimately
	// in content paths, e.g. epoch-qualified RPM filenames ("1:foo-1.0.rpm").
	if len(p) >= 2 && p[1] == ':' && isDriveLetter(p[0]) {
		p = p[2:]
	}
	// Resolving against "/" collapses "." segments and pins ".." at the top.
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}

func isDriveLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func sortedCopy(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}
