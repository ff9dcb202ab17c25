package bintray

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/rabbitmq/bintray-go/pkg/debian"
	"github.com/rabbitmq/bintray-go/pkg/poll"
	"github.com/rabbitmq/bintray-go/pkg/rpm"
)

// indexationInterval is long: index rebuilds are server-side batch jobs, so
// probing faster buys nothing.
const indexationInterval = 30 * time.Second

// WaitForIndexation polls the repository's derived index metadata until it
// lists this content, or timeout elapses.
//
// Only Debian and RPM repositories are indexed; any other repository type
// fails with ErrNotIndexed before any probe. For Debian repositories every
// declared (distribution, component, architecture) combination is verified in
// turn, the combinations sharing the one timeout budget; the first failure
// aborts the rest. For RPM repositories the metadata depth comes from the
// resolved repository configuration.
func (c *Content) WaitForIndexation(ctx context.Context, timeout time.Duration) error {
	repoType, err := c.resolveType(ctx)
	if err != nil {
		return err
	}
	if !repoType.IsIndexed() {
		return ErrNotIndexed
	}

	remaining := timeout

	switch repoType {
	case RepositoryDebian:
		for _, distribution := range c.debianDistributions {
			for _, component := range c.debianComponents {
				for _, architecture := range c.debianArchitectures {
					start := time.Now()
					err := c.waitForDebianIndexation(ctx, distribution, component, architecture, remaining)
					if err != nil {
						return err
					}
					remaining -= time.Since(start)
				}
			}
		}
		return nil

	case RepositoryRPM:
		if c.checksum.SHA1 == nil {
			return ErrChecksumRequired
		}
		repo, err := c.client.Repository(ctx, c.subject, c.repository)
		if err != nil {
			return err
		}
		return c.waitForRPMIndexation(ctx, repo.YumMetadataDepth, remaining)

	default:
		panic("bintray: indexed repository type without an oracle: " + string(repoType))
	}
}

// waitForDebianIndexation polls the architecture's Packages index for an
// exact "SHA256: <hex>" line matching the content.
func (c *Content) waitForDebianIndexation(ctx context.Context, distribution, component, architecture string, timeout time.Duration) error {
	if c.checksum.SHA256 == nil {
		return ErrChecksumRequired
	}

	target := c.client.DownloadURL(c.subject, c.repository,
		"dists", distribution, component, "binary-"+architecture, "Packages")
	digest := c.checksum.SHA256

	check := func(resp *http.Response) poll.Outcome[struct{}] {
		slog.Debug("debian indexation probe",
			slog.String("content", c.String()),
			slog.String("distribution", distribution),
			slog.String("component", component),
			slog.String("architecture", architecture),
			slog.Int("status", resp.StatusCode))

		if statusSuccess(resp.StatusCode) {
			found, err := debian.PackagesListSHA256(resp.Body, digest)
			if err != nil {
				return poll.Failed[struct{}](err)
			}
			if found {
				return poll.Settled(struct{}{})
			}
			return poll.Retry[struct{}]()
		}

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusNotFound:
			// Index not regenerated yet.
			return poll.Retry[struct{}]()
		default:
			return poll.Failed[struct{}](&UnexpectedStatusError{Status: resp.StatusCode})
		}
	}

	_, err := poll.Wait(ctx, c.client, poll.Request[struct{}]{
		Method:   http.MethodGet,
		URL:      target,
		Check:    check,
		Interval: c.interval(indexationInterval),
		Timeout:  timeout,
	})
	if err != nil {
		return err
	}

	slog.Info("content indexed",
		slog.String("content", c.String()),
		slog.String("distribution", distribution),
		slog.String("component", component),
		slog.String("architecture", architecture))
	return nil
}

// waitForRPMIndexation polls the repodata manifest and, through it, the
// primary catalog, until the catalog lists this content's filename with the
// expected SHA-1.
//
// The two fetches race the indexer rewriting both documents, so everything
// that can go wrong between the manifest and a fully parsed catalog entry is
// transient: manifest parse failures, a missing primary entry, catalog fetch
// or decompress or parse failures, and a stale checksum all mean "reindex
// still catching up". The only fatal verdicts are an unexpected manifest
// status and a checksum algorithm this client cannot verify.
func (c *Content) waitForRPMIndexation(ctx context.Context, yumMetadataDepth int, timeout time.Duration) error {
	if c.checksum.SHA1 == nil {
		return ErrChecksumRequired
	}

	root := []string{c.subject, c.repository}
	if yumMetadataDepth > 0 {
		dir := path.Dir(c.path)
		parts := strings.Split(dir, "/")
		if dir == "." {
			parts = nil
		} else if yumMetadataDepth < len(parts) {
			parts = parts[:yumMetadataDepth]
		}
		root = append(root, parts...)
	}

	repomdURL := c.client.DownloadURL(append(root, "repodata", "repomd.xml")...)
	filename := path.Base(c.path)
	digest := c.checksum.SHA1Hex()

	check := func(resp *http.Response) poll.Outcome[struct{}] {
		slog.Debug("rpm indexation probe",
			slog.String("content", c.String()),
			slog.Int("status", resp.StatusCode))

		if statusSuccess(resp.StatusCode) {
			manifest, err := rpm.ParseRepomd(resp.Body)
			if err != nil {
				return poll.Retry[struct{}]()
			}
			href, ok := manifest.PrimaryHref()
			if !ok {
				return poll.Retry[struct{}]()
			}

			record, ok, err := c.fetchPrimaryRecord(resp.Request.Context(), root, href, filename)
			if err != nil || !ok {
				return poll.Retry[struct{}]()
			}

			if record.Checksum.Type != "sha" {
				return poll.Failed[struct{}](fmt.Errorf("%w: got %q",
					ErrChecksumUnsupported, record.Checksum.Type))
			}
			if strings.EqualFold(record.Checksum.Value, digest) {
				return poll.Settled(struct{}{})
			}
			// Listed, but as a previous upload of the same filename.
			return poll.Retry[struct{}]()
		}

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusNotFound:
			return poll.Retry[struct{}]()
		default:
			return poll.Failed[struct{}](&UnexpectedStatusError{Status: resp.StatusCode})
		}
	}

	_, err := poll.Wait(ctx, c.client, poll.Request[struct{}]{
		Method:   http.MethodGet,
		URL:      repomdURL,
		Check:    check,
		Interval: c.interval(indexationInterval),
		Timeout:  timeout,
	})
	if err != nil {
		return err
	}

	slog.Info("content indexed", slog.String("content", c.String()))
	return nil
}

// fetchPrimaryRecord fetches the primary catalog at href (relative to the
// metadata root) and looks up the record for filename.
func (c *Content) fetchPrimaryRecord(ctx context.Context, root []string, href, filename string) (rpm.Package, bool, error) {
	primaryURL := c.client.DownloadURL(append(root, href)...)

	resp, err := c.client.Do(ctx, http.MethodGet, primaryURL)
	if err != nil {
		return rpm.Package{}, false, err
	}
	defer resp.Body.Close()

	if !statusSuccess(resp.StatusCode) {
		return rpm.Package{}, false, &UnexpectedStatusError{Status: resp.StatusCode}
	}

	catalog, err := rpm.ParsePrimary(resp.Body, rpm.CompressionForPath(href))
	if err != nil {
		return rpm.Package{}, false, err
	}

	record, ok := catalog.FindPackage(filename)
	return record, ok, nil
}
