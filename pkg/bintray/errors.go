package bintray

import (
	"errors"
	"fmt"
)

var (
	// ErrChecksumRequired is returned when an indexation wait is started
	// without the digest it needs (SHA-256 for Debian, SHA-1 for RPM).
	ErrChecksumRequired = errors.New("bintray: content checksum must be set")

	// ErrNotIndexed is returned when an indexation wait is requested for a
	// repository type the service builds no index for.
	ErrNotIndexed = errors.New("bintray: only Debian and RPM repositories are indexed")

	// ErrChecksumUnsupported is returned when the RPM metadata reports a
	// checksum algorithm other than SHA-1.
	ErrChecksumUnsupported = errors.New("bintray: only SHA-1 checksums are supported in RPM metadata")
)

// UnexpectedStatusError is a response status outside both the success range
// and the not-yet-converged set (404, 401). It ends a poll immediately.
type UnexpectedStatusError struct {
	Status int
	Body   string
}

func (e *UnexpectedStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("bintray: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("bintray: unexpected status %d: %s", e.Status, e.Body)
}
