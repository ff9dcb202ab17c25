package bintray

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// RepositoryType is the closed set of repository types the service supports.
type RepositoryType string

const (
	RepositoryDebian  RepositoryType = "debian"
	RepositoryDocker  RepositoryType = "docker"
	RepositoryGeneric RepositoryType = "generic"
	RepositoryMaven   RepositoryType = "maven"
	RepositoryNPM     RepositoryType = "npm"
	RepositoryNuGet   RepositoryType = "nuget"
	RepositoryOpkg    RepositoryType = "opkg"
	RepositoryRPM     RepositoryType = "rpm"
	RepositoryVagrant RepositoryType = "vagrant"
)

// IsIndexed reports whether the service rebuilds derived index metadata for
// this repository type after an upload.
func (t RepositoryType) IsIndexed() bool {
	return t == RepositoryDebian || t == RepositoryRPM
}

// UnmarshalJSON normalizes the type name: the service reports Debian
// repositories inconsistently as "deb" or "debian".
func (t *RepositoryType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "deb" {
		s = string(RepositoryDebian)
	}
	*t = RepositoryType(s)
	return nil
}

// Repository is the resolved configuration of one repository.
type Repository struct {
	Owner        string         `json:"owner"`
	Name         string         `json:"name"`
	Type         RepositoryType `json:"type"`
	Private      bool           `json:"private"`
	Premium      bool           `json:"premium"`
	Description  string         `json:"desc"`
	Labels       []string       `json:"labels"`
	Created      string         `json:"created"`
	PackageCount uint64         `json:"package_count"`

	DefaultDebianArchitecture string `json:"default_debian_architecture"`
	DefaultDebianDistribution string `json:"default_debian_distribution"`
	DefaultDebianComponent    string `json:"default_debian_component"`

	// YumMetadataDepth is the path depth, relative to the repository root, at
	// which the service writes repodata/ for RPM repositories.
	YumMetadataDepth int `json:"yum_metadata_depth"`

	YumGroupsFile string `json:"yum_groups_file"`
}

// Repository resolves a repository's configuration, serving repeated lookups
// from an expiring cache so a wait resolves each repository at most once.
func (c *Client) Repository(ctx context.Context, subject, name string) (*Repository, error) {
	key := subject + "/" + name
	if repo, ok := c.repositories.Get(key); ok {
		slog.Debug("repository cache hit", slog.String("repository", key))
		return &repo, nil
	}

	var repo Repository
	if err := c.getJSON(ctx, c.APIURL("repos", subject, name), &repo); err != nil {
		return nil, fmt.Errorf("resolving repository %s: %w", key, err)
	}

	c.repositories.Add(key, repo)
	return &repo, nil
}
